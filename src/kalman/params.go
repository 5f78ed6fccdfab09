package kalman

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrConfiguration is returned when Params cannot drive a filter.
	ErrConfiguration = errors.New("invalid filter configuration")
	// ErrValidation is returned when input handed to the filter is malformed.
	ErrValidation = errors.New("invalid filter input")
)

// Params holds the linear model of a scalar filter. A Params value is fixed
// for the lifetime of the Model built from it.
type Params struct {
	ExpectedNoisePower float64 // R: measurement-noise variance
	DesiredNoisePower  float64 // Q: process-noise variance (higher = more agility)
	StateFactor        float64 // A: state transition
	ControlFactor      float64 // B: weight of the external noise estimate
	MeasurementFactor  float64 // H: relates true state to measurement
}

// DefaultParams returns the random-walk model with unit noise powers.
func DefaultParams() Params {
	return Params{
		ExpectedNoisePower: 1,
		DesiredNoisePower:  1,
		StateFactor:        1,
		ControlFactor:      0,
		MeasurementFactor:  1,
	}
}

// Validate reports whether p can be used to seed and step a filter.
func (p Params) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"expectedNoisePower", p.ExpectedNoisePower},
		{"desiredNoisePower", p.DesiredNoisePower},
		{"stateFactor", p.StateFactor},
		{"controlFactor", p.ControlFactor},
		{"measurementFactor", p.MeasurementFactor},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrConfiguration, f.name, f.value)
		}
	}
	if p.MeasurementFactor == 0 {
		return fmt.Errorf("%w: measurementFactor must be non-zero", ErrConfiguration)
	}
	return nil
}

// Option configures the Params of a new filter.
type Option func(*Params)

func WithExpectedNoisePower(r float64) Option {
	return func(p *Params) {
		p.ExpectedNoisePower = r
	}
}

func WithDesiredNoisePower(q float64) Option {
	return func(p *Params) {
		p.DesiredNoisePower = q
	}
}

func WithStateFactor(a float64) Option {
	return func(p *Params) {
		p.StateFactor = a
	}
}

func WithControlFactor(b float64) Option {
	return func(p *Params) {
		p.ControlFactor = b
	}
}

func WithMeasurementFactor(h float64) Option {
	return func(p *Params) {
		p.MeasurementFactor = h
	}
}

// WithParams replaces every field at once. Options given after it still apply.
func WithParams(params Params) Option {
	return func(p *Params) {
		*p = params
	}
}

func buildParams(opts []Option) (Params, error) {
	params := DefaultParams()
	for _, opt := range opts {
		opt(&params)
	}
	if err := params.Validate(); err != nil {
		return Params{}, err
	}
	return params, nil
}
