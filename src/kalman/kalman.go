// Package kalman implements a scalar Kalman filter.
//
// A Model is an immutable snapshot of the filter: every step returns a new
// Model and leaves the receiver untouched, so a caller keeps history simply
// by keeping old values. Usage:
//
//	m, err := kalman.FromMeasurement(first, kalman.WithExpectedNoisePower(0.5))
//	// for every following measurement:
//	m = m.FilterMeasurement(kalman.NoEstimate, z)
//	// current estimate: m.State.Prediction
package kalman

import (
	"math"

	log "github.com/sirupsen/logrus"
)

// Estimate is an optional external noise (control) estimate fed to the
// prediction step. The zero value is absent.
type Estimate struct {
	value   float64
	present bool
}

// NoEstimate is the absent Estimate.
var NoEstimate = Estimate{}

// EstimateOf returns a present Estimate holding v.
func EstimateOf(v float64) Estimate {
	return Estimate{value: v, present: true}
}

// Get returns the estimate and whether it is present.
func (e Estimate) Get() (float64, bool) {
	return e.value, e.present
}

// State is the evolving part of a filter.
type State struct {
	Prediction float64 // current best estimate of the true value
	Covariance float64 // estimate-error variance
}

// Model is a complete filter instance.
type Model struct {
	State  State
	Params Params
}

// Init returns a Model that knows nothing yet: prediction 0, covariance 1.
func Init(opts ...Option) (Model, error) {
	params, err := buildParams(opts)
	if err != nil {
		return Model{}, err
	}
	return Model{
		State:  State{Prediction: 0, Covariance: 1},
		Params: params,
	}, nil
}

// FromMeasurement seeds a Model directly from a first observation, which
// converges much faster than starting from Init.
func FromMeasurement(measurement float64, opts ...Option) (Model, error) {
	m, err := Init(opts...)
	if err != nil {
		return Model{}, err
	}
	// measurement de-weighted by the measurement model: x = z/H, P = R/H²
	h := m.Params.MeasurementFactor
	m.State = State{
		Prediction: measurement / h,
		Covariance: m.Params.ExpectedNoisePower / (h * h),
	}
	return m, nil
}

// PredictNext projects the a priori estimate of the next state. An absent
// estimate contributes no control input.
func (m Model) PredictNext(e Estimate) float64 {
	u, _ := e.Get()
	return m.Params.StateFactor*m.State.Prediction + m.Params.ControlFactor*u
}

func (m Model) prioriCovariance() float64 {
	a := m.Params.StateFactor
	return a*a*m.State.Covariance + m.Params.DesiredNoisePower
}

// gain returns the Kalman gain for the given a priori covariance, along with
// the innovation variance it was derived from. A zero innovation variance
// yields a zero gain.
func (m Model) gain(prioriCov float64) (k, s float64) {
	h := m.Params.MeasurementFactor
	s = h*h*prioriCov + m.Params.ExpectedNoisePower
	if s == 0 {
		return 0, 0
	}
	return prioriCov * h / s, s
}

// Gain returns the Kalman gain the next step will apply.
func (m Model) Gain() float64 {
	k, _ := m.gain(m.prioriCovariance())
	return k
}

// Learn is the correction step: it blends measurement into prioriEstimate
// (normally the result of PredictNext) and returns the a posteriori Model.
func (m Model) Learn(measurement, prioriEstimate float64) Model {
	h := m.Params.MeasurementFactor
	prioriCov := m.prioriCovariance()
	k, s := m.gain(prioriCov)

	residual := measurement - h*prioriEstimate
	if s == 0 {
		log.WithFields(log.Fields{
			"measurement": measurement,
			"priori":      prioriEstimate,
		}).Debug("kalman: zero innovation variance, measurement ignored")
	} else if sigma := math.Sqrt(s); math.Abs(residual) > 3*sigma {
		log.WithFields(log.Fields{
			"residual": residual,
			"3sigma":   3 * sigma,
		}).Debug("kalman: large residual, consider tuning noise powers")
	}

	return Model{
		State: State{
			Prediction: prioriEstimate + k*residual,
			Covariance: prioriCov - k*h*prioriCov,
		},
		Params: m.Params,
	}
}

// FilterMeasurement runs one predict-then-correct cycle.
func (m Model) FilterMeasurement(e Estimate, measurement float64) Model {
	return m.Learn(measurement, m.PredictNext(e))
}
