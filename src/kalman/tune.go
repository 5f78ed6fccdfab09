package kalman

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// SteadyState returns the a posteriori covariance and Kalman gain a filter
// with params p settles to after enough steps, independent of the
// measurements. It solves the fixed point of the scalar Riccati recursion
//
//	x = A²·x·R / (H²·x + R) + Q
//
// for the a priori covariance x.
func SteadyState(p Params) (covariance, gain float64, err error) {
	if err := p.Validate(); err != nil {
		return 0, 0, err
	}
	a2 := p.StateFactor * p.StateFactor
	h := p.MeasurementFactor
	h2 := h * h
	r, q := p.ExpectedNoisePower, p.DesiredNoisePower

	b := r*(1-a2) - q*h2
	disc := b*b + 4*h2*q*r
	if disc < 0 {
		return 0, 0, fmt.Errorf("%w: no real steady state for %+v", ErrConfiguration, p)
	}
	x := (-b + math.Sqrt(disc)) / (2 * h2)
	if x < 0 {
		return 0, 0, fmt.Errorf("%w: no non-negative steady state for %+v", ErrConfiguration, p)
	}

	s := h2*x + r
	if s == 0 {
		return 0, 0, nil
	}
	return x * r / s, x * h / s, nil
}

// EstimateNoisePower returns the sample variance of a calibration window
// taken while the true value was steady. The result is a reasonable
// ExpectedNoisePower.
func EstimateNoisePower(calibration []float64) (float64, error) {
	if len(calibration) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 calibration samples, got %d", ErrValidation, len(calibration))
	}
	for i, v := range calibration {
		if !finite(v) {
			return 0, fmt.Errorf("%w: non-finite calibration sample at %d", ErrValidation, i)
		}
	}
	return stat.Variance(calibration, nil), nil
}
