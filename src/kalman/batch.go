package kalman

import "fmt"

// Filter returns one prediction per measurement of noisySignal, in order.
// An empty signal yields an empty result.
func Filter(noisySignal []float64, opts ...Option) ([]float64, error) {
	hist, err := RunSignal(noisySignal, opts...)
	if err != nil {
		return nil, err
	}
	return hist.Predictions(), nil
}

// FilterWithNoiseEstimates is Filter for measurements that carry an external
// noise estimate, which is fed to the control term of every step.
func FilterWithNoiseEstimates(pairs []Measurement, opts ...Option) ([]float64, error) {
	hist, err := Run(pairs, opts...)
	if err != nil {
		return nil, err
	}
	return hist.Predictions(), nil
}

// FilterSeparate pairs measurements with estimates by index before filtering.
// Both slices must have the same length.
func FilterSeparate(measurements, estimates []float64, opts ...Option) ([]float64, error) {
	if len(measurements) != len(estimates) {
		return nil, fmt.Errorf("%w: %d measurements but %d noise estimates",
			ErrValidation, len(measurements), len(estimates))
	}
	pairs := make([]Measurement, len(measurements))
	for i := range measurements {
		pairs[i] = Measurement{Value: measurements[i], NoiseEstimate: estimates[i]}
	}
	return FilterWithNoiseEstimates(pairs, opts...)
}
