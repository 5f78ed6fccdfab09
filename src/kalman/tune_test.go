package kalman

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSteadyStateDefaults(t *testing.T) {
	cov, gain, err := SteadyState(DefaultParams())
	require.NoError(t, err)
	golden := (math.Sqrt(5) - 1) / 2
	assert.InDelta(t, golden, cov, 1e-12)
	assert.InDelta(t, golden, gain, 1e-12)
}

func TestSteadyStateMatchesIteration(t *testing.T) {
	tests := []Params{
		{ExpectedNoisePower: 2, DesiredNoisePower: 0.1, StateFactor: 0.9, ControlFactor: 0, MeasurementFactor: 2},
		{ExpectedNoisePower: 0.5, DesiredNoisePower: 3, StateFactor: 1, ControlFactor: 1, MeasurementFactor: -1},
		{ExpectedNoisePower: 10, DesiredNoisePower: 0.01, StateFactor: 1.1, ControlFactor: 0, MeasurementFactor: 0.5},
	}
	for _, p := range tests {
		m, err := FromMeasurement(1, WithParams(p))
		require.NoError(t, err)
		for i := 0; i < 1000; i++ {
			m = m.FilterMeasurement(NoEstimate, 1)
		}
		cov, gain, err := SteadyState(p)
		require.NoError(t, err)
		assert.InDelta(t, cov, m.State.Covariance, 1e-9, "%+v", p)
		assert.InDelta(t, gain, m.Gain(), 1e-9, "%+v", p)
	}
}

func TestSteadyStateErrors(t *testing.T) {
	_, _, err := SteadyState(Params{ExpectedNoisePower: 1, DesiredNoisePower: -1, StateFactor: 1, MeasurementFactor: 1})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, _, err = SteadyState(Params{ExpectedNoisePower: 1, DesiredNoisePower: 1, StateFactor: 1})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestEstimateNoisePower(t *testing.T) {
	r, err := EstimateNoisePower([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 5.0/3.0, r, 1e-12)

	_, err = EstimateNoisePower([]float64{1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = EstimateNoisePower([]float64{1, math.NaN()})
	assert.ErrorIs(t, err, ErrValidation)

	// usable as a filter option
	_, err = Init(WithExpectedNoisePower(r))
	assert.NoError(t, err)
}
