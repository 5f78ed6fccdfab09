package kalman

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	assert.Equal(t, Params{
		ExpectedNoisePower: 1,
		DesiredNoisePower:  1,
		StateFactor:        1,
		ControlFactor:      0,
		MeasurementFactor:  1,
	}, DefaultParams())
}

func TestInit(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		m, err := Init()
		require.NoError(t, err)
		assert.Equal(t, State{Prediction: 0, Covariance: 1}, m.State)
		assert.Equal(t, DefaultParams(), m.Params)
	})

	t.Run("options override defaults", func(t *testing.T) {
		m, err := Init(WithExpectedNoisePower(4), WithControlFactor(0.5))
		require.NoError(t, err)
		assert.Equal(t, 4.0, m.Params.ExpectedNoisePower)
		assert.Equal(t, 0.5, m.Params.ControlFactor)
		assert.Equal(t, 1.0, m.Params.MeasurementFactor)
	})

	t.Run("later options win over WithParams", func(t *testing.T) {
		p := Params{ExpectedNoisePower: 2, DesiredNoisePower: 3, StateFactor: 4, ControlFactor: 5, MeasurementFactor: 6}
		m, err := Init(WithParams(p), WithStateFactor(1))
		require.NoError(t, err)
		p.StateFactor = 1
		assert.Equal(t, p, m.Params)
	})
}

func TestInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"zero measurement factor", []Option{WithMeasurementFactor(0)}},
		{"NaN expected noise", []Option{WithExpectedNoisePower(math.NaN())}},
		{"infinite desired noise", []Option{WithDesiredNoisePower(math.Inf(1))}},
		{"infinite state factor", []Option{WithStateFactor(math.Inf(-1))}},
		{"NaN control factor", []Option{WithControlFactor(math.NaN())}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Init(tt.opts...)
			assert.ErrorIs(t, err, ErrConfiguration)

			_, err = FromMeasurement(1, tt.opts...)
			assert.ErrorIs(t, err, ErrConfiguration)

			_, err = Filter([]float64{1, 2}, tt.opts...)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestFromMeasurement(t *testing.T) {
	tests := []struct {
		measurement float64
		r, h        float64
	}{
		{1, 1, 1},
		{7, 1, 3},
		{-2.5, 0.3, -0.7},
		{100, 9, 0.1},
	}
	for _, tt := range tests {
		m, err := FromMeasurement(tt.measurement, WithExpectedNoisePower(tt.r), WithMeasurementFactor(tt.h))
		require.NoError(t, err)
		assert.Equal(t, tt.measurement/tt.h, m.State.Prediction)
		assert.Equal(t, tt.r/(tt.h*tt.h), m.State.Covariance)
	}
}

func TestPredictNext(t *testing.T) {
	m := Model{
		State:  State{Prediction: 4, Covariance: 1},
		Params: Params{ExpectedNoisePower: 1, DesiredNoisePower: 1, StateFactor: 0.5, ControlFactor: 2, MeasurementFactor: 1},
	}
	assert.Equal(t, 8.0, m.PredictNext(EstimateOf(3)))
	assert.Equal(t, 2.0, m.PredictNext(NoEstimate))
	assert.Equal(t, 2.0, m.PredictNext(EstimateOf(0)))

	// lookahead leaves the model alone
	assert.Equal(t, 4.0, m.State.Prediction)
}

func TestEstimate(t *testing.T) {
	v, ok := NoEstimate.Get()
	assert.False(t, ok)
	assert.Zero(t, v)

	v, ok = EstimateOf(0).Get()
	assert.True(t, ok)
	assert.Zero(t, v)

	var zero Estimate
	assert.Equal(t, NoEstimate, zero)
}

func TestLearnWorkedExample(t *testing.T) {
	m, err := FromMeasurement(1)
	require.NoError(t, err)
	assert.Equal(t, State{Prediction: 1, Covariance: 1}, m.State)

	priori := m.PredictNext(NoEstimate)
	assert.Equal(t, 1.0, priori)
	assert.InDelta(t, 2.0/3.0, m.Gain(), 1e-12)

	m = m.Learn(1, priori)
	assert.Equal(t, 1.0, m.State.Prediction)
	assert.InDelta(t, 2.0/3.0, m.State.Covariance, 1e-12)

	assert.InDelta(t, 0.625, m.Gain(), 1e-12)
	m = m.FilterMeasurement(NoEstimate, 1)
	assert.Equal(t, 1.0, m.State.Prediction)
	assert.InDelta(t, 0.625, m.State.Covariance, 1e-12)
}

func TestLearnMovesTowardMeasurement(t *testing.T) {
	m, err := FromMeasurement(0)
	require.NoError(t, err)
	m = m.FilterMeasurement(NoEstimate, 10)
	assert.InDelta(t, 20.0/3.0, m.State.Prediction, 1e-12)
}

func TestLearnKeepsParams(t *testing.T) {
	p := Params{ExpectedNoisePower: 0.2, DesiredNoisePower: 0.05, StateFactor: 0.9, ControlFactor: 0.3, MeasurementFactor: 2}
	m, err := FromMeasurement(3, WithParams(p))
	require.NoError(t, err)

	next := m.FilterMeasurement(EstimateOf(1), 4)
	assert.Equal(t, p, next.Params)
	assert.Equal(t, p, m.Params)
	// receiver is a value: the old snapshot is unchanged
	assert.Equal(t, 1.5, m.State.Prediction)
}

func TestLearnDegenerateGain(t *testing.T) {
	m := Model{
		State:  State{Prediction: 2, Covariance: 0},
		Params: Params{ExpectedNoisePower: 0, DesiredNoisePower: 0, StateFactor: 1, ControlFactor: 0, MeasurementFactor: 1},
	}
	assert.Zero(t, m.Gain())

	next := m.FilterMeasurement(NoEstimate, 10)
	assert.Equal(t, State{Prediction: 2, Covariance: 0}, next.State)
	assert.False(t, math.IsNaN(next.State.Prediction))
}

func TestCovarianceNonNegative(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		p := Params{
			ExpectedNoisePower: 0.01 + rng.Float64()*10,
			DesiredNoisePower:  0.01 + rng.Float64()*10,
			StateFactor:        rng.Float64()*4 - 2,
			ControlFactor:      rng.Float64()*2 - 1,
			MeasurementFactor:  0.1 + rng.Float64()*3,
		}
		m, err := FromMeasurement(rng.NormFloat64(), WithParams(p))
		require.NoError(t, err)
		for step := 0; step < 100; step++ {
			m = m.FilterMeasurement(EstimateOf(rng.NormFloat64()), rng.NormFloat64()*100)
			require.GreaterOrEqual(t, m.State.Covariance, 0.0, "params %+v step %d", p, step)
		}
	}
}

func TestConvergenceOnConstantSignal(t *testing.T) {
	const c = 42.0
	m, err := Init()
	require.NoError(t, err)

	prev := m.State.Covariance
	for i := 0; i < 200; i++ {
		m = m.FilterMeasurement(NoEstimate, c)
		assert.LessOrEqual(t, m.State.Covariance, prev+1e-15, "step %d", i)
		prev = m.State.Covariance
	}
	assert.InDelta(t, c, m.State.Prediction, 1e-9)

	cov, gain, err := SteadyState(m.Params)
	require.NoError(t, err)
	assert.InDelta(t, cov, m.State.Covariance, 1e-12)
	assert.InDelta(t, gain, m.Gain(), 1e-12)
}
