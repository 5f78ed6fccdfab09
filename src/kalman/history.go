package kalman

import (
	"fmt"
	"math"
)

// Measurement pairs an observation with the external noise estimate that
// accompanied it.
type Measurement struct {
	Value         float64
	NoiseEstimate float64
}

// History is an arena of filter states indexed by step. Step 0 is the seed.
type History struct {
	params Params
	states []State
}

// Run seeds a filter from the first pair and folds FilterMeasurement over the
// rest, recording every state. The first pair seeds the filter and is not
// filtered a second time, so its noise estimate is unused.
func Run(pairs []Measurement, opts ...Option) (*History, error) {
	params, err := buildParams(opts)
	if err != nil {
		return nil, err
	}
	hist := &History{
		params: params,
		states: make([]State, 0, len(pairs)),
	}
	if len(pairs) == 0 {
		return hist, nil
	}
	for i, p := range pairs {
		if !finite(p.Value) || !finite(p.NoiseEstimate) {
			return nil, fmt.Errorf("%w: non-finite input at step %d", ErrValidation, i)
		}
	}

	m, err := FromMeasurement(pairs[0].Value, WithParams(params))
	if err != nil {
		return nil, err
	}
	hist.states = append(hist.states, m.State)
	for _, p := range pairs[1:] {
		m = m.FilterMeasurement(EstimateOf(p.NoiseEstimate), p.Value)
		hist.states = append(hist.states, m.State)
	}
	return hist, nil
}

// RunSignal is Run for a signal without external noise estimates.
func RunSignal(signal []float64, opts ...Option) (*History, error) {
	params, err := buildParams(opts)
	if err != nil {
		return nil, err
	}
	hist := &History{
		params: params,
		states: make([]State, 0, len(signal)),
	}
	if len(signal) == 0 {
		return hist, nil
	}
	for i, v := range signal {
		if !finite(v) {
			return nil, fmt.Errorf("%w: non-finite measurement at step %d", ErrValidation, i)
		}
	}

	m, err := FromMeasurement(signal[0], WithParams(params))
	if err != nil {
		return nil, err
	}
	hist.states = append(hist.states, m.State)
	for _, v := range signal[1:] {
		m = m.FilterMeasurement(NoEstimate, v)
		hist.states = append(hist.states, m.State)
	}
	return hist, nil
}

func (h *History) Len() int {
	return len(h.states)
}

func (h *History) Params() Params {
	return h.params
}

// At returns the Model as it was after the given step.
func (h *History) At(step int) (Model, bool) {
	if step < 0 || step >= len(h.states) {
		return Model{}, false
	}
	return Model{State: h.states[step], Params: h.params}, true
}

// Last returns the most recent Model, or false if nothing was filtered.
func (h *History) Last() (Model, bool) {
	return h.At(len(h.states) - 1)
}

func (h *History) Predictions() []float64 {
	out := make([]float64, len(h.states))
	for i, s := range h.states {
		out[i] = s.Prediction
	}
	return out
}

func (h *History) Covariances() []float64 {
	out := make([]float64, len(h.states))
	for i, s := range h.states {
		out[i] = s.Covariance
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
