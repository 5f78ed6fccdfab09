package kalman

import (
	"fmt"
	"sync"
)

// Tracker holds a live Model for callers that share one filter between
// goroutines. The first Update seeds the filter from its measurement.
type Tracker struct {
	mu     sync.Mutex
	params Params
	model  Model
	seeded bool
}

func NewTracker(opts ...Option) (*Tracker, error) {
	params, err := buildParams(opts)
	if err != nil {
		return nil, err
	}
	return &Tracker{params: params}, nil
}

// Update filters one measurement and returns the resulting state.
func (t *Tracker) Update(measurement float64, e Estimate) (State, error) {
	if !finite(measurement) {
		return State{}, fmt.Errorf("%w: non-finite measurement %v", ErrValidation, measurement)
	}
	if u, ok := e.Get(); ok && !finite(u) {
		return State{}, fmt.Errorf("%w: non-finite noise estimate %v", ErrValidation, u)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.seeded {
		m, err := FromMeasurement(measurement, WithParams(t.params))
		if err != nil {
			return State{}, err
		}
		t.model = m
		t.seeded = true
		return m.State, nil
	}
	t.model = t.model.FilterMeasurement(e, measurement)
	return t.model.State, nil
}

// Model returns a snapshot of the current Model, false until the first Update.
func (t *Tracker) Model() (Model, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.model, t.seeded
}

// PredictNext forecasts the next state without consuming a measurement.
func (t *Tracker) PredictNext(e Estimate) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.seeded {
		return 0, false
	}
	return t.model.PredictNext(e), true
}

// Reset drops the current Model; the next Update seeds a fresh one.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.model = Model{}
	t.seeded = false
}
