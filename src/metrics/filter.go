package metrics

import (
	"fmt"
	"sync"

	"github.com/LucaChot/scalarkf/src/kalman"
)

// Filter smooths one multi-dimensional sample at a time.
type Filter interface {
	Update(newY []float64) ([]float64, error)
}

type NullFilter struct{}

func (nf *NullFilter) Update(newY []float64) ([]float64, error) { return newY, nil }

// KalmanFilter runs an independent scalar Kalman filter per dimension. The
// dimension count is fixed by the first sample.
type KalmanFilter struct {
	mu       sync.Mutex
	opts     []kalman.Option
	trackers []*kalman.Tracker
}

func NewKalmanFilter(opts ...kalman.Option) (*KalmanFilter, error) {
	// reject bad params here rather than on the first sample
	if _, err := kalman.NewTracker(opts...); err != nil {
		return nil, err
	}
	return &KalmanFilter{opts: opts}, nil
}

func (kf *KalmanFilter) Update(newY []float64) ([]float64, error) {
	kf.mu.Lock()
	defer kf.mu.Unlock()

	if kf.trackers == nil {
		kf.trackers = make([]*kalman.Tracker, len(newY))
		for i := range kf.trackers {
			tr, err := kalman.NewTracker(kf.opts...)
			if err != nil {
				kf.trackers = nil
				return nil, err
			}
			kf.trackers[i] = tr
		}
	}
	if len(kf.trackers) != len(newY) {
		return nil, fmt.Errorf("%w: sample has %d dimensions, filter has %d",
			kalman.ErrValidation, len(newY), len(kf.trackers))
	}

	out := make([]float64, len(newY))
	for i, y := range newY {
		s, err := kf.trackers[i].Update(y, kalman.NoEstimate)
		if err != nil {
			return nil, fmt.Errorf("dimension %d: %w", i, err)
		}
		out[i] = s.Prediction
	}
	return out, nil
}

// States returns the current state of every dimension, nil before the first
// sample.
func (kf *KalmanFilter) States() []kalman.State {
	kf.mu.Lock()
	defer kf.mu.Unlock()
	if kf.trackers == nil {
		return nil
	}
	states := make([]kalman.State, len(kf.trackers))
	for i, tr := range kf.trackers {
		if m, ok := tr.Model(); ok {
			states[i] = m.State
		}
	}
	return states
}
