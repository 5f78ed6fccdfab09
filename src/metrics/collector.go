package metrics

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// Batch holds batchSize consecutive samples, one column per sample and one
// row per metric.
type Batch struct {
	Raw      *mat.Dense
	Filtered *mat.Dense
}

// Collector samples a set of metrics on a ticker and smooths every sample
// through a Filter.
type Collector struct {
	interval  time.Duration
	batchSize int
	metrics   []Metric
	latest    atomic.Pointer[[]float64]
	output    chan<- Batch
	filter    Filter
}

type collectorOptions struct {
	interval  time.Duration
	batchSize int
	metrics   []Metric
	filter    Filter
}

// Option configures a Collector
type Option func(*collectorOptions)

func WithInterval(interval time.Duration) Option {
	return func(o *collectorOptions) {
		o.interval = interval
	}
}

func WithBatchSize(batchSize int) Option {
	return func(o *collectorOptions) {
		o.batchSize = batchSize
	}
}

func WithMetric(metric Metric) Option {
	return func(o *collectorOptions) {
		o.metrics = append(o.metrics, metric)
	}
}

func WithFilter(filter Filter) Option {
	return func(o *collectorOptions) {
		o.filter = filter
	}
}

var defaultCollectorOptions = collectorOptions{
	interval:  100 * time.Millisecond,
	batchSize: 10,
	filter:    &NullFilter{},
}

func New(output chan<- Batch, opts ...Option) (*Collector, error) {
	options := defaultCollectorOptions
	options.metrics = nil
	for _, opt := range opts {
		opt(&options)
	}
	if len(options.metrics) == 0 {
		return nil, errors.New("collector needs at least one metric")
	}
	if options.batchSize < 1 {
		return nil, errors.New("batch size must be positive")
	}
	if options.interval <= 0 {
		return nil, errors.New("interval must be positive")
	}

	return &Collector{
		interval:  options.interval,
		batchSize: options.batchSize,
		metrics:   options.metrics,
		output:    output,
		filter:    options.filter,
	}, nil
}

// Latest returns the most recent filtered sample.
func (c *Collector) Latest() ([]float64, error) {
	y := c.latest.Load()
	if y == nil {
		return nil, errors.New("no sample is available")
	}
	return *y, nil
}

// Run samples until ctx is done.
func (c *Collector) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	dims := len(c.metrics)
	raw := make([]float64, c.batchSize*dims)
	filtered := make([]float64, c.batchSize*dims)
	i := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		row := dims * i
		if !c.sample(raw[row:row+dims], filtered[row:row+dims]) {
			continue
		}
		i++
		if i < c.batchSize {
			continue
		}
		i = 0

		batch := Batch{
			Raw:      transpose(c.batchSize, dims, raw),
			Filtered: transpose(c.batchSize, dims, filtered),
		}
		select {
		case c.output <- batch:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Collector) sample(raw, filtered []float64) bool {
	for j, metric := range c.metrics {
		v, err := metric()
		if err != nil {
			log.WithFields(log.Fields{
				"metric": j,
				"error":  err,
			}).Warn("unable to collect metric, skipping sample")
			return false
		}
		raw[j] = v
	}

	out, err := c.filter.Update(raw)
	if err != nil {
		log.WithError(err).Warn("unable to filter sample")
		return false
	}
	copy(filtered, out)

	latest := make([]float64, len(out))
	copy(latest, out)
	c.latest.Store(&latest)
	return true
}

// transpose turns rows of samples into one column per sample.
func transpose(rows, cols int, data []float64) *mat.Dense {
	bT := mat.NewDense(rows, cols, data)

	var b mat.Dense
	b.CloneFrom(bT.T())
	return &b
}
