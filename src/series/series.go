// Package series reads measurement streams into the filter and writes the
// resulting predictions back out.
//
// The text format is one measurement per line, optionally followed by a noise
// estimate separated by a comma or whitespace. Blank lines and lines starting
// with '#' are ignored.
package series

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/LucaChot/scalarkf/src/kalman"
)

type Series struct {
	Measurements []kalman.Measurement
	// HasEstimates is set when every line carried a noise estimate.
	HasEstimates bool
}

// Values returns the measurement values without their estimates.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Measurements))
	for i, m := range s.Measurements {
		out[i] = m.Value
	}
	return out
}

// Filter runs the series through a filter built from opts, using the noise
// estimates when the series carries them.
func (s Series) Filter(opts ...kalman.Option) (*kalman.History, error) {
	if s.HasEstimates {
		return kalman.Run(s.Measurements, opts...)
	}
	return kalman.RunSignal(s.Values(), opts...)
}

func Read(r io.Reader) (Series, error) {
	var (
		s       Series
		columns int
	)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(c rune) bool {
			return c == ',' || c == ' ' || c == '\t'
		})
		if len(fields) == 0 || len(fields) > 2 {
			return Series{}, fmt.Errorf("%w: line %d: expected 1 or 2 columns, got %d",
				kalman.ErrValidation, lineNo, len(fields))
		}
		if columns == 0 {
			columns = len(fields)
		} else if columns != len(fields) {
			return Series{}, fmt.Errorf("%w: line %d: measurement without matching noise estimate",
				kalman.ErrValidation, lineNo)
		}

		var m kalman.Measurement
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return Series{}, fmt.Errorf("%w: line %d: %v", kalman.ErrValidation, lineNo, err)
		}
		m.Value = v
		if len(fields) == 2 {
			e, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return Series{}, fmt.Errorf("%w: line %d: %v", kalman.ErrValidation, lineNo, err)
			}
			m.NoiseEstimate = e
		}
		s.Measurements = append(s.Measurements, m)
	}
	if err := scanner.Err(); err != nil {
		return Series{}, fmt.Errorf("reading series: %w", err)
	}
	s.HasEstimates = columns == 2
	return s, nil
}

// Write prints one prediction per line.
func Write(w io.Writer, predictions []float64) error {
	bw := bufio.NewWriter(w)
	for _, p := range predictions {
		if _, err := bw.WriteString(strconv.FormatFloat(p, 'g', -1, 64) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteHistory prints prediction and covariance per line, comma separated.
func WriteHistory(w io.Writer, hist *kalman.History) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < hist.Len(); i++ {
		m, _ := hist.At(i)
		if _, err := fmt.Fprintf(bw, "%s,%s\n",
			strconv.FormatFloat(m.State.Prediction, 'g', -1, 64),
			strconv.FormatFloat(m.State.Covariance, 'g', -1, 64)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
