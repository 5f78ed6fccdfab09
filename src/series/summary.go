package series

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/LucaChot/scalarkf/src/kalman"
)

// Summary describes how a prediction sequence relates to the measurements it
// was filtered from.
type Summary struct {
	Count          int
	ResidualMean   float64 // mean of measurement - prediction
	ResidualStdDev float64
	ResidualRMS    float64
	// SmoothingRatio is Var(predictions) / Var(measurements). Zero when the
	// measurements are constant.
	SmoothingRatio float64
}

func Summarize(measurements, predictions []float64) (Summary, error) {
	if len(measurements) != len(predictions) {
		return Summary{}, fmt.Errorf("%w: %d measurements but %d predictions",
			kalman.ErrValidation, len(measurements), len(predictions))
	}
	n := len(measurements)
	if n < 2 {
		return Summary{}, fmt.Errorf("%w: need at least 2 samples to summarize, got %d",
			kalman.ErrValidation, n)
	}

	residuals := make([]float64, n)
	floats.SubTo(residuals, measurements, predictions)

	mean, std := stat.MeanStdDev(residuals, nil)
	s := Summary{
		Count:          n,
		ResidualMean:   mean,
		ResidualStdDev: std,
		ResidualRMS:    floats.Norm(residuals, 2) / math.Sqrt(float64(n)),
	}
	if mv := stat.Variance(measurements, nil); mv > 0 {
		s.SmoothingRatio = stat.Variance(predictions, nil) / mv
	}
	return s, nil
}
