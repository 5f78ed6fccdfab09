package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	log "github.com/sirupsen/logrus"

	"github.com/LucaChot/scalarkf/src/kalman"
	"github.com/LucaChot/scalarkf/src/series"
)

func newBatchCmd(root *rootOptions) *cobra.Command {
	var (
		optCovariance bool
		optCalibrate  int
	)

	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Filter a series read from a file or stdin",
		Long: `
Reads one measurement per line, optionally followed by a noise estimate
(comma or whitespace separated), and prints one prediction per line.
Either every line carries a noise estimate or none does.

The first measurement seeds the filter and is printed unchanged
(divided by the measurement factor); it is not filtered twice.

Examples:

  kfilter batch readings.txt
  sensor-dump | kfilter batch --expected-noise 0.5 --desired-noise 0.01
  kfilter batch --calibrate 50 --covariance readings.txt
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			s, err := series.Read(in)
			if err != nil {
				return err
			}

			opts := root.filterOptions()
			if optCalibrate > 0 {
				n := min(optCalibrate, len(s.Measurements))
				r, err := kalman.EstimateNoisePower(s.Values()[:n])
				if err != nil {
					return fmt.Errorf("calibrating: %w", err)
				}
				log.WithFields(log.Fields{
					"samples":        n,
					"expected-noise": r,
				}).Info("calibrated measurement noise")
				opts = append(opts, kalman.WithExpectedNoisePower(r))
			}

			hist, err := s.Filter(opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if optCovariance {
				err = series.WriteHistory(out, hist)
			} else {
				err = series.Write(out, hist.Predictions())
			}
			if err != nil {
				return err
			}

			logSummary(s, hist)
			return nil
		},
	}

	cmd.Flags().BoolVar(&optCovariance, "covariance", false, "print the covariance next to each prediction")
	cmd.Flags().IntVar(&optCalibrate, "calibrate", 0, "estimate the measurement noise from the first N measurements")
	return cmd
}

func logSummary(s series.Series, hist *kalman.History) {
	summary, err := series.Summarize(s.Values(), hist.Predictions())
	if err != nil {
		log.WithError(err).Debug("series too short to summarize")
		return
	}
	fields := log.Fields{
		"count":           summary.Count,
		"residual-mean":   summary.ResidualMean,
		"residual-stddev": summary.ResidualStdDev,
		"residual-rms":    summary.ResidualRMS,
		"smoothing-ratio": summary.SmoothingRatio,
		"estimates":       s.HasEstimates,
	}
	if cov, gain, err := kalman.SteadyState(hist.Params()); err == nil {
		fields["steady-covariance"] = cov
		fields["steady-gain"] = gain
	}
	log.WithFields(fields).Info("filtered series")
}
