package main

import (
	"github.com/spf13/cobra"

	log "github.com/sirupsen/logrus"

	"github.com/LucaChot/scalarkf/src/kalman"
)

type rootOptions struct {
	params   kalman.Params
	logLevel string
}

func (o *rootOptions) filterOptions() []kalman.Option {
	return []kalman.Option{kalman.WithParams(o.params)}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "kfilter",
		Short: "Smooth noisy scalar signals with a Kalman filter",
		Long: `
kfilter runs a scalar Kalman filter over a stream of measurements.

The filter model is configured with the persistent flags:

  --expected-noise      R, variance of the measurement noise
  --desired-noise       Q, variance of the process; higher follows the signal faster
  --state-factor        A, how the true value carries over to the next step
  --control-factor      B, weight of the per-step noise estimate
  --measurement-factor  H, relates the true value to the measurement (non-zero)
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			log.SetOutput(cmd.ErrOrStderr())
			return opts.params.Validate()
		},
	}

	defaults := kalman.DefaultParams()
	pFlags := cmd.PersistentFlags()
	pFlags.Float64Var(&opts.params.ExpectedNoisePower, "expected-noise", defaults.ExpectedNoisePower, "measurement noise variance (R)")
	pFlags.Float64Var(&opts.params.DesiredNoisePower, "desired-noise", defaults.DesiredNoisePower, "process noise variance (Q)")
	pFlags.Float64Var(&opts.params.StateFactor, "state-factor", defaults.StateFactor, "state transition coefficient (A)")
	pFlags.Float64Var(&opts.params.ControlFactor, "control-factor", defaults.ControlFactor, "noise estimate weight (B)")
	pFlags.Float64Var(&opts.params.MeasurementFactor, "measurement-factor", defaults.MeasurementFactor, "measurement coefficient (H)")
	pFlags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(newBatchCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	return cmd
}
