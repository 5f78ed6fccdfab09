package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	log "github.com/sirupsen/logrus"

	"github.com/LucaChot/scalarkf/src/metrics"
	"github.com/LucaChot/scalarkf/src/profiler"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	var (
		optMetric      string
		optInterval    time.Duration
		optBatchSize   int
		optPprof       string
		optStatPath    string
		optMemInfoPath string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Filter a live host metric",
		Long: `
Samples CPU or memory utilisation every --interval, smooths it with the
filter and logs one line per --batch-size samples until interrupted.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var metric metrics.Metric
			switch optMetric {
			case "cpu":
				metric = metrics.NewCPUMetric(optStatPath)
			case "memory":
				metric = metrics.NewMemoryMetric(optMemInfoPath)
			default:
				return fmt.Errorf("unknown metric %q, want cpu or memory", optMetric)
			}

			kf, err := metrics.NewKalmanFilter(root.filterOptions()...)
			if err != nil {
				return err
			}

			output := make(chan metrics.Batch)
			collector, err := metrics.New(output,
				metrics.WithInterval(optInterval),
				metrics.WithBatchSize(optBatchSize),
				metrics.WithMetric(metric),
				metrics.WithFilter(kf),
			)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if optPprof != "" {
				profiler.Start(ctx, optPprof)
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- collector.Run(ctx)
			}()

			log.WithFields(log.Fields{
				"metric":   optMetric,
				"interval": optInterval,
			}).Info("watching")
			for {
				select {
				case batch := <-output:
					logBatch(optMetric, batch, kf)
				case err := <-errCh:
					return err
				}
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&optMetric, "metric", "cpu", "metric to watch (cpu, memory)")
	flags.DurationVar(&optInterval, "interval", 100*time.Millisecond, "sampling interval")
	flags.IntVar(&optBatchSize, "batch-size", 10, "samples per log line")
	flags.StringVar(&optPprof, "pprof", "", "serve pprof on this address")
	flags.StringVar(&optStatPath, "stat-path", metrics.DefaultStatPath, "path of the kernel stat file")
	flags.StringVar(&optMemInfoPath, "meminfo-path", metrics.DefaultMemInfoPath, "path of the kernel meminfo file")
	return cmd
}

func logBatch(name string, batch metrics.Batch, kf *metrics.KalmanFilter) {
	raw := mat.Row(nil, 0, batch.Raw)
	filtered := mat.Row(nil, 0, batch.Filtered)

	fields := log.Fields{
		"metric":        name,
		"raw-mean":      stat.Mean(raw, nil),
		"filtered-last": filtered[len(filtered)-1],
	}
	if states := kf.States(); len(states) > 0 {
		fields["covariance"] = states[0].Covariance
	}
	log.WithFields(fields).Info("batch")
}
