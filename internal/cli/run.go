// run.go: run subcommand with optional watch mode
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/agilira/rcuht"
)

var ErrViolations = errors.New("read-safety violations observed")

type runOptions struct {
	benchOptions

	watch   bool
	metrics bool
	strict  bool
}

// NewRunCmd returns the run subcommand.
func NewRunCmd(global *globalOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Benchmark one synchronization strategy",
		Long: `Run seeds a fresh table, drives it with a pool of workers through the
selected strategy and prints the mean worker time of every trial.`,
		Args: cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			cfg, err := opts.config(cc, global.logger)
			if err != nil {
				return err
			}

			if opts.watch {
				return opts.runWatch(cc, cfg, global.logger)
			}

			return opts.runOnce(cc.Context(), cc.OutOrStdout(), cfg)
		},
	}

	opts.addFlags(cmd, true)
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Rerun the benchmark whenever --config changes")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Collect OpenTelemetry metrics and print a summary")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail if any read observed a reclaimed entry")

	return cmd
}

func (o *runOptions) runOnce(ctx context.Context, w io.Writer, cfg rcuht.Config) error {
	var sink *metricsSink

	if o.metrics {
		var err error

		sink, err = newMetricsSink()
		if err != nil {
			return err
		}
		defer func() { _ = sink.Shutdown(context.Background()) }()

		cfg.MetricsCollector = sink.collector
	}

	coord, err := rcuht.NewCoordinator(cfg)
	if err != nil {
		return err
	}

	report, runErr := coord.Run(ctx)
	printReport(w, report)

	if runErr != nil {
		return runErr
	}

	if sink != nil {
		summary, err := sink.Summary(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, summary)
	}

	if o.strict && report.Violations() > 0 {
		return fmt.Errorf("%w: %d", ErrViolations, report.Violations())
	}

	return nil
}

// runWatch runs the benchmark after every configuration load until the
// command context is cancelled.
func (o *runOptions) runWatch(cc *cobra.Command, cfg rcuht.Config, logger rcuht.Logger) error {
	if o.configPath == "" {
		return errors.New("--watch requires --config")
	}

	reloads := make(chan rcuht.Config, 1)

	hc, err := rcuht.NewHotConfig(rcuht.HotConfigOptions{
		ConfigPath:   o.configPath,
		PollInterval: time.Second,
		Base:         &cfg,
		Logger:       logger,
		OnReload: func(_, newConfig rcuht.Config) {
			// Keep only the newest revision.
			select {
			case <-reloads:
			default:
			}
			reloads <- newConfig
		},
	})
	if err != nil {
		return err
	}

	if err := hc.Start(); err != nil {
		return err
	}
	defer func() { _ = hc.Stop() }()

	ctx := cc.Context()
	w := cc.OutOrStdout()

	// The watcher delivers the current file content as its first reload.
	for {
		select {
		case <-ctx.Done():
			return nil
		case next := <-reloads:
			// Flags given on the command line still win over the file.
			cfg, err = o.overlay(cc, next)
			if err != nil {
				return err
			}
			cfg.Logger = logger
		}

		if err := o.runOnce(ctx, w, cfg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("benchmark failed", "error", err)
		}
	}
}

func printReport(w io.Writer, report *rcuht.Report) {
	if report == nil {
		return
	}

	fmt.Fprintf(w, "strategy: %s, workers: %d, operations: %d\n",
		report.Strategy, report.Workers, report.Operations)

	for _, t := range report.Trials {
		fmt.Fprintf(w, "trial %d: %.3f ms\n", t.Index, t.Millis())
	}

	if len(report.Trials) == 0 {
		return
	}

	fmt.Fprintf(w, "median: %.3f ms, mean: %.3f ms, violations: %d\n",
		millis(report.Median()), millis(report.Mean()), report.Violations())
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
