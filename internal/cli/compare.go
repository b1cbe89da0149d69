// compare.go: side-by-side comparison of strategies
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agilira/rcuht"
)

type compareOptions struct {
	benchOptions

	unsafe bool
}

// NewCompareCmd returns the compare subcommand, which runs the same
// workload under several strategies and prints one row per strategy.
func NewCompareCmd(global *globalOptions) *cobra.Command {
	opts := &compareOptions{}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Benchmark every strategy with the same configuration",
		Long: `Compare runs every synchronization strategy with the same workload and
renders their median trial times side by side. The no-sync baseline is
skipped for more than one worker unless --unsafe is given.`,
		Args: cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			cfg, err := opts.config(cc, global.logger)
			if err != nil {
				return err
			}

			rows, err := opts.compare(cc, cfg)
			if err != nil {
				return err
			}

			fmt.Fprintln(cc.OutOrStdout(), renderTable(
				[]string{"Strategy", "Median ms", "Mean ms", "Ops", "Grace periods", "Violations"},
				rows,
			))

			return nil
		},
	}

	opts.addFlags(cmd, false)
	cmd.Flags().BoolVar(&opts.unsafe, "unsafe", false, "Include no-sync with more than one worker")

	return cmd
}

func (o *compareOptions) compare(cc *cobra.Command, cfg rcuht.Config) ([][]string, error) {
	var rows [][]string

	for _, kind := range rcuht.Strategies() {
		if !kind.Concurrent() && cfg.Workers > 1 && !o.unsafe {
			cfg.Logger.Info("skipping strategy", "strategy", string(kind), "workers", cfg.Workers)
			continue
		}

		run := cfg
		run.Strategy = kind

		coord, err := rcuht.NewCoordinator(run)
		if err != nil {
			return nil, err
		}

		report, err := coord.Run(cc.Context())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}

		var ops, gracePeriods uint64
		for _, t := range report.Trials {
			ops += t.Ops()
			gracePeriods += t.Reclaim.GracePeriods
		}

		rows = append(rows, []string{
			string(kind),
			fmt.Sprintf("%.3f", millis(report.Median())),
			fmt.Sprintf("%.3f", millis(report.Mean())),
			strconv.FormatUint(ops, 10),
			strconv.FormatUint(gracePeriods, 10),
			strconv.FormatUint(report.Violations(), 10),
		})
	}

	return rows, nil
}
