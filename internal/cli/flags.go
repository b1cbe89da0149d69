// flags.go: command-line flags overlaid on the benchmark configuration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/agilira/rcuht"
)

var ErrInvalidThresholds = errors.New("thresholds must be four comma separated values in [0, 255]")

// benchOptions are the benchmark flags shared by run and compare.
type benchOptions struct {
	configPath   string
	strategy     string
	join         string
	thresholds   string
	workers      int
	operations   int
	keySpace     int
	trials       int
	stallPolls   int
	maxEntries   int
	readDelay    time.Duration
	pollInterval time.Duration
	seed         uint64
}

func (o *benchOptions) addFlags(cmd *cobra.Command, withStrategy bool) {
	defaults := rcuht.DefaultConfig()
	flags := cmd.Flags()

	flags.StringVarP(&o.configPath, "config", "c", "", "Benchmark configuration file (YAML or JSON)")
	if withStrategy {
		flags.StringVarP(&o.strategy, "strategy", "s", string(defaults.Strategy), "Synchronization strategy")
	}
	flags.StringVar(&o.join, "join", string(defaults.Join), "Join discipline (wait, poll)")
	flags.StringVar(&o.thresholds, "thresholds", formatThresholds(defaults.Thresholds),
		"Operation thresholds insert,remove,read,reject")
	flags.IntVarP(&o.workers, "workers", "w", defaults.Workers, "Number of workers")
	flags.IntVarP(&o.operations, "operations", "n", defaults.Operations, "Total operations per trial")
	flags.IntVarP(&o.keySpace, "key_space", "k", defaults.KeySpace, "Key space (rounded up to a power of two)")
	flags.IntVarP(&o.trials, "trials", "t", defaults.Trials, "Number of trials")
	flags.IntVar(&o.stallPolls, "stall_polls", defaults.StallPolls, "Polls without progress before a join is stalled")
	flags.IntVar(&o.maxEntries, "max_entries", 0, "Live entry limit, 0 for unbounded")
	flags.DurationVar(&o.readDelay, "read_delay", 0, "Simulated work per read")
	flags.DurationVar(&o.pollInterval, "poll_interval", defaults.PollInterval, "Poll interval of the poll join")
	flags.Uint64Var(&o.seed, "seed", 0, "Seed for deterministic worker streams, 0 for fastrand")
}

// config resolves the benchmark configuration: defaults, then the
// configuration file, then every flag set explicitly on the command line.
func (o *benchOptions) config(cmd *cobra.Command, logger rcuht.Logger) (rcuht.Config, error) {
	cfg := rcuht.DefaultConfig()

	if o.configPath != "" {
		var err error

		cfg, err = rcuht.LoadConfigFile(o.configPath, cfg)
		if err != nil {
			return cfg, err
		}
	}

	cfg, err := o.overlay(cmd, cfg)
	if err != nil {
		return cfg, err
	}

	cfg.Logger = logger

	return cfg, nil
}

// overlay applies the flags the user changed on top of cfg.
func (o *benchOptions) overlay(cmd *cobra.Command, cfg rcuht.Config) (rcuht.Config, error) {
	flags := cmd.Flags()

	var merr error

	if flags.Changed("strategy") {
		kind, err := rcuht.ParseStrategy(o.strategy)
		if err != nil {
			merr = multierror.Append(merr, err)
		}
		cfg.Strategy = kind
	}

	if flags.Changed("join") {
		join, err := rcuht.ParseJoinMode(o.join)
		if err != nil {
			merr = multierror.Append(merr, err)
		}
		cfg.Join = join
	}

	if flags.Changed("thresholds") {
		t, err := parseThresholds(o.thresholds)
		if err != nil {
			merr = multierror.Append(merr, err)
		}
		cfg.Thresholds = t
	}

	if merr != nil {
		return cfg, fmt.Errorf("invalid argument: %w", merr)
	}

	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("operations") {
		cfg.Operations = o.operations
	}
	if flags.Changed("key_space") {
		cfg.KeySpace = o.keySpace
	}
	if flags.Changed("trials") {
		cfg.Trials = o.trials
	}
	if flags.Changed("stall_polls") {
		cfg.StallPolls = o.stallPolls
	}
	if flags.Changed("max_entries") {
		cfg.MaxEntries = o.maxEntries
	}
	if flags.Changed("read_delay") {
		cfg.ReadDelay = o.readDelay
	}
	if flags.Changed("poll_interval") {
		cfg.PollInterval = o.pollInterval
	}

	if o.seed != 0 {
		seed := o.seed
		cfg.NewRandom = func(worker int) rcuht.RandomSource {
			return rcuht.SeededRandom(seed, worker)
		}
	}

	return cfg, nil
}

func parseThresholds(s string) (rcuht.Thresholds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return rcuht.Thresholds{}, fmt.Errorf("%w: %q", ErrInvalidThresholds, s)
	}

	var v [4]uint8

	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return rcuht.Thresholds{}, fmt.Errorf("%w: %q", ErrInvalidThresholds, s)
		}
		v[i] = uint8(n)
	}

	return rcuht.Thresholds{Insert: v[0], Remove: v[1], Read: v[2], Reject: v[3]}, nil
}

func formatThresholds(t rcuht.Thresholds) string {
	return fmt.Sprintf("%d,%d,%d,%d", t.Insert, t.Remove, t.Read, t.Reject)
}
