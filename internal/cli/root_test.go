// root_test.go: tests for the rcuht command tree
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agilira/rcuht"
	"github.com/agilira/rcuht/internal/cli"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	tc := cli.NewRootCmd("test_rcuht", "", "")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	tc.SetArgs(args)
	tc.SetOut(stdout)
	tc.SetErr(stderr)

	err := tc.Execute()

	return stdout.String(), stderr.String(), err
}

func TestStrategiesCmd(t *testing.T) {
	t.Parallel()

	stdout, stderr, err := execute(t, "strategies")
	require.NoError(t, err)
	assert.Empty(t, stderr, "stderr should be empty")

	for _, kind := range rcuht.Strategies() {
		assert.Contains(t, stdout, string(kind))
	}
}

func TestRunCmd(t *testing.T) {
	t.Parallel()

	stdout, stderr, err := execute(t,
		"run",
		"--strategy", "global-lock",
		"--workers", "2",
		"--operations", "200",
		"--key_space", "16",
		"--trials", "2",
	)
	require.NoError(t, err)
	assert.Empty(t, stderr, "stderr should be empty")

	assert.Contains(t, stdout, "strategy: global-lock, workers: 2, operations: 200")
	assert.Contains(t, stdout, "trial 0:")
	assert.Contains(t, stdout, "trial 1:")
	assert.Contains(t, stdout, "violations: 0")
}

func TestRunCmdSeeded(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t,
		"run",
		"--strategy", "invalidated_grace_period_read",
		"--workers", "3",
		"--operations", "300",
		"--trials", "1",
		"--join", "poll",
		"--poll_interval", "1ms",
		"--seed", "42",
		"--strict",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "strategy: invalidated-grace-period-read")
}

func TestRunCmdMetrics(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t,
		"run",
		"--strategy", "invalidated-grace-period-read-deferred",
		"--workers", "2",
		"--operations", "500",
		"--trials", "1",
		"--metrics",
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "rcuht_ops_total")
	assert.Contains(t, stdout, "rcuht_read_latency_ns")
}

func TestRunCmdConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bench.yaml")
	content := `benchmark:
  strategy: invalidated-grace-period-read-deferred
  workers: 2
  operations: 400
  key_space: 32
  trials: 1
  thresholds:
    insert: 12
    remove: 25
    read: 255
    reject: 255
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// Flags given explicitly override the file.
	stdout, _, err := execute(t, "run", "--config", path, "--trials", "2")
	require.NoError(t, err)

	assert.Contains(t, stdout, "strategy: invalidated-grace-period-read-deferred, workers: 2, operations: 400")
	assert.Contains(t, stdout, "trial 1:")
}

func TestRunCmdInvalidArguments(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		args []string
		want string
	}{
		"unknown strategy": {
			args: []string{"run", "--strategy", "optimistic"},
			want: "invalid argument",
		},
		"short thresholds": {
			args: []string{"run", "--thresholds", "1,2"},
			want: "thresholds must be four comma separated values",
		},
		"unordered thresholds": {
			args: []string{"run", "--thresholds", "50,25,255,255", "--trials", "1"},
			want: "non-decreasing",
		},
		"unknown join": {
			args: []string{"run", "--join", "spin"},
			want: "invalid argument",
		},
		"unknown log format": {
			args: []string{"run", "--log_format", "xml"},
			want: "failed creating logger",
		},
		"missing config file": {
			args: []string{"run", "--config", "/nonexistent/rcuht.yaml"},
			want: "failed to load configuration file",
		},
		"watch without config": {
			args: []string{"run", "--watch"},
			want: "--watch requires --config",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, _, err := execute(t, tc.args...)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestCompareCmd(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t,
		"compare",
		"--workers", "2",
		"--operations", "200",
		"--key_space", "16",
		"--trials", "1",
	)
	require.NoError(t, err)

	for _, kind := range rcuht.Strategies() {
		if !kind.Concurrent() {
			assert.NotContains(t, stdout, string(kind))
			continue
		}
		assert.Contains(t, stdout, string(kind))
	}
	assert.Contains(t, stdout, "Median ms")
}

func TestCompareCmdSingleWorker(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t,
		"compare",
		"--workers", "1",
		"--operations", "100",
		"--trials", "1",
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, string(rcuht.StrategyNoSync))
}

func TestVersion(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, rcuht.Version)
}
