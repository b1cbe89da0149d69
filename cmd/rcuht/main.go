// main.go: rcuht command-line entry point
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/agilira/rcuht/internal/cli"
)

const (
	cmdName = "rcuht"

	shortDesc = "Benchmark hash table synchronization strategies."
	longDesc  = `rcuht drives a fixed-size concurrent hash table with a pool of workers
and measures how long each synchronization strategy takes to complete the
same mix of inserts, removes and reads.

Strategies range from no synchronization at all, through a single global
lock, to lock-free grace-period reads with synchronous or deferred
reclamation. Every read checks the entry it consumed for reclaimed memory,
so the run also reports read-safety violations.
`
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := cli.NewRootCmd(cmdName, shortDesc, longDesc)

	err := cmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimLeft(err.Error(), "\n"))
		os.Exit(1)
	}
}
