// root.go: root command and shared options
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/agilira/rcuht"
)

// globalOptions holds state shared by every subcommand once the
// persistent flags have been parsed.
type globalOptions struct {
	logger rcuht.Logger
}

// NewRootCmd builds the command tree with the run, compare and strategies
// subcommands attached.
func NewRootCmd(name, shortDesc, longDesc string) *cobra.Command {
	opts := &globalOptions{logger: rcuht.NoOpLogger{}}

	cmd := &cobra.Command{
		Use:           name,
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       rcuht.Version,
	}

	cmd.PersistentFlags().String("log_level", "warn", "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log_format", "text", "Set the log format (text, logfmt, json)")

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		flags := cc.Flags()

		var merr error

		logLevel, err := flags.GetString("log_level")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		logFormat, err := flags.GetString("log_format")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		if merr != nil {
			return fmt.Errorf("invalid argument: %w", merr)
		}

		logger, err := NewLogger(cc.ErrOrStderr(), logLevel, logFormat)
		if err != nil {
			return fmt.Errorf("failed creating logger: %w", err)
		}
		opts.logger = logger

		opts.logger.Debug("ready to go")

		return nil
	}

	cmd.AddCommand(NewRunCmd(opts))
	cmd.AddCommand(NewCompareCmd(opts))
	cmd.AddCommand(NewStrategiesCmd())

	return cmd
}
