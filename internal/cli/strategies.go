// strategies.go: strategies subcommand
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

// NewStrategiesCmd returns the strategies subcommand, which lists every
// strategy and its properties.
func NewStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the available synchronization strategies",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			rows := make([][]string, 0, len(rcuht.Strategies()))
			for _, kind := range rcuht.Strategies() {
				rows = append(rows, []string{
					string(kind),
					strconv.FormatBool(kind.Concurrent()),
					strconv.FormatBool(kind.RejectsDuplicates()),
				})
			}

			fmt.Fprintln(cc.OutOrStdout(), renderTable(
				[]string{"Strategy", "Concurrent", "Rejects duplicates"},
				rows,
			))

			return nil
		},
	}
}
