// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <title>...",
	Short: "Print the normalized slug of each question title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := cfg.Normalizer()
		for _, title := range args {
			fmt.Fprintln(cmd.OutOrStdout(), n.Normalize(title))
		}
		return nil
	},
}
