// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	reportsDB     string
	reportsLimit  int
	reportsOutput string
	reportsRun    string
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List recently recorded resolution reports",
	Long: `Reports lists the most recent resolution reports, newest first. With --run it
prints the stored per-field results of that run instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		s, err := openStore(ctx, reportsDB)
		if err != nil {
			return err
		}
		if s == nil {
			return eris.New("no report database: pass --db or set store.path")
		}
		defer s.Close()

		if reportsRun != "" {
			results, err := s.Results(ctx, reportsRun)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), reportsOutput, results)
		}

		rows, err := s.ListReports(ctx, reportsLimit)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), reportsOutput, rows)
	},
}

func init() {
	reportsCmd.Flags().StringVar(&reportsDB, "db", "", "SQLite database recording resolution reports (overrides config)")
	reportsCmd.Flags().IntVar(&reportsLimit, "limit", 20, "maximum number of reports")
	reportsCmd.Flags().StringVarP(&reportsOutput, "output", "o", "yaml", "output format (yaml, json)")
	reportsCmd.Flags().StringVar(&reportsRun, "run", "", "print the per-field results of this run id")
}
