// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-scout/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one search-enrich-persist cycle",
	Long: `Run executes one full cycle: search arXiv for papers matching the
configured keywords, skip papers already present in the Notion database,
analyze the rest with the configured model ladder, and create one database
record per new paper.

Per-paper failures (spent model quota, rejected writes) are logged and
counted; only configuration, index, and search failures abort the run.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringSlice("keywords", nil, "override configured search keywords")
	runCmd.Flags().Int("lookback-days", 0, "override the search lookback window")
	runCmd.Flags().Int("max-results", 0, "override the search result cap")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	p, err := buildPipeline(cmd, log)
	if err != nil {
		return err
	}

	result, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}
	printSummary(os.Stdout, result)
	return nil
}

func printSummary(w io.Writer, r types.RunResult) {
	fmt.Fprintf(w, "found      %d\n", r.Found)
	fmt.Fprintf(w, "duplicates %d\n", r.Duplicates)
	fmt.Fprintf(w, "persisted  %d\n", r.Persisted)
	if r.Degraded > 0 {
		fmt.Fprintf(w, "degraded   %d\n", r.Degraded)
	}
	if r.EnrichmentSkips > 0 {
		fmt.Fprintf(w, "skipped    %d (enrichment failed)\n", r.EnrichmentSkips)
	}
	if r.WriteFailures > 0 {
		fmt.Fprintf(w, "failed     %d (write rejected)\n", r.WriteFailures)
	}
}
