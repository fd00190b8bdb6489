// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-scout/internal/enrich"
	"github.com/pdiddy/paper-scout/internal/notion"
	"github.com/pdiddy/paper-scout/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify configuration and store access",
	Long: `Check loads the configuration and credentials, prints the effective
settings, then queries the Notion database once to prove the token and
database ID work. It makes no model calls and writes nothing.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkView is the printable slice of the configuration; credentials stay
// out of it.
type checkView struct {
	Keywords     []string              `yaml:"keywords"`
	LookbackDays int                   `yaml:"lookback_days"`
	Categories   []string              `yaml:"categories"`
	ResearchArea string                `yaml:"research_area"`
	ModelLadder  []types.BackendBudget `yaml:"model_ladder"`
	Cron         string                `yaml:"cron"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ladder := cfg.Enrich.Backends
	if len(ladder) == 0 {
		ladder = enrich.DefaultLadder
	}
	view := checkView{
		Keywords:     cfg.Search.Keywords,
		LookbackDays: cfg.Search.LookbackDays,
		Categories:   cfg.Search.Categories,
		ResearchArea: cfg.Enrich.ResearchArea,
		ModelLadder:  ladder,
		Cron:         cfg.Schedule.Cron,
	}
	out, err := yaml.Marshal(view)
	if err != nil {
		return err
	}
	fmt.Print(string(out))

	store, err := notion.NewClient(cfg.Store)
	if err != nil {
		return err
	}
	index, err := store.LoadIndex(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("database rows: %d\n", index.Rows())
	fmt.Println("ok")
	return nil
}
