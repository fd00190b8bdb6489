// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-scout/internal/arxiv"
	"github.com/pdiddy/paper-scout/internal/enrich"
	"github.com/pdiddy/paper-scout/internal/notion"
	"github.com/pdiddy/paper-scout/internal/pipeline"
	"github.com/pdiddy/paper-scout/internal/secrets"
	"github.com/pdiddy/paper-scout/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	enrichTimeout    = 120 * time.Second
	defaultUserAgent = "paper-scout/0.1"
)

// loadConfig assembles the pipeline configuration from viper, the secrets
// loaded at startup, and any override flags the command declares, and
// rejects configurations the run could not survive.
func loadConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	cfg := types.PipelineConfig{
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   defaultTimeout,
				UserAgent: defaultUserAgent,
			},
			Keywords:     viper.GetStringSlice("search.keywords"),
			LookbackDays: viper.GetInt("search.lookback_days"),
			MaxResults:   viper.GetInt("search.max_results"),
			Categories:   viper.GetStringSlice("search.categories"),
			MaxRetries:   viper.GetInt("search.max_retries"),
		},
		Enrich: types.EnrichConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   enrichTimeout,
				UserAgent: defaultUserAgent,
			},
			ResearchArea: viper.GetString("enrich.research_area"),
			APIKey:       loadedSecrets[secrets.KeyGeminiAPIKey],
		},
		Store: types.StoreConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   defaultTimeout,
				UserAgent: defaultUserAgent,
			},
			Token:      loadedSecrets[secrets.KeyNotionToken],
			DatabaseID: loadedSecrets[secrets.KeyNotionDatabase],
			WriteDelay: viper.GetDuration("store.write_delay"),
		},
		Schedule: types.ScheduleConfig{
			Cron: viper.GetString("schedule.cron"),
		},
	}
	if err := viper.UnmarshalKey("enrich.backends", &cfg.Enrich.Backends); err != nil {
		return cfg, fmt.Errorf("parsing enrich.backends: %w", err)
	}

	if kw, _ := cmd.Flags().GetStringSlice("keywords"); len(kw) > 0 {
		cfg.Search.Keywords = kw
	}
	if days, _ := cmd.Flags().GetInt("lookback-days"); days > 0 {
		cfg.Search.LookbackDays = days
	}
	if max, _ := cmd.Flags().GetInt("max-results"); max > 0 {
		cfg.Search.MaxResults = max
	}

	if len(cfg.Search.Keywords) == 0 {
		return cfg, fmt.Errorf("search.keywords not configured: add keywords to paper-scout.yaml")
	}
	if cfg.Enrich.ResearchArea == "" {
		return cfg, fmt.Errorf("enrich.research_area not configured: describe your research area in paper-scout.yaml")
	}
	if cfg.Enrich.APIKey == "" {
		return cfg, fmt.Errorf("Gemini API key not set: add .secrets/%s or set GEMINI_API_KEY", secrets.KeyGeminiAPIKey)
	}
	if cfg.Store.Token == "" {
		return cfg, fmt.Errorf("Notion token not set: add .secrets/%s or set NOTION_TOKEN", secrets.KeyNotionToken)
	}
	if cfg.Store.DatabaseID == "" {
		return cfg, fmt.Errorf("Notion database ID not set: add .secrets/%s or set NOTION_DATABASE_ID", secrets.KeyNotionDatabase)
	}
	return cfg, nil
}

// buildPipeline wires the concrete search, enrichment, and store clients
// into a runnable pipeline.
func buildPipeline(cmd *cobra.Command, log *zap.Logger) (*pipeline.Pipeline, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	store, err := notion.NewClient(cfg.Store)
	if err != nil {
		return nil, err
	}

	searcher := &arxiv.Client{
		Client: &http.Client{Timeout: cfg.Search.Timeout},
	}

	gemini := &enrich.GeminiBackend{
		APIKey: cfg.Enrich.APIKey,
		Client: &http.Client{Timeout: cfg.Enrich.Timeout},
	}
	engine := enrich.NewEngine(gemini, cfg.Enrich, os.Stderr)

	return pipeline.New(store, searcher, engine, cfg, log), nil
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
