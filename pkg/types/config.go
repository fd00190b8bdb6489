package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-scout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the source search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Keywords are matched as exact phrases, combined with OR.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// LookbackDays bounds how far back (by update date) results are kept
	// (default 1).
	LookbackDays int `json:"lookback_days" yaml:"lookback_days"`

	// MaxResults caps how many entries one search returns (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// Categories is the subject allow-list (default cs.CL, cs.AI, cs.LG).
	// An entry matches when any of its categories is listed.
	Categories []string `json:"categories" yaml:"categories"`

	// MaxRetries bounds retries on transient search failures (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// BackendBudget describes one model in the enrichment fallback ladder.
type BackendBudget struct {
	// Model is the model identifier (e.g. "gemini-2.5-pro").
	Model string `json:"model" yaml:"model"`

	// RPM is the nominal requests-per-minute budget.
	RPM int `json:"rpm" yaml:"rpm"`

	// RPD is the nominal requests-per-day budget.
	RPD int `json:"rpd" yaml:"rpd"`
}

// EnrichConfig holds settings for the enrichment stage.
type EnrichConfig struct {
	HTTPConfig `yaml:",inline"`

	// ResearchArea describes the user's research interests. Sent with every
	// prompt so the model can judge relatedness.
	ResearchArea string `json:"research_area" yaml:"research_area"`

	// APIKey authenticates against the generative AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Backends is the model ladder in priority order. Empty means the
	// built-in default ladder.
	Backends []BackendBudget `json:"backends,omitempty" yaml:"backends,omitempty"`
}

// StoreConfig holds settings for the external structured store.
type StoreConfig struct {
	HTTPConfig `yaml:",inline"`

	// Token is the integration auth token.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`

	// DatabaseID identifies the target database.
	DatabaseID string `json:"database_id,omitempty" yaml:"database_id,omitempty"`

	// WriteDelay is the pause after each record creation, keeping under the
	// store's request-rate ceiling (default 350ms).
	WriteDelay time.Duration `json:"write_delay" yaml:"write_delay"`
}

// ScheduleConfig holds settings for the schedule command.
type ScheduleConfig struct {
	// Cron is the schedule expression (default "0 7 * * *", daily 07:00).
	Cron string `json:"cron" yaml:"cron"`
}

// PipelineConfig groups all component configurations.
type PipelineConfig struct {
	Search   SearchConfig   `json:"search" yaml:"search"`
	Enrich   EnrichConfig   `json:"enrich" yaml:"enrich"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule"`
}
