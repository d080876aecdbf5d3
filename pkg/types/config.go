// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "landing-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LLMConfig holds connection settings for the hosted language model API.
type LLMConfig struct {
	// APIKey is the authentication key. Calls fail when it is empty.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint; tests point it at a local server.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// ModelConfig holds the model selection for one LLM role.
type ModelConfig struct {
	// Model is the model identifier (e.g. "gpt-5-mini").
	Model string `json:"model" yaml:"model"`

	// MaxOutputTokens caps the completion length (default 8000).
	MaxOutputTokens int `json:"max_output_tokens" yaml:"max_output_tokens"`
}

// SerpConfig holds settings for the search-results gateway.
type SerpConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the SERP API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Endpoint is the SERP API URL (e.g. "https://api.serpapi.com/search").
	Endpoint string `json:"endpoint" yaml:"endpoint"`

	// ResultCount is the number of organic results to request (default 10).
	ResultCount int `json:"result_count" yaml:"result_count"`

	// Language and Country localize the query (defaults "ko" / "kr").
	Language string `json:"language" yaml:"language"`
	Country  string `json:"country" yaml:"country"`
}

// PipelineConfig holds settings for the page generation workflow. It is
// passed explicitly into the workflow entry point so tests can override the
// round cap and lenient mode without shared state.
type PipelineConfig struct {
	// Writer, Reviewer, Fixer, and FinalGate select the model per role.
	Writer    ModelConfig `json:"writer" yaml:"writer"`
	Reviewer  ModelConfig `json:"reviewer" yaml:"reviewer"`
	Fixer     ModelConfig `json:"fixer" yaml:"fixer"`
	FinalGate ModelConfig `json:"final_gate" yaml:"final_gate"`

	// MaxRounds caps the fix/review loop (default 3).
	MaxRounds int `json:"max_rounds" yaml:"max_rounds"`

	// Lenient enables the diagnostic approval bypass: an unapproved draft
	// with a legal score >= 0.8 after the first round is force-approved.
	// Intended for automated end-to-end runs only.
	Lenient bool `json:"lenient" yaml:"lenient"`

	// LogsDir is the directory for the review log and raw debug dumps
	// (default "logs").
	LogsDir string `json:"logs_dir" yaml:"logs_dir"`

	// PromptsDir optionally overrides the built-in role prompts with
	// files named writer.md, reviewer.md, and fixer.md.
	PromptsDir string `json:"prompts_dir,omitempty" yaml:"prompts_dir,omitempty"`
}

// CaseGenConfig holds settings for keyword and case generation.
type CaseGenConfig struct {
	// Keyword and CaseGen select the model per generation role.
	Keyword ModelConfig `json:"keyword" yaml:"keyword"`
	CaseGen ModelConfig `json:"case_gen" yaml:"case_gen"`

	// CasesFile is the JSONL case store path (default "cases.jsonl").
	CasesFile string `json:"cases_file" yaml:"cases_file"`

	// Seeds lists the default seed phrases for a full cycle.
	Seeds []string `json:"seeds" yaml:"seeds"`

	// KeywordsPerSeed and CasesPerKeyword size one generation pass.
	KeywordsPerSeed int `json:"keywords_per_seed" yaml:"keywords_per_seed"`
	CasesPerKeyword int `json:"cases_per_keyword" yaml:"cases_per_keyword"`

	// LogsDir is the directory for raw debug dumps (default "logs").
	LogsDir string `json:"logs_dir" yaml:"logs_dir"`
}

// PublishConfig holds settings for rendering and deployment.
type PublishConfig struct {
	// PublicDir is the static output directory (default "public").
	PublicDir string `json:"public_dir" yaml:"public_dir"`

	// BaseURL is the deployed site root used in the sitemap.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// GitPush controls whether the publish step commits and pushes the
	// public directory after a successful deploy.
	GitPush bool `json:"git_push" yaml:"git_push"`

	// LogsDir is the directory for the deploy failure log (default "logs").
	LogsDir string `json:"logs_dir" yaml:"logs_dir"`
}

// RunnerConfig holds settings for the batch driver.
type RunnerConfig struct {
	// MaxCasesPerRun caps how many todo cases one invocation processes
	// (default 10).
	MaxCasesPerRun int `json:"max_cases_per_run" yaml:"max_cases_per_run"`
}

// HistoryConfig holds settings for the run-history index.
type HistoryConfig struct {
	// LogsDir is where the review and failure logs live (default "logs").
	LogsDir string `json:"logs_dir" yaml:"logs_dir"`

	// IndexDir is where the SQLite index lives (default "logs/index").
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// DebuggerConfig holds settings for the deploy-failure diagnosis stage.
type DebuggerConfig struct {
	ModelConfig `yaml:",inline"`

	// LogsDir is where the deploy failure log lives (default "logs").
	LogsDir string `json:"logs_dir" yaml:"logs_dir"`

	// ReportsDir is where diagnosis reports are written (default "reports").
	ReportsDir string `json:"reports_dir" yaml:"reports_dir"`

	// Limit is how many recent failures to analyze per run (default 3).
	Limit int `json:"limit" yaml:"limit"`
}

// Config groups all stage configurations.
type Config struct {
	LLM      LLMConfig      `json:"llm" yaml:"llm"`
	Serp     SerpConfig     `json:"serp" yaml:"serp"`
	Pipeline PipelineConfig `json:"pipeline" yaml:"pipeline"`
	CaseGen  CaseGenConfig  `json:"case_gen" yaml:"case_gen"`
	Publish  PublishConfig  `json:"publish" yaml:"publish"`
	Runner   RunnerConfig   `json:"runner" yaml:"runner"`
	History  HistoryConfig  `json:"history" yaml:"history"`
	Debugger DebuggerConfig `json:"debugger" yaml:"debugger"`
}
