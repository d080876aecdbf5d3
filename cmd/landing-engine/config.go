// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/landing-engine/internal/llm"
	"github.com/pdiddy/landing-engine/internal/secrets"
	"github.com/pdiddy/landing-engine/internal/serp"
	"github.com/pdiddy/landing-engine/pkg/types"
)

// setConfigDefaults registers the defaults every stage falls back to. A
// config file or LANDING_ENGINE_* environment variables override them.
func setConfigDefaults() {
	viper.SetDefault("pipeline.writer.model", "gpt-5-mini")
	viper.SetDefault("pipeline.reviewer.model", "gpt-5-mini")
	viper.SetDefault("pipeline.fixer.model", "gpt-5-mini")
	viper.SetDefault("pipeline.final_gate.model", "gpt-5.1")
	viper.SetDefault("pipeline.writer.max_output_tokens", 8000)
	viper.SetDefault("pipeline.reviewer.max_output_tokens", 8000)
	viper.SetDefault("pipeline.fixer.max_output_tokens", 8000)
	viper.SetDefault("pipeline.final_gate.max_output_tokens", 8000)
	viper.SetDefault("pipeline.max_rounds", 3)
	viper.SetDefault("pipeline.logs_dir", "logs")

	viper.SetDefault("case_gen.keyword.model", "gpt-5-mini")
	viper.SetDefault("case_gen.case_gen.model", "gpt-5-mini")
	viper.SetDefault("case_gen.keyword.max_output_tokens", 8000)
	viper.SetDefault("case_gen.case_gen.max_output_tokens", 8000)
	viper.SetDefault("case_gen.cases_file", "cases.jsonl")
	viper.SetDefault("case_gen.logs_dir", "logs")

	viper.SetDefault("serp.endpoint", "https://serpapi.com/search")
	viper.SetDefault("serp.result_count", 10)
	viper.SetDefault("serp.language", "ko")
	viper.SetDefault("serp.country", "kr")
	viper.SetDefault("serp.timeout", "30s")

	viper.SetDefault("publish.public_dir", "public")
	viper.SetDefault("publish.base_url", "https://ddein-don.com")
	viper.SetDefault("publish.git_push", false)
	viper.SetDefault("publish.logs_dir", "logs")

	viper.SetDefault("runner.max_cases_per_run", 10)

	viper.SetDefault("history.logs_dir", "logs")
	viper.SetDefault("history.max_results", 20)

	viper.SetDefault("debugger.model", "gpt-5.1")
	viper.SetDefault("debugger.max_output_tokens", 1200)
	viper.SetDefault("debugger.logs_dir", "logs")
	viper.SetDefault("debugger.reports_dir", "reports")
	viper.SetDefault("debugger.limit", 3)
}

func pipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Writer: types.ModelConfig{
			Model:           viper.GetString("pipeline.writer.model"),
			MaxOutputTokens: viper.GetInt("pipeline.writer.max_output_tokens"),
		},
		Reviewer: types.ModelConfig{
			Model:           viper.GetString("pipeline.reviewer.model"),
			MaxOutputTokens: viper.GetInt("pipeline.reviewer.max_output_tokens"),
		},
		Fixer: types.ModelConfig{
			Model:           viper.GetString("pipeline.fixer.model"),
			MaxOutputTokens: viper.GetInt("pipeline.fixer.max_output_tokens"),
		},
		FinalGate: types.ModelConfig{
			Model:           viper.GetString("pipeline.final_gate.model"),
			MaxOutputTokens: viper.GetInt("pipeline.final_gate.max_output_tokens"),
		},
		MaxRounds:  viper.GetInt("pipeline.max_rounds"),
		Lenient:    viper.GetBool("pipeline.lenient"),
		LogsDir:    viper.GetString("pipeline.logs_dir"),
		PromptsDir: viper.GetString("pipeline.prompts_dir"),
	}
}

func caseGenConfig() types.CaseGenConfig {
	return types.CaseGenConfig{
		Keyword: types.ModelConfig{
			Model:           viper.GetString("case_gen.keyword.model"),
			MaxOutputTokens: viper.GetInt("case_gen.keyword.max_output_tokens"),
		},
		CaseGen: types.ModelConfig{
			Model:           viper.GetString("case_gen.case_gen.model"),
			MaxOutputTokens: viper.GetInt("case_gen.case_gen.max_output_tokens"),
		},
		CasesFile:       viper.GetString("case_gen.cases_file"),
		Seeds:           viper.GetStringSlice("case_gen.seeds"),
		KeywordsPerSeed: viper.GetInt("case_gen.keywords_per_seed"),
		CasesPerKeyword: viper.GetInt("case_gen.cases_per_keyword"),
		LogsDir:         viper.GetString("case_gen.logs_dir"),
	}
}

func publishConfig() types.PublishConfig {
	return types.PublishConfig{
		PublicDir: viper.GetString("publish.public_dir"),
		BaseURL:   viper.GetString("publish.base_url"),
		GitPush:   viper.GetBool("publish.git_push"),
		LogsDir:   viper.GetString("publish.logs_dir"),
	}
}

func runnerConfig() types.RunnerConfig {
	return types.RunnerConfig{
		MaxCasesPerRun: viper.GetInt("runner.max_cases_per_run"),
	}
}

func historyConfig() types.HistoryConfig {
	return types.HistoryConfig{
		LogsDir:    viper.GetString("history.logs_dir"),
		IndexDir:   viper.GetString("history.index_dir"),
		MaxResults: viper.GetInt("history.max_results"),
	}
}

func debuggerConfig() types.DebuggerConfig {
	return types.DebuggerConfig{
		ModelConfig: types.ModelConfig{
			Model:           viper.GetString("debugger.model"),
			MaxOutputTokens: viper.GetInt("debugger.max_output_tokens"),
		},
		LogsDir:    viper.GetString("debugger.logs_dir"),
		ReportsDir: viper.GetString("debugger.reports_dir"),
		Limit:      viper.GetInt("debugger.limit"),
	}
}

// llmClient builds the shared LLM gateway. The API key resolves from
// OPENAI_API_KEY, then .secrets/openai-api-key.
func llmClient() (*llm.Client, error) {
	return llm.NewClient(types.LLMConfig{
		APIKey:  secrets.Resolve(loadedSecrets, "OPENAI_API_KEY", "openai-api-key"),
		BaseURL: viper.GetString("llm.base_url"),
	})
}

// serpClient builds the SERP gateway. The key and endpoint resolve from
// SERP_API_KEY / SERP_API_ENDPOINT, then .secrets/.
func serpClient() *serp.Client {
	cfg := types.SerpConfig{
		APIKey:      secrets.Resolve(loadedSecrets, "SERP_API_KEY", "serp-api-key"),
		Endpoint:    viper.GetString("serp.endpoint"),
		ResultCount: viper.GetInt("serp.result_count"),
		Language:    viper.GetString("serp.language"),
		Country:     viper.GetString("serp.country"),
	}
	if ep := secrets.Resolve(loadedSecrets, "SERP_API_ENDPOINT", "serp-endpoint"); ep != "" {
		cfg.Endpoint = ep
	}
	cfg.Timeout = viper.GetDuration("serp.timeout")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &serp.Client{
		HTTP: &http.Client{Timeout: cfg.Timeout},
		Cfg:  cfg,
	}
}
