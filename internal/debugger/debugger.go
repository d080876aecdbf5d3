// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package debugger analyzes recent deploy failures with an LLM and writes
// incremental fix-plan reports.
package debugger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/landing-engine/internal/llm"
	"github.com/pdiddy/landing-engine/internal/publish"
	"github.com/pdiddy/landing-engine/pkg/types"
)

// DefaultLimit is the number of recent failures analyzed per invocation.
const DefaultLimit = 3

const debugSystemPrompt = "너는 배포/코드 실패를 분석하는 코드 디버거다. " +
	"역할: 1) 에러 원인 요약 2) 1~2단계의 수정 계획 " +
	"3) 각 단계별 수정 전/후 코드 블록(diff 요약) 제안. " +
	"한 번에 많은 변경을 제안하지 말고, 작은 수정만 단계적으로 제안하라."

// sourceFiles are the modules most often implicated in deploy failures,
// included verbatim in the analysis context.
var sourceFiles = []string{
	"internal/publish/deploy.go",
	"internal/publish/render.go",
	"internal/runner/runner.go",
	"pkg/types/config.go",
}

// Debugger generates failure analysis reports.
type Debugger struct {
	LLM llm.Caller
	Cfg types.DebuggerConfig
}

// analysis is the debug agent's expected response shape. Alternate key
// names the model tends to use are accepted as fallbacks.
type analysis struct {
	Summary  string            `json:"summary"`
	Analysis string            `json:"analysis"`
	Plan     []json.RawMessage `json:"plan"`
	Steps    []json.RawMessage `json:"steps"`
	Diffs    []json.RawMessage `json:"diffs"`
	Patches  []json.RawMessage `json:"patches"`
}

// Run loads the most recent deploy failures, asks the debug model for a
// root-cause analysis of each, and writes one markdown report per failure.
// A failed analysis is reported and skipped so one bad LLM response does
// not abort the rest.
func (d *Debugger) Run(ctx context.Context, w io.Writer) ([]string, error) {
	limit := d.Cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	failures, err := publish.LoadRecentFailures(d.Cfg.LogsDir, limit)
	if err != nil {
		return nil, err
	}
	if len(failures) == 0 {
		fmt.Fprintln(w, "no deploy failures recorded")
		return nil, nil
	}

	var reports []string
	for _, failure := range failures {
		raw, err := d.LLM.CallJSON(ctx, llm.Request{
			Model:           d.Cfg.Model,
			SystemPrompt:    debugSystemPrompt,
			UserPayload:     buildContext(failure),
			Temperature:     floatPtr(0.0),
			MaxOutputTokens: d.Cfg.MaxOutputTokens,
			ReasoningEffort: "high",
		})
		if err != nil {
			fmt.Fprintf(w, "case %s: analysis failed: %v\n", failure.CaseID, err)
			continue
		}

		var result analysis
		if err := json.Unmarshal(raw, &result); err != nil {
			fmt.Fprintf(w, "case %s: unusable analysis response: %v\n", failure.CaseID, err)
			continue
		}

		path, err := d.writeReport(failure, result)
		if err != nil {
			return reports, err
		}
		fmt.Fprintf(w, "case %s: report written to %s\n", failure.CaseID, path)
		reports = append(reports, path)
	}
	return reports, nil
}

func floatPtr(f float64) *float64 { return &f }

// buildContext assembles the failure record plus the implicated source
// files for the debug model.
func buildContext(failure publish.FailureEntry) map[string]any {
	sources := map[string]string{}
	for _, path := range sourceFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		sources[path] = string(data)
	}
	return map[string]any{
		"failure": failure,
		"sources": sources,
		"notes":   "Focus on minimal fixes; produce short diff plans.",
	}
}

func (d *Debugger) writeReport(failure publish.FailureEntry, result analysis) (string, error) {
	reportsDir := d.Cfg.ReportsDir
	if reportsDir == "" {
		reportsDir = "reports"
	}
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports directory: %w", err)
	}

	caseID := failure.CaseID
	if caseID == "" {
		caseID = "unknown"
	}

	summary := result.Summary
	if summary == "" {
		summary = result.Analysis
	}
	plan := result.Plan
	if len(plan) == 0 {
		plan = result.Steps
	}
	diffs := result.Diffs
	if len(diffs) == 0 {
		diffs = result.Patches
	}

	planJSON, _ := json.MarshalIndent(plan, "", "  ")
	diffsJSON, _ := json.MarshalIndent(diffs, "", "  ")

	report := fmt.Sprintf(`# Code Debug Report for %s

## Failure
- stage: %s
- error: %s

## Root Cause (LLM 추정)
%s

## Plan (small, incremental)
%s

## Suggested Diffs
%s
`, caseID, failure.Stage, failure.ErrorMessage, summary, planJSON, diffsJSON)

	target := filepath.Join(reportsDir, fmt.Sprintf("code_debug_%s.md", caseID))
	if err := os.WriteFile(target, []byte(report), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return target, nil
}
