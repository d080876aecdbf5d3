// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/pdiddy/landing-engine/internal/llm"
	"github.com/pdiddy/landing-engine/pkg/types"
)

// ReviewMode selects the reviewer's framing for one call.
type ReviewMode string

const (
	// ModeInitial reviews a fresh writer draft.
	ModeInitial ReviewMode = "initial"

	// ModeFinal reviews a fixer revision inside the loop.
	ModeFinal ReviewMode = "final"
)

// Writer produces a draft for a case. A non-empty retryReason tells the
// writer why the previous attempt failed validation.
type Writer interface {
	Write(ctx context.Context, c types.Case, retryReason string) (types.Draft, error)
}

// Reviewer judges a draft and returns a verdict.
type Reviewer interface {
	Review(ctx context.Context, d types.Draft, mode ReviewMode) (types.Review, error)
}

// FixOutcome is the explicit result of a fixer pass: either a revised draft
// or a failure reason, never both. Branching on fixer failure is a field
// check, not an error-type filter.
type FixOutcome struct {
	Draft  *types.Draft
	Reason string
}

// Failed reports whether the fixer pass produced no usable draft.
func (o FixOutcome) Failed() bool { return o.Draft == nil }

// Fixer revises a draft according to review feedback.
type Fixer interface {
	Fix(ctx context.Context, d types.Draft, feedback types.Review) FixOutcome
}

// FinalGate is the stricter pre-publication review pass.
type FinalGate interface {
	Check(ctx context.Context, d types.Draft) (types.Review, error)
}

// Agents bundles the four roles for one workflow run.
type Agents struct {
	Writer    Writer
	Reviewer  Reviewer
	Fixer     Fixer
	FinalGate FinalGate
}

// NewLLMAgents wires all four roles to the LLM gateway with the configured
// per-role models.
func NewLLMAgents(caller llm.Caller, cfg types.PipelineConfig) Agents {
	debugDir := filepath.Join(logsDirOrDefault(cfg.LogsDir), "debug")
	return Agents{
		Writer:    &llmWriter{caller: caller, cfg: cfg, debugDir: debugDir},
		Reviewer:  &llmReviewer{caller: caller, cfg: cfg, debugDir: debugDir},
		Fixer:     &llmFixer{caller: caller, cfg: cfg, debugDir: debugDir},
		FinalGate: &llmFinalGate{caller: caller, cfg: cfg, debugDir: debugDir},
	}
}

func logsDirOrDefault(dir string) string {
	if dir == "" {
		return "logs"
	}
	return dir
}

func floatPtr(f float64) *float64 { return &f }

// draftSchema is the response_schema block sent to the writer and fixer.
var draftSchema = map[string]any{
	"required": []string{"content", "meta"},
	"content":  "sections/body/faq 등 상세 랜딩 페이지 구조",
	"meta":     "slug, title, description 등 메타데이터",
}

// --- writer ---

type llmWriter struct {
	caller   llm.Caller
	cfg      types.PipelineConfig
	debugDir string
}

func (w *llmWriter) Write(ctx context.Context, c types.Case, retryReason string) (types.Draft, error) {
	payload := map[string]any{
		"case":            c,
		"response_schema": draftSchema,
	}
	debugName := "llm_raw_writer.json"
	if retryReason != "" {
		payload["retry_reason"] = retryReason
		debugName = "llm_raw_writer_retry.json"
	}

	raw, err := w.caller.CallJSON(ctx, llm.Request{
		Model:           w.cfg.Writer.Model,
		SystemPrompt:    loadPrompt(w.cfg.PromptsDir, "writer.md", writerPrompt),
		UserPayload:     payload,
		Temperature:     floatPtr(0.7),
		MaxOutputTokens: w.cfg.Writer.MaxOutputTokens,
		DebugPath:       filepath.Join(w.debugDir, debugName),
	})
	if err != nil {
		return types.Draft{}, err
	}
	return decodeDraft(raw)
}

// decodeDraft parses a writer/fixer response. A missing content or meta key
// is repaired with an empty skeleton and a recorded warning; validation
// catches the resulting short fields downstream.
func decodeDraft(raw json.RawMessage) (types.Draft, error) {
	if !isObject(raw) {
		return types.Draft{}, fmt.Errorf("writer response is not a JSON object: %s", raw)
	}

	var probe struct {
		Content *types.Content `json:"content"`
		Meta    *types.Meta    `json:"meta"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return types.Draft{}, fmt.Errorf("decoding draft: %w", err)
	}

	var d types.Draft
	if probe.Content != nil {
		d.Content = *probe.Content
	} else {
		d.Warnings = append(d.Warnings, "writer: content missing, filled with empty skeleton.")
	}
	if probe.Meta != nil {
		d.Meta = *probe.Meta
	} else {
		d.Warnings = append(d.Warnings, "writer: meta missing, filled with empty skeleton.")
	}
	return d, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// --- reviewer ---

// reviewSchema is the response_schema block sent to the reviewer.
var reviewSchema = map[string]any{
	"required":        []string{"approved", "reasons", "scores", "fix_suggestions"},
	"scores":          map[string]string{"legal": "float", "tone": "float", "structure": "float", "seo": "float"},
	"fix_suggestions": "list of strings",
}

type llmReviewer struct {
	caller   llm.Caller
	cfg      types.PipelineConfig
	debugDir string
}

func (r *llmReviewer) Review(ctx context.Context, d types.Draft, mode ReviewMode) (types.Review, error) {
	raw, err := r.caller.CallJSON(ctx, llm.Request{
		Model:        r.cfg.Reviewer.Model,
		SystemPrompt: loadPrompt(r.cfg.PromptsDir, "reviewer.md", reviewerPrompt),
		UserPayload: map[string]any{
			"draft":           d,
			"mode":            string(mode),
			"response_schema": reviewSchema,
		},
		Temperature:     floatPtr(0.0),
		MaxOutputTokens: r.cfg.Reviewer.MaxOutputTokens,
		DebugPath:       filepath.Join(r.debugDir, fmt.Sprintf("llm_raw_reviewer_%s.json", mode)),
	})
	if err != nil {
		return types.Review{}, err
	}

	rev, approvedSet, err := decodeReview(raw)
	if err != nil {
		return types.Review{}, err
	}
	// A reviewer that omits the approved flag never silently approves.
	if !approvedSet {
		rev.Approved = false
		if len(rev.Reasons) == 0 {
			rev.Reasons = []string{"missing approved flag from reviewer response; treated as not approved."}
		}
	}
	return rev, nil
}

// decodeReview parses a verdict and reports whether the approved field was
// actually present.
func decodeReview(raw json.RawMessage) (types.Review, bool, error) {
	if !isObject(raw) {
		return types.Review{}, false, fmt.Errorf("review response is not a JSON object: %s", raw)
	}
	var probe struct {
		Approved       *bool        `json:"approved"`
		Reasons        []string     `json:"reasons"`
		Scores         types.Scores `json:"scores"`
		FixSuggestions []string     `json:"fix_suggestions"`
		RiskTags       []string     `json:"risk_tags"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return types.Review{}, false, fmt.Errorf("decoding review: %w", err)
	}
	rev := types.Review{
		Reasons:        probe.Reasons,
		Scores:         probe.Scores,
		FixSuggestions: probe.FixSuggestions,
		RiskTags:       probe.RiskTags,
	}
	if probe.Approved != nil {
		rev.Approved = *probe.Approved
	}
	return rev, probe.Approved != nil, nil
}

// --- fixer ---

type llmFixer struct {
	caller   llm.Caller
	cfg      types.PipelineConfig
	debugDir string
}

func (f *llmFixer) Fix(ctx context.Context, d types.Draft, feedback types.Review) FixOutcome {
	raw, err := f.caller.CallJSON(ctx, llm.Request{
		Model:        f.cfg.Fixer.Model,
		SystemPrompt: loadPrompt(f.cfg.PromptsDir, "fixer.md", fixerPrompt),
		UserPayload: map[string]any{
			"draft":           d,
			"review":          feedback,
			"response_schema": draftSchema,
		},
		Temperature:     floatPtr(0.2),
		MaxOutputTokens: f.cfg.Fixer.MaxOutputTokens,
		DebugPath:       filepath.Join(f.debugDir, "llm_raw_fixer.json"),
	})
	if err != nil {
		return FixOutcome{Reason: fmt.Sprintf("fixer_call_failed: %v", err)}
	}
	revised, err := decodeDraft(raw)
	if err != nil {
		return FixOutcome{Reason: "fixer_return_not_object"}
	}
	return FixOutcome{Draft: &revised}
}

// --- final gate ---

type llmFinalGate struct {
	caller   llm.Caller
	cfg      types.PipelineConfig
	debugDir string
}

func (g *llmFinalGate) Check(ctx context.Context, d types.Draft) (types.Review, error) {
	raw, err := g.caller.CallJSON(ctx, llm.Request{
		Model:        g.cfg.FinalGate.Model,
		SystemPrompt: loadPrompt(g.cfg.PromptsDir, "reviewer.md", reviewerPrompt) + finalGateSuffix,
		UserPayload: map[string]any{
			"draft": d,
			"mode":  "final_gate",
			"response_schema": map[string]any{
				"required":  []string{"approved", "reasons", "risk_tags"},
				"risk_tags": "list of risk labels",
			},
		},
		Temperature:     floatPtr(0.0),
		MaxOutputTokens: g.cfg.FinalGate.MaxOutputTokens,
		ReasoningEffort: "high",
		DebugPath:       filepath.Join(g.debugDir, "llm_raw_final_gate.json"),
	})
	if err != nil {
		return types.Review{}, err
	}

	rev, approvedSet, err := decodeReview(raw)
	if err != nil {
		return types.Review{}, err
	}
	// Unlike the loop reviewer, the gate's output schema is mandatory.
	if !approvedSet {
		return types.Review{}, fmt.Errorf("final gate response has no approved field: %s", raw)
	}
	return rev, nil
}
