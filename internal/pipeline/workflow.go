// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pdiddy/landing-engine/pkg/types"
)

// DefaultMaxRounds caps the fix/review loop when the config does not.
const DefaultMaxRounds = 3

// Result aggregates one workflow execution over a single case.
type Result struct {
	// Case is the input case, unmodified.
	Case types.Case `json:"case"`

	// Draft is the final draft. When Status is approved_for_publish the
	// draft passed schema validation and both review stages.
	Draft types.Draft `json:"draft"`

	// Review is the last loop reviewer verdict; nil when the writer hard-failed.
	Review *types.Review `json:"review"`

	// FinalGate is the gate verdict; nil when the gate was never reached.
	FinalGate *types.Review `json:"final_gate"`

	// Rounds counts completed fix/review rounds.
	Rounds int `json:"rounds"`

	// Approved reports loop-level approval.
	Approved bool `json:"approved"`

	// Status is the terminal status for this run.
	Status types.CaseStatus `json:"status"`

	// Issues carries the validation issue map for failed terminals.
	Issues map[string]string `json:"issues,omitempty"`
}

// buildFallback constructs the deterministic fallback draft. Package-level
// var so tests can force the writer_hard_fail path without crafting a case
// whose fallback template misses the length minimums.
var buildFallback = BuildFallbackDraft

// Run executes the page generation workflow for one case: writer with one
// retry and a deterministic fallback, schema validation, the reviewer/fixer
// loop, and the final gate. Every fallback point keeps the last known-valid
// draft rather than propagating a broken one; before any draft has
// validated the bias flips to "do not publish".
//
// Transport and gate-schema errors are returned to the caller; all other
// failures terminate with a descriptive status in the Result.
func Run(ctx context.Context, agents Agents, c types.Case, cfg types.PipelineConfig) (Result, error) {
	caseID := c.CaseID
	if caseID == "" {
		caseID = "case-" + uuid.NewString()
	}
	maxRounds := cfg.MaxRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	errorType := "none"
	writerRetryUsed := false

	// Draft, attempt 1.
	draft, err := agents.Writer.Write(ctx, c, "")
	if err != nil {
		return Result{}, fmt.Errorf("writer: %w", err)
	}
	WriteDebug(cfg.LogsDir, caseID, "writer.try1", draft)
	valid, issues := ValidateDraft(draft)

	// Draft, attempt 2 with the failure explained.
	if !valid {
		writerRetryUsed = true
		retry, err := agents.Writer.Write(ctx, c,
			"previous draft failed validation: content/meta missing or too short")
		if err != nil {
			return Result{}, fmt.Errorf("writer retry: %w", err)
		}
		WriteDebug(cfg.LogsDir, caseID, "writer.try2", retry)
		draft = retry
		valid, issues = ValidateDraft(draft)
	}

	// Deterministic fallback, valid by construction.
	if !valid {
		draft = buildFallback(c)
		WriteDebug(cfg.LogsDir, caseID, "writer.fallback", draft)
		valid, issues = ValidateDraft(draft)
		draft.Warnings = append(draft.Warnings, "writer fallback used")
		errorType = "writer_schema_error"
	}

	// Hard stop: nothing has ever validated, so nothing may publish.
	if !valid {
		errorType = "writer_hard_fail"
		result := Result{
			Case:   c,
			Draft:  draft,
			Status: types.StatusWriterHardFail,
			Issues: issues,
		}
		logRun(cfg, caseID, result, nil, errorType)
		WriteDebug(cfg.LogsDir, caseID, "writer.validation_fail", map[string]any{"issues": issues})
		return result, nil
	}

	if writerRetryUsed && errorType == "none" {
		errorType = "writer_schema_error"
	}

	// Initial review.
	review, err := agents.Reviewer.Review(ctx, draft, ModeInitial)
	if err != nil {
		return Result{}, fmt.Errorf("reviewer: %w", err)
	}
	WriteDebug(cfg.LogsDir, caseID, "round0.reviewer.initial", review)
	approved := review.Approved
	rounds := 0

	// Fix/review loop.
	for !approved && rounds < maxRounds {
		roundIdx := rounds + 1

		outcome := agents.Fixer.Fix(ctx, draft, review)
		if outcome.Failed() {
			WriteDebug(cfg.LogsDir, caseID, fmt.Sprintf("round%d.fixer", roundIdx),
				map[string]any{"error": outcome.Reason})
		} else {
			WriteDebug(cfg.LogsDir, caseID, fmt.Sprintf("round%d.fixer", roundIdx), outcome.Draft)
		}

		fixValid := false
		var fixIssues map[string]string
		if outcome.Failed() {
			fixIssues = map[string]string{"fixer": outcome.Reason}
		} else {
			fixValid, fixIssues = ValidateDraft(*outcome.Draft)
		}

		// A broken revision aborts the loop; the previous draft survives.
		if !fixValid {
			errorType = "fixer_invalid"
			result := Result{
				Case:     c,
				Draft:    draft,
				Review:   &review,
				Rounds:   roundIdx,
				Approved: false,
				Status:   types.StatusFixerFailed,
				Issues:   fixIssues,
			}
			logRun(cfg, caseID, result, &review.Scores, errorType)
			WriteDebug(cfg.LogsDir, caseID, fmt.Sprintf("round%d.fixer.validation_fail", roundIdx),
				map[string]any{"issues": fixIssues})
			return result, nil
		}

		draft = *outcome.Draft
		review, err = agents.Reviewer.Review(ctx, draft, ModeFinal)
		if err != nil {
			return Result{}, fmt.Errorf("reviewer round %d: %w", roundIdx, err)
		}
		WriteDebug(cfg.LogsDir, caseID, fmt.Sprintf("round%d.reviewer.final", roundIdx), review)
		approved = review.Approved

		// Diagnostic bypass only: distinct from a genuine reviewer approval.
		if cfg.Lenient && !approved && review.Scores.Legal >= 0.8 && roundIdx >= 1 {
			approved = true
			review.Reasons = append(review.Reasons,
				"lenient test pass: legal score >= 0.8 after first round.")
		}

		rounds++
	}

	status := types.StatusBlockedByLoop
	var gateReview *types.Review

	if approved {
		gate, err := agents.FinalGate.Check(ctx, draft)
		if err != nil {
			return Result{}, fmt.Errorf("final gate: %w", err)
		}
		gateReview = &gate
		WriteDebug(cfg.LogsDir, caseID, "final_gate", gate)

		safeDraft := draft

		if !gate.Approved {
			status = types.StatusBlockedByFinalGate
		} else {
			status = types.StatusApprovedForPublish

			// One extra fixer pass for the gate's suggestions. A failure
			// here must never downgrade an already-approved page: the
			// pre-gate draft is known valid and ships instead.
			if len(gate.FixSuggestions) > 0 {
				outcome := agents.Fixer.Fix(ctx, draft, gate)
				switch {
				case outcome.Failed():
					draft = safeDraft
					errorType = "post_gate_fix_discarded"
					WriteDebug(cfg.LogsDir, caseID, "final_gate.fixer.exception",
						map[string]any{"error": outcome.Reason})
				default:
					WriteDebug(cfg.LogsDir, caseID, "final_gate.fixer", outcome.Draft)
					if ok, fixIssues := ValidateDraft(*outcome.Draft); ok {
						draft = *outcome.Draft
					} else {
						draft = safeDraft
						errorType = "post_gate_fix_discarded"
						WriteDebug(cfg.LogsDir, caseID, "final_gate.fixer.validation_fail",
							map[string]any{"issues": fixIssues})
					}
				}
			}
		}
	}

	result := Result{
		Case:      c,
		Draft:     draft,
		Review:    &review,
		FinalGate: gateReview,
		Rounds:    rounds,
		Approved:  approved,
		Status:    status,
	}
	logRun(cfg, caseID, result, &review.Scores, errorType)
	return result, nil
}

// logRun appends the structured run record; log failures are reported to
// stderr by AppendReviewLog's caller contract but never fail the run.
func logRun(cfg types.PipelineConfig, caseID string, r Result, scores *types.Scores, errorType string) {
	_ = AppendReviewLog(cfg.LogsDir, ReviewLogEntry{
		CaseID:         caseID,
		Approved:       r.Approved,
		Rounds:         r.Rounds,
		Status:         r.Status,
		Scores:         scores,
		ErrorType:      errorType,
		ModelWriter:    cfg.Writer.Model,
		ModelReviewer:  cfg.Reviewer.Model,
		ModelFixer:     cfg.Fixer.Model,
		ModelFinalGate: cfg.FinalGate.Model,
	})
}
