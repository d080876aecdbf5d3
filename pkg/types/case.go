// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the landing-engine pipeline:
// case records, drafts, review verdicts, and per-stage configuration.
package types

// CaseStatus tracks a case's position in the publishing lifecycle. Cases are
// never deleted; they only transition between statuses.
type CaseStatus string

const (
	// StatusTodo marks a case that has not been run yet. An empty status is
	// treated the same way.
	StatusTodo CaseStatus = "todo"

	// StatusApprovedForPublish marks a case whose draft cleared validation,
	// the review loop, and the final gate.
	StatusApprovedForPublish CaseStatus = "approved_for_publish"

	// StatusBlockedByLoop marks a case whose review loop exhausted its round
	// budget without approval.
	StatusBlockedByLoop CaseStatus = "blocked_by_loop"

	// StatusBlockedByFinalGate marks a case the final gate rejected.
	StatusBlockedByFinalGate CaseStatus = "blocked_by_final_gate"

	// StatusWriterHardFail marks a case where even the fallback draft failed
	// validation. No review is performed.
	StatusWriterHardFail CaseStatus = "writer_hard_fail"

	// StatusFixerFailed marks a case aborted because a fixer pass errored or
	// produced an invalid draft mid-loop.
	StatusFixerFailed CaseStatus = "fixer_failed"
)

// Runnable reports whether the run-all driver should process this status.
func (s CaseStatus) Runnable() bool {
	return s == "" || s == StatusTodo
}

// Case is one candidate landing-page subject, persisted as a line in the
// JSONL case store.
type Case struct {
	// CaseID is the unique identifier, also used as the output HTML filename.
	CaseID string `json:"case_id" yaml:"case_id"`

	// Seed is the originating seed phrase.
	Seed string `json:"seed" yaml:"seed"`

	// Keyword is the long-tail search keyword this case targets.
	Keyword string `json:"keyword" yaml:"keyword"`

	// Topic, Relationship, Amount, Situation, and Goal describe the scenario
	// the page addresses (e.g. topic "프리랜서 미수금", amount "150만원").
	Topic        string `json:"topic" yaml:"topic"`
	Relationship string `json:"relationship" yaml:"relationship"`
	Amount       string `json:"amount" yaml:"amount"`
	Situation    string `json:"situation" yaml:"situation"`
	Goal         string `json:"goal" yaml:"goal"`

	// Status is the lifecycle status. Empty means todo.
	Status CaseStatus `json:"status" yaml:"status"`

	// CreatedAt is the creation timestamp in RFC 3339 form.
	CreatedAt string `json:"created_at" yaml:"created_at"`

	// LastRunAt is the timestamp of the last workflow execution, or null if
	// the case has never run.
	LastRunAt *string `json:"last_run_at" yaml:"last_run_at"`
}

// Keyword is one long-tail keyword candidate produced from a seed phrase.
type Keyword struct {
	// Keyword is the search phrase a user would actually type.
	Keyword string `json:"keyword" yaml:"keyword"`

	// Intent summarizes what the searcher wants to learn.
	Intent string `json:"intent" yaml:"intent"`

	// Score is the landing value of the keyword in [0, 1].
	Score float64 `json:"score" yaml:"score"`

	// Seed is the seed phrase the keyword was expanded from.
	Seed string `json:"seed,omitempty" yaml:"seed,omitempty"`
}
