// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Scores holds the four named review axes, each in [0, 1].
type Scores struct {
	Legal     float64 `json:"legal" yaml:"legal"`
	Tone      float64 `json:"tone" yaml:"tone"`
	Structure float64 `json:"structure" yaml:"structure"`
	SEO       float64 `json:"seo" yaml:"seo"`
}

// Review is one verdict from the reviewer or final-gate role. A fresh Review
// is produced by every call; verdicts are never merged across calls.
type Review struct {
	// Approved reports whether the draft passed this review.
	Approved bool `json:"approved" yaml:"approved"`

	// Reasons lists the reviewer's reasoning in order.
	Reasons []string `json:"reasons" yaml:"reasons"`

	// Scores holds the per-axis scores.
	Scores Scores `json:"scores" yaml:"scores"`

	// FixSuggestions lists concrete revision requests for the fixer.
	FixSuggestions []string `json:"fix_suggestions" yaml:"fix_suggestions"`

	// RiskTags lists risk labels identified by the final gate.
	RiskTags []string `json:"risk_tags,omitempty" yaml:"risk_tags,omitempty"`
}
