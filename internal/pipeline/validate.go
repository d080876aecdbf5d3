// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one case through the page generation workflow:
// writer, draft validation with retry and fallback, the reviewer/fixer loop,
// and the final gate.
package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/landing-engine/pkg/types"
)

const (
	minHeadlineLen  = 10
	minFirstBodyLen = 50
)

// ValidateDraft checks a draft against the minimum page schema. All checks
// run independently; every violation lands in the issue map and validity is
// "zero issues". The same validator gates writer and fixer output.
func ValidateDraft(d types.Draft) (bool, map[string]string) {
	issues := make(map[string]string)

	if trimmedLen(d.Content.Hero.Headline) < minHeadlineLen {
		issues["headline"] = "headline too short (<10) or missing"
	}
	if len(d.Content.Sections) == 0 {
		issues["sections"] = "no sections"
	}
	firstBody := ""
	if len(d.Content.Sections) > 0 {
		firstBody = d.Content.Sections[0].Body
	}
	if trimmedLen(firstBody) < minFirstBodyLen {
		issues["first_section_body"] = "first section body too short (<50) or missing"
	}
	if d.Meta.Slug == "" {
		issues["slug"] = "slug missing"
	}
	if d.Meta.Title == "" {
		issues["title"] = "title missing"
	}
	if d.Meta.Description == "" {
		issues["description"] = "description missing"
	}

	return len(issues) == 0, issues
}

// trimmedLen counts runes after trimming surrounding whitespace, so Korean
// text is measured in characters, not bytes.
func trimmedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
