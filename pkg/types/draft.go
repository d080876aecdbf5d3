// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Draft is the evolving page content produced by the writer and fixer roles.
// A draft is replaced wholesale on each revision, never partially mutated, so
// validation always runs against a single snapshot.
type Draft struct {
	// Content holds the narrative blocks of the page.
	Content Content `json:"content" yaml:"content"`

	// Meta holds the page metadata used for the catalog and <head>.
	Meta Meta `json:"meta" yaml:"meta"`

	// Fallback marks a draft built from the deterministic template after
	// repeated writer failures.
	Fallback bool `json:"_fallback,omitempty" yaml:"_fallback,omitempty"`

	// Warnings records non-fatal repairs applied to the writer output, such
	// as a filled-in empty skeleton.
	Warnings []string `json:"_warnings,omitempty" yaml:"_warnings,omitempty"`
}

// Content is the narrative body of a landing page.
type Content struct {
	Hero       Hero       `json:"hero" yaml:"hero"`
	Sections   []Section  `json:"sections" yaml:"sections"`
	FAQ        []FAQItem  `json:"faq" yaml:"faq"`
	Disclaimer Disclaimer `json:"disclaimer,omitempty" yaml:"disclaimer,omitempty"`
}

// Hero is the headline block at the top of a page.
type Hero struct {
	Headline    string `json:"headline" yaml:"headline"`
	Subheadline string `json:"subheadline" yaml:"subheadline"`
	Intro       string `json:"intro,omitempty" yaml:"intro,omitempty"`
	CTA         string `json:"cta,omitempty" yaml:"cta,omitempty"`
}

// Section is one titled body block, rendered in order.
type Section struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
}

// FAQItem is one question/answer pair.
type FAQItem struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Disclaimer carries optional page-specific disclaimer overrides. The
// renderer falls back to fixed texts when a field is empty.
type Disclaimer struct {
	Legal   string `json:"legal,omitempty" yaml:"legal,omitempty"`
	Privacy string `json:"privacy,omitempty" yaml:"privacy,omitempty"`
}

// Meta is the page metadata block.
type Meta struct {
	// Slug is the unique catalog key and URL path component.
	Slug string `json:"slug" yaml:"slug"`

	// Title is the page title.
	Title string `json:"title" yaml:"title"`

	// Description is the meta description.
	Description string `json:"description" yaml:"description"`

	// Category is an optional catalog grouping; inferred from the title
	// when absent.
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}
