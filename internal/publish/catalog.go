// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/landing-engine/pkg/types"
)

const pagesFile = "pages.json"

// PageEntry is one row of the page catalog (public/pages.json), the index
// the landing hub and sitemap are built from.
type PageEntry struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// LoadPages reads the catalog. A missing file is an empty catalog.
func LoadPages(publicDir string) ([]PageEntry, error) {
	data, err := os.ReadFile(filepath.Join(publicDir, pagesFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading page catalog: %w", err)
	}
	var pages []PageEntry
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("parsing page catalog: %w", err)
	}
	return pages, nil
}

// SavePages rewrites the catalog sorted by slug for stable diffs.
func SavePages(publicDir string, pages []PageEntry) error {
	if err := os.MkdirAll(publicDir, 0o755); err != nil {
		return fmt.Errorf("creating public directory: %w", err)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Slug < pages[j].Slug })
	data, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding page catalog: %w", err)
	}
	if err := os.WriteFile(filepath.Join(publicDir, pagesFile), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing page catalog: %w", err)
	}
	return nil
}

// UpdatePages upserts one entry by slug. An existing entry keeps its
// created_at; only updated_at moves.
func UpdatePages(publicDir string, entry PageEntry) error {
	pages, err := LoadPages(publicDir)
	if err != nil {
		return err
	}
	replaced := false
	for i, p := range pages {
		if p.Slug == entry.Slug {
			entry.CreatedAt = p.CreatedAt
			pages[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		pages = append(pages, entry)
	}
	return SavePages(publicDir, pages)
}

// ExtractPageMeta builds a catalog entry from an approved draft. The
// category is the draft's own when present, otherwise inferred from the
// page title; the description falls back to the hero subheadline.
func ExtractPageMeta(c types.Case, d types.Draft, now time.Time) PageEntry {
	category := d.Meta.Category
	if category == "" {
		category = inferCategory(d.Meta.Title)
	}
	description := d.Meta.Description
	if description == "" {
		description = d.Content.Hero.Subheadline
	}
	ts := now.UTC().Format(time.RFC3339)
	slug := d.Meta.Slug
	if slug == "" {
		slug = c.CaseID
	}
	title := d.Meta.Title
	if title == "" {
		title = slug
	}
	return PageEntry{
		Slug:        slug,
		Title:       title,
		Category:    category,
		Description: description,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
}

// inferCategory maps a page title onto the hub's fixed category set.
func inferCategory(title string) string {
	switch {
	case strings.Contains(title, "프리랜서"):
		return "프리랜서"
	case strings.Contains(title, "지인") || strings.Contains(title, "친구"):
		return "지인 · 대여금"
	case strings.Contains(title, "중고") || strings.Contains(title, "사기"):
		return "중고거래 · 사기"
	case strings.Contains(title, "연인") || strings.Contains(title, "헤어"):
		return "연인 · 대여금"
	case strings.Contains(title, "직장") || strings.Contains(title, "동료"):
		return "직장 · 대여금"
	case strings.Contains(title, "건설") || strings.Contains(title, "일용"):
		return "건설 · 일용직"
	case strings.Contains(title, "폐업") || strings.Contains(title, "체불"):
		return "폐업 · 임금체불"
	case strings.Contains(title, "마케팅") || strings.Contains(title, "용역"):
		return "마케팅 · 용역비"
	case strings.Contains(title, "출판") || strings.Contains(title, "외주"):
		return "출판 · 소액 체불"
	case strings.Contains(title, "서비스") || strings.Contains(title, "청소"):
		return "서비스 · 소액 분쟁"
	default:
		return "기타"
	}
}
