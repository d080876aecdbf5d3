// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"encoding/xml"
	"os"
	"strings"
	"testing"
	"time"
)

func TestBuildSitemap(t *testing.T) {
	dir := t.TempDir()
	if err := SavePages(dir, []PageEntry{
		{Slug: "guide-a", UpdatedAt: "2026-02-10T08:30:00Z"},
		{Slug: "guide-b", CreatedAt: "2026-01-05T00:00:00Z"},
		{Slug: ""},
	}); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	path, err := BuildSitemap(dir, "https://ddein-don.com/", now)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var set urlset
	if err := xml.Unmarshal(data, &set); err != nil {
		t.Fatal(err)
	}
	if len(set.URLs) != 4 {
		t.Fatalf("got %d urls, want 4 (empty slug skipped)", len(set.URLs))
	}

	root := set.URLs[0]
	if root.Loc != "https://ddein-don.com/" || root.Priority != "1.0" || root.Changefreq != "weekly" {
		t.Errorf("root entry = %+v", root)
	}
	hub := set.URLs[1]
	if hub.Loc != "https://ddein-don.com/index.html" || hub.Priority != "0.9" {
		t.Errorf("hub entry = %+v", hub)
	}

	pageA := set.URLs[2]
	if pageA.Loc != "https://ddein-don.com/guide-a.html" {
		t.Errorf("page loc = %q", pageA.Loc)
	}
	if pageA.Lastmod != "2026-02-10T08:30:00+00:00" {
		t.Errorf("page lastmod = %q", pageA.Lastmod)
	}
	if pageA.Changefreq != "monthly" || pageA.Priority != "0.64" {
		t.Errorf("page entry = %+v", pageA)
	}

	// guide-b has no updated_at; created_at is used.
	if set.URLs[3].Lastmod != "2026-01-05T00:00:00+00:00" {
		t.Errorf("created_at fallback lastmod = %q", set.URLs[3].Lastmod)
	}

	if !strings.HasPrefix(string(data), xml.Header) {
		t.Error("missing XML declaration")
	}
}

func TestBuildSitemapEmptyCatalog(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	path, err := BuildSitemap(dir, "https://ddein-don.com", now)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var set urlset
	if err := xml.Unmarshal(data, &set); err != nil {
		t.Fatal(err)
	}
	if len(set.URLs) != 2 {
		t.Errorf("got %d urls, want the two fixed entries", len(set.URLs))
	}
	for _, u := range set.URLs {
		if u.Lastmod != "2026-03-01T12:00:00+00:00" {
			t.Errorf("lastmod = %q", u.Lastmod)
		}
	}
}

func TestPageLastmodMalformedTimestamp(t *testing.T) {
	got := pageLastmod(PageEntry{UpdatedAt: "not-a-time"}, "2026-03-01T12:00:00+00:00")
	if got != "2026-03-01T12:00:00+00:00" {
		t.Errorf("got %q, want fallback", got)
	}
}
