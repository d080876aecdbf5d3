// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// lastmodLayout is the fixed-offset timestamp format search engines expect.
const lastmodLayout = "2006-01-02T15:04:05+00:00"

type sitemapURL struct {
	XMLName    xml.Name `xml:"url"`
	Loc        string   `xml:"loc"`
	Lastmod    string   `xml:"lastmod"`
	Changefreq string   `xml:"changefreq"`
	Priority   string   `xml:"priority"`
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// BuildSitemap regenerates public/sitemap.xml from the page catalog. The
// calculator root and the guide hub get fixed high-priority entries; every
// cataloged page follows at monthly/0.64.
func BuildSitemap(publicDir, baseURL string, now time.Time) (string, error) {
	pages, err := LoadPages(publicDir)
	if err != nil {
		return "", err
	}

	baseURL = strings.TrimRight(baseURL, "/")
	nowStr := now.UTC().Format(lastmodLayout)

	set := urlset{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: baseURL + "/", Lastmod: nowStr, Changefreq: "weekly", Priority: "1.0"},
			{Loc: baseURL + "/index.html", Lastmod: nowStr, Changefreq: "weekly", Priority: "0.9"},
		},
	}

	for _, p := range pages {
		if p.Slug == "" {
			continue
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        fmt.Sprintf("%s/%s.html", baseURL, p.Slug),
			Lastmod:    pageLastmod(p, nowStr),
			Changefreq: "monthly",
			Priority:   "0.64",
		})
	}

	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding sitemap: %w", err)
	}
	doc := xml.Header + string(data) + "\n"

	target := filepath.Join(publicDir, "sitemap.xml")
	if err := os.WriteFile(target, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("writing sitemap: %w", err)
	}
	return target, nil
}

// pageLastmod normalizes a catalog timestamp to the sitemap layout,
// preferring updated_at over created_at.
func pageLastmod(p PageEntry, fallback string) string {
	ts := p.UpdatedAt
	if ts == "" {
		ts = p.CreatedAt
	}
	if len(ts) >= 19 && strings.Contains(ts, "T") {
		return ts[:19] + "+00:00"
	}
	return fallback
}
