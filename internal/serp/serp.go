// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package serp queries a search-results API and normalizes the response into
// top results, related searches, and "people also ask" questions.
package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/landing-engine/internal/httputil"
	"github.com/pdiddy/landing-engine/pkg/types"
)

// Result is one normalized organic search result.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Data is the normalized SERP payload handed to the keyword generator.
type Data struct {
	TopResults      []Result `json:"top_results"`
	RelatedSearches []string `json:"related_searches"`
	PeopleAlsoAsk   []string `json:"people_also_ask"`
}

// Fetcher is the surface the keyword generator depends on, so tests can
// supply canned SERP data.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (Data, error)
}

// Client queries the configured SERP endpoint.
type Client struct {
	HTTP *http.Client
	Cfg  types.SerpConfig
}

// Fetch queries the SERP API for one phrase. It fails when the API key or
// endpoint is not configured.
func (c *Client) Fetch(ctx context.Context, query string) (Data, error) {
	if c.Cfg.APIKey == "" || c.Cfg.Endpoint == "" {
		return Data{}, fmt.Errorf("serp: API key or endpoint not configured (set SERP_API_KEY / SERP_API_ENDPOINT)")
	}

	num := c.Cfg.ResultCount
	if num <= 0 {
		num = 10
	}
	lang := c.Cfg.Language
	if lang == "" {
		lang = "ko"
	}
	country := c.Cfg.Country
	if country == "" {
		country = "kr"
	}

	params := url.Values{
		"q":       {query},
		"num":     {fmt.Sprintf("%d", num)},
		"hl":      {lang},
		"gl":      {country},
		"api_key": {c.Cfg.APIKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Data{}, fmt.Errorf("serp: creating request: %w", err)
	}
	if c.Cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.Cfg.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return Data{}, fmt.Errorf("serp: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Data{}, fmt.Errorf("serp: API returned HTTP %d", resp.StatusCode)
	}

	var raw rawResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Data{}, fmt.Errorf("serp: parsing response: %w", err)
	}

	return normalize(raw, num), nil
}

// rawResponse mirrors the vendor payload loosely; engines disagree on field
// names, so alternates are kept and collapsed in normalize.
type rawResponse struct {
	OrganicResults  []rawOrganic    `json:"organic_results"`
	RelatedSearches []relatedSearch `json:"related_searches"`
	PeopleAlsoAsk   []rawQuestion   `json:"people_also_ask"`
}

type rawOrganic struct {
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	Description string `json:"description"`
	Link        string `json:"link"`
	URL         string `json:"url"`
}

type rawQuestion struct {
	Question string `json:"question"`
}

// relatedSearch accepts both the bare-string and the {"query": ...} forms
// engines return for related searches.
type relatedSearch struct {
	Value string
}

func (r *relatedSearch) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Value = s
		return nil
	}
	var obj struct {
		Query string `json:"query"`
		Text  string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Query != "" {
		r.Value = obj.Query
	} else {
		r.Value = obj.Text
	}
	return nil
}

func normalize(raw rawResponse, num int) Data {
	var data Data

	organic := raw.OrganicResults
	if len(organic) > num {
		organic = organic[:num]
	}
	for _, o := range organic {
		snippet := o.Snippet
		if snippet == "" {
			snippet = o.Description
		}
		link := o.Link
		if link == "" {
			link = o.URL
		}
		data.TopResults = append(data.TopResults, Result{Title: o.Title, Snippet: snippet, URL: link})
	}

	for _, r := range raw.RelatedSearches {
		if r.Value != "" {
			data.RelatedSearches = append(data.RelatedSearches, r.Value)
		}
	}
	for _, q := range raw.PeopleAlsoAsk {
		if q.Question != "" {
			data.PeopleAlsoAsk = append(data.PeopleAlsoAsk, q.Question)
		}
	}
	return data
}
