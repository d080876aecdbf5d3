// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package casegen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/landing-engine/internal/llm"
	"github.com/pdiddy/landing-engine/internal/serp"
	"github.com/pdiddy/landing-engine/pkg/types"
)

// Default sizing for one generation pass, mirroring the production cron
// setup: len(seeds) * keywordsPerSeed * casesPerKeyword cases per run.
const (
	DefaultKeywordsPerSeed = 4
	DefaultCasesPerKeyword = 2
)

// DefaultSeeds are the seed phrases a full cycle starts from when the
// config lists none.
var DefaultSeeds = []string{
	"프리랜서 미수금",
	"지인에게 빌려준 돈 못 받음",
	"카톡으로만 빌려준 돈",
}

// keywordWrapperKeys and caseWrapperKeys are the accepted top-level wrapper
// keys for list responses, in the order they are tried.
var (
	keywordWrapperKeys = []string{"result", "results", "keywords", "items"}
	caseWrapperKeys    = []string{"cases", "result", "results", "items"}
)

const keywordSystemPrompt = "너는 한국어 SERP 기반 롱테일 키워드 플래너다. " +
	"최상위 JSON 배열만 반환하고, 단일 객체나 result 키로 감싸지 말아라."

const caseSystemPrompt = "너는 pSEO 랜딩 케이스를 생성하는 도우미다. " +
	"검색 키워드로 유입될 법한 현실적인 상황(n_cases개)을 JSON 배열로 만들어라. " +
	"각 항목은 case_id(간단 slug), seed, keyword, topic, relationship, amount, situation, goal, " +
	"status='todo', created_at ISO8601, last_run_at=null 필드를 포함한다. " +
	"최소 2개 이상 케이스를 생성하고, 최상위 JSON 배열 리터럴로만 반환하며 result 키로 감싸지 말아라. " +
	"관계/역할을 표현할 때 '클라이언트' 대신 문맥에 맞는 한국어(의뢰인, 고객, 거래 상대방, 지인, 회사, 스타트업, 법인 등)를 사용하라. " +
	"금액(amount)은 seed/SERP 맥락에서 자연스러운 청구액만 사용하고, 변호사 수임료·소송 비용·성공보수·인지대·송달료 등 법률 비용을 새로 만들지 마라. " +
	"지연이자·손해배상은 '추가 청구 가능성' 수준으로만 언급하고, 회수율/성공률/승소 가능성 같은 표현은 사용하지 말라."

// Generator expands seed phrases into keyword candidates and keyword
// candidates into case records.
type Generator struct {
	LLM  llm.Caller
	Serp serp.Fetcher
	Cfg  types.CaseGenConfig

	// Now stamps generated records; tests pin it.
	Now func() time.Time
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now().UTC()
}

func (g *Generator) debugPath(name string) string {
	logsDir := g.Cfg.LogsDir
	if logsDir == "" {
		logsDir = "logs"
	}
	return filepath.Join(logsDir, "debug", name)
}

// KeywordsFromSeed fetches SERP context for the seed and asks the model for
// keyword/intent/score triples. If fewer than 2 items come back the call is
// retried once; the final list is truncated to maxKeywords.
func (g *Generator) KeywordsFromSeed(ctx context.Context, seed string, maxKeywords int) ([]types.Keyword, error) {
	if maxKeywords <= 0 {
		maxKeywords = 10
	}

	serpData, err := g.Serp.Fetch(ctx, seed)
	if err != nil {
		return nil, fmt.Errorf("fetching SERP for seed %q: %w", seed, err)
	}

	payload := map[string]any{
		"seed": seed,
		"serp": serpData,
		"instructions": fmt.Sprintf(
			"아래 seed와 실제 검색 결과(SERP)를 보고, 실제로 사람들이 많이 칠 법한 롱테일 검색어를 "+
				"최소 3개 이상, 최대 %d개까지 뽑아라.\n"+
				`형식: [{"keyword": str, "intent": str, "score": float}, ...]`+"\n"+
				"- keyword: 사용자가 실제로 입력할 법한 자연스러운 검색어\n"+
				"- intent: 사용자가 이 검색으로 알고 싶어하는 것의 요약\n"+
				"- score: 0~1, 우리 랜딩으로 끌고 올 가치(의도 선명도 + 전환 가능성)\n"+
				"- 반드시 JSON 배열 리터럴만 반환하고([ {...}, {...} ]), 최상위에 객체(result 등)를 두지 말 것.\n"+
				"- 단일 객체 하나만 반환하지 말 것.", maxKeywords),
	}

	call := func() ([]json.RawMessage, error) {
		raw, err := g.LLM.CallJSON(ctx, llm.Request{
			Model:           g.Cfg.Keyword.Model,
			SystemPrompt:    keywordSystemPrompt,
			UserPayload:     payload,
			MaxOutputTokens: g.Cfg.Keyword.MaxOutputTokens,
			ReasoningEffort: "medium",
			DebugPath:       g.debugPath("llm_raw_keyword_planner.json"),
		})
		if err != nil {
			return nil, err
		}
		return llm.DecodeRecords(raw, keywordWrapperKeys...)
	}

	records, err := callWithMinItems(call, 2)
	if err != nil {
		return nil, fmt.Errorf("generating keywords for seed %q: %w", seed, err)
	}

	if len(records) > maxKeywords {
		records = records[:maxKeywords]
	}

	var keywords []types.Keyword
	for _, rec := range records {
		var kw types.Keyword
		if err := json.Unmarshal(rec, &kw); err != nil {
			continue
		}
		kw.Seed = seed
		keywords = append(keywords, kw)
	}
	return keywords, nil
}

// CasesFromKeyword asks the model for case records targeting one keyword,
// with the same retry-once-if-too-few policy, and fills default status,
// timestamps, and identifiers for items missing them.
func (g *Generator) CasesFromKeyword(ctx context.Context, kw types.Keyword, nCases int) ([]types.Case, error) {
	if nCases <= 0 {
		nCases = 3
	}

	payload := map[string]any{
		"seed":    kw.Seed,
		"keyword": kw.Keyword,
		"intent":  kw.Intent,
		"n_cases": nCases,
	}

	call := func() ([]json.RawMessage, error) {
		raw, err := g.LLM.CallJSON(ctx, llm.Request{
			Model:           g.Cfg.CaseGen.Model,
			SystemPrompt:    caseSystemPrompt,
			UserPayload:     payload,
			MaxOutputTokens: g.Cfg.CaseGen.MaxOutputTokens,
			DebugPath:       g.debugPath("llm_raw_case_gen.json"),
		})
		if err != nil {
			return nil, err
		}
		return llm.DecodeRecords(raw, caseWrapperKeys...)
	}

	records, err := callWithMinItems(call, 2)
	if err != nil {
		return nil, fmt.Errorf("generating cases for keyword %q: %w", kw.Keyword, err)
	}

	now := g.now().Format(time.RFC3339)
	var cases []types.Case
	for _, rec := range records {
		var c types.Case
		if err := json.Unmarshal(rec, &c); err != nil {
			// Non-object items are skipped, matching the original.
			continue
		}
		if c.CaseID == "" {
			c.CaseID = "case-" + uuid.NewString()
		}
		if c.Seed == "" {
			c.Seed = kw.Seed
		}
		if c.Keyword == "" {
			c.Keyword = kw.Keyword
		}
		if c.Status == "" {
			c.Status = types.StatusTodo
		}
		if c.CreatedAt == "" {
			c.CreatedAt = now
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// callWithMinItems applies the bounded "retry once if fewer than min items"
// policy. The retry result is kept even when it is also short.
func callWithMinItems(call func() ([]json.RawMessage, error), min int) ([]json.RawMessage, error) {
	records, err := call()
	if err != nil {
		return nil, err
	}
	if len(records) < min {
		retry, err := call()
		if err != nil {
			return nil, err
		}
		records = retry
	}
	return records, nil
}

// AppendFromSeeds expands each seed into keywords and cases, appends the new
// cases to the store at path, and returns the newly added cases.
func (g *Generator) AppendFromSeeds(ctx context.Context, seeds []string, keywordsPerSeed, casesPerKeyword int, path string, w io.Writer) ([]types.Case, error) {
	if keywordsPerSeed <= 0 {
		keywordsPerSeed = DefaultKeywordsPerSeed
	}
	if casesPerKeyword <= 0 {
		casesPerKeyword = DefaultCasesPerKeyword
	}

	existing, err := LoadCases(path)
	if err != nil {
		return nil, err
	}

	var added []types.Case
	for _, seed := range seeds {
		keywords, err := g.KeywordsFromSeed(ctx, seed, keywordsPerSeed)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(w, "seed %q: %d keywords\n", seed, len(keywords))

		for _, kw := range keywords {
			cases, err := g.CasesFromKeyword(ctx, kw, casesPerKeyword)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(w, "  keyword %q: %d cases\n", kw.Keyword, len(cases))
			added = append(added, cases...)
		}
	}

	combined := append(existing, added...)
	if err := SaveCases(path, combined); err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "appended %d cases (%d total)\n", len(added), len(combined))
	return added, nil
}
