// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"os"
	"path/filepath"
)

// Built-in role prompts. A prompts directory configured on the pipeline
// overrides these with writer.md / reviewer.md / fixer.md files, so prompt
// iteration does not require a rebuild.

const writerPrompt = "너는 한국어 pSEO 랜딩 페이지 작가다. " +
	"입력된 케이스(topic, relationship, amount, situation, goal)를 바탕으로 " +
	"검색 의도에 맞는 상세 랜딩 페이지를 작성하라. " +
	"결과는 content(hero{headline, subheadline, intro, cta}, sections[{id, title, body}], faq[{question, answer}])와 " +
	"meta(slug, title, description)를 가진 JSON 객체여야 한다. " +
	"headline은 10자 이상, 첫 section body는 50자 이상으로 충분히 구체적으로 써라. " +
	"허위 주장·결과 보장·과장 표현을 쓰지 말고, 일반 정보 제공 톤을 유지하라."

const reviewerPrompt = "너는 한국어 랜딩 페이지 검수자다. " +
	"입력된 draft를 법적 리스크(legal), 톤(tone), 구조(structure), SEO(seo) 관점에서 평가하라. " +
	"결과는 approved(bool), reasons(문자열 배열), scores{legal, tone, structure, seo}(0~1 float), " +
	"fix_suggestions(문자열 배열)를 가진 JSON 객체여야 한다. " +
	"결과 보장·승소 가능성·과장 표현이 있으면 승인하지 말고, 구체적인 수정 제안을 남겨라."

const fixerPrompt = "너는 한국어 랜딩 페이지 교정자다. " +
	"입력된 draft와 review의 reasons/fix_suggestions를 반영해 draft를 수정하라. " +
	"결과는 원본과 동일한 구조(content, meta)의 JSON 객체여야 한다. " +
	"지적되지 않은 부분은 가능한 한 유지하고, 전체 구조를 바꾸지 마라."

// finalGateSuffix is appended to the reviewer prompt for the final gate,
// which judges legal risk more conservatively than the loop reviewer.
const finalGateSuffix = "\n\n[최종 게이트 지침]\n" +
	"- 법적/리스크 관점에서 더 보수적으로 판단한다.\n" +
	"- 허용되지 않는 주장·과장은 모두 거부하고, 위험 태그를 식별한다."

// loadPrompt returns the prompt for one role file, preferring an override
// file in promptsDir when it exists.
func loadPrompt(promptsDir, name, fallback string) string {
	if promptsDir == "" {
		return fallback
	}
	data, err := os.ReadFile(filepath.Join(promptsDir, name))
	if err != nil {
		return fallback
	}
	return string(data)
}
