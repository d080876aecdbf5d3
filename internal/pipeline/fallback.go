// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"

	"github.com/pdiddy/landing-engine/pkg/types"
)

// BuildFallbackDraft constructs a conservative draft from the case's own
// fields, with no model call. The fixed template is valid by construction,
// so a case whose writer keeps failing still yields a publishable skeleton.
func BuildFallbackDraft(c types.Case) types.Draft {
	topic := c.Topic
	if topic == "" {
		topic = "케이스"
	}

	slug := c.CaseID
	if slug == "" {
		slug = "fallback-page"
	}
	subheadline := c.Situation
	if subheadline == "" {
		subheadline = "상황에 맞는 대응 가이드"
	}
	situation := c.Situation
	if situation == "" {
		situation = "자세한 상황을 입력하세요."
	}
	amount := c.Amount
	if amount == "" {
		amount = "금액 정보 없음"
	}

	return types.Draft{
		Content: types.Content{
			Hero: types.Hero{
				Headline:    fmt.Sprintf("%s 기본 안내", topic),
				Subheadline: subheadline,
				CTA:         "무료 상담 신청",
			},
			Sections: []types.Section{
				{
					ID:    "overview",
					Title: "상황 개요",
					Body: fmt.Sprintf("현재 상황: %s 금액: %s. 신뢰 가능한 절차에 따라 대응 방법을 안내합니다.",
						situation, amount),
				},
				{
					ID:    "steps",
					Title: "대응 단계",
					Body:  "1) 사실관계 정리 2) 증빙 확보 3) 전문가 상담 4) 합의/조정 또는 법적 절차 검토.",
				},
			},
			FAQ: []types.FAQItem{
				{Question: "어떻게 시작하나요?", Answer: "상담을 통해 상황을 정리한 뒤 맞춤형 대응을 제안합니다."},
				{Question: "법적 위험이 있나요?", Answer: "허위 주장과 과장을 피하고, 사실 기반으로 대응합니다."},
			},
		},
		Meta: types.Meta{
			Slug:        slug,
			Title:       fmt.Sprintf("%s 가이드", topic),
			Description: fmt.Sprintf("%s 상황에 대한 기본 안내", topic),
		},
		Fallback: true,
	}
}
