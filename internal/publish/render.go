// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish turns approved drafts into static HTML, maintains the page
// catalog and sitemap, and performs the deploy step with failure logging.
package publish

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/pdiddy/landing-engine/pkg/types"
)

const (
	defaultLegalDisclaimer   = "이 페이지는 일반 정보 제공이며, 개별 사건에 대한 법률 자문이나 결과 보장이 아닙니다."
	defaultPrivacyDisclaimer = "제공된 정보는 관련 법령과 내부 정책에 따라 필요한 범위에서만 안전하게 처리됩니다."
)

// markdown renders draft body text. Raw HTML in model output is escaped by
// goldmark's default policy.
var markdown = goldmark.New()

// pageTemplate is the fixed landing-page shell. Section bodies and FAQ
// answers arrive pre-rendered from markdown.
var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="ko">
<head>
  <meta charset="utf-8" />
  <title>{{.Meta.Title}}</title>
  <meta name="description" content="{{.Meta.Description}}" />
  <link rel="stylesheet" href="./styles.css" />
</head>
<body>
  <div class="site-shell">
    <header class="site-header">
      <a class="brand" href="./index.html"><span>💸</span>떼인 돈 계산기</a>
      <a class="ghost-link" href="../index.html">메인 계산기</a>
    </header>

    <div class="breadcrumb-wrap">
      <div class="breadcrumb">
        <a href="../index.html">홈</a>
        <span class="breadcrumb-sep">›</span>
        <a href="./index.html">상황별 미수금 가이드</a>
        <span class="breadcrumb-sep">›</span>
        <span class="breadcrumb-current breadcrumb-ellipsis">{{.Meta.Title}}</span>
      </div>
    </div>

    <section class="hero">
      <h1>{{.Hero.Headline}}</h1>
      <p class="subtitle">{{.Hero.Subheadline}}</p>
      <p class="intro">{{.Hero.Intro}}</p>
    </section>
{{range .Sections}}
    <section class="section" id="{{.ID}}">
      <h2>{{.Title}}</h2>
      {{.Body}}
    </section>
{{end}}
    <section class="section">
      <h2>FAQ</h2>
      <div class="faq-notice">
        ※ 아래 답변들은 실제 사례들을 바탕으로 정리한 <strong>일반적인 안내</strong>입니다.<br>
        개별 사건에 그대로 적용되지는 않을 수 있고, 구체적인 결론은 사실관계·증거·법원 판단에 따라 달라질 수 있습니다.
      </div>
      <div class="faq">
{{range .FAQ}}
        <details>
          <summary>{{.Question}}</summary>
          <div>{{.Answer}}</div>
        </details>
{{end}}
      </div>
      <p class="faq-footnote">
        ※ 이 Q&amp;A는 실제 상담을 대신하는 것이 아니라, 비슷한 상황에서 많이 나오는 질문을 정리한 일반적인 안내입니다.
      </p>
    </section>

    <section class="section">
      <h2>떼인 돈 계산기로 금액 확인하기</h2>
      <p>원금과 약정일을 넣어 지연손해금을 계산해 두면 요구액을 명확히 정리할 수 있습니다. 금액을 확인한 뒤 내용증명이나 지급명령 서류를 준비할지 검토해 보세요.</p>
      <a class="cta" href="../index.html">떼인 돈 계산기 열기</a>
      <div class="notice-box">
        이 계산기는 입력하신 값을 기준으로 한 <strong>참고용 시뮬레이션</strong>입니다.<br />
        실제 소송·집행 결과와 다를 수 있으며, 최종 판단은 법률 전문가와 상의해 주세요.
      </div>
    </section>

    <section class="section" aria-label="상황 정리 키트 안내">
      <h2 class="section-title">비슷한 일이 반복될 때를 대비해, 셀프 정리 키트를 준비 중입니다</h2>
      <p>이 페이지와 계산기로 이번 사건을 한 번 정리해 보셨다면, 앞으로 비슷한 상황이 생겨도 같은 틀로 정리할 수 있도록 돕는 '셀프 정리 키트'를 준비하고 있습니다.</p>
      <ul>
        <li>• 사건 요약 &amp; 타임라인 한 장 템플릿</li>
        <li>• 증거·자료 체크리스트</li>
        <li>• 관계·상황별 연락 예시문 모음</li>
        <li>• 전문가 상담이 더 나을 수 있는지 점검하는 레드 라인 체크리스트</li>
      </ul>
    </section>

    <section class="section" id="disclaimer" aria-label="면책 및 법령 안내">
      <h2>면책 및 법령 안내</h2>
      <p>{{.DisclaimerLegal}}</p>
      <p class="fine-print">{{.DisclaimerPrivacy}}</p>
    </section>

    <p class="footer">본 페이지의 안내는 일반적인 절차를 정리한 것으로, 개별 사건에 대한 법률 자문이 아닙니다.</p>
    <p class="footer fine-print">※ 본 서비스는 일반 정보 제공 및 계산 예시일 뿐, 개별 사건에 대한 법률 자문이 아닙니다. 실제 대응은 법률 전문가와 상의해 절차를 결정해 주세요.</p>
  </div>
</body>
</html>
`))

// pageData is the template input for one rendered page.
type pageData struct {
	Meta              types.Meta
	Hero              types.Hero
	Sections          []renderedSection
	FAQ               []renderedFAQ
	DisclaimerLegal   string
	DisclaimerPrivacy string
}

type renderedSection struct {
	ID    string
	Title string
	Body  template.HTML
}

type renderedFAQ struct {
	Question string
	Answer   template.HTML
}

// RenderHTML converts a draft into the final HTML document. Section bodies
// and FAQ answers are treated as markdown.
func RenderHTML(d types.Draft) (string, error) {
	data := pageData{
		Meta:              d.Meta,
		Hero:              d.Content.Hero,
		DisclaimerLegal:   d.Content.Disclaimer.Legal,
		DisclaimerPrivacy: d.Content.Disclaimer.Privacy,
	}
	if data.DisclaimerLegal == "" {
		data.DisclaimerLegal = defaultLegalDisclaimer
	}
	if data.DisclaimerPrivacy == "" {
		data.DisclaimerPrivacy = defaultPrivacyDisclaimer
	}

	for _, s := range d.Content.Sections {
		body, err := renderMarkdown(s.Body)
		if err != nil {
			return "", fmt.Errorf("rendering section %q: %w", s.ID, err)
		}
		data.Sections = append(data.Sections, renderedSection{ID: s.ID, Title: s.Title, Body: body})
	}
	for _, f := range d.Content.FAQ {
		answer, err := renderMarkdown(f.Answer)
		if err != nil {
			return "", fmt.Errorf("rendering FAQ answer: %w", err)
		}
		data.FAQ = append(data.FAQ, renderedFAQ{Question: f.Question, Answer: answer})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing page template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// SaveHTML writes the rendered document under the public directory, named by
// the page (case) identifier. It returns the written path.
func SaveHTML(publicDir, pageID, html string) (string, error) {
	if err := os.MkdirAll(publicDir, 0o755); err != nil {
		return "", fmt.Errorf("creating public directory: %w", err)
	}
	target := filepath.Join(publicDir, pageID+".html")
	if err := os.WriteFile(target, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", target, err)
	}
	return target, nil
}
