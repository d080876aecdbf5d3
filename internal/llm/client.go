// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm is the gateway to the hosted language model API. Every call
// sends a system prompt plus a structured user payload and must come back as
// non-empty JSON; empty objects and arrays count as failed generations.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/pdiddy/landing-engine/pkg/types"
)

// jsonHint is appended to every system prompt so models that ignore the
// response_format parameter still answer in bare JSON.
const jsonHint = "\n\n[FORMAT] 모든 응답은 JSON 형식이어야 하며, 다른 텍스트를 포함하지 마십시오." +
	" 반드시 json으로만 응답하십시오."

// Request describes one JSON-mode chat completion.
type Request struct {
	// Model is the model identifier.
	Model string

	// SystemPrompt is the system role prompt.
	SystemPrompt string

	// UserPayload is the user message: a string is sent verbatim, anything
	// else is serialized to JSON with a format hint attached.
	UserPayload any

	// Temperature is the sampling temperature; nil leaves the model default.
	Temperature *float64

	// TopP is the nucleus-sampling parameter (default 1.0).
	TopP float64

	// MaxOutputTokens caps the completion length.
	MaxOutputTokens int

	// ReasoningEffort optionally requests a reasoning-effort level
	// (e.g. "high") on models that support it.
	ReasoningEffort string

	// DebugPath optionally dumps the raw response and a usage summary to
	// this file (plus a sibling .usage.json).
	DebugPath string
}

// Caller is the surface stage packages depend on, so tests can mock the
// model without a network.
type Caller interface {
	CallJSON(ctx context.Context, req Request) (json.RawMessage, error)
}

// Client calls the chat completions API in JSON mode.
type Client struct {
	api openai.Client
}

// NewClient builds a Client from connection settings. It fails when no API
// credential is configured.
func NewClient(cfg types.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: no API key configured (set OPENAI_API_KEY or .secrets/openai-api-key)")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{api: openai.NewClient(opts...)}, nil
}

// CallJSON performs one JSON-mode completion and returns the parsed body as
// raw JSON. It fails on an empty body, a non-JSON body, or a body that
// parses to an empty object or array.
func (c *Client) CallJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	userMessage, err := encodeUserPayload(req.UserPayload)
	if err != nil {
		return nil, fmt.Errorf("llm: encoding user payload: %w", err)
	}

	topP := req.TopP
	if topP <= 0 {
		topP = 1.0
	}
	maxTokens := req.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt + jsonHint),
			openai.UserMessage(userMessage),
		},
		TopP:                openai.Float(topP),
		MaxCompletionTokens: openai.Int(int64(maxTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.ReasoningEffort != "" {
		params.ReasoningEffort = shared.ReasoningEffort(req.ReasoningEffort)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		// Some models reject a custom temperature outright; retry once
		// without it, as the original client did.
		if req.Temperature != nil && isTemperatureUnsupported(err) {
			params.Temperature = param.Opt[float64]{}
			resp, err = c.api.Chat.Completions.New(ctx, params)
		}
		if err != nil {
			return nil, fmt.Errorf("llm: chat completion: %w", err)
		}
	}

	if req.DebugPath != "" {
		writeDebugDump(req.DebugPath, resp)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm: response has no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("llm: empty response body")
	}

	raw, err := parseNonEmptyJSON(content)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// parseNonEmptyJSON validates that content is JSON and not an empty object
// or array. The offending content is included in the error for diagnosis.
func parseNonEmptyJSON(content string) (json.RawMessage, error) {
	var parsed any
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("llm: response is not valid JSON: %s", content)
	}
	switch v := parsed.(type) {
	case map[string]any:
		if len(v) == 0 {
			return nil, fmt.Errorf("llm: response is an empty object")
		}
	case []any:
		if len(v) == 0 {
			return nil, fmt.Errorf("llm: response is an empty array")
		}
	}
	return json.RawMessage(content), nil
}

// encodeUserPayload turns the payload into the user message string. Objects
// get a format hint field so the model keeps to pure JSON.
func encodeUserPayload(payload any) (string, error) {
	if s, ok := payload.(string); ok {
		return s, nil
	}
	if m, ok := payload.(map[string]any); ok {
		withHint := make(map[string]any, len(m)+1)
		for k, v := range m {
			withHint[k] = v
		}
		withHint["_format"] = "respond with pure JSON only, no extra text."
		payload = withHint
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// isTemperatureUnsupported matches the API error for models that do not
// allow temperature overrides.
func isTemperatureUnsupported(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "temperature") && strings.Contains(msg, "unsupported")
}

// writeDebugDump saves the raw API response and a usage summary next to it.
// Dump failures are ignored; debugging must never fail a generation.
func writeDebugDump(path string, resp *openai.ChatCompletion) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	_ = os.WriteFile(path, []byte(resp.RawJSON()), 0o644)

	summary := map[string]any{
		"completion_tokens": resp.Usage.CompletionTokens,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"total_tokens":      resp.Usage.TotalTokens,
	}
	if len(resp.Choices) > 0 {
		summary["finish_reason"] = resp.Choices[0].FinishReason
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return
	}
	usagePath := strings.TrimSuffix(path, filepath.Ext(path)) + ".usage.json"
	_ = os.WriteFile(usagePath, data, 0o644)
}
