// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeRecords extracts a list of records from a model response whose
// top-level shape varies: a bare array, an object wrapping the array under
// one of the accepted keys (checked in order), or a single bare object,
// which counts as a one-element list. Any other shape, or a wrapper key
// holding a non-array, is a decode error — no best-effort coercion beyond
// the documented keys.
func DecodeRecords(raw json.RawMessage, wrapperKeys ...string) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("llm: empty response")
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("llm: decoding array response: %w", err)
		}
		return items, nil

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("llm: decoding object response: %w", err)
		}
		for _, key := range wrapperKeys {
			inner, ok := obj[key]
			if !ok {
				continue
			}
			inner = bytes.TrimSpace(inner)
			if len(inner) == 0 || inner[0] != '[' {
				return nil, fmt.Errorf("llm: wrapper key %q does not hold an array: %s", key, inner)
			}
			var items []json.RawMessage
			if err := json.Unmarshal(inner, &items); err != nil {
				return nil, fmt.Errorf("llm: decoding %q array: %w", key, err)
			}
			return items, nil
		}
		// A bare object with no wrapper key is a single record.
		return []json.RawMessage{trimmed}, nil
	}

	return nil, fmt.Errorf("llm: response is neither an array nor an object: %s", trimmed)
}
