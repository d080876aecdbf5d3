// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"encoding/json"
	"testing"
)

func TestDecodeRecords(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		keys    []string
		want    int
		wantErr bool
	}{
		{
			name: "bare array",
			raw:  `[{"a":1},{"a":2},{"a":3}]`,
			keys: []string{"result"},
			want: 3,
		},
		{
			name: "wrapped under first key",
			raw:  `{"result":[{"a":1},{"a":2}]}`,
			keys: []string{"result", "results"},
			want: 2,
		},
		{
			name: "wrapped under later key",
			raw:  `{"items":[{"a":1}]}`,
			keys: []string{"result", "results", "items"},
			want: 1,
		},
		{
			name: "keys checked in order",
			raw:  `{"result":[{"a":1}],"items":[{"a":1},{"a":2}]}`,
			keys: []string{"result", "items"},
			want: 1,
		},
		{
			name: "bare object is a single record",
			raw:  `{"keyword":"k","intent":"i"}`,
			keys: []string{"result"},
			want: 1,
		},
		{
			name:    "wrapper key holding non-array is an error",
			raw:     `{"result":{"a":1}}`,
			keys:    []string{"result"},
			wantErr: true,
		},
		{
			name:    "scalar response is an error",
			raw:     `"just text"`,
			keys:    []string{"result"},
			wantErr: true,
		},
		{
			name:    "empty input is an error",
			raw:     "",
			keys:    []string{"result"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRecords(json.RawMessage(tt.raw), tt.keys...)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d records", len(got))
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Fatalf("got %d records, want %d", len(got), tt.want)
			}
		})
	}
}
