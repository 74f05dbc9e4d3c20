// Safehold - Backup Orchestration Configuration Store
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/safehold

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}

type sample struct {
	Name    string   `json:"name" validate:"notblank"`
	Target  string   `json:"target" label:"target URL" validate:"notblank"`
	Sources []string `json:"sources" validate:"min=1,dive,notblank"`
	Mode    string   `json:"mode" validate:"omitempty,oneof=a b"`
	Count   int      `validate:"gte=0"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     sample
		wantFirst string
	}{
		{
			name:  "valid",
			input: sample{Name: "n", Target: "file:///x", Sources: []string{"/a"}},
		},
		{
			name:      "blank name",
			input:     sample{Name: "   ", Target: "file:///x", Sources: []string{"/a"}},
			wantFirst: "name must not be blank",
		},
		{
			name:      "label used for message",
			input:     sample{Name: "n", Sources: []string{"/a"}},
			wantFirst: "target URL must not be blank",
		},
		{
			name:      "empty sources",
			input:     sample{Name: "n", Target: "t"},
			wantFirst: "sources must contain at least 1 entries",
		},
		{
			name:      "blank source entry",
			input:     sample{Name: "n", Target: "t", Sources: []string{"/a", " "}},
			wantFirst: "sources[1] must not be blank",
		},
		{
			name:      "oneof",
			input:     sample{Name: "n", Target: "t", Sources: []string{"/a"}, Mode: "c"},
			wantFirst: "mode must be one of: a b",
		},
		{
			name:      "field name fallback",
			input:     sample{Name: "n", Target: "t", Sources: []string{"/a"}, Count: -1},
			wantFirst: "Count must be greater than or equal to 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if tt.wantFirst == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %q, got nil", tt.wantFirst)
			}
			if got := err.First(); got != tt.wantFirst {
				t.Errorf("First() = %q, want %q", got, tt.wantFirst)
			}
		})
	}
}

func TestStructError_JoinsMessages(t *testing.T) {
	err := ValidateStruct(&sample{})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Fields) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %v", len(err.Fields), err)
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("Error() should join messages, got %q", err.Error())
	}
}
