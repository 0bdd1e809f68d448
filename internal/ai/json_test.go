package ai

import (
	"math"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := map[string]string{
		"```json\n[1,2]\n```": "[1,2]",
		"```\n{\"a\":1}```":    `{"a":1}`,
		"  {\"a\":1}  ":        `{"a":1}`,
		"`[]`":                 "[]",
	}

	for input, want := range tests {
		if got := ExtractJSON(input); got != want {
			t.Fatalf("ExtractJSON(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestExtractDelimited(t *testing.T) {
	if got := ExtractDelimited(`Here you go: ["a", "b"] enjoy`, '[', ']'); got != `["a", "b"]` {
		t.Fatalf("unexpected array: %q", got)
	}

	if got := ExtractDelimited("no brackets", '[', ']'); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}

	if got := ExtractDelimited("] reversed [", '[', ']'); got != "" {
		t.Fatalf("expected empty result for reversed pair, got %q", got)
	}
}

func TestCoerceFloat(t *testing.T) {
	if got := CoerceFloat("85%"); got != 85 {
		t.Fatalf("expected 85, got %v", got)
	}
	if got := CoerceFloat(float64(7)); got != 7 {
		t.Fatalf("expected 7, got %v", got)
	}
	if !math.IsNaN(CoerceFloat("high")) {
		t.Fatal("expected NaN for non-numeric string")
	}
	if !math.IsNaN(CoerceFloat(nil)) {
		t.Fatal("expected NaN for nil")
	}
}

func TestCoerceString(t *testing.T) {
	if got := CoerceString("  trimmed "); got != "trimmed" {
		t.Fatalf("unexpected string: %q", got)
	}
	if got := CoerceString(nil); got != "" {
		t.Fatalf("expected empty string for nil, got %q", got)
	}
	if got := CoerceString(float64(3)); got != "3" {
		t.Fatalf("expected json encoding of number, got %q", got)
	}
}
