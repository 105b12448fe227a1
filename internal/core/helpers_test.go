package core

import (
	"encoding/json"
	"testing"
)

func TestAsString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"  B0TEST  ", "B0TEST"},
		{float64(12), "12"},
		{12.5, "12.5"},
		{json.Number("7"), "7"},
		{true, "true"},
		{[]any{1}, ""},
	}

	for _, tt := range tests {
		if got := asString(tt.in); got != tt.want {
			t.Errorf("asString(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{float64(3), 3},
		{2.9, 2},
		{"4", 4},
		{" 5 ", 5},
		{"6.0", 6},
		{"many", 0},
		{nil, 0},
		{true, 1},
	}

	for _, tt := range tests {
		if got := asInt(tt.in); got != tt.want {
			t.Errorf("asInt(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAsBool(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{true, true},
		{false, false},
		{"true", true},
		{"DA", true},
		{"1", true},
		{"0", false},
		{"", false},
		{float64(1), true},
		{float64(0), false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := asBool(tt.in); got != tt.want {
			t.Errorf("asBool(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOptionalBool(t *testing.T) {
	rec := map[string]any{"a": false, "b": "true", "c": nil}

	if got := optionalBool(rec, "a"); got == nil || *got {
		t.Errorf("optionalBool(a) = %v, want explicit false", got)
	}
	if got := optionalBool(rec, "b"); got == nil || !*got {
		t.Errorf("optionalBool(b) = %v, want true", got)
	}
	if got := optionalBool(rec, "c"); got != nil {
		t.Errorf("optionalBool(c) = %v, want nil for null", *got)
	}
	if got := optionalBool(rec, "missing"); got != nil {
		t.Errorf("optionalBool(missing) = %v, want nil", *got)
	}
}

func TestField_FirstKeyWins(t *testing.T) {
	rec := map[string]any{"listingReady": nil, "listingready": true}
	v, ok := field(rec, "listingReady", "listingready")
	if !ok || v != true {
		t.Errorf("field() = %v, %v; want true, true", v, ok)
	}
}
