package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/listingdesk/internal/webhook"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"incomplete data", fmt.Errorf("%w: produse needs a manifest sku", ErrIncompleteData), "NAV001"},
		{"not found", fmt.Errorf("%w: order %q", ErrNotFound, "12"), "NAV002"},
		{"no edit buffer", ErrNoEditBuffer, "NAV003"},
		{"unknown view", fmt.Errorf("%w: %q", ErrUnknownView, "x"), "NAV004"},
		{"stale navigation", ErrStaleNavigation, "NAV005"},
		{"export blocked", ErrExportBlocked, "VAL001"},
		{"too many images", fmt.Errorf("%w: at most 5", ErrTooManyImages), "VAL002"},
		{"missing files", ErrMissingFiles, "VAL003"},
		{"webhook missing file", webhook.ErrMissingFile, "VAL003"},
		{"invalid payload", fmt.Errorf("%w: empty", ErrInvalidPayload), "VAL004"},
		{"empty export", ErrEmptyExport, "VAL005"},
		{"access code", ErrNoAccessCode, "VAL006"},
		{"automation limiter", ErrTooManyAutomations, "RATE001"},
		{"render panic", fmt.Errorf("%w: boom", ErrRenderPanic), "SYS001"},
		{"cancelled", fmt.Errorf("generate title: %w", context.Canceled), "SYS002"},
		{"save failed", ErrSaveFailed, "SYS003"},
		{"connection refused", errors.New(`Post "http://x": dial tcp: connection refused`), "NET001"},
		{"deadline", fmt.Errorf("translate: %w", context.DeadlineExceeded), "NET002"},
		{"status not success", fmt.Errorf("%w: asin invalid", webhook.ErrStatusNotSuccess), "NET003"},
		{"malformed", webhook.ErrMalformedResponse, "NET004"},
		{"not configured", webhook.ErrEndpointNotConfigured, "NET005"},
		{"api error", &webhook.APIError{Endpoint: "save", StatusCode: 500, Status: "500 Internal Server Error"}, "NET006"},
		{"case insensitive", errors.New("RATE LIMIT exceeded"), "RATE001"},
		{"unknown error returns default", errors.New("some random failure"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err); got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrNoEditBuffer)
	want := "Niciun produs nu este deschis pentru editare (Cod: NAV003). Deschideți un produs din lista paletului"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrExportBlocked, true},
		{"unknown error is not user facing", errors.New("xyz"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	if got := NewUserError(nil); got != nil {
		t.Errorf("NewUserError(nil) = %v, want nil", got)
	}

	tech := fmt.Errorf("save: %w", ErrSaveFailed)
	ue := NewUserError(tech)
	if ue.Error() != "Modificările nu au putut fi salvate" {
		t.Errorf("Error() = %q, want user message", ue.Error())
	}
	if !errors.Is(ue, ErrSaveFailed) {
		t.Error("Unwrap() should expose the technical error")
	}
}
