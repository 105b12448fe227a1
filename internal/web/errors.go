package web

// errors.go maps failures to responses. Every error is logged with its
// technical text and the request id, then rendered as the Romanian message
// from core.MapError: an alert fragment for htmx, JSON for API clients, and
// plain text otherwise.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/listingdesk/internal/core"
	"github.com/JonMunkholm/listingdesk/internal/logging"
	"github.com/JonMunkholm/listingdesk/internal/web/views"
	"github.com/JonMunkholm/listingdesk/internal/webhook"
)

// ErrorResponse is the JSON body of a failed API request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the user message in the format the
// client expects.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	)

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, statusCode)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, statusCode)
	default:
		http.Error(w, userMsg.Message+" ("+userMsg.Code+")", statusCode)
	}
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// renderErrorPartial writes the alert fragment. htmx does not swap error
// responses by default, so the fragment is retargeted at #main.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("HX-Retarget", "#main")
	w.Header().Set("HX-Reswap", "innerHTML")
	w.WriteHeader(statusCode)
	views.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// statusFor picks the HTTP status for a failure.
func statusFor(err error) int {
	var apiErr *webhook.APIError
	switch {
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrUnknownView):
		return http.StatusNotFound
	case errors.Is(err, core.ErrIncompleteData),
		errors.Is(err, core.ErrInvalidPayload),
		errors.Is(err, core.ErrMissingFiles),
		errors.Is(err, core.ErrNoAccessCode),
		errors.Is(err, webhook.ErrMissingFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNoEditBuffer):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyImages),
		errors.Is(err, core.ErrExportBlocked),
		errors.Is(err, core.ErrEmptyExport):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrTooManyAutomations), errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, webhook.ErrEndpointNotConfigured):
		return http.StatusNotImplemented
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr),
		errors.Is(err, webhook.ErrStatusNotSuccess),
		errors.Is(err, webhook.ErrMalformedResponse),
		errors.Is(err, core.ErrSaveFailed),
		errors.Is(err, core.ErrSyncFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client prefers JSON. API routes default
// to JSON.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
