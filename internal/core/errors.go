package core

import "errors"

// Sentinel errors. Their texts are matched by MapError, keep them in sync
// with errorPatterns.
var (
	ErrIncompleteData  = errors.New("incomplete data for view")
	ErrNotFound        = errors.New("record not found")
	ErrStaleNavigation = errors.New("stale navigation discarded")
	ErrUnknownView     = errors.New("unknown view")
	ErrNoEditBuffer    = errors.New("no product open for editing")

	ErrInvalidPayload = errors.New("invalid payload")
	ErrTooManyImages  = errors.New("too many images")
	ErrMissingFiles   = errors.New("missing import files")
	ErrExportBlocked  = errors.New("export blocked by validation errors")
	ErrEmptyExport    = errors.New("export has no rows")
	ErrSaveFailed     = errors.New("product save failed")
	ErrSyncFailed     = errors.New("order sync failed")
	ErrNoAccessCode   = errors.New("access code not set")

	ErrRenderPanic = errors.New("internal error while building view")
)
