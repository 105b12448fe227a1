// Package storage keeps the durable part of a browser session: the synced
// order list and the financial records, each stored as one JSON string under
// session:<id>:<kind>. Everything else a session holds is memory only.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no live snapshot exists for a key.
var ErrNotFound = errors.New("snapshot not found")

// Kind names one of the persisted collections.
type Kind string

const (
	KindOrders    Kind = "orders"
	KindFinancial Kind = "financial"
)

// Kinds lists every persisted collection.
var Kinds = []Kind{KindOrders, KindFinancial}

// Key returns the storage key for a session collection.
func Key(sessionID string, kind Kind) string {
	return fmt.Sprintf("session:%s:%s", sessionID, kind)
}

// SnapshotStore persists session collections with a time to live.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID string, kind Kind, payload string) error
	Load(ctx context.Context, sessionID string, kind Kind) (string, error)
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// Options are shared by every backend.
type Options struct {
	TTL time.Duration
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
