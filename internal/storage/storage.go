// Package storage defines the persistence interface for cross-run article
// state and its SQLite implementation.
package storage

import "context"

// Storage tracks which articles have already appeared on a daily page, so
// consecutive runs do not republish them.
type Storage interface {
	IsSeen(ctx context.Context, feedName, guid string) (bool, error)
	MarkSeen(ctx context.Context, feedName, guid string) error
	Close() error
}
