// ABOUTME: Registry interface for durable slave identities
// ABOUTME: Insert-or-ignore set semantics shared by the SQLite, Redis, and mock backends

package store

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidIdentity is returned when an identity is empty or blank
var ErrInvalidIdentity = errors.New("invalid identity")

// Registry is the durable set of known slave identities.
// Entries are never updated or deleted; inserting an existing identity is a no-op.
type Registry interface {
	// InsertIfAbsent records identity. Concurrent duplicate inserts must all succeed.
	InsertIfAbsent(ctx context.Context, identity string) error

	// ListAll returns every recorded identity in ascending order.
	ListAll(ctx context.Context) ([]string, error)

	// Close releases the backing connection.
	Close() error
}

// validateIdentity rejects identities that cannot name a bot
func validateIdentity(identity string) error {
	if strings.TrimSpace(identity) == "" {
		return ErrInvalidIdentity
	}
	return nil
}
