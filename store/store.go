// Package store provides pluggable content-addressed blob storage.
//
// Blobs are opaque byte sequences addressed by a 256-bit hash in its
// canonical 32-byte big-endian form. The identity engine supplies the
// addresses; the store neither computes nor interprets them. Backends:
// SQLite for persistence, an in-process map for tests and ephemeral
// use.
package store

import (
	"context"

	"github.com/dacite-io/dacite/errors"
	"github.com/dacite-io/dacite/hash"
)

// ErrNotFound is returned by Get when no blob exists at the address.
var ErrNotFound = errors.New("blob not found")

// Store is a content-addressed blob store. Implementations are safe
// for concurrent use.
type Store interface {
	// Put stores data at the given address. Storing the same address
	// twice is a no-op: content addressing makes re-puts idempotent.
	Put(ctx context.Context, addr hash.Hash, data []byte) error

	// Get returns the blob at the address, or ErrNotFound.
	Get(ctx context.Context, addr hash.Hash) ([]byte, error)

	// Has reports whether a blob exists at the address.
	Has(ctx context.Context, addr hash.Hash) (bool, error)

	// Close releases backend resources.
	Close() error
}
