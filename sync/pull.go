package sync

import (
	"context"

	"go.uber.org/zap"

	"github.com/dacite-io/dacite/errors"
	"github.com/dacite-io/dacite/hash"
	"github.com/dacite-io/dacite/store"
)

// Fetcher retrieves node blobs by address from a remote source.
type Fetcher interface {
	Fetch(ctx context.Context, addr hash.Hash) ([]byte, error)
}

// StoreFetcher adapts a local store to the Fetcher interface, for
// tests and same-process transfers.
type StoreFetcher struct {
	Store store.Store
}

func (f StoreFetcher) Fetch(ctx context.Context, addr hash.Hash) ([]byte, error) {
	return f.Store.Get(ctx, addr)
}

// Pull walks the tree rooted at root, fetching every node absent from
// dst. Nodes already present are skipped along with their entire
// subtree — shared structure never crosses the wire. Every fetched
// node is re-hashed and must match the address it was requested under.
//
// Returns the number of nodes fetched. A nil logger disables logging.
func Pull(ctx context.Context, root hash.Hash, src Fetcher, dst store.Store, logger *zap.SugaredLogger) (int, error) {
	if root.IsZero() {
		return 0, nil
	}

	fetched := 0
	pending := []hash.Hash{root}
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return fetched, errors.Wrap(err, "pull cancelled")
		}

		addr := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		ok, err := dst.Has(ctx, addr)
		if err != nil {
			return fetched, err
		}
		if ok {
			continue
		}

		data, err := src.Fetch(ctx, addr)
		if err != nil {
			return fetched, errors.Wrapf(err, "fetch %s", addr.Short())
		}

		node, err := Verify(addr, data)
		if err != nil {
			return fetched, err
		}

		if err := dst.Put(ctx, addr, data); err != nil {
			return fetched, err
		}
		fetched++

		if logger != nil {
			logger.Debugw("Fetched node",
				"address", addr.Hex(),
				"size", len(data),
				"children", len(node.Children),
			)
		}

		pending = append(pending, node.Children...)
	}

	if logger != nil {
		logger.Infow("Pull complete",
			"root", root.Hex(),
			"fetched", fetched,
		)
	}
	return fetched, nil
}
