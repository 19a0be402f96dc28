package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dacite-io/dacite/errors"
	"github.com/dacite-io/dacite/hash"
	"github.com/dacite-io/dacite/store"
)

// HTTPFetcher fetches node blobs from a remote Dacite server's
// GET /blob/{hex} endpoint.
type HTTPFetcher struct {
	// BaseURL is the server root, e.g. "http://host:8420".
	BaseURL string

	// Client is used for requests; a timeout-bounded default is used
	// when nil.
	Client *http.Client
}

var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

func (f HTTPFetcher) Fetch(ctx context.Context, addr hash.Hash) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = defaultHTTPClient
	}

	url := fmt.Sprintf("%s/blob/%s", f.BaseURL, addr.Hex())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build blob request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s", url)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Bounded read: a server cannot feed us an unbounded body.
		data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20+1))
		if err != nil {
			return nil, errors.Wrapf(err, "read blob %s", addr.Short())
		}
		return data, nil
	case http.StatusNotFound:
		return nil, errors.Wrapf(store.ErrNotFound, "remote %s", addr.Hex())
	default:
		return nil, errors.Newf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
}
