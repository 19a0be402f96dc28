package sync

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/dacite-io/dacite/errors"
)

// Dial connects to a remote peer's sync endpoint (ws://host/sync) and
// returns the connection for NewPeer. The returned *websocket.Conn
// satisfies Conn directly.
func Dial(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dial sync peer %s", url)
	}
	return conn, nil
}
