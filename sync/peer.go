package sync

import (
	"context"

	"go.uber.org/zap"

	"github.com/dacite-io/dacite/errors"
	"github.com/dacite-io/dacite/hash"
	"github.com/dacite-io/dacite/store"
)

// Conn abstracts the WebSocket connection for testability.
// The real implementation wraps gorilla/websocket; tests use a channel
// pair.
type Conn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	Close() error
}

// Peer manages one sync session with a remote Dacite instance.
// Both sides of the connection run the same code — the protocol is
// symmetric.
type Peer struct {
	conn   Conn
	root   hash.Hash
	store  store.Store
	logger *zap.SugaredLogger

	// Name, when set, identifies this node in the sync hello.
	Name string

	sent     int
	received int
}

// NewPeer creates a sync peer for a single reconciliation session
// advertising the given root.
func NewPeer(conn Conn, root hash.Hash, st store.Store, logger *zap.SugaredLogger) *Peer {
	return &Peer{
		conn:   conn,
		root:   root,
		store:  st,
		logger: logger,
	}
}

// Reconcile runs the full sync protocol. Both peers call this
// concurrently on their respective ends of the connection. Returns the
// remote root and the number of nodes sent and received.
//
// The protocol is symmetric: each side announces its root, then both
// exchange want/blob rounds in lockstep until neither is missing
// anything reachable from the other's root.
func (p *Peer) Reconcile(ctx context.Context) (remoteRoot hash.Hash, sent, received int, err error) {
	// Phase 1: exchange roots.
	if err := p.send(Msg{Type: MsgHello, Root: p.root.Hex(), Name: p.Name}); err != nil {
		return hash.Hash{}, 0, 0, errors.Wrap(err, "send sync hello")
	}

	var hello Msg
	if err := p.recv(&hello); err != nil {
		return hash.Hash{}, 0, 0, errors.Wrap(err, "receive sync hello")
	}
	if hello.Type != MsgHello {
		return hash.Hash{}, 0, 0, errors.Newf("expected sync_hello, got %s", hello.Type)
	}
	remoteRoot, err = hash.Parse(hello.Root)
	if err != nil {
		return hash.Hash{}, 0, 0, errors.Wrap(err, "remote root")
	}

	if remoteRoot == p.root {
		p.logger.Debugw("Sync roots match, already in sync")
		if err := p.sendDone(); err != nil {
			return remoteRoot, 0, 0, err
		}
		if err := p.recvDone(); err != nil {
			return remoteRoot, 0, 0, err
		}
		return remoteRoot, 0, 0, nil
	}

	p.logger.Debugw("Sync roots differ, starting reconciliation",
		"local_root", p.root.Hex(),
		"remote_root", remoteRoot.Hex(),
		"remote_name", hello.Name,
	)

	// Phase 2: want/blob rounds. A zero remote root advertises an
	// empty tree; there is nothing to want from it.
	var pending []hash.Hash
	if !remoteRoot.IsZero() {
		pending, err = p.missing(ctx, []hash.Hash{remoteRoot})
		if err != nil {
			return remoteRoot, 0, 0, err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return remoteRoot, p.sent, p.received, errors.Wrap(err, "sync cancelled")
		}

		ourWant := pending
		if err := p.send(Msg{Type: MsgWant, Want: hexAddrs(ourWant)}); err != nil {
			return remoteRoot, p.sent, p.received, errors.Wrap(err, "send sync want")
		}

		var theirWant Msg
		if err := p.recv(&theirWant); err != nil {
			return remoteRoot, p.sent, p.received, errors.Wrap(err, "receive sync want")
		}
		if theirWant.Type != MsgWant {
			return remoteRoot, p.sent, p.received, errors.Newf("expected sync_want, got %s", theirWant.Type)
		}

		if err := p.sendRequestedBlobs(ctx, theirWant.Want); err != nil {
			return remoteRoot, p.sent, p.received, err
		}

		var more []hash.Hash
		more, err = p.receiveBlobs(ctx, ourWant)
		if err != nil {
			return remoteRoot, p.sent, p.received, err
		}
		pending = more

		// Neither side asked for anything this round: converged.
		if len(ourWant) == 0 && len(theirWant.Want) == 0 {
			break
		}
	}

	if err := p.sendDone(); err != nil {
		return remoteRoot, p.sent, p.received, err
	}
	if err := p.recvDone(); err != nil {
		return remoteRoot, p.sent, p.received, err
	}

	p.logger.Infow("Sync reconciliation complete",
		"sent", p.sent,
		"received", p.received,
	)
	return remoteRoot, p.sent, p.received, nil
}

// sendRequestedBlobs answers the peer's want list from the local
// store. Addresses we don't hold are omitted — the peer requested them
// from a stale view or a partial tree.
func (p *Peer) sendRequestedBlobs(ctx context.Context, want []string) error {
	blobs := make(map[string][]byte, len(want))
	for _, hexAddr := range want {
		addr, err := hash.Parse(hexAddr)
		if err != nil {
			p.logger.Warnw("Peer requested malformed address",
				"address", hexAddr,
				"error", err,
			)
			continue
		}
		data, err := p.store.Get(ctx, addr)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return errors.Wrapf(err, "load blob %s for peer", addr.Short())
		}
		blobs[hexAddr] = data
	}
	p.sent += len(blobs)
	return p.send(Msg{Type: MsgBlobs, Blobs: blobs})
}

// receiveBlobs reads the peer's blobs message, verifies every blob
// against the address we requested it under, stores the good ones, and
// returns the children still missing locally.
func (p *Peer) receiveBlobs(ctx context.Context, requested []hash.Hash) ([]hash.Hash, error) {
	var msg Msg
	if err := p.recv(&msg); err != nil {
		return nil, errors.Wrap(err, "receive sync blobs")
	}
	if msg.Type != MsgBlobs {
		return nil, errors.Newf("expected sync_blobs, got %s", msg.Type)
	}

	var discovered []hash.Hash
	for _, addr := range requested {
		data, ok := msg.Blobs[addr.Hex()]
		if !ok {
			p.logger.Warnw("Peer omitted requested node",
				"address", addr.Hex(),
			)
			continue
		}

		node, err := Verify(addr, data)
		if err != nil {
			// A forged or corrupt node poisons the whole session.
			return nil, errors.Wrap(err, "verify synced node")
		}

		if err := p.store.Put(ctx, addr, data); err != nil {
			return nil, errors.Wrapf(err, "persist synced node %s", addr.Short())
		}
		p.received++
		discovered = append(discovered, node.Children...)
	}

	return p.missing(ctx, discovered)
}

// missing filters addrs down to those absent from the local store,
// deduplicated.
func (p *Peer) missing(ctx context.Context, addrs []hash.Hash) ([]hash.Hash, error) {
	seen := make(map[hash.Hash]bool, len(addrs))
	var out []hash.Hash
	for _, addr := range addrs {
		if seen[addr] {
			continue
		}
		seen[addr] = true
		ok, err := p.store.Has(ctx, addr)
		if err != nil {
			return nil, err
		}
		if !ok {
			out = append(out, addr)
		}
	}
	return out, nil
}

func (p *Peer) send(msg Msg) error {
	return p.conn.WriteJSON(msg)
}

func (p *Peer) recv(msg *Msg) error {
	return p.conn.ReadJSON(msg)
}

func (p *Peer) sendDone() error {
	return p.send(Msg{
		Type:     MsgDone,
		Sent:     p.sent,
		Received: p.received,
	})
}

func (p *Peer) recvDone() error {
	var msg Msg
	if err := p.recv(&msg); err != nil {
		return errors.Wrap(err, "receive sync done")
	}
	if msg.Type != MsgDone {
		return errors.Newf("expected sync_done, got %s", msg.Type)
	}
	return nil
}

func hexAddrs(addrs []hash.Hash) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.Hex()
	}
	return out
}
