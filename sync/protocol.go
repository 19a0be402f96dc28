package sync

// Sync protocol messages exchanged between Dacite peers.
//
// The reconciliation protocol is symmetric — both sides run the same
// state machine. Neither is "server" or "client"; they're peers.
//
// Protocol flow:
//
//	1. Both send Hello (root address)
//	2. If roots match → Done, zero nodes transferred
//	3. Otherwise both sides loop in lockstep:
//	   a. send Want (addresses absent locally)
//	   b. answer the peer's Want with Blobs
//	   c. verify and store received blobs; their children whose
//	      addresses are still absent seed the next Want
//	4. When neither side wants anything, both send Done
//
// Because nodes are fetched top-down, each round discovers one more
// level of the divergent region; subtrees whose roots are already
// present locally are pruned immediately.

// MsgType identifies the sync protocol message kind.
type MsgType string

const (
	// MsgHello is the initial handshake: "here's my root address."
	MsgHello MsgType = "sync_hello"

	// MsgWant requests node blobs for specific addresses.
	MsgWant MsgType = "sync_want"

	// MsgBlobs carries node blobs for requested addresses.
	MsgBlobs MsgType = "sync_blobs"

	// MsgDone signals reconciliation is complete.
	MsgDone MsgType = "sync_done"
)

// Msg is the envelope for all sync protocol messages.
type Msg struct {
	Type MsgType `json:"type"`

	// Hello
	Root string `json:"root,omitempty"`
	Name string `json:"name,omitempty"` // self-identified node name

	// Want: hex addresses the sender is missing
	Want []string `json:"want,omitempty"`

	// Blobs: hex address → node bytes. Addresses the responder does
	// not hold are omitted.
	Blobs map[string][]byte `json:"blobs,omitempty"`

	// Stats (on Done): how many nodes were exchanged
	Sent     int `json:"sent,omitempty"`
	Received int `json:"received,omitempty"`
}
