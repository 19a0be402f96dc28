// Package sync moves content-addressed value trees between stores and
// peers. Two roots that differ are reconciled by walking down from the
// root and fetching only nodes whose addresses are absent locally;
// identical subtrees share addresses and are never transferred.
//
// Nodes are the storable form of values. A node carries exactly what
// identity requires plus the child addresses the walk needs; the
// receiving side re-hashes every fetched node and rejects any blob
// that does not match its address.
package sync

import (
	"bytes"
	"encoding/binary"
	"sort"
	"unicode/utf8"

	"github.com/dacite-io/dacite/errors"
	"github.com/dacite-io/dacite/hash"
)

// Node kind tags, the first byte of every encoded node.
const (
	// kindLeaf: tag || type hash (32) || canonical bytes.
	kindLeaf byte = 0x00

	// kindSequence: tag || type hash (32) || u32be count || child
	// addresses. Children fold in order.
	kindSequence byte = 0x01

	// kindMap: tag || type hash (32) || u32be entry count || key and
	// value addresses interleaved (2*count hashes). Entry order in the
	// encoding is sorted by entry hash so equal maps serialize
	// identically; identity does not depend on it.
	kindMap byte = 0x02

	// kindString: tag || UTF-8 bytes. Code point hashes are derivable
	// from the payload, so strings ship whole instead of as one node
	// per char.
	kindString byte = 0x03

	// kindBlob: tag || raw bytes. Same reasoning as kindString.
	kindBlob byte = 0x04
)

// Node is a decoded storable value node.
type Node struct {
	Kind     byte
	TypeHash hash.Hash // kindLeaf, kindSequence, kindMap
	Payload  []byte    // kindLeaf canonical bytes; kindString/kindBlob contents
	Children []hash.Hash
}

// EncodeLeaf encodes a leaf node from its type hash and canonical
// bytes.
func EncodeLeaf(typeHash hash.Hash, canonical []byte) []byte {
	out := make([]byte, 0, 1+32+len(canonical))
	out = append(out, kindLeaf)
	out = append(out, typeHash[:]...)
	return append(out, canonical...)
}

// EncodeSequence encodes a vector node from its type hash and child
// addresses in sequence order.
func EncodeSequence(typeHash hash.Hash, children []hash.Hash) []byte {
	out := make([]byte, 0, 1+32+4+32*len(children))
	out = append(out, kindSequence)
	out = append(out, typeHash[:]...)
	var count [4]byte
	binary.BigEndian.PutUint32(count[:], uint32(len(children)))
	out = append(out, count[:]...)
	for _, c := range children {
		out = append(out, c[:]...)
	}
	return out
}

// EncodeMap encodes a map node from interleaved key/value addresses
// (k0, v0, k1, v1, ...).
func EncodeMap(typeHash hash.Hash, pairs []hash.Hash) []byte {
	out := make([]byte, 0, 1+32+4+32*len(pairs))
	out = append(out, kindMap)
	out = append(out, typeHash[:]...)
	var count [4]byte
	binary.BigEndian.PutUint32(count[:], uint32(len(pairs)/2))
	out = append(out, count[:]...)
	for _, p := range pairs {
		out = append(out, p[:]...)
	}
	return out
}

// EncodeString encodes a string node from its UTF-8 contents.
func EncodeString(text string) []byte {
	out := make([]byte, 0, 1+len(text))
	out = append(out, kindString)
	return append(out, text...)
}

// EncodeBlob encodes a blob node from its raw bytes.
func EncodeBlob(data []byte) []byte {
	out := make([]byte, 0, 1+len(data))
	out = append(out, kindBlob)
	return append(out, data...)
}

// Decode parses an encoded node.
func Decode(data []byte) (*Node, error) {
	if len(data) == 0 {
		return nil, errors.New("empty node")
	}
	kind := data[0]
	rest := data[1:]

	switch kind {
	case kindString, kindBlob:
		return &Node{Kind: kind, Payload: append([]byte(nil), rest...)}, nil

	case kindLeaf:
		if len(rest) < 32 {
			return nil, errors.Newf("leaf node truncated at %d bytes", len(data))
		}
		n := &Node{Kind: kind, Payload: append([]byte(nil), rest[32:]...)}
		copy(n.TypeHash[:], rest[:32])
		return n, nil

	case kindSequence, kindMap:
		if len(rest) < 36 {
			return nil, errors.Newf("composite node truncated at %d bytes", len(data))
		}
		n := &Node{Kind: kind}
		copy(n.TypeHash[:], rest[:32])
		// 64-bit arithmetic: a hostile count must not wrap into a
		// passing length check or an oversized allocation.
		hashes := uint64(binary.BigEndian.Uint32(rest[32:36]))
		if kind == kindMap {
			hashes *= 2
		}
		body := rest[36:]
		if uint64(len(body)) != hashes*32 {
			return nil, errors.Newf("composite node body is %d bytes, want %d", len(body), hashes*32)
		}
		n.Children = make([]hash.Hash, hashes)
		for i := range n.Children {
			copy(n.Children[i][:], body[i*32:(i+1)*32])
		}
		return n, nil

	default:
		return nil, errors.Newf("unknown node kind 0x%02x", kind)
	}
}

// Hash recomputes the node's content address from its contents. A
// fetched node whose recomputed hash differs from the address it was
// requested under is corrupt or forged.
func (n *Node) Hash() (hash.Hash, error) {
	switch n.Kind {
	case kindLeaf:
		return hash.ValueHash(n.TypeHash, hash.Sum(n.Payload))

	case kindSequence:
		data, err := hash.SequenceData(n.Children)
		if err != nil {
			return hash.Hash{}, err
		}
		return hash.ValueHash(n.TypeHash, data)

	case kindMap:
		if len(n.Children)%2 != 0 {
			return hash.Hash{}, errors.New("map node has dangling key address")
		}
		entries := make([]hash.Hash, 0, len(n.Children)/2)
		for i := 0; i < len(n.Children); i += 2 {
			eh, err := hash.EntryHash(n.Children[i], n.Children[i+1])
			if err != nil {
				return hash.Hash{}, err
			}
			entries = append(entries, eh)
		}
		data, err := hash.MapData(entries)
		if err != nil {
			return hash.Hash{}, err
		}
		return hash.ValueHash(n.TypeHash, data)

	case kindString:
		if !utf8.Valid(n.Payload) {
			return hash.Hash{}, errors.New("string node payload is not valid UTF-8")
		}
		var children []hash.Hash
		for _, r := range string(n.Payload) {
			canonical, err := hash.CanonicalChar(r)
			if err != nil {
				return hash.Hash{}, err
			}
			ch, err := hash.Leaf(hash.TypeChar, canonical)
			if err != nil {
				return hash.Hash{}, err
			}
			children = append(children, ch)
		}
		data, err := hash.SequenceData(children)
		if err != nil {
			return hash.Hash{}, err
		}
		return hash.ValueHash(hash.TypeHash(hash.TypeString), data)

	case kindBlob:
		children := make([]hash.Hash, len(n.Payload))
		for i, b := range n.Payload {
			canonical, err := hash.CanonicalUint(uint64(b), 1)
			if err != nil {
				return hash.Hash{}, err
			}
			bh, err := hash.Leaf(hash.TypeU8, canonical)
			if err != nil {
				return hash.Hash{}, err
			}
			children[i] = bh
		}
		data, err := hash.SequenceData(children)
		if err != nil {
			return hash.Hash{}, err
		}
		return hash.ValueHash(hash.TypeHash(hash.TypeBlob), data)

	default:
		return hash.Hash{}, errors.Newf("unknown node kind 0x%02x", n.Kind)
	}
}

// Verify decodes data and checks it hashes to addr. Returns the node
// on success.
func Verify(addr hash.Hash, data []byte) (*Node, error) {
	n, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "node %s", addr.Short())
	}
	got, err := n.Hash()
	if err != nil {
		return nil, errors.Wrapf(err, "node %s", addr.Short())
	}
	if got != addr {
		return nil, errors.Newf("node hash mismatch: addressed %s, content is %s", addr.Hex(), got.Hex())
	}
	return n, nil
}

// sortPairs orders (key, value) address pairs by their entry hash so a
// map's node encoding is deterministic across builders.
func sortPairs(pairs []hash.Hash) ([]hash.Hash, error) {
	type pe struct {
		k, v  hash.Hash
		entry hash.Hash
	}
	es := make([]pe, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		eh, err := hash.EntryHash(pairs[i], pairs[i+1])
		if err != nil {
			return nil, err
		}
		es = append(es, pe{k: pairs[i], v: pairs[i+1], entry: eh})
	}
	sort.Slice(es, func(i, j int) bool {
		return bytes.Compare(es[i].entry[:], es[j].entry[:]) < 0
	})
	out := make([]hash.Hash, 0, len(pairs))
	for _, e := range es {
		out = append(out, e.k, e.v)
	}
	return out, nil
}
