package hash

import (
	"bytes"
	"sort"
)

// emptyData is the data hash of every empty collection: SHA-256 of the
// empty byte sequence, the same convention leaves use. An empty vector
// and an empty string still hash differently because the type hash is
// fused in on top.
var emptyData = Sum(nil)

// SequenceData computes the data hash of a sequence from its children's
// value hashes, in order: a left fold under fuse,
// fuse(...fuse(fuse(h0, h1), h2)..., hn-1).
//
// Associativity of fuse means the representation of the sequence
// (finger-tree shape, chunk boundaries) cannot affect the result; only
// element identity and order do. A single child folds to itself.
//
// A low-entropy result anywhere in the fold is surfaced, not caught:
// it is evidence of a degenerate input.
func SequenceData(children []Hash) (Hash, error) {
	if len(children) == 0 {
		return emptyData, nil
	}
	acc := children[0]
	var err error
	for _, h := range children[1:] {
		acc, err = Fuse(acc, h)
		if err != nil {
			return Hash{}, err
		}
	}
	return acc, nil
}

// EntryHash computes the hash of one map entry:
// fuse(key value hash, value value hash).
func EntryHash(key, value Hash) (Hash, error) {
	return Fuse(key, value)
}

// MapData computes the data hash of a map from its entry hashes. The
// entries are sorted ascending by unsigned big-endian byte order and
// then left-folded under fuse, making the result a function of the
// multiset of entries: insertion order cannot matter, and no ordering
// of keys at the value level is required.
//
// The input slice is not mutated.
func MapData(entries []Hash) (Hash, error) {
	if len(entries) == 0 {
		return emptyData, nil
	}
	sorted := make([]Hash, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})
	return SequenceData(sorted)
}
