// Package value provides the Dacite value model: immutable,
// content-addressed values whose identity is computed by the hash
// package at construction time and memoized for the lifetime of the
// value.
//
// Concrete kinds:
//
//   - Leaf   (null, bool, fixed-width integers, floats, char)
//   - String (sequence of char leaves)
//   - Blob   (sequence of u8 leaves)
//   - Vector (sequence of arbitrary values, finger-tree backed)
//   - Map    (entries keyed by value hash, HAMT backed)
//
// Values are never mutated; every operation that "changes" a
// collection returns a new value sharing structure with the old one.
package value

import (
	"github.com/dacite-io/dacite/hash"
)

// Kind discriminates the value union.
type Kind int

const (
	KindLeaf Kind = iota
	KindString
	KindBlob
	KindVector
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindString:
		return "string"
	case KindBlob:
		return "blob"
	case KindVector:
		return "vector"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is an immutable content-addressed value.
// Only types in this package implement it.
type Value interface {
	// Kind reports which member of the union this value is.
	Kind() Kind

	// TypeName is the canonical type name whose hash tags this value.
	TypeName() string

	// Hash is the value's content address, computed at construction.
	Hash() hash.Hash

	sealed()
}
