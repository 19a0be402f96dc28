// Package hash implements the Dacite identity engine: the assignment of
// a deterministic 256-bit content address to every value in the type
// system.
//
// Identity is built from four pieces:
//
//   - SHA-256 over canonical leaf bytes and type names
//   - the fuse mixer, an associative, non-commutative combination of
//     two 256-bit hashes
//   - an order-preserving left fold for sequences (strings, blobs,
//     vectors)
//   - an order-independent fold for maps (entry hashes sorted by
//     unsigned big-endian byte order)
//
// Every value hash is fuse(type_hash, data_hash), so the same
// underlying bytes under two different types never alias. The word
// layout of fuse is co-designed with the HAMT indexer in this package:
// the most-mixed word is w0, and the indexer reads 5-bit chunks from
// the top of w0 downward.
//
// The engine is purely functional. Nothing in this package holds
// mutable state after init; callers may invoke it from any number of
// goroutines.
package hash
