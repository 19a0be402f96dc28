package hash

import (
	"github.com/dacite-io/dacite/errors"
)

// ErrLowEntropy is returned by Fuse when its output has zero in the low
// 32 bits of all four words. Repeated or degenerate inputs can drift
// mixing into the zero subspace; this pattern signals a loss of
// effective entropy that would poison downstream HAMT indexing.
var ErrLowEntropy = errors.New("fuse produced a low-entropy hash")

// Fuse combines two 256-bit hashes into one. It is associative,
// non-commutative, and deterministic; all arithmetic is 64-bit
// unsigned wrapping.
//
// In word form, for a = (a0,a1,a2,a3) and b = (b0,b1,b2,b3):
//
//	c0 = a0 + a3*b2 + b0
//	c1 = a1 + b1
//	c2 = a2 + b2
//	c3 = a3 + b3
//
// The single non-linear term a3*b2 writes into c0 only. That word
// dependence graph is what makes associativity exact rather than
// probabilistic: fuse(fuse(a,b),c) and fuse(a,fuse(b,c)) expand to the
// same terms word by word. Any edit here must preserve it.
//
// Maximum mixing lands in the most significant word, which is the word
// the HAMT indexer consumes (see Index). Reordering the output words
// keeps hash equality correct but degrades trie balance.
//
// Fuse rejects low-entropy outputs with ErrLowEntropy. Callers either
// surface the error or inject entropy (a position index, a salt) and
// retry; the engine itself always surfaces.
func Fuse(a, b Hash) (Hash, error) {
	c := fuseUnchecked(a, b)
	if LowEntropy(c) {
		return Hash{}, errors.Wrapf(ErrLowEntropy, "fuse(%s, %s)", a.Short(), b.Short())
	}
	return c, nil
}

// fuseUnchecked is Fuse without the low-entropy check: the raw word
// arithmetic. Fuse checks its result; the collection folds in this
// package call Fuse at every step, so no fold skips the check.
func fuseUnchecked(a, b Hash) Hash {
	aw := a.Words()
	bw := b.Words()
	return FromWords(Words{
		aw[0] + aw[3]*bw[2] + bw[0],
		aw[1] + bw[1],
		aw[2] + bw[2],
		aw[3] + bw[3],
	})
}

// LowEntropy reports whether the low 32 bits of every word of h are
// zero — 128 bits of zero in aggregate.
func LowEntropy(h Hash) bool {
	w := h.Words()
	const mask = 0xFFFFFFFF
	return w[0]&mask == 0 && w[1]&mask == 0 && w[2]&mask == 0 && w[3]&mask == 0
}
