package hash

import "fmt"

// HAMT indexing constants. The trie is 32-way branching: each level
// consumes 5 bits of the key's value hash.
const (
	// Fanout is the branching factor of the trie.
	Fanout = 32

	// BitsPerLevel is the number of hash bits consumed per level.
	BitsPerLevel = 5

	// LevelsPerWord is how many full 5-bit chunks one 64-bit word
	// yields. The low 4 bits of each word are never consumed.
	LevelsPerWord = 12

	// MaxIndexDepth is the number of levels the four words can drive.
	// At depths >= MaxIndexDepth the indexable bits are exhausted and
	// the trie falls back to a linear collision bucket keyed by the
	// full 256-bit hash. Reaching that depth requires two keys whose
	// hashes agree on all indexed bits — a cryptographic anomaly, not
	// a design case.
	MaxIndexDepth = 4 * LevelsPerWord
)

// Index extracts the 5-bit child index for the given trie depth from a
// key's value hash. Depth d in 0..11 reads word 0, 12..23 word 1, and
// so on; within each word chunks are taken from the most significant
// bit downward:
//
//	idx(d) = (w >> (64 - 5*(d%12+1))) & 0x1F
//
// The word and direction are dictated by fuse: w0 carries the product
// term a3*b2, so its top bits are the best-mixed region of the hash
// and the correct region for early trie levels.
//
// Index panics if depth is outside [0, MaxIndexDepth); callers must
// switch to collision buckets before that. An out-of-range depth is a
// programmer error, not a data condition.
func Index(h Hash, depth int) uint8 {
	if depth < 0 || depth >= MaxIndexDepth {
		panic(fmt.Sprintf("hash.Index: depth %d outside [0, %d)", depth, MaxIndexDepth))
	}
	w := h.Words()[depth/LevelsPerWord]
	shift := 64 - BitsPerLevel*(depth%LevelsPerWord+1)
	return uint8(w>>uint(shift)) & (Fanout - 1)
}
