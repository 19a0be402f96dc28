package hash

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/dacite-io/dacite/errors"
)

// Hash is a 256-bit content address in its canonical form: 32 bytes,
// big-endian. This is the persisted and wire representation; the Words
// tuple form exists for arithmetic inside fuse.
type Hash [32]byte

// Words is the tuple form of a Hash: four 64-bit unsigned words, most
// significant first. W[0] occupies bytes 0-7 of the canonical form,
// W[3] bytes 24-31.
type Words [4]uint64

// Sum computes the SHA-256 digest of data.
func Sum(data []byte) Hash {
	return sha256.Sum256(data)
}

// Words converts a Hash to its four-word tuple form.
func (h Hash) Words() Words {
	return Words{
		binary.BigEndian.Uint64(h[0:8]),
		binary.BigEndian.Uint64(h[8:16]),
		binary.BigEndian.Uint64(h[16:24]),
		binary.BigEndian.Uint64(h[24:32]),
	}
}

// FromWords converts a four-word tuple back to canonical form. It is
// the exact inverse of Hash.Words: FromWords(h.Words()) == h for every
// 32-byte input.
func FromWords(w Words) Hash {
	var h Hash
	binary.BigEndian.PutUint64(h[0:8], w[0])
	binary.BigEndian.PutUint64(h[8:16], w[1])
	binary.BigEndian.PutUint64(h[16:24], w[2])
	binary.BigEndian.PutUint64(h[24:32], w[3])
	return h
}

// Hex returns the lowercase hex encoding of the canonical form. This
// is the textual wire representation (e.g. GET /blob/{hex}).
func (h Hash) Hex() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters, for log output.
func (h Hash) Short() string {
	return h.Hex()[:12]
}

// Parse decodes a 64-character lowercase hex string into a Hash.
func Parse(s string) (Hash, error) {
	var h Hash
	if len(s) != 64 {
		return h, errors.Newf("content address must be 64 hex characters, got %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, errors.Wrapf(err, "malformed content address %q", s)
	}
	copy(h[:], b)
	return h, nil
}

// IsZero reports whether h is the all-zero hash. The zero hash is not
// a valid content address; it is used as a sentinel for "no root".
func (h Hash) IsZero() bool {
	return h == Hash{}
}
