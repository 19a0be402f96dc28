package hash

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/dacite-io/dacite/errors"
)

// Leaf computes the value hash of a leaf:
// fuse(type_hash(name), sha256(canonical)).
func Leaf(name string, canonical []byte) (Hash, error) {
	return ValueHash(TypeHash(name), Sum(canonical))
}

// Quiet-NaN bit patterns used to canonicalize NaN before hashing.
// IEEE 754 admits many NaN encodings; hashing them raw would break
// "structural equality implies hash equality".
const (
	canonicalNaN32 = 0x7FC00000
	canonicalNaN64 = 0x7FF8000000000000
)

// CanonicalNull returns the canonical bytes of the null value: the
// empty byte sequence.
func CanonicalNull() []byte {
	return []byte{}
}

// CanonicalBool returns the canonical bytes of a bool: a single byte,
// 0x00 for false, 0x01 for true.
func CanonicalBool(b bool) []byte {
	if b {
		return []byte{0x01}
	}
	return []byte{0x00}
}

// CanonicalInt returns the canonical bytes of a signed integer of the
// given byte width (1, 2, 4, or 8): big-endian two's complement.
// Returns an error when v does not fit the width.
func CanonicalInt(v int64, width int) ([]byte, error) {
	switch width {
	case 1:
		if v < math.MinInt8 || v > math.MaxInt8 {
			return nil, errors.Newf("value %d out of range for i8", v)
		}
	case 2:
		if v < math.MinInt16 || v > math.MaxInt16 {
			return nil, errors.Newf("value %d out of range for i16", v)
		}
	case 4:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, errors.Newf("value %d out of range for i32", v)
		}
	case 8:
		// Always fits.
	default:
		return nil, errors.Newf("invalid signed integer width %d", width)
	}
	var full [8]byte
	binary.BigEndian.PutUint64(full[:], uint64(v))
	// Two's complement truncation: the low `width` bytes of the 8-byte
	// form are the canonical encoding once range is verified.
	return append([]byte(nil), full[8-width:]...), nil
}

// CanonicalUint returns the canonical bytes of an unsigned integer of
// the given byte width (1, 2, 4, or 8): big-endian.
func CanonicalUint(v uint64, width int) ([]byte, error) {
	switch width {
	case 1:
		if v > math.MaxUint8 {
			return nil, errors.Newf("value %d out of range for u8", v)
		}
	case 2:
		if v > math.MaxUint16 {
			return nil, errors.Newf("value %d out of range for u16", v)
		}
	case 4:
		if v > math.MaxUint32 {
			return nil, errors.Newf("value %d out of range for u32", v)
		}
	case 8:
		// Always fits.
	default:
		return nil, errors.Newf("invalid unsigned integer width %d", width)
	}
	var full [8]byte
	binary.BigEndian.PutUint64(full[:], v)
	return append([]byte(nil), full[8-width:]...), nil
}

// CanonicalWide validates a pre-encoded wide integer (i128/u128 at 16
// bytes, i256/u256 at 32 bytes). Wide integers are carried as
// big-endian fixed-width buffers; the buffer is already canonical.
func CanonicalWide(b []byte, width int) ([]byte, error) {
	if width != 16 && width != 32 {
		return nil, errors.Newf("invalid wide integer width %d", width)
	}
	if len(b) != width {
		return nil, errors.Newf("wide integer must be %d bytes, got %d", width, len(b))
	}
	return append([]byte(nil), b...), nil
}

// CanonicalF32 returns the canonical bytes of a float32: IEEE 754
// binary32, big-endian, with NaN canonicalized to the quiet NaN with
// zero payload.
func CanonicalF32(f float32) []byte {
	bits := math.Float32bits(f)
	if f != f {
		bits = canonicalNaN32
	}
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, bits)
	return out
}

// CanonicalF64 returns the canonical bytes of a float64: IEEE 754
// binary64, big-endian, with NaN canonicalized to the quiet NaN with
// zero payload.
func CanonicalF64(f float64) []byte {
	bits := math.Float64bits(f)
	if f != f {
		bits = canonicalNaN64
	}
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, bits)
	return out
}

// CanonicalChar returns the canonical bytes of a Unicode code point:
// its UTF-8 encoding (1-4 bytes).
func CanonicalChar(r rune) ([]byte, error) {
	if !utf8.ValidRune(r) {
		return nil, errors.Newf("invalid code point %U", r)
	}
	out := make([]byte, utf8.UTFMax)
	n := utf8.EncodeRune(out, r)
	return out[:n], nil
}
