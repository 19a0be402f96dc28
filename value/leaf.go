package value

import (
	"github.com/dacite-io/dacite/hash"
)

// Leaf is a bounded primitive value: its identity is
// fuse(type_hash, sha256(canonical bytes)).
type Leaf struct {
	typeName  string
	canonical []byte
	h         hash.Hash
}

func (l *Leaf) Kind() Kind       { return KindLeaf }
func (l *Leaf) TypeName() string { return l.typeName }
func (l *Leaf) Hash() hash.Hash  { return l.h }
func (l *Leaf) sealed()          {}

// Canonical returns a copy of the leaf's canonical byte form.
func (l *Leaf) Canonical() []byte {
	return append([]byte(nil), l.canonical...)
}

func newLeaf(typeName string, canonical []byte) (*Leaf, error) {
	h, err := hash.Leaf(typeName, canonical)
	if err != nil {
		return nil, err
	}
	return &Leaf{typeName: typeName, canonical: canonical, h: h}, nil
}

// Null constructs the null value.
func Null() (*Leaf, error) {
	return newLeaf(hash.TypeNull, hash.CanonicalNull())
}

// Bool constructs a bool leaf.
func Bool(b bool) (*Leaf, error) {
	return newLeaf(hash.TypeBool, hash.CanonicalBool(b))
}

// I8 constructs an i8 leaf.
func I8(v int8) (*Leaf, error) {
	canonical, err := hash.CanonicalInt(int64(v), 1)
	if err != nil {
		return nil, err
	}
	return newLeaf(hash.TypeI8, canonical)
}

// I16 constructs an i16 leaf.
func I16(v int16) (*Leaf, error) {
	canonical, err := hash.CanonicalInt(int64(v), 2)
	if err != nil {
		return nil, err
	}
	return newLeaf(hash.TypeI16, canonical)
}

// I32 constructs an i32 leaf.
func I32(v int32) (*Leaf, error) {
	canonical, err := hash.CanonicalInt(int64(v), 4)
	if err != nil {
		return nil, err
	}
	return newLeaf(hash.TypeI32, canonical)
}

// I64 constructs an i64 leaf.
func I64(v int64) (*Leaf, error) {
	canonical, err := hash.CanonicalInt(v, 8)
	if err != nil {
		return nil, err
	}
	return newLeaf(hash.TypeI64, canonical)
}

// U8 constructs a u8 leaf.
func U8(v uint8) (*Leaf, error) {
	canonical, err := hash.CanonicalUint(uint64(v), 1)
	if err != nil {
		return nil, err
	}
	return newLeaf(hash.TypeU8, canonical)
}

// U16 constructs a u16 leaf.
func U16(v uint16) (*Leaf, error) {
	canonical, err := hash.CanonicalUint(uint64(v), 2)
	if err != nil {
		return nil, err
	}
	return newLeaf(hash.TypeU16, canonical)
}

// U32 constructs a u32 leaf.
func U32(v uint32) (*Leaf, error) {
	canonical, err := hash.CanonicalUint(uint64(v), 4)
	if err != nil {
		return nil, err
	}
	return newLeaf(hash.TypeU32, canonical)
}

// U64 constructs a u64 leaf.
func U64(v uint64) (*Leaf, error) {
	canonical, err := hash.CanonicalUint(v, 8)
	if err != nil {
		return nil, err
	}
	return newLeaf(hash.TypeU64, canonical)
}

// I128 constructs an i128 leaf from a 16-byte big-endian two's
// complement buffer.
func I128(b []byte) (*Leaf, error) {
	canonical, err := hash.CanonicalWide(b, 16)
	if err != nil {
		return nil, err
	}
	return newLeaf(hash.TypeI128, canonical)
}

// I256 constructs an i256 leaf from a 32-byte big-endian two's
// complement buffer.
func I256(b []byte) (*Leaf, error) {
	canonical, err := hash.CanonicalWide(b, 32)
	if err != nil {
		return nil, err
	}
	return newLeaf(hash.TypeI256, canonical)
}

// U128 constructs a u128 leaf from a 16-byte big-endian buffer.
func U128(b []byte) (*Leaf, error) {
	canonical, err := hash.CanonicalWide(b, 16)
	if err != nil {
		return nil, err
	}
	return newLeaf(hash.TypeU128, canonical)
}

// U256 constructs a u256 leaf from a 32-byte big-endian buffer.
func U256(b []byte) (*Leaf, error) {
	canonical, err := hash.CanonicalWide(b, 32)
	if err != nil {
		return nil, err
	}
	return newLeaf(hash.TypeU256, canonical)
}

// F32 constructs an f32 leaf. NaN is canonicalized.
func F32(v float32) (*Leaf, error) {
	return newLeaf(hash.TypeF32, hash.CanonicalF32(v))
}

// F64 constructs an f64 leaf. NaN is canonicalized.
func F64(v float64) (*Leaf, error) {
	return newLeaf(hash.TypeF64, hash.CanonicalF64(v))
}

// Char constructs a char leaf from a Unicode code point.
func Char(r rune) (*Leaf, error) {
	canonical, err := hash.CanonicalChar(r)
	if err != nil {
		return nil, err
	}
	return newLeaf(hash.TypeChar, canonical)
}

// Extension constructs a leaf with a user-defined type name and
// caller-supplied canonical bytes. Uniqueness of the name is the
// extender's responsibility.
func Extension(typeName string, canonical []byte) (*Leaf, error) {
	return newLeaf(typeName, append([]byte(nil), canonical...))
}
