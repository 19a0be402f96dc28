package value

import (
	"math"
	"testing"

	"github.com/dacite-io/dacite/hash"
)

func mustI32(t *testing.T, v int32) *Leaf {
	t.Helper()
	l, err := I32(v)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func mustString(t *testing.T, s string) *String {
	t.Helper()
	v, err := NewString(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestLeaf_HashMatchesEngine(t *testing.T) {
	l := mustI32(t, 7)
	canonical, err := hash.CanonicalInt(7, 4)
	if err != nil {
		t.Fatal(err)
	}
	want, err := hash.Leaf(hash.TypeI32, canonical)
	if err != nil {
		t.Fatal(err)
	}
	if l.Hash() != want {
		t.Fatal("leaf value hash must match the engine's leaf hash")
	}
}

func TestLeaf_TypeNames(t *testing.T) {
	null, _ := Null()
	if null.TypeName() != hash.TypeNull {
		t.Fatalf("null type name wrong: %s", null.TypeName())
	}
	b, _ := Bool(true)
	if b.TypeName() != hash.TypeBool {
		t.Fatalf("bool type name wrong: %s", b.TypeName())
	}
	f, _ := F64(1.5)
	if f.TypeName() != hash.TypeF64 {
		t.Fatalf("f64 type name wrong: %s", f.TypeName())
	}
}

func TestLeaf_CrossTypeDistinct(t *testing.T) {
	a := mustI32(t, 0)
	b, err := I64(0)
	if err != nil {
		t.Fatal(err)
	}
	if a.Hash() == b.Hash() {
		t.Fatal("i32(0) and i64(0) must have distinct value hashes")
	}
}

func TestLeaf_NaNStructuralEquality(t *testing.T) {
	a, err := F64(math.NaN())
	if err != nil {
		t.Fatal(err)
	}
	b, err := F64(math.Float64frombits(0x7FF0000000000001))
	if err != nil {
		t.Fatal(err)
	}
	if a.Hash() != b.Hash() {
		t.Fatal("all NaN payloads must hash identically")
	}
}

func TestLeaf_WideWidthEnforced(t *testing.T) {
	if _, err := I128(make([]byte, 15)); err == nil {
		t.Fatal("i128 must require 16 bytes")
	}
	if _, err := U256(make([]byte, 16)); err == nil {
		t.Fatal("u256 must require 32 bytes")
	}
	if _, err := I256(make([]byte, 32)); err != nil {
		t.Fatalf("valid i256: %v", err)
	}
}

func TestLeaf_CanonicalCopies(t *testing.T) {
	buf := make([]byte, 16)
	buf[0] = 0xAA
	l, err := U128(buf)
	if err != nil {
		t.Fatal(err)
	}
	buf[0] = 0xBB // caller mutation must not reach the value
	if l.Canonical()[0] != 0xAA {
		t.Fatal("leaf must copy its canonical bytes")
	}
}

func TestExtension_Leaf(t *testing.T) {
	a, err := Extension("example.org/celsius", []byte{0x15})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Extension("example.org/fahrenheit", []byte{0x15})
	if err != nil {
		t.Fatal(err)
	}
	if a.Hash() == b.Hash() {
		t.Fatal("identical bytes under distinct extension types must not alias")
	}
}

func TestString_Identity(t *testing.T) {
	a := mustString(t, "hello")
	b := mustString(t, "hello")
	if a.Hash() != b.Hash() {
		t.Fatal("equal strings must hash equally")
	}
	if a.Hash() == mustString(t, "hellO").Hash() {
		t.Fatal("distinct strings must hash differently")
	}
}

func TestString_IsFoldOfCharLeaves(t *testing.T) {
	// The string fold is over char leaf value hashes, not raw bytes.
	s := mustString(t, "hi")

	hChar, err := Char('h')
	if err != nil {
		t.Fatal(err)
	}
	iChar, err := Char('i')
	if err != nil {
		t.Fatal(err)
	}
	data, err := hash.SequenceData([]hash.Hash{hChar.Hash(), iChar.Hash()})
	if err != nil {
		t.Fatal(err)
	}
	want, err := hash.ValueHash(hash.TypeHash(hash.TypeString), data)
	if err != nil {
		t.Fatal(err)
	}
	if s.Hash() != want {
		t.Fatal("string hash must fold char leaf hashes in order")
	}
}

func TestString_MultibyteLen(t *testing.T) {
	s := mustString(t, "aé\U0001F600")
	if s.Len() != 3 {
		t.Fatalf("length counts code points, got %d", s.Len())
	}
}

func TestBlob_Identity(t *testing.T) {
	a, err := NewBlob([]byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewBlob([]byte{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	if a.Hash() != b.Hash() {
		t.Fatal("equal blobs must hash equally")
	}

	c, err := NewBlob([]byte{3, 2, 1})
	if err != nil {
		t.Fatal(err)
	}
	if a.Hash() == c.Hash() {
		t.Fatal("byte order must matter")
	}
}

func TestBlob_IsFoldOfU8Leaves(t *testing.T) {
	blob, err := NewBlob([]byte{0x01, 0xFF})
	if err != nil {
		t.Fatal(err)
	}

	u1, err := U8(0x01)
	if err != nil {
		t.Fatal(err)
	}
	u2, err := U8(0xFF)
	if err != nil {
		t.Fatal(err)
	}
	data, err := hash.SequenceData([]hash.Hash{u1.Hash(), u2.Hash()})
	if err != nil {
		t.Fatal(err)
	}
	want, err := hash.ValueHash(hash.TypeHash(hash.TypeBlob), data)
	if err != nil {
		t.Fatal(err)
	}
	if blob.Hash() != want {
		t.Fatal("blob hash must fold u8 leaf hashes in order")
	}
}

func TestEmptyStringAndBlobDistinct(t *testing.T) {
	s := mustString(t, "")
	b, err := NewBlob(nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Hash() == b.Hash() {
		t.Fatal("empty string and empty blob must hash differently")
	}
}

func TestBlob_CopiesInput(t *testing.T) {
	src := []byte{1, 2, 3}
	b, err := NewBlob(src)
	if err != nil {
		t.Fatal(err)
	}
	src[0] = 99
	if b.Bytes()[0] != 1 {
		t.Fatal("blob must copy its input")
	}
}
