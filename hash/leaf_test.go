package hash

import (
	"bytes"
	"math"
	"testing"
)

func mustLeaf(t *testing.T, name string, canonical []byte) Hash {
	t.Helper()
	h, err := Leaf(name, canonical)
	if err != nil {
		t.Fatalf("leaf %s: %v", name, err)
	}
	return h
}

func TestCanonicalNull(t *testing.T) {
	if len(CanonicalNull()) != 0 {
		t.Fatal("null canonical form must be empty")
	}
}

func TestCanonicalBool(t *testing.T) {
	if !bytes.Equal(CanonicalBool(false), []byte{0x00}) {
		t.Fatal("false must encode as 0x00")
	}
	if !bytes.Equal(CanonicalBool(true), []byte{0x01}) {
		t.Fatal("true must encode as 0x01")
	}
}

func TestCanonicalInt_Widths(t *testing.T) {
	tests := []struct {
		v     int64
		width int
		want  []byte
	}{
		{7, 4, []byte{0x00, 0x00, 0x00, 0x07}},
		{-1, 1, []byte{0xFF}},
		{-1, 2, []byte{0xFF, 0xFF}},
		{-128, 1, []byte{0x80}},
		{256, 2, []byte{0x01, 0x00}},
		{7, 8, []byte{0, 0, 0, 0, 0, 0, 0, 7}},
	}
	for _, tt := range tests {
		got, err := CanonicalInt(tt.v, tt.width)
		if err != nil {
			t.Fatalf("CanonicalInt(%d, %d): %v", tt.v, tt.width, err)
		}
		if !bytes.Equal(got, tt.want) {
			t.Fatalf("CanonicalInt(%d, %d) = %x, want %x", tt.v, tt.width, got, tt.want)
		}
	}
}

func TestCanonicalInt_RangeErrors(t *testing.T) {
	if _, err := CanonicalInt(128, 1); err == nil {
		t.Fatal("128 must not fit i8")
	}
	if _, err := CanonicalInt(-129, 1); err == nil {
		t.Fatal("-129 must not fit i8")
	}
	if _, err := CanonicalInt(1<<31, 4); err == nil {
		t.Fatal("2^31 must not fit i32")
	}
	if _, err := CanonicalInt(7, 3); err == nil {
		t.Fatal("width 3 is invalid")
	}
}

func TestCanonicalUint(t *testing.T) {
	got, err := CanonicalUint(0xABCD, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0xAB, 0xCD}) {
		t.Fatalf("u16 encoding wrong: %x", got)
	}

	if _, err := CanonicalUint(256, 1); err == nil {
		t.Fatal("256 must not fit u8")
	}
}

func TestCanonicalWide(t *testing.T) {
	buf := make([]byte, 16)
	buf[15] = 1
	got, err := CanonicalWide(buf, 16)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, buf) {
		t.Fatal("wide integers pass through unchanged")
	}

	if _, err := CanonicalWide(buf, 32); err == nil {
		t.Fatal("16-byte buffer must not pass as i256")
	}
	if _, err := CanonicalWide(buf, 8); err == nil {
		t.Fatal("width 8 is not a wide width")
	}
}

func TestCanonicalFloat_NaNCanonicalized(t *testing.T) {
	// Invariant 2 requires every NaN to hash identically, so all NaN
	// bit patterns collapse to one quiet NaN before hashing.
	quiet := math.NaN()
	weird := math.Float64frombits(0x7FF0000000000001) // signaling payload
	negated := math.Float64frombits(0xFFF8000000000000)

	a := CanonicalF64(quiet)
	b := CanonicalF64(weird)
	c := CanonicalF64(negated)
	if !bytes.Equal(a, b) || !bytes.Equal(a, c) {
		t.Fatalf("NaN encodings must collapse: %x %x %x", a, b, c)
	}

	f32a := CanonicalF32(float32(math.NaN()))
	f32b := CanonicalF32(math.Float32frombits(0xFF800001))
	if !bytes.Equal(f32a, f32b) {
		t.Fatalf("f32 NaN encodings must collapse: %x %x", f32a, f32b)
	}
}

func TestCanonicalFloat_ZeroesDistinct(t *testing.T) {
	// +0.0 and -0.0 are structurally distinct IEEE values and keep
	// their distinct encodings.
	if bytes.Equal(CanonicalF64(0.0), CanonicalF64(math.Copysign(0, -1))) {
		t.Fatal("+0.0 and -0.0 must encode differently")
	}
}

func TestCanonicalChar(t *testing.T) {
	got, err := CanonicalChar('A')
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x41}) {
		t.Fatalf("ASCII char encoding wrong: %x", got)
	}

	got, err = CanonicalChar('\U0001F600')
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("U+1F600 must encode to 4 UTF-8 bytes, got %d", len(got))
	}

	if _, err := CanonicalChar(rune(0xD800)); err == nil {
		t.Fatal("surrogate code points are invalid")
	}
}

func TestLeaf_TypeTagging(t *testing.T) {
	// Property 8 / Scenario S6: the same underlying bytes under
	// distinct numeric types yield distinct value hashes.
	seven32, _ := CanonicalInt(7, 4)
	seven64, _ := CanonicalInt(7, 8)
	if mustLeaf(t, TypeI32, seven32) == mustLeaf(t, TypeI64, seven64) {
		t.Fatal("i32(7) and i64(7) must hash differently")
	}

	zero32, _ := CanonicalInt(0, 4)
	zero64, _ := CanonicalInt(0, 8)
	if mustLeaf(t, TypeI32, zero32) == mustLeaf(t, TypeI64, zero64) {
		t.Fatal("i32(0) and i64(0) must hash differently")
	}

	// Identical canonical bytes, different type: i8(1) vs u8(1).
	one := []byte{0x01}
	if mustLeaf(t, TypeI8, one) == mustLeaf(t, TypeU8, one) {
		t.Fatal("i8(1) and u8(1) must hash differently")
	}
}

func TestLeaf_Deterministic(t *testing.T) {
	canonical, _ := CanonicalInt(42, 4)
	a := mustLeaf(t, TypeI32, canonical)
	b := mustLeaf(t, TypeI32, canonical)
	if a != b {
		t.Fatal("leaf hashing must be deterministic")
	}
}
