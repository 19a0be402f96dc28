package value

import (
	"github.com/dacite-io/dacite/hash"
)

// u8LeafHashes precomputes the value hash of every u8 leaf. Blob
// hashing folds one of these per byte; without the table every blob
// byte would cost a fresh SHA-256.
var u8LeafHashes [256]hash.Hash

func init() {
	for i := 0; i < 256; i++ {
		canonical, err := hash.CanonicalUint(uint64(i), 1)
		if err != nil {
			panic("value: u8 canonical encoding failed: " + err.Error())
		}
		h, err := hash.Leaf(hash.TypeU8, canonical)
		if err != nil {
			panic("value: u8 leaf hashing failed: " + err.Error())
		}
		u8LeafHashes[i] = h
	}
}

// String is a sequence of char leaves. Identity folds the value hashes
// of the code points in order; the backing representation is a plain
// Go string.
type String struct {
	text string
	h    hash.Hash
}

func (s *String) Kind() Kind       { return KindString }
func (s *String) TypeName() string { return hash.TypeString }
func (s *String) Hash() hash.Hash  { return s.h }
func (s *String) sealed()          {}

// Text returns the string's contents.
func (s *String) Text() string { return s.text }

// Len returns the number of code points.
func (s *String) Len() int { return len([]rune(s.text)) }

// NewString constructs a string value. The input must be valid UTF-8;
// each code point becomes a char leaf in the identity fold.
func NewString(text string) (*String, error) {
	runes := []rune(text)
	children := make([]hash.Hash, len(runes))
	for i, r := range runes {
		canonical, err := hash.CanonicalChar(r)
		if err != nil {
			return nil, err
		}
		h, err := hash.Leaf(hash.TypeChar, canonical)
		if err != nil {
			return nil, err
		}
		children[i] = h
	}
	data, err := hash.SequenceData(children)
	if err != nil {
		return nil, err
	}
	h, err := hash.ValueHash(hash.TypeHash(hash.TypeString), data)
	if err != nil {
		return nil, err
	}
	return &String{text: text, h: h}, nil
}

// Blob is a sequence of u8 leaves backed by a byte slice.
type Blob struct {
	data []byte
	h    hash.Hash
}

func (b *Blob) Kind() Kind       { return KindBlob }
func (b *Blob) TypeName() string { return hash.TypeBlob }
func (b *Blob) Hash() hash.Hash  { return b.h }
func (b *Blob) sealed()          {}

// Bytes returns a copy of the blob's contents.
func (b *Blob) Bytes() []byte {
	return append([]byte(nil), b.data...)
}

// Len returns the number of bytes.
func (b *Blob) Len() int { return len(b.data) }

// NewBlob constructs a blob value. The input is copied.
func NewBlob(data []byte) (*Blob, error) {
	children := make([]hash.Hash, len(data))
	for i, c := range data {
		children[i] = u8LeafHashes[c]
	}
	seqData, err := hash.SequenceData(children)
	if err != nil {
		return nil, err
	}
	h, err := hash.ValueHash(hash.TypeHash(hash.TypeBlob), seqData)
	if err != nil {
		return nil, err
	}
	return &Blob{data: append([]byte(nil), data...), h: h}, nil
}
