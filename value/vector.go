package value

import (
	"github.com/dacite-io/dacite/errors"
	"github.com/dacite-io/dacite/hash"
)

// Vector is a persistent sequence of arbitrary values backed by a
// finger tree. Identity is the ordered fold of element hashes; because
// fuse is associative, push and concat maintain the fold incrementally
// instead of re-reducing the whole sequence.
type Vector struct {
	tree ftree
	n    int

	// data is the sequence data hash (the fold), kept alongside the
	// full value hash so push/concat are O(1) hash work.
	data hash.Hash
	h    hash.Hash
}

func (v *Vector) Kind() Kind       { return KindVector }
func (v *Vector) TypeName() string { return hash.TypeVector }
func (v *Vector) Hash() hash.Hash  { return v.h }
func (v *Vector) sealed()          {}

// Len returns the number of elements.
func (v *Vector) Len() int { return v.n }

// NewVector constructs a vector from elements in order.
func NewVector(elems ...Value) (*Vector, error) {
	children := make([]hash.Hash, len(elems))
	t := ftree(ftEmpty{})
	for i, e := range elems {
		if e == nil {
			return nil, errors.Newf("vector element %d is nil", i)
		}
		children[i] = e.Hash()
		t = pushBack(t, e)
	}
	data, err := hash.SequenceData(children)
	if err != nil {
		return nil, err
	}
	return vectorFrom(t, len(elems), data)
}

func vectorFrom(t ftree, n int, data hash.Hash) (*Vector, error) {
	h, err := hash.ValueHash(hash.TypeHash(hash.TypeVector), data)
	if err != nil {
		return nil, err
	}
	return &Vector{tree: t, n: n, data: data, h: h}, nil
}

// At returns the element at index i.
func (v *Vector) At(i int) (Value, error) {
	if i < 0 || i >= v.n {
		return nil, errors.Newf("vector index %d out of range [0, %d)", i, v.n)
	}
	return atTree(v.tree, i), nil
}

// Each visits elements in order until fn returns false.
func (v *Vector) Each(fn func(Value) bool) {
	eachTree(v.tree, fn)
}

// Slice returns the elements as a Go slice.
func (v *Vector) Slice() []Value {
	out := make([]Value, 0, v.n)
	v.Each(func(e Value) bool {
		out = append(out, e)
		return true
	})
	return out
}

// PushBack returns a new vector with e appended. The fold extends by
// one fuse: data' = fuse(data, e.hash).
func (v *Vector) PushBack(e Value) (*Vector, error) {
	if e == nil {
		return nil, errors.New("cannot push nil value")
	}
	data := e.Hash()
	if v.n > 0 {
		var err error
		data, err = hash.Fuse(v.data, e.Hash())
		if err != nil {
			return nil, err
		}
	}
	return vectorFrom(pushBack(v.tree, e), v.n+1, data)
}

// PushFront returns a new vector with e prepended:
// data' = fuse(e.hash, data).
func (v *Vector) PushFront(e Value) (*Vector, error) {
	if e == nil {
		return nil, errors.New("cannot push nil value")
	}
	data := e.Hash()
	if v.n > 0 {
		var err error
		data, err = hash.Fuse(e.Hash(), v.data)
		if err != nil {
			return nil, err
		}
	}
	return vectorFrom(pushFront(v.tree, e), v.n+1, data)
}

// Concat returns the concatenation v ++ o. Associativity gives
// data' = fuse(v.data, o.data) when both sides are nonempty.
func (v *Vector) Concat(o *Vector) (*Vector, error) {
	switch {
	case v.n == 0:
		return o, nil
	case o.n == 0:
		return v, nil
	}
	data, err := hash.Fuse(v.data, o.data)
	if err != nil {
		return nil, err
	}
	return vectorFrom(concatTrees(v.tree, o.tree), v.n+o.n, data)
}
