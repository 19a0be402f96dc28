package sync

import (
	"context"

	"github.com/dacite-io/dacite/errors"
	"github.com/dacite-io/dacite/hash"
	"github.com/dacite-io/dacite/store"
	"github.com/dacite-io/dacite/value"
)

// Publish writes the node tree of a value into dst and returns the
// root address. Subtrees already present are not re-encoded: content
// addressing makes Publish idempotent and incremental.
func Publish(ctx context.Context, v value.Value, dst store.Store) (hash.Hash, error) {
	addr := v.Hash()
	ok, err := dst.Has(ctx, addr)
	if err != nil {
		return hash.Hash{}, err
	}
	if ok {
		return addr, nil
	}

	var encoded []byte
	switch v := v.(type) {
	case *value.Leaf:
		encoded = EncodeLeaf(hash.TypeHash(v.TypeName()), v.Canonical())

	case *value.String:
		encoded = EncodeString(v.Text())

	case *value.Blob:
		encoded = EncodeBlob(v.Bytes())

	case *value.Vector:
		children := make([]hash.Hash, 0, v.Len())
		var childErr error
		v.Each(func(e value.Value) bool {
			if _, err := Publish(ctx, e, dst); err != nil {
				childErr = err
				return false
			}
			children = append(children, e.Hash())
			return true
		})
		if childErr != nil {
			return hash.Hash{}, childErr
		}
		encoded = EncodeSequence(hash.TypeHash(v.TypeName()), children)

	case *value.Map:
		pairs := make([]hash.Hash, 0, 2*v.Len())
		for _, e := range v.Entries() {
			if _, err := Publish(ctx, e.Key, dst); err != nil {
				return hash.Hash{}, err
			}
			if _, err := Publish(ctx, e.Val, dst); err != nil {
				return hash.Hash{}, err
			}
			pairs = append(pairs, e.Key.Hash(), e.Val.Hash())
		}
		sorted, err := sortPairs(pairs)
		if err != nil {
			return hash.Hash{}, err
		}
		encoded = EncodeMap(hash.TypeHash(v.TypeName()), sorted)

	default:
		return hash.Hash{}, errors.Newf("unknown value kind %s", v.Kind())
	}

	if err := dst.Put(ctx, addr, encoded); err != nil {
		return hash.Hash{}, err
	}
	return addr, nil
}
