package value

import (
	"math/bits"

	"github.com/dacite-io/dacite/errors"
	"github.com/dacite-io/dacite/hash"
)

// Entry is one key/value pair of a map.
type Entry struct {
	Key Value
	Val Value
}

// Map is a persistent hash-array-mapped trie keyed by the key's value
// hash. Descent consumes 5 bits per level from the most-mixed word of
// the hash (hash.Index); a key occurs at most once, and inserting an
// existing key replaces its value.
//
// Identity is order-independent: the multiset of entry hashes, sorted
// by byte order and folded. Any insertion order of the same entries
// produces the same map hash.
type Map struct {
	root  hnode // nil when empty
	count int
	h     hash.Hash
}

func (m *Map) Kind() Kind       { return KindMap }
func (m *Map) TypeName() string { return hash.TypeMap }
func (m *Map) Hash() hash.Hash  { return m.h }
func (m *Map) sealed()          {}

// Len returns the number of entries.
func (m *Map) Len() int { return m.count }

// hnode is a trie node: a single entry, a collision bucket, or a
// 32-way branch.
type hnode interface{ isNode() }

type hLeaf struct {
	kh  hash.Hash // key's value hash, drives descent
	key Value
	val Value
}

// hBucket holds entries whose key hashes agree on every indexed bit.
// Only reachable past hash.MaxIndexDepth — a cryptographic anomaly.
type hBucket struct {
	entries []*hLeaf
}

type hBranch struct {
	bitmap   uint32
	children []hnode // dense, one per set bit, ordered by index
}

func (*hLeaf) isNode()   {}
func (*hBucket) isNode() {}
func (*hBranch) isNode() {}

// slot returns the position of index idx among the set bits.
func (b *hBranch) slot(idx uint8) int {
	return bits.OnesCount32(b.bitmap & (1<<idx - 1))
}

// NewMap constructs a map from entries. A duplicate key (identified by
// key value hash) replaces the earlier entry.
func NewMap(entries ...Entry) (*Map, error) {
	var root hnode
	count := 0
	for i, e := range entries {
		if e.Key == nil || e.Val == nil {
			return nil, errors.Newf("map entry %d has a nil key or value", i)
		}
		var replaced bool
		root, replaced = insert(root, 0, &hLeaf{kh: e.Key.Hash(), key: e.Key, val: e.Val})
		if !replaced {
			count++
		}
	}
	return mapFrom(root, count)
}

func mapFrom(root hnode, count int) (*Map, error) {
	entryHashes := make([]hash.Hash, 0, count)
	var walkErr error
	walk(root, func(l *hLeaf) bool {
		eh, err := hash.EntryHash(l.key.Hash(), l.val.Hash())
		if err != nil {
			walkErr = err
			return false
		}
		entryHashes = append(entryHashes, eh)
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	data, err := hash.MapData(entryHashes)
	if err != nil {
		return nil, err
	}
	h, err := hash.ValueHash(hash.TypeHash(hash.TypeMap), data)
	if err != nil {
		return nil, err
	}
	return &Map{root: root, count: count, h: h}, nil
}

// Get looks up the value stored under key, identified by the key's
// value hash.
func (m *Map) Get(key Value) (Value, bool) {
	if key == nil || m.root == nil {
		return nil, false
	}
	kh := key.Hash()
	n := m.root
	depth := 0
	for {
		switch node := n.(type) {
		case *hLeaf:
			if node.kh == kh {
				return node.val, true
			}
			return nil, false
		case *hBucket:
			for _, l := range node.entries {
				if l.kh == kh {
					return l.val, true
				}
			}
			return nil, false
		case *hBranch:
			idx := hash.Index(kh, depth)
			if node.bitmap&(1<<idx) == 0 {
				return nil, false
			}
			n = node.children[node.slot(idx)]
			depth++
		}
	}
}

// Insert returns a new map with key bound to val. Existing bindings
// for the key are replaced.
func (m *Map) Insert(key, val Value) (*Map, error) {
	if key == nil || val == nil {
		return nil, errors.New("cannot insert a nil key or value")
	}
	root, replaced := insert(m.root, 0, &hLeaf{kh: key.Hash(), key: key, val: val})
	count := m.count
	if !replaced {
		count++
	}
	return mapFrom(root, count)
}

// Delete returns a new map without key. Deleting an absent key returns
// the receiver unchanged.
func (m *Map) Delete(key Value) (*Map, error) {
	if key == nil || m.root == nil {
		return m, nil
	}
	root, removed := remove(m.root, 0, key.Hash())
	if !removed {
		return m, nil
	}
	return mapFrom(root, m.count-1)
}

// Entries returns all entries. Order is the trie's internal order, not
// meaningful to callers; identity never depends on it.
func (m *Map) Entries() []Entry {
	out := make([]Entry, 0, m.count)
	walk(m.root, func(l *hLeaf) bool {
		out = append(out, Entry{Key: l.key, Val: l.val})
		return true
	})
	return out
}

func insert(n hnode, depth int, leaf *hLeaf) (hnode, bool) {
	switch node := n.(type) {
	case nil:
		return leaf, false

	case *hLeaf:
		if node.kh == leaf.kh {
			return leaf, true
		}
		return mergeLeaves(node, leaf, depth), false

	case *hBucket:
		entries := make([]*hLeaf, len(node.entries))
		copy(entries, node.entries)
		for i, l := range entries {
			if l.kh == leaf.kh {
				entries[i] = leaf
				return &hBucket{entries: entries}, true
			}
		}
		return &hBucket{entries: append(entries, leaf)}, false

	case *hBranch:
		idx := hash.Index(leaf.kh, depth)
		bit := uint32(1) << idx
		slot := node.slot(idx)

		if node.bitmap&bit != 0 {
			child, replaced := insert(node.children[slot], depth+1, leaf)
			children := make([]hnode, len(node.children))
			copy(children, node.children)
			children[slot] = child
			return &hBranch{bitmap: node.bitmap, children: children}, replaced
		}

		children := make([]hnode, 0, len(node.children)+1)
		children = append(children, node.children[:slot]...)
		children = append(children, leaf)
		children = append(children, node.children[slot:]...)
		return &hBranch{bitmap: node.bitmap | bit, children: children}, false
	}
	return nil, false
}

// mergeLeaves builds the minimal subtree separating two leaves with
// distinct key hashes, starting at depth.
func mergeLeaves(a, b *hLeaf, depth int) hnode {
	if depth >= hash.MaxIndexDepth {
		return &hBucket{entries: []*hLeaf{a, b}}
	}
	ia := hash.Index(a.kh, depth)
	ib := hash.Index(b.kh, depth)
	if ia == ib {
		return &hBranch{
			bitmap:   1 << ia,
			children: []hnode{mergeLeaves(a, b, depth+1)},
		}
	}
	if ia < ib {
		return &hBranch{bitmap: 1<<ia | 1<<ib, children: []hnode{a, b}}
	}
	return &hBranch{bitmap: 1<<ia | 1<<ib, children: []hnode{b, a}}
}

func remove(n hnode, depth int, kh hash.Hash) (hnode, bool) {
	switch node := n.(type) {
	case *hLeaf:
		if node.kh == kh {
			return nil, true
		}
		return node, false

	case *hBucket:
		for i, l := range node.entries {
			if l.kh != kh {
				continue
			}
			rest := make([]*hLeaf, 0, len(node.entries)-1)
			rest = append(rest, node.entries[:i]...)
			rest = append(rest, node.entries[i+1:]...)
			if len(rest) == 1 {
				return rest[0], true
			}
			return &hBucket{entries: rest}, true
		}
		return node, false

	case *hBranch:
		idx := hash.Index(kh, depth)
		bit := uint32(1) << idx
		if node.bitmap&bit == 0 {
			return node, false
		}
		slot := node.slot(idx)
		child, removed := remove(node.children[slot], depth+1, kh)
		if !removed {
			return node, false
		}

		if child == nil {
			if len(node.children) == 1 {
				return nil, true
			}
			children := make([]hnode, 0, len(node.children)-1)
			children = append(children, node.children[:slot]...)
			children = append(children, node.children[slot+1:]...)
			branch := &hBranch{bitmap: node.bitmap &^ bit, children: children}
			return collapse(branch), true
		}

		children := make([]hnode, len(node.children))
		copy(children, node.children)
		children[slot] = child
		branch := &hBranch{bitmap: node.bitmap, children: children}
		return collapse(branch), true
	}
	return n, false
}

// collapse replaces a single-entry branch with its entry so deletion
// restores the shape insertion would have built.
func collapse(b *hBranch) hnode {
	if len(b.children) != 1 {
		return b
	}
	switch only := b.children[0].(type) {
	case *hLeaf:
		return only
	default:
		return b
	}
}

func walk(n hnode, fn func(*hLeaf) bool) bool {
	switch node := n.(type) {
	case nil:
		return true
	case *hLeaf:
		return fn(node)
	case *hBucket:
		for _, l := range node.entries {
			if !fn(l) {
				return false
			}
		}
		return true
	case *hBranch:
		for _, c := range node.children {
			if !walk(c, fn) {
				return false
			}
		}
		return true
	}
	return true
}
