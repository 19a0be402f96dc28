package value

// Persistent 2-3 finger tree measured by element count. This is the
// backing representation for Vector: amortized O(1) push at either
// end, O(log n) indexing and concatenation, full structural sharing.
// The tree shape never reaches identity — the hash package folds
// element hashes left to right regardless of grouping.

// ftElem is either a Value (at the leaf layer) or a *ftNode (in the
// spine). Measured size is 1 for values and the cached subtree count
// for nodes.
type ftElem interface{}

// ftNode is an interior 2-3 node.
type ftNode struct {
	size int
	kids []ftElem // len 2 or 3
}

func newFtNode(kids ...ftElem) *ftNode {
	n := &ftNode{kids: kids}
	for _, k := range kids {
		n.size += elemSize(k)
	}
	return n
}

func elemSize(e ftElem) int {
	if n, ok := e.(*ftNode); ok {
		return n.size
	}
	return 1
}

func digitSize(d []ftElem) int {
	total := 0
	for _, e := range d {
		total += elemSize(e)
	}
	return total
}

type ftree interface{ isTree() }

type ftEmpty struct{}

type ftSingle struct{ e ftElem }

type ftDeep struct {
	size int
	pr   []ftElem // prefix digit, 1-4 elems
	mid  ftree    // tree of *ftNode
	sf   []ftElem // suffix digit, 1-4 elems
}

func (ftEmpty) isTree()  {}
func (ftSingle) isTree() {}
func (*ftDeep) isTree()  {}

func treeSize(t ftree) int {
	switch t := t.(type) {
	case ftEmpty:
		return 0
	case ftSingle:
		return elemSize(t.e)
	case *ftDeep:
		return t.size
	}
	return 0
}

func newDeep(pr []ftElem, mid ftree, sf []ftElem) *ftDeep {
	return &ftDeep{
		size: digitSize(pr) + treeSize(mid) + digitSize(sf),
		pr:   pr,
		mid:  mid,
		sf:   sf,
	}
}

func pushFront(t ftree, e ftElem) ftree {
	switch t := t.(type) {
	case ftEmpty:
		return ftSingle{e}
	case ftSingle:
		return newDeep([]ftElem{e}, ftEmpty{}, []ftElem{t.e})
	case *ftDeep:
		if len(t.pr) < 4 {
			pr := append([]ftElem{e}, t.pr...)
			return newDeep(pr, t.mid, t.sf)
		}
		// Overfull digit: push three of the four down as a node.
		node := newFtNode(t.pr[1], t.pr[2], t.pr[3])
		return newDeep([]ftElem{e, t.pr[0]}, pushFront(t.mid, node), t.sf)
	}
	return nil
}

func pushBack(t ftree, e ftElem) ftree {
	switch t := t.(type) {
	case ftEmpty:
		return ftSingle{e}
	case ftSingle:
		return newDeep([]ftElem{t.e}, ftEmpty{}, []ftElem{e})
	case *ftDeep:
		if len(t.sf) < 4 {
			sf := append(append([]ftElem(nil), t.sf...), e)
			return newDeep(t.pr, t.mid, sf)
		}
		node := newFtNode(t.sf[0], t.sf[1], t.sf[2])
		return newDeep(t.pr, pushBack(t.mid, node), []ftElem{t.sf[3], e})
	}
	return nil
}

// atElem descends to the i'th value under an element.
func atElem(e ftElem, i int) Value {
	for {
		n, ok := e.(*ftNode)
		if !ok {
			return e.(Value)
		}
		for _, k := range n.kids {
			if sz := elemSize(k); i < sz {
				e = k
				break
			} else {
				i -= sz
			}
		}
	}
}

func atDigit(d []ftElem, i int) Value {
	for _, e := range d {
		if sz := elemSize(e); i < sz {
			return atElem(e, i)
		} else {
			i -= sz
		}
	}
	return nil
}

// atTree returns the i'th value of the tree. Caller guarantees
// 0 <= i < treeSize(t).
func atTree(t ftree, i int) Value {
	switch t := t.(type) {
	case ftSingle:
		return atElem(t.e, i)
	case *ftDeep:
		if prSize := digitSize(t.pr); i < prSize {
			return atDigit(t.pr, i)
		} else {
			i -= prSize
		}
		if midSize := treeSize(t.mid); i < midSize {
			return atTree(t.mid, i)
		} else {
			i -= midSize
		}
		return atDigit(t.sf, i)
	}
	return nil
}

// eachElem visits values under an element in order. Returns false to
// stop early.
func eachElem(e ftElem, fn func(Value) bool) bool {
	if n, ok := e.(*ftNode); ok {
		for _, k := range n.kids {
			if !eachElem(k, fn) {
				return false
			}
		}
		return true
	}
	return fn(e.(Value))
}

func eachTree(t ftree, fn func(Value) bool) bool {
	switch t := t.(type) {
	case ftEmpty:
		return true
	case ftSingle:
		return eachElem(t.e, fn)
	case *ftDeep:
		for _, e := range t.pr {
			if !eachElem(e, fn) {
				return false
			}
		}
		if !eachTree(t.mid, fn) {
			return false
		}
		for _, e := range t.sf {
			if !eachElem(e, fn) {
				return false
			}
		}
		return true
	}
	return true
}

// nodes groups 2-12 elements into 2-3 nodes for concatenation.
func nodes(elems []ftElem) []ftElem {
	var out []ftElem
	for len(elems) > 0 {
		switch {
		case len(elems) == 2:
			out = append(out, newFtNode(elems[0], elems[1]))
			elems = nil
		case len(elems) == 3:
			out = append(out, newFtNode(elems[0], elems[1], elems[2]))
			elems = nil
		case len(elems) == 4:
			out = append(out, newFtNode(elems[0], elems[1]), newFtNode(elems[2], elems[3]))
			elems = nil
		default:
			out = append(out, newFtNode(elems[0], elems[1], elems[2]))
			elems = elems[3:]
		}
	}
	return out
}

// app3 concatenates t1 ++ ts ++ t2 where ts is a small middle list.
func app3(t1 ftree, ts []ftElem, t2 ftree) ftree {
	switch t1 := t1.(type) {
	case ftEmpty:
		t := t2
		for i := len(ts) - 1; i >= 0; i-- {
			t = pushFront(t, ts[i])
		}
		return t
	case ftSingle:
		t := t2
		for i := len(ts) - 1; i >= 0; i-- {
			t = pushFront(t, ts[i])
		}
		return pushFront(t, t1.e)
	}

	switch t2 := t2.(type) {
	case ftEmpty:
		t := t1
		for _, e := range ts {
			t = pushBack(t, e)
		}
		return t
	case ftSingle:
		t := t1
		for _, e := range ts {
			t = pushBack(t, e)
		}
		return pushBack(t, t2.e)
	}

	d1 := t1.(*ftDeep)
	d2 := t2.(*ftDeep)

	middle := make([]ftElem, 0, len(d1.sf)+len(ts)+len(d2.pr))
	middle = append(middle, d1.sf...)
	middle = append(middle, ts...)
	middle = append(middle, d2.pr...)

	return newDeep(d1.pr, app3(d1.mid, nodes(middle), d2.mid), d2.sf)
}

func concatTrees(t1, t2 ftree) ftree {
	return app3(t1, nil, t2)
}
