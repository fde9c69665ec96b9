// Package btree implements a persistent B+Tree ordered by a caller
// supplied compare function. Keys are unique under that order; adding
// a key that compares equal to an existing one replaces it.
package btree

import "sync/atomic"

type Error string

func (e Error) Error() string {
	return string(e)
}

const ErrTafterP = Error("transient used after persistent call")

type compareFunc[T any] func(a, b T) int

type BTree[T any] struct {
	root  node[T]
	count int
	edit  *atomic.Bool

	cmp compareFunc[T]
}

// Empty returns an empty tree ordered by cmp.
func Empty[T any](cmp func(a, b T) int) *BTree[T] {
	edit := new(atomic.Bool)
	return &BTree[T]{
		root: newLeaf[T](0, edit),
		edit: edit,
		cmp:  cmp,
	}
}

// Floor returns the greatest key that is not after key.
func (t *BTree[T]) Floor(key T) (T, bool) {
	return t.root.floor(key, t.cmp)
}

// Lower returns the greatest key strictly before key.
func (t *BTree[T]) Lower(key T) (T, bool) {
	return t.root.lower(key, t.cmp)
}

// Ceil returns the least key that is not before key.
func (t *BTree[T]) Ceil(key T) (T, bool) {
	return t.root.ceil(key, t.cmp)
}

func (t *BTree[T]) Add(key T) *BTree[T] {
	ret := t.root.add(key, t.cmp, t.edit)
	var newRoot node[T]
	switch ret.status {
	case returnUnchanged:
		return t
	case returnOne:
		newRoot = ret.nodes[0]
	case returnReplaced:
		return t.with(ret.nodes[0], t.count)
	default:
		newRoot = joinRoots(ret.nodes[0], ret.nodes[1], t.edit)
	}
	return t.with(newRoot, t.count+1)
}

func (t *BTree[T]) Delete(key T) *BTree[T] {
	ret := t.root.remove(key, nil, nil, t.cmp, t.edit)
	if ret.status == returnUnchanged {
		return t
	}
	return t.with(collapseRoot(ret.nodes[1]), t.count-1)
}

func (t *BTree[T]) with(root node[T], count int) *BTree[T] {
	return &BTree[T]{
		root:  root,
		count: count,
		edit:  t.edit,
		cmp:   t.cmp,
	}
}

func (t *BTree[T]) Length() int {
	return t.count
}

func (t *BTree[T]) Iterator() Iterator[T] {
	i := makeIterator(t.root)
	i.HasNext() // Make sure the initial iterator value is valid
	return i
}

// joinRoots builds a new root over the two halves of a split root.
func joinRoots[T any](n1, n2 node[T], edit *atomic.Bool) node[T] {
	nr := newNode[T](2, edit)
	nr.keys[0] = n1.maxKey()
	nr.keys[1] = n2.maxKey()
	nr.children[0] = n1
	nr.children[1] = n2
	return nr
}

// collapseRoot drops a root that is left with a single child.
func collapseRoot[T any](root node[T]) node[T] {
	if nr, ok := root.(*internalNode[T]); ok && nr.len == 1 {
		return nr.children[0]
	}
	return root
}

type Iterator[T any] struct {
	depth int
	stack [maxIterDepth]struct {
		n   node[T]
		cur int
	}
}

func makeIterator[T any](n node[T]) Iterator[T] {
	var i Iterator[T]
	i.stack[0].n = n
	return i
}

func (i *Iterator[T]) Next() T {
	state := i.stack[i.depth]
	n := state.n.(*leafNode[T])
	out := n.keys[state.cur]
	i.stack[i.depth].cur++
	return out
}

func (i *Iterator[T]) HasNext() bool {
	state := i.stack[i.depth]
	switch n := state.n.(type) {
	case *leafNode[T]:
		if state.cur < n.len {
			return true
		}
	case *internalNode[T]:
		if state.cur < n.len {
			child := n.children[state.cur]
			i.stack[i.depth].cur++
			i.pushNode(child)
			if _, ok := child.(*leafNode[T]); ok {
				return true
			}
			return i.HasNext()
		}
	default:
		return false
	}
	if i.depth == 0 {
		return false
	}
	i.popNode()
	return i.HasNext()
}

func (i *Iterator[T]) pushNode(n node[T]) {
	i.depth++
	i.stack[i.depth].n = n
	i.stack[i.depth].cur = 0
}

func (i *Iterator[T]) popNode() {
	i.stack[i.depth].n = nil
	i.stack[i.depth].cur = 0
	i.depth--
}

// TBTree is a transient view of a BTree. It edits the nodes it owns in
// place until AsPersistent is called, after which any further use
// panics with ErrTafterP.
type TBTree[T any] struct {
	root  node[T]
	count int
	edit  *atomic.Bool

	cmp compareFunc[T]
}

func (t *BTree[T]) AsTransient() *TBTree[T] {
	edit := new(atomic.Bool)
	edit.Store(true)
	return &TBTree[T]{
		root:  t.root,
		count: t.count,
		edit:  edit,
		cmp:   t.cmp,
	}
}

func (t *TBTree[T]) Ceil(key T) (T, bool) {
	t.ensureEditable()
	return t.root.ceil(key, t.cmp)
}

func (t *TBTree[T]) Add(key T) *TBTree[T] {
	t.ensureEditable()
	ret := t.root.add(key, t.cmp, t.edit)
	switch ret.status {
	case returnUnchanged:
		return t
	case returnEarly:
	case returnReplaced:
		t.root = ret.nodes[0]
		return t
	case returnOne:
		t.root = ret.nodes[0]
	default:
		t.root = joinRoots(ret.nodes[0], ret.nodes[1], t.edit)
	}
	t.count++
	return t
}

func (t *TBTree[T]) Delete(key T) *TBTree[T] {
	t.ensureEditable()
	ret := t.root.remove(key, nil, nil, t.cmp, t.edit)
	switch ret.status {
	case returnUnchanged:
		return t
	case returnEarly:
	default:
		t.root = collapseRoot(ret.nodes[1])
	}
	t.count--
	return t
}

func (t *TBTree[T]) Length() int {
	t.ensureEditable()
	return t.count
}

func (t *TBTree[T]) AsPersistent() *BTree[T] {
	t.ensureEditable()
	t.edit.Store(false)
	return &BTree[T]{
		root:  t.root,
		count: t.count,
		edit:  t.edit,
		cmp:   t.cmp,
	}
}

func (t *TBTree[T]) ensureEditable() {
	if !t.edit.Load() {
		panic(ErrTafterP)
	}
}

const (
	maxLen    = 64
	minLen    = maxLen >> 1
	expandLen = 8
	// maxIterDepth bounds the height of a tree whose nodes hold at
	// least minLen keys: log_32 of the address space, rounded up.
	maxIterDepth = (64 + 1) / 5
)

type node[T any] interface {
	search(key T, cmp compareFunc[T]) int
	floor(key T, cmp compareFunc[T]) (T, bool)
	lower(key T, cmp compareFunc[T]) (T, bool)
	ceil(key T, cmp compareFunc[T]) (T, bool)
	add(key T, cmp compareFunc[T], edit *atomic.Bool) nodeReturn[T]
	remove(key T, left, right node[T], cmp compareFunc[T], edit *atomic.Bool) nodeReturn[T]
	leafPart() *leafNode[T]
	maxKey() T
}

type returnStatus uint8

const (
	returnUnchanged returnStatus = iota
	returnEarly
	returnReplaced
	returnOne
	returnTwo
	returnThree
)

type nodeReturn[T any] struct {
	status returnStatus
	nodes  [3]node[T]
}

func zero[T any]() (T, bool) {
	var out T
	return out, false
}
