package btree

import (
	"sort"
	"sync/atomic"
)

type leafNode[T any] struct {
	keys []T
	len  int
	edit *atomic.Bool
}

func newLeaf[T any](len int, edit *atomic.Bool) *leafNode[T] {
	out := leafNode[T]{
		len:  len,
		edit: edit,
	}
	if edit.Load() {
		out.keys = make([]T, min(maxLen, len+expandLen))
	} else {
		out.keys = make([]T, len)
	}
	return &out
}

func (n *leafNode[T]) isEditable() bool {
	return n.edit.Load()
}

func (n *leafNode[T]) leafPart() *leafNode[T] {
	return n
}

func (n *leafNode[T]) maxKey() T {
	return n.keys[n.len-1]
}

// search returns the index of key, or (-i - 1) where i is the index at
// which key would be inserted.
func (n *leafNode[T]) search(key T, cmp compareFunc[T]) int {
	i := n.searchFirst(key, cmp)
	if i < n.len && cmp(key, n.keys[i]) == 0 {
		return i
	}
	return (-i) - 1
}

// searchFirst returns the index of the first key not before key.
func (n *leafNode[T]) searchFirst(key T, cmp compareFunc[T]) int {
	return sort.Search(n.len, func(i int) bool {
		return cmp(n.keys[i], key) >= 0
	})
}

func (n *leafNode[T]) at(i int) (T, bool) {
	if i < 0 || i >= n.len {
		return zero[T]()
	}
	return n.keys[i], true
}

func (n *leafNode[T]) floor(key T, cmp compareFunc[T]) (T, bool) {
	idx := n.search(key, cmp)
	if idx >= 0 {
		return n.keys[idx], true
	}
	return n.at((-idx) - 2)
}

func (n *leafNode[T]) lower(key T, cmp compareFunc[T]) (T, bool) {
	return n.at(n.searchFirst(key, cmp) - 1)
}

func (n *leafNode[T]) ceil(key T, cmp compareFunc[T]) (T, bool) {
	return n.at(n.searchFirst(key, cmp))
}

func (n *leafNode[T]) add(
	key T,
	cmp compareFunc[T],
	edit *atomic.Bool,
) nodeReturn[T] {
	idx := n.search(key, cmp)
	replace := idx >= 0
	ins := idx
	if !replace {
		ins = (-idx) - 1
	}

	if n.isEditable() && (n.len < len(n.keys) || replace) {
		return n.modifyInPlace(ins, key, replace)
	}

	if replace {
		return n.copyAndReplaceNode(ins, key, edit)
	}

	if n.len < maxLen {
		return n.copyAndInsertNode(ins, key, edit)
	}

	return n.split(ins, key, edit)
}

func (n *leafNode[T]) modifyInPlace(ins int, key T, replace bool) nodeReturn[T] {
	switch {
	case replace:
		n.keys[ins] = key
		return nodeReturn[T]{status: returnReplaced, nodes: [3]node[T]{n}}
	case ins == n.len:
		n.keys[n.len] = key
		n.len++
		return nodeReturn[T]{status: returnOne, nodes: [3]node[T]{n}}
	default:
		copy(n.keys[ins+1:], n.keys[ins:n.len])
		n.keys[ins] = key
		n.len++
		return nodeReturn[T]{status: returnEarly}
	}
}

func (n *leafNode[T]) copyAndInsertNode(ins int, key T, edit *atomic.Bool) nodeReturn[T] {
	nl := newLeaf[T](n.len+1, edit)
	ks := stitcher[T]{nl.keys, 0}
	ks.copyAll(n.keys, 0, ins)
	ks.copyOne(key)
	ks.copyAll(n.keys, ins, n.len)
	return nodeReturn[T]{status: returnOne, nodes: [3]node[T]{nl}}
}

func (n *leafNode[T]) copyAndReplaceNode(ins int, key T, edit *atomic.Bool) nodeReturn[T] {
	nl := newLeaf[T](n.len, edit)
	copy(nl.keys, n.keys[:n.len])
	nl.keys[ins] = key
	return nodeReturn[T]{status: returnReplaced, nodes: [3]node[T]{nl}}
}

func (n *leafNode[T]) split(ins int, key T, edit *atomic.Bool) nodeReturn[T] {
	firstHalf := (n.len + 1) >> 1
	secondHalf := n.len + 1 - firstHalf
	n1 := newLeaf[T](firstHalf, edit)
	n2 := newLeaf[T](secondHalf, edit)

	if ins < firstHalf {
		ks := stitcher[T]{n1.keys, 0}
		ks.copyAll(n.keys, 0, ins)
		ks.copyOne(key)
		ks.copyAll(n.keys, ins, firstHalf-1)
		copy(n2.keys, n.keys[firstHalf-1:n.len])
		return nodeReturn[T]{status: returnTwo, nodes: [3]node[T]{n1, n2}}
	}

	copy(n1.keys, n.keys[0:firstHalf])
	ks := stitcher[T]{n2.keys, 0}
	ks.copyAll(n.keys, firstHalf, ins)
	ks.copyOne(key)
	ks.copyAll(n.keys, ins, n.len)
	return nodeReturn[T]{status: returnTwo, nodes: [3]node[T]{n1, n2}}
}

func (n *leafNode[T]) remove(
	key T,
	leftNode, rightNode node[T],
	cmp compareFunc[T],
	edit *atomic.Bool,
) nodeReturn[T] {
	idx := n.search(key, cmp)
	if idx < 0 {
		return nodeReturn[T]{status: returnUnchanged}
	}

	newLen := n.len - 1

	var left, right *leafNode[T]
	if leftNode != nil {
		left = leftNode.leafPart()
	}
	if rightNode != nil {
		right = rightNode.leafPart()
	}

	switch {
	case !n.needsMerge(newLen, left, right):
		if n.isEditable() {
			return n.removeInPlace(idx, newLen, left, right)
		}
		return n.copyAndRemoveIdx(idx, newLen, left, right, edit)
	case left.canJoin(newLen):
		return n.joinLeft(idx, newLen, left, right, edit)
	case right.canJoin(newLen):
		return n.joinRight(idx, newLen, left, right, edit)
	case left != nil &&
		(left.isEditable() || right == nil || left.len >= right.len):
		return n.borrowLeft(idx, newLen, left, right, edit)
	case right != nil:
		return n.borrowRight(idx, newLen, left, right, edit)
	default:
		panic("unreachable")
	}
}

func (n *leafNode[T]) needsMerge(newLen int, left, right *leafNode[T]) bool {
	return newLen < minLen && (left != nil || right != nil)
}

func (n *leafNode[T]) removeInPlace(idx, newLen int, left, right *leafNode[T]) nodeReturn[T] {
	copy(n.keys[idx:], n.keys[idx+1:n.len])
	var zero T
	n.keys[newLen] = zero
	n.len = newLen
	if idx == newLen {
		return nodeReturn[T]{
			status: returnThree,
			nodes:  [...]node[T]{leafToNode(left), n, leafToNode(right)},
		}
	}
	return nodeReturn[T]{status: returnEarly}
}

func (n *leafNode[T]) copyAndRemoveIdx(
	idx, newLen int,
	left, right *leafNode[T],
	edit *atomic.Bool,
) nodeReturn[T] {
	center := newLeaf[T](newLen, edit)
	copy(center.keys, n.keys[0:idx])
	copy(center.keys[idx:], n.keys[idx+1:n.len])
	return nodeReturn[T]{
		status: returnThree,
		nodes:  [...]node[T]{leafToNode(left), center, leafToNode(right)},
	}
}

func (n *leafNode[T]) joinLeft(
	idx, newLen int,
	left, right *leafNode[T],
	edit *atomic.Bool,
) nodeReturn[T] {
	join := newLeaf[T](left.len+newLen, edit)
	ks := stitcher[T]{join.keys, 0}
	ks.copyAll(left.keys, 0, left.len)
	ks.copyAll(n.keys, 0, idx)
	ks.copyAll(n.keys, idx+1, n.len)
	return nodeReturn[T]{
		status: returnThree,
		nodes:  [...]node[T]{nil, join, leafToNode(right)},
	}
}

func (n *leafNode[T]) joinRight(
	idx, newLen int,
	left, right *leafNode[T],
	edit *atomic.Bool,
) nodeReturn[T] {
	join := newLeaf[T](right.len+newLen, edit)
	ks := stitcher[T]{join.keys, 0}
	ks.copyAll(n.keys, 0, idx)
	ks.copyAll(n.keys, idx+1, n.len)
	ks.copyAll(right.keys, 0, right.len)
	return nodeReturn[T]{
		status: returnThree,
		nodes:  [...]node[T]{leafToNode(left), join, nil},
	}
}

func (n *leafNode[T]) canJoin(newLen int) bool {
	return n != nil && (n.len+newLen) < maxLen
}

func (n *leafNode[T]) borrowLeft(
	idx, newLen int,
	left, right *leafNode[T],
	edit *atomic.Bool,
) nodeReturn[T] {
	var (
		totalLen     = left.len + newLen
		newLeftLen   = totalLen >> 1
		newCenterLen = totalLen - newLeftLen
		leftTail     = left.len - newLeftLen
	)

	var newLeft, newCenter *leafNode[T]

	// prepend to center
	if n.isEditable() && newCenterLen <= len(n.keys) {
		newCenter = n
		copy(n.keys[leftTail+idx:], n.keys[idx+1:n.len])
		copy(n.keys[leftTail:], n.keys[0:idx])
		copy(n.keys[0:], left.keys[newLeftLen:left.len])
		n.len = newCenterLen
	} else {
		newCenter = newLeaf[T](newCenterLen, edit)
		ks := stitcher[T]{newCenter.keys, 0}
		ks.copyAll(left.keys, newLeftLen, left.len)
		ks.copyAll(n.keys, 0, idx)
		ks.copyAll(n.keys, idx+1, n.len)
	}

	// shrink left
	if left.isEditable() {
		newLeft = left
		left.len = newLeftLen
	} else {
		newLeft = newLeaf[T](newLeftLen, edit)
		copy(newLeft.keys, left.keys[0:newLeftLen])
	}

	return nodeReturn[T]{
		status: returnThree,
		nodes:  [...]node[T]{newLeft, newCenter, leafToNode(right)},
	}
}

func (n *leafNode[T]) borrowRight(
	idx, newLen int,
	left, right *leafNode[T],
	edit *atomic.Bool,
) nodeReturn[T] {
	var (
		totalLen     = newLen + right.len
		newCenterLen = totalLen >> 1
		newRightLen  = totalLen - newCenterLen
		rightHead    = right.len - newRightLen
	)

	var newCenter, newRight *leafNode[T]

	// append to center
	if n.isEditable() && newCenterLen <= len(n.keys) {
		newCenter = n
		ks := stitcher[T]{n.keys, idx}
		ks.copyAll(n.keys, idx+1, n.len)
		ks.copyAll(right.keys, 0, rightHead)
		n.len = newCenterLen
	} else {
		newCenter = newLeaf[T](newCenterLen, edit)
		ks := stitcher[T]{newCenter.keys, 0}
		ks.copyAll(n.keys, 0, idx)
		ks.copyAll(n.keys, idx+1, n.len)
		ks.copyAll(right.keys, 0, rightHead)
	}

	// cut head from right
	if right.isEditable() {
		newRight = right
		copy(right.keys, right.keys[rightHead:right.len])
		right.len = newRightLen
	} else {
		newRight = newLeaf[T](newRightLen, edit)
		copy(newRight.keys, right.keys[rightHead:right.len])
	}
	return nodeReturn[T]{
		status: returnThree,
		nodes:  [...]node[T]{leafToNode(left), newCenter, newRight},
	}
}

func leafToNode[T any](n *leafNode[T]) node[T] {
	if n != nil {
		return n
	}
	return nil
}
