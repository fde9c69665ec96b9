package btree

import "sync/atomic"

// internalNode keys each child by the greatest key beneath it. Only the
// order of those keys is relied upon; lookups always finish in a leaf.
type internalNode[T any] struct {
	*leafNode[T]

	children []node[T]
}

func newNode[T any](len int, edit *atomic.Bool) *internalNode[T] {
	return &internalNode[T]{
		leafNode: &leafNode[T]{
			keys: make([]T, len),
			len:  len,
			edit: edit,
		},
		children: make([]node[T], len),
	}
}

// child returns the index of the first child whose greatest key is not
// before key, or the last child when every key is before it.
func (n *internalNode[T]) child(key T, cmp compareFunc[T]) int {
	return min(n.searchFirst(key, cmp), n.len-1)
}

func (n *internalNode[T]) floor(key T, cmp compareFunc[T]) (T, bool) {
	idx := n.child(key, cmp)
	if out, ok := n.children[idx].floor(key, cmp); ok {
		return out, true
	}
	if idx > 0 {
		return n.children[idx-1].floor(key, cmp)
	}
	return zero[T]()
}

func (n *internalNode[T]) lower(key T, cmp compareFunc[T]) (T, bool) {
	idx := n.child(key, cmp)
	if out, ok := n.children[idx].lower(key, cmp); ok {
		return out, true
	}
	if idx > 0 {
		return n.children[idx-1].lower(key, cmp)
	}
	return zero[T]()
}

func (n *internalNode[T]) ceil(key T, cmp compareFunc[T]) (T, bool) {
	idx := n.searchFirst(key, cmp)
	if idx == n.len {
		return zero[T]()
	}
	return n.children[idx].ceil(key, cmp)
}

func (n *internalNode[T]) add(
	key T,
	cmp compareFunc[T],
	edit *atomic.Bool,
) nodeReturn[T] {
	ins := n.child(key, cmp)
	ret := n.children[ins].add(key, cmp, edit)
	switch ret.status {
	case returnUnchanged, returnEarly:
		return ret
	case returnOne, returnReplaced:
		if n.isEditable() {
			return n.modifyInPlace(ins, ret.nodes[0], ret.status)
		}
		return n.copyAndModify(ins, cmp, edit, ret.nodes[0], ret.status)
	default:
		if n.len < maxLen {
			return n.copyAndAppend(ins, ret.nodes[0], ret.nodes[1], edit)
		}
		return n.split(ins, ret.nodes[0], ret.nodes[1], edit)
	}
}

func (n *internalNode[T]) modifyInPlace(
	ins int, child node[T], status returnStatus,
) nodeReturn[T] {
	n.keys[ins] = child.maxKey()
	n.children[ins] = child
	// The parent only needs to hear about a new greatest key or a
	// replaced node.
	if ins == n.len-1 || status == returnReplaced {
		return nodeReturn[T]{status: status, nodes: [3]node[T]{n}}
	}
	return nodeReturn[T]{status: returnEarly}
}

func (n *internalNode[T]) copyAndModify(
	ins int,
	cmp compareFunc[T],
	edit *atomic.Bool,
	child node[T],
	status returnStatus,
) nodeReturn[T] {
	// A node a transient may edit in place must not share arrays with
	// a persistent one.
	share := !edit.Load()

	newKeys := n.keys
	if !share || cmp(child.maxKey(), n.keys[ins]) != 0 {
		newKeys = make([]T, n.len)
		copy(newKeys, n.keys[:n.len])
		newKeys[ins] = child.maxKey()
	}

	newChildren := n.children
	if !share || child != n.children[ins] {
		newChildren = make([]node[T], n.len)
		copy(newChildren, n.children[:n.len])
		newChildren[ins] = child
	}
	return nodeReturn[T]{
		status: status,
		nodes: [3]node[T]{
			&internalNode[T]{
				leafNode: &leafNode[T]{
					keys: newKeys,
					len:  n.len,
					edit: edit,
				},
				children: newChildren,
			},
		},
	}
}

func (n *internalNode[T]) copyAndAppend(
	ins int,
	n1, n2 node[T],
	edit *atomic.Bool,
) nodeReturn[T] {
	nn := newNode[T](n.len+1, edit)
	ks := stitcher[T]{nn.keys, 0}
	ks.copyAll(n.keys, 0, ins)
	ks.copyOne(n1.maxKey())
	ks.copyOne(n2.maxKey())
	ks.copyAll(n.keys, ins+1, n.len)

	cs := stitcher[node[T]]{nn.children, 0}
	cs.copyAll(n.children, 0, ins)
	cs.copyOne(n1)
	cs.copyOne(n2)
	cs.copyAll(n.children, ins+1, n.len)

	return nodeReturn[T]{status: returnOne, nodes: [3]node[T]{nn}}
}

func (n *internalNode[T]) split(
	ins int,
	n1, n2 node[T],
	edit *atomic.Bool,
) nodeReturn[T] {
	half1 := (n.len + 1) >> 1
	if ins+1 == half1 {
		half1++
	}
	half2 := n.len + 1 - half1

	node1 := newNode[T](half1, edit)
	node2 := newNode[T](half2, edit)

	if ins < half1 {
		ks := stitcher[T]{node1.keys, 0}
		ks.copyAll(n.keys, 0, ins)
		ks.copyOne(n1.maxKey())
		ks.copyOne(n2.maxKey())
		ks.copyAll(n.keys, ins+1, half1-1)
		copy(node2.keys, n.keys[half1-1:n.len])

		cs := stitcher[node[T]]{node1.children, 0}
		cs.copyAll(n.children, 0, ins)
		cs.copyOne(n1)
		cs.copyOne(n2)
		cs.copyAll(n.children, ins+1, half1-1)
		copy(node2.children, n.children[half1-1:n.len])

		return nodeReturn[T]{status: returnTwo, nodes: [3]node[T]{node1, node2}}
	}

	copy(node1.keys, n.keys[0:half1])
	ks := stitcher[T]{node2.keys, 0}
	ks.copyAll(n.keys, half1, ins)
	ks.copyOne(n1.maxKey())
	ks.copyOne(n2.maxKey())
	ks.copyAll(n.keys, ins+1, n.len)

	copy(node1.children, n.children[0:half1])
	cs := stitcher[node[T]]{node2.children, 0}
	cs.copyAll(n.children, half1, ins)
	cs.copyOne(n1)
	cs.copyOne(n2)
	cs.copyAll(n.children, ins+1, n.len)

	return nodeReturn[T]{status: returnTwo, nodes: [3]node[T]{node1, node2}}
}

func (n *internalNode[T]) remove(
	key T,
	leftNode, rightNode node[T],
	cmp compareFunc[T],
	edit *atomic.Bool,
) nodeReturn[T] {
	var left, right *internalNode[T]
	if leftNode != nil {
		left = leftNode.(*internalNode[T])
	}
	if rightNode != nil {
		right = rightNode.(*internalNode[T])
	}

	idx := n.searchFirst(key, cmp)
	if idx == n.len {
		return nodeReturn[T]{status: returnUnchanged}
	}

	var leftChild node[T]
	if idx > 0 {
		leftChild = n.children[idx-1]
	}
	var rightChild node[T]
	if idx < n.len-1 {
		rightChild = n.children[idx+1]
	}

	ret := n.children[idx].remove(key, leftChild, rightChild, cmp, edit)
	switch ret.status {
	case returnUnchanged, returnEarly:
		return ret
	}

	newLen := n.len - 1
	if leftChild != nil {
		newLen--
	}
	if rightChild != nil {
		newLen--
	}
	for _, c := range ret.nodes {
		if c != nil {
			newLen++
		}
	}

	switch {
	case !n.needsRebalance(newLen, left, right):
		if n.isEditable() && idx < n.len-2 {
			return n.removeInPlace(idx, newLen, ret.nodes)
		}
		return n.copyAndRemoveIdx(idx, newLen, left, right, edit, ret.nodes)
	case left != nil && left.canJoin(newLen):
		return n.joinLeft(idx, newLen, left, right, edit, ret.nodes)
	case right != nil && right.canJoin(newLen):
		return n.joinRight(idx, newLen, left, right, edit, ret.nodes)
	case left != nil && (right == nil || left.len >= right.len):
		return n.borrowLeft(idx, newLen, left, right, edit, ret.nodes)
	case right != nil:
		return n.borrowRight(idx, newLen, left, right, edit, ret.nodes)
	default:
		panic("unreachable")
	}
}

func (n *internalNode[T]) needsRebalance(newLen int, left, right *internalNode[T]) bool {
	return newLen < minLen && (left != nil || right != nil)
}

// replaced writes the surviving nodes of a child removal, and the keys
// for them, into the two stitchers.
func replaced[T any](ks *stitcher[T], cs *stitcher[node[T]], nodes [3]node[T]) {
	for _, c := range nodes {
		if c != nil {
			ks.copyOne(c.maxKey())
			cs.copyOne(c)
		}
	}
}

func (n *internalNode[T]) removeInPlace(idx, newLen int, nodes [3]node[T]) nodeReturn[T] {
	ks := stitcher[T]{n.keys, max(idx-1, 0)}
	cs := stitcher[node[T]]{n.children, max(idx-1, 0)}
	replaced(&ks, &cs, nodes)
	if newLen != n.len {
		ks.copyAll(n.keys, idx+2, n.len)
		cs.copyAll(n.children, idx+2, n.len)
	}
	n.len = newLen
	return nodeReturn[T]{status: returnEarly}
}

func (n *internalNode[T]) copyAndRemoveIdx(
	idx, newLen int,
	left, right *internalNode[T],
	edit *atomic.Bool,
	nodes [3]node[T],
) nodeReturn[T] {
	center := newNode[T](newLen, edit)
	ks := stitcher[T]{center.keys, 0}
	cs := stitcher[node[T]]{center.children, 0}
	ks.copyAll(n.keys, 0, idx-1)
	cs.copyAll(n.children, 0, idx-1)
	replaced(&ks, &cs, nodes)
	ks.copyAll(n.keys, idx+2, n.len)
	cs.copyAll(n.children, idx+2, n.len)

	return nodeReturn[T]{
		status: returnThree,
		nodes:  [3]node[T]{internalToNode(left), center, internalToNode(right)},
	}
}

func (n *internalNode[T]) joinLeft(
	idx, newLen int,
	left, right *internalNode[T],
	edit *atomic.Bool,
	nodes [3]node[T],
) nodeReturn[T] {
	join := newNode[T](left.len+newLen, edit)
	ks := stitcher[T]{join.keys, 0}
	cs := stitcher[node[T]]{join.children, 0}
	ks.copyAll(left.keys, 0, left.len)
	cs.copyAll(left.children, 0, left.len)
	ks.copyAll(n.keys, 0, idx-1)
	cs.copyAll(n.children, 0, idx-1)
	replaced(&ks, &cs, nodes)
	ks.copyAll(n.keys, idx+2, n.len)
	cs.copyAll(n.children, idx+2, n.len)

	return nodeReturn[T]{
		status: returnThree,
		nodes:  [3]node[T]{nil, join, internalToNode(right)},
	}
}

func (n *internalNode[T]) joinRight(
	idx, newLen int,
	left, right *internalNode[T],
	edit *atomic.Bool,
	nodes [3]node[T],
) nodeReturn[T] {
	join := newNode[T](newLen+right.len, edit)
	ks := stitcher[T]{join.keys, 0}
	cs := stitcher[node[T]]{join.children, 0}
	ks.copyAll(n.keys, 0, idx-1)
	cs.copyAll(n.children, 0, idx-1)
	replaced(&ks, &cs, nodes)
	ks.copyAll(n.keys, idx+2, n.len)
	cs.copyAll(n.children, idx+2, n.len)
	ks.copyAll(right.keys, 0, right.len)
	cs.copyAll(right.children, 0, right.len)

	return nodeReturn[T]{
		status: returnThree,
		nodes:  [3]node[T]{internalToNode(left), join, nil},
	}
}

func (n *internalNode[T]) borrowLeft(
	idx, newLen int,
	left, right *internalNode[T],
	edit *atomic.Bool,
	nodes [3]node[T],
) nodeReturn[T] {
	var (
		totalLen     = left.len + newLen
		newLeftLen   = totalLen >> 1
		newCenterLen = totalLen - newLeftLen
	)

	newLeft := newNode[T](newLeftLen, edit)
	newCenter := newNode[T](newCenterLen, edit)

	copy(newLeft.keys, left.keys[0:newLeftLen])
	copy(newLeft.children, left.children[0:newLeftLen])

	ks := stitcher[T]{newCenter.keys, 0}
	cs := stitcher[node[T]]{newCenter.children, 0}
	ks.copyAll(left.keys, newLeftLen, left.len)
	cs.copyAll(left.children, newLeftLen, left.len)
	ks.copyAll(n.keys, 0, idx-1)
	cs.copyAll(n.children, 0, idx-1)
	replaced(&ks, &cs, nodes)
	ks.copyAll(n.keys, idx+2, n.len)
	cs.copyAll(n.children, idx+2, n.len)

	return nodeReturn[T]{
		status: returnThree,
		nodes:  [3]node[T]{newLeft, newCenter, internalToNode(right)},
	}
}

func (n *internalNode[T]) borrowRight(
	idx, newLen int,
	left, right *internalNode[T],
	edit *atomic.Bool,
	nodes [3]node[T],
) nodeReturn[T] {
	var (
		totalLen     = newLen + right.len
		newCenterLen = totalLen >> 1
		newRightLen  = totalLen - newCenterLen
		rightHead    = right.len - newRightLen
	)

	newCenter := newNode[T](newCenterLen, edit)
	newRight := newNode[T](newRightLen, edit)

	ks := stitcher[T]{newCenter.keys, 0}
	cs := stitcher[node[T]]{newCenter.children, 0}
	ks.copyAll(n.keys, 0, idx-1)
	cs.copyAll(n.children, 0, idx-1)
	replaced(&ks, &cs, nodes)
	ks.copyAll(n.keys, idx+2, n.len)
	cs.copyAll(n.children, idx+2, n.len)
	ks.copyAll(right.keys, 0, rightHead)
	cs.copyAll(right.children, 0, rightHead)

	copy(newRight.keys, right.keys[rightHead:right.len])
	copy(newRight.children, right.children[rightHead:right.len])

	return nodeReturn[T]{
		status: returnThree,
		nodes:  [3]node[T]{internalToNode(left), newCenter, newRight},
	}
}

func internalToNode[T any](n *internalNode[T]) node[T] {
	if n != nil {
		return n
	}
	return nil
}
