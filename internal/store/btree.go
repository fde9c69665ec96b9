package store

import (
	"github.com/tidwall/btree"
)

// BTree is a Store backed by a B-tree.
type BTree[K, V any] struct {
	tree *btree.BTreeG[item[K, V]]
	cmp  compareFunc[K]
}

// NewBTree returns an empty B-tree store ordered by compare. A degree
// of 0 selects the library default; callers validate other values.
func NewBTree[K, V any](compare func(a, b K) int, degree int) *BTree[K, V] {
	less := func(a, b item[K, V]) bool {
		return compare(a.key, b.key) < 0
	}
	return &BTree[K, V]{
		// Stores are guarded by their owner, never by the tree.
		tree: btree.NewBTreeGOptions(less, btree.Options{
			Degree:  degree,
			NoLocks: true,
		}),
		cmp: compare,
	}
}

func (t *BTree[K, V]) Set(key K, value V) {
	t.tree.Set(item[K, V]{key: key, value: value})
}

func (t *BTree[K, V]) Delete(key K) {
	t.tree.Delete(item[K, V]{key: key})
}

func (t *BTree[K, V]) DeleteRange(lo, hi K) {
	if t.cmp(lo, hi) >= 0 {
		return
	}
	var doomed []item[K, V]
	t.tree.Ascend(item[K, V]{key: lo}, func(it item[K, V]) bool {
		if t.cmp(it.key, hi) >= 0 {
			return false
		}
		doomed = append(doomed, it)
		return true
	})
	for _, it := range doomed {
		t.tree.Delete(it)
	}
}

func (t *BTree[K, V]) Floor(key K) (K, V, bool) {
	var (
		out   item[K, V]
		found bool
	)
	t.tree.Descend(item[K, V]{key: key}, func(it item[K, V]) bool {
		out, found = it, true
		return false
	})
	if !found {
		return zero[K, V]()
	}
	return out.key, out.value, true
}

func (t *BTree[K, V]) Lower(key K) (K, V, bool) {
	var (
		out   item[K, V]
		found bool
	)
	t.tree.Descend(item[K, V]{key: key}, func(it item[K, V]) bool {
		if t.cmp(it.key, key) == 0 {
			return true
		}
		out, found = it, true
		return false
	})
	if !found {
		return zero[K, V]()
	}
	return out.key, out.value, true
}

func (t *BTree[K, V]) Ascend(fn func(key K, value V) bool) {
	t.tree.Scan(func(it item[K, V]) bool {
		return fn(it.key, it.value)
	})
}

func (t *BTree[K, V]) Len() int {
	return t.tree.Len()
}

func (t *BTree[K, V]) Clear() {
	t.tree.Clear()
}

// Clone shares the tree's nodes copy-on-write. It writes to the
// receiver's bookkeeping, so it counts as a modification.
func (t *BTree[K, V]) Clone() Store[K, V] {
	return &BTree[K, V]{tree: t.tree.Copy(), cmp: t.cmp}
}
