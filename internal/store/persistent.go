package store

import (
	"jsouthworth.net/go/ranges/internal/btree"
)

// Persistent is a Store over a persistent B+tree. Every change produces
// a new tree version, so Clone only copies the root.
type Persistent[K, V any] struct {
	tree *btree.BTree[item[K, V]]
	cmp  compareFunc[K]
}

// NewPersistent returns an empty persistent store ordered by compare.
func NewPersistent[K, V any](compare func(a, b K) int) *Persistent[K, V] {
	return &Persistent[K, V]{
		tree: btree.Empty(func(a, b item[K, V]) int {
			return compare(a.key, b.key)
		}),
		cmp: compare,
	}
}

func (p *Persistent[K, V]) Set(key K, value V) {
	p.tree = p.tree.Add(item[K, V]{key: key, value: value})
}

func (p *Persistent[K, V]) Delete(key K) {
	p.tree = p.tree.Delete(item[K, V]{key: key})
}

// DeleteRange edits a transient copy so the nodes it creates along the
// way are reused rather than copied once per removed key.
func (p *Persistent[K, V]) DeleteRange(lo, hi K) {
	if p.cmp(lo, hi) >= 0 {
		return
	}
	t := p.tree.AsTransient()
	for {
		it, ok := t.Ceil(item[K, V]{key: lo})
		if !ok || p.cmp(it.key, hi) >= 0 {
			break
		}
		t.Delete(it)
	}
	p.tree = t.AsPersistent()
}

func (p *Persistent[K, V]) Floor(key K) (K, V, bool) {
	it, ok := p.tree.Floor(item[K, V]{key: key})
	if !ok {
		return zero[K, V]()
	}
	return it.key, it.value, true
}

func (p *Persistent[K, V]) Lower(key K) (K, V, bool) {
	it, ok := p.tree.Lower(item[K, V]{key: key})
	if !ok {
		return zero[K, V]()
	}
	return it.key, it.value, true
}

func (p *Persistent[K, V]) Ascend(fn func(key K, value V) bool) {
	for i := p.tree.Iterator(); i.HasNext(); {
		it := i.Next()
		if !fn(it.key, it.value) {
			return
		}
	}
}

func (p *Persistent[K, V]) Len() int {
	return p.tree.Length()
}

func (p *Persistent[K, V]) Clear() {
	p.tree = btree.Empty(func(a, b item[K, V]) int {
		return p.cmp(a.key, b.key)
	})
}

func (p *Persistent[K, V]) Clone() Store[K, V] {
	return &Persistent[K, V]{tree: p.tree, cmp: p.cmp}
}
