// Package store implements the ordered key/value containers that back
// an interval map: a mutable B-tree for general use, a persistent B+tree
// whose clones are free, and a sorted slice which is cheaper for small
// maps.
package store

type compareFunc[K any] func(a, b K) int

// Store is an ordered associative container. Keys are unique and
// ordered by the compare function the store was created with.
type Store[K, V any] interface {
	// Set inserts key or overwrites its value.
	Set(key K, value V)
	Delete(key K)
	// DeleteRange removes every key in [lo, hi).
	DeleteRange(lo, hi K)
	// Floor returns the entry with the greatest key <= key.
	Floor(key K) (K, V, bool)
	// Lower returns the entry with the greatest key < key.
	Lower(key K) (K, V, bool)
	// Ascend calls fn on each entry in key order until fn returns false.
	Ascend(fn func(key K, value V) bool)
	Len() int
	Clear()
	// Clone returns a store holding the same entries that can be
	// modified independently of the receiver.
	Clone() Store[K, V]
}

type item[K, V any] struct {
	key   K
	value V
}

func zero[K, V any]() (K, V, bool) {
	var k K
	var v V
	return k, v, false
}
