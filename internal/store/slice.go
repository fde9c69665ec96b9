package store

import (
	"slices"
	"sort"
)

// Slice is a Store kept as a pair of sorted parallel slices. Lookups
// are binary searches; inserts and removals shift the tail, so it is
// best suited to maps with few breakpoints.
type Slice[K, V any] struct {
	keys []K
	vals []V
	cmp  compareFunc[K]
}

// NewSlice returns an empty sorted-slice store ordered by compare.
func NewSlice[K, V any](compare func(a, b K) int) *Slice[K, V] {
	return &Slice[K, V]{cmp: compare}
}

// search returns the index of key, or (-i - 1) where i is the index
// at which key would be inserted.
func (s *Slice[K, V]) search(key K) int {
	i := s.searchFirst(key)
	if i < len(s.keys) && s.cmp(key, s.keys[i]) == 0 {
		return i
	}
	return (-i) - 1
}

// searchFirst returns the index of the first key >= key.
func (s *Slice[K, V]) searchFirst(key K) int {
	return sort.Search(len(s.keys), func(i int) bool {
		return s.cmp(s.keys[i], key) >= 0
	})
}

func (s *Slice[K, V]) Set(key K, value V) {
	idx := s.search(key)
	if idx >= 0 {
		s.vals[idx] = value
		return
	}
	ins := (-idx) - 1
	var k K
	var v V
	s.keys = append(s.keys, k)
	s.vals = append(s.vals, v)
	copy(s.keys[ins+1:], s.keys[ins:])
	copy(s.vals[ins+1:], s.vals[ins:])
	s.keys[ins] = key
	s.vals[ins] = value
}

func (s *Slice[K, V]) Delete(key K) {
	if idx := s.search(key); idx >= 0 {
		s.cut(idx, idx+1)
	}
}

func (s *Slice[K, V]) DeleteRange(lo, hi K) {
	if s.cmp(lo, hi) >= 0 {
		return
	}
	s.cut(s.searchFirst(lo), s.searchFirst(hi))
}

// cut removes the entries in [from, to) and zeroes the vacated tail.
func (s *Slice[K, V]) cut(from, to int) {
	if to <= from {
		return
	}
	n := len(s.keys)
	copy(s.keys[from:], s.keys[to:])
	copy(s.vals[from:], s.vals[to:])
	newLen := n - (to - from)
	clear(s.keys[newLen:])
	clear(s.vals[newLen:])
	s.keys = s.keys[:newLen]
	s.vals = s.vals[:newLen]
}

func (s *Slice[K, V]) at(i int) (K, V, bool) {
	if i < 0 || i >= len(s.keys) {
		return zero[K, V]()
	}
	return s.keys[i], s.vals[i], true
}

func (s *Slice[K, V]) Floor(key K) (K, V, bool) {
	idx := s.search(key)
	if idx >= 0 {
		return s.at(idx)
	}
	return s.at((-idx) - 2)
}

func (s *Slice[K, V]) Lower(key K) (K, V, bool) {
	return s.at(s.searchFirst(key) - 1)
}

func (s *Slice[K, V]) Ascend(fn func(key K, value V) bool) {
	for i := range s.keys {
		if !fn(s.keys[i], s.vals[i]) {
			return
		}
	}
}

func (s *Slice[K, V]) Len() int {
	return len(s.keys)
}

func (s *Slice[K, V]) Clear() {
	clear(s.keys)
	clear(s.vals)
	s.keys = s.keys[:0]
	s.vals = s.vals[:0]
}

func (s *Slice[K, V]) Clone() Store[K, V] {
	return &Slice[K, V]{
		keys: slices.Clone(s.keys),
		vals: slices.Clone(s.vals),
		cmp:  s.cmp,
	}
}
