package intervalmap

import "sync"

// Locked guards a Map with a read/write mutex so that it may be shared
// between goroutines. Assign and Clear hold the lock exclusively; the
// read-only methods share it.
type Locked[K, V any] struct {
	mu sync.RWMutex
	m  *Map[K, V]
}

// Synchronized wraps m. The caller must not use m directly afterwards.
func Synchronized[K, V any](m *Map[K, V]) *Locked[K, V] {
	return &Locked[K, V]{m: m}
}

// Assign sets the value of every key in [keyBegin, keyEnd) to val.
func (l *Locked[K, V]) Assign(keyBegin, keyEnd K, val V) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m.Assign(keyBegin, keyEnd, val)
}

// Clear removes every breakpoint.
func (l *Locked[K, V]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.m.Clear()
}

// Update runs fn with exclusive access to the underlying map, so that
// several assignments appear to other goroutines as one.
func (l *Locked[K, V]) Update(fn func(m *Map[K, V])) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.m)
}

// Snapshot returns an unsynchronized copy of the current contents.
// Cloning a B-tree marks its nodes as shared, so the write lock is
// taken.
func (l *Locked[K, V]) Snapshot() *Map[K, V] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.m.Clone()
}

// At returns the value associated with key.
func (l *Locked[K, V]) At(key K) V {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.m.At(key)
}

func (l *Locked[K, V]) Default() V {
	return l.m.Default()
}

func (l *Locked[K, V]) Length() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.m.Length()
}

// Entries returns a snapshot of the breakpoints in key order.
func (l *Locked[K, V]) Entries() []Entry[K, V] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.m.Entries()
}

func (l *Locked[K, V]) String() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.m.String()
}
