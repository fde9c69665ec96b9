package intervalmap // import "jsouthworth.net/go/ranges/intervalmap"

import (
	"cmp"
	"fmt"
	"iter"
	"reflect"
	"strings"

	gocmp "github.com/google/go-cmp/cmp"
	"jsouthworth.net/go/ranges/internal/store"
)

type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrNilCompare = Error("intervalmap: nil compare function")
	ErrBadDegree  = Error("intervalmap: btree degree must be at least 2")
)

// Entry is a breakpoint. The map takes the value Value from Key up to,
// but not including, the next breakpoint's key.
type Entry[K, V any] struct {
	Key   K
	Value V
}

func (e Entry[K, V]) String() string {
	return fmt.Sprintf("%v->%v", e.Key, e.Value)
}

// Run is a maximal stretch of keys sharing one value. A run is
// half-open, [Start, End). The last run of a map has no end and
// Bounded is false.
type Run[K, V any] struct {
	Start   K
	End     K
	Bounded bool
	Value   V
}

// Map is a compressed interval map from K to V. The zero Map is not
// usable; create one with New or NewFunc.
type Map[K, V any] struct {
	dflt  V
	cmp   func(a, b K) int
	eq    func(a, b V) bool
	store store.Store[K, V]
}

type backend uint8

const (
	backendBTree backend = iota
	backendSlice
	backendPersistent
)

type mapOptions[V any] struct {
	equal   func(a, b V) bool
	backend backend
	degree  int
	// degreeSet records that Degree was given, since 0 is the default.
	degreeSet bool
}

// Option is a type that allows changes to pluggable parts of the
// Map implementation.
type Option[V any] func(*mapOptions[V])

// Equal is an option to New and NewFunc that replaces the value
// equality used to merge neighbouring runs. By default values are
// compared deeply with go-cmp, unexported fields included, and a
// value's own Equal method is used when it has one.
func Equal[V any](eq func(a, b V) bool) Option[V] {
	return func(o *mapOptions[V]) {
		o.equal = eq
	}
}

// SortedSlice is an option to New and NewFunc that stores the
// breakpoints in a sorted slice instead of a B-tree. Lookups stay
// logarithmic but assignments shift the tail of the slice, so it suits
// maps with few breakpoints.
func SortedSlice[V any]() Option[V] {
	return func(o *mapOptions[V]) {
		o.backend = backendSlice
	}
}

// Persistent is an option to New and NewFunc that stores the
// breakpoints in a persistent B+tree. Every assignment builds a new
// version of the tree sharing unchanged nodes with the old one, which
// makes Clone constant time.
func Persistent[V any]() Option[V] {
	return func(o *mapOptions[V]) {
		o.backend = backendPersistent
	}
}

// Degree is an option to New and NewFunc that sets the node degree of
// the B-tree holding the breakpoints. New and NewFunc panic with
// ErrBadDegree if n is less than 2.
func Degree[V any](n int) Option[V] {
	return func(o *mapOptions[V]) {
		o.backend = backendBTree
		o.degree = n
		o.degreeSet = true
	}
}

// exportAll lets go-cmp look inside unexported struct fields, which it
// otherwise refuses to compare.
var exportAll = gocmp.Exporter(func(reflect.Type) bool { return true })

// New returns an empty map whose keys are ordered by cmp.Compare. Every
// key maps to dflt until something else is assigned.
func New[K cmp.Ordered, V any](dflt V, options ...Option[V]) *Map[K, V] {
	return NewFunc(cmp.Compare[K], dflt, options...)
}

// NewFunc returns an empty map whose keys are ordered by compare, which
// must return a negative number when a < b, zero when they are equal
// and a positive number when a > b. It must describe a strict total
// order. NewFunc panics with ErrNilCompare if compare is nil and with
// ErrBadDegree if the Degree option was given less than 2.
func NewFunc[K, V any](
	compare func(a, b K) int,
	dflt V,
	options ...Option[V],
) *Map[K, V] {
	if compare == nil {
		panic(ErrNilCompare)
	}
	opts := mapOptions[V]{
		equal: func(a, b V) bool {
			return gocmp.Equal(a, b, exportAll)
		},
	}
	for _, opt := range options {
		opt(&opts)
	}
	if opts.degreeSet && opts.degree < 2 {
		panic(ErrBadDegree)
	}

	m := &Map[K, V]{
		dflt: dflt,
		cmp:  compare,
		eq:   opts.equal,
	}
	switch opts.backend {
	case backendSlice:
		m.store = store.NewSlice[K, V](compare)
	case backendPersistent:
		m.store = store.NewPersistent[K, V](compare)
	default:
		m.store = store.NewBTree[K, V](compare, opts.degree)
	}
	return m
}

// Assign sets the value of every key in [keyBegin, keyEnd) to val.
// Keys outside the interval keep their values. If keyBegin is not less
// than keyEnd the interval is empty and the map is left untouched.
func (m *Map[K, V]) Assign(keyBegin, keyEnd K, val V) {
	if m.cmp(keyBegin, keyEnd) >= 0 {
		return
	}

	tail := m.At(keyEnd)
	m.store.DeleteRange(keyBegin, keyEnd)
	m.store.Set(keyEnd, tail)
	m.store.Set(keyBegin, val)

	// Only the two breakpoints written above can now repeat the value
	// before them. keyEnd goes first because its predecessor is the
	// keyBegin breakpoint.
	m.merge(keyEnd)
	m.merge(keyBegin)
}

// merge removes the breakpoint at key if it carries the same value as
// the run preceding it.
func (m *Map[K, V]) merge(key K) {
	k, val, ok := m.store.Floor(key)
	if !ok || m.cmp(k, key) != 0 {
		return
	}
	prev := m.dflt
	if _, v, ok := m.store.Lower(key); ok {
		prev = v
	}
	if m.eq(prev, val) {
		m.store.Delete(key)
	}
}

// At returns the value associated with key.
func (m *Map[K, V]) At(key K) V {
	_, val, ok := m.store.Floor(key)
	if !ok {
		return m.dflt
	}
	return val
}

// Clear removes every breakpoint so that all keys map to the default
// value again.
func (m *Map[K, V]) Clear() {
	m.store.Clear()
}

// Clone returns a copy of the map that can be assigned to without
// affecting m. With the Persistent option this takes
// constant time; the B-tree shares nodes until either side writes, and
// the sorted slice is copied.
func (m *Map[K, V]) Clone() *Map[K, V] {
	return &Map[K, V]{
		dflt:  m.dflt,
		cmp:   m.cmp,
		eq:    m.eq,
		store: m.store.Clone(),
	}
}

// Default returns the value of keys below the first breakpoint.
func (m *Map[K, V]) Default() V {
	return m.dflt
}

// Length returns the number of breakpoints in the map.
func (m *Map[K, V]) Length() int {
	return m.store.Len()
}

// Entries returns the breakpoints in key order.
func (m *Map[K, V]) Entries() []Entry[K, V] {
	out := make([]Entry[K, V], 0, m.store.Len())
	m.store.Ascend(func(key K, val V) bool {
		out = append(out, Entry[K, V]{Key: key, Value: val})
		return true
	})
	return out
}

// All returns an iterator over the breakpoints in key order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(key K, value V) bool) {
		m.store.Ascend(yield)
	}
}

// Runs returns an iterator over the runs that start at each
// breakpoint, in key order. The run of default-valued keys below the
// first breakpoint has no start and is not produced.
func (m *Map[K, V]) Runs() iter.Seq[Run[K, V]] {
	return func(yield func(Run[K, V]) bool) {
		var (
			cur     Run[K, V]
			started bool
			stopped bool
		)
		m.store.Ascend(func(key K, val V) bool {
			if started {
				cur.End, cur.Bounded = key, true
				if !yield(cur) {
					stopped = true
					return false
				}
			}
			cur = Run[K, V]{Start: key, Value: val}
			started = true
			return true
		})
		if started && !stopped {
			yield(cur)
		}
	}
}

// Equal reports whether both maps represent the same function. It
// relies on the canonical form: equal functions have equal defaults
// and identical breakpoints. The receiver's value equality is used.
func (m *Map[K, V]) Equal(other *Map[K, V]) bool {
	if m == other {
		return true
	}
	if other == nil || !m.eq(m.dflt, other.dflt) {
		return false
	}
	if m.store.Len() != other.store.Len() {
		return false
	}
	theirs := other.Entries()
	i := 0
	equal := true
	m.store.Ascend(func(key K, val V) bool {
		e := theirs[i]
		i++
		equal = m.cmp(key, e.Key) == 0 && m.eq(val, e.Value)
		return equal
	})
	return equal
}

// String renders one "key->value" line per breakpoint. The default
// value is not shown, so a map with no breakpoints renders as "".
func (m *Map[K, V]) String() string {
	var b strings.Builder
	m.store.Ascend(func(key K, val V) bool {
		fmt.Fprintf(&b, "%v->%v\n", key, val)
		return true
	})
	return b.String()
}
