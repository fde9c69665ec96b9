package store_test

import (
	"cmp"
	"fmt"
	"sort"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"jsouthworth.net/go/ranges/internal/store"
)

type op struct {
	kind int
	a, b int
	v    string
}

func (o op) String() string {
	switch o.kind {
	case 0:
		return fmt.Sprintf("Set(%d, %s)", o.a, o.v)
	case 1:
		return fmt.Sprintf("Delete(%d)", o.a)
	default:
		return fmt.Sprintf("DeleteRange(%d, %d)", o.a, o.b)
	}
}

var genOp = gopter.CombineGens(
	gen.IntRange(0, 2),
	gen.IntRange(0, 40),
	gen.IntRange(0, 40),
	gen.OneConstOf("a", "b", "c"),
).Map(func(vals []interface{}) op {
	return op{
		kind: vals[0].(int),
		a:    vals[1].(int),
		b:    vals[2].(int),
		v:    vals[3].(string),
	}
})

var genOps = gen.SliceOf(genOp)

// model is the obviously correct reference: a go map scanned linearly.
type model map[int]string

func (m model) apply(o op) {
	switch o.kind {
	case 0:
		m[o.a] = o.v
	case 1:
		delete(m, o.a)
	default:
		for k := range m {
			if k >= o.a && k < o.b {
				delete(m, k)
			}
		}
	}
}

func (m model) sortedKeys() []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

type kv struct {
	K int
	V string
}

func (m model) entries() []kv {
	out := []kv{}
	for _, k := range m.sortedKeys() {
		out = append(out, kv{k, m[k]})
	}
	return out
}

func entries(s store.Store[int, string]) []kv {
	out := []kv{}
	s.Ascend(func(k int, v string) bool {
		out = append(out, kv{k, v})
		return true
	})
	return out
}

func apply(s store.Store[int, string], o op) {
	switch o.kind {
	case 0:
		s.Set(o.a, o.v)
	case 1:
		s.Delete(o.a)
	default:
		s.DeleteRange(o.a, o.b)
	}
}

type maker struct {
	name string
	new  func() store.Store[int, string]
}

var makers = []maker{
	{"btree", func() store.Store[int, string] {
		return store.NewBTree[int, string](cmp.Compare[int], 0)
	}},
	{"btree-degree-2", func() store.Store[int, string] {
		return store.NewBTree[int, string](cmp.Compare[int], 2)
	}},
	{"slice", func() store.Store[int, string] {
		return store.NewSlice[int, string](cmp.Compare[int])
	}},
	{"persistent", func() store.Store[int, string] {
		return store.NewPersistent[int, string](cmp.Compare[int])
	}},
}

func TestStoreMatchesModel(t *testing.T) {
	for _, mk := range makers {
		t.Run(mk.name, func(t *testing.T) {
			parameters := gopter.DefaultTestParameters()
			properties := gopter.NewProperties(parameters)
			properties.Property("ops applied to store and model agree", prop.ForAll(
				func(ops []op) bool {
					s := mk.new()
					m := model{}
					for _, o := range ops {
						apply(s, o)
						m.apply(o)
						if s.Len() != len(m) {
							return false
						}
					}
					return gocmp.Equal(entries(s), m.entries())
				},
				genOps,
			))
			properties.Property("Floor and Lower agree with a scan", prop.ForAll(
				func(ops []op, target int) bool {
					s := mk.new()
					m := model{}
					for _, o := range ops {
						apply(s, o)
						m.apply(o)
					}
					keys := m.sortedKeys()

					fk, fv, fok := s.Floor(target)
					wantFloor, wantFloorOK := -1, false
					for _, k := range keys {
						if k <= target {
							wantFloor, wantFloorOK = k, true
						}
					}
					if fok != wantFloorOK || (fok && (fk != wantFloor || fv != m[fk])) {
						return false
					}

					lk, lv, lok := s.Lower(target)
					wantLower, wantLowerOK := -1, false
					for _, k := range keys {
						if k < target {
							wantLower, wantLowerOK = k, true
						}
					}
					return lok == wantLowerOK && (!lok || (lk == wantLower && lv == m[lk]))
				},
				genOps,
				gen.IntRange(-5, 45),
			))
			properties.Property("a clone is independent of its source", prop.ForAll(
				func(ops, more []op) bool {
					s := mk.new()
					m := model{}
					for _, o := range ops {
						apply(s, o)
						m.apply(o)
					}
					c := s.Clone()
					want := m.entries()
					for _, o := range more {
						apply(c, o)
						m.apply(o)
					}
					if !gocmp.Equal(entries(s), want) || !gocmp.Equal(entries(c), m.entries()) {
						return false
					}
					s.Clear()
					return gocmp.Equal(entries(c), m.entries())
				},
				genOps,
				genOps,
			))
			properties.Property("Clear empties the store", prop.ForAll(
				func(ops []op) bool {
					s := mk.new()
					for _, o := range ops {
						apply(s, o)
					}
					s.Clear()
					_, _, ok := s.Floor(100)
					return s.Len() == 0 && !ok
				},
				genOps,
			))
			properties.TestingRun(t)
		})
	}
}

func TestAscendStopsEarly(t *testing.T) {
	for _, mk := range makers {
		s := mk.new()
		for i := 0; i < 10; i++ {
			s.Set(i, "x")
		}
		var seen []int
		s.Ascend(func(k int, _ string) bool {
			seen = append(seen, k)
			return len(seen) < 3
		})
		if diff := gocmp.Diff([]int{0, 1, 2}, seen); diff != "" {
			t.Fatalf("%s: unexpected keys (-want +got):\n%s", mk.name, diff)
		}
	}
}

func TestDeleteRangeInverted(t *testing.T) {
	for _, mk := range makers {
		s := mk.new()
		s.Set(1, "a")
		s.Set(2, "b")
		s.DeleteRange(2, 1)
		s.DeleteRange(1, 1)
		if s.Len() != 2 {
			t.Fatalf("%s: expected 2 keys, got %d", mk.name, s.Len())
		}
	}
}

func BenchmarkBTreeSet(b *testing.B) {
	b.ReportAllocs()
	s := store.NewBTree[int, int](cmp.Compare[int], 0)
	for i := 0; i < b.N; i++ {
		s.Set(i, i)
	}
}

func BenchmarkSliceSet(b *testing.B) {
	b.ReportAllocs()
	s := store.NewSlice[int, int](cmp.Compare[int])
	for i := 0; i < b.N; i++ {
		s.Set(i, i)
	}
}

func BenchmarkPersistentSet(b *testing.B) {
	b.ReportAllocs()
	s := store.NewPersistent[int, int](cmp.Compare[int])
	for i := 0; i < b.N; i++ {
		s.Set(i, i)
	}
}
