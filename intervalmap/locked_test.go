package intervalmap

import (
	"sync"
	"testing"
)

func TestLockedConcurrentUse(t *testing.T) {
	l := Synchronized(New[int]("A"))
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			val := string(rune('B' + w))
			for i := 0; i < 200; i++ {
				b := (i * 13) % 100
				l.Assign(b, b+w+1, val)
				l.At(b)
				l.Length()
				if i%50 == 0 {
					_ = l.String()
				}
			}
		}(w)
	}
	wg.Wait()
	var err error
	l.Update(func(m *Map[int, string]) {
		err = checkCanonical(m)
	})
	if err != nil {
		t.Fatal(err)
	}
	if l.Default() != "A" {
		t.Fatalf("unexpected default %q", l.Default())
	}
}

func TestLockedUpdateIsAtomic(t *testing.T) {
	l := Synchronized(New[int]("A", SortedSlice[string]()))
	done := make(chan struct{})
	var bad int
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			// Writers only ever leave the map with zero or two
			// breakpoints.
			if n := l.Length(); n != 0 && n != 2 {
				bad++
			}
		}
	}()
	for i := 0; i < 500; i++ {
		l.Update(func(m *Map[int, string]) {
			m.Assign(0, 10, "B")
			m.Assign(10, 20, "C")
			m.Assign(0, 10, "C")
		})
		l.Clear()
	}
	close(done)
	wg.Wait()
	if bad != 0 {
		t.Fatalf("observed %d partial updates", bad)
	}
}

func TestLockedEntries(t *testing.T) {
	l := Synchronized(New[int]("A"))
	l.Assign(1, 3, "B")
	got := l.Entries()
	if len(got) != 2 || got[0] != (Entry[int, string]{1, "B"}) || got[1] != (Entry[int, string]{3, "A"}) {
		t.Fatalf("unexpected entries %v", got)
	}
	if l.String() != "1->B\n3->A\n" {
		t.Fatalf("unexpected rendering %q", l.String())
	}
	l.Clear()
	if l.At(1) != "A" {
		t.Fatalf("expected default after Clear, got %q", l.At(1))
	}
}

func TestLockedSnapshot(t *testing.T) {
	l := Synchronized(New[int]("A", Persistent[string]()))
	l.Assign(1, 3, "B")
	snap := l.Snapshot()
	l.Assign(2, 5, "C")
	if got := snap.String(); got != "1->B\n3->A\n" {
		t.Fatalf("snapshot followed a later write: %q", got)
	}
	snap.Assign(0, 10, "D")
	if got := l.String(); got != "1->B\n2->C\n5->A\n" {
		t.Fatalf("writing the snapshot changed the shared map: %q", got)
	}
}
