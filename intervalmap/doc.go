// Package intervalmap implements a compressed interval map. A Map
// represents a step function over a totally ordered key space: a
// default value covers every key below the first breakpoint, and each
// breakpoint starts a run of constant value that lasts until the next
// one.
//
// The breakpoints are always kept in canonical form. No breakpoint
// carries the same value as the run before it, and the first never
// carries the default value, so two maps representing the same
// function have identical breakpoints.
//
//	m := intervalmap.New[int]("A")
//	m.Assign(1, 4, "B")
//	m.Assign(5, 7, "C")
//	fmt.Print(m) // 1->B 4->A 5->C 7->A, one per line
//
// A Map is not safe for concurrent use; wrap it with Synchronized when
// it must be shared between goroutines.
package intervalmap
