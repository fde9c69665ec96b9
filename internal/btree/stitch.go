package btree

// stitcher fills target from consecutive runs of other slices.
type stitcher[E any] struct {
	target []E
	offset int
}

func (s *stitcher[E]) copyAll(source []E, from, to int) {
	if to >= from {
		copy(s.target[s.offset:s.offset+(to-from)], source[from:to])
		s.offset += to - from
	}
}

func (s *stitcher[E]) copyOne(val E) {
	s.target[s.offset] = val
	s.offset++
}
