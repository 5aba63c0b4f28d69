package txbuf

import (
	"bytes"
	"sort"
)

// byteRange is a half-open [lo, hi) interval of encoded keys.
type byteRange struct {
	lo, hi []byte
}

// rangeSet is a small ordered collection of non-overlapping half-open
// intervals recording pending subtree deletions. Overlapping or adjacent
// intervals are merged on insert so covers can binary search.
type rangeSet struct {
	list []byteRange
}

func (s *rangeSet) add(lo, hi []byte) {
	s.list = append(s.list, byteRange{
		lo: append([]byte(nil), lo...),
		hi: append([]byte(nil), hi...),
	})
	s.normalize()
}

func (s *rangeSet) normalize() {
	sort.Slice(s.list, func(i, j int) bool {
		return bytes.Compare(s.list[i].lo, s.list[j].lo) < 0
	})
	merged := s.list[:0]
	for _, r := range s.list {
		if n := len(merged); n > 0 && bytes.Compare(r.lo, merged[n-1].hi) <= 0 {
			if bytes.Compare(r.hi, merged[n-1].hi) > 0 {
				merged[n-1].hi = r.hi
			}
			continue
		}
		merged = append(merged, r)
	}
	s.list = merged
}

// covers reports whether key falls inside any recorded range.
func (s *rangeSet) covers(key []byte) bool {
	i := sort.Search(len(s.list), func(i int) bool {
		return bytes.Compare(s.list[i].lo, key) > 0
	})
	if i == 0 {
		return false
	}
	r := s.list[i-1]
	return bytes.Compare(key, r.lo) >= 0 && bytes.Compare(key, r.hi) < 0
}

func (s *rangeSet) reset() {
	s.list = nil
}
