package sched

// Stats is a running min/max/sum/count accumulator over microsecond samples.
//
// The zero value is an empty window. Average is integer microseconds and is
// defined as 0 while the window is empty; callers that need to distinguish
// "empty" from "all zeros" check Count.
type Stats struct {
	min   uint64
	max   uint64
	sum   uint64
	count uint32
}

// Update folds one sample into the window.
func (s *Stats) Update(v uint64) {
	if s.count == 0 || v < s.min {
		s.min = v
	}
	if v > s.max {
		s.max = v
	}
	s.sum += v
	s.count++
}

// Reset empties the window.
func (s *Stats) Reset() {
	*s = Stats{}
}

func (s Stats) Min() uint64 {
	if s.count == 0 {
		return 0
	}
	return s.min
}

func (s Stats) Max() uint64 { return s.max }

func (s Stats) Sum() uint64 { return s.sum }

func (s Stats) Count() uint32 { return s.count }

// Average returns sum/count, or 0 for an empty window.
func (s Stats) Average() uint64 {
	if s.count == 0 {
		return 0
	}
	return s.sum / uint64(s.count)
}
