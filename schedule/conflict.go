package schedule

// =============================================================================
// CONFLICT DETECTOR - Overlap, gap and total-duration arithmetic
// =============================================================================

// ConflictDetector holds no state; the zero value is ready to use.
// Availability and shift validation share it so both agree on what
// "overlap" and "break" mean.
type ConflictDetector struct{}

// Overlaps delegates to TimeRange.Overlaps (half-open semantics).
func (ConflictDetector) Overlaps(a, b TimeRange) bool {
	return a.Overlaps(b)
}

// GapMinutes returns the minutes between the earlier range's end and the
// later range's start. ok is false when the ranges overlap.
func (ConflictDetector) GapMinutes(a, b TimeRange) (minutes int, ok bool) {
	if a.Overlaps(b) {
		return 0, false
	}
	if a.end <= b.start {
		return int(b.start - a.end), true
	}
	return int(a.start - b.end), true
}

// TotalMinutes sums the durations of all ranges. Overlaps are counted twice;
// callers reject overlapping input before summing.
func (ConflictDetector) TotalMinutes(ranges ...TimeRange) int {
	total := 0
	for _, r := range ranges {
		total += r.DurationMinutes()
	}
	return total
}

// FirstOverlap returns the index of the first range in others that overlaps
// candidate, or -1.
func (d ConflictDetector) FirstOverlap(candidate TimeRange, others []TimeRange) int {
	for i, o := range others {
		if d.Overlaps(candidate, o) {
			return i
		}
	}
	return -1
}
