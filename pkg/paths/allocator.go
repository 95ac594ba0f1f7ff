package paths

import "fmt"

// DefaultGap is the spacing left between consecutively allocated sibling
// segments, one radix power. Over 32-bit segments it leaves room for roughly
// 2^28 siblings before a parent's counter is exhausted.
const DefaultGap = uint32(Radix)

// InsufficientGapError reports a midpoint request between adjacent segments
type InsufficientGapError struct {
	Lo, Hi Path
}

func (e *InsufficientGapError) Error() string {
	return fmt.Sprintf("insufficient gap between %s and %s", e.Lo, e.Hi)
}

// GapExhaustedError reports an allocation that would overflow the segment width
type GapExhaustedError struct {
	Parent Path
}

func (e *GapExhaustedError) Error() string {
	parent := e.Parent.String()
	if parent == "" {
		parent = "<root>"
	}
	return fmt.Sprintf("path gap exhausted under %s", parent)
}

// Allocator issues fresh sibling paths with a configured gap. One allocator
// is created per component compile pass and owns all counter state for that
// pass; it is not safe for concurrent use and is never shared across passes.
type Allocator struct {
	gap      uint32
	counters map[string]uint32 // parent path string -> last issued segment
}

// NewAllocator creates an allocator with the given gap, or DefaultGap when
// gap is zero.
func NewAllocator(gap uint32) *Allocator {
	if gap == 0 {
		gap = DefaultGap
	}
	return &Allocator{
		gap:      gap,
		counters: make(map[string]uint32),
	}
}

// Gap returns the configured sibling spacing
func (a *Allocator) Gap() uint32 { return a.gap }

// Next issues the next sibling path under parent. The first allocation for a
// parent seeds its counter at the gap; each later one advances by the gap,
// keeping siblings strictly increasing with gap-1 free slots between them.
func (a *Allocator) Next(parent Path) (Path, error) {
	key := parent.String()
	last, ok := a.counters[key]
	if !ok {
		a.counters[key] = a.gap
		return parent.Child(a.gap), nil
	}
	next := last + a.gap
	if next < last { // wrapped the segment width
		return nil, &GapExhaustedError{Parent: parent.Clone()}
	}
	a.counters[key] = next
	return parent.Child(next), nil
}

// Observe tells the allocator that seg is already in use under parent, so a
// later Next never issues a colliding or out-of-order sibling. Reused paths
// from a previous assignment are fed through here during reconciliation.
func (a *Allocator) Observe(parent Path, seg uint32) {
	key := parent.String()
	if last, ok := a.counters[key]; !ok || seg > last {
		a.counters[key] = seg
	}
}

// Midpoint returns a sibling path strictly between a and b, which must share
// a parent with a < b. The new segment is the arithmetic midpoint rounded
// down; adjacent segments fail with InsufficientGapError.
func (a *Allocator) Midpoint(lo, hi Path) (Path, error) {
	loSeg, hiSeg := lo.Last(), hi.Last()
	if hiSeg-loSeg < 2 {
		return nil, &InsufficientGapError{Lo: lo.Clone(), Hi: hi.Clone()}
	}
	mid := loSeg + (hiSeg-loSeg)/2
	parent, _ := lo.Parent()
	return parent.Child(mid), nil
}

// HasSufficientGap reports whether the numeric distance between the two
// paths' last segments is at least minGap. Both are assumed to share a parent.
func HasSufficientGap(lo, hi Path, minGap uint32) bool {
	return hi.Last()-lo.Last() >= minGap
}

// Reset drops the counter for one parent, so its next allocation starts over
// at the gap. Previously issued paths stay valid; callers must not mix pre-
// and post-reset allocations within one tree.
func (a *Allocator) Reset(parent Path) {
	delete(a.counters, parent.String())
}

// ResetAll drops every counter
func (a *Allocator) ResetAll() {
	a.counters = make(map[string]uint32)
}
