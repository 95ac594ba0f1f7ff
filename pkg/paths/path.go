// Package paths implements the stable node identity scheme used by the
// compiler: hierarchical paths of fixed-radix numeric segments, rendered as
// dot-joined hex digits, with gapped allocation so later insertions can be
// addressed between existing siblings without renumbering them.
package paths

import (
	"fmt"
	"strconv"
	"strings"
)

// Radix is the rendering base for path segments
const Radix = 16

// MaxSegment is the largest value a single segment may hold
const MaxSegment = ^uint32(0)

// Path is an ordered sequence of segments identifying one markup node.
// Ordering and equality are defined on the numeric segment values, never on
// the rendered string, so leading-zero variants compare equal.
type Path []uint32

// MalformedPathError reports a path string that cannot be decoded
type MalformedPathError struct {
	Raw     string
	Segment string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("malformed path %q: bad segment %q", e.Raw, e.Segment)
}

// Parse decodes a dot-separated hex path string.
// Segments must be valid base-16 numbers in [1, 2^32); anything else fails
// with MalformedPathError. Round-trips through String are exact.
func Parse(s string) (Path, error) {
	if s == "" {
		return nil, &MalformedPathError{Raw: s, Segment: s}
	}
	parts := strings.Split(s, ".")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseUint(part, Radix, 32)
		if err != nil || v == 0 {
			return nil, &MalformedPathError{Raw: s, Segment: part}
		}
		p = append(p, uint32(v))
	}
	return p, nil
}

// String renders the path as dot-joined hex segments
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(uint64(seg), Radix))
	}
	return b.String()
}

// Depth returns the number of segments
func (p Path) Depth() int { return len(p) }

// IsRoot reports whether the path has no segments
func (p Path) IsRoot() bool { return len(p) == 0 }

// Last returns the final segment. Panics on the empty path.
func (p Path) Last() uint32 { return p[len(p)-1] }

// Parent returns the path with the last segment dropped, or false for a
// single-segment path (the root sentinel has no rendered form).
func (p Path) Parent() (Path, bool) {
	if len(p) <= 1 {
		return nil, false
	}
	return p[:len(p)-1], true
}

// Child returns a new path extending p with one segment
func (p Path) Child(seg uint32) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}

// Clone returns an independent copy of the path
func (p Path) Clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Equal reports segment-wise equality
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Compare orders paths segment-wise on numeric value. It returns -1, 0 or 1.
// A strict prefix sorts before its extensions.
func (p Path) Compare(other Path) int {
	n := len(p)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if p[i] < other[i] {
			return -1
		}
		if p[i] > other[i] {
			return 1
		}
	}
	switch {
	case len(p) < len(other):
		return -1
	case len(p) > len(other):
		return 1
	default:
		return 0
	}
}

// IsAncestorOf reports whether p's segments are a strict prefix of other's.
// A path is never its own ancestor.
func (p Path) IsAncestorOf(other Path) bool {
	if len(p) >= len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// MarshalJSON renders the path as its hex string form
func (p Path) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON decodes the hex string form
func (p *Path) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return &MalformedPathError{Raw: s, Segment: s}
	}
	parsed, err := Parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
