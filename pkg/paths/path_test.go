package paths

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Path
		wantErr bool
	}{
		{name: "single segment", in: "10", want: Path{0x10}},
		{name: "nested", in: "10.20.18", want: Path{0x10, 0x20, 0x18}},
		{name: "lowercase hex", in: "a.ff", want: Path{0xa, 0xff}},
		{name: "max segment", in: "ffffffff", want: Path{0xffffffff}},
		{name: "empty string", in: "", wantErr: true},
		{name: "zero segment", in: "10.0", wantErr: true},
		{name: "empty segment", in: "10..20", wantErr: true},
		{name: "non-hex", in: "10.zz", wantErr: true},
		{name: "overflow", in: "100000000", wantErr: true},
		{name: "negative", in: "-10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) succeeded, want error", tt.in)
				}
				var malformed *MalformedPathError
				if !errors.As(err, &malformed) {
					t.Errorf("error type = %T, want *MalformedPathError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestString_RoundTrip(t *testing.T) {
	for _, s := range []string{"10", "10.20", "1.ffffffff", "a.b.c.d.e"} {
		p, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", s, err)
		}
		if got := p.String(); got != s {
			t.Errorf("round-trip of %q = %q", s, got)
		}
	}
}

func TestParse_LeadingZeros(t *testing.T) {
	a, err := Parse("010")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	b, _ := Parse("10")
	if !a.Equal(b) {
		t.Error("leading-zero variant should compare equal")
	}
	// Rendering is canonical, without the leading zero.
	if a.String() != "10" {
		t.Errorf("String() = %q, want %q", a.String(), "10")
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"10", "10", 0},
		{"10", "20", -1},
		{"20", "10", 1},
		{"10", "10.10", -1}, // prefix sorts first
		{"10.10", "10", 1},
		{"10.20", "10.18", 1},
		{"2", "10", -1}, // numeric, not lexicographic
	}

	for _, tt := range tests {
		a, _ := Parse(tt.a)
		b, _ := Parse(tt.b)
		if got := a.Compare(b); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIsAncestorOf(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"10", "10.20", true},
		{"10", "10.20.30", true},
		{"10", "10", false}, // never its own ancestor
		{"10.20", "10", false},
		{"10", "20.10", false},
	}

	for _, tt := range tests {
		a, _ := Parse(tt.a)
		b, _ := Parse(tt.b)
		if got := a.IsAncestorOf(b); got != tt.want {
			t.Errorf("%s.IsAncestorOf(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestParentChild(t *testing.T) {
	p, _ := Parse("10.20")

	parent, ok := p.Parent()
	if !ok || parent.String() != "10" {
		t.Errorf("Parent() = %v, %v", parent, ok)
	}

	if _, ok := (Path{0x10}).Parent(); ok {
		t.Error("single-segment path should have no parent")
	}

	child := p.Child(0x30)
	if child.String() != "10.20.30" {
		t.Errorf("Child() = %s", child)
	}
	// Child must not alias the receiver's backing array.
	child[0] = 0xff
	if p[0] != 0x10 {
		t.Error("Child aliased the parent's segments")
	}
}

func TestPathJSON(t *testing.T) {
	p, _ := Parse("10.20.18")

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"10.20.18"` {
		t.Errorf("Marshal = %s", data)
	}

	var back Path
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.Equal(p) {
		t.Errorf("round-trip = %v, want %v", back, p)
	}

	if err := json.Unmarshal([]byte(`"not-hex"`), &back); err == nil {
		t.Error("Unmarshal accepted a malformed path")
	}
}
