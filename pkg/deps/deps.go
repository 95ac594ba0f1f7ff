// Package deps classifies the dependency sets of markup subtrees.
// Every identifier a subtree reads carries an origin (client state vs
// server-supplied data), and the multiset of origins determines how the
// subtree is split between environments.
package deps

import "fmt"

// Origin identifies where a dependency's value lives at runtime
type Origin uint8

const (
	// OriginClient marks state and refs local to the running instance
	OriginClient Origin = iota
	// OriginServer marks props and data supplied externally
	OriginServer
)

// String returns the wire name of the origin
func (o Origin) String() string {
	if o == OriginServer {
		return "server"
	}
	return "client"
}

// Dependency is a single identifier a subtree reads, tagged with its origin
type Dependency struct {
	Name   string `json:"name"`
	Origin Origin `json:"origin"`
}

// Classification describes how a subtree depends on its environment
type Classification uint8

const (
	// ClassStatic means the subtree reads no dependencies at all
	ClassStatic Classification = iota
	// ClassClient means every dependency is client-origin
	ClassClient
	// ClassServer means every dependency is server-origin
	ClassServer
	// ClassHybrid means both origins are present
	ClassHybrid
)

// String returns the wire name of the classification
func (c Classification) String() string {
	switch c {
	case ClassClient:
		return "client"
	case ClassServer:
		return "server"
	case ClassHybrid:
		return "hybrid"
	default:
		return "static"
	}
}

// MarshalJSON renders the origin as its wire name
func (o Origin) MarshalJSON() ([]byte, error) {
	return []byte(`"` + o.String() + `"`), nil
}

// UnmarshalJSON accepts the wire names produced by MarshalJSON
func (o *Origin) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"server"`:
		*o = OriginServer
	case `"client"`:
		*o = OriginClient
	default:
		return fmt.Errorf("unknown dependency origin %s", b)
	}
	return nil
}

// MarshalJSON renders the classification as its wire name
func (c Classification) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON accepts the wire names produced by MarshalJSON
func (c *Classification) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"static"`:
		*c = ClassStatic
	case `"client"`:
		*c = ClassClient
	case `"server"`:
		*c = ClassServer
	case `"hybrid"`:
		*c = ClassHybrid
	default:
		return fmt.Errorf("unknown classification %s", b)
	}
	return nil
}

// Classify derives the classification of a free-variable set.
// It is a pure function of the origins present: the empty set is static,
// a single-origin set takes that origin, and a mixed set is hybrid.
// Dependency count never matters.
func Classify(freeVars []Dependency) Classification {
	var hasClient, hasServer bool
	for _, d := range freeVars {
		switch d.Origin {
		case OriginClient:
			hasClient = true
		case OriginServer:
			hasServer = true
		}
	}
	switch {
	case hasClient && hasServer:
		return ClassHybrid
	case hasClient:
		return ClassClient
	case hasServer:
		return ClassServer
	default:
		return ClassStatic
	}
}

// Merge unions two dependency sets, dropping duplicates while keeping the
// first occurrence order stable. Parents accumulate their children's sets
// this way during the bottom-up classification pass.
func Merge(a, b []Dependency) []Dependency {
	if len(b) == 0 {
		return a
	}
	seen := make(map[Dependency]struct{}, len(a)+len(b))
	out := make([]Dependency, 0, len(a)+len(b))
	for _, d := range a {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	for _, d := range b {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}
