package assign

import (
	"encoding/json"
	"fmt"

	"github.com/minimact/mxc/pkg/paths"
)

// ChangeKind represents the type of structural change between two compiles
type ChangeKind uint8

const (
	// ChangeReused means the node kept the path it had in the previous tree
	ChangeReused ChangeKind = iota
	// ChangeInserted means the node is new and received a fresh path
	ChangeInserted
	// ChangeDeleted means a previous path has no surviving node
	ChangeDeleted
	// ChangeMoved means a previous node survives under a different path
	ChangeMoved
)

// String returns the wire name of the change kind
func (k ChangeKind) String() string {
	switch k {
	case ChangeInserted:
		return "inserted"
	case ChangeDeleted:
		return "deleted"
	case ChangeMoved:
		return "moved"
	default:
		return "reused"
	}
}

// Change is one entry of the structural diff emitted while reconciling a
// tree against its previous assignment. Path is the node's current path
// (the dead path for deletions); OldPath is set only for moves.
type Change struct {
	Kind    ChangeKind
	Path    paths.Path
	OldPath paths.Path
}

// Reused builds a reuse entry
func Reused(p paths.Path) Change { return Change{Kind: ChangeReused, Path: p} }

// Inserted builds an insert entry
func Inserted(p paths.Path) Change { return Change{Kind: ChangeInserted, Path: p} }

// Deleted builds a delete entry
func Deleted(p paths.Path) Change { return Change{Kind: ChangeDeleted, Path: p} }

// Moved builds a move entry
func Moved(from, to paths.Path) Change {
	return Change{Kind: ChangeMoved, Path: to, OldPath: from}
}

// String returns a human-readable representation of the change
func (c Change) String() string {
	if c.Kind == ChangeMoved {
		return fmt.Sprintf("moved(%s -> %s)", c.OldPath, c.Path)
	}
	return fmt.Sprintf("%s(%s)", c.Kind, c.Path)
}

type changeJSON struct {
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	OldPath string `json:"oldPath,omitempty"`
}

// MarshalJSON renders the change for the structural-changes artifact
func (c Change) MarshalJSON() ([]byte, error) {
	out := changeJSON{Kind: c.Kind.String(), Path: c.Path.String()}
	if c.Kind == ChangeMoved {
		out.OldPath = c.OldPath.String()
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the artifact form
func (c *Change) UnmarshalJSON(b []byte) error {
	var in changeJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	switch in.Kind {
	case "reused":
		c.Kind = ChangeReused
	case "inserted":
		c.Kind = ChangeInserted
	case "deleted":
		c.Kind = ChangeDeleted
	case "moved":
		c.Kind = ChangeMoved
	default:
		return fmt.Errorf("unknown change kind %q", in.Kind)
	}
	p, err := paths.Parse(in.Path)
	if err != nil {
		return err
	}
	c.Path = p
	c.OldPath = nil
	if in.OldPath != "" {
		if c.OldPath, err = paths.Parse(in.OldPath); err != nil {
			return err
		}
	}
	return nil
}
