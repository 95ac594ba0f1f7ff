package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/minimact/mxc/pkg/assign"
	"github.com/minimact/mxc/pkg/markup"
	"github.com/minimact/mxc/pkg/template"
)

// Prop is one resolved component prop with its declared or inferred type
type Prop struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Local is a non-hook variable declared in the component body, kept so code
// generators can emit it alongside the render logic.
type Local struct {
	Name string       `json:"name"`
	Init *markup.Expr `json:"init,omitempty"`
}

// ComponentIR is the complete intermediate representation of one compiled
// component. Once returned it is immutable; code generators and the
// hot-reload engine read it without re-running any part of the pipeline.
type ComponentIR struct {
	// Name is the component name
	Name string

	// Props is the ordered prop list
	Props []Prop

	// Hooks are the ordered hook declarations
	Hooks []Hook

	// Locals are non-hook body variables in declaration order
	Locals []Local

	// Root is the markup tree with paths and classifications attached
	Root *markup.Node

	// Templates is the extracted template collection, keyed by path plus
	// discriminator, in tree pre-order
	Templates []template.Template

	// Changes is the structural diff against the previous compile; on a
	// first compile it lists every node as inserted
	Changes []assign.Change

	// Assignment is the path assignment to diff the next compile against
	Assignment *assign.Assignment
}

type hookJSON struct {
	Kind    string       `json:"kind"`
	Name    string       `json:"name,omitempty"`
	Setter  string       `json:"setter,omitempty"`
	Initial *markup.Expr `json:"initial,omitempty"`
	Source  *markup.Expr `json:"source,omitempty"`
	Deps    []string     `json:"deps,omitempty"`
}

// MarshalJSON renders the hook for the IR artifact
func (h Hook) MarshalJSON() ([]byte, error) {
	return json.Marshal(hookJSON{
		Kind:    h.Kind.String(),
		Name:    h.Name,
		Setter:  h.Setter,
		Initial: h.Initial,
		Source:  h.Source,
		Deps:    h.Deps,
	})
}

// UnmarshalJSON decodes the artifact form
func (h *Hook) UnmarshalJSON(b []byte) error {
	var in hookJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*h = Hook{Name: in.Name, Setter: in.Setter, Initial: in.Initial, Source: in.Source, Deps: in.Deps}
	switch in.Kind {
	case "state":
		h.Kind = HookState
	case "clientState":
		h.Kind = HookClientState
	case "ref":
		h.Kind = HookRef
	case "serverData":
		h.Kind = HookServerData
	case "effect":
		h.Kind = HookEffect
	default:
		return fmt.Errorf("unknown hook kind %q", in.Kind)
	}
	return nil
}

type templateJSON struct {
	Kind  string       `json:"kind"`
	Path  string       `json:"path"`
	Disc  string       `json:"disc,omitempty"`
	Node  *markup.Node `json:"node,omitempty"`
	Expr  *markup.Expr `json:"expr,omitempty"`
	Class string       `json:"class"`
}

type irJSON struct {
	Name      string             `json:"name"`
	Props     []Prop             `json:"props,omitempty"`
	Hooks     []Hook             `json:"hooks,omitempty"`
	Locals    []Local            `json:"locals,omitempty"`
	Root      *markup.Node       `json:"root"`
	Templates []templateJSON     `json:"templates,omitempty"`
	Changes   []assign.Change    `json:"changes,omitempty"`
	Prev      *assign.Assignment `json:"assignment,omitempty"`
}

// MarshalJSON renders the IR artifact consumed by the code generators and
// the hot-reload diff tool.
func (ir *ComponentIR) MarshalJSON() ([]byte, error) {
	out := irJSON{
		Name:    ir.Name,
		Props:   ir.Props,
		Hooks:   ir.Hooks,
		Locals:  ir.Locals,
		Root:    ir.Root,
		Changes: ir.Changes,
		Prev:    ir.Assignment,
	}
	for _, t := range ir.Templates {
		out.Templates = append(out.Templates, templateJSON{
			Kind:  t.Kind.String(),
			Path:  t.Path.String(),
			Disc:  t.Disc,
			Node:  t.Node,
			Expr:  t.Expr,
			Class: t.Class.String(),
		})
	}
	return json.Marshal(out)
}
