package markup

import (
	"encoding/json"
	"fmt"

	"github.com/minimact/mxc/pkg/deps"
	"github.com/minimact/mxc/pkg/paths"
)

// The wire format is kind-discriminated JSON. It is both the hand-over
// format from the front end (.ast.json, annotation fields absent) and the
// persisted annotated tree the hot-reload diff tool reads back
// (.paths.json, annotation fields present).

type exprJSON struct {
	Kind    string      `json:"kind"`
	Name    string      `json:"name,omitempty"`
	Target  *Expr       `json:"target,omitempty"`
	Lit     string      `json:"lit,omitempty"`
	Value   json.Number `json:"value,omitempty"`
	StrVal  *string     `json:"str,omitempty"`
	BoolVal *bool       `json:"bool,omitempty"`
	Op      string      `json:"op,omitempty"`
	Left    *Expr       `json:"left,omitempty"`
	Right   *Expr       `json:"right,omitempty"`
	Test    *Expr       `json:"test,omitempty"`
	Then    *Expr       `json:"then,omitempty"`
	Else    *Expr       `json:"else,omitempty"`
	Args    []*Expr     `json:"args,omitempty"`
	Params  []string    `json:"params,omitempty"`
	Body    *Expr       `json:"body,omitempty"`
}

var exprKindNames = map[ExprKind]string{
	ExprIdent:   "ident",
	ExprMember:  "member",
	ExprLiteral: "lit",
	ExprCall:    "call",
	ExprBinary:  "binary",
	ExprUnary:   "unary",
	ExprCond:    "cond",
	ExprFunc:    "func",
	ExprArray:   "array",
}

var litKindNames = map[LitKind]string{
	LitString: "string",
	LitNumber: "number",
	LitBool:   "bool",
	LitNull:   "null",
}

// MarshalJSON renders the expression in the kind-discriminated wire format
func (e *Expr) MarshalJSON() ([]byte, error) {
	out := exprJSON{Kind: exprKindNames[e.Kind], Name: e.Name, Op: e.Op}
	switch e.Kind {
	case ExprMember:
		out.Target = e.Target
	case ExprLiteral:
		out.Lit = litKindNames[e.Lit]
		switch e.Lit {
		case LitString:
			s := e.StrVal
			out.StrVal = &s
		case LitNumber:
			out.Value = json.Number(fmt.Sprintf("%g", e.NumVal))
		case LitBool:
			b := e.BoolVal
			out.BoolVal = &b
		}
	case ExprCall:
		out.Target = e.Target
		out.Args = e.Args
	case ExprBinary:
		out.Left, out.Right = e.Left, e.Right
	case ExprUnary:
		out.Target = e.Target
	case ExprCond:
		out.Test, out.Then, out.Else = e.Test, e.Then, e.Else
	case ExprFunc:
		out.Params, out.Body = e.Params, e.Body
	case ExprArray:
		out.Args = e.Args
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the kind-discriminated wire format
func (e *Expr) UnmarshalJSON(b []byte) error {
	var in exprJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*e = Expr{Name: in.Name, Op: in.Op}
	switch in.Kind {
	case "ident":
		e.Kind = ExprIdent
	case "member":
		e.Kind = ExprMember
		e.Target = in.Target
	case "lit":
		e.Kind = ExprLiteral
		switch in.Lit {
		case "string":
			e.Lit = LitString
			if in.StrVal != nil {
				e.StrVal = *in.StrVal
			}
		case "number":
			e.Lit = LitNumber
			v, err := in.Value.Float64()
			if err != nil {
				return fmt.Errorf("bad number literal %q: %w", in.Value, err)
			}
			e.NumVal = v
		case "bool":
			e.Lit = LitBool
			if in.BoolVal != nil {
				e.BoolVal = *in.BoolVal
			}
		case "null":
			e.Lit = LitNull
		default:
			return fmt.Errorf("unknown literal kind %q", in.Lit)
		}
	case "call":
		e.Kind = ExprCall
		e.Target = in.Target
		e.Args = in.Args
	case "binary":
		e.Kind = ExprBinary
		e.Left, e.Right = in.Left, in.Right
	case "unary":
		e.Kind = ExprUnary
		e.Target = in.Target
	case "cond":
		e.Kind = ExprCond
		e.Test, e.Then, e.Else = in.Test, in.Then, in.Else
	case "func":
		e.Kind = ExprFunc
		e.Params, e.Body = in.Params, in.Body
	case "array":
		e.Kind = ExprArray
		e.Args = in.Args
	default:
		return fmt.Errorf("unknown expression kind %q", in.Kind)
	}
	return nil
}

type attrJSON struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
	Expr  *Expr  `json:"expr,omitempty"`
}

type nodeJSON struct {
	Kind     string            `json:"kind"`
	Tag      string            `json:"tag,omitempty"`
	Attrs    []attrJSON        `json:"attrs,omitempty"`
	Kids     []*Node           `json:"kids,omitempty"`
	Text     string            `json:"text,omitempty"`
	Expr     *Expr             `json:"expr,omitempty"`
	Test     *Expr             `json:"test,omitempty"`
	Then     *Node             `json:"then,omitempty"`
	Else     *Node             `json:"else,omitempty"`
	Iterable *Expr             `json:"iterable,omitempty"`
	ItemVar  string            `json:"item,omitempty"`
	IndexVar string            `json:"index,omitempty"`
	KeyExpr  *Expr             `json:"key,omitempty"`
	Body     *Node             `json:"body,omitempty"`
	Path     string            `json:"path,omitempty"`
	Class    string            `json:"class,omitempty"`
	FreeVars []deps.Dependency `json:"freeVars,omitempty"`
}

var nodeKindNames = map[NodeKind]string{
	KindElement:  "element",
	KindText:     "text",
	KindExpr:     "expr",
	KindCond:     "cond",
	KindLoop:     "loop",
	KindFragment: "fragment",
}

// MarshalJSON renders the node, including the path/classification
// annotations when the node has been through a compile pass.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{Kind: nodeKindNames[n.Kind]}
	switch n.Kind {
	case KindElement:
		out.Tag = n.Tag
		out.Kids = n.Kids
		for _, a := range n.Attrs {
			out.Attrs = append(out.Attrs, attrJSON{Name: a.Name, Value: a.Value, Expr: a.Expr})
		}
	case KindText:
		out.Text = n.Text
	case KindExpr:
		out.Expr = n.Expr
	case KindCond:
		out.Test = n.Expr
		out.Then = n.Then
		out.Else = n.Else
	case KindLoop:
		out.Iterable = n.Expr
		out.ItemVar = n.ItemVar
		out.IndexVar = n.IndexVar
		out.KeyExpr = n.KeyExpr
		out.Body = n.Body
	case KindFragment:
		out.Kids = n.Kids
	}
	if !n.Path.IsRoot() {
		out.Path = n.Path.String()
		out.Class = n.Class.String()
		out.FreeVars = n.FreeVars
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a node, tolerating absent annotation fields
func (n *Node) UnmarshalJSON(b []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*n = Node{}
	switch in.Kind {
	case "element":
		n.Kind = KindElement
		n.Tag = in.Tag
		n.Kids = in.Kids
		for _, a := range in.Attrs {
			n.Attrs = append(n.Attrs, Attr{Name: a.Name, Value: a.Value, Expr: a.Expr})
		}
	case "text":
		n.Kind = KindText
		n.Text = in.Text
	case "expr":
		n.Kind = KindExpr
		n.Expr = in.Expr
	case "cond":
		n.Kind = KindCond
		n.Expr = in.Test
		n.Then = in.Then
		n.Else = in.Else
	case "loop":
		n.Kind = KindLoop
		n.Expr = in.Iterable
		n.ItemVar = in.ItemVar
		n.IndexVar = in.IndexVar
		n.KeyExpr = in.KeyExpr
		n.Body = in.Body
	case "fragment":
		n.Kind = KindFragment
		n.Kids = in.Kids
	default:
		return fmt.Errorf("unknown markup node kind %q", in.Kind)
	}
	if in.Path != "" {
		p, err := paths.Parse(in.Path)
		if err != nil {
			return err
		}
		n.Path = p
		n.FreeVars = in.FreeVars
		if err := n.Class.UnmarshalJSON([]byte(`"` + in.Class + `"`)); err != nil {
			return err
		}
	}
	return nil
}
