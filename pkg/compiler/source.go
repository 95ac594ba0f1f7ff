package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/minimact/mxc/pkg/markup"
)

// Param is one component parameter, with an optional type annotation from
// the front end. Untyped parameters default to "any".
type Param struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// StmtKind represents the type of a body statement
type StmtKind uint8

const (
	// StmtVar is a variable declaration, possibly a hook call
	StmtVar StmtKind = iota
	// StmtExpr is a bare expression statement (effect hooks live here)
	StmtExpr
	// StmtReturn is a return statement carrying markup
	StmtReturn
)

// Stmt is one statement of a component body, as handed over by the front
// end. Only the statement shapes the recognition contract needs survive
// parsing; everything else is dropped upstream.
type Stmt struct {
	Kind StmtKind

	// Names are the declared binding names (StmtVar). More than one name
	// means a destructured array binding, as useState produces.
	Names []string

	// Init is the declaration initializer (StmtVar) or the statement's
	// expression (StmtExpr)
	Init *markup.Expr

	// Markup is the returned tree (StmtReturn)
	Markup *markup.Node

	// Line is the source line, carried for diagnostics
	Line int
}

// ComponentDecl is the typed component declaration the front end supplies:
// name, parameter list and body statements.
type ComponentDecl struct {
	Name   string  `json:"name"`
	Params []Param `json:"params,omitempty"`
	Body   []*Stmt `json:"body"`
}

type stmtJSON struct {
	Kind   string       `json:"kind"`
	Names  []string     `json:"names,omitempty"`
	Init   *markup.Expr `json:"init,omitempty"`
	Expr   *markup.Expr `json:"expr,omitempty"`
	Markup *markup.Node `json:"markup,omitempty"`
	Line   int          `json:"line,omitempty"`
}

// MarshalJSON renders the statement in the front-end wire format
func (s *Stmt) MarshalJSON() ([]byte, error) {
	out := stmtJSON{Line: s.Line}
	switch s.Kind {
	case StmtVar:
		out.Kind = "var"
		out.Names = s.Names
		out.Init = s.Init
	case StmtExpr:
		out.Kind = "expr"
		out.Expr = s.Init
	case StmtReturn:
		out.Kind = "return"
		out.Markup = s.Markup
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the front-end wire format
func (s *Stmt) UnmarshalJSON(b []byte) error {
	var in stmtJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*s = Stmt{Line: in.Line}
	switch in.Kind {
	case "var":
		s.Kind = StmtVar
		s.Names = in.Names
		s.Init = in.Init
	case "expr":
		s.Kind = StmtExpr
		s.Init = in.Expr
	case "return":
		s.Kind = StmtReturn
		s.Markup = in.Markup
	default:
		return fmt.Errorf("unknown statement kind %q", in.Kind)
	}
	return nil
}
