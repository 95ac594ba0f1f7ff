package markup

import (
	"strconv"
	"strings"
)

// ExprKind represents the type of an embedded expression
type ExprKind uint8

const (
	// ExprIdent is a bare identifier reference
	ExprIdent ExprKind = iota
	// ExprMember is a dotted member access chain
	ExprMember
	// ExprLiteral is a string/number/bool/null literal
	ExprLiteral
	// ExprCall is a function or method call
	ExprCall
	// ExprBinary is a binary or logical operator application
	ExprBinary
	// ExprUnary is a prefix operator application
	ExprUnary
	// ExprCond is a ternary conditional expression
	ExprCond
	// ExprFunc is an inline function literal
	ExprFunc
	// ExprArray is an array literal
	ExprArray
)

// LitKind distinguishes literal payloads
type LitKind uint8

const (
	LitString LitKind = iota
	LitNumber
	LitBool
	LitNull
)

// Expr is a value-producing expression embedded in markup. It is a closed
// tagged union: Kind determines which fields are meaningful.
type Expr struct {
	Kind ExprKind

	// Name is the identifier (ExprIdent) or member/property name (ExprMember)
	Name string

	// Target is the receiver of a member access (ExprMember), the callee
	// (ExprCall), or the operand (ExprUnary)
	Target *Expr

	// Lit carries the literal payload (ExprLiteral)
	Lit     LitKind
	StrVal  string
	NumVal  float64
	BoolVal bool

	// Op is the operator token (ExprBinary, ExprUnary)
	Op string

	// Left and Right are the binary operands (ExprBinary)
	Left  *Expr
	Right *Expr

	// Test, Then and Else are the ternary arms (ExprCond)
	Test *Expr
	Then *Expr
	Else *Expr

	// Args are call arguments (ExprCall) or array elements (ExprArray)
	Args []*Expr

	// Params and Body describe a function literal (ExprFunc)
	Params []string
	Body   *Expr
}

// Ident creates an identifier expression
func Ident(name string) *Expr {
	return &Expr{Kind: ExprIdent, Name: name}
}

// Member creates a member access on target
func Member(target *Expr, name string) *Expr {
	return &Expr{Kind: ExprMember, Target: target, Name: name}
}

// Str creates a string literal
func Str(v string) *Expr {
	return &Expr{Kind: ExprLiteral, Lit: LitString, StrVal: v}
}

// Num creates a number literal
func Num(v float64) *Expr {
	return &Expr{Kind: ExprLiteral, Lit: LitNumber, NumVal: v}
}

// Bool creates a boolean literal
func Bool(v bool) *Expr {
	return &Expr{Kind: ExprLiteral, Lit: LitBool, BoolVal: v}
}

// Null creates a null literal
func Null() *Expr {
	return &Expr{Kind: ExprLiteral, Lit: LitNull}
}

// Call creates a call of callee with args
func Call(callee *Expr, args ...*Expr) *Expr {
	return &Expr{Kind: ExprCall, Target: callee, Args: args}
}

// Binary creates an operator application
func Binary(op string, left, right *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Op: op, Left: left, Right: right}
}

// Unary creates a prefix operator application
func Unary(op string, operand *Expr) *Expr {
	return &Expr{Kind: ExprUnary, Op: op, Target: operand}
}

// CondExpr creates a ternary expression
func CondExpr(test, then, els *Expr) *Expr {
	return &Expr{Kind: ExprCond, Test: test, Then: then, Else: els}
}

// Func creates a function literal
func Func(params []string, body *Expr) *Expr {
	return &Expr{Kind: ExprFunc, Params: params, Body: body}
}

// Array creates an array literal
func Array(elems ...*Expr) *Expr {
	return &Expr{Kind: ExprArray, Args: elems}
}

// IsSimple reports whether the expression is a bare identifier, member
// access chain, or literal. Simple expressions are rendered inline by the
// code generators; everything else needs an extracted template.
func (e *Expr) IsSimple() bool {
	switch e.Kind {
	case ExprIdent, ExprLiteral:
		return true
	case ExprMember:
		return e.Target.IsSimple()
	default:
		return false
	}
}

// String renders a compact source-like form of the expression, used for
// structural signatures and diagnostics.
func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expr) write(b *strings.Builder) {
	switch e.Kind {
	case ExprIdent:
		b.WriteString(e.Name)
	case ExprMember:
		e.Target.write(b)
		b.WriteByte('.')
		b.WriteString(e.Name)
	case ExprLiteral:
		switch e.Lit {
		case LitString:
			b.WriteString(strconv.Quote(e.StrVal))
		case LitNumber:
			b.WriteString(strconv.FormatFloat(e.NumVal, 'g', -1, 64))
		case LitBool:
			b.WriteString(strconv.FormatBool(e.BoolVal))
		case LitNull:
			b.WriteString("null")
		}
	case ExprCall:
		e.Target.write(b)
		b.WriteByte('(')
		for i, arg := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			arg.write(b)
		}
		b.WriteByte(')')
	case ExprBinary:
		e.Left.write(b)
		b.WriteByte(' ')
		b.WriteString(e.Op)
		b.WriteByte(' ')
		e.Right.write(b)
	case ExprUnary:
		b.WriteString(e.Op)
		e.Target.write(b)
	case ExprCond:
		e.Test.write(b)
		b.WriteString(" ? ")
		e.Then.write(b)
		b.WriteString(" : ")
		e.Else.write(b)
	case ExprFunc:
		b.WriteByte('(')
		b.WriteString(strings.Join(e.Params, ", "))
		b.WriteString(") => ")
		if e.Body != nil {
			e.Body.write(b)
		}
	case ExprArray:
		b.WriteByte('[')
		for i, el := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			el.write(b)
		}
		b.WriteByte(']')
	}
}

// Idents calls fn for every identifier the expression reads, including
// identifiers inside nested expressions. Bound names introduced by function
// literal parameters are skipped within their body.
func (e *Expr) Idents(fn func(name string)) {
	e.idents(fn, nil)
}

func (e *Expr) idents(fn func(string), bound []string) {
	if e == nil {
		return
	}
	switch e.Kind {
	case ExprIdent:
		for _, name := range bound {
			if name == e.Name {
				return
			}
		}
		fn(e.Name)
	case ExprMember:
		// Only the root identifier of a member chain is a read
		e.Target.idents(fn, bound)
	case ExprCall:
		e.Target.idents(fn, bound)
		for _, arg := range e.Args {
			arg.idents(fn, bound)
		}
	case ExprBinary:
		e.Left.idents(fn, bound)
		e.Right.idents(fn, bound)
	case ExprUnary:
		e.Target.idents(fn, bound)
	case ExprCond:
		e.Test.idents(fn, bound)
		e.Then.idents(fn, bound)
		e.Else.idents(fn, bound)
	case ExprFunc:
		inner := append(append([]string(nil), bound...), e.Params...)
		e.Body.idents(fn, inner)
	case ExprArray:
		for _, el := range e.Args {
			el.idents(fn, bound)
		}
	}
}

// Root returns the leftmost identifier of an ident or member chain, or ""
// when the expression is rooted elsewhere (a call result, a literal).
func (e *Expr) Root() string {
	switch e.Kind {
	case ExprIdent:
		return e.Name
	case ExprMember:
		return e.Target.Root()
	default:
		return ""
	}
}
