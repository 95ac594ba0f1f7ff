// Package markup defines the component markup tree handed over by the front
// end, together with the expressions embedded in it. Nodes are closed tagged
// unions; after a compile pass each node also carries its assigned identity
// path, its free-variable set and its classification.
package markup

import (
	"github.com/minimact/mxc/pkg/deps"
	"github.com/minimact/mxc/pkg/paths"
)

// NodeKind represents the type of markup node
type NodeKind uint8

const (
	// KindElement is a tagged element with attributes and children
	KindElement NodeKind = iota
	// KindText is a static text node
	KindText
	// KindExpr is an expression embedded in markup
	KindExpr
	// KindCond is a conditional with consequent and alternate subtrees
	KindCond
	// KindLoop is a loop over an iterable with an item binding and a body
	KindLoop
	// KindFragment is an ordered child list without a tag
	KindFragment
)

// Attr is a single element attribute. Static attributes carry only Value;
// dynamic ones carry an expression instead.
type Attr struct {
	Name  string
	Value string
	Expr  *Expr
}

// Node is a node in the component's returned UI tree.
// Kind determines which fields are meaningful. The annotation fields (Path,
// FreeVars, Class) are populated by the compile pass; the front end leaves
// them zero.
type Node struct {
	Kind NodeKind

	// Tag is the element tag name (KindElement)
	Tag string

	// Attrs are the element attributes in source order (KindElement)
	Attrs []Attr

	// Kids are ordered children (KindElement, KindFragment)
	Kids []*Node

	// Text is the literal content (KindText)
	Text string

	// Expr is the embedded expression (KindExpr), the condition (KindCond)
	// or the iterable (KindLoop)
	Expr *Expr

	// Then and Else are the conditional arms (KindCond). Else may be nil
	// for logical short-circuits.
	Then *Node
	Else *Node

	// ItemVar and IndexVar are the loop bindings (KindLoop); IndexVar may
	// be empty. KeyExpr is the per-iteration key expression, if declared.
	ItemVar  string
	IndexVar string
	KeyExpr  *Expr

	// Body is the loop body subtree (KindLoop)
	Body *Node

	// Path is the node's assigned identity path
	Path paths.Path

	// FreeVars is the dependency set of the subtree rooted here
	FreeVars []deps.Dependency

	// Class is the subtree's derived classification
	Class deps.Classification
}

// Element creates an element node
func Element(tag string, attrs []Attr, kids ...*Node) *Node {
	return &Node{Kind: KindElement, Tag: tag, Attrs: attrs, Kids: kids}
}

// Text creates a static text node
func Text(text string) *Node {
	return &Node{Kind: KindText, Text: text}
}

// ExprNode creates an embedded expression node
func ExprNode(e *Expr) *Node {
	return &Node{Kind: KindExpr, Expr: e}
}

// Cond creates a conditional node. els may be nil.
func Cond(test *Expr, then, els *Node) *Node {
	return &Node{Kind: KindCond, Expr: test, Then: then, Else: els}
}

// Loop creates a loop node. indexVar may be empty and keyExpr nil.
func Loop(iterable *Expr, itemVar, indexVar string, keyExpr *Expr, body *Node) *Node {
	return &Node{
		Kind:     KindLoop,
		Expr:     iterable,
		ItemVar:  itemVar,
		IndexVar: indexVar,
		KeyExpr:  keyExpr,
		Body:     body,
	}
}

// Fragment creates an untagged child list
func Fragment(kids ...*Node) *Node {
	return &Node{Kind: KindFragment, Kids: kids}
}

// IsElement returns true for element nodes
func (n *Node) IsElement() bool { return n.Kind == KindElement }

// IsText returns true for text nodes
func (n *Node) IsText() bool { return n.Kind == KindText }

// Children returns the node's structural children in traversal order:
// element/fragment kids, both conditional arms, or the loop body. Text and
// expression nodes have none.
func (n *Node) Children() []*Node {
	switch n.Kind {
	case KindElement, KindFragment:
		return n.Kids
	case KindCond:
		kids := make([]*Node, 0, 2)
		if n.Then != nil {
			kids = append(kids, n.Then)
		}
		if n.Else != nil {
			kids = append(kids, n.Else)
		}
		return kids
	case KindLoop:
		if n.Body != nil {
			return []*Node{n.Body}
		}
	}
	return nil
}

// Walk visits the subtree in pre-order, stopping a branch when fn returns
// false for its root.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, kid := range n.Children() {
		kid.Walk(fn)
	}
}
