// Package template lifts reusable fragments out of a classified markup
// tree: conditional branches, loop bodies, and expressions too complex to
// inline. Code generators render templates independently and the hot-reload
// runtime swaps them by path without re-rendering the whole component.
package template

import (
	"github.com/minimact/mxc/pkg/deps"
	"github.com/minimact/mxc/pkg/markup"
	"github.com/minimact/mxc/pkg/paths"
)

// Kind represents the type of extracted template
type Kind uint8

const (
	// KindConditionalBranch is one arm of a conditional node
	KindConditionalBranch Kind = iota
	// KindLoopBody is the body subtree of a loop node
	KindLoopBody
	// KindComputedExpression is a complex expression needing precomputation
	KindComputedExpression
	// KindAttributeValue is a complex expression in an attribute position
	KindAttributeValue
)

// String returns the wire name of the template kind
func (k Kind) String() string {
	switch k {
	case KindConditionalBranch:
		return "conditional-branch"
	case KindLoopBody:
		return "loop-body"
	case KindAttributeValue:
		return "attribute-value"
	default:
		return "computed-expression"
	}
}

// Branch discriminators distinguishing templates that share a path root.
const (
	DiscThen     = "then"
	DiscElse     = "else"
	DiscBody     = "body"
	DiscCond     = "cond"
	DiscIterable = "iterable"
)

// Template is an extracted, independently addressable fragment. Exactly one
// of Node and Expr is set, depending on the kind. Templates only reference
// subtrees of the annotated tree; extraction never copies or mutates nodes.
type Template struct {
	Kind Kind

	// Path is the owning node's path
	Path paths.Path

	// Disc distinguishes multiple templates rooted at the same path: a
	// branch name, or the attribute name for attribute-value templates.
	Disc string

	// Node is the extracted subtree (conditional-branch, loop-body)
	Node *markup.Node

	// Expr is the extracted expression (computed-expression, attribute-value)
	Expr *markup.Expr

	// Class is the fragment's classification
	Class deps.Classification
}

// Key returns the template's collection key: path plus discriminator
func (t Template) Key() string {
	return t.Path.String() + "#" + t.Disc
}

// Classifier resolves the classification of one extracted expression in
// the scope its owning node is evaluated in. The node's own FreeVars are
// no substitute: locals resolve there to what they read, so an expression
// naming a local would match nothing.
type Classifier func(*markup.Expr) deps.Classification

// Extract returns the templates owned by a single classified node. The
// surrounding traversal is the builder's; calling Extract on every node of
// an annotated tree yields the component's full template collection.
// classify is consulted for every extracted expression.
func Extract(n *markup.Node, classify Classifier) []Template {
	var out []Template
	switch n.Kind {
	case markup.KindCond:
		if n.Then != nil {
			out = append(out, Template{
				Kind:  KindConditionalBranch,
				Path:  n.Path,
				Disc:  DiscThen,
				Node:  n.Then,
				Class: n.Then.Class,
			})
		}
		if n.Else != nil {
			out = append(out, Template{
				Kind:  KindConditionalBranch,
				Path:  n.Path,
				Disc:  DiscElse,
				Node:  n.Else,
				Class: n.Else.Class,
			})
		}
		// The condition itself is inlined unless it needs precomputation
		if !n.Expr.IsSimple() {
			out = append(out, Template{
				Kind:  KindComputedExpression,
				Path:  n.Path,
				Disc:  DiscCond,
				Expr:  n.Expr,
				Class: classify(n.Expr),
			})
		}
	case markup.KindLoop:
		if n.Body != nil {
			out = append(out, Template{
				Kind:  KindLoopBody,
				Path:  n.Path,
				Disc:  DiscBody,
				Node:  n.Body,
				Class: n.Body.Class,
			})
		}
		if !n.Expr.IsSimple() {
			out = append(out, Template{
				Kind:  KindComputedExpression,
				Path:  n.Path,
				Disc:  DiscIterable,
				Expr:  n.Expr,
				Class: classify(n.Expr),
			})
		}
	case markup.KindExpr:
		if !n.Expr.IsSimple() {
			out = append(out, Template{
				Kind:  KindComputedExpression,
				Path:  n.Path,
				Disc:  "",
				Expr:  n.Expr,
				Class: classify(n.Expr),
			})
		}
	case markup.KindElement:
		for _, attr := range n.Attrs {
			if attr.Expr != nil && !attr.Expr.IsSimple() {
				out = append(out, Template{
					Kind:  KindAttributeValue,
					Path:  n.Path,
					Disc:  attr.Name,
					Expr:  attr.Expr,
					Class: classify(attr.Expr),
				})
			}
		}
	}
	return out
}
