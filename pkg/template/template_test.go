package template

import (
	"testing"

	"github.com/minimact/mxc/pkg/deps"
	"github.com/minimact/mxc/pkg/markup"
	"github.com/minimact/mxc/pkg/paths"
)

// scope builds a classifier resolving identifier reads against a fixed
// dependency set, the way the compiler resolves them against component scope.
func scope(ds ...deps.Dependency) Classifier {
	byName := make(map[string]deps.Dependency, len(ds))
	for _, d := range ds {
		byName[d.Name] = d
	}
	return func(e *markup.Expr) deps.Classification {
		var used []deps.Dependency
		e.Idents(func(name string) {
			if d, ok := byName[name]; ok {
				used = append(used, d)
			}
		})
		return deps.Classify(used)
	}
}

func TestExtract_ConditionalBranches(t *testing.T) {
	then := markup.Element("span", nil, markup.Text("on"))
	then.Class = deps.ClassClient
	els := markup.Text("off")
	els.Class = deps.ClassStatic

	n := markup.Cond(markup.Ident("visible"), then, els)
	n.Path = paths.Path{0x10, 0x20}
	n.FreeVars = []deps.Dependency{{Name: "visible", Origin: deps.OriginClient}}

	got := Extract(n, scope(deps.Dependency{Name: "visible", Origin: deps.OriginClient}))
	if len(got) != 2 {
		t.Fatalf("extracted %d templates, want 2", len(got))
	}

	if got[0].Kind != KindConditionalBranch || got[0].Disc != DiscThen {
		t.Errorf("first template = %s %q", got[0].Kind, got[0].Disc)
	}
	if got[0].Node != then || got[0].Class != deps.ClassClient {
		t.Errorf("then branch node/class mismatch: %+v", got[0])
	}
	if got[0].Key() != "10.20#then" {
		t.Errorf("Key() = %q", got[0].Key())
	}

	if got[1].Disc != DiscElse || got[1].Node != els {
		t.Errorf("else branch = %+v", got[1])
	}
}

func TestExtract_ComplexCondition(t *testing.T) {
	// A comparison is not simple, so the condition needs its own template
	// alongside the branch.
	test := markup.Binary(">", markup.Ident("count"), markup.Num(0))
	n := markup.Cond(test, markup.Text("some"), nil)
	n.Path = paths.Path{0x10}
	n.FreeVars = []deps.Dependency{{Name: "count", Origin: deps.OriginClient}}

	got := Extract(n, scope(deps.Dependency{Name: "count", Origin: deps.OriginClient}))
	if len(got) != 2 {
		t.Fatalf("extracted %d templates, want 2", len(got))
	}
	cond := got[1]
	if cond.Kind != KindComputedExpression || cond.Disc != DiscCond {
		t.Fatalf("condition template = %s %q", cond.Kind, cond.Disc)
	}
	if cond.Expr != test {
		t.Error("condition template does not reference the test expression")
	}
	if cond.Class != deps.ClassClient {
		t.Errorf("condition class = %s, want client", cond.Class)
	}
}

func TestExtract_LoopBody(t *testing.T) {
	body := markup.ExprNode(markup.Member(markup.Ident("item"), "label"))
	n := markup.Loop(markup.Ident("items"), "item", "", nil, body)
	n.Path = paths.Path{0x30}

	got := Extract(n, scope())
	if len(got) != 1 {
		t.Fatalf("extracted %d templates, want 1", len(got))
	}
	if got[0].Kind != KindLoopBody || got[0].Disc != DiscBody || got[0].Node != body {
		t.Errorf("loop body template = %+v", got[0])
	}
}

func TestExtract_ComputedIterable(t *testing.T) {
	iterable := markup.Call(markup.Member(markup.Ident("todos"), "filter"), markup.Ident("isDone"))
	n := markup.Loop(iterable, "todo", "", nil, markup.Text("row"))
	n.Path = paths.Path{0x30}
	n.FreeVars = []deps.Dependency{
		{Name: "todos", Origin: deps.OriginServer},
		{Name: "isDone", Origin: deps.OriginClient},
	}

	got := Extract(n, scope(
		deps.Dependency{Name: "todos", Origin: deps.OriginServer},
		deps.Dependency{Name: "isDone", Origin: deps.OriginClient},
	))
	if len(got) != 2 {
		t.Fatalf("extracted %d templates, want 2", len(got))
	}
	iter := got[1]
	if iter.Kind != KindComputedExpression || iter.Disc != DiscIterable {
		t.Fatalf("iterable template = %s %q", iter.Kind, iter.Disc)
	}
	if iter.Class != deps.ClassHybrid {
		t.Errorf("iterable class = %s, want hybrid", iter.Class)
	}
}

func TestExtract_ExpressionNodes(t *testing.T) {
	// Simple expressions stay inline.
	simple := markup.ExprNode(markup.Member(markup.Ident("user"), "name"))
	simple.Path = paths.Path{0x10}
	if got := Extract(simple, scope()); len(got) != 0 {
		t.Errorf("simple expression extracted %d templates, want 0", len(got))
	}

	complexExpr := markup.Binary("+", markup.Ident("a"), markup.Ident("b"))
	n := markup.ExprNode(complexExpr)
	n.Path = paths.Path{0x20}
	n.Class = deps.ClassServer

	got := Extract(n, scope(
		deps.Dependency{Name: "a", Origin: deps.OriginServer},
		deps.Dependency{Name: "b", Origin: deps.OriginServer},
	))
	if len(got) != 1 {
		t.Fatalf("extracted %d templates, want 1", len(got))
	}
	if got[0].Kind != KindComputedExpression || got[0].Disc != "" {
		t.Errorf("template = %s %q", got[0].Kind, got[0].Disc)
	}
	if got[0].Class != deps.ClassServer {
		t.Errorf("class = %s, want server", got[0].Class)
	}
	if got[0].Key() != "20#" {
		t.Errorf("Key() = %q", got[0].Key())
	}
}

func TestExtract_AttributeValues(t *testing.T) {
	cls := markup.CondExpr(markup.Ident("active"), markup.Str("on"), markup.Str("off"))
	n := markup.Element("button", []markup.Attr{
		{Name: "type", Value: "submit"},                          // static
		{Name: "title", Expr: markup.Ident("label")},             // simple, inline
		{Name: "class", Expr: cls},                               // complex
		{Name: "data-id", Expr: markup.Call(markup.Ident("id"))}, // complex
	})
	n.Path = paths.Path{0x40}
	n.FreeVars = []deps.Dependency{
		{Name: "active", Origin: deps.OriginClient},
		{Name: "label", Origin: deps.OriginServer},
		{Name: "id", Origin: deps.OriginServer},
	}

	got := Extract(n, scope(
		deps.Dependency{Name: "active", Origin: deps.OriginClient},
		deps.Dependency{Name: "label", Origin: deps.OriginServer},
		deps.Dependency{Name: "id", Origin: deps.OriginServer},
	))
	if len(got) != 2 {
		t.Fatalf("extracted %d templates, want 2", len(got))
	}
	if got[0].Kind != KindAttributeValue || got[0].Disc != "class" {
		t.Errorf("first attribute template = %s %q", got[0].Kind, got[0].Disc)
	}
	if got[0].Class != deps.ClassClient {
		t.Errorf("class attribute classification = %s, want client", got[0].Class)
	}
	if got[1].Disc != "data-id" || got[1].Class != deps.ClassServer {
		t.Errorf("second attribute template = %+v", got[1])
	}
	if got[0].Key() != "40#class" {
		t.Errorf("Key() = %q", got[0].Key())
	}
}

func TestExtract_LocalIndirection(t *testing.T) {
	// The condition reads a local; only the classifier knows the local
	// expands to client state. The node's resolved FreeVars never name
	// "doubled", so narrowing against them would misclassify as static.
	test := markup.Binary(">", markup.Ident("doubled"), markup.Num(0))
	n := markup.Cond(test, markup.Text("positive"), nil)
	n.Path = paths.Path{0x10}
	n.FreeVars = []deps.Dependency{{Name: "count", Origin: deps.OriginClient}}

	resolve := func(e *markup.Expr) deps.Classification {
		var used []deps.Dependency
		e.Idents(func(name string) {
			if name == "doubled" {
				used = append(used, deps.Dependency{Name: "count", Origin: deps.OriginClient})
			}
		})
		return deps.Classify(used)
	}

	got := Extract(n, resolve)
	if len(got) != 2 {
		t.Fatalf("extracted %d templates, want 2", len(got))
	}
	cond := got[1]
	if cond.Disc != DiscCond {
		t.Fatalf("second template disc = %q, want cond", cond.Disc)
	}
	if cond.Class != deps.ClassClient {
		t.Errorf("condition class = %s, want client", cond.Class)
	}
}

func TestExtract_PlainNodes(t *testing.T) {
	for _, n := range []*markup.Node{
		markup.Text("hi"),
		markup.Fragment(markup.Text("a")),
		markup.Element("div", nil),
	} {
		if got := Extract(n, scope()); len(got) != 0 {
			t.Errorf("node kind %d extracted %d templates, want 0", n.Kind, len(got))
		}
	}
}
