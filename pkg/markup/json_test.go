package markup

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/minimact/mxc/pkg/deps"
	"github.com/minimact/mxc/pkg/paths"
)

func TestNodeJSON_RoundTrip(t *testing.T) {
	tree := Element("div",
		[]Attr{
			{Name: "class", Value: "card"},
			{Name: "title", Expr: Member(Ident("user"), "name")},
		},
		Text("hello"),
		ExprNode(Binary("+", Ident("count"), Num(1))),
		Cond(Ident("visible"),
			Element("span", nil, Text("yes")),
			nil),
		Loop(Ident("items"), "item", "i", Member(Ident("item"), "id"),
			ExprNode(Member(Ident("item"), "label"))),
		Fragment(Text("a"), Text("b")),
	)

	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back Node
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if diff := cmp.Diff(tree, &back); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNodeJSON_FrontEndForm(t *testing.T) {
	// The hand-over format: kind-discriminated, no annotation fields.
	raw := `{
		"kind": "element",
		"tag": "ul",
		"kids": [
			{
				"kind": "loop",
				"iterable": {"kind": "ident", "name": "todos"},
				"item": "todo",
				"key": {"kind": "member", "name": "id", "target": {"kind": "ident", "name": "todo"}},
				"body": {"kind": "expr", "expr": {"kind": "member", "name": "text", "target": {"kind": "ident", "name": "todo"}}}
			}
		]
	}`

	var n Node
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if n.Kind != KindElement || n.Tag != "ul" {
		t.Fatalf("root = %d %q", n.Kind, n.Tag)
	}
	loop := n.Kids[0]
	if loop.Kind != KindLoop || loop.ItemVar != "todo" {
		t.Fatalf("loop = %+v", loop)
	}
	if loop.KeyExpr.String() != "todo.id" {
		t.Errorf("key = %s", loop.KeyExpr)
	}
	if !loop.Path.IsRoot() {
		t.Error("front-end form must leave the path annotation empty")
	}
}

func TestNodeJSON_Annotations(t *testing.T) {
	n := Text("hi")
	n.Path = paths.Path{0x10, 0x20}
	n.Class = deps.ClassClient
	n.FreeVars = []deps.Dependency{{Name: "count", Origin: deps.OriginClient}}

	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back Node
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.Path.String() != "10.20" {
		t.Errorf("path = %s", back.Path)
	}
	if back.Class != deps.ClassClient {
		t.Errorf("class = %s", back.Class)
	}
	if len(back.FreeVars) != 1 || back.FreeVars[0].Name != "count" {
		t.Errorf("freeVars = %v", back.FreeVars)
	}
}

func TestNodeJSON_UnknownKind(t *testing.T) {
	var n Node
	if err := json.Unmarshal([]byte(`{"kind":"portal"}`), &n); err == nil {
		t.Error("unknown node kind accepted")
	}
	var e Expr
	if err := json.Unmarshal([]byte(`{"kind":"spread"}`), &e); err == nil {
		t.Error("unknown expression kind accepted")
	}
}
