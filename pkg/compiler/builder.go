// Package compiler builds the intermediate representation of one declarative
// UI component: it resolves props and hooks, assigns identity paths to the
// markup tree, classifies every subtree's dependencies, and extracts the
// template forest the code generators and the hot-reload engine consume.
package compiler

import (
	"sync"

	"github.com/minimact/mxc/pkg/assign"
	"github.com/minimact/mxc/pkg/deps"
	"github.com/minimact/mxc/pkg/markup"
	"github.com/minimact/mxc/pkg/paths"
	"github.com/minimact/mxc/pkg/template"
)

// Builder compiles components to IR. The zero value uses the default path
// gap; a Builder is stateless across components and safe to share between
// concurrent compiles (each pass owns its own allocator and tree).
type Builder struct {
	// Gap overrides the path allocator's sibling spacing when non-zero
	Gap uint32
}

// Compile builds the IR for one component. prev, when non-nil, is the path
// assignment of the previous compile and is only read. On failure no
// partial IR is returned.
func (b *Builder) Compile(decl *ComponentDecl, prev *assign.Assignment) (*ComponentIR, error) {
	c := &compilePass{component: decl.Name, origins: make(map[string]deps.Origin), locals: make(map[string][]deps.Dependency)}

	// Props are server-origin: their values arrive from outside the
	// running instance.
	props := make([]Prop, 0, len(decl.Params))
	for _, param := range decl.Params {
		typ := param.Type
		if typ == "" {
			typ = "any"
		}
		props = append(props, Prop{Name: param.Name, Type: typ})
		c.origins[param.Name] = deps.OriginServer
	}

	hooks, locals, root, err := c.scanBody(decl.Body)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, &MissingRenderBodyError{Component: decl.Name}
	}

	assigner := assign.New(paths.NewAllocator(b.Gap))
	asg, changes, err := assigner.Assign(root, prev)
	if err != nil {
		return nil, err
	}

	if _, err := c.annotate(root, nil); err != nil {
		return nil, err
	}

	templates := c.extract(root, nil)

	return &ComponentIR{
		Name:       decl.Name,
		Props:      props,
		Hooks:      hooks,
		Locals:     locals,
		Root:       root,
		Templates:  templates,
		Changes:    changes,
		Assignment: asg,
	}, nil
}

// compilePass is the per-component state of one Compile call
type compilePass struct {
	component string
	origins   map[string]deps.Origin       // identifier -> dependency origin
	locals    map[string][]deps.Dependency // local name -> transitive deps
}

// scanBody resolves hook declarations and local variables in order and
// locates the terminal markup return. Hook calls are recognized by the
// "use" name prefix plus the shape of binding and arguments.
func (c *compilePass) scanBody(body []*Stmt) ([]Hook, []Local, *markup.Node, error) {
	var hooks []Hook
	var locals []Local
	var root *markup.Node

	for _, stmt := range body {
		switch stmt.Kind {
		case StmtVar:
			name, call := hookCall(stmt.Init)
			if call == nil {
				// Plain local: its reads flow into whoever references it.
				if len(stmt.Names) == 1 {
					locals = append(locals, Local{Name: stmt.Names[0], Init: stmt.Init})
					c.locals[stmt.Names[0]] = c.exprDeps(stmt.Init, nil)
				}
				continue
			}
			hook, err := resolveHook(name, call, stmt.Names, c.shapeErr(name, stmt.Line))
			if err != nil {
				return nil, nil, nil, err
			}
			hooks = append(hooks, hook)
			c.bindHook(hook)
		case StmtExpr:
			name, call := hookCall(stmt.Init)
			if call == nil {
				continue
			}
			if name != "useEffect" {
				return nil, nil, nil, c.shapeErr(name, stmt.Line)
			}
			hook, err := resolveHook(name, call, nil, c.shapeErr(name, stmt.Line))
			if err != nil {
				return nil, nil, nil, err
			}
			hooks = append(hooks, hook)
		case StmtReturn:
			if stmt.Markup != nil {
				root = stmt.Markup
			}
		}
	}
	return hooks, locals, root, nil
}

func (c *compilePass) shapeErr(hook string, line int) *UnrecognizedHookShapeError {
	return &UnrecognizedHookShapeError{Component: c.component, Hook: hook, Line: line}
}

// bindHook registers the identifiers a hook declaration brings into scope
func (c *compilePass) bindHook(hook Hook) {
	switch hook.Kind {
	case HookState, HookClientState:
		c.origins[hook.Name] = deps.OriginClient
		c.origins[hook.Setter] = deps.OriginClient
	case HookRef:
		c.origins[hook.Name] = deps.OriginClient
	case HookServerData:
		c.origins[hook.Name] = deps.OriginServer
	}
}

// exprDeps resolves the dependency set of one expression against the scope
func (c *compilePass) exprDeps(e *markup.Expr, bound []string) []deps.Dependency {
	if e == nil {
		return nil
	}
	var out []deps.Dependency
	e.Idents(func(name string) {
		out = c.resolve(out, name, bound)
	})
	return out
}

func (c *compilePass) resolve(acc []deps.Dependency, name string, bound []string) []deps.Dependency {
	for _, b := range bound {
		if b == name {
			return acc
		}
	}
	if origin, ok := c.origins[name]; ok {
		return deps.Merge(acc, []deps.Dependency{{Name: name, Origin: origin}})
	}
	if localDeps, ok := c.locals[name]; ok {
		return deps.Merge(acc, localDeps)
	}
	// Imports, globals and helper functions carry no origin.
	return acc
}

// annotate computes free-variable sets bottom-up and classifies every node
// in the same traversal that assigned paths, so a parent's classification
// always folds in its children's. bound holds loop bindings in scope.
func (c *compilePass) annotate(n *markup.Node, bound []string) ([]deps.Dependency, error) {
	var free []deps.Dependency

	switch n.Kind {
	case markup.KindElement:
		for _, attr := range n.Attrs {
			free = deps.Merge(free, c.exprDeps(attr.Expr, bound))
		}
	case markup.KindExpr:
		free = c.exprDeps(n.Expr, bound)
	case markup.KindCond:
		free = c.exprDeps(n.Expr, bound)
	case markup.KindLoop:
		if !iterableShaped(n.Expr) {
			return nil, &AmbiguousLoopIterableError{
				Component: c.component,
				Path:      n.Path,
				Expr:      n.Expr.String(),
			}
		}
		free = c.exprDeps(n.Expr, bound)
	}

	kidBound := childScope(n, bound)
	if n.Kind == markup.KindLoop {
		free = deps.Merge(free, c.exprDeps(n.KeyExpr, kidBound))
	}

	for _, kid := range n.Children() {
		kidFree, err := c.annotate(kid, kidBound)
		if err != nil {
			return nil, err
		}
		free = deps.Merge(free, kidFree)
	}

	n.FreeVars = free
	n.Class = deps.Classify(free)
	return free, nil
}

// childScope returns the binding set in effect inside n's children: loop
// nodes bring their item and index variables into scope, everything else
// passes bound through unchanged.
func childScope(n *markup.Node, bound []string) []string {
	if n.Kind != markup.KindLoop {
		return bound
	}
	out := append(append([]string(nil), bound...), n.ItemVar)
	if n.IndexVar != "" {
		out = append(out, n.IndexVar)
	}
	return out
}

// extract collects the template forest in path pre-order. Extracted
// expressions are classified against the component scope, not the owning
// node's resolved FreeVars: a condition reading a local must classify as
// whatever that local reads.
func (c *compilePass) extract(n *markup.Node, bound []string) []template.Template {
	out := template.Extract(n, func(e *markup.Expr) deps.Classification {
		return deps.Classify(c.exprDeps(e, bound))
	})
	for _, kid := range n.Children() {
		out = append(out, c.extract(kid, childScope(n, bound))...)
	}
	return out
}

// iterableShaped reports whether an expression can be syntactically
// identified as iterable-producing: a named value, a member of one, a call
// result, or an array literal.
func iterableShaped(e *markup.Expr) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case markup.ExprIdent, markup.ExprMember, markup.ExprCall, markup.ExprArray:
		return true
	default:
		return false
	}
}

// Result is the outcome of one component in a batch compile
type Result struct {
	Name string
	IR   *ComponentIR
	Err  error
}

// CompileBatch compiles components concurrently, one worker per component.
// Each compile is independent: a failed component reports its own error and
// never aborts its siblings. Results keep the input order.
func (b *Builder) CompileBatch(decls []*ComponentDecl, prev map[string]*assign.Assignment) []Result {
	results := make([]Result, len(decls))
	var wg sync.WaitGroup
	for i, decl := range decls {
		wg.Add(1)
		go func(i int, decl *ComponentDecl) {
			defer wg.Done()
			ir, err := b.Compile(decl, prev[decl.Name])
			results[i] = Result{Name: decl.Name, IR: ir, Err: err}
		}(i, decl)
	}
	wg.Wait()
	return results
}
