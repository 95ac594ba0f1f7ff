package compiler

import (
	"unicode"

	"github.com/minimact/mxc/pkg/markup"
)

// HookKind represents the recognized hook declarations
type HookKind uint8

const (
	// HookState is useState: [value, setter] client state
	HookState HookKind = iota
	// HookClientState is useClientState: client-only [value, setter] state
	HookClientState
	// HookRef is useRef: a client-local mutable reference
	HookRef
	// HookServerData is useServerData: server-supplied data bound to a name
	HookServerData
	// HookEffect is useEffect: an effect with a declared dependency list
	HookEffect
)

// String returns the wire name of the hook kind
func (k HookKind) String() string {
	switch k {
	case HookClientState:
		return "clientState"
	case HookRef:
		return "ref"
	case HookServerData:
		return "serverData"
	case HookEffect:
		return "effect"
	default:
		return "state"
	}
}

// Hook is one resolved hook declaration. Hooks are recorded, never
// evaluated: Initial and Source stay as unexecuted expressions.
type Hook struct {
	Kind HookKind

	// Name is the bound value name; empty for effects
	Name string

	// Setter is the bound setter name for state hooks
	Setter string

	// Initial is the initial-value expression for state and ref hooks
	Initial *markup.Expr

	// Source is the data-producing expression for server data hooks
	Source *markup.Expr

	// Deps is the declared dependency list for effects
	Deps []string
}

// isHookName reports whether a callee matches the hook naming convention:
// a "use" prefix followed by an uppercase letter.
func isHookName(name string) bool {
	if len(name) <= 3 || name[:3] != "use" {
		return false
	}
	return unicode.IsUpper(rune(name[3]))
}

// hookCall unwraps a statement initializer into a hook callee name and its
// call, or "" when the statement is not a hook call at all.
func hookCall(init *markup.Expr) (string, *markup.Expr) {
	if init == nil || init.Kind != markup.ExprCall {
		return "", nil
	}
	callee := init.Target
	if callee == nil || callee.Kind != markup.ExprIdent || !isHookName(callee.Name) {
		return "", nil
	}
	return callee.Name, init
}

// resolveHook checks a recognized hook call against its expected binding
// and argument shape. shapeErr carries the component and line.
func resolveHook(name string, call *markup.Expr, names []string, shapeErr *UnrecognizedHookShapeError) (Hook, error) {
	switch name {
	case "useState", "useClientState":
		if len(names) != 2 {
			return Hook{}, shapeErr
		}
		kind := HookState
		if name == "useClientState" {
			kind = HookClientState
		}
		return Hook{
			Kind:    kind,
			Name:    names[0],
			Setter:  names[1],
			Initial: firstArg(call),
		}, nil
	case "useRef":
		if len(names) != 1 {
			return Hook{}, shapeErr
		}
		return Hook{Kind: HookRef, Name: names[0], Initial: firstArg(call)}, nil
	case "useServerData":
		if len(names) != 1 || len(call.Args) == 0 {
			return Hook{}, shapeErr
		}
		return Hook{Kind: HookServerData, Name: names[0], Source: call.Args[0]}, nil
	case "useEffect":
		// Effects bind nothing; a var binding is a shape violation.
		if len(names) != 0 || len(call.Args) == 0 || call.Args[0].Kind != markup.ExprFunc {
			return Hook{}, shapeErr
		}
		hook := Hook{Kind: HookEffect}
		if len(call.Args) > 1 {
			deps, ok := dependencyList(call.Args[1])
			if !ok {
				return Hook{}, shapeErr
			}
			hook.Deps = deps
		}
		return hook, nil
	default:
		// Matches the naming convention but is not a hook we know.
		return Hook{}, shapeErr
	}
}

// dependencyList decodes an effect's declared dependency array: a literal
// array of bare identifiers.
func dependencyList(e *markup.Expr) ([]string, bool) {
	if e.Kind != markup.ExprArray {
		return nil, false
	}
	deps := make([]string, 0, len(e.Args))
	for _, el := range e.Args {
		if el.Kind != markup.ExprIdent {
			return nil, false
		}
		deps = append(deps, el.Name)
	}
	return deps, true
}

func firstArg(call *markup.Expr) *markup.Expr {
	if len(call.Args) == 0 {
		return markup.Null()
	}
	return call.Args[0]
}
