package compiler

import (
	"fmt"

	"github.com/minimact/mxc/pkg/paths"
)

// MissingRenderBodyError reports a component with no markup-returning
// statement. The component is skipped; batch siblings are unaffected.
type MissingRenderBodyError struct {
	Component string
}

func (e *MissingRenderBodyError) Error() string {
	return fmt.Sprintf("component %s has no markup-returning statement", e.Component)
}

// UnrecognizedHookShapeError reports a call matching the hook naming
// convention whose binding or arguments do not match any known hook shape.
type UnrecognizedHookShapeError struct {
	Component string
	Hook      string
	Line      int
}

func (e *UnrecognizedHookShapeError) Error() string {
	return fmt.Sprintf("component %s: unrecognized hook shape %s (line %d)", e.Component, e.Hook, e.Line)
}

// AmbiguousLoopIterableError reports a loop whose source expression cannot
// be identified as iterable-producing. The path locates the loop so the
// surrounding tree can still be reported for diagnostics.
type AmbiguousLoopIterableError struct {
	Component string
	Path      paths.Path
	Expr      string
}

func (e *AmbiguousLoopIterableError) Error() string {
	return fmt.Sprintf("component %s: expression %q at %s cannot be identified as an iterable", e.Component, e.Expr, e.Path)
}
