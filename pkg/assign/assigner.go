// Package assign walks a markup tree top-down, gives every node a stable
// identity path, and reconciles the tree against a previous assignment to
// produce a structural change list for hot reload.
package assign

import (
	"errors"

	"github.com/minimact/mxc/pkg/markup"
	"github.com/minimact/mxc/pkg/paths"
)

// Record is one node of a persisted path assignment: the node's structural
// signature, its path, and its children in sibling order. Records are what
// the next compile diffs against; they never reference the markup tree.
type Record struct {
	Sig  string     `json:"sig"`
	Path paths.Path `json:"path"`
	Kids []*Record  `json:"kids,omitempty"`
}

// Assignment is the complete path assignment of one compile pass. It is
// borrowed read-only by the next pass and never mutated.
type Assignment struct {
	Root *Record `json:"root"`
}

// Assigner assigns paths to one component's markup tree. It owns the
// allocator for the duration of a single pass and must not be shared.
type Assigner struct {
	alloc *paths.Allocator
}

// New creates an assigner around alloc, or a default-gap allocator when
// alloc is nil.
func New(alloc *paths.Allocator) *Assigner {
	if alloc == nil {
		alloc = paths.NewAllocator(0)
	}
	return &Assigner{alloc: alloc}
}

// Signature computes a node's structural signature: kind plus the stable
// identifying data used for reconciliation (tag name, text content, the
// condition or loop key expression). Subtree content is deliberately
// excluded so edits inside a node do not break its identity.
func Signature(n *markup.Node) string {
	switch n.Kind {
	case markup.KindElement:
		return "element:" + n.Tag
	case markup.KindText:
		return "text:" + n.Text
	case markup.KindExpr:
		return "expr:" + n.Expr.String()
	case markup.KindCond:
		return "cond:" + n.Expr.String()
	case markup.KindLoop:
		if n.KeyExpr != nil {
			return "loop:" + n.KeyExpr.String()
		}
		return "loop:" + n.Expr.String()
	default:
		return "fragment"
	}
}

// Assign walks tree pre-order, sets every node's Path, and returns the new
// assignment plus the structural changes relative to prev. With a nil prev
// every node is reported inserted. The input tree is annotated in place;
// prev is never touched.
func (a *Assigner) Assign(tree *markup.Node, prev *Assignment) (*Assignment, []Change, error) {
	p := &pass{
		alloc:    a.alloc,
		consumed: make(map[*Record]bool),
		index:    make(map[string][]*Record),
	}
	var oldRoots []*Record
	if prev != nil && prev.Root != nil {
		oldRoots = []*Record{prev.Root}
		indexRecords(p.index, prev.Root)
	}
	recs, err := p.assignChildren(nil, []*markup.Node{tree}, oldRoots)
	if err != nil {
		return nil, nil, err
	}
	next := &Assignment{}
	if len(recs) > 0 {
		next.Root = recs[0]
	}
	return next, p.changes, nil
}

// pass holds the mutable state of one Assign call
type pass struct {
	alloc    *paths.Allocator
	changes  []Change
	consumed map[*Record]bool
	index    map[string][]*Record // signature -> old records, pre-order
}

func indexRecords(index map[string][]*Record, rec *Record) {
	index[rec.Sig] = append(index[rec.Sig], rec)
	for _, kid := range rec.Kids {
		indexRecords(index, kid)
	}
}

// pairing binds a new sibling to the old record it was matched with, nil
// for a genuinely new node
type pairing struct {
	node *markup.Node
	old  *Record
}

// assignChildren reconciles the new children of one parent against the old
// children, assigns their paths, emits their changes (deletions last), and
// recurses. Matching is first-unmatched-previous to first-unmatched-new in
// sibling order, so an unchanged tree reconciles without any allocation.
func (p *pass) assignChildren(parentPath paths.Path, newKids []*markup.Node, oldKids []*Record) ([]*Record, error) {
	if len(newKids) == 0 && len(oldKids) == 0 {
		return nil, nil
	}

	// Phase 1: pair new children with old records. In-parent matches win;
	// otherwise the global index is consulted so a subtree dragged to a
	// different parent is reported as moved, not delete+insert.
	pairs := make([]pairing, len(newKids))
	for i, kid := range newKids {
		sig := Signature(kid)
		var old *Record
		for _, cand := range oldKids {
			if !p.consumed[cand] && cand.Sig == sig {
				old = cand
				break
			}
		}
		if old == nil {
			for _, cand := range p.index[sig] {
				if !p.consumed[cand] {
					old = cand
					break
				}
			}
		}
		if old != nil {
			p.consumed[old] = true
		}
		pairs[i] = pairing{node: kid, old: old}
	}

	// Pin the counter past every old in-parent sibling before allocating,
	// so a replacement insert never reissues the path of a node this parent
	// is about to delete.
	for _, old := range oldKids {
		if samePrefix(old.Path, parentPath) {
			p.alloc.Observe(parentPath, old.Path.Last())
		}
	}

	// Phase 2: assign sibling paths and build this parent's change entries.
	entries, err := p.placeSiblings(parentPath, pairs)
	if err != nil {
		var gapErr *paths.InsufficientGapError
		if !errors.As(err, &gapErr) {
			return nil, err
		}
		// Adjacent paths left no room: renumber the whole sibling run
		// through a reset allocator. Surviving nodes are reported moved;
		// their old paths stay valid in the previous assignment only.
		entries, err = p.renumberSiblings(parentPath, pairs)
		if err != nil {
			return nil, err
		}
	}

	// Emit and recurse in pre-order, then deletions last.
	recs := make([]*Record, len(pairs))
	for i, pair := range pairs {
		pair.node.Path = entries[i].path
		p.changes = append(p.changes, entries[i].change)
		var oldGrandKids []*Record
		if pair.old != nil {
			oldGrandKids = pair.old.Kids
		}
		kidRecs, err := p.assignChildren(entries[i].path, pair.node.Children(), oldGrandKids)
		if err != nil {
			return nil, err
		}
		recs[i] = &Record{Sig: Signature(pair.node), Path: entries[i].path, Kids: kidRecs}
	}
	for _, old := range oldKids {
		p.deleteTree(old)
	}
	return recs, nil
}

type placement struct {
	path   paths.Path
	change Change
}

// placeSiblings decides the path of every new sibling. Matched records keep
// their old path when the parent prefix is unchanged and the sibling order
// still holds; anything else gets a fresh path between its neighbors.
func (p *pass) placeSiblings(parentPath paths.Path, pairs []pairing) ([]placement, error) {
	out := make([]placement, len(pairs))
	var lastSeg uint32
	for i, pair := range pairs {
		if pair.old != nil && samePrefix(pair.old.Path, parentPath) && pair.old.Path.Last() > lastSeg {
			out[i] = placement{path: pair.old.Path, change: Reused(pair.old.Path)}
			lastSeg = pair.old.Path.Last()
			p.alloc.Observe(parentPath, lastSeg)
			continue
		}
		path, err := p.allocateBetween(parentPath, lastSeg, nextReusableSeg(parentPath, pairs[i+1:], lastSeg))
		if err != nil {
			return nil, err
		}
		if pair.old != nil {
			out[i] = placement{path: path, change: Moved(pair.old.Path, path)}
		} else {
			out[i] = placement{path: path, change: Inserted(path)}
		}
		lastSeg = path.Last()
	}
	return out, nil
}

// nextReusableSeg finds the segment of the closest later sibling that could
// still reuse its old path, so fresh paths land strictly before it.
func nextReusableSeg(parentPath paths.Path, rest []pairing, after uint32) uint32 {
	for _, pair := range rest {
		if pair.old != nil && samePrefix(pair.old.Path, parentPath) && pair.old.Path.Last() > after {
			return pair.old.Path.Last()
		}
	}
	return 0
}

// allocateBetween issues a fresh sibling path after loSeg and, when a later
// sibling is pinned at hiSeg, strictly before it.
func (p *pass) allocateBetween(parentPath paths.Path, loSeg, hiSeg uint32) (paths.Path, error) {
	if hiSeg == 0 {
		return p.alloc.Next(parentPath)
	}
	return p.alloc.Midpoint(parentPath.Child(loSeg), parentPath.Child(hiSeg))
}

// renumberSiblings is the InsufficientGap fallback: every sibling gets a
// fresh gapped path in order. A survivor that happens to land on its old
// path is still a reuse; everything else previously pathed is a move.
func (p *pass) renumberSiblings(parentPath paths.Path, pairs []pairing) ([]placement, error) {
	p.alloc.Reset(parentPath)
	out := make([]placement, len(pairs))
	for i, pair := range pairs {
		path, err := p.alloc.Next(parentPath)
		if err != nil {
			return nil, err
		}
		switch {
		case pair.old == nil:
			out[i] = placement{path: path, change: Inserted(path)}
		case pair.old.Path.Equal(path):
			out[i] = placement{path: path, change: Reused(path)}
		default:
			out[i] = placement{path: path, change: Moved(pair.old.Path, path)}
		}
	}
	return out, nil
}

// deleteTree reports rec and its unconsumed descendants as deleted,
// pre-order. Descendants claimed by a cross-parent move are skipped.
func (p *pass) deleteTree(rec *Record) {
	if p.consumed[rec] {
		// Still descend: a moved node's former children may not have
		// moved with it.
		for _, kid := range rec.Kids {
			p.deleteTree(kid)
		}
		return
	}
	p.consumed[rec] = true
	p.changes = append(p.changes, Deleted(rec.Path))
	for _, kid := range rec.Kids {
		p.deleteTree(kid)
	}
}

func samePrefix(oldPath, parentPath paths.Path) bool {
	if len(oldPath) != len(parentPath)+1 {
		return false
	}
	for i := range parentPath {
		if oldPath[i] != parentPath[i] {
			return false
		}
	}
	return true
}
