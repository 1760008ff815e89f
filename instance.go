package weft

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// defaultDiffDepth bounds reconciliation recursion per tick. Subtrees that
// a ShouldUpdate callback declines to re-render are grafted wholesale and
// never reach this limit.
const defaultDiffDepth = 64

// Instance is one independent UI: a canonical tree, its focus tree, layout
// cache, and dispatcher. Instances never share state, so several can run
// side by side without coordination. A tick is strictly sequential:
// reconcile, layout, focus sync, dispatch.
type Instance struct {
	arena  *Arena
	tree   *Tree
	layout *LayoutCache
	focus  *FocusTree
	disp   *Dispatcher
	reg    *Registry
	solver Solver

	states map[NodeID]any

	width, height int
	diffDepth     int
	log           *zap.Logger
}

// Option configures an Instance.
type Option func(*Instance)

// WithSolver replaces the default flex solver.
func WithSolver(s Solver) Option {
	return func(in *Instance) { in.solver = s }
}

// WithLogger routes diagnostics to the given logger.
func WithLogger(l *zap.Logger) Option {
	return func(in *Instance) {
		if l != nil {
			in.log = l
		}
	}
}

// WithDiffDepth overrides the reconciliation recursion bound.
func WithDiffDepth(depth int) Option {
	return func(in *Instance) { in.diffDepth = depth }
}

// NewInstance creates a UI instance over the given widget registry.
func NewInstance(reg *Registry, opts ...Option) *Instance {
	in := &Instance{
		arena:     NewArena(),
		tree:      NewTree(),
		layout:    NewLayoutCache(),
		focus:     NewFocusTree(),
		reg:       reg,
		solver:    FlexSolver{},
		states:    make(map[NodeID]any),
		diffDepth: defaultDiffDepth,
		log:       zap.NewNop(),
	}
	in.disp = NewDispatcher(in.tree, in.layout, in.focus)
	for _, opt := range opts {
		opt(in)
	}
	in.disp.SetLogger(in.log)
	return in
}

// Tree returns the canonical tree. Read-only between ticks.
func (in *Instance) Tree() *Tree { return in.tree }

// Layout returns the layout cache.
func (in *Instance) Layout() *LayoutCache { return in.layout }

// Focus returns the focus tree.
func (in *Instance) Focus() *FocusTree { return in.focus }

// Dispatcher returns the event dispatcher, for handler registration and
// cursor capture.
func (in *Instance) Dispatcher() *Dispatcher { return in.disp }

// Resize sets the viewport handed to the layout solver.
func (in *Instance) Resize(width, height int) {
	in.width, in.height = width, height
}

// Size returns the current viewport.
func (in *Instance) Size() (width, height int) {
	return in.width, in.height
}

// Tick runs one full frame: build the candidate tree from root, reconcile
// the canonical tree toward it, solve layout, sync the focus tree, and
// dispatch the input batch. The returned error aggregates recoverable
// diagnostics (duplicate sibling keys); the tick always completes.
func (in *Instance) Tick(root ChildDesc, inputs []Input) ([]Event, error) {
	var errs error

	cand, candRoot, err := in.buildCandidate(root)
	errs = multierr.Append(errs, err)

	errs = multierr.Append(errs, in.reconcile(cand, candRoot))

	applyLayout(in.solver, in.tree, in.layout, in.width, in.height)

	in.syncFocus()

	events := in.disp.Dispatch(inputs)

	if errs != nil {
		in.log.Warn("tick completed with diagnostics", zap.Error(errs))
	}
	return events, errs
}

// reconcile converges the canonical tree toward the candidate, preserving
// identity for unchanged and updated nodes.
func (in *Instance) reconcile(cand *Tree, candRoot NodeID) error {
	curRoot, hasRoot := in.tree.Root()

	if hasRoot && curRoot != candRoot {
		// Root identity changed: the whole tree is replaced.
		in.tree.Remove(curRoot, in.purge)
		hasRoot = false
	}

	if !hasRoot {
		in.tree.Add(candRoot, NodeID{})
		in.tree.adopt(cand, candRoot)
		return nil
	}

	// Root content changes are applied directly; children go through
	// diff and merge.
	if p, ok := cand.Payload(candRoot); ok && !contentEqual(in.tree, cand, candRoot) {
		in.tree.SetPayload(candRoot, p)
	}
	changes, err := DiffChildren(in.tree, cand, candRoot, in.diffDepth)
	Merge(in.tree, cand, candRoot, changes, in.diffDepth, in.purge)
	return err
}

// purge eagerly drops every reference to a destroyed identity: layout
// entry, focus membership, dispatcher state, widget state, and finally the
// identity itself.
func (in *Instance) purge(n NodeID) {
	in.layout.Drop(n)
	in.focus.Remove(n)
	in.disp.Purge(n)
	delete(in.states, n)
	in.arena.Release(n)
}

// syncFocus rebuilds focus-tree membership from focusable markers. Removal
// of deleted nodes already happened during merge; this pass adds newly
// focusable nodes and drops un-marked ones.
func (in *Instance) syncFocus() {
	root, ok := in.tree.Root()
	if !ok {
		return
	}
	for n := range in.tree.Descend(root, true) {
		p, _ := in.tree.Payload(n)
		switch {
		case p.Style.Focusable && !in.focus.Contains(n):
			in.focus.Add(n, in.tree)
		case !p.Style.Focusable && in.focus.Contains(n):
			in.focus.Remove(n)
		}
	}
}

// buildCandidate expands the root descriptor into a full candidate tree,
// resolving identities against the canonical tree so persisting widget
// instances keep their NodeIDs.
func (in *Instance) buildCandidate(root ChildDesc) (*Tree, NodeID, error) {
	cand := NewTree()

	rootID := NodeID{}
	if cur, ok := in.tree.Root(); ok {
		if p, _ := in.tree.Payload(cur); p.Kind == root.Kind && p.Key == root.Key {
			rootID = cur
		}
	}
	if rootID.IsZero() {
		rootID = in.arena.New()
	}

	cand.Add(rootID, NodeID{})
	cand.SetPayload(rootID, payloadOf(root))
	err := in.buildChildren(cand, rootID, root)
	return cand, rootID, err
}

// buildChildren produces and attaches the candidate children of id, either
// from the widget's Render callback or from the descriptor's static list.
func (in *Instance) buildChildren(cand *Tree, id NodeID, desc ChildDesc) error {
	kids := desc.Children

	if w, ok := in.reg.Lookup(desc.Kind); ok && w.Render != nil {
		prevProps, mounted := in.prevProps(id)
		if mounted && w.ShouldUpdate != nil &&
			!w.ShouldUpdate(prevProps, desc.Props, in.states[id]) {
			// Re-render declined: this is the child widget's re-render
			// boundary, graft the canonical subtree as-is.
			in.graft(cand, id)
			return nil
		}
		kids = w.Render(desc.Props, in.states[id], &BuildContext{node: id, inst: in})
	}

	if len(kids) == 0 {
		return nil
	}

	var errs error
	canonical := in.canonicalIndex(id)
	claimed := make(map[descKeyT]bool, len(kids))

	for _, kd := range kids {
		dk := descKeyT{kd.Kind, kd.Key}
		var kidID NodeID
		if claimed[dk] {
			errs = multierr.Append(errs, duplicateKeyErr(id, kd))
			kidID = in.arena.New() // best effort: mint a fresh identity
		} else {
			claimed[dk] = true
			if match, ok := canonical[dk]; ok {
				kidID = match
			} else {
				kidID = in.arena.New()
			}
		}
		cand.Add(kidID, id)
		cand.SetPayload(kidID, payloadOf(kd))
		errs = multierr.Append(errs, in.buildChildren(cand, kidID, kd))
	}
	return errs
}

type descKeyT struct {
	kind, key string
}

func duplicateKeyErr(parent NodeID, d ChildDesc) error {
	return fmt.Errorf("%w: kind %q key %q under %v", ErrIdentityConflict, d.Kind, d.Key, parent)
}

// canonicalIndex maps (kind, key) to identity for id's canonical children.
func (in *Instance) canonicalIndex(id NodeID) map[descKeyT]NodeID {
	kids := in.tree.Children(id)
	if len(kids) == 0 {
		return nil
	}
	m := make(map[descKeyT]NodeID, len(kids))
	for _, k := range kids {
		p, _ := in.tree.Payload(k)
		dk := descKeyT{p.Kind, p.Key}
		if _, ok := m[dk]; !ok {
			m[dk] = k
		}
	}
	return m
}

// prevProps returns the canonical props for an identity that is already
// mounted.
func (in *Instance) prevProps(id NodeID) (any, bool) {
	p, ok := in.tree.Payload(id)
	if !ok {
		return nil, false
	}
	return p.Props, true
}

// graft copies id's canonical children into the candidate unchanged, so
// diffing sees an identical subtree.
func (in *Instance) graft(cand *Tree, id NodeID) {
	for _, k := range in.tree.Children(id) {
		cand.children[id] = append(cand.children[id], k)
		cand.parent[k] = id
		cand.adopt(in.tree, k)
	}
}
