// Package weft is a retained-mode UI tree core: a reconciling node tree,
// a focus tree for keyboard navigation, and an event dispatcher that turns
// primitive input into bubbling semantic events.
package weft

import (
	"fmt"
	"iter"
	"reflect"
)

// NodeID names one widget instance in the tree. It is stable across ticks
// while the instance persists and is never reused for a different logical
// instance while any reference to it could still be live: the slot index is
// paired with a liveness generation, so a stale handle can always be
// detected.
type NodeID struct {
	idx uint32
	gen uint32
}

// IsZero reports whether the handle is the zero (nil) handle.
func (id NodeID) IsZero() bool {
	return id.gen == 0
}

// String formats the handle for diagnostics.
func (id NodeID) String() string {
	if id.IsZero() {
		return "node(nil)"
	}
	return fmt.Sprintf("node(%d.%d)", id.idx, id.gen)
}

// Arena mints node identities. A slot array plus free list keeps handles
// compact; releasing a slot bumps its generation so outstanding handles to
// the old occupant go stale rather than aliasing the new one.
type Arena struct {
	gens []uint32
	free []uint32
}

// NewArena creates an empty identity arena.
func NewArena() *Arena {
	return &Arena{}
}

// New mints a fresh live identity.
func (a *Arena) New() NodeID {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		return NodeID{idx: idx, gen: a.gens[idx]}
	}
	a.gens = append(a.gens, 1)
	return NodeID{idx: uint32(len(a.gens) - 1), gen: 1}
}

// Alive reports whether the handle still names a live instance.
func (a *Arena) Alive(id NodeID) bool {
	return !id.IsZero() && int(id.idx) < len(a.gens) && a.gens[id.idx] == id.gen
}

// Release invalidates the identity and recycles its slot. Stale or foreign
// handles are ignored.
func (a *Arena) Release(id NodeID) {
	if !a.Alive(id) {
		return
	}
	a.gens[id.idx]++
	a.free = append(a.free, id.idx)
}

// Payload is the content carried by a node: the widget type tag, the
// caller-supplied reconciliation key, layout style, and opaque props.
// Diffing treats two nodes as updated when their payloads differ.
type Payload struct {
	Kind  string
	Key   string
	Style Style
	Props any
}

// Equaler lets prop types define their own equality for diffing.
type Equaler interface {
	Equal(other any) bool
}

func payloadEqual(a, b Payload) bool {
	if a.Kind != b.Kind || a.Key != b.Key || a.Style != b.Style {
		return false
	}
	if e, ok := a.Props.(Equaler); ok {
		return e.Equal(b.Props)
	}
	return reflect.DeepEqual(a.Props, b.Props)
}

// Tree is an ordered forest with at most one root: children keyed by parent
// (order significant), the inverse parent link, and per-node payloads.
// Every child has exactly one parent consistent with the child lists, and
// there are no cycles. Violating those invariants is a programming error
// and fails fast.
type Tree struct {
	children map[NodeID][]NodeID
	parent   map[NodeID]NodeID
	payload  map[NodeID]Payload
	root     NodeID
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{
		children: make(map[NodeID][]NodeID),
		parent:   make(map[NodeID]NodeID),
		payload:  make(map[NodeID]Payload),
	}
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.payload)
}

// Root returns the root node, if any.
func (t *Tree) Root() (NodeID, bool) {
	return t.root, !t.root.IsZero()
}

// Contains reports whether the node is a member of this tree.
func (t *Tree) Contains(n NodeID) bool {
	_, ok := t.payload[n]
	return ok
}

// Payload returns the node's content. The second result is false on a
// lookup miss.
func (t *Tree) Payload(n NodeID) (Payload, bool) {
	p, ok := t.payload[n]
	return p, ok
}

// SetPayload replaces the node's content. Setting a payload on a node that
// is not a member is a no-op.
func (t *Tree) SetPayload(n NodeID, p Payload) {
	if _, ok := t.payload[n]; ok {
		t.payload[n] = p
	}
}

// Add inserts node under parent, appended as the last child. A zero parent
// makes node the root, which is only valid while the tree has none.
func (t *Tree) Add(n NodeID, parent NodeID) {
	if n.IsZero() {
		panic("weft: add of nil node")
	}
	if t.Contains(n) {
		panic(fmt.Sprintf("weft: %v already in tree", n))
	}
	if parent.IsZero() {
		if !t.root.IsZero() {
			panic("weft: tree already has a root")
		}
		t.root = n
		t.payload[n] = Payload{}
		return
	}
	if !t.Contains(parent) {
		panic(fmt.Sprintf("weft: parent %v not in tree", parent))
	}
	t.children[parent] = append(t.children[parent], n)
	t.parent[n] = parent
	t.payload[n] = Payload{}
}

// Remove unlinks node and its entire subtree. The removed identities are
// reported through onRemove (may be nil) so the caller can purge layout,
// focus, and event state in the same pass.
func (t *Tree) Remove(n NodeID, onRemove func(NodeID)) {
	if !t.Contains(n) {
		return
	}
	if p, ok := t.parent[n]; ok {
		t.children[p] = removeID(t.children[p], n)
	}
	if t.root == n {
		t.root = NodeID{}
	}
	t.removeSubtree(n, onRemove)
}

func (t *Tree) removeSubtree(n NodeID, onRemove func(NodeID)) {
	for _, c := range t.children[n] {
		t.removeSubtree(c, onRemove)
	}
	delete(t.children, n)
	delete(t.parent, n)
	delete(t.payload, n)
	if onRemove != nil {
		onRemove(n)
	}
}

// RemoveAndReparent removes node but splices its children into its former
// slot in the parent's child list, preserving order. Calling it on the root
// is a structural violation and panics.
func (t *Tree) RemoveAndReparent(n NodeID, onRemove func(NodeID)) {
	if !t.Contains(n) {
		return
	}
	p, ok := t.parent[n]
	if !ok {
		panic("weft: remove-and-reparent on root")
	}
	kids := t.children[n]
	siblings := t.children[p]
	slot := indexOf(siblings, n)

	spliced := make([]NodeID, 0, len(siblings)-1+len(kids))
	spliced = append(spliced, siblings[:slot]...)
	spliced = append(spliced, kids...)
	spliced = append(spliced, siblings[slot+1:]...)
	t.children[p] = spliced

	for _, c := range kids {
		t.parent[c] = p
	}
	delete(t.children, n)
	delete(t.parent, n)
	delete(t.payload, n)
	if onRemove != nil {
		onRemove(n)
	}
}

// Replace swaps identity in place: new takes over old's parent linkage and
// child linkage so it occupies exactly old's position. Old's payload moves
// with the position.
func (t *Tree) Replace(old, new NodeID) {
	if !t.Contains(old) {
		return
	}
	if t.Contains(new) {
		panic(fmt.Sprintf("weft: replacement %v already in tree", new))
	}
	if p, ok := t.parent[old]; ok {
		siblings := t.children[p]
		siblings[indexOf(siblings, old)] = new
		t.parent[new] = p
		delete(t.parent, old)
	}
	for _, c := range t.children[old] {
		t.parent[c] = new
	}
	if kids, ok := t.children[old]; ok {
		t.children[new] = kids
		delete(t.children, old)
	}
	t.payload[new] = t.payload[old]
	delete(t.payload, old)
	if t.root == old {
		t.root = new
	}
}

// Children returns the ordered child list. The returned slice must not be
// mutated by the caller.
func (t *Tree) Children(n NodeID) []NodeID {
	return t.children[n]
}

// Parent returns the node's parent. The second result is false for the
// root or a non-member.
func (t *Tree) Parent(n NodeID) (NodeID, bool) {
	p, ok := t.parent[n]
	return p, ok
}

// FirstChild returns the first child of n, if any.
func (t *Tree) FirstChild(n NodeID) (NodeID, bool) {
	kids := t.children[n]
	if len(kids) == 0 {
		return NodeID{}, false
	}
	return kids[0], true
}

// LastChild returns the last child of n, if any.
func (t *Tree) LastChild(n NodeID) (NodeID, bool) {
	kids := t.children[n]
	if len(kids) == 0 {
		return NodeID{}, false
	}
	return kids[len(kids)-1], true
}

// NextSibling returns the sibling after n in its parent's child list.
func (t *Tree) NextSibling(n NodeID) (NodeID, bool) {
	p, ok := t.parent[n]
	if !ok {
		return NodeID{}, false
	}
	siblings := t.children[p]
	i := indexOf(siblings, n)
	if i < 0 || i+1 >= len(siblings) {
		return NodeID{}, false
	}
	return siblings[i+1], true
}

// PrevSibling returns the sibling before n in its parent's child list.
func (t *Tree) PrevSibling(n NodeID) (NodeID, bool) {
	p, ok := t.parent[n]
	if !ok {
		return NodeID{}, false
	}
	siblings := t.children[p]
	i := indexOf(siblings, n)
	if i <= 0 {
		return NodeID{}, false
	}
	return siblings[i-1], true
}

// Descend iterates the subtree under start in pre-order, depth first.
// When includeStart is true, start itself is yielded first.
func (t *Tree) Descend(start NodeID, includeStart bool) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if !t.Contains(start) {
			return
		}
		if includeStart && !yield(start) {
			return
		}
		t.descend(start, yield)
	}
}

func (t *Tree) descend(n NodeID, yield func(NodeID) bool) bool {
	for _, c := range t.children[n] {
		if !yield(c) {
			return false
		}
		if !t.descend(c, yield) {
			return false
		}
	}
	return true
}

// Ancestors iterates the single path upward from start's parent to the root.
func (t *Tree) Ancestors(start NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for n, ok := t.parent[start]; ok; n, ok = t.parent[n] {
			if !yield(n) {
				return
			}
		}
	}
}

// Depth returns the number of edges from the root to n, or -1 for a
// non-member.
func (t *Tree) Depth(n NodeID) int {
	if !t.Contains(n) {
		return -1
	}
	d := 0
	for range t.Ancestors(n) {
		d++
	}
	return d
}

func indexOf(list []NodeID, n NodeID) int {
	for i, id := range list {
		if id == n {
			return i
		}
	}
	return -1
}

func removeID(list []NodeID, n NodeID) []NodeID {
	i := indexOf(list, n)
	if i < 0 {
		return list
	}
	return append(list[:i], list[i+1:]...)
}
