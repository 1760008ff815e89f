package weft

// FocusTree is a secondary tree over the focusable nodes of a main tree,
// plus the node currently holding keyboard focus. Members are NodeIDs of
// the main tree; the focus tree mirrors their ancestry so Tab order follows
// the visual nesting.
type FocusTree struct {
	t       *Tree
	current NodeID
}

// NewFocusTree creates an empty focus tree.
func NewFocusTree() *FocusTree {
	return &FocusTree{t: NewTree()}
}

// Len returns the number of focusable members.
func (f *FocusTree) Len() int {
	return f.t.Len()
}

// Contains reports whether node is a member.
func (f *FocusTree) Contains(n NodeID) bool {
	return f.t.Contains(n)
}

// Root returns the focus tree root, if any.
func (f *FocusTree) Root() (NodeID, bool) {
	return f.t.Root()
}

// Current returns the node holding focus, or a zero handle if nothing is
// focused. The invariant holds that a non-zero current is always a member.
func (f *FocusTree) Current() NodeID {
	return f.current
}

// Focus moves focus to node. Focusing a non-member is ignored.
func (f *FocusTree) Focus(n NodeID) {
	if !f.t.Contains(n) {
		return
	}
	f.current = n
}

// Blur reverts focus to the focus tree root.
func (f *FocusTree) Blur() {
	f.current = f.t.root
}

// Add inserts node into the focus tree, attaching it under its nearest
// focusable ancestor in main. With no focusable ancestor and an empty
// focus tree, node becomes the root and receives initial focus. With no
// focusable ancestor and a non-empty focus tree, node becomes the new root
// and the old root is demoted to its first child, so previously registered
// focusables stay reachable.
func (f *FocusTree) Add(n NodeID, main *Tree) {
	if f.t.Contains(n) {
		return
	}
	for anc := range main.Ancestors(n) {
		if f.t.Contains(anc) {
			f.t.Add(n, anc)
			return
		}
	}
	old, hasRoot := f.t.Root()
	if !hasRoot {
		f.t.Add(n, NodeID{})
		f.current = n
		return
	}
	// Demote the existing root under the new one.
	f.t.root = n
	f.t.payload[n] = Payload{}
	f.t.children[n] = []NodeID{old}
	f.t.parent[old] = n
}

// Remove takes node out of the focus tree. If it held focus it is blurred
// first, reverting focus to the root. The root is removed outright,
// dropping its subtree; an inner node is removed with its children spliced
// into its slot so traversal order is preserved.
func (f *FocusTree) Remove(n NodeID) {
	if !f.t.Contains(n) {
		return
	}
	if f.current == n {
		f.Blur()
	}
	if f.t.root == n {
		f.t.Remove(n, nil)
		f.current = NodeID{}
		return
	}
	f.t.RemoveAndReparent(n, nil)
	if !f.t.Contains(f.current) {
		f.current = f.t.root
	}
}

// Next moves focus to the next node in cyclic pre-order: descend to the
// first child, else advance to the next sibling, else ascend until an
// ancestor has a next sibling, wrapping to the root when the traversal
// falls off the end. Returns the newly focused node.
func (f *FocusTree) Next() NodeID {
	root, ok := f.t.Root()
	if !ok {
		return NodeID{}
	}
	cur := f.current
	if cur.IsZero() || !f.t.Contains(cur) {
		f.current = root
		return root
	}
	if c, ok := f.t.FirstChild(cur); ok {
		f.current = c
		return c
	}
	for n := cur; !n.IsZero(); {
		if sib, ok := f.t.NextSibling(n); ok {
			f.current = sib
			return sib
		}
		p, ok := f.t.Parent(n)
		if !ok {
			break
		}
		n = p
	}
	f.current = root
	return root
}

// Prev is the exact mirror of Next: descend into the deepest last-child
// chain of the previous sibling, else move to the parent, else wrap to the
// deepest last-child chain from the root. Returns the newly focused node.
func (f *FocusTree) Prev() NodeID {
	root, ok := f.t.Root()
	if !ok {
		return NodeID{}
	}
	cur := f.current
	if cur.IsZero() || !f.t.Contains(cur) {
		f.current = root
		return root
	}
	if sib, ok := f.t.PrevSibling(cur); ok {
		n := f.deepestLast(sib)
		f.current = n
		return n
	}
	if p, ok := f.t.Parent(cur); ok {
		f.current = p
		return p
	}
	n := f.deepestLast(root)
	f.current = n
	return n
}

func (f *FocusTree) deepestLast(n NodeID) NodeID {
	for {
		c, ok := f.t.LastChild(n)
		if !ok {
			return n
		}
		n = c
	}
}
