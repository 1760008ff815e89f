package weft

// detach unlinks n from its current parent, keeping its subtree and payload
// intact. Used for relocations during merge.
func (t *Tree) detach(n NodeID) {
	p, ok := t.parent[n]
	if !ok {
		return
	}
	t.children[p] = removeID(t.children[p], n)
	delete(t.parent, n)
}

// adopt copies n's subtree out of src into t: payloads and child order come
// across verbatim, parent links are rebuilt in t. n itself is left
// unparented; the caller links it when installing the new child list.
//
// A descendant that already lives in t is a relocation riding inside the
// adopted subtree. It is unlinked from its old parent here so no later pass
// mistakes it for a leftover, takes its payload from src, and keeps the
// subtree it already has in t.
func (t *Tree) adopt(src *Tree, n NodeID) {
	p, _ := src.Payload(n)
	t.payload[n] = p
	kids := src.Children(n)
	if len(kids) == 0 {
		return
	}
	copied := make([]NodeID, len(kids))
	copy(copied, kids)
	t.children[n] = copied
	for _, c := range copied {
		if t.Contains(c) {
			t.detach(c)
			t.parent[c] = n
			if cp, ok := src.Payload(c); ok {
				t.payload[c] = cp
			}
			continue
		}
		t.parent[c] = n
		t.adopt(src, c)
	}
}

// Merge mutates self in place so its child list at root matches other's,
// applying a change list produced by DiffChildren at the same depth. The
// identity of Unchanged and Updated nodes is preserved, so their internal
// state survives reconciliation. Identities destroyed by Deleted slots are
// reported through onRemove (may be nil) so the caller can purge layout,
// focus, capture, and event-state references in the same pass.
//
// The new child list is built in full before it is installed, so an
// interrupted merge never leaves a half-updated slot array behind. The
// recursion depth must mirror the diff's depth exactly; nested change lists
// beyond depth are ignored.
func Merge(self, other *Tree, root NodeID, changes ChildChanges, depth int, onRemove func(NodeID)) {
	if !self.Contains(root) {
		return // lookup miss: root torn down by an earlier phase
	}

	// Destroy or unlink departing nodes first.
	for _, ch := range changes.Changes {
		if !ch.Kind.Has(ChangeDeleted) {
			continue
		}
		if ch.Kind.Has(ChangeMoved) {
			// Relocated to another parent: unlink here, the adopting level
			// re-links it. Skip if a prior relocation already claimed it.
			if p, ok := self.parent[ch.Node]; ok && p == root {
				self.detach(ch.Node)
			}
			continue
		}
		self.Remove(ch.Node, onRemove)
	}

	// Build the complete replacement child list, slot-aligned to the new
	// side, then compact any slots left empty by best-effort conflict
	// handling.
	otherKids := other.Children(root)
	slots := make([]NodeID, len(otherKids))
	present := make(map[NodeID]bool, len(otherKids))
	for _, ch := range changes.Changes {
		if ch.Kind.Has(ChangeDeleted) || ch.Slot >= len(slots) || present[ch.Node] {
			continue
		}
		n := ch.Node
		switch {
		case ch.Kind.Has(ChangeInserted) && !self.Contains(n):
			self.adopt(other, n)
		case ch.Kind.Has(ChangeInserted) || ch.Kind.Has(ChangeMoved):
			// Identity already lives in self: a relocation, not a creation.
			self.detach(n)
			if ch.Kind.Has(ChangeUpdated) {
				if p, ok := other.Payload(n); ok {
					self.payload[n] = p
				}
			}
		case ch.Kind.Has(ChangeUpdated):
			if p, ok := other.Payload(n); ok {
				self.payload[n] = p
			}
		}
		slots[ch.Slot] = n
		present[n] = true
	}

	newKids := slots[:0]
	for _, n := range slots {
		if !n.IsZero() {
			newKids = append(newKids, n)
		}
	}

	// Anything still hanging off root that the new list does not claim was
	// displaced by conflict resolution; drop it rather than corrupt order.
	for _, old := range append([]NodeID(nil), self.children[root]...) {
		if !present[old] {
			self.Remove(old, onRemove)
		}
	}

	if len(newKids) == 0 {
		delete(self.children, root)
	} else {
		self.children[root] = newKids
	}
	for _, n := range newKids {
		self.parent[n] = root
	}

	if depth > 0 {
		for _, nested := range changes.Nested {
			if !self.Contains(nested.Node) {
				continue
			}
			Merge(self, other, nested.Node, nested.Changes, depth-1, onRemove)
		}
	}
}
