package weft

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ChangeKind is a set of classifications for one child slot. Moved combines
// with Updated when a relocated node's content also changed, and with
// Deleted when a node left this parent for another one.
type ChangeKind uint8

const (
	ChangeUnchanged ChangeKind = 1 << iota
	ChangeInserted
	ChangeDeleted
	ChangeUpdated
	ChangeMoved
)

// Has returns true if the change set contains the given kind.
func (k ChangeKind) Has(kind ChangeKind) bool {
	return k&kind != 0
}

// With returns a new change set with the given kind added.
func (k ChangeKind) With(kind ChangeKind) ChangeKind {
	return k | kind
}

func (k ChangeKind) String() string {
	if k == 0 {
		return "none"
	}
	names := []struct {
		kind ChangeKind
		name string
	}{
		{ChangeUnchanged, "unchanged"},
		{ChangeInserted, "inserted"},
		{ChangeDeleted, "deleted"},
		{ChangeUpdated, "updated"},
		{ChangeMoved, "moved"},
	}
	s := ""
	for _, n := range names {
		if !k.Has(n.kind) {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += n.name
	}
	return s
}

// ChildChange classifies one child slot. Deleted entries carry the node's
// original slot on the old side; all other entries carry the slot on the
// new side. Parent is the node's parent on the side the slot refers to,
// except for a Deleted|Moved entry, where it names the parent the node
// relocated to.
type ChildChange struct {
	Slot   int
	Node   NodeID
	Parent NodeID
	Kind   ChangeKind
}

// NestedChanges attaches a recursive per-child diff to the new-side slot it
// was computed for.
type NestedChanges struct {
	Slot    int
	Node    NodeID
	Changes ChildChanges
}

// ChildChanges is the structured diff of one parent's child list, plus
// nested diffs for surviving children when the diff depth allows descent.
type ChildChanges struct {
	Changes []ChildChange
	Nested  []NestedChanges
}

// Empty reports whether the diff contains no effective change.
func (c ChildChanges) Empty() bool {
	for _, ch := range c.Changes {
		if ch.Kind != ChangeUnchanged {
			return false
		}
	}
	for _, n := range c.Nested {
		if !n.Changes.Empty() {
			return false
		}
	}
	return true
}

// ErrIdentityConflict reports that two sibling slots claimed the same node
// identity. Callers must supply unique per-parent keys; the diff resolves
// the conflict best-effort by honoring the first occurrence.
var ErrIdentityConflict = errors.New("duplicate node identity among siblings")

// DiffChildren computes the structured change list that turns self's child
// list at root into other's. It is read-only over both trees. depth bounds
// recursion: 0 compares only the immediate child level, leaving deeper
// subtrees to be reconciled independently at their own re-render boundary.
//
// The returned changes are valid even when an identity conflict is
// reported; the error aggregates diagnostics rather than aborting the diff.
func DiffChildren(self, other *Tree, root NodeID, depth int) (ChildChanges, error) {
	var out ChildChanges
	var errs error

	selfKids := self.Children(root)
	otherKids := other.Children(root)

	errs = multierr.Append(errs, dupConflicts(root, selfKids))
	errs = multierr.Append(errs, dupConflicts(root, otherKids))

	if len(selfKids) == 0 && len(otherKids) == 0 {
		return out, errs
	}

	selfSlot := slotIndex(selfKids)
	otherSlot := slotIndex(otherKids)

	// Old-side nodes absent by identity from the new child list.
	for i, n := range selfKids {
		if _, ok := otherSlot[n]; ok {
			continue
		}
		out.Changes = append(out.Changes, ChildChange{
			Slot:   i,
			Node:   n,
			Parent: root,
			Kind:   ChangeDeleted,
		})
	}

	// New-side slots in order.
	for i, n := range otherKids {
		_, inSelf := selfSlot[n]
		kind := ChangeUnchanged
		switch {
		case !inSelf:
			kind = ChangeInserted
		case !contentEqual(self, other, n):
			kind = ChangeUpdated
		}
		out.Changes = append(out.Changes, ChildChange{
			Slot:   i,
			Node:   n,
			Parent: root,
			Kind:   kind,
		})
	}

	upgradeMoves(self, other, selfKids, otherKids, out.Changes)

	if depth > 0 {
		for _, ch := range out.Changes {
			if ch.Kind.Has(ChangeDeleted) || ch.Kind.Has(ChangeInserted) {
				continue
			}
			nested, err := DiffChildren(self, other, ch.Node, depth-1)
			errs = multierr.Append(errs, err)
			out.Nested = append(out.Nested, NestedChanges{
				Slot:    ch.Slot,
				Node:    ch.Node,
				Changes: nested,
			})
		}
	}

	return out, errs
}

// upgradeMoves is the second diff pass: any node present in both trees whose
// parent changed, or whose position shifted relative to the siblings the two
// lists share, has its classification upgraded to Moved.
func upgradeMoves(self, other *Tree, selfKids, otherKids []NodeID, changes []ChildChange) {
	// Rank shared nodes in both orders; a rank mismatch is a shift.
	otherSet := slotIndex(otherKids)
	selfSet := slotIndex(selfKids)
	rankSelf := make(map[NodeID]int)
	rankOther := make(map[NodeID]int)
	r := 0
	for _, n := range selfKids {
		if _, ok := otherSet[n]; ok {
			rankSelf[n] = r
			r++
		}
	}
	r = 0
	for _, n := range otherKids {
		if _, ok := selfSet[n]; ok {
			rankOther[n] = r
			r++
		}
	}

	for i := range changes {
		ch := &changes[i]
		n := ch.Node
		if !self.Contains(n) || !other.Contains(n) {
			continue
		}
		selfParent, _ := self.Parent(n)
		otherParent, _ := other.Parent(n)
		parentChanged := selfParent != otherParent

		if ch.Kind.Has(ChangeDeleted) {
			// The node left this parent but lives on elsewhere in the new
			// tree: a relocation, not a destruction.
			if parentChanged {
				ch.Kind = ch.Kind.With(ChangeMoved)
				ch.Parent = otherParent
			}
			continue
		}

		shifted := rankSelf[n] != rankOther[n]
		if parentChanged || shifted || ch.Kind.Has(ChangeInserted) {
			ch.Kind = ch.Kind.With(ChangeMoved)
			if !contentEqual(self, other, n) {
				ch.Kind = ch.Kind.With(ChangeUpdated)
			}
			ch.Kind &^= ChangeUnchanged | ChangeInserted
			if ch.Kind == 0 {
				ch.Kind = ChangeMoved
			}
		}
	}
}

func contentEqual(self, other *Tree, n NodeID) bool {
	a, okA := self.Payload(n)
	b, okB := other.Payload(n)
	if !okA || !okB {
		return okA == okB
	}
	return payloadEqual(a, b)
}

func slotIndex(kids []NodeID) map[NodeID]int {
	m := make(map[NodeID]int, len(kids))
	for i, n := range kids {
		if _, ok := m[n]; ok {
			continue // first occurrence wins on duplicate identity
		}
		m[n] = i
	}
	return m
}

func dupConflicts(parent NodeID, kids []NodeID) error {
	if len(kids) < 2 {
		return nil
	}
	seen := make(map[NodeID]int, len(kids))
	var errs error
	for i, n := range kids {
		if first, ok := seen[n]; ok {
			errs = multierr.Append(errs, fmt.Errorf(
				"%w: %v at slots %d and %d under %v",
				ErrIdentityConflict, n, first, i, parent))
			continue
		}
		seen[n] = i
	}
	return errs
}
