package weft

import (
	"errors"
	"testing"
)

func box(key string, kids ...ChildDesc) ChildDesc {
	return ChildDesc{Kind: "box", Key: key, Children: kids}
}

func appRoot(kids ...ChildDesc) ChildDesc {
	return ChildDesc{Kind: "app", Key: "root", Children: kids}
}

func childByKey(in *Instance, parent NodeID, key string) (NodeID, bool) {
	for _, c := range in.Tree().Children(parent) {
		if p, _ := in.Tree().Payload(c); p.Key == key {
			return c, true
		}
	}
	return NodeID{}, false
}

func TestInstance(t *testing.T) {
	t.Run("FirstTickInstallsTree", func(t *testing.T) {
		in := NewInstance(NewRegistry())
		in.Resize(20, 10)

		if _, err := in.Tick(appRoot(box("a"), box("b")), nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if in.Tree().Len() != 3 {
			t.Errorf("expected 3 nodes, got %d", in.Tree().Len())
		}
		root, ok := in.Tree().Root()
		if !ok {
			t.Fatal("no root after tick")
		}
		if _, ok := in.Layout().Rect(root); !ok {
			t.Error("root has no layout rect")
		}
	})

	t.Run("IdentityPersistsAcrossTicks", func(t *testing.T) {
		in := NewInstance(NewRegistry())
		in.Resize(20, 10)
		in.Tick(appRoot(box("a"), box("b")), nil)

		root, _ := in.Tree().Root()
		a1, _ := childByKey(in, root, "a")
		b1, _ := childByKey(in, root, "b")

		// Reorder plus an insertion: identities stay with their keys.
		in.Tick(appRoot(box("b"), box("c"), box("a")), nil)
		a2, _ := childByKey(in, root, "a")
		b2, _ := childByKey(in, root, "b")

		if a2 != a1 || b2 != b1 {
			t.Error("reconciliation minted new identities for keyed nodes")
		}
		kids := in.Tree().Children(root)
		if len(kids) != 3 || kids[0] != b1 {
			t.Errorf("child order not reconciled: %v", kids)
		}
	})

	t.Run("RemovalPurgesEverywhere", func(t *testing.T) {
		in := NewInstance(NewRegistry())
		in.Resize(20, 10)
		in.Tick(appRoot(
			box("a"),
			ChildDesc{Kind: "box", Key: "b", Style: Style{Focusable: true}},
		), nil)

		root, _ := in.Tree().Root()
		b, _ := childByKey(in, root, "b")
		if !in.Focus().Contains(b) {
			t.Fatal("focusable child not in focus tree")
		}

		in.Tick(appRoot(box("a")), nil)
		if in.Tree().Contains(b) {
			t.Error("removed child still in tree")
		}
		if in.Focus().Contains(b) {
			t.Error("removed child still focusable")
		}
		if _, ok := in.Layout().Rect(b); ok {
			t.Error("removed child still has a rect")
		}
		if _, ok := in.states[b]; ok {
			t.Error("removed child still has state")
		}
	})

	t.Run("WidgetRenderProducesChildren", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register("list", Widget{
			Render: func(props, state any, ctx *BuildContext) []ChildDesc {
				items := props.([]string)
				out := make([]ChildDesc, len(items))
				for i, it := range items {
					out[i] = ChildDesc{Kind: "item", Key: it}
				}
				return out
			},
		})
		in := NewInstance(reg)
		in.Resize(20, 10)

		view := ChildDesc{Kind: "list", Key: "root", Props: []string{"x", "y"}}
		if _, err := in.Tick(view, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		root, _ := in.Tree().Root()
		if len(in.Tree().Children(root)) != 2 {
			t.Fatalf("expected 2 rendered children, got %d", len(in.Tree().Children(root)))
		}

		x1, _ := childByKey(in, root, "x")
		view.Props = []string{"y", "x"}
		in.Tick(view, nil)
		x2, _ := childByKey(in, root, "x")
		if x2 != x1 {
			t.Error("rendered child lost its identity on reorder")
		}
	})

	t.Run("ShouldUpdateBoundsReRender", func(t *testing.T) {
		renders := 0
		reg := NewRegistry()
		reg.Register("memo", Widget{
			ShouldUpdate: func(prev, next any, state any) bool {
				return prev != next
			},
			Render: func(props, state any, ctx *BuildContext) []ChildDesc {
				renders++
				return []ChildDesc{{Kind: "item", Key: "k"}}
			},
		})
		in := NewInstance(reg)
		in.Resize(20, 10)

		view := ChildDesc{Kind: "memo", Key: "root", Props: 1}
		in.Tick(view, nil)
		in.Tick(view, nil)
		if renders != 1 {
			t.Errorf("expected 1 render with unchanged props, got %d", renders)
		}

		view.Props = 2
		in.Tick(view, nil)
		if renders != 2 {
			t.Errorf("expected re-render on changed props, got %d", renders)
		}

		// The grafted subtree survives the declined re-render.
		root, _ := in.Tree().Root()
		if _, ok := childByKey(in, root, "k"); !ok {
			t.Error("grafted child missing")
		}
	})

	t.Run("StatePersistsWithIdentity", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register("stateful", Widget{
			Render: func(props, state any, ctx *BuildContext) []ChildDesc {
				n, _ := state.(int)
				ctx.SetState(n + 1)
				return nil
			},
		})
		in := NewInstance(reg)
		in.Resize(20, 10)

		view := ChildDesc{Kind: "stateful", Key: "root"}
		in.Tick(view, nil)
		in.Tick(view, nil)
		in.Tick(view, nil)

		root, _ := in.Tree().Root()
		if got, _ := in.states[root].(int); got != 3 {
			t.Errorf("expected state 3 after three renders, got %d", got)
		}
	})

	t.Run("DuplicateKeysDiagnosedAndSurvived", func(t *testing.T) {
		in := NewInstance(NewRegistry())
		in.Resize(20, 10)

		_, err := in.Tick(appRoot(box("a"), box("a")), nil)
		if !errors.Is(err, ErrIdentityConflict) {
			t.Errorf("expected ErrIdentityConflict, got %v", err)
		}
		root, ok := in.Tree().Root()
		if !ok {
			t.Fatal("conflict aborted the tick")
		}
		if len(in.Tree().Children(root)) != 2 {
			t.Errorf("expected both children installed, got %v", in.Tree().Children(root))
		}
	})

	t.Run("RootIdentityChangeTearsDown", func(t *testing.T) {
		in := NewInstance(NewRegistry())
		in.Resize(20, 10)
		in.Tick(appRoot(box("a")), nil)
		oldRoot, _ := in.Tree().Root()

		in.Tick(ChildDesc{Kind: "other", Key: "root", Children: []ChildDesc{box("a")}}, nil)
		newRoot, _ := in.Tree().Root()
		if newRoot == oldRoot {
			t.Error("root identity survived a kind change")
		}
		if in.Tree().Contains(oldRoot) {
			t.Error("old root still in tree")
		}
	})

	t.Run("EventsFlowThroughTick", func(t *testing.T) {
		in := NewInstance(NewRegistry())
		in.Resize(20, 10)

		view := appRoot(ChildDesc{
			Kind: "box", Key: "btn",
			Style: Style{Width: 5, Height: 5, Focusable: true},
		})
		in.Tick(view, nil)

		root, _ := in.Tree().Root()
		btn, _ := childByKey(in, root, "btn")
		clicks := 0
		in.Dispatcher().Handle(btn, func(ev *Event) {
			if ev.Kind == EventClick {
				clicks++
			}
		})

		events, err := in.Tick(view, []Input{
			MouseMoved{X: 1, Y: 1},
			MouseLeftPress{},
			MouseLeftRelease{},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if clicks != 1 {
			t.Errorf("expected 1 click, got %d", clicks)
		}
		if _, ok := findEvent(events, EventClick); !ok {
			t.Errorf("click missing from tick events: %v", kindsOf(events))
		}
		if in.Focus().Current() != btn {
			t.Errorf("press did not focus the button, focus on %v", in.Focus().Current())
		}
	})
}
