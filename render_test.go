package weft

import (
	"strings"
	"testing"
)

type tlabel string

func (l tlabel) Text() string { return string(l) }

func TestSurface(t *testing.T) {
	t.Run("WriteStringClips", func(t *testing.T) {
		s := NewSurface(10, 2)
		n := s.WriteString(0, 0, "hello world", nil, 5)
		if n != 5 {
			t.Errorf("expected 5 cells written, got %d", n)
		}
		if line := strings.Split(s.String(), "\n")[0]; line != "hello     " {
			t.Errorf("got %q", line)
		}
	})

	t.Run("OutOfBoundsDropped", func(t *testing.T) {
		s := NewSurface(3, 3)
		s.Set(-1, 0, Cell{Rune: 'x'})
		s.Set(3, 3, Cell{Rune: 'x'})
		if strings.ContainsRune(s.String(), 'x') {
			t.Error("out of bounds write landed")
		}
	})

	t.Run("AdjacentBordersMerge", func(t *testing.T) {
		s := NewSurface(9, 5)
		s.DrawBorder(0, 0, 5, 5, nil)
		s.DrawBorder(4, 0, 5, 5, nil)

		if got := s.Get(4, 0).Rune; got != boxTeeDown {
			t.Errorf("top junction: expected %q, got %q", boxTeeDown, got)
		}
		if got := s.Get(4, 4).Rune; got != boxTeeUp {
			t.Errorf("bottom junction: expected %q, got %q", boxTeeUp, got)
		}
		if got := s.Get(4, 2).Rune; got != boxVertical {
			t.Errorf("shared edge: expected %q, got %q", boxVertical, got)
		}
	})

	t.Run("TinyBorderSkipped", func(t *testing.T) {
		s := NewSurface(5, 5)
		s.DrawBorder(0, 0, 1, 1, nil)
		if strings.TrimSpace(s.String()) != "" {
			t.Error("degenerate border drew cells")
		}
	})

	t.Run("FrameJoinsRows", func(t *testing.T) {
		s := NewSurface(2, 2)
		s.Set(0, 0, Cell{Rune: 'a'})
		s.Set(1, 1, Cell{Rune: 'b'})
		if got := s.Frame(); got != "a \n b" {
			t.Errorf("frame: got %q", got)
		}
	})

	t.Run("ResizeDiscards", func(t *testing.T) {
		s := NewSurface(2, 2)
		s.Set(0, 0, Cell{Rune: 'a'})
		s.Resize(4, 1)
		if w, h := s.Size(); w != 4 || h != 1 {
			t.Errorf("size after resize: %dx%d", w, h)
		}
		if strings.ContainsRune(s.String(), 'a') {
			t.Error("resize kept stale content")
		}
	})
}

func TestRenderer(t *testing.T) {
	t.Run("BorderAndTextPaint", func(t *testing.T) {
		in := NewInstance(NewRegistry())
		in.Resize(12, 5)
		in.Tick(ChildDesc{
			Kind: "panel", Key: "root",
			Style: Style{Border: true},
			Children: []ChildDesc{
				{Kind: "text", Key: "t", Props: tlabel("hi")},
			},
		}, nil)

		r := NewRenderer(nil)
		r.Frame(in)

		if got := r.surface.Get(0, 0).Rune; got != boxTopLeft {
			t.Errorf("missing border corner, got %q", got)
		}
		if got := r.surface.Get(1, 1).Rune; got != 'h' {
			t.Errorf("text not painted inside border, got %q", got)
		}
	})

	t.Run("HigherZPaintsLast", func(t *testing.T) {
		in := NewInstance(NewRegistry())
		in.Resize(10, 3)
		in.Tick(ChildDesc{
			Kind: "panel", Key: "root",
			Children: []ChildDesc{
				{Kind: "text", Key: "under", Props: tlabel("under"), Style: Style{Width: 10, Height: 3}},
				{Kind: "text", Key: "over", Props: tlabel("over"), Style: Style{Width: 10, Height: 3, ZIndex: 1, Margin: [4]int{-3, 0, 0, 0}}},
			},
		}, nil)

		// Both children overlap at the top row; the z=1 node must win.
		r := NewRenderer(nil)
		r.Frame(in)
		if got := r.surface.Get(0, 0).Rune; got != 'o' {
			t.Errorf("expected overlay text on top, got %q", got)
		}
	})

	t.Run("MultilineTextClips", func(t *testing.T) {
		in := NewInstance(NewRegistry())
		in.Resize(5, 2)
		in.Tick(ChildDesc{
			Kind: "text", Key: "root",
			Props: tlabel("one\ntwo\nthree"),
		}, nil)

		r := NewRenderer(nil)
		r.Frame(in)
		rows := strings.Split(r.surface.String(), "\n")
		if !strings.HasPrefix(rows[0], "one") || !strings.HasPrefix(rows[1], "two") {
			t.Errorf("multiline text misplaced: %q", rows)
		}
	})

	t.Run("DrawerGetsContentRect", func(t *testing.T) {
		in := NewInstance(NewRegistry())
		in.Resize(10, 4)
		var got Rect
		in.Tick(ChildDesc{
			Kind: "custom", Key: "root",
			Style: Style{Border: true, Padding: 1},
			Props: drawProbe{rect: &got},
		}, nil)

		NewRenderer(nil).Frame(in)
		if got.X != 2 || got.Y != 2 {
			t.Errorf("content rect not inset: %+v", got)
		}
	})
}

type drawProbe struct{ rect *Rect }

func (d drawProbe) Draw(_ *Surface, r Rect) { *d.rect = r }
