package weft

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func testApp() *App {
	in := NewInstance(NewRegistry())
	view := func() ChildDesc {
		return ChildDesc{Kind: "app", Key: "root"}
	}
	return NewApp(in, NewRenderer(nil), view)
}

func TestApp(t *testing.T) {
	t.Run("WindowSizeResizesInstance", func(t *testing.T) {
		a := testApp()
		a.Update(tea.WindowSizeMsg{Width: 40, Height: 12})
		if w, h := a.Instance().Size(); w != 40 || h != 12 {
			t.Errorf("size: got %dx%d", w, h)
		}
	})

	t.Run("CtrlCQuits", func(t *testing.T) {
		a := testApp()
		_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		if cmd == nil {
			t.Error("expected quit command")
		}
	})

	t.Run("KeyYieldsPressReleasePair", func(t *testing.T) {
		a := testApp()
		inputs := a.translateKey(tea.KeyMsg{Type: tea.KeyEnter})
		if len(inputs) != 2 {
			t.Fatalf("expected 2 inputs, got %d", len(inputs))
		}
		down, ok := inputs[0].(KeyInput)
		if !ok || down.Code != KeyEnter || !down.Pressed {
			t.Errorf("first input: %+v", inputs[0])
		}
		up, ok := inputs[1].(KeyInput)
		if !ok || up.Pressed {
			t.Errorf("second input: %+v", inputs[1])
		}
	})

	t.Run("ShiftTabWrapsInShift", func(t *testing.T) {
		a := testApp()
		inputs := a.translateKey(tea.KeyMsg{Type: tea.KeyShiftTab})
		if len(inputs) != 4 {
			t.Fatalf("expected 4 inputs, got %d", len(inputs))
		}
		first, _ := inputs[0].(KeyInput)
		last, _ := inputs[3].(KeyInput)
		if first.Code != KeyShift || !first.Pressed {
			t.Errorf("expected leading shift press, got %+v", first)
		}
		if last.Code != KeyShift || last.Pressed {
			t.Errorf("expected trailing shift release, got %+v", last)
		}
		tab, _ := inputs[1].(KeyInput)
		if tab.Code != KeyTab {
			t.Errorf("expected tab between shifts, got %+v", inputs[1])
		}
	})

	t.Run("RunesBecomeChars", func(t *testing.T) {
		a := testApp()
		inputs := a.translateKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ab")})
		if len(inputs) != 2 {
			t.Fatalf("expected 2 inputs, got %d", len(inputs))
		}
		if ch, ok := inputs[0].(CharInput); !ok || ch.Ch != 'a' {
			t.Errorf("first rune: %+v", inputs[0])
		}
	})

	t.Run("WheelBecomesScroll", func(t *testing.T) {
		a := testApp()
		inputs := a.translateMouse(tea.MouseMsg{
			X: 3, Y: 4,
			Action: tea.MouseActionPress,
			Button: tea.MouseButtonWheelDown,
		})
		if len(inputs) != 2 {
			t.Fatalf("expected move+scroll, got %d inputs", len(inputs))
		}
		if mv, ok := inputs[0].(MouseMoved); !ok || mv.X != 3 || mv.Y != 4 {
			t.Errorf("move: %+v", inputs[0])
		}
		sc, ok := inputs[1].(ScrollInput)
		if !ok || sc.DY != 1 || !sc.Line {
			t.Errorf("scroll: %+v", inputs[1])
		}
	})

	t.Run("PressBecomesMoveAndPress", func(t *testing.T) {
		a := testApp()
		inputs := a.translateMouse(tea.MouseMsg{
			X: 1, Y: 2,
			Action: tea.MouseActionPress,
			Button: tea.MouseButtonLeft,
		})
		if len(inputs) != 2 {
			t.Fatalf("expected 2 inputs, got %d", len(inputs))
		}
		if _, ok := inputs[1].(MouseLeftPress); !ok {
			t.Errorf("expected press, got %+v", inputs[1])
		}
	})

	t.Run("ViewRendersFrame", func(t *testing.T) {
		a := testApp()
		a.Update(tea.WindowSizeMsg{Width: 4, Height: 2})
		frame := a.View()
		if frame == "" {
			t.Error("empty frame after resize")
		}
	})
}
