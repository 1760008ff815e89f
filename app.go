package weft

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// ViewFunc produces the root descriptor for the next frame.
type ViewFunc func() ChildDesc

// App drives an Instance as a bubbletea program. Terminal messages are
// translated into input batches, one batch per Update, and every Update
// runs a full tick so the frame always reflects the latest state.
type App struct {
	in       *Instance
	renderer *Renderer
	view     ViewFunc
	log      *zap.Logger
	onEvent  func(Event)
	tickErr  error
}

// NewApp creates an application over the given instance.
func NewApp(in *Instance, renderer *Renderer, view ViewFunc) *App {
	return &App{
		in:       in,
		renderer: renderer,
		view:     view,
		log:      zap.NewNop(),
	}
}

// SetLogger replaces the app's logger.
func (a *App) SetLogger(l *zap.Logger) *App {
	a.log = l
	return a
}

// OnEvent registers a callback invoked for every dispatched event, after
// node handlers have run.
func (a *App) OnEvent(fn func(Event)) *App {
	a.onEvent = fn
	return a
}

// Instance returns the driven instance.
func (a *App) Instance() *Instance {
	return a.in
}

// Err returns the diagnostics from the most recent tick, if any.
func (a *App) Err() error {
	return a.tickErr
}

// Run starts the program and blocks until it exits.
func (a *App) Run() error {
	_, err := tea.NewProgram(a, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	a.tick(nil)
	return nil
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var inputs []Input

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.in.Resize(msg.Width, msg.Height)

	case tea.MouseMsg:
		inputs = a.translateMouse(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		inputs = a.translateKey(msg)
	}

	a.tick(inputs)
	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	return a.renderer.Frame(a.in)
}

func (a *App) tick(inputs []Input) {
	events, err := a.in.Tick(a.view(), inputs)
	a.tickErr = err
	if err != nil {
		a.log.Warn("tick diagnostics", zap.Error(err))
	}
	if a.onEvent != nil {
		for _, ev := range events {
			a.onEvent(ev)
		}
	}
}

func (a *App) translateMouse(msg tea.MouseMsg) []Input {
	switch msg.Action {
	case tea.MouseActionMotion:
		return []Input{MouseMoved{X: msg.X, Y: msg.Y}}

	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			return []Input{
				MouseMoved{X: msg.X, Y: msg.Y},
				MouseLeftPress{},
			}
		case tea.MouseButtonWheelUp:
			return []Input{
				MouseMoved{X: msg.X, Y: msg.Y},
				ScrollInput{DY: -1, Line: true},
			}
		case tea.MouseButtonWheelDown:
			return []Input{
				MouseMoved{X: msg.X, Y: msg.Y},
				ScrollInput{DY: 1, Line: true},
			}
		case tea.MouseButtonWheelLeft:
			return []Input{
				MouseMoved{X: msg.X, Y: msg.Y},
				ScrollInput{DX: -1, Line: true},
			}
		case tea.MouseButtonWheelRight:
			return []Input{
				MouseMoved{X: msg.X, Y: msg.Y},
				ScrollInput{DX: 1, Line: true},
			}
		}

	case tea.MouseActionRelease:
		if msg.Button == tea.MouseButtonLeft || msg.Button == tea.MouseButtonNone {
			return []Input{
				MouseMoved{X: msg.X, Y: msg.Y},
				MouseLeftRelease{},
			}
		}
	}
	return nil
}

// translateKey maps a terminal key message to input events. Terminals
// report presses only, so each key yields a press and release pair.
func (a *App) translateKey(msg tea.KeyMsg) []Input {
	if code, ok := teaKeys[msg.Type]; ok {
		var inputs []Input
		if msg.Alt {
			inputs = append(inputs, KeyInput{Code: KeyAlt, Pressed: true})
		}
		if msg.Type == tea.KeyShiftTab {
			inputs = append(inputs, KeyInput{Code: KeyShift, Pressed: true})
		}
		inputs = append(inputs,
			KeyInput{Code: code, Pressed: true},
			KeyInput{Code: code, Pressed: false},
		)
		if msg.Type == tea.KeyShiftTab {
			inputs = append(inputs, KeyInput{Code: KeyShift, Pressed: false})
		}
		if msg.Alt {
			inputs = append(inputs, KeyInput{Code: KeyAlt, Pressed: false})
		}
		return inputs
	}

	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		var inputs []Input
		if msg.Alt {
			inputs = append(inputs, KeyInput{Code: KeyAlt, Pressed: true})
		}
		for _, r := range msg.Runes {
			inputs = append(inputs, CharInput{Ch: r})
		}
		if msg.Type == tea.KeySpace && len(msg.Runes) == 0 {
			inputs = append(inputs, CharInput{Ch: ' '})
		}
		if msg.Alt {
			inputs = append(inputs, KeyInput{Code: KeyAlt, Pressed: false})
		}
		return inputs
	}
	return nil
}

var teaKeys = map[tea.KeyType]Key{
	tea.KeyTab:       KeyTab,
	tea.KeyShiftTab:  KeyTab,
	tea.KeyEnter:     KeyEnter,
	tea.KeyEscape:    KeyEscape,
	tea.KeyBackspace: KeyBackspace,
	tea.KeyDelete:    KeyDelete,
	tea.KeyUp:        KeyUp,
	tea.KeyDown:      KeyDown,
	tea.KeyLeft:      KeyLeft,
	tea.KeyRight:     KeyRight,
	tea.KeyHome:      KeyHome,
	tea.KeyEnd:       KeyEnd,
	tea.KeyPgUp:      KeyPgUp,
	tea.KeyPgDown:    KeyPgDown,
}
