package weft

// Primitive input, consumed in order by the dispatcher each tick.

// Input is a primitive input event from the host.
type Input interface {
	isInput()
}

// MouseMoved reports the pointer position in cell coordinates.
type MouseMoved struct {
	X, Y int
}

// MouseLeftPress reports the left button going down at the current pointer
// position.
type MouseLeftPress struct{}

// MouseLeftRelease reports the left button going up.
type MouseLeftRelease struct{}

// ScrollInput reports wheel movement. Line is true when the deltas are in
// line units rather than cells.
type ScrollInput struct {
	DX, DY int
	Line   bool
}

// KeyInput reports a key transition.
type KeyInput struct {
	Code    Key
	Pressed bool
}

// CharInput reports translated character input.
type CharInput struct {
	Ch rune
}

func (MouseMoved) isInput()       {}
func (MouseLeftPress) isInput()   {}
func (MouseLeftRelease) isInput() {}
func (ScrollInput) isInput()      {}
func (KeyInput) isInput()         {}
func (CharInput) isInput()        {}

// Key identifies a physical key for KeyInput events.
type Key uint16

const (
	KeyNone Key = iota
	KeyTab
	KeyEnter
	KeyEscape
	KeySpace
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDown
	KeyShift
	KeyCtrl
	KeyAlt
	KeyMeta
	keyMax
)

// Modifiers is the dispatcher-local modifier-key state, updated as matching
// key events pass through.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has returns true if the modifier set contains the given modifier.
func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod != 0
}

// EventKind identifies a semantic event payload.
type EventKind uint8

const (
	EventHover EventKind = iota
	EventMouseIn
	EventMouseOut
	EventMouseDown
	EventMouseUp
	EventClick
	EventScroll
	EventFocus
	EventBlur
	EventKeyDown
	EventKeyUp
	EventChar
	eventKindMax
)

var eventKindNames = [...]string{
	EventHover:     "hover",
	EventMouseIn:   "mouse-in",
	EventMouseOut:  "mouse-out",
	EventMouseDown: "mouse-down",
	EventMouseUp:   "mouse-up",
	EventClick:     "click",
	EventScroll:    "scroll",
	EventFocus:     "focus",
	EventBlur:      "blur",
	EventKeyDown:   "key-down",
	EventKeyUp:     "key-up",
	EventChar:      "char",
}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// EventSet is a set of event kinds, used for per-node carry-over state.
type EventSet uint16

// Has returns true if the set contains the kind.
func (s EventSet) Has(k EventKind) bool {
	return s&(1<<k) != 0
}

// With returns the set with the kind added.
func (s EventSet) With(k EventKind) EventSet {
	return s | 1<<k
}

// Without returns the set with the kind removed.
func (s EventSet) Without(k EventKind) EventSet {
	return s &^ (1 << k)
}

// Event is a targeted semantic event. During bubbling Current walks up the
// ancestor chain while Target stays fixed on the hit node.
type Event struct {
	Kind    EventKind
	Target  NodeID
	Current NodeID

	// Pointer payload (Hover, MouseIn/Out/Down/Up, Click, Scroll).
	X, Y int

	// Scroll payload.
	DX, DY int
	Line   bool

	// Key payload (KeyDown, KeyUp, Char).
	Key  Key
	Mods Modifiers
	Ch   rune

	stopped          bool
	defaultPrevented bool
}

// StopPropagation ends the bubbling walk after the current handler returns.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// PreventDefault suppresses the built-in default handling that would run
// after the walk ends (e.g. Tab focus cycling).
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// Propagates reports whether the event completed its bubbling walk without
// a handler stopping it. Batch consumers read it off the recorded events.
func (e *Event) Propagates() bool {
	return !e.stopped
}

// DefaultPrevented reports whether a handler suppressed default handling.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Handler receives semantic events during bubbling.
type Handler func(*Event)
