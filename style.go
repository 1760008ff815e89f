package weft

// Direction selects the main axis a container lays its children along.
type Direction uint8

const (
	Column Direction = iota // children stacked vertically (default)
	Row                     // children placed left to right
)

// PointerEvents gates how a node participates in hit testing.
type PointerEvents uint8

const (
	// PointerAll registers hits for the node and descends into children.
	PointerAll PointerEvents = iota
	// PointerSelfOnly registers hits for the node but blocks descent.
	PointerSelfOnly
	// PointerNone registers nothing and blocks descent.
	PointerNone
	// PointerChildrenOnly registers nothing for the node itself but still
	// descends.
	PointerChildrenOnly
)

// Style is a node's layout and input record. Rendering style is deliberately
// not here; renderers resolve visuals from the widget kind. All fields are
// comparable so payload diffing can use plain equality.
type Style struct {
	// Explicit dimensions in cells. Zero means size to content.
	Width, Height int

	// Bounds applied after measuring. Zero means unconstrained.
	MinWidth, MinHeight int
	MaxWidth, MaxHeight int

	// Margin is outside spacing as top, right, bottom, left.
	Margin [4]int

	// Padding is uniform inner spacing.
	Padding int

	// Gap is spacing between children along the main axis.
	Gap int

	// Direction is the main axis for this node's children.
	Direction Direction

	// Grid position, used by grid-aware solvers. Zero means auto placement.
	GridRow, GridCol int

	// Grow is the share of leftover main-axis space this node takes.
	Grow float64

	// ZIndex orders overlapping siblings for hit testing and painting.
	ZIndex int

	// Pointer gates hit testing for this node and its subtree.
	Pointer PointerEvents

	// Focusable marks the node for membership in the focus tree.
	Focusable bool

	// Border reserves a one-cell frame around the content when true.
	Border bool
}

// Constraints is the read-only view of a node's style handed to layout
// solvers. The core never solves constraints itself; it only exposes them.
type Constraints struct {
	Width, Height       int
	MinWidth, MinHeight int
	MaxWidth, MaxHeight int
	Margin              [4]int
	Padding             int
	Gap                 int
	Direction           Direction
	GridRow, GridCol    int
	Grow                float64
	ZIndex              int
	Border              bool
}

// Constraints derives the solver view for a node from its style record.
// A lookup miss yields the zero constraints.
func (t *Tree) Constraints(n NodeID) Constraints {
	p, ok := t.payload[n]
	if !ok {
		return Constraints{}
	}
	s := p.Style
	return Constraints{
		Width:     s.Width,
		Height:    s.Height,
		MinWidth:  s.MinWidth,
		MinHeight: s.MinHeight,
		MaxWidth:  s.MaxWidth,
		MaxHeight: s.MaxHeight,
		Margin:    s.Margin,
		Padding:   s.Padding,
		Gap:       s.Gap,
		Direction: s.Direction,
		GridRow:   s.GridRow,
		GridCol:   s.GridCol,
		Grow:      s.Grow,
		ZIndex:    s.ZIndex,
		Border:    s.Border,
	}
}
