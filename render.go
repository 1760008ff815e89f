package weft

import (
	"cmp"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Cell is a single character cell on the drawing surface. Style is a
// pointer so runs of cells sharing a style can be flushed together.
type Cell struct {
	Rune  rune
	Style *lipgloss.Style
}

// EmptyCell returns a blank cell with no styling.
func EmptyCell() Cell {
	return Cell{Rune: ' '}
}

// Surface is a 2D grid of cells that a frame is composed onto.
type Surface struct {
	cells  []Cell
	width  int
	height int
}

// NewSurface creates a surface with the given dimensions.
func NewSurface(width, height int) *Surface {
	s := &Surface{}
	s.Resize(width, height)
	return s
}

// Size returns the surface dimensions.
func (s *Surface) Size() (width, height int) {
	return s.width, s.height
}

// InBounds returns true if the given coordinates are within the surface.
func (s *Surface) InBounds(x, y int) bool {
	return x >= 0 && x < s.width && y >= 0 && y < s.height
}

func (s *Surface) index(x, y int) int {
	return y*s.width + x
}

// Get returns the cell at the given coordinates, or an empty cell if
// out of bounds.
func (s *Surface) Get(x, y int) Cell {
	if !s.InBounds(x, y) {
		return EmptyCell()
	}
	return s.cells[s.index(x, y)]
}

// Set writes the cell at the given coordinates. Out of bounds writes are
// dropped. Box-drawing runes are merged with any box-drawing rune already
// in the cell, so adjacent borders share junctions.
func (s *Surface) Set(x, y int, c Cell) {
	if !s.InBounds(x, y) {
		return
	}
	idx := s.index(x, y)
	if merged, ok := mergeBorders(s.cells[idx].Rune, c.Rune); ok {
		c.Rune = merged
	}
	s.cells[idx] = c
}

// Clear resets every cell to empty.
func (s *Surface) Clear() {
	empty := EmptyCell()
	for i := range s.cells {
		s.cells[i] = empty
	}
}

// FillRect fills a rectangular region with the given cell.
func (s *Surface) FillRect(x, y, width, height int, c Cell) {
	for dy := 0; dy < height; dy++ {
		for dx := 0; dx < width; dx++ {
			s.Set(x+dx, y+dy, c)
		}
	}
}

// WriteString writes a string at the given coordinates, stopping at
// maxWidth cells. Returns the number of cells written.
func (s *Surface) WriteString(x, y int, text string, style *lipgloss.Style, maxWidth int) int {
	written := 0
	for _, r := range text {
		if written >= maxWidth || !s.InBounds(x, y) {
			break
		}
		s.Set(x, y, Cell{Rune: r, Style: style})
		x++
		written++
	}
	return written
}

// DrawBorder draws a single-line border around the given rectangle.
func (s *Surface) DrawBorder(x, y, width, height int, style *lipgloss.Style) {
	if width < 2 || height < 2 {
		return
	}

	s.Set(x, y, Cell{Rune: boxTopLeft, Style: style})
	s.Set(x+width-1, y, Cell{Rune: boxTopRight, Style: style})
	s.Set(x, y+height-1, Cell{Rune: boxBottomLeft, Style: style})
	s.Set(x+width-1, y+height-1, Cell{Rune: boxBottomRight, Style: style})

	for i := 1; i < width-1; i++ {
		s.Set(x+i, y, Cell{Rune: boxHorizontal, Style: style})
		s.Set(x+i, y+height-1, Cell{Rune: boxHorizontal, Style: style})
	}
	for i := 1; i < height-1; i++ {
		s.Set(x, y+i, Cell{Rune: boxVertical, Style: style})
		s.Set(x+width-1, y+i, Cell{Rune: boxVertical, Style: style})
	}
}

// Resize resizes the surface, discarding its contents.
func (s *Surface) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	if width == s.width && height == s.height {
		return
	}
	s.cells = make([]Cell, width*height)
	s.width = width
	s.height = height
	s.Clear()
}

// Frame flattens the surface into a terminal-ready string. Consecutive
// cells sharing a style are rendered as one run.
func (s *Surface) Frame() string {
	var sb strings.Builder
	var run []rune
	var runStyle *lipgloss.Style

	flush := func() {
		if len(run) == 0 {
			return
		}
		if runStyle != nil {
			sb.WriteString(runStyle.Render(string(run)))
		} else {
			sb.WriteString(string(run))
		}
		run = run[:0]
	}

	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			c := s.cells[s.index(x, y)]
			if c.Rune == 0 {
				c.Rune = ' '
			}
			if c.Style != runStyle {
				flush()
				runStyle = c.Style
			}
			run = append(run, c.Rune)
		}
		flush()
		if y < s.height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// String returns the surface contents without styling, for tests.
func (s *Surface) String() string {
	var sb strings.Builder
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			c := s.cells[s.index(x, y)]
			if c.Rune == 0 {
				sb.WriteByte(' ')
			} else {
				sb.WriteRune(c.Rune)
			}
		}
		if y < s.height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Box drawing characters.
const (
	boxHorizontal  = '─'
	boxVertical    = '│'
	boxTopLeft     = '┌'
	boxTopRight    = '┐'
	boxBottomLeft  = '└'
	boxBottomRight = '┘'
	boxTeeDown     = '┬'
	boxTeeUp       = '┴'
	boxTeeRight    = '├'
	boxTeeLeft     = '┤'
	boxCross       = '┼'
)

// borderEdges maps box-drawing runes to the edges they connect.
// Bits: 1=top, 2=right, 4=bottom, 8=left.
var borderEdges = map[rune]uint8{
	boxHorizontal:  0b1010,
	boxVertical:    0b0101,
	boxTopLeft:     0b0110,
	boxTopRight:    0b1100,
	boxBottomLeft:  0b0011,
	boxBottomRight: 0b1001,
	boxTeeDown:     0b1110,
	boxTeeUp:       0b1011,
	boxTeeRight:    0b0111,
	boxTeeLeft:     0b1101,
	boxCross:       0b1111,
}

var edgesToBorder = map[uint8]rune{
	0b1010: boxHorizontal,
	0b0101: boxVertical,
	0b0110: boxTopLeft,
	0b1100: boxTopRight,
	0b0011: boxBottomLeft,
	0b1001: boxBottomRight,
	0b1110: boxTeeDown,
	0b1011: boxTeeUp,
	0b0111: boxTeeRight,
	0b1101: boxTeeLeft,
	0b1111: boxCross,
}

// mergeBorders combines two box-drawing runes. Returns the merged rune
// and true only when both runes are box-drawing characters.
func mergeBorders(existing, incoming rune) (rune, bool) {
	a, ok1 := borderEdges[existing]
	b, ok2 := borderEdges[incoming]
	if !ok1 || !ok2 {
		return incoming, false
	}
	if merged, ok := edgesToBorder[a|b]; ok {
		return merged, true
	}
	return incoming, false
}

// Texter is implemented by props that carry displayable text.
type Texter interface {
	Text() string
}

// Drawer is implemented by props that paint their own cells. Draw is
// called with the node's content rectangle after borders and text.
type Drawer interface {
	Draw(s *Surface, r Rect)
}

// Theme maps node kinds to the style their cells are rendered with.
// A nil entry or missing kind renders unstyled.
type Theme map[string]*lipgloss.Style

// Renderer composes an instance's tree into frames using its solved
// geometry. Nodes paint in ascending z order so overlays land on top.
type Renderer struct {
	surface *Surface
	theme   Theme
	focused *lipgloss.Style
}

// NewRenderer creates a renderer with the given theme.
func NewRenderer(theme Theme) *Renderer {
	return &Renderer{
		surface: NewSurface(0, 0),
		theme:   theme,
	}
}

// SetFocusedStyle sets the style used for the focused node's border,
// overriding its theme style.
func (r *Renderer) SetFocusedStyle(s *lipgloss.Style) {
	r.focused = s
}

// Frame renders the instance's current tree and returns the frame text.
func (r *Renderer) Frame(in *Instance) string {
	w, h := in.Size()
	r.surface.Resize(w, h)
	r.surface.Clear()

	tree := in.Tree()
	layout := in.Layout()
	focus := in.Focus()

	type paintable struct {
		node  NodeID
		rect  Rect
		depth int
	}
	root, ok := tree.Root()
	if !ok {
		return r.surface.Frame()
	}
	var nodes []paintable
	for n := range tree.Descend(root, true) {
		rect, ok := layout.Rect(n)
		if !ok {
			continue
		}
		nodes = append(nodes, paintable{node: n, rect: rect, depth: tree.Depth(n)})
	}
	slices.SortStableFunc(nodes, func(a, b paintable) int {
		if c := cmp.Compare(a.rect.Z, b.rect.Z); c != 0 {
			return c
		}
		return cmp.Compare(a.depth, b.depth)
	})

	for _, p := range nodes {
		r.paint(tree, focus, p.node, p.rect)
	}
	return r.surface.Frame()
}

func (r *Renderer) paint(tree *Tree, focus *FocusTree, n NodeID, rect Rect) {
	pay, ok := tree.Payload(n)
	if !ok {
		return
	}
	style := r.theme[pay.Kind]

	x, y, w, h := rect.X, rect.Y, rect.W, rect.H
	if pay.Style.Border {
		borderStyle := style
		if r.focused != nil && focus.Current() == n {
			borderStyle = r.focused
		}
		r.surface.DrawBorder(x, y, w, h, borderStyle)
		x, y, w, h = x+1, y+1, w-2, h-2
	}
	x += pay.Style.Padding
	y += pay.Style.Padding
	w -= pay.Style.Padding * 2
	h -= pay.Style.Padding * 2
	if w <= 0 || h <= 0 {
		return
	}

	if t, ok := pay.Props.(Texter); ok {
		line := 0
		for _, row := range strings.Split(t.Text(), "\n") {
			if line >= h {
				break
			}
			r.surface.WriteString(x, y+line, row, style, w)
			line++
		}
	}
	if d, ok := pay.Props.(Drawer); ok {
		d.Draw(r.surface, Rect{X: x, Y: y, W: w, H: h, Z: rect.Z})
	}
}
