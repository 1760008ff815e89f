package weft

// Default flex solver. Three phases, the same shape the rest of the package
// assumes of any Solver:
//
//	measure (bottom-up): compute minimum sizes from content and constraints
//	distribute (top-down): hand leftover main-axis space to growing children
//	position (top-down): assign absolute rectangles
//
// Grid positions are exposed through Constraints but not interpreted here;
// plug in a grid-aware Solver for that.

// Measurer lets leaf props report their natural content size to the solver.
type Measurer interface {
	Measure() (w, h int)
}

// FlexSolver is a Solver laying out children along each node's Direction
// with grow factors, margins, padding, gaps, and min/max clamping.
type FlexSolver struct{}

type flexSize struct {
	w, h int
}

// Solve implements Solver.
func (FlexSolver) Solve(t *Tree, root NodeID, width, height int) map[NodeID]Rect {
	sizes := make(map[NodeID]flexSize, t.Len())
	measureFlex(t, root, sizes)
	out := make(map[NodeID]Rect, t.Len())
	placeFlex(t, root, 0, 0, width, height, 0, sizes, out)
	return out
}

// measureFlex computes minimum sizes bottom-up.
func measureFlex(t *Tree, n NodeID, sizes map[NodeID]flexSize) flexSize {
	c := t.Constraints(n)
	kids := t.Children(n)

	var w, h int
	if len(kids) == 0 {
		if p, ok := t.Payload(n); ok {
			if m, ok := p.Props.(Measurer); ok {
				w, h = m.Measure()
			}
		}
	} else {
		for i, k := range kids {
			ks := measureFlex(t, k, sizes)
			km := t.Constraints(k).Margin
			kw := ks.w + km[1] + km[3]
			kh := ks.h + km[0] + km[2]
			if c.Direction == Row {
				w += kw
				if i > 0 {
					w += c.Gap
				}
				h = max(h, kh)
			} else {
				h += kh
				if i > 0 {
					h += c.Gap
				}
				w = max(w, kw)
			}
		}
		w += innerExtra(c)
		h += innerExtra(c)
	}

	if c.Width > 0 {
		w = c.Width
	}
	if c.Height > 0 {
		h = c.Height
	}
	w = clampSize(w, c.MinWidth, c.MaxWidth)
	h = clampSize(h, c.MinHeight, c.MaxHeight)

	s := flexSize{w, h}
	sizes[n] = s
	return s
}

// placeFlex assigns absolute rectangles top-down. z accumulates down the
// tree so a child always stacks relative to its parent.
func placeFlex(t *Tree, n NodeID, x, y, w, h, z int, sizes map[NodeID]flexSize, out map[NodeID]Rect) {
	c := t.Constraints(n)
	z += c.ZIndex
	out[n] = Rect{X: x, Y: y, W: w, H: h, Z: z}

	kids := t.Children(n)
	if len(kids) == 0 {
		return
	}

	extra := innerExtra(c)
	innerX, innerY := x+extra/2, y+extra/2
	innerW, innerH := max(w-extra, 0), max(h-extra, 0)

	// Distribute leftover main-axis space to growing children.
	main := innerH
	if c.Direction == Row {
		main = innerW
	}
	fixed := c.Gap * (len(kids) - 1)
	var totalGrow float64
	for _, k := range kids {
		kc := t.Constraints(k)
		ks := sizes[k]
		if c.Direction == Row {
			fixed += ks.w + kc.Margin[1] + kc.Margin[3]
		} else {
			fixed += ks.h + kc.Margin[0] + kc.Margin[2]
		}
		totalGrow += kc.Grow
	}
	remaining := main - fixed
	if remaining < 0 || totalGrow == 0 {
		remaining = 0
	}

	cursor := 0
	for _, k := range kids {
		kc := t.Constraints(k)
		ks := sizes[k]
		kw, kh := ks.w, ks.h

		grown := 0
		if remaining > 0 && kc.Grow > 0 {
			grown = int(float64(remaining) * (kc.Grow / totalGrow))
		}

		if c.Direction == Row {
			kw = clampSize(kw+grown, kc.MinWidth, kc.MaxWidth)
			if kc.Height == 0 {
				kh = max(kh, innerH-kc.Margin[0]-kc.Margin[2])
			}
			kh = clampSize(kh, kc.MinHeight, kc.MaxHeight)
			kx := innerX + cursor + kc.Margin[3]
			ky := innerY + kc.Margin[0]
			placeFlex(t, k, kx, ky, kw, kh, z, sizes, out)
			cursor += kw + kc.Margin[1] + kc.Margin[3] + c.Gap
		} else {
			kh = clampSize(kh+grown, kc.MinHeight, kc.MaxHeight)
			if kc.Width == 0 {
				kw = max(kw, innerW-kc.Margin[1]-kc.Margin[3])
			}
			kw = clampSize(kw, kc.MinWidth, kc.MaxWidth)
			kx := innerX + kc.Margin[3]
			ky := innerY + cursor + kc.Margin[0]
			placeFlex(t, k, kx, ky, kw, kh, z, sizes, out)
			cursor += kh + kc.Margin[0] + kc.Margin[2] + c.Gap
		}
	}
}

// innerExtra is the total inset a node's border and padding take from each
// axis.
func innerExtra(c Constraints) int {
	extra := c.Padding * 2
	if c.Border {
		extra += 2
	}
	return extra
}

func clampSize(v, lo, hi int) int {
	if lo > 0 && v < lo {
		v = lo
	}
	if hi > 0 && v > hi {
		v = hi
	}
	return v
}
