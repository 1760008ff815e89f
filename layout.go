package weft

// Rect is a node's solved geometry: position, size, and the z-index used
// to order overlapping nodes during hit testing and painting.
type Rect struct {
	X, Y int
	W, H int
	Z    int
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// GeometryFlags records which geometric properties changed in the latest
// layout pass.
type GeometryFlags uint8

const (
	GeomMoved GeometryFlags = 1 << iota // X or Y changed
	GeomResized                         // W or H changed
	GeomRestacked                       // Z changed
	GeomNew                             // first rect ever recorded for the node
)

// Has returns true if the flag set contains the given flag.
func (g GeometryFlags) Has(flag GeometryFlags) bool {
	return g&flag != 0
}

// LayoutCache owns the solved rectangle for every laid-out node. It is
// written by the layout pass and read by hit testing and renderers.
// Entries die with their node.
type LayoutCache struct {
	rects   map[NodeID]Rect
	changed map[NodeID]GeometryFlags
}

// NewLayoutCache creates an empty layout cache.
func NewLayoutCache() *LayoutCache {
	return &LayoutCache{
		rects:   make(map[NodeID]Rect),
		changed: make(map[NodeID]GeometryFlags),
	}
}

// Rect returns the node's solved rectangle. The second result is false on
// a lookup miss, which callers tolerate by skipping the node.
func (c *LayoutCache) Rect(n NodeID) (Rect, bool) {
	r, ok := c.rects[n]
	return r, ok
}

// Set records a node's rectangle and derives its geometry-changed flags
// from the previously cached value.
func (c *LayoutCache) Set(n NodeID, r Rect) {
	prev, ok := c.rects[n]
	var flags GeometryFlags
	if !ok {
		flags = GeomNew | GeomMoved | GeomResized
	} else {
		if prev.X != r.X || prev.Y != r.Y {
			flags |= GeomMoved
		}
		if prev.W != r.W || prev.H != r.H {
			flags |= GeomResized
		}
		if prev.Z != r.Z {
			flags |= GeomRestacked
		}
	}
	c.rects[n] = r
	c.changed[n] = flags
}

// Changed returns the node's geometry-changed flags from the latest pass.
func (c *LayoutCache) Changed(n NodeID) GeometryFlags {
	return c.changed[n]
}

// Drop removes the node's entry. Dropping an absent node is a no-op.
func (c *LayoutCache) Drop(n NodeID) {
	delete(c.rects, n)
	delete(c.changed, n)
}

// Len returns the number of cached rectangles.
func (c *LayoutCache) Len() int {
	return len(c.rects)
}

// Solver turns style constraints into rectangles. The core never solves
// constraints itself: a solver reads each node's Constraints view off the
// tree and returns absolute rects keyed by node. Implementations must
// produce a rect for every node reachable from root.
type Solver interface {
	Solve(t *Tree, root NodeID, width, height int) map[NodeID]Rect
}

// applyLayout runs the solver and folds its result into the cache,
// deriving geometry-changed flags per node.
func applyLayout(s Solver, t *Tree, cache *LayoutCache, width, height int) {
	root, ok := t.Root()
	if !ok {
		return
	}
	for n, r := range s.Solve(t, root, width, height) {
		cache.Set(n, r)
	}
}
