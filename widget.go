package weft

// Widget is the pair of callbacks registered per widget-type tag. The core
// never dispatches on widget types beyond these two functions: ShouldUpdate
// decides whether a subtree re-renders, Render produces the candidate child
// descriptors that reconciliation converges the canonical tree toward.
type Widget struct {
	// ShouldUpdate reports whether new props warrant re-rendering given the
	// previous props and retained state. Nil means always re-render.
	ShouldUpdate func(prevProps, nextProps any, state any) bool

	// Render produces the widget's children from its props and state. Nil
	// marks a plain container whose children come from its descriptor.
	Render func(props any, state any, ctx *BuildContext) []ChildDesc
}

// Registry maps widget-type tags to their callbacks.
type Registry struct {
	kinds map[string]Widget
}

// NewRegistry creates an empty widget registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Widget)}
}

// Register binds a widget-type tag to its callbacks, replacing any previous
// binding.
func (r *Registry) Register(kind string, w Widget) *Registry {
	r.kinds[kind] = w
	return r
}

// Lookup returns the callbacks for a tag.
func (r *Registry) Lookup(kind string) (Widget, bool) {
	w, ok := r.kinds[kind]
	return w, ok
}

// ChildDesc describes one candidate node: the widget kind, the
// reconciliation key (must be unique among siblings), the style record, the
// props, and any statically declared children. A kind whose Widget has a
// Render callback produces its children from that callback instead.
type ChildDesc struct {
	Kind     string
	Key      string
	Style    Style
	Props    any
	Children []ChildDesc
}

func payloadOf(d ChildDesc) Payload {
	return Payload{Kind: d.Kind, Key: d.Key, Style: d.Style, Props: d.Props}
}

// BuildContext is handed to Render callbacks. It names the identity the
// widget instance renders under and gives access to its retained state.
type BuildContext struct {
	node NodeID
	inst *Instance
}

// Node returns the identity the widget renders under. Stable across ticks
// while the instance persists.
func (c *BuildContext) Node() NodeID {
	return c.node
}

// State returns the widget's retained state, or nil if none was set.
func (c *BuildContext) State() any {
	return c.inst.states[c.node]
}

// SetState replaces the widget's retained state. State survives
// reconciliation as long as the node's identity does.
func (c *BuildContext) SetState(s any) {
	c.inst.states[c.node] = s
}
