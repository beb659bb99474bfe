package interpreter

import (
	"github.com/trustfall-go/trustfall/ir"
	"github.com/trustfall-go/trustfall/value"
)

// Value is the interpreter's runtime value type (spec.md §3's tagged union); re-exported here
// so callers working with Context rarely need a second import for the common case.
type Value = value.Value

// Vertex is an adapter-opaque value representing one node in the data source's graph (spec.md
// GLOSSARY). The engine never inspects it; it is erased behind interface{} exactly as the
// teacher erases resolved field values before value-completion (graphql/executor/execute.go).
type Vertex = interface{}

// optVertex is Option<OpaqueVertex>: IsNone distinguishes "bound to nothing" (an unmatched
// @optional) from "bound to a real vertex", since a nil Vertex is not necessarily meaningful on
// its own (some adapters may legitimately hand back a nil interface wrapping a typed nil).
type optVertex struct {
	vertex Vertex
	isNone bool
}

// vertexNode is one link in the persistent, singly-linked binding chain backing
// Context.vertices. Extending a Context with a new vid binding conses a new node onto the
// existing chain in O(1) rather than copying a map, per the structural-sharing guidance in
// spec.md §9 ("naive deep copy is O(depth) per row and regresses streaming memory").
type vertexNode struct {
	vid    ir.Vid
	val    optVertex
	parent *vertexNode
}

// foldKey identifies one fold's recorded aggregate output.
type foldKey struct {
	eid  ir.Eid
	name string
}

// propKey identifies one already-resolved property, used by the CacheFirstResolution caching
// policy (spec.md §9's open question) to avoid a second adapter call for the same field.
type propKey struct {
	vid   ir.Vid
	field string
}

// Context is the central per-row runtime entity described in spec.md §3. It is immutable once
// constructed: every With* method returns a new Context that shares structure with its parent
// rather than mutating it, so that a Context handed to one pipeline stage can still be safely
// read by another branch that forked from the same ancestor (e.g. a fold's inner contexts and
// the outer context it attaches its aggregate results to).
type Context struct {
	active     optVertex
	hasActive  bool
	vertices   *vertexNode
	propCache  map[propKey]Value
	foldedCtxs map[ir.Eid][]*Context
	foldedVals map[foldKey]Value
	piggyback  interface{}
}

// NewRootContext returns the single empty context fed to the top-level component (spec.md
// §4.2's seed step): no active vertex, no bindings, no scratch state.
func NewRootContext() *Context {
	return &Context{}
}

// WithVertex returns a child context with vid bound to vertex and the active vertex set to it,
// per the seeding/expansion rules in spec.md §4.2.
func (c *Context) WithVertex(vid ir.Vid, vertex Vertex) *Context {
	child := c.shallowCopy()
	child.active = optVertex{vertex: vertex, isNone: false}
	child.hasActive = true
	child.vertices = &vertexNode{vid: vid, val: child.active, parent: c.vertices}
	return child
}

// WithNone returns a child context recording that vid was reached via an unmatched @optional
// edge: vertices[vid] = None and active_vertex = None (spec.md §3, §4.2).
func (c *Context) WithNone(vid ir.Vid) *Context {
	child := c.shallowCopy()
	child.active = optVertex{isNone: true}
	child.hasActive = true
	child.vertices = &vertexNode{vid: vid, val: child.active, parent: c.vertices}
	return child
}

// shallowCopy copies the scalar/map-header fields of c; the caller is responsible for
// overwriting whichever fields it intends to extend.
func (c *Context) shallowCopy() *Context {
	return &Context{
		active:     c.active,
		hasActive:  c.hasActive,
		vertices:   c.vertices,
		propCache:  c.propCache,
		foldedCtxs: c.foldedCtxs,
		foldedVals: c.foldedVals,
		piggyback:  c.piggyback,
	}
}

// Lookup reports the binding for vid, if any: (vertex, isNone, bound).
func (c *Context) Lookup(vid ir.Vid) (Vertex, bool, bool) {
	for n := c.vertices; n != nil; n = n.parent {
		if n.vid == vid {
			return n.val.vertex, n.val.isNone, true
		}
	}
	return nil, false, false
}

// IsNoneAt reports whether vid is bound and bound to None (an unmatched @optional).
func (c *Context) IsNoneAt(vid ir.Vid) bool {
	_, isNone, bound := c.Lookup(vid)
	return bound && isNone
}

// ActiveVertex returns the context's active vertex. ok is false when the active vertex is
// None (spec.md §3: "active_vertex = None denotes an optional-null context").
func (c *Context) ActiveVertex() (Vertex, bool) {
	if !c.hasActive || c.active.isNone {
		return nil, false
	}
	return c.active.vertex, true
}

// ActiveIsNone reports whether the context's active vertex is currently None.
func (c *Context) ActiveIsNone() bool {
	return c.hasActive && c.active.isNone
}

// WithActiveAt returns a context whose active vertex is overridden to vid's binding, leaving
// every other binding untouched. It is used to resolve properties or run coercion/neighbor
// calls against a remembered vertex other than the one most recently reached — e.g. a %tag
// reference, a fold's aggregate over an inner vertex, or output projection of a ContextField.
// It is not persisted: callers use the returned context only for the duration of one adapter
// call and otherwise keep operating on the original.
func (c *Context) WithActiveAt(vid ir.Vid) *Context {
	vertex, isNone, bound := c.Lookup(vid)
	child := c.shallowCopy()
	if !bound {
		child.active = optVertex{isNone: true}
	} else {
		child.active = optVertex{vertex: vertex, isNone: isNone}
	}
	child.hasActive = true
	return child
}

// cachedProperty returns a previously resolved value for (vid, field), if CacheFirstResolution
// has recorded one on this context already.
func (c *Context) cachedProperty(vid ir.Vid, field string) (Value, bool) {
	if c.propCache == nil {
		return Value{}, false
	}
	v, ok := c.propCache[propKey{vid: vid, field: field}]
	return v, ok
}

// withCachedProperty returns a child context recording v as the resolved value for (vid, field),
// used by resolveContextFieldValue under CacheFirstResolution.
func (c *Context) withCachedProperty(vid ir.Vid, field string, v Value) *Context {
	child := c.shallowCopy()
	cache := make(map[propKey]Value, len(c.propCache)+1)
	for k, vv := range c.propCache {
		cache[k] = vv
	}
	cache[propKey{vid: vid, field: field}] = v
	child.propCache = cache
	return child
}

// WithFoldResult attaches a completed fold's inner contexts and computed aggregate outputs to
// the context (spec.md §4.3).
func (c *Context) WithFoldResult(eid ir.Eid, inner []*Context, outputs map[string]Value) *Context {
	child := c.shallowCopy()

	foldedCtxs := make(map[ir.Eid][]*Context, len(c.foldedCtxs)+1)
	for k, v := range c.foldedCtxs {
		foldedCtxs[k] = v
	}
	foldedCtxs[eid] = inner
	child.foldedCtxs = foldedCtxs

	foldedVals := make(map[foldKey]Value, len(c.foldedVals)+len(outputs))
	for k, v := range c.foldedVals {
		foldedVals[k] = v
	}
	for name, v := range outputs {
		foldedVals[foldKey{eid: eid, name: name}] = v
	}
	child.foldedVals = foldedVals

	return child
}

// FoldedContexts returns the inner contexts collected for fold eid, or nil if it was never
// executed for this context (should not happen for a fold that covers this context's branch).
func (c *Context) FoldedContexts(eid ir.Eid) []*Context {
	return c.foldedCtxs[eid]
}

// FoldedValue returns a fold's computed aggregate output by name.
func (c *Context) FoldedValue(eid ir.Eid, name string) (Value, bool) {
	v, ok := c.foldedVals[foldKey{eid: eid, name: name}]
	return v, ok
}

// Piggyback returns implementation-defined row hints attached by the caller (spec.md §3); the
// interpreter itself never reads or writes it.
func (c *Context) Piggyback() interface{} { return c.piggyback }

// WithPiggyback returns a context carrying the given hint value.
func (c *Context) WithPiggyback(v interface{}) *Context {
	child := c.shallowCopy()
	child.piggyback = v
	return child
}
