package interpreter

import (
	gocontext "context"

	"github.com/trustfall-go/trustfall/interpreter/iterator"
	"github.com/trustfall-go/trustfall/value"
)

// ContextAndValue pairs a Context with a resolved property value, the shape returned by
// Adapter.ResolveProperty (spec.md §4.1.2).
type ContextAndValue struct {
	Context *Context
	Value   value.Value
}

// ContextAndNeighbors pairs a Context with a lazy sequence of neighbor vertices, the shape
// returned by Adapter.ResolveNeighbors (spec.md §4.1.3). An empty Neighbors iterator denotes no
// neighbors along the edge for that context.
type ContextAndNeighbors struct {
	Context   *Context
	Neighbors iterator.Iterator[Vertex]
}

// ContextAndBool pairs a Context with a coercion verdict, the shape returned by
// Adapter.ResolveCoercion (spec.md §4.1.4).
type ContextAndBool struct {
	Context *Context
	Matches bool
}

// Adapter is the pluggable collaborator the engine drives to reach user data (spec.md §4.1). It
// exposes exactly four operations; every one of them takes an input iterator of contexts and
// must return an iterator of results that preserves input order, yielding one entry per input
// context before advancing the input (spec.md §4.1's "Ordering guarantee") — this is what makes
// trace output deterministic (spec.md §4.7, §8 property 1).
//
// Implementations are responsible for releasing any resource they acquire per-context when
// their returned iterator is dropped before reaching exhaustion (spec.md §5: "scoped
// acquisition with guaranteed release on all exit paths").
type Adapter interface {
	// ResolveStartingVertices enumerates the roots of the top-level component (spec.md §4.1.1).
	// It is invoked once per query; fold components are seeded through ResolveNeighbors instead.
	ResolveStartingVertices(
		ctx gocontext.Context,
		edgeName string,
		parameters map[string]value.Value,
	) iterator.Iterator[Vertex]

	// ResolveProperty returns, for each input context, the named property of its active
	// vertex coerced to the field's declared type. If a context's active vertex is None, the
	// engine never calls ResolveProperty for it (spec.md §3) — but a correct adapter would
	// still return Null for it if asked directly, per spec.md §4.1.2.
	ResolveProperty(
		ctx gocontext.Context,
		contexts iterator.Iterator[*Context],
		typeName string,
		fieldName string,
	) iterator.Iterator[ContextAndValue]

	// ResolveNeighbors returns, for each input context, a lazy sequence of neighbor vertices
	// along edgeName (spec.md §4.1.3).
	ResolveNeighbors(
		ctx gocontext.Context,
		contexts iterator.Iterator[*Context],
		typeName string,
		edgeName string,
		parameters map[string]value.Value,
	) iterator.Iterator[ContextAndNeighbors]

	// ResolveCoercion returns, for each input context, whether its active vertex is an
	// instance of coerceTo (spec.md §4.1.4).
	ResolveCoercion(
		ctx gocontext.Context,
		contexts iterator.Iterator[*Context],
		typeName string,
		coerceTo string,
	) iterator.Iterator[ContextAndBool]
}
