// Package ir implements the typed, immutable Intermediate Representation described in
// spec.md §3: the compiled shape of a query that a (frontend, not specified here) hands to the
// interpreter. IRVertex/IREdge/IRFold/IRQueryComponent/IRQuery mirror the AST node family the
// teacher package builds its own typed IR from (graphql/ast), but flattened into dense
// Vid/Eid-indexed maps rather than a tree, since the component executor (spec.md §4.2) needs
// random access to any vertex or edge by id while walking the expansion order.
package ir

import "github.com/trustfall-go/trustfall/value"

// Vid is an opaque dense vertex identifier, assigned by the frontend and stable within one IR.
type Vid int

// Eid is an opaque dense edge identifier, assigned by the frontend and stable within one IR.
type Eid int

// FilterOp enumerates the closed set of @filter operators from spec.md §4.4.
type FilterOp string

// The closed set of supported filter operators.
const (
	OpEquals           FilterOp = "="
	OpNotEquals        FilterOp = "!="
	OpLessThan         FilterOp = "<"
	OpLessThanOrEqual  FilterOp = "<="
	OpGreaterThan      FilterOp = ">"
	OpGreaterThanEqual FilterOp = ">="
	OpIsNull           FilterOp = "is_null"
	OpIsNotNull        FilterOp = "is_not_null"
	OpContains         FilterOp = "contains"
	OpNotContains      FilterOp = "not_contains"
	OpOneOf            FilterOp = "one_of"
	OpNotOneOf         FilterOp = "not_one_of"
	OpHasPrefix        FilterOp = "has_prefix"
	OpNotHasPrefix     FilterOp = "not_has_prefix"
	OpHasSuffix        FilterOp = "has_suffix"
	OpNotHasSuffix     FilterOp = "not_has_suffix"
	OpHasSubstring     FilterOp = "has_substring"
	OpNotHasSubstring  FilterOp = "not_has_substring"
	OpRegex            FilterOp = "regex"
	OpNotRegex         FilterOp = "not_regex"
)

// OperandKind distinguishes the two operand sources named in spec.md §4.4 besides the field
// value itself: a literal query variable ($name) or a tagged value captured earlier (%name).
type OperandKind uint8

// Enumeration of OperandKind.
const (
	OperandNone OperandKind = iota
	OperandVariable
	OperandTag
)

// Operand is the right-hand operand of a filter: either absent (is_null/is_not_null), a
// variable reference, or a tag reference to a ContextField captured by an earlier @tag.
type Operand struct {
	Kind OperandKind

	// VariableName is set when Kind == OperandVariable; it is looked up in the argument
	// bindings passed to the interpreter (spec.md §6).
	VariableName string

	// TagVid/TagField are set when Kind == OperandTag; the value is resolved from
	// Context.Vertices[TagVid]'s TagField property, as captured at the tag site.
	TagVid   Vid
	TagField string
}

// Filter is a single @filter application on a named field of a vertex.
type Filter struct {
	// Field is the property name on the vertex this filter reads the left-hand operand from.
	Field string

	Op  FilterOp
	RHS *Operand // nil for is_null / is_not_null
}

// IRVertex is a single expansion point in a query component (spec.md §3).
type IRVertex struct {
	Vid      Vid
	TypeName string

	// CoercedFrom records the pre-coercion type when this vertex carries an inline `... on T`
	// fragment; empty when no coercion applies.
	CoercedFrom string

	Filters []Filter
}

// RecursiveInfo describes a @recurse(depth: N) edge.
type RecursiveInfo struct {
	Depth int
}

// IREdge is a single expansion edge between two vertices in a component (spec.md §3).
// Optional and Recursive are mutually exclusive with the edge being folded: a folded edge is
// represented by an IRFold, not an IREdge, in the owning component's Folds map.
type IREdge struct {
	Eid        Eid
	FromVid    Vid
	ToVid      Vid
	EdgeName   string
	Parameters map[string]value.Value

	Optional  bool
	Recursive *RecursiveInfo
}

// FoldAggregateKind distinguishes the two aggregate shapes a fold can expose (spec.md §4.3).
type FoldAggregateKind uint8

// Enumeration of FoldAggregateKind.
const (
	FoldCount FoldAggregateKind = iota
	FoldCollectProperty
)

// FoldAggregate describes one fold_specific_output: either the Count of the fold's inner
// contexts, or a List collecting a named property from a named inner vertex, in inner-context
// order.
type FoldAggregate struct {
	Kind FoldAggregateKind

	// Vid/Field are set when Kind == FoldCollectProperty: the inner vertex and property to
	// collect into a list.
	Vid   Vid
	Field string
}

// IRFold owns a nested IRQueryComponent executed once per outer context (spec.md §4.3).
type IRFold struct {
	Eid        Eid
	FromVid    Vid
	ToVid      Vid
	EdgeName   string
	Parameters map[string]value.Value

	Component *IRQueryComponent

	// FoldSpecificOutputs maps an output name (as referenced by FieldRef.FoldOutputName) to
	// its aggregate definition.
	FoldSpecificOutputs map[string]FoldAggregate

	// PostFilters apply to FoldSpecificOutputs values only (e.g. count() @filter(">=", ...)).
	PostFilters []Filter
}

// FieldRefKind distinguishes the two FieldRef shapes named in spec.md §3.
type FieldRefKind uint8

// Enumeration of FieldRefKind.
const (
	FieldRefContext FieldRefKind = iota
	FieldRefFold
)

// FieldRef names where an output's value comes from: either a remembered vertex's property, or
// a fold's aggregate output.
type FieldRef struct {
	Kind FieldRefKind

	// Set when Kind == FieldRefContext.
	Vid       Vid
	FieldName string

	// Set when Kind == FieldRefFold.
	FoldEid        Eid
	FoldOutputName string
}

// IRQueryComponent is a directed acyclic expansion tree rooted at Root (spec.md §3).
type IRQueryComponent struct {
	Root Vid

	Vertices map[Vid]*IRVertex
	Edges    map[Eid]*IREdge
	Folds    map[Eid]*IRFold

	// EdgeOrder lists the Eids of Edges in the topological expansion order the frontend
	// computed (from_vid strictly precedes to_vid in this order); the component executor
	// (spec.md §4.2) walks edges in exactly this order.
	EdgeOrder []Eid

	// FoldOrder lists the Eids of Folds in the order they should be executed once their
	// owning vertex's edges have all been walked.
	FoldOrder []Eid

	// Outputs maps a result column name to where its value comes from.
	Outputs map[string]FieldRef
}

// IRQuery is the top of the IR: the compiled shape of one query (spec.md §3).
type IRQuery struct {
	// RootName is the starting-vertex edge name on the schema root.
	RootName       string
	RootParameters map[string]value.Value

	RootComponent *IRQueryComponent

	// Variables declares the name/type of every $variable the query references; the
	// interpreter validates argument bindings against this set before producing any row
	// (spec.md §6, §7 ArgumentError).
	Variables map[string]VariableType
}

// VariableType names the declared type of a query variable, used only to validate presence
// (spec.md §6); the interpreter does not itself perform schema-level type checking.
type VariableType struct {
	Name     string
	Nullable bool
}
