package interpreter

import (
	gocontext "context"
	"fmt"
	"regexp"
	"sort"

	"github.com/trustfall-go/trustfall/ir"
	"github.com/trustfall-go/trustfall/value"
)

// CachingPolicy selects whether the engine memoizes a property already resolved earlier in the
// same row's pipeline (spec.md §9's open question). The default matches the trace fixture
// policy named in the spec: no caching, so every reference to a field re-invokes the adapter.
type CachingPolicy uint8

// Enumeration of CachingPolicy.
const (
	// NoPropertyCache never reuses a resolved property value; every reference makes a fresh
	// adapter call. This is the trace-fixture-compatible default per spec.md §9.
	NoPropertyCache CachingPolicy = iota
	// CacheFirstResolution reuses the first resolved value for a given (context identity,
	// vid, field) within the same row, avoiding a second adapter call.
	CacheFirstResolution
)

// Option configures an ExecutionContext constructed by Prepare.
type Option func(*ExecutionContext)

// WithTrace enables the optional trace recorder (spec.md §4.7); recorded events are available
// afterward via ExecutionContext.Trace.
func WithTrace() Option {
	return func(ec *ExecutionContext) { ec.tracing = true }
}

// WithCachingPolicy overrides the default no-cache property resolution policy.
func WithCachingPolicy(policy CachingPolicy) Option {
	return func(ec *ExecutionContext) { ec.cachingPolicy = policy }
}

// WithMaxRecursionDepth overrides the ResourceExhausted guard applied on top of each
// @recurse(depth: N) edge's own IR-declared N (spec.md §7's "implementation-defined guard").
// The default is 0, meaning only the IR-declared depth is enforced.
func WithMaxRecursionDepth(max int) Option {
	return func(ec *ExecutionContext) { ec.maxRecursionDepth = max }
}

// ExecutionContext threads the read-only state shared by every stage of one query's execution:
// the adapter, the bound arguments, a cache of regexes (each compiled the first time a filter
// evaluates it, not during Prepare), and a global vid→vertex lookup table
// (needed because a %tag or a fold aggregate may reference a vertex defined in an enclosing
// component, not just the component currently executing). It plays the role the teacher's
// executor.ExecutionContext plays for one GraphQL operation (graphql/executor/execution_context.go).
type ExecutionContext struct {
	GoContext gocontext.Context
	Adapter   Adapter
	Query     *ir.IRQuery
	Args      map[string]value.Value

	cachingPolicy     CachingPolicy
	maxRecursionDepth int
	tracing           bool
	Trace             *Recorder

	vertexDefs map[ir.Vid]*ir.IRVertex
	regexCache map[string]*regexp.Regexp
}

// Prepare validates argument bindings against the query's declared variables (spec.md §6, §7
// ArgumentError), builds the global vid lookup table, and returns a ready-to-run
// ExecutionContext. It never invokes the adapter.
func Prepare(
	ctx gocontext.Context,
	adapter Adapter,
	query *ir.IRQuery,
	args map[string]value.Value,
	opts ...Option,
) (*ExecutionContext, error) {
	if err := validateArguments(query, args); err != nil {
		return nil, err
	}

	ec := &ExecutionContext{
		GoContext:  ctx,
		Adapter:    adapter,
		Query:      query,
		Args:       args,
		vertexDefs: map[ir.Vid]*ir.IRVertex{},
		regexCache: map[string]*regexp.Regexp{},
	}
	for _, opt := range opts {
		opt(ec)
	}
	if ec.tracing {
		ec.Trace = newRecorder()
	}

	collectVertexDefs(query.RootComponent, ec.vertexDefs)

	return ec, nil
}

func collectVertexDefs(component *ir.IRQueryComponent, out map[ir.Vid]*ir.IRVertex) {
	if component == nil {
		return
	}
	for vid, v := range component.Vertices {
		out[vid] = v
	}
	for _, fold := range component.Folds {
		collectVertexDefs(fold.Component, out)
	}
}

// validateArguments implements spec.md §6/§7: every $variable the query references must be
// present in args; missing keys fail with ArgumentError, reporting every missing name at once as
// an Errors batch rather than stopping at the first one.
func validateArguments(query *ir.IRQuery, args map[string]value.Value) error {
	var missing []string
	for name := range query.Variables {
		if _, ok := args[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)

	errs := make(Errors, len(missing))
	for i, name := range missing {
		errs[i] = NewArgumentError(fmt.Sprintf("missing required variable: $%s", name))
	}
	return errs
}

// vertexDef returns the IR definition for vid, looked up across the whole query (including
// nested fold components), panicking only on an internal inconsistency the frontend should
// never produce (a vid with no definition anywhere in the IR).
func (ec *ExecutionContext) vertexDef(vid ir.Vid) *ir.IRVertex {
	v, ok := ec.vertexDefs[vid]
	if !ok {
		panic(fmt.Sprintf("interpreter: vid %d has no vertex definition in IR", vid))
	}
	return v
}

func (ec *ExecutionContext) typeNameAt(vid ir.Vid) string {
	return ec.vertexDef(vid).TypeName
}

func (ec *ExecutionContext) compileRegex(pattern string) (*regexp.Regexp, error) {
	if re, ok := ec.regexCache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		// Per spec.md §4.4, an invalid regex is a query-compile error the frontend should
		// have already rejected; reaching here means the IR was malformed, which we treat as
		// an internal error rather than a new runtime error kind.
		return nil, newInternalError("invalid regex literal reached the interpreter", err)
	}
	ec.regexCache[pattern] = re
	return re, nil
}
