package interpreter

import (
	"strings"

	"github.com/trustfall-go/trustfall/interpreter/iterator"
	"github.com/trustfall-go/trustfall/ir"
	"github.com/trustfall-go/trustfall/value"
)

// resolveContextFieldValue resolves a named property off the vertex bound to vid within c,
// implementing the None-active-vertex short circuit from spec.md §3: "All downstream property
// resolutions on a None active vertex must yield Null without invoking the adapter." Under
// CacheFirstResolution (spec.md §9's open question), it also returns a context that remembers
// the resolved value for (vid, field), so a later reference to the same field on the same
// context never repeats the adapter call.
func resolveContextFieldValue(ec *ExecutionContext, c *Context, vid ir.Vid, field string) (value.Value, *Context, error) {
	if c.IsNoneAt(vid) {
		return value.Null, c, nil
	}

	if ec.cachingPolicy == CacheFirstResolution {
		if v, ok := c.cachedProperty(vid, field); ok {
			return v, c, nil
		}
	}

	typeName := ec.typeNameAt(vid)
	overrideCtx := c.WithActiveAt(vid)

	pairs := ec.Adapter.ResolveProperty(ec.GoContext, iterator.Once(overrideCtx), typeName, field)
	pair, err := pairs.Next()
	if err != nil {
		return value.Null, c, NewAdapterError("resolve_property failed", err)
	}

	if ec.cachingPolicy == CacheFirstResolution {
		c = c.withCachedProperty(vid, field, pair.Value)
	}
	return pair.Value, c, nil
}

// resolveOperand resolves a filter's right-hand operand: a literal query variable or a tagged
// value captured earlier (spec.md §4.4).
func resolveOperand(ec *ExecutionContext, c *Context, op *ir.Operand) (value.Value, *Context, error) {
	switch op.Kind {
	case ir.OperandVariable:
		v, ok := ec.Args[op.VariableName]
		if !ok {
			// Prepare already validated presence of every declared variable; reaching here
			// means the filter references a name the IR never declared.
			return value.Null, c, NewArgumentError("undeclared variable referenced by filter: $" + op.VariableName)
		}
		return v, c, nil
	case ir.OperandTag:
		return resolveContextFieldValue(ec, c, op.TagVid, op.TagField)
	default:
		return value.Null, c, newInternalError("filter operand has no kind", nil)
	}
}

// applyVertexFiltersAndCoercion runs a vertex's inline type coercion (spec.md §4.5) followed by
// its @filter chain (spec.md §4.4) over a context stream, dropping contexts that fail either
// check. Each stage is itself a lazy iterator.Iterator, so the pipeline as a whole never forces
// more of the upstream stream than the downstream consumer pulls.
func applyVertexFiltersAndCoercion(ec *ExecutionContext, vertex *ir.IRVertex, contexts iterator.Iterator[*Context]) iterator.Iterator[*Context] {
	cur := contexts

	if vertex.CoercedFrom != "" {
		upstream := cur
		cur = iterator.Func[*Context](func() (*Context, error) {
			for {
				c, err := upstream.Next()
				if err != nil {
					return nil, err
				}
				if c.IsNoneAt(vertex.Vid) {
					return c, nil
				}
				ok, err := resolveCoercion(ec, c, vertex.Vid, vertex.CoercedFrom, vertex.TypeName)
				if err != nil {
					return nil, err
				}
				if ok {
					return c, nil
				}
			}
		})
	}

	for i := range vertex.Filters {
		filter := vertex.Filters[i]
		upstream := cur
		cur = iterator.Func[*Context](func() (*Context, error) {
			for {
				c, err := upstream.Next()
				if err != nil {
					return nil, err
				}
				keep, c, err := evaluateVertexFilter(ec, c, vertex.Vid, filter)
				if err != nil {
					return nil, err
				}
				if keep {
					return c, nil
				}
			}
		})
	}

	return cur
}

func resolveCoercion(ec *ExecutionContext, c *Context, vid ir.Vid, fromType, toType string) (bool, error) {
	overrideCtx := c.WithActiveAt(vid)
	pairs := ec.Adapter.ResolveCoercion(ec.GoContext, iterator.Once(overrideCtx), fromType, toType)
	pair, err := pairs.Next()
	if err != nil {
		return false, NewAdapterError("resolve_coercion failed", err)
	}
	return pair.Matches, nil
}

// evaluateVertexFilter applies one @filter to c, returning whether c survives and the (possibly
// cache-updated) context to use for subsequent stages. Per spec.md §4.4's None-active-vertex
// exception, a filter attached to a vertex reached via an unmatched @optional is skipped (the
// context passes through) rather than evaluated against a Null it can never legitimately compare
// against.
func evaluateVertexFilter(ec *ExecutionContext, c *Context, vid ir.Vid, filter ir.Filter) (bool, *Context, error) {
	if c.IsNoneAt(vid) {
		return true, c, nil
	}

	left, c, err := resolveContextFieldValue(ec, c, vid, filter.Field)
	if err != nil {
		return false, c, err
	}

	var right *value.Value
	if filter.RHS != nil {
		v, updated, err := resolveOperand(ec, c, filter.RHS)
		if err != nil {
			return false, updated, err
		}
		c = updated
		right = &v
	}

	keep, err := EvaluateFilter(ec, filter.Op, left, right)
	return keep, c, err
}

// EvaluateFilter implements the operator semantics of spec.md §4.4 for one already-resolved
// left operand and optional right operand. It is exported so the fold post-filter path
// (spec.md §4.3) and adapters' own tests can reuse it directly.
func EvaluateFilter(ec *ExecutionContext, op ir.FilterOp, left value.Value, right *value.Value) (bool, error) {
	switch op {
	case ir.OpIsNull:
		return left.IsNull(), nil
	case ir.OpIsNotNull:
		return !left.IsNull(), nil
	}

	if right == nil {
		return false, newInternalError("filter operator requires a right-hand operand", nil)
	}
	rhs := *right

	// "All other operators, when either operand is Null, yield false" (spec.md §4.4).
	if left.IsNull() || rhs.IsNull() {
		return false, nil
	}

	switch op {
	case ir.OpEquals:
		return valuesEqual(left, rhs)
	case ir.OpNotEquals:
		eq, err := valuesEqual(left, rhs)
		return !eq, err
	case ir.OpLessThan, ir.OpLessThanOrEqual, ir.OpGreaterThan, ir.OpGreaterThanEqual:
		return compareOp(op, left, rhs)
	case ir.OpContains:
		return listContains(left, rhs)
	case ir.OpNotContains:
		ok, err := listContains(left, rhs)
		return !ok, err
	case ir.OpOneOf:
		return listContains(rhs, left)
	case ir.OpNotOneOf:
		ok, err := listContains(rhs, left)
		return !ok, err
	case ir.OpHasPrefix:
		return stringOp(left, rhs, strings.HasPrefix)
	case ir.OpNotHasPrefix:
		ok, err := stringOp(left, rhs, strings.HasPrefix)
		return !ok, err
	case ir.OpHasSuffix:
		return stringOp(left, rhs, strings.HasSuffix)
	case ir.OpNotHasSuffix:
		ok, err := stringOp(left, rhs, strings.HasSuffix)
		return !ok, err
	case ir.OpHasSubstring:
		return stringOp(left, rhs, strings.Contains)
	case ir.OpNotHasSubstring:
		ok, err := stringOp(left, rhs, strings.Contains)
		return !ok, err
	case ir.OpRegex:
		return regexOp(ec, left, rhs)
	case ir.OpNotRegex:
		ok, err := regexOp(ec, left, rhs)
		return !ok, err
	}

	return false, newInternalError("unsupported filter operator: "+string(op), nil)
}

func valuesEqual(a, b value.Value) (bool, error) {
	return a.Equal(b), nil
}

func compareOp(op ir.FilterOp, a, b value.Value) (bool, error) {
	cmp, err := value.Compare(a, b)
	if err != nil {
		// spec.md §7: "incompatible type comparisons are an AdapterError because the frontend
		// should have prevented them."
		return false, NewAdapterError("incompatible operands in filter comparison", err)
	}
	switch op {
	case ir.OpLessThan:
		return cmp < 0, nil
	case ir.OpLessThanOrEqual:
		return cmp <= 0, nil
	case ir.OpGreaterThan:
		return cmp > 0, nil
	case ir.OpGreaterThanEqual:
		return cmp >= 0, nil
	}
	return false, newInternalError("compareOp called with non-ordering operator", nil)
}

// listContains reports whether scalar is present in list, per spec.md §4.4's "contains /
// not_contains apply to List left operand and scalar right operand" (and its one_of mirror,
// which swaps which side is the list).
func listContains(list, scalar value.Value) (bool, error) {
	if list.Kind() != value.KindList {
		return false, NewAdapterError("contains/one_of operand is not a List", nil)
	}
	for _, item := range list.AsList() {
		if item.Equal(scalar) {
			return true, nil
		}
	}
	return false, nil
}

func stringOp(left, right value.Value, op func(s, prefix string) bool) (bool, error) {
	if left.Kind() != value.KindString && left.Kind() != value.KindEnum {
		return false, NewAdapterError("string filter applied to a non-string value", nil)
	}
	if right.Kind() != value.KindString && right.Kind() != value.KindEnum {
		return false, NewAdapterError("string filter operand is not a string", nil)
	}
	return op(left.AsString(), right.AsString()), nil
}

func regexOp(ec *ExecutionContext, left, right value.Value) (bool, error) {
	if left.Kind() != value.KindString && left.Kind() != value.KindEnum {
		return false, NewAdapterError("regex filter applied to a non-string value", nil)
	}
	if right.Kind() != value.KindString && right.Kind() != value.KindEnum {
		return false, NewAdapterError("regex filter operand is not a string pattern", nil)
	}
	re, err := ec.compileRegex(right.AsString())
	if err != nil {
		return false, err
	}
	return re.MatchString(left.AsString()), nil
}
