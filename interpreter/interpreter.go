// Package interpreter implements the trustfall-go query interpreter described in spec.md: the
// subsystem that drives a pluggable Adapter (spec.md §4.1) against a compiled IR (the ir
// package) to produce a lazy sequence of result rows (spec.md §4.6), enforcing type coercion,
// @optional null-propagation, @recurse traversal, @fold aggregation, and @filter evaluation
// along the way (spec.md §4.2-§4.5).
package interpreter

import (
	gocontext "context"

	"github.com/trustfall-go/trustfall/interpreter/iterator"
	"github.com/trustfall-go/trustfall/ir"
	"github.com/trustfall-go/trustfall/value"
)

// Result is the outcome of InterpretQuery: a lazy row stream plus, if tracing was requested via
// WithTrace, the recorder that accumulated trace events alongside it.
type Result struct {
	Rows  iterator.Iterator[Row]
	Trace *Recorder
}

// InterpretQuery validates the argument bindings (spec.md §6, §7), then returns a lazy sequence
// of result rows produced by driving adapter against query. ResolveStartingVertices is called
// before InterpretQuery returns; every other adapter call waits until the caller starts pulling
// rows from Result.Rows.
func InterpretQuery(
	ctx gocontext.Context,
	adapter Adapter,
	query *ir.IRQuery,
	args map[string]value.Value,
	opts ...Option,
) (*Result, error) {
	ec, err := Prepare(ctx, adapter, query, args, opts...)
	if err != nil {
		return nil, err
	}

	if ec.tracing {
		ec.Adapter = newTracingAdapter(ec.Adapter, ec.Trace)
	}

	contexts := executeTopLevelComponent(ec)
	rows := projectRows(ec, query.RootComponent.Outputs, contexts)
	rows = tracedRows(ec, rows)

	return &Result{Rows: rows, Trace: ec.Trace}, nil
}

// tracedRows wraps rows so that every produced row and the stream's eventual exhaustion are
// recorded, when tracing is enabled (spec.md §4.7: "the engine itself only emits
// ProduceQueryResult and the input/output exhaustion markers").
func tracedRows(ec *ExecutionContext, rows iterator.Iterator[Row]) iterator.Iterator[Row] {
	if !ec.tracing {
		return rows
	}
	return iterator.Func[Row](func() (Row, error) {
		row, err := rows.Next()
		if err == iterator.Done {
			ec.Trace.record(eventOutputIteratorExhausted, 0, nil)
			return nil, err
		}
		if err != nil {
			return nil, err
		}
		ec.Trace.record(eventProduceQueryResult, 0, row)
		return row, nil
	})
}
