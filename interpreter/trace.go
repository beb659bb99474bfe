package interpreter

import (
	gocontext "context"

	"github.com/google/uuid"

	"github.com/trustfall-go/trustfall/interpreter/iterator"
	"github.com/trustfall-go/trustfall/value"
)

// Opid is a monotonically increasing id assigned to every recorded trace event (spec.md §4.7).
type Opid int64

// EventKind enumerates the event shapes named in spec.md §4.7.
type EventKind string

// The closed set of recorded event kinds.
const (
	eventCall                    EventKind = "Call"
	eventAdvanceInputIterator    EventKind = "AdvanceInputIterator"
	eventYieldInto               EventKind = "YieldInto"
	eventYieldFrom               EventKind = "YieldFrom"
	eventInputIteratorExhausted  EventKind = "InputIteratorExhausted"
	eventOutputIteratorExhausted EventKind = "OutputIteratorExhausted"
	eventProduceQueryResult      EventKind = "ProduceQueryResult"
)

// OperationKind names the four adapter calls plus their per-item payload shapes (spec.md §4.7).
type OperationKind string

// The four adapter operation names recorded by Call events.
const (
	OpResolveStartingVertices OperationKind = "ResolveStartingVertices"
	OpResolveProperty         OperationKind = "ResolveProperty"
	OpResolveNeighborsOuter   OperationKind = "ResolveNeighborsOuter"
	OpResolveNeighborsInner   OperationKind = "ResolveNeighborsInner"
	OpResolveCoercion         OperationKind = "ResolveCoercion"
)

// Operation carries the per-event-kind payload described in spec.md §4.7.
type Operation struct {
	Kind OperationKind

	// Set for OpResolveProperty.
	Value value.Value
	// Set for OpResolveNeighborsInner.
	Index  int
	Vertex Vertex
	// Set for OpResolveCoercion.
	Matches bool
}

// TraceEvent is one recorded entry in the trace log (spec.md §4.7).
type TraceEvent struct {
	ID       Opid
	ParentID Opid
	Kind     EventKind
	Op       *Operation
	Row      Row
}

// Recorder accumulates a deterministic event log of every resolver call, input advancement, and
// yield during one query's execution (spec.md §4.7). It is used exclusively for regression
// fixtures; production callers should leave tracing disabled.
type Recorder struct {
	TraceID uuid.UUID
	Events  []TraceEvent

	nextID int64
}

func newRecorder() *Recorder {
	return &Recorder{TraceID: uuid.New()}
}

func (r *Recorder) record(kind EventKind, parent Opid, row Row) Opid {
	r.nextID++
	id := Opid(r.nextID)
	r.Events = append(r.Events, TraceEvent{ID: id, ParentID: parent, Kind: kind, Row: row})
	return id
}

func (r *Recorder) recordOp(kind EventKind, parent Opid, op *Operation) Opid {
	r.nextID++
	id := Opid(r.nextID)
	r.Events = append(r.Events, TraceEvent{ID: id, ParentID: parent, Kind: kind, Op: op})
	return id
}

// tracingAdapter wraps an Adapter, assigning trace ids to every call and every item that flows
// through its input and output iterators (spec.md §4.7, §9's "wrapper adapter" design note).
type tracingAdapter struct {
	inner Adapter
	rec   *Recorder
}

func newTracingAdapter(inner Adapter, rec *Recorder) Adapter {
	return &tracingAdapter{inner: inner, rec: rec}
}

// tracedInput wraps a *Context input iterator so every pull is recorded.
func tracedInput(rec *Recorder, callID Opid, contexts iterator.Iterator[*Context]) iterator.Iterator[*Context] {
	return iterator.Func[*Context](func() (*Context, error) {
		rec.recordOp(eventAdvanceInputIterator, callID, nil)
		c, err := contexts.Next()
		if err == iterator.Done {
			rec.recordOp(eventInputIteratorExhausted, callID, nil)
			return nil, err
		}
		if err != nil {
			return nil, err
		}
		rec.recordOp(eventYieldInto, callID, nil)
		return c, nil
	})
}

// ResolveStartingVertices implements Adapter.
func (a *tracingAdapter) ResolveStartingVertices(ctx gocontext.Context, edgeName string, parameters map[string]value.Value) iterator.Iterator[Vertex] {
	callID := a.rec.recordOp(eventCall, 0, &Operation{Kind: OpResolveStartingVertices})
	inner := a.inner.ResolveStartingVertices(ctx, edgeName, parameters)
	index := 0
	return iterator.Func[Vertex](func() (Vertex, error) {
		v, err := inner.Next()
		if err == iterator.Done {
			a.rec.recordOp(eventOutputIteratorExhausted, callID, nil)
			return nil, err
		}
		if err != nil {
			return nil, err
		}
		a.rec.recordOp(eventYieldFrom, callID, &Operation{Kind: OpResolveNeighborsInner, Index: index, Vertex: v})
		index++
		return v, nil
	})
}

// ResolveProperty implements Adapter.
func (a *tracingAdapter) ResolveProperty(ctx gocontext.Context, contexts iterator.Iterator[*Context], typeName, fieldName string) iterator.Iterator[ContextAndValue] {
	callID := a.rec.recordOp(eventCall, 0, &Operation{Kind: OpResolveProperty})
	inner := a.inner.ResolveProperty(ctx, tracedInput(a.rec, callID, contexts), typeName, fieldName)
	return iterator.Func[ContextAndValue](func() (ContextAndValue, error) {
		pair, err := inner.Next()
		if err == iterator.Done {
			a.rec.recordOp(eventOutputIteratorExhausted, callID, nil)
			return ContextAndValue{}, err
		}
		if err != nil {
			return ContextAndValue{}, err
		}
		a.rec.recordOp(eventYieldFrom, callID, &Operation{Kind: OpResolveProperty, Value: pair.Value})
		return pair, nil
	})
}

// ResolveNeighbors implements Adapter.
func (a *tracingAdapter) ResolveNeighbors(ctx gocontext.Context, contexts iterator.Iterator[*Context], typeName, edgeName string, parameters map[string]value.Value) iterator.Iterator[ContextAndNeighbors] {
	callID := a.rec.recordOp(eventCall, 0, &Operation{Kind: OpResolveNeighborsOuter})
	inner := a.inner.ResolveNeighbors(ctx, tracedInput(a.rec, callID, contexts), typeName, edgeName, parameters)
	return iterator.Func[ContextAndNeighbors](func() (ContextAndNeighbors, error) {
		pair, err := inner.Next()
		if err == iterator.Done {
			a.rec.recordOp(eventOutputIteratorExhausted, callID, nil)
			return ContextAndNeighbors{}, err
		}
		if err != nil {
			return ContextAndNeighbors{}, err
		}
		a.rec.recordOp(eventYieldFrom, callID, &Operation{Kind: OpResolveNeighborsOuter})

		index := 0
		neighbors := pair.Neighbors
		pair.Neighbors = iterator.Func[Vertex](func() (Vertex, error) {
			n, err := neighbors.Next()
			if err == iterator.Done {
				a.rec.recordOp(eventOutputIteratorExhausted, callID, nil)
				return nil, err
			}
			if err != nil {
				return nil, err
			}
			a.rec.recordOp(eventYieldFrom, callID, &Operation{Kind: OpResolveNeighborsInner, Index: index, Vertex: n})
			index++
			return n, nil
		})
		return pair, nil
	})
}

// ResolveCoercion implements Adapter.
func (a *tracingAdapter) ResolveCoercion(ctx gocontext.Context, contexts iterator.Iterator[*Context], typeName, coerceTo string) iterator.Iterator[ContextAndBool] {
	callID := a.rec.recordOp(eventCall, 0, &Operation{Kind: OpResolveCoercion})
	inner := a.inner.ResolveCoercion(ctx, tracedInput(a.rec, callID, contexts), typeName, coerceTo)
	return iterator.Func[ContextAndBool](func() (ContextAndBool, error) {
		pair, err := inner.Next()
		if err == iterator.Done {
			a.rec.recordOp(eventOutputIteratorExhausted, callID, nil)
			return ContextAndBool{}, err
		}
		if err != nil {
			return ContextAndBool{}, err
		}
		a.rec.recordOp(eventYieldFrom, callID, &Operation{Kind: OpResolveCoercion, Matches: pair.Matches})
		return pair, nil
	})
}
