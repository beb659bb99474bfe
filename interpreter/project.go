package interpreter

import (
	"sort"

	"github.com/trustfall-go/trustfall/interpreter/iterator"
	"github.com/trustfall-go/trustfall/ir"
	"github.com/trustfall-go/trustfall/jsonwriter"
	"github.com/trustfall-go/trustfall/value"
)

// Row is one projected result: a mapping from output name to value (spec.md §4.6, §6).
type Row map[string]value.Value

// MarshalJSONTo implements jsonwriter.ValueMarshaler, streaming the row as a JSON object with
// its output names in sorted order so printed rows are byte-for-byte reproducible across runs.
func (r Row) MarshalJSONTo(stream *jsonwriter.Stream) error {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)

	stream.WriteObjectStart()
	for i, name := range names {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(name)
		if err := r[name].MarshalJSONTo(stream); err != nil {
			return err
		}
	}
	stream.WriteObjectEnd()
	return stream.Error()
}

// projectRows turns a stream of surviving top-level contexts into a stream of result rows
// (spec.md §4.6): for each declared output name, look up its FieldRef and resolve it — either a
// remembered vertex's property, or a fold's aggregate output.
func projectRows(ec *ExecutionContext, outputs map[string]ir.FieldRef, contexts iterator.Iterator[*Context]) iterator.Iterator[Row] {
	return iterator.Map(contexts, func(c *Context) (Row, error) {
		return projectRow(ec, outputs, c)
	})
}

func projectRow(ec *ExecutionContext, outputs map[string]ir.FieldRef, c *Context) (Row, error) {
	row := make(Row, len(outputs))
	for name, ref := range outputs {
		switch ref.Kind {
		case ir.FieldRefContext:
			v, updated, err := resolveContextFieldValue(ec, c, ref.Vid, ref.FieldName)
			if err != nil {
				return nil, err
			}
			c = updated
			row[name] = v

		case ir.FieldRefFold:
			v, ok := c.FoldedValue(ref.FoldEid, ref.FoldOutputName)
			if !ok {
				return nil, newInternalError("output references a fold aggregate that was never computed", nil)
			}
			row[name] = v

		default:
			return nil, newInternalError("output has no FieldRef kind", nil)
		}
	}
	return row, nil
}
