package interpreter_test

import (
	gocontext "context"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/trustfall-go/trustfall/interpreter"
	"github.com/trustfall-go/trustfall/interpreter/iterator"
	"github.com/trustfall-go/trustfall/ir"
	"github.com/trustfall-go/trustfall/numbersadapter"
	"github.com/trustfall-go/trustfall/value"
)

func simpleQuery() *ir.IRQuery {
	return &ir.IRQuery{
		RootName:       "Number",
		RootParameters: map[string]value.Value{"min": value.NewInt64(0), "max": value.NewInt64(5)},
		Variables:      map[string]ir.VariableType{"min": {Name: "min"}},
		RootComponent: &ir.IRQueryComponent{
			Root: 0,
			Vertices: map[ir.Vid]*ir.IRVertex{
				0: {
					Vid: 0, TypeName: "Number",
					Filters: []ir.Filter{
						{Field: "value", Op: ir.OpGreaterThanEqual, RHS: &ir.Operand{Kind: ir.OperandVariable, VariableName: "min"}},
					},
				},
			},
			Outputs: map[string]ir.FieldRef{
				"value": {Kind: ir.FieldRefContext, Vid: 0, FieldName: "value"},
			},
		},
	}
}

var _ = Describe("InterpretQuery", func() {
	It("rejects a missing variable with an ArgumentError before touching the adapter", func() {
		_, err := interpreter.InterpretQuery(gocontext.Background(), numbersadapter.New(), simpleQuery(), nil)
		Expect(err).To(HaveOccurred())

		var ierrs interpreter.Errors
		Expect(err).To(BeAssignableToTypeOf(ierrs))
		ierrs = err.(interpreter.Errors)
		Expect(ierrs).To(HaveLen(1))
		Expect(ierrs[0].Kind).To(Equal(interpreter.ErrKindArgument))
	})

	It("yields the first row that passes the variable filter when one row is pulled", func() {
		result, err := interpreter.InterpretQuery(
			gocontext.Background(), numbersadapter.New(), simpleQuery(),
			map[string]value.Value{"min": value.NewInt64(2)},
		)
		Expect(err).NotTo(HaveOccurred())

		row, err := result.Rows.Next()
		Expect(err).NotTo(HaveOccurred())
		Expect(row["value"].AsInt64()).To(Equal(int64(2)))
	})

	It("records trace events in id order when tracing is enabled", func() {
		result, err := interpreter.InterpretQuery(
			gocontext.Background(), numbersadapter.New(), simpleQuery(),
			map[string]value.Value{"min": value.NewInt64(4)},
			interpreter.WithTrace(),
		)
		Expect(err).NotTo(HaveOccurred())

		rows, err := iterator.Collect(result.Rows)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2)) // values 4 and 5

		Expect(result.Trace).NotTo(BeNil())
		Expect(result.Trace.Events).NotTo(BeEmpty())
		for i := 1; i < len(result.Trace.Events); i++ {
			Expect(result.Trace.Events[i].ID).To(BeNumerically(">", result.Trace.Events[i-1].ID))
		}
	})
})
