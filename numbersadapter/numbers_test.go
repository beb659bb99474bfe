package numbersadapter_test

import (
	gocontext "context"

	"github.com/google/go-cmp/cmp"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/trustfall-go/trustfall/interpreter"
	"github.com/trustfall-go/trustfall/interpreter/iterator"
	"github.com/trustfall-go/trustfall/ir"
	"github.com/trustfall-go/trustfall/numbersadapter"
	"github.com/trustfall-go/trustfall/value"
)

func mustRows(query *ir.IRQuery, args map[string]value.Value) []interpreter.Row {
	result, err := interpreter.InterpretQuery(gocontext.Background(), numbersadapter.New(), query, args)
	Expect(err).NotTo(HaveOccurred())
	rows, err := iterator.Collect(result.Rows)
	Expect(err).NotTo(HaveOccurred())
	return rows
}

var _ = Describe("numbersadapter seed scenarios", func() {
	It("S1: filters + fold collects distinct prime factors and their count", func() {
		query := &ir.IRQuery{
			RootName:       "Number",
			RootParameters: map[string]value.Value{"min": value.NewInt64(0), "max": value.NewInt64(20)},
			Variables: map[string]ir.VariableType{
				"min": {Name: "min"},
				"max": {Name: "max"},
			},
			RootComponent: &ir.IRQueryComponent{
				Root: 0,
				Vertices: map[ir.Vid]*ir.IRVertex{
					0: {
						Vid: 0, TypeName: "Composite", CoercedFrom: "Number",
						Filters: []ir.Filter{
							{Field: "value", Op: ir.OpGreaterThanEqual, RHS: &ir.Operand{Kind: ir.OperandVariable, VariableName: "min"}},
							{Field: "value", Op: ir.OpLessThanOrEqual, RHS: &ir.Operand{Kind: ir.OperandVariable, VariableName: "max"}},
						},
					},
					1: {Vid: 1, TypeName: "Prime"},
				},
				Folds: map[ir.Eid]*ir.IRFold{
					1: {
						Eid: 1, FromVid: 0, ToVid: 1, EdgeName: "primeFactor",
						Component: &ir.IRQueryComponent{
							Root:     1,
							Vertices: map[ir.Vid]*ir.IRVertex{1: {Vid: 1, TypeName: "Prime"}},
						},
						FoldSpecificOutputs: map[string]ir.FoldAggregate{
							"factors":          {Kind: ir.FoldCollectProperty, Vid: 1, Field: "value"},
							"primeFactorcount": {Kind: ir.FoldCount},
						},
					},
				},
				FoldOrder: []ir.Eid{1},
				Outputs: map[string]ir.FieldRef{
					"value":            {Kind: ir.FieldRefContext, Vid: 0, FieldName: "value"},
					"factors":          {Kind: ir.FieldRefFold, FoldEid: 1, FoldOutputName: "factors"},
					"primeFactorcount": {Kind: ir.FieldRefFold, FoldEid: 1, FoldOutputName: "primeFactorcount"},
				},
			},
		}

		rows := mustRows(query, map[string]value.Value{"min": value.NewInt64(1), "max": value.NewInt64(11)})
		byValue := map[int64]interpreter.Row{}
		for _, r := range rows {
			byValue[r["value"].AsInt64()] = r
		}

		Expect(byValue).To(HaveKey(int64(4)))
		Expect(byValue[4]["primeFactorcount"].AsUint64()).To(Equal(uint64(1)))
		Expect(byValue[4]["factors"].AsList()).To(HaveLen(1))
		Expect(byValue[4]["factors"].AsList()[0].AsInt64()).To(Equal(int64(2)))

		Expect(byValue).NotTo(HaveKey(int64(11)), "11 is prime, so the Composite coercion should drop it")
	})

	It("S2: filter with variable over vowelsInName", func() {
		query := &ir.IRQuery{
			RootName:       "Number",
			RootParameters: map[string]value.Value{"min": value.NewInt64(8), "max": value.NewInt64(11)},
			Variables:      map[string]ir.VariableType{"vowel": {Name: "vowel"}},
			RootComponent: &ir.IRQueryComponent{
				Root: 0,
				Vertices: map[ir.Vid]*ir.IRVertex{
					0: {
						Vid: 0, TypeName: "Number",
						Filters: []ir.Filter{
							{Field: "vowelsInName", Op: ir.OpContains, RHS: &ir.Operand{Kind: ir.OperandVariable, VariableName: "vowel"}},
						},
					},
				},
				Outputs: map[string]ir.FieldRef{
					"value": {Kind: ir.FieldRefContext, Vid: 0, FieldName: "value"},
				},
			},
		}

		rows := mustRows(query, map[string]value.Value{"vowel": value.NewString("i")})
		var values []int64
		for _, r := range rows {
			values = append(values, r["value"].AsInt64())
		}
		Expect(values).To(ConsistOf(int64(8), int64(9)))
	})

	It("S3: optional edge yields a null slot when no multiple exists", func() {
		query := &ir.IRQuery{
			RootName:       "Number",
			RootParameters: map[string]value.Value{"min": value.NewInt64(0), "max": value.NewInt64(4)},
			RootComponent: &ir.IRQueryComponent{
				Root: 0,
				Vertices: map[ir.Vid]*ir.IRVertex{
					0: {Vid: 0, TypeName: "Number"},
					1: {Vid: 1, TypeName: "Number"},
				},
				Edges: map[ir.Eid]*ir.IREdge{
					1: {
						Eid: 1, FromVid: 0, ToVid: 1, EdgeName: "multiple",
						Parameters: map[string]value.Value{"max": value.NewInt64(3)},
						Optional:   true,
					},
				},
				EdgeOrder: []ir.Eid{1},
				Outputs: map[string]ir.FieldRef{
					"value": {Kind: ir.FieldRefContext, Vid: 0, FieldName: "value"},
					"mult":  {Kind: ir.FieldRefContext, Vid: 1, FieldName: "value"},
				},
			},
		}

		rows := mustRows(query, nil)

		type pair struct {
			value int64
			mult  *int64
		}
		var got []pair
		for _, r := range rows {
			p := pair{value: r["value"].AsInt64()}
			if !r["mult"].IsNull() {
				m := r["mult"].AsInt64()
				p.mult = &m
			}
			got = append(got, p)
		}

		hasNullMult := func(v int64) bool {
			for _, p := range got {
				if p.value == v && p.mult == nil {
					return true
				}
			}
			return false
		}
		hasMult := func(v, m int64) bool {
			for _, p := range got {
				if p.value == v && p.mult != nil && *p.mult == m {
					return true
				}
			}
			return false
		}

		Expect(hasNullMult(0)).To(BeTrue())
		Expect(hasNullMult(1)).To(BeTrue())
		Expect(hasMult(2, 4)).To(BeTrue())
		Expect(hasMult(2, 6)).To(BeTrue())
		Expect(hasMult(3, 6)).To(BeTrue())
		Expect(hasMult(3, 9)).To(BeTrue())
	})

	It("S4: recurse walks successor breadth-first up to the declared depth", func() {
		query := &ir.IRQuery{
			RootName:       "Number",
			RootParameters: map[string]value.Value{"min": value.NewInt64(1), "max": value.NewInt64(1)},
			RootComponent: &ir.IRQueryComponent{
				Root: 0,
				Vertices: map[ir.Vid]*ir.IRVertex{
					0: {Vid: 0, TypeName: "Number"},
					1: {Vid: 1, TypeName: "Number"},
				},
				Edges: map[ir.Eid]*ir.IREdge{
					1: {
						Eid: 1, FromVid: 0, ToVid: 1, EdgeName: "successor",
						Recursive: &ir.RecursiveInfo{Depth: 2},
					},
				},
				EdgeOrder: []ir.Eid{1},
				Outputs: map[string]ir.FieldRef{
					"value": {Kind: ir.FieldRefContext, Vid: 1, FieldName: "value"},
				},
			},
		}

		rows := mustRows(query, nil)
		var values []int64
		for _, r := range rows {
			values = append(values, r["value"].AsInt64())
		}
		Expect(values).To(Equal([]int64{1, 2, 3}))
	})

	It("S5: fold post-filter keeps only composites with at least two distinct prime factors", func() {
		query := &ir.IRQuery{
			RootName:       "Number",
			RootParameters: map[string]value.Value{"min": value.NewInt64(1), "max": value.NewInt64(15)},
			Variables:      map[string]ir.VariableType{"n": {Name: "n"}},
			RootComponent: &ir.IRQueryComponent{
				Root: 0,
				Vertices: map[ir.Vid]*ir.IRVertex{
					0: {Vid: 0, TypeName: "Number"},
					1: {Vid: 1, TypeName: "Prime"},
				},
				Folds: map[ir.Eid]*ir.IRFold{
					1: {
						Eid: 1, FromVid: 0, ToVid: 1, EdgeName: "primeFactor",
						Component: &ir.IRQueryComponent{
							Root:     1,
							Vertices: map[ir.Vid]*ir.IRVertex{1: {Vid: 1, TypeName: "Prime"}},
						},
						FoldSpecificOutputs: map[string]ir.FoldAggregate{
							"count": {Kind: ir.FoldCount},
						},
						PostFilters: []ir.Filter{
							{Field: "count", Op: ir.OpGreaterThanEqual, RHS: &ir.Operand{Kind: ir.OperandVariable, VariableName: "n"}},
						},
					},
				},
				FoldOrder: []ir.Eid{1},
				Outputs: map[string]ir.FieldRef{
					"value": {Kind: ir.FieldRefContext, Vid: 0, FieldName: "value"},
				},
			},
		}

		rows := mustRows(query, map[string]value.Value{"n": value.NewUint64(2)})
		var values []int64
		for _, r := range rows {
			values = append(values, r["value"].AsInt64())
		}
		Expect(values).To(ConsistOf(int64(6), int64(10), int64(12), int64(14), int64(15)))
	})

	It("S6: coercion to Prime drops every non-prime context", func() {
		query := &ir.IRQuery{
			RootName:       "Number",
			RootParameters: map[string]value.Value{"min": value.NewInt64(1), "max": value.NewInt64(10)},
			RootComponent: &ir.IRQueryComponent{
				Root: 0,
				Vertices: map[ir.Vid]*ir.IRVertex{
					0: {Vid: 0, TypeName: "Prime", CoercedFrom: "Number"},
				},
				Outputs: map[string]ir.FieldRef{
					"value": {Kind: ir.FieldRefContext, Vid: 0, FieldName: "value"},
				},
			},
		}

		rows := mustRows(query, nil)
		var values []int64
		for _, r := range rows {
			values = append(values, r["value"].AsInt64())
		}
		if diff := cmp.Diff([]int64{2, 3, 5, 7}, values); diff != "" {
			Fail("prime set mismatch (-want +got):\n" + diff)
		}
	})
})
