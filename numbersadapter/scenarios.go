package numbersadapter

import (
	"fmt"

	"github.com/trustfall-go/trustfall/internal/util"
	"github.com/trustfall-go/trustfall/ir"
	"github.com/trustfall-go/trustfall/value"
)

// Scenario is one named, ready-to-run IR query plus the argument bindings it expects, used to
// exercise the interpreter against this package's schema without a query frontend (out of scope
// per the interpreter's own mandate).
type Scenario struct {
	Name  string
	Query *ir.IRQuery
	Args  map[string]value.Value
}

// ScenarioNames lists every built-in scenario, in a stable order.
func ScenarioNames() []string {
	return []string{"s1", "s2", "s3", "s4", "s5", "s6"}
}

// LookupScenario returns the named built-in scenario, or an error if name is unknown.
func LookupScenario(name string) (Scenario, error) {
	for _, s := range scenarios() {
		if s.Name == name {
			return s, nil
		}
	}

	if suggestions := util.SuggestionList(name, ScenarioNames()); len(suggestions) > 0 {
		return Scenario{}, fmt.Errorf("numbersadapter: unknown scenario %q, did you mean %v?", name, suggestions)
	}
	return Scenario{}, fmt.Errorf("numbersadapter: unknown scenario %q (known: %v)", name, ScenarioNames())
}

func scenarios() []Scenario {
	return []Scenario{
		{
			Name: "s1",
			Query: &ir.IRQuery{
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
			},
			Args: map[string]value.Value{"min": value.NewInt64(1), "max": value.NewInt64(11)},
		},
		{
			Name: "s2",
			Query: &ir.IRQuery{
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
			},
			Args: map[string]value.Value{"vowel": value.NewString("i")},
		},
		{
			Name: "s3",
			Query: &ir.IRQuery{
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
			},
		},
		{
			Name: "s4",
			Query: &ir.IRQuery{
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
			},
		},
		{
			Name: "s5",
			Query: &ir.IRQuery{
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
			},
			Args: map[string]value.Value{"n": value.NewUint64(2)},
		},
		{
			Name: "s6",
			Query: &ir.IRQuery{
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
			},
		},
	}
}
