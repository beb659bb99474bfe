// Package numbersadapter is a self-contained in-memory Adapter over the non-negative integers,
// schema Number/Prime/Composite/Neither with edges primeFactor, multiple, and successor. It
// exists to exercise the interpreter end to end the same way the teacher's executor tests drive
// a hand-rolled schema rather than a generated one (graphql/executor/execute_test.go), and backs
// both the test suite and the trustfall-bench CLI.
package numbersadapter

import (
	gocontext "context"
	"fmt"

	"github.com/trustfall-go/trustfall/interpreter"
	"github.com/trustfall-go/trustfall/interpreter/iterator"
	"github.com/trustfall-go/trustfall/value"
)

// number is the adapter's opaque vertex representation: a single non-negative integer.
type number struct {
	value int64
}

// Adapter implements interpreter.Adapter over the in-memory number schema.
type Adapter struct{}

// New returns a ready-to-use Adapter. It carries no state; every call recomputes its answer from
// the integer's value.
func New() *Adapter {
	return &Adapter{}
}

var _ interpreter.Adapter = (*Adapter)(nil)

// ResolveStartingVertices implements interpreter.Adapter. The only root edge is "Number", ranged
// by the inclusive "min"/"max" parameters (defaulting to 0 and 100).
func (a *Adapter) ResolveStartingVertices(
	_ gocontext.Context,
	edgeName string,
	parameters map[string]value.Value,
) iterator.Iterator[interpreter.Vertex] {
	if edgeName != "Number" {
		return iterator.Empty[interpreter.Vertex]()
	}

	min := int64(0)
	max := int64(100)
	if v, ok := parameters["min"]; ok {
		min = v.AsInt64()
	}
	if v, ok := parameters["max"]; ok {
		max = v.AsInt64()
	}

	values := make([]interpreter.Vertex, 0, max-min+1)
	for n := min; n <= max; n++ {
		values = append(values, number{value: n})
	}
	return iterator.FromSlice(values)
}

// ResolveProperty implements interpreter.Adapter for "value", "name", and "vowelsInName".
func (a *Adapter) ResolveProperty(
	_ gocontext.Context,
	contexts iterator.Iterator[*interpreter.Context],
	typeName string,
	fieldName string,
) iterator.Iterator[interpreter.ContextAndValue] {
	return iterator.Map(contexts, func(c *interpreter.Context) (interpreter.ContextAndValue, error) {
		n := activeNumber(c)

		var v value.Value
		switch fieldName {
		case "value":
			v = value.NewInt64(n.value)
		case "name":
			v = value.NewString(spellOut(n.value))
		case "vowelsInName":
			v = vowelsInName(n.value)
		default:
			return interpreter.ContextAndValue{}, fmt.Errorf("numbersadapter: %s has no property %q", typeName, fieldName)
		}
		return interpreter.ContextAndValue{Context: c, Value: v}, nil
	})
}

// ResolveNeighbors implements interpreter.Adapter for "primeFactor", "multiple", and "successor".
func (a *Adapter) ResolveNeighbors(
	_ gocontext.Context,
	contexts iterator.Iterator[*interpreter.Context],
	typeName string,
	edgeName string,
	parameters map[string]value.Value,
) iterator.Iterator[interpreter.ContextAndNeighbors] {
	return iterator.Map(contexts, func(c *interpreter.Context) (interpreter.ContextAndNeighbors, error) {
		n := activeNumber(c)

		var neighbors []interpreter.Vertex
		switch edgeName {
		case "primeFactor":
			for _, p := range primeFactors(n.value) {
				neighbors = append(neighbors, number{value: p})
			}
		case "multiple":
			max := int64(2)
			if v, ok := parameters["max"]; ok {
				max = v.AsInt64()
			}
			if n.value > 1 {
				for k := int64(2); k <= max; k++ {
					neighbors = append(neighbors, number{value: n.value * k})
				}
			}
		case "successor":
			neighbors = append(neighbors, number{value: n.value + 1})
		default:
			return interpreter.ContextAndNeighbors{}, fmt.Errorf("numbersadapter: %s has no edge %q", typeName, edgeName)
		}

		return interpreter.ContextAndNeighbors{Context: c, Neighbors: iterator.FromSlice(neighbors)}, nil
	})
}

// ResolveCoercion implements interpreter.Adapter for the Prime/Composite/Neither variants.
func (a *Adapter) ResolveCoercion(
	_ gocontext.Context,
	contexts iterator.Iterator[*interpreter.Context],
	typeName string,
	coerceTo string,
) iterator.Iterator[interpreter.ContextAndBool] {
	return iterator.Map(contexts, func(c *interpreter.Context) (interpreter.ContextAndBool, error) {
		n := activeNumber(c)

		var matches bool
		switch coerceTo {
		case "Prime":
			matches = isPrime(n.value)
		case "Composite":
			matches = n.value > 1 && !isPrime(n.value)
		case "Neither":
			matches = n.value == 0 || n.value == 1
		default:
			return interpreter.ContextAndBool{}, fmt.Errorf("numbersadapter: unknown coercion target %q", coerceTo)
		}
		return interpreter.ContextAndBool{Context: c, Matches: matches}, nil
	})
}

// activeNumber extracts the active vertex, panicking on a shape the engine should never produce
// (a None active vertex is never handed to an Adapter call, per spec.md §3).
func activeNumber(c *interpreter.Context) number {
	v, ok := c.ActiveVertex()
	if !ok {
		panic("numbersadapter: adapter called with a None active vertex")
	}
	return v.(number)
}

func isPrime(n int64) bool {
	if n < 2 {
		return false
	}
	for d := int64(2); d*d <= n; d++ {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// primeFactors returns the distinct prime factors of n in ascending order.
func primeFactors(n int64) []int64 {
	var factors []int64
	for d := int64(2); d*d <= n; d++ {
		if n%d == 0 {
			factors = append(factors, d)
			for n%d == 0 {
				n /= d
			}
		}
	}
	if n > 1 {
		factors = append(factors, n)
	}
	return factors
}

var vowelSet = map[rune]bool{'a': true, 'e': true, 'i': true, 'o': true, 'u': true}

func vowelsInName(n int64) value.Value {
	name := spellOut(n)
	var vowels []value.Value
	for _, r := range name {
		if vowelSet[r] {
			vowels = append(vowels, value.NewString(string(r)))
		}
	}
	return value.NewList(vowels)
}

var ones = []string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var tens = []string{
	"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
}

// spellOut renders n as lowercase English words, covering the 0-999 range the seed scenarios
// exercise; larger magnitudes fall back to their decimal digits rather than growing the word
// list further.
func spellOut(n int64) string {
	if n < 0 {
		return "negative " + spellOut(-n)
	}
	if n < 20 {
		return ones[n]
	}
	if n < 100 {
		word := tens[n/10]
		if n%10 != 0 {
			word += "-" + ones[n%10]
		}
		return word
	}
	if n < 1000 {
		word := ones[n/100] + " hundred"
		if n%100 != 0 {
			word += " " + spellOut(n%100)
		}
		return word
	}
	return fmt.Sprintf("%d", n)
}
