package interpreter

import (
	"testing"

	"github.com/trustfall-go/trustfall/ir"
)

func TestContextStructuralSharing(t *testing.T) {
	root := NewRootContext()
	parent := root.WithVertex(0, "a")
	left := parent.WithVertex(1, "b")
	right := parent.WithVertex(1, "c")

	if v, isNone, bound := left.Lookup(0); !bound || isNone || v != "a" {
		t.Fatalf("left should still see vid 0 bound to %q, got %v (isNone=%v bound=%v)", "a", v, isNone, bound)
	}
	if v, _, _ := right.Lookup(1); v != "c" {
		t.Fatalf("right should see vid 1 bound to %q, got %v", "c", v)
	}
	if v, _, _ := left.Lookup(1); v != "b" {
		t.Fatalf("left should see its own vid 1 binding %q, got %v (forking must not leak across siblings)", "b", v)
	}
}

func TestContextWithNonePropagation(t *testing.T) {
	root := NewRootContext()
	c := root.WithNone(ir.Vid(0))
	if !c.IsNoneAt(0) {
		t.Fatalf("expected vid 0 to be None")
	}
	if _, ok := c.ActiveVertex(); ok {
		t.Fatalf("active vertex should report ok=false when None")
	}
}

func TestContextFoldResultIsolated(t *testing.T) {
	root := NewRootContext()
	a := root.WithFoldResult(1, nil, map[string]Value{"count": Value{}})
	b := root.WithFoldResult(2, nil, map[string]Value{"other": Value{}})

	if _, ok := a.FoldedValue(2, "other"); ok {
		t.Fatalf("a should not see b's fold result")
	}
	if _, ok := b.FoldedValue(1, "count"); ok {
		t.Fatalf("b should not see a's fold result")
	}
}
