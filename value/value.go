// Package value implements the tagged-union Value model described in spec.md §3: the data
// values that flow through property resolution, filter operands, tag/variable bindings, and
// fold aggregates. The shape follows the same "internal value type per variant" discipline the
// teacher package (graphql.LeafType / graphql/scalars.go) uses for coercing scalar values, but
// collapses it into a single comparable struct since the interpreter, unlike a GraphQL type
// system, must carry the runtime tag alongside the value rather than dispatch on a static type.
package value

import (
	"fmt"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/trustfall-go/trustfall/jsonwriter"
)

// Kind enumerates the Value variants named in spec.md §3.
type Kind uint8

// Enumeration of Kind.
const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindUint64
	KindFloat64
	KindString
	KindEnum
	KindList
)

// String returns a human-readable name for the kind, used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt64:
		return "Int64"
	case KindUint64:
		return "Uint64"
	case KindFloat64:
		return "Float64"
	case KindString:
		return "String"
	case KindEnum:
		return "Enum"
	case KindList:
		return "List"
	}
	return "Unknown"
}

// Value is the tagged union described in spec.md §3. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string // holds String and Enum payloads
	list []Value
}

// Null is the Null value.
var Null = Value{kind: KindNull}

// NewBool wraps a bool.
func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

// NewInt64 wraps a signed 64-bit integer.
func NewInt64(i int64) Value { return Value{kind: KindInt64, i: i} }

// NewUint64 wraps an unsigned 64-bit integer.
func NewUint64(u uint64) Value { return Value{kind: KindUint64, u: u} }

// NewFloat64 wraps a float64.
func NewFloat64(f float64) Value { return Value{kind: KindFloat64, f: f} }

// NewString wraps a string.
func NewString(s string) Value { return Value{kind: KindString, s: s} }

// NewEnum wraps an enum member name.
func NewEnum(s string) Value { return Value{kind: KindEnum, s: s} }

// NewList wraps a sequence of Values. The slice is not copied; callers must not mutate it after
// passing it in, consistent with Context immutability (spec.md §3).
func NewList(items []Value) Value { return Value{kind: KindList, list: items} }

// Kind reports the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the Null variant.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the wrapped bool. Panics if Kind() != KindBool; callers must check Kind first,
// mirroring the teacher's documented "fixed internal value type per GraphQL scalar" discipline
// (graphql/scalars.go) rather than silently coercing.
func (v Value) AsBool() bool {
	v.mustBe(KindBool)
	return v.b
}

// AsInt64 returns the wrapped int64.
func (v Value) AsInt64() int64 {
	v.mustBe(KindInt64)
	return v.i
}

// AsUint64 returns the wrapped uint64.
func (v Value) AsUint64() uint64 {
	v.mustBe(KindUint64)
	return v.u
}

// AsFloat64 returns the wrapped float64.
func (v Value) AsFloat64() float64 {
	v.mustBe(KindFloat64)
	return v.f
}

// AsString returns the wrapped string (valid for both KindString and KindEnum).
func (v Value) AsString() string {
	if v.kind != KindString && v.kind != KindEnum {
		panic(fmt.Sprintf("value: AsString called on a %s value", v.kind))
	}
	return v.s
}

// AsList returns the wrapped slice.
func (v Value) AsList() []Value {
	v.mustBe(KindList)
	return v.list
}

func (v Value) mustBe(k Kind) {
	if v.kind != k {
		panic(fmt.Sprintf("value: expected %s, got %s", k, v.kind))
	}
}

// String renders a Value for diagnostics and trace output.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt64:
		return fmt.Sprintf("%d", v.i)
	case KindUint64:
		return fmt.Sprintf("%d", v.u)
	case KindFloat64:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindEnum:
		return v.s
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return fmt.Sprintf("%v", parts)
	}
	return "<invalid value>"
}

// Equal reports whether two values are equal. Null equals only Null. Cross-kind comparisons
// (other than the numeric fit handled by Compare) are false, not an error, because equality
// (unlike ordering) is total per spec.md §3.
func (v Value) Equal(other Value) bool {
	cmp, err := Compare(v, other)
	if err != nil {
		return false
	}
	return cmp == 0
}

// Compare implements the ordering rules of spec.md §3: numeric variants compare as signed
// integers when both fit (Int64/Uint64 interop), strings and lists compare lexicographically,
// Null compares equal only to Null, and comparisons across incompatible variants are an error.
//
// Returns -1, 0, or 1 per the usual comparator convention.
func Compare(a, b Value) (int, error) {
	if a.kind == KindNull || b.kind == KindNull {
		if a.kind == KindNull && b.kind == KindNull {
			return 0, nil
		}
		return 0, &IncomparableError{A: a, B: b}
	}

	if isNumeric(a.kind) && isNumeric(b.kind) {
		return compareNumeric(a, b)
	}

	switch a.kind {
	case KindBool:
		if b.kind != KindBool {
			return 0, &IncomparableError{A: a, B: b}
		}
		if a.b == b.b {
			return 0, nil
		} else if !a.b {
			return -1, nil
		}
		return 1, nil

	case KindString, KindEnum:
		if b.kind != a.kind {
			return 0, &IncomparableError{A: a, B: b}
		}
		switch {
		case a.s < b.s:
			return -1, nil
		case a.s > b.s:
			return 1, nil
		default:
			return 0, nil
		}

	case KindList:
		if b.kind != KindList {
			return 0, &IncomparableError{A: a, B: b}
		}
		n := len(a.list)
		if len(b.list) < n {
			n = len(b.list)
		}
		for i := 0; i < n; i++ {
			c, err := Compare(a.list[i], b.list[i])
			if err != nil {
				return 0, err
			}
			if c != 0 {
				return c, nil
			}
		}
		switch {
		case len(a.list) < len(b.list):
			return -1, nil
		case len(a.list) > len(b.list):
			return 1, nil
		default:
			return 0, nil
		}
	}

	return 0, &IncomparableError{A: a, B: b}
}

func isNumeric(k Kind) bool {
	return k == KindInt64 || k == KindUint64 || k == KindFloat64
}

// compareNumeric compares two numeric values, preferring exact signed-integer comparison when
// both operands fit in int64 (spec.md §3: "Int64/Uint64 compared as signed integers when both
// fit"), and otherwise falling back to float64 comparison.
func compareNumeric(a, b Value) (int, error) {
	if a.kind == KindFloat64 || b.kind == KindFloat64 {
		af, bf := numericAsFloat64(a), numericAsFloat64(b)
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}

	// Both are Int64 and/or Uint64. If the Uint64 operand fits in int64, compare as signed.
	ai, aok := numericAsInt64(a)
	bi, bok := numericAsInt64(b)
	if aok && bok {
		switch {
		case ai < bi:
			return -1, nil
		case ai > bi:
			return 1, nil
		default:
			return 0, nil
		}
	}

	// One side is an out-of-int64-range Uint64; compare as unsigned.
	au, bu := numericAsUint64(a), numericAsUint64(b)
	switch {
	case au < bu:
		return -1, nil
	case au > bu:
		return 1, nil
	default:
		return 0, nil
	}
}

func numericAsFloat64(v Value) float64 {
	switch v.kind {
	case KindInt64:
		return float64(v.i)
	case KindUint64:
		return float64(v.u)
	case KindFloat64:
		return v.f
	}
	return 0
}

func numericAsInt64(v Value) (int64, bool) {
	switch v.kind {
	case KindInt64:
		return v.i, true
	case KindUint64:
		if v.u <= 1<<63-1 {
			return int64(v.u), true
		}
		return 0, false
	}
	return 0, false
}

func numericAsUint64(v Value) uint64 {
	switch v.kind {
	case KindInt64:
		return uint64(v.i)
	case KindUint64:
		return v.u
	}
	return 0
}

// IncomparableError is returned by Compare when two values cannot be ordered against each
// other. Per spec.md §3, this is an error, not a silent false.
type IncomparableError struct {
	A, B Value
}

func (e *IncomparableError) Error() string {
	return fmt.Sprintf("cannot compare %s value to %s value", e.A.Kind(), e.B.Kind())
}

// SortableList sorts a copy of a list's elements using Compare, used by adapters and tests that
// need canonical ordering; the engine itself never reorders values on its own.
func SortableList(items []Value) []Value {
	out := make([]Value, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		c, err := Compare(out[i], out[j])
		if err != nil {
			return false
		}
		return c < 0
	})
	return out
}

// MarshalJSON implements json.Marshaler so Value can be serialized directly via
// github.com/json-iterator/go, matching the teacher's convention of marshaling result data
// through jsoniter (graphql/executor/execute.go) rather than encoding/json.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return jsoniter.Marshal(v.b)
	case KindInt64:
		return jsoniter.Marshal(v.i)
	case KindUint64:
		return jsoniter.Marshal(v.u)
	case KindFloat64:
		return jsoniter.Marshal(v.f)
	case KindString, KindEnum:
		return jsoniter.Marshal(v.s)
	case KindList:
		return jsoniter.Marshal(v.list)
	}
	return nil, fmt.Errorf("value: cannot marshal invalid kind %d", v.kind)
}

// MarshalJSONTo implements jsonwriter.ValueMarshaler, letting a Value stream straight to an
// io.Writer (via jsonwriter.Stream) without an intermediate []byte allocation per row, the path
// trustfall-bench uses to print result rows (spec.md §4.6 output).
func (v Value) MarshalJSONTo(stream *jsonwriter.Stream) error {
	switch v.kind {
	case KindNull:
		stream.WriteNil()
	case KindBool:
		stream.WriteBool(v.b)
	case KindInt64:
		stream.WriteInt64(v.i)
	case KindUint64:
		stream.WriteUint64(v.u)
	case KindFloat64:
		stream.WriteFloat64(v.f)
	case KindString, KindEnum:
		stream.WriteString(v.s)
	case KindList:
		if len(v.list) == 0 {
			stream.WriteEmptyArray()
			return nil
		}
		stream.WriteArrayStart()
		for i, item := range v.list {
			if i > 0 {
				stream.WriteMore()
			}
			if err := item.MarshalJSONTo(stream); err != nil {
				return err
			}
		}
		stream.WriteArrayEnd()
	default:
		return fmt.Errorf("value: cannot marshal invalid kind %d", v.kind)
	}
	return stream.Error()
}
