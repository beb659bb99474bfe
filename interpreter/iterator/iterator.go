// Package iterator documents and implements the pull-model lazy sequence convention used
// throughout the interpreter. Every internal stage of the engine (starting-vertex streams,
// property streams, neighbor streams, context streams) is built out of the same shape: a type
// with a Next() (T, error) method that returns the sentinel error Done once exhausted.
//
// The convention is carried over from the iterator guidelines used elsewhere in this corpus
// (github.com/botobag/artemis/iterator), generalized with a type parameter since callers here
// always know the concrete element type up front.
package iterator

// done is defined to serve as the type for Done so that Done can be declared as an immutable
// package-level value with its own named type (and so a type switch can recognize it precisely).
type done int

// Error implements the error interface for "done".
func (done) Error() string {
	return "no more items in iterator"
}

var _ error = done(0)

// Done is returned by an iterator's Next method when the iteration is complete.
const Done done = 0

// Iterator is a single-pass, single-threaded pull sequence of T. Next returns (Done) once
// exhausted. Iterators must never be consumed concurrently and are safe to abandon (stop
// calling Next) at any point; implementations that hold resources must release them when the
// caller stops pulling, not only when Next finally returns Done.
type Iterator[T any] interface {
	Next() (T, error)
}

// Func adapts a plain function into an Iterator.
type Func[T any] func() (T, error)

// Next implements Iterator.
func (f Func[T]) Next() (T, error) { return f() }

// Empty returns an iterator that yields nothing.
func Empty[T any]() Iterator[T] {
	return Func[T](func() (T, error) {
		var zero T
		return zero, Done
	})
}

// Once returns an iterator that yields v exactly once.
func Once[T any](v T) Iterator[T] {
	yielded := false
	return Func[T](func() (T, error) {
		if yielded {
			var zero T
			return zero, Done
		}
		yielded = true
		return v, nil
	})
}

// FromSlice returns an iterator over the elements of s, in order.
func FromSlice[T any](s []T) Iterator[T] {
	i := 0
	return Func[T](func() (T, error) {
		if i >= len(s) {
			var zero T
			return zero, Done
		}
		v := s[i]
		i++
		return v, nil
	})
}

// Collect drains it into a slice. Used only where the spec requires materialization (fold
// bodies); never call this on a stage that must stay lazy.
func Collect[T any](it Iterator[T]) ([]T, error) {
	var out []T
	for {
		v, err := it.Next()
		if err == Done {
			return out, nil
		} else if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

// Map returns an iterator that lazily applies f to every element of it.
func Map[T, U any](it Iterator[T], f func(T) (U, error)) Iterator[U] {
	return Func[U](func() (U, error) {
		v, err := it.Next()
		if err != nil {
			var zero U
			return zero, err
		}
		return f(v)
	})
}

// Filter returns an iterator yielding only elements of it for which keep returns true.
func Filter[T any](it Iterator[T], keep func(T) (bool, error)) Iterator[T] {
	return Func[T](func() (T, error) {
		for {
			v, err := it.Next()
			if err != nil {
				var zero T
				return zero, err
			}
			ok, err := keep(v)
			if err != nil {
				var zero T
				return zero, err
			}
			if ok {
				return v, nil
			}
		}
	})
}

// Concat returns an iterator that yields every element of each iterator in order, the first
// iterator's elements preceding the second's.
func Concat[T any](its ...Iterator[T]) Iterator[T] {
	i := 0
	return Func[T](func() (T, error) {
		for i < len(its) {
			v, err := its[i].Next()
			if err == Done {
				i++
				continue
			}
			return v, err
		}
		var zero T
		return zero, Done
	})
}
