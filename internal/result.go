package internal

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrUnset is the failure value of a changeable cell that has never been
// written to.
var ErrUnset = errors.New("timeline: cell has no value (unset)")

// errNotFound names the internal NotFound error kind of spec §6. The memo
// table does not use it: MemoTable.find reports a miss with a nil record, so
// this value never escapes to user code.
var errNotFound = errors.New("timeline: memo entry not found")

// Result is the untyped (any-based) tagged value every cell, reader, and
// event carries internally. The root package's generic Cell[T]/Event[T]
// wrap it with a type assertion, exactly the way the teacher's sig.go wraps
// internal.Signal's `any` state with its own `as[T]` helper.
type Result struct {
	Val  any
	Err  error
	Fail bool
}

// Ok builds a successful Result.
func Ok(v any) Result { return Result{Val: v} }

// Failed builds a failed Result.
func Failed(err error) Result { return Result{Err: err, Fail: true} }

// EqualFunc compares two arbitrary values for a cell's change-detection.
type EqualFunc func(a, b any) bool

// structuralEqual is the default EqualFunc (spec §3: "default: structural
// compare"). No repo in the retrieval pack depends on a generic structural-
// equality library (go-cmp, etc.); reflect.DeepEqual is the standard-library
// primitive for exactly this and is what every comparable default in this
// module falls back to — see DESIGN.md for why no third-party alternative
// was available to wire in here.
func structuralEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// safeEqual runs eq and reports false, rather than panicking, if eq panics
// (spec §3: "fallback to *not equal* if compare raises").
func safeEqual(eq EqualFunc, a, b any) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return eq(a, b)
}

// asError normalizes a recover()'d value into an error, matching spec §7's
// "a reader body that raises translates the raised error into Fail e".
func asError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return err
	}
	return fmt.Errorf("%v", recovered)
}

// resultsEqual implements spec §3's Result equality: structural/user eq on
// Value, reference identity on Fail (spec §7: "two 'same' errors are
// treated equal" only when they are the identical error value).
func resultsEqual(eq EqualFunc, a, b Result) bool {
	if a.Fail != b.Fail {
		return false
	}
	if a.Fail {
		return a.Err == b.Err
	}
	if eq == nil {
		eq = structuralEqual
	}
	return safeEqual(eq, a.Val, b.Val)
}
