// Package timeline is a self-adjusting computation engine: changeable and
// constant cells, readers whose bodies are re-run when their dependencies
// change, a virtual-time scheduler, memoization, and a push-style event
// layer built on top.
package timeline

import "github.com/AnatoleLucet/timeline/internal"

// as wraps an internal.Result's untyped Val in its static type, the same
// type-assertion idiom the teacher's sig.go uses to sit a generic facade on
// top of an untyped internal engine.
func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// engine is the process-wide default Engine every package-level function in
// this file operates on (spec §9 Design Notes: "a thin facade may expose a
// default context for convenience").
var engine = internal.New()

func wrapEq[T any](eq func(a, b T) bool) internal.EqualFunc {
	if eq == nil {
		return nil
	}
	return func(a, b any) bool { return eq(as[T](a), as[T](b)) }
}

// Init resets all engine state: every live timestamp's cleanups fire, and
// the timeline, scheduler, event queue and any memo tables are discarded
// (spec §6 init()). Callers must not retain a Cell/Event/Cancel across Init.
func Init() { engine.Reset() }

// Propagate drains the scheduler to a fixed point (spec §6 propagate()).
func Propagate() { engine.Propagate(nil) }

// SetExnHandler installs the process-wide panic handler invoked when a
// dependent callback or cleanup panics outside of a reader body (spec §6
// set_exn_handler(h); default is to re-raise).
func SetExnHandler(h func(any)) { engine.SetExnHandler(h) }

// SetDebug installs a process-wide debug hook (spec §6 set_debug(f)).
func SetDebug(f func(string)) { engine.SetDebugHook(f) }

// Cleanup registers f to run on the current "now" timestamp (spec §6
// cleanup(f)). Only meaningful while inside a reader body.
func Cleanup(f func()) { engine.Cleanup(f) }

// Cell is a typed read-only view of an engine cell (spec §3 Cell<V>): either
// a Constant, permanently holding one Result, or a Changeable, whose state
// is written by its paired Writer or computed by a binding combinator.
type Cell[T any] struct {
	cell *internal.Cell
}

// Writer is the write capability for a Changeable Cell[T] (spec §6
// changeable(init?, eq?) -> (cell, writer)).
type Writer[T any] struct {
	cell *internal.Cell
}

// Changeable creates a mutable cell with the given initial value and
// equality function (nil defaults to structural equality, spec §3).
func Changeable[T any](initial T, eq func(a, b T) bool) (*Cell[T], *Writer[T]) {
	c := internal.NewChangeable(internal.Ok(initial), wrapEq(eq))
	return &Cell[T]{cell: c}, &Writer[T]{cell: c}
}

// Unset creates a mutable cell starting in the Fail(Unset) state, the
// default a bare `changeable()` call with no initial value produces.
func Unset[T any](eq func(a, b T) bool) (*Cell[T], *Writer[T]) {
	c := internal.NewChangeable(internal.Failed(internal.ErrUnset), wrapEq(eq))
	return &Cell[T]{cell: c}, &Writer[T]{cell: c}
}

// Return builds a constant cell that always holds v (spec §6 `return v ->
// cell`).
func Return[T any](v T) *Cell[T] {
	return &Cell[T]{cell: internal.NewConstant(internal.Ok(v))}
}

// FailCell builds a constant cell permanently in the Fail state (spec §6
// `fail e -> cell`).
func FailCell[T any](err error) *Cell[T] {
	return &Cell[T]{cell: internal.NewConstant(internal.Failed(err))}
}

// Read returns c's current value, panicking with its stored error while c
// is Fail (spec §3 read(r) -> V (raises on Fail); spec §7 read(cell) on a
// failed cell re-raises).
func (c *Cell[T]) Read() T {
	r := c.cell.ReadResult()
	if r.Fail {
		panic(r.Err)
	}
	return as[T](r.Val)
}

// ReadResult returns c's current value, or its current error (spec §6
// read_result(cell)).
func (c *Cell[T]) ReadResult() (T, error) {
	r := c.cell.ReadResult()
	if r.Fail {
		var zero T
		return zero, r.Err
	}
	return as[T](r.Val), nil
}

// IsConstant reports whether c can ever change (spec §6 is_constant(cell)).
func (c *Cell[T]) IsConstant() bool { return c.cell.IsConstant() }

// Hash returns the underlying cell's stable identity hash (spec §6
// hash(cell)), suitable as a memo key component for computations keyed by
// "which cell".
func (c *Cell[T]) Hash() [16]byte { return c.cell.ID }

// Write stores v, dispatching to dependents if it differs from the current
// state under the cell's equality (spec §6 write(writer, v)).
func (w *Writer[T]) Write(v T) {
	w.cell.WriteResult(internal.Ok(v), engine.PanicSink())
}

// WriteExn stores err as a failure (spec §6 write_exn(writer, e)).
func (w *Writer[T]) WriteExn(err error) {
	w.cell.WriteResult(internal.Failed(err), engine.PanicSink())
}

// WriteResult stores r, Value or Fail, directly (spec §6
// write_result(writer, r)).
func (w *Writer[T]) WriteResult(v T, err error) {
	if err != nil {
		w.WriteExn(err)
		return
	}
	w.Write(v)
}

// Clear resets the cell to Fail(Unset) (spec §6 clear(writer)).
func (w *Writer[T]) Clear() {
	w.cell.WriteResult(internal.Failed(internal.ErrUnset), engine.PanicSink())
}
