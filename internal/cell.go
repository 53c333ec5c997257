package internal

import "github.com/google/uuid"

// dependent is one subscriber on a cell: a callback invoked with the cell's
// new Result whenever it changes.
type dependent struct {
	fn func(Result)
}

// Cell is the untyped engine-level node behind both spec's Constant and
// Changeable cell variants (spec §3). Grounded on internal/signal.go's
// `Signal{value, pendingValue}` shape, generalized from `any == any`
// equality to a user EqualFunc and from unconditional dispatch to the
// guarded write_result / unguarded write_result_no_eq split spec §4.C
// requires.
type Cell struct {
	ID uuid.UUID

	constant bool
	eq       EqualFunc

	state Result
	deps  *List[dependent]
}

// NewConstant returns a read-only cell permanently holding r. Constants
// have no dependent list (spec §3 invariant).
func NewConstant(r Result) *Cell {
	return &Cell{ID: uuid.New(), constant: true, state: r}
}

// NewChangeable returns a mutable cell holding initial as given. A zero
// Result is Ok(nil), not Failed(ErrUnset); callers wanting an unset cell
// pass Failed(ErrUnset) explicitly.
func NewChangeable(initial Result, eq EqualFunc) *Cell {
	return &Cell{ID: uuid.New(), eq: eq, state: initial, deps: NewList[dependent]()}
}

// IsConstant reports whether c is an immutable Constant cell.
func (c *Cell) IsConstant() bool { return c.constant }

// ReadResult returns the cell's current Result.
func (c *Cell) ReadResult() Result { return c.state }

// Subscribe registers fn to be called with the cell's new Result whenever
// it changes. Returns a handle usable with Unsubscribe. Subscribing to a
// constant cell is a programmer error (constants never change) and panics.
func (c *Cell) Subscribe(fn func(Result)) *Elem[dependent] {
	if c.constant {
		panic("timeline: cannot subscribe to a constant cell")
	}
	return c.deps.AddBefore(nil, dependent{fn: fn})
}

// Unsubscribe removes a subscription added by Subscribe.
func (c *Cell) Unsubscribe(h *Elem[dependent]) {
	if c.constant {
		return
	}
	c.deps.Remove(h)
}

// WriteResult stores r if it differs from the current state under c's
// EqualFunc (spec §4.C write_result), then dispatches to every dependent in
// subscription order. A panicking dependent is routed to onPanic (the
// engine's installed error handler) and does not stop the remaining
// dependents from running (spec §5: "dispatch continues").
func (c *Cell) WriteResult(r Result, onPanic func(any)) {
	if c.constant {
		panic("timeline: cannot write to a constant cell")
	}
	if resultsEqual(c.eq, c.state, r) {
		return
	}
	c.WriteResultNoEq(r, onPanic)
}

// WriteResultNoEq stores r unconditionally and dispatches to every
// dependent, skipping the equality check (spec §4.C: "used when the source
// cell's eq already guarded the notification").
func (c *Cell) WriteResultNoEq(r Result, onPanic func(any)) {
	c.state = r
	c.deps.Iter(func(e *Elem[dependent]) {
		dispatchOne(e.Value.fn, r, onPanic)
	})
}

func dispatchOne(fn func(Result), r Result, onPanic func(any)) {
	defer func() {
		if rec := recover(); rec != nil {
			if onPanic != nil {
				onPanic(rec)
			} else {
				panic(rec)
			}
		}
	}()
	fn(r)
}
