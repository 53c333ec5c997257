package internal

import "github.com/google/uuid"

// NeverEqual is the EqualFunc bind-flavored combinators install on their
// output cell (spec §4.E: "the default equality for bind-flavored
// combinators is never (always propagate) because the structure itself
// changes").
func NeverEqual(a, b any) bool { return false }

// AddReader builds and eagerly runs a reader observing cells (spec §4.E):
// it ticks a start timestamp (reused across every later re-run), runs
// body once, ticks a finish timestamp, and subscribes an enqueue-dep to
// every input cell with its unsubscribe cleanup attached to that finish
// (so a later re-run's trailing splice tears the old subscriptions down).
//
// Grounded on internal/computed.go's NewComputed (construct, eagerly
// recompute, register a dispose-time cleanup) generalized from a single
// height-ordered dependency list to the timeline's start/finish bracket.
func (e *Engine) AddReader(cells []*Cell, body func()) *Reader {
	release := e.guard()
	defer release()

	r := &Reader{ID: uuid.New()}
	r.Start = e.Timeline.Tick()
	r.Run = func() { e.runReader(r, cells, body) }
	r.Run()
	return r
}

// runReader is the re-entrant bootstrap shared by a reader's first run (via
// AddReader) and every later propagate-driven re-run: it folds spec §4.F's
// trailing "splice_out(get_now(), r.finish)" step into the same procedure
// that (re)subscribes the reader, since both only make sense together —
// the old range can only be safely discarded once the new one has been
// reconstructed and resubscribed.
func (e *Engine) runReader(r *Reader, cells []*Cell, body func()) {
	oldFinish := r.Finish

	if len(e.finishStack) == 0 {
		// A first run outside Propagate still counts as inside a reader, so
		// memo calls in body record their ranges. Bounding lookups by Start
		// means no entry can be a hit on this run.
		e.pushFinish(r.Start)
		body()
		e.popFinish()
	} else {
		body()
	}

	finish := e.Timeline.Tick()
	for _, c := range cells {
		cell := c
		h := cell.Subscribe(func(Result) { e.enqueueReader(r) })
		handle := h
		e.Timeline.AddCleanup(finish, func() { cell.Unsubscribe(handle) })
	}

	if oldFinish != nil {
		e.Timeline.SpliceOut(e.Timeline.GetNow(), oldFinish)
	}
	r.Finish = finish
}

// enqueueReader schedules r, first checking it is not already on the
// engine's currently-running stack — a reader that tries to re-trigger
// itself mid-execution is a dataflow cycle, which spec §9's Design Notes
// call a fatal condition to detect rather than spin on forever.
func (e *Engine) enqueueReader(r *Reader) {
	for _, running := range e.runningStack {
		if running == r {
			panic("timeline: cycle detected: reader re-triggered during its own execution")
		}
	}
	e.Scheduler.Add(r)
}

// Connect mirrors inner's current and future results into target
// (spec §4.E "connect"), modeled as its own single-dependency reader rather
// than a bare subscription: that way the mirror's lifetime — and the
// teardown of its subscription to inner — is governed by the ordinary
// timeline splice machinery exactly like any other reader, instead of
// needing a bespoke cleanup-attachment rule.
func (e *Engine) Connect(inner, target *Cell) {
	e.AddReader([]*Cell{inner}, func() {
		target.WriteResultNoEq(inner.ReadResult(), e.handlePanic)
	})
}

func (e *Engine) safeApply(f func() Result) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Failed(asError(r))
		}
	}()
	return f()
}

// Bind implements spec §4.E bind(t, f): constant short-circuit when t
// cannot change, otherwise an output cell whose value mirrors f(v) and is
// kept live by Connect as t (or f's result) changes.
func (e *Engine) Bind(t *Cell, f func(any) *Cell) *Cell {
	if t.IsConstant() {
		r := t.ReadResult()
		if r.Fail {
			return NewConstant(r)
		}
		inner := e.safeApplyCell(func() *Cell { return f(r.Val) })
		return inner
	}

	u := NewChangeable(Failed(ErrUnset), NeverEqual)
	e.AddReader([]*Cell{t}, func() {
		r := t.ReadResult()
		if r.Fail {
			u.WriteResultNoEq(r, e.handlePanic)
			return
		}
		inner := e.safeApplyCell(func() *Cell { return f(r.Val) })
		e.Connect(inner, u)
	})
	return u
}

// safeApplyCell calls f, converting a panic into a constant failure cell
// (spec §4.E: "Failures in f ... are written as Fail e to u").
func (e *Engine) safeApplyCell(f func() *Cell) *Cell {
	var result *Cell
	func() {
		defer func() {
			if r := recover(); r != nil {
				result = NewConstant(Failed(asError(r)))
			}
		}()
		result = f()
	}()
	return result
}

// BindN generalizes Bind over N cells with fail-fast-on-any-Fail semantics
// (spec §4.E bindN).
func (e *Engine) BindN(cells []*Cell, f func([]any) *Cell) *Cell {
	if allConstant(cells) {
		vals, failResult, failed := readAllConstants(cells)
		if failed {
			return NewConstant(failResult)
		}
		return e.safeApplyCell(func() *Cell { return f(vals) })
	}

	deps := nonConstant(cells)
	u := NewChangeable(Failed(ErrUnset), NeverEqual)
	e.AddReader(deps, func() {
		vals, failResult, failed := readAll(cells)
		if failed {
			u.WriteResultNoEq(failResult, e.handlePanic)
			return
		}
		inner := e.safeApplyCell(func() *Cell { return f(vals) })
		e.Connect(inner, u)
	})
	return u
}

// Lift implements spec §4.E lift: like Bind, but f is a plain function
// (not cell-returning) whose result is written directly, and the output
// cell uses the caller's eq (not NeverEqual) since the *structure* of the
// dataflow graph never changes under lift.
func (e *Engine) Lift(cells []*Cell, f func([]any) any, eq EqualFunc) *Cell {
	if allConstant(cells) {
		vals, failResult, failed := readAllConstants(cells)
		if failed {
			return NewConstant(failResult)
		}
		return NewConstant(e.safeApply(func() Result { return Ok(f(vals)) }))
	}

	deps := nonConstant(cells)
	u := NewChangeable(Failed(ErrUnset), eq)
	e.AddReader(deps, func() {
		vals, failResult, failed := readAll(cells)
		if failed {
			u.WriteResult(failResult, e.handlePanic)
			return
		}
		u.WriteResult(e.safeApply(func() Result { return Ok(f(vals)) }), e.handlePanic)
	})
	return u
}

// TryBind routes t's result through succ (on Value) or errFn (on Fail),
// both cell-returning, mirroring spec §4.E's try_bind.
func (e *Engine) TryBind(t *Cell, succ func(any) *Cell, errFn func(error) *Cell) *Cell {
	branch := func(r Result) *Cell {
		if r.Fail {
			return e.safeApplyCell(func() *Cell { return errFn(r.Err) })
		}
		return e.safeApplyCell(func() *Cell { return succ(r.Val) })
	}

	if t.IsConstant() {
		return branch(t.ReadResult())
	}

	u := NewChangeable(Failed(ErrUnset), NeverEqual)
	e.AddReader([]*Cell{t}, func() {
		inner := branch(t.ReadResult())
		e.Connect(inner, u)
	})
	return u
}

// Catch implements spec §4.E catch(f, err, eq?): f is evaluated once
// (panics become a Fail, matching the deferred-thunk style of the spec's
// `catch_lift (fun () -> b) (fun _ -> -1)` example) and its failures are
// mapped through errFn into a recovered value; successes pass through
// unchanged. The result always succeeds once past this combinator.
func (e *Engine) Catch(f func() *Cell, errFn func(error) any, eq EqualFunc) *Cell {
	src := e.safeApplyCell(f)

	if src.IsConstant() {
		r := src.ReadResult()
		if r.Fail {
			return NewConstant(e.safeApply(func() Result { return Ok(errFn(r.Err)) }))
		}
		return NewConstant(r)
	}

	u := NewChangeable(Failed(ErrUnset), eq)
	e.AddReader([]*Cell{src}, func() {
		r := src.ReadResult()
		if r.Fail {
			u.WriteResult(e.safeApply(func() Result { return Ok(errFn(r.Err)) }), e.handlePanic)
			return
		}
		u.WriteResult(r, e.handlePanic)
	})
	return u
}

func allConstant(cells []*Cell) bool {
	for _, c := range cells {
		if !c.IsConstant() {
			return false
		}
	}
	return true
}

func nonConstant(cells []*Cell) []*Cell {
	out := make([]*Cell, 0, len(cells))
	for _, c := range cells {
		if !c.IsConstant() {
			out = append(out, c)
		}
	}
	return out
}

func readAll(cells []*Cell) (vals []any, failResult Result, failed bool) {
	vals = make([]any, len(cells))
	for i, c := range cells {
		r := c.ReadResult()
		if r.Fail {
			return nil, r, true
		}
		vals[i] = r.Val
	}
	return vals, Result{}, false
}

func readAllConstants(cells []*Cell) (vals []any, failResult Result, failed bool) {
	return readAll(cells)
}
