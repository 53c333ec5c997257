package internal

import "github.com/google/uuid"

// Event is spec §3's push-style discrete occurrence: unlike a Cell it holds
// no state, only a dependent list that is notified synchronously on Send.
//
// Grounded on internal/node.go's DependencyLink list (a ring of callbacks),
// reused here directly rather than through Cell, since an Event has no
// `state` field to dispatch from on (re)subscribe — only sig.go's Computed
// dependents come close, and those always have a backing value.
type Event struct {
	id    uuid.UUID
	never bool
	deps  *List[func(Result)]
}

// Never is the unit value of spec §3's Event sum type: an event with no
// dependents that can ever fire. Combinators special-case it (spec §8 law
// "merge [never; e] = e") instead of wiring up a dead subscription.
var Never = &Event{never: true}

// NewEvent returns a fresh, fireable event (spec's "Occurs{id, deps}" case).
func NewEvent() *Event {
	return &Event{id: uuid.New(), deps: NewList[func(Result)]()}
}

// IsNever reports whether e is the Never event.
func (e *Event) IsNever() bool { return e.never }

// Subscribe registers fn to run on every future Send. Subscribing to Never
// is a permitted no-op (it simply never fires), unlike Cell.Subscribe on a
// constant, which is a programmer error: Never is a legitimate value events
// flow through (e.g. an empty merge), not a misuse signal.
func (e *Event) Subscribe(fn func(Result)) *Elem[func(Result)] {
	if e.never {
		return nil
	}
	return e.deps.AddBefore(nil, fn)
}

// Unsubscribe removes a subscription added by Subscribe.
func (e *Event) Unsubscribe(h *Elem[func(Result)]) {
	if e.never || h == nil {
		return
	}
	e.deps.Remove(h)
}

func (e *Event) fire(r Result, onPanic func(any)) {
	if e.never {
		return
	}
	e.deps.Iter(func(el *Elem[func(Result)]) {
		dispatchOne(el.Value, r, onPanic)
	})
}

// EventSender is the write capability returned alongside an Event by
// MakeEvent (spec §6 make_event() -> (event, sender)).
type EventSender struct {
	eng *Engine
	ev  *Event
}

// MakeEvent returns a fresh event and its sender.
func (e *Engine) MakeEvent() (*Event, *EventSender) {
	ev := NewEvent()
	return ev, &EventSender{eng: e, ev: ev}
}

// Send pushes v as a successful occurrence.
func (s *EventSender) Send(v any) { s.SendResult(Ok(v)) }

// SendExn pushes err as a failed occurrence.
func (s *EventSender) SendExn(err error) { s.SendResult(Failed(err)) }

// SendResult pushes r through the process-wide FIFO dispatch queue (spec
// §4.H): queue the fire, then let the (possibly already-running) drain loop
// pick it up. Grounded on internal/batcher.go's pending-queue-plus-running-
// flag shape, generalized from batching writes for one flush to dispatching
// one event through its dependents followed by a propagate to fixed point.
func (s *EventSender) SendResult(r Result) {
	release := s.eng.guard()
	defer release()

	ev := s.ev
	s.eng.eventQueue = append(s.eng.eventQueue, func() {
		ev.fire(r, s.eng.handlePanic)
		s.eng.Propagate(nil)
	})
	s.eng.drainEvents()
}

// drainEvents runs queued sends to completion. Re-entrant-safe via the
// dispatching flag: a send issued from inside a dependent's callback (a
// "nested send") is appended and returns immediately, to be picked up by
// this same loop once the current entry finishes (spec §5: "nested sends
// ... are drained after the current event finishes").
func (e *Engine) drainEvents() {
	if e.dispatching {
		return
	}
	e.dispatching = true
	defer func() { e.dispatching = false }()

	for len(e.eventQueue) > 0 {
		next := e.eventQueue[0]
		e.eventQueue = e.eventQueue[1:]
		next()
	}
}

// Merge forwards every result from any input event (spec §4.H merge),
// short-circuiting the "Never" degenerate cases at construction time rather
// than wiring up subscriptions that can never fire.
func (e *Engine) Merge(events []*Event) *Event {
	live := make([]*Event, 0, len(events))
	for _, ev := range events {
		if ev != nil && !ev.never {
			live = append(live, ev)
		}
	}
	if len(live) == 0 {
		return Never
	}
	if len(live) == 1 {
		return live[0]
	}

	out, sender := e.MakeEvent()
	for _, ev := range live {
		ev.Subscribe(func(r Result) { sender.SendResult(r) })
	}
	return out
}

// MapEvent forwards Value(f v), or Fail on a panic from f; Fail inputs pass
// through unchanged (spec §4.H map).
func (e *Engine) MapEvent(ev *Event, f func(any) any) *Event {
	if ev.never {
		return Never
	}
	out, sender := e.MakeEvent()
	ev.Subscribe(func(r Result) {
		if r.Fail {
			sender.SendResult(r)
			return
		}
		sender.SendResult(e.safeApply(func() Result { return Ok(f(r.Val)) }))
	})
	return out
}

// FilterEvent forwards only values for which p holds; Fail passes through
// unconditionally (spec §4.H filter).
func (e *Engine) FilterEvent(ev *Event, p func(any) bool) *Event {
	if ev.never {
		return Never
	}
	out, sender := e.MakeEvent()
	ev.Subscribe(func(r Result) {
		if r.Fail {
			sender.SendResult(r)
			return
		}
		if safePredicate(p, r.Val) {
			sender.SendResult(r)
		}
	})
	return out
}

func safePredicate(p func(any) bool, v any) (keep bool) {
	defer func() {
		if recover() != nil {
			keep = false
		}
	}()
	return p(v)
}

// CollectEvent folds f over ev's values starting at init, forwarding each
// new accumulator; once the accumulator is Fail (from a Fail input or a
// panic in f), further inputs are dropped (spec §4.H collect).
func (e *Engine) CollectEvent(ev *Event, f func(acc, v any) any, init any) *Event {
	if ev.never {
		return Never
	}
	out, sender := e.MakeEvent()
	acc := Ok(init)
	ev.Subscribe(func(r Result) {
		if acc.Fail {
			return
		}
		if r.Fail {
			acc = r
			sender.SendResult(acc)
			return
		}
		acc = e.safeApply(func() Result { return Ok(f(acc.Val, r.Val)) })
		sender.SendResult(acc)
	})
	return out
}

// Hold returns a cell whose state starts at init and follows ev's latest
// result under the cell's default (structural) equality (spec §4.H hold).
func (e *Engine) Hold(init any, ev *Event) *Cell {
	c := NewChangeable(Ok(init), nil)
	if !ev.never {
		ev.Subscribe(func(r Result) { c.WriteResult(r, e.handlePanic) })
	}
	return c
}

// Changes returns an event that fires each time b's state changes, after
// b's own eq filtering (spec §4.H changes). Modeled as an ordinary reader on
// b (spec §4.E's AddReader) rather than a bespoke cell-watcher, skipping the
// reader's own eager first run since that is b's starting state, not a
// change.
func (e *Engine) Changes(b *Cell) *Event {
	if b.IsConstant() {
		return Never
	}
	out, sender := e.MakeEvent()
	first := true
	e.AddReader([]*Cell{b}, func() {
		if first {
			first = false
			return
		}
		sender.SendResult(b.ReadResult())
	})
	return out
}

// WhenTrue returns a unit event that fires on each transition of b to true
// (spec §4.H when_true), built from Changes + FilterEvent rather than its
// own reader.
func (e *Engine) WhenTrue(b *Cell) *Event {
	return e.FilterEvent(e.Changes(b), func(v any) bool {
		bv, ok := v.(bool)
		return ok && bv
	})
}

// Count returns a cell counting ev's occurrences, including Fail ones (an
// occurrence is any send, successful or not) (spec §4.H count).
func (e *Engine) Count(ev *Event) *Cell {
	c := NewChangeable(Ok(0), nil)
	if !ev.never {
		n := 0
		ev.Subscribe(func(Result) {
			n++
			c.WriteResultNoEq(Ok(n), e.handlePanic)
		})
	}
	return c
}

// Switch flattens a cell-of-cells by binding with identity (spec §6
// switch(cell_of_cell) = bind(x, identity)).
func (e *Engine) Switch(cellOfCell *Cell) *Cell {
	return e.Bind(cellOfCell, func(v any) *Cell { return v.(*Cell) })
}

// CellSetter is the write capability returned alongside a cell by MakeCell.
type CellSetter struct {
	eng  *Engine
	cell *Cell
}

// MakeCell returns a changeable cell and its setter (spec §6
// make_cell(v) -> (cell, setter)).
func (e *Engine) MakeCell(v any) (*Cell, *CellSetter) {
	c := NewChangeable(Ok(v), nil)
	return c, &CellSetter{eng: e, cell: c}
}

func (s *CellSetter) Write(v any)          { s.cell.WriteResult(Ok(v), s.eng.handlePanic) }
func (s *CellSetter) WriteExn(err error)   { s.cell.WriteResult(Failed(err), s.eng.handlePanic) }
func (s *CellSetter) WriteResult(r Result) { s.cell.WriteResult(r, s.eng.handlePanic) }

// Clear resets the cell to Fail(Unset) (spec §6 clear).
func (s *CellSetter) Clear() { s.cell.WriteResult(Failed(ErrUnset), s.eng.handlePanic) }

// Cleanup registers f on the current "now" timestamp (spec §6 cleanup(f)).
func (e *Engine) Cleanup(f func()) {
	e.Timeline.AddCleanup(e.Timeline.GetNow(), f)
}

// Cancel is the handle returned by the cancellable notify/notify_e variants.
type Cancel struct {
	cancel func()
}

// Cancel tears down the subscription. Idempotent.
func (c *Cancel) Cancel() {
	if c != nil && c.cancel != nil {
		c.cancel()
	}
}

// Notify subscribes f to c's successful values (spec §6 notify(cell, f,
// now?)). readNow resolves spec §9's open question: true runs f once
// immediately with c's current value; false still ticks the reader's
// [start, finish] bracket (so the subscription bookkeeping is identical
// either way) but skips invoking f on that first run, matching the "subscribe
// without firing immediately" intent recorded in DESIGN.md.
func (e *Engine) Notify(c *Cell, f func(any), readNow bool) *Cancel {
	return e.NotifyResult(c, func(r Result) {
		if !r.Fail {
			f(r.Val)
		}
	}, readNow)
}

// NotifyResult is Notify's Result-observing variant (spec §6
// notify_result(cell, f, now?)).
func (e *Engine) NotifyResult(c *Cell, f func(Result), readNow bool) *Cancel {
	if c.IsConstant() {
		if readNow {
			e.safeApply(func() Result { f(c.ReadResult()); return Result{} })
		}
		return &Cancel{cancel: func() {}}
	}

	first := true
	reader := e.AddReader([]*Cell{c}, func() {
		if first {
			first = false
			if !readNow {
				return
			}
		}
		runNotify(f, c.ReadResult(), e.handlePanic)
	})

	cancelled := false
	return &Cancel{cancel: func() {
		if cancelled {
			return
		}
		cancelled = true
		release := e.guard()
		defer release()
		e.Timeline.SpliceOut(reader.Start, reader.Finish)
	}}
}

func runNotify(f func(Result), r Result, onPanic func(any)) {
	defer func() {
		if rec := recover(); rec != nil {
			onPanic(rec)
		}
	}()
	f(r)
}

// NotifyE subscribes f to ev's successful occurrences (spec §6 notify_e).
func (e *Engine) NotifyE(ev *Event, f func(any)) *Cancel {
	return e.NotifyResultE(ev, func(r Result) {
		if !r.Fail {
			f(r.Val)
		}
	})
}

// NotifyResultE is NotifyE's Result-observing variant (spec §6
// notify_result_e).
func (e *Engine) NotifyResultE(ev *Event, f func(Result)) *Cancel {
	if ev.never {
		return &Cancel{cancel: func() {}}
	}

	h := ev.Subscribe(func(r Result) { runNotify(f, r, e.handlePanic) })

	cancelled := false
	return &Cancel{cancel: func() {
		if cancelled {
			return
		}
		cancelled = true
		ev.Unsubscribe(h)
	}}
}
