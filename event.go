package timeline

import "github.com/AnatoleLucet/timeline/internal"

// Event is a typed push-style discrete occurrence (spec §3 Event<V>):
// unlike a Cell it holds no state, only a moment of live dependents.
type Event[T any] struct {
	ev *internal.Event
}

// Sender is the write capability paired with an Event[T] (spec §6
// make_event() -> (event, sender)).
type Sender[T any] struct {
	sender *internal.EventSender
}

// NeverEvent is the event that can never fire (spec §3's Event sum type
// "Never" case; spec §8 law "merge [never; e] = e").
func NeverEvent[T any]() *Event[T] { return &Event[T]{ev: internal.Never} }

// MakeEvent returns a fresh event and its sender (spec §6 make_event()).
func MakeEvent[T any]() (*Event[T], *Sender[T]) {
	ev, sender := engine.MakeEvent()
	return &Event[T]{ev: ev}, &Sender[T]{sender: sender}
}

// Send pushes v as a successful occurrence (spec §6 send(sender, v)).
func (s *Sender[T]) Send(v T) { s.sender.Send(v) }

// SendExn pushes err as a failed occurrence (spec §6 send_exn(sender, e)).
func (s *Sender[T]) SendExn(err error) { s.sender.SendExn(err) }

// SendResult pushes v, or err if non-nil, directly (spec §6
// send_result(sender, r)).
func (s *Sender[T]) SendResult(v T, err error) {
	if err != nil {
		s.sender.SendExn(err)
		return
	}
	s.sender.Send(v)
}

// Merge forwards every occurrence from any input event (spec §4.H merge).
func Merge[T any](events ...*Event[T]) *Event[T] {
	raw := make([]*internal.Event, len(events))
	for i, e := range events {
		raw[i] = e.ev
	}
	return &Event[T]{ev: engine.Merge(raw)}
}

// MapEvent forwards Value(f v), or Fail on a panic from f (spec §4.H map).
func MapEvent[A, B any](ev *Event[A], f func(A) B) *Event[B] {
	out := engine.MapEvent(ev.ev, func(v any) any { return f(as[A](v)) })
	return &Event[B]{ev: out}
}

// FilterEvent forwards occurrences for which p holds; Fail passes through
// unconditionally (spec §4.H filter).
func FilterEvent[T any](ev *Event[T], p func(T) bool) *Event[T] {
	out := engine.FilterEvent(ev.ev, func(v any) bool { return p(as[T](v)) })
	return &Event[T]{ev: out}
}

// CollectEvent folds f over ev's values starting at init, forwarding each
// new accumulator; once the accumulator fails, further inputs are dropped
// (spec §4.H collect).
func CollectEvent[T, Acc any](ev *Event[T], f func(Acc, T) Acc, init Acc) *Event[Acc] {
	out := engine.CollectEvent(ev.ev, func(acc, v any) any {
		return f(as[Acc](acc), as[T](v))
	}, init)
	return &Event[Acc]{ev: out}
}

// Hold returns a cell starting at init and following ev's latest value
// (spec §4.H hold).
func Hold[T any](init T, ev *Event[T]) *Cell[T] {
	return &Cell[T]{cell: engine.Hold(init, ev.ev)}
}

// Changes returns an event that fires each time b's state changes, after
// b's own equality filtering (spec §4.H changes).
func Changes[T any](b *Cell[T]) *Event[T] {
	return &Event[T]{ev: engine.Changes(b.cell)}
}

// WhenTrue returns a unit event that fires on each transition of b to true
// (spec §4.H when_true).
func WhenTrue(b *Cell[bool]) *Event[struct{}] {
	out := engine.WhenTrue(b.cell)
	return &Event[struct{}]{ev: engine.MapEvent(out, func(any) any { return struct{}{} })}
}

// Count returns a cell counting ev's occurrences (spec §4.H count).
func Count[T any](ev *Event[T]) *Cell[int] {
	return &Cell[int]{cell: engine.Count(ev.ev)}
}

// MakeCellValue returns a changeable cell and setter for plain values (spec
// §6 make_cell(v) -> (cell, setter)); equivalent to Changeable with default
// equality, provided for parity with the spec's event-layer API naming.
func MakeCellValue[T any](v T) (*Cell[T], *Setter[T]) {
	c, s := engine.MakeCell(v)
	return &Cell[T]{cell: c}, &Setter[T]{setter: s}
}

// Setter is make_cell's write capability.
type Setter[T any] struct {
	setter *internal.CellSetter
}

func (s *Setter[T]) Write(v T)        { s.setter.Write(v) }
func (s *Setter[T]) WriteExn(e error) { s.setter.WriteExn(e) }
func (s *Setter[T]) Clear()           { s.setter.Clear() }

// Cancel is the handle returned by a cancellable notify/notify_e variant.
type Cancel struct {
	c *internal.Cancel
}

// Cancel tears down the subscription. Idempotent.
func (c *Cancel) Cancel() { c.c.Cancel() }

// Notify subscribes f to run with c's value on every change (spec §6
// notify(cell, f, now?)). readNow controls whether f also runs immediately
// with c's current value, or the subscription is installed silently.
func Notify[T any](c *Cell[T], f func(T), readNow bool) *Cancel {
	return &Cancel{c: engine.Notify(c.cell, func(v any) { f(as[T](v)) }, readNow)}
}

// NotifyResult is Notify's Result-observing variant (spec §6
// notify_result(cell, f, now?)).
func NotifyResult[T any](c *Cell[T], f func(T, error), readNow bool) *Cancel {
	return &Cancel{c: engine.NotifyResult(c.cell, func(r internal.Result) {
		if r.Fail {
			var zero T
			f(zero, r.Err)
			return
		}
		f(as[T](r.Val), nil)
	}, readNow)}
}

// NotifyE subscribes f to ev's successful occurrences (spec §6 notify_e).
func NotifyE[T any](ev *Event[T], f func(T)) *Cancel {
	return &Cancel{c: engine.NotifyE(ev.ev, func(v any) { f(as[T](v)) })}
}

// NotifyResultE is NotifyE's Result-observing variant (spec §6
// notify_result_e).
func NotifyResultE[T any](ev *Event[T], f func(T, error)) *Cancel {
	return &Cancel{c: engine.NotifyResultE(ev.ev, func(r internal.Result) {
		if r.Fail {
			var zero T
			f(zero, r.Err)
			return
		}
		f(as[T](r.Val), nil)
	})}
}
