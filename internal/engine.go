package internal

import (
	"fmt"

	"github.com/petermattis/goid"
	"github.com/jamiealquiza/tachymeter"
)

// Engine is the single process-wide context threaded through the API
// (spec §9 Design Notes: "best encapsulated as a single Engine context").
// It owns the timeline, the scheduler, the event dispatch queue, the
// memoization finish-stack, and the installed error/debug hooks.
//
// Grounded on internal/runtime.go's Runtime (which bundles heap, tracker,
// batcher, scheduler, queues behind one struct with methods hung off it),
// generalized from a per-goroutine registry (teacher's GetRuntime/goid map)
// to spec §5's single process-wide engine with a single-thread-ownership
// assertion instead of per-goroutine partitioning.
type Engine struct {
	Timeline  *Timeline
	Scheduler *Scheduler

	finishStack []*Timestamp
	runningStack []*Reader

	eventQueue    []func()
	dispatching   bool

	exnHandler func(any)
	debugHook  func(string)

	stats *tachymeter.Tachymeter

	// entered/enteredBy implement the single-thread-ownership assertion
	// described in SPEC_FULL.md §3: goid identifies the calling goroutine
	// the way the teacher's GetRuntime does, but here it guards against
	// concurrent *misuse* of one shared engine rather than handing each
	// goroutine its own.
	entered   int
	enteredBy int64
}

// New returns a freshly initialized Engine.
func New() *Engine {
	e := &Engine{stats: tachymeter.New(&tachymeter.Config{Size: 256})}
	e.Scheduler = nil
	e.init()
	return e
}

func (e *Engine) init() {
	e.Timeline = NewTimeline()
	e.Timeline.OnCleanupPanic = func(r any) { e.handlePanic(r) }
	e.Scheduler = NewScheduler(e.Timeline)
	e.finishStack = nil
	e.runningStack = nil
	e.eventQueue = nil
	e.dispatching = false
}

// Reset reimplements spec §6 init(): every live timestamp's cleanups fire
// and all engine-owned state (timeline, scheduler, event queue, memo
// tables the caller still references) is discarded. Callers must not
// retain handles across Reset (spec §5).
func (e *Engine) Reset() {
	e.guard()()
	e.Timeline.Init()
	e.init()
}

// guard enforces the single-thread-ownership assertion (SPEC_FULL.md §3):
// a second goroutine entering while the first is still inside an Engine
// call is a fatal programmer error. The same goroutine may re-enter
// (a cleanup or reader body that itself calls Propagate/Write), since that
// is cooperative single-threaded reentrancy, not concurrent misuse.
func (e *Engine) guard() func() {
	gid := goid.Get()
	if e.entered > 0 && e.enteredBy != gid {
		panic(fmt.Sprintf("timeline: concurrent access to one Engine from goroutine %d while goroutine %d is inside it", gid, e.enteredBy))
	}
	e.enteredBy = gid
	e.entered++
	return func() { e.entered-- }
}

// SetExnHandler installs the process-wide error handler invoked when a
// dependent callback or cleanup panics outside a reader body (spec §6
// set_exn_handler; default behavior with no handler installed is to
// re-raise, per spec §7).
func (e *Engine) SetExnHandler(h func(any)) { e.exnHandler = h }

// SetDebugHook installs the process-wide debug hook (spec §6 set_debug).
func (e *Engine) SetDebugHook(h func(string)) { e.debugHook = h }

// PanicSink returns the engine's panic-routing function, for callers outside
// this package (the root facade) that write directly to a Cell or Event and
// need to hand write_result/send's panic path the same onPanic behavior the
// engine's own combinators use.
func (e *Engine) PanicSink() func(any) { return e.handlePanic }

func (e *Engine) handlePanic(r any) {
	if e.exnHandler != nil {
		e.exnHandler(r)
		return
	}
	panic(r)
}

func (e *Engine) debug(msg string) {
	if e.debugHook != nil {
		e.debugHook(msg)
	}
}

// pushFinish/popFinish/topFinish manage the memo finish-stack (spec §4.G:
// "Only active when inside a reader").
func (e *Engine) pushFinish(finish *Timestamp) { e.finishStack = append(e.finishStack, finish) }

func (e *Engine) popFinish() {
	e.finishStack = e.finishStack[:len(e.finishStack)-1]
}

func (e *Engine) topFinish() (*Timestamp, bool) {
	if len(e.finishStack) == 0 {
		return nil, false
	}
	return e.finishStack[len(e.finishStack)-1], true
}

// InsideReader reports whether the engine is currently executing a reader
// body (used by memo() to decide whether to cache at all, per spec §4.G).
func (e *Engine) InsideReader() bool { return len(e.finishStack) > 0 }

// Stats returns propagation-latency percentiles over the most recent 256
// Propagate calls, the sample window New gives the tachymeter
// (SPEC_FULL.md §8's tachymeter wiring).
func (e *Engine) Stats() *tachymeter.Metrics { return e.stats.Calc() }

// PendingReaderCount reports how many readers are currently queued for
// execution (debug/introspection use only).
func (e *Engine) PendingReaderCount() int { return len(e.Scheduler.heap) }
