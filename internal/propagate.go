package internal

import "time"

// Propagate drains the scheduler in timestamp order until it is empty or,
// if until is non-nil, until the next pending reader's start would exceed
// it (spec §4.F). Grounded on internal/runtime.go's Flush (running-guard,
// drain-heap, restore-state shape), generalized from height-bucket draining
// to timestamp-ordered draining with an optional upper bound (needed by
// memo's re-splice reconciliation, spec §4.G).
func (e *Engine) Propagate(until *Timestamp) {
	release := e.guard()
	defer release()

	began := time.Now()
	e.propagate(until)
	e.stats.AddTime(time.Since(began))
}

func (e *Engine) propagate(until *Timestamp) {
	nowBefore := e.Timeline.GetNow()

	for {
		r := e.Scheduler.FindMin()
		if r == nil {
			break
		}
		if e.Timeline.IsSplicedOut(r.Start) {
			e.Scheduler.RemoveMin()
			continue
		}
		if until != nil && Compare(r.Start, until) > 0 {
			break
		}

		e.Scheduler.RemoveMin()
		e.pushFinish(r.Finish)
		e.Timeline.SetNow(r.Start)

		e.runningStack = append(e.runningStack, r)
		r.Run()
		e.runningStack = e.runningStack[:len(e.runningStack)-1]

		e.popFinish()
	}

	e.Timeline.SetNow(nowBefore)
}
