package timeline

import (
	"io"

	"github.com/jamiealquiza/tachymeter"

	"github.com/AnatoleLucet/timeline/internal"
)

// DumpTimeline renders the current timeline's live timestamps as a table to
// w, for debugging and tests (SPEC_FULL.md §8).
func DumpTimeline(w io.Writer) { engine.DumpTimeline(w) }

// Stats returns propagation-latency percentiles over the most recent 256
// Propagate calls.
func Stats() *tachymeter.Metrics { return engine.Stats() }

// PendingReaderCount reports how many readers are currently queued.
func PendingReaderCount() int { return engine.PendingReaderCount() }

// UseLitterDebugHook installs the default litter-formatted debug hook,
// writing to w (SPEC_FULL.md §8).
func UseLitterDebugHook(w io.Writer) {
	engine.SetDebugHook(internal.DefaultDebugHook(w))
}
