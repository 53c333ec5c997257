package internal

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sanity-io/litter"
)

// DumpTimeline renders the current timeline as a table (label, whether it
// is "now", pending cleanup count) to w. Grounded on no single teacher
// file (none of its generations has a timeline to dump); the tabular
// rendering style is borrowed from the delaneyj-signalparty/kevinxiao27-
// eg-walker reference repos' go-pretty usage for inspecting internal state.
func (e *Engine) DumpTimeline(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "label", "now", "cleanups"})

	for i, ts := range e.Timeline.Snapshot() {
		now := ""
		if ts.IsNow {
			now = "*"
		}
		t.AppendRow(table.Row{i, ts.Label, now, ts.CleanupCount})
	}
	t.Render()
}

// DefaultDebugHook formats a debug message with litter, the way the retrieval
// pack's inspection tooling formats arbitrary Go values for human reading,
// and writes it to w.
func DefaultDebugHook(w io.Writer) func(string) {
	return func(msg string) {
		fmt.Fprintln(w, litter.Sdump(msg))
	}
}
