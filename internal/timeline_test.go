package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimelineTick(t *testing.T) {
	t.Run("tick always advances now and preserves order", func(t *testing.T) {
		tl := NewTimeline()
		root := tl.GetNow()

		a := tl.Tick()
		b := tl.Tick()
		c := tl.Tick()

		assert.Equal(t, c, tl.GetNow())
		assert.Equal(t, -1, Compare(root, a))
		assert.Equal(t, -1, Compare(a, b))
		assert.Equal(t, -1, Compare(b, c))
	})

	t.Run("long tail append stays monotonic", func(t *testing.T) {
		tl := NewTimeline()

		var prev *Timestamp
		for i := 0; i < 5000; i++ {
			ts := tl.Tick()
			if prev != nil {
				assert.Equal(t, -1, Compare(prev, ts))
			}
			prev = ts
		}
	})

	t.Run("relabeling preserves order once the gap between two neighbors is exhausted", func(t *testing.T) {
		tl := NewTimeline()
		root := tl.GetNow()
		tail := tl.Tick()

		inserted := []*Timestamp{}
		for i := 0; i < 64; i++ {
			tl.SetNow(root)
			ts := tl.Tick()
			inserted = append(inserted, ts)
		}

		// Each iteration re-inserts directly after root, so ascending
		// timeline order is the reverse of insertion order.
		prev := root
		for i := len(inserted) - 1; i >= 0; i-- {
			assert.Equal(t, -1, Compare(prev, inserted[i]))
			prev = inserted[i]
		}
		assert.Equal(t, -1, Compare(prev, tail))
	})
}

func TestTimelineSpliceOut(t *testing.T) {
	t.Run("fires cleanups in order and leaves lo live", func(t *testing.T) {
		tl := NewTimeline()
		lo := tl.GetNow()

		var fired []int
		a := tl.Tick()
		tl.AddCleanup(a, func() { fired = append(fired, 1) })
		b := tl.Tick()
		tl.AddCleanup(b, func() { fired = append(fired, 2) })

		tl.SpliceOut(lo, b)

		assert.Equal(t, []int{1, 2}, fired)
		assert.True(t, lo.IsLive())
		assert.False(t, a.IsLive())
		assert.False(t, b.IsLive())
		assert.True(t, tl.IsSplicedOut(b))
	})

	t.Run("splicing lo==hi is a no-op", func(t *testing.T) {
		tl := NewTimeline()
		lo := tl.GetNow()
		called := false
		tl.AddCleanup(lo, func() { called = true })

		tl.SpliceOut(lo, lo)

		assert.False(t, called)
		assert.True(t, lo.IsLive())
	})

	t.Run("cleanup panic routes to OnCleanupPanic without stopping later cleanups", func(t *testing.T) {
		tl := NewTimeline()
		lo := tl.GetNow()

		var recovered []any
		tl.OnCleanupPanic = func(r any) { recovered = append(recovered, r) }

		a := tl.Tick()
		tl.AddCleanup(a, func() { panic("boom") })
		b := tl.Tick()
		ranSecond := false
		tl.AddCleanup(b, func() { ranSecond = true })

		tl.SpliceOut(lo, b)

		assert.Equal(t, []any{"boom"}, recovered)
		assert.True(t, ranSecond)
	})
}

func TestTimelineInit(t *testing.T) {
	t.Run("fires every live cleanup and resets to a single root", func(t *testing.T) {
		tl := NewTimeline()
		var fired []int
		tl.AddCleanup(tl.GetNow(), func() { fired = append(fired, 0) })
		a := tl.Tick()
		tl.AddCleanup(a, func() { fired = append(fired, 1) })

		tl.Init()

		assert.Equal(t, []int{0, 1}, fired)
		assert.True(t, tl.GetNow().IsLive())
		assert.Equal(t, 1, tl.list.Len())
	})
}
