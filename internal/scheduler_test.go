package internal

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestReader(start *Timestamp) *Reader {
	return &Reader{ID: uuid.New(), Start: start, Run: func() {}}
}

func TestSchedulerOrdering(t *testing.T) {
	tl := NewTimeline()
	root := tl.GetNow()
	a := tl.Tick()
	tl.SetNow(root)
	b := tl.Tick() // b sits between root and a

	s := NewScheduler(tl)
	ra := newTestReader(a)
	rb := newTestReader(b)
	s.Add(ra)
	s.Add(rb)

	assert.Equal(t, rb, s.FindMin())
	assert.Equal(t, rb, s.RemoveMin())
	assert.Equal(t, ra, s.RemoveMin())
	assert.Nil(t, s.RemoveMin())
}

func TestSchedulerDedup(t *testing.T) {
	tl := NewTimeline()
	s := NewScheduler(tl)
	r := newTestReader(tl.GetNow())

	s.Add(r)
	s.Add(r)

	assert.Equal(t, r, s.RemoveMin())
	assert.Nil(t, s.RemoveMin())
}

func TestSchedulerSplicedOutSortsFirst(t *testing.T) {
	tl := NewTimeline()
	root := tl.GetNow()
	live := tl.Tick()
	tl.SetNow(root)
	toSplice := tl.Tick()

	s := NewScheduler(tl)
	rLive := newTestReader(live)
	rSpliced := newTestReader(toSplice)
	s.Add(rLive)
	s.Add(rSpliced)

	tl.SpliceOut(root, toSplice)

	assert.Equal(t, rSpliced, s.FindMin())
}
