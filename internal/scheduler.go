package internal

import (
	"github.com/google/uuid"
	mapset "github.com/deckarep/golang-set/v2"
)

// Reader is the engine-level record behind spec §3's Reader: a body
// re-executed when an input cell changes, bracketed by the half-open
// timeline interval [Start, Finish] that bounds every side effect it
// produced the last time it ran.
type Reader struct {
	ID     uuid.UUID
	Run    func()
	Start  *Timestamp
	Finish *Timestamp

	heapIdx int // index into Scheduler.heap, -1 when not queued
}

// Scheduler is the binary min-heap of pending readers ordered by Start
// (spec §4.D). Grounded on internal/heap.go's PriorityHeap (array storage,
// map-backed O(1) membership test), re-keyed from integer height to
// timeline order and generalized from a bucket array (suited to small dense
// integer heights) to a genuine binary heap (suited to the much larger,
// sparsely distributed uint64 timestamp labels spec §4.D calls for).
type Scheduler struct {
	tl   *Timeline
	heap []*Reader

	// pending dedups "already has an outstanding notification", an
	// optimization over the bare tolerate-duplicates rule in spec §4.D;
	// mapset.Set is reused here (as in the delaneyj-signalparty and
	// kevinxiao27-eg-walker reference repos) rather than a bespoke map[K]
	// struct{}, since the set is genuinely a set (membership + removal,
	// no associated value).
	pending mapset.Set[uuid.UUID]
}

// NewScheduler returns an empty scheduler bound to tl for spliced-out
// comparisons.
func NewScheduler(tl *Timeline) *Scheduler {
	return &Scheduler{tl: tl, pending: mapset.NewThreadUnsafeSet[uuid.UUID]()}
}

// IsEmpty reports whether the heap has no pending readers.
func (s *Scheduler) IsEmpty() bool { return len(s.heap) == 0 }

// less implements spec §4.D's comparator: a spliced-out start sorts before
// a live one (so it surfaces and is discarded cheaply); two spliced-out
// starts compare equal; two live starts compare by timeline order.
func (s *Scheduler) less(i, j int) bool {
	a, b := s.heap[i], s.heap[j]
	aDead, bDead := s.tl.IsSplicedOut(a.Start), s.tl.IsSplicedOut(b.Start)
	if aDead != bDead {
		return aDead
	}
	if aDead {
		return false
	}
	return Compare(a.Start, b.Start) < 0
}

func (s *Scheduler) swap(i, j int) {
	s.heap[i], s.heap[j] = s.heap[j], s.heap[i]
	s.heap[i].heapIdx = i
	s.heap[j].heapIdx = j
}

func (s *Scheduler) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !s.less(i, parent) {
			return
		}
		s.swap(i, parent)
		i = parent
	}
}

func (s *Scheduler) siftDown(i int) {
	n := len(s.heap)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && s.less(left, smallest) {
			smallest = left
		}
		if right < n && s.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			return
		}
		s.swap(i, smallest)
		i = smallest
	}
}

// Add pushes r onto the heap unless it is already waiting for execution.
func (s *Scheduler) Add(r *Reader) {
	if s.pending.Contains(r.ID) {
		return
	}
	s.pending.Add(r.ID)

	r.heapIdx = len(s.heap)
	s.heap = append(s.heap, r)
	s.siftUp(r.heapIdx)
}

// FindMin returns the reader with the smallest Start without removing it,
// or nil if the heap is empty.
func (s *Scheduler) FindMin() *Reader {
	if len(s.heap) == 0 {
		return nil
	}
	return s.heap[0]
}

// RemoveMin pops and returns the minimum reader, or nil if the heap is
// empty.
func (s *Scheduler) RemoveMin() *Reader {
	n := len(s.heap)
	if n == 0 {
		return nil
	}

	min := s.heap[0]
	last := n - 1
	s.swap(0, last)
	s.heap[last].heapIdx = -1
	s.heap = s.heap[:last]
	if last > 0 {
		s.siftDown(0)
	}

	s.pending.Remove(min.ID)
	return min
}
