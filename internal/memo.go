package internal

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// memoRecord is one cached sub-range keyed by a user key, plus the handle
// needed to remove it in O(1) when its timestamp range is spliced out.
type memoRecord struct {
	key    any
	entry  memoEntry
	handle *Elem[*memoRecord]
}

type memoEntry struct {
	result         Result
	start, finish  *Timestamp
}

// MemoTable is spec §4.G's memoization layer: a keyed cache of reader
// sub-ranges that, on a hit, re-splices the cached timestamp segment into
// the current execution instead of recomputing.
//
// Grounded on sig/memo.go's dirty-flag/recompute-on-read shape and
// internal/computed.go's dispose-before-rerun idiom, generalized to the
// spec's "reuse a cached timestamp range instead of rerunning" rule — a
// behavior neither has any equivalent of, since neither generation of the
// teacher has a timeline to splice.
type MemoTable struct {
	eng *Engine

	buckets map[uint64]*List[*memoRecord]
	hash    func(any) uint64
	eq      EqualFunc
}

// DefaultMemoHash hashes a key via xxhash over its %#v representation. Used
// when memo() is called without an explicit hash function (spec §6
// memo(size?, hash?, eq?)).
func DefaultMemoHash(k any) uint64 {
	return xxhash.Sum64String(fmt.Sprintf("%#v", k))
}

// NewMemoTable returns a memo table. size pre-sizes the bucket map the way
// the teacher's NewHeap(2000) pre-sizes its bucket array; entries are still
// removed individually via their finish-timestamp cleanup regardless of
// size, so size is a capacity hint, not an eviction bound.
func NewMemoTable(eng *Engine, size int, hash func(any) uint64, eq EqualFunc) *MemoTable {
	if hash == nil {
		hash = DefaultMemoHash
	}
	if eq == nil {
		eq = structuralEqual
	}
	if size <= 0 {
		size = 64
	}
	return &MemoTable{eng: eng, buckets: make(map[uint64]*List[*memoRecord], size), hash: hash, eq: eq}
}

func (mt *MemoTable) find(key any, now, top *Timestamp) *memoRecord {
	bucket := mt.buckets[mt.hash(key)]
	if bucket == nil {
		return nil
	}

	var found *memoRecord
	bucket.Iter(func(e *Elem[*memoRecord]) {
		if found != nil {
			return
		}
		rec := e.Value
		if !mt.eq(rec.key, key) {
			return
		}
		// spec §4.G: usable only if the cached range fits strictly inside
		// the currently executing reader's remaining interval.
		if Compare(rec.entry.start, now) > 0 && Compare(rec.entry.finish, top) < 0 {
			found = rec
		}
	})
	return found
}

func (mt *MemoTable) insert(key any, entry memoEntry) {
	h := mt.hash(key)
	bucket := mt.buckets[h]
	if bucket == nil {
		bucket = NewList[*memoRecord]()
		mt.buckets[h] = bucket
	}
	rec := &memoRecord{key: key, entry: entry}
	rec.handle = bucket.AddBefore(nil, rec)

	mt.eng.Timeline.AddCleanup(entry.finish, func() {
		bucket.Remove(rec.handle)
	})
}

// Call implements memo_call(f, k) (spec §4.G). Outside a reader it is a
// plain passthrough to f. Inside a reader, a cache hit re-splices the
// cached range and replays any readers pending inside it; a miss ticks a
// fresh [start, finish] bracket around evaluating f and stores it.
func (mt *MemoTable) Call(f func(any) any, k any) any {
	if !mt.eng.InsideReader() {
		return f(k)
	}

	now := mt.eng.Timeline.GetNow()
	top, _ := mt.eng.topFinish()

	if rec := mt.find(k, now, top); rec != nil {
		mt.eng.Timeline.SpliceOut(now, rec.entry.start)
		mt.eng.Propagate(rec.entry.finish)
		mt.eng.Timeline.SetNow(rec.entry.finish)

		if rec.entry.result.Fail {
			panic(rec.entry.result.Err)
		}
		return rec.entry.result.Val
	}

	start := mt.eng.Timeline.Tick()
	result := mt.eng.safeApply(func() Result { return Ok(f(k)) })
	finish := mt.eng.Timeline.Tick()

	mt.insert(k, memoEntry{result: result, start: start, finish: finish})

	if result.Fail {
		panic(result.Err)
	}
	return result.Val
}
