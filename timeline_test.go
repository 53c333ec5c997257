package timeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Scenario 1: diamond recomputation.
func TestDiamondRecomputation(t *testing.T) {
	Init()
	a, wa := Changeable(1, nil)

	bRuns, cRuns, dRuns := 0, 0, 0
	b := Lift(a, func(v int) int { bRuns++; return v + 1 }, nil)
	c := Lift(a, func(v int) int { cRuns++; return v * 2 }, nil)
	d := LiftN([]*Cell[int]{b, c}, func(vs []int) int { dRuns++; return vs[0] + vs[1] }, nil)

	assert.Equal(t, 4, d.Read())
	assert.Equal(t, 1, bRuns)
	assert.Equal(t, 1, cRuns)
	assert.Equal(t, 1, dRuns)

	wa.Write(10)
	Propagate()

	assert.Equal(t, 22, d.Read())
	assert.Equal(t, 2, bRuns)
	assert.Equal(t, 2, cRuns)
	assert.Equal(t, 2, dRuns)
}

// Scenario 2: equality filter.
func TestEqualityFilterNotify(t *testing.T) {
	Init()
	a, wa := Changeable(0, func(x, y int) bool { return x == y })

	count := 0
	Notify(a, func(int) { count++ }, false)

	wa.Write(0)
	Propagate()
	assert.Equal(t, 0, count)

	wa.Write(1)
	Propagate()
	assert.Equal(t, 1, count)

	wa.Write(1)
	Propagate()
	assert.Equal(t, 1, count)
}

// Scenario 3: failure propagation and catch.
func TestFailurePropagationAndCatch(t *testing.T) {
	Init()
	a, wa := Changeable(1, nil)
	b := Lift(a, func(v int) int {
		if v == 0 {
			panic(errors.New("division by zero"))
		}
		return 10 / v
	}, nil)
	c := Catch(func() *Cell[int] { return b }, func(error) int { return -1 }, nil)

	assert.Equal(t, 10, c.Read())

	wa.Write(0)
	Propagate()
	assert.Equal(t, -1, c.Read())
}

// Scenario 4: dynamic structure via bind.
func TestDynamicStructureViaBind(t *testing.T) {
	Init()
	sw, wsw := Changeable(true, nil)
	x, wx := Changeable(1, nil)
	y, wy := Changeable(100, nil)

	out := Bind(sw, func(b bool) *Cell[int] {
		if b {
			return x
		}
		return y
	})

	assert.Equal(t, 1, out.Read())

	wsw.Write(false)
	Propagate()
	assert.Equal(t, 100, out.Read())

	wx.Write(2)
	Propagate()
	assert.Equal(t, 100, out.Read())

	wy.Write(200)
	Propagate()
	assert.Equal(t, 200, out.Read())
}

// Scenario 5: memoized sub-computation (facade wiring; internal/memo_test.go
// covers the cached-cleanup invariant directly).
func TestMemoizedSubComputation(t *testing.T) {
	Init()
	sibling, wSibling := Changeable(0, nil)
	calls := 0
	mt := NewMemo[string, int]()

	var out int
	Notify(sibling, func(int) {
		out = mt.Call(func(string) int { calls++; return 7 }, "k")
	}, true)

	assert.Equal(t, 7, out)
	assert.Equal(t, 1, calls)

	wSibling.Write(1)
	Propagate()

	assert.Equal(t, 7, out)
	assert.Equal(t, 1, calls, "memo hit must not recompute")
}

// Scenario 6: event hold and changes.
func TestEventHoldAndChanges(t *testing.T) {
	Init()
	ev, sender := MakeEvent[int]()
	b := Hold(0, ev)
	d := Changes(b)

	var delivered []int
	NotifyE(d, func(v int) { delivered = append(delivered, v) })

	sender.Send(1)
	sender.Send(1)
	sender.Send(2)

	assert.Equal(t, []int{1, 2}, delivered)
}

func TestLiftConstantShortCircuitLaw(t *testing.T) {
	Init()
	c := Return(21)
	doubled := Lift(c, func(v int) int { return v * 2 }, nil)
	assert.True(t, doubled.IsConstant())
	assert.Equal(t, 42, doubled.Read())
}

func TestLiftIdentityLaw(t *testing.T) {
	Init()
	a, wa := Changeable("x", nil)
	id := Lift(a, func(v string) string { return v }, nil)

	assert.Equal(t, a.Read(), id.Read())

	wa.Write("y")
	Propagate()
	assert.Equal(t, a.Read(), id.Read())
}

func TestWriterClearResetsToUnset(t *testing.T) {
	Init()
	a, wa := Changeable(5, nil)
	wa.Clear()

	_, err := a.ReadResult()
	assert.Error(t, err)
	assert.Panics(t, func() { a.Read() })
}
