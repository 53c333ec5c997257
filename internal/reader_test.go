package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLiftDiamond(t *testing.T) {
	e := New()
	src := NewChangeable(Ok(1), nil)

	double := e.Lift([]*Cell{src}, func(vs []any) any { return vs[0].(int) * 2 }, nil)
	triple := e.Lift([]*Cell{src}, func(vs []any) any { return vs[0].(int) * 3 }, nil)
	sum := e.Lift([]*Cell{double, triple}, func(vs []any) any { return vs[0].(int) + vs[1].(int) }, nil)

	assert.Equal(t, 5, sum.ReadResult().Val)

	src.WriteResult(Ok(2), e.handlePanic)
	e.Propagate(nil)

	assert.Equal(t, 10, sum.ReadResult().Val)
}

func TestLiftEqualityFilter(t *testing.T) {
	e := New()
	src := NewChangeable(Ok(0), structuralEqual)
	count := 0
	e.AddReader([]*Cell{src}, func() {
		r := src.ReadResult()
		if !r.Fail {
			count++
		}
	})
	// AddReader's own initial run already counted once; writes that don't
	// change the value must not re-trigger it.
	count = 0

	src.WriteResult(Ok(0), e.handlePanic)
	e.Propagate(nil)
	assert.Equal(t, 0, count)

	src.WriteResult(Ok(1), e.handlePanic)
	e.Propagate(nil)
	assert.Equal(t, 1, count)

	src.WriteResult(Ok(1), e.handlePanic)
	e.Propagate(nil)
	assert.Equal(t, 1, count)
}

func TestLiftConstantLaw(t *testing.T) {
	e := New()
	c := NewConstant(Ok(21))
	out := e.Lift([]*Cell{c}, func(vs []any) any { return vs[0].(int) * 2 }, nil)
	assert.True(t, out.IsConstant())
	assert.Equal(t, 42, out.ReadResult().Val)
}

func TestLiftIdentityLaw(t *testing.T) {
	e := New()
	src := NewChangeable(Ok("a"), nil)
	id := e.Lift([]*Cell{src}, func(vs []any) any { return vs[0] }, nil)

	assert.Equal(t, src.ReadResult(), id.ReadResult())

	src.WriteResult(Ok("b"), e.handlePanic)
	e.Propagate(nil)
	assert.Equal(t, src.ReadResult(), id.ReadResult())
}

func TestBindFailurePropagation(t *testing.T) {
	e := New()
	src := NewChangeable(Failed(errors.New("bad")), nil)
	out := e.Bind(src, func(v any) *Cell {
		return NewConstant(Ok(v.(int) + 1))
	})
	assert.True(t, out.ReadResult().Fail)
}

func TestBindDynamicStructure(t *testing.T) {
	e := New()
	flag := NewChangeable(Ok(true), nil)
	a := NewChangeable(Ok(1), nil)
	b := NewChangeable(Ok(2), nil)

	out := e.Bind(flag, func(v any) *Cell {
		if v.(bool) {
			return a
		}
		return b
	})
	assert.Equal(t, 1, out.ReadResult().Val)

	flag.WriteResult(Ok(false), e.handlePanic)
	e.Propagate(nil)
	assert.Equal(t, 2, out.ReadResult().Val)

	b.WriteResult(Ok(20), e.handlePanic)
	e.Propagate(nil)
	assert.Equal(t, 20, out.ReadResult().Val)
}

func TestCatchRecoversFailure(t *testing.T) {
	e := New()
	out := e.Catch(
		func() *Cell { return NewConstant(Failed(errors.New("boom"))) },
		func(err error) any { return -1 },
		nil,
	)
	r := out.ReadResult()
	assert.False(t, r.Fail)
	assert.Equal(t, -1, r.Val)
}

func TestTryBindRoutesSuccessAndFailure(t *testing.T) {
	e := New()
	ok := e.TryBind(NewConstant(Ok(10)),
		func(v any) *Cell { return NewConstant(Ok(v.(int) + 1)) },
		func(err error) *Cell { return NewConstant(Ok(-1)) },
	)
	assert.Equal(t, 11, ok.ReadResult().Val)

	failing := e.TryBind(NewConstant(Failed(errors.New("x"))),
		func(v any) *Cell { return NewConstant(Ok(v.(int) + 1)) },
		func(err error) *Cell { return NewConstant(Ok(-1)) },
	)
	assert.Equal(t, -1, failing.ReadResult().Val)
}

func TestReaderCycleDetection(t *testing.T) {
	e := New()
	src := NewChangeable(Ok(0), nil)

	var r *Reader
	r = e.AddReader([]*Cell{src}, func() {
		if src.ReadResult().Val.(int) > 0 {
			e.enqueueReader(r)
		}
	})

	src.WriteResult(Ok(1), e.handlePanic)
	assert.Panics(t, func() { e.Propagate(nil) })
}
