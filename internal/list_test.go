package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestList(t *testing.T) {
	t.Run("add and iterate in order", func(t *testing.T) {
		l := NewList[int]()
		l.AddBefore(nil, 1)
		l.AddBefore(nil, 2)
		l.AddBefore(nil, 3)

		var got []int
		l.Iter(func(e *Elem[int]) { got = append(got, e.Value) })
		assert.Equal(t, []int{1, 2, 3}, got)
		assert.Equal(t, 3, l.Len())
	})

	t.Run("add after front inserts at head", func(t *testing.T) {
		l := NewList[int]()
		l.AddBefore(nil, 1)
		l.AddAfter(nil, 0)

		var got []int
		l.Iter(func(e *Elem[int]) { got = append(got, e.Value) })
		assert.Equal(t, []int{0, 1}, got)
	})

	t.Run("remove during iteration is safe", func(t *testing.T) {
		l := NewList[int]()
		e1 := l.AddBefore(nil, 1)
		l.AddBefore(nil, 2)
		l.AddBefore(nil, 3)

		var got []int
		l.Iter(func(e *Elem[int]) {
			got = append(got, e.Value)
			if e.Value == 1 {
				l.Remove(e1)
			}
		})
		assert.Equal(t, []int{1, 2, 3}, got)
		assert.Equal(t, 2, l.Len())
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		l := NewList[int]()
		e := l.AddBefore(nil, 1)
		l.Remove(e)
		l.Remove(e)
		assert.True(t, l.IsEmpty())
	})

	t.Run("front and next/prev boundaries", func(t *testing.T) {
		l := NewList[int]()
		assert.Nil(t, l.Front())

		e1 := l.AddBefore(nil, 1)
		e2 := l.AddBefore(nil, 2)

		assert.Equal(t, e1, l.Front())
		assert.Nil(t, e1.Prev())
		assert.Equal(t, e2, e1.Next())
		assert.Nil(t, e2.Next())
	})
}
