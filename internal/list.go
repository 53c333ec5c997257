package internal

// Elem is a node in an intrusive doubly-linked circular list. The zero Elem
// is not usable; create one with List.AddBefore or List.AddAfter.
//
// Grounded on the circular-sentinel, tail-via-prev-loop pattern used twice
// by the teacher (DependencyLink in node.go, heapNode in heap.go): a bucket
// or dependency chain is a ring anchored at a single head pointer, with the
// head's prev pointing at the tail so append is O(1) without a separate
// tail field per list.
type Elem[T any] struct {
	next, prev *Elem[T]
	list       *List[T]

	Value T
}

// Next returns the next element, or nil if e is the last element.
func (e *Elem[T]) Next() *Elem[T] {
	if n := e.next; e.list != nil && n != &e.list.root {
		return n
	}
	return nil
}

// Prev returns the previous element, or nil if e is the first element.
func (e *Elem[T]) Prev() *Elem[T] {
	if p := e.prev; e.list != nil && p != &e.list.root {
		return p
	}
	return nil
}

// List is a doubly-linked circular list with a sentinel root element.
type List[T any] struct {
	root Elem[T]
	len  int
}

// NewList returns an initialized, empty list.
func NewList[T any]() *List[T] {
	l := &List[T]{}
	l.root.next = &l.root
	l.root.prev = &l.root
	return l
}

// Len returns the number of elements in the list.
func (l *List[T]) Len() int { return l.len }

// IsEmpty reports whether the list has no elements.
func (l *List[T]) IsEmpty() bool { return l.len == 0 }

// Front returns the first element, or nil if the list is empty.
func (l *List[T]) Front() *Elem[T] {
	if l.len == 0 {
		return nil
	}
	return l.root.next
}

func (l *List[T]) insert(v T, at *Elem[T]) *Elem[T] {
	e := &Elem[T]{Value: v, list: l}
	n := at.next
	at.next = e
	e.prev = at
	e.next = n
	n.prev = e
	l.len++
	return e
}

// AddAfter inserts a new element with value v immediately after mark and
// returns a handle to it. mark == nil inserts at the front of the list.
func (l *List[T]) AddAfter(mark *Elem[T], v T) *Elem[T] {
	if mark == nil {
		return l.insert(v, &l.root)
	}
	return l.insert(v, mark)
}

// AddBefore inserts a new element with value v immediately before mark and
// returns a handle to it. mark == nil inserts at the back of the list.
func (l *List[T]) AddBefore(mark *Elem[T], v T) *Elem[T] {
	if mark == nil {
		return l.insert(v, l.root.prev)
	}
	return l.insert(v, mark.prev)
}

// Remove detaches e from the list. Safe to call more than once; the second
// and later calls are no-ops.
func (l *List[T]) Remove(e *Elem[T]) {
	if e == nil || e.list != l {
		return
	}
	e.prev.next = e.next
	e.next.prev = e.prev
	e.next = nil
	e.prev = nil
	e.list = nil
	l.len--
}

// Iter calls f for every element in the list, front to back. f may remove
// the current element (and only the current element) without corrupting
// the traversal; the next pointer is captured before f runs.
func (l *List[T]) Iter(f func(*Elem[T])) {
	e := l.root.next
	for e != &l.root {
		next := e.next
		f(e)
		e = next
	}
}
