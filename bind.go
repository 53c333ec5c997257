package timeline

import "github.com/AnatoleLucet/timeline/internal"

// Bind derives a cell from t by applying f to each of t's values and
// flattening the cell f returns (spec §4.E bind). A constant t short-
// circuits: Bind returns f's cell for t's value directly (constant or not)
// and installs no reader. Otherwise the output's equality is "never" (always
// propagate), since the very structure of the dataflow graph can change on
// every re-run.
func Bind[A, B any](t *Cell[A], f func(A) *Cell[B]) *Cell[B] {
	out := engine.Bind(t.cell, func(v any) *internal.Cell {
		return f(as[A](v)).cell
	})
	return &Cell[B]{cell: out}
}

// BindN generalizes Bind over N input cells with fail-fast-on-any-Fail
// semantics (spec §4.E bindN). Inputs must be homogeneously typed; use
// BindAny for a heterogeneous input list.
func BindN[A, B any](cells []*Cell[A], f func([]A) *Cell[B]) *Cell[B] {
	raw := make([]*internal.Cell, len(cells))
	for i, c := range cells {
		raw[i] = c.cell
	}
	out := engine.BindN(raw, func(vals []any) *internal.Cell {
		typed := make([]A, len(vals))
		for i, v := range vals {
			typed[i] = as[A](v)
		}
		return f(typed).cell
	})
	return &Cell[B]{cell: out}
}

// Lift applies a plain (non-cell-returning) function f to t's value,
// writing the result directly into the output cell under eq (spec §4.E
// lift). A constant t again short-circuits to a constant.
func Lift[A, B any](t *Cell[A], f func(A) B, eq func(a, b B) bool) *Cell[B] {
	out := engine.Lift([]*internal.Cell{t.cell}, func(vals []any) any {
		return f(as[A](vals[0]))
	}, wrapEq(eq))
	return &Cell[B]{cell: out}
}

// LiftN generalizes Lift over N input cells (spec §6 liftN).
func LiftN[A, B any](cells []*Cell[A], f func([]A) B, eq func(a, b B) bool) *Cell[B] {
	raw := make([]*internal.Cell, len(cells))
	for i, c := range cells {
		raw[i] = c.cell
	}
	out := engine.Lift(raw, func(vals []any) any {
		typed := make([]A, len(vals))
		for i, v := range vals {
			typed[i] = as[A](v)
		}
		return f(typed)
	}, wrapEq(eq))
	return &Cell[B]{cell: out}
}

// TryBind routes t's result through succ (on Value) or errFn (on Fail), both
// cell-returning (spec §4.E try_bind).
func TryBind[A, B any](t *Cell[A], succ func(A) *Cell[B], errFn func(error) *Cell[B]) *Cell[B] {
	out := engine.TryBind(t.cell,
		func(v any) *internal.Cell { return succ(as[A](v)).cell },
		func(err error) *internal.Cell { return errFn(err).cell },
	)
	return &Cell[B]{cell: out}
}

// Catch evaluates f once, mapping any failure it produces through errFn into
// a recovered value (spec §4.E catch). The result cell always succeeds.
func Catch[B any](f func() *Cell[B], errFn func(error) B, eq func(a, b B) bool) *Cell[B] {
	out := engine.Catch(
		func() *internal.Cell { return f().cell },
		func(err error) any { return errFn(err) },
		wrapEq(eq),
	)
	return &Cell[B]{cell: out}
}

// Connect mirrors inner's current and future results into target (spec
// §4.E connect). Exposed directly since it is occasionally useful on its own
// (e.g. wiring a dynamically produced sub-graph's output into a long-lived
// sink cell) rather than only as a combinator primitive.
func Connect[T any](inner, target *Cell[T]) {
	engine.Connect(inner.cell, target.cell)
}

// Switch flattens a cell of cells by binding with identity (spec §6
// switch(cell_of_cell) = bind(x, identity)).
func Switch[T any](cellOfCell *Cell[*Cell[T]]) *Cell[T] {
	return Bind(cellOfCell, func(c *Cell[T]) *Cell[T] { return c })
}
