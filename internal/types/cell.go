package types

// CellState is the union-find state of a Var or Indir cell.
type CellState int

const (
	// Unbound means the cell has not yet been unified with anything.
	Unbound CellState = iota
	// Bound means the cell has been unified; Mono holds the binding.
	Bound
)

// Cell is the mutable indirection cell shared by every occurrence of one
// type variable or unknown. Unification mutates Cell.Mono in place; this
// mutation *is* the substitution — there is no separate substitution map.
//
// Invariant: once Bound, a Var's cell is never rebound to something less
// resolved; an Indir's cell may be rebound during path compression, but
// only to point directly at the representative it already transitively
// pointed to.
type Cell struct {
	State CellState
	Mono  Mono
}

// NewCell returns a fresh Unbound cell.
func NewCell() *Cell {
	return &Cell{State: Unbound}
}

// Bind sets the cell to Bound(m).
func (c *Cell) Bind(m Mono) {
	c.State = Bound
	c.Mono = m
}
