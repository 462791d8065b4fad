package board

import (
	"errors"
	"fmt"
)

// Cell is the state of a single grid cell. The numeric values are the wire
// representation exchanged with clients.
type Cell int

const (
	Empty Cell = 0
	Ship  Cell = 1
	Miss  Cell = 2
	Hit   Cell = 3
	Sunk  Cell = 4
)

const (
	// Size is the width and height of every board.
	Size = 10

	// FleetCells is the number of cells occupied by a complete fleet.
	FleetCells = 20
)

// Fleet is the multiset of ship lengths a ready board must contain.
var Fleet = []int{4, 3, 3, 2, 2, 2, 1, 1, 1, 1}

var (
	ErrOutOfBounds      = errors.New("coordinate out of bounds")
	ErrDuplicateShot    = errors.New("cell already resolved")
	ErrInvalidPlacement = errors.New("invalid fleet placement")
	ErrMalformedBoard   = errors.New("malformed board")
)

// String returns a short lowercase name for the cell state.
func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case Ship:
		return "ship"
	case Miss:
		return "miss"
	case Hit:
		return "hit"
	case Sunk:
		return "sunk"
	default:
		return fmt.Sprintf("cell(%d)", int(c))
	}
}

// IsShipClass reports whether the cell was ever part of a ship.
func (c Cell) IsShipClass() bool {
	return c == Ship || c == Hit || c == Sunk
}

// Resolved reports whether a shot has already landed on the cell.
func (c Cell) Resolved() bool {
	return c == Miss || c == Hit || c == Sunk
}

// Coord is an (x, y) grid coordinate; x is the column and y the row.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Board is a fixed Size x Size grid addressed as [y][x].
type Board [Size][Size]Cell

// InBounds reports whether (x, y) lies on the board.
func InBounds(x, y int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size
}

// At returns the state of cell (x, y). The caller must check bounds.
func (b *Board) At(x, y int) Cell {
	return b[y][x]
}

// Set overwrites the state of cell (x, y). The caller must check bounds.
func (b *Board) Set(x, y int, c Cell) {
	b[y][x] = c
}

// Count returns how many cells are in any of the given states.
func (b *Board) Count(states ...Cell) int {
	n := 0
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			for _, s := range states {
				if b[y][x] == s {
					n++
					break
				}
			}
		}
	}
	return n
}

// ShipCells counts cells that were ever part of a ship.
func (b *Board) ShipCells() int {
	return b.Count(Ship, Hit, Sunk)
}

// Remaining counts ship cells that have not been hit yet.
func (b *Board) Remaining() int {
	return b.Count(Ship)
}

// Masked returns a copy safe to show to the opponent: untouched ship cells
// are rendered as Empty.
func (b *Board) Masked() Board {
	out := *b
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if out[y][x] == Ship {
				out[y][x] = Empty
			}
		}
	}
	return out
}

// Rows converts the board into its wire form.
func (b *Board) Rows() [][]int {
	rows := make([][]int, Size)
	for y := 0; y < Size; y++ {
		rows[y] = make([]int, Size)
		for x := 0; x < Size; x++ {
			rows[y][x] = int(b[y][x])
		}
	}
	return rows
}

// FromRows converts a wire grid into a Board. The grid must be exactly
// Size rows of Size values, each a known cell state.
func FromRows(rows [][]int) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, fmt.Errorf("%w: expected %d rows, got %d", ErrMalformedBoard, Size, len(rows))
	}
	for y, row := range rows {
		if len(row) != Size {
			return b, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrMalformedBoard, y, len(row), Size)
		}
		for x, v := range row {
			if v < int(Empty) || v > int(Sunk) {
				return b, fmt.Errorf("%w: cell (%d,%d) has unknown state %d", ErrMalformedBoard, x, y, v)
			}
			b[y][x] = Cell(v)
		}
	}
	return b, nil
}
