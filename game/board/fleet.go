package board

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Ships returns every maximal orthogonally connected group of Ship cells,
// ordered by their top-left cell.
func Ships(b *Board) [][]Coord {
	return groups(b, func(s Cell) bool { return s == Ship })
}

// Vessels is like Ships but groups every ship-class cell, so damaged and
// sunk ships are included.
func Vessels(b *Board) [][]Coord {
	return groups(b, Cell.IsShipClass)
}

func groups(b *Board, follow func(Cell) bool) [][]Coord {
	visited := make(map[Coord]bool)
	var found [][]Coord
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			c := Coord{X: x, Y: y}
			if visited[c] || !follow(b.At(x, y)) {
				continue
			}
			group := component(b, c, follow)
			for _, gc := range group {
				visited[gc] = true
			}
			found = append(found, group)
		}
	}
	return found
}

func straight(ship []Coord) bool {
	sameRow, sameCol := true, true
	for _, c := range ship[1:] {
		if c.Y != ship[0].Y {
			sameRow = false
		}
		if c.X != ship[0].X {
			sameCol = false
		}
	}
	return sameRow || sameCol
}

// ValidateFleet checks that a freshly placed board holds exactly the
// standard fleet: only Empty and Ship cells, straight ships whose lengths
// match Fleet, and no two ships touching, diagonals included. Any failure
// wraps ErrInvalidPlacement.
func ValidateFleet(b *Board) error {
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			if s := b.At(x, y); s != Empty && s != Ship {
				return fmt.Errorf("%w: cell (%d,%d) is %s before battle", ErrInvalidPlacement, x, y, s)
			}
		}
	}
	if n := b.Count(Ship); n != FleetCells {
		return fmt.Errorf("%w: expected %d ship cells, got %d", ErrInvalidPlacement, FleetCells, n)
	}

	ships := Ships(b)
	owner := make(map[Coord]int)
	sizes := make([]int, 0, len(ships))
	for i, ship := range ships {
		if !straight(ship) {
			return fmt.Errorf("%w: ship at (%d,%d) is not a straight line", ErrInvalidPlacement, ship[0].X, ship[0].Y)
		}
		for _, c := range ship {
			owner[c] = i
		}
		sizes = append(sizes, len(ship))
	}

	want := slices.Clone(Fleet)
	slices.Sort(want)
	slices.Sort(sizes)
	if !slices.Equal(want, sizes) {
		return fmt.Errorf("%w: ship lengths %v do not match fleet %v", ErrInvalidPlacement, sizes, want)
	}

	for c, id := range owner {
		for _, d := range around {
			n := Coord{X: c.X + d.X, Y: c.Y + d.Y}
			if other, ok := owner[n]; ok && other != id {
				return fmt.Errorf("%w: ships touch at (%d,%d) and (%d,%d)", ErrInvalidPlacement, c.X, c.Y, n.X, n.Y)
			}
		}
	}
	return nil
}

// RandomFleet builds a valid board by dropping each ship of Fleet at random
// positions until CanPlace accepts it. The standard fleet always fits on an
// empty board, so a restart only happens after an unlucky early layout.
func RandomFleet(rng *rand.Rand) Board {
	const maxAttempts = 1000
	for {
		var b Board
		ok := true
		for _, length := range Fleet {
			placed := false
			for attempt := 0; attempt < maxAttempts; attempt++ {
				x, y := rng.IntN(Size), rng.IntN(Size)
				vertical := rng.IntN(2) == 1
				if CanPlace(&b, x, y, length, vertical) {
					Place(&b, x, y, length, vertical)
					placed = true
					break
				}
			}
			if !placed {
				ok = false
				break
			}
		}
		if ok {
			return b
		}
	}
}
