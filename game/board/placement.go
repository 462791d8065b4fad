package board

// shipCoords lists the cells a ship of the given length would occupy.
func shipCoords(x, y, length int, vertical bool) []Coord {
	coords := make([]Coord, 0, length)
	for i := 0; i < length; i++ {
		if vertical {
			coords = append(coords, Coord{X: x, Y: y + i})
		} else {
			coords = append(coords, Coord{X: x + i, Y: y})
		}
	}
	return coords
}

// CanPlace reports whether a ship of the given length can be placed with its
// first cell at (x, y). Every cell must be on the board and Empty, and no
// cell may touch an occupied cell, diagonals included.
func CanPlace(b *Board, x, y, length int, vertical bool) bool {
	if length <= 0 {
		return false
	}
	for _, c := range shipCoords(x, y, length, vertical) {
		if !InBounds(c.X, c.Y) || b.At(c.X, c.Y) != Empty {
			return false
		}
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := c.X+dx, c.Y+dy
				if InBounds(nx, ny) && b.At(nx, ny) != Empty {
					return false
				}
			}
		}
	}
	return true
}

// Place marks the ship cells as Ship without re-validating; callers check
// CanPlace first.
func Place(b *Board, x, y, length int, vertical bool) {
	for _, c := range shipCoords(x, y, length, vertical) {
		b.Set(c.X, c.Y, Ship)
	}
}

// ResolveShot applies a shot at (x, y). A Ship cell becomes Hit, an Empty
// cell becomes Miss. Already resolved cells are left untouched and
// ErrDuplicateShot is returned.
func ResolveShot(b *Board, x, y int) (hit bool, err error) {
	if !InBounds(x, y) {
		return false, ErrOutOfBounds
	}
	switch b.At(x, y) {
	case Ship:
		b.Set(x, y, Hit)
		return true, nil
	case Empty:
		b.Set(x, y, Miss)
		return false, nil
	default:
		return false, ErrDuplicateShot
	}
}
