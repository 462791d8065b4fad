// Package board implements the authoritative 10x10 grid used by each player.
//
// The package provides:
//   - Cell states and their wire values (0 empty, 1 ship, 2 miss, 3 hit, 4 sunk)
//   - Placement legality (CanPlace) and the unchecked Place primitive
//   - Shot resolution with duplicate-shot rejection
//   - Fleet validation for boards submitted by clients
//   - Sunk ship detection by flood fill, with halo computation
//   - Random fleet generation and a compact text form for logs and tools
//
// Ships are never stored as entities. Because ships may not touch, even
// diagonally, every orthogonally connected group of ship cells is exactly one
// ship, so ship extent is recomputed from the grid whenever it is needed.
//
// Usage:
//
//	var b board.Board
//	if board.CanPlace(&b, 2, 5, 3, false) {
//		board.Place(&b, 2, 5, 3, false)
//	}
//
//	hit, err := board.ResolveShot(&b, 2, 5)
//	if errors.Is(err, board.ErrDuplicateShot) {
//		// ignore
//	}
//	if hit {
//		if r := board.DetectSunk(&b, board.Coord{X: 2, Y: 5}); r.IsSunk {
//			board.ApplySunk(&b, r)
//		}
//	}
package board
