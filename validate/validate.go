// Package validate checks battleship fleet layouts stored as JSON files.
// It reports every problem it finds rather than stopping at the first:
//   - Board shape (10x10) and cell values
//   - Total ship cell count
//   - Straightness and length of each ship against the standard fleet
//   - Ships touching each other, diagonals included
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/wricardo/mcp-training/seabattle/game/board"
)

// ValidationResult captures the outcome of validating a single board.
// If Valid is true, Errors contains informational messages prefixed with a
// check mark; otherwise it accumulates the validation errors that were found.
type ValidationResult struct {
	File   string   `json:"file,omitempty"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Decode reads a board from JSON. It accepts either {"board": GRID} or a
// bare GRID, where GRID is a 10x10 array of cell values or ten strings in
// the text notation ("#" ship, "." water).
func Decode(data []byte) (board.Board, error) {
	var wrapped struct {
		Board json.RawMessage `json:"board"`
	}
	raw := json.RawMessage(data)
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Board) > 0 {
		raw = wrapped.Board
	}

	var rows [][]int
	if err := json.Unmarshal(raw, &rows); err == nil {
		return board.FromRows(rows)
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return board.Parse(lines...)
	}
	return board.Board{}, errors.New("expected a 10x10 array of numbers or 10 strings")
}

// ValidateFile loads and validates a single board JSON file.
func ValidateFile(path string) ValidationResult {
	result := ValidationResult{File: filepath.Base(path), Valid: true, Errors: []string{}}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}
	b, err := Decode(data)
	if err != nil {
		result.fail("Invalid board: %v", err)
		return result
	}

	checked := ValidateBoard(&b)
	checked.File = result.File
	return checked
}

// ValidateBoard runs every fleet check on b.
func ValidateBoard(b *board.Board) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []string{}}

	for y := 0; y < board.Size; y++ {
		for x := 0; x < board.Size; x++ {
			if c := b.At(x, y); c != board.Empty && c != board.Ship {
				result.fail("Cell (%d,%d) is %s; only water and ship cells are allowed before battle", x, y, c)
			}
		}
	}

	if n := b.Count(board.Ship); n != board.FleetCells {
		result.fail("Expected %d ship cells, got %d", board.FleetCells, n)
	}

	ships := board.Ships(b)
	owner := make(map[board.Coord]int)
	sizes := make([]int, 0, len(ships))
	for i, ship := range ships {
		if !isStraight(ship) {
			result.fail("Ship at (%d,%d) is not a straight line", ship[0].X, ship[0].Y)
		}
		for _, c := range ship {
			owner[c] = i
		}
		sizes = append(sizes, len(ship))
	}

	want := slices.Clone(board.Fleet)
	slices.Sort(want)
	got := slices.Clone(sizes)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		result.fail("Ship lengths %v do not match fleet %v", got, want)
	}

	for _, pair := range diagonalContacts(owner) {
		result.fail("Ships touch at (%d,%d) and (%d,%d)", pair[0].X, pair[0].Y, pair[1].X, pair[1].Y)
	}

	// Anything the checks above missed still fails here.
	if result.Valid {
		if err := board.ValidateFleet(b); err != nil {
			result.fail("%v", err)
		}
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Ships: %d", len(ships)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Ship cells: %d", board.FleetCells))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Lengths: %v", got))
	}
	return result
}

func isStraight(ship []board.Coord) bool {
	sameRow, sameCol := true, true
	for _, c := range ship[1:] {
		sameRow = sameRow && c.Y == ship[0].Y
		sameCol = sameCol && c.X == ship[0].X
	}
	return sameRow || sameCol
}

// diagonalContacts returns each pair of cells from different ships that
// touch at a corner, reported once in row-major order. Orthogonal contact
// cannot occur since such cells would belong to the same ship.
func diagonalContacts(owner map[board.Coord]int) [][2]board.Coord {
	var pairs [][2]board.Coord
	for y := 0; y < board.Size; y++ {
		for x := 0; x < board.Size; x++ {
			c := board.Coord{X: x, Y: y}
			id, ok := owner[c]
			if !ok {
				continue
			}
			for _, dx := range []int{-1, 1} {
				n := board.Coord{X: x + dx, Y: y + 1}
				if other, ok := owner[n]; ok && other != id {
					pairs = append(pairs, [2]board.Coord{c, n})
				}
			}
		}
	}
	return pairs
}

// Report prints results in a human readable form and reports whether all
// of them were valid.
func Report(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		fmt.Fprintln(w, "❌ INVALID")
		allValid = false
		for _, err := range result.Errors {
			if !strings.HasPrefix(err, "✓") {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All boards are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some boards have errors")
	}
	return allValid
}
