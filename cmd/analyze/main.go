// Command analyze prints quick, human-readable summaries of board files: the
// ships found and their damage, shots fired, accuracy, and which standard
// fleet lengths are missing or surplus. Files use the same JSON shapes the
// validate command accepts.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/wricardo/mcp-training/seabattle/game/board"
	"github.com/wricardo/mcp-training/seabattle/validate"
)

// ShipReport describes one ship found on a board.
type ShipReport struct {
	Origin board.Coord
	Length int
	Hits   int
	Sunk   bool
}

// Analysis is the summary of a single board.
type Analysis struct {
	Ships     []ShipReport
	Shots     int
	Hits      int
	Remaining int
	Missing   []int
	Surplus   []int
}

// Accuracy returns hits per shot as a percentage, 0 when nothing was fired.
func (a Analysis) Accuracy() float64 {
	if a.Shots == 0 {
		return 0
	}
	return float64(a.Hits) * 100 / float64(a.Shots)
}

func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: analyze FILE...")
		os.Exit(2)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		if err := analyzeFile(os.Stdout, file); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func analyzeFile(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	b, err := validate.Decode(data)
	if err != nil {
		return fmt.Errorf("parsing board: %w", err)
	}
	printAnalysis(w, analyze(&b))
	return nil
}

func analyze(b *board.Board) Analysis {
	a := Analysis{
		Shots:     b.Count(board.Miss, board.Hit, board.Sunk),
		Hits:      b.Count(board.Hit, board.Sunk),
		Remaining: b.Remaining(),
	}

	var lengths []int
	for _, cells := range board.Vessels(b) {
		r := ShipReport{Origin: cells[0], Length: len(cells), Sunk: true}
		for _, c := range cells {
			switch b.At(c.X, c.Y) {
			case board.Hit, board.Sunk:
				r.Hits++
			}
			if b.At(c.X, c.Y) != board.Sunk {
				r.Sunk = false
			}
		}
		a.Ships = append(a.Ships, r)
		lengths = append(lengths, r.Length)
	}

	a.Missing, a.Surplus = diffLengths(board.Fleet, lengths)
	return a
}

// diffLengths compares two multisets of ship lengths.
func diffLengths(want, got []int) (missing, surplus []int) {
	counts := make(map[int]int)
	for _, l := range want {
		counts[l]++
	}
	for _, l := range got {
		counts[l]--
	}
	keys := make([]int, 0, len(counts))
	for l := range counts {
		keys = append(keys, l)
	}
	slices.Sort(keys)
	for _, l := range keys {
		for n := counts[l]; n > 0; n-- {
			missing = append(missing, l)
		}
		for n := counts[l]; n < 0; n++ {
			surplus = append(surplus, l)
		}
	}
	return missing, surplus
}

func printAnalysis(w io.Writer, a Analysis) {
	fmt.Fprintf(w, "Ships: %d\n", len(a.Ships))
	for _, s := range a.Ships {
		status := "afloat"
		switch {
		case s.Sunk:
			status = "sunk"
		case s.Hits > 0:
			status = fmt.Sprintf("damaged %d/%d", s.Hits, s.Length)
		}
		fmt.Fprintf(w, "   Length %d at (%d, %d): %s\n", s.Length, s.Origin.X, s.Origin.Y, status)
	}
	fmt.Fprintf(w, "Shots Fired: %d\n", a.Shots)
	fmt.Fprintf(w, "Accuracy: %.1f%%\n", a.Accuracy())
	fmt.Fprintf(w, "Remaining Ship Cells: %d\n", a.Remaining)

	if len(a.Missing) == 0 && len(a.Surplus) == 0 {
		fmt.Fprintln(w, "✅ Ship lengths match the standard fleet")
		return
	}
	if len(a.Missing) > 0 {
		fmt.Fprintf(w, "⚠️  Missing ships of length: %v\n", a.Missing)
	}
	if len(a.Surplus) > 0 {
		fmt.Fprintf(w, "⚠️  Extra ships of length: %v\n", a.Surplus)
	}
}
