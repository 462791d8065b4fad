package board

import (
	"fmt"
	"strings"
)

var cellRunes = map[Cell]byte{
	Empty: '.',
	Ship:  '#',
	Miss:  'o',
	Hit:   'x',
	Sunk:  '*',
}

// String renders the board one row per line using . # o x * for
// empty, ship, miss, hit and sunk.
func (b *Board) String() string {
	var sb strings.Builder
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			sb.WriteByte(cellRunes[b[y][x]])
		}
		if y < Size-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Parse reads the textual form produced by String.
func Parse(lines ...string) (Board, error) {
	var b Board
	if len(lines) != Size {
		return b, fmt.Errorf("%w: expected %d lines, got %d", ErrMalformedBoard, Size, len(lines))
	}
	for y, line := range lines {
		if len(line) != Size {
			return b, fmt.Errorf("%w: line %d has %d characters, expected %d", ErrMalformedBoard, y, len(line), Size)
		}
		for x := 0; x < Size; x++ {
			c, ok := parseRune(line[x])
			if !ok {
				return b, fmt.Errorf("%w: unknown character %q at (%d,%d)", ErrMalformedBoard, line[x], x, y)
			}
			b[y][x] = c
		}
	}
	return b, nil
}

func parseRune(r byte) (Cell, bool) {
	for c, cr := range cellRunes {
		if cr == r {
			return c, true
		}
	}
	return Empty, false
}
