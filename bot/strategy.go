package bot

import (
	"math/rand/v2"

	"github.com/wricardo/mcp-training/seabattle/game/board"
)

// Strategy picks shots against an unseen board. It hunts on a checkerboard
// until it scores a hit, then works the orthogonal neighbours of that hit,
// keeping to the ship's line once two hits agree on it.
type Strategy struct {
	rng     *rand.Rand
	tried   [board.Size][board.Size]bool
	hits    []board.Coord // hits on the ship currently being worked
	targets []board.Coord
}

// NewStrategy returns a strategy drawing hunt shots from rng.
func NewStrategy(rng *rand.Rand) *Strategy {
	return &Strategy{rng: rng}
}

// Next returns the next cell to fire at. ok is false once every cell has
// been tried.
func (s *Strategy) Next() (at board.Coord, ok bool) {
	for len(s.targets) > 0 {
		at, s.targets = s.targets[0], s.targets[1:]
		if !s.tried[at.Y][at.X] {
			return at, true
		}
	}

	// Hunt on the parity that any ship of length two or more must touch,
	// then mop up the rest for single-cell boats.
	for _, parity := range []int{0, 1} {
		var open []board.Coord
		for y := 0; y < board.Size; y++ {
			for x := 0; x < board.Size; x++ {
				if !s.tried[y][x] && (x+y)%2 == parity {
					open = append(open, board.Coord{X: x, Y: y})
				}
			}
		}
		if len(open) > 0 {
			return open[s.rng.IntN(len(open))], true
		}
	}
	return board.Coord{}, false
}

// Record notes the outcome of a shot fired at at.
func (s *Strategy) Record(at board.Coord, hit bool) {
	s.mark(at)
	if !hit {
		return
	}
	s.hits = append(s.hits, at)
	s.retarget()
}

// Sunk closes a destroyed ship and its surrounding cells, which can hold
// nothing else.
func (s *Strategy) Sunk(ship, surround []board.Coord) {
	for _, c := range ship {
		s.mark(c)
	}
	for _, c := range surround {
		s.mark(c)
	}
	s.hits = nil
	s.targets = nil
}

// Skip marks at as tried without an outcome, for shots the server ignored.
func (s *Strategy) Skip(at board.Coord) {
	s.mark(at)
}

func (s *Strategy) mark(at board.Coord) {
	if board.InBounds(at.X, at.Y) {
		s.tried[at.Y][at.X] = true
	}
}

func (s *Strategy) retarget() {
	horizontal, vertical := true, true
	if len(s.hits) > 1 {
		first := s.hits[0]
		for _, h := range s.hits[1:] {
			if h.Y != first.Y {
				horizontal = false
			}
			if h.X != first.X {
				vertical = false
			}
		}
	}

	s.targets = s.targets[:0]
	for _, h := range s.hits {
		if horizontal {
			s.push(board.Coord{X: h.X - 1, Y: h.Y})
			s.push(board.Coord{X: h.X + 1, Y: h.Y})
		}
		if vertical {
			s.push(board.Coord{X: h.X, Y: h.Y - 1})
			s.push(board.Coord{X: h.X, Y: h.Y + 1})
		}
	}
}

func (s *Strategy) push(c board.Coord) {
	if board.InBounds(c.X, c.Y) && !s.tried[c.Y][c.X] {
		s.targets = append(s.targets, c)
	}
}
