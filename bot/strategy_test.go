package bot

import (
	"math/rand/v2"
	"testing"

	"github.com/wricardo/mcp-training/seabattle/game/board"
)

// playSolo fires the strategy at b until every ship is sunk and returns the
// number of shots taken.
func playSolo(t *testing.T, s *Strategy, b *board.Board) int {
	t.Helper()
	shots := 0
	for b.Remaining() > 0 {
		at, ok := s.Next()
		if !ok {
			t.Fatalf("Strategy ran out of cells with %d ship cells left\n%s", b.Remaining(), b.String())
		}
		hit, err := board.ResolveShot(b, at.X, at.Y)
		if err != nil {
			t.Fatalf("Strategy fired at resolved cell (%d,%d): %v\n%s", at.X, at.Y, err, b.String())
		}
		shots++
		s.Record(at, hit)
		if !hit {
			continue
		}
		if r := board.DetectSunk(b, at); r.IsSunk {
			board.ApplySunk(b, r)
			s.Sunk(r.ShipCells, r.HaloCells)
		}
	}
	return shots
}

func TestStrategy_SinksEveryFleet(t *testing.T) {
	for seed := uint64(1); seed <= 30; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed+100))
		b := board.RandomFleet(rng)
		shots := playSolo(t, NewStrategy(rng), &b)
		if shots > board.Size*board.Size {
			t.Errorf("Seed %d: took %d shots", seed, shots)
		}
	}
}

func TestStrategy_FollowsLineAfterTwoHits(t *testing.T) {
	s := NewStrategy(rand.New(rand.NewPCG(1, 2)))
	s.Record(board.Coord{X: 4, Y: 4}, true)
	s.Record(board.Coord{X: 5, Y: 4}, true)

	for i := 0; i < 2; i++ {
		at, ok := s.Next()
		if !ok {
			t.Fatal("Expected a target")
		}
		if at.Y != 4 || (at.X != 3 && at.X != 6) {
			t.Errorf("Expected target on row 4 next to the hits, got (%d,%d)", at.X, at.Y)
		}
		s.Record(at, false)
	}
}

func TestStrategy_HuntsParityFirst(t *testing.T) {
	s := NewStrategy(rand.New(rand.NewPCG(7, 7)))
	for i := 0; i < board.Size*board.Size/2; i++ {
		at, ok := s.Next()
		if !ok {
			t.Fatal("Expected a hunt cell")
		}
		if (at.X+at.Y)%2 != 0 {
			t.Fatalf("Shot %d at (%d,%d) left the checkerboard early", i, at.X, at.Y)
		}
		s.Record(at, false)
	}
	at, _ := s.Next()
	if (at.X+at.Y)%2 != 1 {
		t.Errorf("Expected the other parity once the first is exhausted, got (%d,%d)", at.X, at.Y)
	}
}

func TestStrategy_SunkClosesHalo(t *testing.T) {
	s := NewStrategy(rand.New(rand.NewPCG(3, 3)))
	s.Record(board.Coord{X: 0, Y: 0}, true)
	s.Sunk([]board.Coord{{X: 0, Y: 0}}, []board.Coord{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}})

	seen := map[board.Coord]bool{}
	for {
		at, ok := s.Next()
		if !ok {
			break
		}
		if seen[at] {
			t.Fatalf("Cell (%d,%d) offered twice", at.X, at.Y)
		}
		seen[at] = true
		s.Record(at, false)
	}
	if len(seen) != board.Size*board.Size-4 {
		t.Errorf("Expected %d remaining cells, got %d", board.Size*board.Size-4, len(seen))
	}
	for _, c := range []board.Coord{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}} {
		if seen[c] {
			t.Errorf("Closed cell (%d,%d) was offered", c.X, c.Y)
		}
	}
}
