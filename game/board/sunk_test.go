package board

import (
	"reflect"
	"testing"
)

func TestDetectSunk_SingleCellCorner(t *testing.T) {
	var b Board
	b.Set(0, 0, Ship)

	hit, err := ResolveShot(&b, 0, 0)
	if err != nil || !hit {
		t.Fatalf("Expected hit, got hit=%v err=%v", hit, err)
	}

	r := DetectSunk(&b, Coord{X: 0, Y: 0})
	if !r.IsSunk {
		t.Fatal("Expected single-cell ship to be sunk")
	}
	if want := []Coord{{0, 0}}; !reflect.DeepEqual(r.ShipCells, want) {
		t.Errorf("Expected ship cells %v, got %v", want, r.ShipCells)
	}
	wantHalo := []Coord{{1, 0}, {0, 1}, {1, 1}}
	if !reflect.DeepEqual(r.HaloCells, wantHalo) {
		t.Errorf("Expected halo %v, got %v", wantHalo, r.HaloCells)
	}

	ApplySunk(&b, r)
	if b.At(0, 0) != Sunk {
		t.Errorf("Expected (0,0) sunk, got %s", b.At(0, 0))
	}
	for _, c := range wantHalo {
		if b.At(c.X, c.Y) != Miss {
			t.Errorf("Expected halo cell %v to become miss, got %s", c, b.At(c.X, c.Y))
		}
	}
}

func TestDetectSunk_MultiCellShip(t *testing.T) {
	var b Board
	Place(&b, 2, 5, 3, false)

	for _, x := range []int{2, 3} {
		if _, err := ResolveShot(&b, x, 5); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		r := DetectSunk(&b, Coord{X: x, Y: 5})
		if r.IsSunk {
			t.Errorf("Ship should not be sunk after hitting (%d,5)", x)
		}
		if len(r.ShipCells) != 0 || len(r.HaloCells) != 0 {
			t.Errorf("Expected empty cells for a floating ship, got %v / %v", r.ShipCells, r.HaloCells)
		}
	}

	if _, err := ResolveShot(&b, 4, 5); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	r := DetectSunk(&b, Coord{X: 4, Y: 5})
	if !r.IsSunk {
		t.Fatal("Expected ship to be sunk after third hit")
	}
	wantShip := []Coord{{2, 5}, {3, 5}, {4, 5}}
	if !reflect.DeepEqual(r.ShipCells, wantShip) {
		t.Errorf("Expected ship cells %v, got %v", wantShip, r.ShipCells)
	}
	if len(r.HaloCells) != 12 {
		t.Errorf("Expected 12 halo cells around a horizontal 3-ship, got %d: %v", len(r.HaloCells), r.HaloCells)
	}
}

func TestApplySunk_LeavesResolvedHaloCells(t *testing.T) {
	var b Board
	Place(&b, 4, 4, 2, true)
	b.Set(3, 3, Miss)

	ResolveShot(&b, 4, 4)
	ResolveShot(&b, 4, 5)
	r := DetectSunk(&b, Coord{X: 4, Y: 5})
	if !r.IsSunk {
		t.Fatal("Expected ship to be sunk")
	}
	ApplySunk(&b, r)

	if b.At(3, 3) != Miss {
		t.Errorf("Existing miss should stay a miss, got %s", b.At(3, 3))
	}
	for _, c := range r.HaloCells {
		if b.At(c.X, c.Y) != Miss {
			t.Errorf("Expected halo %v to be miss, got %s", c, b.At(c.X, c.Y))
		}
	}
	if got := b.Count(Sunk); got != 2 {
		t.Errorf("Expected 2 sunk cells, got %d", got)
	}
}

func TestDetectSunk_NotAHit(t *testing.T) {
	var b Board
	if r := DetectSunk(&b, Coord{X: 1, Y: 1}); r.IsSunk {
		t.Error("Empty cell must never report sunk")
	}
	if r := DetectSunk(&b, Coord{X: -1, Y: 1}); r.IsSunk {
		t.Error("Out of bounds coordinate must never report sunk")
	}
}
