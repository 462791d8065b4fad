package board

import "sort"

var (
	orthogonal = [4]Coord{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}
	around     = [8]Coord{
		{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
		{X: -1, Y: 0}, {X: 1, Y: 0},
		{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
	}
)

// SunkResult describes the outcome of sunk detection for a single hit.
type SunkResult struct {
	IsSunk    bool    `json:"isSunk"`
	ShipCells []Coord `json:"shipCells"`
	HaloCells []Coord `json:"haloCells"`
}

// component collects the orthogonally connected cells reachable from start
// whose state satisfies follow. The start cell itself must satisfy follow.
func component(b *Board, start Coord, follow func(Cell) bool) []Coord {
	if !InBounds(start.X, start.Y) || !follow(b.At(start.X, start.Y)) {
		return nil
	}
	seen := map[Coord]bool{start: true}
	queue := []Coord{start}
	var out []Coord
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		out = append(out, c)
		for _, d := range orthogonal {
			n := Coord{X: c.X + d.X, Y: c.Y + d.Y}
			if !InBounds(n.X, n.Y) || seen[n] || !follow(b.At(n.X, n.Y)) {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	sortCoords(out)
	return out
}

func sortCoords(cs []Coord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Y != cs[j].Y {
			return cs[i].Y < cs[j].Y
		}
		return cs[i].X < cs[j].X
	})
}

func afloat(c Cell) bool {
	return c == Ship || c == Hit
}

// DetectSunk reports whether the ship containing the just-hit cell at is
// now fully destroyed. When it is, ShipCells holds the whole ship and
// HaloCells the in-bounds cells around it.
func DetectSunk(b *Board, at Coord) SunkResult {
	cells := component(b, at, afloat)
	if len(cells) == 0 {
		return SunkResult{}
	}
	for _, c := range cells {
		if b.At(c.X, c.Y) == Ship {
			return SunkResult{}
		}
	}
	return SunkResult{
		IsSunk:    true,
		ShipCells: cells,
		HaloCells: halo(cells),
	}
}

func halo(ship []Coord) []Coord {
	inShip := make(map[Coord]bool, len(ship))
	for _, c := range ship {
		inShip[c] = true
	}
	seen := make(map[Coord]bool)
	var out []Coord
	for _, c := range ship {
		for _, d := range around {
			n := Coord{X: c.X + d.X, Y: c.Y + d.Y}
			if !InBounds(n.X, n.Y) || inShip[n] || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	sortCoords(out)
	return out
}

// ApplySunk marks a sunk ship's cells as Sunk and closes its halo: halo
// cells that are still Empty become Miss, everything else is left as is.
func ApplySunk(b *Board, r SunkResult) {
	if !r.IsSunk {
		return
	}
	for _, c := range r.ShipCells {
		b.Set(c.X, c.Y, Sunk)
	}
	for _, c := range r.HaloCells {
		if b.At(c.X, c.Y) == Empty {
			b.Set(c.X, c.Y, Miss)
		}
	}
}
