// Package grid provides the spatial primitives for range and line-of-effect
// decisions: square-grid positions, Chebyshev distance, and integer line
// rasterization between cells.
package grid

// Position is one cell on the encounter grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Steps returns the number of grid steps between a and b under Chebyshev
// distance: the larger of the absolute axis deltas. Diagonal movement costs
// the same as orthogonal.
//
// Postcondition: Steps(a, b) == Steps(b, a) and Steps(a, a) == 0.
func Steps(a, b Position) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Distance returns the distance between a and b in distance units, given the
// per-square distance constant.
//
// Precondition: unitsPerSquare > 0.
func Distance(a, b Position, unitsPerSquare int) int {
	if unitsPerSquare <= 0 {
		panic("grid: Distance called with unitsPerSquare <= 0")
	}
	return Steps(a, b) * unitsPerSquare
}

// Line rasterizes the cells between src and dst using Bresenham's algorithm,
// excluding both endpoints. Cells are returned in order from src to dst.
func Line(src, dst Position) []Position {
	var cells []Position

	dx := abs(dst.X - src.X)
	dy := -abs(dst.Y - src.Y)
	sx := sign(dst.X - src.X)
	sy := sign(dst.Y - src.Y)
	err := dx + dy

	x, y := src.X, src.Y
	for {
		if x == dst.X && y == dst.Y {
			break
		}
		if x != src.X || y != src.Y {
			cells = append(cells, Position{X: x, Y: y})
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
	return cells
}

// LineOfEffect reports whether the interior path from src to dst is free of
// obstacles. When blocked, it returns the blocking cell nearest to src.
func LineOfEffect(src, dst Position, obstacles map[Position]bool) (clear bool, blockedAt Position) {
	for _, cell := range Line(src, dst) {
		if obstacles[cell] {
			return false, cell
		}
	}
	return true, Position{}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
