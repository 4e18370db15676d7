package grid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/calder-hayes/skirmish/internal/game/grid"
)

func pos(x, y int) grid.Position { return grid.Position{X: x, Y: y} }

// TestSteps_Chebyshev: diagonals cost the same as orthogonals.
func TestSteps_Chebyshev(t *testing.T) {
	assert.Equal(t, 0, grid.Steps(pos(2, 2), pos(2, 2)))
	assert.Equal(t, 6, grid.Steps(pos(0, 0), pos(6, 0)))
	assert.Equal(t, 6, grid.Steps(pos(0, 0), pos(6, 6)))
	assert.Equal(t, 6, grid.Steps(pos(0, 0), pos(4, 6)))
}

// TestSteps_Properties: distance is symmetric and zero on the diagonal.
func TestSteps_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		coord := rapid.IntRange(-100, 100)
		a := pos(coord.Draw(rt, "ax"), coord.Draw(rt, "ay"))
		b := pos(coord.Draw(rt, "bx"), coord.Draw(rt, "by"))

		assert.Equal(rt, grid.Steps(a, b), grid.Steps(b, a), "symmetry")
		assert.Equal(rt, 0, grid.Steps(a, a), "identity")
		assert.GreaterOrEqual(rt, grid.Steps(a, b), 0, "non-negative")
	})
}

func TestDistance_Scaled(t *testing.T) {
	assert.Equal(t, 30, grid.Distance(pos(0, 0), pos(6, 0), 5))
	assert.Panics(t, func() { grid.Distance(pos(0, 0), pos(1, 0), 0) })
}

// TestLine_ExcludesEndpoints: neither src nor dst appears in the rasterized
// interior path.
func TestLine_ExcludesEndpoints(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		coord := rapid.IntRange(-20, 20)
		src := pos(coord.Draw(rt, "sx"), coord.Draw(rt, "sy"))
		dst := pos(coord.Draw(rt, "dx"), coord.Draw(rt, "dy"))

		for _, cell := range grid.Line(src, dst) {
			assert.NotEqual(rt, src, cell, "line must exclude the source")
			assert.NotEqual(rt, dst, cell, "line must exclude the target")
		}
	})
}

func TestLine_StraightAndDiagonal(t *testing.T) {
	require.Equal(t,
		[]grid.Position{pos(1, 0), pos(2, 0), pos(3, 0)},
		grid.Line(pos(0, 0), pos(4, 0)))
	require.Equal(t,
		[]grid.Position{pos(1, 1), pos(2, 2)},
		grid.Line(pos(0, 0), pos(3, 3)))
	assert.Empty(t, grid.Line(pos(0, 0), pos(1, 1)), "adjacent cells have no interior path")
	assert.Empty(t, grid.Line(pos(5, 5), pos(5, 5)), "degenerate line is empty")
}

func TestLineOfEffect_ReportsNearestBlocker(t *testing.T) {
	obstacles := map[grid.Position]bool{
		pos(2, 0): true,
		pos(3, 0): true,
	}
	clear, at := grid.LineOfEffect(pos(0, 0), pos(5, 0), obstacles)
	require.False(t, clear)
	assert.Equal(t, pos(2, 0), at, "nearest blocking cell to the source wins")

	clear, _ = grid.LineOfEffect(pos(0, 1), pos(5, 1), obstacles)
	assert.True(t, clear)
}

func TestLineOfEffect_ObstacleOnEndpointIgnored(t *testing.T) {
	obstacles := map[grid.Position]bool{pos(0, 0): true, pos(4, 0): true}
	clear, _ := grid.LineOfEffect(pos(0, 0), pos(4, 0), obstacles)
	assert.True(t, clear, "occupied endpoints do not block the path between them")
}
