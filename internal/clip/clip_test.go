package clip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/NestCut/internal/geom"
)

func square(x, y, size float64) geom.Polygon {
	return geom.Polygon{
		{X: x, Y: y}, {X: x + size, Y: y}, {X: x + size, Y: y + size}, {X: x, Y: y + size},
	}
}

func totalArea(polys []geom.Polygon) float64 {
	var sum float64
	for _, p := range polys {
		sum += p.Area()
	}
	return sum
}

func TestUnion_MergesOverlappingSquares(t *testing.T) {
	Init()

	merged, err := Union([]geom.Polygon{square(0, 0, 10), square(5, 0, 10)})

	require.NoError(t, err)
	require.Len(t, merged, 1, "overlapping squares union into one ring")
	assert.InDelta(t, 150.0, totalArea(merged), 0.5, "10x10 plus 10x10 overlapping by 5x10")
}

func TestUnion_KeepsDisjointSquares(t *testing.T) {
	Init()

	merged, err := Union([]geom.Polygon{square(0, 0, 10), square(100, 100, 10)})

	require.NoError(t, err)
	assert.Len(t, merged, 2, "disjoint squares stay separate")
}

func TestDifference_CutsHoleFreeRegion(t *testing.T) {
	Init()

	result, err := Difference(
		[]geom.Polygon{square(0, 0, 100)},
		[]geom.Polygon{square(0, 0, 50)},
	)

	require.NoError(t, err)
	require.NotEmpty(t, result)
	assert.InDelta(t, 7500.0, totalArea(result), 1.0)
}

func TestDifference_FullCoverIsEmpty(t *testing.T) {
	Init()

	result, err := Difference(
		[]geom.Polygon{square(10, 10, 10)},
		[]geom.Polygon{square(0, 0, 100)},
	)

	require.NoError(t, err)
	assert.Empty(t, result, "subject entirely inside clip vanishes")
}

func TestIntersection_Disjoint(t *testing.T) {
	Init()

	result, err := Intersection(
		[]geom.Polygon{square(0, 0, 10)},
		[]geom.Polygon{square(50, 50, 10)},
	)

	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestOffset_ZeroDeltaIsIdentity(t *testing.T) {
	Init()

	input := []geom.Polygon{square(0, 0, 10)}
	result, err := Offset(input, 0)

	require.NoError(t, err)
	assert.Equal(t, input, result)
}

func TestOffset_ExpandGrowsArea(t *testing.T) {
	Init()

	result, err := Offset([]geom.Polygon{square(0, 0, 10)}, 2)

	require.NoError(t, err)
	require.NotEmpty(t, result)
	// A 10x10 square offset by 2 with miter joins becomes 14x14.
	assert.InDelta(t, 196.0, totalArea(result), 1.0)
}

func TestOffset_ContractShrinksArea(t *testing.T) {
	Init()

	result, err := Offset([]geom.Polygon{square(0, 0, 10)}, -2)

	require.NoError(t, err)
	require.NotEmpty(t, result)
	assert.InDelta(t, 36.0, totalArea(result), 1.0, "10x10 contracted by 2 is 6x6")
}

func TestMinkowskiSum_SquarePlusSquare(t *testing.T) {
	Init()

	// Minkowski sum of two axis-aligned squares is a square with summed sides.
	result, err := MinkowskiSum(square(0, 0, 10), square(0, 0, 20), true)

	require.NoError(t, err)
	require.NotEmpty(t, result)

	b := geom.UnionBounds(result)
	assert.InDelta(t, 30.0, b.Width, 0.01)
	assert.InDelta(t, 30.0, b.Height, 0.01)
}

func TestScaleRounding_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, int64(2), int64(roundHalfAway(1.5)))
	assert.Equal(t, int64(-2), int64(roundHalfAway(-1.5)))
	assert.Equal(t, int64(1), int64(roundHalfAway(1.4999)))
	assert.Equal(t, int64(0), int64(roundHalfAway(-0.4999)))
}

func TestDegenerateInput_NoPanic(t *testing.T) {
	Init()

	_, err := Union([]geom.Polygon{{{X: 0, Y: 0}, {X: 1, Y: 1}}})
	assert.NoError(t, err)

	out, err := MinkowskiSum(geom.Polygon{{X: 0, Y: 0}}, square(0, 0, 10), true)
	assert.NoError(t, err)
	assert.Empty(t, out)
}
