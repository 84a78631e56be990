package bnb

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/your_project/hub-location/milp"
)

func TestSimplexTableau(t *testing.T) {
	// min x + y, x + 2y >= 4, 3x + y >= 6 with surplus columns.
	z, x, err := simplexTableau(
		[]float64{1, 1, 0, 0},
		[][]float64{{1, 2, -1, 0}, {3, 1, 0, -1}},
		[]float64{4, 6},
	)
	require.NoError(t, err)
	assert.InDelta(t, 2.8, z, 1e-9)
	assert.InDelta(t, 1.6, x[0], 1e-9)
	assert.InDelta(t, 1.2, x[1], 1e-9)
}

func TestSimplexTableauDegenerateCycle(t *testing.T) {
	// Beale's example cycles under the textbook largest-coefficient rule.
	c := []float64{-0.75, 150, -0.02, 6, 0, 0, 0}
	a := [][]float64{
		{0.25, -60, -0.04, 9, 1, 0, 0},
		{0.5, -90, -0.02, 3, 0, 1, 0},
		{0, 0, 1, 0, 0, 0, 1},
	}
	z, x, err := simplexTableau(c, a, []float64{0, 0, 1})
	require.NoError(t, err)
	assert.InDelta(t, -0.05, z, 1e-9)
	assert.InDelta(t, 0.04, x[0], 1e-9)
	assert.InDelta(t, 1, x[2], 1e-9)
}

func TestSimplexTableauInfeasibleAndUnbounded(t *testing.T) {
	// x + y + s = 1 and x + y - u = 2 cannot both hold.
	_, _, err := simplexTableau(
		[]float64{0, 0, 0, 0},
		[][]float64{{1, 1, 1, 0}, {1, 1, 0, -1}},
		[]float64{1, 2},
	)
	assert.True(t, errors.Is(err, errInfeasible))

	// min -x with x - y = 1.
	_, _, err = simplexTableau([]float64{-1, 0}, [][]float64{{1, -1}}, []float64{1})
	assert.True(t, errors.Is(err, errUnbounded))
}

func TestImpliedByBounds(t *testing.T) {
	inf := 1e300
	tests := []struct {
		name  string
		coef  float64
		sense milp.Sense
		rhs   float64
		lower float64
		upper float64
		want  bool
	}{
		{"x >= 0", 1, milp.GreaterThanOrEqual, 0, 0, inf, true},
		{"x >= 3", 1, milp.GreaterThanOrEqual, 3, 0, inf, false},
		{"-x <= 0", -1, milp.LessThanOrEqual, 0, 0, inf, true},
		{"x <= 1 on a binary", 1, milp.LessThanOrEqual, 1, 0, 1, true},
		{"2x <= 1 on a binary", 2, milp.LessThanOrEqual, 1, 0, 1, false},
		{"-x >= -5", -1, milp.GreaterThanOrEqual, -5, 0, 4, true},
		{"x = 0", 1, milp.Equal, 0, 0, inf, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, impliedByBounds(tt.coef, tt.sense, tt.rhs, tt.lower, tt.upper))
		})
	}
}

func TestSingleton(t *testing.T) {
	assert.Equal(t, 2, singleton([]float64{0, 0, 3}))
	assert.Equal(t, -1, singleton([]float64{1, 0, 3}))
	assert.Equal(t, -1, singleton([]float64{0, 0}))
}
