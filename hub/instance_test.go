package hub

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeNodes(t *testing.T) *Instance {
	t.Helper()
	inst, err := NewInstance(
		[][]float64{{0, 10, 5}, {10, 0, 8}, {5, 8, 0}},
		[][]float64{{0, 1, 1}, {1, 0, 1}, {1, 1, 0}},
		[]float64{0, 0, 0},
		1,
	)
	require.NoError(t, err)
	return inst
}

func TestNewInstanceAggregates(t *testing.T) {
	inst, err := NewInstance(
		[][]float64{{0, 4, 1}, {2, 0, 6}, {3, 0, 0}},
		[][]float64{{0, 2, 3}, {2, 0, 4}, {3, 4, 0}},
		[]float64{10, 12, 9},
		0.5,
	)
	require.NoError(t, err)

	assert.Equal(t, 3, inst.Size())
	assert.Equal(t, []float64{5, 8, 3}, []float64{inst.Outbound(0), inst.Outbound(1), inst.Outbound(2)})
	assert.Equal(t, []float64{5, 4, 7}, []float64{inst.Inbound(0), inst.Inbound(1), inst.Inbound(2)})
	assert.Equal(t, 4.0, inst.Cost(1, 2))
	assert.Equal(t, 12.0, inst.FixedCost(1))
	assert.Equal(t, 0.5, inst.Alpha())
	assert.False(t, inst.Symmetric())
	assert.True(t, threeNodes(t).Symmetric())
}

func TestNewInstanceRejects(t *testing.T) {
	square := [][]float64{{0, 1}, {1, 0}}
	tests := []struct {
		name  string
		flow  [][]float64
		cost  [][]float64
		fixed []float64
		alpha float64
	}{
		{"empty", nil, nil, nil, 1},
		{"ragged flow", [][]float64{{0, 1}, {1}}, square, []float64{1, 1}, 1},
		{"short cost", square, [][]float64{{0, 1}}, []float64{1, 1}, 1},
		{"negative flow", [][]float64{{0, -1}, {1, 0}}, square, []float64{1, 1}, 1},
		{"nan cost", square, [][]float64{{0, math.NaN()}, {1, 0}}, []float64{1, 1}, 1},
		{"fixed cost count", square, square, []float64{1}, 1},
		{"infinite fixed cost", square, square, []float64{1, math.Inf(1)}, 1},
		{"zero alpha", square, square, []float64{1, 1}, 0},
		{"alpha above one", square, square, []float64{1, 1}, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInstance(tt.flow, tt.cost, tt.fixed, tt.alpha)
			var me *MalformedInputError
			require.ErrorAs(t, err, &me)
		})
	}
}

func TestNewInstanceCopiesInput(t *testing.T) {
	flow := [][]float64{{0, 1}, {2, 0}}
	fixed := []float64{3, 4}
	inst, err := NewInstance(flow, [][]float64{{0, 1}, {1, 0}}, fixed, 1)
	require.NoError(t, err)

	flow[0][1] = 100
	fixed[0] = 100
	assert.Equal(t, 1.0, inst.Flow(0, 1))
	assert.Equal(t, 3.0, inst.FixedCost(0))
}

func TestPermute(t *testing.T) {
	inst, err := NewInstance(
		[][]float64{{0, 4, 1}, {2, 0, 6}, {3, 0, 0}},
		[][]float64{{0, 2, 3}, {2, 0, 4}, {3, 4, 0}},
		[]float64{10, 12, 9},
		0.5,
	)
	require.NoError(t, err)

	p, err := inst.Permute([]int{2, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, inst.Flow(2, 0), p.Flow(0, 1))
	assert.Equal(t, inst.Cost(0, 1), p.Cost(1, 2))
	assert.Equal(t, 9.0, p.FixedCost(0))
	assert.Equal(t, inst.Outbound(1), p.Outbound(2))

	_, err = inst.Permute([]int{0, 0, 1})
	assert.Error(t, err)
	_, err = inst.Permute([]int{0, 1})
	assert.Error(t, err)
}
