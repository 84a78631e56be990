// Package hub formulates the single-allocation hub-location problem as a
// MILP and reads hub decisions back out of an engine result.
package hub

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Instance is an immutable problem input over nodes 0..Size()-1.
type Instance struct {
	size      int
	flow      *mat.Dense
	cost      *mat.Dense
	fixedCost []float64
	alpha     float64

	outbound []float64
	inbound  []float64
}

// NewInstance validates the data and precomputes the aggregate demand of
// every node. flow[i][j] is the demand from i to j, cost[i][j] the unit
// transport cost, fixedCost[k] the cost of opening a hub at k and alpha the
// inter-hub discount factor.
func NewInstance(flow, cost [][]float64, fixedCost []float64, alpha float64) (*Instance, error) {
	n := len(flow)
	if n == 0 {
		return nil, malformed("instance has no nodes")
	}
	if err := checkSquare("flow", flow, n); err != nil {
		return nil, err
	}
	if err := checkSquare("cost", cost, n); err != nil {
		return nil, err
	}
	if len(fixedCost) != n {
		return nil, malformed(fmt.Sprintf("got %d fixed costs for %d nodes", len(fixedCost), n))
	}
	for k, f := range fixedCost {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, malformed(fmt.Sprintf("fixed cost of node %d is not finite", k))
		}
	}
	if !(alpha > 0 && alpha <= 1) {
		return nil, malformed(fmt.Sprintf("alpha %g outside (0, 1]", alpha))
	}

	inst := &Instance{
		size:      n,
		flow:      dense(flow),
		cost:      dense(cost),
		fixedCost: append([]float64(nil), fixedCost...),
		alpha:     alpha,
		outbound:  make([]float64, n),
		inbound:   make([]float64, n),
	}
	for i := 0; i < n; i++ {
		inst.outbound[i] = mat.Sum(inst.flow.RowView(i))
		inst.inbound[i] = mat.Sum(inst.flow.ColView(i))
	}
	return inst, nil
}

func checkSquare(name string, m [][]float64, n int) error {
	if len(m) != n {
		return malformed(fmt.Sprintf("%s matrix has %d rows, want %d", name, len(m), n))
	}
	for i, row := range m {
		if len(row) != n {
			return malformed(fmt.Sprintf("%s row %d has %d entries, want %d", name, i, len(row), n))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return malformed(fmt.Sprintf("%s[%d][%d] = %g is not a finite non-negative number", name, i, j, v))
			}
		}
	}
	return nil
}

func dense(m [][]float64) *mat.Dense {
	n := len(m)
	data := make([]float64, 0, n*n)
	for _, row := range m {
		data = append(data, row...)
	}
	return mat.NewDense(n, n, data)
}

func (in *Instance) Size() int { return in.size }

func (in *Instance) Flow(i, j int) float64 { return in.flow.At(i, j) }

func (in *Instance) Cost(i, j int) float64 { return in.cost.At(i, j) }

func (in *Instance) FixedCost(k int) float64 { return in.fixedCost[k] }

func (in *Instance) Alpha() float64 { return in.alpha }

// Outbound is O_i, the total flow originating at node i.
func (in *Instance) Outbound(i int) float64 { return in.outbound[i] }

// Inbound is D_i, the total flow destined to node i.
func (in *Instance) Inbound(i int) float64 { return in.inbound[i] }

// Symmetric reports whether flow[i][j] == flow[j][i] for every pair.
func (in *Instance) Symmetric() bool {
	return mat.Equal(in.flow, in.flow.T())
}

// Permute relabels the nodes: node i of the result is node perm[i] of in.
func (in *Instance) Permute(perm []int) (*Instance, error) {
	if len(perm) != in.size {
		return nil, errors.Errorf("hub: permutation has %d entries for %d nodes", len(perm), in.size)
	}
	seen := make([]bool, in.size)
	for _, p := range perm {
		if p < 0 || p >= in.size || seen[p] {
			return nil, errors.Errorf("hub: %v is not a permutation", perm)
		}
		seen[p] = true
	}
	flow := make([][]float64, in.size)
	cost := make([][]float64, in.size)
	fixed := make([]float64, in.size)
	for i := range flow {
		flow[i] = make([]float64, in.size)
		cost[i] = make([]float64, in.size)
		for j := range flow[i] {
			flow[i][j] = in.flow.At(perm[i], perm[j])
			cost[i][j] = in.cost.At(perm[i], perm[j])
		}
		fixed[i] = in.fixedCost[perm[i]]
	}
	return NewInstance(flow, cost, fixed, in.alpha)
}
