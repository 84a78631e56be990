package hub

import (
	"context"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/your_project/hub-location/milp"
	"example.com/your_project/hub-location/milp/bnb"
)

const tol = 1e-6

func solve(t *testing.T, inst *Instance) (*Formulation, *Solution, *milp.Result) {
	t.Helper()
	f, err := Build(inst, BuildOptions{})
	require.NoError(t, err)
	sol, res, err := Solve(context.Background(), f, bnb.New(bnb.DefaultNodeLimit), milp.SolveOptions{TimeLimit: time.Minute}, nil)
	require.NoError(t, err)
	return f, sol, res
}

func TestSolveThreeNodesOpensEveryHub(t *testing.T) {
	_, sol, _ := solve(t, threeNodes(t))

	assert.True(t, sol.Optimal())
	assert.InDelta(t, 46, sol.Objective, tol)
	assert.Equal(t, []int{0, 1, 2}, sol.Hubs)
	assert.Equal(t, []int{0, 1, 2}, sol.Allocation)
	assert.InDelta(t, 0, sol.Gap, tol)
	assert.InDelta(t, 46, sol.Cost.Transport, tol)
	assert.Equal(t, bnb.Name, sol.Engine)
	assert.Len(t, sol.RunID, 36)
}

func TestSolveSingleNode(t *testing.T) {
	inst, err := NewInstance([][]float64{{0}}, [][]float64{{0}}, []float64{7.5}, 1)
	require.NoError(t, err)
	_, sol, _ := solve(t, inst)

	assert.True(t, sol.Optimal())
	assert.InDelta(t, 7.5, sol.Objective, tol)
	assert.Equal(t, []int{0}, sol.Hubs)
	assert.Equal(t, 0.0, sol.Gap)
}

func TestSolveZeroFlowsOpensCheapestHub(t *testing.T) {
	zero := [][]float64{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}
	cost := [][]float64{{0, 2, 3}, {2, 0, 4}, {3, 4, 0}}
	inst, err := NewInstance(zero, cost, []float64{5, 3, 8}, 0.5)
	require.NoError(t, err)
	_, sol, _ := solve(t, inst)

	assert.True(t, sol.Optimal())
	assert.InDelta(t, 3, sol.Objective, tol)
	assert.Equal(t, []int{1}, sol.Hubs)
	assert.Equal(t, []int{1, 1, 1}, sol.Allocation)
}

func asymmetric(t *testing.T) *Instance {
	t.Helper()
	inst, err := NewInstance(
		[][]float64{{0, 4, 1}, {2, 0, 6}, {3, 0, 0}},
		[][]float64{{0, 2, 3}, {2, 0, 4}, {3, 4, 0}},
		[]float64{10, 12, 9},
		0.5,
	)
	require.NoError(t, err)
	return inst
}

func TestSolveAsymmetricFlowsIsFeasible(t *testing.T) {
	f, sol, res := solve(t, asymmetric(t))

	require.NoError(t, f.Model.Check(res.Values, tol))
	assert.InDelta(t, 55, sol.Objective, tol)
	assert.InDelta(t, f.Model.Evaluate(res.Values), sol.Objective, tol)
	assert.InDelta(t, sol.Objective, sol.Cost.Total(), tol)
	require.NotEmpty(t, sol.Hubs)

	n := f.Instance().Size()
	for i := 0; i < n; i++ {
		hub := sol.Allocation[i]
		assert.Contains(t, sol.Hubs, hub)
		for j := i; j < n; j++ {
			var routed float64
			for k := 0; k < n; k++ {
				for m := 0; m < n; m++ {
					routed += res.Value(f.X(i, j, k, m))
				}
			}
			assert.InDelta(t, 1, routed, tol, "pair %d,%d", i, j)
			assert.InDelta(t, 1, res.Value(f.X(i, j, hub, sol.Allocation[j])), tol)
		}
	}
}

// genPermutation orders n random keys, which yields every permutation of
// n nodes.
func genPermutation(n int) gopter.Gen {
	return gen.SliceOfN(n, gen.Float64Range(0, 1)).Map(func(keys []float64) []int {
		perm := make([]int, n)
		for i := range perm {
			perm[i] = i
		}
		sort.SliceStable(perm, func(a, b int) bool { return keys[perm[a]] < keys[perm[b]] })
		return perm
	})
}

func TestSolveObjectiveInvariantUnderRelabelling(t *testing.T) {
	inst := asymmetric(t)
	_, base, _ := solve(t, inst)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 10

	properties := gopter.NewProperties(parameters)
	properties.Property("relabelled instance has the same optimum", prop.ForAll(
		func(perm []int) bool {
			p, err := inst.Permute(perm)
			if err != nil {
				return false
			}
			f, err := Build(p, BuildOptions{})
			if err != nil {
				return false
			}
			sol, _, err := Solve(context.Background(), f, bnb.New(bnb.DefaultNodeLimit), milp.SolveOptions{}, nil)
			if err != nil {
				return false
			}
			return math.Abs(sol.Objective-base.Objective) <= tol && len(sol.Hubs) == len(base.Hubs)
		},
		genPermutation(inst.Size()),
	))
	properties.TestingRun(t)
}

type stubEngine struct{ res *milp.Result }

func (stubEngine) Name() string { return "stub" }

func (s stubEngine) Solve(context.Context, *milp.Model, milp.SolveOptions) (*milp.Result, error) {
	return s.res, nil
}

func TestSolveWithoutIncumbent(t *testing.T) {
	f, err := Build(threeNodes(t), BuildOptions{})
	require.NoError(t, err)

	stub := stubEngine{res: &milp.Result{Status: milp.StatusTimeLimit, Objective: math.NaN(), Gap: math.NaN()}}
	sol, res, err := Solve(context.Background(), f, stub, milp.SolveOptions{}, nil)
	assert.ErrorIs(t, err, ErrNoSolution)
	assert.Nil(t, sol)
	require.NotNil(t, res)
	assert.Equal(t, milp.StatusTimeLimit, res.Status)
}

func TestExtractRejectsInconsistentValues(t *testing.T) {
	f, err := Build(threeNodes(t), BuildOptions{})
	require.NoError(t, err)

	values := make([]float64, f.Model.NumVars())
	values[f.Z(0, 0)] = 1
	values[f.Z(1, 0)] = 1
	values[f.Z(2, 1)] = 1
	_, err = Extract(f, &milp.Result{Status: milp.StatusFeasible, Values: values})
	assert.ErrorIs(t, err, ErrInconsistentSolution)

	values[f.Z(2, 1)] = 0
	values[f.Z(2, 0)] = 1
	values[f.Z(2, 2)] = 1
	_, err = Extract(f, &milp.Result{Status: milp.StatusFeasible, Values: values})
	assert.ErrorIs(t, err, ErrInconsistentSolution)
}
