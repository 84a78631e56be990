package hub

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"example.com/your_project/hub-location/milp"
)

// HubThreshold binarizes z[k][k]: k is an open hub when its value is at
// least this.
const HubThreshold = 0.9

var (
	// ErrNoSolution means the engine stopped without an incumbent, so there
	// are no variable values to report.
	ErrNoSolution = errors.New("hub: no feasible solution available")
	// ErrInconsistentSolution means the values break single allocation or
	// hub consistency beyond HubThreshold.
	ErrInconsistentSolution = errors.New("hub: inconsistent solution")
)

// Solution is the read-only outcome of a solve.
type Solution struct {
	RunID     string
	Engine    string
	Status    milp.Status
	Objective float64
	// Gap is relative; NaN when the engine cannot tell.
	Gap     float64
	Runtime time.Duration
	Hubs    []int
	// Allocation[i] is the hub node i is assigned to.
	Allocation []int
	Cost       Cost
}

// Optimal reports whether optimality was proven.
func (s *Solution) Optimal() bool { return s.Status == milp.StatusOptimal }

// Extract reads hubs and allocation out of res. It returns an error wrapping
// ErrNoSolution when res carries no incumbent.
func Extract(f *Formulation, res *milp.Result) (*Solution, error) {
	if !res.HasSolution() {
		return nil, errors.Wrapf(ErrNoSolution, "status %s", res.Status)
	}
	n := f.n
	sol := &Solution{
		Status:     res.Status,
		Objective:  res.Objective,
		Gap:        res.Gap,
		Runtime:    res.Runtime,
		Allocation: make([]int, n),
		Cost:       f.Breakdown(res.Values),
	}
	for k := 0; k < n; k++ {
		if res.Value(f.Z(k, k)) >= HubThreshold {
			sol.Hubs = append(sol.Hubs, k)
		}
	}
	for i := 0; i < n; i++ {
		sol.Allocation[i] = -1
		for k := 0; k < n; k++ {
			if res.Value(f.Z(i, k)) < HubThreshold {
				continue
			}
			if sol.Allocation[i] >= 0 {
				return nil, errors.Wrapf(ErrInconsistentSolution, "node %d allocated to hubs %d and %d", i, sol.Allocation[i], k)
			}
			sol.Allocation[i] = k
		}
		if sol.Allocation[i] < 0 {
			return nil, errors.Wrapf(ErrInconsistentSolution, "node %d has no hub", i)
		}
		if hub := sol.Allocation[i]; res.Value(f.Z(hub, hub)) < HubThreshold {
			return nil, errors.Wrapf(ErrInconsistentSolution, "node %d allocated to closed hub %d", i, hub)
		}
	}
	return sol, nil
}

// Solve runs engine on the formulation and extracts the solution. A result
// without incumbent is returned together with an error wrapping
// ErrNoSolution so callers can still report the status.
func Solve(ctx context.Context, f *Formulation, engine milp.Engine, opts milp.SolveOptions, logger *slog.Logger) (*Solution, *milp.Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()
	logger = logger.With("run_id", runID, "engine", engine.Name())
	logger.Info("solving",
		"nodes", f.n,
		"vars", f.Model.NumVars(),
		"constraints", f.Model.NumConstraints(),
		"time_limit", opts.TimeLimit)

	res, err := engine.Solve(ctx, f.Model, opts)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "hub: %s engine", engine.Name())
	}
	logger.Info("solve finished", "status", res.Status, "objective", res.Objective, "runtime", res.Runtime)

	sol, err := Extract(f, res)
	if err != nil {
		return nil, res, err
	}
	sol.RunID = runID
	sol.Engine = engine.Name()
	return sol, res, nil
}
