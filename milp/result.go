package milp

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
)

// Status is the terminal state reported by an engine.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	// StatusFeasible means an incumbent exists but optimality was not proven.
	StatusFeasible
	StatusInfeasible
	StatusUnbounded
	StatusTimeLimit
	StatusNodeLimit
	StatusInterrupted
	StatusNumericalFailure
	// StatusNoSolution means the engine stopped without an incumbent and
	// without a proof of infeasibility.
	StatusNoSolution
)

var statusNames = map[Status]string{
	StatusUnknown:          "unknown",
	StatusOptimal:          "optimal",
	StatusFeasible:         "feasible",
	StatusInfeasible:       "infeasible",
	StatusUnbounded:        "unbounded",
	StatusTimeLimit:        "time_limit",
	StatusNodeLimit:        "node_limit",
	StatusInterrupted:      "interrupted",
	StatusNumericalFailure: "numerical_failure",
	StatusNoSolution:       "no_solution",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is what an engine returns after a terminal solve state.
type Result struct {
	Status    Status
	Objective float64
	// Bound is the best proven bound on the objective, NaN if unknown.
	Bound float64
	// Gap is the relative optimality gap as a fraction, NaN if unknown.
	// Engines that expose no bound report the configured
	// SolveOptions.RelativeGap for an optimal result: an upper limit on the
	// achieved gap, not a measurement.
	Gap     float64
	Runtime time.Duration
	// Values holds one value per model variable when an incumbent exists,
	// nil otherwise.
	Values []float64
}

// HasSolution reports whether variable values can be read.
func (r *Result) HasSolution() bool {
	return r != nil && r.Values != nil
}

// Value returns the value of v in the incumbent.
func (r *Result) Value(v Var) float64 {
	return r.Values[v]
}

// RelativeGap is |objective - bound| / |objective|, 0 when both agree.
func RelativeGap(objective, bound float64) float64 {
	if math.IsNaN(bound) || math.IsInf(bound, 0) {
		return math.NaN()
	}
	diff := math.Abs(objective - bound)
	if diff <= 1e-9*math.Max(1, math.Abs(objective)) {
		return 0
	}
	if objective == 0 {
		return math.Inf(1)
	}
	return diff / math.Abs(objective)
}

// SolveOptions configures a single solve.
type SolveOptions struct {
	// TimeLimit bounds the wall-clock time of the solve; 0 means no limit.
	TimeLimit time.Duration
	// RelativeGap is the relative MIP gap at which the engine may stop.
	RelativeGap float64
}

// Engine solves a Model. Solve blocks until the engine reaches a terminal
// state; a non-nil error means no Result could be produced at all.
type Engine interface {
	Name() string
	Solve(ctx context.Context, m *Model, opts SolveOptions) (*Result, error)
}

var (
	ErrUnknownEngine     = errors.New("milp: unknown engine")
	ErrUnsupportedBounds = errors.New("milp: variable bounds not supported by engine")
	ErrEmptyModel        = errors.New("milp: model has no variables")
)
