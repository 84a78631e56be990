// Package highs solves milp models with HiGHS through the nextmv SDK mip
// package. The SDK loads the HiGHS provider as a plugin at run time.
package highs

import (
	"context"
	"log/slog"
	"math"

	"github.com/nextmv-io/sdk/mip"
	"github.com/pkg/errors"

	"example.com/your_project/hub-location/milp"
)

// Name doubles as the SDK provider name.
const Name = "highs"

// Engine implements milp.Engine.
type Engine struct {
	Logger *slog.Logger
}

func New() *Engine {
	return &Engine{Logger: slog.Default()}
}

func (e *Engine) Name() string { return Name }

// Solve blocks until HiGHS terminates. The context is only checked before
// the call; the duration limit is the only bound once HiGHS runs.
func (e *Engine) Solve(ctx context.Context, model *milp.Model, opts milp.SolveOptions) (*milp.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if model.NumVars() == 0 {
		return nil, milp.ErrEmptyModel
	}
	if err := supported(model); err != nil {
		return nil, err
	}

	m, vars, err := translate(model)
	if err != nil {
		return nil, err
	}

	solver, err := mip.NewSolver(Name, m)
	if err != nil {
		return nil, errors.Wrap(err, "highs: create solver")
	}

	solveOptions := mip.NewSolveOptions()
	if opts.TimeLimit > 0 {
		if err := solveOptions.SetMaximumDuration(opts.TimeLimit); err != nil {
			return nil, errors.Wrap(err, "highs: set duration limit")
		}
	}
	// HiGHS defaults to a non-zero relative gap; make the configured one explicit.
	if err := solveOptions.SetMIPGapRelative(opts.RelativeGap); err != nil {
		return nil, errors.Wrap(err, "highs: set relative gap")
	}
	solveOptions.SetVerbosity(mip.Off)

	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("highs: solving", "vars", model.NumVars(), "constraints", model.NumConstraints())

	solution, err := solver.Solve(solveOptions)
	if err != nil {
		return nil, errors.Wrap(err, "highs: solve")
	}
	return convert(solution, vars, opts), nil
}

// supported rejects variables the translation cannot express.
func supported(model *milp.Model) error {
	for _, v := range model.Vars() {
		if v.Integer && !v.IsBinary() {
			return errors.Wrapf(milp.ErrUnsupportedBounds, "highs: general integer %s", v.Name)
		}
	}
	return nil
}

func translate(model *milp.Model) (mip.Model, []mip.Var, error) {
	m := mip.NewModel()
	vars := make([]mip.Var, model.NumVars())
	for i, v := range model.Vars() {
		switch {
		case v.IsBinary():
			vars[i] = m.NewBool()
		default:
			vars[i] = m.NewFloat(v.Lower, v.Upper)
		}
	}

	for _, c := range model.Constraints() {
		var constraint mip.Constraint
		switch c.Sense {
		case milp.Equal:
			constraint = m.NewConstraint(mip.Equal, c.RHS)
		case milp.LessThanOrEqual:
			constraint = m.NewConstraint(mip.LessThanOrEqual, c.RHS)
		case milp.GreaterThanOrEqual:
			constraint = m.NewConstraint(mip.GreaterThanOrEqual, c.RHS)
		default:
			return nil, nil, errors.Errorf("highs: constraint %s has unknown sense %v", c.Name, c.Sense)
		}
		for _, t := range c.Terms {
			constraint.NewTerm(t.Coefficient, vars[t.Var])
		}
	}

	if model.Objective().IsMaximize() {
		m.Objective().SetMaximize()
	} else {
		m.Objective().SetMinimize()
	}
	for _, t := range model.Objective().Terms {
		m.Objective().NewTerm(t.Coefficient, vars[t.Var])
	}
	return m, vars, nil
}

// convert maps the SDK solution onto a Result. Values are read whenever the
// solver attached them, whatever the terminal status.
func convert(solution mip.Solution, vars []mip.Var, opts milp.SolveOptions) *milp.Result {
	r := &milp.Result{
		Status: milp.StatusNoSolution,
		Bound:  math.NaN(),
		Gap:    math.NaN(),
	}
	if solution == nil {
		return r
	}
	r.Runtime = solution.RunTime()
	r.Status = status(solution)
	if !solution.HasValues() {
		return r
	}

	r.Objective = solution.ObjectiveValue()
	r.Values = make([]float64, len(vars))
	for i, v := range vars {
		r.Values[i] = solution.Value(v)
	}
	if r.Status == milp.StatusOptimal {
		// No bound is exposed; optimality holds within the configured gap.
		r.Gap = opts.RelativeGap
	}
	return r
}

func status(solution mip.Solution) milp.Status {
	switch {
	case solution.IsOptimal() && solution.HasValues():
		return milp.StatusOptimal
	case solution.IsInfeasible():
		return milp.StatusInfeasible
	case solution.IsUnbounded():
		return milp.StatusUnbounded
	case solution.IsTimeOut():
		return milp.StatusTimeLimit
	case solution.IsNumericalFailure():
		return milp.StatusNumericalFailure
	case solution.HasValues():
		// IsSubOptimal or an unnamed stop with an incumbent.
		return milp.StatusFeasible
	}
	return milp.StatusNoSolution
}
