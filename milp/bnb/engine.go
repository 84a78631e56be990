// Package bnb is a pure Go MILP engine: depth-first branch-and-bound over
// LP relaxations solved with gonum's simplex. It is meant for small models
// and for environments without a native solver.
package bnb

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"

	"example.com/your_project/hub-location/milp"
)

const (
	Name = "bnb"

	// DefaultNodeLimit caps the number of relaxations solved per call.
	DefaultNodeLimit = 100000

	integralityTolerance = 1e-6
)

// Engine implements milp.Engine.
type Engine struct {
	// NodeLimit caps the number of relaxations solved; 0 means no cap.
	NodeLimit int
	Logger    *slog.Logger
}

// New returns an engine with the given node limit.
func New(nodeLimit int) *Engine {
	return &Engine{NodeLimit: nodeLimit, Logger: slog.Default()}
}

func (e *Engine) Name() string { return Name }

type node struct {
	lower, upper []float64
	// bound is the relaxation value of the parent.
	bound float64
	depth int
}

func (n node) child(j int, lower, upper float64, bound float64) node {
	c := node{
		lower: append([]float64(nil), n.lower...),
		upper: append([]float64(nil), n.upper...),
		bound: bound,
		depth: n.depth + 1,
	}
	c.lower[j] = lower
	c.upper[j] = upper
	return c
}

// Solve runs branch-and-bound until the tree is exhausted, the context ends,
// the time limit passes or the node limit is reached.
func (e *Engine) Solve(ctx context.Context, m *milp.Model, opts milp.SolveOptions) (*milp.Result, error) {
	start := time.Now()
	p, err := newProblem(m)
	if err != nil {
		return nil, err
	}
	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit)
		defer cancel()
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var (
		incumbent = math.Inf(1)
		best      []float64
		solved    int
		stopped   milp.Status
	)
	stack := []node{{lower: p.lower, upper: p.upper, bound: math.Inf(-1)}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			stopped = milp.StatusInterrupted
			if errors.Is(err, context.DeadlineExceeded) {
				stopped = milp.StatusTimeLimit
			}
			break
		}
		if e.NodeLimit > 0 && solved >= e.NodeLimit {
			stopped = milp.StatusNodeLimit
			break
		}

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.bound >= incumbent-cutoff(incumbent) {
			continue
		}

		obj, x, err := p.relax(n.lower, n.upper)
		solved++
		switch {
		case errors.Is(err, errInfeasible):
			continue
		case errors.Is(err, errUnbounded):
			if best == nil {
				return e.result(p, milp.StatusUnbounded, math.NaN(), math.NaN(), nil, start), nil
			}
			return nil, errors.New("bnb: unbounded relaxation below a feasible incumbent")
		case err != nil:
			return nil, err
		}
		if obj >= incumbent-cutoff(incumbent) {
			continue
		}

		j := p.branchVariable(x)
		if j < 0 {
			for k, isInt := range p.integer {
				if isInt {
					x[k] = math.Round(x[k])
				}
			}
			incumbent, best = obj, x
			logger.Debug("bnb: new incumbent", "objective", p.sign(obj), "nodes", solved, "depth", n.depth)
			continue
		}

		down := n.child(j, n.lower[j], math.Floor(x[j]), obj)
		up := n.child(j, math.Ceil(x[j]), n.upper[j], obj)
		// The last pushed child is explored first.
		if x[j]-math.Floor(x[j]) >= 0.5 {
			stack = append(stack, down, up)
		} else {
			stack = append(stack, up, down)
		}
	}

	logger.Debug("bnb: search finished", "nodes", solved, "open", len(stack), "incumbent", p.sign(incumbent))

	if stopped == milp.StatusUnknown {
		if best == nil {
			return e.result(p, milp.StatusInfeasible, math.NaN(), math.NaN(), nil, start), nil
		}
		return e.result(p, milp.StatusOptimal, incumbent, incumbent, best, start), nil
	}

	bound := incumbent
	for _, n := range stack {
		bound = math.Min(bound, n.bound)
	}
	if best == nil {
		return e.result(p, stopped, math.NaN(), bound, nil, start), nil
	}
	return e.result(p, stopped, incumbent, bound, best, start), nil
}

func (e *Engine) result(p *problem, status milp.Status, objective, bound float64, values []float64, start time.Time) *milp.Result {
	r := &milp.Result{
		Status:    status,
		Objective: p.sign(objective),
		Bound:     p.sign(bound),
		Gap:       math.NaN(),
		Runtime:   time.Since(start),
		Values:    values,
	}
	if values != nil {
		r.Gap = milp.RelativeGap(r.Objective, r.Bound)
	}
	return r
}

// sign maps an internal minimisation value back to the model's sense.
func (p *problem) sign(v float64) float64 {
	if p.negate {
		return -v
	}
	return v
}

// branchVariable picks the most fractional integer variable, -1 if x is
// integral.
func (p *problem) branchVariable(x []float64) int {
	best, bestFrac := -1, integralityTolerance
	for j, isInt := range p.integer {
		if !isInt {
			continue
		}
		frac := x[j] - math.Floor(x[j])
		dist := math.Min(frac, 1-frac)
		if dist > bestFrac {
			best, bestFrac = j, dist
		}
	}
	return best
}

// cutoff is the slack below the incumbent a node must reach to be explored.
func cutoff(incumbent float64) float64 {
	if math.IsInf(incumbent, 0) {
		return 0
	}
	return 1e-9 * math.Max(1, math.Abs(incumbent))
}
