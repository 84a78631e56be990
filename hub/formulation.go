package hub

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pkg/errors"

	"example.com/your_project/hub-location/milp"
)

// RoutingVarWarning is the routing-variable count above which Build warns
// that the model will be slow to solve.
const RoutingVarWarning = 1000000

// BuildOptions tunes the formulation.
type BuildOptions struct {
	// SkipNonNegativity drops the explicit x >= 0 rows. The variable domain
	// already enforces them.
	SkipNonNegativity bool
	// MaxSize rejects instances with more nodes; 0 disables the check.
	MaxSize int
	Logger  *slog.Logger
}

// ErrTooLarge is returned by Build for instances above BuildOptions.MaxSize.
var ErrTooLarge = errors.New("hub: instance exceeds the configured size limit")

// Formulation is the MILP of an instance together with the variable handles
// needed to read a solution back.
type Formulation struct {
	Model *milp.Model

	inst *Instance
	n    int
	z    []milp.Var
	x    []milp.Var
}

// Build creates the N^2 allocation variables z, the N^4 routing variables x,
// the constraints and the objective for inst.
func Build(inst *Instance, opts BuildOptions) (*Formulation, error) {
	n := inst.Size()
	if opts.MaxSize > 0 && n > opts.MaxSize {
		return nil, errors.Wrapf(ErrTooLarge, "%d nodes, limit %d", n, opts.MaxSize)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if routing := n * n * n * n; routing > RoutingVarWarning {
		logger.Warn("formulation grows with the fourth power of the node count",
			"nodes", n, "routing_vars", routing)
	}

	f := &Formulation{
		Model: milp.NewModel("hub-location"),
		inst:  inst,
		n:     n,
		z:     make([]milp.Var, n*n),
		x:     make([]milp.Var, n*n*n*n),
	}
	f.addVariables()
	f.addAllocationConstraints()
	f.addConservationConstraints()
	if !opts.SkipNonNegativity {
		f.addNonNegativity()
	}
	f.composeObjective()

	logger.Debug("formulation built",
		"nodes", n,
		"vars", f.Model.NumVars(),
		"binaries", f.Model.NumIntegers(),
		"constraints", f.Model.NumConstraints(),
		"objective_terms", len(f.Model.Objective().Terms))
	return f, nil
}

func (f *Formulation) Instance() *Instance { return f.inst }

// Z is the allocation variable of node i to hub k.
func (f *Formulation) Z(i, k int) milp.Var { return f.z[i*f.n+k] }

// X is the routing variable of the flow i->j over hub link k->m.
func (f *Formulation) X(i, j, k, m int) milp.Var {
	return f.x[((i*f.n+j)*f.n+k)*f.n+m]
}

func (f *Formulation) NumAllocationVars() int { return len(f.z) }

func (f *Formulation) NumRoutingVars() int { return len(f.x) }

func (f *Formulation) addVariables() {
	n := f.n
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			f.z[i*n+k] = f.Model.NewBool(fmt.Sprintf("z_%d_%d", i, k))
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				for m := 0; m < n; m++ {
					f.x[((i*n+j)*n+k)*n+m] = f.Model.NewFloat(fmt.Sprintf("x_%d_%d_%d_%d", i, j, k, m), 0, math.Inf(1))
				}
			}
		}
	}
}

func (f *Formulation) addAllocationConstraints() {
	n := f.n
	// Every node is allocated to exactly one hub.
	for i := 0; i < n; i++ {
		c := f.Model.NewConstraint(fmt.Sprintf("assign_%d", i), milp.Equal, 1)
		for k := 0; k < n; k++ {
			c.NewTerm(1, f.Z(i, k))
		}
	}
	// Only open hubs take allocations.
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			if i == k {
				continue
			}
			c := f.Model.NewConstraint(fmt.Sprintf("hub_%d_%d", i, k), milp.LessThanOrEqual, 0)
			c.NewTerm(1, f.Z(i, k))
			c.NewTerm(-1, f.Z(k, k))
		}
	}
}

// addConservationConstraints ties routing to allocation for pairs j >= i
// only. The objective charges both directions of a pair to the same x, so
// the lower triangle is left unconstrained.
func (f *Formulation) addConservationConstraints() {
	n := f.n
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			for k := 0; k < n; k++ {
				c := f.Model.NewConstraint(fmt.Sprintf("out_%d_%d_%d", i, j, k), milp.Equal, 0)
				for m := 0; m < n; m++ {
					c.NewTerm(1, f.X(i, j, k, m))
				}
				c.NewTerm(-1, f.Z(i, k))
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			for m := 0; m < n; m++ {
				c := f.Model.NewConstraint(fmt.Sprintf("in_%d_%d_%d", i, j, m), milp.Equal, 0)
				for k := 0; k < n; k++ {
					c.NewTerm(1, f.X(i, j, k, m))
				}
				c.NewTerm(-1, f.Z(j, m))
			}
		}
	}
}

func (f *Formulation) addNonNegativity() {
	n := f.n
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				for m := 0; m < n; m++ {
					c := f.Model.NewConstraint(fmt.Sprintf("nonneg_%d_%d_%d_%d", i, j, k, m), milp.GreaterThanOrEqual, 0)
					c.NewTerm(1, f.X(i, j, k, m))
				}
			}
		}
	}
}
