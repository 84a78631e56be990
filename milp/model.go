// Package milp holds an engine-neutral mixed integer linear program: named
// variables with bounds, linear constraints and a linear objective. Engines in
// the subpackages translate a Model into their own representation.
package milp

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Sense is the comparison of a constraint's left-hand side against its
// right-hand side.
type Sense int

const (
	Equal Sense = iota
	LessThanOrEqual
	GreaterThanOrEqual
)

func (s Sense) String() string {
	switch s {
	case Equal:
		return "="
	case LessThanOrEqual:
		return "<="
	case GreaterThanOrEqual:
		return ">="
	}
	return fmt.Sprintf("Sense(%d)", int(s))
}

// Var is a handle to a variable of a Model. It is the position of the
// variable in Model.Vars.
type Var int

// Variable describes a decision variable.
type Variable struct {
	Name    string
	Integer bool
	Lower   float64
	Upper   float64
}

// IsBinary reports whether the variable is an integer restricted to {0, 1}.
func (v Variable) IsBinary() bool {
	return v.Integer && v.Lower == 0 && v.Upper == 1
}

// Term is coefficient * variable.
type Term struct {
	Coefficient float64
	Var         Var
}

// Constraint is sum(terms) <sense> rhs.
type Constraint struct {
	Name  string
	Sense Sense
	RHS   float64
	Terms []Term
}

// NewTerm appends coefficient * v to the left-hand side.
func (c *Constraint) NewTerm(coefficient float64, v Var) {
	c.Terms = append(c.Terms, Term{Coefficient: coefficient, Var: v})
}

// Objective is a linear objective function.
type Objective struct {
	maximize bool
	Terms    []Term
}

func (o *Objective) SetMinimize()     { o.maximize = false }
func (o *Objective) SetMaximize()     { o.maximize = true }
func (o *Objective) IsMaximize() bool { return o.maximize }

// NewTerm appends coefficient * v to the objective.
func (o *Objective) NewTerm(coefficient float64, v Var) {
	o.Terms = append(o.Terms, Term{Coefficient: coefficient, Var: v})
}

// Model is a MILP under construction. Variables must be created before any
// constraint or objective term references them.
type Model struct {
	name        string
	vars        []Variable
	constraints []*Constraint
	objective   Objective
}

// NewModel returns an empty minimisation model.
func NewModel(name string) *Model {
	return &Model{name: name}
}

func (m *Model) Name() string { return m.name }

// NewBool adds a binary variable.
func (m *Model) NewBool(name string) Var {
	return m.add(Variable{Name: name, Integer: true, Lower: 0, Upper: 1})
}

// NewInt adds an integer variable with the given bounds.
func (m *Model) NewInt(name string, lower, upper float64) Var {
	return m.add(Variable{Name: name, Integer: true, Lower: lower, Upper: upper})
}

// NewFloat adds a continuous variable. Use math.Inf(1) for no upper bound.
func (m *Model) NewFloat(name string, lower, upper float64) Var {
	return m.add(Variable{Name: name, Lower: lower, Upper: upper})
}

func (m *Model) add(v Variable) Var {
	m.vars = append(m.vars, v)
	return Var(len(m.vars) - 1)
}

// NewConstraint adds an empty constraint; fill it with NewTerm.
func (m *Model) NewConstraint(name string, sense Sense, rhs float64) *Constraint {
	c := &Constraint{Name: name, Sense: sense, RHS: rhs}
	m.constraints = append(m.constraints, c)
	return c
}

func (m *Model) Objective() *Objective { return &m.objective }

func (m *Model) Vars() []Variable { return m.vars }

func (m *Model) Variable(v Var) Variable { return m.vars[v] }

func (m *Model) Constraints() []*Constraint { return m.constraints }

func (m *Model) NumVars() int { return len(m.vars) }

func (m *Model) NumConstraints() int { return len(m.constraints) }

// NumIntegers counts the integer variables.
func (m *Model) NumIntegers() int {
	n := 0
	for _, v := range m.vars {
		if v.Integer {
			n++
		}
	}
	return n
}

// Validate checks that every term references a declared variable and that
// every coefficient and bound is usable.
func (m *Model) Validate() error {
	for i, v := range m.vars {
		if math.IsNaN(v.Lower) || math.IsNaN(v.Upper) || v.Lower > v.Upper {
			return errors.Errorf("milp: variable %d (%s) has invalid bounds [%g, %g]", i, v.Name, v.Lower, v.Upper)
		}
	}
	check := func(where string, terms []Term) error {
		for _, t := range terms {
			if int(t.Var) < 0 || int(t.Var) >= len(m.vars) {
				return errors.Errorf("milp: %s references undeclared variable %d", where, t.Var)
			}
			if math.IsNaN(t.Coefficient) || math.IsInf(t.Coefficient, 0) {
				return errors.Errorf("milp: %s has non-finite coefficient on %s", where, m.vars[t.Var].Name)
			}
		}
		return nil
	}
	for _, c := range m.constraints {
		if err := check("constraint "+c.Name, c.Terms); err != nil {
			return err
		}
		if math.IsNaN(c.RHS) || math.IsInf(c.RHS, 0) {
			return errors.Errorf("milp: constraint %s has non-finite right-hand side", c.Name)
		}
	}
	return check("objective", m.objective.Terms)
}

// Evaluate returns the objective value of the given assignment.
func (m *Model) Evaluate(values []float64) float64 {
	var sum float64
	for _, t := range m.objective.Terms {
		sum += t.Coefficient * values[t.Var]
	}
	return sum
}

// Check returns an error naming the first bound or constraint the assignment
// violates by more than tol.
func (m *Model) Check(values []float64, tol float64) error {
	if len(values) != len(m.vars) {
		return errors.Errorf("milp: got %d values for %d variables", len(values), len(m.vars))
	}
	for i, v := range m.vars {
		x := values[i]
		if x < v.Lower-tol || x > v.Upper+tol {
			return errors.Errorf("milp: %s = %g outside [%g, %g]", v.Name, x, v.Lower, v.Upper)
		}
		if v.Integer && math.Abs(x-math.Round(x)) > tol {
			return errors.Errorf("milp: %s = %g is not integral", v.Name, x)
		}
	}
	for _, c := range m.constraints {
		var lhs float64
		for _, t := range c.Terms {
			lhs += t.Coefficient * values[t.Var]
		}
		var ok bool
		switch c.Sense {
		case Equal:
			ok = math.Abs(lhs-c.RHS) <= tol
		case LessThanOrEqual:
			ok = lhs <= c.RHS+tol
		case GreaterThanOrEqual:
			ok = lhs >= c.RHS-tol
		}
		if !ok {
			return errors.Errorf("milp: constraint %s violated: %g %s %g", c.Name, lhs, c.Sense, c.RHS)
		}
	}
	return nil
}
