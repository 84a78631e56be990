package bnb

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"example.com/your_project/hub-location/milp"
)

// Zero threshold for matrix entries and residuals.
const eps = 1e-9

var (
	errInfeasible = errors.New("bnb: relaxation infeasible")
	errUnbounded  = errors.New("bnb: relaxation unbounded")
)

// problem is a model flattened for repeated LP relaxations. The objective is
// always minimised; maximisation models are negated on the way in and out.
type problem struct {
	n       int
	c       []float64
	rows    []row
	integer []bool
	lower   []float64
	upper   []float64
	negate  bool
}

type row struct {
	cols  []int
	coefs []float64
	sense milp.Sense
	rhs   float64
}

func newProblem(m *milp.Model) (*problem, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.NumVars() == 0 {
		return nil, milp.ErrEmptyModel
	}
	vars := m.Vars()
	p := &problem{
		n:       len(vars),
		c:       make([]float64, len(vars)),
		integer: make([]bool, len(vars)),
		lower:   make([]float64, len(vars)),
		upper:   make([]float64, len(vars)),
		negate:  m.Objective().IsMaximize(),
	}
	for j, v := range vars {
		if v.Lower < 0 || math.IsInf(v.Lower, 0) {
			return nil, errors.Wrapf(milp.ErrUnsupportedBounds, "bnb: %s has lower bound %g", v.Name, v.Lower)
		}
		p.integer[j] = v.Integer
		p.lower[j] = v.Lower
		p.upper[j] = v.Upper
		if v.Integer {
			p.lower[j] = math.Ceil(v.Lower - eps)
			p.upper[j] = math.Floor(v.Upper + eps)
		}
	}
	for _, t := range m.Objective().Terms {
		coef := t.Coefficient
		if p.negate {
			coef = -coef
		}
		p.c[t.Var] += coef
	}
	for _, c := range m.Constraints() {
		r := row{sense: c.Sense, rhs: c.RHS}
		for _, t := range c.Terms {
			r.cols = append(r.cols, int(t.Var))
			r.coefs = append(r.coefs, t.Coefficient)
		}
		p.rows = append(p.rows, r)
	}
	return p, nil
}

// relax solves the LP relaxation under the given variable bounds. Variables
// with equal bounds are substituted out; remaining bounds become rows. The
// result is brought to the standard form min c'x, Ax = b, x >= 0 accepted by
// lp.Simplex.
func (p *problem) relax(lower, upper []float64) (float64, []float64, error) {
	x := make([]float64, p.n)
	col := make([]int, p.n)
	var free []int
	var constant float64
	for j := 0; j < p.n; j++ {
		if lower[j] > upper[j]+eps {
			return 0, nil, errInfeasible
		}
		if upper[j]-lower[j] <= eps {
			x[j] = lower[j]
			constant += p.c[j] * x[j]
			col[j] = -1
			continue
		}
		col[j] = len(free)
		free = append(free, j)
	}

	type denseRow struct {
		coefs []float64
		sense milp.Sense
		rhs   float64
	}
	var dense []denseRow
	for _, r := range p.rows {
		d := denseRow{coefs: make([]float64, len(free)), sense: r.sense, rhs: r.rhs}
		for i, j := range r.cols {
			if col[j] < 0 {
				d.rhs -= r.coefs[i] * x[j]
				continue
			}
			d.coefs[col[j]] += r.coefs[i]
		}
		if k := singleton(d.coefs); k >= 0 && impliedByBounds(d.coefs[k], d.sense, d.rhs, lower[free[k]], upper[free[k]]) {
			continue
		}
		dense = append(dense, d)
	}
	for k, j := range free {
		if lower[j] > 0 {
			d := denseRow{coefs: make([]float64, len(free)), sense: milp.GreaterThanOrEqual, rhs: lower[j]}
			d.coefs[k] = 1
			dense = append(dense, d)
		}
		if !math.IsInf(upper[j], 1) {
			d := denseRow{coefs: make([]float64, len(free)), sense: milp.LessThanOrEqual, rhs: upper[j]}
			d.coefs[k] = 1
			dense = append(dense, d)
		}
	}

	// Rows without free variables are either satisfied or prove infeasibility.
	live := dense[:0]
	for _, d := range dense {
		if !allZero(d.coefs) {
			live = append(live, d)
			continue
		}
		switch d.sense {
		case milp.Equal:
			if math.Abs(d.rhs) > eps {
				return 0, nil, errInfeasible
			}
		case milp.LessThanOrEqual:
			if d.rhs < -eps {
				return 0, nil, errInfeasible
			}
		case milp.GreaterThanOrEqual:
			if d.rhs > eps {
				return 0, nil, errInfeasible
			}
		}
	}
	dense = live

	// A free variable in no row sits at its lower bound of zero unless the
	// objective pulls it to +inf.
	used := make([]bool, len(free))
	for _, d := range dense {
		for k, v := range d.coefs {
			if v != 0 {
				used[k] = true
			}
		}
	}
	var cols []int
	for k, j := range free {
		if used[k] {
			cols = append(cols, k)
			continue
		}
		if p.c[j] < 0 {
			return 0, nil, errUnbounded
		}
	}

	slacks := 0
	for _, d := range dense {
		if d.sense != milp.Equal {
			slacks++
		}
	}
	width := len(cols) + slacks
	a := make([][]float64, len(dense))
	b := make([]float64, len(dense))
	slack := len(cols)
	for i, d := range dense {
		a[i] = make([]float64, width)
		for k, src := range cols {
			a[i][k] = d.coefs[src]
		}
		switch d.sense {
		case milp.LessThanOrEqual:
			a[i][slack] = 1
			slack++
		case milp.GreaterThanOrEqual:
			a[i][slack] = -1
			slack++
		}
		b[i] = d.rhs
		if b[i] < 0 {
			b[i] = -b[i]
			for k := range a[i] {
				a[i][k] = -a[i][k]
			}
		}
	}

	keep, consistent := independentRows(a, b)
	if !consistent {
		return 0, nil, errInfeasible
	}
	if len(keep) == 0 || len(cols) == 0 {
		return constant, x, nil
	}

	flat := make([]float64, 0, len(keep)*width)
	rows := make([][]float64, 0, len(keep))
	rhs := make([]float64, 0, len(keep))
	for _, i := range keep {
		flat = append(flat, a[i]...)
		rows = append(rows, a[i])
		rhs = append(rhs, b[i])
	}
	cost := make([]float64, width)
	for k, src := range cols {
		cost[k] = p.c[free[src]]
	}

	opt, sol, err := lp.Simplex(cost, mat.NewDense(len(keep), width, flat), rhs, 0, nil)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return 0, nil, errInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return 0, nil, errUnbounded
	case err != nil:
		// lp.Simplex gives up on degenerate bases (lp.ErrBland); the tableau
		// does not.
		opt, sol, err = simplexTableau(cost, rows, rhs)
		if err != nil {
			return 0, nil, err
		}
	}
	for k, src := range cols {
		x[free[src]] = sol[k]
	}
	return opt + constant, x, nil
}

// independentRows returns the indices of a maximal linearly independent
// subset of the rows of [a | b], and false if some dependent row contradicts
// the others.
func independentRows(a [][]float64, b []float64) ([]int, bool) {
	type pivotRow struct {
		pivot int
		coefs []float64
		rhs   float64
	}
	var basis []pivotRow
	var keep []int
	for i := range a {
		r := append([]float64(nil), a[i]...)
		rhs := b[i]
		for _, br := range basis {
			f := r[br.pivot] / br.coefs[br.pivot]
			if f == 0 {
				continue
			}
			for k := range r {
				r[k] -= f * br.coefs[k]
			}
			rhs -= f * br.rhs
		}
		pivot, size := -1, 0.0
		scale := 0.0
		for k, v := range a[i] {
			scale = math.Max(scale, math.Abs(v))
			if math.Abs(r[k]) > size {
				pivot, size = k, math.Abs(r[k])
			}
		}
		if size <= eps*math.Max(1, scale) {
			if math.Abs(rhs) > 1e-7*math.Max(1, math.Abs(b[i])) {
				return nil, false
			}
			continue
		}
		basis = append(basis, pivotRow{pivot: pivot, coefs: r, rhs: rhs})
		keep = append(keep, i)
	}
	return keep, true
}

// singleton returns the index of the only non-zero coefficient, -1 if there
// are none or several.
func singleton(coefs []float64) int {
	k := -1
	for i, v := range coefs {
		if v == 0 {
			continue
		}
		if k >= 0 {
			return -1
		}
		k = i
	}
	return k
}

// impliedByBounds reports whether coef*x <sense> rhs already follows from
// lower <= x <= upper. Such rows only add degenerate surplus columns.
func impliedByBounds(coef float64, sense milp.Sense, rhs, lower, upper float64) bool {
	bound := rhs / coef
	switch {
	case sense == milp.Equal:
		return false
	case (coef > 0) == (sense == milp.GreaterThanOrEqual):
		return bound <= lower+eps
	default:
		return bound >= upper-eps
	}
}

func allZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
