package bnb

import (
	"math"

	"github.com/pkg/errors"
)

var errIterationLimit = errors.New("bnb: simplex iteration limit reached")

// tableau is a dense simplex tableau. Row m, when present, is the objective
// row of reduced costs; the last column is the right-hand side.
type tableau struct {
	m, n  int
	rows  [][]float64
	basis []int
}

func (t *tableau) rhs() int { return t.n + t.m }

// simplexTableau solves min c'x subject to Ax = b, x >= 0 with b >= 0 by the
// two-phase method. Bland's rule picks both the entering and the leaving
// variable, so degenerate pivots cannot cycle. It is the fallback for
// relaxations lp.Simplex gives up on.
func simplexTableau(c []float64, a [][]float64, b []float64) (float64, []float64, error) {
	m, n := len(a), len(c)
	x := make([]float64, n)
	if m == 0 {
		for _, cj := range c {
			if cj < -eps {
				return 0, nil, errUnbounded
			}
		}
		return 0, x, nil
	}

	t := &tableau{m: m, n: n, rows: make([][]float64, m, m+1), basis: make([]int, m)}
	var total float64
	for i := range a {
		r := make([]float64, n+m+1)
		copy(r, a[i])
		r[t.rhs()] = b[i]
		t.rows[i] = r
		t.basis[i] = -1
		total += b[i]
	}

	// Unit columns start in the basis, the remaining rows get artificials.
	for j := 0; j < n; j++ {
		row := -1
		for i := 0; i < m; i++ {
			if t.rows[i][j] == 0 {
				continue
			}
			if row >= 0 {
				row = -1
				break
			}
			row = i
		}
		if row >= 0 && t.rows[row][j] == 1 && t.basis[row] < 0 {
			t.basis[row] = j
		}
	}
	var artificial []int
	for i := range t.basis {
		if t.basis[i] < 0 {
			t.rows[i][n+i] = 1
			t.basis[i] = n + i
			artificial = append(artificial, i)
		}
	}

	if len(artificial) > 0 {
		obj := make([]float64, n+m+1)
		for _, i := range artificial {
			for k, v := range t.rows[i] {
				obj[k] -= v
			}
			obj[n+i] = 0
		}
		t.rows = append(t.rows, obj)
		// Phase one is bounded below by zero.
		if err := t.optimise(n); err != nil {
			return 0, nil, err
		}
		if -t.rows[m][t.rhs()] > 1e-7*math.Max(1, total) {
			return 0, nil, errInfeasible
		}
		t.rows = t.rows[:m]

		// Artificials left in the basis sit at zero; swap them for any
		// structural column of their row. Rows without one are redundant.
		for i, bv := range t.basis {
			if bv < n {
				continue
			}
			for j := 0; j < n; j++ {
				if math.Abs(t.rows[i][j]) > eps {
					t.pivot(i, j)
					break
				}
			}
		}
	}

	obj := make([]float64, n+m+1)
	copy(obj, c)
	for i, bv := range t.basis {
		if bv >= n || c[bv] == 0 {
			continue
		}
		cb := c[bv]
		for k, v := range t.rows[i] {
			obj[k] -= cb * v
		}
	}
	t.rows = append(t.rows, obj)
	if err := t.optimise(n); err != nil {
		return 0, nil, err
	}

	for i, bv := range t.basis {
		if bv < n {
			x[bv] = math.Max(0, t.rows[i][t.rhs()])
		}
	}
	var z float64
	for j, cj := range c {
		z += cj * x[j]
	}
	return z, x, nil
}

// optimise pivots until no column below allowed has a negative reduced
// cost. Artificial columns are never allowed to enter.
func (t *tableau) optimise(allowed int) error {
	obj := t.rows[t.m]
	rhs := t.rhs()
	limit := 50*(t.m+t.n) + 1000
	for iter := 0; iter < limit; iter++ {
		enter := -1
		for j := 0; j < allowed; j++ {
			if obj[j] < -eps {
				enter = j
				break
			}
		}
		if enter < 0 {
			return nil
		}

		leave := -1
		var best float64
		for i := 0; i < t.m; i++ {
			v := t.rows[i][enter]
			if v <= eps {
				continue
			}
			ratio := t.rows[i][rhs] / v
			if leave < 0 || ratio < best-eps || (math.Abs(ratio-best) <= eps && t.basis[i] < t.basis[leave]) {
				leave, best = i, ratio
			}
		}
		if leave < 0 {
			return errUnbounded
		}
		t.pivot(leave, enter)
	}
	return errIterationLimit
}

func (t *tableau) pivot(r, c int) {
	pr := t.rows[r]
	p := pr[c]
	for k := range pr {
		pr[k] /= p
	}
	for i, row := range t.rows {
		if i == r {
			continue
		}
		f := row[c]
		if f == 0 {
			continue
		}
		for k, v := range pr {
			row[k] -= f * v
		}
		row[c] = 0
	}
	t.basis[r] = c
}
