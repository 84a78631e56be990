package milp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Terms per line; LP readers reject lines longer than 510 bytes.
const termsPerLine = 8

// WriteLP writes the model in CPLEX LP format, readable by CPLEX, Gurobi
// and HiGHS.
func (m *Model) WriteLP(w io.Writer) error {
	bw := bufio.NewWriter(w)
	lw := &lpWriter{w: bw, m: m}

	lw.printf("\\ Problem name: %s\n\n", m.name)
	if m.objective.maximize {
		lw.printf("Maximize\n")
	} else {
		lw.printf("Minimize\n")
	}
	lw.printf(" obj:")
	if len(m.objective.Terms) == 0 && len(m.vars) > 0 {
		lw.printf(" 0 %s", m.vars[0].Name)
	}
	lw.terms(m.objective.Terms)
	lw.printf("\n")

	lw.printf("Subject To\n")
	for _, c := range m.constraints {
		lw.printf(" %s:", c.Name)
		if len(c.Terms) == 0 && len(m.vars) > 0 {
			lw.printf(" 0 %s", m.vars[0].Name)
		}
		lw.terms(c.Terms)
		lw.printf(" %s %s\n", c.Sense, formatNumber(c.RHS))
	}

	lw.printf("Bounds\n")
	for _, v := range m.vars {
		if v.IsBinary() {
			continue
		}
		lower, upper := v.Lower, v.Upper
		switch {
		case lower == upper:
			lw.printf(" %s = %s\n", v.Name, formatNumber(lower))
		case lower == 0 && math.IsInf(upper, 1):
		case math.IsInf(lower, -1) && math.IsInf(upper, 1):
			lw.printf(" %s free\n", v.Name)
		case math.IsInf(upper, 1):
			lw.printf(" %s >= %s\n", v.Name, formatNumber(lower))
		default:
			lw.printf(" %s <= %s <= %s\n", formatNumber(lower), v.Name, formatNumber(upper))
		}
	}

	lw.section("Binaries", func(v Variable) bool { return v.IsBinary() })
	lw.section("Generals", func(v Variable) bool { return v.Integer && !v.IsBinary() })
	lw.printf("End\n")

	if lw.err != nil {
		return errors.Wrap(lw.err, "milp: write lp")
	}
	return errors.Wrap(bw.Flush(), "milp: write lp")
}

// WriteLPFile writes the model to path, replacing any existing file.
func (m *Model) WriteLPFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "milp: create model file")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "milp: close model file")
		}
	}()
	return m.WriteLP(f)
}

type lpWriter struct {
	w   *bufio.Writer
	m   *Model
	err error
}

func (lw *lpWriter) printf(format string, args ...any) {
	if lw.err != nil {
		return
	}
	_, lw.err = fmt.Fprintf(lw.w, format, args...)
}

func (lw *lpWriter) terms(terms []Term) {
	for i, t := range terms {
		if i > 0 && i%termsPerLine == 0 {
			lw.printf("\n  ")
		}
		coef := t.Coefficient
		sign := "+"
		if coef < 0 {
			sign = "-"
			coef = -coef
		}
		name := lw.m.vars[t.Var].Name
		switch {
		case coef == 1:
			lw.printf(" %s %s", sign, name)
		default:
			lw.printf(" %s %s %s", sign, formatNumber(coef), name)
		}
	}
}

func (lw *lpWriter) section(title string, keep func(Variable) bool) {
	written := 0
	for _, v := range lw.m.vars {
		if !keep(v) {
			continue
		}
		if written == 0 {
			lw.printf("%s\n", title)
		}
		if written%termsPerLine == 0 {
			lw.printf(" ")
		}
		lw.printf(" %s", v.Name)
		written++
		if written%termsPerLine == 0 {
			lw.printf("\n")
		}
	}
	if written%termsPerLine != 0 {
		lw.printf("\n")
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
