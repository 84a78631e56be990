package hub

import "example.com/your_project/hub-location/milp"

// composeObjective minimises hub opening, access and discounted inter-hub
// transport cost.
func (f *Formulation) composeObjective() {
	in, n := f.inst, f.n
	obj := f.Model.Objective()
	obj.SetMinimize()

	add := func(coef float64, v milp.Var) {
		if coef != 0 {
			obj.NewTerm(coef, v)
		}
	}

	// fixed
	for k := 0; k < n; k++ {
		add(in.FixedCost(k), f.Z(k, k))
	}

	// access
	for i := 0; i < n; i++ {
		demand := in.Outbound(i) + in.Inbound(i)
		for k := 0; k < n; k++ {
			if k != i {
				add(demand*in.Cost(i, k), f.Z(i, k))
			}
		}
	}

	// transport, both directions of i<->j on the same variable
	alpha := in.Alpha()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			fij, fji := in.Flow(i, j), in.Flow(j, i)
			if fij == 0 && fji == 0 {
				continue
			}
			for k := 0; k < n; k++ {
				for m := 0; m < n; m++ {
					add(alpha*(fij*in.Cost(k, m)+fji*in.Cost(m, k)), f.X(i, j, k, m))
				}
			}
		}
	}
}

// Cost breaks an objective value into its three components for a solution
// given as variable values.
type Cost struct {
	Fixed     float64 `json:"fixed"`
	Access    float64 `json:"access"`
	Transport float64 `json:"transport"`
}

func (c Cost) Total() float64 { return c.Fixed + c.Access + c.Transport }

// Breakdown evaluates the objective components at values.
func (f *Formulation) Breakdown(values []float64) Cost {
	in, n := f.inst, f.n
	var c Cost
	for k := 0; k < n; k++ {
		c.Fixed += in.FixedCost(k) * values[f.Z(k, k)]
	}
	for i := 0; i < n; i++ {
		demand := in.Outbound(i) + in.Inbound(i)
		for k := 0; k < n; k++ {
			if k != i {
				c.Access += demand * in.Cost(i, k) * values[f.Z(i, k)]
			}
		}
	}
	alpha := in.Alpha()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				for m := 0; m < n; m++ {
					c.Transport += alpha * (in.Flow(i, j)*in.Cost(k, m) + in.Flow(j, i)*in.Cost(m, k)) * values[f.X(i, j, k, m)]
				}
			}
		}
	}
	return c
}
