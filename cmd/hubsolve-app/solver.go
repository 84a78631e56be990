package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"example.com/your_project/hub-location/config"
	"example.com/your_project/hub-location/engine"
	"example.com/your_project/hub-location/hub"
	"example.com/your_project/hub-location/milp"
)

// Options are filled from flags and environment by the runner.
type Options struct {
	// A duration limit of 0 is replaced by 10s.
	Limits struct {
		Duration time.Duration `json:"duration" default:"10s"`
	} `json:"limits"`
	Solver struct {
		Engine            string  `json:"engine" default:"highs" usage:"highs or bnb"`
		Gap               float64 `json:"gap" usage:"relative MIP gap"`
		NodeLimit         int     `json:"node_limit" default:"100000" usage:"bnb node limit"`
		SkipNonNegativity bool    `json:"skip_nonnegativity" usage:"omit explicit x >= 0 rows"`
		MaxSize           int     `json:"max_size" usage:"reject larger instances, 0 for no cap"`
	} `json:"solver"`
}

// buildConfig maps the app options onto the shared configuration and
// validates it.
func buildConfig(opts Options) (config.Config, error) {
	c := config.Default()
	c.Engine = opts.Solver.Engine
	c.TimeLimit = opts.Limits.Duration
	// If the duration limit is unset, we set it to 10s. Cloud runs need an
	// explicit limit.
	if c.TimeLimit == 0 {
		c.TimeLimit = 10 * time.Second
	}
	c.RelativeGap = opts.Solver.Gap
	c.NodeLimit = opts.Solver.NodeLimit
	c.SkipNonNegativity = opts.Solver.SkipNonNegativity
	c.MaxSize = opts.Solver.MaxSize
	c.ModelFile = ""
	return c, c.Validate()
}

// SolverBuilder returns the function the runner calls for every input.
type SolverBuilder func(ctx context.Context, input hub.Input, opts Options) (*hub.Solution, error)

// buildSolver logs to stderr; stdout belongs to the runner's JSON output.
var buildSolver = func() SolverBuilder {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	return func(ctx context.Context, input hub.Input, opts Options) (*hub.Solution, error) {
		c, err := buildConfig(opts)
		if err != nil {
			return nil, err
		}
		inst, err := input.Instance()
		if err != nil {
			return nil, err
		}
		f, err := hub.Build(inst, hub.BuildOptions{
			SkipNonNegativity: c.SkipNonNegativity,
			MaxSize:           c.MaxSize,
			Logger:            logger,
		})
		if err != nil {
			return nil, err
		}
		e, err := engine.New(c.Engine, c.NodeLimit, logger)
		if err != nil {
			return nil, err
		}
		sol, _, err := hub.Solve(ctx, f, e, milp.SolveOptions{
			TimeLimit:   c.TimeLimit,
			RelativeGap: c.RelativeGap,
		}, logger)
		return sol, err
	}
}
