package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"example.com/your_project/hub-location/config"
	"example.com/your_project/hub-location/engine"
	"example.com/your_project/hub-location/hub"
	"example.com/your_project/hub-location/milp"
	"example.com/your_project/hub-location/report"
)

const (
	exitOK = iota
	exitFailure
	exitNoSolution
)

const usage = "usage: hub-location [flags] <input-file>"

// newEngine is replaced in tests.
var newEngine = engine.New

type flags struct {
	config     string
	engine     string
	timeLimit  time.Duration
	gap        float64
	modelOut   string
	skipNonneg bool
	logLevel   string
}

func parseFlags(args []string, stdout io.Writer) (*flag.FlagSet, *flags, error) {
	fs := flag.NewFlagSet("hub-location", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		fmt.Fprintln(stdout, usage)
		fs.PrintDefaults()
	}
	def := config.Default()
	f := &flags{}
	fs.StringVar(&f.config, "config", "", "TOML configuration file")
	fs.StringVar(&f.engine, "engine", def.Engine, "MILP engine: "+strings.Join(engine.Names, " or "))
	fs.DurationVar(&f.timeLimit, "time-limit", def.TimeLimit, "solve time limit, 0 for none")
	fs.Float64Var(&f.gap, "gap", def.RelativeGap, "relative optimality gap")
	fs.StringVar(&f.modelOut, "model-out", def.ModelFile, "LP file to write before solving, empty to skip")
	fs.BoolVar(&f.skipNonneg, "skip-nonneg", def.SkipNonNegativity, "omit explicit x >= 0 constraints")
	fs.StringVar(&f.logLevel, "log-level", def.LogLevel, "debug, info, warn or error")
	return fs, f, fs.Parse(args)
}

// settings loads the config file and applies the flags that were set on
// the command line.
func settings(fs *flag.FlagSet, f *flags) (config.Config, error) {
	c := config.Default()
	if f.config != "" {
		var err error
		if c, err = config.Load(f.config); err != nil {
			return config.Config{}, err
		}
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "engine":
			c.Engine = f.engine
		case "time-limit":
			c.TimeLimit = f.timeLimit
		case "gap":
			c.RelativeGap = f.gap
		case "model-out":
			c.ModelFile = f.modelOut
		case "skip-nonneg":
			c.SkipNonNegativity = f.skipNonneg
		case "log-level":
			c.LogLevel = f.logLevel
		}
	})
	return c, c.Validate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs, f, err := parseFlags(args, stdout)
	if err != nil {
		return exitFailure
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitFailure
	}
	c, err := settings(fs, f)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: c.SlogLevel()}))

	sol, res, err := solveFile(ctx, fs.Arg(0), c, logger)
	if res != nil {
		if derr := report.Diagnostic(stdout, res.Status); derr != nil {
			fmt.Fprintln(stderr, derr)
			return exitFailure
		}
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		if errors.Is(err, hub.ErrNoSolution) {
			return exitNoSolution
		}
		return exitFailure
	}
	if err := report.Text(stdout, sol); err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	return exitOK
}

// solveFile loads, builds, writes and solves one instance. The engine result
// is returned whenever the engine ran, even without a solution.
func solveFile(ctx context.Context, path string, c config.Config, logger *slog.Logger) (*hub.Solution, *milp.Result, error) {
	inst, err := hub.Load(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("instance loaded", "path", path, "nodes", inst.Size(), "symmetric", inst.Symmetric())

	f, err := hub.Build(inst, hub.BuildOptions{
		SkipNonNegativity: c.SkipNonNegativity,
		MaxSize:           c.MaxSize,
		Logger:            logger,
	})
	if err != nil {
		return nil, nil, err
	}
	if c.ModelFile != "" {
		if err := f.Model.WriteLPFile(c.ModelFile); err != nil {
			return nil, nil, err
		}
		logger.Info("model written", "path", c.ModelFile)
	}

	e, err := newEngine(c.Engine, c.NodeLimit, logger)
	if err != nil {
		return nil, nil, err
	}
	return hub.Solve(ctx, f, e, milp.SolveOptions{
		TimeLimit:   c.TimeLimit,
		RelativeGap: c.RelativeGap,
	}, logger)
}
