package main

import (
	"context"
	"log"

	"github.com/nextmv-io/sdk/run"

	"example.com/your_project/hub-location/hub"
	"example.com/your_project/hub-location/report"
)

// HubRun is the legacy CLI runner reading a JSON instance. A run emits a
// single solution: the one the engine stopped with.
func HubRun(builder func() SolverBuilder,
	options ...run.RunnerOption[run.CLIRunnerConfig, hub.Input, Options, report.Output],
) error {
	solve := builder()
	algorithm := func(
		ctx context.Context,
		input hub.Input, option Options, solutions chan<- report.Output,
	) error {
		sol, err := solve(ctx, input, option)
		if err != nil {
			return err
		}
		log.Println(sol.Status, sol.Runtime)
		solutions <- report.NewOutput(sol)
		return nil
	}

	runner := run.NewCLIRunner(algorithm, options...)
	return runner.Run(context.Background())
}
