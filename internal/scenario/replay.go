package scenario

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/runger/dopamenu/internal/intervention/model"
)

// Generator produces a decision for a situation. *engine.Engine satisfies it.
type Generator interface {
	Generate(s model.Situation, u model.User) model.Decision
}

// Result pairs a scenario with the decision it produced.
type Result struct {
	Scenario Scenario
	Decision model.Decision
}

// Replay runs every scenario through gen with at most workers in flight
// and returns the results in input order. workers <= 0 uses one per CPU.
// Cancelling ctx stops scheduling and returns the context error.
func Replay(ctx context.Context, gen Generator, scenarios []Scenario, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sc := range scenarios {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Result{
				Scenario: sc,
				Decision: gen.Generate(sc.Situation, sc.User),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
