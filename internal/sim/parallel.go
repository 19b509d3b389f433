package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Build constructs an independent world and simulator for one seed.
type Build func(seed int64) (*Simulator, *World, error)

// Ensemble runs the same scenario under consecutive seeds in parallel.
// Every run owns its world and snapshot, so each step stays single
// threaded.
type Ensemble struct {
	build     Build
	numRuns   int
	seedStart int64
}

func NewEnsemble(build Build, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			s, w, err := e.build(cfgCopy.Seed)
			if err != nil {
				return err
			}

			res, err := s.Run(ctx, w, cfgCopy)
			if err != nil {
				return err
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
