package site

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/witness-archive/search-cli/internal/model"
)

// Dispatcher fans a batch of names out across every registered source and
// merges their results. Sources run fully in parallel; a failing source
// contributes an empty result set and never aborts the run.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{registry: reg}
}

// Run searches all sources for all names and returns the merged report.
// Result order only preserves per-call grouping, not a global temporal order.
func (d *Dispatcher) Run(ctx context.Context, names []string) model.Report {
	report := model.Report{
		RunID: uuid.New(),
		Names: names,
	}

	sources := d.registry.All()
	zap.L().Info("starting search run",
		zap.String("run_id", report.RunID.String()),
		zap.Strings("names", names),
		zap.Int("sources", len(sources)),
	)

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	for _, src := range sources {
		g.Go(func() error {
			found, err := SearchAll(gCtx, src, names)
			if err != nil {
				zap.L().Error("source search failed",
					zap.String("run_id", report.RunID.String()),
					zap.String("site", src.Name()),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			report.Results = append(report.Results, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("search run complete",
		zap.String("run_id", report.RunID.String()),
		zap.Int("results", len(report.Results)),
		zap.Int("total_matches", report.TotalMatches()),
	)
	return report
}
