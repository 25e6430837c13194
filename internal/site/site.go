// Package site implements the site-search strategies. Each external source is
// one Source behind a shared setup/search/teardown lifecycle; four variants
// cover single static pages, name-driven query endpoints, page-number
// pagination, and name+page pagination. Pagination fetches pages in concurrent
// batches and stops at the first batch containing a 404.
package site

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/witness-archive/search-cli/internal/fetcher"
	"github.com/witness-archive/search-cli/internal/match"
	"github.com/witness-archive/search-cli/internal/model"
)

// pageBatchSize is how many pages a paginated source fetches concurrently
// before deciding whether to continue.
const pageBatchSize = 5

// maxPageBatches bounds a pagination crawl against sources that never return
// a 404.
const maxPageBatches = 100

// Source is one searchable external site or feed.
//
// Setup acquires the batch resources (HTTP session, identity header, cached
// pages) and must be called once before any SearchName; Teardown releases
// them. SearchName may be called concurrently for different names between
// Setup and Teardown and must not share mutable search state across calls.
type Source interface {
	Name() string
	HomePage() string
	Setup(ctx context.Context) error
	SearchName(ctx context.Context, name string) ([]model.SearchResult, error)
	Teardown() error
}

// SearchAll runs one batch of names against a source: Setup once, SearchName
// fanned out concurrently per name, Teardown on every exit path. A failed
// name search is logged and contributes nothing; it never aborts its siblings.
func SearchAll(ctx context.Context, src Source, names []string) ([]model.SearchResult, error) {
	zap.L().Info("searching site",
		zap.String("site", src.Name()),
		zap.Strings("names", names),
	)

	if err := src.Setup(ctx); err != nil {
		return nil, eris.Wrapf(err, "site %s: setup", src.Name())
	}
	defer func() {
		if err := src.Teardown(); err != nil {
			zap.L().Warn("site teardown failed",
				zap.String("site", src.Name()),
				zap.Error(err),
			)
		}
	}()

	var (
		mu      sync.Mutex
		results []model.SearchResult
	)
	g, gCtx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			found, err := src.SearchName(gCtx, name)
			if err != nil {
				zap.L().Error("name search failed",
					zap.String("site", src.Name()),
					zap.String("name", name),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			results = append(results, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

// fetchBatch issues one batch of fetches and waits for the whole batch. The
// batch is the synchronization barrier over which pagination-termination
// decisions are made: no fetch outcome is acted on until all have returned.
func fetchBatch(ctx context.Context, f fetcher.PageFetcher, urls []string) []model.FetchResult {
	results := make([]model.FetchResult, len(urls))
	g, gCtx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = f.FetchPage(gCtx, u)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// matchedInstances extracts the lines of an HTML body that mention name. The
// return is never nil: a fetched page that matched nothing yields an empty
// slice, keeping the nil-means-fetch-failed convention intact.
func matchedInstances(body, name string) []string {
	matches, err := match.HTML(body, name)
	if err != nil {
		zap.L().Warn("html match failed", zap.String("name", name), zap.Error(err))
		matches = nil
	}
	if matches == nil {
		matches = []string{}
	}
	return matches
}
