package site

import (
	"context"
	"net/http"
	"sync"

	"github.com/witness-archive/search-cli/internal/fetcher"
	"github.com/witness-archive/search-cli/internal/model"
)

// fakeFetcher records every fetched URL and answers from a canned routing
// function. The default response is a 404.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   []string
	respond func(url string) model.FetchResult
	closed  bool
}

func (f *fakeFetcher) FetchPage(_ context.Context, url string) model.FetchResult {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()

	if f.respond != nil {
		res := f.respond(url)
		res.URL = url
		return res
	}
	return model.FetchResult{URL: url, Status: http.StatusNotFound}
}

func (f *fakeFetcher) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *fakeFetcher) fetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// useFake wires a fake fetcher into a source's session.
func useFake(s *session, f *fakeFetcher) {
	s.build = func(fetcher.Options) fetcher.PageFetcher { return f }
}

// page is a shorthand for a successful fetch with the given visible text.
func page(text string) model.FetchResult {
	return model.FetchResult{Status: http.StatusOK, Body: "<html><body>" + text + "</body></html>"}
}

func notFound() model.FetchResult {
	return model.FetchResult{Status: http.StatusNotFound}
}

func serverError() model.FetchResult {
	return model.FetchResult{Status: http.StatusInternalServerError}
}
