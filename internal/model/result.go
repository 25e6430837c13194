package model

import "github.com/google/uuid"

// FetchResult holds the outcome of a single page fetch.
// Body is non-empty only when Status is 200; a transport-level failure is
// recorded as Status 0 so callers can distinguish it from an HTTP error.
type FetchResult struct {
	URL    string
	Status int
	Body   string
}

// OK reports whether the fetch succeeded.
func (f FetchResult) OK() bool {
	return f.Status == 200
}

// SearchResult holds the matched lines for one name on one URL.
//
// Instances == nil means the fetch for URL failed; a non-nil empty slice means
// the fetch succeeded but no line matched. Matched lines may repeat; no
// uniqueness is imposed. A SearchResult is never mutated after construction.
type SearchResult struct {
	URL       string   `json:"url"`
	Name      string   `json:"name"`
	Instances []string `json:"instances"`
}

// Failed reports whether the underlying fetch failed.
func (r SearchResult) Failed() bool {
	return r.Instances == nil
}

// Count returns the number of matched lines, 0 for a failed fetch.
func (r SearchResult) Count() int {
	return len(r.Instances)
}

// Report is the merged outcome of one dispatcher run across all sources.
type Report struct {
	RunID   uuid.UUID      `json:"run_id"`
	Names   []string       `json:"names"`
	Results []SearchResult `json:"results"`
}

// TotalMatches sums matched lines over all non-failed results.
func (r Report) TotalMatches() int {
	total := 0
	for _, res := range r.Results {
		total += res.Count()
	}
	return total
}
