package fetcher

import (
	"context"

	"github.com/witness-archive/search-cli/internal/model"
)

// PageFetcher fetches one page by URL. Implementations never surface a
// transport failure as an error: every call produces a FetchResult so one bad
// fetch cannot abort sibling fetches in the same batch.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) model.FetchResult
}
