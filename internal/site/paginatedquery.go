package site

import (
	"context"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/witness-archive/search-cli/internal/fetcher"
	"github.com/witness-archive/search-cli/internal/identity"
	"github.com/witness-archive/search-cli/internal/model"
)

// PaginatedQuery searches an endpoint whose URL embeds both the name and a
// page number. Every name paginates on its own: the cursor lives on the stack
// of each SearchName call, so concurrent searches for different names can
// never observe or corrupt each other's progress.
type PaginatedQuery struct {
	name      string
	home      string
	tmpl      Template
	startPage int

	sess *session
}

// NewPaginatedQuery validates the template and builds the source. The
// template must carry both placeholders; startPage defaults to 1.
func NewPaginatedQuery(name, home, template string, startPage int, pool *identity.Pool, opts fetcher.Options) (*PaginatedQuery, error) {
	t := Template(template)
	if err := t.Validate(true, true); err != nil {
		return nil, eris.Wrapf(err, "site %s", name)
	}
	if startPage <= 0 {
		startPage = 1
	}
	return &PaginatedQuery{
		name:      name,
		home:      home,
		tmpl:      t,
		startPage: startPage,
		sess:      newSession(pool, opts),
	}, nil
}

func (s *PaginatedQuery) Name() string     { return s.name }
func (s *PaginatedQuery) HomePage() string { return s.home }

func (s *PaginatedQuery) Setup(_ context.Context) error {
	s.sess.open()
	return nil
}

func (s *PaginatedQuery) Teardown() error {
	s.sess.close()
	return nil
}

// SearchName paginates this name's result pages in batches until a batch
// contains a 404. The 404 ends pagination for this name only; 200 pages from
// the triggering batch are still matched, and any other failure is recorded
// without stopping the crawl.
func (s *PaginatedQuery) SearchName(ctx context.Context, name string) ([]model.SearchResult, error) {
	if s.sess.fetch == nil {
		return nil, eris.Errorf("site %s: search before setup", s.name)
	}

	var results []model.SearchResult
	cursor := s.startPage

	for range maxPageBatches {
		if ctx.Err() != nil {
			return results, nil
		}

		urls := make([]string, 0, pageBatchSize)
		for page := cursor; page < cursor+pageBatchSize; page++ {
			urls = append(urls, s.tmpl.Build(name, page))
		}
		cursor += pageBatchSize

		stop := false
		for _, page := range fetchBatch(ctx, s.sess.fetch, urls) {
			switch {
			case page.Status == http.StatusNotFound:
				// End of this name's pagination, not an error.
				stop = true
			case !page.OK():
				results = append(results, model.SearchResult{URL: page.URL, Name: name})
			default:
				matches := matchedInstances(page.Body, name)
				if len(matches) == 0 {
					continue
				}
				zap.L().Debug("found matches",
					zap.String("site", s.name),
					zap.String("name", name),
					zap.String("url", page.URL),
					zap.Int("count", len(matches)),
				)
				results = append(results, model.SearchResult{URL: page.URL, Name: name, Instances: matches})
			}
		}
		if stop {
			return results, nil
		}
	}

	zap.L().Warn("pagination never terminated, giving up",
		zap.String("site", s.name),
		zap.String("name", name),
	)
	return results, nil
}
