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

// Paginated searches an archive whose pages are numbered but name-independent.
// Setup walks the pages in concurrent batches until a batch contains a 404 and
// caches every 200 page; the cache is shared by all names in the batch, so
// pages are fetched once per run rather than once per name.
type Paginated struct {
	name      string
	home      string
	tmpl      Template
	firstPage int

	sess  *session
	pages []model.FetchResult
}

// NewPaginated validates the page template and builds the source. firstPage
// defaults to 1; 0 marks a source whose first page has no numeric suffix.
func NewPaginated(name, home, template string, firstPage int, pool *identity.Pool, opts fetcher.Options) (*Paginated, error) {
	t := Template(template)
	if err := t.Validate(false, true); err != nil {
		return nil, eris.Wrapf(err, "site %s", name)
	}
	if firstPage < 0 {
		return nil, eris.Errorf("site %s: first page must be >= 0, got %d", name, firstPage)
	}
	return &Paginated{
		name:      name,
		home:      home,
		tmpl:      t,
		firstPage: firstPage,
		sess:      newSession(pool, opts),
	}, nil
}

func (s *Paginated) Name() string     { return s.name }
func (s *Paginated) HomePage() string { return s.home }

// Setup opens the session and accumulates the page cache for the batch.
func (s *Paginated) Setup(ctx context.Context) error {
	s.sess.open()
	s.pages = s.crawl(ctx)
	zap.L().Debug("paginated crawl complete",
		zap.String("site", s.name),
		zap.Int("pages", len(s.pages)),
	)
	return nil
}

func (s *Paginated) Teardown() error {
	s.pages = nil
	s.sess.close()
	return nil
}

// crawl fetches page batches until one of them contains a 404. The whole batch
// is awaited before the termination decision, so 200 siblings of the
// triggering batch are still kept.
func (s *Paginated) crawl(ctx context.Context) []model.FetchResult {
	var kept []model.FetchResult
	cursor := s.firstPage

	for range maxPageBatches {
		if ctx.Err() != nil {
			return kept
		}

		var batch []model.FetchResult
		if cursor == 0 {
			// The first page has no numeric suffix; fetch it alone, then
			// resume numbering at page 2.
			batch = fetchBatch(ctx, s.sess.fetch, []string{s.tmpl.BarePage()})
			cursor = 2
		} else {
			urls := make([]string, 0, pageBatchSize)
			for page := cursor; page < cursor+pageBatchSize; page++ {
				urls = append(urls, s.tmpl.Page(page))
			}
			batch = fetchBatch(ctx, s.sess.fetch, urls)
			cursor += pageBatchSize
		}

		stop := false
		for _, page := range batch {
			if page.OK() {
				kept = append(kept, page)
			}
			if page.Status == http.StatusNotFound {
				stop = true
			}
		}
		if stop {
			return kept
		}
	}

	zap.L().Warn("pagination never terminated, giving up",
		zap.String("site", s.name),
		zap.Int("pages", len(kept)),
	)
	return kept
}

// SearchName matches the name against the cached page set.
func (s *Paginated) SearchName(_ context.Context, name string) ([]model.SearchResult, error) {
	var results []model.SearchResult
	for _, page := range s.pages {
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
	return results, nil
}
