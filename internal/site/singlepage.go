package site

import (
	"context"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/witness-archive/search-cli/internal/fetcher"
	"github.com/witness-archive/search-cli/internal/identity"
	"github.com/witness-archive/search-cli/internal/model"
)

// SinglePage searches a fixed, name-independent list of URLs. Setup fetches
// every URL once and caches the successful bodies; each SearchName re-matches
// the same cached pages. URLs whose fetch failed are skipped, they never emit
// a failed result.
type SinglePage struct {
	name string
	home string
	urls []string

	sess  *session
	pages []model.FetchResult
}

// NewSinglePage validates the URL list and builds the source.
func NewSinglePage(name, home string, urls []string, pool *identity.Pool, opts fetcher.Options) (*SinglePage, error) {
	if len(urls) == 0 {
		return nil, eris.Errorf("site %s: no urls configured", name)
	}
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "site %s: invalid url %s", name, raw)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, eris.Errorf("site %s: url must be absolute: %s", name, raw)
		}
	}
	return &SinglePage{
		name: name,
		home: home,
		urls: urls,
		sess: newSession(pool, opts),
	}, nil
}

func (s *SinglePage) Name() string     { return s.name }
func (s *SinglePage) HomePage() string { return s.home }

// Setup opens the session and caches every configured page for the batch.
func (s *SinglePage) Setup(ctx context.Context) error {
	s.sess.open()
	s.pages = nil
	for _, page := range fetchBatch(ctx, s.sess.fetch, s.urls) {
		if page.OK() {
			s.pages = append(s.pages, page)
		}
	}
	return nil
}

func (s *SinglePage) Teardown() error {
	s.pages = nil
	s.sess.close()
	return nil
}

// SearchName matches the name against the cached page bodies.
func (s *SinglePage) SearchName(_ context.Context, name string) ([]model.SearchResult, error) {
	var results []model.SearchResult
	for _, page := range s.pages {
		matches := matchedInstances(page.Body, name)
		if len(matches) == 0 {
			zap.L().Debug("no matches",
				zap.String("site", s.name),
				zap.String("name", name),
				zap.String("url", page.URL),
			)
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
