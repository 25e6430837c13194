package site

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/witness-archive/search-cli/internal/fetcher"
	"github.com/witness-archive/search-cli/internal/identity"
	"github.com/witness-archive/search-cli/internal/model"
)

// SingleQuery searches an endpoint whose URL embeds the name. Every query URL
// yields exactly one result per name: matches when the fetch succeeded, nil
// instances when it did not.
type SingleQuery struct {
	name      string
	home      string
	templates []Template

	sess *session
}

// NewSingleQuery validates the query templates and builds the source. Each
// template must contain the {name} placeholder.
func NewSingleQuery(name, home string, templates []string, pool *identity.Pool, opts fetcher.Options) (*SingleQuery, error) {
	if len(templates) == 0 {
		return nil, eris.Errorf("site %s: no query templates configured", name)
	}
	parsed := make([]Template, 0, len(templates))
	for _, raw := range templates {
		t := Template(raw)
		if err := t.Validate(true, false); err != nil {
			return nil, eris.Wrapf(err, "site %s", name)
		}
		parsed = append(parsed, t)
	}
	return &SingleQuery{
		name:      name,
		home:      home,
		templates: parsed,
		sess:      newSession(pool, opts),
	}, nil
}

func (s *SingleQuery) Name() string     { return s.name }
func (s *SingleQuery) HomePage() string { return s.home }

func (s *SingleQuery) Setup(_ context.Context) error {
	s.sess.open()
	return nil
}

func (s *SingleQuery) Teardown() error {
	s.sess.close()
	return nil
}

// SearchName builds one query URL per template, fetches them concurrently,
// and records an outcome for every URL.
func (s *SingleQuery) SearchName(ctx context.Context, name string) ([]model.SearchResult, error) {
	urls := make([]string, 0, len(s.templates))
	for _, t := range s.templates {
		urls = append(urls, t.WithName(name))
	}
	zap.L().Debug("querying site",
		zap.String("site", s.name),
		zap.String("name", name),
		zap.Strings("queries", urls),
	)

	var results []model.SearchResult
	for _, page := range fetchBatch(ctx, s.sess.fetch, urls) {
		if !page.OK() {
			results = append(results, model.SearchResult{URL: page.URL, Name: name})
			continue
		}
		matches := matchedInstances(page.Body, name)
		zap.L().Debug("query matched",
			zap.String("site", s.name),
			zap.String("name", name),
			zap.String("url", page.URL),
			zap.Int("count", len(matches)),
		)
		results = append(results, model.SearchResult{URL: page.URL, Name: name, Instances: matches})
	}
	return results, nil
}
