package site

import (
	"go.uber.org/zap"

	"github.com/witness-archive/search-cli/internal/fetcher"
	"github.com/witness-archive/search-cli/internal/identity"
)

// session owns the per-batch HTTP resources of one source: a fetcher carrying
// one identity header drawn from the pool. It is opened in Setup and closed
// exactly once in Teardown.
type session struct {
	pool *identity.Pool
	opts fetcher.Options

	// build overrides fetcher construction in tests.
	build func(fetcher.Options) fetcher.PageFetcher

	fetch fetcher.PageFetcher
}

func newSession(pool *identity.Pool, opts fetcher.Options) *session {
	return &session{pool: pool, opts: opts}
}

func (s *session) open() {
	opts := s.opts
	if s.pool != nil {
		opts.UserAgent = s.pool.Pick()
	}
	zap.L().Debug("using identity", zap.String("user_agent", opts.UserAgent))

	if s.build != nil {
		s.fetch = s.build(opts)
		return
	}
	s.fetch = fetcher.NewHTTPFetcher(opts)
}

func (s *session) close() {
	if c, ok := s.fetch.(interface{ Close() }); ok {
		c.Close()
	}
	s.fetch = nil
}
