package main

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/witness-archive/search-cli/internal/config"
	"github.com/witness-archive/search-cli/internal/fetcher"
	"github.com/witness-archive/search-cli/internal/identity"
	"github.com/witness-archive/search-cli/internal/site"
	"github.com/witness-archive/search-cli/internal/twitter"
)

// buildDispatcher assembles the identity pool, catalog, and source registry
// from configuration. Misconfigured sources are excluded individually; only a
// catalog that yields no sources at all is fatal.
func buildDispatcher(cfg *config.Config) (*site.Dispatcher, error) {
	pool, err := loadPool(cfg.Sites)
	if err != nil {
		return nil, err
	}

	catalog, err := site.LoadCatalog(cfg.Sites.Catalog)
	if err != nil {
		return nil, err
	}

	opts := fetcher.Options{
		Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetch.MaxRetries,
		Rate:       rate.Limit(cfg.Fetch.Rate),
		Burst:      cfg.Fetch.Burst,
	}

	reg := site.BuildRegistry(catalog, pool, opts, func(e site.CatalogEntry) (site.Source, error) {
		if e.Type != "twitter" {
			return nil, eris.Errorf("unknown source type %q", e.Type)
		}
		return buildTwitterSource(cfg.Twitter)
	})

	if len(reg.Names()) == 0 {
		return nil, eris.New("no usable sources configured")
	}
	return site.NewDispatcher(reg), nil
}

func loadPool(cfg config.SitesConfig) (*identity.Pool, error) {
	if cfg.AgentsFile == "" {
		return identity.Default(), nil
	}
	pool, err := identity.Load(cfg.AgentsFile)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("loaded identity pool",
		zap.String("file", cfg.AgentsFile),
		zap.Int("agents", pool.Len()),
	)
	return pool, nil
}

func buildTwitterSource(cfg config.TwitterConfig) (site.Source, error) {
	client, err := twitter.NewHTTPClient(twitter.Credentials{
		Username: cfg.Username,
		Email:    cfg.Email,
		Password: cfg.Password,
	}, cfg.CookieFile)
	if err != nil {
		return nil, err
	}
	return twitter.NewSource(client), nil
}
