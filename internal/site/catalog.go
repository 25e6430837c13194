package site

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/witness-archive/search-cli/internal/fetcher"
	"github.com/witness-archive/search-cli/internal/identity"
)

// Source types accepted in a catalog entry.
const (
	TypeSingle         = "single"
	TypeQuery          = "query"
	TypePaginated      = "paginated"
	TypePaginatedQuery = "paginated_query"
)

//go:embed sites.yaml
var defaultCatalog []byte

// CatalogEntry is the static configuration of one source.
type CatalogEntry struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	Home      string   `yaml:"home"`
	URLs      []string `yaml:"urls,omitempty"`
	Queries   []string `yaml:"queries,omitempty"`
	Template  string   `yaml:"template,omitempty"`
	FirstPage *int     `yaml:"first_page,omitempty"`
	StartPage *int     `yaml:"start_page,omitempty"`
}

// Catalog is the full set of configured sources.
type Catalog struct {
	Sources []CatalogEntry `yaml:"sources"`
}

// LoadCatalog reads a catalog file, or the embedded default when path is
// empty.
func LoadCatalog(path string) (Catalog, error) {
	raw := defaultCatalog
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return Catalog{}, eris.Wrapf(err, "site: read catalog %s", path)
		}
	}

	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, eris.Wrap(err, "site: parse catalog")
	}
	if len(c.Sources) == 0 {
		return Catalog{}, eris.New("site: catalog has no sources")
	}
	return c, nil
}

// BuildRegistry constructs every catalog source. A misconfigured entry is
// fatal to that source only: it is logged and excluded while the rest load.
// Entries whose type is not one of the HTTP variants are delegated to extra
// (nil source means skip); a nil extra skips them with a warning.
func BuildRegistry(c Catalog, pool *identity.Pool, opts fetcher.Options, extra func(CatalogEntry) (Source, error)) *Registry {
	reg := NewRegistry()
	for _, e := range c.Sources {
		src, err := buildSource(e, pool, opts, extra)
		if err != nil {
			zap.L().Error("skipping misconfigured source",
				zap.String("source", e.Name),
				zap.String("type", e.Type),
				zap.Error(err),
			)
			continue
		}
		if src == nil {
			continue
		}
		reg.Register(src)
	}
	return reg
}

func buildSource(e CatalogEntry, pool *identity.Pool, opts fetcher.Options, extra func(CatalogEntry) (Source, error)) (Source, error) {
	if e.Name == "" {
		return nil, eris.New("site: catalog entry missing name")
	}

	switch e.Type {
	case TypeSingle:
		return NewSinglePage(e.Name, e.Home, e.URLs, pool, opts)
	case TypeQuery:
		return NewSingleQuery(e.Name, e.Home, e.Queries, pool, opts)
	case TypePaginated:
		first := 1
		if e.FirstPage != nil {
			first = *e.FirstPage
		}
		return NewPaginated(e.Name, e.Home, e.Template, first, pool, opts)
	case TypePaginatedQuery:
		start := 1
		if e.StartPage != nil {
			start = *e.StartPage
		}
		return NewPaginatedQuery(e.Name, e.Home, e.Template, start, pool, opts)
	default:
		if extra != nil {
			return extra(e)
		}
		zap.L().Warn("no builder for source type",
			zap.String("source", e.Name),
			zap.String("type", e.Type),
		)
		return nil, nil
	}
}
