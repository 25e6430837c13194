package twitter

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/witness-archive/search-cli/internal/match"
	"github.com/witness-archive/search-cli/internal/model"
)

// Source adapts the feed client to the site.Source contract. Word-order
// variations of a multi-word name are searched concurrently and the statuses
// are deduped by ID across variations before being turned into results.
type Source struct {
	name   string
	home   string
	client Client
}

// NewSource wraps a feed client as a searchable source.
func NewSource(client Client) *Source {
	return &Source{
		name:   "Twitter",
		home:   "https://twitter.com",
		client: client,
	}
}

func (s *Source) Name() string     { return s.name }
func (s *Source) HomePage() string { return s.home }

// Setup logs the client in. A failed login fails the whole source: it
// contributes nothing to the run while other sources proceed.
func (s *Source) Setup(ctx context.Context) error {
	if err := s.client.Login(ctx); err != nil {
		return eris.Wrap(err, "twitter: authenticate")
	}
	return nil
}

func (s *Source) Teardown() error { return nil }

// SearchName searches every variation of the name, dedups the statuses, and
// keeps the text lines that mention the searched variation as a whole word.
func (s *Source) SearchName(ctx context.Context, name string) ([]model.SearchResult, error) {
	type hit struct {
		status    Status
		variation string
	}

	var (
		mu   sync.Mutex
		hits []hit
	)
	g, gCtx := errgroup.WithContext(ctx)
	for _, variation := range Variations(name) {
		g.Go(func() error {
			statuses, err := s.client.SearchTerm(gCtx, variation)
			if err != nil {
				// One variation failing (rate limit included) must not sink
				// the others.
				zap.L().Error("twitter search failed",
					zap.String("term", variation),
					zap.Error(err),
				)
				return nil
			}
			mu.Lock()
			for _, st := range statuses {
				hits = append(hits, hit{status: st, variation: variation})
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// Dedup by status identity across variations.
	seen := make(map[string]bool)
	var results []model.SearchResult
	for _, h := range hits {
		if seen[h.status.ID] {
			continue
		}
		seen[h.status.ID] = true

		lines := match.Lines(h.status.Text, h.variation)
		if len(lines) == 0 {
			continue
		}
		results = append(results, model.SearchResult{
			URL:       h.status.Permalink(),
			Name:      name,
			Instances: lines,
		})
	}

	zap.L().Debug("twitter search complete",
		zap.String("name", name),
		zap.Int("statuses", len(seen)),
		zap.Int("results", len(results)),
	)
	return results, nil
}

// Variations returns the unique word-order permutations of a name. A
// single-word name yields itself.
func Variations(name string) []string {
	words := strings.Fields(name)
	if len(words) <= 1 {
		return []string{strings.TrimSpace(name)}
	}

	seen := make(map[string]bool)
	var out []string
	permute(words, 0, func(p []string) {
		v := strings.Join(p, " ")
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	})
	sort.Strings(out)
	return out
}

func permute(words []string, i int, visit func([]string)) {
	if i == len(words)-1 {
		visit(words)
		return
	}
	for j := i; j < len(words); j++ {
		words[i], words[j] = words[j], words[i]
		permute(words, i+1, visit)
		words[i], words[j] = words[j], words[i]
	}
}
