package site

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witness-archive/search-cli/internal/model"
)

func TestDispatcher_MergesAllSources(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubSource{
		name: "one",
		results: []model.SearchResult{
			{URL: "https://one/a", Instances: []string{"x", "y"}},
		},
	})
	reg.Register(&stubSource{
		name: "two",
		results: []model.SearchResult{
			{URL: "https://two/b", Instances: []string{"z"}},
		},
	})

	report := NewDispatcher(reg).Run(context.Background(), []string{"Lian", "Noor"})

	assert.NotEqual(t, uuid.Nil, report.RunID)
	assert.Equal(t, []string{"Lian", "Noor"}, report.Names)
	// 2 sources x 2 names x 1 result each.
	assert.Len(t, report.Results, 4)
	assert.Equal(t, 6, report.TotalMatches())
}

func TestDispatcher_SourceFailureIsolated(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubSource{name: "down", setupErr: eris.New("unreachable")})
	healthy := &stubSource{
		name:    "up",
		results: []model.SearchResult{{URL: "https://up/a", Instances: []string{"hit"}}},
	}
	reg.Register(healthy)

	report := NewDispatcher(reg).Run(context.Background(), []string{"Lian"})

	require.Len(t, report.Results, 1)
	assert.Equal(t, "https://up/a", report.Results[0].URL)
	assert.Equal(t, 1, report.TotalMatches())
	assert.Equal(t, int32(1), healthy.teardowns.Load())
}

func TestDispatcher_FailedResultsExcludedFromTotal(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubSource{
		name: "mixed",
		results: []model.SearchResult{
			{URL: "https://mixed/ok", Instances: []string{"a", "b"}},
			{URL: "https://mixed/err"}, // failed fetch
		},
	})

	report := NewDispatcher(reg).Run(context.Background(), []string{"Lian"})
	assert.Equal(t, 2, report.TotalMatches())
}
