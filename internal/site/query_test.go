package site

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/witness-archive/search-cli/internal/fetcher"
	"github.com/witness-archive/search-cli/internal/identity"
	"github.com/witness-archive/search-cli/internal/model"
)

func newSingleQueryForTest(t *testing.T, templates []string, fake *fakeFetcher) *SingleQuery {
	t.Helper()
	src, err := NewSingleQuery("TestQuery", "https://example.com", templates, identity.Default(), fetcher.Options{})
	require.NoError(t, err)
	useFake(src.sess, fake)
	return src
}

func TestNewSingleQuery_Validation(t *testing.T) {
	pool := identity.Default()
	_, err := NewSingleQuery("s", "h", nil, pool, fetcher.Options{})
	assert.Error(t, err)

	_, err = NewSingleQuery("s", "h", []string{"https://example.com/no-placeholder"}, pool, fetcher.Options{})
	assert.Error(t, err)
}

func TestSingleQuery_MatchFound(t *testing.T) {
	fake := &fakeFetcher{respond: func(string) model.FetchResult {
		return page("incident report for Lian\nunrelated line")
	}}
	src := newSingleQueryForTest(t, []string{"https://example.com/?search={name}"}, fake)

	require.NoError(t, src.Setup(context.Background()))
	defer func() { require.NoError(t, src.Teardown()) }()

	results, err := src.SearchName(context.Background(), "Lian")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://example.com/?search=Lian", results[0].URL)
	assert.Equal(t, []string{"incident report for Lian"}, results[0].Instances)
}

func TestSingleQuery_FetchFailureEmitsFailedResult(t *testing.T) {
	fake := &fakeFetcher{respond: func(string) model.FetchResult {
		return serverError()
	}}
	src := newSingleQueryForTest(t, []string{"https://example.com/?search={name}"}, fake)

	require.NoError(t, src.Setup(context.Background()))
	results, err := src.SearchName(context.Background(), "Noor")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.True(t, results[0].Failed())
	assert.Equal(t, "Noor", results[0].Name)
	assert.Equal(t, 0, results[0].Count())
}

func TestSingleQuery_NoMatchIsEmptyNotNil(t *testing.T) {
	fake := &fakeFetcher{respond: func(string) model.FetchResult {
		return page("nothing to see")
	}}
	src := newSingleQueryForTest(t, []string{"https://example.com/?search={name}"}, fake)

	require.NoError(t, src.Setup(context.Background()))
	results, err := src.SearchName(context.Background(), "Lian")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.False(t, results[0].Failed())
	assert.Empty(t, results[0].Instances)
}

func TestSingleQuery_AllTemplatesQueried(t *testing.T) {
	fake := &fakeFetcher{respond: func(string) model.FetchResult {
		return page("Lian")
	}}
	src := newSingleQueryForTest(t, []string{
		"https://one.example.com/?s={name}",
		"https://two.example.com/?q={name}",
	}, fake)

	require.NoError(t, src.Setup(context.Background()))
	results, err := src.SearchName(context.Background(), "Lian")
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Len(t, fake.fetched(), 2)
}
