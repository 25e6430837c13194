package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSearchResult_FailedVsEmpty(t *testing.T) {
	failed := SearchResult{URL: "https://example.com", Name: "Lian"}
	assert.True(t, failed.Failed())
	assert.Equal(t, 0, failed.Count())

	empty := SearchResult{URL: "https://example.com", Name: "Lian", Instances: []string{}}
	assert.False(t, empty.Failed())
	assert.Equal(t, 0, empty.Count())
}

func TestFetchResult_OK(t *testing.T) {
	assert.True(t, FetchResult{Status: 200, Body: "x"}.OK())
	assert.False(t, FetchResult{Status: 404}.OK())
	assert.False(t, FetchResult{Status: 0}.OK())
}

func TestReport_TotalMatches(t *testing.T) {
	report := Report{
		RunID: uuid.New(),
		Results: []SearchResult{
			{URL: "a", Name: "n", Instances: []string{"one", "two"}},
			{URL: "b", Name: "n", Instances: []string{}},
			{URL: "c", Name: "n"}, // failed fetch contributes 0
			{URL: "d", Name: "m", Instances: []string{"three"}},
		},
	}
	assert.Equal(t, 3, report.TotalMatches())
}
