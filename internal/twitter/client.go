// Package twitter adapts the authenticated social feed to the site.Source
// contract. The wire client is a boundary: the core only needs login and a
// term search, everything else (cookie cache, rate limits, permalinks) stays
// on this side of it.
package twitter

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
)

// Status is one post returned by a term search.
type Status struct {
	ID     string
	Author string
	Text   string
}

// Permalink returns the canonical URL of the status.
func (s Status) Permalink() string {
	return "https://twitter.com/" + s.Author + "/status/" + s.ID
}

// Client is the boundary to the social feed.
type Client interface {
	// Login authenticates the client, reusing cached cookies when possible.
	Login(ctx context.Context) error

	// SearchTerm returns the statuses mentioning the given term.
	SearchTerm(ctx context.Context, term string) ([]Status, error)
}

// ErrRateLimited marks a search rejected by the feed's rate limiter.
var ErrRateLimited = eris.New("twitter: rate limited")

// Credentials holds the account used to authenticate.
type Credentials struct {
	Username string
	Email    string
	Password string
}

// Validate rejects incomplete credentials before any network call is made.
func (c Credentials) Validate() error {
	var missing []string
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Email == "" {
		missing = append(missing, "email")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return eris.Errorf("twitter: missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}
