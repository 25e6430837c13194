package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = Credentials{Username: "witness", Email: "w@example.com", Password: "hunter2"}

func TestCredentials_Validate(t *testing.T) {
	assert.NoError(t, testCreds.Validate())

	err := Credentials{Username: "witness"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "password")
}

func TestNewHTTPClient_RejectsIncompleteCredentials(t *testing.T) {
	_, err := NewHTTPClient(Credentials{}, "")
	assert.Error(t, err)
}

func TestHTTPClient_SearchBeforeLogin(t *testing.T) {
	c, err := NewHTTPClient(testCreds, "")
	require.NoError(t, err)

	_, err = c.SearchTerm(context.Background(), "Lian")
	assert.Error(t, err)
}

func TestHTTPClient_LoginRestoresFromCookieCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	cookieFile := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(cookieFile, []byte(`[
		{"name": "auth_token", "value": "cached", "path": "/"}
	]`), 0o600))

	c, err := NewHTTPClient(testCreds, cookieFile, WithBaseURL(srv.URL))
	require.NoError(t, err)

	require.NoError(t, c.Login(context.Background()))
	assert.Equal(t, int32(0), calls.Load(), "cached session skips the login flow")
	// Idempotent.
	require.NoError(t, c.Login(context.Background()))
	assert.Equal(t, int32(0), calls.Load())
}

func TestHTTPClient_FlowLoginSavesCookies(t *testing.T) {
	var flowSteps atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/1.1/guest/activate.json":
			assert.Equal(t, http.MethodPost, r.Method)
			_ = json.NewEncoder(w).Encode(map[string]string{"guest_token": "g123"})
		case "/1.1/onboarding/task.json":
			assert.Equal(t, "g123", r.Header.Get("X-Guest-Token"))
			flowSteps.Add(1)
			http.SetCookie(w, &http.Cookie{Name: "auth_token", Value: "fresh", Path: "/"})
			_ = json.NewEncoder(w).Encode(map[string]string{"flow_token": "f1"})
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	cookieFile := filepath.Join(t.TempDir(), "cookies.json")
	c, err := NewHTTPClient(testCreds, cookieFile, WithBaseURL(srv.URL))
	require.NoError(t, err)

	require.NoError(t, c.Login(context.Background()))
	assert.Equal(t, int32(3), flowSteps.Load(), "start, identifier, password")

	saved, err := loadCookies(cookieFile)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "auth_token", saved[0].Name)
	assert.Equal(t, "fresh", saved[0].Value)
}

func TestHTTPClient_SearchTerm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/search/adaptive.json" {
			t.Errorf("unexpected request to %s", r.URL.Path)
			return
		}
		assert.Equal(t, "Lian Hussein", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{
			"globalObjects": {
				"tweets": {
					"9001": {"full_text": "Remembering Lian Hussein", "user_id_str": "7"}
				},
				"users": {
					"7": {"screen_name": "witness"}
				}
			}
		}`))
	}))
	defer srv.Close()

	c, err := NewHTTPClient(testCreds, "", WithBaseURL(srv.URL))
	require.NoError(t, err)
	c.authed = true

	statuses, err := c.SearchTerm(context.Background(), "Lian Hussein")
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, Status{ID: "9001", Author: "witness", Text: "Remembering Lian Hussein"}, statuses[0])
	assert.Equal(t, "https://twitter.com/witness/status/9001", statuses[0].Permalink())
}

func TestHTTPClient_SearchRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewHTTPClient(testCreds, "", WithBaseURL(srv.URL))
	require.NoError(t, err)
	c.authed = true

	_, err = c.SearchTerm(context.Background(), "Lian")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestParseAdaptiveSearch_UnknownAuthor(t *testing.T) {
	statuses, err := parseAdaptiveSearch([]byte(`{
		"globalObjects": {
			"tweets": {"1": {"full_text": "orphaned", "user_id_str": "404"}},
			"users": {}
		}
	}`))
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Empty(t, statuses[0].Author)
}
