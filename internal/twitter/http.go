package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	apiBase = "https://api.twitter.com"

	// Public web-app bearer token; identifies the frontend, not the account.
	bearerToken = "AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs" +
		"%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"
)

// HTTPClient implements Client against the feed's private web API using an
// account session. Cookies are cached between runs so most invocations skip
// the login flow entirely.
type HTTPClient struct {
	creds      Credentials
	cookieFile string
	base       string
	client     *http.Client

	guestToken string
	authed     bool
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithBaseURL points the client at a different API host, for tests.
func WithBaseURL(base string) Option {
	return func(c *HTTPClient) { c.base = base }
}

// NewHTTPClient validates the credentials and builds the client. Incomplete
// credentials are a configuration error surfaced before any network call.
func NewHTTPClient(creds Credentials, cookieFile string, opts ...Option) (*HTTPClient, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, eris.Wrap(err, "twitter: create cookie jar")
	}
	c := &HTTPClient{
		creds:      creds,
		cookieFile: cookieFile,
		base:       apiBase,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Login authenticates the session. Cached cookies are tried first; a full
// credential login only happens when no usable cache exists, and its cookies
// are saved for the next run.
func (c *HTTPClient) Login(ctx context.Context) error {
	if c.authed {
		return nil
	}

	cookies, err := loadCookies(c.cookieFile)
	if err != nil {
		zap.L().Warn("cookie cache unusable, logging in fresh", zap.Error(err))
	}
	if len(cookies) > 0 {
		u, _ := url.Parse(c.base)
		c.client.Jar.SetCookies(u, cookies)
		c.authed = true
		zap.L().Debug("twitter session restored from cookie cache")
		return nil
	}

	if err := c.flowLogin(ctx); err != nil {
		return eris.Wrap(err, "twitter: login")
	}
	c.authed = true

	u, _ := url.Parse(c.base)
	if err := saveCookies(c.cookieFile, c.client.Jar.Cookies(u)); err != nil {
		zap.L().Warn("failed to save cookie cache", zap.Error(err))
	}
	return nil
}

// flowLogin walks the onboarding flow: start, submit identifier, submit
// password. Each step exchanges a flow token.
func (c *HTTPClient) flowLogin(ctx context.Context) error {
	if err := c.activateGuestToken(ctx); err != nil {
		return err
	}

	token, err := c.flowStep(ctx, map[string]any{
		"flow_name": "login",
		"input_flow_data": map[string]any{
			"flow_context": map[string]any{
				"start_location": map[string]any{"location": "splash_screen"},
			},
		},
	})
	if err != nil {
		return eris.Wrap(err, "start flow")
	}

	token, err = c.flowStep(ctx, map[string]any{
		"flow_token": token,
		"subtask_inputs": []map[string]any{{
			"subtask_id": "LoginEnterUserIdentifierSSO",
			"settings_list": map[string]any{
				"setting_responses": []map[string]any{{
					"key": "user_identifier",
					"response_data": map[string]any{
						"text_data": map[string]any{"result": c.creds.Email},
					},
				}},
				"link": "next_link",
			},
		}},
	})
	if err != nil {
		return eris.Wrap(err, "submit identifier")
	}

	_, err = c.flowStep(ctx, map[string]any{
		"flow_token": token,
		"subtask_inputs": []map[string]any{{
			"subtask_id": "LoginEnterPassword",
			"enter_password": map[string]any{
				"password": c.creds.Password,
				"link":     "next_link",
			},
		}},
	})
	if err != nil {
		return eris.Wrap(err, "submit password")
	}
	return nil
}

func (c *HTTPClient) activateGuestToken(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/1.1/guest/activate.json", nil)
	if err != nil {
		return eris.Wrap(err, "activate guest token")
	}
	var body struct {
		GuestToken string `json:"guest_token"`
	}
	if err := json.Unmarshal(resp, &body); err != nil {
		return eris.Wrap(err, "parse guest token")
	}
	if body.GuestToken == "" {
		return eris.New("empty guest token")
	}
	c.guestToken = body.GuestToken
	return nil
}

func (c *HTTPClient) flowStep(ctx context.Context, payload map[string]any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", eris.Wrap(err, "encode flow payload")
	}
	resp, err := c.do(ctx, http.MethodPost, "/1.1/onboarding/task.json", raw)
	if err != nil {
		return "", err
	}
	var body struct {
		FlowToken string `json:"flow_token"`
	}
	if err := json.Unmarshal(resp, &body); err != nil {
		return "", eris.Wrap(err, "parse flow response")
	}
	return body.FlowToken, nil
}

// SearchTerm runs the adaptive search endpoint for one term.
func (c *HTTPClient) SearchTerm(ctx context.Context, term string) ([]Status, error) {
	if !c.authed {
		return nil, eris.New("twitter: search before login")
	}

	q := url.Values{}
	q.Set("q", term)
	q.Set("count", "20")
	q.Set("query_source", "typed_query")
	q.Set("tweet_search_mode", "top")

	resp, err := c.do(ctx, http.MethodGet, "/2/search/adaptive.json?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrapf(err, "twitter: search %q", term)
	}
	return parseAdaptiveSearch(resp)
}

// do issues one API request with the bearer, guest, and csrf headers set, and
// maps 429 to ErrRateLimited.
func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.guestToken != "" {
		req.Header.Set("X-Guest-Token", c.guestToken)
	}
	if u, err := url.Parse(c.base); err == nil {
		for _, cookie := range c.client.Jar.Cookies(u) {
			if cookie.Name == "ct0" {
				req.Header.Set("X-Csrf-Token", cookie.Value)
			}
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, eris.Wrap(err, "read response")
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, eris.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	return raw, nil
}

// parseAdaptiveSearch flattens the adaptive-search payload into statuses,
// joining each tweet to its author's screen name.
func parseAdaptiveSearch(raw []byte) ([]Status, error) {
	var body struct {
		GlobalObjects struct {
			Tweets map[string]struct {
				FullText  string `json:"full_text"`
				UserIDStr string `json:"user_id_str"`
			} `json:"tweets"`
			Users map[string]struct {
				ScreenName string `json:"screen_name"`
			} `json:"users"`
		} `json:"globalObjects"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, eris.Wrap(err, "twitter: parse search response")
	}

	statuses := make([]Status, 0, len(body.GlobalObjects.Tweets))
	for id, tweet := range body.GlobalObjects.Tweets {
		author := body.GlobalObjects.Users[tweet.UserIDStr].ScreenName
		statuses = append(statuses, Status{
			ID:     id,
			Author: author,
			Text:   tweet.FullText,
		})
	}
	return statuses, nil
}
