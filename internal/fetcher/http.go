package fetcher

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/time/rate"

	"github.com/witness-archive/search-cli/internal/model"
)

// maxBodyBytes caps how much of a response body is read into memory.
const maxBodyBytes = 2 << 20

// Options configures the HTTP fetcher.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	Rate       rate.Limit
	Burst      int
}

// HTTPFetcher implements PageFetcher over net/http with per-host rate
// limiting. Transport errors and 429s are retried with exponential backoff;
// any other status is returned as-is so callers can apply their own policy
// (404 is a pagination terminator, not a retryable failure).
type HTTPFetcher struct {
	client *http.Client
	opts   Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "search-cli/1.0"
	}
	if opts.Rate == 0 {
		opts.Rate = 10
	}
	if opts.Burst == 0 {
		opts.Burst = 10
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Close releases idle connections held by the fetcher.
func (f *HTTPFetcher) Close() {
	f.client.CloseIdleConnections()
}

func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(f.opts.Rate, f.opts.Burst)
		f.limiters[host] = lim
	}
	return lim
}

// FetchPage fetches one URL. It never returns an error: transport failures
// become a result with Status 0 and an empty body, non-200 responses keep
// their status code with an empty body.
func (f *HTTPFetcher) FetchPage(ctx context.Context, rawURL string) model.FetchResult {
	zap.L().Debug("fetching page", zap.String("url", rawURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		zap.L().Error("invalid fetch url", zap.String("url", rawURL), zap.Error(err))
		return model.FetchResult{URL: rawURL}
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.doWithRetry(ctx, req)
	if err != nil {
		zap.L().Error("fetch failed",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return model.FetchResult{URL: rawURL}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		zap.L().Error("unexpected fetch status",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
		)
		return model.FetchResult{URL: rawURL, Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		zap.L().Error("read fetch body",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return model.FetchResult{URL: rawURL}
	}

	body := decodeBody(raw, resp.Header.Get("Content-Type"))
	return model.FetchResult{URL: rawURL, Status: resp.StatusCode, Body: body}
}

// doWithRetry retries transport errors and 429s; every other response is
// returned to the caller untouched.
func (f *HTTPFetcher) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	lim := f.limiterFor(req.URL.String())

	var lastErr error
	for attempt := range f.opts.MaxRetries {
		if err := lim.Wait(ctx); err != nil {
			return nil, err
		}

		cloned := req.Clone(ctx)
		resp, err := f.client.Do(cloned)
		if err != nil {
			lastErr = err
			zap.L().Warn("http request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			f.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			lastErr = errTooManyRequests
			zap.L().Warn("rate limited (429), backing off",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
			)
			f.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

var errTooManyRequests = &retryError{"too many requests"}

type retryError struct{ msg string }

func (e *retryError) Error() string { return e.msg }

func (f *HTTPFetcher) backoff(ctx context.Context, attempt int) {
	base := time.Second
	maxBackoff := 30 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(d) / 2))
	d = d + jitter

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// decodeBody converts a response body to UTF-8 using the charset declared in
// the Content-Type header. Bodies with no charset, or an unknown one, are
// returned unchanged.
func decodeBody(raw []byte, contentType string) string {
	if contentType == "" {
		return string(raw)
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(raw)
	}
	charset := strings.ToLower(params["charset"])
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return string(raw)
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		zap.L().Debug("unknown charset, keeping raw body", zap.String("charset", charset))
		return string(raw)
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}
