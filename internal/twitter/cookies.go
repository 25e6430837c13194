package twitter

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/rotisserie/eris"
)

// cachedCookie is the serialized form of one session cookie.
type cachedCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

// loadCookies reads cached session cookies. A missing file is not an error:
// it simply means a fresh login is needed.
func loadCookies(path string) ([]*http.Cookie, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "twitter: read cookie cache %s", path)
	}

	var cached []cachedCookie
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, eris.Wrapf(err, "twitter: parse cookie cache %s", path)
	}

	cookies := make([]*http.Cookie, 0, len(cached))
	for _, c := range cached {
		cookies = append(cookies, &http.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		})
	}
	return cookies, nil
}

// saveCookies writes session cookies so future runs can skip logging in.
func saveCookies(path string, cookies []*http.Cookie) error {
	if path == "" {
		return nil
	}
	cached := make([]cachedCookie, 0, len(cookies))
	for _, c := range cookies {
		cached = append(cached, cachedCookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: c.Domain,
			Path:   c.Path,
		})
	}

	raw, err := json.MarshalIndent(cached, "", "  ")
	if err != nil {
		return eris.Wrap(err, "twitter: encode cookie cache")
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return eris.Wrapf(err, "twitter: write cookie cache %s", path)
	}
	return nil
}
