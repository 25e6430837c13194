package site

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	namePlaceholder = "{name}"
	pagePlaceholder = "{page}"
)

// Template is a URL pattern with {name} and/or {page} placeholders. Building
// a URL takes explicit name and page arguments; the name is percent-encoded.
type Template string

// Validate checks the template up front so a malformed source is rejected
// before any fetch is attempted.
func (t Template) Validate(needName, needPage bool) error {
	raw := string(t)
	if strings.TrimSpace(raw) == "" {
		return eris.New("site: empty url template")
	}
	if needName && !strings.Contains(raw, namePlaceholder) {
		return eris.Errorf("site: template missing %s placeholder: %s", namePlaceholder, raw)
	}
	if needPage && !strings.Contains(raw, pagePlaceholder) {
		return eris.Errorf("site: template missing %s placeholder: %s", pagePlaceholder, raw)
	}

	probe := strings.NewReplacer(namePlaceholder, "probe", pagePlaceholder, "1").Replace(raw)
	u, err := url.Parse(probe)
	if err != nil {
		return eris.Wrapf(err, "site: invalid url template %s", raw)
	}
	if u.Scheme == "" || u.Host == "" {
		return eris.Errorf("site: url template must be absolute: %s", raw)
	}
	return nil
}

// Build substitutes the encoded name and the page number.
func (t Template) Build(name string, page int) string {
	return t.expand(name, strconv.Itoa(page))
}

// WithName substitutes the encoded name into a name-only template.
func (t Template) WithName(name string) string {
	return t.expand(name, "")
}

// Page substitutes the page number into a page-only template.
func (t Template) Page(page int) string {
	return t.expand("", strconv.Itoa(page))
}

// BarePage drops the page suffix from a page-only template, for sources whose
// first page carries no numeric index.
func (t Template) BarePage() string {
	return t.expand("", "")
}

func (t Template) expand(name, page string) string {
	r := strings.NewReplacer(
		namePlaceholder, url.QueryEscape(name),
		pagePlaceholder, page,
	)
	return r.Replace(string(t))
}
