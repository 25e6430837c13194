// Package match extracts the lines of a document that mention a name as a
// whole word. Matching is case-insensitive and boundary-based, not fuzzy;
// multi-word names must appear as a contiguous phrase.
package match

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// Lines returns the trimmed lines of text that contain name as a
// case-insensitive whole word. A word boundary is the string edge or any rune
// that is neither a letter nor a digit. Duplicate lines are preserved.
func Lines(text, name string) []string {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}

	var matches []string
	for _, line := range strings.Split(text, "\n") {
		if containsWord(strings.ToLower(line), needle) {
			matches = append(matches, strings.TrimSpace(line))
		}
	}
	return matches
}

// HTML converts an HTML body to its visible text and returns the matching
// lines. Script, style, and noscript content is dropped before matching.
func HTML(body, name string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "match: parse html")
	}

	doc.Find("script, style, noscript").Remove()

	sel := doc.Find("body")
	if sel.Length() == 0 {
		sel = doc.Selection
	}
	return Lines(sel.Text(), name), nil
}

// containsWord reports whether needle occurs in line bounded by
// non-alphanumeric runes or the string edges. Both inputs must already be
// lower-cased.
func containsWord(line, needle string) bool {
	for from := 0; ; {
		i := strings.Index(line[from:], needle)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(needle)
		if boundaryBefore(line, start) && boundaryAfter(line, end) {
			return true
		}
		from = start + 1
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r := lastRune(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r := firstRune(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}
