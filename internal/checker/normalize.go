package checker

import (
	"net/url"
	"strings"
	"unicode"
)

// NormalizeURL canonicalizes a website string taken from a business listing
// into an absolute URL that can be probed.
//
//   - Surrounding whitespace and trailing slashes are removed
//   - A missing http:// or https:// prefix becomes https://
//   - Blank input yields "", meaning the business has no website
//
// NormalizeURL is idempotent.
func NormalizeURL(raw string) string {
	u := strings.TrimLeftFunc(raw, unicode.IsSpace)
	u = strings.TrimRightFunc(u, func(r rune) bool {
		return r == '/' || unicode.IsSpace(r)
	})
	if u == "" {
		return ""
	}

	if !hasHTTPScheme(u) {
		u = "https://" + u
	}

	return u
}

func hasHTTPScheme(u string) bool {
	lower := strings.ToLower(u)

	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Host returns the lowercase host name of rawURL without port, or "" when it
// cannot be parsed.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	return strings.ToLower(u.Hostname())
}
