package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Status is the health classification assigned to a probed website.
// The set of values is closed; every probe outcome maps to exactly one of them.
type Status string

const (
	// StatusOK indicates the website answered with a healthy page.
	StatusOK Status = "OK"
	// StatusNoWebsite indicates the business did not publish a website URL.
	StatusNoWebsite Status = "NO_WEBSITE"
	// StatusNoDNS indicates the host name could not be resolved.
	StatusNoDNS Status = "NO_DNS"
	// StatusDeadDomain indicates the domain itself is gone. It is never
	// produced by the prober and exists for externally imported results.
	StatusDeadDomain Status = "DEAD_DOMAIN"
	// StatusSSLError indicates a TLS handshake or certificate failure.
	StatusSSLError Status = "SSL_ERROR"
	// StatusTimeout indicates the attempt exceeded its network timeout.
	StatusTimeout Status = "TIMEOUT"
	// StatusConnectionError indicates a refused, reset or unreachable connection.
	StatusConnectionError Status = "CONNECTION_ERROR"
	// StatusHTTPError4xx indicates the server answered with a 4xx status code.
	StatusHTTPError4xx Status = "HTTP_ERROR_4XX"
	// StatusHTTPError5xx indicates the server answered with a 5xx status code.
	StatusHTTPError5xx Status = "HTTP_ERROR_5XX"
	// StatusRedirectParking indicates the site redirects to, or serves, a parking page.
	StatusRedirectParking Status = "REDIRECT_PARKING"
	// StatusUnderConstruction indicates a "coming soon" placeholder page.
	StatusUnderConstruction Status = "UNDER_CONSTRUCTION"
	// StatusUnknown indicates retries were exhausted on an unclassifiable failure.
	StatusUnknown Status = "UNKNOWN"
)

// AllStatuses returns every status of the taxonomy in declaration order.
func AllStatuses() []Status {
	return []Status{
		StatusOK,
		StatusNoWebsite,
		StatusNoDNS,
		StatusDeadDomain,
		StatusSSLError,
		StatusTimeout,
		StatusConnectionError,
		StatusHTTPError4xx,
		StatusHTTPError5xx,
		StatusRedirectParking,
		StatusUnderConstruction,
		StatusUnknown,
	}
}

// ParseStatus converts a case-insensitive status name into a Status.
func ParseStatus(s string) (Status, error) {
	candidate := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range AllStatuses() {
		if st == candidate {
			return st, nil
		}
	}

	return "", fmt.Errorf("unknown website status %q", s)
}

// StatusSet is an immutable-by-convention set of statuses.
type StatusSet map[Status]struct{}

// NewStatusSet builds a set from the given statuses.
func NewStatusSet(statuses ...Status) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}

	return set
}

// ParseStatusSet builds a set from status names, failing on the first unknown name.
func ParseStatusSet(names []string) (StatusSet, error) {
	set := make(StatusSet, len(names))
	for _, n := range names {
		s, err := ParseStatus(n)
		if err != nil {
			return nil, err
		}
		set[s] = struct{}{}
	}

	return set, nil
}

// DefaultDeadStatuses returns the statuses that qualify a business as a lead:
// everything except OK and NO_WEBSITE.
func DefaultDeadStatuses() StatusSet {
	set := make(StatusSet)
	for _, s := range AllStatuses() {
		if s == StatusOK || s == StatusNoWebsite {
			continue
		}
		set[s] = struct{}{}
	}

	return set
}

// Has reports whether s is a member of the set.
func (s StatusSet) Has(status Status) bool {
	_, ok := s[status]

	return ok
}

// Clone returns a copy of the set.
func (s StatusSet) Clone() StatusSet {
	out := make(StatusSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}

	return out
}

// Sorted returns the members in lexical order.
func (s StatusSet) Sorted() []Status {
	out := make([]Status, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// CheckResult is the outcome of probing one website URL.
// It is a value type and is never mutated after being handed downstream.
type CheckResult struct {
	// URL is the normalized URL that was probed.
	URL string `json:"url"`
	// Status is the classification of the website.
	Status Status `json:"status"`
	// StatusCode is the HTTP status code, zero when no response was obtained.
	StatusCode int `json:"statusCode,omitempty"`
	// Reason is a short human-readable diagnostic.
	Reason string `json:"reason"`
	// ResponseTimeMS is the wall-clock time from the first attempt until resolution.
	ResponseTimeMS float64 `json:"responseTimeMs,omitempty"`
	// FinalURL is the URL after following redirects, if a response was obtained.
	FinalURL string `json:"finalUrl,omitempty"`
	// CheckedAt is when the probe resolved.
	CheckedAt time.Time `json:"checkedAt"`
}

// HasStatusCode reports whether an HTTP response was obtained.
func (r CheckResult) HasStatusCode() bool { return r.StatusCode != 0 }

// IsDead reports whether the result's status is a member of the dead set.
func (r CheckResult) IsDead(dead StatusSet) bool { return dead.Has(r.Status) }
