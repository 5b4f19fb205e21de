package checker

import (
	"strings"
)

// DomainClassifier tests a URL host against the skip and parking domain sets.
// Matching is a case-insensitive substring test on the host only.
type DomainClassifier struct {
	skip    []string
	parking []string
}

// NewDomainClassifier builds a classifier from the given domain lists.
func NewDomainClassifier(skip, parking []string) DomainClassifier {
	return DomainClassifier{
		skip:    lowerAll(skip),
		parking: lowerAll(parking),
	}
}

// IsSkipped reports whether rawURL points at a platform that should not be probed.
func (d DomainClassifier) IsSkipped(rawURL string) bool {
	return matchHost(Host(rawURL), d.skip)
}

// IsParking reports whether rawURL points at a registrar or parking service.
func (d DomainClassifier) IsParking(rawURL string) bool {
	return matchHost(Host(rawURL), d.parking)
}

func matchHost(host string, domains []string) bool {
	if host == "" {
		return false
	}
	for _, d := range domains {
		if strings.Contains(host, d) {
			return true
		}
	}

	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}

	return out
}
