package checker

import (
	"finder/internal/config"
	"finder/pkg/domain"
	"finder/pkg/serrors"
	"strings"
	"time"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultAcceptLanguage = "th,en;q=0.9"
	acceptHeader          = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Options configure the prober and the batch orchestrator.
// The domain and phrase lists are read-only once handed to New.
type Options struct {
	// ConcurrencyLimit is the maximum number of probes in flight at once.
	ConcurrencyLimit int
	// Timeout bounds every single network exchange of an attempt.
	Timeout time.Duration
	// MaxRetries is the number of additional attempts after an unclassified failure.
	MaxRetries int
	// RetryBackoff is multiplied by the attempt number to get the pause before a retry.
	RetryBackoff time.Duration
	// CheckContent enables the parking and under-construction page heuristics.
	CheckContent bool
	// MaxRedirects caps the redirect chain before it is reported as a parking symptom.
	MaxRedirects int
	// MaxBodyBytes caps how much of a page is read for content heuristics.
	MaxBodyBytes int64
	// ShortBodyThreshold is the page length, in characters, under which a
	// single under-construction phrase is enough.
	ShortBodyThreshold int
	// UserAgent is sent with every request.
	UserAgent string
	// AcceptLanguage is sent with every request.
	AcceptLanguage string
	// DeadStatuses decides which results count as dead in batch statistics.
	DeadStatuses domain.StatusSet
	// SkipDomains are platform hosts not worth probing.
	SkipDomains []string
	// ParkingDomains are registrar and parking service hosts.
	ParkingDomains []string
	// ParkingPhrases are lowercase phrases found on for-sale and parked pages.
	ParkingPhrases []string
	// ConstructionPhrases are lowercase phrases found on placeholder pages.
	ConstructionPhrases []string
}

// DefaultSkipDomains returns the platform domains whose presence as a
// declared website is not a lead signal.
func DefaultSkipDomains() []string {
	return []string{
		"google.com", "google.co.th", "facebook.com", "fb.com", "instagram.com",
		"twitter.com", "x.com", "youtube.com", "tiktok.com", "line.me",
		"linkedin.com", "shopee.co.th", "lazada.co.th", "grab.com", "foodpanda.co.th",
		"lineman.line.me", "booking.com", "agoda.com", "airbnb.com", "tripadvisor.com",
	}
}

// DefaultParkingDomains returns registrar and parking service domains.
func DefaultParkingDomains() []string {
	return []string{
		"sedoparking.com", "sedo.com", "hugedomains.com", "godaddy.com", "parkingcrew.net",
		"bodis.com", "above.com", "undeveloped.com", "dan.com", "afternic.com",
		"domainmarket.com", "thnic.co.th", "thnic.net", "dreamhost.com", "bluehost.com",
		"hostgator.com", "namecheap.com", "hover.com", "porkbun.com", "parked.com",
		"parkedcom.com", "parkeddomain.com",
	}
}

// DefaultParkingPhrases returns the marketing phrases of for-sale and parking templates.
func DefaultParkingPhrases() []string {
	return []string{
		"domain is for sale",
		"this domain is for sale",
		"buy this domain",
		"domain name for sale",
		"domain may be for sale",
		"this webpage is parked",
		"domain has expired",
		"domain expired",
		"renewal grace period",
		"โดเมนนี้กำลังขาย",
		"ชื่อโดเมนว่าง",
		"the domain has expired",
		"expired domain",
		"registrar verification",
		"parked free",
		"parked domain",
	}
}

// DefaultConstructionPhrases returns phrases used by placeholder pages.
func DefaultConstructionPhrases() []string {
	return []string{
		"under construction",
		"coming soon",
		"website coming soon",
		"launching soon",
		"we're working on it",
		"กำลังปรับปรุง",
		"เร็วๆนี้",
		"เปิดตัวเร็วๆนี้",
	}
}

// DefaultOptions returns options suitable for probing a few thousand small business sites.
func DefaultOptions() Options {
	return Options{
		ConcurrencyLimit:    100,
		Timeout:             10 * time.Second,
		MaxRetries:          2,
		RetryBackoff:        500 * time.Millisecond,
		CheckContent:        true,
		MaxRedirects:        10,
		MaxBodyBytes:        1 << 20,
		ShortBodyThreshold:  2000,
		UserAgent:           defaultUserAgent,
		AcceptLanguage:      defaultAcceptLanguage,
		DeadStatuses:        domain.DefaultDeadStatuses(),
		SkipDomains:         DefaultSkipDomains(),
		ParkingDomains:      DefaultParkingDomains(),
		ParkingPhrases:      DefaultParkingPhrases(),
		ConstructionPhrases: DefaultConstructionPhrases(),
	}
}

// NewOptions constructs an Options value from the provided application config.
// Unset lists fall back to the defaults. Content checks are opt-out and
// retries are configured as a total attempt count, so that the zero values
// applied by the config loader stay meaningful.
func NewOptions(cfg *config.Config) (Options, error) {
	opts := DefaultOptions()
	c := cfg.Checker

	opts.ConcurrencyLimit = c.ConcurrencyLimit
	opts.Timeout = c.Timeout
	opts.MaxRetries = c.MaxAttempts - 1
	opts.RetryBackoff = c.RetryBackoff
	opts.CheckContent = !c.SkipContentCheck
	opts.MaxRedirects = c.MaxRedirects
	opts.MaxBodyBytes = c.MaxBodyBytes
	opts.ShortBodyThreshold = c.ShortBodyThreshold
	if c.UserAgent != "" {
		opts.UserAgent = c.UserAgent
	}
	if c.AcceptLanguage != "" {
		opts.AcceptLanguage = c.AcceptLanguage
	}
	if len(c.DeadStatuses) > 0 {
		dead, err := domain.ParseStatusSet(c.DeadStatuses)
		if err != nil {
			return Options{}, serrors.Wrap(serrors.ErrInvalidConfig, err, "invalid dead statuses")
		}
		opts.DeadStatuses = dead
	}
	if len(c.SkipDomains) > 0 {
		opts.SkipDomains = c.SkipDomains
	}
	if len(c.ParkingDomains) > 0 {
		opts.ParkingDomains = c.ParkingDomains
	}

	return opts, opts.Validate()
}

// Validate reports options that cannot drive a probe.
func (o Options) Validate() error {
	switch {
	case o.ConcurrencyLimit < 1:
		return serrors.With(serrors.ErrInvalidConfig, "concurrency limit must be positive, got %d", o.ConcurrencyLimit)
	case o.Timeout <= 0:
		return serrors.With(serrors.ErrInvalidConfig, "timeout must be positive, got %s", o.Timeout)
	case o.MaxRetries < 0:
		return serrors.With(serrors.ErrInvalidConfig, "max retries cannot be negative, got %d", o.MaxRetries)
	case o.RetryBackoff < 0:
		return serrors.With(serrors.ErrInvalidConfig, "retry backoff cannot be negative, got %s", o.RetryBackoff)
	case o.MaxRedirects < 1:
		return serrors.With(serrors.ErrInvalidConfig, "max redirects must be positive, got %d", o.MaxRedirects)
	case o.MaxBodyBytes < 1:
		return serrors.With(serrors.ErrInvalidConfig, "max body bytes must be positive, got %d", o.MaxBodyBytes)
	}

	skip := make(map[string]struct{}, len(o.SkipDomains))
	for _, d := range o.SkipDomains {
		skip[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	for _, d := range o.ParkingDomains {
		if _, ok := skip[strings.ToLower(strings.TrimSpace(d))]; ok {
			return serrors.With(serrors.ErrInvalidConfig, "domain %q is both skipped and parking", d)
		}
	}

	return nil
}
