// Package leads selects, among checked businesses, the ones worth contacting
// because their published website is broken.
package leads

import (
	"finder/internal/config"
	"finder/pkg/domain"
	"finder/pkg/serrors"
	"strings"
)

// Criteria decide whether a business is a lead. Zero values disable the
// corresponding check, except IncludeStatuses which must not be empty.
type Criteria struct {
	// IncludeStatuses are the website statuses a lead may have.
	IncludeStatuses domain.StatusSet
	// ExcludeStatuses are removed from IncludeStatuses.
	ExcludeStatuses domain.StatusSet
	MinRating       float64
	MinReviews      int
	RequirePhone    bool
	// BusinessTypes keeps only businesses having at least one of the place types.
	BusinessTypes []string
	// ExcludeKeywords rejects businesses whose name contains any of them,
	// case-insensitively.
	ExcludeKeywords []string
}

// DefaultCriteria accepts every business with a dead website.
func DefaultCriteria() Criteria {
	return Criteria{
		IncludeStatuses: domain.DefaultDeadStatuses(),
		ExcludeStatuses: domain.NewStatusSet(),
	}
}

// QualityCriteria accepts well rated, reachable businesses with a dead website.
func QualityCriteria() Criteria {
	c := DefaultCriteria()
	c.MinRating = 3.5
	c.MinReviews = 5
	c.RequirePhone = true

	return c
}

// CustomCriteria builds criteria from status names. No names means every
// dead status. Unknown names are rejected with serrors.ErrBadRequest.
func CustomCriteria(statuses []string, minRating float64, minReviews int, requirePhone bool,
	excludeKeywords []string,
) (Criteria, error) {
	c := DefaultCriteria()
	if len(statuses) > 0 {
		include, err := domain.ParseStatusSet(statuses)
		if err != nil {
			return Criteria{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid lead statuses")
		}
		c.IncludeStatuses = include
	}
	c.MinRating = minRating
	c.MinReviews = minReviews
	c.RequirePhone = requirePhone
	c.ExcludeKeywords = excludeKeywords

	return c, nil
}

// NewCriteria builds criteria from the filter section of the config. The
// checker's dead statuses are the included statuses. quality raises the
// thresholds to at least those of QualityCriteria.
func NewCriteria(cfg *config.Config, quality bool) (Criteria, error) {
	c, err := CustomCriteria(cfg.Checker.DeadStatuses, cfg.Filter.MinRating, cfg.Filter.MinReviews,
		cfg.Filter.RequirePhone, cfg.Filter.ExcludeKeywords)
	if err != nil {
		return Criteria{}, err
	}

	if quality {
		q := QualityCriteria()
		c.MinRating = max(c.MinRating, q.MinRating)
		c.MinReviews = max(c.MinReviews, q.MinReviews)
		c.RequirePhone = true
	}

	return c, nil
}

// Rejection reasons. Status and keyword rejections carry a suffix.
const (
	ReasonNoWebsite       = "no_website"
	ReasonNotChecked      = "not_checked"
	ReasonStatus          = "status_"
	ReasonExcludedStatus  = "excluded_status_"
	ReasonLowRating       = "low_rating"
	ReasonLowReviews      = "low_reviews"
	ReasonNoPhone         = "no_phone"
	ReasonWrongType       = "wrong_type"
	ReasonExcludedKeyword = "excluded_keyword_"
)

// Evaluate reports whether b is a lead, or the reason it is not.
func (c Criteria) Evaluate(b domain.Business) (bool, string) {
	if !b.HasWebsite() {
		return false, ReasonNoWebsite
	}
	if b.WebsiteCheck == nil {
		return false, ReasonNotChecked
	}

	status := b.WebsiteCheck.Status
	switch {
	case !c.IncludeStatuses.Has(status):
		return false, ReasonStatus + string(status)
	case c.ExcludeStatuses.Has(status):
		return false, ReasonExcludedStatus + string(status)
	case b.Rating < c.MinRating:
		return false, ReasonLowRating
	case b.RatingsTotal < c.MinReviews:
		return false, ReasonLowReviews
	case c.RequirePhone && strings.TrimSpace(b.Phone) == "":
		return false, ReasonNoPhone
	case len(c.BusinessTypes) > 0 && !hasAnyType(b.Types, c.BusinessTypes):
		return false, ReasonWrongType
	}

	name := strings.ToLower(b.Name)
	for _, kw := range c.ExcludeKeywords {
		if kw != "" && strings.Contains(name, strings.ToLower(kw)) {
			return false, ReasonExcludedKeyword + kw
		}
	}

	return true, ""
}

func hasAnyType(types, wanted []string) bool {
	for _, t := range types {
		for _, w := range wanted {
			if t == w {
				return true
			}
		}
	}

	return false
}
