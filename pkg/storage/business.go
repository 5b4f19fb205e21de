package storage

import (
	"finder/pkg/domain"
	"time"
)

// BusinessQuery selects stored businesses. The zero value selects all of them.
type BusinessQuery struct {
	// WithWebsite keeps only businesses that published a website.
	WithWebsite bool
	// Unchecked keeps only businesses whose website was never checked.
	// It implies WithWebsite.
	Unchecked bool
	// Statuses keeps only businesses whose last check has one of the statuses.
	Statuses []domain.Status
	// CheckedBefore keeps only businesses never checked or last checked
	// before this instant. It implies WithWebsite.
	CheckedBefore time.Time
	// Limit caps the number of returned businesses, zero means no cap.
	Limit uint
}

// Statistics summarizes the stored businesses.
type Statistics struct {
	TotalBusinesses int                   `json:"totalBusinesses"`
	WithWebsite     int                   `json:"withWebsite"`
	WithoutWebsite  int                   `json:"withoutWebsite"`
	WebsitesChecked int                   `json:"websitesChecked"`
	WebsitesOK      int                   `json:"websitesOk"`
	WebsitesDead    int                   `json:"websitesDead"`
	StatusBreakdown map[domain.Status]int `json:"statusBreakdown"`
}

// SearchLog is one executed place search.
type SearchLog struct {
	Keyword      string
	City         string
	Bounds       string
	ResultsCount int
	SearchedAt   time.Time
}

// Match reports whether b is selected by q, ignoring Limit.
func (q BusinessQuery) Match(b domain.Business) bool {
	needsWebsite := q.WithWebsite || q.Unchecked || !q.CheckedBefore.IsZero()
	if needsWebsite && !b.HasWebsite() {
		return false
	}
	if q.Unchecked && b.WebsiteCheck != nil {
		return false
	}
	if !q.CheckedBefore.IsZero() && b.WebsiteCheck != nil && !b.WebsiteCheck.CheckedAt.Before(q.CheckedBefore) {
		return false
	}
	if len(q.Statuses) > 0 {
		if b.WebsiteCheck == nil {
			return false
		}
		found := false
		for _, s := range q.Statuses {
			if b.WebsiteCheck.Status == s {
				found = true

				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}
