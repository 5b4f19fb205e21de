package leads

import (
	"context"
	"encoding/json"
	"finder/pkg/domain"
	"finder/pkg/logger"
	"sort"

	"go.uber.org/zap"
)

// Stats summarise one filtering pass.
type Stats struct {
	Processed        int            `json:"processed"`
	Passed           int            `json:"passed"`
	Rejected         int            `json:"rejected"`
	RejectionReasons map[string]int `json:"rejectionReasons"`
}

// PassRate returns the share of processed businesses that became leads, in percent.
func (s Stats) PassRate() float64 {
	if s.Processed == 0 {
		return 0
	}

	return float64(s.Passed) / float64(s.Processed) * 100
}

// MarshalJSON includes the derived pass rate.
func (s Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct { //nolint: wrapcheck
		Processed        int            `json:"processed"`
		Passed           int            `json:"passed"`
		Rejected         int            `json:"rejected"`
		PassRate         float64        `json:"passRate"`
		RejectionReasons map[string]int `json:"rejectionReasons"`
	}{s.Processed, s.Passed, s.Rejected, s.PassRate(), s.RejectionReasons})
}

// ReasonCount is a rejection reason with the number of businesses it rejected.
type ReasonCount struct {
	Reason string `json:"reason"`
	Count  int    `json:"count"`
}

// TopReasons returns the rejection reasons, most frequent first.
func (s Stats) TopReasons() []ReasonCount {
	out := make([]ReasonCount, 0, len(s.RejectionReasons))
	for r, c := range s.RejectionReasons {
		out = append(out, ReasonCount{Reason: r, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}

		return out[i].Reason < out[j].Reason
	})

	return out
}

// Filter turns businesses into leads. It is stateless and safe for concurrent use.
type Filter struct {
	criteria Criteria
}

// New returns a filter applying c.
func New(c Criteria) *Filter {
	return &Filter{criteria: c}
}

// Criteria returns the criteria the filter applies.
func (f *Filter) Criteria() Criteria { return f.criteria }

// Leads returns the leads among businesses, in input order, with the
// statistics of the pass.
func (f *Filter) Leads(ctx context.Context, businesses []domain.Business) ([]domain.Lead, Stats) {
	stats := Stats{RejectionReasons: make(map[string]int)}
	leads := make([]domain.Lead, 0)

	for _, b := range businesses {
		stats.Processed++
		ok, reason := f.criteria.Evaluate(b)
		if !ok {
			stats.Rejected++
			stats.RejectionReasons[reason]++

			continue
		}
		stats.Passed++
		leads = append(leads, domain.LeadFromBusiness(b))
	}

	logger.Info(ctx, "filtered leads",
		zap.Int("processed", stats.Processed),
		zap.Int("passed", stats.Passed),
		zap.Float64("passRate", stats.PassRate()))

	return leads, stats
}

// Analysis describes a set of businesses independently of any criteria
// other than the dead statuses.
type Analysis struct {
	TotalBusinesses    int                   `json:"totalBusinesses"`
	WithWebsite        int                   `json:"withWebsite"`
	WithoutWebsite     int                   `json:"withoutWebsite"`
	WithPhone          int                   `json:"withPhone"`
	StatusBreakdown    map[domain.Status]int `json:"statusBreakdown"`
	RatingDistribution map[string]int        `json:"ratingDistribution"`
	PotentialLeads     int                   `json:"potentialLeads"`
	LeadRate           float64               `json:"leadRate"`
}

// NoRating is the rating bucket of businesses without any rating.
const NoRating = "no_rating"

// RatingBucket returns the one-star bucket of a rating, "0-1" up to "4-5".
func RatingBucket(rating float64) string {
	if rating <= 0 {
		return NoRating
	}

	switch {
	case rating < 1:
		return "0-1"
	case rating < 2:
		return "1-2"
	case rating < 3:
		return "2-3"
	case rating < 4:
		return "3-4"
	default:
		return "4-5"
	}
}

// RatingBuckets lists every bucket RatingBucket can return.
func RatingBuckets() []string {
	return []string{"0-1", "1-2", "2-3", "3-4", "4-5", NoRating}
}

// Analyze computes the distribution of businesses. Every rating bucket is
// present, even when empty.
func Analyze(businesses []domain.Business, dead domain.StatusSet) Analysis {
	a := Analysis{
		TotalBusinesses:    len(businesses),
		StatusBreakdown:    make(map[domain.Status]int),
		RatingDistribution: make(map[string]int),
	}
	for _, bucket := range RatingBuckets() {
		a.RatingDistribution[bucket] = 0
	}

	for _, b := range businesses {
		if b.HasWebsite() {
			a.WithWebsite++
		} else {
			a.WithoutWebsite++
		}
		if b.Phone != "" {
			a.WithPhone++
		}
		if b.WebsiteCheck != nil {
			a.StatusBreakdown[b.WebsiteCheck.Status]++
		}
		a.RatingDistribution[RatingBucket(b.Rating)]++
		if b.IsPotentialLead(dead) {
			a.PotentialLeads++
		}
	}

	if a.TotalBusinesses > 0 {
		a.LeadRate = float64(a.PotentialLeads) / float64(a.TotalBusinesses) * 100
	}

	return a
}
