package export

import (
	"finder/pkg/domain"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TopLeads is the number of leads listed in the summary report.
const TopLeads = 10

// SearchInfo describes the search a report is about. Empty fields print as N/A.
type SearchInfo struct {
	Keywords []string
	City     string
	Bounds   string
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}

	return s
}

// SummaryReport renders the plain-text report of a run.
func SummaryReport(businesses []domain.Business, leads []domain.Lead, info *SearchInfo, now time.Time) string {
	var (
		withWebsite, checked int
		counts               = make(map[domain.Status]int)
	)
	for _, b := range businesses {
		if b.HasWebsite() {
			withWebsite++
		}
		if b.WebsiteCheck != nil {
			checked++
			counts[b.WebsiteCheck.Status]++
		}
	}

	rule := strings.Repeat("=", 60)
	var sb strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}

	line(rule)
	line("DEAD WEBSITE FINDER - SUMMARY REPORT")
	line(rule)
	line("Generated at: %s", now.Format(time.DateTime))
	line("")

	if info != nil {
		line("SEARCH PARAMETERS:")
		line("  Keywords: %s", orNA(strings.Join(info.Keywords, ", ")))
		line("  City: %s", orNA(info.City))
		line("  Bounds: %s", orNA(info.Bounds))
		line("")
	}

	line("RESULTS OVERVIEW:")
	line("  Total businesses found: %d", len(businesses))
	line("  With website: %d", withWebsite)
	line("  Without website: %d", len(businesses)-withWebsite)
	line("  Websites checked: %d", checked)
	line("")
	line("  *** POTENTIAL LEADS: %d ***", len(leads))
	line("")

	if len(counts) > 0 {
		statuses := make([]domain.Status, 0, len(counts))
		for s := range counts {
			statuses = append(statuses, s)
		}
		sort.Slice(statuses, func(i, j int) bool {
			if counts[statuses[i]] != counts[statuses[j]] {
				return counts[statuses[i]] > counts[statuses[j]]
			}

			return statuses[i] < statuses[j]
		})

		line("WEBSITE STATUS BREAKDOWN:")
		for _, s := range statuses {
			line("  %s: %d (%.1f%%)", s, counts[s], float64(counts[s])/float64(checked)*100)
		}
		line("")
	}

	if len(leads) > 0 {
		line("TOP %d LEADS:", TopLeads)
		line(strings.Repeat("-", 40))
		for i, l := range leads[:min(TopLeads, len(leads))] {
			line("%d. %s", i+1, l.BusinessName)
			line("   Phone: %s", orNA(l.Phone))
			line("   Website: %s", l.WebsiteURL)
			line("   Status: %s", l.WebsiteStatus)
			line("   Rating: %s (%d reviews)", formatFloat(l.Rating), l.RatingsTotal)
			line("")
		}
	}

	line(rule)
	line("END OF REPORT")
	sb.WriteString(rule)

	return sb.String()
}
