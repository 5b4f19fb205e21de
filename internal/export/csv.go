package export

import (
	"encoding/csv"
	"finder/pkg/domain"
	"io"
	"strconv"
	"strings"
	"time"
)

// BOM lets spreadsheet software detect UTF-8 so that Thai text renders.
const BOM = "\uFEFF"

// LeadColumns is the header of the leads CSV, in column order.
func LeadColumns() []string {
	return []string{
		"business_name",
		"business_category",
		"phone",
		"website_url",
		"website_status",
		"status_reason",
		"address",
		"rating",
		"user_ratings_total",
		"place_id",
	}
}

// BusinessColumns is the header of the businesses CSV, in column order.
func BusinessColumns() []string {
	return []string{
		"place_id",
		"name",
		"address",
		"phone",
		"website",
		"rating",
		"user_ratings_total",
		"types",
		"business_status",
		"lat",
		"lng",
		"keyword_searched",
		"fetched_at",
		"website_status",
		"website_status_reason",
		"website_status_code",
	}
}

func leadRow(l domain.Lead) []string {
	return []string{
		l.BusinessName,
		l.BusinessCategory,
		l.Phone,
		l.WebsiteURL,
		l.WebsiteStatus,
		l.StatusReason,
		l.Address,
		formatFloat(l.Rating),
		strconv.Itoa(l.RatingsTotal),
		l.PlaceID,
	}
}

func businessRow(b domain.Business) []string {
	var status, reason, code string
	if b.WebsiteCheck != nil {
		status = string(b.WebsiteCheck.Status)
		reason = b.WebsiteCheck.Reason
		if b.WebsiteCheck.HasStatusCode() {
			code = strconv.Itoa(b.WebsiteCheck.StatusCode)
		}
	}

	var fetchedAt string
	if !b.FetchedAt.IsZero() {
		fetchedAt = b.FetchedAt.Format(time.RFC3339)
	}

	return []string{
		b.PlaceID,
		b.Name,
		b.Address,
		b.Phone,
		b.Website,
		formatFloat(b.Rating),
		strconv.Itoa(b.RatingsTotal),
		strings.Join(b.Types, ","),
		b.BusinessStatus,
		formatFloat(b.Lat),
		formatFloat(b.Lng),
		b.KeywordSearched,
		fetchedAt,
		status,
		reason,
		code,
	}
}

// WriteLeadsCSV writes leads as a BOM-prefixed CSV document.
func WriteLeadsCSV(w io.Writer, leads []domain.Lead) error {
	rows := make([][]string, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, leadRow(l))
	}

	return writeCSV(w, LeadColumns(), rows)
}

// WriteBusinessesCSV writes businesses as a BOM-prefixed CSV document.
func WriteBusinessesCSV(w io.Writer, businesses []domain.Business) error {
	rows := make([][]string, 0, len(businesses))
	for _, b := range businesses {
		rows = append(rows, businessRow(b))
	}

	return writeCSV(w, BusinessColumns(), rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	if _, err := io.WriteString(w, BOM); err != nil {
		return err //nolint: wrapcheck
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err //nolint: wrapcheck
	}
	if err := cw.WriteAll(rows); err != nil {
		return err //nolint: wrapcheck
	}

	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
