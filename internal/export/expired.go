package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"finder/pkg/domain"
	"finder/pkg/serrors"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ExpiredStatuses are the statuses hinting that a domain lapsed rather
// than the site being temporarily down.
func ExpiredStatuses() domain.StatusSet {
	return domain.NewStatusSet(
		domain.StatusHTTPError4xx,
		domain.StatusNoDNS,
		domain.StatusDeadDomain,
		domain.StatusSSLError,
	)
}

// FilterStats summarise a FilterExpired pass.
type FilterStats struct {
	Read    int
	Kept    int
	Before  map[string]int
	After   map[string]int
	Samples [][]string
	// Header is the header of the filtered document.
	Header []string
}

// ExpiredSamples is the number of kept rows recorded as samples.
const ExpiredSamples = 5

// FilterExpired copies the rows of an exported CSV whose website_status is
// one of ExpiredStatuses, sorted by status then by descending rating. The
// input must carry website_status and website_url columns; any other column
// is carried over untouched.
func FilterExpired(r io.Reader, w io.Writer) (FilterStats, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(BOM)); err == nil && string(head) == BOM {
		_, _ = br.Discard(len(BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return FilterStats{}, serrors.With(serrors.ErrBadRequest, "empty csv document")
	}
	if err != nil {
		return FilterStats{}, serrors.Wrap(serrors.ErrBadRequest, err, "could not read csv header")
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, c := range []string{"website_status", "website_url"} {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return FilterStats{}, serrors.With(serrors.ErrBadRequest, "missing columns %v, available columns %v",
			missing, header)
	}
	statusCol := cols["website_status"]
	ratingCol, hasRating := cols["rating"]

	field := func(row []string, i int) string {
		if i < len(row) {
			return row[i]
		}

		return ""
	}

	stats := FilterStats{Before: make(map[string]int), After: make(map[string]int), Header: header}
	expired := ExpiredStatuses()
	var kept [][]string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return FilterStats{}, serrors.Wrap(serrors.ErrBadRequest, err, "could not read csv row")
		}

		stats.Read++
		status := field(row, statusCol)
		stats.Before[status]++
		if expired.Has(domain.Status(status)) {
			kept = append(kept, row)
			stats.After[status]++
		}
	}

	rating := func(row []string) float64 {
		if !hasRating {
			return 0
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(field(row, ratingCol)), 64)
		if err != nil {
			return 0
		}

		return v
	}
	sort.SliceStable(kept, func(i, j int) bool {
		si, sj := field(kept[i], statusCol), field(kept[j], statusCol)
		if si != sj {
			return si < sj
		}

		return rating(kept[i]) > rating(kept[j])
	})

	stats.Kept = len(kept)
	stats.Samples = kept[:min(ExpiredSamples, len(kept))]

	if err := writeCSV(w, header, kept); err != nil {
		return FilterStats{}, err
	}

	return stats, nil
}

// ExpiredOutputPath derives the default output path of FilterExpired from
// its input path: "leads.csv" becomes "leads_404_expired.csv".
func ExpiredOutputPath(input string) string {
	ext := filepath.Ext(input)

	return strings.TrimSuffix(input, ext) + "_404_expired" + ext
}
