package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"finder/internal/export"
	"finder/pkg/domain"
	"finder/pkg/logger"
	"finder/pkg/serrors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	os.Exit(m.Run())
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) //nolint: gochecknoglobals

func sampleLeads() []domain.Lead {
	return []domain.Lead{
		{
			BusinessName:     "ร้านอาหาร สมชาย",
			BusinessCategory: "ร้านอาหาร",
			Phone:            "02-123-4567",
			WebsiteURL:       "https://somchai-restaurant.com",
			WebsiteStatus:    "NO_DNS",
			StatusReason:     "DNS resolution failed: NXDOMAIN",
			Address:          "123 ถนนสุขุมวิท, กรุงเทพ 10110",
			Rating:           4.5,
			RatingsTotal:     156,
			PlaceID:          "place-1",
		},
		{
			BusinessName:  "Vichai Garage",
			WebsiteURL:    "https://vichai-garage.com",
			WebsiteStatus: "TIMEOUT",
			Rating:        4,
			RatingsTotal:  45,
			PlaceID:       "place-2",
		},
	}
}

func sampleBusinesses() []domain.Business {
	checkedAt := fixedNow.Add(-time.Hour)

	return []domain.Business{
		{
			PlaceID:      "place-1",
			Name:         "ร้านอาหาร สมชาย",
			Website:      "https://somchai-restaurant.com",
			Rating:       4.5,
			RatingsTotal: 156,
			Types:        []string{"restaurant", "food"},
			Lat:          13.7563,
			Lng:          100.5018,
			FetchedAt:    fixedNow,
			WebsiteCheck: &domain.CheckResult{
				URL: "https://somchai-restaurant.com", Status: domain.StatusNoDNS, Reason: "DNS resolution failed",
			},
			WebsiteCheckedAt: &checkedAt,
		},
		{
			PlaceID: "place-3",
			Name:    "No Site Spa",
			Types:   []string{"spa"},
		},
		{
			PlaceID: "place-4",
			Name:    "Broken Hotel",
			Website: "https://broken-hotel.example",
			WebsiteCheck: &domain.CheckResult{
				Status: domain.StatusHTTPError5xx, StatusCode: 503, Reason: "Server error: HTTP 503",
			},
		},
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()

	require.True(t, bytes.HasPrefix(data, []byte(export.BOM)))
	rows, err := csv.NewReader(bytes.NewReader(data[len(export.BOM):])).ReadAll()
	require.NoError(t, err)

	return rows
}

func TestWriteLeadsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteLeadsCSV(&buf, sampleLeads()))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 3)
	require.Equal(t, export.LeadColumns(), rows[0])
	require.Equal(t, []string{
		"ร้านอาหาร สมชาย", "ร้านอาหาร", "02-123-4567", "https://somchai-restaurant.com", "NO_DNS",
		"DNS resolution failed: NXDOMAIN", "123 ถนนสุขุมวิท, กรุงเทพ 10110", "4.5", "156", "place-1",
	}, rows[1])
	require.Equal(t, "4", rows[2][7])
}

func TestWriteLeadsCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteLeadsCSV(&buf, nil))

	rows := readCSV(t, buf.Bytes())
	require.Equal(t, [][]string{export.LeadColumns()}, rows)
}

func TestWriteBusinessesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteBusinessesCSV(&buf, sampleBusinesses()))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 4)
	require.Equal(t, export.BusinessColumns(), rows[0])

	row := map[string]string{}
	for i, c := range rows[0] {
		row[c] = rows[1][i]
	}
	require.Equal(t, "restaurant,food", row["types"])
	require.Equal(t, "13.7563", row["lat"])
	require.Equal(t, "2026-03-14T09:30:00Z", row["fetched_at"])
	require.Equal(t, "NO_DNS", row["website_status"])
	require.Empty(t, row["website_status_code"])

	require.Empty(t, rows[2][13])
	require.Empty(t, rows[2][12])
	require.Equal(t, "503", rows[3][15])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(&buf, sampleLeads(), fixedNow))
	require.Contains(t, buf.String(), "ร้านอาหาร สมชาย")

	var doc export.Document[domain.Lead]
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, 2, doc.Total)
	require.True(t, fixedNow.Equal(doc.ExportedAt))
	require.Equal(t, sampleLeads(), doc.Items)

	buf.Reset()
	require.NoError(t, export.WriteJSON[domain.Lead](&buf, nil, fixedNow))
	require.JSONEq(t, `{"exportedAt":"2026-03-14T09:30:00Z","total":0,"items":[]}`, buf.String())
}

func TestBusinessRecords(t *testing.T) {
	records := export.BusinessRecords(sampleBusinesses())
	require.Len(t, records, 3)
	require.Equal(t, "ร้านอาหาร", records[0].Category)
	require.Equal(t, domain.StatusNoDNS, records[0].WebsiteCheck.Status)
	require.Equal(t, "สปา", records[1].Category)
	require.Nil(t, records[1].WebsiteCheck)

	data, err := json.Marshal(export.NewBusinessRecord(domain.Business{PlaceID: "x"}))
	require.NoError(t, err)
	require.Contains(t, string(data), `"types":[]`)
	require.NotContains(t, string(data), "websiteCheck")
}

func TestWriteLeadsXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteLeadsXLSX(&buf, sampleLeads()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{export.LeadsSheet}, f.GetSheetList())
	rows, err := f.GetRows(export.LeadsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, export.LeadColumns(), rows[0])
	require.Equal(t, "ร้านอาหาร สมชาย", rows[1][0])
	require.Equal(t, "4.5", rows[1][7])
	require.Equal(t, "45", rows[2][8])
}

func TestSummaryReport(t *testing.T) {
	report := export.SummaryReport(sampleBusinesses(), sampleLeads(),
		&export.SearchInfo{Keywords: []string{"restaurant", "hotel"}, City: "Bangkok"}, fixedNow)

	for _, want := range []string{
		"DEAD WEBSITE FINDER - SUMMARY REPORT",
		"Generated at: 2026-03-14 09:30:00",
		"  Keywords: restaurant, hotel",
		"  City: Bangkok",
		"  Bounds: N/A",
		"  Total businesses found: 3",
		"  With website: 2",
		"  Without website: 1",
		"  Websites checked: 2",
		"  *** POTENTIAL LEADS: 2 ***",
		"  HTTP_ERROR_5XX: 1 (50.0%)",
		"  NO_DNS: 1 (50.0%)",
		"1. ร้านอาหาร สมชาย",
		"   Phone: N/A",
		"   Rating: 4 (45 reviews)",
	} {
		require.Contains(t, report, want)
	}
	require.True(t, strings.HasSuffix(report, "END OF REPORT\n"+strings.Repeat("=", 60)))
	require.Less(t, strings.Index(report, "HTTP_ERROR_5XX"), strings.Index(report, "NO_DNS:"))
}

func TestSummaryReportListsTopTenLeads(t *testing.T) {
	leads := make([]domain.Lead, 0, 12)
	for i := range 12 {
		leads = append(leads, domain.Lead{BusinessName: fmt.Sprintf("Lead %02d", i+1)})
	}

	report := export.SummaryReport(nil, leads, nil, fixedNow)
	require.NotContains(t, report, "SEARCH PARAMETERS")
	require.NotContains(t, report, "WEBSITE STATUS BREAKDOWN")
	require.Contains(t, report, "10. Lead 10")
	require.NotContains(t, report, "Lead 11")
}

const exportedLeads = "\uFEFFbusiness_name,website_url,website_status,rating\n" +
	"A,https://a.example,TIMEOUT,5\n" +
	"B,https://b.example,NO_DNS,3.5\n" +
	"C,https://c.example,HTTP_ERROR_4XX,4\n" +
	"D,https://d.example,NO_DNS,4.8\n" +
	"E,https://e.example,SSL_ERROR,\n" +
	"F,https://f.example,OK,5\n"

func TestFilterExpired(t *testing.T) {
	var out bytes.Buffer
	stats, err := export.FilterExpired(strings.NewReader(exportedLeads), &out)
	require.NoError(t, err)

	require.Equal(t, 6, stats.Read)
	require.Equal(t, 4, stats.Kept)
	require.Equal(t, map[string]int{"TIMEOUT": 1, "NO_DNS": 2, "HTTP_ERROR_4XX": 1, "SSL_ERROR": 1, "OK": 1},
		stats.Before)
	require.Equal(t, map[string]int{"NO_DNS": 2, "HTTP_ERROR_4XX": 1, "SSL_ERROR": 1}, stats.After)

	rows := readCSV(t, out.Bytes())
	require.Equal(t, []string{"business_name", "website_url", "website_status", "rating"}, rows[0])

	names := make([]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		names = append(names, r[0])
	}
	require.Equal(t, []string{"C", "D", "B", "E"}, names)
	require.Len(t, stats.Samples, 4)
}

func TestFilterExpiredRejectsMissingColumns(t *testing.T) {
	_, err := export.FilterExpired(strings.NewReader("name,rating\nA,4\n"), &bytes.Buffer{})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
	require.Contains(t, err.Error(), "website_status")

	_, err = export.FilterExpired(strings.NewReader(""), &bytes.Buffer{})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestExpiredOutputPath(t *testing.T) {
	require.Equal(t, "out/leads_404_expired.csv", export.ExpiredOutputPath("out/leads.csv"))
	require.Equal(t, "out.d/leads_404_expired", export.ExpiredOutputPath("out.d/leads"))
}

func TestExporterExportAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	e, err := export.New(export.Options{Dir: dir, LeadsName: "leads", Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	require.Equal(t, dir, e.Dir())

	files, err := e.ExportAll(context.Background(), sampleBusinesses(), sampleLeads(), nil, "bangkok")
	require.NoError(t, err)
	require.Equal(t, export.Files{
		LeadsCSV:       filepath.Join(dir, "bangkok_leads_20260314_093000.csv"),
		LeadsJSON:      filepath.Join(dir, "bangkok_leads_20260314_093000.json"),
		LeadsXLSX:      filepath.Join(dir, "bangkok_leads_20260314_093000.xlsx"),
		BusinessesCSV:  filepath.Join(dir, "bangkok_all_businesses_20260314_093000.csv"),
		BusinessesJSON: filepath.Join(dir, "bangkok_all_businesses_20260314_093000.json"),
		Summary:        filepath.Join(dir, "bangkok_summary_20260314_093000.txt"),
	}, files)

	data, err := os.ReadFile(files.LeadsCSV)
	require.NoError(t, err)
	require.Len(t, readCSV(t, data), 3)

	data, err = os.ReadFile(files.BusinessesJSON)
	require.NoError(t, err)
	var doc export.Document[export.BusinessRecord]
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, 3, doc.Total)

	data, err = os.ReadFile(files.Summary)
	require.NoError(t, err)
	require.Contains(t, string(data), "POTENTIAL LEADS: 2")
}

func TestFilterExpiredFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "leads.csv")
	require.NoError(t, os.WriteFile(input, []byte(exportedLeads), 0o600))

	output, stats, err := export.FilterExpiredFile(context.Background(), input, "")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "leads_404_expired.csv"), output)
	require.Equal(t, 4, stats.Kept)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Len(t, readCSV(t, data), 5)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("a,b\n1,2\n"), 0o600))
	_, _, err = export.FilterExpiredFile(context.Background(), bad, "")
	require.ErrorIs(t, err, serrors.ErrBadRequest)
	require.NoFileExists(t, filepath.Join(dir, "bad_404_expired.csv"))

	_, _, err = export.FilterExpiredFile(context.Background(), filepath.Join(dir, "missing.csv"), "")
	require.ErrorIs(t, err, os.ErrNotExist)
}
