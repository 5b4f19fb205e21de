package postgres

import (
	"context"
	"finder/pkg/domain"
	"finder/pkg/serrors"
	"finder/pkg/storage"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

const (
	businessesTable = "businesses"
	searchLogsTable = "search_logs"
)

// keepCheck keeps the stored website check when the upserted row carries none.
func keepCheck(column string) exp.LiteralExpression {
	return goqu.L(fmt.Sprintf("COALESCE(EXCLUDED.%[1]s, %[2]s.%[1]s)", column, businessesTable))
}

// UpsertBusinesses inserts businesses and refreshes the place data of rows
// that already exist. The search keyword and fetch time of existing rows are
// kept, and so is their website check unless a new one is provided.
func (p *PgSQL) UpsertBusinesses(ctx context.Context, businesses ...domain.Business) (int, error) {
	if len(businesses) == 0 {
		return 0, nil
	}

	// a single statement cannot update the same row twice, last one wins
	unique := make([]domain.Business, 0, len(businesses))
	index := make(map[string]int, len(businesses))
	for _, b := range businesses {
		if i, ok := index[b.PlaceID]; ok {
			unique[i] = b

			continue
		}
		index[b.PlaceID] = len(unique)
		unique = append(unique, b)
	}

	rows, err := domainBusinessesToPg(unique)
	if err != nil {
		return 0, err
	}

	var inserted []bool
	if err := p.Builder.Insert(businessesTable).
		Rows(rows).
		OnConflict(goqu.DoUpdate("place_id", goqu.Record{
			"name":                     goqu.L("EXCLUDED.name"),
			"address":                  goqu.L("EXCLUDED.address"),
			"phone":                    goqu.L("EXCLUDED.phone"),
			"website":                  goqu.L("EXCLUDED.website"),
			"rating":                   goqu.L("EXCLUDED.rating"),
			"ratings_total":            goqu.L("EXCLUDED.ratings_total"),
			"types":                    goqu.L("EXCLUDED.types"),
			"business_status":          goqu.L("EXCLUDED.business_status"),
			"lat":                      goqu.L("EXCLUDED.lat"),
			"lng":                      goqu.L("EXCLUDED.lng"),
			"website_status":           keepCheck("website_status"),
			"website_status_code":      keepCheck("website_status_code"),
			"website_status_reason":    keepCheck("website_status_reason"),
			"website_response_time_ms": keepCheck("website_response_time_ms"),
			"website_final_url":        keepCheck("website_final_url"),
			"website_checked_at":       keepCheck("website_checked_at"),
			"updated_at":               goqu.L("CURRENT_TIMESTAMP"),
		})).
		Returning(goqu.L("xmax = 0")).
		Executor().ScanValsContext(ctx, &inserted); err != nil {
		return 0, fmt.Errorf("could not upsert businesses into pg: %w", err)
	}

	count := 0
	for _, ok := range inserted {
		if ok {
			count++
		}
	}

	return count, nil
}

// UpdateWebsiteCheck replaces the website check of a single business.
func (p *PgSQL) UpdateWebsiteCheck(ctx context.Context, placeID string, result domain.CheckResult) error {
	var row PgBusiness
	row.setCheck(result)

	res, err := p.Builder.Update(businessesTable).
		Set(goqu.Record{
			"website_status":           row.WebsiteStatus,
			"website_status_code":      row.WebsiteStatusCode,
			"website_status_reason":    row.WebsiteStatusReason,
			"website_response_time_ms": row.WebsiteResponseTimeMS,
			"website_final_url":        row.WebsiteFinalURL,
			"website_checked_at":       row.WebsiteCheckedAt,
			"updated_at":               goqu.L("CURRENT_TIMESTAMP"),
		}).
		Where(goqu.I("place_id").Eq(placeID)).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not update website check in pg: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get affected rows: %w", err)
	}
	if affected == 0 {
		return serrors.With(serrors.ErrNotFound, "business %q not found", placeID)
	}

	return nil
}

// BusinessByPlaceID returns a business by its place ID, or nil when not found.
func (p *PgSQL) BusinessByPlaceID(ctx context.Context, placeID string) (*domain.Business, error) {
	var row PgBusiness
	found, err := p.Builder.From(businessesTable).
		Where(goqu.I("place_id").Eq(placeID)).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch business by place id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// Businesses returns the businesses selected by q ordered by name.
func (p *PgSQL) Businesses(ctx context.Context, q storage.BusinessQuery) ([]domain.Business, error) {
	var w []goqu.Expression
	if q.WithWebsite || q.Unchecked || !q.CheckedBefore.IsZero() {
		w = append(w, goqu.I("website").IsNotNull(), goqu.I("website").Neq(""))
	}
	if q.Unchecked {
		w = append(w, goqu.I("website_status").IsNull())
	}
	if !q.CheckedBefore.IsZero() {
		w = append(w, goqu.Or(
			goqu.I("website_status").IsNull(),
			goqu.I("website_checked_at").Lt(q.CheckedBefore),
		))
	}
	if len(q.Statuses) > 0 {
		statuses := make([]string, 0, len(q.Statuses))
		for _, s := range q.Statuses {
			statuses = append(statuses, string(s))
		}
		w = append(w, goqu.I("website_status").In(statuses))
	}

	ds := p.Builder.From(businessesTable).
		Where(w...).
		Order(goqu.I("name").Asc(), goqu.I("place_id").Asc())
	if q.Limit > 0 {
		ds = ds.Limit(q.Limit)
	}

	var rows []PgBusiness
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch businesses from pg: %w", err)
	}

	return pgBusinessesToDomain(rows)
}

type pgStatistics struct {
	Total       int `db:"total"`
	WithWebsite int `db:"with_website"`
	Checked     int `db:"checked"`
	OK          int `db:"ok"`
	Dead        int `db:"dead"`
}

type pgStatusCount struct {
	Status string `db:"website_status"`
	Count  int    `db:"count"`
}

// Statistics aggregates the businesses table.
func (p *PgSQL) Statistics(ctx context.Context, dead domain.StatusSet) (storage.Statistics, error) {
	deadCount := goqu.L("0")
	if len(dead) > 0 {
		statuses := make([]string, 0, len(dead))
		for _, s := range dead.Sorted() {
			statuses = append(statuses, string(s))
		}
		deadCount = goqu.L("COUNT(*) FILTER (WHERE ?)", goqu.I("website_status").In(statuses))
	}

	var agg pgStatistics
	if _, err := p.Builder.From(businessesTable).
		Select(
			goqu.COUNT(goqu.Star()).As("total"),
			goqu.L("COUNT(*) FILTER (WHERE website IS NOT NULL AND website <> '')").As("with_website"),
			goqu.COUNT("website_status").As("checked"),
			goqu.L("COUNT(*) FILTER (WHERE website_status = ?)", string(domain.StatusOK)).As("ok"),
			deadCount.As("dead"),
		).
		Executor().ScanStructContext(ctx, &agg); err != nil {
		return storage.Statistics{}, fmt.Errorf("could not aggregate businesses: %w", err)
	}

	var counts []pgStatusCount
	if err := p.Builder.From(businessesTable).
		Select(goqu.I("website_status"), goqu.COUNT(goqu.Star()).As("count")).
		Where(goqu.I("website_status").IsNotNull()).
		GroupBy(goqu.I("website_status")).
		Executor().ScanStructsContext(ctx, &counts); err != nil {
		return storage.Statistics{}, fmt.Errorf("could not count website statuses: %w", err)
	}

	breakdown := make(map[domain.Status]int, len(counts))
	for _, c := range counts {
		breakdown[domain.Status(c.Status)] = c.Count
	}

	return storage.Statistics{
		TotalBusinesses: agg.Total,
		WithWebsite:     agg.WithWebsite,
		WithoutWebsite:  agg.Total - agg.WithWebsite,
		WebsitesChecked: agg.Checked,
		WebsitesOK:      agg.OK,
		WebsitesDead:    agg.Dead,
		StatusBreakdown: breakdown,
	}, nil
}

// LogSearch stores one executed place search.
func (p *PgSQL) LogSearch(ctx context.Context, entry storage.SearchLog) error {
	row := PgSearchLog{
		Keyword:      entry.Keyword,
		City:         nullString(entry.City),
		Bounds:       nullString(entry.Bounds),
		ResultsCount: entry.ResultsCount,
		SearchedAt:   entry.SearchedAt,
	}
	if row.SearchedAt.IsZero() {
		row.SearchedAt = time.Now().UTC()
	}

	if _, err := p.Builder.Insert(searchLogsTable).Rows(row).Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("could not store search log into pg: %w", err)
	}

	return nil
}
