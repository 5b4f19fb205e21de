package postgres

import (
	"database/sql"
	"encoding/json"
	"finder/pkg/domain"
	"fmt"
	"time"
)

// PgBusiness is a row of the businesses table.
type PgBusiness struct {
	PlaceID        string          `db:"place_id"`
	Name           string          `db:"name"`
	Address        sql.NullString  `db:"address"`
	Phone          sql.NullString  `db:"phone"`
	Website        sql.NullString  `db:"website"`
	Rating         float64         `db:"rating"`
	RatingsTotal   int             `db:"ratings_total"`
	Types          string          `db:"types"`
	BusinessStatus sql.NullString  `db:"business_status"`
	Lat            sql.NullFloat64 `db:"lat"`
	Lng            sql.NullFloat64 `db:"lng"`

	KeywordSearched sql.NullString `db:"keyword_searched"`
	FetchedAt       time.Time      `db:"fetched_at"`

	WebsiteStatus         sql.NullString  `db:"website_status"`
	WebsiteStatusCode     sql.NullInt32   `db:"website_status_code"`
	WebsiteStatusReason   sql.NullString  `db:"website_status_reason"`
	WebsiteResponseTimeMS sql.NullFloat64 `db:"website_response_time_ms"`
	WebsiteFinalURL       sql.NullString  `db:"website_final_url"`
	WebsiteCheckedAt      sql.NullTime    `db:"website_checked_at"`

	CreatedAt time.Time `db:"created_at" goqu:"skipinsert"`
	UpdatedAt time.Time `db:"updated_at" goqu:"skipinsert"`
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (p *PgBusiness) ToDomain() (*domain.Business, error) {
	var types []string
	if p.Types != "" {
		if err := json.Unmarshal([]byte(p.Types), &types); err != nil {
			return nil, fmt.Errorf("could not unmarshal business types: %w", err)
		}
	}

	b := &domain.Business{
		PlaceID:         p.PlaceID,
		Name:            p.Name,
		Address:         p.Address.String,
		Phone:           p.Phone.String,
		Website:         p.Website.String,
		Rating:          p.Rating,
		RatingsTotal:    p.RatingsTotal,
		Types:           types,
		BusinessStatus:  p.BusinessStatus.String,
		Lat:             p.Lat.Float64,
		Lng:             p.Lng.Float64,
		KeywordSearched: p.KeywordSearched.String,
		FetchedAt:       p.FetchedAt.UTC(),
	}
	if p.WebsiteStatus.Valid {
		checkedAt := p.WebsiteCheckedAt.Time.UTC()
		b.WebsiteCheck = &domain.CheckResult{
			URL:            p.Website.String,
			Status:         domain.Status(p.WebsiteStatus.String),
			StatusCode:     int(p.WebsiteStatusCode.Int32),
			Reason:         p.WebsiteStatusReason.String,
			ResponseTimeMS: p.WebsiteResponseTimeMS.Float64,
			FinalURL:       p.WebsiteFinalURL.String,
			CheckedAt:      checkedAt,
		}
		b.WebsiteCheckedAt = &checkedAt
	}

	return b, nil
}

func (p *PgBusiness) FromDomain(b domain.Business) error {
	types := b.Types
	if types == nil {
		types = []string{}
	}
	rawTypes, err := json.Marshal(types)
	if err != nil {
		return fmt.Errorf("could not marshal business types: %w", err)
	}

	fetchedAt := b.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	*p = PgBusiness{
		PlaceID:         b.PlaceID,
		Name:            b.Name,
		Address:         nullString(b.Address),
		Phone:           nullString(b.Phone),
		Website:         nullString(b.Website),
		Rating:          b.Rating,
		RatingsTotal:    b.RatingsTotal,
		Types:           string(rawTypes),
		BusinessStatus:  nullString(b.BusinessStatus),
		Lat:             sql.NullFloat64{Float64: b.Lat, Valid: b.Lat != 0 || b.Lng != 0},
		Lng:             sql.NullFloat64{Float64: b.Lng, Valid: b.Lat != 0 || b.Lng != 0},
		KeywordSearched: nullString(b.KeywordSearched),
		FetchedAt:       fetchedAt,
	}
	if b.WebsiteCheck != nil {
		p.setCheck(*b.WebsiteCheck)
	}

	return nil
}

func (p *PgBusiness) setCheck(c domain.CheckResult) {
	p.WebsiteStatus = nullString(string(c.Status))
	p.WebsiteStatusCode = sql.NullInt32{Int32: int32(c.StatusCode), Valid: c.HasStatusCode()} //nolint: gosec
	p.WebsiteStatusReason = nullString(c.Reason)
	p.WebsiteResponseTimeMS = sql.NullFloat64{Float64: c.ResponseTimeMS, Valid: c.ResponseTimeMS > 0}
	p.WebsiteFinalURL = nullString(c.FinalURL)
	p.WebsiteCheckedAt = sql.NullTime{Time: c.CheckedAt, Valid: !c.CheckedAt.IsZero()}
}

func domainBusinessesToPg(businesses []domain.Business) ([]PgBusiness, error) {
	out := make([]PgBusiness, len(businesses))
	for i := range out {
		if err := out[i].FromDomain(businesses[i]); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func pgBusinessesToDomain(rows []PgBusiness) ([]domain.Business, error) {
	out := make([]domain.Business, 0, len(rows))
	for _, row := range rows {
		b, err := row.ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *b)
	}

	return out, nil
}

// PgSearchLog is a row of the search_logs table.
type PgSearchLog struct {
	ID           int64          `db:"id"            goqu:"skipinsert"`
	Keyword      string         `db:"keyword"`
	City         sql.NullString `db:"city"`
	Bounds       sql.NullString `db:"bounds"`
	ResultsCount int            `db:"results_count"`
	SearchedAt   time.Time      `db:"searched_at"`
}
