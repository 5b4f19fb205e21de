package export

import (
	"encoding/json"
	"finder/pkg/domain"
	"io"
	"time"
)

// Document is the envelope of every JSON export.
type Document[T any] struct {
	ExportedAt time.Time `json:"exportedAt"`
	Total      int       `json:"total"`
	Items      []T       `json:"items"`
}

// NewDocument wraps items into a Document. A nil slice is exported as empty.
func NewDocument[T any](items []T, exportedAt time.Time) Document[T] {
	if items == nil {
		items = []T{}
	}

	return Document[T]{ExportedAt: exportedAt, Total: len(items), Items: items}
}

// BusinessRecord is the JSON representation of a business.
type BusinessRecord struct {
	PlaceID          string              `json:"placeId"`
	Name             string              `json:"name"`
	Address          string              `json:"address"`
	Phone            string              `json:"phone"`
	Website          string              `json:"website"`
	Rating           float64             `json:"rating"`
	RatingsTotal     int                 `json:"userRatingsTotal"`
	Types            []string            `json:"types"`
	Category         string              `json:"category"`
	BusinessStatus   string              `json:"businessStatus,omitempty"`
	Lat              float64             `json:"lat"`
	Lng              float64             `json:"lng"`
	KeywordSearched  string              `json:"keywordSearched,omitempty"`
	FetchedAt        time.Time           `json:"fetchedAt"`
	WebsiteCheck     *domain.CheckResult `json:"websiteCheck,omitempty"`
	WebsiteCheckedAt *time.Time          `json:"websiteCheckedAt,omitempty"`
}

// NewBusinessRecord converts b into its JSON representation.
func NewBusinessRecord(b domain.Business) BusinessRecord {
	types := b.Types
	if types == nil {
		types = []string{}
	}

	return BusinessRecord{
		PlaceID:          b.PlaceID,
		Name:             b.Name,
		Address:          b.Address,
		Phone:            b.Phone,
		Website:          b.Website,
		Rating:           b.Rating,
		RatingsTotal:     b.RatingsTotal,
		Types:            types,
		Category:         domain.Category(b.Types),
		BusinessStatus:   b.BusinessStatus,
		Lat:              b.Lat,
		Lng:              b.Lng,
		KeywordSearched:  b.KeywordSearched,
		FetchedAt:        b.FetchedAt,
		WebsiteCheck:     b.WebsiteCheck,
		WebsiteCheckedAt: b.WebsiteCheckedAt,
	}
}

// BusinessRecords converts businesses into their JSON representation.
func BusinessRecords(businesses []domain.Business) []BusinessRecord {
	out := make([]BusinessRecord, 0, len(businesses))
	for _, b := range businesses {
		out = append(out, NewBusinessRecord(b))
	}

	return out
}

// WriteJSON writes items as an indented Document. Non-ASCII text is kept as is.
func WriteJSON[T any](w io.Writer, items []T, exportedAt time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(NewDocument(items, exportedAt)) //nolint: wrapcheck
}
