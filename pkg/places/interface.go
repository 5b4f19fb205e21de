// Package places defines the client used to discover businesses on a map
// provider and the place data it returns.
package places

import (
	"context"
	"finder/pkg/domain"
	"time"
)

// LatLng is a WGS84 coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Place is a business as described by the map provider.
type Place struct {
	PlaceID        string
	Name           string
	Address        string
	Phone          string
	Website        string
	Rating         float64
	RatingsTotal   int
	Types          []string
	BusinessStatus string
	Location       LatLng
}

// Business converts p into a domain.Business found with keyword.
func (p Place) Business(keyword string, fetchedAt time.Time) domain.Business {
	return domain.Business{
		PlaceID:         p.PlaceID,
		Name:            p.Name,
		Address:         p.Address,
		Phone:           p.Phone,
		Website:         p.Website,
		Rating:          p.Rating,
		RatingsTotal:    p.RatingsTotal,
		Types:           p.Types,
		BusinessStatus:  p.BusinessStatus,
		Lat:             p.Location.Lat,
		Lng:             p.Location.Lng,
		KeywordSearched: keyword,
		FetchedAt:       fetchedAt,
	}
}

// Page is one page of search results.
type Page struct {
	Places []Place
	// NextPageToken fetches the following page, empty on the last one.
	NextPageToken string
}

// TextSearchRequest searches places by free text.
type TextSearchRequest struct {
	Query string
	// Location optionally biases results around a point.
	Location *LatLng
	// Radius in meters, zero leaves it to the provider.
	Radius    int
	PageToken string
}

// NearbySearchRequest searches places around a point.
type NearbySearchRequest struct {
	Location LatLng
	// Radius in meters.
	Radius    int
	Keyword   string
	Type      string
	PageToken string
}

// Client is the abstraction for map providers.
//
//go:generate mockgen -package mockplaces -source=interface.go -destination=mock/mockplaces.go *
type Client interface {
	// TextSearch returns a page of places matching a text query.
	TextSearch(ctx context.Context, req TextSearchRequest) (Page, error)
	// NearbySearch returns a page of places around a location.
	NearbySearch(ctx context.Context, req NearbySearchRequest) (Page, error)
	// Details returns the full description of a place, including its phone
	// number and website. serrors.ErrNotFound is returned for unknown places.
	Details(ctx context.Context, placeID string) (*Place, error)
}
