// Package discovery finds businesses on the map provider by keyword within a
// Thai city, a bounding box, or the whole country.
package discovery

import (
	"context"
	"errors"
	"finder/internal/config"
	"finder/pkg/domain"
	"finder/pkg/logger"
	"finder/pkg/places"
	"finder/pkg/serrors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configure a Searcher.
type Options struct {
	// Radius is the search radius around a city center or grid point, in meters.
	Radius int
	// MaxResultsPerKeyword caps the businesses a single keyword may yield.
	MaxResultsPerKeyword int
	// GridStepKm is the spacing of grid points in a bounding box search.
	GridStepKm float64
	// RequestsPerSecond paces every API call, zero or less disables pacing.
	RequestsPerSecond float64
	// PageTokenDelay is waited before a next page token is used, as the
	// provider only activates tokens after a short while.
	PageTokenDelay time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Radius:               cfg.Places.Radius,
		MaxResultsPerKeyword: cfg.Places.MaxResultsPerKeyword,
		GridStepKm:           cfg.Search.GridStepKm,
		RequestsPerSecond:    cfg.Places.RequestsPerSecond,
		PageTokenDelay:       cfg.Places.PageTokenDelay,
	}
}

// Query describes what to search for. Bounds takes precedence over City.
// A City missing from the province table falls back to a text search.
type Query struct {
	Keywords []string
	City     string
	Bounds   *Bounds
}

// KeywordFunc receives the new businesses found for one keyword. Returning
// an error stops the search.
type KeywordFunc func(ctx context.Context, keyword string, found []domain.Business) error

// Searcher runs keyword searches and resolves each new place to its details.
// Places are de-duplicated by place ID across all keywords of a search.
type Searcher struct {
	client  places.Client
	limiter *rate.Limiter
	options Options
}

// New creates a Searcher.
func New(client places.Client, options Options) *Searcher {
	limit := rate.Inf
	if options.RequestsPerSecond > 0 {
		limit = rate.Limit(options.RequestsPerSecond)
	}
	if options.MaxResultsPerKeyword <= 0 {
		options.MaxResultsPerKeyword = 60
	}

	return &Searcher{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		options: options,
	}
}

// keywordSearch holds the state of one keyword.
type keywordSearch struct {
	keyword string
	seen    map[string]struct{}
	found   []domain.Business
	max     int
}

func (k *keywordSearch) full() bool { return len(k.found) >= k.max }

// Search runs q keyword by keyword and hands each keyword's new businesses
// to onKeyword. It returns the total number of unique businesses found.
func (s *Searcher) Search(ctx context.Context, q Query, onKeyword KeywordFunc) (int, error) {
	seen := make(map[string]struct{})
	total := 0

	for i, keyword := range q.Keywords {
		kctx := logger.WithFields(ctx, zap.String("keyword", keyword))
		logger.Info(kctx, "searching keyword",
			zap.Int("index", i+1), zap.Int("total", len(q.Keywords)))

		ks := &keywordSearch{keyword: keyword, seen: seen, max: s.options.MaxResultsPerKeyword}
		if err := s.searchKeyword(kctx, q, ks); err != nil {
			return total, fmt.Errorf("could not search keyword %q: %w", keyword, err)
		}
		total += len(ks.found)

		logger.Info(kctx, "keyword searched", zap.Int("found", len(ks.found)))
		if onKeyword != nil {
			if err := onKeyword(ctx, keyword, ks.found); err != nil {
				return total, err
			}
		}
	}

	return total, nil
}

func (s *Searcher) searchKeyword(ctx context.Context, q Query, ks *keywordSearch) error {
	if q.Bounds != nil {
		points := q.Bounds.GridPoints(s.options.GridStepKm)
		logger.Debug(ctx, "searching bounding box", zap.Int("gridPoints", len(points)))

		for _, p := range points {
			if ks.full() {
				return nil
			}
			if err := s.nearby(ctx, p, ks); err != nil {
				return err
			}
		}

		return nil
	}

	if q.City != "" {
		if center, ok := CityCoordinates(q.City); ok {
			return s.nearby(ctx, center, ks)
		}
		logger.Info(ctx, "city is not a known province, using text search", zap.String("city", q.City))
	}

	query := ks.keyword + " in Thailand"
	if q.City != "" {
		query = fmt.Sprintf("%s in %s, Thailand", ks.keyword, q.City)
	}

	return s.paginate(ctx, ks, func(token string) (places.Page, error) {
		return s.client.TextSearch(ctx, places.TextSearchRequest{Query: query, PageToken: token})
	})
}

func (s *Searcher) nearby(ctx context.Context, at places.LatLng, ks *keywordSearch) error {
	return s.paginate(ctx, ks, func(token string) (places.Page, error) {
		return s.client.NearbySearch(ctx, places.NearbySearchRequest{
			Location:  at,
			Radius:    s.options.Radius,
			Keyword:   ks.keyword,
			PageToken: token,
		})
	})
}

func (s *Searcher) paginate(ctx context.Context, ks *keywordSearch, fetch func(token string) (places.Page, error)) error {
	token := ""
	for !ks.full() {
		if token != "" {
			if err := sleep(ctx, s.options.PageTokenDelay); err != nil {
				return err
			}
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("could not wait for rate limiter: %w", err)
		}

		page, err := fetch(token)
		if err != nil {
			return err
		}
		logger.Debug(ctx, "received search page",
			zap.Int("places", len(page.Places)), zap.Bool("hasNext", page.NextPageToken != ""))
		if len(page.Places) == 0 {
			return nil
		}

		for _, p := range page.Places {
			if ks.full() {
				return nil
			}
			if err := s.resolve(ctx, p.PlaceID, ks); err != nil {
				return err
			}
		}

		if page.NextPageToken == "" {
			return nil
		}
		token = page.NextPageToken
	}

	return nil
}

// resolve fetches the details of a new place. Places that cannot be
// described are skipped, while authorization and quota failures abort.
func (s *Searcher) resolve(ctx context.Context, placeID string, ks *keywordSearch) error {
	if placeID == "" {
		return nil
	}
	if _, ok := ks.seen[placeID]; ok {
		return nil
	}
	ks.seen[placeID] = struct{}{}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("could not wait for rate limiter: %w", err)
	}

	details, err := s.client.Details(ctx, placeID)
	switch {
	case err == nil:
	case errors.Is(err, serrors.ErrUnauthorized), errors.Is(err, serrors.ErrRateLimited), ctx.Err() != nil:
		return err
	default:
		logger.Warn(ctx, "could not fetch place details, skipping",
			zap.String("placeID", placeID), zap.Error(err))

		return nil
	}

	ks.found = append(ks.found, details.Business(ks.keyword, time.Now().UTC()))

	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
