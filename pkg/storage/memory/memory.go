// Package memory implements storage.BusinessStorage in process memory.
// It backs mock runs and tests, and loses everything on exit.
package memory

import (
	"context"
	"finder/pkg/domain"
	"finder/pkg/serrors"
	"finder/pkg/storage"
	"slices"
	"sort"
	"sync"
	"time"
)

// Memory is a goroutine-safe in-memory business store.
type Memory struct {
	mu         sync.RWMutex
	businesses map[string]domain.Business
	searches   []storage.SearchLog
}

var _ storage.BusinessStorage = (*Memory)(nil)

// New returns an empty store.
func New() *Memory {
	return &Memory{businesses: make(map[string]domain.Business)}
}

func clone(b domain.Business) domain.Business {
	b.Types = slices.Clone(b.Types)
	if b.WebsiteCheck != nil {
		check := *b.WebsiteCheck
		b.WebsiteCheck = &check
	}
	if b.WebsiteCheckedAt != nil {
		at := *b.WebsiteCheckedAt
		b.WebsiteCheckedAt = &at
	}

	return b
}

// UpsertBusinesses implements storage.BusinessStorage.
func (m *Memory) UpsertBusinesses(_ context.Context, businesses ...domain.Business) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inserted := 0
	for _, b := range businesses {
		b = clone(b)
		if b.FetchedAt.IsZero() {
			b.FetchedAt = time.Now().UTC()
		}

		existing, ok := m.businesses[b.PlaceID]
		if !ok {
			inserted++
			m.businesses[b.PlaceID] = b

			continue
		}

		b.KeywordSearched = existing.KeywordSearched
		b.FetchedAt = existing.FetchedAt
		if b.WebsiteCheck == nil {
			b.WebsiteCheck = existing.WebsiteCheck
			b.WebsiteCheckedAt = existing.WebsiteCheckedAt
		}
		m.businesses[b.PlaceID] = b
	}

	return inserted, nil
}

// UpdateWebsiteCheck implements storage.BusinessStorage.
func (m *Memory) UpdateWebsiteCheck(_ context.Context, placeID string, result domain.CheckResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.businesses[placeID]
	if !ok {
		return serrors.With(serrors.ErrNotFound, "business %q not found", placeID)
	}

	checkedAt := result.CheckedAt
	b.WebsiteCheck = &result
	b.WebsiteCheckedAt = &checkedAt
	m.businesses[placeID] = b

	return nil
}

// BusinessByPlaceID implements storage.BusinessStorage.
func (m *Memory) BusinessByPlaceID(_ context.Context, placeID string) (*domain.Business, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.businesses[placeID]
	if !ok {
		return nil, nil
	}
	b = clone(b)

	return &b, nil
}

// Businesses implements storage.BusinessStorage.
func (m *Memory) Businesses(_ context.Context, q storage.BusinessQuery) ([]domain.Business, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Business, 0, len(m.businesses))
	for _, b := range m.businesses {
		if q.Match(b) {
			out = append(out, clone(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}

		return out[i].PlaceID < out[j].PlaceID
	})
	if q.Limit > 0 && uint(len(out)) > q.Limit {
		out = out[:q.Limit]
	}

	return out, nil
}

// Statistics implements storage.BusinessStorage.
func (m *Memory) Statistics(_ context.Context, dead domain.StatusSet) (storage.Statistics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := storage.Statistics{StatusBreakdown: make(map[domain.Status]int)}
	for _, b := range m.businesses {
		stats.TotalBusinesses++
		if b.HasWebsite() {
			stats.WithWebsite++
		}
		if b.WebsiteCheck == nil {
			continue
		}

		stats.WebsitesChecked++
		stats.StatusBreakdown[b.WebsiteCheck.Status]++
		if b.WebsiteCheck.Status == domain.StatusOK {
			stats.WebsitesOK++
		}
		if b.WebsiteCheck.IsDead(dead) {
			stats.WebsitesDead++
		}
	}
	stats.WithoutWebsite = stats.TotalBusinesses - stats.WithWebsite

	return stats, nil
}

// LogSearch implements storage.BusinessStorage.
func (m *Memory) LogSearch(_ context.Context, entry storage.SearchLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.SearchedAt.IsZero() {
		entry.SearchedAt = time.Now().UTC()
	}
	m.searches = append(m.searches, entry)

	return nil
}

// Searches returns the logged searches in insertion order.
func (m *Memory) Searches() []storage.SearchLog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.searches)
}
