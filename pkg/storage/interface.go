// Package storage defines the persistence interfaces of the lead finder.
// Businesses and their latest website checks are stored so that interrupted
// runs can be resumed and results can be re-exported without probing again.
package storage

import (
	"context"
	"finder/pkg/domain"
)

// BusinessStorage stores discovered businesses and their website checks.
type BusinessStorage interface {
	// UpsertBusinesses inserts new businesses and refreshes the place data of
	// known ones. A stored website check is never erased by an upsert that
	// carries none. It returns how many of the businesses were new.
	UpsertBusinesses(ctx context.Context, businesses ...domain.Business) (int, error)
	// UpdateWebsiteCheck replaces the website check of a business.
	// serrors.ErrNotFound is returned for an unknown place ID.
	UpdateWebsiteCheck(ctx context.Context, placeID string, result domain.CheckResult) error
	// BusinessByPlaceID returns a business, or nil when it is not stored.
	BusinessByPlaceID(ctx context.Context, placeID string) (*domain.Business, error)
	// Businesses returns the businesses matching q ordered by name.
	Businesses(ctx context.Context, q BusinessQuery) ([]domain.Business, error)
	// Statistics summarizes the stored businesses. dead decides which website
	// statuses are counted as dead.
	Statistics(ctx context.Context, dead domain.StatusSet) (Statistics, error)
	// LogSearch records one executed place search.
	LogSearch(ctx context.Context, entry SearchLog) error
}

// AllStorage is a composite interface that includes all domain-specific storage
// capabilities required by the application.
type AllStorage interface {
	BusinessStorage
	JobStorage
}

// TxStorage describes a storage handle that operates within a database
// transaction. It exposes the same domain-specific capabilities as AllStorage,
// and additionally allows committing or rolling back the ongoing transaction.
// Implementations should become unusable after Commit or Rollback is called.
type TxStorage interface {
	AllStorage

	// Commit finalizes the transaction, persisting all changes.
	Commit() error
	// Rollback aborts the transaction, discarding all uncommitted changes.
	Rollback() error
}

// Storage describes a non-transactional storage handle with the ability to
// start transactions.
type Storage interface {
	AllStorage

	// Close releases any resources held by the storage implementation (e.g. the
	// underlying connection pool). After Close, the instance should not be used.
	Close() error

	// Begin starts a new transaction and returns a TxStorage that can be used to
	// perform further operations within that transaction.
	Begin(ctx context.Context) (TxStorage, error)
	// WithTx begins a transaction, invokes cb with it, and then commits on
	// success or rolls back if cb returns an error.
	WithTx(ctx context.Context, cb func(storage AllStorage) error) error
}
