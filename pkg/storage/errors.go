package storage

import "finder/pkg/serrors"

// Transaction misuse errors returned by storage implementations. They carry
// the ErrConflict kind and are matched with errors.Is.
var (
	// ErrAlreadyInTx is returned by Begin on a handle that is already a transaction.
	ErrAlreadyInTx = serrors.With(serrors.ErrConflict, "already in tx")
	// ErrNotInTx is returned by Commit and Rollback on a handle that is not a transaction.
	ErrNotInTx = serrors.With(serrors.ErrConflict, "not in tx")
)
