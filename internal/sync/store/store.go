package store

import (
	"context"
	"errors"

	"github.com/leafmark/leafmark/internal/sync/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Progress() Progress

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must read a consistent snapshot
	// (e.g., merge-then-fetch). The caller MUST call Commit() or Rollback()
	// on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByUsername is used during credential verification.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// The username uniqueness constraint is the final arbiter for concurrent
	// registrations; a constraint violation is reported as ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// CountUsers returns the number of registered users.
	CountUsers(ctx context.Context) (int64, error)
}

type Progress interface {
	// GetProgress returns the record for (owner, documentID) or ErrNotFound.
	GetProgress(ctx context.Context, owner, documentID string) (domain.ProgressRecord, error)

	// MergeProgress applies rec as a single atomic conditional write:
	// insert when no record exists, otherwise update only if rec wins the
	// merge comparison (higher percentage, then later client timestamp, ties
	// to the incoming write). A losing write leaves the row untouched. It
	// never reads then writes in separate steps, so concurrent merges cannot
	// lose updates.
	MergeProgress(ctx context.Context, rec domain.ProgressRecord) error

	// CountProgressRecords returns the number of stored progress rows.
	CountProgressRecords(ctx context.Context) (int64, error)
}
