package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/leafmark/leafmark/internal/sync/store"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx, so the
// same repo code runs inside and outside transactions.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	dsn string
}

// NewStore opens the SQLite database at dsn. maxConns bounds the number of
// simultaneously in-flight storage operations; callers block in
// database/sql's pool when it is exhausted.
func NewStore(dsn string, maxConns int) (*Store, error) {
	// Pragmas are per-connection, so they travel in the DSN to cover every
	// connection the pool opens. busy_timeout makes a writer that hits a
	// locked database block and retry instead of failing with SQLITE_BUSY,
	// which is what lets concurrent merges on one row serialize.
	for _, pragma := range []string{
		"_pragma=busy_timeout(5000)",
		"_pragma=journal_mode(WAL)",
		"_pragma=foreign_keys(1)",
	} {
		if strings.Contains(dsn, "?") {
			dsn += "&" + pragma
		} else {
			dsn += "?" + pragma
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns)
	}

	return &Store{
		db:  db,
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err // rollback happens in defer
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users       { return &usersRepo{db: s.db} }
func (s *Store) Progress() store.Progress { return &progressRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// isUniqueViolation reports whether err is a SQLite uniqueness constraint
// failure. The storage constraint is the final arbiter for duplicate
// registration, so this must be recognisable as a distinct condition.
func isUniqueViolation(err error) bool {
	var serr *sqlitedriver.Error
	if errors.As(err, &serr) {
		code := serr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
