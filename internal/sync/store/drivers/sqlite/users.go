package sqlite

import (
	"context"
	"time"

	"github.com/leafmark/leafmark/internal/sync/domain"
	"github.com/leafmark/leafmark/internal/sync/store"
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	const query = `
		SELECT id, username, password_hash, created_at, updated_at
		FROM users
		WHERE username = ?`

	var (
		u                    domain.User
		createdAt, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	u.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return u, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	const query = `
		INSERT INTO users (id, username, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`

	now := time.Now().UTC().UnixMilli()
	_, err := r.db.ExecContext(ctx, query, u.ID, u.Username, u.PasswordHash, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *usersRepo) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
