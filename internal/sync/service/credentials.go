package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/leafmark/leafmark/internal/sync/domain"
	"github.com/leafmark/leafmark/internal/sync/store"
	"github.com/leafmark/leafmark/pkg/cryptox"
	"github.com/leafmark/leafmark/pkg/idx"
	"github.com/leafmark/leafmark/pkg/slogx"
)

var (
	ErrInvalidRegistration = errors.New("username and password are required")
	ErrUsernameTaken       = errors.New("username already taken")

	// ErrBadCredentials covers unknown usernames and wrong passwords alike,
	// so a caller cannot probe which usernames exist.
	ErrBadCredentials = errors.New("invalid credentials")
)

// decoyPasswordHash is a well-formed Argon2id hash with the production
// parameters. Verify hashes against it when the username is unknown so both
// branches pay the same Argon2 cost and response timing does not reveal
// whether an account exists.
const decoyPasswordHash = "$argon2id$v=19$m=19456,t=2,p=1$" +
	"AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// CredentialService owns user identity records: registration and
// verification of presented username/password pairs.
type CredentialService struct {
	Store store.Store
}

// Register creates a new account with a freshly salted Argon2id hash of
// password. There is no look-before-insert: the storage layer's uniqueness
// constraint is the final arbiter, so two concurrent registrations for the
// same username cannot both succeed.
func (s *CredentialService) Register(
	ctx context.Context,
	username, password string,
) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if username == "" || password == "" {
		return domain.User{}, ErrInvalidRegistration
	}

	passwordHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("registration attempted with taken username",
				slog.String("username", username),
			)
			return domain.User{}, ErrUsernameTaken
		}
		log.Error("failed to create user",
			slog.String("username", username),
			slog.Any("error", err),
		)
		return domain.User{}, err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Verify checks a presented username/password pair against the stored hash.
// It returns nil on success, ErrBadCredentials when the username is unknown
// or the password does not match, and the underlying error for storage
// faults. Callers must treat a storage fault as "cannot determine", not as a
// denial.
func (s *CredentialService) Verify(ctx context.Context, username, password string) error {
	log := slogx.FromContext(ctx)

	if username == "" || password == "" {
		return ErrBadCredentials
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(password, decoyPasswordHash)
			return ErrBadCredentials
		}
		log.Error("failed to look up user",
			slog.String("username", username),
			slog.Any("error", err),
		)
		return err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrBadCredentials
		}
		// Malformed stored hash is a data fault, not a credential failure.
		log.Error("stored password hash is unusable",
			slog.String("username", username),
			slog.Any("error", err),
		)
		return err
	}

	return nil
}
