package service

import (
	"testing"

	"github.com/leafmark/leafmark/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

// The decoy hash must parse as a real Argon2id string. A malformed one would
// make VerifyPassword bail out before the key derivation, and the unknown-user
// branch would be cheap again.
func TestDecoyPasswordHashIsWellFormed(t *testing.T) {
	err := cryptox.VerifyPassword("any-password", decoyPasswordHash)
	require.ErrorIs(t, err, cryptox.ErrPasswordMismatch)
}
