package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Set up a temporary pepper file for testing
	tmpDir := os.TempDir()
	pepperPath := filepath.Join(tmpDir, "leafmark-test-pepper")
	SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)
			require.NotEmpty(t, hash)

			// Verify PHC format
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"),
				"hash should be in PHC format")

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.Equal(t, "argon2id", parts[1])
			require.Contains(t, parts[3], "m=", "should contain memory parameter")
			require.Contains(t, parts[3], "t=", "should contain iterations parameter")
			require.Contains(t, parts[3], "p=", "should contain parallelism parameter")
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")
		})
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	password := "samepassword"

	hash1, err := HashPassword(password)
	require.NoError(t, err)

	hash2, err := HashPassword(password)
	require.NoError(t, err)

	// Each hash should be different due to unique salts
	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")

	// But both should verify the same password
	require.NoError(t, VerifyPassword(password, hash1))
	require.NoError(t, VerifyPassword(password, hash2))
}

func TestVerifyPassword_Success(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль密码"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)

			require.NoError(t, VerifyPassword(tt.password, hash))
		})
	}
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	correctPassword := "correct-password"
	hash, err := HashPassword(correctPassword)
	require.NoError(t, err)

	tests := []struct {
		name          string
		wrongPassword string
	}{
		{"completely wrong", "wrong-password"},
		{"case difference", "Correct-Password"},
		{"extra space", "correct-password "},
		{"empty password", ""},
		{"similar password", "correct-passwor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPassword(tt.wrongPassword, hash)
			require.ErrorIs(t, err, ErrPasswordMismatch)
		})
	}
}

func TestVerifyPassword_InvalidHashFormat(t *testing.T) {
	password := "test-password"

	tests := []struct {
		name        string
		invalidHash string
	}{
		{"empty hash", ""},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPassword(password, tt.invalidHash)
			require.Error(t, err)
			require.NotErrorIs(t, err, ErrPasswordMismatch,
				"malformed hashes should be distinguishable from mismatches")
		})
	}
}

func TestVerifyPassword_PreservesPHCParameters(t *testing.T) {
	// Hashes created with older parameter sets must keep verifying; the
	// parameters are read back out of the stored string.
	password := "test-password"

	hash, err := HashPassword(password)
	require.NoError(t, err)

	require.Contains(t, hash, "m=19456", "memory parameter should be 19456 (19*1024)")
	require.Contains(t, hash, "t=2", "iterations parameter should be 2")
	require.Contains(t, hash, "p=1", "parallelism parameter should be 1")

	require.NoError(t, VerifyPassword(password, hash))
}
