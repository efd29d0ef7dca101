package service_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leafmark/leafmark/internal/sync/store"
	"github.com/leafmark/leafmark/internal/sync/store/drivers/sqlite"
	"github.com/leafmark/leafmark/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "leafmark-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	code := m.Run()

	_ = os.Remove(pepperPath)
	os.Exit(code)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "leafmark-test.db")
	st, err := sqlite.NewStore(dsn, 5)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}
