package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/leafmark/leafmark/internal/sync/service"
	"github.com/leafmark/leafmark/internal/sync/store"
	"github.com/stretchr/testify/require"
)

func newProgressFixture(t *testing.T) (*service.ProgressService, store.Store) {
	t.Helper()

	st := newTestStore(t)
	creds := &service.CredentialService{Store: st}
	_, err := creds.Register(context.Background(), "alice", "secret")
	require.NoError(t, err)

	return &service.ProgressService{Store: st}, st
}

func TestUpsert_FirstWrite(t *testing.T) {
	svc, _ := newProgressFixture(t)
	ctx := context.Background()

	rec, err := svc.Upsert(ctx, "alice", service.ProgressUpdate{
		DocumentID: "doc-1",
		Location:   "/body/DocFragment[12]",
		Percentage: 0.10,
		Device:     "boox",
		DeviceID:   "dev-a",
	})
	require.NoError(t, err)
	require.InDelta(t, 0.10, rec.Percentage, 1e-9)
	require.Equal(t, "/body/DocFragment[12]", rec.Location)
	require.False(t, rec.UpdatedAt.IsZero())
	require.False(t, rec.ClientTS.IsZero())
}

func TestUpsert_ForwardProgressAdvances(t *testing.T) {
	svc, _ := newProgressFixture(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "alice", service.ProgressUpdate{
		DocumentID: "doc-1", Percentage: 0.10,
	})
	require.NoError(t, err)

	rec, err := svc.Upsert(ctx, "alice", service.ProgressUpdate{
		DocumentID: "doc-1", Percentage: 0.30,
	})
	require.NoError(t, err)
	require.InDelta(t, 0.30, rec.Percentage, 1e-9)
}

// A device that went offline mid-book pushes an old position after another
// device already read further. The stale write is accepted as a no-op and the
// caller is handed the authoritative record.
func TestUpsert_StaleWriteReturnsAuthoritativeRecord(t *testing.T) {
	svc, _ := newProgressFixture(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "alice", service.ProgressUpdate{
		DocumentID: "doc-1", Percentage: 0.10, Device: "boox",
	})
	require.NoError(t, err)

	rec, err := svc.Upsert(ctx, "alice", service.ProgressUpdate{
		DocumentID: "doc-1", Percentage: 0.05, Device: "kobo",
	})
	require.NoError(t, err)
	require.InDelta(t, 0.10, rec.Percentage, 1e-9)
	require.Equal(t, "boox", rec.Device)

	rec, err = svc.Upsert(ctx, "alice", service.ProgressUpdate{
		DocumentID: "doc-1", Percentage: 0.30, Device: "kobo",
	})
	require.NoError(t, err)
	require.InDelta(t, 0.30, rec.Percentage, 1e-9)
	require.Equal(t, "kobo", rec.Device)
}

func TestUpsert_EqualPercentageLaterTimestampWins(t *testing.T) {
	svc, _ := newProgressFixture(t)
	ctx := context.Background()

	earlier := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	later := earlier.Add(30 * time.Minute)

	_, err := svc.Upsert(ctx, "alice", service.ProgressUpdate{
		DocumentID: "doc-1", Percentage: 0.50, Device: "phone", ClientTS: later,
	})
	require.NoError(t, err)

	rec, err := svc.Upsert(ctx, "alice", service.ProgressUpdate{
		DocumentID: "doc-1", Percentage: 0.50, Device: "tablet", ClientTS: earlier,
	})
	require.NoError(t, err)
	require.Equal(t, "phone", rec.Device)
}

func TestUpsert_IdempotentResend(t *testing.T) {
	svc, _ := newProgressFixture(t)
	ctx := context.Background()

	ts := time.Now().UTC().Truncate(time.Millisecond)
	update := service.ProgressUpdate{
		DocumentID: "doc-1",
		Location:   "loc",
		Percentage: 0.42,
		Device:     "boox",
		DeviceID:   "dev-a",
		ClientTS:   ts,
	}

	first, err := svc.Upsert(ctx, "alice", update)
	require.NoError(t, err)

	second, err := svc.Upsert(ctx, "alice", update)
	require.NoError(t, err)

	require.Equal(t, first.Percentage, second.Percentage)
	require.Equal(t, first.Location, second.Location)
	require.Equal(t, first.Device, second.Device)
	require.Equal(t, first.ClientTS.UnixMilli(), second.ClientTS.UnixMilli())
}

func TestUpsert_RejectsOutOfRangePercentage(t *testing.T) {
	svc, st := newProgressFixture(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "alice", service.ProgressUpdate{
		DocumentID: "doc-1", Percentage: 1.5,
	})
	require.ErrorIs(t, err, service.ErrInvalidProgress)

	_, err = svc.Upsert(ctx, "alice", service.ProgressUpdate{
		DocumentID: "doc-1", Percentage: -0.1,
	})
	require.ErrorIs(t, err, service.ErrInvalidProgress)

	// Rejected writes leave no record behind.
	_, err = st.Progress().GetProgress(ctx, "alice", "doc-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpsert_RejectsMissingDocument(t *testing.T) {
	svc, _ := newProgressFixture(t)

	_, err := svc.Upsert(context.Background(), "alice", service.ProgressUpdate{
		Percentage: 0.5,
	})
	require.ErrorIs(t, err, service.ErrInvalidProgress)
}

func TestUpsert_BoundaryPercentages(t *testing.T) {
	svc, _ := newProgressFixture(t)
	ctx := context.Background()

	rec, err := svc.Upsert(ctx, "alice", service.ProgressUpdate{
		DocumentID: "doc-1", Percentage: 0.0,
	})
	require.NoError(t, err)
	require.InDelta(t, 0.0, rec.Percentage, 1e-9)

	rec, err = svc.Upsert(ctx, "alice", service.ProgressUpdate{
		DocumentID: "doc-1", Percentage: 1.0,
	})
	require.NoError(t, err)
	require.InDelta(t, 1.0, rec.Percentage, 1e-9)
}

func TestUpsert_DocumentsIndependent(t *testing.T) {
	svc, _ := newProgressFixture(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "alice", service.ProgressUpdate{
		DocumentID: "doc-1", Percentage: 0.90,
	})
	require.NoError(t, err)

	rec, err := svc.Upsert(ctx, "alice", service.ProgressUpdate{
		DocumentID: "doc-2", Percentage: 0.10,
	})
	require.NoError(t, err)
	require.InDelta(t, 0.10, rec.Percentage, 1e-9)

	fetched, err := svc.Fetch(ctx, "alice", "doc-1")
	require.NoError(t, err)
	require.InDelta(t, 0.90, fetched.Percentage, 1e-9)
}

func TestFetch(t *testing.T) {
	svc, _ := newProgressFixture(t)
	ctx := context.Background()

	want, err := svc.Upsert(ctx, "alice", service.ProgressUpdate{
		DocumentID: "doc-1",
		Location:   "/body/DocFragment[3]",
		Percentage: 0.25,
		Device:     "boox",
	})
	require.NoError(t, err)

	got, err := svc.Fetch(ctx, "alice", "doc-1")
	require.NoError(t, err)
	require.Equal(t, want.Location, got.Location)
	require.InDelta(t, want.Percentage, got.Percentage, 1e-9)
	require.Equal(t, want.Device, got.Device)
}

func TestFetch_NeverSynced(t *testing.T) {
	svc, _ := newProgressFixture(t)

	_, err := svc.Fetch(context.Background(), "alice", "never-synced")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestFetch_RejectsEmptyArguments(t *testing.T) {
	svc, _ := newProgressFixture(t)
	ctx := context.Background()

	_, err := svc.Fetch(ctx, "", "doc-1")
	require.ErrorIs(t, err, service.ErrInvalidProgress)

	_, err = svc.Fetch(ctx, "alice", "")
	require.ErrorIs(t, err, service.ErrInvalidProgress)
}
