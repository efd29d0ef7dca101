package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/leafmark/leafmark/internal/sync/domain"
	"github.com/leafmark/leafmark/internal/sync/store"
	"github.com/leafmark/leafmark/pkg/slogx"
)

// ErrInvalidProgress reports a malformed or out-of-range progress write.
var ErrInvalidProgress = errors.New("invalid progress payload")

// ProgressUpdate carries a client's reported position for one document.
type ProgressUpdate struct {
	DocumentID string
	Location   string
	Percentage float64
	Device     string
	DeviceID   string

	// ClientTS is the client's reported write time. A zero value means the
	// client did not report one and the server time is used instead.
	ClientTS time.Time
}

// ProgressService owns per-(user, document) reading-progress records and is
// the only component that mutates them.
type ProgressService struct {
	Store store.Store
}

// Upsert merges a reported position into the ledger and returns the
// authoritative record afterwards. A write that loses the merge comparison
// is accepted as a no-op: the caller gets the existing record back, never an
// error, so a stale device converges on the current state.
//
// Merge rule: higher percentage wins; on equal percentage the later client
// timestamp wins; an exact tie goes to the incoming write, which makes
// identical re-sends idempotent.
func (s *ProgressService) Upsert(
	ctx context.Context,
	owner string,
	in ProgressUpdate,
) (domain.ProgressRecord, error) {
	log := slogx.FromContext(ctx)

	if owner == "" || in.DocumentID == "" {
		return domain.ProgressRecord{}, ErrInvalidProgress
	}
	if in.Percentage < 0.0 || in.Percentage > 1.0 {
		return domain.ProgressRecord{}, ErrInvalidProgress
	}

	now := time.Now().UTC()
	clientTS := in.ClientTS
	if clientTS.IsZero() {
		clientTS = now
	}

	rec := domain.ProgressRecord{
		Owner:      owner,
		DocumentID: in.DocumentID,
		Location:   in.Location,
		Percentage: in.Percentage,
		Device:     in.Device,
		DeviceID:   in.DeviceID,
		ClientTS:   clientTS,
		UpdatedAt:  now,
	}

	// The conditional write and the read-back share one transaction so the
	// returned record reflects the snapshot the merge was evaluated against.
	var merged domain.ProgressRecord
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Progress().MergeProgress(ctx, rec); err != nil {
			return err
		}

		got, err := tx.Progress().GetProgress(ctx, owner, in.DocumentID)
		if err != nil {
			return err
		}
		merged = got
		return nil
	})
	if err != nil {
		log.Error("failed to merge progress",
			slog.String("owner", owner),
			slog.String("document_id", in.DocumentID),
			slog.Any("error", err),
		)
		return domain.ProgressRecord{}, err
	}

	log.Debug("progress merged",
		slog.String("owner", owner),
		slog.String("document_id", in.DocumentID),
		slog.Float64("reported", in.Percentage),
		slog.Float64("stored", merged.Percentage),
	)

	return merged, nil
}

// Fetch returns the stored record for (owner, documentID). It has no side
// effects. store.ErrNotFound is passed through for documents that have never
// been synced.
func (s *ProgressService) Fetch(
	ctx context.Context,
	owner, documentID string,
) (domain.ProgressRecord, error) {
	if owner == "" || documentID == "" {
		return domain.ProgressRecord{}, ErrInvalidProgress
	}

	return s.Store.Progress().GetProgress(ctx, owner, documentID)
}
