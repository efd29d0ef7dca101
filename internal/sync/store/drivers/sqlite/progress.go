package sqlite

import (
	"context"
	"time"

	"github.com/leafmark/leafmark/internal/sync/domain"
)

type progressRepo struct {
	db dbtx
}

func (r *progressRepo) GetProgress(
	ctx context.Context,
	owner, documentID string,
) (domain.ProgressRecord, error) {
	const query = `
		SELECT owner, document_id, location, percentage, device, device_id, client_ts, updated_at
		FROM progress_records
		WHERE owner = ? AND document_id = ?`

	var (
		rec                 domain.ProgressRecord
		clientTS, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, query, owner, documentID).Scan(
		&rec.Owner,
		&rec.DocumentID,
		&rec.Location,
		&rec.Percentage,
		&rec.Device,
		&rec.DeviceID,
		&clientTS,
		&updatedAt,
	)
	if err != nil {
		return domain.ProgressRecord{}, mapNotFound(err)
	}

	rec.ClientTS = time.UnixMilli(clientTS).UTC()
	rec.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return rec, nil
}

// MergeProgress is a single conditional upsert. The comparison against the
// stored row happens inside the statement itself, so concurrent merges for
// the same (owner, document_id) serialize on the row and cannot lose updates
// between a read and a write.
func (r *progressRepo) MergeProgress(ctx context.Context, rec domain.ProgressRecord) error {
	const query = `
		INSERT INTO progress_records
			(owner, document_id, location, percentage, device, device_id, client_ts, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner, document_id) DO UPDATE SET
			location   = excluded.location,
			percentage = excluded.percentage,
			device     = excluded.device,
			device_id  = excluded.device_id,
			client_ts  = excluded.client_ts,
			updated_at = excluded.updated_at
		WHERE excluded.percentage > progress_records.percentage
		   OR (excluded.percentage = progress_records.percentage
		       AND excluded.client_ts >= progress_records.client_ts)`

	_, err := r.db.ExecContext(ctx, query,
		rec.Owner,
		rec.DocumentID,
		rec.Location,
		rec.Percentage,
		rec.Device,
		rec.DeviceID,
		rec.ClientTS.UnixMilli(),
		rec.UpdatedAt.UnixMilli(),
	)
	return err
}

func (r *progressRepo) CountProgressRecords(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM progress_records`).Scan(&count)
	return count, err
}
