package domain

import "time"

// ProgressRecord is a user's latest known position in a single document.
// At most one record exists per (Owner, DocumentID) pair.
type ProgressRecord struct {
	Owner      string  // username of the owning account
	DocumentID string  // opaque stable document identifier, e.g. a content hash
	Location   string  // opaque position marker, e.g. a page/offset string
	Percentage float64 // fractional completion, 0.0..1.0
	Device     string  // human-readable device name
	DeviceID   string  // stable device identifier

	// ClientTS is the timestamp the client reported with the write. It breaks
	// ties between writes with equal percentage.
	ClientTS time.Time

	// UpdatedAt is the server time of the last write that won the merge. It is
	// non-decreasing for a given (Owner, DocumentID).
	UpdatedAt time.Time
}

// SupersededBy reports whether incoming should replace r under the merge
// rule: higher percentage wins; on equal percentage the later client
// timestamp wins; an exact tie counts as a win so identical re-sends are
// idempotent.
func (r ProgressRecord) SupersededBy(incoming ProgressRecord) bool {
	if incoming.Percentage != r.Percentage {
		return incoming.Percentage > r.Percentage
	}
	return !incoming.ClientTS.Before(r.ClientTS)
}
