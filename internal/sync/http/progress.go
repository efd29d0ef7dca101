package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/leafmark/leafmark/internal/sync/domain"
	"github.com/leafmark/leafmark/internal/sync/service"
	"github.com/leafmark/leafmark/internal/sync/store"
	"github.com/leafmark/leafmark/pkg/httpx"
	"github.com/leafmark/leafmark/pkg/slogx"
)

type ProgressHandler struct {
	ProgressService *service.ProgressService
}

type progressUpsertRequest struct {
	Document   string  `json:"document"`
	Progress   string  `json:"progress"`
	Percentage float64 `json:"percentage"`
	Device     string  `json:"device"`
	DeviceID   string  `json:"device_id"`
	// Timestamp is the client's write time in unix seconds. Optional; the
	// server time is used when absent.
	Timestamp int64 `json:"timestamp,omitempty"`
}

type progressResponse struct {
	Document   string  `json:"document"`
	Progress   string  `json:"progress"`
	Percentage float64 `json:"percentage"`
	Device     string  `json:"device"`
	DeviceID   string  `json:"device_id"`
	Timestamp  int64   `json:"timestamp"`
	UpdatedAt  string  `json:"updated_at"`
}

func toProgressResponse(rec domain.ProgressRecord) progressResponse {
	return progressResponse{
		Document:   rec.DocumentID,
		Progress:   rec.Location,
		Percentage: rec.Percentage,
		Device:     rec.Device,
		DeviceID:   rec.DeviceID,
		Timestamp:  rec.ClientTS.Unix(),
		UpdatedAt:  rec.UpdatedAt.Format(time.RFC3339),
	}
}

// HandleUpsert merges a reported position for the authenticated user. The
// response always carries the authoritative record: a stale write gets the
// current state back with a success status rather than an error.
func (h *ProgressHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	owner := httpx.UsernameFromContext(ctx)

	var req progressUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "Request body must be a JSON progress payload")
		return
	}

	update := service.ProgressUpdate{
		DocumentID: req.Document,
		Location:   req.Progress,
		Percentage: req.Percentage,
		Device:     req.Device,
		DeviceID:   req.DeviceID,
	}
	if req.Timestamp > 0 {
		update.ClientTS = time.Unix(req.Timestamp, 0).UTC()
	}

	merged, err := h.ProgressService.Upsert(ctx, owner, update)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidProgress):
			httpx.WriteError(w, http.StatusBadRequest,
				"invalid_request", "document is required and percentage must be between 0 and 1")
		default:
			log.Error("failed to upsert progress", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError,
				"server_error", "Failed to store progress")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProgressResponse(merged))
}

// HandleFetch returns the stored position for the document named in the
// request path, scoped to the authenticated user.
func (h *ProgressHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	owner := httpx.UsernameFromContext(ctx)
	document := r.PathValue("document")

	rec, err := h.ProgressService.Fetch(ctx, owner, document)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidProgress):
			httpx.WriteError(w, http.StatusBadRequest,
				"invalid_request", "document is required")
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound,
				"not_found", "No progress recorded for this document")
		default:
			log.Error("failed to fetch progress", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError,
				"server_error", "Failed to fetch progress")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProgressResponse(rec))
}
