package http

import (
	"net/http"

	"github.com/leafmark/leafmark/pkg/httpx"
)

type authCheckResponse struct {
	Authorized string `json:"authorized"`
}

// AuthCheckHandler answers the device's standalone credential probe. The
// RequireCredentials middleware has already verified the headers by the time
// this runs, so all that is left is to confirm.
func AuthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authCheckResponse{Authorized: "OK"})
	}
}
