package http

import (
	"errors"
	"net/http"

	"github.com/leafmark/leafmark/internal/sync/service"
	"github.com/leafmark/leafmark/pkg/httpx"
	"github.com/leafmark/leafmark/pkg/slogx"
)

// Credential material travels in two opaque headers on every sync request.
// There are no sessions; each request re-proves identity.
const (
	HeaderAuthUser = "x-auth-user"
	HeaderAuthKey  = "x-auth-key"
)

// RequireCredentials verifies the x-auth-user/x-auth-key headers before the
// wrapped handler runs. Authentication failure short-circuits: the ledger is
// never reachable by an unauthenticated caller. A missing or malformed
// header is treated identically to a failed credential check, and a storage
// fault during verification also answers 401 (it is logged for operators,
// but the client learns nothing beyond "denied").
func RequireCredentials(creds *service.CredentialService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			username := r.Header.Get(HeaderAuthUser)
			password := r.Header.Get(HeaderAuthKey)
			if username == "" || password == "" {
				writeUnauthorized(w)
				return
			}

			if err := creds.Verify(ctx, username, password); err != nil {
				if !errors.Is(err, service.ErrBadCredentials) {
					log.Error("credential verification failed", "err", err)
				}
				writeUnauthorized(w)
				return
			}

			ctx = httpx.ContextWithUsername(ctx, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusUnauthorized,
		"unauthorized", "Missing or invalid credentials")
}
