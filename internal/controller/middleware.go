package controller

import (
	"context"
	"net/http"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
)

type contextKey string

const ownerIDKey contextKey = "owner_id"

// OwnerID extracts the authenticated owner from the X-Owner-ID header. The
// session layer in front of this service resolves the actual login; here it
// is just the tenant boundary every query is scoped by.
func OwnerID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := r.Header.Get("X-Owner-ID")
		if owner == "" {
			writeError(w, appErrors.NewUnauthorized())
			return
		}
		ctx := context.WithValue(r.Context(), ownerIDKey, owner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerIDKey).(string)
	return owner
}
