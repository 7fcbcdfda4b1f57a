package middleware

import (
	"context"
	"net/http"
	"strings"
)

type actorKey struct{}

// Actor lê o X-User-ID repassado pelo gateway de autenticação.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get("X-User-ID")); id != "" {
			r = r.WithContext(context.WithValue(r.Context(), actorKey{}, id))
		}
		next.ServeHTTP(w, r)
	})
}

func ActorID(ctx context.Context) string {
	id, _ := ctx.Value(actorKey{}).(string)
	return id
}
