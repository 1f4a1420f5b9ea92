package session

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/kazz187/taskdeck/pkg/clog"
)

// Middleware attaches the session for requests carrying a valid bearer
// token. Requests without one pass through anonymously; operations that
// need identity reject them with Unauthenticated.
func Middleware(a *Authority) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			s, err := a.Verify(token)
			if err != nil {
				slog.DebugContext(r.Context(), "rejected bearer token", clog.ErrorAttributeKey, err)
				next.ServeHTTP(w, r)
				return
			}
			ctx := clog.ContextWithSlog(r.Context())
			clog.AddUser(ctx, s.UserID)
			next.ServeHTTP(w, r.WithContext(WithSession(ctx, s)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
