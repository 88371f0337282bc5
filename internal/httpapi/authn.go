package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"apiscope.dev/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

var publicPaths = []string{
	"/auth/register",
	"/auth/login",
	"/metrics",
	"/healthz",
	"/readyz",
	"/",
}

// withAuth is the bearer gate: every non-public route requires a valid
// session token, and the resolved user id rides the request context.
// Rejected requests never reach a handler, so no persistence and no
// outbound call can happen for them.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "Unauthorized: missing bearer token")
			return
		}

		userID, err := a.auth.Verify(token)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "Unauthorized: invalid token")
			return
		}

		ctx := auth.ContextWithUserID(r.Context(), userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
