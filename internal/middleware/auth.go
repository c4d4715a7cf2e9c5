package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/transactional/dam-service/internal/auth"
	"github.com/transactional/dam-service/internal/httputil"
)

// ServiceAuth guards the internal endpoints with bearer service tokens.
func ServiceAuth(verifier auth.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("service token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid service token")
				return
			}

			r.Header.Set("X-Service-Name", claims.Subject)
			next.ServeHTTP(w, r)
		})
	}
}
