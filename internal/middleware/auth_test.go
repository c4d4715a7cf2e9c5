package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/transactional/dam-service/internal/auth"
)

type fakeVerifier struct {
	claims *auth.ServiceClaims
	err    error
}

func (f *fakeVerifier) VerifyToken(string) (*auth.ServiceClaims, error) {
	return f.claims, f.err
}

func TestServiceAuth(t *testing.T) {
	verified := &auth.ServiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "abe"},
	}

	tests := []struct {
		name        string
		authorize   string
		verifier    *fakeVerifier
		wantStatus  int
		wantService string
	}{
		{
			name:        "valid token",
			authorize:   "Bearer token-1",
			verifier:    &fakeVerifier{claims: verified},
			wantStatus:  http.StatusOK,
			wantService: "abe",
		},
		{
			name:       "missing header",
			verifier:   &fakeVerifier{claims: verified},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer token",
			authorize:  "Basic dXNlcg==",
			verifier:   &fakeVerifier{claims: verified},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "rejected token",
			authorize:  "Bearer token-1",
			verifier:   &fakeVerifier{err: errors.New("expired")},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotService string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotService = r.Header.Get("X-Service-Name")
			})

			r := httptest.NewRequest("POST", "/internal/dam/folders", nil)
			if tt.authorize != "" {
				r.Header.Set("Authorization", tt.authorize)
			}
			w := httptest.NewRecorder()

			ServiceAuth(tt.verifier, slog.Default())(next).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantService, gotService)
		})
	}
}
