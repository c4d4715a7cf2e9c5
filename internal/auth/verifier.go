// Package auth verifies the service tokens presented on internal
// endpoints. Keys come from the platform's JWKS endpoint.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/transactional/dam-service/internal/domain"
)

// ServiceClaims are the claims carried by a service-to-service token.
type ServiceClaims struct {
	Service string `json:"service,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier validates a service token and returns its claims.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*ServiceClaims, error)
}

// JWKSVerifier implements TokenVerifier against a JWKS endpoint. Keys are
// cached and refreshed by the keyfunc client based on HTTP cache headers.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

var errUnauthorized = &domain.ForbiddenError{Reason: "invalid service token"}

func NewJWKSVerifier(jwksURL string, logger *slog.Logger) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("service token verifier initialized", "jwks_url", jwksURL)

	return &JWKSVerifier{jwks: jwks, logger: logger}, nil
}

// VerifyToken validates a service token. Only asymmetric algorithms are
// accepted to rule out algorithm confusion with the JWKS keys.
func (v *JWKSVerifier) VerifyToken(tokenString string) (*ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ServiceClaims{}, v.jwks.Keyfunc)
	if err != nil {
		v.logger.Debug("service token parse failed", "error", err)
		return nil, errUnauthorized
	}
	if !token.Valid {
		return nil, errUnauthorized
	}

	switch token.Method.Alg() {
	case "RS256", "ES256":
	default:
		v.logger.Warn("service token uses unexpected algorithm", "algorithm", token.Method.Alg())
		return nil, errUnauthorized
	}

	claims, ok := token.Claims.(*ServiceClaims)
	if !ok || claims.Subject == "" {
		return nil, errUnauthorized
	}

	return claims, nil
}
