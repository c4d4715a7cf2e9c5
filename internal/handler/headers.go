package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/domain/models"
)

// Caller-identity headers forwarded by the API gateway.
const (
	headerAccessToken    = "X-Uberall-Access-Token"
	headerUserID         = "X-Uberall-User-ID"
	headerSalesPartnerID = "X-Uberall-Sales-Partner-ID"
	headerUserRole       = "X-Uberall-User-Role"
	headerUserFeatures   = "X-Uberall-User-Features"
)

// userFromHeaders builds the caller identity from the gateway headers.
// Every header is required; unknown feature names are dropped.
func userFromHeaders(r *http.Request) (*models.User, error) {
	token := r.Header.Get(headerAccessToken)
	if token == "" {
		return nil, &domain.MissingHeaderError{Header: headerAccessToken}
	}

	userID, err := headerInt64(r, headerUserID)
	if err != nil {
		return nil, err
	}
	salesPartnerID, err := headerInt64(r, headerSalesPartnerID)
	if err != nil {
		return nil, err
	}

	rawRole := r.Header.Get(headerUserRole)
	if rawRole == "" {
		return nil, &domain.MissingHeaderError{Header: headerUserRole}
	}
	role, tier, err := models.ParseRole(rawRole)
	if err != nil {
		return nil, &domain.InvalidSelectionError{Reason: err.Error()}
	}

	rawFeatures := r.Header.Values(headerUserFeatures)
	if len(rawFeatures) == 0 {
		return nil, &domain.MissingHeaderError{Header: headerUserFeatures}
	}

	return &models.User{
		ID:             userID,
		SalesPartnerID: salesPartnerID,
		Role:           role,
		Tier:           tier,
		Features:       parseFeatures(rawFeatures),
		AccessToken:    token,
	}, nil
}

func headerInt64(r *http.Request, name string) (int64, error) {
	raw := r.Header.Get(name)
	if raw == "" {
		return 0, &domain.MissingHeaderError{Header: name}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &domain.InvalidSelectionError{Reason: "invalid " + name + " header: not a number"}
	}
	return value, nil
}

var knownFeatures = map[string]models.Feature{
	string(models.FeatureDAM): models.FeatureDAM,
}

func parseFeatures(values []string) map[models.Feature]bool {
	features := make(map[models.Feature]bool)
	for _, raw := range values {
		for _, name := range strings.Split(raw, ",") {
			if feature, ok := knownFeatures[strings.TrimSpace(name)]; ok {
				features[feature] = true
			}
		}
	}
	return features
}
