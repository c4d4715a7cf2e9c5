package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		status := httpErr.StatusCode()
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "error", err)
		}
		httputil.RespondError(w, status, httpErr.Error())
		return
	}

	logger.Error("request failed", "error", err)
	httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
}

// pathID parses the {id} path segment of the matched route.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, &domain.InvalidSelectionError{Reason: "invalid id: " + raw}
	}
	return id, nil
}
