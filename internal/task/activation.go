// Package task holds the background jobs triggered through the internal
// API. Jobs run detached from the request that scheduled them.
package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/transactional/dam-service/internal/domain/services"
)

// ActivateAssets flips hidden assets whose start date is the given day to
// visible.
func ActivateAssets(ctx context.Context, assets services.AssetService, day time.Time, logger *slog.Logger) {
	logger.Info("asset activation starting", "start_date", day.Format(time.DateOnly))

	activated, err := assets.Activate(ctx, day)
	if err != nil {
		logger.Error("asset activation failed", "start_date", day.Format(time.DateOnly), "error", err)
		return
	}

	logger.Info("asset activation finished",
		"start_date", day.Format(time.DateOnly),
		"activated", activated,
	)
}

// DeactivateAssets flips visible assets whose end date is the given day to
// hidden.
func DeactivateAssets(ctx context.Context, assets services.AssetService, day time.Time, logger *slog.Logger) {
	logger.Info("asset deactivation starting", "end_date", day.Format(time.DateOnly))

	deactivated, err := assets.Deactivate(ctx, day)
	if err != nil {
		logger.Error("asset deactivation failed", "end_date", day.Format(time.DateOnly), "error", err)
		return
	}

	logger.Info("asset deactivation finished",
		"end_date", day.Format(time.DateOnly),
		"deactivated", deactivated,
	)
}
