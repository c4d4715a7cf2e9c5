package task

import (
	"context"
	"log/slog"

	"github.com/transactional/dam-service/internal/domain/models"
	"github.com/transactional/dam-service/internal/domain/services"
	"github.com/transactional/dam-service/internal/pagination"
)

// LocationAuthority answers which locations still exist for a tenant.
type LocationAuthority interface {
	LocationIDsForSalesPartner(ctx context.Context, salesPartnerID int64, sel models.ManagedResourcesSelection) ([]int64, error)
}

// ObsoleteLocationLinksDeletion walks every asset of the targeted tenants
// and drops location links pointing at locations the authority no longer
// knows. Tenants fail independently; one bad tenant does not stop the walk.
type ObsoleteLocationLinksDeletion struct {
	assets    services.AssetService
	authority LocationAuthority
	pageSize  int
	logger    *slog.Logger
}

func NewObsoleteLocationLinksDeletion(
	assets services.AssetService,
	authority LocationAuthority,
	pageSize int,
	logger *slog.Logger,
) *ObsoleteLocationLinksDeletion {
	return &ObsoleteLocationLinksDeletion{
		assets:    assets,
		authority: authority,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// Run processes the given tenants, or every tenant owning assets when the
// list is empty.
func (t *ObsoleteLocationLinksDeletion) Run(ctx context.Context, salesPartnerIDs []int64) {
	scope := "all"
	if len(salesPartnerIDs) > 0 {
		scope = "selected"
	}
	t.logger.Info("obsolete location links deletion starting", "scope", scope)

	ids := salesPartnerIDs
	if len(ids) == 0 {
		var err error
		ids, err = t.assets.SalesPartnerIDs(ctx)
		if err != nil {
			t.logger.Error("obsolete location links deletion failed to list tenants", "error", err)
			return
		}
	}

	for _, salesPartnerID := range ids {
		if err := t.deleteForSalesPartner(ctx, salesPartnerID); err != nil {
			t.logger.Error("obsolete location links deletion failed for tenant",
				"sales_partner_id", salesPartnerID,
				"error", err,
			)
		}
	}

	t.logger.Info("obsolete location links deletion finished", "scope", scope, "tenants", len(ids))
}

func (t *ObsoleteLocationLinksDeletion) deleteForSalesPartner(ctx context.Context, salesPartnerID int64) error {
	validIDs, err := t.authority.LocationIDsForSalesPartner(ctx, salesPartnerID, models.ManagedResourcesSelection{
		AllManagedResources: true,
	})
	if err != nil {
		return err
	}

	valid := make(map[int64]bool, len(validIDs))
	for _, id := range validIDs {
		valid[id] = true
	}

	processed := int64(0)
	for page := 0; ; page++ {
		assets, err := t.assets.ListForSalesPartner(ctx, salesPartnerID, pagination.Page{
			Number: page,
			Size:   t.pageSize,
		})
		if err != nil {
			return err
		}

		for i := range assets.Assets {
			if err := t.deleteForAsset(ctx, &assets.Assets[i], valid); err != nil {
				return err
			}
		}

		processed += int64(len(assets.Assets))
		if processed >= assets.Total || len(assets.Assets) == 0 {
			break
		}
	}

	t.logger.Debug("obsolete location links deletion processed tenant",
		"sales_partner_id", salesPartnerID,
		"assets", processed,
	)
	return nil
}

func (t *ObsoleteLocationLinksDeletion) deleteForAsset(ctx context.Context, asset *models.Asset, valid map[int64]bool) error {
	var obsolete []int64
	for _, id := range asset.LocationIDs() {
		if !valid[id] {
			obsolete = append(obsolete, id)
		}
	}
	if len(obsolete) == 0 {
		return nil
	}

	deleted, err := t.assets.DeleteAssetLocations(ctx, asset.ID, obsolete)
	if err != nil {
		return err
	}
	if deleted > 0 {
		t.logger.Info("obsolete location links deleted", "asset_id", asset.ID, "deleted", deleted)
	}
	return nil
}
