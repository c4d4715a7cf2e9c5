package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/transactional/dam-service/internal/domain/models"
	"github.com/transactional/dam-service/internal/domain/repositories"
)

// PostgresAssetResourceRepository implements the AssetResourceRepository
// interface. Association rows have composite identity, so adds upsert with
// ON CONFLICT DO NOTHING and deletes report the rows actually removed.
type PostgresAssetResourceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewAssetResourceRepository creates a new asset resource repository
func NewAssetResourceRepository(config *RepositoryConfig) repositories.AssetResourceRepository {
	return newAssetResourceRepository(config)
}

func newAssetResourceRepository(config *RepositoryConfig) *PostgresAssetResourceRepository {
	return &PostgresAssetResourceRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// ListForAsset loads all four association sets of one asset.
func (r *PostgresAssetResourceRepository) ListForAsset(ctx context.Context, assetID int64) (*models.AssetResources, error) {
	locationIDs, err := r.listIDs(ctx, r.tables.AssetLocations, "location_id", assetID)
	if err != nil {
		return nil, err
	}
	businessIDs, err := r.listIDs(ctx, r.tables.AssetBusinesses, "business_id", assetID)
	if err != nil {
		return nil, err
	}
	excludedIDs, err := r.listIDs(ctx, r.tables.AssetExcludedLocations, "excluded_location_id", assetID)
	if err != nil {
		return nil, err
	}
	groupIDs, err := r.listIDs(ctx, r.tables.AssetLocationGroups, "location_group_id", assetID)
	if err != nil {
		return nil, err
	}

	resources := &models.AssetResources{}
	for _, id := range locationIDs {
		resources.Locations = append(resources.Locations, models.AssetLocation{AssetID: assetID, LocationID: id})
	}
	for _, id := range businessIDs {
		resources.Businesses = append(resources.Businesses, models.AssetBusiness{AssetID: assetID, BusinessID: id})
	}
	for _, id := range excludedIDs {
		resources.ExcludedLocations = append(resources.ExcludedLocations, models.AssetExcludedLocation{AssetID: assetID, ExcludedLocationID: id})
	}
	for _, id := range groupIDs {
		resources.LocationGroups = append(resources.LocationGroups, models.AssetLocationGroup{AssetID: assetID, LocationGroupID: id})
	}

	return resources, nil
}

func (r *PostgresAssetResourceRepository) AddLocations(ctx context.Context, assetID int64, locationIDs []int64) error {
	return r.add(ctx, r.tables.AssetLocations, "location_id", assetID, locationIDs)
}

func (r *PostgresAssetResourceRepository) DeleteLocations(ctx context.Context, assetID int64, locationIDs []int64) (int64, error) {
	return r.delete(ctx, r.tables.AssetLocations, "location_id", assetID, locationIDs)
}

func (r *PostgresAssetResourceRepository) AddBusinesses(ctx context.Context, assetID int64, businessIDs []int64) error {
	return r.add(ctx, r.tables.AssetBusinesses, "business_id", assetID, businessIDs)
}

func (r *PostgresAssetResourceRepository) DeleteBusinesses(ctx context.Context, assetID int64, businessIDs []int64) (int64, error) {
	return r.delete(ctx, r.tables.AssetBusinesses, "business_id", assetID, businessIDs)
}

func (r *PostgresAssetResourceRepository) AddExcludedLocations(ctx context.Context, assetID int64, locationIDs []int64) error {
	return r.add(ctx, r.tables.AssetExcludedLocations, "excluded_location_id", assetID, locationIDs)
}

func (r *PostgresAssetResourceRepository) DeleteExcludedLocations(ctx context.Context, assetID int64, locationIDs []int64) (int64, error) {
	return r.delete(ctx, r.tables.AssetExcludedLocations, "excluded_location_id", assetID, locationIDs)
}

func (r *PostgresAssetResourceRepository) AddLocationGroups(ctx context.Context, assetID int64, groupIDs []int64) error {
	return r.add(ctx, r.tables.AssetLocationGroups, "location_group_id", assetID, groupIDs)
}

func (r *PostgresAssetResourceRepository) DeleteLocationGroups(ctx context.Context, assetID int64, groupIDs []int64) (int64, error) {
	return r.delete(ctx, r.tables.AssetLocationGroups, "location_group_id", assetID, groupIDs)
}

func (r *PostgresAssetResourceRepository) listIDs(ctx context.Context, table, column string, assetID int64) ([]int64, error) {
	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE asset_id = $1
		ORDER BY %s
	`, column, table, column)

	rows, err := q.Query(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", column, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", column, err)
	}

	return ids, nil
}

func (r *PostgresAssetResourceRepository) add(ctx context.Context, table, column string, assetID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		INSERT INTO %s (asset_id, %s)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, table, column)

	if _, err := q.Exec(ctx, query, assetID, ids); err != nil {
		return fmt.Errorf("add %s: %w", column, err)
	}

	return nil
}

func (r *PostgresAssetResourceRepository) delete(ctx context.Context, table, column string, assetID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE asset_id = $1 AND %s = ANY($2)
	`, table, column)

	result, err := q.Exec(ctx, query, assetID, ids)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", column, err)
	}

	return result.RowsAffected(), nil
}
