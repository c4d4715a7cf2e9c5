package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/domain/models"
	"github.com/transactional/dam-service/internal/domain/repositories"
	"github.com/transactional/dam-service/internal/pagination"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const folderColumns = "f.id, f.name, f.description, f.date_created, f.date_updated, f.status, f.type, f.author_id"

func scanFolder(row rowScanner, folder *models.Folder) error {
	return row.Scan(
		&folder.ID,
		&folder.Name,
		&folder.Description,
		&folder.DateCreated,
		&folder.DateUpdated,
		&folder.Status,
		&folder.Type,
		&folder.AuthorID,
	)
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, date_created, date_updated, status, type, author_id)
		VALUES ($1, $2, now(), now(), $3, $4, $5)
		RETURNING id, date_created, date_updated
	`, r.tables.Folders)

	err := q.QueryRow(ctx, query,
		folder.Name,
		folder.Description,
		folder.Status,
		folder.Type,
		folder.AuthorID,
	).Scan(&folder.ID, &folder.DateCreated, &folder.DateUpdated)

	if err != nil {
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetNonRemoved retrieves a non-removed folder with its non-removed assets.
func (r *PostgresFolderRepository) GetNonRemoved(ctx context.Context, id int64) (*models.Folder, error) {
	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s f
		WHERE f.id = $1 AND f.status != 'REMOVED'
	`, folderColumns, r.tables.Folders)

	var folder models.Folder
	if err := scanFolder(q.QueryRow(ctx, query, id), &folder); err != nil {
		if isPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Kind: "folder", ID: id}
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	assets, err := r.listFolderAssets(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	folder.Assets = assets

	return &folder, nil
}

// Update updates a folder's mutable fields.
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, status = $3, date_updated = now()
		WHERE id = $4
	`, r.tables.Folders)

	result, err := q.Exec(ctx, query,
		folder.Name,
		folder.Description,
		folder.Status,
		folder.ID,
	)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: "folder", ID: folder.ID}
	}

	return nil
}

// FindByNameAndAuthor finds a non-removed folder by exact name and author.
// Returns nil without error when no folder matches.
func (r *PostgresFolderRepository) FindByNameAndAuthor(ctx context.Context, name string, authorID int64) (*models.Folder, error) {
	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s f
		WHERE f.name = $1 AND f.author_id = $2 AND f.status != 'REMOVED'
		ORDER BY f.id
		LIMIT 1
	`, folderColumns, r.tables.Folders)

	var folder models.Folder
	if err := scanFolder(q.QueryRow(ctx, query, name, authorID), &folder); err != nil {
		if isPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find folder by name: %w", err)
	}

	return &folder, nil
}

// ListByAuthorOrSalesPartner lists folders of one type that the user
// authored or that hold a non-removed asset of the tenant.
func (r *PostgresFolderRepository) ListByAuthorOrSalesPartner(ctx context.Context, folderType models.AssetType, statuses []models.FolderStatus, userID, salesPartnerID int64) ([]models.Folder, error) {
	b := &argList{}
	cond := fmt.Sprintf(
		"f.type = %s AND f.status = ANY(%s) AND (f.author_id = %s OR EXISTS (SELECT 1 FROM %s a WHERE a.folder_id = f.id AND a.status != 'REMOVED' AND a.sales_partner_id = %s))",
		b.bind(string(folderType)),
		b.bind(folderStatusStrings(r.statusesOrNonRemoved(statuses))),
		b.bind(userID),
		r.tables.Assets,
		b.bind(salesPartnerID),
	)
	return r.listFolders(ctx, cond, b)
}

// ListByAuthorOrResources lists folders the user authored plus folders
// holding an asset in one of the given statuses reachable through the
// user's resources.
func (r *PostgresFolderRepository) ListByAuthorOrResources(ctx context.Context, folderType models.AssetType, statuses []models.FolderStatus, assetStatuses []models.AssetStatus, userID int64, res models.ApplicableManagedResources) ([]models.Folder, error) {
	b := &argList{}
	reachable := r.assetExists(b, assetStatuses, res)
	cond := fmt.Sprintf(
		"f.type = %s AND f.status = ANY(%s) AND (f.author_id = %s OR %s)",
		b.bind(string(folderType)),
		b.bind(folderStatusStrings(r.statusesOrNonRemoved(statuses))),
		b.bind(userID),
		reachable,
	)
	return r.listFolders(ctx, cond, b)
}

// ListByAssetStatus lists folders of one type holding an asset in one of
// the given statuses within the resource scope.
func (r *PostgresFolderRepository) ListByAssetStatus(ctx context.Context, folderType models.AssetType, statuses []models.FolderStatus, assetStatuses []models.AssetStatus, res models.ApplicableManagedResources) ([]models.Folder, error) {
	b := &argList{}
	cond := fmt.Sprintf(
		"f.type = %s AND f.status = ANY(%s) AND %s",
		b.bind(string(folderType)),
		b.bind(folderStatusStrings(r.statusesOrNonRemoved(statuses))),
		r.assetExists(b, assetStatuses, res),
	)
	return r.listFolders(ctx, cond, b)
}

// ListByResources pages non-removed folders holding a non-removed asset of
// the tenant linked to one of the given locations, businesses or groups.
func (r *PostgresFolderRepository) ListByResources(ctx context.Context, locationIDs, businessIDs, locationGroupIDs []int64, salesPartnerID int64, page pagination.Page) (*repositories.FolderPage, error) {
	q := GetExecutor(ctx, r.pool)

	b := &argList{}
	cond := fmt.Sprintf(`f.status != 'REMOVED' AND EXISTS (
			SELECT 1
			FROM %s a
			LEFT JOIN %s al ON al.asset_id = a.id
			LEFT JOIN %s ab ON ab.asset_id = a.id
			LEFT JOIN %s alg ON alg.asset_id = a.id
			WHERE a.folder_id = f.id AND a.status != 'REMOVED' AND a.sales_partner_id = %s
			AND (al.location_id = ANY(%s) OR ab.business_id = ANY(%s) OR alg.location_group_id = ANY(%s))
		)`,
		r.tables.Assets,
		r.tables.AssetLocations,
		r.tables.AssetBusinesses,
		r.tables.AssetLocationGroups,
		b.bind(salesPartnerID),
		b.bind(idArray(locationIDs)),
		b.bind(idArray(businessIDs)),
		b.bind(idArray(locationGroupIDs)),
	)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s f WHERE %s", r.tables.Folders, cond)

	var total int64
	if err := q.QueryRow(ctx, countQuery, b.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count folders: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s f
		WHERE %s
		ORDER BY f.date_created DESC, f.id DESC
		LIMIT %s OFFSET %s
	`, folderColumns, r.tables.Folders, cond, b.bind(page.Size), b.bind(page.Number*page.Size))

	folders, err := r.queryFolders(ctx, query, b.args)
	if err != nil {
		return nil, err
	}

	return &repositories.FolderPage{Folders: folders, Total: total, Page: page}, nil
}

// assetExists builds an EXISTS predicate matching folders that hold an
// asset in one of the given statuses within the resource scope.
func (r *PostgresFolderRepository) assetExists(b *argList, assetStatuses []models.AssetStatus, res models.ApplicableManagedResources) string {
	if len(assetStatuses) == 0 {
		assetStatuses = models.NonRemovedAssetStatuses
	}

	statusCond := fmt.Sprintf("a.folder_id = f.id AND a.status = ANY(%s)", b.bind(assetStatusStrings(assetStatuses)))
	joins, scopeCond := assetResourceScope(b, r.tables, res)

	return fmt.Sprintf("EXISTS (SELECT 1 FROM %s a%s WHERE %s AND %s)",
		r.tables.Assets, joins, statusCond, scopeCond)
}

func (r *PostgresFolderRepository) statusesOrNonRemoved(statuses []models.FolderStatus) []models.FolderStatus {
	if len(statuses) == 0 {
		return models.NonRemovedFolderStatuses
	}
	return statuses
}

func (r *PostgresFolderRepository) listFolders(ctx context.Context, cond string, b *argList) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s f
		WHERE %s
		ORDER BY f.date_created DESC, f.id DESC
	`, folderColumns, r.tables.Folders, cond)

	return r.queryFolders(ctx, query, b.args)
}

func (r *PostgresFolderRepository) queryFolders(ctx context.Context, query string, args []interface{}) ([]models.Folder, error) {
	q := GetExecutor(ctx, r.pool)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		if err := scanFolder(rows, &folder); err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

func (r *PostgresFolderRepository) listFolderAssets(ctx context.Context, folderID int64) ([]models.Asset, error) {
	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s a
		WHERE a.folder_id = $1 AND a.status != 'REMOVED'
		ORDER BY a.date_created DESC, a.id DESC
	`, assetColumns, r.tables.Assets)

	rows, err := q.Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("list folder assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var asset models.Asset
		if err := scanAsset(rows, &asset); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder assets: %w", err)
	}

	return assets, nil
}
