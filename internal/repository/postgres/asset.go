package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/transactional/dam-service/internal/domain"
	"github.com/transactional/dam-service/internal/domain/models"
	"github.com/transactional/dam-service/internal/domain/repositories"
	"github.com/transactional/dam-service/internal/pagination"
)

// PostgresAssetRepository implements the AssetRepository interface
type PostgresAssetRepository struct {
	pool      *pgxpool.Pool
	tables    *TableNames
	resources *PostgresAssetResourceRepository
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(config *RepositoryConfig) repositories.AssetRepository {
	return &PostgresAssetRepository{
		pool:      config.Pool,
		tables:    config.Tables,
		resources: newAssetResourceRepository(config),
	}
}

const assetColumns = "a.id, a.name, a.description, a.date_created, a.date_updated, a.status, a.start_date, a.end_date, a.type, a.author_id, a.folder_id, a.sales_partner_id, a.usage_count, a.template_id"

// argList collects bind parameters for dynamically assembled queries.
// bind appends a value and returns its positional placeholder.
type argList struct {
	args []interface{}
}

func (b *argList) bind(v interface{}) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

// idArray normalizes nil id slices so they bind as empty arrays, not NULL.
func idArray(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

func assetStatusStrings(statuses []models.AssetStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func folderStatusStrings(statuses []models.FolderStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

// searchTerms turns free text into a prefix-matching tsquery expression.
// Returns "" when the input contains no usable term.
func searchTerms(raw string) string {
	var terms []string
	for _, field := range strings.Fields(raw) {
		var clean strings.Builder
		for _, r := range field {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				clean.WriteRune(r)
			}
		}
		if clean.Len() > 0 {
			terms = append(terms, clean.String()+":*")
		}
	}
	return strings.Join(terms, " & ")
}

func searchPredicate(b *argList, query string) string {
	terms := searchTerms(query)
	if terms == "" {
		return ""
	}
	return fmt.Sprintf(
		"to_tsvector('simple', a.name || ' ' || coalesce(a.description, '')) @@ to_tsquery('simple', %s)",
		b.bind(terms),
	)
}

// assetResourceScope returns the joins and predicate restricting assets to
// the caller's applicable resources. With tenant-wide access this is a
// plain sales partner match; otherwise the asset must be reachable through
// a managed business, location or location group, and assets whose
// exclusion list covers every caller location are dropped.
func assetResourceScope(b *argList, tables *TableNames, res models.ApplicableManagedResources) (string, string) {
	if res.AllSalesPartnerResources {
		return "", fmt.Sprintf("a.sales_partner_id = %s", b.bind(res.SalesPartnerID))
	}

	joins := fmt.Sprintf(`
		LEFT JOIN %s al ON al.asset_id = a.id
		LEFT JOIN %s ab ON ab.asset_id = a.id
		LEFT JOIN %s alg ON alg.asset_id = a.id
		LEFT JOIN (
			SELECT asset_id, COUNT(*) AS excluded_count
			FROM %s
			WHERE excluded_location_id = ANY(%s)
			GROUP BY asset_id
		) ael ON ael.asset_id = a.id`,
		tables.AssetLocations,
		tables.AssetBusinesses,
		tables.AssetLocationGroups,
		tables.AssetExcludedLocations,
		b.bind(idArray(res.LocationIDs)),
	)

	cond := fmt.Sprintf(
		"a.sales_partner_id = %s AND (ab.business_id = ANY(%s) OR al.location_id = ANY(%s) OR alg.location_group_id = ANY(%s)) AND (ael.excluded_count IS NULL OR ael.excluded_count < %s)",
		b.bind(res.SalesPartnerID),
		b.bind(idArray(res.BusinessIDs)),
		b.bind(idArray(res.LocationIDs)),
		b.bind(idArray(res.LocationGroupIDs)),
		b.bind(len(res.LocationIDs)),
	)

	return joins, cond
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAsset(row rowScanner, asset *models.Asset) error {
	return row.Scan(
		&asset.ID,
		&asset.Name,
		&asset.Description,
		&asset.DateCreated,
		&asset.DateUpdated,
		&asset.Status,
		&asset.StartDate,
		&asset.EndDate,
		&asset.Type,
		&asset.AuthorID,
		&asset.FolderID,
		&asset.SalesPartnerID,
		&asset.UsageCount,
		&asset.TemplateID,
	)
}

// Create creates a new asset
func (r *PostgresAssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, date_created, date_updated, status, start_date, end_date, type, author_id, folder_id, sales_partner_id, usage_count, template_id)
		VALUES ($1, $2, now(), now(), $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, date_created, date_updated
	`, r.tables.Assets)

	err := q.QueryRow(ctx, query,
		asset.Name,
		asset.Description,
		asset.Status,
		asset.StartDate,
		asset.EndDate,
		asset.Type,
		asset.AuthorID,
		asset.FolderID,
		asset.SalesPartnerID,
		asset.UsageCount,
		asset.TemplateID,
	).Scan(&asset.ID, &asset.DateCreated, &asset.DateUpdated)

	if err != nil {
		return fmt.Errorf("create asset: %w", err)
	}

	return nil
}

// GetNonRemoved retrieves a non-removed asset with its association rows.
func (r *PostgresAssetRepository) GetNonRemoved(ctx context.Context, id int64) (*models.Asset, error) {
	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s a
		WHERE a.id = $1 AND a.status != 'REMOVED'
	`, assetColumns, r.tables.Assets)

	var asset models.Asset
	if err := scanAsset(q.QueryRow(ctx, query, id), &asset); err != nil {
		if isPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Kind: "asset", ID: id}
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}

	resources, err := r.resources.ListForAsset(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	asset.Locations = resources.Locations
	asset.Businesses = resources.Businesses
	asset.ExcludedLocations = resources.ExcludedLocations
	asset.LocationGroups = resources.LocationGroups

	return &asset, nil
}

// Update persists the asset's mutable core fields.
func (r *PostgresAssetRepository) Update(ctx context.Context, asset *models.Asset) error {
	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, status = $3, start_date = $4, end_date = $5, folder_id = $6, usage_count = $7, date_updated = now()
		WHERE id = $8
	`, r.tables.Assets)

	result, err := q.Exec(ctx, query,
		asset.Name,
		asset.Description,
		asset.Status,
		asset.StartDate,
		asset.EndDate,
		asset.FolderID,
		asset.UsageCount,
		asset.ID,
	)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Kind: "asset", ID: asset.ID}
	}

	return nil
}

// ListByType pages assets of one type within the caller's resource scope.
func (r *PostgresAssetRepository) ListByType(ctx context.Context, filter repositories.AssetListFilter, res models.ApplicableManagedResources, page pagination.Page) (*repositories.AssetPage, error) {
	b := &argList{}
	joins := ""
	conds := []string{fmt.Sprintf("a.type = %s", b.bind(string(filter.Type)))}

	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = models.NonRemovedAssetStatuses
	}
	conds = append(conds, fmt.Sprintf("a.status = ANY(%s)", b.bind(assetStatusStrings(statuses))))

	if len(filter.FolderIDs) > 0 {
		conds = append(conds, fmt.Sprintf("a.folder_id = ANY(%s)", b.bind(filter.FolderIDs)))
	}
	if len(filter.FolderStatuses) > 0 {
		joins += fmt.Sprintf(" JOIN %s f ON f.id = a.folder_id", r.tables.Folders)
		conds = append(conds, fmt.Sprintf("f.status = ANY(%s)", b.bind(folderStatusStrings(filter.FolderStatuses))))
	}
	if p := searchPredicate(b, filter.Query); p != "" {
		conds = append(conds, p)
	}

	scopeJoins, scopeCond := assetResourceScope(b, r.tables, res)
	joins += scopeJoins
	conds = append(conds, scopeCond)

	return r.pageAssets(ctx, joins, strings.Join(conds, " AND "), b, page)
}

// ListByFolder pages one folder's assets within the caller's resource scope.
func (r *PostgresAssetRepository) ListByFolder(ctx context.Context, folderID int64, statuses []models.AssetStatus, query string, res models.ApplicableManagedResources, page pagination.Page) (*repositories.AssetPage, error) {
	b := &argList{}
	conds := []string{fmt.Sprintf("a.folder_id = %s", b.bind(folderID))}

	if len(statuses) == 0 {
		statuses = models.NonRemovedAssetStatuses
	}
	conds = append(conds, fmt.Sprintf("a.status = ANY(%s)", b.bind(assetStatusStrings(statuses))))

	if p := searchPredicate(b, query); p != "" {
		conds = append(conds, p)
	}

	joins, scopeCond := assetResourceScope(b, r.tables, res)
	conds = append(conds, scopeCond)

	return r.pageAssets(ctx, joins, strings.Join(conds, " AND "), b, page)
}

// ListBySalesPartner pages all non-removed assets of one tenant.
func (r *PostgresAssetRepository) ListBySalesPartner(ctx context.Context, salesPartnerID int64, page pagination.Page) (*repositories.AssetPage, error) {
	b := &argList{}
	cond := fmt.Sprintf("a.sales_partner_id = %s AND a.status != 'REMOVED'", b.bind(salesPartnerID))
	return r.pageAssets(ctx, "", cond, b, page)
}

func (r *PostgresAssetRepository) pageAssets(ctx context.Context, joins, where string, b *argList, page pagination.Page) (*repositories.AssetPage, error) {
	q := GetExecutor(ctx, r.pool)

	countQuery := fmt.Sprintf("SELECT COUNT(DISTINCT a.id) FROM %s a%s WHERE %s", r.tables.Assets, joins, where)

	var total int64
	if err := q.QueryRow(ctx, countQuery, b.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count assets: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT %s
		FROM %s a%s
		WHERE %s
		ORDER BY a.date_created DESC, a.id DESC
		LIMIT %s OFFSET %s
	`, assetColumns, r.tables.Assets, joins, where, b.bind(page.Size), b.bind(page.Number*page.Size))

	rows, err := q.Query(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
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
		return nil, fmt.Errorf("iterate assets: %w", err)
	}

	return &repositories.AssetPage{Assets: assets, Total: total, Page: page}, nil
}

// CountByFolder counts all non-removed assets of a folder.
func (r *PostgresAssetRepository) CountByFolder(ctx context.Context, folderID int64) (int64, error) {
	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s a
		WHERE a.folder_id = $1 AND a.status != 'REMOVED'
	`, r.tables.Assets)

	var count int64
	if err := q.QueryRow(ctx, query, folderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count folder assets: %w", err)
	}

	return count, nil
}

// CountAccessible counts the folder's non-removed assets reachable through
// the given resources.
func (r *PostgresAssetRepository) CountAccessible(ctx context.Context, folderID int64, res models.ApplicableManagedResources) (int64, error) {
	q := GetExecutor(ctx, r.pool)

	b := &argList{}
	cond := fmt.Sprintf("a.folder_id = %s AND a.status != 'REMOVED'", b.bind(folderID))
	joins, scopeCond := assetResourceScope(b, r.tables, res)

	query := fmt.Sprintf("SELECT COUNT(DISTINCT a.id) FROM %s a%s WHERE %s AND %s",
		r.tables.Assets, joins, cond, scopeCond)

	var count int64
	if err := q.QueryRow(ctx, query, b.args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count accessible assets: %w", err)
	}

	return count, nil
}

// CountVisibleAndTotal returns the folder's visible and non-removed asset
// counts within the given resource scope.
func (r *PostgresAssetRepository) CountVisibleAndTotal(ctx context.Context, folderID int64, res models.ApplicableManagedResources) (models.AssetCounts, error) {
	q := GetExecutor(ctx, r.pool)

	b := &argList{}
	cond := fmt.Sprintf("a.folder_id = %s AND a.status != 'REMOVED'", b.bind(folderID))
	joins, scopeCond := assetResourceScope(b, r.tables, res)

	query := fmt.Sprintf(`
		SELECT
			COUNT(DISTINCT CASE WHEN a.status = 'VISIBLE' THEN a.id END),
			COUNT(DISTINCT a.id)
		FROM %s a%s
		WHERE %s AND %s
	`, r.tables.Assets, joins, cond, scopeCond)

	var counts models.AssetCounts
	if err := q.QueryRow(ctx, query, b.args...).Scan(&counts.Visible, &counts.Total); err != nil {
		return models.AssetCounts{}, fmt.Errorf("count visible assets: %w", err)
	}

	return counts, nil
}

// DistinctSalesPartnerIDs lists tenants owning at least one non-removed asset.
func (r *PostgresAssetRepository) DistinctSalesPartnerIDs(ctx context.Context) ([]int64, error) {
	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT DISTINCT sales_partner_id
		FROM %s
		WHERE status != 'REMOVED'
		ORDER BY sales_partner_id
	`, r.tables.Assets)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sales partners: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan sales partner id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales partner ids: %w", err)
	}

	return ids, nil
}

// ExistingTemplateIDs returns which of the given template ids already back
// a non-removed asset.
func (r *PostgresAssetRepository) ExistingTemplateIDs(ctx context.Context, templateIDs []int64) ([]int64, error) {
	if len(templateIDs) == 0 {
		return nil, nil
	}

	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		SELECT DISTINCT template_id
		FROM %s
		WHERE template_id = ANY($1) AND status != 'REMOVED'
	`, r.tables.Assets)

	rows, err := q.Query(ctx, query, templateIDs)
	if err != nil {
		return nil, fmt.Errorf("list existing template ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan template id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate template ids: %w", err)
	}

	return ids, nil
}

// ActivateByStartDate flips hidden assets starting on the given day to
// visible.
func (r *PostgresAssetRepository) ActivateByStartDate(ctx context.Context, day time.Time) (int64, error) {
	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = 'VISIBLE', date_updated = now()
		WHERE start_date::date = $1::date AND status = 'HIDDEN'
	`, r.tables.Assets)

	result, err := q.Exec(ctx, query, day)
	if err != nil {
		return 0, fmt.Errorf("activate assets: %w", err)
	}

	return result.RowsAffected(), nil
}

// DeactivateByEndDate flips visible assets ending on the given day to hidden.
func (r *PostgresAssetRepository) DeactivateByEndDate(ctx context.Context, day time.Time) (int64, error) {
	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = 'HIDDEN', date_updated = now()
		WHERE end_date::date = $1::date AND status = 'VISIBLE'
	`, r.tables.Assets)

	result, err := q.Exec(ctx, query, day)
	if err != nil {
		return 0, fmt.Errorf("deactivate assets: %w", err)
	}

	return result.RowsAffected(), nil
}

// RemoveByFolder soft-removes every not-yet-removed asset of a folder.
func (r *PostgresAssetRepository) RemoveByFolder(ctx context.Context, folderID int64) (int64, error) {
	q := GetExecutor(ctx, r.pool)

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = 'REMOVED', date_updated = now()
		WHERE folder_id = $1 AND status != 'REMOVED'
	`, r.tables.Assets)

	result, err := q.Exec(ctx, query, folderID)
	if err != nil {
		return 0, fmt.Errorf("remove folder assets: %w", err)
	}

	return result.RowsAffected(), nil
}
