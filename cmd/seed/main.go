package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/transactional/dam-service/internal/config"
	"github.com/transactional/dam-service/internal/domain/models"
	"github.com/transactional/dam-service/internal/repository/postgres"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed catalog data")
	clearData := flag.Bool("clear-data", false, "Clear all assets and folders (keep schema)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("Preparing database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		return
	}

	if *clearData {
		log.Println("Clearing existing assets and folders...")
		if err := clearCatalogData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("Data cleared")
		return
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}

	log.Println("Seeding sample catalog data...")
	if err := seedCatalog(ctx, repoConfig); err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	log.Println("Seeding complete")
}

func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	createFolders := `
		CREATE TABLE IF NOT EXISTS ` + tables.Folders + ` (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			date_created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			date_updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			status TEXT NOT NULL,
			type TEXT NOT NULL,
			author_id BIGINT NOT NULL
		)
	`
	if _, err := pool.Exec(ctx, createFolders); err != nil {
		return err
	}

	createAssets := `
		CREATE TABLE IF NOT EXISTS ` + tables.Assets + ` (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			date_created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			date_updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			status TEXT NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ,
			type TEXT NOT NULL,
			author_id BIGINT NOT NULL,
			folder_id BIGINT NOT NULL REFERENCES ` + tables.Folders + `(id),
			sales_partner_id BIGINT NOT NULL,
			usage_count INTEGER NOT NULL DEFAULT 0,
			template_id BIGINT NOT NULL
		)
	`
	if _, err := pool.Exec(ctx, createAssets); err != nil {
		return err
	}

	associations := []struct {
		table  string
		column string
	}{
		{tables.AssetLocations, "location_id"},
		{tables.AssetBusinesses, "business_id"},
		{tables.AssetExcludedLocations, "excluded_location_id"},
		{tables.AssetLocationGroups, "location_group_id"},
	}
	for _, a := range associations {
		createAssociation := `
			CREATE TABLE IF NOT EXISTS ` + a.table + ` (
				asset_id BIGINT NOT NULL REFERENCES ` + tables.Assets + `(id) ON DELETE CASCADE,
				` + a.column + ` BIGINT NOT NULL,
				PRIMARY KEY (asset_id, ` + a.column + `)
			)
		`
		if _, err := pool.Exec(ctx, createAssociation); err != nil {
			return err
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `assets_sales_partner ON ` + tables.Assets + `(sales_partner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `assets_folder ON ` + tables.Assets + `(folder_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `assets_type_status ON ` + tables.Assets + `(type, status)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `assets_template ON ` + tables.Assets + `(template_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `assets_search ON ` + tables.Assets +
			` USING GIN (to_tsvector('simple', name || ' ' || coalesce(description, '')))`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `asset_locations_location ON ` + tables.AssetLocations + `(location_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `asset_businesses_business ON ` + tables.AssetBusinesses + `(business_id)`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `asset_location_groups_group ON ` + tables.AssetLocationGroups + `(location_group_id)`,
	}
	for _, index := range indexes {
		if _, err := pool.Exec(ctx, index); err != nil {
			return err
		}
	}

	return nil
}

func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.AssetLocations,
		tables.AssetBusinesses,
		tables.AssetExcludedLocations,
		tables.AssetLocationGroups,
		tables.Assets,
		tables.Folders,
	}

	for _, table := range tableNames {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
		log.Printf("  Dropped %s", table)
	}

	return nil
}

func clearCatalogData(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	// Association rows cascade with their assets.
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Assets); err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, "DELETE FROM "+tables.Folders); err != nil {
		return err
	}
	return nil
}

func seedCatalog(ctx context.Context, repoConfig *postgres.RepositoryConfig) error {
	folderRepo := postgres.NewFolderRepository(repoConfig)
	assetRepo := postgres.NewAssetRepository(repoConfig)
	resourceRepo := postgres.NewAssetResourceRepository(repoConfig)

	folder := &models.Folder{
		Name:        "Summer campaign",
		Description: "Social post templates for the summer campaign",
		Status:      models.FolderVisible,
		Type:        models.AssetTypeSocialPostTemplate,
		AuthorID:    1,
	}
	if err := folderRepo.Create(ctx, folder); err != nil {
		return err
	}

	assets := []models.Asset{
		{
			Name:           "Beach opening post",
			Description:    "Announcement template for beach locations",
			Status:         models.AssetVisible,
			StartDate:      time.Now(),
			Type:           models.AssetTypeSocialPostTemplate,
			AuthorID:       1,
			FolderID:       folder.ID,
			SalesPartnerID: 100,
			TemplateID:     9001,
		},
		{
			Name:           "Happy hour post",
			Status:         models.AssetHidden,
			StartDate:      time.Now().AddDate(0, 0, 7),
			Type:           models.AssetTypeSocialPostTemplate,
			AuthorID:       1,
			FolderID:       folder.ID,
			SalesPartnerID: 100,
			TemplateID:     9002,
		},
	}

	for i := range assets {
		if err := assetRepo.Create(ctx, &assets[i]); err != nil {
			return err
		}
	}

	if err := resourceRepo.AddLocations(ctx, assets[0].ID, []int64{11, 12}); err != nil {
		return err
	}
	if err := resourceRepo.AddBusinesses(ctx, assets[1].ID, []int64{21}); err != nil {
		return err
	}

	return nil
}
