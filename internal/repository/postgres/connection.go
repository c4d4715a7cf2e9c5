package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/transactional/dam-service/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Assets                 string
	Folders                string
	AssetLocations         string
	AssetBusinesses        string
	AssetExcludedLocations string
	AssetLocationGroups    string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Assets:                 fmt.Sprintf("%sassets", prefix),
		Folders:                fmt.Sprintf("%sfolders", prefix),
		AssetLocations:         fmt.Sprintf("%sasset_locations", prefix),
		AssetBusinesses:        fmt.Sprintf("%sasset_businesses", prefix),
		AssetExcludedLocations: fmt.Sprintf("%sasset_excluded_locations", prefix),
		AssetLocationGroups:    fmt.Sprintf("%sasset_location_groups", prefix),
	}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// PgBouncer in transaction pooling mode (port 6543) does not support
// prepared statements. When that port is detected and the user has not
// overridden default_query_exec_mode in the connection string, the pool
// falls back to QueryExecModeCacheDescribe, which caches statement
// descriptions instead of prepared statements.
//
// The fmt.Sprintf interpolation of table prefixes (dev_, test_, prod_)
// happens before the SQL reaches the database, so each environment gets
// its own statements and the prefix never becomes a bind parameter.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
// This enables repositories to automatically participate in transactions when they exist.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
