package database

import (
	"context"
	"embed"
	"fmt"
	"hash/fnv"
	"io/fs"
	"strings"

	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/jackc/pgx/v5"
	tern "github.com/jackc/tern/v2/migrate"
	"github.com/rs/zerolog"
)

// Migrations are rendered as templates: {{.schema}} and {{.table}} are the
// sanitized identifiers of the configured database and container.
//
//go:embed migrations/*.sql
var migrations embed.FS

// versionTablePrefix starts every migration version table name.
const versionTablePrefix = "visitor_schema_version_"

// VersionTable returns the tern version table for the store container.
//
// Each database/container pair gets its own table so that pointing the
// store at a new container migrates it from scratch. The name is a plain
// lowercase identifier (tern looks it up unquoted) ending in a hash of the
// raw names, and stays within the 63 byte postgres limit.
func VersionTable(store config.StoreConfig) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(store.Database + "." + store.Container))
	suffix := fmt.Sprintf("_%08x", h.Sum32())

	var b strings.Builder
	for _, r := range strings.ToLower(store.Container) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}

	name := b.String()
	if limit := 63 - len(versionTablePrefix) - len(suffix); len(name) > limit {
		name = name[:limit]
	}
	return versionTablePrefix + name + suffix
}

// TableIdentifier returns the sanitized "schema"."table" for the store container.
func TableIdentifier(store config.StoreConfig) string {
	return pgx.Identifier{store.Database, store.Container}.Sanitize()
}

// Migrate creates the visitor container (schema + table) with jackc/tern.
//
// It is idempotent: the version table is consulted and nothing is applied
// when the schema is already current.
func Migrate(ctx context.Context, logger *zerolog.Logger, cfg *config.Config) error {
	dsn := cfg.Store.ConnectionString()
	if dsn == "" {
		return fmt.Errorf("%w: set %s", ErrMissingDSN, cfg.Store.Connection)
	}

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	m, err := tern.NewMigrator(ctx, conn, VersionTable(cfg.Store))
	if err != nil {
		return fmt.Errorf("constructing database migrator: %w", err)
	}

	m.Data = map[string]any{
		"schema": pgx.Identifier{cfg.Store.Database}.Sanitize(),
		"table":  TableIdentifier(cfg.Store),
	}

	subtree, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("retrieving database migrations subtree: %w", err)
	}

	if err := m.LoadMigrations(subtree); err != nil {
		return fmt.Errorf("loading database migrations: %w", err)
	}

	from, err := m.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("retrieving current database migration version: %w", err)
	}

	if err := m.Migrate(ctx); err != nil {
		return err
	}

	if from == int32(len(m.Migrations)) {
		logger.Info().Msgf("database schema up to date, version %d", len(m.Migrations))
	} else {
		logger.Info().Msgf("migrated database schema, from %d to %d", from, len(m.Migrations))
	}
	return nil
}
