package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/deppfellow/visitor-function/internal/database"
	"github.com/deppfellow/visitor-function/internal/model"
	"github.com/deppfellow/visitor-function/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository stores each record as a row plus its JSONB document.
// The table is created by the tern migrations in internal/database.
type PostgresRepository struct {
	db         *database.Database
	insertStmt string
}

func NewPostgresRepository(db *database.Database, store config.StoreConfig) *PostgresRepository {
	return &PostgresRepository{
		db:         db,
		insertStmt: insertVisitorSQL(store),
	}
}

func insertVisitorSQL(store config.StoreConfig) string {
	return fmt.Sprintf(
		`INSERT INTO %s (id, name, document) VALUES (@id, @name, @document)`,
		database.TableIdentifier(store),
	)
}

func (r *PostgresRepository) Save(ctx context.Context, visitor model.Visitor) error {
	document, err := json.Marshal(visitor)
	if err != nil {
		return fmt.Errorf("encode visitor document: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, r.insertStmt, pgx.NamedArgs{
		"id":       visitor.ID,
		"name":     visitor.Name,
		"document": document,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			return fmt.Errorf("insert visitor %s: %w", visitor.ID, sqlerr.ConvertPgError(pgErr))
		}
		return fmt.Errorf("insert visitor %s: %w", visitor.ID, err)
	}
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Close is a no-op; the pool belongs to the server.
func (r *PostgresRepository) Close(context.Context) error {
	return nil
}

func (r *PostgresRepository) Driver() string {
	return config.DriverPostgres
}
