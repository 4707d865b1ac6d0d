package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/deppfellow/visitor-function/internal/config"
	"github.com/deppfellow/visitor-function/internal/model"
	_ "modernc.org/sqlite"
)

// SQLiteRepository writes records to a single-file SQLite database.
//
// The connection string is the database path (":memory:" works for tests);
// the table is named after the container.
type SQLiteRepository struct {
	db    *sql.DB
	table string
}

func NewSQLiteRepository(ctx context.Context, store config.StoreConfig) (*SQLiteRepository, error) {
	path := store.ConnectionString()
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is empty: set %s", store.Connection)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	table := quoteSQLiteIdent(store.Container)

	if store.CreateIfNotExists {
		createTable := fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				document TEXT NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`, table)
		if _, err := db.ExecContext(ctx, createTable); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}

	return &SQLiteRepository{db: db, table: table}, nil
}

func quoteSQLiteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (r *SQLiteRepository) Save(ctx context.Context, visitor model.Visitor) error {
	document, err := json.Marshal(visitor)
	if err != nil {
		return fmt.Errorf("encode visitor document: %w", err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (id, name, document) VALUES (?, ?, ?)`, r.table)
	if _, err := r.db.ExecContext(ctx, insert, visitor.ID, visitor.Name, string(document)); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", model.ErrDuplicateID, visitor.ID)
		}
		return fmt.Errorf("insert visitor %s: %w", visitor.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Close(context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) Driver() string {
	return config.DriverSQLite
}
