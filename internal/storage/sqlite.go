package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type SQLiteStorage struct {
	sqlDocuments
}

func NewSQLiteStorage(dbPath string, logger *zap.Logger) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations("sqlite", dbPath, "sqlite"); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("Opened SQLite database", zap.String("path", dbPath))

	return &SQLiteStorage{sqlDocuments{
		db:        db,
		loadQuery: `SELECT body FROM ledger_documents WHERE name = ?`,
		saveQuery: `
			INSERT INTO ledger_documents (name, body, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT (name) DO UPDATE
			SET body = excluded.body, updated_at = excluded.updated_at`,
	}}, nil
}
