package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// sqlDocuments stores documents as rows of the ledger_documents table.
type sqlDocuments struct {
	db        *sql.DB
	loadQuery string
	saveQuery string
}

func (s *sqlDocuments) Load(ctx context.Context, name string) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx, s.loadQuery, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error loading document %s: %w", name, err)
	}
	return []byte(body), nil
}

func (s *sqlDocuments) Save(ctx context.Context, name string, body []byte) error {
	if _, err := s.db.ExecContext(ctx, s.saveQuery, name, string(body)); err != nil {
		return fmt.Errorf("error saving document %s: %w", name, err)
	}
	return nil
}

func (s *sqlDocuments) Close() error {
	return s.db.Close()
}

type PostgresStorage struct {
	sqlDocuments
}

func NewPostgresStorage(config DatabaseConfig, logger *zap.Logger) (*PostgresStorage, error) {
	connStr := config.DSN()

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if err := runMigrations("postgres", connStr, "postgres"); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}
	logger.Info("Connected to PostgreSQL",
		zap.String("host", config.Host),
		zap.Int("port", config.Port),
		zap.String("dbname", config.DBName))

	return &PostgresStorage{sqlDocuments{
		db:        db,
		loadQuery: `SELECT body FROM ledger_documents WHERE name = $1`,
		saveQuery: `
			INSERT INTO ledger_documents (name, body, updated_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (name) DO UPDATE
			SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
	}}, nil
}
