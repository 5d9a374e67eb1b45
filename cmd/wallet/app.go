package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/xaenox/wallet-assistant/internal/ledger"
	"github.com/xaenox/wallet-assistant/internal/llm"
	"github.com/xaenox/wallet-assistant/internal/storage"
	"github.com/xaenox/wallet-assistant/pkg/config"
	"go.uber.org/zap"
)

const defaultConfigPath = "config.yaml"

var configPath = flag.String("config", defaultConfigPath, "Path to the YAML configuration file")

// app holds what every subcommand needs: configuration, logger and the
// opened ledger.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      storage.Storage
	categories *ledger.CategoryRepository
	expenses   *ledger.ExpenseRepository
}

// loadConfig reads the configuration. The default file may be absent, an
// explicitly named one may not.
func loadConfig() (*config.Config, error) {
	path := *configPath
	if path == defaultConfigPath {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	return config.LoadConfig(path)
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	store, err := openStorage(cfg.Storage, logger)
	if err != nil {
		logger.Sync()
		return nil, err
	}
	return &app{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		categories: ledger.NewCategoryRepository(store, logger),
		expenses:   ledger.NewExpenseRepository(store, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("Failed to close storage", zap.Error(err))
	}
	a.logger.Sync()
}

func openStorage(cfg config.StorageConfig, logger *zap.Logger) (storage.Storage, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		logger.Info("Using in-memory storage")
		return storage.NewMemoryStorage(), nil
	case config.BackendFile:
		logger.Info("Using file storage", zap.String("dir", cfg.DataDir))
		return storage.NewFileStorage(cfg.DataDir), nil
	case config.BackendSQLite:
		logger.Info("Using SQLite storage", zap.String("path", cfg.SQLitePath))
		s, err := storage.NewSQLiteStorage(cfg.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		return s, nil
	case config.BackendPostgres:
		logger.Info("Using PostgreSQL storage", zap.String("host", cfg.Database.Host))
		s, err := storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

func newCompleter(ctx context.Context, cfg config.OpenAIConfig, logger *zap.Logger) (llm.Completer, error) {
	if cfg.Provider == config.ProviderGemini {
		c, err := llm.NewGeminiClient(ctx, cfg.APIKey, cfg.Model, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	c, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		Azure:    cfg.Provider == config.ProviderAzure,
		APIKey:   cfg.APIKey,
		Endpoint: cfg.Endpoint,
		OrgID:    cfg.OrgID,
		Model:    cfg.Model,
		Timeout:  cfg.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func sampling(cfg config.OpenAIConfig) llm.Sampling {
	return llm.Sampling{
		MaxTokens:        cfg.MaxTokens,
		Temperature:      cfg.Temperature,
		TopP:             cfg.TopP,
		FrequencyPenalty: cfg.FrequencyPenalty,
		PresencePenalty:  cfg.PresencePenalty,
	}
}
