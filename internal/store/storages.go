package store

import (
	"context"
	"fmt"

	"github.com/hostlog/hostlog/internal/config"
	"github.com/hostlog/hostlog/internal/logger"
)

// Storages groups all server-side repositories into a single value that is
// passed to the service layer.
type Storages struct {
	// UserRepository persists user accounts.
	UserRepository UserRepository

	// RecordRepository persists the user-scoped record store.
	RecordRepository RecordRepository

	// IndexCache is the (user, host, tag) -> max(idx) head cache behind
	// RecordRepository.Status, exposed separately for rebuild and audit.
	IndexCache IndexCache
}

// NewStorages initialises the server storage layer: it opens the
// PostgreSQL connection from cfg.DB.DSN, runs pending schema migrations,
// and wires the repositories over the shared connection.
func NewStorages(cfg config.Storage, log *logger.Logger) (*Storages, error) {
	log.Info().Msg("creating new storages...")

	db, err := NewConnectPostgres(context.Background(), cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	cache := NewIndexCache(db, log)

	return &Storages{
		UserRepository:   NewUserRepository(db, log),
		RecordRepository: NewRecordRepository(db, cache, log),
		IndexCache:       cache,
	}, nil
}
