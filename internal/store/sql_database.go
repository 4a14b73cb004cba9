// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"

	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/migrations"
)

// DB represents the primary database wrapper used by the application.
//
// It embeds *sql.DB to expose the standard database/sql API while extending
// it with infrastructure-specific dependencies such as:
//
//   - ErrorClassificator: classifies low-level database errors as
//     retryable or not.
//   - logger.Logger: used for structured logging of database operations.
//
// This struct acts as the root dependency for repository layers and
// migration execution.
type DB struct {
	// DB is the underlying SQL connection pool.
	// It is embedded to allow direct access to database/sql methods.
	*sql.DB

	// errorClassificator classifies database-specific errors as
	// [Retryable] or [NonRetryable]. It is set for PostgreSQL connections
	// only; no repository method in this package consults it.
	errorClassificator ErrorClassificator

	// logger is used for structured logging of database-related events,
	// failures, and diagnostic information.
	logger *logger.Logger
}

// Migrate executes all pending database schema migrations.
//
// It delegates migration execution to the migrations package,
// applying all unapplied migration files in order.
//
// The method should typically be called during application startup
// to ensure the database schema is in sync with the expected version.
//
// Returns:
//   - nil if all migrations were applied successfully.
//   - an error if migration execution fails at any stage.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB)
}
