// Package store provides data-access abstractions and repository
// implementations for persisting and querying application domain objects:
// user accounts and the append-only, idx-sequenced record store.
//
// It defines repository interfaces, concrete PostgreSQL- and SQLite-backed
// implementations, query builders, error classification, and sentinel
// errors used across the storage layer.
package store

import (
	"context"
	"database/sql"

	"github.com/hostlog/hostlog/models"
)

// LocalRecordRepository is the client-side, SQLite-backed contract for the
// local record store: the per-device append-only log plus a copy of every
// record pulled from other hosts during sync.
type LocalRecordRepository interface {
	// Append assigns the next contiguous idx for (device host, tag), stamps
	// a fresh time-ordered record id and the current timestamp, persists the
	// finished record atomically, and returns it. Concurrent appends to the
	// same tag are serialized internally.
	Append(ctx context.Context, tag models.Tag, version string, data models.EncryptedData) (models.Record, error)

	// InsertRemote stores a record that originated on another host/device,
	// typically fetched during a sync pull. It is idempotent by record id:
	// re-inserting an already present id returns inserted=false with no
	// modification. If a *different* record already occupies the
	// (Host, Tag, Idx) slot, [ErrIndexConflict] is returned.
	InsertRemote(ctx context.Context, r models.Record) (inserted bool, err error)

	// Next returns up to limit records for (host, tag) with Idx >= start,
	// in ascending idx order. The returned run is contiguous; it never
	// skips an index. Empty when no record exists at or after start.
	Next(ctx context.Context, host models.HostId, tag models.Tag, start uint64, limit int) ([]models.Record, error)

	// Status returns the local head idx for every (host, tag) stream known
	// to this store.
	Status(ctx context.Context) (models.RecordStatus, error)

	// Tail returns the last record this device authored under tag, or nil
	// when the device has never written to that stream.
	Tail(ctx context.Context, tag models.Tag) (*models.Record, error)

	// Wipe deletes every record and resets all stream state. Used to
	// implement the DELETE store operation locally. The device identity
	// survives.
	Wipe(ctx context.Context) error
}

// DeviceRepository manages the single device-identity row of the local
// store: the stable host id generated on first run, plus a locally cached
// copy of the account's encryption salt.
type DeviceRepository interface {
	// EnsureDevice returns the persisted device identity, generating and
	// storing a fresh one if this is the first run.
	EnsureDevice(ctx context.Context) (models.Device, error)

	// SaveEncryptionSalt caches the account's encryption salt alongside the
	// device identity after a successful registration or login.
	SaveEncryptionSalt(ctx context.Context, salt []byte) error
}

// RecordRepository is the server-side, PostgreSQL-backed contract for the
// multi-user, multi-host record store.
type RecordRepository interface {
	// AddRecords atomically inserts a batch of records belonging to userID
	// and upserts the per-(host,tag) index cache in the same transaction.
	// The insert is idempotent by record id; a record whose (host, tag,
	// idx) slot already holds a *different* id yields [ErrIndexConflict]
	// and aborts the whole batch.
	AddRecords(ctx context.Context, userID int64, records []models.Record) error

	// NextRecords returns up to limit records for (host, tag) owned by
	// userID with Idx >= start, in ascending idx order.
	NextRecords(ctx context.Context, userID int64, host models.HostId, tag models.Tag, start uint64, limit int) ([]models.Record, error)

	// Status returns the server-known head idx for every (host, tag) stream
	// belonging to userID, read from the index cache.
	Status(ctx context.Context, userID int64) (models.RecordStatus, error)

	// StatusScan computes the same mapping as Status by a full GROUP BY
	// scan of the record table. Used by the index-cache audit.
	StatusScan(ctx context.Context, userID int64) (models.RecordStatus, error)

	// Wipe deletes every record and index-cache entry belonging to userID.
	Wipe(ctx context.Context, userID int64) error
}

// IndexCache is the server-side (user, host, tag) -> max(idx) cache that
// backs [RecordRepository.Status] without scanning the full record table.
type IndexCache interface {
	// Upsert folds a batch of (host, tag, idx) observations into the cache,
	// storing max(existing, observed) per key. Must be called within the
	// same transaction as the record insert it accompanies.
	Upsert(ctx context.Context, tx *sql.Tx, userID int64, heads models.RecordStatus) error

	// Rebuild recomputes the cache for userID from a full scan of the
	// record table and overwrites the cached row of every stream that has
	// records. Cache rows with no backing records are not removed. An
	// operator-invoked maintenance action; never triggered automatically.
	Rebuild(ctx context.Context, userID int64) error

	// AuditStatus compares the cached status against a live scan of the
	// record table for userID and returns the set of keys where they
	// disagree. An empty, non-nil map means the cache is consistent.
	AuditStatus(ctx context.Context, userID int64) (map[models.Key]struct{}, error)

	// Users lists every user id with at least one cache entry, so the audit
	// worker can walk the whole tenant set.
	Users(ctx context.Context) ([]int64, error)
}

// UserRepository defines the database access contract for user accounts.
type UserRepository interface {
	// CreateUser persists a new user record and returns the created entity
	// with server-assigned fields (e.g. UserID) populated.
	// Returns [ErrLoginAlreadyExists] if the login is already taken.
	CreateUser(ctx context.Context, user models.User) (models.User, error)

	// FindUserByLogin retrieves a user record matching the Login field
	// of the provided user model.
	// Returns [ErrNoUserWasFound] if no matching record exists.
	FindUserByLogin(ctx context.Context, user models.User) (models.User, error)
}

// ErrorClassificator defines a strategy for categorizing errors produced
// by persistence layers (e.g. PostgreSQL driver errors) into well-known
// application-level classifications.
//
// Implementations inspect the underlying driver error (error codes, types)
// and return a corresponding [ErrorClassification] value that higher layers
// can switch on without coupling to a specific database driver.
type ErrorClassificator interface {
	// Classify maps an error into a predefined [ErrorClassification] enum.
	// If the error is not recognized, the implementation should return
	// a generic/unknown classification rather than panicking.
	Classify(err error) ErrorClassification
}
