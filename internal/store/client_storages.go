package store

import (
	"context"
	"fmt"

	"github.com/hostlog/hostlog/internal/config"
	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/models"
)

// ClientStorages groups all client-side repositories into a single value
// that can be passed around the service layer.
type ClientStorages struct {
	// Device is the persisted identity of this device.
	Device models.Device

	// DeviceRepository manages the device-identity row.
	DeviceRepository DeviceRepository

	// RecordRepository is the SQLite-backed local record store.
	RecordRepository LocalRecordRepository
}

// NewClientStorages initialises the client storage layer using the supplied
// configuration and logger. It performs the following steps:
//  1. Opens an SQLite connection to the file path specified in cfg.DB.DSN,
//     creating the database file if it does not yet exist.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Loads (or generates, on first run) the device identity.
//  4. Constructs a [ClientStorages] value wired to a fresh
//     [LocalRecordRepository] authoring records as that identity.
//
// Returns an error if the database connection cannot be established, if
// migration fails, or if the device identity cannot be loaded.
func NewClientStorages(cfg config.ClientStorage, log *logger.Logger) (*ClientStorages, error) {
	log.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(context.Background(), cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	devices := NewDeviceRepository(db, log)
	device, err := devices.EnsureDevice(context.Background())
	if err != nil {
		return nil, fmt.Errorf("device identity error: %w", err)
	}

	return &ClientStorages{
		Device:           device,
		DeviceRepository: devices,
		RecordRepository: NewLocalRecordRepository(db, device.Host, log),
	}, nil
}
