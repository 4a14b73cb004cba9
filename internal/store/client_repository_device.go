// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/models"
)

// deviceRepository is the SQLite-backed implementation of
// [DeviceRepository]. The device table holds at most one row: the identity
// generated on the device's first run.
type deviceRepository struct {
	*DB
	logger *logger.Logger
}

// NewDeviceRepository constructs a [DeviceRepository] over the provided
// SQLite connection.
func NewDeviceRepository(db *DB, logger *logger.Logger) DeviceRepository {
	return &deviceRepository{
		DB:     db,
		logger: logger,
	}
}

// EnsureDevice implements [DeviceRepository]. On first run it generates a
// fresh host id, persists it, and returns the new identity; afterwards it
// returns the stored row unchanged.
func (d *deviceRepository) EnsureDevice(ctx context.Context) (models.Device, error) {
	log := logger.FromContext(ctx)

	var hostRaw string
	var salt []byte
	var createdAt int64

	err := d.DB.QueryRowContext(ctx, localGetDevice).Scan(&hostRaw, &salt, &createdAt)
	switch {
	case err == nil:
		host, parseErr := models.ParseHostId(hostRaw)
		if parseErr != nil {
			log.Err(parseErr).
				Str("func", "deviceRepository.EnsureDevice").
				Str("host", hostRaw).
				Msg("malformed persisted host id")
			return models.Device{}, fmt.Errorf("%w: %w", ErrScanningRow, parseErr)
		}
		return models.Device{
			Host:           host,
			EncryptionSalt: salt,
			CreatedAt:      time.Unix(0, createdAt),
		}, nil

	case !errors.Is(err, sql.ErrNoRows):
		log.Err(err).
			Str("func", "deviceRepository.EnsureDevice").
			Msg("failed to read device identity")
		return models.Device{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	device := models.Device{
		Host:           models.NewHostId(),
		EncryptionSalt: []byte{},
		CreatedAt:      time.Now(),
	}

	if _, err = d.DB.ExecContext(ctx, localInsertDevice,
		device.Host.String(),
		device.EncryptionSalt,
		device.CreatedAt.UnixNano(),
	); err != nil {
		log.Err(err).
			Str("func", "deviceRepository.EnsureDevice").
			Msg("failed to persist fresh device identity")
		return models.Device{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Info().
		Str("func", "deviceRepository.EnsureDevice").
		Str("host", device.Host.String()).
		Msg("generated device identity on first run")

	return device, nil
}

// SaveEncryptionSalt implements [DeviceRepository].
func (d *deviceRepository) SaveEncryptionSalt(ctx context.Context, salt []byte) error {
	log := logger.FromContext(ctx)

	if _, err := d.DB.ExecContext(ctx, localUpdateDeviceSalt, salt); err != nil {
		log.Err(err).
			Str("func", "deviceRepository.SaveEncryptionSalt").
			Msg("failed to store encryption salt")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
