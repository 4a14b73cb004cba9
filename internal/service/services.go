// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"fmt"

	"github.com/hostlog/hostlog/internal/config"
	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/internal/store"
	"github.com/hostlog/hostlog/internal/utils"
	"github.com/hostlog/hostlog/internal/validators"
)

// Services is the top-level container that groups all application service
// implementations. It is constructed once at startup and injected into the
// HTTP handler layer.
type Services struct {
	// AppInfoService exposes application metadata such as the current version.
	AppInfoService AppInfoService

	// AuthService handles user registration, login, and JWT token lifecycle.
	AuthService AuthService

	// RecordService manages the user-scoped encrypted record streams:
	// accepting batches, serving contiguous ranges, status, and wipe.
	RecordService RecordService
}

// NewServices constructs and wires all application services from the provided
// storage layer, configuration, and logger.
//
// Initialization order:
//  1. AppInfoService — validated first; returns an error immediately if
//     cfg.Version is empty (fail-fast at startup).
//  2. AuthService and RecordService — constructed over the repositories,
//     with the record validator guarding inbound batches.
//
// Returns a fully initialised *Services or an error if any service fails to
// initialise.
func NewServices(storages *store.Storages, cfg config.App, logger *logger.Logger) (*Services, error) {
	logger.Info().Msg("creating new services...")

	appService, err := NewAppInfoService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating app info service: %w", err)
	}

	// The hasher pool backs the transport integrity check on pushed
	// batches; without a key the check is skipped entirely.
	if cfg.HashKey != "" {
		utils.InitHasherPool(cfg.HashKey)
	}

	return &Services{
		AppInfoService: appService,
		AuthService:    NewAuthService(storages.UserRepository, cfg, logger),
		RecordService:  NewRecordService(storages.RecordRepository, validators.NewRecordValidator(), logger),
	}, nil
}
