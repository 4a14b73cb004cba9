// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service defines the core business logic interfaces and service
// implementations for the record-store relay and its client.
//
// The package is organized around three primary domains:
//   - Record management: accepting, serving, and wiping the user-scoped,
//     append-only encrypted record streams.
//   - Authentication: user registration, login, and JWT token lifecycle.
//   - Application metadata: exposing runtime information such as the app
//     version.
//
// All service interfaces accept a context.Context as the first argument to
// support cancellation, deadlines, and request-scoped values (e.g. user ID).
package service

import (
	"context"

	"github.com/hostlog/hostlog/models"
)

// RecordService is the server-side business layer over the record store:
// it validates inbound batches and scopes every operation to the
// authenticated user resolved by the transport layer.
type RecordService interface {
	// AddRecords validates and persists a batch of records for userID. The
	// batch commits atomically and is idempotent by record id.
	AddRecords(ctx context.Context, userID int64, records []models.Record) error

	// NextRecords returns up to count records for (host, tag) owned by
	// userID with Idx >= start, ascending and contiguous. count is clamped
	// to the service's page ceiling; a non-positive count also selects the
	// ceiling.
	NextRecords(ctx context.Context, userID int64, host models.HostId, tag models.Tag, start uint64, count int) ([]models.Record, error)

	// Status returns the head idx for every (host, tag) stream belonging
	// to userID.
	Status(ctx context.Context, userID int64) (models.RecordStatus, error)

	// Wipe deletes every record and index-cache entry belonging to userID.
	Wipe(ctx context.Context, userID int64) error
}

// AuthService defines the contract for user registration, login, and token
// lifecycle. Credentials are always derived values: the server never sees
// a master password, only the auth hash computed on the client.
type AuthService interface {
	// RegisterUser creates a new user account from the derived credentials
	// in user (login, auth hash, encryption salt).
	// Returns the persisted user with a server-assigned UserID, or an
	// error if validation or persistence fails.
	RegisterUser(ctx context.Context, user models.User) (models.User, error)

	// Login authenticates an existing user by comparing the supplied auth
	// hash against the stored one.
	Login(ctx context.Context, user models.User) (models.User, error)

	// Params returns the public key-derivation parameters (login,
	// encryption salt) for an account, so a new device can derive the KEK
	// before logging in.
	Params(ctx context.Context, user models.User) (models.User, error)

	// CreateToken issues a signed JWT for the given user.
	CreateToken(ctx context.Context, user models.User) (models.Token, error)

	// ParseToken validates and parses a raw JWT string.
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// AppInfoService exposes application metadata such as the current version.
type AppInfoService interface {
	// GetAppVersion returns the semantic version string of the running
	// application.
	GetAppVersion(ctx context.Context) string
}
