// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating
// with the record-store relay server.
//
// The primary abstraction is [ServerAdapter], which decouples the service
// layer and the sync engine from the underlying protocol. The package ships
// an HTTP/REST implementation ([NewHTTPServerAdapter]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrUnauthorized] for 401, [ErrConflict] for 409).
package adapter

import (
	"context"

	"github.com/hostlog/hostlog/models"
)

// ServerAdapter defines transport-agnostic communication with the relay
// server. Implementations are responsible for serialisation, bearer-token
// management, and mapping transport-level errors to the sentinel values
// defined in this package.
//
// The record methods (Status, NextRecords, AddRecords) satisfy the sync
// engine's Remote contract, so an adapter can be handed to the engine
// directly.
type ServerAdapter interface {
	// SetToken stores the bearer token that will be attached to all
	// subsequent authenticated requests. It is called automatically after
	// a successful Register or Login.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or
	// an empty string if no token has been set yet.
	Token() string

	// Register creates a new account from the derived credentials in req.
	// On success the returned bearer token is also stored via SetToken.
	Register(ctx context.Context, req models.AuthRequest) (models.Token, error)

	// RequestSalt fetches the encryption salt stored for login during
	// registration. The salt is needed to derive the KEK before the auth
	// hash can be computed for Login.
	RequestSalt(ctx context.Context, login string) ([]byte, error)

	// Login authenticates with the pre-computed auth hash in req. On
	// success the returned bearer token is also stored via SetToken.
	Login(ctx context.Context, req models.AuthRequest) (models.Token, error)

	// Status fetches the remote head idx for every (host, tag) stream the
	// server holds for the authenticated user.
	Status(ctx context.Context) (models.RecordStatus, error)

	// NextRecords fetches up to count records for (host, tag) with
	// Idx >= start, ascending and contiguous.
	NextRecords(ctx context.Context, host models.HostId, tag models.Tag, start uint64, count int) ([]models.Record, error)

	// AddRecords uploads a batch of records as one atomic, idempotent
	// call.
	AddRecords(ctx context.Context, records []models.Record) error

	// WipeStore deletes every record and index-cache entry the server
	// holds for the authenticated user.
	WipeStore(ctx context.Context) error

	// ServerVersion fetches the server's version string, used for the
	// minimum-version check at startup.
	ServerVersion(ctx context.Context) (string, error)
}
