package config

import "errors"

// Validation errors returned by [ClientConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid client adapter settings
	// (for example, missing HTTP address or request timeout).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidStorageConfigs indicates invalid client storage settings
	// (for example, empty DSN or unsupported in-memory DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidSyncConfigs indicates invalid sync engine settings
	// (for example, zero background interval or a negative page size).
	ErrInvalidSyncConfigs = errors.New("invalid sync configuration")
	// ErrInvalidAuthConfigs indicates missing account credentials for the
	// client startup flow.
	ErrInvalidAuthConfigs = errors.New("invalid auth configuration")
)
