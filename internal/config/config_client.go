// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// Version is the semantic version string of the running client build.
	Version string

	// MinServerVersion is the minimum server version this client is willing
	// to sync against, checked once at startup.
	MinServerVersion string

	// HashKey is the shared HMAC key for transport integrity hashes.
	HashKey string
}

// ClientAuth holds the account credentials the headless client authenticates
// with. The master password never leaves the process; only derived values are
// transmitted.
type ClientAuth struct {
	// Login is the account login.
	Login string
	// MasterPassword is the secret the KEK is derived from.
	MasterPassword string
	// Register requests account creation instead of login on startup.
	Register bool
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the base URL of the remote server's HTTP API.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local SQLite database settings.
	DB ClientDB
}

// ClientSync holds the client sync engine settings.
type ClientSync struct {
	// PageSize is the number of records transferred per sync batch.
	PageSize int
	// Interval defines how often the background sync job runs.
	Interval time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Auth contains the account credentials for the headless login flow.
	Auth ClientAuth
	// Adapter contains client transport addresses and timeouts.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Sync contains sync engine and background job settings.
	Sync ClientSync
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
//
// It loads the base config via [GetStructuredConfig], maps only the fields
// relevant to the client runtime, and validates the resulting [ClientConfig].
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := &ClientConfig{
		App: ClientApp{
			Version:          cfg.App.Version,
			MinServerVersion: cfg.App.MinServerVersion,
			HashKey:          cfg.App.HashKey,
		},
		Auth: ClientAuth{
			Login:          cfg.Auth.Login,
			MasterPassword: cfg.Auth.MasterPassword,
			Register:       cfg.Auth.Register,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.ClientDB.DSN,
			},
		},
		Sync: ClientSync{
			PageSize: cfg.Sync.PageSize,
			Interval: cfg.Sync.Interval,
		},
	}

	return clientCfg, clientCfg.validate()
}
