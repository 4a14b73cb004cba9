// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Server-side requirements are intentionally loose: a missing address or DSN
// is caught later by the component that needs it, so that client invocations
// (which share this config tree) are not forced to supply server settings.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	return nil
}

// validate checks that a [ClientConfig] carries everything the client runtime
// needs: a file-backed local store, a reachable server adapter, and a sane
// sync configuration.
func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Sync.Interval == 0 || cfg.Sync.PageSize < 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.Auth.Login == "" || cfg.Auth.MasterPassword == "" {
		return ErrInvalidAuthConfigs
	}

	return nil
}
