// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Device is the client-side identity row persisted in the local store. It is
// created exactly once, on first run, and survives restarts; only an explicit
// device wipe destroys it.
type Device struct {
	// Host is the stable 128-bit identifier this device stamps into every
	// record it authors.
	Host HostId `json:"host"`

	// EncryptionSalt is a locally cached copy of the account's encryption
	// salt, stored after the first successful registration or login so the
	// KEK can be re-derived without a round-trip.
	EncryptionSalt []byte `json:"-"`

	// CreatedAt is when the device identity was first generated.
	CreatedAt time.Time `json:"created_at"`
}
