// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import "errors"

// Sentinel errors returned by Envelope.Seal and Envelope.Open. Callers
// should discriminate with errors.Is; no custom error type hierarchy is
// used.
var (
	// ErrRngFailure indicates the OS CSPRNG could not supply randomness for
	// a nonce or key. Never retried internally; always surfaced.
	ErrRngFailure = errors.New("crypto: rng failure")

	// ErrAuthFailure indicates an AEAD authentication-tag mismatch: wrong
	// KEK, tampering, or corruption. Never retried.
	ErrAuthFailure = errors.New("crypto: authentication failure")

	// ErrMalformed indicates a structurally invalid envelope (e.g. a
	// ciphertext or wrapped CEK shorter than one GCM nonce).
	ErrMalformed = errors.New("crypto: malformed envelope")
)
