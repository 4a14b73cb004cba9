// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package crypto implements the client-side zero-knowledge cryptography
// layer: deriving the account key hierarchy from a master password, and
// sealing/opening individual record payloads (see Envelope).
//
// # Key hierarchy
//
//  1. KEK (key-encryption key) — derived from the user's master password
//     and a random salt using Argon2id. It never encrypts a record body
//     directly; instead every record gets its own fresh content-encryption
//     key (CEK), and the KEK only wraps that CEK (see Envelope.Seal). The
//     KEK exists only in client memory and is never transmitted.
//
//  2. AuthHash — SHA-256(KEK ‖ authSalt). Sent to the server as the
//     authentication credential in place of the master password. Because
//     SHA-256 is one-way, the server cannot recover the KEK from it.
//
// # Registration flow
//
//  1. [KeyChainService.GenerateEncryptionSalt]
//  2. [KeyChainService.GenerateKEK](password, salt)
//  3. [KeyChainService.GenerateAuthHash](KEK, authSalt) → stored as the
//     account credential
//
// # Login flow
//
//  1. Fetch salt from server
//  2. [KeyChainService.GenerateKEK](password, salt)
//  3. [KeyChainService.GenerateAuthHash](KEK, authSalt) → authenticate
//
// Once authenticated, the recovered KEK is handed to Envelope for sealing
// and opening individual records.
package crypto

// KeyChainService derives and protects the account-level key material used
// to authenticate a user and recover their KEK. It has no knowledge of the
// network, database, or record contents.
type KeyChainService interface {
	// GenerateEncryptionSalt generates a cryptographically random 16-byte
	// (128-bit) salt. The salt is not a secret — it is stored in plaintext
	// on the server — but it ensures that identical master passwords
	// produce different KEKs for different users (or after a password
	// change). Called at step 1 of registration.
	GenerateEncryptionSalt() ([]byte, error)

	// GenerateKEK derives a 256-bit key-encryption key from masterPassword
	// and salt using Argon2id. The KEK exists only in client memory and is
	// never transmitted to the server.
	GenerateKEK(masterPassword string, salt []byte) []byte

	// GenerateAuthHash computes the authentication credential sent to the
	// server in place of the raw password: SHA-256(KEK ‖ authSalt). The
	// fixed authSalt distinguishes this hash from the KEK itself.
	GenerateAuthHash(KEK []byte, authSalt string) []byte
}
