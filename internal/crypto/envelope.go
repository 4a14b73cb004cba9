// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/hostlog/hostlog/models"
)

// Envelope seals plaintext record payloads under a per-record
// content-encryption key (CEK), which is itself sealed under the caller's
// key-encryption key (KEK). It has no knowledge of hosts, tags, or idx —
// its sole responsibility is turning plaintext into models.EncryptedData
// and back.
//
// The KEK never encrypts a record body directly: every record gets a fresh
// CEK, so a future key-rotation pass could re-wrap every CEK under a new
// KEK without touching any ciphertext, and a compromised KEK at a single
// point in time exposes only what was sealed while it was current.
type Envelope struct{}

// NewEnvelope returns an Envelope. It carries no state and is safe for
// concurrent use.
func NewEnvelope() Envelope {
	return Envelope{}
}

// Seal generates a fresh random CEK, AEAD-seals plaintext under it with a
// fresh nonce, then AEAD-seals the CEK itself under kek with its own fresh
// nonce. Both nonces are prepended to their respective ciphertexts.
//
// Fails with ErrRngFailure if the OS CSPRNG cannot supply the CEK or either
// nonce.
func (Envelope) Seal(plaintext, kek []byte) (models.EncryptedData, error) {
	cek := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, cek); err != nil {
		return models.EncryptedData{}, fmt.Errorf("%w: generate cek: %v", ErrRngFailure, err)
	}

	ciphertext, err := sealAESGCM(cek, plaintext)
	if err != nil {
		return models.EncryptedData{}, err
	}

	wrappedCEK, err := sealAESGCM(kek, cek)
	if err != nil {
		return models.EncryptedData{}, err
	}

	return models.EncryptedData{Ciphertext: ciphertext, WrappedCEK: wrappedCEK}, nil
}

// Open unwraps envelope.WrappedCEK under kek, then opens envelope.Ciphertext
// under the recovered CEK.
//
// Fails with ErrAuthFailure on an AEAD tag mismatch at either layer (wrong
// KEK, tampering, or corruption), and ErrMalformed if either sealed value
// is shorter than one GCM nonce.
func (Envelope) Open(envelope models.EncryptedData, kek []byte) ([]byte, error) {
	cek, err := openAESGCM(kek, envelope.WrappedCEK)
	if err != nil {
		return nil, err
	}

	plaintext, err := openAESGCM(cek, envelope.Ciphertext)
	if err != nil {
		return nil, err
	}

	return plaintext, nil
}

// sealAESGCM seals plaintext under key with AES-256-GCM, returning
// nonce ‖ ciphertext.
func sealAESGCM(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: new cipher: %v", ErrMalformed, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: new gcm: %v", ErrMalformed, err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: generate nonce: %v", ErrRngFailure, err)
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// openAESGCM splits blob into nonce ‖ ciphertext and opens it under key
// with AES-256-GCM.
func openAESGCM(key, blob []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: new cipher: %v", ErrMalformed, err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: new gcm: %v", ErrMalformed, err)
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return nil, fmt.Errorf("%w: blob shorter than nonce", ErrMalformed)
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailure, err)
	}

	return plaintext, nil
}
