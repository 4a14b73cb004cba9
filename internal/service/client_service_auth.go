package service

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/hostlog/hostlog/internal/adapter"
	"github.com/hostlog/hostlog/internal/crypto"
	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/internal/store"
	"github.com/hostlog/hostlog/models"
)

// authSalt domain-separates the auth hash from the KEK itself: the server
// credential is SHA-256(KEK ‖ authSalt), so knowing it reveals nothing
// about the KEK.
var authSalt = "hostlog-auth-v1"

type clientAuthService struct {
	devices  store.DeviceRepository
	adapter  adapter.ServerAdapter
	keychain crypto.KeyChainService
	crypto   ClientCryptoService
	logger   *logger.Logger
}

// NewClientAuthService constructs a clientAuthService wired to the provided
// device repository, server adapter, key-chain service, and crypto service.
// The returned service is safe for concurrent use.
func NewClientAuthService(devices store.DeviceRepository, serverAdapter adapter.ServerAdapter, keychain crypto.KeyChainService, cryptoSvc ClientCryptoService, logger *logger.Logger) ClientAuthService {
	return &clientAuthService{
		devices:  devices,
		adapter:  serverAdapter,
		keychain: keychain,
		crypto:   cryptoSvc,
		logger:   logger,
	}
}

// Register implements ClientAuthService.
//
// Key-derivation steps:
//  1. Generate a random encryption salt.
//  2. Derive the key-encryption key (KEK) from the master password and the
//     salt via Argon2id.
//  3. Compute the auth hash from the KEK and the fixed auth salt.
//  4. Send login + auth hash + salt to the server; the password itself
//     never leaves this function.
//  5. Cache the salt in the local device row and install the KEK into the
//     crypto service.
//
// Returns an error if salt generation or the server call fails.
func (a *clientAuthService) Register(ctx context.Context, login, masterPassword string) (Session, error) {
	log := logger.FromContext(ctx)

	salt, err := a.keychain.GenerateEncryptionSalt()
	if err != nil {
		return Session{}, fmt.Errorf("error generating salt: %w", err)
	}

	kek := a.keychain.GenerateKEK(masterPassword, salt)
	authHash := hex.EncodeToString(a.keychain.GenerateAuthHash(kek, authSalt))

	token, err := a.adapter.Register(ctx, models.AuthRequest{
		Login:          login,
		AuthHash:       authHash,
		EncryptionSalt: salt,
	})
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrRegisterOnServer, mapAdapterError(err))
	}

	if err = a.devices.SaveEncryptionSalt(ctx, salt); err != nil {
		// The account exists either way; a failed salt cache only costs a
		// params round-trip on the next login.
		log.Err(err).Str("func", "clientAuthService.Register").Msg("failed to cache encryption salt locally")
	}

	a.crypto.SetEncryptionKey(kek)

	return Session{UserID: token.UserID, Token: token, KEK: kek}, nil
}

// Login implements ClientAuthService.
//
// Authentication steps:
//  1. Fetch the account's encryption salt from the server by login.
//  2. Derive the KEK from the master password and the salt.
//  3. Compute the auth hash and authenticate.
//  4. Cache the salt locally and install the KEK into the crypto service.
//
// Returns the established session or an error if any step fails.
func (a *clientAuthService) Login(ctx context.Context, login, masterPassword string) (Session, error) {
	log := logger.FromContext(ctx)

	salt, err := a.adapter.RequestSalt(ctx, login)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrLoginOnServer, mapAdapterError(err))
	}
	if len(salt) == 0 {
		return Session{}, fmt.Errorf("%w: empty encryption salt for login", ErrLoginOnServer)
	}

	kek := a.keychain.GenerateKEK(masterPassword, salt)
	authHash := hex.EncodeToString(a.keychain.GenerateAuthHash(kek, authSalt))

	token, err := a.adapter.Login(ctx, models.AuthRequest{
		Login:    login,
		AuthHash: authHash,
	})
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrLoginOnServer, mapAdapterError(err))
	}

	if err = a.devices.SaveEncryptionSalt(ctx, salt); err != nil {
		log.Err(err).Str("func", "clientAuthService.Login").Msg("failed to cache encryption salt locally")
	}

	a.crypto.SetEncryptionKey(kek)

	return Session{UserID: token.UserID, Token: token, KEK: kek}, nil
}
