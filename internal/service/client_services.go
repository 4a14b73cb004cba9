package service

import (
	"github.com/hostlog/hostlog/internal/adapter"
	"github.com/hostlog/hostlog/internal/config"
	"github.com/hostlog/hostlog/internal/crypto"
	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/internal/store"
	"github.com/hostlog/hostlog/internal/sync"
)

// ClientServices is the client-side service container. It groups all client
// service implementations and is constructed once at application startup via
// NewClientServices.
type ClientServices struct {
	// CryptoService seals and opens record payloads under the session KEK.
	CryptoService ClientCryptoService

	// AuthService handles client-side registration and authentication,
	// including KEK derivation and server communication.
	AuthService ClientAuthService

	// RecordService authors and reads records against the local store,
	// sealing and opening payloads transparently.
	RecordService ClientRecordService

	// SyncEngine reconciles the local store with the relay.
	SyncEngine *sync.Engine

	// SyncJob is the background worker that runs SyncEngine periodically
	// while the client is logged in.
	SyncJob *sync.Job
}

// NewClientServices constructs and wires all client-side services.
//
// Initialisation order:
//  1. KeyChainService — key-derivation primitives.
//  2. ClientCryptoService — envelope seal/open over the session KEK.
//  3. ClientAuthService — registration/login using the keychain.
//  4. ClientRecordService — plaintext boundary over the local store.
//  5. Sync engine and background job over the local store and the adapter.
//
// Returns a fully initialised *ClientServices.
func NewClientServices(storages *store.ClientStorages, serverAdapter adapter.ServerAdapter, cfg config.ClientSync, logger *logger.Logger) (*ClientServices, error) {
	keyChainService := crypto.NewKeyChainService()

	cryptoSvc := NewClientCryptoService()
	authSvc := NewClientAuthService(storages.DeviceRepository, serverAdapter, keyChainService, cryptoSvc, logger)
	recordSvc := NewClientRecordService(storages.RecordRepository, cryptoSvc, serverAdapter, logger)

	engine := sync.NewEngine(storages.RecordRepository, serverAdapter, cfg.PageSize, logger)

	return &ClientServices{
		CryptoService: cryptoSvc,
		AuthService:   authSvc,
		RecordService: recordSvc,
		SyncEngine:    engine,
		SyncJob:       sync.NewJob(engine, logger),
	}, nil
}
