package service

import (
	"sync"

	"github.com/hostlog/hostlog/internal/crypto"
	"github.com/hostlog/hostlog/models"
)

// clientCryptoService implements [ClientCryptoService] over the crypto
// envelope. It holds the account KEK in memory after login; the KEK is
// never persisted or transmitted.
type clientCryptoService struct {
	envelope crypto.Envelope

	mu  sync.RWMutex
	kek []byte
}

// NewClientCryptoService constructs a [ClientCryptoService]. The service
// is unusable for Seal/Open until SetEncryptionKey is called.
func NewClientCryptoService() ClientCryptoService {
	return &clientCryptoService{envelope: crypto.NewEnvelope()}
}

// SetEncryptionKey implements [ClientCryptoService]. The key is copied so
// a caller reusing its buffer cannot corrupt the installed KEK.
func (c *clientCryptoService) SetEncryptionKey(key []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kek = append([]byte(nil), key...)
}

func (c *clientCryptoService) key() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.kek
}

// Seal implements [ClientCryptoService].
func (c *clientCryptoService) Seal(plaintext []byte) (models.EncryptedData, error) {
	kek := c.key()
	if len(kek) == 0 {
		return models.EncryptedData{}, ErrNoEncryptionKey
	}
	return c.envelope.Seal(plaintext, kek)
}

// Open implements [ClientCryptoService].
func (c *clientCryptoService) Open(data models.EncryptedData) ([]byte, error) {
	kek := c.key()
	if len(kek) == 0 {
		return nil, ErrNoEncryptionKey
	}
	return c.envelope.Open(data, kek)
}
