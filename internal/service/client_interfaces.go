package service

import (
	"context"

	"github.com/hostlog/hostlog/models"
)

// ClientCryptoService defines the client-side contract for sealing and
// opening record payloads under the account KEK. The key must be set via
// SetEncryptionKey (normally by a successful login) before calling Seal or
// Open.
type ClientCryptoService interface {
	// SetEncryptionKey stores the KEK that will be used for all subsequent
	// Seal/Open operations. It is called once after a successful login.
	SetEncryptionKey(key []byte)

	// Seal wraps plaintext in the two-level envelope: a fresh random CEK
	// seals the plaintext, and the KEK seals the CEK.
	// Returns ErrNoEncryptionKey if no key has been installed.
	Seal(plaintext []byte) (models.EncryptedData, error)

	// Open unwraps the CEK under the KEK and recovers the plaintext.
	// Returns ErrNoEncryptionKey if no key has been installed.
	Open(data models.EncryptedData) ([]byte, error)
}

// Session is the result of a successful client login: the server identity
// plus the key material every later operation needs.
type Session struct {
	// UserID is the server-assigned account id from the token's subject.
	UserID int64

	// Token is the bearer token for subsequent authenticated calls.
	Token models.Token

	// KEK is the derived key-encryption key. It exists only in client
	// memory.
	KEK []byte
}

// ClientAuthService defines the client-side contract for account
// registration and authentication, including KEK derivation. The master
// password never leaves this service; only derived values are handed to
// the adapter.
type ClientAuthService interface {
	// Register creates a new account: it generates a fresh encryption
	// salt, derives the KEK from the master password, computes the auth
	// hash, registers with the relay, caches the salt locally, and
	// installs the KEK into the crypto service.
	Register(ctx context.Context, login, masterPassword string) (Session, error)

	// Login authenticates against the relay: it fetches the account's
	// encryption salt, derives the KEK, computes the auth hash, logs in,
	// caches the salt locally, and installs the KEK into the crypto
	// service.
	Login(ctx context.Context, login, masterPassword string) (Session, error)
}

// DecryptedRecord pairs a stored record with its opened plaintext. The
// record's envelope is left intact so callers can still see idx, tag, and
// timestamps.
type DecryptedRecord struct {
	Record    models.Record
	Plaintext []byte
}

// ClientRecordService is the client-side contract for authoring and
// reading records. It is the only layer where plaintext and the record
// store meet: everything below it sees sealed envelopes only.
type ClientRecordService interface {
	// Append seals plaintext under a fresh CEK and appends the resulting
	// record to the local store under tag, with the given payload schema
	// version. The finished record (id, idx, timestamp assigned) is
	// returned.
	Append(ctx context.Context, tag models.Tag, version string, plaintext []byte) (models.Record, error)

	// Read returns up to count records of (host, tag) starting at idx
	// start, each opened back to plaintext.
	Read(ctx context.Context, host models.HostId, tag models.Tag, start uint64, count int) ([]DecryptedRecord, error)

	// Tail returns the last record this device authored under tag, opened,
	// or nil when the stream is empty.
	Tail(ctx context.Context, tag models.Tag) (*DecryptedRecord, error)

	// Wipe deletes the whole store: remotely first, then locally, so an
	// interrupted wipe errs on the side of keeping local data.
	Wipe(ctx context.Context) error
}
