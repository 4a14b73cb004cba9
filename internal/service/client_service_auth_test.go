package service

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/hostlog/hostlog/internal/crypto"
	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServerAdapter captures auth round-trips without a network.
type fakeServerAdapter struct {
	token string

	registerReq models.AuthRequest
	loginReq    models.AuthRequest
	salt        []byte
	saltErr     error
	loginErr    error

	wiped bool
}

func (f *fakeServerAdapter) SetToken(token string) { f.token = token }
func (f *fakeServerAdapter) Token() string         { return f.token }

func (f *fakeServerAdapter) Register(ctx context.Context, req models.AuthRequest) (models.Token, error) {
	f.registerReq = req
	return models.Token{SignedString: "tok", UserID: 42}, nil
}

func (f *fakeServerAdapter) RequestSalt(ctx context.Context, login string) ([]byte, error) {
	return f.salt, f.saltErr
}

func (f *fakeServerAdapter) Login(ctx context.Context, req models.AuthRequest) (models.Token, error) {
	if f.loginErr != nil {
		return models.Token{}, f.loginErr
	}
	f.loginReq = req
	return models.Token{SignedString: "tok", UserID: 42}, nil
}

func (f *fakeServerAdapter) Status(ctx context.Context) (models.RecordStatus, error) {
	return models.RecordStatus{}, nil
}

func (f *fakeServerAdapter) NextRecords(ctx context.Context, host models.HostId, tag models.Tag, start uint64, count int) ([]models.Record, error) {
	return nil, nil
}

func (f *fakeServerAdapter) AddRecords(ctx context.Context, records []models.Record) error {
	return nil
}

func (f *fakeServerAdapter) WipeStore(ctx context.Context) error {
	f.wiped = true
	return nil
}

func (f *fakeServerAdapter) ServerVersion(ctx context.Context) (string, error) {
	return "1.0.0", nil
}

// fakeDeviceRepository remembers the cached salt.
type fakeDeviceRepository struct {
	device models.Device
	salt   []byte
}

func (f *fakeDeviceRepository) EnsureDevice(ctx context.Context) (models.Device, error) {
	return f.device, nil
}

func (f *fakeDeviceRepository) SaveEncryptionSalt(ctx context.Context, salt []byte) error {
	f.salt = salt
	return nil
}

func newTestAuthService(adapter *fakeServerAdapter, devices *fakeDeviceRepository) (ClientAuthService, ClientCryptoService) {
	cryptoSvc := NewClientCryptoService()
	authSvc := NewClientAuthService(devices, adapter, crypto.NewKeyChainService(), cryptoSvc, logger.Nop())
	return authSvc, cryptoSvc
}

func TestClientAuthService_Register(t *testing.T) {
	srv := &fakeServerAdapter{}
	devices := &fakeDeviceRepository{}
	authSvc, cryptoSvc := newTestAuthService(srv, devices)

	session, err := authSvc.Register(context.Background(), "alice", "correct horse battery staple")
	require.NoError(t, err)

	assert.Equal(t, int64(42), session.UserID)
	assert.Len(t, session.KEK, 32)

	// The wire carried only derived values.
	assert.Equal(t, "alice", srv.registerReq.Login)
	assert.NotEmpty(t, srv.registerReq.AuthHash)
	assert.NotContains(t, srv.registerReq.AuthHash, "horse")
	decoded, err := hex.DecodeString(srv.registerReq.AuthHash)
	require.NoError(t, err)
	assert.Len(t, decoded, 32)
	assert.Len(t, srv.registerReq.EncryptionSalt, 16)

	// The salt was cached locally and the KEK installed.
	assert.Equal(t, srv.registerReq.EncryptionSalt, devices.salt)
	_, err = cryptoSvc.Seal([]byte("ready"))
	require.NoError(t, err)
}

func TestClientAuthService_Login_DerivesSameKEKAsRegister(t *testing.T) {
	srv := &fakeServerAdapter{}
	devices := &fakeDeviceRepository{}
	authSvc, cryptoSvc := newTestAuthService(srv, devices)

	registered, err := authSvc.Register(context.Background(), "alice", "pw")
	require.NoError(t, err)

	// Seal something with the registration-time key.
	sealed, err := cryptoSvc.Seal([]byte("carried across devices"))
	require.NoError(t, err)

	// A second device: fresh services, same account. The server serves the
	// registration salt back.
	srv2 := &fakeServerAdapter{salt: srv.registerReq.EncryptionSalt}
	devices2 := &fakeDeviceRepository{}
	authSvc2, cryptoSvc2 := newTestAuthService(srv2, devices2)

	session, err := authSvc2.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, registered.KEK, session.KEK)
	assert.Equal(t, srv.registerReq.AuthHash, srv2.loginReq.AuthHash)

	opened, err := cryptoSvc2.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, []byte("carried across devices"), opened)
}

func TestClientAuthService_Login_WrongPasswordDerivesDifferentHash(t *testing.T) {
	srv := &fakeServerAdapter{}
	devices := &fakeDeviceRepository{}
	authSvc, _ := newTestAuthService(srv, devices)

	_, err := authSvc.Register(context.Background(), "alice", "pw")
	require.NoError(t, err)

	srv2 := &fakeServerAdapter{salt: srv.registerReq.EncryptionSalt}
	authSvc2, _ := newTestAuthService(srv2, &fakeDeviceRepository{})

	_, err = authSvc2.Login(context.Background(), "alice", "not-pw")
	require.NoError(t, err)
	assert.NotEqual(t, srv.registerReq.AuthHash, srv2.loginReq.AuthHash)
}

func TestClientAuthService_Login_EmptySalt(t *testing.T) {
	srv := &fakeServerAdapter{salt: nil}
	authSvc, _ := newTestAuthService(srv, &fakeDeviceRepository{})

	_, err := authSvc.Login(context.Background(), "alice", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginOnServer)
}
