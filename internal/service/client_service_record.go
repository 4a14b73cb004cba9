package service

import (
	"context"
	"fmt"

	"github.com/hostlog/hostlog/internal/adapter"
	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/internal/store"
	"github.com/hostlog/hostlog/models"
)

// clientRecordService implements [ClientRecordService]: the boundary where
// plaintext meets the record store. Payloads are sealed before they reach
// the local repository and opened after they come back; nothing below this
// layer ever sees plaintext.
type clientRecordService struct {
	records store.LocalRecordRepository
	crypto  ClientCryptoService
	adapter adapter.ServerAdapter
	logger  *logger.Logger
}

// NewClientRecordService constructs a [ClientRecordService] over the local
// store, the crypto service holding the session KEK, and the server
// adapter (used only for the remote half of Wipe).
func NewClientRecordService(records store.LocalRecordRepository, cryptoSvc ClientCryptoService, serverAdapter adapter.ServerAdapter, logger *logger.Logger) ClientRecordService {
	return &clientRecordService{
		records: records,
		crypto:  cryptoSvc,
		adapter: serverAdapter,
		logger:  logger,
	}
}

// Append implements [ClientRecordService].
func (s *clientRecordService) Append(ctx context.Context, tag models.Tag, version string, plaintext []byte) (models.Record, error) {
	log := logger.FromContext(ctx)

	if tag == "" {
		return models.Record{}, ErrInvalidDataProvided
	}

	sealed, err := s.crypto.Seal(plaintext)
	if err != nil {
		log.Err(err).
			Str("func", "clientRecordService.Append").
			Str("tag", string(tag)).
			Msg("failed to seal record payload")
		return models.Record{}, fmt.Errorf("seal payload: %w", err)
	}

	rec, err := s.records.Append(ctx, tag, version, sealed)
	if err != nil {
		return models.Record{}, fmt.Errorf("append record: %w", err)
	}

	return rec, nil
}

// Read implements [ClientRecordService].
func (s *clientRecordService) Read(ctx context.Context, host models.HostId, tag models.Tag, start uint64, count int) ([]DecryptedRecord, error) {
	log := logger.FromContext(ctx)

	records, err := s.records.Next(ctx, host, tag, start, count)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	out := make([]DecryptedRecord, 0, len(records))
	for _, rec := range records {
		plaintext, openErr := s.crypto.Open(rec.Data)
		if openErr != nil {
			log.Err(openErr).
				Str("func", "clientRecordService.Read").
				Str("client_id", rec.Id.String()).
				Uint64("idx", rec.Idx).
				Msg("failed to open record payload")
			return nil, fmt.Errorf("open record idx %d: %w", rec.Idx, openErr)
		}
		out = append(out, DecryptedRecord{Record: rec, Plaintext: plaintext})
	}

	return out, nil
}

// Tail implements [ClientRecordService].
func (s *clientRecordService) Tail(ctx context.Context, tag models.Tag) (*DecryptedRecord, error) {
	rec, err := s.records.Tail(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("tail record: %w", err)
	}
	if rec == nil {
		return nil, nil
	}

	plaintext, err := s.crypto.Open(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("open tail record: %w", err)
	}

	return &DecryptedRecord{Record: *rec, Plaintext: plaintext}, nil
}

// Wipe implements [ClientRecordService]. The remote store is wiped first:
// if that fails nothing local is lost, and retrying the whole operation
// stays safe.
func (s *clientRecordService) Wipe(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if err := s.adapter.WipeStore(ctx); err != nil {
		return fmt.Errorf("wipe remote store: %w", err)
	}

	if err := s.records.Wipe(ctx); err != nil {
		return fmt.Errorf("wipe local store: %w", err)
	}

	log.Info().Str("func", "clientRecordService.Wipe").Msg("record store wiped locally and remotely")
	return nil
}
