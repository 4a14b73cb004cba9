package service

import (
	"context"
	"fmt"

	"github.com/hostlog/hostlog/internal/logger"
	"github.com/hostlog/hostlog/internal/store"
	"github.com/hostlog/hostlog/internal/validators"
	"github.com/hostlog/hostlog/models"
)

// maxRecordsPerPage bounds a single NextRecords response so that one call
// never has to materialize an unbounded stream suffix.
const maxRecordsPerPage = 1000

// recordService is the concrete implementation of [RecordService]. It
// validates inbound batches before handing them to the repository; the
// repository owns transactionality and the index-cache discipline.
type recordService struct {
	records   store.RecordRepository
	validator validators.Validator
	logger    *logger.Logger
}

// NewRecordService constructs a [RecordService] over the given repository.
// Inbound batches are checked by validator before they reach storage.
func NewRecordService(records store.RecordRepository, validator validators.Validator, logger *logger.Logger) RecordService {
	return &recordService{
		records:   records,
		validator: validator,
		logger:    logger,
	}
}

// AddRecords implements [RecordService].
func (s *recordService) AddRecords(ctx context.Context, userID int64, records []models.Record) error {
	log := logger.FromContext(ctx)

	if userID <= 0 {
		log.Error().Str("func", "recordService.AddRecords").Msg("no user id resolved for request")
		return ErrInvalidDataProvided
	}

	if err := s.validator.Validate(ctx, records); err != nil {
		log.Err(err).
			Str("func", "recordService.AddRecords").
			Int64("user_id", userID).
			Int("count", len(records)).
			Msg("record batch failed validation")
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	if err := s.records.AddRecords(ctx, userID, records); err != nil {
		return fmt.Errorf("add records: %w", err)
	}

	return nil
}

// NextRecords implements [RecordService].
func (s *recordService) NextRecords(ctx context.Context, userID int64, host models.HostId, tag models.Tag, start uint64, count int) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	if userID <= 0 || host.IsZero() || tag == "" {
		log.Error().
			Str("func", "recordService.NextRecords").
			Int64("user_id", userID).
			Str("host", host.String()).
			Str("tag", string(tag)).
			Msg("invalid stream coordinates")
		return nil, ErrInvalidDataProvided
	}

	if count <= 0 || count > maxRecordsPerPage {
		count = maxRecordsPerPage
	}

	records, err := s.records.NextRecords(ctx, userID, host, tag, start, count)
	if err != nil {
		return nil, fmt.Errorf("next records: %w", err)
	}

	return records, nil
}

// Status implements [RecordService].
func (s *recordService) Status(ctx context.Context, userID int64) (models.RecordStatus, error) {
	if userID <= 0 {
		return nil, ErrInvalidDataProvided
	}

	status, err := s.records.Status(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}

	return status, nil
}

// Wipe implements [RecordService].
func (s *recordService) Wipe(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrInvalidDataProvided
	}

	if err := s.records.Wipe(ctx, userID); err != nil {
		return fmt.Errorf("wipe: %w", err)
	}

	return nil
}
