package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/pemetrics-backend/internal/domain"
	"github.com/simaogato/pemetrics-backend/internal/usecase/normalizer"
)

// Batch represents one bulk import, parsed once per upload
type Batch struct {
	ID         uuid.UUID
	ImportedAt time.Time
	Result     *normalizer.Result
}

// Session owns the record sources of one interactive session:
// the current import batch and the append-only manual entry log.
type Session struct {
	ID         uuid.UUID
	ManualRepo domain.ManualEntryRepository
	Normalizer *normalizer.Normalizer
	Logger     zerolog.Logger

	mu    sync.RWMutex
	batch *Batch
	now   func() time.Time
}

// NewSession creates a new Session instance
func NewSession(
	manualRepo domain.ManualEntryRepository,
	norm *normalizer.Normalizer,
	logger zerolog.Logger,
) *Session {
	id := uuid.New()
	return &Session{
		ID:         id,
		ManualRepo: manualRepo,
		Normalizer: norm,
		Logger:     logger.With().Str("component", "session").Str("session_id", id.String()).Logger(),
		now:        time.Now,
	}
}

// Import normalizes the sheets and replaces the current batch.
// A schema failure leaves the previous batch in place.
func (s *Session) Import(ctx context.Context, sheets ...normalizer.Sheet) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(sheets) == 0 {
		return nil, errors.New("import requires at least one sheet")
	}

	result, err := s.Normalizer.Normalize(sheets...)
	if err != nil {
		s.Logger.Warn().Err(err).Int("sheets", len(sheets)).Msg("import rejected")
		return nil, fmt.Errorf("failed to normalize import: %w", err)
	}

	batch := &Batch{
		ID:         uuid.New(),
		ImportedAt: s.now().UTC(),
		Result:     result,
	}

	s.mu.Lock()
	s.batch = batch
	s.mu.Unlock()

	s.Logger.Info().
		Str("batch_id", batch.ID.String()).
		Strs("profiles", result.Profiles).
		Int("records", len(result.Records)).
		Int("rejected", len(result.Rejected)).
		Msg("import normalized")

	return batch, nil
}

// Batch returns the current import batch, or nil before the first import
func (s *Session) Batch() *Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batch
}

// ClearImport drops the current import batch
func (s *Session) ClearImport() {
	s.mu.Lock()
	s.batch = nil
	s.mu.Unlock()
}

// AddManual validates one canonical row and appends it to the manual entry log
func (s *Session) AddManual(ctx context.Context, row normalizer.Row) (*domain.ManualEntry, error) {
	record, err := s.Normalizer.NormalizeRow(row)
	if err != nil {
		return nil, err
	}

	entry := domain.ManualEntry{
		ID:        uuid.New(),
		Record:    record,
		EnteredAt: s.now().UTC(),
	}
	if err := s.ManualRepo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append manual entry: %w", err)
	}

	s.Logger.Debug().Str("entry_id", entry.ID.String()).Str("name", record.Name).Msg("manual record added")
	return &entry, nil
}

// ClearManual empties the manual entry log
func (s *Session) ClearManual(ctx context.Context) error {
	if err := s.ManualRepo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear manual entries: %w", err)
	}
	s.Logger.Info().Msg("manual records cleared")
	return nil
}

// Records returns the imported records followed by the manual ones.
// Identical records from both sources are kept as distinct records.
func (s *Session) Records(ctx context.Context) ([]domain.InvestmentRecord, error) {
	entries, err := s.ManualRepo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot manual entries: %w", err)
	}

	batch := s.Batch()

	records := make([]domain.InvestmentRecord, 0)
	if batch != nil {
		records = append(records, batch.Result.Records...)
	}
	for _, entry := range entries {
		records = append(records, entry.Record)
	}
	return records, nil
}

// Normalization returns the normalization result of the current batch,
// or an empty result before the first import
func (s *Session) Normalization() *normalizer.Result {
	if batch := s.Batch(); batch != nil {
		return batch.Result
	}
	return &normalizer.Result{
		Records:  []domain.InvestmentRecord{},
		Rejected: []domain.RowRejection{},
	}
}
