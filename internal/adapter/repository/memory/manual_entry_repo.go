package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/simaogato/pemetrics-backend/internal/domain"
)

// manualEntryRepository implements domain.ManualEntryRepository in process memory.
// The log lives as long as the process; a single mutex serializes every operation.
type manualEntryRepository struct {
	mu      sync.Mutex
	entries []domain.ManualEntry
}

// NewManualEntryRepository creates an empty manual entry log
func NewManualEntryRepository() domain.ManualEntryRepository {
	return &manualEntryRepository{}
}

// Append adds an entry at the end of the log
func (r *manualEntryRepository) Append(ctx context.Context, entry domain.ManualEntry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to append manual entry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	return nil
}

// Snapshot returns a copy of the log in append order
func (r *manualEntryRepository) Snapshot(ctx context.Context) ([]domain.ManualEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to snapshot manual entries: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make([]domain.ManualEntry, len(r.entries))
	copy(snapshot, r.entries)
	return snapshot, nil
}

// Clear removes every entry
func (r *manualEntryRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to clear manual entries: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	return nil
}
