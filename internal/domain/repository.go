package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ManualEntry represents one record entered by hand during a session
type ManualEntry struct {
	ID        uuid.UUID
	Record    InvestmentRecord
	EnteredAt time.Time
}

// ManualEntryRepository defines the append-only log of manually entered records.
// Implementations must serialize Append, Snapshot and Clear relative to each other.
type ManualEntryRepository interface {
	// Append adds an entry at the end of the log
	Append(ctx context.Context, entry ManualEntry) error

	// Snapshot returns a copy of the log in append order
	Snapshot(ctx context.Context) ([]ManualEntry, error)

	// Clear removes every entry
	Clear(ctx context.Context) error
}
