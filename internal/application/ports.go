package application

import (
	"context"
	"time"

	"agriprice-service/internal/domain"
)

// PriceRepo is the persistence contract for daily price records.
type PriceRepo interface {
	// InsertIfAbsent creates a record for the quote unless one already exists
	// for its (day, commodity, district) key. The bool reports whether a row
	// was created; losing a concurrent race counts as "not created", not an
	// error.
	InsertIfAbsent(ctx context.Context, q domain.PriceQuote) (domain.DailyPrice, bool, error)
	// Upsert creates or overwrites the record for the quote's day key.
	Upsert(ctx context.Context, q domain.PriceQuote) (domain.DailyPrice, error)
	Today(ctx context.Context) ([]domain.DailyPrice, error)
	History(ctx context.Context, f HistoryFilter) ([]domain.DailyPrice, error)
}

// HistoryFilter narrows a history query. Zero-valued fields are not applied.
type HistoryFilter struct {
	Commodity domain.Commodity
	District  domain.District
	Days      int
}

// PriceProvider is an external price source. Fetch returns zero or more
// normalized quotes; an error means the provider contributed nothing this
// pass.
type PriceProvider interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.PriceQuote, error)
}

// SyncLock serializes overlapping reconcile runs. Best-effort: correctness
// of the default insert path rests on the store's uniqueness constraint.
type SyncLock interface {
	// TryAcquire returns true if key was free and is now held.
	TryAcquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// NoopLock always grants the lock; used when Redis is disabled.
type NoopLock struct{}

func (NoopLock) TryAcquire(context.Context, string) (bool, error) { return true, nil }
func (NoopLock) Release(context.Context, string) error            { return nil }

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
