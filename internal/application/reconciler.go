package application

import (
	"context"
	"fmt"

	"agriprice-service/internal/domain"

	"go.uber.org/zap"
)

// syncLockKey guards the whole acquisition pipeline; the TTL on the lock
// backend keeps a crashed run from wedging future triggers.
const syncLockKey = "agriprice:sync"

// QuoteError pairs a quote with the storage error it hit so a partially
// failed batch can still report what it did persist.
type QuoteError struct {
	Quote domain.PriceQuote
	Err   error
}

func (e QuoteError) Error() string {
	return fmt.Sprintf("%s/%s: %v", e.Quote.Commodity, e.Quote.District, e.Err)
}

// ReconcileResult summarizes one reconciliation batch.
type ReconcileResult struct {
	Created []domain.DailyPrice
	Skipped int
	Errors  []QuoteError
}

// Added is the number of records the batch actually created.
func (r ReconcileResult) Added() int { return len(r.Created) }

// Reconciler persists aggregated quotes with day-granularity dedup on the
// default path and explicit overwrite on the sync/manual path.
type Reconciler struct {
	repo PriceRepo
	agg  *Aggregator
	lock SyncLock
	log  *zap.Logger
}

type ReconcilerOption func(*Reconciler)

func WithReconcilerLogger(l *zap.Logger) ReconcilerOption {
	return func(r *Reconciler) { r.log = l }
}

func NewReconciler(repo PriceRepo, agg *Aggregator, lock SyncLock, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{repo: repo, agg: agg, lock: lock}
	for _, opt := range opts {
		opt(r)
	}
	if r.lock == nil {
		r.lock = NoopLock{}
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r
}

// ReconcileDaily applies the first-writer-wins discipline: a quote whose
// (day, commodity, district) key already has a row is skipped, never
// overwritten. Quotes are reconciled independently; one storage failure is
// recorded in the result and the batch continues.
func (r *Reconciler) ReconcileDaily(ctx context.Context, quotes []domain.PriceQuote) ReconcileResult {
	var res ReconcileResult
	for _, q := range quotes {
		if err := q.Validate(); err != nil {
			res.Errors = append(res.Errors, QuoteError{Quote: q, Err: err})
			continue
		}
		rec, created, err := r.repo.InsertIfAbsent(ctx, q)
		if err != nil {
			r.log.Warn("reconcile.insert_failed",
				zap.String("commodity", string(q.Commodity)),
				zap.String("district", string(q.District)),
				zap.Error(err),
			)
			res.Errors = append(res.Errors, QuoteError{Quote: q, Err: err})
			continue
		}
		if !created {
			res.Skipped++
			continue
		}
		res.Created = append(res.Created, rec)
	}
	r.log.Info("reconcile.done",
		zap.Int("created", res.Added()),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", len(res.Errors)),
	)
	return res
}

// RunScheduled is the cron entry point: acquire the sync lock, aggregate,
// reconcile. Returns ErrLocked when another run holds the lock.
func (r *Reconciler) RunScheduled(ctx context.Context) (ReconcileResult, error) {
	ok, err := r.lock.TryAcquire(ctx, syncLockKey)
	if err != nil {
		return ReconcileResult{}, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return ReconcileResult{}, ErrLocked
	}
	defer func() {
		if err := r.lock.Release(ctx, syncLockKey); err != nil {
			r.log.Warn("reconcile.lock_release_failed", zap.Error(err))
		}
	}()

	quotes := r.agg.FetchLatestPrices(ctx)
	return r.ReconcileDaily(ctx, quotes), nil
}

// SyncAll is the bulk-correct path behind the manual "Sync Now" action:
// every aggregated quote overwrites the stored price for its day key.
func (r *Reconciler) SyncAll(ctx context.Context) (int, error) {
	ok, err := r.lock.TryAcquire(ctx, syncLockKey)
	if err != nil {
		return 0, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return 0, ErrLocked
	}
	defer func() {
		if err := r.lock.Release(ctx, syncLockKey); err != nil {
			r.log.Warn("sync.lock_release_failed", zap.Error(err))
		}
	}()

	quotes := r.agg.FetchLatestPrices(ctx)
	count := 0
	var firstErr error
	for _, q := range quotes {
		if err := q.Validate(); err != nil {
			r.log.Warn("sync.invalid_quote", zap.Error(err))
			continue
		}
		if _, err := r.repo.Upsert(ctx, q); err != nil {
			r.log.Warn("sync.upsert_failed",
				zap.String("commodity", string(q.Commodity)),
				zap.String("district", string(q.District)),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		count++
	}
	if count == 0 && firstErr != nil {
		return 0, firstErr
	}
	return count, nil
}

// AddPrice is the manual admin entry: a single validated quote through the
// overwrite path, so an operator can correct a day's price.
func (r *Reconciler) AddPrice(ctx context.Context, q domain.PriceQuote) (domain.DailyPrice, error) {
	if err := q.Validate(); err != nil {
		return domain.DailyPrice{}, err
	}
	rec, err := r.repo.Upsert(ctx, q)
	if err != nil {
		return domain.DailyPrice{}, fmt.Errorf("upsert price: %w", err)
	}
	r.log.Info("price.added",
		zap.String("commodity", string(q.Commodity)),
		zap.String("district", string(q.District)),
		zap.Int64("price", q.Price),
	)
	return rec, nil
}
