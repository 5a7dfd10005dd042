package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agriprice-service/internal/domain"

	"github.com/google/uuid"
)

var ErrRepo = errors.New("repo error")

func dayKey(q domain.PriceQuote) string {
	return fmt.Sprintf("%s|%s|%s", q.Day().Format("2006-01-02"), q.Commodity, q.District)
}

type fakePriceRepo struct {
	rows    map[string]domain.DailyPrice
	failOn  map[string]error // keyed like rows
	inserts int
	upserts int
}

func newFakePriceRepo() *fakePriceRepo {
	return &fakePriceRepo{rows: map[string]domain.DailyPrice{}}
}

func (f *fakePriceRepo) record(q domain.PriceQuote) domain.DailyPrice {
	now := time.Now().UTC()
	return domain.DailyPrice{
		ID:         uuid.NewString(),
		Day:        q.Day(),
		Commodity:  q.Commodity,
		District:   q.District,
		Price:      q.Price,
		Unit:       q.Unit,
		Source:     q.Source,
		ObservedAt: q.ObservedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (f *fakePriceRepo) InsertIfAbsent(_ context.Context, q domain.PriceQuote) (domain.DailyPrice, bool, error) {
	f.inserts++
	key := dayKey(q)
	if err, ok := f.failOn[key]; ok {
		return domain.DailyPrice{}, false, err
	}
	if existing, ok := f.rows[key]; ok {
		return existing, false, nil
	}
	rec := f.record(q)
	f.rows[key] = rec
	return rec, true, nil
}

func (f *fakePriceRepo) Upsert(_ context.Context, q domain.PriceQuote) (domain.DailyPrice, error) {
	f.upserts++
	key := dayKey(q)
	if err, ok := f.failOn[key]; ok {
		return domain.DailyPrice{}, err
	}
	if existing, ok := f.rows[key]; ok {
		existing.Price = q.Price
		existing.Unit = q.Unit
		existing.Source = q.Source
		existing.UpdatedAt = time.Now().UTC()
		f.rows[key] = existing
		return existing, nil
	}
	rec := f.record(q)
	f.rows[key] = rec
	return rec, nil
}

func (f *fakePriceRepo) Today(_ context.Context) ([]domain.DailyPrice, error) {
	today := domain.DayStart(time.Now())
	var out []domain.DailyPrice
	for _, r := range f.rows {
		if r.Day.Equal(today) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakePriceRepo) History(_ context.Context, _ HistoryFilter) ([]domain.DailyPrice, error) {
	var out []domain.DailyPrice
	for _, r := range f.rows {
		out = append(out, r)
	}
	return out, nil
}

type fakeProvider struct {
	name  string
	out   []domain.PriceQuote
	err   error
	calls int
	block bool // wait for ctx cancellation, simulating a stalled upstream
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context) ([]domain.PriceQuote, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

type fakeLock struct {
	held     bool
	acquires int
	releases int
}

func (f *fakeLock) TryAcquire(context.Context, string) (bool, error) {
	f.acquires++
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context, string) error {
	f.releases++
	f.held = false
	return nil
}

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

func quote(c domain.Commodity, d domain.District, price int64) domain.PriceQuote {
	unit := domain.Baselines[c].Unit
	return domain.PriceQuote{
		Commodity:  c,
		District:   d,
		Price:      price,
		Unit:       unit,
		Source:     "test",
		ObservedAt: time.Now().UTC(),
	}
}
