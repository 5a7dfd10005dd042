package httpserver

import (
	"context"
	"fmt"
	"time"

	"agriprice-service/internal/application"
	"agriprice-service/internal/domain"

	"github.com/google/uuid"
)

type memPriceRepo struct {
	rows map[string]domain.DailyPrice
}

func newMemPriceRepo() *memPriceRepo {
	return &memPriceRepo{rows: map[string]domain.DailyPrice{}}
}

func memKey(q domain.PriceQuote) string {
	return fmt.Sprintf("%s|%s|%s", q.Day().Format("2006-01-02"), q.Commodity, q.District)
}

func (m *memPriceRepo) fromQuote(q domain.PriceQuote) domain.DailyPrice {
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

func (m *memPriceRepo) InsertIfAbsent(_ context.Context, q domain.PriceQuote) (domain.DailyPrice, bool, error) {
	key := memKey(q)
	if existing, ok := m.rows[key]; ok {
		return existing, false, nil
	}
	rec := m.fromQuote(q)
	m.rows[key] = rec
	return rec, true, nil
}

func (m *memPriceRepo) Upsert(_ context.Context, q domain.PriceQuote) (domain.DailyPrice, error) {
	key := memKey(q)
	if existing, ok := m.rows[key]; ok {
		existing.Price = q.Price
		existing.Unit = q.Unit
		existing.Source = q.Source
		existing.UpdatedAt = time.Now().UTC()
		m.rows[key] = existing
		return existing, nil
	}
	rec := m.fromQuote(q)
	m.rows[key] = rec
	return rec, nil
}

func (m *memPriceRepo) Today(_ context.Context) ([]domain.DailyPrice, error) {
	today := domain.DayStart(time.Now())
	var out []domain.DailyPrice
	for _, r := range m.rows {
		if r.Day.Equal(today) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memPriceRepo) History(_ context.Context, f application.HistoryFilter) ([]domain.DailyPrice, error) {
	var out []domain.DailyPrice
	for _, r := range m.rows {
		if f.Commodity != "" && r.Commodity != f.Commodity {
			continue
		}
		if f.District != "" && r.District != f.District {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func testQuote(c domain.Commodity, d domain.District, price int64) domain.PriceQuote {
	return domain.PriceQuote{
		Commodity:  c,
		District:   d,
		Price:      price,
		Unit:       domain.Baselines[c].Unit,
		Source:     "test",
		ObservedAt: time.Now().UTC(),
	}
}

type countingProvider struct {
	calls int
	out   []domain.PriceQuote
}

func (p *countingProvider) Name() string { return "counting" }

func (p *countingProvider) Fetch(context.Context) ([]domain.PriceQuote, error) {
	p.calls++
	return p.out, nil
}
