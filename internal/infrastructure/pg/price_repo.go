package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agriprice-service/internal/application"
	"agriprice-service/internal/domain"
	infraconfig "agriprice-service/internal/infrastructure/config"
	"agriprice-service/internal/infrastructure/logx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PriceRepo struct{ db *DB }

func NewPriceRepo(db *DB) *PriceRepo { return &PriceRepo{db: db} }

var _ application.PriceRepo = (*PriceRepo)(nil)

const priceColumns = `id::text, day, commodity, district, price, unit, source, observed_at, created_at, updated_at`

func scanPrice(row pgx.Row) (domain.DailyPrice, error) {
	var p domain.DailyPrice
	var commodity, district, unit string
	err := row.Scan(&p.ID, &p.Day, &commodity, &district, &p.Price, &unit,
		&p.Source, &p.ObservedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.DailyPrice{}, err
	}
	p.Commodity = domain.Commodity(commodity)
	p.District = domain.District(district)
	p.Unit = domain.Unit(unit)
	return p, nil
}

// InsertIfAbsent creates the day's row for the quote unless one exists.
// ON CONFLICT DO NOTHING makes losing a concurrent race indistinguishable
// from an ordinary skip, which is exactly the first-writer-wins contract.
func (r *PriceRepo) InsertIfAbsent(ctx context.Context, q domain.PriceQuote) (domain.DailyPrice, bool, error) {
	const ins = `
        INSERT INTO daily_prices (id, day, commodity, district, price, unit, source, observed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (day, commodity, district) DO NOTHING
        RETURNING ` + priceColumns
	id := uuid.NewString()
	rec, err := scanPrice(r.db.Pool.QueryRow(ctx, ins,
		id, q.Day(), string(q.Commodity), string(q.District), q.Price,
		string(q.Unit), q.Source, q.ObservedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DailyPrice{}, false, nil
	}
	if err != nil {
		logx.L().Error("sql.exec_failed",
			zap.String("repo", "price"),
			zap.String("operation", "InsertIfAbsent"),
			zap.Error(err),
		)
		return domain.DailyPrice{}, false, fmt.Errorf("insert daily price: %w", err)
	}
	return rec, true, nil
}

func (r *PriceRepo) Upsert(ctx context.Context, q domain.PriceQuote) (domain.DailyPrice, error) {
	const up = `
        INSERT INTO daily_prices (id, day, commodity, district, price, unit, source, observed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (day, commodity, district) DO UPDATE
          SET price = EXCLUDED.price,
              unit = EXCLUDED.unit,
              source = EXCLUDED.source,
              observed_at = EXCLUDED.observed_at,
              updated_at = now()
        RETURNING ` + priceColumns
	id := uuid.NewString()
	rec, err := scanPrice(r.db.Pool.QueryRow(ctx, up,
		id, q.Day(), string(q.Commodity), string(q.District), q.Price,
		string(q.Unit), q.Source, q.ObservedAt))
	if err != nil {
		logx.L().Error("sql.exec_failed",
			zap.String("repo", "price"),
			zap.String("operation", "Upsert"),
			zap.Error(err),
		)
		return domain.DailyPrice{}, fmt.Errorf("upsert daily price: %w", err)
	}
	return rec, nil
}

func (r *PriceRepo) Today(ctx context.Context) ([]domain.DailyPrice, error) {
	const q = `
        SELECT ` + priceColumns + `
        FROM daily_prices
        WHERE day = $1
        ORDER BY commodity, district`
	rows, err := r.db.Pool.Query(ctx, q, domain.DayStart(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("query today prices: %w", err)
	}
	defer rows.Close()
	return collectPrices(rows)
}

func (r *PriceRepo) History(ctx context.Context, f application.HistoryFilter) ([]domain.DailyPrice, error) {
	days := f.Days
	if days <= 0 {
		days = infraconfig.DefaultHistoryDays
	}
	since := domain.DayStart(time.Now()).AddDate(0, 0, -days)

	q := `SELECT ` + priceColumns + ` FROM daily_prices WHERE day >= $1`
	args := []any{since}
	if f.Commodity != "" {
		args = append(args, string(f.Commodity))
		q += fmt.Sprintf(" AND commodity = $%d", len(args))
	}
	if f.District != "" {
		args = append(args, string(f.District))
		q += fmt.Sprintf(" AND district = $%d", len(args))
	}
	q += " ORDER BY day ASC, commodity, district"

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()
	return collectPrices(rows)
}

func collectPrices(rows pgx.Rows) ([]domain.DailyPrice, error) {
	var out []domain.DailyPrice
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
