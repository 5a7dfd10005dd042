package domain

import (
	"fmt"
	"time"
)

// PriceQuote is a single not-yet-persisted price observation for one
// commodity/district pair. Quotes only live for the duration of one
// aggregation pass.
type PriceQuote struct {
	Commodity  Commodity
	District   District
	Price      int64
	Unit       Unit
	Source     string
	ObservedAt time.Time
}

func (q PriceQuote) Validate() error {
	if !q.Commodity.Valid() {
		return fmt.Errorf("%w: commodity %q", ErrInvalidQuote, q.Commodity)
	}
	if !q.District.Valid() {
		return fmt.Errorf("%w: district %q", ErrInvalidQuote, q.District)
	}
	if q.Price <= 0 {
		return fmt.Errorf("%w: price %d", ErrInvalidQuote, q.Price)
	}
	if !q.Unit.Valid() {
		return fmt.Errorf("%w: unit %q", ErrInvalidQuote, q.Unit)
	}
	if q.Source == "" {
		return fmt.Errorf("%w: empty source", ErrInvalidQuote)
	}
	return nil
}

// Day returns the UTC calendar day the quote belongs to for dedup purposes.
func (q PriceQuote) Day() time.Time {
	return DayStart(q.ObservedAt)
}

// DailyPrice is the durable per-day price record owned by the store.
type DailyPrice struct {
	ID         string
	Day        time.Time
	Commodity  Commodity
	District   District
	Price      int64
	Unit       Unit
	Source     string
	ObservedAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DayStart truncates t to the start of its calendar day in UTC. All
// day-boundary math in the system goes through here so the dedup key is
// computed consistently regardless of the machine timezone.
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
