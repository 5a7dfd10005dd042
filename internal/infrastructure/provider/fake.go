package provider

import (
	"context"
	"time"

	"agriprice-service/internal/application"
	"agriprice-service/internal/domain"
)

var _ application.PriceProvider = (*Fake)(nil)

// Fake returns one canned quote per tracked pair; used in dev and tests.
type Fake struct {
	price int64
}

func NewFake(price int64) *Fake { return &Fake{price: price} }

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Fetch(context.Context) ([]domain.PriceQuote, error) {
	now := time.Now().UTC()
	var out []domain.PriceQuote
	for _, d := range domain.Districts {
		for _, c := range domain.Commodities {
			out = append(out, domain.PriceQuote{
				Commodity:  c,
				District:   d,
				Price:      f.price,
				Unit:       domain.Baselines[c].Unit,
				Source:     "fake",
				ObservedAt: now,
			})
		}
	}
	return out, nil
}
