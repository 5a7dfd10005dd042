package application

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"agriprice-service/internal/domain"

	"go.uber.org/zap"
)

const defaultProviderTimeout = 8 * time.Second

// Aggregator produces a best-effort set of quotes covering every
// (commodity, district) pair: live provider data when available, baseline
// estimates otherwise.
type Aggregator struct {
	providers []PriceProvider
	timeout   time.Duration
	rnd       *rand.Rand
	clock     Clock
	log       *zap.Logger
}

type AggregatorOption func(*Aggregator)

func WithProviderTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) { a.timeout = d }
}

// WithRand injects the random source used by the baseline fallback.
func WithRand(r *rand.Rand) AggregatorOption {
	return func(a *Aggregator) { a.rnd = r }
}

func WithAggregatorClock(c Clock) AggregatorOption {
	return func(a *Aggregator) { a.clock = c }
}

func WithAggregatorLogger(l *zap.Logger) AggregatorOption {
	return func(a *Aggregator) { a.log = l }
}

func NewAggregator(providers []PriceProvider, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{providers: providers}
	for _, opt := range opts {
		opt(a)
	}
	if a.timeout <= 0 {
		a.timeout = defaultProviderTimeout
	}
	if a.rnd == nil {
		now := uint64(time.Now().UnixNano())
		a.rnd = rand.New(rand.NewPCG(now, now>>32))
	}
	if a.clock == nil {
		a.clock = realClock{}
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	return a
}

// FetchLatestPrices fans out to all configured providers concurrently and
// returns the union of their quotes. Provider failures are logged and treated
// as empty results; they never abort the other calls. When the union is empty
// the baseline fallback guarantees one quote per (commodity, district) pair,
// so the method never fails and never returns an empty slice.
func (a *Aggregator) FetchLatestPrices(ctx context.Context) []domain.PriceQuote {
	var (
		mu    sync.Mutex
		union []domain.PriceQuote
		wg    sync.WaitGroup
	)

	for _, p := range a.providers {
		wg.Add(1)
		go func(p PriceProvider) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			quotes, err := p.Fetch(pctx)
			if err != nil {
				a.log.Warn("provider.fetch_failed",
					zap.String("provider", p.Name()),
					zap.Error(err),
				)
				return
			}
			a.log.Info("provider.fetch_ok",
				zap.String("provider", p.Name()),
				zap.Int("quotes", len(quotes)),
			)
			mu.Lock()
			union = append(union, quotes...)
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	if len(union) > 0 {
		return union
	}
	a.log.Info("aggregator.fallback_baseline")
	return a.baselineQuotes()
}

// baselineQuotes synthesizes one quote per (commodity, district) pair from
// the baseline table with a bounded random jitter.
func (a *Aggregator) baselineQuotes() []domain.PriceQuote {
	now := a.clock.Now()
	out := make([]domain.PriceQuote, 0, len(domain.Districts)*len(domain.Commodities))
	for _, district := range domain.Districts {
		modifier := domain.DistrictModifiers[district]
		for _, commodity := range domain.Commodities {
			base := domain.Baselines[commodity]
			shift := 1 + (a.rnd.Float64()*2-1)*domain.BaselineVolatility
			price := int64(math.Round(float64(base.Price) * modifier * shift))

			out = append(out, domain.PriceQuote{
				Commodity:  commodity,
				District:   district,
				Price:      price,
				Unit:       base.Unit,
				Source:     domain.SourceBaseline,
				ObservedAt: now,
			})
		}
	}
	return out
}
