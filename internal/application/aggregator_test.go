package application

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"agriprice-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func Test_FetchLatestPrices_FallbackCoversAllPairs(t *testing.T) {
	t.Parallel()
	agg := NewAggregator(nil, WithRand(testRand()))

	quotes := agg.FetchLatestPrices(context.Background())
	require.Len(t, quotes, len(domain.Commodities)*len(domain.Districts))

	seen := map[string]bool{}
	for _, q := range quotes {
		require.NoError(t, q.Validate())
		require.Equal(t, domain.SourceBaseline, q.Source)
		seen[string(q.Commodity)+"/"+string(q.District)] = true

		base := domain.Baselines[q.Commodity]
		mod := domain.DistrictModifiers[q.District]
		center := float64(base.Price) * mod
		lo := math.Floor(center * (1 - domain.BaselineVolatility))
		hi := math.Ceil(center * (1 + domain.BaselineVolatility))
		require.GreaterOrEqual(t, float64(q.Price), lo)
		require.LessOrEqual(t, float64(q.Price), hi)
	}
	require.Len(t, seen, len(domain.Commodities)*len(domain.Districts))
}

func Test_FetchLatestPrices_HassanPepperBounds(t *testing.T) {
	t.Parallel()
	// 690 * 0.98 * (1 ± 0.015) rounds into [666, 686].
	for seed := uint64(0); seed < 50; seed++ {
		agg := NewAggregator(nil, WithRand(rand.New(rand.NewPCG(seed, seed))))
		for _, q := range agg.FetchLatestPrices(context.Background()) {
			if q.Commodity == domain.CommodityPepper && q.District == domain.DistrictHassan {
				require.GreaterOrEqual(t, q.Price, int64(666))
				require.LessOrEqual(t, q.Price, int64(686))
			}
		}
	}
}

func Test_FetchLatestPrices_FallbackUsesInjectedClock(t *testing.T) {
	t.Parallel()
	at := time.Date(2026, 8, 28, 6, 30, 0, 0, time.UTC)
	agg := NewAggregator(nil,
		WithRand(testRand()),
		WithAggregatorClock(fakeClock{t: at}),
	)

	quotes := agg.FetchLatestPrices(context.Background())
	require.NotEmpty(t, quotes)
	for _, q := range quotes {
		require.True(t, q.ObservedAt.Equal(at))
		require.Equal(t, domain.DayStart(at), q.Day())
	}
}

func Test_FetchLatestPrices_FailureIsolation(t *testing.T) {
	t.Parallel()
	good := &fakeProvider{name: "good", out: []domain.PriceQuote{
		quote(domain.CommodityArabica, domain.DistrictKodagu, 24000),
	}}
	bad := &fakeProvider{name: "bad", err: errors.New("boom")}

	agg := NewAggregator([]PriceProvider{bad, good}, WithRand(testRand()))
	quotes := agg.FetchLatestPrices(context.Background())

	require.Len(t, quotes, 1)
	require.Equal(t, domain.CommodityArabica, quotes[0].Commodity)
	require.Equal(t, int64(24000), quotes[0].Price)
	require.Equal(t, 1, bad.calls)
}

func Test_FetchLatestPrices_UnionKeepsDuplicatePairs(t *testing.T) {
	t.Parallel()
	a := &fakeProvider{name: "a", out: []domain.PriceQuote{
		quote(domain.CommodityPepper, domain.DistrictKodagu, 700),
	}}
	b := &fakeProvider{name: "b", out: []domain.PriceQuote{
		quote(domain.CommodityPepper, domain.DistrictKodagu, 695),
	}}

	agg := NewAggregator([]PriceProvider{a, b}, WithRand(testRand()))
	quotes := agg.FetchLatestPrices(context.Background())

	// No aggregator-level dedup: both observations survive to the reconciler.
	require.Len(t, quotes, 2)
}

func Test_FetchLatestPrices_StalledProviderTimesOut(t *testing.T) {
	t.Parallel()
	stalled := &fakeProvider{name: "stalled", block: true}
	agg := NewAggregator([]PriceProvider{stalled},
		WithRand(testRand()),
		WithProviderTimeout(20*time.Millisecond),
	)

	done := make(chan []domain.PriceQuote, 1)
	go func() { done <- agg.FetchLatestPrices(context.Background()) }()

	select {
	case quotes := <-done:
		// Stalled provider degrades to the baseline fallback.
		require.Len(t, quotes, len(domain.Commodities)*len(domain.Districts))
	case <-time.After(2 * time.Second):
		t.Fatal("aggregation did not settle after provider timeout")
	}
}

func Test_FetchLatestPrices_AllFailedFallsBack(t *testing.T) {
	t.Parallel()
	a := &fakeProvider{name: "a", err: errors.New("network down")}
	b := &fakeProvider{name: "b", err: errors.New("quota exceeded")}

	agg := NewAggregator([]PriceProvider{a, b}, WithRand(testRand()))
	quotes := agg.FetchLatestPrices(context.Background())

	require.Len(t, quotes, len(domain.Commodities)*len(domain.Districts))
	for _, q := range quotes {
		require.Equal(t, domain.SourceBaseline, q.Source)
	}
}
