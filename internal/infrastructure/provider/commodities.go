package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"

	"agriprice-service/internal/application"
	"agriprice-service/internal/domain"
	"agriprice-service/internal/infrastructure/httpx"
)

const commoditiesLatestPath = "/api/latest"

// hassanPepperDiscount mirrors the small spread the Hassan spot market
// shows against Kodagu in the source feed.
const hassanPepperDiscount = 5

// CommoditiesAPI fetches INR-based commodity rates. The API returns rates as
// "units of commodity per INR", so the quoted price is the rounded inverse.
type CommoditiesAPI struct {
	BaseURL string
	APIKey  string
	Client  *httpx.Client
}

var _ application.PriceProvider = (*CommoditiesAPI)(nil)

type commoditiesResp struct {
	Success bool               `json:"success"`
	Rates   map[string]float64 `json:"rates"`
}

func (p *CommoditiesAPI) Name() string { return "commodities-api" }

func (p *CommoditiesAPI) Fetch(ctx context.Context) ([]domain.PriceQuote, error) {
	if p.BaseURL == "" || p.APIKey == "" {
		return nil, errors.New("commodities-api: missing configuration")
	}

	pepper, err := p.latest(ctx, "BLKPEP")
	if err != nil {
		return nil, err
	}
	coffee, err := p.latest(ctx, "COFFEE")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var quotes []domain.PriceQuote

	if rate, ok := pepper.Rates["BLKPEP"]; pepper.Success && ok && rate > 0 {
		price := int64(math.Round(1 / rate))
		for _, d := range domain.Districts {
			pr := price
			if d == domain.DistrictHassan {
				pr -= hassanPepperDiscount
			}
			quotes = append(quotes, domain.PriceQuote{
				Commodity:  domain.CommodityPepper,
				District:   d,
				Price:      pr,
				Unit:       domain.UnitKG,
				Source:     "Commodities-API",
				ObservedAt: now,
			})
		}
	}

	// The feed has a single coffee symbol; it tracks the robusta market.
	if rate, ok := coffee.Rates["COFFEE"]; coffee.Success && ok && rate > 0 {
		price := int64(math.Round(1 / rate))
		for _, d := range domain.Districts {
			quotes = append(quotes, domain.PriceQuote{
				Commodity:  domain.CommodityRobusta,
				District:   d,
				Price:      price,
				Unit:       domain.UnitBag50KG,
				Source:     "Commodities-API",
				ObservedAt: now,
			})
		}
	}

	return quotes, nil
}

func (p *CommoditiesAPI) latest(ctx context.Context, symbol string) (commoditiesResp, error) {
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return commoditiesResp{}, fmt.Errorf("commodities-api: invalid base url: %w", err)
	}
	u.Path = commoditiesLatestPath
	q := u.Query()
	q.Set("access_key", p.APIKey)
	q.Set("base", "INR")
	q.Set("symbols", symbol)
	u.RawQuery = q.Encode()

	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var out commoditiesResp
	if err := client.GetJSON(ctx, u.String(), &out); err != nil {
		return commoditiesResp{}, fmt.Errorf("commodities-api: fetch %s: %w", symbol, err)
	}
	return out, nil
}
