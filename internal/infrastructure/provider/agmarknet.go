package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"agriprice-service/internal/application"
	"agriprice-service/internal/domain"
	"agriprice-service/internal/infrastructure/httpx"
)

const agmarknetPricesPath = "/prices"

// Agmarknet fetches mandi prices from the Agmarknet API and normalizes them
// into the closed commodity/district enums. Rows that do not map to a tracked
// pair are dropped at this boundary.
type Agmarknet struct {
	BaseURL string
	APIKey  string
	Client  *httpx.Client
}

var _ application.PriceProvider = (*Agmarknet)(nil)

type agmarknetItem struct {
	CommodityName  string `json:"commodity_name"`
	MarketLocation string `json:"market_location"`
	ModalPrice     string `json:"modal_price"`
	Unit           string `json:"unit,omitempty"`
	ArrivalDate    string `json:"arrival_date"`
}

func (p *Agmarknet) Name() string { return "agmarknet" }

func (p *Agmarknet) Fetch(ctx context.Context) ([]domain.PriceQuote, error) {
	if p.BaseURL == "" || p.APIKey == "" {
		return nil, errors.New("agmarknet: missing configuration")
	}

	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}
	client.Token = p.APIKey

	var items []agmarknetItem
	if err := client.GetJSON(ctx, p.BaseURL+agmarknetPricesPath, &items); err != nil {
		return nil, fmt.Errorf("agmarknet: fetch prices: %w", err)
	}

	quotes := make([]domain.PriceQuote, 0, len(items))
	for _, it := range items {
		commodity, ok := mapAgmarknetCommodity(it.CommodityName)
		if !ok {
			continue
		}
		district, ok := mapAgmarknetDistrict(it.MarketLocation)
		if !ok {
			continue
		}
		raw, err := strconv.ParseFloat(it.ModalPrice, 64)
		if err != nil || raw <= 0 {
			continue
		}
		quotes = append(quotes, domain.PriceQuote{
			Commodity:  commodity,
			District:   district,
			Price:      int64(math.Round(raw)),
			Unit:       mapAgmarknetUnit(it.Unit),
			Source:     "Agmarknet",
			ObservedAt: parseArrivalDate(it.ArrivalDate),
		})
	}
	return quotes, nil
}

func mapAgmarknetCommodity(name string) (domain.Commodity, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	switch {
	case strings.Contains(n, "ARABICA"):
		return domain.CommodityArabica, true
	case strings.Contains(n, "ROBUSTA"):
		return domain.CommodityRobusta, true
	case strings.Contains(n, "PEPPER"):
		return domain.CommodityPepper, true
	}
	return "", false
}

func mapAgmarknetDistrict(location string) (domain.District, bool) {
	l := strings.ToUpper(strings.TrimSpace(location))
	switch {
	case strings.Contains(l, "KODAGU"), strings.Contains(l, "MADIKERI"):
		return domain.DistrictKodagu, true
	case strings.Contains(l, "HASSAN"):
		return domain.DistrictHassan, true
	}
	return "", false
}

func mapAgmarknetUnit(unit string) domain.Unit {
	switch strings.ToUpper(strings.TrimSpace(unit)) {
	case "KG":
		return domain.UnitKG
	case "50KG", "50 KG", "BAG":
		return domain.UnitBag50KG
	default:
		// Agmarknet modal prices are quoted per quintal unless stated.
		return domain.UnitQuintal
	}
}

func parseArrivalDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02", "02/01/2006", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}
