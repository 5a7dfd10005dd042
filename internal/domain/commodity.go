package domain

type Commodity string

const (
	CommodityArabica Commodity = "COFFEE_ARABICA"
	CommodityRobusta Commodity = "COFFEE_ROBUSTA"
	CommodityPepper  Commodity = "PEPPER"
)

// Commodities lists every tracked commodity in stable order.
var Commodities = []Commodity{CommodityArabica, CommodityRobusta, CommodityPepper}

var commodityNames = map[Commodity]string{
	CommodityArabica: "Coffee (Arabica)",
	CommodityRobusta: "Coffee (Robusta)",
	CommodityPepper:  "Black Pepper",
}

func (c Commodity) Valid() bool {
	_, ok := commodityNames[c]
	return ok
}

// DisplayName returns the human-readable commodity name.
func (c Commodity) DisplayName() string {
	return commodityNames[c]
}

type Unit string

const (
	UnitKG      Unit = "KG"
	UnitBag50KG Unit = "50KG"
	UnitQuintal Unit = "QUINTAL"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitKG, UnitBag50KG, UnitQuintal:
		return true
	}
	return false
}
