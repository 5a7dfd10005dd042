package domain

type District string

const (
	DistrictKodagu District = "KODAGU"
	DistrictHassan District = "HASSAN"
)

// Districts lists every tracked market district in stable order.
var Districts = []District{DistrictKodagu, DistrictHassan}

var districtNames = map[District]string{
	DistrictKodagu: "Kodagu",
	DistrictHassan: "Hassan",
}

func (d District) Valid() bool {
	_, ok := districtNames[d]
	return ok
}

func (d District) DisplayName() string {
	return districtNames[d]
}
