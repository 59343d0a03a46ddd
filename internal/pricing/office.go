package pricing

import "github.com/shopspring/decimal"

type OfficeResult struct {
	OfficeBasePrice     decimal.Decimal `json:"officeBasePrice"`
	PrivateOfficesExtra decimal.Decimal `json:"privateOfficesExtra"`
	CommonAreasExtra    decimal.Decimal `json:"commonAreasExtra"`
	BathroomsExtra      decimal.Decimal `json:"bathroomsExtra"`
	KitchenetteExtra    decimal.Decimal `json:"kitchenetteExtra"`
	SuppliesExtra       decimal.Decimal `json:"suppliesExtra"`
	TrashExtra          decimal.Decimal `json:"trashExtra"`
	RecyclingExtra      decimal.Decimal `json:"recyclingExtra"`
	NoElevatorSurcharge decimal.Decimal `json:"noElevatorSurcharge"`
	BasePrice           decimal.Decimal `json:"basePrice"`
}

// CalculateOffice prices commercial cleaning. Stairs-only access to more than
// one floor adds a percentage on the accumulated subtotal.
func (r Rates) CalculateOffice(in OfficeInput) (OfficeResult, error) {
	if err := requirePositive("office size", in.PropertySize); err != nil {
		return OfficeResult{}, err
	}
	counts := []struct {
		name string
		n    int
	}{
		{"private offices", in.PrivateOffices},
		{"bathrooms", in.Bathrooms},
		{"floor count", in.FloorCount},
	}
	for _, c := range counts {
		if err := requireNonNegativeCount(c.name, c.n); err != nil {
			return OfficeResult{}, err
		}
	}

	rates := r.Office
	typeMul, ok := rates.TypeMultiplier[in.OfficeType]
	if !ok {
		return OfficeResult{}, unknownEnum("office type", string(in.OfficeType))
	}
	timeMul, ok := rates.TimeMultiplier[in.CleaningTime]
	if !ok {
		return OfficeResult{}, unknownEnum("cleaning time", string(in.CleaningTime))
	}

	res := OfficeResult{
		OfficeBasePrice:     in.PropertySize.Mul(rates.BasePerArea).Mul(typeMul).Mul(timeMul),
		PrivateOfficesExtra: decimal.NewFromInt(int64(in.PrivateOffices)).Mul(rates.PerPrivateOffice),
		CommonAreasExtra:    flat(in.CommonAreas, rates.CommonAreas),
		BathroomsExtra:      decimal.NewFromInt(int64(in.Bathrooms)).Mul(rates.PerBathroom),
		KitchenetteExtra:    flat(in.Kitchenette, rates.Kitchenette),
		TrashExtra:          flat(in.TrashRemoval, rates.TrashRemoval),
		RecyclingExtra:      flat(in.RecyclingManagement, rates.Recycling),
		NoElevatorSurcharge: decimal.Zero,
	}
	switch in.Supplies {
	case SuppliesWeProvide:
		res.SuppliesExtra = rates.Supplies
	case SuppliesClientProvided, "":
		res.SuppliesExtra = decimal.Zero
	default:
		return OfficeResult{}, unknownEnum("supplies", string(in.Supplies))
	}

	subtotal := res.OfficeBasePrice.
		Add(res.PrivateOfficesExtra).
		Add(res.CommonAreasExtra).
		Add(res.BathroomsExtra).
		Add(res.KitchenetteExtra).
		Add(res.SuppliesExtra).
		Add(res.TrashExtra).
		Add(res.RecyclingExtra)

	if in.FloorCount > 1 && !in.ElevatorAccess {
		res.NoElevatorSurcharge = subtotal.Mul(rates.NoElevatorSurchargePc).Div(hundred)
	}
	res.BasePrice = subtotal.Add(res.NoElevatorSurcharge)
	return res, nil
}

func flat(enabled bool, price decimal.Decimal) decimal.Decimal {
	if enabled {
		return price
	}
	return decimal.Zero
}
