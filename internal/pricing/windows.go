package pricing

import "github.com/shopspring/decimal"

type WindowsResult struct {
	PricePerWindow    decimal.Decimal `json:"pricePerWindow"`
	FloorSurcharge    decimal.Decimal `json:"floorSurcharge"`
	WindowsBase       decimal.Decimal `json:"windowsBase"`
	BalconyDoorsTotal decimal.Decimal `json:"balconyDoorsTotal"`
	SkylightsTotal    decimal.Decimal `json:"skylightsTotal"`
	FramesTotal       decimal.Decimal `json:"framesTotal"`
	SillsTotal        decimal.Decimal `json:"sillsTotal"`
	BasePrice         decimal.Decimal `json:"basePrice"`
}

// CalculateWindows prices a window washing job. The floor surcharge is added
// per window; skylights carry it a second time on top of 1.5 windows.
func (r Rates) CalculateWindows(in WindowsInput) (WindowsResult, error) {
	if in.WindowCount < 1 {
		return WindowsResult{}, invalidInput("window count must be at least 1, got %d", in.WindowCount)
	}
	if err := requireNonNegativeCount("balcony doors", in.BalconyDoors); err != nil {
		return WindowsResult{}, err
	}
	if err := requireNonNegativeCount("skylights", in.Skylights); err != nil {
		return WindowsResult{}, err
	}

	wr := r.Windows
	factor, ok := wr.SideFactor[in.Side]
	if !ok {
		return WindowsResult{}, unknownEnum("window side", string(in.Side))
	}
	floor, ok := wr.FloorSurcharge[in.FloorLevel]
	if !ok {
		return WindowsResult{}, unknownEnum("floor level", string(in.FloorLevel))
	}

	count := decimal.NewFromInt(int64(in.WindowCount))
	perWindow := wr.BasePerWindow.Mul(factor).Add(floor)

	res := WindowsResult{
		PricePerWindow:    perWindow,
		FloorSurcharge:    floor,
		WindowsBase:       count.Mul(perWindow),
		BalconyDoorsTotal: decimal.NewFromInt(int64(in.BalconyDoors)).Mul(wr.BalconyDoorFactor.Mul(perWindow)),
		SkylightsTotal:    decimal.NewFromInt(int64(in.Skylights)).Mul(wr.SkylightFactor.Mul(perWindow).Add(floor)),
		FramesTotal:       decimal.Zero,
		SillsTotal:        decimal.Zero,
	}
	if in.FramesCleaning {
		res.FramesTotal = count.Mul(wr.FramesUnitPrice)
	}
	if in.SillsCleaning {
		res.SillsTotal = count.Mul(wr.SillsUnitPrice)
	}

	res.BasePrice = res.WindowsBase.
		Add(res.BalconyDoorsTotal).
		Add(res.SkylightsTotal).
		Add(res.FramesTotal).
		Add(res.SillsTotal)
	return res, nil
}
