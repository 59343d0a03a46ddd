package pricing

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func date(s string) *Date {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return NewDate(t)
}

func regularRequest(size string) PriceRequest {
	return PriceRequest{
		ServiceType:      ServiceRegular,
		PricePerAreaUnit: d("0.8"),
		PropertyType:     PropertyApartment,
		PropertySize:     d(size),
		Frequency:        FrequencyOnce,
		DistanceKm:       decimal.Zero,
	}
}

func TestCalculate_RegularApartment(t *testing.T) {
	pb, err := NewDefaultCalculator().Calculate(regularRequest("60"))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	assertAmount(t, "effective area", pb.EffectiveArea, "60")
	assertAmount(t, "base", pb.BasePrice, "48")
	assertAmount(t, "discount", pb.FrequencyDiscount, "0")
	assertAmount(t, "total", pb.Total, "48")
	assertAmount(t, "vat", pb.VATAmount, "9.6")
	assertAmount(t, "net", pb.NetAmount, "38.4")
}

func TestCalculate_MinimumFloorForSmallHouse(t *testing.T) {
	req := regularRequest("20")
	req.PropertyType = PropertyHouse

	pb, err := NewDefaultCalculator().Calculate(req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	assertAmount(t, "effective area", pb.EffectiveArea, "23")
	assertAmount(t, "base", pb.BasePrice, "30")
}

func TestCalculate_DiscountIncludesDistanceFee(t *testing.T) {
	// 80 base + 20 linear distance fee (50 km) = 100 subtotal.
	calc := NewCalculator(DefaultRates(), LinearDistance)
	req := PriceRequest{
		ServiceType:      ServiceRegular,
		PricePerAreaUnit: d("1"),
		PropertyType:     PropertyApartment,
		PropertySize:     d("80"),
		Frequency:        FrequencyWeekly,
		DistanceKm:       d("50"),
	}

	pb, err := calc.Calculate(req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	assertAmount(t, "distance fee", pb.DistanceFee, "20")
	assertAmount(t, "subtotal", pb.SubtotalPreSurcharge, "100")
	assertAmount(t, "discount", pb.FrequencyDiscount, "10")
	assertAmount(t, "total", pb.Total, "90")
}

func dailyRental(day string, freq Frequency) PriceRequest {
	return PriceRequest{
		ServiceType:   ServiceDailyRental,
		PropertyType:  PropertyApartment,
		PropertySize:  d("80"),
		BookingVolume: VolumeOccasional,
		Frequency:     freq,
		Date:          date(day),
	}
}

func TestCalculate_DailyRentalWeekend(t *testing.T) {
	pb, err := NewDefaultCalculator().Calculate(dailyRental("2024-03-16", FrequencyOnce))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	assertAmount(t, "subtotal", pb.SubtotalPreSurcharge, "80")
	assertAmount(t, "weekend", pb.WeekendSurcharge, "16")
	assertAmount(t, "holiday", pb.HolidaySurcharge, "0")
	assertAmount(t, "total", pb.Total, "96")
}

func TestCalculate_DailyRentalHolidayOnWeekend(t *testing.T) {
	// 1 November 2025 is a Saturday and All Saints' Day.
	pb, err := NewDefaultCalculator().Calculate(dailyRental("2025-11-01", FrequencyOnce))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	assertAmount(t, "weekend", pb.WeekendSurcharge, "16")
	assertAmount(t, "holiday", pb.HolidaySurcharge, "24")
	assertAmount(t, "total", pb.Total, "120")
}

func TestCalculate_SurchargeOnlyForDailyRental(t *testing.T) {
	req := regularRequest("60")
	req.Date = date("2024-03-16")

	pb, err := NewDefaultCalculator().Calculate(req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	assertAmount(t, "weekend", pb.WeekendSurcharge, "0")
}

func TestCalculate_DiscountNotAffectedBySurcharge(t *testing.T) {
	calc := NewDefaultCalculator()
	friday, err := calc.Calculate(dailyRental("2024-03-15", FrequencyWeekly))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	saturday, err := calc.Calculate(dailyRental("2024-03-16", FrequencyWeekly))
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if !friday.FrequencyDiscount.Equal(saturday.FrequencyDiscount) {
		t.Errorf("discount changed with surcharge: %s vs %s", friday.FrequencyDiscount, saturday.FrequencyDiscount)
	}
	if !saturday.WeekendSurcharge.IsPositive() {
		t.Errorf("expected a weekend surcharge on Saturday")
	}
}

func TestCalculate_DailyRentalVolumeRate(t *testing.T) {
	tests := []struct {
		volume BookingVolume
		want   string
	}{
		{VolumeVeryFrequent, "50"},
		{VolumeFrequent, "80"},
		{VolumeOccasional, "100"},
		{"", "100"},
	}
	for _, tt := range tests {
		req := dailyRental("2024-03-13", FrequencyOnce)
		req.PropertySize = d("100")
		req.BookingVolume = tt.volume
		req.PricePerAreaUnit = d("9") // ignored for daily rental

		pb, err := NewDefaultCalculator().Calculate(req)
		if err != nil {
			t.Fatalf("volume %q: %v", tt.volume, err)
		}
		assertAmount(t, "base for "+string(tt.volume), pb.BasePrice, tt.want)
	}
}

func TestCalculate_LastCleanedOnlyForStandardAndDeep(t *testing.T) {
	calc := NewDefaultCalculator()

	standard := regularRequest("100")
	standard.ServiceType = ServiceStandard
	standard.PricePerAreaUnit = d("1")
	standard.LastCleaned = LastCleaned6To12Months
	pb, err := calc.Calculate(standard)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	assertAmount(t, "standard base", pb.BasePrice, "150")

	regular := regularRequest("100")
	regular.LastCleaned = LastCleanedOver12Months
	pb, err = calc.Calculate(regular)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	assertAmount(t, "regular base", pb.BasePrice, "80")
}

func TestCalculate_ExtrasAndOutdoor(t *testing.T) {
	rates := DefaultRates()
	oven, _ := rates.CatalogExtra("oven", 2)
	garden, _ := rates.CatalogAreaService("garden", d("20"))
	terrace, _ := rates.CatalogAreaService("terrace", d("40"))

	req := regularRequest("60")
	req.Extras = []Extra{oven, {ID: "fridge", Quantity: 0, UnitPrice: d("20")}}
	req.OutdoorService = []AreaService{garden, terrace, {ID: "garage", Area: decimal.Zero, PricePerUnit: d("1")}}

	pb, err := NewDefaultCalculator().Calculate(req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	assertAmount(t, "extras", pb.ExtrasTotal, "50")
	if _, ok := pb.Extras["fridge"]; ok {
		t.Errorf("zero quantity extra should not be itemised")
	}
	g := pb.OutdoorServices["garden"]
	if !g.MinimumApplied {
		t.Errorf("garden: expected minimum price to apply")
	}
	assertAmount(t, "garden", g.Total, "30")
	if pb.OutdoorServices["terrace"].MinimumApplied {
		t.Errorf("terrace: minimum should not apply")
	}
	assertAmount(t, "outdoor", pb.OutdoorTotal, "90")
	assertAmount(t, "total", pb.Total, "188")
}

func TestCalculate_RepeatedOutdoorServiceMerged(t *testing.T) {
	req := regularRequest("60")
	req.OutdoorService = []AreaService{
		{ID: "terrace", Area: d("10"), PricePerUnit: d("3")},
		{ID: "terrace", Area: d("20"), PricePerUnit: d("3")},
	}

	pb, err := NewDefaultCalculator().Calculate(req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if len(pb.OutdoorServices) != 1 {
		t.Fatalf("got %d outdoor lines, want 1", len(pb.OutdoorServices))
	}
	line := pb.OutdoorServices["terrace"]
	assertAmount(t, "terrace area", line.Area, "30")
	assertAmount(t, "terrace", line.Total, "90")
	assertAmount(t, "outdoor", pb.OutdoorTotal, "90")

	sum := decimal.Zero
	for _, item := range pb.LineItems(LocaleEN) {
		if strings.HasPrefix(item.Key, "outdoor:") {
			sum = sum.Add(item.Amount)
		}
	}
	assertAmount(t, "outdoor line items", sum, "90")
}

func TestCalculate_RepeatedOutdoorMinimumAppliesOnce(t *testing.T) {
	req := regularRequest("60")
	req.OutdoorService = []AreaService{
		{ID: "garden", Area: d("10"), PricePerUnit: d("0.5"), MinPrice: d("30")},
		{ID: "garden", Area: d("10"), PricePerUnit: d("0.5"), MinPrice: d("30")},
	}

	pb, err := NewDefaultCalculator().Calculate(req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	assertAmount(t, "outdoor", pb.OutdoorTotal, "30")
	if !pb.OutdoorServices["garden"].MinimumApplied {
		t.Errorf("garden: expected minimum price to apply")
	}
}

func TestCalculate_RentalFeatures(t *testing.T) {
	req := dailyRental("2024-03-13", FrequencyOnce)
	req.ServiceType = ServiceVacationRental
	req.PricePerAreaUnit = d("1.2")
	req.Rental = &RentalFeatures{
		Turnaround:   TurnaroundExtended,
		Laundry:      true,
		Emergency247: true,
	}

	pb, err := NewDefaultCalculator().Calculate(req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	assertAmount(t, "rental adjustment", pb.RentalAdjustment, "50")
	assertAmount(t, "total", pb.Total, "146")
}

func TestCalculate_Windows(t *testing.T) {
	req := PriceRequest{
		ServiceType: ServiceWindows,
		Frequency:   FrequencyOnce,
		Windows: &WindowsInput{
			WindowCount:    10,
			Side:           WindowsBoth,
			FloorLevel:     FloorGround,
			FramesCleaning: true,
			SillsCleaning:  true,
		},
	}

	pb, err := NewDefaultCalculator().Calculate(req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	assertAmount(t, "windows base", pb.Windows.WindowsBase, "50")
	assertAmount(t, "frames", pb.Windows.FramesTotal, "15")
	assertAmount(t, "sills", pb.Windows.SillsTotal, "10")
	assertAmount(t, "base", pb.BasePrice, "75")
}

func TestCalculate_OfficeUsesCommercialDiscount(t *testing.T) {
	req := PriceRequest{
		ServiceType: ServiceOffice,
		Frequency:   FrequencyDaily,
		Office: &OfficeInput{
			PropertySize: d("100"),
			OfficeType:   OfficeSingle,
			CleaningTime: CleaningBusinessHours,
			FloorCount:   3,
		},
	}

	pb, err := NewDefaultCalculator().Calculate(req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	assertAmount(t, "base", pb.BasePrice, "132")
	assertAmount(t, "discount percent", pb.DiscountPercent, "20")
	assertAmount(t, "total", pb.Total, "105.6")
}

func TestCalculate_DailyFrequencyRejectedForResidential(t *testing.T) {
	req := regularRequest("60")
	req.Frequency = FrequencyDaily

	_, err := NewDefaultCalculator().Calculate(req)
	if !errors.Is(err, ErrUnknownEnumValue) {
		t.Fatalf("expected ErrUnknownEnumValue, got %v", err)
	}
}

func TestCalculate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PriceRequest)
		want   error
	}{
		{"windows without input", func(r *PriceRequest) { r.ServiceType = ServiceWindows }, ErrInvalidServiceConfiguration},
		{"office without input", func(r *PriceRequest) { r.ServiceType = ServiceOffice }, ErrInvalidServiceConfiguration},
		{"office input on regular", func(r *PriceRequest) { r.Office = &OfficeInput{} }, ErrInvalidServiceConfiguration},
		{"rental features on regular", func(r *PriceRequest) { r.Rental = &RentalFeatures{} }, ErrInvalidServiceConfiguration},
		{"negative size", func(r *PriceRequest) { r.PropertySize = d("-1") }, ErrInvalidInput},
		{"zero size", func(r *PriceRequest) { r.PropertySize = decimal.Zero }, ErrInvalidInput},
		{"zero rate", func(r *PriceRequest) { r.PricePerAreaUnit = decimal.Zero }, ErrInvalidInput},
		{"negative distance", func(r *PriceRequest) { r.DistanceKm = d("-3") }, ErrInvalidInput},
		{"negative quantity", func(r *PriceRequest) {
			r.Extras = []Extra{{ID: "oven", Quantity: -1, UnitPrice: d("25")}}
		}, ErrInvalidInput},
		{"negative area", func(r *PriceRequest) {
			r.OutdoorService = []AreaService{{ID: "garden", Area: d("-5")}}
		}, ErrInvalidInput},
		{"negative size on windows", func(r *PriceRequest) {
			r.ServiceType = ServiceWindows
			r.PropertySize = d("-50")
			r.Windows = &WindowsInput{WindowCount: 4, Side: WindowsBoth, FloorLevel: FloorGround}
		}, ErrInvalidInput},
		{"negative size on office", func(r *PriceRequest) {
			r.ServiceType = ServiceOffice
			r.PropertySize = d("-50")
			r.Office = &OfficeInput{PropertySize: d("100"), OfficeType: OfficeSingle, CleaningTime: CleaningBusinessHours}
		}, ErrInvalidInput},
		{"unknown service", func(r *PriceRequest) { r.ServiceType = "spa" }, ErrUnknownEnumValue},
		{"unknown property", func(r *PriceRequest) { r.PropertyType = "castle" }, ErrUnknownEnumValue},
		{"unknown frequency", func(r *PriceRequest) { r.Frequency = "hourly" }, ErrUnknownEnumValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := regularRequest("60")
			tt.mutate(&req)
			pb, err := NewDefaultCalculator().Calculate(req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got error %v, want %v", err, tt.want)
			}
			if pb != nil {
				t.Errorf("expected no breakdown on error")
			}
		})
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	calc := NewDefaultCalculator()
	req := dailyRental("2025-11-01", FrequencyMonthly)
	req.Rental = &RentalFeatures{Turnaround: TurnaroundExpress, GuestWelcome: true}
	req.DistanceKm = d("17.3")

	first, err := calc.Calculate(req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	second, err := calc.Calculate(req)
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("breakdowns differ:\n%+v\n%+v", first, second)
	}
}

func TestCalculate_Invariants(t *testing.T) {
	calc := NewDefaultCalculator()
	services := []ServiceType{
		ServiceRegular, ServiceStandard, ServiceDeep, ServicePostRenovation,
		ServiceMoveInOut, ServiceDailyRental, ServiceVacationRental,
	}
	sizes := []string{"1", "12.5", "37", "60", "145.75", "400"}
	days := []string{"2025-11-01", "2025-06-19", "2024-03-13"}
	tolerance := d("0.01")

	for _, svc := range services {
		prevBase := decimal.Zero
		for _, size := range sizes {
			for _, day := range days {
				req := PriceRequest{
					ServiceType:      svc,
					PricePerAreaUnit: calc.Rates().BaseRate[svc],
					PropertyType:     PropertyHouse,
					PropertySize:     d(size),
					Frequency:        FrequencyBiweekly,
					DistanceKm:       d("23"),
					Date:             date(day),
				}
				pb, err := calc.Calculate(req)
				if err != nil {
					t.Fatalf("%s %s: %v", svc, size, err)
				}

				if pb.BasePrice.LessThan(calc.Rates().minimumFor(svc)) {
					t.Errorf("%s %s: base %s below minimum", svc, size, pb.BasePrice)
				}
				want := pb.SubtotalPreSurcharge.Add(pb.WeekendSurcharge).Add(pb.HolidaySurcharge).Sub(pb.FrequencyDiscount)
				if !pb.Total.Equal(want) {
					t.Errorf("%s %s: total %s != decomposition %s", svc, size, pb.Total, want)
				}
				if pb.NetAmount.Add(pb.VATAmount).Sub(pb.Total).Abs().GreaterThan(tolerance) {
					t.Errorf("%s %s: net+vat != total", svc, size)
				}
				if pb.BasePrice.LessThan(prevBase) {
					t.Errorf("%s: base decreased from %s to %s at size %s", svc, prevBase, pb.BasePrice, size)
				}
				prevBase = pb.BasePrice
			}
		}
	}
}

func TestPropertyMultiplierTotality(t *testing.T) {
	rates := DefaultRates()
	for _, pt := range []PropertyType{PropertyApartment, PropertyHouse, PropertyOffice} {
		if _, err := rates.PropertyMultiplierFor(pt); err != nil {
			t.Errorf("%s: %v", pt, err)
		}
	}
	if len(rates.PropertyMultiplier) != 3 {
		t.Errorf("expected exactly 3 property multipliers, got %d", len(rates.PropertyMultiplier))
	}
	if _, err := rates.PropertyMultiplierFor("boat"); !errors.Is(err, ErrUnknownEnumValue) {
		t.Errorf("expected ErrUnknownEnumValue for unknown property type, got %v", err)
	}
}
