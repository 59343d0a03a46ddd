package pricing

import "github.com/shopspring/decimal"

// AreaRate is a catalog entry for an outdoor service priced per m².
type AreaRate struct {
	PricePerUnit decimal.Decimal
	MinPrice     decimal.Decimal
}

type WindowsRates struct {
	BasePerWindow     decimal.Decimal
	SideFactor        map[WindowSide]decimal.Decimal
	FloorSurcharge    map[FloorLevel]decimal.Decimal
	FramesUnitPrice   decimal.Decimal
	SillsUnitPrice    decimal.Decimal
	BalconyDoorFactor decimal.Decimal
	SkylightFactor    decimal.Decimal
}

type OfficeRates struct {
	BasePerArea           decimal.Decimal
	TypeMultiplier        map[OfficeType]decimal.Decimal
	TimeMultiplier        map[CleaningTime]decimal.Decimal
	PerPrivateOffice      decimal.Decimal
	CommonAreas           decimal.Decimal
	PerBathroom           decimal.Decimal
	Kitchenette           decimal.Decimal
	Supplies              decimal.Decimal
	TrashRemoval          decimal.Decimal
	Recycling             decimal.Decimal
	NoElevatorSurchargePc decimal.Decimal
}

type RentalRates struct {
	Turnaround     map[Turnaround]decimal.Decimal
	Laundry        decimal.Decimal
	SuppliesRefill decimal.Decimal
	InventoryCheck decimal.Decimal
	GuestWelcome   decimal.Decimal
	Emergency247   decimal.Decimal
}

// Rates holds every static table the calculators read. A Rates value is
// never mutated after construction, so it is safe to share.
type Rates struct {
	BaseRate             map[ServiceType]decimal.Decimal
	RegularMinimum       decimal.Decimal
	DefaultMinimum       decimal.Decimal
	PropertyMultiplier   map[PropertyType]decimal.Decimal
	ResidentialDiscount  map[Frequency]decimal.Decimal // percent
	CommercialDiscount   map[Frequency]decimal.Decimal // percent
	DailyRentalRate      map[BookingVolume]decimal.Decimal
	LastCleanedFactor    map[LastCleaned]decimal.Decimal
	IndoorExtras         map[string]decimal.Decimal
	OutdoorServices      map[string]AreaRate
	WeekendSurchargeRate decimal.Decimal
	HolidaySurchargeRate decimal.Decimal
	VATShareOfGross      decimal.Decimal

	Rental  RentalRates
	Windows WindowsRates
	Office  OfficeRates
}

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// DefaultRates returns the published Uredno price list.
func DefaultRates() Rates {
	return Rates{
		BaseRate: map[ServiceType]decimal.Decimal{
			ServiceRegular:        dec(0.8),
			ServiceStandard:       dec(1.0),
			ServiceDeep:           dec(1.5),
			ServicePostRenovation: dec(2.0),
			ServiceMoveInOut:      dec(1.8),
			ServiceDailyRental:    dec(1.0),
			ServiceVacationRental: dec(1.2),
		},
		RegularMinimum: dec(30),
		DefaultMinimum: dec(40),
		PropertyMultiplier: map[PropertyType]decimal.Decimal{
			PropertyApartment: dec(1.0),
			PropertyHouse:     dec(1.15),
			PropertyOffice:    dec(1.1),
		},
		ResidentialDiscount: map[Frequency]decimal.Decimal{
			FrequencyOnce:     dec(0),
			FrequencyWeekly:   dec(10),
			FrequencyBiweekly: dec(7),
			FrequencyMonthly:  dec(5),
		},
		CommercialDiscount: map[Frequency]decimal.Decimal{
			FrequencyOnce:     dec(0),
			FrequencyDaily:    dec(20),
			FrequencyWeekly:   dec(15),
			FrequencyBiweekly: dec(10),
			FrequencyMonthly:  dec(5),
		},
		DailyRentalRate: map[BookingVolume]decimal.Decimal{
			VolumeVeryFrequent: dec(0.5),
			VolumeFrequent:     dec(0.8),
			VolumeOccasional:   dec(1.0),
		},
		LastCleanedFactor: map[LastCleaned]decimal.Decimal{
			LastCleanedUnderMonth:   dec(1.0),
			LastCleaned1To3Months:   dec(1.15),
			LastCleaned3To6Months:   dec(1.3),
			LastCleaned6To12Months:  dec(1.5),
			LastCleanedOver12Months: dec(1.75),
		},
		IndoorExtras: map[string]decimal.Decimal{
			"oven":            dec(25),
			"fridge":          dec(20),
			"inside_cabinets": dec(20),
			"balcony":         dec(15),
			"ironing_hour":    dec(15),
			"windows_inside":  dec(3),
			"wall_washing":    dec(30),
			"pet_hair":        dec(15),
		},
		OutdoorServices: map[string]AreaRate{
			"terrace":   {PricePerUnit: dec(1.5), MinPrice: dec(20)},
			"garden":    {PricePerUnit: dec(0.5), MinPrice: dec(30)},
			"garage":    {PricePerUnit: dec(1.0), MinPrice: dec(25)},
			"pool_area": {PricePerUnit: dec(2.0), MinPrice: dec(40)},
			"courtyard": {PricePerUnit: dec(0.8), MinPrice: dec(25)},
		},
		WeekendSurchargeRate: dec(0.2),
		HolidaySurchargeRate: dec(0.3),
		VATShareOfGross:      dec(0.2),
		Rental: RentalRates{
			Turnaround: map[Turnaround]decimal.Decimal{
				TurnaroundExpress:  dec(30),
				TurnaroundStandard: dec(0),
				TurnaroundFlexible: dec(-10),
				TurnaroundExtended: dec(-20),
			},
			Laundry:        dec(20),
			SuppliesRefill: dec(15),
			InventoryCheck: dec(10),
			GuestWelcome:   dec(10),
			Emergency247:   dec(50),
		},
		Windows: WindowsRates{
			BasePerWindow: dec(5),
			SideFactor: map[WindowSide]decimal.Decimal{
				WindowsBoth:     dec(1.0),
				WindowsInterior: dec(0.6),
				WindowsExterior: dec(0.6),
			},
			FloorSurcharge: map[FloorLevel]decimal.Decimal{
				FloorGround:     dec(0),
				FloorFirst:      dec(1),
				FloorSecondPlus: dec(2),
			},
			FramesUnitPrice:   dec(1.5),
			SillsUnitPrice:    dec(1),
			BalconyDoorFactor: dec(2),
			SkylightFactor:    dec(1.5),
		},
		Office: OfficeRates{
			BasePerArea: dec(1.2),
			TypeMultiplier: map[OfficeType]decimal.Decimal{
				OfficeSingle:   dec(1.0),
				OfficeOpenPlan: dec(0.9),
				OfficeMixed:    dec(1.1),
			},
			TimeMultiplier: map[CleaningTime]decimal.Decimal{
				CleaningBusinessHours: dec(1.0),
				CleaningAfterHours:    dec(1.25),
				CleaningWeekend:       dec(1.5),
			},
			PerPrivateOffice:      dec(5),
			CommonAreas:           dec(15),
			PerBathroom:           dec(8),
			Kitchenette:           dec(10),
			Supplies:              dec(20),
			TrashRemoval:          dec(10),
			Recycling:             dec(15),
			NoElevatorSurchargePc: dec(10),
		},
	}
}

// PropertyMultiplierFor returns the multiplier of a property type. There is
// no fallback: an unlisted type is an error.
func (r Rates) PropertyMultiplierFor(t PropertyType) (decimal.Decimal, error) {
	m, ok := r.PropertyMultiplier[t]
	if !ok {
		return decimal.Zero, unknownEnum("property type", string(t))
	}
	return m, nil
}

func (r Rates) minimumFor(s ServiceType) decimal.Decimal {
	if s == ServiceRegular {
		return r.RegularMinimum
	}
	return r.DefaultMinimum
}

// DiscountPercent looks the frequency up in the residential or, for office
// cleaning, the commercial schedule.
func (r Rates) DiscountPercent(s ServiceType, f Frequency) (decimal.Decimal, error) {
	table := r.ResidentialDiscount
	if s == ServiceOffice {
		table = r.CommercialDiscount
	}
	pct, ok := table[f]
	if !ok {
		return decimal.Zero, unknownEnum("frequency", string(f))
	}
	return pct, nil
}

// CatalogExtra builds an Extra priced from the indoor extras catalog.
func (r Rates) CatalogExtra(id string, quantity int) (Extra, error) {
	price, ok := r.IndoorExtras[id]
	if !ok {
		return Extra{}, unknownEnum("extra", id)
	}
	return Extra{ID: id, Quantity: quantity, UnitPrice: price}, nil
}

// CatalogAreaService builds an AreaService priced from the outdoor catalog.
func (r Rates) CatalogAreaService(id string, area decimal.Decimal) (AreaService, error) {
	rate, ok := r.OutdoorServices[id]
	if !ok {
		return AreaService{}, unknownEnum("outdoor service", id)
	}
	return AreaService{ID: id, Area: area, PricePerUnit: rate.PricePerUnit, MinPrice: rate.MinPrice}, nil
}

// WithCatalogPrices returns a copy of req whose base rate and extra and
// outdoor prices come from the rate tables, ignoring whatever the caller
// supplied. Only ids, quantities and areas are kept.
func (r Rates) WithCatalogPrices(req PriceRequest) (PriceRequest, error) {
	fam, err := req.ServiceType.family()
	if err != nil {
		return PriceRequest{}, err
	}
	if fam == familyGeneric {
		req.PricePerAreaUnit = r.BaseRate[req.ServiceType]
	}

	extras := make([]Extra, 0, len(req.Extras))
	for _, e := range req.Extras {
		priced, err := r.CatalogExtra(e.ID, e.Quantity)
		if err != nil {
			return PriceRequest{}, err
		}
		extras = append(extras, priced)
	}
	req.Extras = extras

	outdoor := make([]AreaService, 0, len(req.OutdoorService))
	for _, s := range req.OutdoorService {
		priced, err := r.CatalogAreaService(s.ID, s.Area)
		if err != nil {
			return PriceRequest{}, err
		}
		outdoor = append(outdoor, priced)
	}
	req.OutdoorService = outdoor
	return req, nil
}
