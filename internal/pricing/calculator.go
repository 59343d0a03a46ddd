package pricing

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Calculator combines the rate tables with a distance schedule. It holds no
// mutable state and may be shared between goroutines.
type Calculator struct {
	rates    Rates
	distance DistanceSchedule
}

// NewCalculator returns a calculator using the given rates and distance
// schedule for Calculate. Quote always uses LinearDistance.
func NewCalculator(rates Rates, distance DistanceSchedule) *Calculator {
	return &Calculator{rates: rates, distance: distance}
}

// NewDefaultCalculator uses DefaultRates and the tiered distance schedule.
func NewDefaultCalculator() *Calculator {
	return NewCalculator(DefaultRates(), TieredDistance)
}

func (c *Calculator) Rates() Rates {
	return c.rates
}

func (c *Calculator) DistanceSchedule() DistanceSchedule {
	return c.distance
}

// Calculate produces the full price breakdown of a request. No partial
// breakdown is ever returned: on error the result is nil.
func (c *Calculator) Calculate(req PriceRequest) (*PriceBreakdown, error) {
	fam, err := req.ServiceType.family()
	if err != nil {
		return nil, err
	}
	if err := checkPayload(req, fam); err != nil {
		return nil, err
	}
	if err := validateShared(req); err != nil {
		return nil, err
	}

	pb := &PriceBreakdown{
		ServiceType:            req.ServiceType,
		PropertyTypeMultiplier: decimal.Zero,
		EffectiveArea:          decimal.Zero,
		RentalAdjustment:       decimal.Zero,
		WeekendSurcharge:       decimal.Zero,
		HolidaySurcharge:       decimal.Zero,
	}

	switch fam {
	case familyWindows:
		res, err := c.rates.CalculateWindows(*req.Windows)
		if err != nil {
			return nil, err
		}
		pb.BasePrice = res.BasePrice
		pb.Windows = &res
	case familyOffice:
		res, err := c.rates.CalculateOffice(*req.Office)
		if err != nil {
			return nil, err
		}
		pb.BasePrice = res.BasePrice
		pb.EffectiveArea = req.Office.PropertySize
		pb.Office = &res
	default:
		res, err := c.rates.CalculateBase(BaseInput{
			ServiceType:      req.ServiceType,
			PricePerAreaUnit: req.PricePerAreaUnit,
			PropertyType:     req.PropertyType,
			PropertySize:     req.PropertySize,
			BookingVolume:    req.BookingVolume,
			LastCleaned:      req.LastCleaned,
		})
		if err != nil {
			return nil, err
		}
		pb.BasePrice = res.BasePrice
		pb.EffectiveArea = res.EffectiveArea
		pb.PropertyTypeMultiplier = res.PropertyTypeMultiplier
	}

	pb.Extras, pb.ExtrasTotal = itemizeExtras(req.Extras)
	pb.OutdoorServices, pb.OutdoorTotal = itemizeAreaServices(req.OutdoorService)

	if req.Rental != nil {
		adj, err := c.rentalAdjustment(*req.Rental)
		if err != nil {
			return nil, err
		}
		pb.RentalAdjustment = adj
	}

	if pb.DistanceFee, err = c.distance.Fee(req.DistanceKm); err != nil {
		return nil, err
	}

	pct, err := c.rates.DiscountPercent(req.ServiceType, req.Frequency)
	if err != nil {
		return nil, err
	}
	pb.DiscountPercent = pct

	pb.SubtotalPreSurcharge = pb.BasePrice.
		Add(pb.ExtrasTotal).
		Add(pb.OutdoorTotal).
		Add(pb.RentalAdjustment).
		Add(pb.DistanceFee)

	if req.ServiceType == ServiceDailyRental && req.Date != nil {
		if IsWeekend(req.Date.Time) {
			pb.WeekendSurcharge = pb.SubtotalPreSurcharge.Mul(c.rates.WeekendSurchargeRate)
		}
		if IsCroatianPublicHoliday(req.Date.Time) {
			pb.HolidaySurcharge = pb.SubtotalPreSurcharge.Mul(c.rates.HolidaySurchargeRate)
		}
	}

	// Surcharges are never discounted.
	pb.FrequencyDiscount = pb.SubtotalPreSurcharge.Mul(pct).Div(hundred)

	pb.Total = pb.SubtotalPreSurcharge.
		Add(pb.WeekendSurcharge).
		Add(pb.HolidaySurcharge).
		Sub(pb.FrequencyDiscount)
	pb.VATAmount = pb.Total.Mul(c.rates.VATShareOfGross)
	pb.NetAmount = pb.Total.Sub(pb.VATAmount)

	return pb, nil
}

func checkPayload(req PriceRequest, fam family) error {
	switch fam {
	case familyWindows:
		if req.Windows == nil {
			return fmt.Errorf("%w: windows service requires windows input", ErrInvalidServiceConfiguration)
		}
		if req.Office != nil {
			return fmt.Errorf("%w: office input supplied for windows service", ErrInvalidServiceConfiguration)
		}
	case familyOffice:
		if req.Office == nil {
			return fmt.Errorf("%w: office service requires office input", ErrInvalidServiceConfiguration)
		}
		if req.Windows != nil {
			return fmt.Errorf("%w: windows input supplied for office service", ErrInvalidServiceConfiguration)
		}
	default:
		if req.Windows != nil || req.Office != nil {
			return fmt.Errorf("%w: %s service does not take windows or office input",
				ErrInvalidServiceConfiguration, req.ServiceType)
		}
	}
	if req.Rental != nil && !req.ServiceType.IsRental() {
		return fmt.Errorf("%w: rental features supplied for %s service",
			ErrInvalidServiceConfiguration, req.ServiceType)
	}
	return nil
}

func validateShared(req PriceRequest) error {
	if err := requireNonNegative("property size", req.PropertySize); err != nil {
		return err
	}
	if err := requireNonNegative("distance", req.DistanceKm); err != nil {
		return err
	}
	for _, e := range req.Extras {
		if err := requireNonNegativeCount("quantity of "+e.ID, e.Quantity); err != nil {
			return err
		}
		if err := requireNonNegative("unit price of "+e.ID, e.UnitPrice); err != nil {
			return err
		}
	}
	for _, s := range req.OutdoorService {
		if err := requireNonNegative("area of "+s.ID, s.Area); err != nil {
			return err
		}
		if err := requireNonNegative("price per unit of "+s.ID, s.PricePerUnit); err != nil {
			return err
		}
		if err := requireNonNegative("minimum price of "+s.ID, s.MinPrice); err != nil {
			return err
		}
	}
	return nil
}

func itemizeExtras(extras []Extra) (map[string]ExtraLine, decimal.Decimal) {
	lines := make(map[string]ExtraLine)
	total := decimal.Zero
	for _, e := range extras {
		if e.Quantity <= 0 {
			continue
		}
		line := lines[e.ID]
		line.Quantity += e.Quantity
		line.UnitPrice = e.UnitPrice
		lineTotal := decimal.NewFromInt(int64(e.Quantity)).Mul(e.UnitPrice)
		line.Total = line.Total.Add(lineTotal)
		lines[e.ID] = line
		total = total.Add(lineTotal)
	}
	return lines, total
}

// itemizeAreaServices merges repeated ids into one line by summing their
// areas; the minimum price applies once per merged line.
func itemizeAreaServices(services []AreaService) (map[string]AreaLine, decimal.Decimal) {
	merged := make(map[string]AreaService)
	for _, s := range services {
		if !s.Area.IsPositive() {
			continue
		}
		if m, ok := merged[s.ID]; ok {
			m.Area = m.Area.Add(s.Area)
			merged[s.ID] = m
			continue
		}
		merged[s.ID] = s
	}

	lines := make(map[string]AreaLine, len(merged))
	total := decimal.Zero
	for id, s := range merged {
		raw := s.Area.Mul(s.PricePerUnit)
		line := AreaLine{Area: s.Area, PricePerUnit: s.PricePerUnit, Total: raw}
		if raw.LessThan(s.MinPrice) {
			line.Total = s.MinPrice
			line.MinimumApplied = true
		}
		lines[id] = line
		total = total.Add(line.Total)
	}
	return lines, total
}

func (c *Calculator) rentalAdjustment(f RentalFeatures) (decimal.Decimal, error) {
	rr := c.rates.Rental
	turnaround := f.Turnaround
	if turnaround == "" {
		turnaround = TurnaroundStandard
	}
	adj, ok := rr.Turnaround[turnaround]
	if !ok {
		return decimal.Zero, unknownEnum("turnaround", string(f.Turnaround))
	}
	adj = adj.
		Add(flat(f.Laundry, rr.Laundry)).
		Add(flat(f.SuppliesRefill, rr.SuppliesRefill)).
		Add(flat(f.InventoryCheck, rr.InventoryCheck)).
		Add(flat(f.GuestWelcome, rr.GuestWelcome)).
		Add(flat(f.Emergency247, rr.Emergency247))
	return adj, nil
}

// ExtraIDs returns the itemised extra ids in a stable order.
func (pb *PriceBreakdown) ExtraIDs() []string {
	ids := make([]string, 0, len(pb.Extras))
	for id := range pb.Extras {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// OutdoorIDs returns the itemised outdoor service ids in a stable order.
func (pb *PriceBreakdown) OutdoorIDs() []string {
	ids := make([]string, 0, len(pb.OutdoorServices))
	for id := range pb.OutdoorServices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
