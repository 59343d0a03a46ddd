package pricing

import "github.com/shopspring/decimal"

// BaseInput is the input of the generic (area based) calculator.
type BaseInput struct {
	ServiceType      ServiceType
	PricePerAreaUnit decimal.Decimal
	PropertyType     PropertyType
	PropertySize     decimal.Decimal
	BookingVolume    BookingVolume
	LastCleaned      LastCleaned
}

type BaseResult struct {
	BasePrice              decimal.Decimal
	EffectiveArea          decimal.Decimal
	PropertyTypeMultiplier decimal.Decimal
	PricePerAreaUnit       decimal.Decimal
}

// CalculateBase prices regular, standard, deep, post-renovation, move-in-out
// and rental cleaning from the property area.
func (r Rates) CalculateBase(in BaseInput) (BaseResult, error) {
	if fam, err := in.ServiceType.family(); err != nil {
		return BaseResult{}, err
	} else if fam != familyGeneric {
		return BaseResult{}, invalidInput("service type %q is not area priced", in.ServiceType)
	}
	if err := requirePositive("property size", in.PropertySize); err != nil {
		return BaseResult{}, err
	}

	multiplier, err := r.PropertyMultiplierFor(in.PropertyType)
	if err != nil {
		return BaseResult{}, err
	}
	effectiveArea := in.PropertySize.Mul(multiplier)

	rate := in.PricePerAreaUnit
	if in.ServiceType == ServiceDailyRental {
		volume := in.BookingVolume
		if volume == "" {
			volume = VolumeOccasional
		}
		var ok bool
		if rate, ok = r.DailyRentalRate[volume]; !ok {
			return BaseResult{}, unknownEnum("booking volume", string(volume))
		}
	} else if err := requirePositive("price per area unit", rate); err != nil {
		return BaseResult{}, err
	}

	base := decimal.Max(effectiveArea.Mul(rate), r.minimumFor(in.ServiceType))

	if in.LastCleaned != "" && (in.ServiceType == ServiceStandard || in.ServiceType == ServiceDeep) {
		factor, ok := r.LastCleanedFactor[in.LastCleaned]
		if !ok {
			return BaseResult{}, unknownEnum("last cleaned", string(in.LastCleaned))
		}
		base = base.Mul(factor)
	}

	return BaseResult{
		BasePrice:              base,
		EffectiveArea:          effectiveArea,
		PropertyTypeMultiplier: multiplier,
		PricePerAreaUnit:       rate,
	}, nil
}
