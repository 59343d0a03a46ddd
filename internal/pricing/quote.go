package pricing

import "github.com/shopspring/decimal"

// QuoteRequest is the simplified request of the public price endpoint:
// catalog base rate, flat extras and optional customer coordinates.
type QuoteRequest struct {
	ServiceType  ServiceType     `json:"serviceType"`
	PropertySize decimal.Decimal `json:"propertySize"`
	PropertyType PropertyType    `json:"propertyType"`
	Frequency    Frequency       `json:"frequency"`
	Extras       []string        `json:"extras,omitempty"`
	Location     *Coordinate     `json:"coordinates,omitempty"`
}

type Quote struct {
	BasePrice         decimal.Decimal `json:"basePrice"`
	ExtrasCost        decimal.Decimal `json:"extrasCost"`
	DiscountPercent   decimal.Decimal `json:"discountPercent"`
	FrequencyDiscount decimal.Decimal `json:"frequencyDiscount"`
	DistanceKm        decimal.Decimal `json:"distanceKm"`
	DistanceFee       decimal.Decimal `json:"distanceFee"`
	Total             decimal.Decimal `json:"totalPrice"`
}

// Quote is the basic calculator: the base uses the catalog rate of the
// service type, extras are flat catalog prices and the distance fee follows
// LinearDistance measured from origin. The frequency discount applies to base
// and extras; the distance fee is not discounted.
func (c *Calculator) Quote(req QuoteRequest, origin Coordinate) (*Quote, error) {
	fam, err := req.ServiceType.family()
	if err != nil {
		return nil, err
	}
	if fam != familyGeneric {
		return nil, invalidInput("service type %q cannot be quoted by area", req.ServiceType)
	}

	rate, ok := c.rates.BaseRate[req.ServiceType]
	if !ok {
		return nil, unknownEnum("service type", string(req.ServiceType))
	}
	base, err := c.rates.CalculateBase(BaseInput{
		ServiceType:      req.ServiceType,
		PricePerAreaUnit: rate,
		PropertyType:     req.PropertyType,
		PropertySize:     req.PropertySize,
	})
	if err != nil {
		return nil, err
	}

	extras := decimal.Zero
	for _, id := range req.Extras {
		price, ok := c.rates.IndoorExtras[id]
		if !ok {
			return nil, unknownEnum("extra", id)
		}
		extras = extras.Add(price)
	}

	frequency := req.Frequency
	if frequency == "" {
		frequency = FrequencyOnce
	}
	pct, err := c.rates.DiscountPercent(req.ServiceType, frequency)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		BasePrice:       base.BasePrice,
		ExtrasCost:      extras,
		DiscountPercent: pct,
		DistanceKm:      decimal.Zero,
	}
	if req.Location != nil {
		q.DistanceKm = DistanceKm(origin, *req.Location)
	}
	if q.DistanceFee, err = LinearDistance.Fee(q.DistanceKm); err != nil {
		return nil, err
	}

	discountable := q.BasePrice.Add(q.ExtrasCost)
	q.FrequencyDiscount = discountable.Mul(pct).Div(hundred)
	q.Total = discountable.Sub(q.FrequencyDiscount).Add(q.DistanceFee)
	return q, nil
}
