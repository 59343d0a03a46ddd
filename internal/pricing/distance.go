package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// DistanceSchedule selects how a distance from the base is turned into a fee.
// The enhanced calculator uses TieredDistance, the public quote endpoint uses
// LinearDistance. Both share the same 10 km free radius.
type DistanceSchedule string

const (
	TieredDistance DistanceSchedule = "tiered"
	LinearDistance DistanceSchedule = "linear"
)

var (
	freeRadiusKm  = dec(10)
	linearPerKm   = dec(0.5)
	distanceTiers = []struct {
		upToKm decimal.Decimal
		fee    decimal.Decimal
	}{
		{upToKm: dec(10), fee: dec(0)},
		{upToKm: dec(20), fee: dec(25)},
		{upToKm: dec(30), fee: dec(50)},
	}
	beyondTiersFee = dec(75)
)

// ParseDistanceSchedule validates a configured schedule name.
func ParseDistanceSchedule(s string) (DistanceSchedule, error) {
	switch DistanceSchedule(s) {
	case TieredDistance, LinearDistance:
		return DistanceSchedule(s), nil
	}
	return "", unknownEnum("distance schedule", s)
}

// Fee returns the distance surcharge for km kilometres.
func (s DistanceSchedule) Fee(km decimal.Decimal) (decimal.Decimal, error) {
	if err := requireNonNegative("distance", km); err != nil {
		return decimal.Zero, err
	}

	switch s {
	case TieredDistance:
		for _, tier := range distanceTiers {
			if km.LessThanOrEqual(tier.upToKm) {
				return tier.fee, nil
			}
		}
		return beyondTiersFee, nil
	case LinearDistance:
		if km.LessThanOrEqual(freeRadiusKm) {
			return decimal.Zero, nil
		}
		return km.Sub(freeRadiusKm).Mul(linearPerKm).Round(2), nil
	}
	return decimal.Zero, unknownEnum("distance schedule", string(s))
}

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ZagrebCenter is the default reference point distances are measured from.
var ZagrebCenter = Coordinate{Lat: 45.8150, Lng: 15.9819}

// DistanceKm returns the great-circle distance between two points, rounded
// to 2 decimals.
func DistanceKm(from, to Coordinate) decimal.Decimal {
	const earthRadius = 6371 // km

	dLat := toRadians(to.Lat - from.Lat)
	dLon := toRadians(to.Lng - from.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(from.Lat))*math.Cos(toRadians(to.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return decimal.NewFromFloat(earthRadius * c).Round(2)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
