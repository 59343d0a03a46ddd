package pricing

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ServiceType selects the calculator branch and the minimum price floor.
type ServiceType string

const (
	ServiceRegular        ServiceType = "regular"
	ServiceStandard       ServiceType = "standard"
	ServiceDeep           ServiceType = "deep"
	ServicePostRenovation ServiceType = "post-renovation"
	ServiceMoveInOut      ServiceType = "move-in-out"
	ServiceDailyRental    ServiceType = "daily_rental"
	ServiceVacationRental ServiceType = "vacation_rental"
	ServiceWindows        ServiceType = "windows"
	ServiceOffice         ServiceType = "office"
)

// family groups service types by the calculator that prices them.
type family int

const (
	familyGeneric family = iota
	familyWindows
	familyOffice
)

func (s ServiceType) family() (family, error) {
	switch s {
	case ServiceRegular, ServiceStandard, ServiceDeep, ServicePostRenovation,
		ServiceMoveInOut, ServiceDailyRental, ServiceVacationRental:
		return familyGeneric, nil
	case ServiceWindows:
		return familyWindows, nil
	case ServiceOffice:
		return familyOffice, nil
	}
	return 0, unknownEnum("service type", string(s))
}

// IsRental reports whether rental features apply to the service type.
func (s ServiceType) IsRental() bool {
	return s == ServiceDailyRental || s == ServiceVacationRental
}

type PropertyType string

const (
	PropertyApartment PropertyType = "apartment"
	PropertyHouse     PropertyType = "house"
	PropertyOffice    PropertyType = "office"
)

// Frequency is the cleaning-frequency selector that drives the discount.
type Frequency string

const (
	FrequencyOnce     Frequency = "once"
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// BookingVolume is the monthly booking volume of a daily-rental host. It only
// changes the per-m² rate of daily rental cleaning and is unrelated to Frequency.
type BookingVolume string

const (
	VolumeVeryFrequent BookingVolume = "very_frequent" // 15+ bookings a month
	VolumeFrequent     BookingVolume = "frequent"      // 5-14 bookings a month
	VolumeOccasional   BookingVolume = "occasional"
)

// LastCleaned describes how long ago the property was last cleaned.
type LastCleaned string

const (
	LastCleanedUnderMonth   LastCleaned = "under_1_month"
	LastCleaned1To3Months   LastCleaned = "1_3_months"
	LastCleaned3To6Months   LastCleaned = "3_6_months"
	LastCleaned6To12Months  LastCleaned = "6_12_months"
	LastCleanedOver12Months LastCleaned = "over_12_months"
)

type Turnaround string

const (
	TurnaroundExpress  Turnaround = "express_2h"
	TurnaroundStandard Turnaround = "standard_4h"
	TurnaroundFlexible Turnaround = "flexible_24h"
	TurnaroundExtended Turnaround = "extended_48h"
)

// RentalFeatures are the add-ons of short and medium term rental cleaning.
type RentalFeatures struct {
	Turnaround     Turnaround `json:"turnaround"`
	Laundry        bool       `json:"laundry"`
	SuppliesRefill bool       `json:"suppliesRefill"`
	InventoryCheck bool       `json:"inventoryCheck"`
	GuestWelcome   bool       `json:"guestWelcome"`
	Emergency247   bool       `json:"emergency247"`
}

type WindowSide string

const (
	WindowsInterior WindowSide = "interior"
	WindowsExterior WindowSide = "exterior"
	WindowsBoth     WindowSide = "both"
)

type FloorLevel string

const (
	FloorGround     FloorLevel = "ground"
	FloorFirst      FloorLevel = "first"
	FloorSecondPlus FloorLevel = "second_plus"
)

type WindowsInput struct {
	WindowCount    int        `json:"windowCount"`
	Side           WindowSide `json:"serviceType"`
	FloorLevel     FloorLevel `json:"floorLevel"`
	FramesCleaning bool       `json:"framesCleaning"`
	SillsCleaning  bool       `json:"sillsCleaning"`
	BalconyDoors   int        `json:"balconyDoors"`
	Skylights      int        `json:"skylights"`
}

type OfficeType string

const (
	OfficeSingle   OfficeType = "single"
	OfficeOpenPlan OfficeType = "open_plan"
	OfficeMixed    OfficeType = "mixed"
)

type CleaningTime string

const (
	CleaningBusinessHours CleaningTime = "business_hours"
	CleaningAfterHours    CleaningTime = "after_hours"
	CleaningWeekend       CleaningTime = "weekend"
)

type Supplies string

const (
	SuppliesClientProvided Supplies = "client_provided"
	SuppliesWeProvide      Supplies = "we_provide"
)

type OfficeInput struct {
	PropertySize        decimal.Decimal `json:"propertySize"`
	OfficeType          OfficeType      `json:"officeType"`
	CleaningTime        CleaningTime    `json:"cleaningTime"`
	PrivateOffices      int             `json:"privateOffices"`
	CommonAreas         bool            `json:"commonAreas"`
	Bathrooms           int             `json:"bathrooms"`
	Kitchenette         bool            `json:"kitchenette"`
	FloorCount          int             `json:"floorCount"`
	ElevatorAccess      bool            `json:"elevatorAccess"`
	Supplies            Supplies        `json:"supplies"`
	TrashRemoval        bool            `json:"trashRemoval"`
	RecyclingManagement bool            `json:"recyclingManagement"`
}

// Extra is a quantifiable indoor add-on.
type Extra struct {
	ID        string          `json:"id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// AreaService is an outdoor service priced per m² with a minimum.
type AreaService struct {
	ID           string          `json:"id"`
	Area         decimal.Decimal `json:"area"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	MinPrice     decimal.Decimal `json:"minPrice"`
}

// PriceRequest is the input of Calculate. Windows and office service types
// require their matching input; every other type uses the generic fields.
type PriceRequest struct {
	ServiceType      ServiceType     `json:"serviceType"`
	PricePerAreaUnit decimal.Decimal `json:"pricePerAreaUnit"`
	PropertyType     PropertyType    `json:"propertyType"`
	PropertySize     decimal.Decimal `json:"propertySize"`
	LastCleaned      LastCleaned     `json:"lastCleaned,omitempty"`
	BookingVolume    BookingVolume   `json:"bookingVolume,omitempty"`

	Extras         []Extra         `json:"extras,omitempty"`
	OutdoorService []AreaService   `json:"outdoorServices,omitempty"`
	Frequency      Frequency       `json:"frequency"`
	DistanceKm     decimal.Decimal `json:"distanceKm"`
	Rental         *RentalFeatures `json:"rentalFeatures,omitempty"`
	Date           *Date           `json:"date,omitempty"`

	Windows *WindowsInput `json:"windows,omitempty"`
	Office  *OfficeInput  `json:"office,omitempty"`
}

type ExtraLine struct {
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

type AreaLine struct {
	Area           decimal.Decimal `json:"area"`
	PricePerUnit   decimal.Decimal `json:"pricePerUnit"`
	Total          decimal.Decimal `json:"total"`
	MinimumApplied bool            `json:"minimumApplied"`
}

// PriceBreakdown is the itemised result of Calculate. Amounts keep full
// precision; round them only for display.
//
// Total == SubtotalPreSurcharge + WeekendSurcharge + HolidaySurcharge - FrequencyDiscount
// and NetAmount + VATAmount == Total.
type PriceBreakdown struct {
	ServiceType            ServiceType     `json:"serviceType"`
	BasePrice              decimal.Decimal `json:"basePrice"`
	PropertyTypeMultiplier decimal.Decimal `json:"propertyTypeMultiplier"`
	EffectiveArea          decimal.Decimal `json:"effectiveArea"`

	Extras            map[string]ExtraLine `json:"extras"`
	ExtrasTotal       decimal.Decimal      `json:"extrasTotal"`
	OutdoorServices   map[string]AreaLine  `json:"outdoorServices"`
	OutdoorTotal      decimal.Decimal      `json:"outdoorTotal"`
	RentalAdjustment  decimal.Decimal      `json:"rentalAdjustment"`
	DistanceFee       decimal.Decimal      `json:"distanceFee"`
	WeekendSurcharge  decimal.Decimal      `json:"weekendSurcharge"`
	HolidaySurcharge  decimal.Decimal      `json:"holidaySurcharge"`
	DiscountPercent   decimal.Decimal      `json:"discountPercent"`
	FrequencyDiscount decimal.Decimal      `json:"frequencyDiscount"`

	SubtotalPreSurcharge decimal.Decimal `json:"subtotal"`
	NetAmount            decimal.Decimal `json:"netAmount"`
	VATAmount            decimal.Decimal `json:"vatAmount"`
	Total                decimal.Decimal `json:"total"`

	Windows *WindowsResult `json:"windows,omitempty"`
	Office  *OfficeResult  `json:"office,omitempty"`
}

// Date is a calendar day. It decodes from "2006-01-02" or a full RFC 3339
// timestamp and always encodes as "2006-01-02".
type Date struct {
	time.Time
}

// NewDate returns a pointer to the calendar day of t.
func NewDate(t time.Time) *Date {
	return &Date{Time: t}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("%w: date must be a string", ErrInvalidInput)
	}
	s := string(data[1 : len(data)-1])
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("%w: date %q, expected YYYY-MM-DD", ErrInvalidInput, s)
}
