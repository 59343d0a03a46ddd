package storage

import (
	"errors"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrSlotUnavailable = errors.New("time slot is fully booked")
)

type BookingStatus string

const (
	StatusNew       BookingStatus = "new"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// Holds reports whether the booking still occupies its time slot.
func (s BookingStatus) Holds() bool {
	return s == StatusNew || s == StatusConfirmed
}

type Customer struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Email     string    `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Booking is a stored reservation. Price columns are copied from the
// server side breakdown at creation time and never recomputed.
type Booking struct {
	ID             int64           `db:"id" json:"id"`
	Reference      string          `db:"reference" json:"reference"`
	CustomerID     int64           `db:"customer_id" json:"customerId"`
	CustomerName   string          `db:"customer_name" json:"customerName,omitempty"`
	CustomerPhone  string          `db:"customer_phone" json:"customerPhone,omitempty"`
	ServiceType    string          `db:"service_type" json:"serviceType"`
	PropertyType   string          `db:"property_type" json:"propertyType,omitempty"`
	PropertySize   decimal.Decimal `db:"property_size" json:"propertySize"`
	Frequency      string          `db:"frequency" json:"frequency"`
	Address        string          `db:"address" json:"address"`
	ScheduledDate  time.Time       `db:"scheduled_date" json:"scheduledDate"`
	TimeSlot       string          `db:"time_slot" json:"timeSlot"`
	DistanceKm     decimal.Decimal `db:"distance_km" json:"distanceKm"`
	BasePrice      decimal.Decimal `db:"base_price" json:"basePrice"`
	ExtrasTotal    decimal.Decimal `db:"extras_total" json:"extrasTotal"`
	DistanceFee    decimal.Decimal `db:"distance_fee" json:"distanceFee"`
	Surcharges     decimal.Decimal `db:"surcharges" json:"surcharges"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discountAmount"`
	NetAmount      decimal.Decimal `db:"net_amount" json:"netAmount"`
	VATAmount      decimal.Decimal `db:"vat_amount" json:"vatAmount"`
	TotalPrice     decimal.Decimal `db:"total_price" json:"totalPrice"`
	Breakdown      types.JSONText  `db:"breakdown" json:"breakdown,omitempty"`
	Status         BookingStatus   `db:"status" json:"status"`
	Notes          string          `db:"notes" json:"notes,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`
}

type Inquiry struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Email     string    `db:"email" json:"email,omitempty"`
	Message   string    `db:"message" json:"message"`
	Source    string    `db:"source" json:"source"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Slot is the capacity of one time slot on one day.
type Slot struct {
	Date     time.Time `db:"slot_date" json:"date"`
	TimeSlot string    `db:"time_slot" json:"timeSlot"`
	Capacity int       `db:"capacity" json:"capacity"`
	Booked   int       `db:"booked" json:"booked"`
}

func (s Slot) Available() bool {
	return s.Booked < s.Capacity
}

// BookingFilter narrows ListBookings. Zero values are ignored.
type BookingFilter struct {
	Status BookingStatus
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

type PeriodStats struct {
	Count   int             `db:"count" json:"count"`
	Revenue decimal.Decimal `db:"revenue" json:"revenue"`
}

type BookingStatistics struct {
	Total         PeriodStats    `json:"total"`
	Today         PeriodStats    `json:"today"`
	Week          PeriodStats    `json:"week"`
	Month         PeriodStats    `json:"month"`
	StatusCounts  map[string]int `json:"statusCounts"`
	ServiceCounts map[string]int `json:"serviceCounts"`
}
