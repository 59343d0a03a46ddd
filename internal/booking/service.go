// Package booking validates, prices and stores cleaning bookings and contact
// inquiries, and notifies staff and customers about them.
package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"uredno/internal/pricing"
	"uredno/internal/storage"
)

// TimeSlots are the arrival windows offered to customers.
var TimeSlots = []string{"08:00", "10:00", "12:00", "14:00", "16:00"}

const (
	maxDaysAhead  = 90
	notifyTimeout = 30 * time.Second
)

type Repository interface {
	CreateCustomer(ctx context.Context, c *storage.Customer) error
	CreateBooking(ctx context.Context, b *storage.Booking) error
	GetBooking(ctx context.Context, id int64) (*storage.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*storage.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status storage.BookingStatus) error
	CreateInquiry(ctx context.Context, in *storage.Inquiry) error
	ReserveSlot(ctx context.Context, date time.Time, timeSlot string) error
	ReleaseSlot(ctx context.Context, date time.Time, timeSlot string) error
	GetAvailability(ctx context.Context, from, to time.Time) ([]storage.Slot, error)
}

// Notifier is told about new bookings and inquiries. Calls happen in the
// background after the request has been answered.
type Notifier interface {
	NotifyNewBooking(ctx context.Context, b storage.Booking) error
	NotifyNewInquiry(ctx context.Context, in storage.Inquiry) error
}

type Request struct {
	Name        string               `json:"name"`
	Phone       string               `json:"phone"`
	Email       string               `json:"email,omitempty"`
	Address     string               `json:"address"`
	Date        string               `json:"date"`
	TimeSlot    string               `json:"timeSlot"`
	Notes       string               `json:"notes,omitempty"`
	Coordinates *pricing.Coordinate  `json:"coordinates,omitempty"`
	Price       pricing.PriceRequest `json:"price"`
}

type InquiryRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
	Source  string `json:"source,omitempty"`
}

type Service struct {
	repo      Repository
	calc      *pricing.Calculator
	origin    pricing.Coordinate
	notifiers []Notifier
	logger    *zap.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewService(repo Repository, calc *pricing.Calculator, origin pricing.Coordinate, logger *zap.Logger, notifiers ...Notifier) *Service {
	return &Service{
		repo:      repo,
		calc:      calc,
		origin:    origin,
		notifiers: notifiers,
		logger:    logger,
		now:       time.Now,
	}
}

// Create validates the request, prices it on the server and stores the
// booking. The client supplied price is never trusted.
func (s *Service) Create(ctx context.Context, req Request) (*storage.Booking, *pricing.PriceBreakdown, error) {
	const operation = "booking.Create"

	phone, date, err := s.validate(req)
	if err != nil {
		return nil, nil, err
	}

	priceReq, err := s.calc.Rates().WithCatalogPrices(req.Price)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", operation, err)
	}
	priceReq.Date = pricing.NewDate(date)
	priceReq.DistanceKm = pricing.DistanceKm(s.origin, *req.Coordinates)
	pb, err := s.calc.Calculate(priceReq)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", operation, err)
	}

	customer := &storage.Customer{
		Name:  strings.TrimSpace(req.Name),
		Phone: phone,
		Email: strings.TrimSpace(req.Email),
	}
	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", operation, err)
	}

	b, err := newBooking(customer, req, priceReq, date, pb)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", operation, err)
	}

	if err := s.repo.ReserveSlot(ctx, date, req.TimeSlot); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", operation, err)
	}
	if err := s.repo.CreateBooking(ctx, b); err != nil {
		if relErr := s.repo.ReleaseSlot(ctx, date, req.TimeSlot); relErr != nil {
			s.logger.Error("Failed to release slot after failed booking",
				zap.String("date", req.Date),
				zap.String("slot", req.TimeSlot),
				zap.Error(relErr))
		}
		return nil, nil, fmt.Errorf("%s: %w", operation, err)
	}

	s.logger.Info("Booking created",
		zap.Int64("booking_id", b.ID),
		zap.String("reference", b.Reference),
		zap.String("service_type", b.ServiceType),
		zap.String("total", b.TotalPrice.StringFixed(2)))

	s.notify(func(ctx context.Context, n Notifier) error { return n.NotifyNewBooking(ctx, *b) })
	return b, pb, nil
}

func (s *Service) validate(req Request) (phone string, date time.Time, err error) {
	if strings.TrimSpace(req.Name) == "" {
		return "", time.Time{}, invalid("name", "is required")
	}
	if !IsValidPhoneNumber(req.Phone) {
		return "", time.Time{}, invalid("phone", "%q is not a valid phone number", req.Phone)
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return "", time.Time{}, invalid("email", "%q is not a valid address", req.Email)
		}
	}
	if strings.TrimSpace(req.Address) == "" {
		return "", time.Time{}, invalid("address", "is required")
	}
	if req.Coordinates == nil {
		return "", time.Time{}, invalid("coordinates", "are required to price travel")
	}
	if !slices.Contains(TimeSlots, req.TimeSlot) {
		return "", time.Time{}, invalid("timeSlot", "must be one of %s", strings.Join(TimeSlots, ", "))
	}

	date, err = time.Parse(time.DateOnly, req.Date)
	if err != nil {
		return "", time.Time{}, invalid("date", "expected YYYY-MM-DD, got %q", req.Date)
	}
	today := truncateDay(s.now())
	if date.Before(today) {
		return "", time.Time{}, invalid("date", "%s is in the past", req.Date)
	}
	if date.After(today.AddDate(0, 0, maxDaysAhead)) {
		return "", time.Time{}, invalid("date", "bookings open %d days ahead", maxDaysAhead)
	}

	return NormalizePhoneNumber(req.Phone), date, nil
}

func newBooking(c *storage.Customer, req Request, priceReq pricing.PriceRequest, date time.Time, pb *pricing.PriceBreakdown) (*storage.Booking, error) {
	breakdown, err := json.Marshal(pb)
	if err != nil {
		return nil, fmt.Errorf("marshal breakdown: %w", err)
	}

	size := priceReq.PropertySize
	if priceReq.Office != nil {
		size = priceReq.Office.PropertySize
	}
	frequency := priceReq.Frequency
	if frequency == "" {
		frequency = pricing.FrequencyOnce
	}

	return &storage.Booking{
		Reference:      uuid.NewString(),
		CustomerID:     c.ID,
		CustomerName:   c.Name,
		CustomerPhone:  c.Phone,
		ServiceType:    string(pb.ServiceType),
		PropertyType:   string(priceReq.PropertyType),
		PropertySize:   size,
		Frequency:      string(frequency),
		Address:        strings.TrimSpace(req.Address),
		ScheduledDate:  date,
		TimeSlot:       req.TimeSlot,
		DistanceKm:     priceReq.DistanceKm,
		BasePrice:      pb.BasePrice,
		ExtrasTotal:    pb.ExtrasTotal.Add(pb.OutdoorTotal).Add(pb.RentalAdjustment),
		DistanceFee:    pb.DistanceFee,
		Surcharges:     pb.WeekendSurcharge.Add(pb.HolidaySurcharge),
		DiscountAmount: pb.FrequencyDiscount,
		NetAmount:      pb.NetAmount,
		VATAmount:      pb.VATAmount,
		TotalPrice:     pb.Total,
		Breakdown:      breakdown,
		Status:         storage.StatusNew,
		Notes:          strings.TrimSpace(req.Notes),
	}, nil
}

func (s *Service) GetByReference(ctx context.Context, reference string) (*storage.Booking, error) {
	if _, err := uuid.Parse(reference); err != nil {
		return nil, invalid("reference", "%q is not a booking reference", reference)
	}
	return s.repo.GetBookingByReference(ctx, reference)
}

var transitions = map[storage.BookingStatus][]storage.BookingStatus{
	storage.StatusNew:       {storage.StatusConfirmed, storage.StatusCancelled},
	storage.StatusConfirmed: {storage.StatusCompleted, storage.StatusCancelled},
}

// UpdateStatus moves a booking along new -> confirmed -> completed, or to
// cancelled from any open state. Cancelling frees the time slot.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status storage.BookingStatus) (*storage.Booking, error) {
	const operation = "booking.UpdateStatus"

	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	if !slices.Contains(transitions[b.Status], status) {
		return nil, fmt.Errorf("%s: %s -> %s: %w", operation, b.Status, status, ErrInvalidTransition)
	}
	if err := s.repo.UpdateBookingStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	if status == storage.StatusCancelled {
		if err := s.repo.ReleaseSlot(ctx, b.ScheduledDate, b.TimeSlot); err != nil {
			s.logger.Error("Failed to release slot of cancelled booking",
				zap.Int64("booking_id", id),
				zap.Error(err))
		}
	}

	s.logger.Info("Booking status changed",
		zap.Int64("booking_id", id),
		zap.String("from", string(b.Status)),
		zap.String("to", string(status)))

	b.Status = status
	return b, nil
}

func (s *Service) SubmitInquiry(ctx context.Context, req InquiryRequest) (*storage.Inquiry, error) {
	const operation = "booking.SubmitInquiry"

	if strings.TrimSpace(req.Name) == "" {
		return nil, invalid("name", "is required")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, invalid("message", "is required")
	}
	if req.Phone == "" && req.Email == "" {
		return nil, invalid("phone", "a phone number or an email is required")
	}
	if req.Phone != "" && !IsValidPhoneNumber(req.Phone) {
		return nil, invalid("phone", "%q is not a valid phone number", req.Phone)
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return nil, invalid("email", "%q is not a valid address", req.Email)
		}
	}

	in := &storage.Inquiry{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
		Source:  req.Source,
	}
	if req.Phone != "" {
		in.Phone = NormalizePhoneNumber(req.Phone)
	}
	if err := s.repo.CreateInquiry(ctx, in); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	s.notify(func(ctx context.Context, n Notifier) error { return n.NotifyNewInquiry(ctx, *in) })
	return in, nil
}

// notify runs call for every notifier in the background with its own
// timeout, detached from the request context.
func (s *Service) notify(call func(context.Context, Notifier) error) {
	for _, n := range s.notifiers {
		s.wg.Add(1)
		go func(n Notifier) {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := call(ctx, n); err != nil {
				s.logger.Warn("Notification failed", zap.String("notifier", fmt.Sprintf("%T", n)), zap.Error(err))
			}
		}(n)
	}
}

// Wait blocks until background notifications have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}
