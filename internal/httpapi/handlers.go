package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"uredno/internal/booking"
	"uredno/internal/pricing"
	"uredno/internal/storage"
	"uredno/internal/whatsapp"
)

type calculatePriceRequest struct {
	pricing.QuoteRequest
	Locale pricing.Locale `json:"locale,omitempty"`
}

type calculatePriceResponse struct {
	*pricing.Quote
	Messages []string `json:"messages"`
}

func (s *Server) handleCalculatePrice(w http.ResponseWriter, r *http.Request) {
	var req calculatePriceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	q, err := s.calc.Quote(req.QuoteRequest, s.origin)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, calculatePriceResponse{Quote: q, Messages: q.Messages(locale(req.Locale))})
}

type priceRequest struct {
	pricing.PriceRequest
	Coordinates *pricing.Coordinate `json:"coordinates,omitempty"`
	Locale      pricing.Locale      `json:"locale,omitempty"`
}

type priceResponse struct {
	Breakdown *pricing.PriceBreakdown `json:"breakdown"`
	LineItems []pricing.LineItem      `json:"lineItems"`
}

// handlePrice returns the breakdown a booking with the same input would be
// charged: catalog unit prices replace client supplied ones.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	priceReq, err := s.calc.Rates().WithCatalogPrices(req.PriceRequest)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if req.Coordinates != nil {
		priceReq.DistanceKm = pricing.DistanceKm(s.origin, *req.Coordinates)
	}
	pb, err := s.calc.Calculate(priceReq)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, priceResponse{Breakdown: pb, LineItems: pb.LineItems(locale(req.Locale))})
}

type createBookingRequest struct {
	booking.Request
	Locale pricing.Locale `json:"locale,omitempty"`
}

type bookingResponse struct {
	Booking   *storage.Booking        `json:"booking"`
	Breakdown *pricing.PriceBreakdown `json:"breakdown,omitempty"`
	LineItems []pricing.LineItem      `json:"lineItems,omitempty"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	b, pb, err := s.bookings.Create(r.Context(), req.Request)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.logger.Info("Booking created",
		zap.String("request_id", RequestID(r.Context())),
		zap.String("reference", b.Reference))
	writeJSON(w, http.StatusCreated, bookingResponse{
		Booking:   b,
		Breakdown: pb,
		LineItems: pb.LineItems(locale(req.Locale)),
	})
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.bookings.GetByReference(r.Context(), r.PathValue("reference"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse{Booking: b})
}

type availabilityDay struct {
	Date  string        `json:"date"`
	Slots []slotSummary `json:"slots"`
}

type slotSummary struct {
	TimeSlot  string `json:"timeSlot"`
	Available bool   `json:"available"`
	Remaining int    `json:"remaining"`
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	slots, err := s.bookings.Availability(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	days := make([]availabilityDay, 0)
	for _, slot := range slots {
		date := slot.Date.Format(time.DateOnly)
		if len(days) == 0 || days[len(days)-1].Date != date {
			days = append(days, availabilityDay{Date: date})
		}
		day := &days[len(days)-1]
		day.Slots = append(day.Slots, slotSummary{
			TimeSlot:  slot.TimeSlot,
			Available: slot.Available(),
			Remaining: max(slot.Capacity-slot.Booked, 0),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var req booking.InquiryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Source == "" {
		req.Source = "website"
	}
	in, err := s.bookings.SubmitInquiry(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": in.ID, "status": "received"})
}

// handleWhatsApp relays a message from the website chat widget.
func (s *Server) handleWhatsApp(w http.ResponseWriter, r *http.Request) {
	var msg whatsapp.Message
	if !decodeJSON(w, r, &msg) {
		return
	}
	if !booking.IsValidPhoneNumber(msg.To) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "not a valid phone number", Field: "to"})
		return
	}
	if msg.Text == "" && msg.Template == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text or template is required", Field: "text"})
		return
	}
	msg.To = booking.NormalizePhoneNumber(msg.To)

	if err := s.sender.Send(r.Context(), msg); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func locale(l pricing.Locale) pricing.Locale {
	if l == pricing.LocaleEN {
		return pricing.LocaleEN
	}
	return pricing.LocaleHR
}
