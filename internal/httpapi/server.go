// Package httpapi exposes pricing, bookings, contact inquiries and the
// WhatsApp relay as a JSON API for the public website.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"uredno/internal/booking"
	"uredno/internal/config"
	"uredno/internal/pricing"
	"uredno/internal/ratelimit"
	"uredno/internal/storage"
	"uredno/internal/whatsapp"
)

const maxBodyBytes = 1 << 20

type Bookings interface {
	Create(ctx context.Context, req booking.Request) (*storage.Booking, *pricing.PriceBreakdown, error)
	GetByReference(ctx context.Context, reference string) (*storage.Booking, error)
	SubmitInquiry(ctx context.Context, req booking.InquiryRequest) (*storage.Inquiry, error)
	Availability(ctx context.Context, from, to string) ([]storage.Slot, error)
}

type Sender interface {
	Send(ctx context.Context, msg whatsapp.Message) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the server. Pinger may be nil.
type Deps struct {
	Calculator     *pricing.Calculator
	Origin         pricing.Coordinate
	Bookings       Bookings
	Sender         Sender
	Limiter        ratelimit.Limiter
	Pinger         Pinger
	AllowedOrigins []string
	Logger         *zap.Logger
}

type Server struct {
	calc           *pricing.Calculator
	origin         pricing.Coordinate
	bookings       Bookings
	sender         Sender
	limiter        ratelimit.Limiter
	pinger         Pinger
	allowedOrigins []string
	logger         *zap.Logger
	mux            *http.ServeMux
}

func NewServer(d Deps) *Server {
	s := &Server{
		calc:           d.Calculator,
		origin:         d.Origin,
		bookings:       d.Bookings,
		sender:         d.Sender,
		limiter:        d.Limiter,
		pinger:         d.Pinger,
		allowedOrigins: d.AllowedOrigins,
		logger:         d.Logger,
		mux:            http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.Handle("POST /api/calculate-price", s.limit(s.handleCalculatePrice))
	s.mux.Handle("POST /api/price", s.limit(s.handlePrice))

	s.mux.Handle("POST /api/bookings", s.limit(s.handleCreateBooking))
	s.mux.HandleFunc("GET /api/bookings/{reference}", s.handleGetBooking)
	s.mux.HandleFunc("GET /api/availability", s.handleAvailability)

	s.mux.Handle("POST /api/contact", s.limit(s.handleContact))
	s.mux.Handle("POST /api/whatsapp", s.limit(s.handleWhatsApp))
}

// Routes returns the handler with the middleware chain applied, outermost
// first: request id, access log, recovery, CORS.
func (s *Server) Routes() http.Handler {
	var h http.Handler = s.mux
	h = s.cors(h)
	h = s.recovery(h)
	h = s.accessLog(h)
	h = requestID(h)
	return h
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context, cfg config.HTTPConfig) error {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.Warn("Health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
