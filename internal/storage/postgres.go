package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"uredno/internal/config"
	"uredno/pkg/redis"
)

const (
	statsCacheKey       = "booking_stats"
	DefaultSlotCapacity = 3
	defaultListLimit    = 50
)

type PostgresStorage struct {
	db     *sqlx.DB
	redis  *redis.Client
	logger *zap.Logger
}

// NewPostgresStorage connects with exponential backoff. redisClient may be nil,
// in which case statistics are not cached.
func NewPostgresStorage(ctx context.Context, cfg config.DatabaseConfig, redisClient *redis.Client, logger *zap.Logger) (*PostgresStorage, error) {
	const operation = "storage.NewPostgresStorage"

	var db *sqlx.DB

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...", zap.String("host", cfg.Host), zap.String("db", cfg.Name))

	err := backoff.RetryNotify(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			db = conn
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, next time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &PostgresStorage{db: db, redis: redisClient, logger: logger}, nil
}

// DB exposes the underlying handle for migrations.
func (s *PostgresStorage) DB() *sql.DB {
	return s.db.DB
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateCustomer inserts a customer or updates name and email of the one
// with the same phone number. c.ID and timestamps are filled in.
func (s *PostgresStorage) CreateCustomer(ctx context.Context, c *Customer) error {
	const operation = "storage.CreateCustomer"
	const query = `
		INSERT INTO customers (name, phone, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (phone) DO UPDATE
			SET name = EXCLUDED.name,
			    email = COALESCE(NULLIF(EXCLUDED.email, ''), customers.email),
			    updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query, c.Name, c.Phone, c.Email).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

func (s *PostgresStorage) CreateBooking(ctx context.Context, b *Booking) error {
	const operation = "storage.CreateBooking"
	const query = `
		INSERT INTO bookings (
			reference, customer_id, service_type, property_type, property_size,
			frequency, address, scheduled_date, time_slot, distance_km,
			base_price, extras_total, distance_fee, surcharges, discount_amount,
			net_amount, vat_amount, total_price, breakdown, status, notes
		) VALUES (
			:reference, :customer_id, :service_type, :property_type, :property_size,
			:frequency, :address, :scheduled_date, :time_slot, :distance_km,
			:base_price, :extras_total, :distance_fee, :surcharges, :discount_amount,
			:net_amount, :vat_amount, :total_price, :breakdown, :status, :notes
		)
		RETURNING id, created_at, updated_at`

	if len(b.Breakdown) == 0 {
		b.Breakdown = []byte("{}")
	}
	if b.Status == "" {
		b.Status = StatusNew
	}

	rows, err := s.db.NamedQueryContext(ctx, query, b)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return fmt.Errorf("%s: no id returned: %w", operation, rows.Err())
	}
	if err := rows.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("%s: scan: %w", operation, err)
	}

	s.invalidateStats(ctx)
	return nil
}

const bookingSelect = `
	SELECT b.*, c.name AS customer_name, c.phone AS customer_phone
	FROM bookings b
	JOIN customers c ON c.id = b.customer_id`

func (s *PostgresStorage) GetBooking(ctx context.Context, id int64) (*Booking, error) {
	return s.getBooking(ctx, "storage.GetBooking", bookingSelect+` WHERE b.id = $1`, id)
}

func (s *PostgresStorage) GetBookingByReference(ctx context.Context, reference string) (*Booking, error) {
	return s.getBooking(ctx, "storage.GetBookingByReference", bookingSelect+` WHERE b.reference = $1`, reference)
}

func (s *PostgresStorage) getBooking(ctx context.Context, operation, query string, arg any) (*Booking, error) {
	var b Booking
	if err := s.db.GetContext(ctx, &b, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: booking %v: %w", operation, arg, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return &b, nil
}

func (s *PostgresStorage) UpdateBookingStatus(ctx context.Context, id int64, status BookingStatus) error {
	const operation = "storage.UpdateBookingStatus"
	const query = `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`

	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: booking %d: %w", operation, id, ErrNotFound)
	}

	s.invalidateStats(ctx)
	return nil
}

func (s *PostgresStorage) ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error) {
	const operation = "storage.ListBookings"

	query, args := buildListQuery(filter)
	var bookings []Booking
	if err := s.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return bookings, nil
}

func buildListQuery(f BookingFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("b.status = $%d", f.Status)
	}
	if !f.From.IsZero() {
		add("b.scheduled_date >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("b.scheduled_date <= $%d", f.To)
	}

	var sb strings.Builder
	sb.WriteString(bookingSelect)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY b.created_at DESC")

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	if f.Offset > 0 {
		args = append(args, f.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}
	return sb.String(), args
}

func (s *PostgresStorage) CreateInquiry(ctx context.Context, in *Inquiry) error {
	const operation = "storage.CreateInquiry"
	const query = `
		INSERT INTO inquiries (name, phone, email, message, source)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	if in.Source == "" {
		in.Source = "contact_form"
	}
	err := s.db.QueryRowxContext(ctx, query, in.Name, in.Phone, in.Email, in.Message, in.Source).
		Scan(&in.ID, &in.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

// GetAvailability returns the slots recorded between from and to inclusive.
// Days without a row have the default capacity and nothing booked.
func (s *PostgresStorage) GetAvailability(ctx context.Context, from, to time.Time) ([]Slot, error) {
	const operation = "storage.GetAvailability"
	const query = `
		SELECT slot_date, time_slot, capacity, booked
		FROM availability
		WHERE slot_date BETWEEN $1 AND $2
		ORDER BY slot_date, time_slot`

	var slots []Slot
	if err := s.db.SelectContext(ctx, &slots, query, from, to); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return slots, nil
}

// ReserveSlot takes one unit of capacity of a slot, creating the slot row on
// first use. It fails with ErrSlotUnavailable when the slot is full.
func (s *PostgresStorage) ReserveSlot(ctx context.Context, date time.Time, timeSlot string) error {
	const operation = "storage.ReserveSlot"
	const query = `
		INSERT INTO availability (slot_date, time_slot, capacity, booked)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (slot_date, time_slot) DO UPDATE
			SET booked = availability.booked + 1
			WHERE availability.booked < availability.capacity
		RETURNING booked`

	var booked int
	err := s.db.QueryRowxContext(ctx, query, date, timeSlot, DefaultSlotCapacity).Scan(&booked)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %s %s: %w", operation, date.Format(time.DateOnly), timeSlot, ErrSlotUnavailable)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

// ReleaseSlot gives back one unit of capacity.
func (s *PostgresStorage) ReleaseSlot(ctx context.Context, date time.Time, timeSlot string) error {
	const operation = "storage.ReleaseSlot"
	const query = `
		UPDATE availability SET booked = booked - 1
		WHERE slot_date = $1 AND time_slot = $2 AND booked > 0`

	if _, err := s.db.ExecContext(ctx, query, date, timeSlot); err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

// GetBookingStatistics aggregates bookings. Results are cached in Redis for
// the client TTL and dropped whenever a booking changes.
func (s *PostgresStorage) GetBookingStatistics(ctx context.Context) (*BookingStatistics, error) {
	const operation = "storage.GetBookingStatistics"

	if s.redis != nil {
		var cached BookingStatistics
		if err := s.redis.GetJSON(ctx, statsCacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, redis.ErrMiss) {
			s.logger.Warn("Failed to read statistics cache", zap.Error(err))
		}
	}

	stats := &BookingStatistics{
		StatusCounts:  make(map[string]int),
		ServiceCounts: make(map[string]int),
	}

	periods := []struct {
		dst   *PeriodStats
		since string
	}{
		{&stats.Total, "'-infinity'::timestamptz"},
		{&stats.Today, "CURRENT_DATE"},
		{&stats.Week, "CURRENT_DATE - INTERVAL '7 days'"},
		{&stats.Month, "CURRENT_DATE - INTERVAL '30 days'"},
	}
	for _, p := range periods {
		query := `
			SELECT COUNT(*) AS count, COALESCE(SUM(total_price), 0) AS revenue
			FROM bookings
			WHERE status <> 'cancelled' AND created_at >= ` + p.since
		if err := s.db.GetContext(ctx, p.dst, query); err != nil {
			return nil, fmt.Errorf("%s: %w", operation, err)
		}
	}

	groups := []struct {
		dst    map[string]int
		column string
	}{
		{stats.StatusCounts, "status"},
		{stats.ServiceCounts, "service_type"},
	}
	for _, g := range groups {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+g.column+`, COUNT(*) FROM bookings GROUP BY `+g.column)
		if err != nil {
			return nil, fmt.Errorf("%s: group by %s: %w", operation, g.column, err)
		}
		if err := scanCounts(rows, g.dst); err != nil {
			return nil, fmt.Errorf("%s: group by %s: %w", operation, g.column, err)
		}
	}

	if s.redis != nil {
		if err := s.redis.SetJSON(ctx, statsCacheKey, stats); err != nil {
			s.logger.Warn("Failed to cache statistics", zap.Error(err))
		}
	}
	return stats, nil
}

type countRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// scanCounts reads (key, count) rows into dst and closes rows.
func scanCounts(rows countRows, dst map[string]int) error {
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		dst[key] = count
	}
	return rows.Err()
}

func (s *PostgresStorage) invalidateStats(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, statsCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate statistics cache", zap.Error(err))
	}
}
