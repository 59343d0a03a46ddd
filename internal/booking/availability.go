package booking

import (
	"context"
	"fmt"
	"time"

	"uredno/internal/storage"
)

// maxCalendarDays bounds one availability request.
const maxCalendarDays = 31

// ParseRange parses an inclusive YYYY-MM-DD range. An empty from means today
// and an empty to means a week after from.
func (s *Service) ParseRange(from, to string) (time.Time, time.Time, error) {
	today := truncateDay(s.now())

	start := today
	if from != "" {
		d, err := time.Parse(time.DateOnly, from)
		if err != nil {
			return time.Time{}, time.Time{}, invalid("from", "%q is not a YYYY-MM-DD date", from)
		}
		start = d
	}
	end := start.AddDate(0, 0, 6)
	if to != "" {
		d, err := time.Parse(time.DateOnly, to)
		if err != nil {
			return time.Time{}, time.Time{}, invalid("to", "%q is not a YYYY-MM-DD date", to)
		}
		end = d
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, invalid("to", "must not be before from")
	}
	if end.Sub(start) > maxCalendarDays*24*time.Hour {
		return time.Time{}, time.Time{}, invalid("to", "range is limited to %d days", maxCalendarDays)
	}
	return start, end, nil
}

// Availability returns the full slot calendar of an inclusive date range.
func (s *Service) Availability(ctx context.Context, from, to string) ([]storage.Slot, error) {
	const operation = "booking.Availability"

	start, end, err := s.ParseRange(from, to)
	if err != nil {
		return nil, err
	}
	recorded, err := s.repo.GetAvailability(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return Calendar(start, end, recorded), nil
}

// Calendar lists every offered slot between from and to inclusive. Slots
// missing from recorded have the default capacity and nothing booked.
func Calendar(from, to time.Time, recorded []storage.Slot) []storage.Slot {
	type key struct {
		day  string
		slot string
	}
	known := make(map[key]storage.Slot, len(recorded))
	for _, s := range recorded {
		known[key{s.Date.Format(time.DateOnly), s.TimeSlot}] = s
	}

	var out []storage.Slot
	for d := truncateDay(from); !d.After(truncateDay(to)); d = d.AddDate(0, 0, 1) {
		for _, ts := range TimeSlots {
			s, ok := known[key{d.Format(time.DateOnly), ts}]
			if !ok {
				s = storage.Slot{Capacity: storage.DefaultSlotCapacity}
			}
			s.Date = d
			s.TimeSlot = ts
			out = append(out, s)
		}
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
