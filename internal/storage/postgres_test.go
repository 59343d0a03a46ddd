package storage

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestBuildListQuery(t *testing.T) {
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)

	query, args := buildListQuery(BookingFilter{Status: StatusConfirmed, From: from, To: to, Offset: 20})

	for _, want := range []string{
		"b.status = $1",
		"b.scheduled_date >= $2",
		"b.scheduled_date <= $3",
		"LIMIT $4",
		"OFFSET $5",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query lacks %q:\n%s", want, query)
		}
	}
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d", len(args))
	}
	if args[3] != defaultListLimit {
		t.Errorf("limit = %v, want %d", args[3], defaultListLimit)
	}
}

func TestBuildListQuery_NoFilter(t *testing.T) {
	query, args := buildListQuery(BookingFilter{Limit: 5})

	if strings.Contains(query, "WHERE") {
		t.Errorf("unexpected WHERE clause:\n%s", query)
	}
	if strings.Contains(query, "OFFSET") {
		t.Errorf("unexpected OFFSET:\n%s", query)
	}
	if len(args) != 1 || args[0] != 5 {
		t.Errorf("args = %v", args)
	}
}

func TestBookingStatusHolds(t *testing.T) {
	tests := map[BookingStatus]bool{
		StatusNew:       true,
		StatusConfirmed: true,
		StatusCompleted: false,
		StatusCancelled: false,
	}
	for status, want := range tests {
		if got := status.Holds(); got != want {
			t.Errorf("%s.Holds() = %v, want %v", status, got, want)
		}
	}
}

func TestSlotAvailable(t *testing.T) {
	if !(Slot{Capacity: 3, Booked: 2}).Available() {
		t.Error("expected slot with free capacity to be available")
	}
	if (Slot{Capacity: 3, Booked: 3}).Available() {
		t.Error("expected full slot to be unavailable")
	}
}

type fakeCountRows struct {
	keys   []string
	counts []int
	next   int
	err    error
	closed bool
}

func (r *fakeCountRows) Next() bool {
	if r.next >= len(r.keys) {
		return false
	}
	r.next++
	return true
}

func (r *fakeCountRows) Scan(dest ...any) error {
	*dest[0].(*string) = r.keys[r.next-1]
	*dest[1].(*int) = r.counts[r.next-1]
	return nil
}

func (r *fakeCountRows) Err() error   { return r.err }
func (r *fakeCountRows) Close() error { r.closed = true; return nil }

func TestScanCounts(t *testing.T) {
	rows := &fakeCountRows{keys: []string{"new", "confirmed"}, counts: []int{4, 2}}
	dst := map[string]int{}

	if err := scanCounts(rows, dst); err != nil {
		t.Fatalf("scanCounts: %v", err)
	}
	if dst["new"] != 4 || dst["confirmed"] != 2 {
		t.Errorf("counts = %v", dst)
	}
	if !rows.closed {
		t.Error("rows not closed")
	}
}

func TestScanCounts_IterationError(t *testing.T) {
	connReset := errors.New("connection reset")
	rows := &fakeCountRows{keys: []string{"new"}, counts: []int{4}, err: connReset}

	err := scanCounts(rows, map[string]int{})
	if !errors.Is(err, connReset) {
		t.Fatalf("err = %v, want %v", err, connReset)
	}
	if !rows.closed {
		t.Error("rows not closed")
	}
}
