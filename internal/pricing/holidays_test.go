package pricing

import (
	"testing"
	"time"
)

func TestEasterSunday(t *testing.T) {
	tests := map[int]string{
		2024: "2024-03-31",
		2025: "2025-04-20",
		2026: "2026-04-05",
		2027: "2027-03-28",
	}
	for year, want := range tests {
		if got := easterSunday(year).Format("2006-01-02"); got != want {
			t.Errorf("easter %d = %s, want %s", year, got, want)
		}
	}
}

func TestIsCroatianPublicHoliday(t *testing.T) {
	tests := []struct {
		day  string
		want bool
	}{
		{"2025-01-01", true},
		{"2025-01-06", true},
		{"2025-04-21", true}, // Easter Monday
		{"2025-06-19", true}, // Corpus Christi
		{"2025-05-30", true},
		{"2025-11-18", true},
		{"2025-12-24", false},
		{"2025-04-22", false},
		{"2024-03-13", false},
	}
	for _, tt := range tests {
		if got := IsCroatianPublicHoliday(date(tt.day).Time); got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.day, got, tt.want)
		}
	}
}

func TestHolidayName_IgnoresClock(t *testing.T) {
	evening := time.Date(2025, time.April, 21, 22, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	name, ok := HolidayName(evening)
	if !ok || name != "Uskrsni ponedjeljak" {
		t.Errorf("HolidayName = %q, %v", name, ok)
	}
}

func TestIsWeekend(t *testing.T) {
	if !IsWeekend(date("2024-03-16").Time) || !IsWeekend(date("2024-03-17").Time) {
		t.Error("expected Saturday and Sunday to be weekend")
	}
	if IsWeekend(date("2024-03-15").Time) {
		t.Error("Friday is not weekend")
	}
}
