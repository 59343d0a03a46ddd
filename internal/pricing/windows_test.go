package pricing

import (
	"errors"
	"testing"
)

func TestCalculateWindows_UpperFloorWithSkylights(t *testing.T) {
	res, err := DefaultRates().CalculateWindows(WindowsInput{
		WindowCount:  4,
		Side:         WindowsInterior,
		FloorLevel:   FloorSecondPlus,
		BalconyDoors: 1,
		Skylights:    2,
	})
	if err != nil {
		t.Fatalf("CalculateWindows failed: %v", err)
	}

	// 5 * 0.6 + 2
	assertAmount(t, "per window", res.PricePerWindow, "5")
	assertAmount(t, "windows", res.WindowsBase, "20")
	assertAmount(t, "balcony doors", res.BalconyDoorsTotal, "10")
	// 2 * (1.5 * 5 + 2)
	assertAmount(t, "skylights", res.SkylightsTotal, "19")
	assertAmount(t, "base", res.BasePrice, "49")
}

func TestCalculateWindows_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   WindowsInput
		want error
	}{
		{"no windows", WindowsInput{Side: WindowsBoth, FloorLevel: FloorGround}, ErrInvalidInput},
		{"negative skylights", WindowsInput{WindowCount: 1, Side: WindowsBoth, FloorLevel: FloorGround, Skylights: -1}, ErrInvalidInput},
		{"unknown side", WindowsInput{WindowCount: 1, Side: "top", FloorLevel: FloorGround}, ErrUnknownEnumValue},
		{"unknown floor", WindowsInput{WindowCount: 1, Side: WindowsBoth, FloorLevel: "roof"}, ErrUnknownEnumValue},
	}
	for _, tt := range tests {
		if _, err := DefaultRates().CalculateWindows(tt.in); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
	}
}
