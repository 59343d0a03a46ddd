package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidInput is returned for negative sizes, areas, distances or
	// quantities and for non-positive rates where one is required.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidServiceConfiguration is returned when a windows or office
	// service is requested without its specialised input, or when an input
	// is supplied for a service family it does not belong to.
	ErrInvalidServiceConfiguration = errors.New("invalid service configuration")

	// ErrUnknownEnumValue is returned for an unrecognised service, property,
	// frequency or option value.
	ErrUnknownEnumValue = errors.New("unknown enum value")
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func unknownEnum(kind, value string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownEnumValue, kind, value)
}

func requirePositive(name string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return invalidInput("%s must be positive, got %s", name, v)
	}
	return nil
}

func requireNonNegative(name string, v decimal.Decimal) error {
	if v.IsNegative() {
		return invalidInput("%s must not be negative, got %s", name, v)
	}
	return nil
}

func requireNonNegativeCount(name string, n int) error {
	if n < 0 {
		return invalidInput("%s must not be negative, got %d", name, n)
	}
	return nil
}
