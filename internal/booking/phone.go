package booking

import (
	"fmt"
	"strings"
	"unicode"
)

var badNumbers = map[string]bool{
	"000000000":  true,
	"111111111":  true,
	"123456789":  true,
	"1234567890": true,
	"999999999":  true,
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// NormalizePhoneNumber converts a Croatian or international number to
// +<country><number>. National numbers starting with 0 get +385.
func NormalizePhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	cleaned := digitsOnly(phone)

	switch {
	case strings.HasPrefix(phone, "+"):
		return "+" + cleaned
	case strings.HasPrefix(cleaned, "00"):
		return "+" + cleaned[2:]
	case strings.HasPrefix(cleaned, "385") && len(cleaned) >= 11:
		return "+" + cleaned
	case strings.HasPrefix(cleaned, "0") && len(cleaned) >= 8 && len(cleaned) <= 10:
		return "+385" + cleaned[1:]
	}
	return cleaned
}

// IsValidPhoneNumber accepts E.164 numbers; Croatian ones need 8 or 9
// national digits.
func IsValidPhoneNumber(phone string) bool {
	normalized := NormalizePhoneNumber(phone)
	if !strings.HasPrefix(normalized, "+") {
		return false
	}
	digits := normalized[1:]
	if len(digits) < 8 || len(digits) > 15 {
		return false
	}
	if strings.HasPrefix(digits, "385") {
		national := digits[3:]
		if badNumbers[national] || strings.HasPrefix(national, "0") {
			return false
		}
		return len(national) == 8 || len(national) == 9
	}
	return !badNumbers[digits]
}

// FormatPhoneNumber renders Croatian mobile numbers as +385 91 123 4567.
func FormatPhoneNumber(phone string) string {
	if strings.HasPrefix(phone, "+3859") && len(phone) == 13 {
		return fmt.Sprintf("%s %s %s %s", phone[:4], phone[4:6], phone[6:9], phone[9:])
	}
	return phone
}
