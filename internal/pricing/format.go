package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Locale string

const (
	LocaleHR Locale = "hr"
	LocaleEN Locale = "en"
)

// LineItem is one displayable row of a breakdown.
type LineItem struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

var labels = map[Locale]map[string]string{
	LocaleHR: {
		"base":      "Osnovna cijena",
		"extras":    "Dodatne usluge",
		"outdoor":   "Vanjske površine",
		"rental":    "Usluge za najam",
		"distance":  "Naknada za udaljenost",
		"weekend":   "Vikend dodatak",
		"holiday":   "Blagdanski dodatak",
		"discount":  "Popust za učestalost",
		"net":       "Iznos bez PDV-a",
		"vat":       "PDV (uključen)",
		"total":     "Ukupno",
		"minimum":   "primijenjena minimalna cijena",
		"quoteLine": "Procijenjena cijena čišćenja: %s",
		"noteVAT":   "Cijena uključuje PDV.",
		"noteDist":  "Dolazak unutar 10 km je besplatan.",
	},
	LocaleEN: {
		"base":      "Base price",
		"extras":    "Extra services",
		"outdoor":   "Outdoor areas",
		"rental":    "Rental services",
		"distance":  "Distance fee",
		"weekend":   "Weekend surcharge",
		"holiday":   "Holiday surcharge",
		"discount":  "Frequency discount",
		"net":       "Net amount",
		"vat":       "VAT (included)",
		"total":     "Total",
		"minimum":   "minimum price applied",
		"quoteLine": "Estimated cleaning price: %s",
		"noteVAT":   "Price includes VAT.",
		"noteDist":  "Travel within 10 km is free.",
	},
}

func label(loc Locale, key string) string {
	if l, ok := labels[loc]; ok {
		return l[key]
	}
	return labels[LocaleHR][key]
}

// Money rounds to cents for display, e.g. "48,00 €" for hr.
func Money(amount decimal.Decimal, loc Locale) string {
	s := amount.StringFixed(2)
	if loc != LocaleEN {
		s = strings.Replace(s, ".", ",", 1)
	}
	return s + " €"
}

// LineItems lists the non-zero components of a breakdown in display order.
// The discount is returned as a negative amount.
func (pb *PriceBreakdown) LineItems(loc Locale) []LineItem {
	items := []LineItem{{Key: "base", Label: label(loc, "base"), Amount: pb.BasePrice}}

	for _, id := range pb.ExtraIDs() {
		line := pb.Extras[id]
		items = append(items, LineItem{
			Key:    "extra:" + id,
			Label:  fmt.Sprintf("%s: %s × %d", label(loc, "extras"), id, line.Quantity),
			Amount: line.Total,
		})
	}
	for _, id := range pb.OutdoorIDs() {
		line := pb.OutdoorServices[id]
		text := fmt.Sprintf("%s: %s %s m²", label(loc, "outdoor"), id, line.Area.String())
		if line.MinimumApplied {
			text += " (" + label(loc, "minimum") + ")"
		}
		items = append(items, LineItem{Key: "outdoor:" + id, Label: text, Amount: line.Total})
	}

	optional := []struct {
		key    string
		amount decimal.Decimal
	}{
		{"rental", pb.RentalAdjustment},
		{"distance", pb.DistanceFee},
		{"weekend", pb.WeekendSurcharge},
		{"holiday", pb.HolidaySurcharge},
		{"discount", pb.FrequencyDiscount.Neg()},
	}
	for _, o := range optional {
		if o.amount.IsZero() {
			continue
		}
		items = append(items, LineItem{Key: o.key, Label: label(loc, o.key), Amount: o.amount})
	}

	return append(items,
		LineItem{Key: "net", Label: label(loc, "net"), Amount: pb.NetAmount},
		LineItem{Key: "vat", Label: label(loc, "vat"), Amount: pb.VATAmount},
		LineItem{Key: "total", Label: label(loc, "total"), Amount: pb.Total},
	)
}

// Messages returns the user facing summary sentences of a quote.
func (q *Quote) Messages(loc Locale) []string {
	msgs := []string{
		fmt.Sprintf(label(loc, "quoteLine"), Money(q.Total, loc)),
		label(loc, "noteVAT"),
	}
	if q.DistanceFee.IsZero() {
		msgs = append(msgs, label(loc, "noteDist"))
	}
	return msgs
}
