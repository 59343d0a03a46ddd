package adminbot

import (
	"fmt"
	"sort"
	"strings"

	"uredno/internal/booking"
	"uredno/internal/pricing"
	"uredno/internal/storage"
)

var statusLabels = map[storage.BookingStatus]string{
	storage.StatusNew:       "Nova",
	storage.StatusConfirmed: "Potvrđena",
	storage.StatusCompleted: "Završena",
	storage.StatusCancelled: "Otkazana",
}

func FormatBookingNotification(b storage.Booking) string {
	text := fmt.Sprintf(
		"🧹 Nova rezervacija #%d\n\n"+
			"Usluga: %s\n"+
			"Nekretnina: %s, %s m²\n"+
			"Učestalost: %s\n"+
			"Termin: %s u %s\n"+
			"Adresa: %s\n"+
			"──────────────────\n"+
			"Osnovna cijena: %s\n"+
			"Dodatne usluge: %s\n"+
			"Udaljenost: %s\n"+
			"Dodaci: %s\n"+
			"Popust: -%s\n"+
			"Ukupno: %s (PDV %s)\n"+
			"──────────────────\n"+
			"Kupac: %s\n"+
			"Telefon: %s\n"+
			"Referenca: %s",
		b.ID,
		b.ServiceType,
		b.PropertyType, b.PropertySize.StringFixed(0),
		b.Frequency,
		b.ScheduledDate.Format("02.01.2006."), b.TimeSlot,
		b.Address,
		pricing.Money(b.BasePrice, pricing.LocaleHR),
		pricing.Money(b.ExtrasTotal, pricing.LocaleHR),
		pricing.Money(b.DistanceFee, pricing.LocaleHR),
		pricing.Money(b.Surcharges, pricing.LocaleHR),
		pricing.Money(b.DiscountAmount, pricing.LocaleHR),
		pricing.Money(b.TotalPrice, pricing.LocaleHR), pricing.Money(b.VATAmount, pricing.LocaleHR),
		b.CustomerName,
		booking.FormatPhoneNumber(b.CustomerPhone),
		b.Reference,
	)
	if b.Notes != "" {
		text += "\nNapomena: " + b.Notes
	}
	return text
}

// FormatBookingSummary is the short channel variant without customer data.
func FormatBookingSummary(b storage.Booking) string {
	return fmt.Sprintf("📦 Rezervacija #%d: %s, %s u %s, %s",
		b.ID, b.ServiceType,
		b.ScheduledDate.Format("02.01."), b.TimeSlot,
		pricing.Money(b.TotalPrice, pricing.LocaleHR))
}

func FormatInquiryNotification(in storage.Inquiry) string {
	contact := []string{}
	if in.Phone != "" {
		contact = append(contact, booking.FormatPhoneNumber(in.Phone))
	}
	if in.Email != "" {
		contact = append(contact, in.Email)
	}
	return fmt.Sprintf("✉️ Novi upit #%d\n\nOd: %s\nKontakt: %s\n\n%s",
		in.ID, in.Name, strings.Join(contact, ", "), in.Message)
}

func FormatStatistics(s *storage.BookingStatistics) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Statistika rezervacija\n\n")
	fmt.Fprintf(&sb, "📌 Ukupno: %d (%s)\n", s.Total.Count, pricing.Money(s.Total.Revenue, pricing.LocaleHR))
	fmt.Fprintf(&sb, "📅 Danas: %d (%s)\n", s.Today.Count, pricing.Money(s.Today.Revenue, pricing.LocaleHR))
	fmt.Fprintf(&sb, "📅 Tjedan: %d (%s)\n", s.Week.Count, pricing.Money(s.Week.Revenue, pricing.LocaleHR))
	fmt.Fprintf(&sb, "📅 Mjesec: %d (%s)\n\n", s.Month.Count, pricing.Money(s.Month.Revenue, pricing.LocaleHR))

	sb.WriteString("📌 Po statusu:\n")
	for _, st := range []storage.BookingStatus{storage.StatusNew, storage.StatusConfirmed, storage.StatusCompleted, storage.StatusCancelled} {
		fmt.Fprintf(&sb, "%s: %d\n", statusLabels[st], s.StatusCounts[string(st)])
	}

	if len(s.ServiceCounts) > 0 {
		services := make([]string, 0, len(s.ServiceCounts))
		for svc := range s.ServiceCounts {
			services = append(services, svc)
		}
		sort.Strings(services)
		sb.WriteString("\n📌 Po usluzi:\n")
		for _, svc := range services {
			fmt.Fprintf(&sb, "%s: %d\n", svc, s.ServiceCounts[svc])
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
