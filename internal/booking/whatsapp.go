package booking

import (
	"context"
	"fmt"

	"uredno/internal/pricing"
	"uredno/internal/storage"
	"uredno/internal/whatsapp"
)

type messageSender interface {
	Send(ctx context.Context, msg whatsapp.Message) error
}

// WhatsAppNotifier sends the customer a confirmation of their booking or
// inquiry.
type WhatsAppNotifier struct {
	sender messageSender
}

func NewWhatsAppNotifier(sender messageSender) *WhatsAppNotifier {
	return &WhatsAppNotifier{sender: sender}
}

func (n *WhatsAppNotifier) NotifyNewBooking(ctx context.Context, b storage.Booking) error {
	return n.sender.Send(ctx, whatsapp.Message{
		To:   b.CustomerPhone,
		Text: BookingConfirmationText(b),
	})
}

func (n *WhatsAppNotifier) NotifyNewInquiry(ctx context.Context, in storage.Inquiry) error {
	if in.Phone == "" {
		return nil
	}
	return n.sender.Send(ctx, whatsapp.Message{
		To:   in.Phone,
		Text: fmt.Sprintf("Poštovani %s, zaprimili smo vaš upit i javit ćemo vam se u najkraćem roku. Uredno.eu", in.Name),
	})
}

func BookingConfirmationText(b storage.Booking) string {
	return fmt.Sprintf(
		"Poštovani %s, zaprimili smo vašu rezervaciju čišćenja za %s u %s (%s).\n"+
			"Ukupna cijena: %s (PDV uključen).\n"+
			"Broj rezervacije: %s\n"+
			"Uskoro ćemo vas kontaktirati radi potvrde. Uredno.eu",
		b.CustomerName,
		b.ScheduledDate.Format("02.01.2006."),
		b.TimeSlot,
		b.Address,
		pricing.Money(b.TotalPrice, pricing.LocaleHR),
		b.Reference,
	)
}
