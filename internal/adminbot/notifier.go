package adminbot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"uredno/internal/storage"
)

// Notifier posts new bookings and inquiries to every admin chat and a short
// summary to the channel, if one is configured.
type Notifier struct {
	api       API
	admins    []int64
	channelID int64
	logger    *zap.Logger
}

func NewNotifier(api API, admins []int64, channelID int64, logger *zap.Logger) *Notifier {
	return &Notifier{api: api, admins: admins, channelID: channelID, logger: logger}
}

func (n *Notifier) NotifyNewBooking(ctx context.Context, b storage.Booking) error {
	err := n.broadcast(FormatBookingNotification(b))
	if n.channelID != 0 {
		if _, chErr := n.api.Send(tgbotapi.NewMessage(n.channelID, FormatBookingSummary(b))); chErr != nil {
			n.logger.Error("Failed to send channel notification",
				zap.Int64("booking_id", b.ID),
				zap.Error(chErr))
			err = errors.Join(err, chErr)
		}
	}
	return err
}

func (n *Notifier) NotifyNewInquiry(ctx context.Context, in storage.Inquiry) error {
	return n.broadcast(FormatInquiryNotification(in))
}

func (n *Notifier) broadcast(text string) error {
	var errs []error
	for _, chatID := range n.admins {
		if chatID == 0 {
			continue
		}
		if _, err := n.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			n.logger.Error("Failed to send admin notification",
				zap.Int64("chat_id", chatID),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}
