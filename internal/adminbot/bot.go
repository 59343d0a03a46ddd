// Package adminbot notifies staff about bookings over Telegram and answers
// admin commands.
package adminbot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"uredno/internal/booking"
	"uredno/internal/report"
	"uredno/internal/storage"
)

// API is the part of tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Store interface {
	GetBookingStatistics(ctx context.Context) (*storage.BookingStatistics, error)
	ListBookings(ctx context.Context, filter storage.BookingFilter) ([]storage.Booking, error)
}

type StatusUpdater interface {
	UpdateStatus(ctx context.Context, id int64, status storage.BookingStatus) (*storage.Booking, error)
}

type Bot struct {
	api      API
	store    Store
	bookings StatusUpdater
	admins   []int64
	logger   *zap.Logger
}

func NewAPI(token string, logger *zap.Logger) (*tgbotapi.BotAPI, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}
	logger.Info("Bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int64("id", botAPI.Self.ID))
	return botAPI, nil
}

func New(api API, store Store, bookings StatusUpdater, admins []int64, logger *zap.Logger) *Bot {
	return &Bot{api: api, store: store, bookings: bookings, admins: admins, logger: logger}
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Starting admin bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Shutting down admin bot")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil && update.Message.IsCommand() {
				b.handleCommand(ctx, update.Message.Chat.ID, update.Message.Command(), strings.Fields(update.Message.CommandArguments()))
			}
		}
	}
}

func (b *Bot) isAdmin(chatID int64) bool {
	return slices.Contains(b.admins, chatID)
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, cmd string, args []string) {
	if !b.isAdmin(chatID) {
		b.logger.Warn("Ignoring command from non-admin", zap.Int64("chat_id", chatID), zap.String("command", cmd))
		return
	}

	switch cmd {
	case "stats":
		b.handleStats(ctx, chatID)
	case "export":
		b.handleExport(ctx, chatID, args)
	case "status":
		if len(args) < 2 {
			b.sendError(chatID, "Upotreba: /status <ID> <new|confirmed|completed|cancelled>")
			return
		}
		b.handleStatusUpdate(ctx, chatID, args[0], args[1])
	case "start", "help":
		b.sendMessage(tgbotapi.NewMessage(chatID, helpText))
	default:
		b.sendError(chatID, "Nepoznata naredba. Pošaljite /help")
	}
}

const helpText = `Naredbe:
/stats - statistika rezervacija
/export [dana] - xlsx izvoz rezervacija, zadano zadnjih 30 dana
/status <ID> <status> - promjena statusa rezervacije`

func (b *Bot) handleStats(ctx context.Context, chatID int64) {
	stats, err := b.store.GetBookingStatistics(ctx)
	if err != nil {
		b.logger.Error("Failed to get booking statistics", zap.Error(err))
		b.sendError(chatID, "Greška pri dohvaćanju statistike")
		return
	}
	b.sendMessage(tgbotapi.NewMessage(chatID, FormatStatistics(stats)))
}

func (b *Bot) handleExport(ctx context.Context, chatID int64, args []string) {
	days := 30
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			b.sendError(chatID, "Broj dana mora biti pozitivan cijeli broj")
			return
		}
		days = n
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	bookings, err := b.store.ListBookings(ctx, storage.BookingFilter{
		From:  today.AddDate(0, 0, -days),
		Limit: 10000,
	})
	if err != nil {
		b.logger.Error("Failed to list bookings for export", zap.Error(err))
		b.sendError(chatID, "Greška pri izvozu rezervacija")
		return
	}

	var buf bytes.Buffer
	if err := report.WriteBookings(&buf, bookings); err != nil {
		b.logger.Error("Failed to build export", zap.Error(err))
		b.sendError(chatID, "Greška pri izradi datoteke")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("rezervacije_%s.xlsx", today.Format("20060102")),
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("📊 Rezervacije, zadnjih %d dana: %d", days, len(bookings))
	if _, err := b.api.Send(doc); err != nil {
		b.logger.Error("Failed to send export", zap.Error(err))
		b.sendError(chatID, "Greška pri slanju datoteke")
	}
}

func (b *Bot) handleStatusUpdate(ctx context.Context, chatID int64, idArg, statusArg string) {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		b.sendError(chatID, "Neispravan ID rezervacije")
		return
	}

	updated, err := b.bookings.UpdateStatus(ctx, id, storage.BookingStatus(statusArg))
	switch {
	case errors.Is(err, storage.ErrNotFound):
		b.sendError(chatID, fmt.Sprintf("Rezervacija #%d ne postoji", id))
		return
	case errors.Is(err, booking.ErrInvalidTransition):
		b.sendError(chatID, fmt.Sprintf("Status se ne može promijeniti u %q", statusArg))
		return
	case err != nil:
		b.logger.Error("Failed to update booking status",
			zap.Int64("booking_id", id),
			zap.String("status", statusArg),
			zap.Error(err))
		b.sendError(chatID, "Greška pri promjeni statusa")
		return
	}

	b.sendMessage(tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"✅ Status rezervacije #%d promijenjen u: %s", updated.ID, statusLabels[updated.Status])))
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.ChatID),
			zap.Error(err))
	}
}

func (b *Bot) sendError(chatID int64, text string) {
	b.sendMessage(tgbotapi.NewMessage(chatID, "❌ "+text))
}
