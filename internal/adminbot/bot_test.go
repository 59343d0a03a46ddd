package adminbot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"uredno/internal/booking"
	"uredno/internal/storage"
)

type fakeAPI struct {
	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	failFor int64
	updates chan tgbotapi.Update
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok && f.failFor != 0 && m.ChatID == f.failFor {
		return tgbotapi.Message{}, errors.New("chat not found")
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

type fakeStore struct {
	stats    *storage.BookingStatistics
	bookings []storage.Booking
	filter   storage.BookingFilter
}

func (f *fakeStore) GetBookingStatistics(context.Context) (*storage.BookingStatistics, error) {
	return f.stats, nil
}

func (f *fakeStore) ListBookings(_ context.Context, filter storage.BookingFilter) ([]storage.Booking, error) {
	f.filter = filter
	return f.bookings, nil
}

type fakeUpdater struct {
	err error
}

func (f *fakeUpdater) UpdateStatus(_ context.Context, id int64, status storage.BookingStatus) (*storage.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &storage.Booking{ID: id, Status: status}, nil
}

const adminID = 42

func newTestBot(api *fakeAPI, store *fakeStore, updater *fakeUpdater) *Bot {
	return New(api, store, updater, []int64{adminID}, zap.NewNop())
}

func TestHandleCommand_IgnoresNonAdmins(t *testing.T) {
	api := &fakeAPI{}
	newTestBot(api, &fakeStore{}, &fakeUpdater{}).handleCommand(context.Background(), 7, "stats", nil)

	if len(api.sent) != 0 {
		t.Fatalf("expected no reply to non-admin, got %d", len(api.sent))
	}
}

func TestHandleCommand_Stats(t *testing.T) {
	api := &fakeAPI{}
	store := &fakeStore{stats: &storage.BookingStatistics{
		Total:         storage.PeriodStats{Count: 12, Revenue: decimal.RequireFromString("960.5")},
		StatusCounts:  map[string]int{"new": 3, "completed": 9},
		ServiceCounts: map[string]int{"regular": 10, "deep": 2},
	}}

	newTestBot(api, store, &fakeUpdater{}).handleCommand(context.Background(), adminID, "stats", nil)

	texts := api.texts()
	if len(texts) != 1 {
		t.Fatalf("expected one reply, got %v", texts)
	}
	for _, want := range []string{"Ukupno: 12 (960,50 €)", "Nova: 3", "Završena: 9", "deep: 2\nregular: 10"} {
		if !strings.Contains(texts[0], want) {
			t.Errorf("stats lack %q:\n%s", want, texts[0])
		}
	}
}

func TestHandleCommand_Export(t *testing.T) {
	api := &fakeAPI{}
	store := &fakeStore{bookings: []storage.Booking{{ID: 1, ServiceType: "regular"}}}

	newTestBot(api, store, &fakeUpdater{}).handleCommand(context.Background(), adminID, "export", []string{"7"})

	if len(api.sent) != 1 {
		t.Fatalf("expected one document, got %d", len(api.sent))
	}
	doc, ok := api.sent[0].(tgbotapi.DocumentConfig)
	if !ok {
		t.Fatalf("expected DocumentConfig, got %T", api.sent[0])
	}
	if !strings.Contains(doc.Caption, "7 dana: 1") {
		t.Errorf("caption = %q", doc.Caption)
	}
	wantFrom := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -7)
	if !store.filter.From.Equal(wantFrom) {
		t.Errorf("filter from = %s, want %s", store.filter.From, wantFrom)
	}
}

func TestHandleCommand_Status(t *testing.T) {
	tests := []struct {
		name string
		args []string
		err  error
		want string
	}{
		{"ok", []string{"5", "confirmed"}, nil, "#5 promijenjen u: Potvrđena"},
		{"missing args", []string{"5"}, nil, "Upotreba"},
		{"bad id", []string{"x", "confirmed"}, nil, "Neispravan ID"},
		{"not found", []string{"5", "confirmed"}, storage.ErrNotFound, "ne postoji"},
		{"bad transition", []string{"5", "new"}, booking.ErrInvalidTransition, "ne može promijeniti"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			newTestBot(api, &fakeStore{}, &fakeUpdater{err: tt.err}).
				handleCommand(context.Background(), adminID, "status", tt.args)

			texts := api.texts()
			if len(texts) != 1 || !strings.Contains(texts[0], tt.want) {
				t.Errorf("reply = %v, want it to contain %q", texts, tt.want)
			}
		})
	}
}

func TestStart_StopsOnCancel(t *testing.T) {
	api := &fakeAPI{updates: make(chan tgbotapi.Update, 1)}
	bot := newTestBot(api, &fakeStore{stats: &storage.BookingStatistics{}}, &fakeUpdater{})

	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     "/help",
		Chat:     &tgbotapi.Chat{ID: adminID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 5}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- bot.Start(ctx) }()

	deadline := time.After(2 * time.Second)
	for len(api.texts()) == 0 {
		select {
		case <-deadline:
			t.Fatal("command was not handled")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Start returned %v", err)
	}
	if !strings.Contains(api.texts()[0], "/stats") {
		t.Errorf("unexpected help text: %q", api.texts()[0])
	}
}
