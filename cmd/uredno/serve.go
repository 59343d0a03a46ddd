package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"uredno/internal/adminbot"
	"uredno/internal/booking"
	"uredno/internal/config"
	"uredno/internal/httpapi"
	"uredno/internal/pricing"
	"uredno/internal/ratelimit"
	"uredno/internal/storage"
	"uredno/internal/whatsapp"
	"uredno/pkg/redis"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API and the admin bot",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "migrate",
				Value: true,
				Usage: "Apply pending migrations before serving",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, zapLogger, err := setup(c)
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	redisClient := connectRedis(ctx, cfg.Redis, zapLogger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	pgStorage, err := storage.NewPostgresStorage(ctx, cfg.Database, redisClient, zapLogger)
	if err != nil {
		return err
	}
	defer pgStorage.Close()

	if c.Bool("migrate") {
		if err := storage.RunMigrations(ctx, pgStorage.DB(), zapLogger); err != nil {
			return err
		}
	}

	schedule, err := pricing.ParseDistanceSchedule(cfg.Pricing.DistanceSchedule)
	if err != nil {
		return err
	}
	calc := pricing.NewCalculator(pricing.DefaultRates(), schedule)
	origin := pricing.Coordinate{Lat: cfg.Pricing.OriginLat, Lng: cfg.Pricing.OriginLng}

	limiter, err := newLimiter(cfg.RateLimit, redisClient)
	if err != nil {
		return err
	}

	waClient := whatsapp.NewClient(cfg.WhatsApp.WebhookURL, cfg.WhatsApp.Token,
		cfg.WhatsApp.Timeout, cfg.WhatsApp.MaxElapsed, zapLogger)

	var notifiers []booking.Notifier
	if waClient.Enabled() {
		notifiers = append(notifiers, booking.NewWhatsAppNotifier(waClient))
	} else {
		zapLogger.Warn("WhatsApp webhook not configured, customer confirmations disabled")
	}

	var botAPI *tgbotapi.BotAPI
	if cfg.Telegram.Token != "" {
		if botAPI, err = adminbot.NewAPI(cfg.Telegram.Token, zapLogger); err != nil {
			return err
		}
		notifiers = append(notifiers, adminbot.NewNotifier(botAPI, cfg.Telegram.AdminIDs, cfg.Telegram.ChannelID, zapLogger))
	} else {
		zapLogger.Warn("Telegram token not set, admin bot disabled")
	}

	bookings := booking.NewService(pgStorage, calc, origin, zapLogger, notifiers...)
	defer bookings.Wait()

	server := httpapi.NewServer(httpapi.Deps{
		Calculator:     calc,
		Origin:         origin,
		Bookings:       bookings,
		Sender:         waClient,
		Limiter:        limiter,
		Pinger:         pgStorage,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Logger:         zapLogger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx, cfg.HTTP) })
	if botAPI != nil {
		bot := adminbot.New(botAPI, pgStorage, bookings, cfg.Telegram.AdminIDs, zapLogger)
		g.Go(func() error { return bot.Start(gctx) })
	}
	if ml, ok := limiter.(*ratelimit.MemoryLimiter); ok {
		g.Go(func() error {
			ml.Run(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	zapLogger.Info("Shutdown complete")
	return nil
}

// connectRedis returns nil when Redis is unreachable; callers then run
// without the statistics cache.
func connectRedis(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	client := redis.New(cfg.Addr, cfg.Password, cfg.DB, cfg.TTL)
	if err := client.Ping(ctx); err != nil {
		logger.Warn("Redis unavailable, running without cache",
			zap.String("addr", cfg.Addr),
			zap.Error(err))
		client.Close()
		return nil
	}
	logger.Info("Connected to Redis", zap.String("addr", cfg.Addr))
	return client
}

func newLimiter(cfg config.RateLimitConfig, redisClient *redis.Client) (ratelimit.Limiter, error) {
	if cfg.Backend == "redis" {
		if redisClient == nil {
			return nil, fmt.Errorf("rate limit backend redis requires a reachable redis")
		}
		return ratelimit.NewRedisLimiter(redisClient, cfg.Limit, cfg.Window), nil
	}
	return ratelimit.NewMemoryLimiter(cfg.Limit, cfg.Window), nil
}
