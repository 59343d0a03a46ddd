package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"uredno/internal/pricing"
	"uredno/internal/report"
	"uredno/internal/storage"
)

func migrateCommand() *cli.Command {
	action := func(run func(ctx context.Context, db *sql.DB, logger *zap.Logger) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			cfg, zapLogger, err := setup(c)
			if err != nil {
				return err
			}
			defer zapLogger.Sync()

			pgStorage, err := storage.NewPostgresStorage(c.Context, cfg.Database, nil, zapLogger)
			if err != nil {
				return err
			}
			defer pgStorage.Close()
			return run(c.Context, pgStorage.DB(), zapLogger)
		}
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Subcommands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply all pending migrations",
				Action: action(storage.RunMigrations),
			},
			{
				Name:   "down",
				Usage:  "Roll back the latest migration",
				Action: action(storage.RollbackMigration),
			},
			{
				Name:   "status",
				Usage:  "Print the migration status",
				Action: action(storage.MigrationStatus),
			},
		},
	}
}

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Print the price breakdown of a cleaning",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "request",
				Usage: "Read a full JSON price request from `FILE` (- for stdin); other pricing flags are ignored",
			},
			&cli.StringFlag{Name: "service", Value: "regular", Usage: "Service type"},
			&cli.Float64Flag{Name: "size", Value: 50, Usage: "Property size in m²"},
			&cli.StringFlag{Name: "property", Value: "apartment", Usage: "Property type (apartment, house, office)"},
			&cli.StringFlag{Name: "frequency", Value: "once", Usage: "Cleaning frequency"},
			&cli.StringSliceFlag{Name: "extra", Usage: "Indoor extra as id or id:quantity, repeatable"},
			&cli.StringSliceFlag{Name: "outdoor", Usage: "Outdoor service as id:area, repeatable"},
			&cli.Float64Flag{Name: "distance", Usage: "Travel distance in km"},
			&cli.StringFlag{Name: "date", Usage: "Cleaning date YYYY-MM-DD"},
			&cli.StringFlag{Name: "schedule", Value: string(pricing.TieredDistance), Usage: "Distance schedule (tiered, linear)"},
			&cli.StringFlag{Name: "locale", Value: string(pricing.LocaleHR), Usage: "Label language (hr, en)"},
			&cli.BoolFlag{Name: "json", Usage: "Print the full breakdown as JSON"},
		},
		Action: runQuote,
	}
}

func runQuote(c *cli.Context) error {
	schedule, err := pricing.ParseDistanceSchedule(c.String("schedule"))
	if err != nil {
		return err
	}
	calc := pricing.NewCalculator(pricing.DefaultRates(), schedule)

	var req pricing.PriceRequest
	if path := c.String("request"); path != "" {
		if req, err = readPriceRequest(path); err != nil {
			return err
		}
	} else if req, err = priceRequestFromFlags(c); err != nil {
		return err
	}

	if req, err = calc.Rates().WithCatalogPrices(req); err != nil {
		return err
	}
	pb, err := calc.Calculate(req)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(pb)
	}
	return printLineItems(c.App.Writer, pb.LineItems(pricing.Locale(c.String("locale"))), pricing.Locale(c.String("locale")))
}

func readPriceRequest(path string) (pricing.PriceRequest, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return pricing.PriceRequest{}, err
		}
		defer f.Close()
		r = f
	}
	var req pricing.PriceRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return pricing.PriceRequest{}, fmt.Errorf("decode price request: %w", err)
	}
	return req, nil
}

func priceRequestFromFlags(c *cli.Context) (pricing.PriceRequest, error) {
	req := pricing.PriceRequest{
		ServiceType:  pricing.ServiceType(c.String("service")),
		PropertyType: pricing.PropertyType(c.String("property")),
		PropertySize: decimal.NewFromFloat(c.Float64("size")),
		Frequency:    pricing.Frequency(c.String("frequency")),
		DistanceKm:   decimal.NewFromFloat(c.Float64("distance")),
	}

	for _, v := range c.StringSlice("extra") {
		id, qty, err := splitPair(v, "1")
		if err != nil {
			return req, fmt.Errorf("--extra %q: %w", v, err)
		}
		n, err := strconv.Atoi(qty)
		if err != nil {
			return req, fmt.Errorf("--extra %q: quantity must be an integer", v)
		}
		req.Extras = append(req.Extras, pricing.Extra{ID: id, Quantity: n})
	}

	for _, v := range c.StringSlice("outdoor") {
		id, area, err := splitPair(v, "")
		if err != nil {
			return req, fmt.Errorf("--outdoor %q: %w", v, err)
		}
		a, err := decimal.NewFromString(area)
		if err != nil {
			return req, fmt.Errorf("--outdoor %q: area must be a number", v)
		}
		req.OutdoorService = append(req.OutdoorService, pricing.AreaService{ID: id, Area: a})
	}

	if s := c.String("date"); s != "" {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return req, fmt.Errorf("--date: expected YYYY-MM-DD")
		}
		req.Date = pricing.NewDate(d)
	}
	return req, nil
}

// splitPair splits "id:value". A missing value falls back to def; an empty
// def makes the value mandatory.
func splitPair(s, def string) (string, string, error) {
	id, value, found := strings.Cut(s, ":")
	if id == "" {
		return "", "", fmt.Errorf("missing id")
	}
	if !found || value == "" {
		if def == "" {
			return "", "", fmt.Errorf("missing value after ':'")
		}
		value = def
	}
	return id, value, nil
}

func printLineItems(w io.Writer, items []pricing.LineItem, loc pricing.Locale) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t\n", item.Label, pricing.Money(item.Amount, loc))
	}
	return tw.Flush()
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export bookings to an Excel workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "bookings.xlsx", Usage: "Output `FILE`"},
			&cli.IntFlag{Name: "days", Value: 30, Usage: "Export bookings scheduled within the last N days and onwards"},
			&cli.StringFlag{Name: "status", Usage: "Only bookings with this status"},
			&cli.IntFlag{Name: "limit", Value: 1000, Usage: "Maximum number of bookings"},
		},
		Action: func(c *cli.Context) error {
			cfg, zapLogger, err := setup(c)
			if err != nil {
				return err
			}
			defer zapLogger.Sync()

			pgStorage, err := storage.NewPostgresStorage(c.Context, cfg.Database, nil, zapLogger)
			if err != nil {
				return err
			}
			defer pgStorage.Close()

			bookings, err := pgStorage.ListBookings(c.Context, storage.BookingFilter{
				Status: storage.BookingStatus(c.String("status")),
				From:   time.Now().AddDate(0, 0, -c.Int("days")),
				Limit:  c.Int("limit"),
			})
			if err != nil {
				return err
			}

			f, err := os.Create(c.String("out"))
			if err != nil {
				return err
			}
			if err := report.WriteBookings(f, bookings); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Exported %d bookings to %s\n", len(bookings), c.String("out"))
			return nil
		},
	}
}
