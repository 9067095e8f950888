// Command forecast prints a one-off 7-day temperature outlook for a location.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"
	_ "time/tzdata"

	"github.com/yanqian/tempcast/internal/domain/outlook"
	"github.com/yanqian/tempcast/internal/infra/archive"
	"github.com/yanqian/tempcast/internal/infra/config"
	"github.com/yanqian/tempcast/internal/infra/reportrepo"
	"github.com/yanqian/tempcast/internal/infra/seriescache"
	"github.com/yanqian/tempcast/internal/infra/weather/openmeteo"
	"github.com/yanqian/tempcast/internal/infra/weather/openweather"
	"github.com/yanqian/tempcast/pkg/authtoken"
	"github.com/yanqian/tempcast/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "forecast:", err)
		os.Exit(1)
	}
}

type options struct {
	lat, lon      float64
	name          string
	timezone      string
	seed          int64
	narrate       bool
	outDir        string
	historyURL    string
	conditionsURL string
	issueToken    string
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (options, error) {
	opts := options{}
	fs := flag.NewFlagSet("forecast", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Float64Var(&opts.lat, "lat", cfg.Location.Latitude, "latitude in decimal degrees")
	fs.Float64Var(&opts.lon, "lon", cfg.Location.Longitude, "longitude in decimal degrees")
	fs.StringVar(&opts.name, "name", cfg.Location.Name, "location label")
	fs.StringVar(&opts.timezone, "tz", cfg.Location.Timezone, "IANA timezone of the location")
	fs.Int64Var(&opts.seed, "seed", cfg.Forecast.HourlySeed, "seed for the hourly curve noise")
	fs.BoolVar(&opts.narrate, "narrate", false, "read the forecast aloud (printed lines)")
	fs.StringVar(&opts.outDir, "out", "out", "directory for the exported hourly curve")
	fs.StringVar(&opts.historyURL, "history-url", cfg.History.BaseURL, "daily temperature archive endpoint")
	fs.StringVar(&opts.conditionsURL, "conditions-url", cfg.Conditions.BaseURL, "current weather endpoint")
	fs.StringVar(&opts.issueToken, "issue-token", "", "print an API token for this subject and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts, err := parseFlags(args, cfg, os.Stderr)
	if err != nil {
		return err
	}

	if opts.issueToken != "" {
		token, err := authtoken.Issue(cfg.Auth.Secret, opts.issueToken, 30*24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, token)
		return nil
	}

	log := logger.NewWithWriter(os.Stderr, os.Getenv("LOG_LEVEL"), "text")
	var conditions outlook.ConditionsClient
	if cfg.Conditions.APIKey != "" {
		conditions = openweather.NewClient(opts.conditionsURL, cfg.Conditions.APIKey, cfg.Conditions.Timeout)
	}
	svc := outlook.NewService(
		outlook.Config{
			Location:   outlook.Location{Name: opts.name, Latitude: opts.lat, Longitude: opts.lon, Timezone: opts.timezone},
			WindowDays: cfg.History.WindowDays,
			HourlySeed: opts.seed,
		},
		openmeteo.NewClient(opts.historyURL, cfg.History.Timeout),
		conditions,
		&consoleNarrator{w: stdout},
		seriescache.NewMemoryCache(),
		reportrepo.NewMemoryRepository(),
		archive.NewDirArchive(opts.outDir),
		log,
	)

	report, err := svc.Forecast(ctx, outlook.Request{Narrate: opts.narrate})
	if err != nil {
		return err
	}
	return printReport(stdout, report)
}

func printReport(w io.Writer, report outlook.Report) error {
	fmt.Fprintf(w, "Forecast for %s (%.4f, %.4f)\n\n", report.Location.Name, report.Location.Latitude, report.Location.Longitude)

	fmt.Fprintf(w, "Historical daily averages %s to %s:\n", report.WindowStart, report.WindowEnd)
	for _, obs := range report.History {
		fmt.Fprintf(w, "  %s: %.2f°C\n", obs.Date, obs.Temperature)
	}

	if c := report.Current; c != nil {
		fmt.Fprintf(w, "\nToday's weather: %s, %.2f°C (min %.2f°C, max %.2f°C)\n", c.Description, c.Temperature, c.Min, c.Max)
	}

	fmt.Fprintln(w, "\nPredicted temperatures for the next 7 days:")
	for _, d := range report.Days {
		fmt.Fprintf(w, "  %s: %.2f°C (± %.2f)  %s\n", d.Date, d.Prediction, d.Margin, d.Description)
	}

	fmt.Fprintf(w, "\nWeekly overview: %s\n", report.Weekly.Text)

	if len(report.Days) > 0 {
		fmt.Fprintf(w, "\nHourly temperatures for %s:\n", report.Days[0].Date)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  HOUR\tTEMP (°C)")
	for _, h := range report.Hourly {
		fmt.Fprintf(tw, "  %s\t%.2f\n", h.Hour, h.Temperature)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if report.ArchiveKey != "" {
		fmt.Fprintf(w, "\nHourly curve written to %s\n", report.ArchiveKey)
	}
	return nil
}

// consoleNarrator prints narration lines in place of speech.
type consoleNarrator struct {
	w io.Writer
}

func (n *consoleNarrator) Narrate(_ context.Context, text string) error {
	_, err := fmt.Fprintf(n.w, "> %s\n", text)
	return err
}
