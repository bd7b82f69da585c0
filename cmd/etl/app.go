package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/wheat-yield-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/wheat-yield-etl/internal/adapter/gus"
	kafkaadapter "github.com/couchcryptid/wheat-yield-etl/internal/adapter/kafka"
	"github.com/couchcryptid/wheat-yield-etl/internal/adapter/openmeteo"
	"github.com/couchcryptid/wheat-yield-etl/internal/adapter/sqlstore"
	"github.com/couchcryptid/wheat-yield-etl/internal/config"
	"github.com/couchcryptid/wheat-yield-etl/internal/fertilizer"
	"github.com/couchcryptid/wheat-yield-etl/internal/ingest"
	"github.com/couchcryptid/wheat-yield-etl/internal/observability"
	"github.com/couchcryptid/wheat-yield-etl/internal/pipeline"
	"github.com/couchcryptid/wheat-yield-etl/internal/reference"
	"github.com/couchcryptid/wheat-yield-etl/internal/validate"
	"github.com/prometheus/client_golang/prometheus"
)

// app carries the shared dependencies of every subcommand.
type app struct {
	cfg      *config.Config
	ref      *reference.Data
	logger   *slog.Logger
	metrics  *observability.Metrics
	exporter *observability.Exporter
	loaders  []pipeline.Loader
	closers  []io.Closer
}

// runMode selects whether a subcommand writes output tables.
type runMode int

const (
	withoutSinks runMode = iota
	withSinks
)

// withApp loads configuration and reference data and runs fn as command.
func withApp(ctx context.Context, command string, mode runMode, fn func(context.Context, *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	return a.execute(ctx, command, mode, fn)
}

func newApp(cfg *config.Config) (*app, error) {
	ref, err := reference.Load(cfg.ReferencePath)
	if err != nil {
		return nil, err
	}
	registry := prometheus.NewRegistry()
	return &app{
		cfg:      cfg,
		ref:      ref,
		logger:   observability.NewLogger(cfg),
		metrics:  observability.NewMetricsWithRegistry(registry),
		exporter: observability.NewExporter(registry, cfg.MetricsTextfile, cfg.PushgatewayURL),
	}, nil
}

// execute opens the sinks when mode asks for them, runs fn, closes the
// sinks and exports the run's metrics. Export failures are logged only.
func (a *app) execute(ctx context.Context, command string, mode runMode, fn func(context.Context, *app) error) error {
	defer a.close()

	var err error
	if mode == withSinks {
		err = a.openSinks(ctx)
	}
	if err == nil {
		err = fn(ctx, a)
	}

	if mode == withSinks && a.exporter.Enabled() {
		if exportErr := a.exporter.Export(context.WithoutCancel(ctx), command); exportErr != nil {
			a.logger.Error("metrics export failed", "command", command, "error", exportErr)
		}
	}
	return err
}

func (a *app) openSinks(ctx context.Context) error {
	a.loaders = append(a.loaders, csvfile.NewWriter(a.cfg.DataDir, a.logger))

	if a.cfg.DatabaseDriver != "" {
		store, err := sqlstore.Open(ctx, a.cfg.DatabaseDriver, a.cfg.DatabaseURL, a.logger)
		if err != nil {
			return err
		}
		a.loaders = append(a.loaders, store)
		a.closers = append(a.closers, store)
		a.logger.Info("sql sink enabled", "driver", a.cfg.DatabaseDriver)
	}

	if a.cfg.KafkaEnabled {
		w := kafkaadapter.NewWriter(a.cfg, a.logger)
		a.loaders = append(a.loaders, w)
		a.closers = append(a.closers, w)
		a.logger.Info("kafka sink enabled", "brokers", a.cfg.KafkaBrokers, "topic", a.cfg.KafkaTopic)
	}
	return nil
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Error("sink close error", "error", err)
		}
	}
}

func (a *app) run(ctx context.Context, e pipeline.Extractor) error {
	_, err := pipeline.New(e, a.loaders, a.logger, a.metrics).Run(ctx)
	return err
}

func (a *app) runFertilizers(ctx context.Context) error {
	parser := fertilizer.NewParser(fertilizer.NewProvinceDirectory(a.ref.Abbreviations(), a.ref.Average.Name))
	transformer := fertilizer.NewTransformer(parser, a.ref.NutrientTable(), a.cfg.TargetYears, a.logger, a.metrics,
		fertilizer.WithSkipMalformed(skipMalformed))
	return a.run(ctx, fertilizer.NewWorkbookExtractor(a.cfg.FertilizerWorkbook, a.cfg.FertilizerSheet, transformer))
}

func (a *app) gusClient() *gus.Client {
	return gus.NewClient(a.cfg.GUSBaseURL, a.cfg.GUSAPIKey, a.cfg.HTTPTimeout, a.logger, a.metrics)
}

func (a *app) runGUS(ctx context.Context) error {
	e := ingest.NewGUSExtractor(a.gusClient(), a.ref.GUS, a.cfg.Years(),
		ingest.NewPacer(nil, a.cfg.GUSRequestDelay), strict, a.logger)
	err := a.run(ctx, e)
	a.logReport("gus", e.Report())
	return err
}

func (a *app) runWeather(ctx context.Context) error {
	client := openmeteo.NewClient(a.cfg.OpenMeteoBaseURL, a.cfg.HTTPTimeout, a.logger, a.metrics)
	e := ingest.NewWeatherExtractor(client, a.ref.Provinces, a.cfg.Years(),
		ingest.NewPacer(nil, a.cfg.WeatherRequestDelay), strict, a.logger)
	err := a.run(ctx, e)
	a.logReport("weather", e.Report())
	return err
}

func (a *app) logReport(name string, r *ingest.FetchReport) {
	if !r.Failed() {
		return
	}
	a.logger.Warn("upstream requests failed",
		"pipeline", name,
		"requests", r.Requests,
		"failures", len(r.Failures),
		"error", r.Err())
}

// checkEnv reports whether the GUS API key is set and accepted.
func (a *app) checkEnv(ctx context.Context) string {
	if a.cfg.GUSAPIKey == "" {
		return "GUS_API_KEY is not set"
	}
	status, err := a.gusClient().CheckConnection(ctx)
	switch {
	case err != nil:
		return fmt.Sprintf("GUS API connection error: %v", err)
	case status == http.StatusOK:
		return "GUS API connection OK"
	default:
		return fmt.Sprintf("GUS API returned status %d", status)
	}
}

var errValidationFailed = errors.New("validation failed")

func (a *app) validate(w io.Writer, dir string) error {
	if dir == "" {
		dir = a.cfg.DataDir
	}
	report, err := validate.New(dir, a.ref.ProvinceNames(), a.ref.Average.Name).Run()
	if err != nil {
		return err
	}
	report.Print(w)
	if !report.Passed() {
		return errValidationFailed
	}
	return nil
}
