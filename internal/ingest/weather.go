package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
	"github.com/couchcryptid/wheat-yield-etl/internal/reference"
	"github.com/couchcryptid/wheat-yield-etl/internal/weather"
)

// WeatherFetcher fetches one year of daily weather at a point.
type WeatherFetcher interface {
	FetchYear(ctx context.Context, province string, lat, lon float64, year int) ([]domain.DailyWeather, error)
}

// WeatherExtractor samples each provincial capital for every year and
// builds the yearly and monthly indicator tables.
// It implements pipeline.Extractor.
type WeatherExtractor struct {
	fetcher   WeatherFetcher
	provinces []reference.Province
	years     []int
	pacer     *Pacer
	strict    bool
	logger    *slog.Logger
	report    FetchReport
}

// NewWeatherExtractor creates an extractor over provinces × years.
func NewWeatherExtractor(f WeatherFetcher, provinces []reference.Province, years []int, pacer *Pacer, strict bool, logger *slog.Logger) *WeatherExtractor {
	return &WeatherExtractor{
		fetcher:   f,
		provinces: provinces,
		years:     years,
		pacer:     pacer,
		strict:    strict,
		logger:    logger,
	}
}

// Name identifies the pipeline in logs and metrics.
func (e *WeatherExtractor) Name() string {
	return "weather"
}

// Report returns the failures of the last extraction.
func (e *WeatherExtractor) Report() *FetchReport {
	return &e.report
}

func (e *WeatherExtractor) Extract(ctx context.Context) ([]*domain.Table, error) {
	e.report = FetchReport{}

	var days []domain.DailyWeather
	for _, p := range e.provinces {
		for _, year := range e.years {
			if err := e.pacer.Wait(ctx); err != nil {
				return nil, err
			}
			e.logger.Info("fetching weather", "province", p.Name, "year", year)
			series, err := e.fetcher.FetchYear(ctx, p.Name, p.Lat, p.Lon, year)
			if err != nil && ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.report.record(err)
			if err != nil {
				e.logger.Warn("weather fetch failed, dropping", "province", p.Name, "year", year, "error", err)
				continue
			}
			days = append(days, series...)
		}
	}

	if e.strict && e.report.Failed() {
		return nil, fmt.Errorf("weather: %d of %d requests failed: %w", len(e.report.Failures), e.report.Requests, e.report.Err())
	}

	return []*domain.Table{
		weather.YearlyTable(weather.Yearly(days)),
		weather.MonthlyTable(weather.Monthly(days)),
	}, nil
}
