package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all settings, populated from environment variables and an
// optional .env file.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Fertilizer workbook.
	DataDir            string
	FertilizerWorkbook string
	FertilizerSheet    string
	TargetYears        []int

	// Upstream APIs.
	YearFrom            int
	YearTo              int
	ReferencePath       string
	GUSBaseURL          string
	GUSAPIKey           string
	GUSRequestDelay     time.Duration
	OpenMeteoBaseURL    string
	WeatherRequestDelay time.Duration
	HTTPTimeout         time.Duration

	// Prediction service.
	ModelPath string

	// Optional sinks.
	DatabaseDriver string
	DatabaseURL    string
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaEnabled   bool

	// Batch metrics export.
	MetricsTextfile string
	PushgatewayURL  string
}

// Load reads configuration from environment variables, applying defaults where unset.
// Variables from DOTENV_PATH (default ".env") are applied first without
// overriding the real environment; a missing file is not an error.
func Load() (*Config, error) {
	if err := loadDotenv(sharedcfg.EnvOrDefault("DOTENV_PATH", ".env")); err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	gusDelay, err := parseDuration("GUS_REQUEST_DELAY", "1s", true)
	if err != nil {
		return nil, err
	}
	weatherDelay, err := parseDuration("WEATHER_REQUEST_DELAY", "2s", true)
	if err != nil {
		return nil, err
	}
	httpTimeout, err := parseDuration("HTTP_TIMEOUT", "30s", false)
	if err != nil {
		return nil, err
	}

	yearFrom, err := parseInt("YEAR_FROM", 2016)
	if err != nil {
		return nil, err
	}
	yearTo, err := parseInt("YEAR_TO", 2020)
	if err != nil {
		return nil, err
	}
	targetYears, err := parseYears("EXTRAPOLATE_YEARS", "2019,2020")
	if err != nil {
		return nil, err
	}

	dataDir := sharedcfg.EnvOrDefault("DATA_DIR", filepath.Join("data", "raw"))

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DataDir:            dataDir,
		FertilizerWorkbook: sharedcfg.EnvOrDefault("FERTILIZER_WORKBOOK", filepath.Join(dataDir, "ceny_nawozow.xlsx")),
		FertilizerSheet:    os.Getenv("FERTILIZER_SHEET"),
		TargetYears:        targetYears,

		YearFrom:            yearFrom,
		YearTo:              yearTo,
		ReferencePath:       os.Getenv("REFERENCE_PATH"),
		GUSBaseURL:          strings.TrimRight(sharedcfg.EnvOrDefault("GUS_BASE_URL", "https://bdl.stat.gov.pl/api/v1"), "/"),
		GUSAPIKey:           os.Getenv("GUS_API_KEY"),
		GUSRequestDelay:     gusDelay,
		OpenMeteoBaseURL:    sharedcfg.EnvOrDefault("OPEN_METEO_BASE_URL", "https://archive-api.open-meteo.com/v1/archive"),
		WeatherRequestDelay: weatherDelay,
		HTTPTimeout:         httpTimeout,

		ModelPath: sharedcfg.EnvOrDefault("MODEL_PATH", filepath.Join("models", "rf_model_plonow.json")),

		DatabaseDriver: os.Getenv("DATABASE_DRIVER"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		KafkaBrokers:   brokers,
		KafkaTopic:     sharedcfg.EnvOrDefault("KAFKA_TOPIC", "agro-tables"),
		KafkaEnabled:   kafkaEnabled,

		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
		PushgatewayURL:  os.Getenv("PUSHGATEWAY_URL"),
	}

	if cfg.YearFrom > cfg.YearTo {
		return nil, fmt.Errorf("YEAR_FROM (%d) is after YEAR_TO (%d)", cfg.YearFrom, cfg.YearTo)
	}
	switch cfg.DatabaseDriver {
	case "", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q: want postgres or sqlite", cfg.DatabaseDriver)
	}
	if cfg.DatabaseDriver != "" && cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_DRIVER is set but DATABASE_URL is not")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}

	return cfg, nil
}

// Years returns YearFrom..YearTo inclusive.
func (c *Config) Years() []int {
	years := make([]int, 0, c.YearTo-c.YearFrom+1)
	for y := c.YearFrom; y <= c.YearTo; y++ {
		years = append(years, y)
	}
	return years
}

func loadDotenv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func parseDuration(name, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}

func parseInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}

func parseYears(name, def string) ([]int, error) {
	raw := sharedcfg.EnvOrDefault(name, def)
	var years []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", name, err)
		}
		years = append(years, y)
	}
	return years, nil
}
