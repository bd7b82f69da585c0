package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points DOTENV_PATH at a file that does not exist so a developer's
// .env cannot leak into the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("DOTENV_PATH", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, filepath.Join("data", "raw"), cfg.DataDir)
	assert.Equal(t, filepath.Join("data", "raw", "ceny_nawozow.xlsx"), cfg.FertilizerWorkbook)
	assert.Empty(t, cfg.FertilizerSheet)
	assert.Equal(t, []int{2019, 2020}, cfg.TargetYears)
	assert.Equal(t, []int{2016, 2017, 2018, 2019, 2020}, cfg.Years())
	assert.Equal(t, "https://bdl.stat.gov.pl/api/v1", cfg.GUSBaseURL)
	assert.Empty(t, cfg.GUSAPIKey)
	assert.Equal(t, time.Second, cfg.GUSRequestDelay)
	assert.Equal(t, "https://archive-api.open-meteo.com/v1/archive", cfg.OpenMeteoBaseURL)
	assert.Equal(t, 2*time.Second, cfg.WeatherRequestDelay)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, filepath.Join("models", "rf_model_plonow.json"), cfg.ModelPath)
	assert.Empty(t, cfg.DatabaseDriver)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.MetricsTextfile)
	assert.Empty(t, cfg.PushgatewayURL)
}

func TestLoad_CustomEnv(t *testing.T) {
	isolate(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATA_DIR", "/srv/agro")
	t.Setenv("FERTILIZER_SHEET", "Arkusz1")
	t.Setenv("EXTRAPOLATE_YEARS", "2019, 2020, 2021")
	t.Setenv("YEAR_FROM", "2017")
	t.Setenv("YEAR_TO", "2018")
	t.Setenv("GUS_BASE_URL", "http://localhost:8081/api/v1/")
	t.Setenv("GUS_API_KEY", "abc")
	t.Setenv("GUS_REQUEST_DELAY", "0s")
	t.Setenv("WEATHER_REQUEST_DELAY", "500ms")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "/tmp/agro.sqlite")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom")
	t.Setenv("METRICS_TEXTFILE", "/var/lib/node_exporter/etl.prom")
	t.Setenv("PUSHGATEWAY_URL", "http://pushgateway:9091")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, filepath.Join("/srv/agro", "ceny_nawozow.xlsx"), cfg.FertilizerWorkbook)
	assert.Equal(t, "Arkusz1", cfg.FertilizerSheet)
	assert.Equal(t, []int{2019, 2020, 2021}, cfg.TargetYears)
	assert.Equal(t, []int{2017, 2018}, cfg.Years())
	assert.Equal(t, "http://localhost:8081/api/v1", cfg.GUSBaseURL)
	assert.Equal(t, "abc", cfg.GUSAPIKey)
	assert.Zero(t, cfg.GUSRequestDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.WeatherRequestDelay)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, "custom", cfg.KafkaTopic)
	assert.Equal(t, "/var/lib/node_exporter/etl.prom", cfg.MetricsTextfile)
	assert.Equal(t, "http://pushgateway:9091", cfg.PushgatewayURL)
}

func TestLoad_Dotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GUS_API_KEY=from-file\nLOG_LEVEL=warn\n"), 0o600))
	t.Setenv("DOTENV_PATH", path)
	t.Setenv("LOG_LEVEL", "error")
	// godotenv sets variables in the process environment; clear them afterwards.
	t.Setenv("GUS_API_KEY", "")
	require.NoError(t, os.Unsetenv("GUS_API_KEY"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.GUSAPIKey)
	assert.Equal(t, "error", cfg.LogLevel, "real environment wins over .env")
}

func TestLoad_KafkaDisabledExplicitly(t *testing.T) {
	isolate(t)
	t.Setenv("KAFKA_BROKERS", "broker:9092")
	t.Setenv("KAFKA_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "not-a-duration"}, "SHUTDOWN_TIMEOUT"},
		{"weather delay", map[string]string{"WEATHER_REQUEST_DELAY": "-1s"}, "WEATHER_REQUEST_DELAY"},
		{"http timeout zero", map[string]string{"HTTP_TIMEOUT": "0s"}, "HTTP_TIMEOUT"},
		{"year", map[string]string{"YEAR_FROM": "dwa"}, "YEAR_FROM"},
		{"year range", map[string]string{"YEAR_FROM": "2021", "YEAR_TO": "2016"}, "YEAR_FROM"},
		{"extrapolate years", map[string]string{"EXTRAPOLATE_YEARS": "2019,x"}, "EXTRAPOLATE_YEARS"},
		{"driver", map[string]string{"DATABASE_DRIVER": "mysql", "DATABASE_URL": "x"}, "DATABASE_DRIVER"},
		{"driver without url", map[string]string{"DATABASE_DRIVER": "postgres"}, "DATABASE_URL"},
		{"kafka without brokers", map[string]string{"KAFKA_ENABLED": "true"}, "KAFKA_BROKERS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
