package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
	"github.com/couchcryptid/wheat-yield-etl/internal/observability"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
}

const archiveBody = `{
  "latitude": 50.68,
  "longitude": 17.93,
  "daily": {
    "time": ["2018-01-01", "2018-01-02", "2018-01-03"],
    "temperature_2m_mean": [1.5, null, -2.0],
    "temperature_2m_max": [4.0, 3.1, -0.5],
    "temperature_2m_min": [-1.0, -2.2, -4.0],
    "precipitation_sum": [0.4, 2.0]
  }
}`

func TestClient_FetchYear_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "50.6711", q.Get("latitude"))
		assert.Equal(t, "17.9263", q.Get("longitude"))
		assert.Equal(t, "2018-01-01", q.Get("start_date"))
		assert.Equal(t, "2018-12-31", q.Get("end_date"))
		assert.Equal(t, dailyVariables, q.Get("daily"))
		assert.Equal(t, "Europe/Warsaw", q.Get("timezone"))
		assert.Equal(t, "celsius", q.Get("temperature_unit"))
		assert.Equal(t, "mm", q.Get("precipitation_unit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(archiveBody))
	}))
	defer srv.Close()

	days, err := testClient(srv.URL).FetchYear(context.Background(), "OPOLSKIE", 50.6711, 17.9263, 2018)
	require.NoError(t, err)
	require.Len(t, days, 3)

	assert.Equal(t, "OPOLSKIE", days[0].Province)
	assert.Equal(t, 2018, days[0].Year)
	assert.Equal(t, time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), days[0].Date)
	assert.Equal(t, 1.5, *days[0].TempMean)
	assert.Nil(t, days[1].TempMean)
	assert.Equal(t, 3.1, *days[1].TempMax)
	assert.Equal(t, -4.0, *days[2].TempMin)
	assert.Nil(t, days[2].Precipitation)
}

func TestClient_FetchYear_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "bad request",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":true,"reason":"Parameter 'start_date' is out of range"}`))
			},
			want: "status 400",
		},
		{
			name: "invalid date",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"daily":{"time":["01/01/2018"]}}`))
			},
			want: "parse date",
		},
		{
			name: "invalid JSON",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`[`))
			},
			want: "decode response",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := testClient(srv.URL).FetchYear(context.Background(), "PODLASKIE", 53.13, 23.17, 2019)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var upstream *domain.UpstreamFetchError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, Source, upstream.Source)
			assert.Equal(t, "province=PODLASKIE year=2019", upstream.Request)
		})
	}
}
