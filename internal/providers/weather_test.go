package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greentrip/internal/common/config"
	"greentrip/internal/common/httpclient"
	"greentrip/internal/common/logger"
)

func TestOpenWeatherNotConfigured(t *testing.T) {
	client := NewOpenWeatherClient(config.OpenWeatherConfig{}, httpclient.New(time.Second), logger.NewTestLogger(t))

	_, err := client.Forecast(context.Background(), 48.85, 2.35, 3)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOpenWeatherForecastAggregatesBuckets(t *testing.T) {
	day1 := time.Date(2026, 9, 28, 9, 0, 0, 0, time.UTC).Unix()
	day1b := time.Date(2026, 9, 28, 15, 0, 0, 0, time.UTC).Unix()
	day2 := time.Date(2026, 9, 29, 12, 0, 0, 0, time.UTC).Unix()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/forecast", r.URL.Path)
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(`{"list":[
			{"dt":` + itoa(day1) + `,"main":{"temp_min":12.1,"temp_max":17.3},"weather":[{"main":"Clouds","description":"scattered clouds"}],"pop":0.1},
			{"dt":` + itoa(day1b) + `,"main":{"temp_min":14.0,"temp_max":21.5},"weather":[{"main":"Clear","description":"clear sky"}],"pop":0.4},
			{"dt":` + itoa(day2) + `,"main":{"temp_min":10.0,"temp_max":16.0},"weather":[{"main":"Rain","description":"light rain"}],"pop":0.8}
		]}`))
	}))
	defer server.Close()

	client := NewOpenWeatherClient(config.OpenWeatherConfig{
		APIKey:  "k",
		BaseURL: server.URL,
	}, httpclient.New(5*time.Second), logger.NewTestLogger(t))

	days, err := client.Forecast(context.Background(), 48.85, 2.35, 5)
	require.NoError(t, err)
	require.Len(t, days, 2)

	assert.Equal(t, "2026-09-28", days[0].Date)
	assert.Equal(t, 21.5, days[0].HighC)
	assert.Equal(t, 12.1, days[0].LowC)
	assert.Equal(t, 0.4, days[0].PrecipProb)
	assert.Equal(t, "scattered clouds", days[0].Summary)

	assert.Equal(t, "2026-09-29", days[1].Date)
	assert.Equal(t, 0.8, days[1].PrecipProb)
}

func TestOpenWeatherForecastTruncatesToNumDays(t *testing.T) {
	var body string
	for i := 0; i < 5; i++ {
		if i > 0 {
			body += ","
		}
		dt := time.Date(2026, 9, 28+i, 12, 0, 0, 0, time.UTC).Unix()
		body += `{"dt":` + itoa(dt) + `,"main":{"temp_min":10,"temp_max":20},"weather":[{"description":"clear sky"}],"pop":0}`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list":[` + body + `]}`))
	}))
	defer server.Close()

	client := NewOpenWeatherClient(config.OpenWeatherConfig{APIKey: "k", BaseURL: server.URL},
		httpclient.New(5*time.Second), logger.NewTestLogger(t))

	days, err := client.Forecast(context.Background(), 48.85, 2.35, 2)
	require.NoError(t, err)
	assert.Len(t, days, 2)
}

func TestOpenWeatherForecastEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"list":[]}`))
	}))
	defer server.Close()

	client := NewOpenWeatherClient(config.OpenWeatherConfig{APIKey: "k", BaseURL: server.URL},
		httpclient.New(5*time.Second), logger.NewTestLogger(t))

	_, err := client.Forecast(context.Background(), 48.85, 2.35, 3)
	assert.ErrorIs(t, err, ErrProviderFailed)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
