package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greentrip/internal/common/config"
	"greentrip/internal/common/httpclient"
	"greentrip/internal/common/logger"
)

func TestClimatiqNotConfigured(t *testing.T) {
	client := NewClimatiqClient(config.ClimatiqConfig{}, httpclient.New(time.Second), logger.NewTestLogger(t))

	_, err := client.Factors(context.Background(), 5800)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClimatiqFactors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/estimate", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var payload climatiqEstimateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		switch payload.EmissionFactor.ActivityID {
		case "passenger_flight-route_type_international-aircraft_type_na-distance_na-class_economy-rf_included":
			assert.Equal(t, 11600.0, payload.Parameters["distance"])
			w.Write([]byte(`{"co2e":812.4,"co2e_unit":"kg"}`))
		case "accommodation_type_hotel":
			w.Write([]byte(`{"co2e":21.7,"co2e_unit":"kg"}`))
		default:
			t.Fatalf("unexpected activity %s", payload.EmissionFactor.ActivityID)
		}
	}))
	defer server.Close()

	client := NewClimatiqClient(config.ClimatiqConfig{APIKey: "k", BaseURL: server.URL},
		httpclient.New(5*time.Second), logger.NewTestLogger(t))

	factors, err := client.Factors(context.Background(), 5800)
	require.NoError(t, err)
	assert.Equal(t, 812.4, factors.FlightKg)
	assert.Equal(t, 21.7, factors.HotelNightKg)
	assert.Equal(t, FallbackActivityKg, factors.ActivityKg)
}

func TestClimatiqPartialFailureKeepsDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload climatiqEstimateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		if payload.EmissionFactor.ActivityID == "accommodation_type_hotel" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"bad factor"}`))
			return
		}
		w.Write([]byte(`{"co2e":500.0,"co2e_unit":"kg"}`))
	}))
	defer server.Close()

	client := NewClimatiqClient(config.ClimatiqConfig{APIKey: "k", BaseURL: server.URL},
		httpclient.New(5*time.Second), logger.NewTestLogger(t))

	factors, err := client.Factors(context.Background(), 2000)
	require.NoError(t, err)
	assert.Equal(t, 500.0, factors.FlightKg)
	assert.Equal(t, FallbackHotelNightKg, factors.HotelNightKg)
}

func TestClimatiqAllComponentsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid key"}`))
	}))
	defer server.Close()

	client := NewClimatiqClient(config.ClimatiqConfig{APIKey: "bad", BaseURL: server.URL},
		httpclient.New(5*time.Second), logger.NewTestLogger(t))

	_, err := client.Factors(context.Background(), 2000)
	assert.ErrorIs(t, err, ErrProviderFailed)
}
