package providers

import (
	"context"
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

func TestOpenTripMapNotConfigured(t *testing.T) {
	client := NewOpenTripMapClient(config.OpenTripMapConfig{}, httpclient.New(time.Second), logger.NewTestLogger(t))

	_, err := client.Attractions(context.Background(), 48.85, 2.35, 10)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOpenTripMapAttractions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/0.1/en/places/radius", r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("apikey"))
		w.Write([]byte(`[
			{"name":"Louvre Museum","kinds":"museums,cultural","rate":7,"point":{"lat":48.8606,"lon":2.3376}},
			{"name":"","kinds":"other","rate":1,"point":{"lat":0,"lon":0}},
			{"name":"Jardin du Luxembourg","kinds":"gardens_and_parks","rate":6,"point":{"lat":48.8462,"lon":2.3372}}
		]`))
	}))
	defer server.Close()

	client := NewOpenTripMapClient(config.OpenTripMapConfig{APIKey: "k", BaseURL: server.URL},
		httpclient.New(5*time.Second), logger.NewTestLogger(t))

	places, err := client.Attractions(context.Background(), 48.85, 2.35, 10)
	require.NoError(t, err)
	require.Len(t, places, 2, "unnamed places are dropped")

	assert.Equal(t, "Louvre Museum", places[0].Name)
	assert.Equal(t, "museums", places[0].Category)
	require.NotNil(t, places[0].Latitude)
	assert.InDelta(t, 48.8606, *places[0].Latitude, 0.0001)

	assert.Equal(t, "gardens and parks", places[1].Category)
}

func TestOpenTripMapAttractionsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"name":"A","kinds":"museums","point":{"lat":1,"lon":1}},
			{"name":"B","kinds":"museums","point":{"lat":2,"lon":2}},
			{"name":"C","kinds":"museums","point":{"lat":3,"lon":3}}
		]`))
	}))
	defer server.Close()

	client := NewOpenTripMapClient(config.OpenTripMapConfig{APIKey: "k", BaseURL: server.URL},
		httpclient.New(5*time.Second), logger.NewTestLogger(t))

	places, err := client.Attractions(context.Background(), 1, 1, 2)
	require.NoError(t, err)
	assert.Len(t, places, 2)
}

func TestOpenTripMapAllUnnamed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"","kinds":"other","point":{"lat":0,"lon":0}}]`))
	}))
	defer server.Close()

	client := NewOpenTripMapClient(config.OpenTripMapConfig{APIKey: "k", BaseURL: server.URL},
		httpclient.New(5*time.Second), logger.NewTestLogger(t))

	_, err := client.Attractions(context.Background(), 1, 1, 5)
	assert.ErrorIs(t, err, ErrProviderFailed)
}
