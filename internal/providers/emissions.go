package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"greentrip/internal/common/config"
	"greentrip/internal/common/httpclient"
	"greentrip/internal/common/logger"
	"greentrip/internal/models"
)

// Defaults applied per component when the emissions provider is unavailable
// or returns nothing usable.
const (
	FallbackFlightKg     = 200.0 // round trip, economy
	FallbackHotelNightKg = 15.0
	FallbackActivityKg   = 5.0
)

// ClimatiqClient serves the emissions category: per-unit CO2e factors for the
// flight, hotel-night and activity components of a trip.
type ClimatiqClient struct {
	apiKey  string
	baseURL string
	client  *httpclient.Client
	log     logger.Logger
}

func NewClimatiqClient(cfg config.ClimatiqConfig, client *httpclient.Client, log logger.Logger) *ClimatiqClient {
	return &ClimatiqClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  client,
		log:     log.With(map[string]interface{}{"provider": "climatiq"}),
	}
}

func (c *ClimatiqClient) Configured() bool {
	return c.apiKey != ""
}

type climatiqEstimateRequest struct {
	EmissionFactor struct {
		ActivityID  string `json:"activity_id"`
		DataVersion string `json:"data_version"`
	} `json:"emission_factor"`
	Parameters map[string]interface{} `json:"parameters"`
}

type climatiqEstimateResponse struct {
	CO2e     float64 `json:"co2e"`
	CO2eUnit string  `json:"co2e_unit"`
}

// Factors estimates per-unit emission factors for the route. Components that
// fail individually fall back to the static defaults; the call as a whole only
// fails when no component could be estimated.
func (c *ClimatiqClient) Factors(ctx context.Context, flightDistanceKm float64) (models.EmissionFactors, error) {
	if !c.Configured() {
		return models.EmissionFactors{}, ErrNotConfigured
	}

	factors := models.EmissionFactors{
		FlightKg:     FallbackFlightKg,
		HotelNightKg: FallbackHotelNightKg,
		ActivityKg:   FallbackActivityKg,
	}
	ok := 0

	flightReq := climatiqEstimateRequest{}
	flightReq.EmissionFactor.ActivityID = "passenger_flight-route_type_international-aircraft_type_na-distance_na-class_economy-rf_included"
	flightReq.EmissionFactor.DataVersion = "^6"
	flightReq.Parameters = map[string]interface{}{
		"passengers":    1,
		"distance":      flightDistanceKm * 2, // round trip
		"distance_unit": "km",
	}
	if kg, err := c.estimate(ctx, flightReq); err == nil {
		factors.FlightKg = kg
		ok++
	} else {
		c.log.Warn("flight emission estimate failed", map[string]interface{}{"error": err.Error()})
	}

	hotelReq := climatiqEstimateRequest{}
	hotelReq.EmissionFactor.ActivityID = "accommodation_type_hotel"
	hotelReq.EmissionFactor.DataVersion = "^6"
	hotelReq.Parameters = map[string]interface{}{"number": 1}
	if kg, err := c.estimate(ctx, hotelReq); err == nil {
		factors.HotelNightKg = kg
		ok++
	} else {
		c.log.Warn("hotel emission estimate failed", map[string]interface{}{"error": err.Error()})
	}

	if ok == 0 {
		return models.EmissionFactors{}, fmt.Errorf("%w: no component estimated", ErrProviderFailed)
	}
	return factors, nil
}

func (c *ClimatiqClient) estimate(ctx context.Context, payload climatiqEstimateRequest) (float64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/estimate", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	var result climatiqEstimateResponse
	if err := decodeBody(resp, &result); err != nil {
		return 0, err
	}
	if result.CO2e <= 0 {
		return 0, fmt.Errorf("%w: non-positive estimate", ErrProviderFailed)
	}
	return result.CO2e, nil
}
