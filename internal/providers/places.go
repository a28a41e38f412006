package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"greentrip/internal/common/config"
	"greentrip/internal/common/httpclient"
	"greentrip/internal/common/logger"
	"greentrip/internal/models"
)

// OpenTripMapClient serves the places category: attraction candidates within a
// radius of the destination coordinates.
type OpenTripMapClient struct {
	apiKey  string
	baseURL string
	client  *httpclient.Client
	log     logger.Logger
}

func NewOpenTripMapClient(cfg config.OpenTripMapConfig, client *httpclient.Client, log logger.Logger) *OpenTripMapClient {
	return &OpenTripMapClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  client,
		log:     log.With(map[string]interface{}{"provider": "opentripmap"}),
	}
}

func (c *OpenTripMapClient) Configured() bool {
	return c.apiKey != ""
}

type openTripMapPlace struct {
	Name  string `json:"name"`
	Kinds string `json:"kinds"`
	Rate  int    `json:"rate"`
	Point struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"point"`
}

// Attractions returns up to limit named points of interest around the
// coordinates, highest-rated first.
func (c *OpenTripMapClient) Attractions(ctx context.Context, lat, lon float64, limit int) ([]models.PointOfInterest, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if limit <= 0 {
		limit = 20
	}

	path := fmt.Sprintf(
		"/0.1/en/places/radius?radius=8000&lon=%.4f&lat=%.4f&rate=2&format=json&limit=%d&apikey=%s",
		lon, lat, limit*2, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	var places []openTripMapPlace
	if err := decodeBody(resp, &places); err != nil {
		return nil, err
	}

	out := make([]models.PointOfInterest, 0, limit)
	for _, p := range places {
		if p.Name == "" {
			continue
		}
		lat, lon := p.Point.Lat, p.Point.Lon
		out = append(out, models.PointOfInterest{
			Name:      p.Name,
			Category:  primaryKind(p.Kinds),
			Latitude:  &lat,
			Longitude: &lon,
		})
		if len(out) == limit {
			break
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no named attractions", ErrProviderFailed)
	}
	return out, nil
}

// primaryKind reduces OpenTripMap's comma-separated kinds to one readable
// category, e.g. "historic_architecture,churches" -> "historic architecture".
func primaryKind(kinds string) string {
	if kinds == "" {
		return "attraction"
	}
	first := kinds
	if i := strings.IndexByte(kinds, ','); i >= 0 {
		first = kinds[:i]
	}
	return strings.ReplaceAll(first, "_", " ")
}
