package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"greentrip/internal/common/config"
	"greentrip/internal/common/httpclient"
	"greentrip/internal/common/logger"
	"greentrip/internal/models"
)

// OpenWeatherClient serves the weather category from the OpenWeather 5-day
// forecast API. The API returns 3-hour buckets; entries are aggregated into
// daily highs, lows and precipitation probability.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	client  *httpclient.Client
	log     logger.Logger
}

func NewOpenWeatherClient(cfg config.OpenWeatherConfig, client *httpclient.Client, log logger.Logger) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  client,
		log:     log.With(map[string]interface{}{"provider": "openweather"}),
	}
}

func (c *OpenWeatherClient) Configured() bool {
	return c.apiKey != ""
}

type openWeatherForecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			TempMin float64 `json:"temp_min"`
			TempMax float64 `json:"temp_max"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Pop float64 `json:"pop"`
	} `json:"list"`
}

// Forecast returns up to numDays of daily forecasts for the coordinates. The
// upstream API only covers ~5 days; trips longer than that get what exists and
// the planner treats the rest as unknown.
func (c *OpenWeatherClient) Forecast(ctx context.Context, lat, lon float64, numDays int) ([]models.WeatherDay, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	path := fmt.Sprintf("/data/2.5/forecast?lat=%.4f&lon=%.4f&units=metric&appid=%s",
		lat, lon, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFailed, err)
	}

	var result openWeatherForecastResponse
	if err := decodeBody(resp, &result); err != nil {
		return nil, err
	}
	if len(result.List) == 0 {
		return nil, fmt.Errorf("%w: empty forecast", ErrProviderFailed)
	}

	type dayAgg struct {
		high    float64
		low     float64
		pop     float64
		summary string
	}

	byDate := make(map[string]*dayAgg)
	for _, entry := range result.List {
		date := time.Unix(entry.Dt, 0).UTC().Format("2006-01-02")
		agg, ok := byDate[date]
		if !ok {
			agg = &dayAgg{high: entry.Main.TempMax, low: entry.Main.TempMin}
			byDate[date] = agg
		}
		if entry.Main.TempMax > agg.high {
			agg.high = entry.Main.TempMax
		}
		if entry.Main.TempMin < agg.low {
			agg.low = entry.Main.TempMin
		}
		if entry.Pop > agg.pop {
			agg.pop = entry.Pop
		}
		if agg.summary == "" && len(entry.Weather) > 0 {
			agg.summary = entry.Weather[0].Description
		}
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	if len(dates) > numDays {
		dates = dates[:numDays]
	}

	days := make([]models.WeatherDay, 0, len(dates))
	for _, date := range dates {
		agg := byDate[date]
		days = append(days, models.WeatherDay{
			Date:       date,
			Summary:    agg.summary,
			HighC:      agg.high,
			LowC:       agg.low,
			PrecipProb: agg.pop,
		})
	}
	return days, nil
}
