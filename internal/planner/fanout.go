package planner

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"greentrip/internal/common/metrics"
	"greentrip/internal/models"
	"greentrip/internal/providers"
)

// gather fans out to every provider category concurrently. Each call gets its
// own deadline; a slow or broken category is replaced by sample data and the
// outcome is recorded per category, so the result always carries a complete
// context.
func (p *Planner) gather(ctx context.Context, req models.TripRequest, dest, origin providers.Destination, start time.Time) *models.ProviderContext {
	var (
		wg sync.WaitGroup

		flights  []models.Flight
		hotels   []models.Hotel
		weather  []models.WeatherDay
		places   []models.PointOfInterest
		factors  models.EmissionFactors
		outcomes [5]models.Outcome
	)

	departure := start.Format("2006-01-02")
	ret := start.AddDate(0, 0, req.NumDays).Format("2006-01-02")
	checkIn := departure
	checkOut := ret

	run := func(idx int, fn func(ctx context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
			defer cancel()

			err := fn(callCtx)
			switch {
			case err == nil:
				outcomes[idx] = models.OutcomeLive
			case errors.Is(err, providers.ErrNotConfigured):
				outcomes[idx] = models.OutcomeFallback
			default:
				outcomes[idx] = models.OutcomeFailed
				p.log.Warn("provider call failed", map[string]interface{}{
					"category": string(models.Categories[idx]),
					"error":    err.Error(),
				})
			}
		}()
	}

	run(0, func(ctx context.Context) error {
		got, err := p.searchFlights(ctx, origin.IATACode, dest.IATACode, departure, ret)
		if err != nil {
			return err
		}
		flights = got
		return nil
	})

	run(1, func(ctx context.Context) error {
		got, err := p.searchHotels(ctx, dest.IATACode, checkIn, checkOut, req.NumDays)
		if err != nil {
			return err
		}
		hotels = got
		return nil
	})

	run(2, func(ctx context.Context) error {
		got, err := p.forecast(ctx, dest.Latitude, dest.Longitude, req.NumDays)
		if err != nil {
			return err
		}
		weather = got
		return nil
	})

	run(3, func(ctx context.Context) error {
		got, err := p.attractions(ctx, dest.Latitude, dest.Longitude, 12)
		if err != nil {
			return err
		}
		places = got
		return nil
	})

	run(4, func(ctx context.Context) error {
		got, err := p.estimateFactors(ctx, haversineKm(origin.Latitude, origin.Longitude, dest.Latitude, dest.Longitude))
		if err != nil {
			return err
		}
		factors = got
		return nil
	})

	wg.Wait()

	// Substitute sample data wherever the live call did not deliver.
	if len(flights) == 0 {
		flights = p.sample.Flights(origin.IATACode, req.Destination, departure)
	}
	if len(hotels) == 0 {
		hotels = p.sample.Hotels(req.Destination)
	}
	if len(weather) < req.NumDays {
		// Partial forecasts keep their live days; sample data fills the rest.
		have := make(map[string]bool, len(weather))
		for _, w := range weather {
			have[w.Date] = true
		}
		for _, w := range p.sample.Weather(req.Destination, start, req.NumDays) {
			if !have[w.Date] {
				weather = append(weather, w)
			}
		}
	}
	if len(places) == 0 {
		places = p.sample.Places(req.Destination, 8)
	}
	if factors == (models.EmissionFactors{}) {
		factors = p.sample.Factors()
	}

	sources := make(map[models.Category]models.Outcome, len(models.Categories))
	for i, cat := range models.Categories {
		sources[cat] = outcomes[i]
		metrics.ProviderRequests.WithLabelValues(string(cat), string(outcomes[i])).Inc()
	}

	return &models.ProviderContext{
		Flights:   flights,
		Hotels:    hotels,
		Weather:   weather,
		Places:    places,
		Emissions: factors,
		Sources:   sources,
	}
}

func (p *Planner) searchFlights(ctx context.Context, origin, dest, dep, ret string) ([]models.Flight, error) {
	if p.flights == nil || !p.flights.Configured() {
		return nil, providers.ErrNotConfigured
	}
	return p.flights.SearchFlights(ctx, origin, dest, dep, ret)
}

func (p *Planner) searchHotels(ctx context.Context, city, in, out string, nights int) ([]models.Hotel, error) {
	if p.hotels == nil || !p.hotels.Configured() {
		return nil, providers.ErrNotConfigured
	}
	return p.hotels.SearchHotels(ctx, city, in, out, nights)
}

func (p *Planner) forecast(ctx context.Context, lat, lon float64, days int) ([]models.WeatherDay, error) {
	if p.weather == nil || !p.weather.Configured() {
		return nil, providers.ErrNotConfigured
	}
	return p.weather.Forecast(ctx, lat, lon, days)
}

func (p *Planner) attractions(ctx context.Context, lat, lon float64, limit int) ([]models.PointOfInterest, error) {
	if p.places == nil || !p.places.Configured() {
		return nil, providers.ErrNotConfigured
	}
	return p.places.Attractions(ctx, lat, lon, limit)
}

func (p *Planner) estimateFactors(ctx context.Context, distKm float64) (models.EmissionFactors, error) {
	if p.emissions == nil || !p.emissions.Configured() {
		return models.EmissionFactors{}, providers.ErrNotConfigured
	}
	return p.emissions.Factors(ctx, distKm)
}

const earthRadiusKm = 6371.0

// haversineKm is the great-circle distance between two coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
