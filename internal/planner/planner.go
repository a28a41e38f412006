// Package planner orchestrates one itinerary generation run: it fans out to
// the provider categories, substitutes fallback data for anything missing,
// asks the language model for a day-by-day plan and computes the trip totals.
// A run never fails on provider or generator trouble; only request validation
// errors reach the caller.
package planner

import (
	"context"
	"time"

	apperrors "greentrip/internal/common/errors"
	"greentrip/internal/common/logger"
	"greentrip/internal/common/metrics"
	"greentrip/internal/common/observability"
	"greentrip/internal/fallback"
	"greentrip/internal/llm"
	"greentrip/internal/models"
	"greentrip/internal/providers"
)

// FlightSearcher serves the flights category.
type FlightSearcher interface {
	Configured() bool
	SearchFlights(ctx context.Context, origin, destination, departureDate, returnDate string) ([]models.Flight, error)
}

// HotelSearcher serves the hotels category.
type HotelSearcher interface {
	Configured() bool
	SearchHotels(ctx context.Context, cityCode, checkIn, checkOut string, nights int) ([]models.Hotel, error)
}

// WeatherForecaster serves the weather category.
type WeatherForecaster interface {
	Configured() bool
	Forecast(ctx context.Context, lat, lon float64, numDays int) ([]models.WeatherDay, error)
}

// AttractionFinder serves the places category.
type AttractionFinder interface {
	Configured() bool
	Attractions(ctx context.Context, lat, lon float64, limit int) ([]models.PointOfInterest, error)
}

// EmissionEstimator serves the emissions category.
type EmissionEstimator interface {
	Configured() bool
	Factors(ctx context.Context, flightDistanceKm float64) (models.EmissionFactors, error)
}

// PreferenceReader supplies stored long-term preferences for prompt
// personalization. Nil disables personalization.
type PreferenceReader interface {
	LongTerm(ctx context.Context, userID string) ([]models.ExtractedPreference, error)
}

// Planner runs the orchestration pipeline.
type Planner struct {
	flights   FlightSearcher
	hotels    HotelSearcher
	weather   WeatherForecaster
	places    AttractionFinder
	emissions EmissionEstimator
	sample    *fallback.Supplier
	llm       llm.Completer
	prefs     PreferenceReader

	callTimeout time.Duration
	llmTimeout  time.Duration
	obs         *observability.Observability
	log         logger.Logger
	now         func() time.Time
}

type Options struct {
	Flights   FlightSearcher
	Hotels    HotelSearcher
	Weather   WeatherForecaster
	Places    AttractionFinder
	Emissions EmissionEstimator
	LLM       llm.Completer
	Prefs     PreferenceReader

	CallTimeout   time.Duration
	LLMTimeout    time.Duration
	Observability *observability.Observability
	Logger        logger.Logger
	Now           func() time.Time
}

func New(opts Options) *Planner {
	p := &Planner{
		flights:     opts.Flights,
		hotels:      opts.Hotels,
		weather:     opts.Weather,
		places:      opts.Places,
		emissions:   opts.Emissions,
		sample:      fallback.NewSupplier(),
		llm:         opts.LLM,
		prefs:       opts.Prefs,
		callTimeout: opts.CallTimeout,
		llmTimeout:  opts.LLMTimeout,
		obs:         opts.Observability,
		log:         opts.Logger,
		now:         opts.Now,
	}
	if p.callTimeout <= 0 {
		p.callTimeout = 10 * time.Second
	}
	if p.llmTimeout <= 0 {
		p.llmTimeout = 45 * time.Second
	}
	if p.log == nil {
		p.log = logger.NewNoOpLogger()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Generate runs one orchestration run. userID is optional; when present,
// stored long-term preferences are folded into the generation prompt.
func (p *Planner) Generate(ctx context.Context, req models.TripRequest, userID string) (*models.Itinerary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	started := p.now()
	start := req.Start(started)

	dest := providers.ResolveDestination(req.Destination)
	origin := providers.ResolveDestination(req.OriginOrDefault())

	p.log.Info("orchestration run started", map[string]interface{}{
		"destination": req.Destination,
		"num_days":    req.NumDays,
		"mode":        string(req.Mode),
		"start_date":  start.Format("2006-01-02"),
	})

	pctx := p.gather(ctx, req, dest, origin, start)

	// Caller cancellation aborts the run; a cancelled context would otherwise
	// read as five failed providers and produce a fallback itinerary.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var stored []models.ExtractedPreference
	if p.prefs != nil && userID != "" {
		if got, err := p.prefs.LongTerm(ctx, userID); err == nil {
			stored = got
		} else {
			p.log.Warn("long-term preference lookup failed", map[string]interface{}{"error": err.Error()})
		}
	}

	days, rationale, outcome := p.generateDays(ctx, req, pctx, start, stored)

	it := p.finalize(req, pctx, days, rationale, start)

	metrics.GenerationRuns.WithLabelValues(outcome).Inc()
	metrics.GenerationDuration.Observe(time.Since(started).Seconds())
	if p.obs != nil {
		p.obs.RecordRun(ctx, outcome)
		p.obs.RecordRunDuration(ctx, time.Since(started), outcome)
	}

	p.log.Info("orchestration run finished", map[string]interface{}{
		"outcome":         outcome,
		"total_cost":      it.TotalCost,
		"total_emissions": it.TotalEmissions,
		"eco_score":       it.EcoScore,
	})

	return it, nil
}

// generateDays produces the day plans, preferring the language model and
// degrading to the deterministic composer on any failure.
func (p *Planner) generateDays(ctx context.Context, req models.TripRequest, pctx *models.ProviderContext, start time.Time, stored []models.ExtractedPreference) ([]models.DayPlan, string, string) {
	if p.llm == nil || !p.llm.Configured() {
		days, rationale := p.composeDays(req, pctx, start)
		return days, rationale, "fallback"
	}

	days, rationale, err := p.generateWithModel(ctx, req, pctx, start, stored)
	if err != nil {
		p.log.Warn("model generation failed, composing fallback plan", map[string]interface{}{
			"error": err.Error(),
			"code":  string(apperrors.CodeOf(err)),
		})
		days, rationale = p.composeDays(req, pctx, start)
		return days, rationale, "degraded"
	}
	return days, rationale, "live"
}
