package planner

import (
	"fmt"
	"math"
	"strings"
	"time"

	"greentrip/internal/models"
	"greentrip/internal/prompt"
)

// estimatedDailySpend covers food and activities per trip day in the cost
// total, capped by whatever budget remains after flight and hotel.
const estimatedDailySpend = 50.0

// rainThreshold is the precipitation probability above which a day is
// scheduled indoors.
const rainThreshold = 0.5

var indoorCategories = map[string]bool{
	"museums":               true,
	"cultural":              true,
	"historic architecture": true,
	"religion":              true,
	"markets":               true,
}

// composeDays builds a deterministic day-by-day plan from the attraction
// candidates when the language model is unavailable. Attractions rotate
// through the slots; rainy days prefer indoor categories.
func (p *Planner) composeDays(req models.TripRequest, pctx *models.ProviderContext, start time.Time) ([]models.DayPlan, string) {
	weatherByDate := make(map[string]models.WeatherDay, len(pctx.Weather))
	for _, w := range pctx.Weather {
		weatherByDate[w.Date] = w
	}

	indoor := make([]models.PointOfInterest, 0, len(pctx.Places))
	outdoor := make([]models.PointOfInterest, 0, len(pctx.Places))
	for _, place := range pctx.Places {
		if indoorCategories[place.Category] {
			indoor = append(indoor, place)
		} else {
			outdoor = append(outdoor, place)
		}
	}

	var indoorIdx, outdoorIdx int
	next := func(rainy bool) models.PointOfInterest {
		// Prefer the matching pool, fall back to the other when exhausted
		// so every slot still gets a concrete activity.
		if rainy {
			if len(indoor) > 0 {
				place := indoor[indoorIdx%len(indoor)]
				indoorIdx++
				return place
			}
		} else if len(outdoor) > 0 {
			place := outdoor[outdoorIdx%len(outdoor)]
			outdoorIdx++
			return place
		}
		all := pctx.Places
		place := all[(indoorIdx+outdoorIdx)%len(all)]
		indoorIdx++
		return place
	}

	days := make([]models.DayPlan, req.NumDays)
	for i := 0; i < req.NumDays; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		rainy := false
		if w, ok := weatherByDate[date]; ok {
			rainy = w.PrecipProb >= rainThreshold
		}

		morning := next(rainy)
		afternoon := next(rainy)

		days[i] = models.DayPlan{
			Date:      date,
			Morning:   slotFor(morning, "Visit"),
			Afternoon: slotFor(afternoon, "Explore"),
			Evening:   models.SlotPlan{Activity: "Dinner at a local restaurant with regional cuisine"},
		}
	}

	rationale := fmt.Sprintf(
		"Deterministic %s plan for %s built from available attraction data; outdoor activities were moved off high-precipitation days.",
		req.Mode, req.Destination)
	return days, rationale
}

func slotFor(place models.PointOfInterest, verb string) models.SlotPlan {
	return models.SlotPlan{
		Activity:  fmt.Sprintf("%s %s", verb, place.Name),
		Latitude:  place.Latitude,
		Longitude: place.Longitude,
	}
}

// finalize assembles the itinerary and computes totals deterministically from
// the selected flight and hotel, regardless of how the day plans were
// produced.
func (p *Planner) finalize(req models.TripRequest, pctx *models.ProviderContext, days []models.DayPlan, rationale string, start time.Time) *models.Itinerary {
	w := prompt.WeightsFor(req.Mode)

	flight := pickFlight(pctx.Flights, w)
	hotel := pickHotel(pctx.Hotels, w)
	nights := req.NumDays

	base := flight.Price + hotel.NightlyRate*float64(nights)
	spend := math.Min(estimatedDailySpend*float64(req.NumDays), math.Max(0, req.Budget-base))
	totalCost := round2(base + spend)

	flightKg := flight.EmissionsKg
	if flightKg <= 0 {
		flightKg = pctx.Emissions.FlightKg
	}
	hotelKg := hotel.EmissionsKg
	if hotelKg <= 0 {
		hotelKg = pctx.Emissions.HotelNightKg
	}
	totalEmissions := round2(flightKg + hotelKg*float64(nights) + pctx.Emissions.ActivityKg*float64(req.NumDays))

	weather := make(map[string]models.WeatherDay, len(pctx.Weather))
	for _, wd := range pctx.Weather {
		weather[wd.Date] = wd
	}

	return &models.Itinerary{
		Destination:    req.Destination,
		NumDays:        req.NumDays,
		Budget:         req.Budget,
		Mode:           req.Mode,
		Days:           days,
		Flights:        pctx.Flights,
		Hotels:         pctx.Hotels,
		Weather:        weather,
		TotalCost:      totalCost,
		TotalEmissions: totalEmissions,
		EcoScore:       ecoScore(totalCost, totalEmissions, days),
		Rationale:      rationale,
		DataSources:    pctx.Sources,
	}
}

// pickFlight scores candidates with the mode weights: price, emissions and a
// stop-count convenience penalty.
func pickFlight(flights []models.Flight, w prompt.ModeWeights) models.Flight {
	if len(flights) == 0 {
		return models.Flight{}
	}
	best := flights[0]
	bestScore := math.Inf(1)
	for _, f := range flights {
		emissions := f.EmissionsKg
		if emissions <= 0 {
			emissions = 200
		}
		score := w.Alpha*f.Price + w.Beta*emissions + w.Gamma*float64(f.Stops)*50
		if score < bestScore {
			bestScore = score
			best = f
		}
	}
	return best
}

// pickHotel scores candidates on nightly rate, emissions discounted by the
// sustainability score, and star rating as the convenience term.
func pickHotel(hotels []models.Hotel, w prompt.ModeWeights) models.Hotel {
	if len(hotels) == 0 {
		return models.Hotel{}
	}
	best := hotels[0]
	bestScore := math.Inf(1)
	for _, h := range hotels {
		emissions := h.EmissionsKg
		if emissions <= 0 {
			emissions = 15
		}
		emissions *= 1 - 0.5*h.SustainabilityScore
		score := w.Alpha*h.NightlyRate + w.Beta*emissions*10 + w.Gamma*(5-h.Rating)*20
		if score < bestScore {
			bestScore = score
			best = h
		}
	}
	return best
}

var lowImpactKeywords = []string{
	"walk", "park", "garden", "museum", "market", "bike", "cycle",
	"hike", "local", "botanical", "gallery", "viewpoint",
}

// ecoScore maps emissions-per-dollar and the share of low-impact activities
// to a 0-100 score. Lower emissions per dollar and more low-impact slots both
// push the score up.
func ecoScore(totalCost, totalEmissions float64, days []models.DayPlan) float64 {
	epd := totalEmissions / math.Max(totalCost, 1)

	var low, total int
	for _, d := range days {
		for _, slot := range []models.SlotPlan{d.Morning, d.Afternoon, d.Evening} {
			total++
			lower := strings.ToLower(slot.Activity)
			for _, kw := range lowImpactKeywords {
				if strings.Contains(lower, kw) {
					low++
					break
				}
			}
		}
	}
	share := 0.0
	if total > 0 {
		share = float64(low) / float64(total)
	}

	score := 70/(1+2*epd) + 30*share
	return round2(math.Max(0, math.Min(100, score)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
