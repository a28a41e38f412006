// Package fallback supplies deterministic sample data for any provider
// category that is unconfigured or failed. The service must always produce a
// complete itinerary, so every category has a stand-in here; output depends
// only on the request inputs, never on randomness or the clock.
package fallback

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"time"

	"greentrip/internal/models"
)

// Supplier generates sample provider data. Zero value is ready to use.
type Supplier struct{}

func NewSupplier() *Supplier {
	return &Supplier{}
}

// seed derives a stable per-city variation index so two destinations do not
// get byte-identical sample data.
func seed(city string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(city))))
	return h.Sum32()
}

var sampleAirlines = []struct {
	name  string
	code  string
	base  float64
	hours int
}{
	{"GreenWings", "GW", 420, 6},
	{"EcoJet", "EJ", 510, 7},
	{"Atlantic Sky", "AS", 615, 5},
	{"Meridian Air", "MA", 380, 8},
}

// Flights returns three sample flight candidates for the route, cheapest
// first, priced off a per-city offset so destinations differ.
func (s *Supplier) Flights(origin, destination string, departureDate string) []models.Flight {
	offset := float64(seed(destination)%200) - 100

	flights := make([]models.Flight, 0, 3)
	for i := 0; i < 3; i++ {
		a := sampleAirlines[(int(seed(destination))+i)%len(sampleAirlines)]
		price := a.base + offset + float64(i)*85
		if price < 120 {
			price = 120
		}
		flights = append(flights, models.Flight{
			Airline:       a.name,
			FlightNumber:  fmt.Sprintf("%s%d", a.code, 100+int(seed(destination)%400)+i),
			Price:         round2(price),
			Currency:      "USD",
			DepartureTime: departureDate + "T08:30:00",
			ArrivalTime:   departureDate + fmt.Sprintf("T%02d:45:00", 8+a.hours),
			Duration:      fmt.Sprintf("%dh 15m", a.hours),
			Stops:         i % 2,
			EmissionsKg:   round2(180 + float64(i)*40),
		})
	}
	sort.Slice(flights, func(i, j int) bool { return flights[i].Price < flights[j].Price })
	return flights
}

var sampleHotelNames = []string{
	"Central Garden Hotel",
	"Riverside Boutique Stay",
	"Old Town Residence",
	"Skyline Suites",
	"Harbor View Inn",
}

// Hotels returns three sample lodging candidates with mixed price points and
// sustainability scores.
func (s *Supplier) Hotels(city string) []models.Hotel {
	base := 80 + float64(seed(city)%90)
	loc := displayCity(city)

	hotels := make([]models.Hotel, 0, 3)
	for i := 0; i < 3; i++ {
		name := sampleHotelNames[(int(seed(city))+i)%len(sampleHotelNames)]
		hotels = append(hotels, models.Hotel{
			Name:                name,
			Location:            loc,
			NightlyRate:         round2(base + float64(i)*55),
			Rating:              3.5 + float64(i)*0.5,
			Currency:            "USD",
			SustainabilityScore: round2(0.4 + float64((int(seed(city))+i)%5)*0.12),
			EmissionsKg:         round2(12 + float64(i)*4),
		})
	}
	return hotels
}

var sampleWeatherCycle = []struct {
	summary string
	high    float64
	low     float64
	precip  float64
}{
	{"clear sky", 24, 14, 0.05},
	{"partly cloudy", 21, 12, 0.15},
	{"light rain", 18, 11, 0.55},
	{"scattered clouds", 22, 13, 0.20},
	{"sunny", 26, 15, 0.00},
}

// Weather returns a plausible daily forecast covering the whole trip, one
// entry per day starting at start.
func (s *Supplier) Weather(city string, start time.Time, numDays int) []models.WeatherDay {
	shift := int(seed(city) % uint32(len(sampleWeatherCycle)))

	days := make([]models.WeatherDay, 0, numDays)
	for i := 0; i < numDays; i++ {
		w := sampleWeatherCycle[(shift+i)%len(sampleWeatherCycle)]
		days = append(days, models.WeatherDay{
			Date:       start.AddDate(0, 0, i).Format("2006-01-02"),
			Summary:    w.summary,
			HighC:      w.high,
			LowC:       w.low,
			PrecipProb: w.precip,
		})
	}
	return days
}

var samplePlaceTemplates = []struct {
	pattern  string
	category string
}{
	{"%s History Museum", "museums"},
	{"%s Botanical Garden", "gardens and parks"},
	{"Old Town of %s", "historic architecture"},
	{"%s Central Market", "markets"},
	{"%s Riverside Walk", "natural"},
	{"%s Art Gallery", "cultural"},
	{"%s Cathedral", "religion"},
	{"%s Viewpoint", "natural"},
}

// Places returns generic attraction candidates named after the destination.
func (s *Supplier) Places(city string, limit int) []models.PointOfInterest {
	if limit <= 0 || limit > len(samplePlaceTemplates) {
		limit = len(samplePlaceTemplates)
	}
	name := displayCity(city)

	out := make([]models.PointOfInterest, 0, limit)
	for i := 0; i < limit; i++ {
		tpl := samplePlaceTemplates[(int(seed(city))+i)%len(samplePlaceTemplates)]
		out = append(out, models.PointOfInterest{
			Name:     fmt.Sprintf(tpl.pattern, name),
			Category: tpl.category,
		})
	}
	return out
}

// Factors returns the static per-unit emission estimates.
func (s *Supplier) Factors() models.EmissionFactors {
	return models.EmissionFactors{
		FlightKg:     200,
		HotelNightKg: 15,
		ActivityKg:   5,
	}
}

func displayCity(city string) string {
	city = strings.TrimSpace(city)
	if i := strings.IndexByte(city, ','); i >= 0 {
		city = strings.TrimSpace(city[:i])
	}
	if city == "" {
		return "the City"
	}
	words := strings.Fields(strings.ToLower(city))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
