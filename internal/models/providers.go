package models

// Category identifies one external data source.
type Category string

const (
	CategoryFlights   Category = "flights"
	CategoryHotels    Category = "hotels"
	CategoryWeather   Category = "weather"
	CategoryPlaces    Category = "places"
	CategoryEmissions Category = "emissions"
)

// Categories lists every provider category in dispatch order.
var Categories = []Category{
	CategoryFlights,
	CategoryHotels,
	CategoryWeather,
	CategoryPlaces,
	CategoryEmissions,
}

// Outcome records how a category's data was obtained. Both sample outcomes
// carry usable data; the distinction is provenance only.
type Outcome string

const (
	OutcomeLive     Outcome = "live"     // provider call succeeded
	OutcomeFallback Outcome = "fallback" // no credentials, short-circuited to sample data
	OutcomeFailed   Outcome = "failed"   // live call failed, replaced by sample data
)

// Flight is one flight candidate, normalized across providers.
type Flight struct {
	Airline       string  `json:"airline"`
	FlightNumber  string  `json:"flight_number,omitempty"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency,omitempty"`
	DepartureTime string  `json:"departure_time,omitempty"`
	ArrivalTime   string  `json:"arrival_time,omitempty"`
	Duration      string  `json:"duration,omitempty"`
	Stops         int     `json:"stops"`
	EmissionsKg   float64 `json:"emissions_kg,omitempty"`
}

// Hotel is one lodging candidate.
type Hotel struct {
	Name                string  `json:"name"`
	Location            string  `json:"location,omitempty"`
	NightlyRate         float64 `json:"nightly_rate"`
	Rating              float64 `json:"rating,omitempty"`
	Currency            string  `json:"currency,omitempty"`
	SustainabilityScore float64 `json:"sustainability_score,omitempty"` // 0-1
	EmissionsKg         float64 `json:"emissions_kg,omitempty"`         // per night
}

// WeatherDay is one day's forecast.
type WeatherDay struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	Summary     string  `json:"summary"`
	HighC       float64 `json:"temperature_high_c"`
	LowC        float64 `json:"temperature_low_c"`
	PrecipProb  float64 `json:"precipitation_probability"` // 0-1
}

// PointOfInterest is one attraction candidate.
type PointOfInterest struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// EmissionFactors carries per-unit CO2 estimates used when a candidate has no
// provider-reported emissions figure.
type EmissionFactors struct {
	FlightKg     float64 `json:"flight_kg"`       // round trip per passenger
	HotelNightKg float64 `json:"hotel_night_kg"`  // per room-night
	ActivityKg   float64 `json:"activity_day_kg"` // per trip day
}

// ProviderContext aggregates the resolved data for every category, regardless
// of whether each came from a live call or the fallback supplier.
type ProviderContext struct {
	Flights   []Flight                `json:"flights"`
	Hotels    []Hotel                 `json:"hotels"`
	Weather   []WeatherDay            `json:"weather"`
	Places    []PointOfInterest       `json:"places"`
	Emissions EmissionFactors         `json:"emissions"`
	Sources   map[Category]Outcome    `json:"sources"`
}
