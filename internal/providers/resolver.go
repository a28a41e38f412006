package providers

import (
	"strings"
	"unicode"
)

// Destination carries the resolved lookup keys for a free-text destination:
// the IATA city code used by flight/hotel search and the coordinates used by
// weather and attraction search.
type Destination struct {
	City      string
	IATACode  string
	Latitude  float64
	Longitude float64
	Known     bool
}

type cityEntry struct {
	iata string
	lat  float64
	lon  float64
}

// Lookup table for the destinations the search layer sees most. Unknown
// cities degrade to a synthetic code and Paris-region coordinates so every
// downstream call still has usable keys.
var cityTable = map[string]cityEntry{
	"paris":         {"PAR", 48.8566, 2.3522},
	"london":        {"LON", 51.5074, -0.1278},
	"new york":      {"NYC", 40.7128, -74.0060},
	"tokyo":         {"TYO", 35.6762, 139.6503},
	"istanbul":      {"IST", 41.0082, 28.9784},
	"dubai":         {"DXB", 25.2048, 55.2708},
	"berlin":        {"BER", 52.5200, 13.4050},
	"frankfurt":     {"FRA", 50.1109, 8.6821},
	"rome":          {"ROM", 41.9028, 12.4964},
	"madrid":        {"MAD", 40.4168, -3.7038},
	"barcelona":     {"BCN", 41.3874, 2.1686},
	"amsterdam":     {"AMS", 52.3676, 4.9041},
	"singapore":     {"SIN", 1.3521, 103.8198},
	"bangkok":       {"BKK", 13.7563, 100.5018},
	"lisbon":        {"LIS", 38.7223, -9.1393},
	"vienna":        {"VIE", 48.2082, 16.3738},
	"prague":        {"PRG", 50.0755, 14.4378},
	"copenhagen":    {"CPH", 55.6761, 12.5683},
	"san francisco": {"SFO", 37.7749, -122.4194},
	"los angeles":   {"LAX", 34.0522, -118.2437},
	"sydney":        {"SYD", -33.8688, 151.2093},
	"tashkent":      {"TAS", 41.2995, 69.2401},
}

// codeIndex inverts cityTable so a bare IATA city code still resolves to
// coordinates.
var codeIndex = func() map[string]cityEntry {
	m := make(map[string]cityEntry, len(cityTable))
	for _, e := range cityTable {
		m[e.iata] = e
	}
	return m
}()

// airportToCity maps airport codes to the city codes hotel search expects.
var airportToCity = map[string]string{
	"LHR": "LON", "LGW": "LON", "STN": "LON",
	"CDG": "PAR", "ORY": "PAR",
	"JFK": "NYC", "LGA": "NYC", "EWR": "NYC",
	"NRT": "TYO", "HND": "TYO",
	"FCO": "ROM", "CIA": "ROM",
	"SXF": "BER",
}

// ResolveDestination maps free text like "Paris, France" to search keys.
func ResolveDestination(destination string) Destination {
	city := strings.ToLower(strings.TrimSpace(destination))
	if i := strings.IndexByte(city, ','); i >= 0 {
		city = strings.TrimSpace(city[:i])
	}

	if e, ok := cityTable[city]; ok {
		return Destination{
			City:      city,
			IATACode:  e.iata,
			Latitude:  e.lat,
			Longitude: e.lon,
			Known:     true,
		}
	}

	// Already an IATA code?
	upper := strings.ToUpper(strings.TrimSpace(destination))
	if len(upper) == 3 && isAlpha(upper) {
		if mapped, ok := airportToCity[upper]; ok {
			upper = mapped
		}
		if e, ok := codeIndex[upper]; ok {
			return Destination{City: city, IATACode: upper, Latitude: e.lat, Longitude: e.lon, Known: true}
		}
		return Destination{City: city, IATACode: upper, Latitude: 48.8566, Longitude: 2.3522}
	}

	code := syntheticCode(city)
	return Destination{City: city, IATACode: code, Latitude: 48.8566, Longitude: 2.3522}
}

// CityCodeForHotels maps an airport code to the city code hotel search uses.
func CityCodeForHotels(code string) string {
	if mapped, ok := airportToCity[code]; ok {
		return mapped
	}
	return code
}

func syntheticCode(city string) string {
	letters := make([]rune, 0, 3)
	for _, r := range city {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
		}
		if len(letters) == 3 {
			break
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return string(letters)
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return len(s) > 0
}
