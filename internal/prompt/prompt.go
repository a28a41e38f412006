// Package prompt assembles the instruction text sent to the language model.
// Prompts are built as line slices and joined once; every template pins the
// exact JSON shape the caller validates against, so a model drifting from the
// contract is caught by schema validation rather than a decode panic.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"greentrip/internal/models"
)

// ModeWeights are the scoring weights the model is told to optimize with:
// alpha on price, beta on emissions, gamma on convenience.
type ModeWeights struct {
	Alpha float64
	Beta  float64
	Gamma float64
}

// WeightsFor returns the optimization weights for a planning mode.
func WeightsFor(mode models.Mode) ModeWeights {
	if mode == models.ModePriceOptimal {
		return ModeWeights{Alpha: 0.7, Beta: 0.2, Gamma: 0.1}
	}
	return ModeWeights{Alpha: 0.4, Beta: 0.4, Gamma: 0.2}
}

// ItinerarySystem is the system prompt for itinerary generation.
func ItinerarySystem() string {
	return strings.Join([]string{
		"You are a travel planner that produces day-by-day itineraries.",
		"You always respond with a single JSON object and nothing else:",
		"no markdown fences, no commentary before or after the JSON.",
	}, "\n")
}

// Itinerary builds the user prompt for one generation run from the trip
// request and the resolved provider context.
func Itinerary(req models.TripRequest, pctx *models.ProviderContext, startDate string, userPrefs []models.ExtractedPreference) string {
	w := WeightsFor(req.Mode)

	lines := []string{
		fmt.Sprintf("Plan a %d-day trip to %s starting %s with a total budget of %.0f USD.",
			req.NumDays, req.Destination, startDate, req.Budget),
		"",
		fmt.Sprintf("Optimization mode: %s.", req.Mode),
		fmt.Sprintf("Score options as %.1f*price + %.1f*emissions + %.1f*convenience and prefer lower scores.",
			w.Alpha, w.Beta, w.Gamma),
	}

	if len(req.Preferences) > 0 {
		lines = append(lines, "", "Traveler preferences for this trip:")
		for _, p := range req.Preferences {
			lines = append(lines, "- "+p)
		}
	}

	if len(userPrefs) > 0 {
		lines = append(lines, "", "Known long-term preferences of this traveler:")
		for _, p := range userPrefs {
			lines = append(lines, fmt.Sprintf("- %s: %s", p.Category, p.Value))
		}
	}

	lines = append(lines, "", "Available flights:")
	lines = append(lines, compactJSONLines(pctx.Flights)...)
	lines = append(lines, "", "Available hotels:")
	lines = append(lines, compactJSONLines(pctx.Hotels)...)
	lines = append(lines, "", "Weather forecast:")
	lines = append(lines, compactJSONLines(pctx.Weather)...)
	lines = append(lines, "", "Attractions:")
	lines = append(lines, compactJSONLines(pctx.Places)...)

	lines = append(lines,
		"",
		fmt.Sprintf("Per-unit emission factors: flight %.0f kg CO2 round trip, hotel %.1f kg per night, activities %.1f kg per day.",
			pctx.Emissions.FlightKg, pctx.Emissions.HotelNightKg, pctx.Emissions.ActivityKg),
		"",
		"Rules:",
		fmt.Sprintf("- Produce exactly %d days, each with non-empty morning, afternoon and evening activities.", req.NumDays),
		"- Schedule outdoor activities on low-precipitation days and indoor ones on rainy days.",
		"- Pick one flight and one hotel from the candidates and keep total cost within budget.",
		"",
		"Respond with JSON of exactly this shape:",
		`{"days":[{"day":1,"morning":"...","afternoon":"...","evening":"..."}],` +
			`"totals":{"cost":0,"emissions_kg":0},"rationale":"one short paragraph"}`,
	)

	return strings.Join(lines, "\n")
}

// ChatSystem is the system prompt for the itinerary chat assistant.
func ChatSystem() string {
	return strings.Join([]string{
		"You are a travel assistant helping a traveler refine an existing itinerary.",
		"Classify each message as either a question to answer or an edit request.",
		"You always respond with a single JSON object and nothing else.",
		"Shape:",
		`{"reply":"text shown to the traveler","action":"answer"|"edit",`,
		` "patch":{"days":[{"day":1,"morning":{"activity":"..."},"afternoon":{"activity":"..."},"evening":{"activity":"..."}}],"rationale":"..."}}`,
		`For action "answer", omit patch or set it to null.`,
		`For action "edit", include only the days being changed, addressed by 1-based day number,`,
		"and within a day include only the slots being changed.",
	}, "\n")
}

// Chat builds the user prompt for one conversation turn.
func Chat(message string, itinerary *models.Itinerary, history []models.ChatTurn) string {
	lines := []string{}

	if itinerary != nil {
		compact, err := json.Marshal(itinerary.Days)
		if err == nil {
			lines = append(lines,
				fmt.Sprintf("Current itinerary: %d days in %s, budget %.0f USD, total cost %.0f USD.",
					itinerary.NumDays, itinerary.Destination, itinerary.Budget, itinerary.TotalCost),
				"Days: "+string(compact),
			)
		}
	} else {
		lines = append(lines, "There is no itinerary yet; answer general travel questions only.")
	}

	if len(history) > 0 {
		lines = append(lines, "", "Recent conversation:")
		start := 0
		if len(history) > 6 {
			start = len(history) - 6
		}
		for _, turn := range history[start:] {
			lines = append(lines, fmt.Sprintf("%s: %s", turn.Role, turn.Message))
		}
	}

	lines = append(lines, "", "Traveler message: "+message)
	return strings.Join(lines, "\n")
}

// ExtractionSystem is the system prompt for preference mining.
func ExtractionSystem() string {
	return strings.Join([]string{
		"You extract durable travel preferences from a traveler's message.",
		"You always respond with a single JSON object and nothing else.",
		"Shape:",
		`{"preferences":[{"preference_type":"long_term"|"trip_specific"|"temporal",`,
		` "preference_category":"dietary"|"activity"|"timing"|"crowd"|"budget"|"accommodation"|"transportation"|"other",`,
		` "preference_value":"short normalized phrase","confidence":0.0}]}`,
		"Only include preferences the message actually states or strongly implies.",
		"Use long_term for stable traits (dietary needs, mobility), trip_specific for",
		"wishes about this trip, temporal for time-bound constraints (jet lag, today only).",
		"If the message contains no preference, return an empty preferences array.",
	}, "\n")
}

// Extraction builds the user prompt for preference mining from one message.
func Extraction(message string) string {
	return "Traveler message: " + message
}

// compactJSONLines renders each element as one compact JSON line so the model
// sees candidates as discrete options.
func compactJSONLines[T any](items []T) []string {
	if len(items) == 0 {
		return []string{"(none)"}
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			continue
		}
		lines = append(lines, string(b))
	}
	return lines
}
