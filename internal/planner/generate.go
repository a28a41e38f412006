package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	apperrors "greentrip/internal/common/errors"
	"greentrip/internal/models"
	"greentrip/internal/prompt"
)

// itinerarySchema pins the shape the generator must return. Day count is
// request-dependent and checked separately after decoding.
const itinerarySchema = `{
	"type": "object",
	"required": ["days", "totals", "rationale"],
	"properties": {
		"days": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["day", "morning", "afternoon", "evening"],
				"properties": {
					"day": {"type": "integer", "minimum": 1},
					"morning": {"type": "string", "minLength": 1},
					"afternoon": {"type": "string", "minLength": 1},
					"evening": {"type": "string", "minLength": 1}
				}
			}
		},
		"totals": {
			"type": "object",
			"required": ["cost", "emissions_kg"],
			"properties": {
				"cost": {"type": "number"},
				"emissions_kg": {"type": "number"}
			}
		},
		"rationale": {"type": "string"}
	}
}`

var itinerarySchemaLoader = gojsonschema.NewStringLoader(itinerarySchema)

type modelItinerary struct {
	Days []struct {
		Day       int    `json:"day"`
		Morning   string `json:"morning"`
		Afternoon string `json:"afternoon"`
		Evening   string `json:"evening"`
	} `json:"days"`
	Totals struct {
		Cost        float64 `json:"cost"`
		EmissionsKg float64 `json:"emissions_kg"`
	} `json:"totals"`
	Rationale string `json:"rationale"`
}

// generateWithModel asks the language model for the day plans and validates
// the response shape before trusting it. Totals from the model are ignored;
// finalize computes them deterministically from the chosen candidates.
func (p *Planner) generateWithModel(ctx context.Context, req models.TripRequest, pctx *models.ProviderContext, start time.Time, stored []models.ExtractedPreference) ([]models.DayPlan, string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.llmTimeout)
	defer cancel()

	raw, err := p.llm.Complete(callCtx,
		prompt.ItinerarySystem(),
		prompt.Itinerary(req, pctx, start.Format("2006-01-02"), stored))
	if err != nil {
		return nil, "", apperrors.NewGenerationFailure("model call failed", err)
	}

	parsed, err := decodeModelItinerary(raw, req.NumDays)
	if err != nil {
		return nil, "", err
	}

	days := make([]models.DayPlan, req.NumDays)
	for i, d := range parsed.Days {
		days[i] = models.DayPlan{
			Date:      start.AddDate(0, 0, i).Format("2006-01-02"),
			Morning:   models.SlotPlan{Activity: strings.TrimSpace(d.Morning)},
			Afternoon: models.SlotPlan{Activity: strings.TrimSpace(d.Afternoon)},
			Evening:   models.SlotPlan{Activity: strings.TrimSpace(d.Evening)},
		}
	}

	attachCoordinates(days, pctx.Places)
	return days, parsed.Rationale, nil
}

// decodeModelItinerary validates raw model output against the pinned schema
// and the requested day count.
func decodeModelItinerary(raw string, numDays int) (*modelItinerary, error) {
	result, err := gojsonschema.Validate(itinerarySchemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, apperrors.NewBadResponseShape(fmt.Sprintf("not valid JSON: %v", err))
	}
	if !result.Valid() {
		return nil, apperrors.NewBadResponseShape(formatSchemaErrors(result))
	}

	var parsed modelItinerary
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, apperrors.NewBadResponseShape(err.Error())
	}

	if len(parsed.Days) != numDays {
		return nil, apperrors.NewBadResponseShape(
			fmt.Sprintf("expected %d days, got %d", numDays, len(parsed.Days)))
	}
	for i, d := range parsed.Days {
		if strings.TrimSpace(d.Morning) == "" ||
			strings.TrimSpace(d.Afternoon) == "" ||
			strings.TrimSpace(d.Evening) == "" {
			return nil, apperrors.NewBadResponseShape(fmt.Sprintf("day %d has an empty slot", i+1))
		}
	}
	return &parsed, nil
}

func formatSchemaErrors(result *gojsonschema.Result) string {
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return strings.Join(msgs, "; ")
}

// attachCoordinates copies coordinates onto slots whose activity text names a
// known attraction, so map rendering downstream has pins without a second
// lookup.
func attachCoordinates(days []models.DayPlan, places []models.PointOfInterest) {
	match := func(slot *models.SlotPlan) {
		lower := strings.ToLower(slot.Activity)
		for _, p := range places {
			if p.Latitude == nil || p.Name == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(p.Name)) {
				slot.Latitude = p.Latitude
				slot.Longitude = p.Longitude
				return
			}
		}
	}

	for i := range days {
		match(&days[i].Morning)
		match(&days[i].Afternoon)
		match(&days[i].Evening)
	}
}
