package chat

import (
	"context"
	"encoding/json"
	"strings"

	"greentrip/internal/models"
	"greentrip/internal/prompt"
)

const minConfidence = 0.3

// extract mines preferences from one message, preferring the language model
// and degrading to keyword matching. Confidence is clamped to [0,1] and
// anything below the floor is dropped.
func (s *Service) extract(ctx context.Context, message string) []models.ExtractedPreference {
	var prefs []models.ExtractedPreference

	if s.llm != nil && s.llm.Configured() {
		got, err := s.extractWithModel(ctx, message)
		if err != nil {
			s.log.Warn("model extraction failed, using keyword matching", map[string]interface{}{
				"error": err.Error(),
			})
			got = keywordExtract(message)
		}
		prefs = got
	} else {
		prefs = keywordExtract(message)
	}

	out := prefs[:0]
	for _, p := range prefs {
		if p.Confidence < 0 {
			p.Confidence = 0
		}
		if p.Confidence > 1 {
			p.Confidence = 1
		}
		if p.Confidence < minConfidence || p.Value == "" {
			continue
		}
		if !validPreferenceType(p.Type) {
			p.Type = models.PreferenceTripSpecific
		}
		out = append(out, p)
	}
	return out
}

func (s *Service) extractWithModel(ctx context.Context, message string) ([]models.ExtractedPreference, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	raw, err := s.llm.Complete(callCtx, prompt.ExtractionSystem(), prompt.Extraction(message))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Preferences []models.ExtractedPreference `json:"preferences"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, err
	}
	return parsed.Preferences, nil
}

func validPreferenceType(t models.PreferenceType) bool {
	switch t {
	case models.PreferenceLongTerm, models.PreferenceTripSpecific, models.PreferenceTemporal:
		return true
	}
	return false
}

type keywordRule struct {
	keywords   []string
	category   string
	prefType   models.PreferenceType
	value      string
	confidence float64
}

// keywordRules is the deterministic extraction table used when the model is
// unavailable. Values are normalized phrases, not the raw message text.
var keywordRules = []keywordRule{
	{[]string{"vegetarian"}, "dietary", models.PreferenceLongTerm, "vegetarian", 0.85},
	{[]string{"vegan"}, "dietary", models.PreferenceLongTerm, "vegan", 0.85},
	{[]string{"halal"}, "dietary", models.PreferenceLongTerm, "halal", 0.85},
	{[]string{"kosher"}, "dietary", models.PreferenceLongTerm, "kosher", 0.85},
	{[]string{"gluten"}, "dietary", models.PreferenceLongTerm, "gluten-free", 0.8},
	{[]string{"wheelchair", "accessib"}, "other", models.PreferenceLongTerm, "needs accessible venues", 0.8},
	{[]string{"museum", "gallery", "art "}, "activity", models.PreferenceTripSpecific, "museums and galleries", 0.6},
	{[]string{"hiking", "hike", "trail"}, "activity", models.PreferenceTripSpecific, "hiking", 0.6},
	{[]string{"beach"}, "activity", models.PreferenceTripSpecific, "beaches", 0.6},
	{[]string{"nightlife", "clubbing", "bars"}, "activity", models.PreferenceTripSpecific, "nightlife", 0.6},
	{[]string{"avoid crowd", "hate crowd", "quiet place", "less crowded"}, "crowd", models.PreferenceTripSpecific, "avoids crowds", 0.7},
	{[]string{"cheap", "budget friendly", "affordable", "save money"}, "budget", models.PreferenceTripSpecific, "budget conscious", 0.6},
	{[]string{"luxury", "five star", "5-star"}, "accommodation", models.PreferenceTripSpecific, "luxury accommodation", 0.6},
	{[]string{"hostel"}, "accommodation", models.PreferenceTripSpecific, "hostels", 0.6},
	{[]string{"train", "public transport", "no car"}, "transportation", models.PreferenceTripSpecific, "public transport", 0.6},
	{[]string{"early riser", "morning person", "start early"}, "timing", models.PreferenceLongTerm, "early starts", 0.6},
	{[]string{"jet lag", "jetlag"}, "timing", models.PreferenceTemporal, "recovering from jet lag", 0.6},
}

// keywordExtract scans the message against the rule table. One hit per
// category keeps repeated keywords from producing duplicates.
func keywordExtract(message string) []models.ExtractedPreference {
	lower := strings.ToLower(message)

	var out []models.ExtractedPreference
	seen := make(map[string]bool)
	for _, rule := range keywordRules {
		if seen[rule.category+"/"+rule.value] {
			continue
		}
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				out = append(out, models.ExtractedPreference{
					Type:       rule.prefType,
					Category:   rule.category,
					Value:      rule.value,
					Confidence: rule.confidence,
				})
				seen[rule.category+"/"+rule.value] = true
				break
			}
		}
	}
	return out
}
