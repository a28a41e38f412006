// Package chat implements the itinerary conversation loop: classify a message
// as a question or an edit request, apply validated edits as patches over a
// copy of the itinerary, and mine durable preferences from the message text.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	apperrors "greentrip/internal/common/errors"
	"greentrip/internal/common/logger"
	"greentrip/internal/common/metrics"
	"greentrip/internal/llm"
	"greentrip/internal/models"
	"greentrip/internal/prompt"
)

// PreferenceWriter persists extracted preferences. Nil disables persistence;
// extraction results are still returned to the caller.
type PreferenceWriter interface {
	Upsert(ctx context.Context, pref models.ExtractedPreference) error
}

// Service handles one conversation turn at a time.
type Service struct {
	llm        llm.Completer
	prefs      PreferenceWriter
	llmTimeout time.Duration
	log        logger.Logger
}

func NewService(completer llm.Completer, prefs PreferenceWriter, llmTimeout time.Duration, log logger.Logger) *Service {
	if llmTimeout <= 0 {
		llmTimeout = 45 * time.Second
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{llm: completer, prefs: prefs, llmTimeout: llmTimeout, log: log}
}

const offlineReply = "I can't reach the planning assistant right now, but your itinerary is unchanged. Please try again in a moment."

// Converse processes one user message. Edit requests that pass validation
// return an updated itinerary copy; rejected edits and assistant outages are
// reported conversationally, never as request failures. Preference extraction
// runs on every message and its errors are swallowed.
func (s *Service) Converse(ctx context.Context, req models.ConverseRequest) (*models.ConverseResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, apperrors.NewValidationError("message is required")
	}

	extracted := s.extractAndStore(ctx, req)

	if s.llm == nil || !s.llm.Configured() {
		return &models.ConverseResponse{
			Response:             offlineReply,
			ExtractedPreferences: extracted,
		}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	raw, err := s.llm.Complete(callCtx, prompt.ChatSystem(), prompt.Chat(req.Message, req.Itinerary, req.History))
	if err != nil {
		s.log.Warn("chat completion failed", map[string]interface{}{"error": err.Error()})
		return &models.ConverseResponse{
			Response:             offlineReply,
			ExtractedPreferences: extracted,
		}, nil
	}

	reply, patch, err := decodeChatReply(raw)
	if err != nil {
		s.log.Warn("chat reply failed shape validation", map[string]interface{}{"error": err.Error()})
		return &models.ConverseResponse{
			Response:             offlineReply,
			ExtractedPreferences: extracted,
		}, nil
	}

	resp := &models.ConverseResponse{
		Response:             reply,
		ExtractedPreferences: extracted,
	}

	if patch != nil && !patch.IsEmpty() {
		updated, err := ApplyPatch(req.Itinerary, patch)
		if err != nil {
			metrics.ChatPatches.WithLabelValues("rejected").Inc()
			s.log.Warn("itinerary patch rejected", map[string]interface{}{"error": err.Error()})
			resp.Response = "I couldn't apply that change to your itinerary: " + rejectionDetail(err) +
				" The plan is unchanged; could you rephrase the edit?"
			return resp, nil
		}
		metrics.ChatPatches.WithLabelValues("applied").Inc()
		resp.UpdatedItinerary = updated
	}

	return resp, nil
}

// extractAndStore mines preferences from the message and persists them.
// Failures here never affect the conversation reply.
func (s *Service) extractAndStore(ctx context.Context, req models.ConverseRequest) []models.ExtractedPreference {
	prefs := s.extract(ctx, req.Message)
	for i := range prefs {
		prefs[i].UserID = req.UserID
		prefs[i].TripID = req.TripID
	}

	if s.prefs != nil && req.UserID != "" {
		for _, p := range prefs {
			if err := s.prefs.Upsert(ctx, p); err != nil {
				s.log.Warn("preference upsert failed", map[string]interface{}{
					"category": p.Category,
					"error":    err.Error(),
				})
			}
		}
	}

	metrics.PreferencesExtracted.Add(float64(len(prefs)))
	return prefs
}

type chatReply struct {
	Reply  string                 `json:"reply"`
	Action string                 `json:"action"`
	Patch  *models.ItineraryPatch `json:"patch"`
}

func decodeChatReply(raw string) (string, *models.ItineraryPatch, error) {
	var parsed chatReply
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", nil, apperrors.NewBadResponseShape(err.Error())
	}
	if strings.TrimSpace(parsed.Reply) == "" {
		return "", nil, apperrors.NewBadResponseShape("reply is empty")
	}
	switch parsed.Action {
	case "answer":
		return parsed.Reply, nil, nil
	case "edit":
		return parsed.Reply, parsed.Patch, nil
	default:
		return "", nil, apperrors.NewBadResponseShape("unknown action " + parsed.Action)
	}
}

func rejectionDetail(err error) string {
	var se *apperrors.StandardError
	if errors.As(err, &se) && se.Details != "" {
		return se.Details + "."
	}
	return "the proposed edit was malformed."
}
