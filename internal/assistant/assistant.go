// Package assistant answers quick itinerary questions through a rule-based
// intent layer, serving bot channels that want instant answers without a
// model round trip. Messages that match no rule are handed to the chat
// service.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"greentrip/internal/chat"
	apperrors "greentrip/internal/common/errors"
	"greentrip/internal/common/logger"
	"greentrip/internal/conversation"
	"greentrip/internal/models"
)

// Intent classifies what a quick message is asking for.
type Intent string

const (
	IntentPlanToday    Intent = "plan_today"
	IntentPlanTomorrow Intent = "plan_tomorrow"
	IntentTripSummary  Intent = "trip_summary"
	IntentThingsToDo   Intent = "things_to_do"
	IntentEcoSummary   Intent = "eco_summary"
	IntentGeneral      Intent = "general"
)

// Message is one inbound bot message.
type Message struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id,omitempty"`
	Text           string `json:"text"`
}

// Reply is the assistant's answer. Intent is exposed so channels can render
// structured answers differently from free-form chat.
type Reply struct {
	Intent Intent `json:"intent"`
	Text   string `json:"text"`
}

// Assistant routes messages between the rule layer and the chat service.
type Assistant struct {
	conversations *conversation.Store
	chat          *chat.Service
	log           logger.Logger
	now           func() time.Time
}

func New(conversations *conversation.Store, chatService *chat.Service, log logger.Logger, now func() time.Time) *Assistant {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if now == nil {
		now = time.Now
	}
	return &Assistant{conversations: conversations, chat: chatService, log: log, now: now}
}

// DetectIntent classifies a message with keyword rules. First match wins;
// the rules are ordered most-specific first.
func DetectIntent(text string) Intent {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, "today", "this morning", "tonight", "this evening", "this afternoon"):
		return IntentPlanToday
	case containsAny(lower, "tomorrow"):
		return IntentPlanTomorrow
	// "eco" alone would match inside words like "recommend".
	case containsAny(lower, "eco score", "eco-", "carbon", "emission", "sustainab", "footprint"):
		return IntentEcoSummary
	case containsAny(lower, "summary", "overview", "whole trip", "full itinerary", "entire trip"):
		return IntentTripSummary
	case containsAny(lower, "things to do", "what to do", "what should i do", "activities", "attractions"):
		return IntentThingsToDo
	default:
		return IntentGeneral
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Handle answers one message. Structured intents are served from the stored
// itinerary; general messages go through the chat service and their exchanges
// are appended to the conversation log.
func (a *Assistant) Handle(ctx context.Context, msg Message) (*Reply, error) {
	if strings.TrimSpace(msg.Text) == "" {
		return nil, apperrors.NewValidationError("text is required")
	}

	var convCtx *conversation.Context
	if a.conversations != nil && msg.ConversationID != "" {
		loaded, err := a.conversations.Load(ctx, msg.ConversationID)
		if err != nil {
			a.log.Warn("conversation load failed", map[string]interface{}{"error": err.Error()})
		} else {
			convCtx = loaded
		}
	}

	var itinerary *models.Itinerary
	if convCtx != nil {
		itinerary = convCtx.Itinerary
	}

	intent := DetectIntent(msg.Text)
	switch intent {
	case IntentPlanToday:
		return &Reply{Intent: intent, Text: a.dayPlan(itinerary, a.today())}, nil
	case IntentPlanTomorrow:
		return &Reply{Intent: intent, Text: a.dayPlan(itinerary, a.today().AddDate(0, 0, 1))}, nil
	case IntentTripSummary:
		return &Reply{Intent: intent, Text: tripSummary(itinerary)}, nil
	case IntentThingsToDo:
		return &Reply{Intent: intent, Text: thingsToDo(itinerary)}, nil
	case IntentEcoSummary:
		return &Reply{Intent: intent, Text: ecoSummary(itinerary)}, nil
	}

	return a.general(ctx, msg, convCtx)
}

func (a *Assistant) general(ctx context.Context, msg Message, convCtx *conversation.Context) (*Reply, error) {
	if a.chat == nil {
		return &Reply{Intent: IntentGeneral, Text: "I can tell you about your itinerary; try asking about today, tomorrow or the whole trip."}, nil
	}

	req := models.ConverseRequest{
		Message:        msg.Text,
		UserID:         msg.UserID,
		ConversationID: msg.ConversationID,
	}
	if convCtx != nil {
		req.Itinerary = convCtx.Itinerary
		req.History = convCtx.History
	}

	resp, err := a.chat.Converse(ctx, req)
	if err != nil {
		return nil, err
	}

	if a.conversations != nil && convCtx != nil {
		turn := models.ChatTurn{Role: models.RoleAssistant, Message: resp.Response}
		if err := a.conversations.Append(ctx, convCtx, msg.Text, turn, resp.UpdatedItinerary); err != nil {
			a.log.Warn("conversation append failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return &Reply{Intent: IntentGeneral, Text: resp.Response}, nil
}

func (a *Assistant) today() time.Time {
	return a.now().UTC().Truncate(24 * time.Hour)
}

const noItineraryReply = "I don't have an itinerary for you yet. Generate one first and I can walk you through each day."

// dayPlan renders the itinerary day matching the date, if the trip covers it.
func (a *Assistant) dayPlan(it *models.Itinerary, date time.Time) string {
	if it == nil || len(it.Days) == 0 {
		return noItineraryReply
	}

	target := date.Format("2006-01-02")
	for i, d := range it.Days {
		if d.Date != target {
			continue
		}
		lines := []string{
			fmt.Sprintf("Day %d of your %s trip (%s):", i+1, it.Destination, d.Date),
			"Morning: " + d.Morning.Activity,
			"Afternoon: " + d.Afternoon.Activity,
			"Evening: " + d.Evening.Activity,
		}
		if w, ok := it.Weather[d.Date]; ok {
			lines = append(lines, fmt.Sprintf("Weather: %s, %.0f-%.0f°C.", w.Summary, w.LowC, w.HighC))
		}
		return strings.Join(lines, "\n")
	}

	return fmt.Sprintf("Your %s trip runs %s to %s, so there's nothing planned for %s.",
		it.Destination, it.Days[0].Date, it.Days[len(it.Days)-1].Date, target)
}

func tripSummary(it *models.Itinerary) string {
	if it == nil || len(it.Days) == 0 {
		return noItineraryReply
	}

	lines := []string{
		fmt.Sprintf("%d days in %s (%s to %s), estimated %.0f USD and %.0f kg CO2, eco score %.0f/100.",
			it.NumDays, it.Destination, it.Days[0].Date, it.Days[len(it.Days)-1].Date,
			it.TotalCost, it.TotalEmissions, it.EcoScore),
	}
	for i, d := range it.Days {
		lines = append(lines, fmt.Sprintf("Day %d (%s): %s; %s; %s.",
			i+1, d.Date, d.Morning.Activity, d.Afternoon.Activity, d.Evening.Activity))
	}
	return strings.Join(lines, "\n")
}

func ecoSummary(it *models.Itinerary) string {
	if it == nil || len(it.Days) == 0 {
		return noItineraryReply
	}

	verdict := "there's room to cut the footprint with slower travel and greener stays"
	if it.EcoScore >= 60 {
		verdict = "that's a comparatively low-impact plan"
	}
	return fmt.Sprintf("Your %s trip is estimated at %.0f kg CO2 with an eco score of %.0f/100; %s.",
		it.Destination, it.TotalEmissions, it.EcoScore, verdict)
}

func thingsToDo(it *models.Itinerary) string {
	if it == nil || len(it.Days) == 0 {
		return noItineraryReply
	}

	seen := make(map[string]bool)
	var activities []string
	for _, d := range it.Days {
		for _, slot := range []models.SlotPlan{d.Morning, d.Afternoon, d.Evening} {
			if slot.Activity == "" || seen[slot.Activity] {
				continue
			}
			seen[slot.Activity] = true
			activities = append(activities, "- "+slot.Activity)
		}
	}

	return fmt.Sprintf("Planned highlights in %s:\n%s", it.Destination, strings.Join(activities, "\n"))
}
