package assistant

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "greentrip/internal/common/errors"
	"greentrip/internal/common/logger"
	"greentrip/internal/conversation"
	"greentrip/internal/models"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		text string
		want Intent
	}{
		{"what's the plan for today?", IntentPlanToday},
		{"anything good tonight?", IntentPlanToday},
		{"what about tomorrow", IntentPlanTomorrow},
		{"give me a summary of the trip", IntentTripSummary},
		{"show me the full itinerary", IntentTripSummary},
		{"things to do around here", IntentThingsToDo},
		{"what should i do in paris", IntentThingsToDo},
		{"how big is my carbon footprint", IntentEcoSummary},
		{"is this trip sustainable?", IntentEcoSummary},
		{"is the Louvre open on Mondays?", IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectIntent(tt.text))
		})
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 9, 28, 15, 0, 0, 0, time.UTC)
}

func testItinerary() *models.Itinerary {
	return &models.Itinerary{
		Destination:    "Paris",
		NumDays:        2,
		TotalCost:      1400,
		TotalEmissions: 260,
		EcoScore:       62,
		Days: []models.DayPlan{
			{Date: "2026-09-28",
				Morning:   models.SlotPlan{Activity: "Louvre Museum"},
				Afternoon: models.SlotPlan{Activity: "Tuileries walk"},
				Evening:   models.SlotPlan{Activity: "Dinner in Le Marais"}},
			{Date: "2026-09-29",
				Morning:   models.SlotPlan{Activity: "Montmartre"},
				Afternoon: models.SlotPlan{Activity: "Seine cruise"},
				Evening:   models.SlotPlan{Activity: "Jazz club"}},
		},
		Weather: map[string]models.WeatherDay{
			"2026-09-28": {Date: "2026-09-28", Summary: "clear sky", HighC: 21, LowC: 12},
		},
	}
}

func newAssistantForTest(t *testing.T) (*Assistant, *conversation.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := conversation.NewStore(client, time.Hour, 20, logger.NewTestLogger(t))
	return New(store, nil, logger.NewTestLogger(t), fixedNow), store
}

func seedConversation(t *testing.T, store *conversation.Store, it *models.Itinerary) {
	t.Helper()
	err := store.Save(context.Background(), &conversation.Context{
		ConversationID: "c-1",
		Itinerary:      it,
	})
	require.NoError(t, err)
}

func TestHandleRejectsEmptyText(t *testing.T) {
	a, _ := newAssistantForTest(t)

	_, err := a.Handle(context.Background(), Message{Text: "  "})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestHandlePlanToday(t *testing.T) {
	a, store := newAssistantForTest(t)
	seedConversation(t, store, testItinerary())

	reply, err := a.Handle(context.Background(), Message{ConversationID: "c-1", Text: "plan for today?"})
	require.NoError(t, err)

	assert.Equal(t, IntentPlanToday, reply.Intent)
	assert.Contains(t, reply.Text, "Louvre Museum")
	assert.Contains(t, reply.Text, "clear sky")
}

func TestHandlePlanTomorrow(t *testing.T) {
	a, store := newAssistantForTest(t)
	seedConversation(t, store, testItinerary())

	reply, err := a.Handle(context.Background(), Message{ConversationID: "c-1", Text: "and tomorrow?"})
	require.NoError(t, err)

	assert.Equal(t, IntentPlanTomorrow, reply.Intent)
	assert.Contains(t, reply.Text, "Montmartre")
}

func TestHandleDateOutsideTrip(t *testing.T) {
	a, store := newAssistantForTest(t)
	it := testItinerary()
	it.Days = it.Days[1:] // trip starts tomorrow
	seedConversation(t, store, it)

	reply, err := a.Handle(context.Background(), Message{ConversationID: "c-1", Text: "what's on today"})
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "nothing planned")
}

func TestHandleTripSummary(t *testing.T) {
	a, store := newAssistantForTest(t)
	seedConversation(t, store, testItinerary())

	reply, err := a.Handle(context.Background(), Message{ConversationID: "c-1", Text: "trip summary please"})
	require.NoError(t, err)

	assert.Equal(t, IntentTripSummary, reply.Intent)
	assert.Contains(t, reply.Text, "2 days in Paris")
	assert.Contains(t, reply.Text, "Day 2 (2026-09-29)")
}

func TestHandleThingsToDo(t *testing.T) {
	a, store := newAssistantForTest(t)
	seedConversation(t, store, testItinerary())

	reply, err := a.Handle(context.Background(), Message{ConversationID: "c-1", Text: "what are the attractions?"})
	require.NoError(t, err)

	assert.Equal(t, IntentThingsToDo, reply.Intent)
	assert.Contains(t, reply.Text, "- Louvre Museum")
	assert.Contains(t, reply.Text, "- Jazz club")
}

func TestHandleEcoSummary(t *testing.T) {
	a, store := newAssistantForTest(t)
	seedConversation(t, store, testItinerary())

	reply, err := a.Handle(context.Background(), Message{ConversationID: "c-1", Text: "how are the emissions looking?"})
	require.NoError(t, err)

	assert.Equal(t, IntentEcoSummary, reply.Intent)
	assert.Contains(t, reply.Text, "260 kg CO2")
	assert.Contains(t, reply.Text, "62/100")
}

func TestHandleNoItinerary(t *testing.T) {
	a, _ := newAssistantForTest(t)

	reply, err := a.Handle(context.Background(), Message{ConversationID: "missing", Text: "plan for today?"})
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "don't have an itinerary")
}

func TestHandleGeneralWithoutChatService(t *testing.T) {
	a, _ := newAssistantForTest(t)

	reply, err := a.Handle(context.Background(), Message{Text: "is the Louvre open on Mondays?"})
	require.NoError(t, err)
	assert.Equal(t, IntentGeneral, reply.Intent)
	assert.NotEmpty(t, reply.Text)
}
