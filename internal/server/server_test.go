package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greentrip/internal/assistant"
	"greentrip/internal/chat"
	"greentrip/internal/common/config"
	"greentrip/internal/common/logger"
	"greentrip/internal/conversation"
	"greentrip/internal/models"
	"greentrip/internal/planner"
)

type fakeCompleter struct {
	response string
}

func (f *fakeCompleter) Configured() bool { return f.response != "" }

func (f *fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	return f.response, nil
}

func newServerForTest(t *testing.T) *Server {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log := logger.NewTestLogger(t)
	conv := conversation.NewStore(client, time.Hour, 20, log)
	p := planner.New(planner.Options{Logger: log})
	chatSvc := chat.NewService(&fakeCompleter{}, nil, time.Second, log)
	asst := assistant.New(conv, chatSvc, log, nil)

	return New(config.ServerConfig{Port: 8080}, p, chatSvc, asst, conv, log)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newServerForTest(t)

	rec := doJSON(t, s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMetricsExposed(t *testing.T) {
	s := newServerForTest(t)

	rec := doJSON(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestGenerate(t *testing.T) {
	s := newServerForTest(t)

	rec := doJSON(t, s, http.MethodPost, "/api/itinerary/generate", map[string]interface{}{
		"destination": "Paris",
		"num_days":    3,
		"budget":      2000,
		"mode":        "price-optimal",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Itinerary      models.Itinerary `json:"itinerary"`
		ConversationID string           `json:"conversation_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "Paris", resp.Itinerary.Destination)
	assert.Len(t, resp.Itinerary.Days, 3)
	assert.NotEmpty(t, resp.ConversationID, "generation seeds a conversation")
}

func TestGenerateValidationError(t *testing.T) {
	s := newServerForTest(t)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing destination", map[string]interface{}{"num_days": 3, "budget": 100, "mode": "balanced"}},
		{"bad mode", map[string]interface{}{"destination": "Paris", "num_days": 3, "budget": 100, "mode": "luxurious"}},
		{"too long", map[string]interface{}{"destination": "Paris", "num_days": 45, "budget": 100, "mode": "balanced"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/itinerary/generate", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
		})
	}
}

func TestGenerateMalformedBody(t *testing.T) {
	s := newServerForTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/itinerary/generate", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRoundTripThroughConversation(t *testing.T) {
	s := newServerForTest(t)

	// Generate first to seed a conversation.
	rec := doJSON(t, s, http.MethodPost, "/api/itinerary/generate", map[string]interface{}{
		"destination": "Paris",
		"num_days":    2,
		"budget":      1500,
		"mode":        "balanced",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var gen struct {
		ConversationID string `json:"conversation_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gen))
	require.NotEmpty(t, gen.ConversationID)

	rec = doJSON(t, s, http.MethodPost, "/api/chat", map[string]interface{}{
		"message":         "I'm vegetarian by the way",
		"conversation_id": gen.ConversationID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ConverseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Response)
	require.NotEmpty(t, resp.ExtractedPreferences)
	assert.Equal(t, "vegetarian", resp.ExtractedPreferences[0].Value)
}

func TestChatEmptyMessage(t *testing.T) {
	s := newServerForTest(t)

	rec := doJSON(t, s, http.MethodPost, "/api/chat", map[string]interface{}{"message": " "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestAssistantMessage(t *testing.T) {
	s := newServerForTest(t)

	rec := doJSON(t, s, http.MethodPost, "/api/assistant/message", map[string]interface{}{
		"text": "give me a summary of the trip",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var reply assistant.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, assistant.IntentTripSummary, reply.Intent)
}

func TestAssistantEmptyText(t *testing.T) {
	s := newServerForTest(t)

	rec := doJSON(t, s, http.MethodPost, "/api/assistant/message", map[string]interface{}{"text": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
