// Package conversation keeps short-lived chat context in Redis: the turn log
// and the itinerary being discussed, keyed by conversation ID with a TTL so
// abandoned sessions age out on their own.
package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "greentrip/internal/common/errors"
	"greentrip/internal/common/logger"
	"greentrip/internal/models"
)

// Context is one conversation's stored state.
type Context struct {
	ConversationID string             `json:"conversation_id"`
	UserID         string             `json:"user_id,omitempty"`
	TripID         string             `json:"trip_id,omitempty"`
	Itinerary      *models.Itinerary  `json:"itinerary,omitempty"`
	History        []models.ChatTurn  `json:"history"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// Store persists conversation contexts.
type Store struct {
	client     *redis.Client
	ttl        time.Duration
	maxHistory int
	log        logger.Logger
}

func NewStore(client *redis.Client, ttl time.Duration, maxHistory int, log logger.Logger) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if maxHistory <= 0 {
		maxHistory = 50
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{client: client, ttl: ttl, maxHistory: maxHistory, log: log}
}

func key(conversationID string) string {
	return "conversation:" + conversationID
}

// NewID mints a conversation ID.
func NewID() string {
	return uuid.New().String()
}

// Load returns the stored context, or (nil, nil) when the conversation is
// unknown or expired.
func (s *Store) Load(ctx context.Context, conversationID string) (*Context, error) {
	raw, err := s.client.Get(ctx, key(conversationID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStorageFailure("load conversation", err)
	}

	var c Context
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, apperrors.NewStorageFailure("decode conversation", err)
	}
	return &c, nil
}

// Save writes the context and refreshes its TTL. History beyond the cap is
// trimmed oldest-first.
func (s *Store) Save(ctx context.Context, c *Context) error {
	if len(c.History) > s.maxHistory {
		c.History = c.History[len(c.History)-s.maxHistory:]
	}
	c.UpdatedAt = time.Now().UTC()

	raw, err := json.Marshal(c)
	if err != nil {
		return apperrors.NewStorageFailure("encode conversation", err)
	}
	if err := s.client.Set(ctx, key(c.ConversationID), raw, s.ttl).Err(); err != nil {
		return apperrors.NewStorageFailure("save conversation", err)
	}
	return nil
}

// Append records one exchange (user message plus assistant reply) and saves.
// A nil updated itinerary keeps the stored one.
func (s *Store) Append(ctx context.Context, c *Context, userMsg string, reply models.ChatTurn, updated *models.Itinerary) error {
	c.History = append(c.History,
		models.ChatTurn{Role: models.RoleUser, Message: userMsg},
		reply,
	)
	if updated != nil {
		c.Itinerary = updated
	}
	return s.Save(ctx, c)
}

// Delete removes a conversation.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, key(conversationID)).Err(); err != nil {
		return apperrors.NewStorageFailure("delete conversation", err)
	}
	return nil
}
