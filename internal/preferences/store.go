// Package preferences persists extracted user preferences in PostgreSQL.
// (user, scope, type, category, value) is unique; repeated extraction bumps a
// frequency counter, and a trip-specific preference seen often enough is
// promoted to long-term.
package preferences

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperrors "greentrip/internal/common/errors"
	"greentrip/internal/common/logger"
	"greentrip/internal/models"
)

// Store reads and writes preference rows. promotionLimit is the frequency at
// which a trip-specific preference becomes long-term.
type Store struct {
	db             *sql.DB
	promotionLimit int
	log            logger.Logger
}

func NewStore(db *sql.DB, promotionLimit int, log logger.Logger) *Store {
	if promotionLimit <= 0 {
		promotionLimit = 3
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{db: db, promotionLimit: promotionLimit, log: log}
}

// Schema is the table definition the store expects. Applied at startup when
// migrations run in-process.
const Schema = `
CREATE TABLE IF NOT EXISTS user_preferences (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL,
	trip_id TEXT NOT NULL DEFAULT '',
	preference_type TEXT NOT NULL,
	preference_category TEXT NOT NULL,
	preference_value TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	frequency INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (user_id, trip_id, preference_type, preference_category, preference_value)
);
CREATE INDEX IF NOT EXISTS idx_user_preferences_user ON user_preferences (user_id, preference_type);
`

// Migrate creates the preferences table.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return apperrors.NewStorageFailure("migrate", err)
	}
	return nil
}

const upsertQuery = `
INSERT INTO user_preferences
	(id, user_id, trip_id, preference_type, preference_category, preference_value, confidence, frequency, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $8)
ON CONFLICT (user_id, trip_id, preference_type, preference_category, preference_value)
DO UPDATE SET
	frequency = user_preferences.frequency + 1,
	confidence = GREATEST(user_preferences.confidence, EXCLUDED.confidence),
	updated_at = EXCLUDED.updated_at
RETURNING frequency`

const promoteQuery = `
UPDATE user_preferences
SET preference_type = 'long_term', trip_id = '', updated_at = $4
WHERE user_id = $1 AND preference_category = $2 AND preference_value = $3
	AND preference_type = 'trip_specific'`

// Upsert inserts a preference or bumps its frequency when it already exists.
// A trip-specific preference reaching the promotion limit is rewritten as
// long-term.
func (s *Store) Upsert(ctx context.Context, pref models.ExtractedPreference) error {
	now := time.Now().UTC()

	var frequency int
	err := s.db.QueryRowContext(ctx, upsertQuery,
		uuid.New().String(),
		pref.UserID,
		pref.TripID,
		string(pref.Type),
		pref.Category,
		pref.Value,
		pref.Confidence,
		now,
	).Scan(&frequency)
	if err != nil {
		return apperrors.NewStorageFailure("upsert preference", err)
	}

	if pref.Type == models.PreferenceTripSpecific && frequency >= s.promotionLimit {
		if _, err := s.db.ExecContext(ctx, promoteQuery,
			pref.UserID, pref.Category, pref.Value, now); err != nil {
			return apperrors.NewStorageFailure("promote preference", err)
		}
		s.log.Info("preference promoted to long-term", map[string]interface{}{
			"user_id":  pref.UserID,
			"category": pref.Category,
			"value":    pref.Value,
		})
	}
	return nil
}

const longTermQuery = `
SELECT preference_category, preference_value, confidence, frequency
FROM user_preferences
WHERE user_id = $1 AND preference_type = 'long_term'
ORDER BY frequency DESC, confidence DESC
LIMIT 20`

// LongTerm returns the user's long-term preferences, strongest first.
func (s *Store) LongTerm(ctx context.Context, userID string) ([]models.ExtractedPreference, error) {
	rows, err := s.db.QueryContext(ctx, longTermQuery, userID)
	if err != nil {
		return nil, apperrors.NewStorageFailure("load long-term preferences", err)
	}
	defer rows.Close()

	var out []models.ExtractedPreference
	for rows.Next() {
		p := models.ExtractedPreference{UserID: userID, Type: models.PreferenceLongTerm}
		if err := rows.Scan(&p.Category, &p.Value, &p.Confidence, &p.Frequency); err != nil {
			return nil, apperrors.NewStorageFailure("scan preference", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageFailure("iterate preferences", err)
	}
	return out, nil
}

const forTripQuery = `
SELECT preference_type, preference_category, preference_value, confidence, frequency
FROM user_preferences
WHERE user_id = $1 AND (preference_type = 'long_term' OR trip_id = $2)
ORDER BY frequency DESC, confidence DESC
LIMIT 40`

// ForTrip returns long-term preferences plus everything scoped to the trip.
func (s *Store) ForTrip(ctx context.Context, userID, tripID string) ([]models.ExtractedPreference, error) {
	rows, err := s.db.QueryContext(ctx, forTripQuery, userID, tripID)
	if err != nil {
		return nil, apperrors.NewStorageFailure("load trip preferences", err)
	}
	defer rows.Close()

	var out []models.ExtractedPreference
	for rows.Next() {
		p := models.ExtractedPreference{UserID: userID, TripID: tripID}
		var prefType string
		if err := rows.Scan(&prefType, &p.Category, &p.Value, &p.Confidence, &p.Frequency); err != nil {
			return nil, apperrors.NewStorageFailure("scan preference", err)
		}
		p.Type = models.PreferenceType(prefType)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageFailure("iterate preferences", err)
	}
	return out, nil
}
