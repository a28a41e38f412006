package models

// ChatRole identifies the author of a conversation turn.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatTurn is one message in a conversation log. Persistence of the log
// belongs to the external web layer; the core only reads and appends.
type ChatTurn struct {
	Role        ChatRole              `json:"role"`
	Message     string                `json:"message"`
	Patch       *ItineraryPatch       `json:"patch,omitempty"`
	Preferences []ExtractedPreference `json:"preferences,omitempty"`
}

// PreferenceType classifies how durable an extracted preference is.
type PreferenceType string

const (
	PreferenceLongTerm     PreferenceType = "long_term"
	PreferenceTripSpecific PreferenceType = "trip_specific"
	PreferenceTemporal     PreferenceType = "temporal"
)

// ExtractedPreference is a durable user preference mined from chat text.
// (user, type, category, value) is unique within a scope; repeated extraction
// increments Frequency rather than duplicating the record.
type ExtractedPreference struct {
	UserID     string         `json:"user_id,omitempty"`
	TripID     string         `json:"trip_id,omitempty"`
	Type       PreferenceType `json:"preference_type"`
	Category   string         `json:"preference_category"` // dietary, activity, timing, crowd, budget, accommodation, transportation, other
	Value      string         `json:"preference_value"`
	Confidence float64        `json:"confidence"` // 0-1
	Frequency  int            `json:"frequency,omitempty"`
}

// ConverseRequest is the chat endpoint input.
type ConverseRequest struct {
	Message        string     `json:"message"`
	Itinerary      *Itinerary `json:"itinerary,omitempty"`
	History        []ChatTurn `json:"history,omitempty"`
	UserID         string     `json:"user_id,omitempty"`
	TripID         string     `json:"trip_id,omitempty"`
	ConversationID string     `json:"conversation_id,omitempty"`
}

// ConverseResponse is the chat endpoint output. UpdatedItinerary is set only
// when a proposed patch passed shape validation and was merged.
type ConverseResponse struct {
	Response             string                `json:"response"`
	UpdatedItinerary     *Itinerary            `json:"updated_itinerary,omitempty"`
	ExtractedPreferences []ExtractedPreference `json:"extracted_preferences"`
}
