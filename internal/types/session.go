package types

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one entry in the rolling session history.
type ChatMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionContext is owned by the caller; the orchestrator returns a new
// value each turn and never mutates shared state behind the caller's back.
type SessionContext struct {
	SessionID     uuid.UUID      `json:"session_id,omitempty"`
	ParkCode      string         `json:"park_code,omitempty"`
	Preferences   UserPreference `json:"preferences"`
	History       []ChatMessage  `json:"history,omitempty"`
	LastItinerary string         `json:"last_itinerary,omitempty"`
}

// QueryRequest is one user turn handed to the orchestrator.
type QueryRequest struct {
	UserQuery      string         `json:"user_query"`
	SessionContext SessionContext `json:"session_context"`
}

// ChatResponse is the user-facing slice of a turn's result.
type ChatResponse struct {
	Message         string   `json:"message"`
	SafetyStatus    string   `json:"safety_status,omitempty"`
	SafetyReasons   []string `json:"safety_reasons,omitempty"`
	SuggestedTrails []string `json:"suggested_trails,omitempty"`
	DebugIntent     *Intent  `json:"debug_intent,omitempty"`
}

// QueryResponse is the full envelope returned by the orchestrator.
type QueryResponse struct {
	ChatResponse   ChatResponse   `json:"chat_response"`
	ParsedIntent   Intent         `json:"parsed_intent"`
	UpdatedContext SessionContext `json:"updated_context"`
	ParkContext    *Park          `json:"park_context,omitempty"`
	VettedTrails   []Trail        `json:"vetted_trails,omitempty"`
	VettedThings   []ThingToDo    `json:"vetted_things,omitempty"`
}
