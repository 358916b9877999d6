package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SUGGESTION_SERVED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewSuggestionServed records one served suggestion request for analytics.
func NewSuggestionServed(userId, requestId string, resultCount int, topConfidence float64) Event {
	return BaseEvent{
		Type: "SUGGESTION_SERVED",
		Data: map[string]interface{}{
			"user_id":        userId,
			"request_id":     requestId,
			"result_count":   resultCount,
			"top_confidence": topConfidence,
		},
		OccurredAt: time.Now(),
	}
}

// NewConnectionOpened records a completed suggestion-socket handshake.
func NewConnectionOpened(userId string) Event {
	return BaseEvent{
		Type: "CONNECTION_OPENED",
		Data: map[string]interface{}{
			"user_id": userId,
		},
		OccurredAt: time.Now(),
	}
}
