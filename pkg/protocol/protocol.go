// Package protocol defines the JSON messages exchanged over the suggestion
// WebSocket. Every message carries a "type" discriminator; unknown types are
// a protocol error the receiver logs and drops without closing the socket.
package protocol

import (
	"encoding/json"
	"fmt"

	"citation-engine-be/internal/entity"
	"citation-engine-be/pkg/textctx"
)

const (
	TypeSuggest     = "suggest"
	TypeSuggestions = "suggestions"
	TypeError       = "error"
	TypePing        = "ping"
	TypePong        = "pong"
)

// SuggestMessage asks the server for citation candidates for the text the
// writer is currently composing.
type SuggestMessage struct {
	Type      string              `json:"type" validate:"required,eq=suggest"`
	RequestId string              `json:"requestId" validate:"required"`
	Text      string              `json:"text" validate:"required"`
	Context   textctx.TextContext `json:"context"`
}

// SuggestionsMessage delivers the ranked result list for one request.
type SuggestionsMessage struct {
	Type      string                      `json:"type"`
	RequestId string                      `json:"requestId"`
	Results   []entity.CitationSuggestion `json:"results"`
}

// ErrorMessage reports a request-scoped or connection-scoped failure.
// RequestId is empty for failures not tied to a specific request.
type ErrorMessage struct {
	Type      string `json:"type"`
	RequestId string `json:"requestId,omitempty"`
	Message   string `json:"message"`
}

type PingMessage struct {
	Type string `json:"type"`
}

type PongMessage struct {
	Type string `json:"type"`
}

func NewSuggestions(requestId string, results []entity.CitationSuggestion) SuggestionsMessage {
	if results == nil {
		results = []entity.CitationSuggestion{}
	}
	return SuggestionsMessage{Type: TypeSuggestions, RequestId: requestId, Results: results}
}

func NewError(requestId, message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, RequestId: requestId, Message: message}
}

func NewPing() PingMessage { return PingMessage{Type: TypePing} }
func NewPong() PongMessage { return PongMessage{Type: TypePong} }

// ErrUnknownType wraps the offending type string so callers can log it.
type ErrUnknownType struct {
	TypeName string
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("protocol: unknown message type %q", e.TypeName)
}

type envelope struct {
	Type string `json:"type"`
}

// Decode parses a raw frame into its typed message. Malformed JSON or an
// unknown type returns an error; the payload is never partially applied.
func Decode(data []byte) (interface{}, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: malformed message: %w", err)
	}

	switch env.Type {
	case TypeSuggest:
		var msg SuggestMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("protocol: malformed suggest: %w", err)
		}
		return &msg, nil
	case TypeSuggestions:
		var msg SuggestionsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("protocol: malformed suggestions: %w", err)
		}
		return &msg, nil
	case TypeError:
		var msg ErrorMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("protocol: malformed error: %w", err)
		}
		return &msg, nil
	case TypePing:
		return &PingMessage{Type: TypePing}, nil
	case TypePong:
		return &PongMessage{Type: TypePong}, nil
	default:
		return nil, &ErrUnknownType{TypeName: env.Type}
	}
}
