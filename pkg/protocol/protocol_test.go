package protocol

import (
	"encoding/json"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantType interface{}
		wantErr  bool
	}{
		{
			name:     "suggest message",
			raw:      `{"type":"suggest","requestId":"r1","text":"some sentence","context":{"currentSentence":"some sentence","paragraph":"some sentence","cursorOffset":4}}`,
			wantType: &SuggestMessage{},
		},
		{
			name:     "ping",
			raw:      `{"type":"ping"}`,
			wantType: &PingMessage{},
		},
		{
			name:     "pong",
			raw:      `{"type":"pong"}`,
			wantType: &PongMessage{},
		},
		{
			name:     "error message",
			raw:      `{"type":"error","message":"index unavailable"}`,
			wantType: &ErrorMessage{},
		},
		{
			name:    "unknown type",
			raw:     `{"type":"frobnicate"}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			raw:     `{"type":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Decode([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Decode() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}

			switch tt.wantType.(type) {
			case *SuggestMessage:
				got, ok := msg.(*SuggestMessage)
				if !ok {
					t.Fatalf("Decode() = %T, want *SuggestMessage", msg)
				}
				if got.RequestId != "r1" {
					t.Errorf("RequestId = %q, want r1", got.RequestId)
				}
				if got.Context.CurrentSentence != "some sentence" {
					t.Errorf("Context.CurrentSentence = %q", got.Context.CurrentSentence)
				}
			case *PingMessage:
				if _, ok := msg.(*PingMessage); !ok {
					t.Fatalf("Decode() = %T, want *PingMessage", msg)
				}
			case *PongMessage:
				if _, ok := msg.(*PongMessage); !ok {
					t.Fatalf("Decode() = %T, want *PongMessage", msg)
				}
			case *ErrorMessage:
				got, ok := msg.(*ErrorMessage)
				if !ok {
					t.Fatalf("Decode() = %T, want *ErrorMessage", msg)
				}
				if got.Message != "index unavailable" {
					t.Errorf("Message = %q", got.Message)
				}
			}
		})
	}
}

func TestNewSuggestionsNeverNilResults(t *testing.T) {
	msg := NewSuggestions("r9", nil)
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(raw) != `{"type":"suggestions","requestId":"r9","results":[]}` {
		t.Errorf("unexpected payload: %s", raw)
	}
}
