package transcribe

import (
	"encoding/json"
	"fmt"
)

// Event is one upstream streaming message. Concrete types are BeginEvent,
// TurnEvent, TerminationEvent and ErrorEvent.
type Event interface {
	eventType() string
}

// BeginEvent signals that the upstream session is live. ExpiresAt is a
// Unix timestamp in seconds, as sent on the wire.
type BeginEvent struct {
	ID        string `json:"id"`
	ExpiresAt int64  `json:"expires_at"`
}

// TurnEvent carries one transcribed unit of speech. A turn with
// TurnIsFormatted set is final (punctuated and cased); otherwise it is an
// in-progress partial.
type TurnEvent struct {
	Transcript      string  `json:"transcript"`
	TurnIsFormatted bool    `json:"turn_is_formatted"`
	EndOfTurn       bool    `json:"end_of_turn"`
	Words           []Word  `json:"words,omitempty"`
	AudioStart      float64 `json:"start,omitempty"`
	AudioEnd        float64 `json:"end,omitempty"`
}

// Word is a single recognized token with millisecond offsets.
type Word struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// TerminationEvent closes out an upstream session with usage totals.
type TerminationEvent struct {
	AudioDurationSeconds   float64 `json:"audio_duration_seconds"`
	SessionDurationSeconds float64 `json:"session_duration_seconds"`
}

// ErrorEvent reports a service-side failure for the session.
type ErrorEvent struct {
	Code    string `json:"error_code"`
	Message string `json:"error_message"`
}

func (BeginEvent) eventType() string       { return "Begin" }
func (TurnEvent) eventType() string        { return "Turn" }
func (TerminationEvent) eventType() string { return "Termination" }
func (ErrorEvent) eventType() string       { return "Error" }

// terminateFrame is the graceful shutdown control message sent upstream.
type terminateFrame struct {
	Type string `json:"type"`
}

// ParseEvent decodes one upstream payload into its typed event.
func ParseEvent(data []byte) (Event, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}

	switch envelope.Type {
	case "Begin":
		var ev BeginEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode Begin event: %w", err)
		}
		return ev, nil
	case "Turn":
		var ev TurnEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode Turn event: %w", err)
		}
		return ev, nil
	case "Termination":
		var ev TerminationEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode Termination event: %w", err)
		}
		return ev, nil
	case "Error":
		var ev ErrorEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, fmt.Errorf("decode Error event: %w", err)
		}
		return ev, nil
	case "":
		return nil, fmt.Errorf("event without type discriminator")
	default:
		return nil, fmt.Errorf("unknown event type %q", envelope.Type)
	}
}
