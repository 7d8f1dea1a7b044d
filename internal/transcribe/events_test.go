package transcribe

import "testing"

func TestParseEventBegin(t *testing.T) {
	// expires_at arrives as a Unix-seconds number, not a timestamp string.
	data := []byte(`{"type":"Begin","id":"cfd280c7-5a9b-4dd6-8c05-235ccfa3f97f","expires_at":1745483367}`)
	ev, err := ParseEvent(data)
	if err != nil {
		t.Fatalf("ParseEvent err: %v", err)
	}

	begin, ok := ev.(BeginEvent)
	if !ok {
		t.Fatalf("expected BeginEvent, got %T", ev)
	}
	if begin.ID != "cfd280c7-5a9b-4dd6-8c05-235ccfa3f97f" {
		t.Fatalf("unexpected id: %s", begin.ID)
	}
	if begin.ExpiresAt != 1745483367 {
		t.Fatalf("unexpected expiry: %d", begin.ExpiresAt)
	}
}

func TestParseEventTurn(t *testing.T) {
	data := []byte(`{"type":"Turn","transcript":"Hello there.","turn_is_formatted":true,"end_of_turn":true,"words":[{"start":0,"end":480,"text":"Hello"},{"start":480,"end":900,"text":"there."}]}`)
	ev, err := ParseEvent(data)
	if err != nil {
		t.Fatalf("ParseEvent err: %v", err)
	}

	turn, ok := ev.(TurnEvent)
	if !ok {
		t.Fatalf("expected TurnEvent, got %T", ev)
	}
	if !turn.TurnIsFormatted {
		t.Fatal("expected formatted turn")
	}
	if turn.Transcript != "Hello there." {
		t.Fatalf("unexpected transcript: %q", turn.Transcript)
	}
	if len(turn.Words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(turn.Words))
	}
}

func TestParseEventTermination(t *testing.T) {
	data := []byte(`{"type":"Termination","audio_duration_seconds":12.5,"session_duration_seconds":13.2}`)
	ev, err := ParseEvent(data)
	if err != nil {
		t.Fatalf("ParseEvent err: %v", err)
	}

	term, ok := ev.(TerminationEvent)
	if !ok {
		t.Fatalf("expected TerminationEvent, got %T", ev)
	}
	if term.AudioDurationSeconds != 12.5 {
		t.Fatalf("unexpected audio duration: %f", term.AudioDurationSeconds)
	}
}

func TestParseEventError(t *testing.T) {
	data := []byte(`{"type":"Error","error_code":"4003","error_message":"bad sample rate"}`)
	ev, err := ParseEvent(data)
	if err != nil {
		t.Fatalf("ParseEvent err: %v", err)
	}

	errEv, ok := ev.(ErrorEvent)
	if !ok {
		t.Fatalf("expected ErrorEvent, got %T", ev)
	}
	if errEv.Message != "bad sample rate" {
		t.Fatalf("unexpected message: %q", errEv.Message)
	}
}

func TestParseEventMalformed(t *testing.T) {
	cases := [][]byte{
		[]byte(`not json`),
		[]byte(`{"transcript":"missing type"}`),
		[]byte(`{"type":"Unknown"}`),
		[]byte(`{"type":"Turn","words":"not-an-array"}`),
	}
	for _, data := range cases {
		if _, err := ParseEvent(data); err == nil {
			t.Errorf("expected error for payload %s", data)
		}
	}
}
