package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/personifai/backend/internal/audio"
	"github.com/personifai/backend/internal/metrics"
	"github.com/personifai/backend/internal/model/character"
	"github.com/personifai/backend/internal/transcribe"
)

// State describes where a session is in its lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateListening State = "listening"
)

// DefaultDialTimeout bounds how long a startListening request may wait
// for the transcription service before giving up.
const DefaultDialTimeout = 10 * time.Second

// MessageWriter delivers outbound messages to the connected client.
// gorilla's *websocket.Conn satisfies it when writes are serialized by
// the caller.
type MessageWriter interface {
	WriteJSON(v any) error
}

// Upstream is a live connection to the transcription service.
// *transcribe.Client satisfies it.
type Upstream interface {
	Events() <-chan transcribe.Event
	SendAudio(data []byte) error
	Terminate() error
	Close() error
}

// UpstreamDialer opens a new upstream connection. The context carries
// the dial timeout.
type UpstreamDialer func(ctx context.Context) (Upstream, error)

// Responder produces a character reply for a finalized transcript.
type Responder interface {
	Respond(ctx context.Context, transcript string, c character.Character) string
}

// SessionParams collects everything a session needs. All fields are
// required except Chunker and DialTimeout.
type SessionParams struct {
	Client           MessageWriter
	Dialer           UpstreamDialer
	Responder        Responder
	Characters       character.Store
	DefaultCharacter character.Character
	Metrics          *metrics.Metrics
	Chunker          *audio.Chunker
	DialTimeout      time.Duration
}

// Session owns one client connection: it tracks the active character,
// bridges audio to the transcription service while listening, and
// turns finalized transcripts into responses.
//
// Control handling and audio forwarding are driven by the client read
// loop; upstream events arrive on a pump goroutine. The mutex guards
// the state fields; outbound writes go through send, which serializes
// against the client writer.
type Session struct {
	ID        string
	startedAt time.Time

	client     MessageWriter
	dial       UpstreamDialer
	responder  Responder
	characters character.Store
	metrics    *metrics.Metrics
	chunker    *audio.Chunker

	dialTimeout time.Duration

	writeMu sync.Mutex

	mu         sync.Mutex
	state      State
	character  character.Character
	upstream   Upstream
	gen        int
	cancelDial context.CancelFunc
	closed     bool
}

// NewSession builds an idle session around an accepted client connection.
func NewSession(id string, p SessionParams) *Session {
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	return &Session{
		ID:          id,
		startedAt:   time.Now(),
		client:      p.Client,
		dial:        p.Dialer,
		responder:   p.Responder,
		characters:  p.Characters,
		metrics:     p.Metrics,
		chunker:     p.Chunker,
		dialTimeout: timeout,
		state:       StateIdle,
		character:   p.DefaultCharacter,
	}
}

// Snapshot is a point-in-time view of a session for listings.
type Snapshot struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Character string    `json:"character"`
	StartedAt time.Time `json:"startedAt"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:        s.ID,
		State:     s.state,
		Character: string(s.character.ID),
		StartedAt: s.startedAt,
	}
}

// Greet sends the initial status message after the client connects.
func (s *Session) Greet() {
	s.mu.Lock()
	name := s.character.Name
	s.mu.Unlock()
	s.sendStatus(fmt.Sprintf("connected, current character is %s", name))
}

// HandleControl processes one text frame from the client. Malformed
// frames are logged and dropped; the session keeps running.
func (s *Session) HandleControl(data []byte) {
	var msg ControlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("[relay] session %s: malformed control message: %v", s.ID, err)
		s.metrics.ClientMessageErrors.Inc()
		return
	}

	switch msg.Type {
	case ControlStartListening:
		s.handleStart(msg)
	case ControlStopListening:
		s.handleStop()
	case ControlSetCharacter:
		s.handleSetCharacter(msg.Character)
	default:
		log.Printf("[relay] session %s: unknown control type %q", s.ID, msg.Type)
		s.metrics.ClientMessageErrors.Inc()
		s.sendError(fmt.Sprintf("unsupported message type %q", msg.Type))
	}
}

func (s *Session) handleStart(msg ControlMessage) {
	if msg.Mode != "" && msg.Mode != ModeBrowserAudio {
		s.sendError(fmt.Sprintf("unsupported mode %q", msg.Mode))
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.state == StateListening {
		s.mu.Unlock()
		s.sendError("already listening")
		return
	}
	if msg.Character != "" {
		id, ok := character.ParseID(msg.Character)
		if !ok {
			s.mu.Unlock()
			s.sendError(fmt.Sprintf("unknown character %q", msg.Character))
			return
		}
		c, found := s.characters.FindByID(id)
		if !found {
			s.mu.Unlock()
			s.sendError(fmt.Sprintf("unknown character %q", msg.Character))
			return
		}
		s.character = c
	}

	s.state = StateListening
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithTimeout(context.Background(), s.dialTimeout)
	s.cancelDial = cancel
	s.mu.Unlock()

	s.sendStatus("connecting to transcription service")
	go s.connectUpstream(ctx, cancel, gen)
}

func (s *Session) connectUpstream(ctx context.Context, cancel context.CancelFunc, gen int) {
	defer cancel()

	s.metrics.UpstreamDials.Inc()
	up, err := s.dial(ctx)

	s.mu.Lock()
	current := s.gen == gen && !s.closed
	if err != nil {
		s.metrics.UpstreamDialErrors.Inc()
		if current {
			s.state = StateIdle
			s.cancelDial = nil
		}
		s.mu.Unlock()
		if current {
			log.Printf("[relay] session %s: upstream dial failed: %v", s.ID, err)
			s.sendError(fmt.Sprintf("transcription connection failed: %v", err))
		}
		return
	}
	if !current || s.state != StateListening {
		// A stop or disconnect won the race; discard the late connection.
		s.mu.Unlock()
		finishUpstream(up)
		return
	}
	s.upstream = up
	s.cancelDial = nil
	s.mu.Unlock()

	s.sendStatus("listening")
	go s.pumpUpstream(up, gen)
}

// pumpUpstream relays transcription events to the client until the
// upstream event channel closes.
func (s *Session) pumpUpstream(up Upstream, gen int) {
	for ev := range up.Events() {
		switch ev := ev.(type) {
		case transcribe.BeginEvent:
			log.Printf("[relay] session %s: transcription session %s started", s.ID, ev.ID)
			s.sendStatus("transcription session started")
		case transcribe.TurnEvent:
			s.handleTurn(ev)
		case transcribe.TerminationEvent:
			log.Printf("[relay] session %s: transcription session ended after %.1fs of audio", s.ID, ev.AudioDurationSeconds)
			s.sendStatus(fmt.Sprintf("transcription session ended after %.1fs of audio", ev.AudioDurationSeconds))
		case transcribe.ErrorEvent:
			log.Printf("[relay] session %s: upstream error: %s", s.ID, ev.Message)
			s.metrics.UpstreamErrors.Inc()
			s.sendError(fmt.Sprintf("transcription error: %s", ev.Message))
		}
	}

	s.mu.Lock()
	abnormal := s.gen == gen && s.upstream == up && !s.closed
	if abnormal {
		s.upstream = nil
		s.state = StateIdle
	}
	s.mu.Unlock()

	if abnormal {
		log.Printf("[relay] session %s: upstream connection closed unexpectedly", s.ID)
		s.metrics.UpstreamErrors.Inc()
		s.sendError("transcription connection closed")
	}
}

func (s *Session) handleTurn(ev transcribe.TurnEvent) {
	text := strings.TrimSpace(ev.Transcript)
	if text == "" {
		return
	}

	s.mu.Lock()
	c := s.character
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return
	}

	if !ev.TurnIsFormatted {
		s.metrics.TurnsTotal.WithLabelValues("partial").Inc()
		s.send(OutboundMessage{Type: MessagePartialTranscript, Text: text})
		return
	}

	s.metrics.TurnsTotal.WithLabelValues("final").Inc()
	s.send(OutboundMessage{Type: MessageTranscript, Text: text})

	reply := s.responder.Respond(context.Background(), text, c)
	s.metrics.ResponsesTotal.WithLabelValues(string(c.ID)).Inc()
	s.send(OutboundMessage{Type: MessageResponse, Text: reply, Character: string(c.ID)})
}

// ForwardAudio relays one binary frame to the transcription service.
// Frames received while not listening are dropped.
func (s *Session) ForwardAudio(data []byte) {
	s.mu.Lock()
	up := s.upstream
	listening := s.state == StateListening && up != nil && !s.closed
	s.mu.Unlock()

	if !listening {
		s.metrics.AudioFramesDropped.Inc()
		return
	}

	if s.chunker != nil {
		for _, chunk := range s.chunker.Push(data, time.Now()) {
			s.sendAudio(up, chunk.Data)
		}
		return
	}
	s.sendAudio(up, data)
}

func (s *Session) sendAudio(up Upstream, data []byte) {
	if err := up.SendAudio(data); err != nil {
		log.Printf("[relay] session %s: audio forward failed: %v", s.ID, err)
		return
	}
	s.metrics.AudioBytesForwarded.Add(float64(len(data)))
}

func (s *Session) handleStop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	up := s.teardownLocked()
	s.mu.Unlock()

	finishUpstream(up)
	s.sendStatus("stopped listening")
}

func (s *Session) handleSetCharacter(raw string) {
	id, ok := character.ParseID(raw)
	if !ok {
		s.sendError(fmt.Sprintf("unknown character %q", raw))
		return
	}
	c, found := s.characters.FindByID(id)
	if !found {
		s.sendError(fmt.Sprintf("unknown character %q", raw))
		return
	}

	s.mu.Lock()
	s.character = c
	s.mu.Unlock()

	s.sendStatus(fmt.Sprintf("character set to %s", c.Name))
}

// Close releases the session's upstream connection. It is safe to call
// more than once; only the first call has any effect.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	up := s.teardownLocked()
	s.mu.Unlock()

	finishUpstream(up)
}

// teardownLocked moves the session to Idle and detaches the upstream,
// returning it for the caller to shut down outside the lock. Callers
// must hold s.mu.
func (s *Session) teardownLocked() Upstream {
	s.gen++
	if s.cancelDial != nil {
		s.cancelDial()
		s.cancelDial = nil
	}
	up := s.upstream
	s.upstream = nil
	s.state = StateIdle
	if s.chunker != nil {
		s.chunker.Reset()
	}
	return up
}

// finishUpstream asks the transcription service to finalize pending
// audio before the socket drops.
func finishUpstream(up Upstream) {
	if up == nil {
		return
	}
	if err := up.Terminate(); err != nil && err != transcribe.ErrClosed {
		log.Printf("[relay] upstream terminate failed: %v", err)
	}
	up.Close()
}

func (s *Session) sendStatus(msg string) {
	s.send(OutboundMessage{Type: MessageStatus, Message: msg})
}

func (s *Session) sendError(msg string) {
	s.send(OutboundMessage{Type: MessageError, Message: msg})
}

func (s *Session) send(msg OutboundMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.client.WriteJSON(msg); err != nil {
		log.Printf("[relay] session %s: client write failed: %v", s.ID, err)
	}
}
