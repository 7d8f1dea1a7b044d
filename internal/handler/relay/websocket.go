package relay

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/personifai/backend/internal/audio"
	"github.com/personifai/backend/internal/config"
	"github.com/personifai/backend/internal/metrics"
	"github.com/personifai/backend/internal/model/character"
	relaycore "github.com/personifai/backend/internal/relay"
	"github.com/personifai/backend/internal/transcribe"
)

const pingInterval = 30 * time.Second

// Handler accepts client WebSocket connections and binds each one to a
// relay session.
type Handler struct {
	cfg        config.RelayConfig
	characters character.Store
	responder  relaycore.Responder
	registry   *relaycore.Registry
	metrics    *metrics.Metrics
	dial       relaycore.UpstreamDialer
	upgrader   websocket.Upgrader
}

// New builds the handler. When dial is nil the real transcription
// service is dialed with the configured credentials.
func New(cfg config.RelayConfig, characters character.Store, responder relaycore.Responder, registry *relaycore.Registry, m *metrics.Metrics, dial relaycore.UpstreamDialer) *Handler {
	if dial == nil {
		upstream := cfg.Transcribe()
		dial = func(ctx context.Context) (relaycore.Upstream, error) {
			return transcribe.Dial(ctx, upstream)
		}
	}
	return &Handler{
		cfg:        cfg,
		characters: characters,
		responder:  responder,
		registry:   registry,
		metrics:    m,
		dial:       dial,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// RegisterRoutes exposes the relay endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[relay] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session := h.newSession(conn)
	h.registry.Add(session)
	defer h.registry.Remove(session.ID)
	defer session.Close()

	log.Printf("[relay] session %s connected from %s", session.ID, r.RemoteAddr)
	session.Greet()

	stopPing := h.startPing(conn)
	defer stopPing()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[relay] session %s read error: %v", session.ID, err)
			} else {
				log.Printf("[relay] session %s disconnected", session.ID)
			}
			return
		}

		switch msgType {
		case websocket.TextMessage:
			session.HandleControl(data)
		case websocket.BinaryMessage:
			session.ForwardAudio(data)
		}
	}
}

func (h *Handler) newSession(conn *websocket.Conn) *relaycore.Session {
	def := h.defaultCharacter()

	var chunker *audio.Chunker
	if h.cfg.AudioChunking {
		chunker = audio.NewChunker(audio.Config{SampleRate: h.cfg.SampleRate})
	}

	return relaycore.NewSession(uuid.NewString(), relaycore.SessionParams{
		Client:           conn,
		Dialer:           h.dial,
		Responder:        h.responder,
		Characters:       h.characters,
		DefaultCharacter: def,
		Metrics:          h.metrics,
		Chunker:          chunker,
		DialTimeout:      h.cfg.DialTimeout,
	})
}

// defaultCharacter resolves the configured startup character. The roster
// is validated at boot, so a miss can only follow a bad config value; in
// that case the first roster entry is used.
func (h *Handler) defaultCharacter() character.Character {
	if id, ok := character.ParseID(h.cfg.DefaultCharacter); ok {
		if c, found := h.characters.FindByID(id); found {
			return c
		}
	}
	return h.characters.List()[0]
}

// startPing keeps intermediaries from idling out long-lived connections.
func (h *Handler) startPing(conn *websocket.Conn) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				deadline := time.Now().Add(5 * time.Second)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			}
		}
	}()
	return func() { close(done) }
}
