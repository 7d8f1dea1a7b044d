package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrClosed is returned by writes after the client has been closed.
var ErrClosed = errors.New("transcribe: connection closed")

// Config describes one upstream streaming session.
type Config struct {
	// URL is the streaming endpoint, e.g. wss://streaming.assemblyai.com/v3/ws.
	URL string
	// APIKey is the bearer credential sent in the Authorization header.
	APIKey string
	// SampleRate of the client audio in Hz.
	SampleRate int
	// FormatTurns requests punctuated, cased final turns.
	FormatTurns bool
	// EndOfTurnConfidence tunes how eagerly the service finalizes a turn.
	// Zero leaves the service default in place.
	EndOfTurnConfidence float64
	// EndOfTurnSilenceMs is the silence threshold that ends a confident turn.
	// Zero leaves the service default in place.
	EndOfTurnSilenceMs int
	// DialTimeout bounds the WebSocket handshake.
	DialTimeout time.Duration
}

// Client is one live connection to the streaming transcription service.
// Reads are pumped onto the Events channel by a background goroutine; the
// channel closes when the connection ends for any reason.
type Client struct {
	conn   *websocket.Conn
	events chan Event

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    chan struct{}
}

// Dial opens a streaming session. The context bounds the handshake in
// addition to cfg.DialTimeout; cancellation after Dial returns has no effect
// on the established connection.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("transcribe: missing API key")
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("transcribe: parse endpoint: %w", err)
	}

	q := u.Query()
	q.Set("sample_rate", strconv.Itoa(cfg.SampleRate))
	q.Set("format_turns", strconv.FormatBool(cfg.FormatTurns))
	if cfg.EndOfTurnConfidence > 0 {
		q.Set("end_of_turn_confidence_threshold", strconv.FormatFloat(cfg.EndOfTurnConfidence, 'f', -1, 64))
	}
	if cfg.EndOfTurnSilenceMs > 0 {
		q.Set("min_end_of_turn_silence_when_confident", strconv.Itoa(cfg.EndOfTurnSilenceMs))
	}
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", cfg.APIKey)

	dialer := &websocket.Dialer{HandshakeTimeout: cfg.DialTimeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("transcribe: dial %s: %w (status %d)", u.Host, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("transcribe: dial %s: %w", u.Host, err)
	}

	c := &Client{
		conn:   conn,
		events: make(chan Event, 16),
		closed: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Events returns the inbound event stream. The channel closes once the
// upstream connection is gone.
func (c *Client) Events() <-chan Event {
	return c.events
}

// SendAudio forwards one binary audio frame upstream.
func (c *Client) SendAudio(data []byte) error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Terminate asks the service to finalize the session gracefully. Callers
// still need Close to release the socket.
func (c *Client) Terminate() error {
	select {
	case <-c.closed:
		return ErrClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(terminateFrame{Type: "Terminate"})
}

// Close tears the connection down. Safe to call multiple times and
// concurrently with the read loop.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

// readLoop pumps upstream payloads into the events channel. Malformed
// payloads are logged and skipped; they never end the session.
func (c *Client) readLoop() {
	defer close(c.events)
	defer c.Close()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
			default:
				log.Printf("[transcribe] read: %v", err)
			}
			return
		}

		ev, err := ParseEvent(data)
		if err != nil {
			log.Printf("[transcribe] skipping malformed event: %v", err)
			continue
		}

		select {
		case c.events <- ev:
		case <-c.closed:
			return
		}
	}
}
