package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/personifai/backend/internal/relay"
)

// relayprobe drives a relay server by hand: it connects to /ws, streams
// a raw PCM file the way a browser capture would, and prints every
// message the server sends back.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	serverURL := flag.String("url", "ws://localhost:8080/ws", "relay WebSocket endpoint")
	audioPath := flag.String("audio", "", "raw 16-bit PCM file to stream (optional)")
	characterID := flag.String("character", "", "character to request at start")
	sampleRate := flag.Int("rate", 16000, "sample rate of the PCM file")
	frameMs := flag.Int("frame", 100, "milliseconds of audio per frame")
	listen := flag.Duration("listen", 10*time.Second, "how long to keep the session open after streaming")

	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", *serverURL, err)
	}
	defer conn.Close()

	go printMessages(conn)

	start := relay.ControlMessage{
		Type:      relay.ControlStartListening,
		Mode:      relay.ModeBrowserAudio,
		Character: *characterID,
	}
	if err := conn.WriteJSON(start); err != nil {
		log.Fatalf("send start: %v", err)
	}

	if *audioPath != "" {
		streamAudio(conn, *audioPath, *sampleRate, *frameMs)
	}

	waitOrInterrupt(*listen)

	if err := conn.WriteJSON(relay.ControlMessage{Type: relay.ControlStopListening}); err != nil {
		log.Printf("send stop: %v", err)
	}
	// Give the server a moment to flush the closing status.
	time.Sleep(500 * time.Millisecond)
}

func printMessages(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("connection closed: %v", err)
			return
		}
		var msg relay.OutboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("<- unparseable message: %s", data)
			continue
		}
		switch msg.Type {
		case relay.MessageTranscript:
			log.Printf("<- transcript: %s", msg.Text)
		case relay.MessagePartialTranscript:
			log.Printf("<- partial: %s", msg.Text)
		case relay.MessageResponse:
			log.Printf("<- response (%s): %s", msg.Character, msg.Text)
		case relay.MessageError:
			log.Printf("<- error: %s", msg.Message)
		default:
			log.Printf("<- %s: %s", msg.Type, msg.Message)
		}
	}
}

// streamAudio paces PCM frames at real-time speed so the server sees
// the same cadence a live microphone produces.
func streamAudio(conn *websocket.Conn, path string, sampleRate, frameMs int) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read audio file: %v", err)
	}

	frameBytes := sampleRate * 2 * frameMs / 1000
	interval := time.Duration(frameMs) * time.Millisecond
	log.Printf("streaming %d bytes in %dms frames", len(data), frameMs)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for offset := 0; offset < len(data); offset += frameBytes {
		end := offset + frameBytes
		if end > len(data) {
			end = len(data)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, data[offset:end]); err != nil {
			log.Fatalf("send frame: %v", err)
		}
		<-ticker.C
	}
	log.Println("finished streaming audio")
}

func waitOrInterrupt(d time.Duration) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-time.After(d):
	case <-sig:
		log.Println("interrupted")
	}
}
