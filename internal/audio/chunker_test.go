package audio

import (
	"bytes"
	"testing"
	"time"
)

// 16kHz 16-bit mono: 32 bytes per millisecond.
const bytesPerMs = 32

func newTestChunker(flushAfter time.Duration) *Chunker {
	return NewChunker(Config{
		SampleRate:  16000,
		MinDuration: 50 * time.Millisecond,
		MaxDuration: 1000 * time.Millisecond,
		FlushAfter:  flushAfter,
	})
}

func TestPushHoldsBelowMinimum(t *testing.T) {
	c := newTestChunker(0)
	now := time.Now()

	chunks := c.Push(make([]byte, 40*bytesPerMs), now)
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks below minimum, got %d", len(chunks))
	}
	if c.Buffered() != 40*bytesPerMs {
		t.Fatalf("expected 40ms buffered, got %d bytes", c.Buffered())
	}
}

func TestPushEmitsWhenMinimumReached(t *testing.T) {
	c := newTestChunker(0)
	now := time.Now()

	c.Push(make([]byte, 30*bytesPerMs), now)
	chunks := c.Push(make([]byte, 30*bytesPerMs), now)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Duration != 60*time.Millisecond {
		t.Fatalf("expected 60ms chunk, got %v", chunks[0].Duration)
	}
	if chunks[0].ID == "" {
		t.Fatal("expected chunk id")
	}
	if c.Buffered() != 0 {
		t.Fatalf("expected empty buffer, got %d bytes", c.Buffered())
	}
}

func TestPushSplitsOversizedBuffer(t *testing.T) {
	c := newTestChunker(0)
	now := time.Now()

	// 2.5 seconds of audio must split into 1000ms + 1000ms + 500ms.
	chunks := c.Push(make([]byte, 2500*bytesPerMs), now)

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	want := []time.Duration{time.Second, time.Second, 500 * time.Millisecond}
	for i, chunk := range chunks {
		if chunk.Duration != want[i] {
			t.Errorf("chunk %d: expected %v, got %v", i, want[i], chunk.Duration)
		}
	}
}

func TestChunksPreserveOrderAndAlignment(t *testing.T) {
	c := newTestChunker(0)
	now := time.Now()

	input := make([]byte, 120*bytesPerMs)
	for i := range input {
		input[i] = byte(i % 251)
	}

	var got []byte
	for _, chunk := range c.Push(input, now) {
		if len(chunk.Data)%2 != 0 {
			t.Fatalf("chunk not sample aligned: %d bytes", len(chunk.Data))
		}
		got = append(got, chunk.Data...)
	}
	if flushed, ok := c.Flush(now); ok {
		got = append(got, flushed.Data...)
	}

	if !bytes.Equal(got[:len(input)], input) {
		t.Fatal("chunked output does not preserve input order")
	}
}

func TestFlushPadsShortRemainder(t *testing.T) {
	c := newTestChunker(0)
	now := time.Now()

	c.Push(make([]byte, 10*bytesPerMs), now)
	chunk, ok := c.Flush(now)
	if !ok {
		t.Fatal("expected flush to emit")
	}
	if !chunk.Padded {
		t.Fatal("expected padded chunk")
	}
	if chunk.Duration != 50*time.Millisecond {
		t.Fatalf("expected padded chunk of 50ms, got %v", chunk.Duration)
	}
}

func TestFlushEmptyBuffer(t *testing.T) {
	c := newTestChunker(0)
	if _, ok := c.Flush(time.Now()); ok {
		t.Fatal("expected no chunk from empty buffer")
	}
}

func TestTimeBasedFlush(t *testing.T) {
	c := newTestChunker(500 * time.Millisecond)
	start := time.Now()

	c.Push(make([]byte, 10*bytesPerMs), start)
	chunks := c.Push(make([]byte, 10*bytesPerMs), start.Add(time.Second))

	if len(chunks) != 1 {
		t.Fatalf("expected stale buffer to flush, got %d chunks", len(chunks))
	}
	if !chunks[0].Padded {
		t.Fatal("expected padded flush chunk")
	}
}
