package audio

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// The streaming transcription service accepts audio frames between 50ms and
// 1000ms; shorter frames are rejected and longer ones must be split. The
// chunker regroups arbitrary client frames into that window.
const (
	DefaultMinDuration = 50 * time.Millisecond
	DefaultMaxDuration = 1000 * time.Millisecond

	bytesPerSample = 2 // 16-bit PCM
)

// Config bounds the chunking process for one stream.
type Config struct {
	// SampleRate of the PCM stream in Hz.
	SampleRate int
	// MinDuration below which audio is held back (padded on flush).
	MinDuration time.Duration
	// MaxDuration above which buffered audio is split.
	MaxDuration time.Duration
	// FlushAfter emits a padded chunk when no frame arrived for this long
	// and data is still buffered. Zero disables time-based flushing.
	FlushAfter time.Duration
}

// Chunk is one upstream-ready audio frame.
type Chunk struct {
	ID       string
	Data     []byte
	Duration time.Duration
	Padded   bool
}

// Chunker regroups client audio frames into duration-bounded chunks,
// preserving byte order and 16-bit sample alignment. Not safe for concurrent
// use; each session owns its own chunker.
type Chunker struct {
	cfg      Config
	buf      []byte
	lastEmit time.Time
}

// NewChunker returns a Chunker with defaults applied.
func NewChunker(cfg Config) *Chunker {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.MinDuration <= 0 {
		cfg.MinDuration = DefaultMinDuration
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = DefaultMaxDuration
	}
	return &Chunker{cfg: cfg}
}

func (c *Chunker) bytesPerSecond() int {
	return c.cfg.SampleRate * bytesPerSample
}

func (c *Chunker) sizeFor(d time.Duration) int {
	size := int(d.Milliseconds()) * c.bytesPerSecond() / 1000
	return size / bytesPerSample * bytesPerSample
}

func (c *Chunker) durationFor(size int) time.Duration {
	return time.Duration(size) * time.Second / time.Duration(c.bytesPerSecond())
}

// Buffered reports how many bytes are waiting for the next emit.
func (c *Chunker) Buffered() int {
	return len(c.buf)
}

// Reset discards buffered audio so a new capture starts clean.
func (c *Chunker) Reset() {
	c.buf = c.buf[:0]
	c.lastEmit = time.Time{}
}

// Push appends a client frame and returns every chunk that became ready.
// When FlushAfter is configured and has elapsed since the last emit, a
// below-minimum remainder is padded with silence and emitted too.
func (c *Chunker) Push(data []byte, now time.Time) []Chunk {
	if c.lastEmit.IsZero() {
		c.lastEmit = now
	}
	c.buf = append(c.buf, data...)

	minSize := c.sizeFor(c.cfg.MinDuration)
	maxSize := c.sizeFor(c.cfg.MaxDuration)

	var out []Chunk
	for len(c.buf) >= minSize {
		size := len(c.buf)
		if size > maxSize {
			size = maxSize
		}
		size = size / bytesPerSample * bytesPerSample
		if size < minSize {
			break
		}
		out = append(out, c.emit(size, false, now))
	}

	if len(out) == 0 && len(c.buf) > 0 && c.cfg.FlushAfter > 0 && now.Sub(c.lastEmit) >= c.cfg.FlushAfter {
		if chunk, ok := c.Flush(now); ok {
			out = append(out, chunk)
		}
	}

	return out
}

// Flush pads any remainder with silence up to the minimum duration and
// emits it. Returns false when nothing is buffered.
func (c *Chunker) Flush(now time.Time) (Chunk, bool) {
	if len(c.buf) == 0 {
		return Chunk{}, false
	}

	minSize := c.sizeFor(c.cfg.MinDuration)
	padded := false
	if len(c.buf) < minSize {
		c.buf = append(c.buf, make([]byte, minSize-len(c.buf))...)
		padded = true
	}

	size := len(c.buf) / bytesPerSample * bytesPerSample
	return c.emit(size, padded, now), true
}

func (c *Chunker) emit(size int, padded bool, now time.Time) Chunk {
	data := make([]byte, size)
	copy(data, c.buf[:size])
	c.buf = c.buf[size:]
	c.lastEmit = now

	return Chunk{
		ID:       ulid.Make().String(),
		Data:     data,
		Duration: c.durationFor(size),
		Padded:   padded,
	}
}
