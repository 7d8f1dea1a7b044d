package personification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Personification is one user-defined character document as stored in
// the JSONBin bin.
type Personification struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Content      string   `json:"content"`
	Quotes       []string `json:"quotes,omitempty"`
	ProfilePic   string   `json:"profilePic,omitempty"`
	ElevenLabsID string   `json:"elevenLabsId,omitempty"`
	Status       string   `json:"status,omitempty"`
	CreatedAt    string   `json:"createdAt,omitempty"`
	UpdatedAt    string   `json:"updatedAt,omitempty"`
}

// Document is the bin's root record: the active choice plus the full
// roster.
type Document struct {
	Choice           string            `json:"choice"`
	Personifications []Personification `json:"personifications"`
}

// Config locates the JSONBin bin.
type Config struct {
	BaseURL   string
	BinID     string
	MasterKey string
	Timeout   time.Duration
}

const (
	defaultBaseURL = "https://api.jsonbin.io/v3"
	defaultTimeout = 10 * time.Second

	maxAttempts  = 3
	retryBackoff = 500 * time.Millisecond
)

// Client reads and writes the personification document. Requests retry
// transient failures with a linear backoff.
type Client struct {
	baseURL   string
	binID     string
	masterKey string
	http      *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   baseURL,
		binID:     cfg.BinID,
		masterKey: cfg.MasterKey,
		http:      &http.Client{Timeout: timeout},
	}
}

// binRecord wraps the document the way the JSONBin read API returns it.
type binRecord struct {
	Record Document `json:"record"`
}

// Fetch reads the latest document from the bin.
func (c *Client) Fetch(ctx context.Context) (Document, error) {
	url := fmt.Sprintf("%s/b/%s/latest", c.baseURL, c.binID)

	body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Document{}, err
	}

	var rec binRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return Document{}, fmt.Errorf("decode bin record: %w", err)
	}
	return rec.Record, nil
}

// SetChoice updates the active personification while preserving the
// roster. JSONBin has no partial update, so the write re-sends the
// whole document.
func (c *Client) SetChoice(ctx context.Context, choice string) (Document, error) {
	doc, err := c.Fetch(ctx)
	if err != nil {
		return Document{}, err
	}
	doc.Choice = choice

	payload, err := json.Marshal(doc)
	if err != nil {
		return Document{}, fmt.Errorf("encode bin record: %w", err)
	}

	url := fmt.Sprintf("%s/b/%s", c.baseURL, c.binID)
	if _, err := c.do(ctx, http.MethodPut, url, payload); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * retryBackoff):
			}
			log.Printf("[personification] retrying %s %s (attempt %d)", method, url, attempt)
		}

		body, retryable, err := c.attempt(ctx, method, url, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, method, url string, payload []byte) (body []byte, retryable bool, err error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("X-Master-Key", c.masterKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, true, fmt.Errorf("jsonbin %s %s: status %d", method, url, resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, false, fmt.Errorf("jsonbin %s %s: status %d", method, url, resp.StatusCode)
	}
	return body, false, nil
}
