package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/personifai/backend/internal/config"
	relayHandler "github.com/personifai/backend/internal/handler/relay"
	"github.com/personifai/backend/internal/metrics"
	"github.com/personifai/backend/internal/model/character"
	relaycore "github.com/personifai/backend/internal/relay"
	"github.com/personifai/backend/internal/respond"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store, err := character.NewMemoryStore(character.Seed())
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)
	registry := relaycore.NewRegistry(m)
	cfg := config.RelayConfig{APIKey: "test", SampleRate: 16000, DefaultCharacter: "sherlock"}
	dial := func(ctx context.Context) (relaycore.Upstream, error) { return nil, context.DeadlineExceeded }

	return NewRouter(Deps{
		Characters:      store,
		Relay:           relayHandler.New(cfg, store, respond.NewSelector(), registry, m, dial),
		Registry:        registry,
		MetricsRegistry: promReg,
	})
}

func TestRouterHealth(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status field = %q, want ok", body["status"])
	}
}

func TestRouterListsCharacters(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/characters", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sherlock") {
		t.Fatalf("body missing roster: %s", rec.Body.String())
	}
}

func TestRouterSessionsEmpty(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var snaps []relaycore.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snaps); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(snaps) != 0 {
		t.Fatalf("got %d sessions, want 0", len(snaps))
	}
}

func TestRouterMetricsExposed(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "relay_active_sessions") {
		t.Fatalf("metrics body missing gauge: %s", rec.Body.String())
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/characters", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}
