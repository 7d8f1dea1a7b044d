package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ASSEMBLYAI_API_KEY", "test-key")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Relay.URL != defaultUpstreamURL {
		t.Fatalf("url = %q", cfg.Relay.URL)
	}
	if cfg.Relay.SampleRate != 16000 {
		t.Fatalf("sample rate = %d, want 16000", cfg.Relay.SampleRate)
	}
	if !cfg.Relay.FormatTurns {
		t.Fatal("format turns should default to true")
	}
	if cfg.Relay.DialTimeout != 10*time.Second {
		t.Fatalf("dial timeout = %v, want 10s", cfg.Relay.DialTimeout)
	}
	if cfg.Relay.DefaultCharacter != "sherlock" {
		t.Fatalf("default character = %q", cfg.Relay.DefaultCharacter)
	}
	if cfg.Relay.AudioChunking {
		t.Fatal("audio chunking should default to off")
	}
	if cfg.Store.Enabled() {
		t.Fatal("store should be disabled without credentials")
	}
	if cfg.AI.Enabled() {
		t.Fatal("ai should be disabled without credentials")
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("ASSEMBLYAI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("want error when ASSEMBLYAI_API_KEY is missing")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("RELAY_SAMPLE_RATE", "44100")
	t.Setenv("RELAY_FORMAT_TURNS", "false")
	t.Setenv("RELAY_END_OF_TURN_CONFIDENCE", "0.8")
	t.Setenv("RELAY_END_OF_TURN_SILENCE_MS", "400")
	t.Setenv("RELAY_UPSTREAM_DIAL_TIMEOUT_S", "5")
	t.Setenv("RELAY_DEFAULT_CHARACTER", "jarvis")
	t.Setenv("RELAY_AUDIO_CHUNKING", "true")
	t.Setenv("JSONBIN_BIN_ID", "bin-1")
	t.Setenv("JSONBIN_MASTER_KEY", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Relay.SampleRate != 44100 {
		t.Fatalf("sample rate = %d", cfg.Relay.SampleRate)
	}
	if cfg.Relay.FormatTurns {
		t.Fatal("format turns should be off")
	}
	if cfg.Relay.DialTimeout != 5*time.Second {
		t.Fatalf("dial timeout = %v", cfg.Relay.DialTimeout)
	}
	if cfg.Relay.DefaultCharacter != "jarvis" {
		t.Fatalf("default character = %q", cfg.Relay.DefaultCharacter)
	}
	if !cfg.Relay.AudioChunking {
		t.Fatal("audio chunking should be on")
	}
	if !cfg.Store.Enabled() {
		t.Fatal("store should be enabled")
	}

	tc := cfg.Relay.Transcribe()
	if tc.EndOfTurnConfidence != 0.8 {
		t.Fatalf("end of turn confidence = %v", tc.EndOfTurnConfidence)
	}
	if tc.EndOfTurnSilenceMs != 400 {
		t.Fatalf("end of turn silence = %d", tc.EndOfTurnSilenceMs)
	}
	if tc.APIKey != "test-key" {
		t.Fatalf("api key = %q", tc.APIKey)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"RELAY_SAMPLE_RATE":             "-1",
		"RELAY_FORMAT_TURNS":            "maybe",
		"RELAY_END_OF_TURN_CONFIDENCE":  "high",
		"RELAY_UPSTREAM_DIAL_TIMEOUT_S": "0",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("want error for %s=%q", key, val)
			}
		})
	}
}
