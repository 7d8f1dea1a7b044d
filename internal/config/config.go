package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/personifai/backend/internal/transcribe"
)

// Config aggregates every setting the service reads from the environment.
type Config struct {
	Server ServerConfig
	Relay  RelayConfig
	AI     AIConfig
	Store  StoreConfig
}

// Load builds the full configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	relay, err := loadRelayConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		Relay:  relay,
		AI:     ai,
		Store:  loadStoreConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// RelayConfig describes the transcription upstream and session defaults.
type RelayConfig struct {
	APIKey              string
	URL                 string
	SampleRate          int
	FormatTurns         bool
	EndOfTurnConfidence *float64
	EndOfTurnSilenceMs  *int
	DialTimeout         time.Duration
	DefaultCharacter    string
	AudioChunking       bool
}

const defaultUpstreamURL = "wss://streaming.assemblyai.com/v3/ws"

func loadRelayConfig() (RelayConfig, error) {
	apiKey := strings.TrimSpace(os.Getenv("ASSEMBLYAI_API_KEY"))
	if apiKey == "" {
		return RelayConfig{}, fmt.Errorf("ASSEMBLYAI_API_KEY is required")
	}

	sampleRate := 16000
	if override, err := parseOptionalIntEnv("RELAY_SAMPLE_RATE"); err != nil {
		return RelayConfig{}, err
	} else if override != nil {
		if *override <= 0 {
			return RelayConfig{}, fmt.Errorf("invalid RELAY_SAMPLE_RATE value: %d", *override)
		}
		sampleRate = *override
	}

	formatTurns, err := parseBoolEnv("RELAY_FORMAT_TURNS", true)
	if err != nil {
		return RelayConfig{}, err
	}

	confidence, err := parseOptionalFloatEnv("RELAY_END_OF_TURN_CONFIDENCE")
	if err != nil {
		return RelayConfig{}, err
	}

	silenceMs, err := parseOptionalIntEnv("RELAY_END_OF_TURN_SILENCE_MS")
	if err != nil {
		return RelayConfig{}, err
	}

	dialTimeout := 10 * time.Second
	if override, err := parseOptionalIntEnv("RELAY_UPSTREAM_DIAL_TIMEOUT_S"); err != nil {
		return RelayConfig{}, err
	} else if override != nil {
		if *override <= 0 {
			return RelayConfig{}, fmt.Errorf("invalid RELAY_UPSTREAM_DIAL_TIMEOUT_S value: %d", *override)
		}
		dialTimeout = time.Duration(*override) * time.Second
	}

	chunking, err := parseBoolEnv("RELAY_AUDIO_CHUNKING", false)
	if err != nil {
		return RelayConfig{}, err
	}

	return RelayConfig{
		APIKey:              apiKey,
		URL:                 getEnvOrDefault("ASSEMBLYAI_URL", defaultUpstreamURL),
		SampleRate:          sampleRate,
		FormatTurns:         formatTurns,
		EndOfTurnConfidence: confidence,
		EndOfTurnSilenceMs:  silenceMs,
		DialTimeout:         dialTimeout,
		DefaultCharacter:    getEnvOrDefault("RELAY_DEFAULT_CHARACTER", "sherlock"),
		AudioChunking:       chunking,
	}, nil
}

// Transcribe translates the relay settings into an upstream dial config.
func (c RelayConfig) Transcribe() transcribe.Config {
	cfg := transcribe.Config{
		URL:         c.URL,
		APIKey:      c.APIKey,
		SampleRate:  c.SampleRate,
		FormatTurns: c.FormatTurns,
		DialTimeout: c.DialTimeout,
	}
	if c.EndOfTurnConfidence != nil {
		cfg.EndOfTurnConfidence = *c.EndOfTurnConfidence
	}
	if c.EndOfTurnSilenceMs != nil {
		cfg.EndOfTurnSilenceMs = *c.EndOfTurnSilenceMs
	}
	return cfg
}

// StoreConfig describes the JSONBin personification store.
type StoreConfig struct {
	BinID     string
	MasterKey string
	BaseURL   string
}

// Enabled reports whether the bin credentials were provided.
func (c StoreConfig) Enabled() bool {
	return c.BinID != "" && c.MasterKey != ""
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		BinID:     strings.TrimSpace(os.Getenv("JSONBIN_BIN_ID")),
		MasterKey: strings.TrimSpace(os.Getenv("JSONBIN_MASTER_KEY")),
		BaseURL:   getEnvOrDefault("JSONBIN_BASE_URL", "https://api.jsonbin.io/v3"),
	}
}

// AIConfig describes the optional chat model used for generated replies.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials were provided.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials missing: provide ARK_API_KEY or ARK_ACCESS_KEY/ARK_SECRET_KEY plus ARK_MODEL")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
