package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/personifai/backend/internal/config"
	"github.com/personifai/backend/internal/handler"
	personificationHandler "github.com/personifai/backend/internal/handler/personification"
	relayHandler "github.com/personifai/backend/internal/handler/relay"
	"github.com/personifai/backend/internal/metrics"
	"github.com/personifai/backend/internal/model/character"
	relaycore "github.com/personifai/backend/internal/relay"
	"github.com/personifai/backend/internal/respond"
	"github.com/personifai/backend/internal/service/ai"
	"github.com/personifai/backend/internal/service/personification"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// The roster is fixed at compile time; a bad seed is a programming
	// error, so it stops the process before the listener opens.
	characterStore, err := character.NewMemoryStore(character.Seed())
	if err != nil {
		log.Fatalf("invalid character roster: %v", err)
	}
	if _, ok := character.ParseID(cfg.Relay.DefaultCharacter); !ok {
		log.Fatalf("unknown RELAY_DEFAULT_CHARACTER value: %q", cfg.Relay.DefaultCharacter)
	}

	promRegistry := prometheus.NewRegistry()
	m := metrics.New(promRegistry)
	registry := relaycore.NewRegistry(m)
	selector := respond.NewSelector()

	var responder relaycore.Responder = selector
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI, selector)
		if err != nil {
			log.Printf("warning: failed to initialize AI responder: %v", err)
			log.Println("continuing with canned responses only")
		} else {
			log.Println("AI responder initialized successfully")
			responder = aiService
		}
	} else {
		log.Println("ark credentials not configured, using canned responses")
	}

	var personifications *personificationHandler.Handler
	if cfg.Store.Enabled() {
		client := personification.NewClient(personification.Config{
			BaseURL:   cfg.Store.BaseURL,
			BinID:     cfg.Store.BinID,
			MasterKey: cfg.Store.MasterKey,
		})
		personifications = personificationHandler.New(client)
		log.Println("personification store configured")
	} else {
		log.Println("JSONBin credentials not configured, personification endpoints disabled")
	}

	relay := relayHandler.New(cfg.Relay, characterStore, responder, registry, m, nil)

	router := handler.NewRouter(handler.Deps{
		Characters:       characterStore,
		Relay:            relay,
		Personifications: personifications,
		Registry:         registry,
		MetricsRegistry:  promRegistry,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Personif.ai relay listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
