package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	characterHandler "github.com/personifai/backend/internal/handler/character"
	personificationHandler "github.com/personifai/backend/internal/handler/personification"
	relayHandler "github.com/personifai/backend/internal/handler/relay"
	middlewarePkg "github.com/personifai/backend/internal/middleware"
	"github.com/personifai/backend/internal/model/character"
	relaycore "github.com/personifai/backend/internal/relay"
	"github.com/personifai/backend/pkg/utils"
)

// Deps collects everything the router mounts. Personifications is nil
// when the remote store is not configured.
type Deps struct {
	Characters       character.Store
	Relay            *relayHandler.Handler
	Personifications *personificationHandler.Handler
	Registry         *relaycore.Registry
	MetricsRegistry  *prometheus.Registry
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handleHealth)

		characterHandler.New(deps.Characters).RegisterRoutes(api)

		if deps.Personifications != nil {
			deps.Personifications.RegisterRoutes(api)
		}

		api.Get("/sessions", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, deps.Registry.Snapshots())
		})
	})

	deps.Relay.RegisterRoutes(r)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsRegistry, promhttp.HandlerOpts{}))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
