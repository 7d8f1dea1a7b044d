package personification

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/personifai/backend/internal/service/personification"
	"github.com/personifai/backend/pkg/utils"
)

// Store reads and writes the user-defined character document.
// *personification.Client satisfies it.
type Store interface {
	Fetch(ctx context.Context) (personification.Document, error)
	SetChoice(ctx context.Context, choice string) (personification.Document, error)
}

// Handler proxies the remote personification store so browser clients
// never see the bin credentials.
type Handler struct {
	store Store
}

func New(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the personification endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personifications", h.handleList)
	r.Post("/personifications/active", h.handleSetActive)
}

type listResponse struct {
	ActiveChoice     *string                            `json:"activeChoice"`
	Personifications []personification.Personification `json:"personifications"`
}

// nullableChoice maps the document's empty-string sentinel back to the
// JSON null the clients expect.
func nullableChoice(choice string) *string {
	if choice == "" {
		return nil
	}
	return &choice
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Fetch(r.Context())
	if err != nil {
		log.Printf("[personification] fetch failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "personification store unavailable")
		return
	}
	utils.RespondJSON(w, http.StatusOK, listResponse{
		ActiveChoice:     nullableChoice(doc.Choice),
		Personifications: doc.Personifications,
	})
}

type setActiveRequest struct {
	// A null ID clears the active choice.
	PersonificationID *string `json:"personificationId"`
}

func (h *Handler) handleSetActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	choice := ""
	if req.PersonificationID != nil {
		choice = strings.TrimSpace(*req.PersonificationID)
	}

	doc, err := h.store.SetChoice(r.Context(), choice)
	if err != nil {
		log.Printf("[personification] set choice failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "personification store unavailable")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]*string{"activeChoice": nullableChoice(doc.Choice)})
}
