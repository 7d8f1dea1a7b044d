package character

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/personifai/backend/internal/model/character"
	"github.com/personifai/backend/pkg/utils"
)

// Handler exposes the built-in character roster.
type Handler struct {
	characters character.Store
}

func New(characters character.Store) *Handler {
	return &Handler{characters: characters}
}

// RegisterRoutes mounts the character endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/characters", h.handleListCharacters)
	r.Get("/characters/{characterID}", h.handleGetCharacter)
}

// characterView is the wire shape: response tables stay server-side.
type characterView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Tone      string `json:"tone"`
	VoiceID   string `json:"voiceId,omitempty"`
	Specialty string `json:"specialty"`
}

func viewOf(c character.Character) characterView {
	return characterView{
		ID:        string(c.ID),
		Name:      c.Name,
		Title:     c.Title,
		Tone:      c.Tone,
		VoiceID:   c.VoiceID,
		Specialty: string(c.Specialty),
	}
}

func (h *Handler) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	items := h.characters.List()
	views := make([]characterView, 0, len(items))
	for _, c := range items {
		views = append(views, viewOf(c))
	}
	utils.RespondJSON(w, http.StatusOK, views)
}

func (h *Handler) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "characterID")
	id, ok := character.ParseID(raw)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "character not found")
		return
	}
	c, found := h.characters.FindByID(id)
	if !found {
		utils.RespondError(w, http.StatusNotFound, "character not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, viewOf(c))
}
