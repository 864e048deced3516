package matching

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/ecolefin/internal/http/respond"
	"github.com/MrJamesThe3rd/ecolefin/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	Label      string `json:"label"`
	CategoryID *int64 `json:"category_id"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	label := r.URL.Query().Get("label")
	if label == "" {
		respond.Error(w, r, respond.BadRequest("label query parameter is required"))
		return
	}

	id, err := h.svc.Suggest(r.Context(), label)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := suggestResponse{Label: label}
	if id > 0 {
		resp.CategoryID = &id
	}

	respond.JSON(w, http.StatusOK, resp)
}

type learnRequest struct {
	Pattern    string `json:"pattern" validate:"required,max=255"`
	CategoryID int64  `json:"category_id" validate:"gt=0"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Learn(r.Context(), req.Pattern, req.CategoryID); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
