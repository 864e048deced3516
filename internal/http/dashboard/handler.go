package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/ecolefin/internal/dashboard"
	"github.com/MrJamesThe3rd/ecolefin/internal/http/report"
	"github.com/MrJamesThe3rd/ecolefin/internal/http/respond"
	"github.com/MrJamesThe3rd/ecolefin/internal/period"
)

type Handler struct {
	composer *dashboard.Composer
}

func NewHandler(composer *dashboard.Composer) *Handler {
	return &Handler{composer: composer}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
}

type periodTotalsResponse struct {
	Period string `json:"period"`
	Label  string `json:"label"`
	report.Totals
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	totals, err := h.composer.Compose(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	// A list keeps the periods shortest first.
	resp := make([]periodTotalsResponse, 0, len(totals))
	for _, kind := range period.Kinds() {
		resp = append(resp, periodTotalsResponse{
			Period: string(kind),
			Label:  kind.Label(),
			Totals: report.ToTotals(totals[kind]),
		})
	}

	respond.JSON(w, http.StatusOK, resp)
}
