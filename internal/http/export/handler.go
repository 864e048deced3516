package export

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/ecolefin/internal/export"
	reporthttp "github.com/MrJamesThe3rd/ecolefin/internal/http/report"
	"github.com/MrJamesThe3rd/ecolefin/internal/http/respond"
	"github.com/MrJamesThe3rd/ecolefin/internal/report"
)

type Handler struct {
	engine report.Aggregator
	svc    *export.Service
}

func NewHandler(engine report.Aggregator, svc *export.Service) *Handler {
	return &Handler{engine: engine, svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
}

// download accepts the same parameters as the report endpoint and returns
// the report as an xlsx workbook.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	res, err := h.engine.Aggregate(r.Context(), reporthttp.QueryFromRequest(r))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	f, err := h.svc.Workbook(res)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.svc.Filename(res)))

	if err := f.Write(w); err != nil {
		slog.Error("failed to write workbook", "error", err)
	}
}
