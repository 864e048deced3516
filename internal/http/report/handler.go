package report

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ecolefin/internal/http/respond"
	txhttp "github.com/MrJamesThe3rd/ecolefin/internal/http/transaction"
	"github.com/MrJamesThe3rd/ecolefin/internal/report"
)

type Handler struct {
	engine report.Aggregator
}

func NewHandler(engine report.Aggregator) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.get)
}

// QueryFromRequest reads the report selection from URL parameters. Filter
// values are parsed leniently; the period is validated by the engine.
func QueryFromRequest(r *http.Request) report.Query {
	q := r.URL.Query()

	return report.NewQuery(
		q.Get("period"),
		q.Get("reference_date"),
		q.Get("start_date"),
		q.Get("end_date"),
		q.Get("category_id"),
		q.Get("type"),
	)
}

// Totals is the JSON form of report totals.
type Totals struct {
	Entree  decimal.Decimal `json:"entree"`
	Sortie  decimal.Decimal `json:"sortie"`
	Balance decimal.Decimal `json:"balance"`
}

func ToTotals(t report.Totals) Totals {
	return Totals{Entree: t.Entree, Sortie: t.Sortie, Balance: t.Balance}
}

type categoryTotalsResponse struct {
	Category string `json:"category"`
	Totals
}

type rangeResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type reportResponse struct {
	Period            string                   `json:"period"`
	Range             rangeResponse            `json:"range"`
	Transactions      []txhttp.Response        `json:"transactions"`
	Totals            Totals                   `json:"totals"`
	Balance           decimal.Decimal          `json:"balance"`
	CategoryBreakdown []categoryTotalsResponse `json:"category_breakdown"`
	Type              report.TypeFilter        `json:"type"`
	CategoryID        *int64                   `json:"category_id"`
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	q := QueryFromRequest(r)

	res, err := h.engine.Aggregate(r.Context(), q)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	breakdown := make([]categoryTotalsResponse, len(res.CategoryBreakdown))
	for i, c := range res.CategoryBreakdown {
		breakdown[i] = categoryTotalsResponse{Category: c.Category, Totals: ToTotals(c.Totals)}
	}

	respond.JSON(w, http.StatusOK, reportResponse{
		Period:            string(q.Period.Period),
		Range:             rangeResponse{Start: res.Range.StartISO(), End: res.Range.EndISO()},
		Transactions:      txhttp.ToResponseList(res.Transactions),
		Totals:            ToTotals(res.Totals),
		Balance:           res.Balance,
		CategoryBreakdown: breakdown,
		Type:              res.Type,
		CategoryID:        res.CategoryID,
	})
}
