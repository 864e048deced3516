package transaction

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/ecolefin/internal/http/respond"
	"github.com/MrJamesThe3rd/ecolefin/internal/period"
	"github.com/MrJamesThe3rd/ecolefin/internal/transaction"
)

type Handler struct {
	svc         *transaction.Service
	resolver    *period.Resolver
	recentLimit int
}

// NewHandler creates a Handler. recentLimit is used when a list request
// carries no limit.
func NewHandler(svc *transaction.Service, resolver *period.Resolver, recentLimit int) *Handler {
	return &Handler{svc: svc, resolver: resolver, recentLimit: recentLimit}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	CategoryID int64           `json:"category_id" validate:"gt=0"`
	Amount     decimal.Decimal `json:"amount"`
	Kind       string          `json:"type" validate:"required"`
	Timestamp  string          `json:"timestamp"`
	Label      *string         `json:"label" validate:"omitempty,max=255"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	var ts time.Time

	if req.Timestamp != "" {
		t, err := h.resolver.ParseTime(req.Timestamp)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		ts = t
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Kind:       parseKind(req.Kind),
		Timestamp:  ts,
		Label:      req.Label,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, ToResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit := h.recentLimit

	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			respond.Error(w, r, respond.BadRequest("limit must be an integer"))
			return
		}

		limit = n
	}

	txs, err := h.svc.Recent(r.Context(), limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponseList(txs))
}

// parseKind normalises case; the service rejects anything invalid.
func parseKind(s string) transaction.Kind {
	kind, _ := transaction.ParseKind(s)
	return kind
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, respond.BadRequest("invalid id")
	}

	return id, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateTransactionRequest struct {
	CategoryID *int64           `json:"category_id,omitempty" validate:"omitempty,gt=0"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Kind       *string          `json:"type,omitempty"`
	Timestamp  *string          `json:"timestamp,omitempty"`
	Label      *string          `json:"label,omitempty" validate:"omitempty,max=255"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req updateTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	params := transaction.UpdateParams{
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Label:      req.Label,
	}

	if req.Kind != nil {
		params.Kind = new(parseKind(*req.Kind))
	}

	if req.Timestamp != nil {
		ts, err := h.resolver.ParseTime(*req.Timestamp)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		params.Timestamp = &ts
	}

	tx, err := h.svc.Update(r.Context(), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(tx))
}
