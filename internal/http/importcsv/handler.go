package importcsv

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ecolefin/internal/encoding"
	"github.com/MrJamesThe3rd/ecolefin/internal/http/respond"
	txhttp "github.com/MrJamesThe3rd/ecolefin/internal/http/transaction"
	"github.com/MrJamesThe3rd/ecolefin/internal/importer"
)

const maxUploadSize = 10 << 20

type Handler struct {
	svc *importer.Service
}

func NewHandler(svc *importer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type skipResponse struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type importResponse struct {
	BatchID      uuid.UUID         `json:"batch_id"`
	Profile      string            `json:"profile"`
	Charset      encoding.Charset  `json:"charset"`
	DryRun       bool              `json:"dry_run"`
	Ready        int               `json:"ready"`
	Imported     int               `json:"imported"`
	Skipped      []skipResponse    `json:"skipped"`
	Transactions []txhttp.Response `json:"transactions"`
}

// importCSV reads the multipart "file" field. With dry_run=true the rows are
// parsed and resolved but nothing is written.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Error(w, r, respond.BadRequest("failed to parse form: "+err.Error()))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, respond.BadRequest("file field is required"))
		return
	}
	defer file.Close()

	dryRun, _ := strconv.ParseBool(r.FormValue("dry_run"))

	run := h.svc.Import
	if dryRun {
		run = h.svc.Prepare
	}

	batch, err := run(r.Context(), file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := importResponse{
		BatchID:      batch.ID,
		Profile:      batch.Profile,
		Charset:      batch.Charset,
		DryRun:       dryRun,
		Ready:        len(batch.Params),
		Imported:     len(batch.Created),
		Skipped:      make([]skipResponse, len(batch.Skipped)),
		Transactions: txhttp.ToResponseList(batch.Created),
	}

	for i, s := range batch.Skipped {
		resp.Skipped[i] = skipResponse{Line: s.Line, Reason: s.Reason}
	}

	status := http.StatusCreated
	if dryRun {
		status = http.StatusOK
	}

	respond.JSON(w, status, resp)
}
