package importcsv

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/ilara/internal/encoding"
	"github.com/MrJamesThe3rd/ilara/internal/http/respond"
	"github.com/MrJamesThe3rd/ilara/internal/importer"
	"github.com/MrJamesThe3rd/ilara/internal/importer/legacy"
)

const maxUpload = 10 << 20

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type skippedRow struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type importResponse struct {
	Kind     importer.Kind    `json:"kind"`
	Charset  encoding.Charset `json:"charset"`
	Imported int              `json:"imported"`
	Created  int              `json:"created,omitempty"`
	Merged   int              `json:"merged,omitempty"`
	Skipped  []skippedRow     `json:"skipped"`
}

// importCSV takes a multipart form with "kind" (inventory or finance) and
// "file" (the legacy export).
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		respond.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	kind, err := importer.ParseKind(r.FormValue("kind"))
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	res, err := h.importSvc.Import(r.Context(), kind, file)
	if errors.Is(err, legacy.ErrMissingColumns) {
		respond.BadRequest(w, err.Error())
		return
	}

	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := importResponse{
		Kind:     res.Kind,
		Charset:  res.Charset,
		Imported: res.Imported,
		Created:  res.Created,
		Merged:   res.Merged,
		Skipped:  make([]skippedRow, 0, len(res.Skipped)),
	}

	for _, s := range res.Skipped {
		resp.Skipped = append(resp.Skipped, skippedRow{Line: s.Line, Error: s.Err.Error()})
	}

	respond.JSON(w, http.StatusCreated, resp)
}
