package journal

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
	"github.com/dentex-erp/dentex-erp/internal/platform/httpx"
)

// Rollbacker undoes a posted entry and resets its source document.
type Rollbacker interface {
	Rollback(ctx context.Context, entryID int64) (RollbackResult, error)
}

// Handler exposes the journal over HTTP.
type Handler struct {
	service    *Service
	rollbacker Rollbacker
}

func NewHandler(service *Service, rollbacker Rollbacker) *Handler {
	return &Handler{service: service, rollbacker: rollbacker}
}

// MountRoutes registers journal routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/companies/{companyID}/journal", h.list)
	r.Route("/journal", func(r chi.Router) {
		r.Post("/", h.post)
		r.Get("/{id}", h.get)
		r.Post("/{id}/rollback", h.rollback)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company id")
		return
	}
	entries, err := h.service.List(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	entry, err := h.service.GetWithLines(r.Context(), id)
	if err != nil {
		respondJournalError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

// post accepts a manual journal entry. The same validation and source
// uniqueness rules apply as for document-driven postings.
func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	var input EntryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	entry, err := h.service.Post(r.Context(), input)
	if err != nil {
		respondJournalError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) rollback(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	result, err := h.rollbacker.Rollback(r.Context(), id)
	if err != nil {
		respondJournalError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func respondJournalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrJournalNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrSourceConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrUnbalanced),
		errors.Is(err, shared.ErrTooFewLines),
		errors.Is(err, shared.ErrBothParties):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
