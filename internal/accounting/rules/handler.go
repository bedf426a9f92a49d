package rules

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
	"github.com/dentex-erp/dentex-erp/internal/platform/httpx"
)

// Handler exposes posting-rule configuration over HTTP.
type Handler struct {
	repo     Repository
	validate *validator.Validate
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo, validate: validator.New()}
}

// MountRoutes registers rule routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/companies/{companyID}/rules/{docType}", h.get)
	r.Put("/rules", h.upsert)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company id")
		return
	}
	docType := shared.DocType(chi.URLParam(r, "docType"))
	if !docType.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown document type")
		return
	}
	rule, err := h.repo.Get(r.Context(), companyID, docType)
	if err != nil {
		if errors.Is(err, shared.ErrRuleNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rule)
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	var in UpsertInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if err := h.validate.Struct(in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if !in.DocType.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown document type")
		return
	}
	rule, err := h.repo.Upsert(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rule)
}
