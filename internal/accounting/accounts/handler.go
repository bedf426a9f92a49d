package accounts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
	"github.com/dentex-erp/dentex-erp/internal/platform/httpx"
)

// Handler exposes the chart of accounts over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MountRoutes registers account routes under a company scope.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/companies/{companyID}/accounts", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Post("/defaults", h.provisionDefaults)
	})
}

func companyParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "companyID"), 10, 64)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID, err := companyParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company id")
		return
	}
	list, err := h.service.List(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	companyID, err := companyParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company id")
		return
	}
	var seed Seed
	if err := httpx.DecodeJSON(r, &seed); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	account, err := h.service.Create(r.Context(), companyID, seed)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) provisionDefaults(w http.ResponseWriter, r *http.Request) {
	companyID, err := companyParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid company id")
		return
	}
	if err := h.service.EnsureDefaultChart(r.Context(), companyID); err != nil {
		if errors.Is(err, shared.ErrAccountNotFound) {
			httpx.Problem(w, http.StatusUnprocessableEntity, "Configuration Error", err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
