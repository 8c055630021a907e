package finance

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gestfac/gestfac/internal/platform/httpx"
)

// Handler exposes financial entries and indirect costs over JSON.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	onWrite  func()
}

// NewHandler constructs the finance HTTP handler.
func NewHandler(logger *slog.Logger, service *Service, onWrite func()) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), onWrite: onWrite}
}

// MountEntryRoutes registers financial entry endpoints.
func (h *Handler) MountEntryRoutes(r chi.Router) {
	r.Get("/", h.ListEntries)
	r.Post("/", h.CreateEntry)
	r.Get("/{id}", h.ShowEntry)
	r.Put("/{id}", h.UpdateEntry)
	r.Delete("/{id}", h.DeleteEntry)
}

// MountIndirectCostRoutes registers indirect cost endpoints.
func (h *Handler) MountIndirectCostRoutes(r chi.Router) {
	r.Get("/", h.ListIndirectCosts)
	r.Post("/", h.CreateIndirectCost)
	r.Put("/{id}", h.UpdateIndirectCost)
	r.Delete("/{id}", h.DeleteIndirectCost)
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	var filters EntryFilters
	if raw := r.URL.Query().Get("contract_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "contract_id must be a UUID")
			return
		}
		filters.ContractID = &id
	}
	if months, ok := r.URL.Query()["reference_month"]; ok {
		filters.Months = months
	}

	entries, err := h.service.ListEntries(r.Context(), filters)
	if err != nil {
		h.logger.Error("list entries failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": entries})
}

func (h *Handler) ShowEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "entry id must be a UUID")
		return
	}
	entry, err := h.service.GetEntry(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var input EntryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.CreateEntry(r.Context(), input)
	if err != nil {
		h.logger.Error("create entry failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.notifyWrite()
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "entry id must be a UUID")
		return
	}
	var input EntryInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	entry, err := h.service.UpdateEntry(r.Context(), id, input)
	if err != nil {
		h.logger.Error("update entry failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	h.notifyWrite()
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "entry id must be a UUID")
		return
	}
	if err := h.service.DeleteEntry(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.notifyWrite()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListIndirectCosts(w http.ResponseWriter, r *http.Request) {
	costs, err := h.service.ListIndirectCosts(r.Context())
	if err != nil {
		h.logger.Error("list indirect costs failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": costs})
}

func (h *Handler) CreateIndirectCost(w http.ResponseWriter, r *http.Request) {
	var input IndirectCostInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	cost, err := h.service.CreateIndirectCost(r.Context(), input)
	if err != nil {
		h.logger.Error("create indirect cost failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.notifyWrite()
	httpx.JSON(w, http.StatusCreated, cost)
}

func (h *Handler) UpdateIndirectCost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "indirect cost id must be a UUID")
		return
	}
	var input IndirectCostInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	cost, err := h.service.UpdateIndirectCost(r.Context(), id, input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.notifyWrite()
	httpx.JSON(w, http.StatusOK, cost)
}

func (h *Handler) DeleteIndirectCost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "indirect cost id must be a UUID")
		return
	}
	if err := h.service.DeleteIndirectCost(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.notifyWrite()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) notifyWrite() {
	if h.onWrite != nil {
		h.onWrite()
	}
}
