package contracts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gestfac/gestfac/internal/platform/httpx"
	"github.com/gestfac/gestfac/internal/shared"
)

// Handler exposes contract CRUD over JSON.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	onWrite  func()
}

// NewHandler constructs the contracts HTTP handler. onWrite runs after every
// successful mutation (used to invalidate dashboard caches); nil is allowed.
func NewHandler(logger *slog.Logger, service *Service, onWrite func()) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), onWrite: onWrite}
}

// MountRoutes registers contract endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filters := shared.ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  r.URL.Query().Get("search"),
		SortBy:  r.URL.Query().Get("sort"),
		SortDir: r.URL.Query().Get("dir"),
	}

	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list contracts failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"data":       items,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "contract id must be a UUID")
		return
	}
	contract, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, contract)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	contract, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("create contract failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.notifyWrite()
	httpx.JSON(w, http.StatusCreated, contract)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "contract id must be a UUID")
		return
	}
	var input Input
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	contract, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.logger.Error("update contract failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	h.notifyWrite()
	httpx.JSON(w, http.StatusOK, contract)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "contract id must be a UUID")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
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
