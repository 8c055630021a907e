package receivables

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gestfac/gestfac/internal/platform/httpx"
)

// Handler exposes receivables over JSON plus the CSV report.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	onWrite  func()
	now      func() time.Time
}

// NewHandler constructs the receivables HTTP handler.
func NewHandler(logger *slog.Logger, service *Service, onWrite func()) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		onWrite:  onWrite,
		now:      time.Now,
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// MountRoutes registers receivable endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/aging", h.Aging)
	r.Get("/export.csv", h.ExportCSV)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) parseQuery(r *http.Request) (Query, error) {
	var q Query
	values := r.URL.Query()
	if raw := values.Get("contract_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Query{}, err
		}
		q.ContractID = &id
	}
	if months, ok := values["competence_month"]; ok {
		q.Months = months
	}
	if raw := values.Get("due_from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Query{}, err
		}
		q.DueFrom = &t
	}
	if raw := values.Get("due_to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Query{}, err
		}
		q.DueTo = &t
	}
	q.Status = values.Get("status")
	q.Search = values.Get("q")
	q.AsOf = h.now()
	return q, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}
	records, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("list receivables failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": records})
}

func (h *Handler) Aging(w http.ResponseWriter, r *http.Request) {
	buckets, totalOverdue, err := h.service.Aging(r.Context(), h.now())
	if err != nil {
		h.logger.Error("receivables aging failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"buckets":       buckets,
		"total_overdue": totalOverdue,
	})
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}
	records, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("export receivables failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="contas_a_receber.csv"`)
	if err := WriteCSV(w, records, q.AsOf); err != nil {
		h.logger.Error("write receivables csv", slog.Any("error", err))
	}
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "receivable id must be a UUID")
		return
	}
	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
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
	rec, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.logger.Error("create receivable failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.notifyWrite()
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "receivable id must be a UUID")
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
	rec, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.logger.Error("update receivable failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	h.notifyWrite()
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "receivable id must be a UUID")
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
