package analytichttp

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gestfac/gestfac/internal/analytics"
	"github.com/gestfac/gestfac/internal/analytics/export"
	"github.com/gestfac/gestfac/internal/platform/httpx"
	"github.com/gestfac/gestfac/internal/shared"
)

const requestTimeout = 5 * time.Second

// DashboardService defines the dashboard data contract used by the handler.
type DashboardService interface {
	GetDashboard(ctx context.Context, query analytics.DashboardQuery) (analytics.Dashboard, error)
}

// Handler coordinates HTTP requests for the financial dashboard.
type Handler struct {
	logger  *slog.Logger
	service DashboardService
	csvPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService) *Handler {
	h := &Handler{
		logger:  logger,
		service: service,
		now:     time.Now,
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) parseQuery(r *http.Request) (analytics.DashboardQuery, error) {
	values := r.URL.Query()

	periodType := analytics.PeriodType(values.Get("period_type"))
	switch periodType {
	case analytics.PeriodMonthly, analytics.PeriodQuarterly, analytics.PeriodYearly, analytics.PeriodCustom:
	case "":
		periodType = analytics.PeriodMonthly
	default:
		return analytics.DashboardQuery{}, shared.ErrInvalidPeriod
	}

	sel := analytics.PeriodSelection{
		Type:           periodType,
		ReferenceMonth: values.Get("reference_month"),
		CustomFrom:     values.Get("from"),
		CustomTo:       values.Get("to"),
	}
	if sel.ReferenceMonth != "" && !shared.ValidMonth(sel.ReferenceMonth) {
		return analytics.DashboardQuery{}, shared.ErrInvalidPeriod
	}
	if periodType == analytics.PeriodCustom {
		if !shared.ValidMonth(sel.CustomFrom) || !shared.ValidMonth(sel.CustomTo) {
			return analytics.DashboardQuery{}, shared.ErrInvalidPeriod
		}
	}

	query := analytics.DashboardQuery{
		Period:       sel,
		Units:        values["unit"],
		Clients:      values["client"],
		Statuses:     values["status"],
		Responsibles: values["responsible"],
		Search:       values.Get("q"),
	}
	for _, raw := range values["contract_id"] {
		id, err := uuid.Parse(raw)
		if err != nil {
			return analytics.DashboardQuery{}, err
		}
		query.ContractIDs = append(query.ContractIDs, id)
	}
	return query, nil
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dashboard, err := h.service.GetDashboard(ctx, query)
	if err != nil {
		h.logger.Error("load dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Query", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dashboard, err := h.service.GetDashboard(ctx, query)
	if err != nil {
		h.logger.Error("load dashboard for export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer h.csvPool.Put(buf)

	if err := export.WriteKPICSV(buf, dashboard.KPIs, dashboard.Months); err != nil {
		h.logger.Error("write kpi csv", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Export Failed", "")
		return
	}
	if err := export.WriteContractResultsCSV(buf, dashboard.Contracts); err != nil {
		h.logger.Error("write contracts csv", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Export Failed", "")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="dashboard.csv"`)
	_, _ = w.Write(buf.Bytes())
}
