package receivables

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, repo *memoryRepo) (chi.Router, *int) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bumps := 0
	handler := NewHandler(logger, NewService(repo), func() { bumps++ })
	handler.WithNow(func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	})
	router := chi.NewRouter()
	router.Route("/api/receivables", handler.MountRoutes)
	return router, &bumps
}

func TestHandlerUpdateValidatesInput(t *testing.T) {
	repo := newMemoryRepo()
	contractID := uuid.New()
	rec, err := repo.Create(context.Background(), Input{
		ContractID:     contractID,
		DocumentNumber: "NF-1001",
		GrossAmount:    1000,
	})
	require.NoError(t, err)

	router, bumps := newTestRouter(t, repo)

	// A body missing the required document number must be rejected before
	// the service runs.
	body := strings.NewReader(`{"contract_id":"` + contractID.String() + `","gross_amount":500}`)
	req := httptest.NewRequest(http.MethodPut, "/api/receivables/"+rec.ID.String(), body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "Validation Failed")
	require.Zero(t, *bumps)

	stored, err := repo.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Equal(t, 1000.0, stored.NetAmount)
}

func TestHandlerUpdatePersistsValidInput(t *testing.T) {
	repo := newMemoryRepo()
	contractID := uuid.New()
	rec, err := repo.Create(context.Background(), Input{
		ContractID:     contractID,
		DocumentNumber: "NF-1001",
		GrossAmount:    1000,
	})
	require.NoError(t, err)

	router, bumps := newTestRouter(t, repo)

	body := strings.NewReader(`{"contract_id":"` + contractID.String() + `","document_number":"NF-1001","gross_amount":1000,"paid_amount":1000,"status":"pago"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/receivables/"+rec.ID.String(), body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, *bumps)

	stored, err := repo.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Equal(t, StatusLiquidated, stored.Status)
	require.Equal(t, 0.0, stored.OpenAmount)
}
