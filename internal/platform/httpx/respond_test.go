package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestProblemUsesProblemJSONMediaType(t *testing.T) {
	rr := httptest.NewRecorder()
	Problem(rr, http.StatusBadRequest, "Validation Failed", "month must be YYYY-MM")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("unexpected content type: %q", ct)
	}

	var detail ProblemDetail
	if err := json.NewDecoder(rr.Body).Decode(&detail); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if detail.Title != "Validation Failed" || detail.Status != http.StatusBadRequest {
		t.Fatalf("unexpected problem detail: %+v", detail)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok","nmae":"typo"}`))
	var p payload
	if err := DecodeJSON(req, &p); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok"}`))
	if err := DecodeJSON(req, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "ok" {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"duplicate", ErrDuplicate, http.StatusConflict},
		{"validation", ErrValidation, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondError(rr, tc.err)
			if rr.Code != tc.code {
				t.Fatalf("expected %d got %d", tc.code, rr.Code)
			}
		})
	}
}
