package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase/core"

	"installcost/costing"
	"installcost/services"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"calculation not found", fmt.Errorf("%w: abc", services.ErrCalculationNotFound), http.StatusNotFound},
		{"supplier not found", services.ErrSupplierNotFound, http.StatusNotFound},
		{"variant not found", fmt.Errorf("calculation x: %w", costing.ErrVariantNotFound), http.StatusNotFound},
		{"version conflict", services.ErrVersionConflict, http.StatusConflict},
		{"invalid transition", services.ErrInvalidTransition, http.StatusConflict},
		{"read only", services.ErrReadOnly, http.StatusConflict},
		{"no final snapshot", services.ErrNoFinalSnapshot, http.StatusConflict},
		{"variant cycle", costing.ErrVariantCycle, http.StatusConflict},
		{"bad request", badRequest("missing %s", "name"), http.StatusBadRequest},
		{"invalid item ref", costing.ErrInvalidItemRef, http.StatusBadRequest},
		{"invalid status", costing.ErrInvalidStatus, http.StatusBadRequest},
		{"invalid payment terms", fmt.Errorf("wrap: %w", costing.ErrInvalidPaymentTerms), http.StatusBadRequest},
		{"unknown", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorStatus(tt.err); got != tt.want {
				t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRespondError_JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/calculations/x", nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(nil, req, rec)

	if err := respondError(e, "test", services.ErrVersionConflict); err != nil {
		t.Fatalf("respondError returned error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["error"] != services.ErrVersionConflict.Error() {
		t.Errorf("error = %q", body["error"])
	}
}

func TestRespondError_HidesInternalErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/calculations/x", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(nil, req, rec)

	if err := respondError(e, "test", errors.New("sql: connection refused")); err != nil {
		t.Fatalf("respondError returned error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Error("expected HX-Reswap: none for HTMX errors")
	}
	if got := rec.Body.String(); got != "Something went wrong. Please try again." {
		t.Errorf("body = %q, internal error leaked", got)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		query   string
		want    costing.Mode
		wantErr bool
	}{
		{"", costing.ModeInitial, false},
		{"?mode=INITIAL", costing.ModeInitial, false},
		{"?mode=FINAL", costing.ModeFinal, false},
		{"?mode=final", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			e := &core.RequestEvent{}
			e.Request = httptest.NewRequest(http.MethodGet, "/x"+tt.query, nil)
			got, err := parseMode(e)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMode error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseMode = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		query   string
		want    costing.Currency
		wantErr bool
	}{
		{"", "", false},
		{"?currency=PLN", costing.CurrencyPLN, false},
		{"?currency=EUR", costing.CurrencyEUR, false},
		{"?currency=USD", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			e := &core.RequestEvent{}
			e.Request = httptest.NewRequest(http.MethodGet, "/x"+tt.query, nil)
			got, err := parseCurrency(e)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCurrency error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseCurrency = %q, want %q", got, tt.want)
			}
		})
	}
}
