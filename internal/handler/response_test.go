package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/efreitasn/terminalsim/internal/view"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", got)
	}
	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	return resp
}

func TestErrorWriters(t *testing.T) {
	tests := []struct {
		name        string
		write       func(w http.ResponseWriter)
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "validation",
			write:       func(w http.ResponseWriter) { writeValidation(w, "qty must be positive") },
			wantStatus:  http.StatusBadRequest,
			wantCode:    codeValidationError,
			wantMessage: "qty must be positive",
		},
		{
			name:        "internal hides the cause",
			write:       writeInternal,
			wantStatus:  http.StatusInternalServerError,
			wantCode:    codeInternalError,
			wantMessage: "An unexpected error occurred",
		},
		{
			name: "unknown symbol",
			write: func(w http.ResponseWriter) {
				WriteError(w, http.StatusNotFound, "symbol_not_watched", "TSLA is not on the watchlist")
			},
			wantStatus:  http.StatusNotFound,
			wantCode:    "symbol_not_watched",
			wantMessage: "TSLA is not on the watchlist",
		},
		{
			name: "terminal order",
			write: func(w http.ResponseWriter) {
				WriteError(w, http.StatusConflict, "illegal_status_transition", "illegal_status_transition")
			},
			wantStatus:  http.StatusConflict,
			wantCode:    "illegal_status_transition",
			wantMessage: "illegal_status_transition",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			resp := decodeError(t, w)
			if resp.Error != tt.wantCode || resp.Message != tt.wantMessage {
				t.Errorf("body = %+v, want %s/%q", resp, tt.wantCode, tt.wantMessage)
			}
		})
	}
}

func TestWriteJSON_OrderView(t *testing.T) {
	limit := 185.0
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, view.Order{
		ID:          "ord-1",
		Symbol:      "AAPL",
		Qty:         10,
		LimitPrice:  &limit,
		EstNotional: 1850,
		RiskFlag:    "OK",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	var raw map[string]any
	if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if raw["limit_price"] != 185.0 || raw["est_notional"] != 1850.0 {
		t.Errorf("prices = %v/%v", raw["limit_price"], raw["est_notional"])
	}
	if v, ok := raw["avg_fill_price"]; !ok || v != nil {
		t.Errorf("avg_fill_price = %v (present %v), want null", v, ok)
	}
}

func TestWriteList(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{"nil", nil, `{"items":[],"count":0}`},
		{"empty", []string{}, `{"items":[],"count":0}`},
		{"symbols", []string{"AAPL", "MSFT"}, `{"items":["AAPL","MSFT"],"count":2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeList(w, tt.items)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", w.Code)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.want {
				t.Errorf("body = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantErr     string
	}{
		{"edit body", "application/json", `{"qty":5,"limit_price":184.5}`, ""},
		{"charset suffix", "application/json; charset=utf-8", `{"qty":5}`, ""},
		{"missing content type", "", `{"qty":5}`, "Content-Type"},
		{"plain text", "text/plain", `{"qty":5}`, "Content-Type"},
		{"malformed", "application/json", `{qty:5}`, "valid JSON"},
		{"unknown field", "application/json", `{"qty":5,"side":"BUY"}`, "valid JSON"},
		{"empty", "application/json", "", "valid JSON"},
		{"two objects", "application/json", `{"qty":5}{"qty":6}`, "single JSON object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPatch, "/orders/ord-1", strings.NewReader(tt.body))
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}

			var req updateOrderRequest
			err := ParseJSON(r, &req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if req.Qty == nil || *req.Qty != 5 {
					t.Errorf("qty = %v, want 5", req.Qty)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
