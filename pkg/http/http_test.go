package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "lodging/pkg/errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperrors.NotFoundWithID("Booking", "b1"), http.StatusNotFound, apperrors.CodeNotFound},
		{"insufficient availability", apperrors.InsufficientAvailability("2024-07-01", 0, 1), http.StatusConflict, apperrors.CodeInsufficientAvailability},
		{"forbidden", apperrors.Forbidden("nope"), http.StatusForbidden, apperrors.CodeForbidden},
		{"plain error is hidden", errors.New("mongo: connection refused"), http.StatusInternalServerError, apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", body.Code, tt.wantCode)
			}
			if strings.Contains(rec.Body.String(), "connection refused") {
				t.Error("internal error details leaked to client")
			}
		})
	}
}

func TestWritePaginated(t *testing.T) {
	rec := httptest.NewRecorder()
	WritePaginated(rec, []string{"a"}, 7, 10, 5)

	var body PaginatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.TotalCount != 7 || body.Limit != 10 || body.Offset != 5 {
		t.Errorf("unexpected pagination %+v", body)
	}
}

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{query: "", wantLimit: 10, wantOffset: 0},
		{query: "limit=25&offset=50", wantLimit: 25, wantOffset: 50},
		{query: "limit=1000", wantLimit: 100, wantOffset: 0},
		{query: "offset=-4", wantLimit: 10, wantOffset: 0},
		{query: "limit=abc", wantErr: true},
		{query: "offset=1.5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings?"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(req)
			if tt.wantErr {
				if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
					t.Errorf("error = %v, want invalid input", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Rooms int `json:"rooms"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"rooms":2}`},
		{name: "empty", body: ``, wantErr: true},
		{name: "unknown field", body: `{"rooms":2,"price":10}`, wantErr: true},
		{name: "trailing object", body: `{"rooms":2}{"rooms":3}`, wantErr: true},
		{name: "wrong type", body: `{"rooms":"two"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(req, &p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && p.Rooms != 2 {
				t.Errorf("Rooms = %d, want 2", p.Rooms)
			}
		})
	}
}
