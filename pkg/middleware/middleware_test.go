package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"lodging/pkg/auth"
	"lodging/pkg/logger"
	"lodging/pkg/model"

	"github.com/julienschmidt/httprouter"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
}

type mockTokenParser struct {
	parseFunc func(token string) (*auth.Principal, error)
}

func (m *mockTokenParser) Parse(token string) (*auth.Principal, error) {
	return m.parseFunc(token)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	parser := &mockTokenParser{parseFunc: func(token string) (*auth.Principal, error) {
		if token == "good" {
			return &auth.Principal{UserID: "u1", Role: model.RoleUser}, nil
		}
		return nil, auth.ErrInvalidToken
	}}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{name: "anonymous passes through", wantStatus: http.StatusOK},
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusOK, wantUser: "u1"},
		{name: "invalid token", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic Zm9vOmJhcg==", wantStatus: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer ", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if p, ok := auth.CurrentUser(r.Context()); ok {
					gotUser = p.UserID
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			Authenticate(parser, testLogger())(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotUser != tt.wantUser {
				t.Errorf("user = %q, want %q", gotUser, tt.wantUser)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handle := RequireRole(model.RoleAdmin)(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		principal  *auth.Principal
		wantStatus int
	}{
		{name: "anonymous", wantStatus: http.StatusUnauthorized},
		{name: "user", principal: &auth.Principal{UserID: "u1", Role: model.RoleUser}, wantStatus: http.StatusForbidden},
		{name: "admin", principal: &auth.Principal{UserID: "a1", Role: model.RoleAdmin}, wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/accommodations/id/x", nil)
			if tt.principal != nil {
				req = req.WithContext(auth.WithPrincipal(req.Context(), tt.principal))
			}
			rec := httptest.NewRecorder()
			handle(rec, req, nil)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour, testLogger())
	defer rl.Stop()
	handler := RateLimit(rl)(okHandler())

	send := func(remote string, p *auth.Principal) int {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/accommodations", nil)
		req.RemoteAddr = remote
		if p != nil {
			req = req.WithContext(auth.WithPrincipal(req.Context(), p))
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1:5000", nil); code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, code)
		}
	}
	if code := send("10.0.0.1:5001", nil); code != http.StatusTooManyRequests {
		t.Errorf("third request from same IP status = %d, want 429", code)
	}
	if code := send("10.0.0.2:5000", nil); code != http.StatusOK {
		t.Errorf("other IP status = %d, want 200", code)
	}

	user := &auth.Principal{UserID: "u1", Role: model.RoleUser}
	if code := send("10.0.0.1:5002", user); code != http.StatusOK {
		t.Errorf("signed-in user behind limited IP status = %d, want 200", code)
	}
}

func TestIdempotency(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls atomic.Int32
	handler := Idempotency(store, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"b1"}}`))
	}))

	send := func(userID, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(`{}`))
		req.Header.Set(IdempotencyHeader, key)
		req = req.WithContext(auth.WithPrincipal(req.Context(), &auth.Principal{UserID: userID, Role: model.RoleUser}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := send("u1", "k1")
	second := send("u1", "k1")
	if calls.Load() != 1 {
		t.Fatalf("handler calls = %d, want 1", calls.Load())
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Errorf("replay = %d %s, want %d %s", second.Code, second.Body, first.Code, first.Body)
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Error("replayed response should be marked")
	}

	send("u2", "k1")
	if calls.Load() != 2 {
		t.Errorf("same key from another user must not replay, calls = %d", calls.Load())
	}
}

func TestIdempotencyDoesNotCacheFailures(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Hour)
	defer store.Stop()

	var calls atomic.Int32
	handler := Idempotency(store, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set(IdempotencyHeader, "k")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	if calls.Load() != 2 {
		t.Errorf("handler calls = %d, want 2", calls.Load())
	}
}

func TestInMemoryIdempotencyStoreExpiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
	defer store.Stop()
	ctx := context.Background()

	_ = store.Set(ctx, "k", &CachedResponse{StatusCode: http.StatusOK})
	if _, found, _ := store.Get(ctx, "k"); !found {
		t.Fatal("expected cached response")
	}
	time.Sleep(20 * time.Millisecond)
	if _, found, _ := store.Get(ctx, "k"); found {
		t.Error("expired response should not be returned")
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(errors.New("boom"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Internal server error") {
		t.Errorf("body = %s", rec.Body)
	}
}

func TestContentTypeValidation(t *testing.T) {
	handler := ContentTypeValidation(testLogger())(okHandler())

	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{"json post", http.MethodPost, "application/json", http.StatusOK},
		{"json with charset", http.MethodPatch, "application/json; charset=utf-8", http.StatusOK},
		{"form post", http.MethodPost, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"missing on post", http.MethodPost, "", http.StatusUnsupportedMediaType},
		{"get without header", http.MethodGet, "", http.StatusOK},
		{"delete without header", http.MethodDelete, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	handler := MaxRequestSize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	small := httptest.NewRecorder()
	handler.ServeHTTP(small, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")))
	if small.Code != http.StatusOK {
		t.Errorf("small body status = %d, want 200", small.Code)
	}

	large := httptest.NewRecorder()
	handler.ServeHTTP(large, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64))))
	if large.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("large body status = %d, want 413", large.Code)
	}
}

func TestRequestTimeout(t *testing.T) {
	handler := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestRequestLoggingSetsRequestID(t *testing.T) {
	var seen string
	handler := RequestLogging(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("request id = %q, header = %q", seen, rec.Header().Get(RequestIDHeader))
	}

	const incoming = "3f2c1a9e-6b7d-4c1e-9a2b-5d6e7f8a9b0c"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != incoming {
		t.Errorf("request id = %q, want incoming %q", seen, incoming)
	}
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"https://book.example"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accommodations", nil)
	req.Header.Set("Origin", "https://book.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://book.example" {
		t.Errorf("allowed origin header = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/accommodations", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unknown origin must not be allowed")
	}
}
