package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lodging/pkg/auth"
	apperrors "lodging/pkg/errors"
	"lodging/pkg/logger"
	"lodging/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	createFunc  func(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	getByIDFunc func(ctx context.Context, id string) (*model.Booking, error)
	getAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	updateFunc  func(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error)
	deleteFunc  func(ctx context.Context, id string) error
}

func (m *mockBookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return &model.Booking{ID: "b1"}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx, limit, offset)
	}
	return []*model.Booking{}, 0, nil
}

func (m *mockBookingService) Update(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, updates)
	}
	return &model.Booking{ID: id}, nil
}

func (m *mockBookingService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func newTestRouter(svc *mockBookingService) *httprouter.Router {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.JSON, Output: io.Discard})
	router := httprouter.New()
	NewBookingHandler(svc, log).RegisterRoutes(router)
	return router
}

func signedIn(req *http.Request) *http.Request {
	p := &auth.Principal{UserID: "u1", Role: model.RoleUser}
	return req.WithContext(auth.WithPrincipal(req.Context(), p))
}

func TestRoutes_RequireSignIn(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/bookings"},
		{http.MethodGet, "/api/v1/bookings"},
		{http.MethodGet, "/api/v1/bookings/id/b1"},
		{http.MethodPatch, "/api/v1/bookings/id/b1"},
		{http.MethodDelete, "/api/v1/bookings/id/b1"},
	}
	for _, route := range routes {
		req := httptest.NewRequest(route.method, route.path, strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", route.method, route.path, w.Code)
		}
	}
}

func TestCreate(t *testing.T) {
	var got *model.BookingRequest
	router := newTestRouter(&mockBookingService{
		createFunc: func(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
			got = req
			return &model.Booking{ID: "b1", AccommodationID: req.AccommodationID, StartDate: req.StartDate, Nights: req.Nights, Rooms: req.Rooms}, nil
		},
	})

	body := `{"accommodation_id":"507f1f77bcf86cd799439011","start_date":"2099-07-01","nights":2,"rooms":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, signedIn(req))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	if got == nil || got.Nights != 2 || got.StartDate != "2099-07-01" {
		t.Errorf("service got %+v", got)
	}

	var resp struct {
		Data model.Booking `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.ID != "b1" {
		t.Errorf("response booking = %+v", resp.Data)
	}
}

func TestCreate_InsufficientAvailability(t *testing.T) {
	router := newTestRouter(&mockBookingService{
		createFunc: func(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
			return nil, apperrors.InsufficientAvailability("2099-07-02", 0, 1)
		},
	})

	body := `{"accommodation_id":"507f1f77bcf86cd799439011","start_date":"2099-07-01","nights":2,"rooms":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, signedIn(req))

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	var resp struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != apperrors.CodeInsufficientAvailability || resp.Details["date"] != "2099-07-02" {
		t.Errorf("response = %+v", resp)
	}
}

func TestCreate_MalformedBody(t *testing.T) {
	router := newTestRouter(&mockBookingService{})

	for _, body := range []string{``, `{"nights":`, `{"nights":1}{"nights":2}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, signedIn(req))

		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestUpdate_PassesID(t *testing.T) {
	var gotID string
	var gotRooms int
	router := newTestRouter(&mockBookingService{
		updateFunc: func(ctx context.Context, id string, updates *model.BookingUpdate) (*model.Booking, error) {
			gotID = id
			if updates.Rooms != nil {
				gotRooms = *updates.Rooms
			}
			return &model.Booking{ID: id}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/id/b42", strings.NewReader(`{"rooms":3}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, signedIn(req))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotID != "b42" || gotRooms != 3 {
		t.Errorf("service got id=%q rooms=%d", gotID, gotRooms)
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "cancelled", wantStatus: http.StatusNoContent},
		{name: "not owner", err: apperrors.Forbidden("no"), wantStatus: http.StatusForbidden},
		{name: "missing", err: apperrors.NotFound("Booking"), wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&mockBookingService{
				deleteFunc: func(ctx context.Context, id string) error { return tt.err },
			})

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/bookings/id/b1", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, signedIn(req))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
