package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"lodging/pkg/model"
)

// APIClient is a thin typed wrapper over the lodging HTTP API. Each call
// returns the raw response so callers can assert on status codes.
type APIClient struct {
	http *HttpClient
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{http: NewHttpClient(baseURL)}
}

func (c *APIClient) HTTP() *HttpClient {
	return c.http
}

func (c *APIClient) SetToken(token string) {
	c.http.SetToken(token)
}

func (c *APIClient) SignUp(ctx context.Context, req *model.SignUpRequest) (*Response, error) {
	return c.http.POST(ctx, "/api/v1/auth/signup", req)
}

func (c *APIClient) SignIn(ctx context.Context, req *model.SignInRequest) (*Response, error) {
	return c.http.POST(ctx, "/api/v1/auth/signin", req)
}

// SignInAs signs in and keeps the issued token for later calls.
func (c *APIClient) SignInAs(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	resp, err := c.SignIn(ctx, &model.SignInRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sign in failed with status %d: %s", resp.StatusCode, GetErrorMessage(resp))
	}
	var auth model.AuthResponse
	if err := resp.DecodeData(&auth); err != nil {
		return nil, fmt.Errorf("failed to decode sign in response: %w", err)
	}
	c.SetToken(auth.Token)
	return &auth, nil
}

func (c *APIClient) Me(ctx context.Context) (*Response, error) {
	return c.http.GET(ctx, "/api/v1/auth/me")
}

func (c *APIClient) CreateAccommodation(ctx context.Context, acc *model.Accommodation) (*Response, error) {
	return c.http.POST(ctx, "/api/v1/accommodations", acc)
}

func (c *APIClient) GetAccommodation(ctx context.Context, id string) (*Response, error) {
	return c.http.GET(ctx, "/api/v1/accommodations/id/"+url.PathEscape(id))
}

func (c *APIClient) ListAccommodations(ctx context.Context, limit int, offset int64) (*Response, error) {
	return c.http.GET(ctx, fmt.Sprintf("/api/v1/accommodations?limit=%d&offset=%d", limit, offset))
}

func (c *APIClient) UpdateAccommodation(ctx context.Context, id string, updates *model.AccommodationUpdate) (*Response, error) {
	return c.http.PATCH(ctx, "/api/v1/accommodations/id/"+url.PathEscape(id), updates)
}

func (c *APIClient) DeleteAccommodation(ctx context.Context, id string) (*Response, error) {
	return c.http.DELETE(ctx, "/api/v1/accommodations/id/"+url.PathEscape(id))
}

func (c *APIClient) SearchAccommodations(ctx context.Context, search *model.AccommodationSearch) (*Response, error) {
	q := url.Values{}
	q.Set("type", search.Type)
	q.Set("location", search.Location)
	if search.StartDate != "" {
		q.Set("start_date", search.StartDate)
	}
	if search.Nights > 0 {
		q.Set("nights", strconv.Itoa(search.Nights))
	}
	if search.Rooms > 0 {
		q.Set("rooms", strconv.Itoa(search.Rooms))
	}
	return c.http.GET(ctx, "/api/v1/accommodations/search?"+q.Encode())
}

// CreateBooking sends idempotencyKey as Idempotency-Key when it is set.
func (c *APIClient) CreateBooking(ctx context.Context, req *model.BookingRequest, idempotencyKey string) (*Response, error) {
	if idempotencyKey == "" {
		return c.http.POST(ctx, "/api/v1/bookings", req)
	}
	return c.http.POSTWithHeaders(ctx, "/api/v1/bookings", req, map[string]string{
		"Idempotency-Key": idempotencyKey,
	})
}

func (c *APIClient) GetBooking(ctx context.Context, id string) (*Response, error) {
	return c.http.GET(ctx, "/api/v1/bookings/id/"+url.PathEscape(id))
}

func (c *APIClient) ListBookings(ctx context.Context, limit int, offset int64) (*Response, error) {
	return c.http.GET(ctx, fmt.Sprintf("/api/v1/bookings?limit=%d&offset=%d", limit, offset))
}

func (c *APIClient) UpdateBooking(ctx context.Context, id string, updates *model.BookingUpdate) (*Response, error) {
	return c.http.PATCH(ctx, "/api/v1/bookings/id/"+url.PathEscape(id), updates)
}

func (c *APIClient) CancelBooking(ctx context.Context, id string) (*Response, error) {
	return c.http.DELETE(ctx, "/api/v1/bookings/id/"+url.PathEscape(id))
}

func (c *APIClient) BookingTrail(ctx context.Context, bookingID string) (*Response, error) {
	return c.http.GET(ctx, "/api/v1/audit/bookings/"+url.PathEscape(bookingID))
}
