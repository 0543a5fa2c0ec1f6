package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	userserrors "lodging/internal/users/errors"
	"lodging/pkg/auth"
	"lodging/pkg/config"
	apperrors "lodging/pkg/errors"
	"lodging/pkg/logger"
	"lodging/pkg/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type memoryUsers struct {
	mu      sync.Mutex
	byEmail map[string]*model.User
	err     error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: make(map[string]*model.User)}
}

func (m *memoryUsers) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return userserrors.ErrEmailTaken
	}
	user.ID = "user-" + user.Email
	cp := *user
	m.byEmail[user.Email] = &cp
	return nil
}

func (m *memoryUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, userserrors.ErrNotFound
}

func (m *memoryUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byEmail[email]
	if !ok {
		return nil, userserrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func newTestService(repo *memoryUsers) (UserService, *auth.TokenManager) {
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.JSON, Output: io.Discard})
	cfg := &config.Config{Log: log, AdminSignupCode: "open-sesame"}
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	return NewUserService(repo, tokens, log, cfg), tokens
}

func TestSignUpThenSignIn(t *testing.T) {
	repo := newMemoryUsers()
	svc, tokens := newTestService(repo)
	ctx := context.Background()

	signup, err := svc.SignUp(ctx, &model.SignUpRequest{Email: " Alice@Example.com ", Password: "correct horse"})
	if err != nil {
		t.Fatalf("SignUp() unexpected error: %v", err)
	}
	if signup.User.Email != "alice@example.com" || signup.User.Role != model.RoleUser {
		t.Errorf("user = %+v", signup.User)
	}
	if signup.User.PasswordHash == "correct horse" {
		t.Error("password stored in clear text")
	}

	principal, err := tokens.Parse(signup.Token)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if principal.UserID != signup.User.ID || principal.Role != model.RoleUser {
		t.Errorf("principal = %+v", principal)
	}

	signin, err := svc.SignIn(ctx, &model.SignInRequest{Email: "ALICE@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("SignIn() unexpected error: %v", err)
	}
	if signin.User.ID != signup.User.ID {
		t.Errorf("signed in as %q, want %q", signin.User.ID, signup.User.ID)
	}

	me, err := svc.Me(auth.WithPrincipal(ctx, principal))
	if err != nil {
		t.Fatalf("Me() unexpected error: %v", err)
	}
	if me.Email != "alice@example.com" {
		t.Errorf("Me() = %+v", me)
	}
}

func TestSignUp(t *testing.T) {
	tests := []struct {
		name     string
		req      model.SignUpRequest
		wantCode string
	}{
		{name: "short password", req: model.SignUpRequest{Email: "a@example.com", Password: "short"}, wantCode: apperrors.CodeValidation},
		{name: "bad email", req: model.SignUpRequest{Email: "not-an-email", Password: "long enough"}, wantCode: apperrors.CodeValidation},
		{name: "unknown role", req: model.SignUpRequest{Email: "a@example.com", Password: "long enough", Role: "owner"}, wantCode: apperrors.CodeValidation},
		{name: "admin without code", req: model.SignUpRequest{Email: "a@example.com", Password: "long enough", Role: model.RoleAdmin}, wantCode: apperrors.CodeValidation},
		{name: "admin with wrong code", req: model.SignUpRequest{Email: "a@example.com", Password: "long enough", Role: model.RoleAdmin, AdminCode: "guess"}, wantCode: apperrors.CodeForbidden},
		{name: "admin with code", req: model.SignUpRequest{Email: "a@example.com", Password: "long enough", Role: model.RoleAdmin, AdminCode: "open-sesame"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(newMemoryUsers())
			resp, err := svc.SignUp(context.Background(), &tt.req)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("SignUp() unexpected error: %v", err)
				}
				if resp.User.Role != model.RoleAdmin {
					t.Errorf("role = %q, want admin", resp.User.Role)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("SignUp() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(newMemoryUsers())
	req := model.SignUpRequest{Email: "a@example.com", Password: "long enough"}

	if _, err := svc.SignUp(context.Background(), &req); err != nil {
		t.Fatalf("first SignUp() error: %v", err)
	}
	again := model.SignUpRequest{Email: "A@example.com", Password: "long enough"}
	if _, err := svc.SignUp(context.Background(), &again); !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("second SignUp() error = %v, want conflict", err)
	}
}

func TestSignIn_Failures(t *testing.T) {
	repo := newMemoryUsers()
	svc, _ := newTestService(repo)
	if _, err := svc.SignUp(context.Background(), &model.SignUpRequest{Email: "a@example.com", Password: "long enough"}); err != nil {
		t.Fatalf("SignUp() error: %v", err)
	}

	wrongPassword := &model.SignInRequest{Email: "a@example.com", Password: "not the one"}
	unknownEmail := &model.SignInRequest{Email: "b@example.com", Password: "long enough"}

	_, errWrong := svc.SignIn(context.Background(), wrongPassword)
	_, errUnknown := svc.SignIn(context.Background(), unknownEmail)

	for _, err := range []error{errWrong, errUnknown} {
		if apperrors.AsAppError(err).StatusCode() != http.StatusUnauthorized {
			t.Errorf("SignIn() error = %v, want 401", err)
		}
	}
	if apperrors.AsAppError(errWrong).Message != apperrors.AsAppError(errUnknown).Message {
		t.Error("wrong password and unknown email should look the same")
	}

	repo.err = errors.New("connection refused")
	if _, err := svc.SignIn(context.Background(), wrongPassword); !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("SignIn() error = %v, want internal", err)
	}
}

func TestMe_RequiresSignIn(t *testing.T) {
	svc, _ := newTestService(newMemoryUsers())

	if _, err := svc.Me(context.Background()); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("Me() error = %v, want unauthorized", err)
	}

	ghost := auth.WithPrincipal(context.Background(), &auth.Principal{UserID: "gone", Role: model.RoleUser})
	if _, err := svc.Me(ghost); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("Me() for a deleted account error = %v, want unauthorized", err)
	}
}
