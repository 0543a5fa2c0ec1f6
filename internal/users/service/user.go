package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	userserrors "lodging/internal/users/errors"
	"lodging/internal/users/repository"
	"lodging/pkg/auth"
	"lodging/pkg/config"
	apperrors "lodging/pkg/errors"
	"lodging/pkg/logger"
	"lodging/pkg/model"
	"lodging/pkg/sanitizer"
	"lodging/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type UserService interface {
	SignUp(ctx context.Context, req *model.SignUpRequest) (*model.AuthResponse, error)
	SignIn(ctx context.Context, req *model.SignInRequest) (*model.AuthResponse, error)
	Me(ctx context.Context) (*model.User, error)
}

type TokenIssuer interface {
	Issue(user *model.User) (string, time.Time, error)
}

type userService struct {
	repo     repository.UserRepository
	tokens   TokenIssuer
	validate *validator.Validate
	cfg      *config.Config
}

func NewUserService(repo repository.UserRepository, tokens TokenIssuer, log *logger.Logger, cfg *config.Config) UserService {
	return &userService{
		repo:     repo,
		tokens:   tokens,
		validate: validation.New(log),
		cfg:      cfg,
	}
}

func (s *userService) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.AuthResponse, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if req.Role == "" {
		req.Role = model.RoleUser
	}

	if err := validation.Struct(s.validate, req); err != nil {
		return nil, validationError("Sign-up validation failed", err)
	}

	if req.Role == model.RoleAdmin &&
		subtle.ConstantTimeCompare([]byte(req.AdminCode), []byte(s.cfg.AdminSignupCode)) != 1 {
		s.cfg.Log.Warn("Admin sign-up with wrong code", "email", req.Email)
		return nil, apperrors.Forbidden("Invalid admin code")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Internal("Failed to create user", err)
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrEmailTaken) {
			return nil, apperrors.Conflict("Email is already registered")
		}
		s.cfg.Log.Error("Failed to create user", "email", req.Email, "error", err)
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User signed up", "id", user.ID, "role", user.Role)
	return s.session(user)
}

// SignIn answers with the same error for an unknown email and a wrong
// password.
func (s *userService) SignIn(ctx context.Context, req *model.SignInRequest) (*model.AuthResponse, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := validation.Struct(s.validate, req); err != nil {
		return nil, validationError("Sign-in validation failed", err)
	}

	invalid := apperrors.Unauthorized("Invalid email or password")

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, invalid
		}
		s.cfg.Log.Error("Failed to look up user", "error", err)
		return nil, apperrors.Internal("Failed to sign in", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.cfg.Log.Info("Sign-in with wrong password", "id", user.ID)
			return nil, invalid
		}
		return nil, apperrors.Internal("Failed to sign in", err)
	}

	return s.session(user)
}

func (s *userService) Me(ctx context.Context) (*model.User, error) {
	principal, err := auth.RequireRole(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID) {
			return nil, apperrors.Unauthorized("Account no longer exists")
		}
		return nil, apperrors.Internal("Failed to load user", err)
	}
	return user, nil
}

func (s *userService) session(user *model.User) (*model.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		s.cfg.Log.Error("Failed to issue token", "id", user.ID, "error", err)
		return nil, apperrors.Internal("Failed to issue session token", err)
	}
	return &model.AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func validationError(message string, err error) error {
	var errs validation.ValidationErrors
	if errors.As(err, &errs) {
		return apperrors.Validation(message, errs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
