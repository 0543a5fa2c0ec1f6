package auth

import (
	"context"
	"slices"

	apperrors "lodging/pkg/errors"
	"lodging/pkg/model"
)

type principalKey struct{}

// Principal is the authenticated caller of a single request.
type Principal struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == model.RoleAdmin
}

// CanAccess reports whether p may read or change a resource owned by ownerID.
func (p *Principal) CanAccess(ownerID string) bool {
	return p.IsAdmin() || (p != nil && p.UserID == ownerID)
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// CurrentUser returns the principal attached to ctx by the authentication
// middleware, if any.
func CurrentUser(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// RequireRole fails with Unauthorized when no one is signed in and with
// Forbidden when the caller's role is not listed. An empty list admits any
// signed-in user.
func RequireRole(ctx context.Context, roles ...string) (*Principal, error) {
	p, ok := CurrentUser(ctx)
	if !ok {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if len(roles) > 0 && !slices.Contains(roles, p.Role) {
		return nil, apperrors.Forbidden("insufficient permissions")
	}
	return p, nil
}
