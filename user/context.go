package user

import (
	"context"
	"log/slog"
)

// IdentityManager looks up users and their role memberships.
type IdentityManager interface {
	GetUser(ctx context.Context, p Principal) (*User, error)
	IsInRole(ctx context.Context, u *User, role Role) (bool, error)
}

type ContextResolver struct {
	identity IdentityManager
	logger   *slog.Logger
}

func NewContextResolver(identity IdentityManager, logger *slog.Logger) *ContextResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextResolver{
		identity: identity,
		logger:   logger,
	}
}

// Resolve maps the principal to its display context. Unknown users and any
// lookup failure both yield the zero Context.
func (r *ContextResolver) Resolve(ctx context.Context, p Principal) Context {
	c, err := r.resolve(ctx, p)
	if err != nil {
		r.logger.WarnContext(ctx, "cannot resolve user context", "user_id", p.UserID, "error", err)
		return Context{}
	}
	return c
}

func (r *ContextResolver) resolve(ctx context.Context, p Principal) (Context, error) {
	u, err := r.identity.GetUser(ctx, p)
	if err != nil {
		return Context{}, err
	}
	if u == nil {
		return Context{}, nil
	}

	isAdmin, err := r.identity.IsInRole(ctx, u, RoleAdmin)
	if err != nil {
		return Context{}, err
	}

	return Context{
		DisplayName: u.DisplayName,
		IsAdmin:     isAdmin,
	}, nil
}
