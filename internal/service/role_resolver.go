package service

import (
	"context"
	"fmt"

	"pharmahub-service/internal/apperr"
	"pharmahub-service/internal/models"
	"pharmahub-service/internal/util"

	"go.uber.org/zap"
)

// RoleResolver looks up the role of an authenticated identity
type RoleResolver struct {
	users  UserRepository
	logger *zap.Logger
}

// NewRoleResolver creates a new role resolver
func NewRoleResolver(users UserRepository) *RoleResolver {
	return &RoleResolver{
		users:  users,
		logger: util.GetLogger(),
	}
}

// ResolveRole returns the persisted role of email. Users stored without a
// role resolve to buyer; an unrecognised role is reported as forbidden.
func (r *RoleResolver) ResolveRole(ctx context.Context, email string) (models.Role, error) {
	ctx, span := util.StartSpan(ctx, "RoleResolver.ResolveRole")
	defer span.End()

	if email == "" {
		return "", fmt.Errorf("%w: no identity", apperr.ErrForbidden)
	}

	user, err := r.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if user.Role == "" {
		return models.RoleBuyer, nil
	}
	if !user.Role.Valid() {
		r.logger.Warn("User has unrecognised role",
			zap.String("email", email),
			zap.String("role", string(user.Role)))
		return "", fmt.Errorf("%w: unrecognised role %q", apperr.ErrForbidden, user.Role)
	}
	return user.Role, nil
}
