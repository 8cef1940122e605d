package service

import (
	"context"
	"strings"

	"pharmahub-service/internal/apperr"
	"pharmahub-service/internal/models"
	"pharmahub-service/internal/store"
	"pharmahub-service/internal/util"

	"go.uber.org/zap"
)

// UserService handles account administration
type UserService struct {
	users  UserRepository
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(users UserRepository) *UserService {
	return &UserService{
		users:  users,
		logger: util.GetLogger(),
	}
}

// RegisterUserRequest is sent by the client after its first sign-in
type RegisterUserRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

// RegisterUserResponse reports whether the account was newly created
type RegisterUserResponse struct {
	InsertedID string      `json:"insertedId,omitempty"`
	Created    bool        `json:"created"`
	Role       models.Role `json:"role"`
}

// UpdateProfileRequest carries profile fields the user may change
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

// UpdateRoleRequest carries the new role set by an administrator
type UpdateRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// Register creates the user on first sign-in. New accounts always start as
// buyers; elevated roles are granted only through UpdateRole.
func (s *UserService) Register(ctx context.Context, req *RegisterUserRequest) (*RegisterUserResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, apperr.BadRequest("email is required")
	}

	user := &models.User{
		Email: email,
		Name:  req.Name,
		Photo: req.Photo,
		Role:  models.RoleBuyer,
	}

	created, err := s.users.InsertUserIfAbsent(ctx, user)
	if err != nil {
		return nil, err
	}

	if !created {
		return &RegisterUserResponse{Created: false}, nil
	}

	s.logger.Info("User registered", zap.String("email", email))
	return &RegisterUserResponse{
		InsertedID: user.ID.Hex(),
		Created:    true,
		Role:       models.RoleBuyer,
	}, nil
}

// ListUsers returns every account
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

// UpdateRole changes the role of the user identified by id
func (s *UserService) UpdateRole(ctx context.Context, id string, role models.Role) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	if !role.Valid() {
		return apperr.BadRequest("unknown role %q", role)
	}

	if err := s.users.UpdateUserRole(ctx, oid, role); err != nil {
		return err
	}

	s.logger.Info("User role changed", zap.String("user_id", id), zap.String("role", string(role)))
	return nil
}

// UpdateProfile changes the name or photo of the caller
func (s *UserService) UpdateProfile(ctx context.Context, email string, req *UpdateProfileRequest) error {
	return s.users.UpdateUserProfile(ctx, email, strings.TrimSpace(req.Name), strings.TrimSpace(req.Photo))
}
