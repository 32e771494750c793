package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/simple-bulletin/simple-bulletin/internal/db/controller/user"
	"github.com/simple-bulletin/simple-bulletin/internal/db/models"
	"github.com/simple-bulletin/simple-bulletin/internal/db/storage"
)

// Identity is an authenticated user as seen by the rest of the application.
type Identity struct {
	ID       uint64
	Username string
}

// Backend is what the web layer needs from authentication.
type Backend interface {
	Authenticate(ctx context.Context, username, password string) (*Identity, error)
	Identity(ctx context.Context, userID uint64) (*Identity, error)
	PermissionsFor(ctx context.Context, id *Identity) (PermissionSet, error)
}

// Service provides authentication and authorization functionality.
type Service struct {
	db     *gorm.DB
	hasher *Hasher
}

var _ Backend = (*Service)(nil)

// NewService creates a new auth service.
func NewService(db *gorm.DB, hasher *Hasher) *Service {
	return &Service{db: db, hasher: hasher}
}

// Authenticate checks username and password. Unknown users, wrong passwords and inactive
// accounts all return ErrWrongCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	u, err := user.GetByUsername(ctx, s.db, username)
	if errors.Is(err, user.ErrNotFound) {
		s.hasher.VerifyDummy(ctx, password)
		loginAttempts.WithLabelValues(outcomeFailure).Inc()

		return nil, ErrWrongCredentials
	}

	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	match, err := s.hasher.Verify(ctx, password, u.PasswordHash)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}

		log.Error().Err(err).Uint64("user_id", u.ID).Msg("stored password hash can not be verified")

		match = false
	}

	if !match || !u.Active {
		loginAttempts.WithLabelValues(outcomeFailure).Inc()

		return nil, ErrWrongCredentials
	}

	loginAttempts.WithLabelValues(outcomeSuccess).Inc()

	return &Identity{ID: u.ID, Username: u.Username}, nil
}

// Identity resolves a session user id. Unknown and inactive users return ErrUnknownIdentity.
func (s *Service) Identity(ctx context.Context, userID uint64) (*Identity, error) {
	u, err := user.GetActiveByID(ctx, s.db, userID)
	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrUnknownIdentity
	}

	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &Identity{ID: u.ID, Username: u.Username}, nil
}

// PermissionsFor returns the union of the permissions granted by the groups of id.
// Inactive users, users without groups and groups without grants yield an empty set.
func (s *Service) PermissionsFor(ctx context.Context, id *Identity) (PermissionSet, error) {
	if id == nil {
		return PermissionSet{}, nil
	}

	var names []string

	err := s.db.WithContext(ctx).Table("permissions").
		Select("DISTINCT permissions.name").
		Joins("JOIN groups_permissions ON groups_permissions.permission_id = permissions.id").
		Joins("JOIN users_groups ON users_groups.group_id = groups_permissions.group_id").
		Joins("JOIN users ON users.id = users_groups.user_id").
		Where("users.id = ? AND users.active = ?", id.ID, true).
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, storage.Unavailable(ctx, "auth.permissions_for", err)
	}

	return NewPermissionSet(names...), nil
}

// HasPermission checks a single permission outside of a request.
func (s *Service) HasPermission(ctx context.Context, id *Identity, permission string) (bool, error) {
	perms, err := s.PermissionsFor(ctx, id)
	if err != nil {
		return false, err
	}

	return perms.Has(permission), nil
}

// Register creates an inactive user in the "users" group. An administrator activates it later.
func (s *Service) Register(ctx context.Context, username, password string) (*Identity, error) {
	return s.create(ctx, username, password, false, models.GroupUsers)
}

// CreateMember creates a user in the "users" group, optionally already active.
func (s *Service) CreateMember(ctx context.Context, username, password string, active bool) (*Identity, error) {
	return s.create(ctx, username, password, active, models.GroupUsers)
}

// CreateAdmin creates an active user in the "admins" group.
func (s *Service) CreateAdmin(ctx context.Context, username, password string) (*Identity, error) {
	return s.create(ctx, username, password, true, models.GroupAdmins)
}

func (s *Service) create(ctx context.Context, username, password string, active bool, group string) (*Identity, error) {
	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	u, err := user.Create(ctx, s.db, username, hash, active, group)
	if errors.Is(err, user.ErrUsernameTaken) {
		return nil, ErrUsernameTaken
	}

	if err != nil {
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}

	log.Info().Uint64("user_id", u.ID).Str("group", group).Bool("active", active).Msg("user created")

	return &Identity{ID: u.ID, Username: u.Username}, nil
}
