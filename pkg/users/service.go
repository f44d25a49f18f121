// Package users owns user accounts: sign-in, self-service signup, profile
// edits, admin provisioning and the super admin ("god user") lifecycle.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jordanlanch/printfast/pkg/auth"
	"github.com/jordanlanch/printfast/pkg/authz"
	"github.com/jordanlanch/printfast/pkg/database"
	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/email"
	"github.com/jordanlanch/printfast/pkg/logger"
	"github.com/jordanlanch/printfast/pkg/metrics"
	"github.com/jordanlanch/printfast/pkg/models"
	"golang.org/x/time/rate"
)

const (
	userColumns = `id, email, password_hash, first_name, last_name, role, is_active, created_by, last_login_at, created_at, updated_at`

	msgInvalidCredentials = "Invalid credentials"
	msgEmailExists        = "Email already exists"
	msgActiveGodExists    = "An active god user already exists"
)

// GodCredentialsInterval is the minimum time between two credential recovery emails
const GodCredentialsInterval = 5 * time.Minute

var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"email":       "email",
	"firstName":   "first_name",
	"lastName":    "last_name",
	"role":        "role",
	"lastLoginAt": "last_login_at",
}

// GodUser is the configured identity of the super admin
type GodUser struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Options holds the feature flags that shape account creation
type Options struct {
	AllowAdminSignup        bool
	AllowSendGodCredentials bool
	GodUser                 GodUser
}

// Service handles user business logic
type Service struct {
	db         *database.Client
	opts       Options
	mailer     email.Mailer
	metrics    *metrics.Metrics
	log        logger.Logger
	godLimiter *rate.Limiter
}

// NewService creates a new user service
func NewService(db *database.Client, opts Options, mailer email.Mailer, m *metrics.Metrics, log logger.Logger) *Service {
	return &Service{
		db:         db,
		opts:       opts,
		mailer:     mailer,
		metrics:    m,
		log:        log.With("component", "users"),
		godLimiter: rate.NewLimiter(rate.Every(GodCredentialsInterval), 1),
	}
}

// GetByID loads a user without any permission check. Used to resolve the
// actor behind a verified credential.
func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return getUser(ctx, s.db.DB, id)
}

// Login verifies credentials of an active user and stamps lastLoginAt
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	u, err := findActiveByEmail(ctx, s.db.DB, auth.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordLoginAttempt(false)
			return nil, domain.NewUnauthenticatedError(msgInvalidCredentials)
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		s.metrics.RecordLoginAttempt(false)
		return nil, domain.NewUnauthenticatedError(msgInvalidCredentials)
	}

	now := time.Now().UTC()
	if _, err := s.db.DB.ExecContext(ctx,
		s.db.DB.Rebind(`UPDATE users SET last_login_at = ? WHERE id = ?`), now, u.ID); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	u.LastLoginAt = &now

	s.metrics.RecordLoginAttempt(true)
	s.log.WithContext(ctx).Info("user logged in", "user_id", u.ID)
	return u, nil
}

// Signup self-registers an admin or vendor account. God accounts are never
// created here and admin signup depends on configuration.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	switch req.Role {
	case authz.RoleGod:
		return nil, domain.NewForbiddenError("God User accounts cannot be created via signup")
	case authz.RoleAdmin:
		if !s.opts.AllowAdminSignup {
			return nil, domain.NewAdminSignupDisabledError()
		}
	case authz.RoleVendor:
	default:
		return nil, domain.NewValidationError("role is invalid")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        auth.NormalizeEmail(req.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         req.Role,
		IsActive:     true,
		LastLoginAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.insert(ctx, s.db.DB, u); err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("user signed up", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// ChangePassword replaces the actor's password after checking the current one
func (s *Service) ChangePassword(ctx context.Context, actor *auth.Actor, req models.ChangePasswordRequest) error {
	if err := auth.Require(actor, authz.OpManageOwnProfile); err != nil {
		return err
	}

	u, err := s.load(ctx, actor.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.NewUnauthenticatedError("User not found")
		}
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, req.CurrentPassword) {
		return domain.NewUnauthenticatedError("Current password is incorrect")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := s.db.DB.ExecContext(ctx,
		s.db.DB.Rebind(`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`),
		hash, time.Now().UTC(), u.ID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.log.WithContext(ctx).Info("password changed", "user_id", u.ID)
	return nil
}

// GetProfile returns the actor's own account
func (s *Service) GetProfile(ctx context.Context, actor *auth.Actor) (*models.User, error) {
	if err := auth.Require(actor, authz.OpManageOwnProfile); err != nil {
		return nil, err
	}
	return s.load(ctx, actor.UserID)
}

// UpdateProfile edits the actor's own name and email
func (s *Service) UpdateProfile(ctx context.Context, actor *auth.Actor, req models.UpdateUserRequest) (*models.User, error) {
	if err := auth.Require(actor, authz.OpManageOwnProfile); err != nil {
		return nil, err
	}
	u, err := s.load(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, u, req)
}

// List returns a page of users
func (s *Service) List(ctx context.Context, actor *auth.Actor, q models.UserListQuery) (models.ListResult[models.UserResponse], error) {
	var empty models.ListResult[models.UserResponse]
	if err := auth.Require(actor, authz.OpManageUsers); err != nil {
		return empty, err
	}
	q.Normalize()

	var where []string
	var args []any
	if q.Role != "" {
		where = append(where, "role = ?")
		args = append(args, q.Role)
	}
	if q.IsActive != nil {
		where = append(where, "is_active = ?")
		args = append(args, *q.IsActive)
	}
	if strings.TrimSpace(q.Search) != "" {
		p := database.ContainsPattern(q.Search)
		where = append(where, `(LOWER(email) LIKE ? ESCAPE '\' OR LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\')`)
		args = append(args, p, p, p)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var total int
	if err := s.db.DB.GetContext(ctx, &total, s.db.DB.Rebind(`SELECT COUNT(*) FROM users`+clause), args...); err != nil {
		return empty, fmt.Errorf("failed to count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users` + clause +
		` ORDER BY ` + database.OrderBy(q.Sort, q.Order, sortColumns, "createdAt") + ` LIMIT ? OFFSET ?`
	var rows []models.User
	if err := s.db.DB.SelectContext(ctx, &rows, s.db.DB.Rebind(query), append(args, q.Limit, q.Offset())...); err != nil {
		return empty, fmt.Errorf("failed to list users: %w", err)
	}

	items := make([]models.UserResponse, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].ToResponse())
	}
	return models.NewListResult(items, total, q.ListQuery), nil
}

// Get returns a single user
func (s *Service) Get(ctx context.Context, actor *auth.Actor, id string) (*models.User, error) {
	if err := auth.Require(actor, authz.OpManageUsers); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Create provisions an account with a generated password that is returned once
func (s *Service) Create(ctx context.Context, actor *auth.Actor, req models.CreateUserRequest) (*models.CreateUserResponse, error) {
	if err := auth.Require(actor, authz.OpCreateUser); err != nil {
		return nil, err
	}
	if !authz.CanCreateUser(actor.Role, req.Role) {
		return nil, domain.NewForbiddenError("You cannot create users with this role")
	}

	password, err := auth.GeneratePassword(auth.GeneratedPasswordLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	createdBy := actor.UserID
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        auth.NormalizeEmail(req.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         req.Role,
		IsActive:     true,
		CreatedBy:    &createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		if u.Role == authz.RoleGod {
			if err := ensureNoOtherActiveGod(ctx, tx, ""); err != nil {
				return err
			}
		}
		return s.insert(ctx, tx, u)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("user created", "user_id", u.ID, "role", u.Role, "created_by", actor.UserID)
	return &models.CreateUserResponse{User: u.ToResponse(), GeneratedPassword: password}, nil
}

// Update edits another user's name and email
func (s *Service) Update(ctx context.Context, actor *auth.Actor, id string, req models.UpdateUserRequest) (*models.User, error) {
	u, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.applyUpdate(ctx, u, req)
}

// Deactivate disables a user. Deactivating an inactive user is a no-op.
func (s *Service) Deactivate(ctx context.Context, actor *auth.Actor, id string) (*models.User, error) {
	return s.setActive(ctx, actor, id, false)
}

// Activate re-enables a user. Activating an active user is a no-op.
func (s *Service) Activate(ctx context.Context, actor *auth.Actor, id string) (*models.User, error) {
	return s.setActive(ctx, actor, id, true)
}

func (s *Service) setActive(ctx context.Context, actor *auth.Actor, id string, active bool) (*models.User, error) {
	u, err := s.loadManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if u.IsActive == active {
		return u, nil
	}

	err = s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		if active && u.Role == authz.RoleGod {
			if err := ensureNoOtherActiveGod(ctx, tx, u.ID); err != nil {
				return err
			}
		}
		u.IsActive = active
		u.UpdatedAt = time.Now().UTC()
		if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`),
			u.IsActive, u.UpdatedAt, u.ID); err != nil {
			return fmt.Errorf("failed to update user status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Info("user status changed", "user_id", u.ID, "is_active", active, "by", actor.UserID)
	return u, nil
}

// loadManaged checks manage-users and that the actor may touch the target's role
func (s *Service) loadManaged(ctx context.Context, actor *auth.Actor, id string) (*models.User, error) {
	if err := auth.Require(actor, authz.OpManageUsers); err != nil {
		return nil, err
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageUser(actor.Role, u.Role) {
		return nil, domain.NewForbiddenError("You cannot manage users with this role")
	}
	return u, nil
}

func (s *Service) applyUpdate(ctx context.Context, u *models.User, req models.UpdateUserRequest) (*models.User, error) {
	if req.FirstName != nil {
		u.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		u.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		u.Email = auth.NormalizeEmail(*req.Email)
	}
	u.UpdatedAt = time.Now().UTC()

	_, err := s.db.DB.ExecContext(ctx,
		s.db.DB.Rebind(`UPDATE users SET first_name = ?, last_name = ?, email = ?, updated_at = ? WHERE id = ?`),
		u.FirstName, u.LastName, u.Email, u.UpdatedAt, u.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, domain.NewConflictError(msgEmailExists)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.log.WithContext(ctx).Info("user updated", "user_id", u.ID)
	return u, nil
}

func (s *Service) load(ctx context.Context, id string) (*models.User, error) {
	u, err := getUser(ctx, s.db.DB, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("User")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *Service) insert(ctx context.Context, q sqlx.ExtContext, u *models.User) error {
	_, err := sqlx.NamedExecContext(ctx, q, `INSERT INTO users (`+userColumns+`)
		VALUES (:id, :email, :password_hash, :first_name, :last_name, :role, :is_active, :created_by, :last_login_at, :created_at, :updated_at)`, u)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.NewConflictError(msgEmailExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func getUser(ctx context.Context, q sqlx.ExtContext, id string) (*models.User, error) {
	var u models.User
	if err := sqlx.GetContext(ctx, q, &u, q.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id); err != nil {
		return nil, err
	}
	return &u, nil
}

func findActiveByEmail(ctx context.Context, q sqlx.ExtContext, email string) (*models.User, error) {
	var u models.User
	err := sqlx.GetContext(ctx, q, &u,
		q.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ? AND is_active = ?`), email, true)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ensureNoOtherActiveGod enforces the single active god user. exceptID is
// the user about to become the active god, if it already exists.
func ensureNoOtherActiveGod(ctx context.Context, q sqlx.ExtContext, exceptID string) error {
	var n int
	err := sqlx.GetContext(ctx, q, &n,
		q.Rebind(`SELECT COUNT(*) FROM users WHERE role = ? AND is_active = ? AND id <> ?`),
		authz.RoleGod, true, exceptID)
	if err != nil {
		return fmt.Errorf("failed to check god users: %w", err)
	}
	if n > 0 {
		return domain.NewConflictError(msgActiveGodExists)
	}
	return nil
}
