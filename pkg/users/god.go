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
	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/email"
	"github.com/jordanlanch/printfast/pkg/models"
)

// SendGodCredentials resets (or creates) the god user with a fresh password
// and emails it to the god user's address. Nothing is persisted unless the
// email was accepted.
func (s *Service) SendGodCredentials(ctx context.Context) error {
	if !s.opts.AllowSendGodCredentials {
		s.metrics.RecordGodCredentialRequest("disabled")
		return domain.NewForbiddenError("Sending god credentials is disabled")
	}
	// the new password only ever exists in the email
	if !email.Delivers(s.mailer) {
		s.metrics.RecordGodCredentialRequest("failed")
		return errors.New("failed to send god credentials: no email provider configured")
	}
	if !s.godLimiter.Allow() {
		s.metrics.RecordGodCredentialRequest("rate_limited")
		return domain.NewRateLimitedError("Credentials were sent recently. Please try again in a few minutes")
	}

	password, err := auth.GeneratePassword(auth.GeneratedPasswordLength)
	if err != nil {
		return fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var god *models.User
	err = s.db.InTx(ctx, func(tx *sqlx.Tx) error {
		existing, err := findGod(ctx, tx)
		switch {
		case err == nil:
			god = existing
			god.PasswordHash = hash
			god.IsActive = true
			god.UpdatedAt = time.Now().UTC()
			if _, err := tx.ExecContext(ctx,
				tx.Rebind(`UPDATE users SET password_hash = ?, is_active = ?, updated_at = ? WHERE id = ?`),
				god.PasswordHash, god.IsActive, god.UpdatedAt, god.ID); err != nil {
				return fmt.Errorf("failed to reset god user: %w", err)
			}
		case errors.Is(err, sql.ErrNoRows):
			god = s.newGodUser(hash)
			if err := s.insert(ctx, tx, god); err != nil {
				return err
			}
		default:
			return fmt.Errorf("failed to find god user: %w", err)
		}

		msg := email.GodCredentialsMessage(god.Email, strings.TrimSpace(god.FirstName+" "+god.LastName), password)
		if err := s.mailer.Send(ctx, msg); err != nil {
			return fmt.Errorf("failed to send god credentials: %w", err)
		}
		return nil
	})
	if err != nil {
		s.metrics.RecordGodCredentialRequest("failed")
		return err
	}

	s.metrics.RecordGodCredentialRequest("sent")
	s.metrics.RecordEmailSent("god_credentials")
	s.log.WithContext(ctx).Warn("god credentials sent", "user_id", god.ID)
	return nil
}

// SeedGod creates the configured god user when no god user exists yet.
// It reports whether a user was created.
func (s *Service) SeedGod(ctx context.Context) (*models.User, bool, error) {
	existing, err := findGod(ctx, s.db.DB)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to find god user: %w", err)
	}

	if s.opts.GodUser.Password == "" {
		return nil, false, domain.NewInvalidArgumentError("GOD_USER_PASSWORD is required to seed the god user")
	}
	hash, err := auth.HashPassword(s.opts.GodUser.Password)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	god := s.newGodUser(hash)
	if err := s.insert(ctx, s.db.DB, god); err != nil {
		return nil, false, err
	}

	s.log.WithContext(ctx).Info("god user seeded", "user_id", god.ID, "email", god.Email)
	return god, true, nil
}

func (s *Service) newGodUser(hash string) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:           uuid.NewString(),
		Email:        auth.NormalizeEmail(s.opts.GodUser.Email),
		PasswordHash: hash,
		FirstName:    s.opts.GodUser.FirstName,
		LastName:     s.opts.GodUser.LastName,
		Role:         authz.RoleGod,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// findGod returns the active god user, or the most recent inactive one
func findGod(ctx context.Context, q sqlx.ExtContext) (*models.User, error) {
	var u models.User
	err := sqlx.GetContext(ctx, q, &u, q.Rebind(`SELECT `+userColumns+` FROM users
		WHERE role = ? ORDER BY is_active DESC, created_at DESC LIMIT 1`), authz.RoleGod)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
