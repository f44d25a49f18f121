// Package middleware resolves the caller's identity for authenticated routes.
package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/jordanlanch/printfast/pkg/auth"
	"github.com/jordanlanch/printfast/pkg/authz"
	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/logger"
	"github.com/jordanlanch/printfast/pkg/models"
	"github.com/labstack/echo/v4"
)

const (
	actorKey      = "actor"
	credentialKey = "credential"
)

// UserLoader loads the user a credential points at
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticate tries each resolver in order. The first one that finds a
// credential decides: a bad credential is rejected without trying the rest.
// The resolved user must still exist and be active.
func Authenticate(resolvers []auth.Resolver, users UserLoader, log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			var cred *auth.Credential
			for _, r := range resolvers {
				found, err := r.Resolve(ctx, c.Request())
				if errors.Is(err, auth.ErrNoCredential) {
					continue
				}
				if err != nil {
					return domain.NewUnauthenticatedError("Invalid or expired credentials")
				}
				cred = found
				break
			}
			if cred == nil {
				return domain.NewUnauthenticatedError("Authentication required")
			}

			user, err := users.GetByID(ctx, cred.UserID)
			if err != nil {
				if domain.IsNotFound(err) {
					return domain.NewUnauthenticatedError("User account not found")
				}
				return err
			}
			if !user.IsActive {
				return domain.NewUnauthenticatedError("Account is deactivated")
			}

			actor := auth.ActorFromUser(user)
			c.Set(actorKey, actor)
			c.Set(credentialKey, cred)

			scoped := log.With("user_id", actor.UserID, "role", string(actor.Role))
			c.SetRequest(c.Request().WithContext(logger.IntoContext(c.Request().Context(), scoped)))

			return next(c)
		}
	}
}

// ActorFrom returns the authenticated actor, or nil on public routes
func ActorFrom(c echo.Context) *auth.Actor {
	actor, _ := c.Get(actorKey).(*auth.Actor)
	return actor
}

// CredentialFrom returns the credential the actor authenticated with
func CredentialFrom(c echo.Context) *auth.Credential {
	cred, _ := c.Get(credentialKey).(*auth.Credential)
	return cred
}

// Authorize rejects the request with the policy error for op before the
// handler binds its body.
func Authorize(op authz.Operation) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := auth.Require(ActorFrom(c), op); err != nil {
				return err
			}
			return next(c)
		}
	}
}
