package auth

import (
	"github.com/jordanlanch/printfast/pkg/authz"
	"github.com/jordanlanch/printfast/pkg/domain"
	"github.com/jordanlanch/printfast/pkg/models"
)

// Actor is the authenticated user on whose behalf a request runs
type Actor struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	Role      authz.Role
}

// ActorFromUser builds the actor for a loaded user row
func ActorFromUser(u *models.User) *Actor {
	return &Actor{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

// Require returns Unauthenticated for a nil actor and Forbidden when the
// actor's role may not perform op.
func Require(a *Actor, op authz.Operation) error {
	if a == nil {
		return domain.NewUnauthenticatedError("")
	}
	if !authz.IsAllowed(a.Role, op) {
		return domain.NewForbiddenError("")
	}
	return nil
}
