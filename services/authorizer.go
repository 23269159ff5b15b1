package services

import (
	"context"
	"net/http"

	"github.com/gabrielbaute/octopus-photos/repositories"
)

// Authorizer decides whether an acting user may touch another owner's data.
// Owners always pass; everyone else must hold the admin role.
type Authorizer interface {
	CanAccessOwner(ctx context.Context, actorID uint, ownerID uint) error
}

type ownerAuthorizer struct {
	users repositories.UserRepository
}

func NewAuthorizer(users repositories.UserRepository) Authorizer {
	return &ownerAuthorizer{users: users}
}

func (a *ownerAuthorizer) CanAccessOwner(ctx context.Context, actorID uint, ownerID uint) error {
	if actorID == ownerID {
		return nil
	}
	actor, err := a.users.GetByID(ctx, nil, actorID)
	if err != nil {
		return newAppError(http.StatusForbidden, "access denied", err)
	}
	if !actor.IsAdmin() {
		return newAppError(http.StatusForbidden, "access denied", nil)
	}
	return nil
}
