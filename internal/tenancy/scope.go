// Package tenancy turns a profile and an untrusted tenant hint into a validated Scope.
//
// Every tenant-owned read or write takes a Scope. A Scope can only be obtained
// from a Selector, so code that has not gone through tenant resolution cannot
// name a startup id to query.
package tenancy

import (
	"github.com/google/uuid"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
)

// Scope is a validated tenant context for one request.
// The zero value means "no tenant" and scoped reads must return nothing.
type Scope struct {
	startupID uuid.UUID
	actor     *models.Profile
}

// StartupID returns the validated startup id, or false when there is no tenant.
func (s Scope) StartupID() (uuid.UUID, bool) {
	return s.startupID, s.startupID != uuid.Nil
}

func (s Scope) Valid() bool {
	return s.startupID != uuid.Nil && s.actor != nil
}

// Actor is the profile the scope was resolved for.
func (s Scope) Actor() *models.Profile {
	return s.actor
}

// ActorID returns the acting profile id, or uuid.Nil for an empty scope.
func (s Scope) ActorID() uuid.UUID {
	if s.actor == nil {
		return uuid.Nil
	}
	return s.actor.ID
}

// AdminScope grants the explicitly unscoped admin operations.
type AdminScope struct {
	actor *models.Profile
}

func (a AdminScope) Actor() *models.Profile {
	return a.actor
}

// RequireAdmin checks the server-loaded profile. It must be called on every admin action.
func RequireAdmin(profile *models.Profile) (AdminScope, error) {
	if !profile.IsAdmin() {
		return AdminScope{}, common.ErrAuthorizationDenied
	}
	return AdminScope{actor: profile}, nil
}

// ScopeFor narrows an admin grant to one startup without a membership check.
func (a AdminScope) ScopeFor(startupID uuid.UUID) Scope {
	return Scope{startupID: startupID, actor: a.actor}
}
