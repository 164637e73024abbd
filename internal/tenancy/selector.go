package tenancy

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dealtracker/internal/models"
	"dealtracker/internal/observability/metrics"
)

// HintCookie names the client-persisted tenant hint.
const HintCookie = "current_startup_id"

type MembershipChecker interface {
	Exists(ctx context.Context, userID, startupID uuid.UUID) (bool, error)
}

type StartupLister interface {
	ListAll(ctx context.Context) ([]*models.Startup, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Startup, error)
}

type Selector struct {
	memberships MembershipChecker
	startups    StartupLister
}

func NewSelector(memberships MembershipChecker, startups StartupLister) *Selector {
	return &Selector{memberships: memberships, startups: startups}
}

// Resolve validates hint for profile. A missing profile or hint, a malformed hint
// and a hint naming a startup the founder is not a member of all yield an empty
// Scope with a nil error. Admins are trusted for any startup id.
func (s *Selector) Resolve(ctx context.Context, profile *models.Profile, hint string) (Scope, error) {
	if profile == nil {
		metrics.ObserveTenantResolution("none")
		return Scope{}, nil
	}
	hint = strings.TrimSpace(hint)
	if hint == "" {
		metrics.ObserveTenantResolution("none")
		return Scope{}, nil
	}
	startupID, err := uuid.Parse(hint)
	if err != nil {
		metrics.ObserveTenantResolution("denied")
		return Scope{}, nil
	}

	if profile.IsAdmin() {
		metrics.ObserveTenantResolution("admin")
		return Scope{startupID: startupID, actor: profile}, nil
	}

	ok, err := s.memberships.Exists(ctx, profile.ID, startupID)
	if err != nil {
		return Scope{}, fmt.Errorf("failed to check membership: %w", err)
	}
	if !ok {
		metrics.ObserveTenantResolution("denied")
		zerolog.Ctx(ctx).Debug().
			Str("profile_id", profile.ID.String()).
			Str("hint", hint).
			Msg("tenant hint not backed by a membership")
		return Scope{}, nil
	}

	metrics.ObserveTenantResolution("member")
	return Scope{startupID: startupID, actor: profile}, nil
}

// Accessible lists the startups profile may select: all of them for admins,
// memberships for everyone else.
func (s *Selector) Accessible(ctx context.Context, profile *models.Profile) ([]*models.Startup, error) {
	if profile == nil {
		return nil, nil
	}
	if profile.IsAdmin() {
		return s.startups.ListAll(ctx)
	}
	return s.startups.ListForUser(ctx, profile.ID)
}

// DefaultTenant picks the startup to select when no hint exists.
func (s *Selector) DefaultTenant(ctx context.Context, profile *models.Profile) (uuid.UUID, bool, error) {
	startups, err := s.Accessible(ctx, profile)
	if err != nil {
		return uuid.Nil, false, err
	}
	if len(startups) == 0 {
		return uuid.Nil, false, nil
	}
	return startups[0].ID, true, nil
}
