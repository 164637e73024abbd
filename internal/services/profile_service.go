package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/repositories"
	"dealtracker/internal/tenancy"
)

// ProfileService maps principals to application profiles.
type ProfileService interface {
	// Load returns the principal's profile, or nil when there is no principal or no profile row.
	Load(ctx context.Context, principal *models.Principal) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdateDisplayName(ctx context.Context, profile *models.Profile, fullName string) (*models.Profile, error)
	// ListAssignableUsers returns the users a prospect in scope may be assigned to.
	ListAssignableUsers(ctx context.Context, scope tenancy.Scope) ([]*models.ProfileSummary, error)
	ListTeamMembers(ctx context.Context, admin tenancy.AdminScope) ([]*models.TeamMember, error)
}

type profileService struct {
	profiles    repositories.ProfileRepository
	memberships repositories.MembershipRepository
}

func NewProfileService(profiles repositories.ProfileRepository, memberships repositories.MembershipRepository) ProfileService {
	return &profileService{profiles: profiles, memberships: memberships}
}

func (s *profileService) Load(ctx context.Context, principal *models.Principal) (*models.Profile, error) {
	if principal == nil {
		return nil, nil
	}
	profile, err := s.profiles.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

func (s *profileService) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	if err := common.ValidateRequiredString(email, "email"); err != nil {
		return nil, err
	}
	return s.profiles.GetByEmail(ctx, strings.TrimSpace(email))
}

func (s *profileService) UpdateDisplayName(ctx context.Context, profile *models.Profile, fullName string) (*models.Profile, error) {
	if profile == nil {
		return nil, common.ErrAuthenticationAbsent
	}
	name := strings.TrimSpace(fullName)
	if len(name) > 200 {
		return nil, common.NewValidationError("full_name", "cannot exceed 200 characters")
	}
	var value *string
	if name != "" {
		value = &name
	}
	if err := s.profiles.UpdateFullName(ctx, profile.ID, value); err != nil {
		return nil, err
	}
	updated := *profile
	updated.FullName = value
	return &updated, nil
}

func (s *profileService) ListAssignableUsers(ctx context.Context, scope tenancy.Scope) ([]*models.ProfileSummary, error) {
	startupID, ok := scope.StartupID()
	if !ok {
		return []*models.ProfileSummary{}, nil
	}
	users, err := s.profiles.ListAssignable(ctx, startupID)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.ProfileSummary{}
	}
	return users, nil
}

func (s *profileService) ListTeamMembers(ctx context.Context, admin tenancy.AdminScope) ([]*models.TeamMember, error) {
	members, err := s.profiles.ListTeam(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	details, err := s.memberships.ListDetailsForUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*models.TeamMember, 0, len(members))
	for _, m := range members {
		m.Memberships = details[m.ID]
		if m.Memberships == nil {
			m.Memberships = []models.MembershipDetail{}
		}
		out = append(out, m)
	}
	return out, nil
}
