package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/repositories"
	"dealtracker/internal/tenancy"
)

// TenantService holds the admin-only startup and account administration actions.
// Every method takes an AdminScope, which the caller obtains via tenancy.RequireAdmin.
type TenantService interface {
	ListAll(ctx context.Context, admin tenancy.AdminScope) ([]*models.Startup, error)
	Create(ctx context.Context, admin tenancy.AdminScope, req *CreateStartupRequest) (*models.Startup, error)
	AddMember(ctx context.Context, admin tenancy.AdminScope, req *AddMemberRequest) (*models.Membership, error)
	CreateUserWithPassword(ctx context.Context, admin tenancy.AdminScope, req *CreateUserRequest) (uuid.UUID, error)
}

type CreateStartupRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

type AddMemberRequest struct {
	StartupID uuid.UUID         `json:"startup_id"`
	UserID    uuid.UUID         `json:"user_id"`
	Role      models.MemberRole `json:"role"`
}

type CreateUserRequest struct {
	Email     string            `json:"email"`
	Password  string            `json:"password"`
	FullName  string            `json:"full_name"`
	StartupID *uuid.UUID        `json:"startup_id"`
	Role      models.MemberRole `json:"role"`
}

type tenantService struct {
	startups    repositories.StartupRepository
	memberships repositories.MembershipRepository
	profiles    repositories.ProfileRepository
	identity    IdentityService
	activity    ActivityService
}

func NewTenantService(
	startups repositories.StartupRepository,
	memberships repositories.MembershipRepository,
	profiles repositories.ProfileRepository,
	identity IdentityService,
	activity ActivityService,
) TenantService {
	return &tenantService{
		startups:    startups,
		memberships: memberships,
		profiles:    profiles,
		identity:    identity,
		activity:    activity,
	}
}

func (s *tenantService) ListAll(ctx context.Context, admin tenancy.AdminScope) ([]*models.Startup, error) {
	startups, err := s.startups.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if startups == nil {
		startups = []*models.Startup{}
	}
	return startups, nil
}

func (s *tenantService) Create(ctx context.Context, admin tenancy.AdminScope, req *CreateStartupRequest) (*models.Startup, error) {
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return nil, err
	}
	if err := common.ValidateOptionalString(req.Description, "description", 2000); err != nil {
		return nil, err
	}
	if err := common.ValidateOptionalString(req.Category, "category", 200); err != nil {
		return nil, err
	}

	startup := &models.Startup{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    req.Category,
	}
	if err := s.startups.Create(ctx, startup); err != nil {
		return nil, err
	}
	return startup, nil
}

func (s *tenantService) AddMember(ctx context.Context, admin tenancy.AdminScope, req *AddMemberRequest) (*models.Membership, error) {
	if req.Role == "" {
		req.Role = models.MemberRoleFounder
	}
	if !req.Role.Valid() {
		return nil, common.NewValidationError("role", "must be founder or team")
	}
	if req.StartupID == uuid.Nil {
		return nil, common.NewValidationError("startup_id", "is required")
	}
	if req.UserID == uuid.Nil {
		return nil, common.NewValidationError("user_id", "is required")
	}

	m := &models.Membership{StartupID: req.StartupID, UserID: req.UserID, Role: req.Role}
	if err := s.memberships.Create(ctx, m); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, fmt.Errorf("user is already a member of this startup: %w", common.ErrConflict)
		}
		return nil, err
	}

	s.recordJoin(ctx, admin.ScopeFor(req.StartupID), req.UserID, req.Role)
	return m, nil
}

func (s *tenantService) CreateUserWithPassword(ctx context.Context, admin tenancy.AdminScope, req *CreateUserRequest) (uuid.UUID, error) {
	if err := common.ValidateEmail(strings.TrimSpace(req.Email), "email"); err != nil {
		return uuid.Nil, err
	}
	if err := common.ValidatePassword(req.Password); err != nil {
		return uuid.Nil, err
	}
	if req.Role == "" {
		req.Role = models.MemberRoleFounder
	}
	if !req.Role.Valid() {
		return uuid.Nil, common.NewValidationError("role", "must be founder or team")
	}
	if req.StartupID != nil {
		ok, err := s.startups.Exists(ctx, *req.StartupID)
		if err != nil {
			return uuid.Nil, err
		}
		if !ok {
			return uuid.Nil, fmt.Errorf("startup not found: %w", common.ErrStaleReference)
		}
	}

	var fullName *string
	if name := strings.TrimSpace(req.FullName); name != "" {
		fullName = &name
	}

	userID, err := s.identity.AdminCreateUser(ctx, req.Email, req.Password, fullName)
	if err != nil {
		return uuid.Nil, err
	}

	if req.StartupID != nil {
		m := &models.Membership{StartupID: *req.StartupID, UserID: userID, Role: req.Role}
		if err := s.memberships.Create(ctx, m); err != nil {
			return userID, fmt.Errorf("user created but membership failed: %w", err)
		}
		s.recordJoin(ctx, admin.ScopeFor(*req.StartupID), userID, req.Role)
	}
	return userID, nil
}

func (s *tenantService) recordJoin(ctx context.Context, scope tenancy.Scope, userID uuid.UUID, role models.MemberRole) {
	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityMemberJoined,
		Description: fmt.Sprintf("Added a %s member", role),
		Metadata:    map[string]any{"user_id": userID.String(), "role": string(role)},
	})
}
