package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/rs/zerolog"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/repositories"
	"dealtracker/internal/tenancy"
)

const inviteTokenBytes = 32

type CreateInviteRequest struct {
	Email     string            `json:"email"`
	StartupID uuid.UUID         `json:"startup_id"`
	Role      models.MemberRole `json:"role"`
}

type AcceptInviteRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// InviteService issues and redeems single-use, time-limited membership invites.
type InviteService interface {
	Create(ctx context.Context, admin tenancy.AdminScope, req *CreateInviteRequest) (*models.Invite, error)
	ListPending(ctx context.Context, admin tenancy.AdminScope) ([]*models.Invite, error)
	Delete(ctx context.Context, admin tenancy.AdminScope, id uuid.UUID) error
	// Lookup returns a usable invite; anything else is ErrStaleReference.
	Lookup(ctx context.Context, token string) (*models.Invite, error)
	// Accept redeems the invite at most once and returns the new account's id.
	Accept(ctx context.Context, req *AcceptInviteRequest) (uuid.UUID, error)
}

type inviteService struct {
	invites     repositories.InviteRepository
	startups    repositories.StartupRepository
	memberships repositories.MembershipRepository
	profiles    repositories.ProfileRepository
	identity    IdentityService
	selector    *tenancy.Selector
	activity    ActivityService
	ttl         time.Duration
	now         func() time.Time
}

func NewInviteService(
	invites repositories.InviteRepository,
	startups repositories.StartupRepository,
	memberships repositories.MembershipRepository,
	profiles repositories.ProfileRepository,
	identity IdentityService,
	selector *tenancy.Selector,
	activity ActivityService,
	ttl time.Duration,
) InviteService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &inviteService{
		invites:     invites,
		startups:    startups,
		memberships: memberships,
		profiles:    profiles,
		identity:    identity,
		selector:    selector,
		activity:    activity,
		ttl:         ttl,
		now:         time.Now,
	}
}

func newInviteToken() (string, error) {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite token: %w", err)
	}
	return base58.Encode(buf), nil
}

func (s *inviteService) Create(ctx context.Context, admin tenancy.AdminScope, req *CreateInviteRequest) (*models.Invite, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := common.ValidateEmail(req.Email, "email"); err != nil {
		return nil, err
	}
	if req.Role == "" {
		req.Role = models.MemberRoleTeam
	}
	if !req.Role.Valid() {
		return nil, common.NewValidationError("role", "must be founder or team")
	}
	if req.StartupID == uuid.Nil {
		return nil, common.NewValidationError("startup_id", "is required")
	}
	ok, err := s.startups.Exists(ctx, req.StartupID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("startup not found: %w", common.ErrStaleReference)
	}

	token, err := newInviteToken()
	if err != nil {
		return nil, err
	}
	invite := &models.Invite{
		Email:     req.Email,
		StartupID: req.StartupID,
		Role:      req.Role,
		Token:     token,
		InvitedBy: admin.Actor().ID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

func (s *inviteService) ListPending(ctx context.Context, admin tenancy.AdminScope) ([]*models.Invite, error) {
	return nonNil(s.invites.ListPending(ctx, s.now()))
}

func (s *inviteService) Delete(ctx context.Context, admin tenancy.AdminScope, id uuid.UUID) error {
	return s.invites.Delete(ctx, id)
}

func (s *inviteService) Lookup(ctx context.Context, token string) (*models.Invite, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, common.ErrStaleReference
	}
	invite, err := s.invites.GetUsableByToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrStaleReference
		}
		return nil, err
	}
	return invite, nil
}

func (s *inviteService) Accept(ctx context.Context, req *AcceptInviteRequest) (uuid.UUID, error) {
	if err := common.ValidatePassword(req.Password); err != nil {
		return uuid.Nil, err
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return uuid.Nil, common.ErrStaleReference
	}

	invite, err := s.invites.Claim(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return uuid.Nil, common.ErrStaleReference
		}
		return uuid.Nil, err
	}

	logger := zerolog.Ctx(ctx).With().Str("invite_id", invite.ID.String()).Logger()

	var fullName *string
	if name := strings.TrimSpace(req.FullName); name != "" {
		fullName = &name
	}
	userID, err := s.identity.AdminCreateUser(ctx, invite.Email, req.Password, fullName)
	if err != nil {
		if relErr := s.invites.Release(ctx, invite.ID); relErr != nil {
			logger.Error().Err(relErr).Msg("failed to release invite claim")
		}
		return uuid.Nil, err
	}

	membership := &models.Membership{StartupID: invite.StartupID, UserID: userID, Role: invite.Role}
	if err := s.memberships.Create(ctx, membership); err != nil {
		logger.Error().Err(err).Str("user_id", userID.String()).Msg("account created but membership failed")
		return userID, &common.PartialFailureError{
			Message: "Account created but failed to join startup. Contact an admin.",
			Err:     fmt.Errorf("failed to add membership: %w", err),
		}
	}

	s.recordJoin(ctx, invite, userID)
	return userID, nil
}

// recordJoin logs member_joined as the new member, resolved through the selector like any request.
func (s *inviteService) recordJoin(ctx context.Context, invite *models.Invite, userID uuid.UUID) {
	logger := zerolog.Ctx(ctx)
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load new member profile for activity")
		return
	}
	scope, err := s.selector.Resolve(ctx, profile, invite.StartupID.String())
	if err != nil {
		logger.Warn().Err(err).Msg("failed to resolve new member scope for activity")
		return
	}
	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityMemberJoined,
		Description: fmt.Sprintf("%s joined as %s", profile.DisplayName(), invite.Role),
		Metadata:    map[string]any{"user_id": userID.String(), "role": string(invite.Role), "invite_id": invite.ID.String()},
	})
}
