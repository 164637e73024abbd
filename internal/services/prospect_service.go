package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/repositories"
	"dealtracker/internal/tenancy"
)

type ProspectService interface {
	List(ctx context.Context, scope tenancy.Scope, filter models.ProspectFilter) ([]*models.Prospect, error)
	Get(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Prospect, error)
	Create(ctx context.Context, scope tenancy.Scope, in *models.ProspectInput) (*models.Prospect, error)
	Update(ctx context.Context, scope tenancy.Scope, id uuid.UUID, in *models.ProspectInput) (*models.Prospect, error)
	Delete(ctx context.Context, scope tenancy.Scope, id uuid.UUID) error

	// ChangeStage moves a prospect to any stage. Resubmitting the current stage still logs one record.
	ChangeStage(ctx context.Context, scope tenancy.Scope, id uuid.UUID, stage models.ProspectStage) error
	AssignOwner(ctx context.Context, scope tenancy.Scope, id uuid.UUID, ownerID *uuid.UUID) error
	SetIndustry(ctx context.Context, scope tenancy.Scope, id uuid.UUID, industry string) error

	ListDeadLeads(ctx context.Context, scope tenancy.Scope) ([]*models.Prospect, error)
	Revive(ctx context.Context, scope tenancy.Scope, id uuid.UUID) error
	ListMeetings(ctx context.Context, scope tenancy.Scope, from, to *time.Time) ([]*models.Prospect, error)
}

type prospectService struct {
	prospects repositories.ProspectRepository
	profiles  repositories.ProfileRepository
	activity  ActivityService
}

func NewProspectService(prospects repositories.ProspectRepository, profiles repositories.ProfileRepository, activity ActivityService) ProspectService {
	return &prospectService{prospects: prospects, profiles: profiles, activity: activity}
}

// writeScope returns the startup id for a mutation; mutations without a tenant are denied.
func writeScope(scope tenancy.Scope) (uuid.UUID, error) {
	startupID, ok := scope.StartupID()
	if !ok || !scope.Valid() {
		return uuid.Nil, common.ErrAuthorizationDenied
	}
	return startupID, nil
}

func (s *prospectService) List(ctx context.Context, scope tenancy.Scope, filter models.ProspectFilter) ([]*models.Prospect, error) {
	startupID, ok := scope.StartupID()
	if !ok {
		return []*models.Prospect{}, nil
	}
	if filter.Stage != "" && !filter.Stage.Valid() {
		return nil, common.NewValidationError("stage", "is not a pipeline stage")
	}
	if filter.Function != "" && !filter.Function.Valid() {
		return nil, common.NewValidationError("function", "is not a prospect function")
	}
	filter.Search = common.SanitizeSearchQuery(filter.Search)

	return nonNil(s.prospects.List(ctx, startupID, filter))
}

func (s *prospectService) Get(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Prospect, error) {
	startupID, ok := scope.StartupID()
	if !ok {
		return nil, common.ErrNotFound
	}
	return s.prospects.GetByID(ctx, startupID, id)
}

func (s *prospectService) validate(ctx context.Context, startupID uuid.UUID, in *models.ProspectInput) error {
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	if err := common.ValidateRequiredString(in.CompanyName, "company_name"); err != nil {
		return err
	}
	if in.Stage == "" {
		in.Stage = models.StageNew
	}
	if !in.Stage.Valid() {
		return common.NewValidationError("stage", "is not a pipeline stage")
	}
	if in.Function != nil && *in.Function == "" {
		in.Function = nil
	}
	if in.Function != nil && !in.Function.Valid() {
		return common.NewValidationError("function", "is not a prospect function")
	}
	if in.Industry != nil && strings.TrimSpace(*in.Industry) == "" {
		in.Industry = nil
	}
	if in.Industry != nil && !models.ValidIndustry(*in.Industry) {
		return common.NewValidationError("industry", "is not a known industry")
	}
	if in.ContactEmail != nil {
		if strings.TrimSpace(*in.ContactEmail) == "" {
			in.ContactEmail = nil
		} else if err := common.ValidateEmail(*in.ContactEmail, "contact_email"); err != nil {
			return err
		}
	}
	if in.EstimatedValue != nil && *in.EstimatedValue < 0 {
		return common.NewValidationError("estimated_value", "cannot be negative")
	}
	for field, v := range map[string]*string{"contact_name": in.ContactName, "next_action": in.NextAction} {
		if err := common.ValidateOptionalString(v, field, 500); err != nil {
			return err
		}
	}
	if err := common.ValidateOptionalString(in.Notes, "notes", 10000); err != nil {
		return err
	}
	if in.OwnerID != nil {
		if err := s.checkOwner(ctx, startupID, *in.OwnerID); err != nil {
			return err
		}
	}
	return nil
}

func (s *prospectService) checkOwner(ctx context.Context, startupID, ownerID uuid.UUID) error {
	ok, err := s.profiles.IsAssignable(ctx, startupID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return common.NewValidationError("owner_id", "is not a member of this startup")
	}
	return nil
}

func applyInput(p *models.Prospect, in *models.ProspectInput) {
	p.CompanyName = in.CompanyName
	p.ContactName = in.ContactName
	p.ContactEmail = in.ContactEmail
	p.Industry = in.Industry
	p.Function = in.Function
	p.EstimatedValue = in.EstimatedValue
	p.Stage = in.Stage
	p.Notes = in.Notes
	p.NextAction = in.NextAction
	p.NextActionDue = in.NextActionDue
	p.MeetingDate = in.MeetingDate
	p.OwnerID = in.OwnerID
}

func (s *prospectService) Create(ctx context.Context, scope tenancy.Scope, in *models.ProspectInput) (*models.Prospect, error) {
	startupID, err := writeScope(scope)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, startupID, in); err != nil {
		return nil, err
	}

	p := &models.Prospect{StartupID: startupID}
	applyInput(p, in)
	if err := s.prospects.Create(ctx, p); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityProspectCreated,
		Description: fmt.Sprintf("Created prospect %s", p.CompanyName),
		ProspectID:  &p.ID,
	})
	return p, nil
}

func (s *prospectService) Update(ctx context.Context, scope tenancy.Scope, id uuid.UUID, in *models.ProspectInput) (*models.Prospect, error) {
	startupID, err := writeScope(scope)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, startupID, in); err != nil {
		return nil, err
	}

	existing, err := s.prospects.GetByID(ctx, startupID, id)
	if err != nil {
		return nil, err
	}
	before := *existing
	applyInput(existing, in)
	if err := s.prospects.Update(ctx, existing); err != nil {
		return nil, err
	}

	entry := ActivityEntry{
		Type:        models.ActivityProspectUpdated,
		Description: fmt.Sprintf("Updated %s", existing.CompanyName),
		ProspectID:  &existing.ID,
	}
	if onlyNotesChanged(&before, existing) {
		entry.Type = models.ActivityNoteAdded
		entry.Description = fmt.Sprintf("Updated notes on %s", existing.CompanyName)
	}
	s.activity.Record(ctx, scope, entry)
	return existing, nil
}

func onlyNotesChanged(before, after *models.Prospect) bool {
	if common.SafeString(before.Notes) == common.SafeString(after.Notes) {
		return false
	}
	b, a := before, after
	return b.CompanyName == a.CompanyName &&
		common.SafeString(b.ContactName) == common.SafeString(a.ContactName) &&
		common.SafeString(b.ContactEmail) == common.SafeString(a.ContactEmail) &&
		common.SafeString(b.Industry) == common.SafeString(a.Industry) &&
		sameFunction(b.Function, a.Function) &&
		common.SafeFloat64(b.EstimatedValue) == common.SafeFloat64(a.EstimatedValue) &&
		b.Stage == a.Stage &&
		common.SafeString(b.NextAction) == common.SafeString(a.NextAction) &&
		sameTime(b.NextActionDue, a.NextActionDue) &&
		sameTime(b.MeetingDate, a.MeetingDate) &&
		sameUUID(b.OwnerID, a.OwnerID)
}

func sameFunction(a, b *models.ProspectFunction) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameUUID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *prospectService) Delete(ctx context.Context, scope tenancy.Scope, id uuid.UUID) error {
	startupID, err := writeScope(scope)
	if err != nil {
		return err
	}
	company, err := s.prospects.Delete(ctx, startupID, id)
	if err != nil {
		return err
	}
	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityProspectDeleted,
		Description: fmt.Sprintf("Deleted prospect %s", company),
		Metadata:    map[string]any{"prospect_id": id.String()},
	})
	return nil
}

func (s *prospectService) ChangeStage(ctx context.Context, scope tenancy.Scope, id uuid.UUID, stage models.ProspectStage) error {
	startupID, err := writeScope(scope)
	if err != nil {
		return err
	}
	if !stage.Valid() {
		return common.NewValidationError("stage", "is not a pipeline stage")
	}

	company, err := s.prospects.UpdateStage(ctx, startupID, id, stage)
	if err != nil {
		return err
	}
	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityStageChange,
		Description: fmt.Sprintf("Moved %s to %s", company, stage.Label()),
		ProspectID:  &id,
		Metadata:    map[string]any{"stage": string(stage)},
	})
	return nil
}

func (s *prospectService) AssignOwner(ctx context.Context, scope tenancy.Scope, id uuid.UUID, ownerID *uuid.UUID) error {
	startupID, err := writeScope(scope)
	if err != nil {
		return err
	}
	if ownerID != nil && *ownerID == uuid.Nil {
		ownerID = nil
	}
	if ownerID != nil {
		if err := s.checkOwner(ctx, startupID, *ownerID); err != nil {
			return err
		}
	}

	company, err := s.prospects.UpdateOwner(ctx, startupID, id, ownerID)
	if err != nil {
		return err
	}
	description := fmt.Sprintf("Cleared the owner of %s", company)
	metadata := map[string]any{"owner_id": nil}
	if ownerID != nil {
		description = fmt.Sprintf("Reassigned %s", company)
		metadata["owner_id"] = ownerID.String()
	}
	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityProspectUpdated,
		Description: description,
		ProspectID:  &id,
		Metadata:    metadata,
	})
	return nil
}

func (s *prospectService) SetIndustry(ctx context.Context, scope tenancy.Scope, id uuid.UUID, industry string) error {
	startupID, err := writeScope(scope)
	if err != nil {
		return err
	}
	var value *string
	if industry = strings.TrimSpace(industry); industry != "" {
		if !models.ValidIndustry(industry) {
			return common.NewValidationError("industry", "is not a known industry")
		}
		value = &industry
	}

	company, err := s.prospects.UpdateIndustry(ctx, startupID, id, value)
	if err != nil {
		return err
	}
	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityProspectUpdated,
		Description: fmt.Sprintf("Set industry of %s to %s", company, industryLabel(value)),
		ProspectID:  &id,
	})
	return nil
}

func industryLabel(v *string) string {
	if v == nil {
		return "none"
	}
	return *v
}

func (s *prospectService) ListDeadLeads(ctx context.Context, scope tenancy.Scope) ([]*models.Prospect, error) {
	startupID, ok := scope.StartupID()
	if !ok {
		return []*models.Prospect{}, nil
	}
	return nonNil(s.prospects.ListByStage(ctx, startupID, models.StageClosedLost))
}

func (s *prospectService) Revive(ctx context.Context, scope tenancy.Scope, id uuid.UUID) error {
	startupID, err := writeScope(scope)
	if err != nil {
		return err
	}
	p, err := s.prospects.GetByID(ctx, startupID, id)
	if err != nil {
		return err
	}
	if p.Stage != models.StageClosedLost {
		return common.NewValidationError("stage", "only closed lost prospects can be revived")
	}
	company, err := s.prospects.UpdateStage(ctx, startupID, id, models.StageNew)
	if err != nil {
		return err
	}
	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityProspectRevived,
		Description: fmt.Sprintf("Revived %s", company),
		ProspectID:  &id,
	})
	return nil
}

func (s *prospectService) ListMeetings(ctx context.Context, scope tenancy.Scope, from, to *time.Time) ([]*models.Prospect, error) {
	startupID, ok := scope.StartupID()
	if !ok {
		return []*models.Prospect{}, nil
	}
	if from != nil && to != nil {
		if err := common.ValidateDateRange(*from, *to); err != nil {
			return nil, err
		}
	}
	return nonNil(s.prospects.ListMeetings(ctx, startupID, from, to, 0))
}

// nonNil turns a nil slice result into an empty one so JSON renders [].
func nonNil[T any](items []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
