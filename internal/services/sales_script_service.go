package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/repositories"
	"dealtracker/internal/tenancy"
)

type SalesScriptInput struct {
	Title   string               `json:"title"`
	Content string               `json:"content"`
	Channel models.ScriptChannel `json:"channel"`
}

type SalesScriptService interface {
	List(ctx context.Context, scope tenancy.Scope, filter models.ScriptFilter) ([]*models.SalesScript, error)
	Get(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.SalesScript, error)
	Create(ctx context.Context, scope tenancy.Scope, in *SalesScriptInput) (*models.SalesScript, error)
	Update(ctx context.Context, scope tenancy.Scope, id uuid.UUID, in *SalesScriptInput) (*models.SalesScript, error)
	Delete(ctx context.Context, scope tenancy.Scope, id uuid.UUID) error
}

type salesScriptService struct {
	scripts  repositories.SalesScriptRepository
	activity ActivityService
}

func NewSalesScriptService(scripts repositories.SalesScriptRepository, activity ActivityService) SalesScriptService {
	return &salesScriptService{scripts: scripts, activity: activity}
}

func validateScript(in *SalesScriptInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if err := common.ValidateRequiredString(in.Title, "title"); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(in.Content, "content"); err != nil {
		return err
	}
	if in.Channel == "" {
		in.Channel = models.ChannelEmail
	}
	if !in.Channel.Valid() {
		return common.NewValidationError("channel", "is not a script channel")
	}
	return nil
}

func (s *salesScriptService) List(ctx context.Context, scope tenancy.Scope, filter models.ScriptFilter) ([]*models.SalesScript, error) {
	startupID, ok := scope.StartupID()
	if !ok {
		return []*models.SalesScript{}, nil
	}
	if filter.Channel != "" && !filter.Channel.Valid() {
		return nil, common.NewValidationError("channel", "is not a script channel")
	}
	filter.Search = common.SanitizeSearchQuery(filter.Search)
	return nonNil(s.scripts.List(ctx, startupID, filter))
}

func (s *salesScriptService) Get(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.SalesScript, error) {
	startupID, ok := scope.StartupID()
	if !ok {
		return nil, common.ErrNotFound
	}
	return s.scripts.GetByID(ctx, startupID, id)
}

func (s *salesScriptService) Create(ctx context.Context, scope tenancy.Scope, in *SalesScriptInput) (*models.SalesScript, error) {
	startupID, err := writeScope(scope)
	if err != nil {
		return nil, err
	}
	if err := validateScript(in); err != nil {
		return nil, err
	}
	script := &models.SalesScript{StartupID: startupID, Title: in.Title, Content: in.Content, Channel: in.Channel}
	if err := s.scripts.Create(ctx, script); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityScriptCreated,
		Description: fmt.Sprintf("Added script %s", script.Title),
		Metadata:    map[string]any{"script_id": script.ID.String(), "channel": string(script.Channel)},
	})
	return script, nil
}

func (s *salesScriptService) Update(ctx context.Context, scope tenancy.Scope, id uuid.UUID, in *SalesScriptInput) (*models.SalesScript, error) {
	startupID, err := writeScope(scope)
	if err != nil {
		return nil, err
	}
	if err := validateScript(in); err != nil {
		return nil, err
	}
	script, err := s.scripts.GetByID(ctx, startupID, id)
	if err != nil {
		return nil, err
	}
	script.Title, script.Content, script.Channel = in.Title, in.Content, in.Channel
	if err := s.scripts.Update(ctx, script); err != nil {
		return nil, err
	}
	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityScriptUpdated,
		Description: fmt.Sprintf("Updated script %s", script.Title),
		Metadata:    map[string]any{"script_id": script.ID.String()},
	})
	return script, nil
}

func (s *salesScriptService) Delete(ctx context.Context, scope tenancy.Scope, id uuid.UUID) error {
	startupID, err := writeScope(scope)
	if err != nil {
		return err
	}
	script, err := s.scripts.GetByID(ctx, startupID, id)
	if err != nil {
		return err
	}
	if err := s.scripts.Delete(ctx, startupID, id); err != nil {
		return err
	}
	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityScriptDeleted,
		Description: fmt.Sprintf("Deleted script %s", script.Title),
		Metadata:    map[string]any{"script_id": id.String()},
	})
	return nil
}
