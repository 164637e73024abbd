package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"dealtracker/internal/models"
	"dealtracker/internal/observability/metrics"
	"dealtracker/internal/repositories"
	"dealtracker/internal/tenancy"
)

const (
	dashboardRecentActivity   = 10
	dashboardUpcomingMeetings = 10
)

type DashboardService interface {
	// Summary never fails: a section whose query errors renders empty and is named in Warnings.
	Summary(ctx context.Context, scope tenancy.Scope) *models.DashboardSummary
}

type dashboardService struct {
	prospects repositories.ProspectRepository
	activity  ActivityService
	now       func() time.Time
}

func NewDashboardService(prospects repositories.ProspectRepository, activity ActivityService) DashboardService {
	return &dashboardService{prospects: prospects, activity: activity, now: time.Now}
}

func emptySummary() *models.DashboardSummary {
	return &models.DashboardSummary{
		StageCounts:      []models.StageCount{},
		RecentActivity:   []*models.ActivityLog{},
		UpcomingMeetings: []*models.Prospect{},
	}
}

func (s *dashboardService) Summary(ctx context.Context, scope tenancy.Scope) *models.DashboardSummary {
	summary := emptySummary()
	startupID, ok := scope.StartupID()
	if !ok {
		return summary
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	logger := zerolog.Ctx(ctx)
	section := func(name string, fn func() error) {
		g.Go(func() error {
			if err := fn(); err != nil {
				metrics.ObserveDashboardFailure(name)
				logger.Warn().Err(err).Str("section", name).Str("startup_id", startupID.String()).Msg("dashboard section failed")
				mu.Lock()
				summary.Warnings = append(summary.Warnings, name)
				mu.Unlock()
			}
			return nil
		})
	}

	section("total_prospects", func() error {
		n, err := s.prospects.Count(ctx, startupID)
		if err != nil {
			return err
		}
		summary.TotalProspects = n
		return nil
	})
	section("pipeline_value", func() error {
		v, err := s.prospects.PipelineValue(ctx, startupID)
		if err != nil {
			return err
		}
		summary.PipelineValue = v
		return nil
	})
	section("stage_counts", func() error {
		counts, err := s.prospects.CountByStage(ctx, startupID)
		if err != nil {
			return err
		}
		summary.StageCounts = fillStages(counts)
		for _, c := range counts {
			if c.Stage == models.StageClosedWon {
				summary.WonDeals = c.Count
			}
		}
		return nil
	})
	section("recent_activity", func() error {
		entries, err := s.activity.List(ctx, scope, models.ActivityFilter{Limit: dashboardRecentActivity})
		if err != nil {
			return err
		}
		summary.RecentActivity = entries
		return nil
	})
	section("upcoming_meetings", func() error {
		now := s.now().UTC()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		meetings, err := s.prospects.ListMeetings(ctx, startupID, &today, nil, dashboardUpcomingMeetings)
		if err != nil {
			return err
		}
		if meetings != nil {
			summary.UpcomingMeetings = meetings
		}
		return nil
	})

	_ = g.Wait()
	sort.Strings(summary.Warnings)
	return summary
}

// fillStages returns one entry per pipeline stage in funnel order, zero-filled.
func fillStages(counts []models.StageCount) []models.StageCount {
	byStage := make(map[models.ProspectStage]int, len(counts))
	for _, c := range counts {
		byStage[c.Stage] = c.Count
	}
	out := make([]models.StageCount, 0, len(models.Stages))
	for _, stage := range models.Stages {
		out = append(out, models.StageCount{Stage: stage, Count: byStage[stage]})
	}
	return out
}
