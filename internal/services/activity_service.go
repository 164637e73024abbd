package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/observability/metrics"
	"dealtracker/internal/repositories"
	"dealtracker/internal/tenancy"
)

// ActivityEntry describes one mutation to append to the activity log.
type ActivityEntry struct {
	Type        models.ActivityType
	Description string
	ProspectID  *uuid.UUID
	Metadata    map[string]any
}

// ActivityService appends activity records without blocking the caller.
type ActivityService interface {
	// Record queues an append for scope's startup and actor. It never fails and never blocks:
	// when the queue is full or the service is closed the record is dropped and logged.
	Record(ctx context.Context, scope tenancy.Scope, entry ActivityEntry)
	List(ctx context.Context, scope tenancy.Scope, filter models.ActivityFilter) ([]*models.ActivityLog, error)
	// Close stops accepting records and waits for queued ones to be written.
	Close(ctx context.Context) error
}

type ActivityOptions struct {
	BufferSize   int
	Workers      int
	WriteTimeout time.Duration
}

type activityService struct {
	repo         repositories.ActivityRepository
	logger       zerolog.Logger
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan *models.ActivityLog
	wg     sync.WaitGroup
}

func NewActivityService(repo repositories.ActivityRepository, logger zerolog.Logger, opts ActivityOptions) ActivityService {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	s := &activityService{
		repo:         repo,
		logger:       logger.With().Str("component", "activity").Logger(),
		writeTimeout: opts.WriteTimeout,
		queue:        make(chan *models.ActivityLog, opts.BufferSize),
	}
	for i := 0; i < opts.Workers; i++ {
		s.wg.Add(1)
		go s.process()
	}
	return s
}

func (s *activityService) Record(ctx context.Context, scope tenancy.Scope, entry ActivityEntry) {
	startupID, ok := scope.StartupID()
	if !ok || scope.ActorID() == uuid.Nil {
		zerolog.Ctx(ctx).Debug().Str("action_type", string(entry.Type)).Msg("activity without tenant scope ignored")
		return
	}

	record := &models.ActivityLog{
		ID:          uuid.New(),
		StartupID:   startupID,
		ProspectID:  entry.ProspectID,
		UserID:      scope.ActorID(),
		ActionType:  entry.Type,
		Description: entry.Description,
		Metadata:    entry.Metadata,
		CreatedAt:   time.Now(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		metrics.ObserveActivity("dropped")
		s.logger.Warn().Str("action_type", string(entry.Type)).Msg("activity service closed, record dropped")
		return
	}

	select {
	case s.queue <- record:
	default:
		metrics.ObserveActivity("dropped")
		s.logger.Warn().
			Str("startup_id", startupID.String()).
			Str("action_type", string(entry.Type)).
			Msg("activity queue full, record dropped")
	}
}

func (s *activityService) process() {
	defer s.wg.Done()
	for record := range s.queue {
		s.write(record)
	}
}

func (s *activityService) write(record *models.ActivityLog) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	if err := s.repo.Create(ctx, record); err != nil {
		metrics.ObserveActivity("failed")
		s.logger.Warn().Err(err).
			Str("startup_id", record.StartupID.String()).
			Str("action_type", string(record.ActionType)).
			Msg("failed to append activity record")
		return
	}
	metrics.ObserveActivity("written")
}

func (s *activityService) List(ctx context.Context, scope tenancy.Scope, filter models.ActivityFilter) ([]*models.ActivityLog, error) {
	startupID, ok := scope.StartupID()
	if !ok {
		return []*models.ActivityLog{}, nil
	}
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = limit, offset

	entries, err := s.repo.List(ctx, startupID, filter)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.ActivityLog{}
	}
	return entries, nil
}

func (s *activityService) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
