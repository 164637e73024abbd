package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dealtracker/internal/models"
)

// ActivityRepository is append-only: there is no update or delete.
type ActivityRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, startupID uuid.UUID, filter models.ActivityFilter) ([]*models.ActivityLog, error)
}

type activityRepo struct {
	db DB
}

func NewActivityRepo(db DB) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	var metadata []byte
	if entry.Metadata != nil {
		var err error
		metadata, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	query := `
		INSERT INTO activity_log (id, startup_id, prospect_id, user_id, action_type, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.StartupID,
		entry.ProspectID,
		entry.UserID,
		entry.ActionType,
		entry.Description,
		metadata,
		entry.CreatedAt,
	)
	return mapPostgresError(err)
}

func (r *activityRepo) List(ctx context.Context, startupID uuid.UUID, filter models.ActivityFilter) ([]*models.ActivityLog, error) {
	conditions := []string{"a.startup_id = $1"}
	args := []any{startupID}
	argIdx := 2

	if filter.ProspectID != nil {
		conditions = append(conditions, fmt.Sprintf("a.prospect_id = $%d", argIdx))
		args = append(args, *filter.ProspectID)
		argIdx++
	}
	if filter.ActionType != "" {
		conditions = append(conditions, fmt.Sprintf("a.action_type = $%d", argIdx))
		args = append(args, filter.ActionType)
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT a.id, a.startup_id, a.prospect_id, a.user_id, a.action_type, a.description, a.metadata, a.created_at,
		       u.full_name, u.email, p.company_name
		FROM activity_log a
		LEFT JOIN profiles u ON u.id = a.user_id
		LEFT JOIN prospects p ON p.id = a.prospect_id
		WHERE %s
		ORDER BY a.created_at DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(conditions, " AND "), argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var entries []*models.ActivityLog
	for rows.Next() {
		e := &models.ActivityLog{}
		var metadata []byte
		var userName, userEmail *string
		err := rows.Scan(
			&e.ID,
			&e.StartupID,
			&e.ProspectID,
			&e.UserID,
			&e.ActionType,
			&e.Description,
			&metadata,
			&e.CreatedAt,
			&userName,
			&userEmail,
			&e.Prospect,
		)
		if err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		if userEmail != nil {
			e.User = &models.ProfileSummary{ID: e.UserID, FullName: userName, Email: *userEmail}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
