package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dealtracker/internal/models"
)

type SalesScriptRepository interface {
	Create(ctx context.Context, s *models.SalesScript) error
	GetByID(ctx context.Context, startupID, id uuid.UUID) (*models.SalesScript, error)
	List(ctx context.Context, startupID uuid.UUID, filter models.ScriptFilter) ([]*models.SalesScript, error)
	Update(ctx context.Context, s *models.SalesScript) error
	Delete(ctx context.Context, startupID, id uuid.UUID) error
}

type salesScriptRepo struct {
	db DB
}

func NewSalesScriptRepo(db DB) SalesScriptRepository {
	return &salesScriptRepo{db: db}
}

func (r *salesScriptRepo) Create(ctx context.Context, s *models.SalesScript) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `
		INSERT INTO sales_scripts (id, startup_id, title, content, channel, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, s.ID, s.StartupID, s.Title, s.Content, s.Channel, s.CreatedAt, s.UpdatedAt)
	return mapPostgresError(err)
}

func (r *salesScriptRepo) GetByID(ctx context.Context, startupID, id uuid.UUID) (*models.SalesScript, error) {
	s := &models.SalesScript{}
	query := `
		SELECT id, startup_id, title, content, channel, created_at, updated_at
		FROM sales_scripts
		WHERE startup_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, startupID, id).Scan(&s.ID, &s.StartupID, &s.Title, &s.Content, &s.Channel, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return s, nil
}

func (r *salesScriptRepo) List(ctx context.Context, startupID uuid.UUID, filter models.ScriptFilter) ([]*models.SalesScript, error) {
	conditions := []string{"startup_id = $1"}
	args := []any{startupID}
	argIdx := 2

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR content ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}
	if filter.Channel != "" {
		conditions = append(conditions, fmt.Sprintf("channel = $%d", argIdx))
		args = append(args, filter.Channel)
	}

	query := `
		SELECT id, startup_id, title, content, channel, created_at, updated_at
		FROM sales_scripts
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY updated_at DESC
	`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var scripts []*models.SalesScript
	for rows.Next() {
		s := &models.SalesScript{}
		if err := rows.Scan(&s.ID, &s.StartupID, &s.Title, &s.Content, &s.Channel, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, rows.Err()
}

func (r *salesScriptRepo) Update(ctx context.Context, s *models.SalesScript) error {
	s.UpdatedAt = time.Now()
	query := `
		UPDATE sales_scripts SET title = $3, content = $4, channel = $5, updated_at = $6
		WHERE startup_id = $1 AND id = $2
	`
	return execOne(ctx, r.db, query, s.StartupID, s.ID, s.Title, s.Content, s.Channel, s.UpdatedAt)
}

func (r *salesScriptRepo) Delete(ctx context.Context, startupID, id uuid.UUID) error {
	return execOne(ctx, r.db, `DELETE FROM sales_scripts WHERE startup_id = $1 AND id = $2`, startupID, id)
}
