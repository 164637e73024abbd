package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dealtracker/internal/models"
)

type StartupRepository interface {
	Create(ctx context.Context, startup *models.Startup) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Startup, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// ListAll is unscoped; only admin code paths may call it.
	ListAll(ctx context.Context) ([]*models.Startup, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Startup, error)
}

type startupRepo struct {
	db DB
}

func NewStartupRepo(db DB) StartupRepository {
	return &startupRepo{db: db}
}

func (r *startupRepo) Create(ctx context.Context, startup *models.Startup) error {
	if startup.ID == uuid.Nil {
		startup.ID = uuid.New()
	}
	startup.CreatedAt = time.Now()

	query := `
		INSERT INTO startups (id, name, description, category, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, startup.ID, startup.Name, startup.Description, startup.Category, startup.CreatedAt)
	return mapPostgresError(err)
}

func (r *startupRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Startup, error) {
	s := &models.Startup{}
	query := `SELECT id, name, description, category, created_at FROM startups WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.Description, &s.Category, &s.CreatedAt)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return s, nil
}

func (r *startupRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM startups WHERE id = $1)`, id).Scan(&ok)
	if err != nil {
		return false, mapPostgresError(err)
	}
	return ok, nil
}

func (r *startupRepo) ListAll(ctx context.Context) ([]*models.Startup, error) {
	query := `
		SELECT id, name, description, category, created_at
		FROM startups
		ORDER BY name
	`
	return r.list(ctx, query)
}

func (r *startupRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Startup, error) {
	query := `
		SELECT s.id, s.name, s.description, s.category, s.created_at
		FROM startups s
		JOIN startup_members sm ON sm.startup_id = s.id
		WHERE sm.user_id = $1
		ORDER BY sm.created_at, s.name
	`
	return r.list(ctx, query, userID)
}

func (r *startupRepo) list(ctx context.Context, query string, args ...any) ([]*models.Startup, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var startups []*models.Startup
	for rows.Next() {
		s := &models.Startup{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Category, &s.CreatedAt); err != nil {
			return nil, err
		}
		startups = append(startups, s)
	}
	return startups, rows.Err()
}
