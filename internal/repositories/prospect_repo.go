package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"dealtracker/internal/models"
)

type ProspectRepository interface {
	Create(ctx context.Context, p *models.Prospect) error
	GetByID(ctx context.Context, startupID, id uuid.UUID) (*models.Prospect, error)
	// List returns the open pipeline: every stage except closed_lost, most recently updated first.
	List(ctx context.Context, startupID uuid.UUID, filter models.ProspectFilter) ([]*models.Prospect, error)
	ListByStage(ctx context.Context, startupID uuid.UUID, stage models.ProspectStage) ([]*models.Prospect, error)
	// ListMeetings returns open prospects with a meeting date in [from, to), earliest first.
	ListMeetings(ctx context.Context, startupID uuid.UUID, from, to *time.Time, limit int) ([]*models.Prospect, error)
	Update(ctx context.Context, p *models.Prospect) error
	UpdateStage(ctx context.Context, startupID, id uuid.UUID, stage models.ProspectStage) (string, error)
	UpdateOwner(ctx context.Context, startupID, id uuid.UUID, ownerID *uuid.UUID) (string, error)
	UpdateIndustry(ctx context.Context, startupID, id uuid.UUID, industry *string) (string, error)
	Delete(ctx context.Context, startupID, id uuid.UUID) (string, error)

	Count(ctx context.Context, startupID uuid.UUID) (int, error)
	CountByStage(ctx context.Context, startupID uuid.UUID) ([]models.StageCount, error)
	PipelineValue(ctx context.Context, startupID uuid.UUID) (float64, error)
}

type prospectRepo struct {
	db DB
}

func NewProspectRepo(db DB) ProspectRepository {
	return &prospectRepo{db: db}
}

const prospectSelect = `
	SELECT p.id, p.startup_id, p.company_name, p.contact_name, p.contact_email, p.industry,
	       p.function, p.estimated_value, p.stage, p.notes, p.next_action, p.next_action_due,
	       p.meeting_date, p.owner_id, p.created_at, p.updated_at,
	       o.full_name, o.email
	FROM prospects p
	LEFT JOIN profiles o ON o.id = p.owner_id
`

func scanProspect(row pgx.Row) (*models.Prospect, error) {
	p := &models.Prospect{}
	var ownerName, ownerEmail *string
	err := row.Scan(
		&p.ID,
		&p.StartupID,
		&p.CompanyName,
		&p.ContactName,
		&p.ContactEmail,
		&p.Industry,
		&p.Function,
		&p.EstimatedValue,
		&p.Stage,
		&p.Notes,
		&p.NextAction,
		&p.NextActionDue,
		&p.MeetingDate,
		&p.OwnerID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&ownerName,
		&ownerEmail,
	)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != nil {
		p.Owner = &models.ProfileSummary{ID: *p.OwnerID, FullName: ownerName}
		if ownerEmail != nil {
			p.Owner.Email = *ownerEmail
		}
	}
	return p, nil
}

func (r *prospectRepo) query(ctx context.Context, query string, args ...any) ([]*models.Prospect, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var prospects []*models.Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, err
		}
		prospects = append(prospects, p)
	}
	return prospects, rows.Err()
}

func (r *prospectRepo) Create(ctx context.Context, p *models.Prospect) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	query := `
		INSERT INTO prospects (id, startup_id, company_name, contact_name, contact_email, industry,
			function, estimated_value, stage, notes, next_action, next_action_due, meeting_date,
			owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.StartupID,
		p.CompanyName,
		p.ContactName,
		p.ContactEmail,
		p.Industry,
		p.Function,
		p.EstimatedValue,
		p.Stage,
		p.Notes,
		p.NextAction,
		p.NextActionDue,
		p.MeetingDate,
		p.OwnerID,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return mapPostgresError(err)
}

func (r *prospectRepo) GetByID(ctx context.Context, startupID, id uuid.UUID) (*models.Prospect, error) {
	p, err := scanProspect(r.db.QueryRow(ctx, prospectSelect+` WHERE p.startup_id = $1 AND p.id = $2`, startupID, id))
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return p, nil
}

func (r *prospectRepo) List(ctx context.Context, startupID uuid.UUID, filter models.ProspectFilter) ([]*models.Prospect, error) {
	conditions := []string{"p.startup_id = $1", "p.stage <> 'closed_lost'"}
	args := []any{startupID}
	argIdx := 2

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(p.company_name ILIKE $%d OR p.contact_name ILIKE $%d OR p.contact_email ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}
	if filter.Stage != "" {
		conditions = append(conditions, fmt.Sprintf("p.stage = $%d", argIdx))
		args = append(args, filter.Stage)
		argIdx++
	}
	if filter.Function != "" {
		conditions = append(conditions, fmt.Sprintf("p.function = $%d", argIdx))
		args = append(args, filter.Function)
	}

	query := prospectSelect + " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY p.updated_at DESC"
	return r.query(ctx, query, args...)
}

func (r *prospectRepo) ListByStage(ctx context.Context, startupID uuid.UUID, stage models.ProspectStage) ([]*models.Prospect, error) {
	query := prospectSelect + ` WHERE p.startup_id = $1 AND p.stage = $2 ORDER BY p.updated_at DESC`
	return r.query(ctx, query, startupID, stage)
}

func (r *prospectRepo) ListMeetings(ctx context.Context, startupID uuid.UUID, from, to *time.Time, limit int) ([]*models.Prospect, error) {
	conditions := []string{"p.startup_id = $1", "p.meeting_date IS NOT NULL", "p.stage <> 'closed_lost'"}
	args := []any{startupID}
	argIdx := 2

	if from != nil {
		conditions = append(conditions, fmt.Sprintf("p.meeting_date >= $%d", argIdx))
		args = append(args, *from)
		argIdx++
	}
	if to != nil {
		conditions = append(conditions, fmt.Sprintf("p.meeting_date < $%d", argIdx))
		args = append(args, *to)
		argIdx++
	}

	query := prospectSelect + " WHERE " + strings.Join(conditions, " AND ") + " ORDER BY p.meeting_date ASC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}
	return r.query(ctx, query, args...)
}

func (r *prospectRepo) Update(ctx context.Context, p *models.Prospect) error {
	p.UpdatedAt = time.Now()
	query := `
		UPDATE prospects
		SET company_name = $3, contact_name = $4, contact_email = $5, industry = $6, function = $7,
		    estimated_value = $8, stage = $9, notes = $10, next_action = $11, next_action_due = $12,
		    meeting_date = $13, owner_id = $14, updated_at = $15
		WHERE startup_id = $1 AND id = $2
	`
	return execOne(ctx, r.db, query,
		p.StartupID,
		p.ID,
		p.CompanyName,
		p.ContactName,
		p.ContactEmail,
		p.Industry,
		p.Function,
		p.EstimatedValue,
		p.Stage,
		p.Notes,
		p.NextAction,
		p.NextActionDue,
		p.MeetingDate,
		p.OwnerID,
		p.UpdatedAt,
	)
}

// updateField sets one column and returns the company name of the touched row.
func (r *prospectRepo) updateField(ctx context.Context, startupID, id uuid.UUID, column string, value any) (string, error) {
	query := fmt.Sprintf(`
		UPDATE prospects SET %s = $3, updated_at = NOW()
		WHERE startup_id = $1 AND id = $2
		RETURNING company_name
	`, column)
	var company string
	if err := r.db.QueryRow(ctx, query, startupID, id, value).Scan(&company); err != nil {
		return "", mapPostgresError(err)
	}
	return company, nil
}

func (r *prospectRepo) UpdateStage(ctx context.Context, startupID, id uuid.UUID, stage models.ProspectStage) (string, error) {
	return r.updateField(ctx, startupID, id, "stage", stage)
}

func (r *prospectRepo) UpdateOwner(ctx context.Context, startupID, id uuid.UUID, ownerID *uuid.UUID) (string, error) {
	return r.updateField(ctx, startupID, id, "owner_id", ownerID)
}

func (r *prospectRepo) UpdateIndustry(ctx context.Context, startupID, id uuid.UUID, industry *string) (string, error) {
	return r.updateField(ctx, startupID, id, "industry", industry)
}

func (r *prospectRepo) Delete(ctx context.Context, startupID, id uuid.UUID) (string, error) {
	var company string
	query := `DELETE FROM prospects WHERE startup_id = $1 AND id = $2 RETURNING company_name`
	if err := r.db.QueryRow(ctx, query, startupID, id).Scan(&company); err != nil {
		return "", mapPostgresError(err)
	}
	return company, nil
}

func (r *prospectRepo) Count(ctx context.Context, startupID uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM prospects WHERE startup_id = $1`, startupID).Scan(&n); err != nil {
		return 0, mapPostgresError(err)
	}
	return n, nil
}

func (r *prospectRepo) CountByStage(ctx context.Context, startupID uuid.UUID) ([]models.StageCount, error) {
	query := `SELECT stage, COUNT(*) FROM prospects WHERE startup_id = $1 GROUP BY stage`
	rows, err := r.db.Query(ctx, query, startupID)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var counts []models.StageCount
	for rows.Next() {
		var sc models.StageCount
		if err := rows.Scan(&sc.Stage, &sc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}

func (r *prospectRepo) PipelineValue(ctx context.Context, startupID uuid.UUID) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(estimated_value), 0)::float8 FROM prospects WHERE startup_id = $1`
	if err := r.db.QueryRow(ctx, query, startupID).Scan(&total); err != nil {
		return 0, mapPostgresError(err)
	}
	return total, nil
}
