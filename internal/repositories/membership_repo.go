package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dealtracker/internal/models"
)

type MembershipRepository interface {
	Create(ctx context.Context, m *models.Membership) error
	Exists(ctx context.Context, userID, startupID uuid.UUID) (bool, error)
	ListDetailsForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]models.MembershipDetail, error)
}

type membershipRepo struct {
	db DB
}

func NewMembershipRepo(db DB) MembershipRepository {
	return &membershipRepo{db: db}
}

func (r *membershipRepo) Create(ctx context.Context, m *models.Membership) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()

	query := `
		INSERT INTO startup_members (id, startup_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, m.ID, m.StartupID, m.UserID, m.Role, m.CreatedAt)
	return mapPostgresError(err)
}

func (r *membershipRepo) Exists(ctx context.Context, userID, startupID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM startup_members WHERE user_id = $1 AND startup_id = $2)`
	var ok bool
	if err := r.db.QueryRow(ctx, query, userID, startupID).Scan(&ok); err != nil {
		return false, mapPostgresError(err)
	}
	return ok, nil
}

func (r *membershipRepo) ListDetailsForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]models.MembershipDetail, error) {
	out := make(map[uuid.UUID][]models.MembershipDetail, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT sm.user_id, sm.startup_id, s.name, sm.role
		FROM startup_members sm
		JOIN startups s ON s.id = sm.startup_id
		WHERE sm.user_id = ANY($1)
		ORDER BY s.name
	`
	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID uuid.UUID
		var d models.MembershipDetail
		if err := rows.Scan(&userID, &d.StartupID, &d.StartupName, &d.Role); err != nil {
			return nil, err
		}
		out[userID] = append(out[userID], d)
	}
	return out, rows.Err()
}
