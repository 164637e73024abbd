package repositories

import (
	"context"

	"github.com/google/uuid"

	"dealtracker/internal/models"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdateFullName(ctx context.Context, id uuid.UUID, fullName *string) error
	// ListAssignable returns members of the startup together with every admin, ordered by name.
	ListAssignable(ctx context.Context, startupID uuid.UUID) ([]*models.ProfileSummary, error)
	IsAssignable(ctx context.Context, startupID, profileID uuid.UUID) (bool, error)
	// ListTeam returns non-admin profiles, newest first, with last sign-in time.
	ListTeam(ctx context.Context) ([]*models.TeamMember, error)
}

type profileRepo struct {
	db DB
}

func NewProfileRepo(db DB) ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `id, email, full_name, role, created_at`

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return r.scanOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.scanOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE lower(email) = lower($1)`, email)
}

func (r *profileRepo) scanOne(ctx context.Context, query string, arg any) (*models.Profile, error) {
	p := &models.Profile{}
	err := r.db.QueryRow(ctx, query, arg).Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.CreatedAt)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return p, nil
}

func (r *profileRepo) UpdateFullName(ctx context.Context, id uuid.UUID, fullName *string) error {
	return execOne(ctx, r.db, `UPDATE profiles SET full_name = $2 WHERE id = $1`, id, fullName)
}

func (r *profileRepo) ListAssignable(ctx context.Context, startupID uuid.UUID) ([]*models.ProfileSummary, error) {
	query := `
		SELECT p.id, p.full_name, p.email
		FROM profiles p
		WHERE p.role = 'admin'
		   OR EXISTS (SELECT 1 FROM startup_members sm WHERE sm.user_id = p.id AND sm.startup_id = $1)
		ORDER BY p.full_name NULLS LAST, p.email
	`
	rows, err := r.db.Query(ctx, query, startupID)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var out []*models.ProfileSummary
	for rows.Next() {
		s := &models.ProfileSummary{}
		if err := rows.Scan(&s.ID, &s.FullName, &s.Email); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *profileRepo) IsAssignable(ctx context.Context, startupID, profileID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM profiles p
			WHERE p.id = $2
			  AND (p.role = 'admin'
			       OR EXISTS (SELECT 1 FROM startup_members sm WHERE sm.user_id = p.id AND sm.startup_id = $1))
		)
	`
	var ok bool
	if err := r.db.QueryRow(ctx, query, startupID, profileID).Scan(&ok); err != nil {
		return false, mapPostgresError(err)
	}
	return ok, nil
}

func (r *profileRepo) ListTeam(ctx context.Context) ([]*models.TeamMember, error) {
	query := `
		SELECT p.id, p.email, p.full_name, p.role, p.created_at, a.last_sign_in_at
		FROM profiles p
		LEFT JOIN auth_users a ON a.id = p.id
		WHERE p.role <> 'admin'
		ORDER BY p.created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var out []*models.TeamMember
	for rows.Next() {
		m := &models.TeamMember{}
		if err := rows.Scan(&m.ID, &m.Email, &m.FullName, &m.Role, &m.CreatedAt, &m.LastSignInAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
