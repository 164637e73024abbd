package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dealtracker/internal/models"
)

type InviteRepository interface {
	Create(ctx context.Context, invite *models.Invite) error
	// ListPending returns unaccepted, unexpired invites, newest first.
	ListPending(ctx context.Context, now time.Time) ([]*models.Invite, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// GetUsableByToken returns the invite only while it is unaccepted and unexpired.
	GetUsableByToken(ctx context.Context, token string, now time.Time) (*models.Invite, error)
	// Claim atomically marks a usable invite accepted. ErrNotFound means it was not usable.
	Claim(ctx context.Context, token string, now time.Time) (*models.Invite, error)
	Release(ctx context.Context, id uuid.UUID) error
	// DeleteExpired removes unaccepted invites that expired before cutoff.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type inviteRepo struct {
	db DB
}

func NewInviteRepo(db DB) InviteRepository {
	return &inviteRepo{db: db}
}

const inviteReturning = `id, email, startup_id, role, token, invited_by, expires_at, accepted_at, created_at`

func scanInvite(row interface{ Scan(dest ...any) error }, withStartup bool) (*models.Invite, error) {
	i := &models.Invite{}
	dest := []any{&i.ID, &i.Email, &i.StartupID, &i.Role, &i.Token, &i.InvitedBy, &i.ExpiresAt, &i.AcceptedAt, &i.CreatedAt}
	if withStartup {
		dest = append(dest, &i.StartupName)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return i, nil
}

func (r *inviteRepo) Create(ctx context.Context, invite *models.Invite) error {
	if invite.ID == uuid.Nil {
		invite.ID = uuid.New()
	}
	invite.CreatedAt = time.Now()

	query := `
		INSERT INTO invites (id, email, startup_id, role, token, invited_by, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		invite.ID,
		invite.Email,
		invite.StartupID,
		invite.Role,
		invite.Token,
		invite.InvitedBy,
		invite.ExpiresAt,
		invite.CreatedAt,
	)
	return mapPostgresError(err)
}

func (r *inviteRepo) ListPending(ctx context.Context, now time.Time) ([]*models.Invite, error) {
	query := `
		SELECT i.id, i.email, i.startup_id, i.role, i.token, i.invited_by, i.expires_at, i.accepted_at, i.created_at, s.name
		FROM invites i
		JOIN startups s ON s.id = i.startup_id
		WHERE i.accepted_at IS NULL AND i.expires_at > $1
		ORDER BY i.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var invites []*models.Invite
	for rows.Next() {
		i, err := scanInvite(rows, true)
		if err != nil {
			return nil, err
		}
		invites = append(invites, i)
	}
	return invites, rows.Err()
}

func (r *inviteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, `DELETE FROM invites WHERE id = $1`, id)
}

func (r *inviteRepo) GetUsableByToken(ctx context.Context, token string, now time.Time) (*models.Invite, error) {
	query := `
		SELECT i.id, i.email, i.startup_id, i.role, i.token, i.invited_by, i.expires_at, i.accepted_at, i.created_at, s.name
		FROM invites i
		JOIN startups s ON s.id = i.startup_id
		WHERE i.token = $1 AND i.accepted_at IS NULL AND i.expires_at > $2
	`
	i, err := scanInvite(r.db.QueryRow(ctx, query, token, now), true)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return i, nil
}

func (r *inviteRepo) Claim(ctx context.Context, token string, now time.Time) (*models.Invite, error) {
	query := `
		UPDATE invites SET accepted_at = $2
		WHERE token = $1 AND accepted_at IS NULL AND expires_at > $2
		RETURNING ` + inviteReturning
	i, err := scanInvite(r.db.QueryRow(ctx, query, token, now), false)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return i, nil
}

func (r *inviteRepo) Release(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.db, `UPDATE invites SET accepted_at = NULL WHERE id = $1`, id)
}

func (r *inviteRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM invites WHERE accepted_at IS NULL AND expires_at < $1`, cutoff)
	if err != nil {
		return 0, mapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}
