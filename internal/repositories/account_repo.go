package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dealtracker/internal/models"
)

// AccountRepository stores the identity-service side of a principal.
type AccountRepository interface {
	// CreateWithProfile inserts the account and its founder profile in one transaction.
	CreateWithProfile(ctx context.Context, account *models.Account, fullName *string) error
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	TouchLastSignIn(ctx context.Context, id uuid.UUID, at time.Time) error
}

type accountRepo struct {
	db DB
}

func NewAccountRepo(db DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) CreateWithProfile(ctx context.Context, account *models.Account, fullName *string) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.CreatedAt = time.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO auth_users (id, email, password_hash, email_confirmed_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, account.ID, account.Email, account.PasswordHash, account.EmailConfirmedAt, account.CreatedAt)
	if err != nil {
		return mapPostgresError(err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO profiles (id, email, full_name, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, account.ID, account.Email, fullName, models.UserRoleFounder, account.CreatedAt)
	if err != nil {
		return mapPostgresError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit account: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("account_id", account.ID.String()).Msg("account created")
	return nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT id, email, password_hash, email_confirmed_at, last_sign_in_at, created_at
		FROM auth_users
		WHERE lower(email) = lower($1)
	`
	return r.scanOne(ctx, query, email)
}

func (r *accountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `
		SELECT id, email, password_hash, email_confirmed_at, last_sign_in_at, created_at
		FROM auth_users
		WHERE id = $1
	`
	return r.scanOne(ctx, query, id)
}

func (r *accountRepo) scanOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	a := &models.Account{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.EmailConfirmedAt,
		&a.LastSignInAt,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return a, nil
}

func (r *accountRepo) TouchLastSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	return execOne(ctx, r.db, `UPDATE auth_users SET last_sign_in_at = $2 WHERE id = $1`, id, at)
}
