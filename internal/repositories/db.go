package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"dealtracker/internal/common"
)

// DB is the subset of *pgxpool.Pool the repositories use. pgxmock.PgxPoolIface satisfies it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// mapPostgresError maps driver errors onto the shared sentinel errors.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		log.Debug().Str("constraint", pgErr.ConstraintName).Msg("unique violation")
		return common.ErrConflict
	case pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %s", common.ErrStaleReference, pgErr.ConstraintName)
	case pgerrcode.CheckViolation, pgerrcode.InvalidTextRepresentation:
		return fmt.Errorf("%w: %s", common.ErrValidation, pgErr.Message)
	case pgerrcode.QueryCanceled:
		return fmt.Errorf("query canceled: %w", err)
	default:
		return fmt.Errorf("postgres error [%s]: %s: %w", pgErr.Code, pgErr.Message, err)
	}
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, db DB, query string, args ...any) error {
	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return mapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}
