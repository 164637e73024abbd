package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"dealtracker/internal/common"
)

func TestMapPostgresError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: common.ErrNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "startup_members_startup_id_user_id_key"}, want: common.ErrConflict},
		{name: "foreign key violation", err: &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "startup_members_startup_id_fkey"}, want: common.ErrStaleReference},
		{name: "check violation", err: &pgconn.PgError{Code: pgerrcode.CheckViolation, Message: "bad stage"}, want: common.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapPostgresError(tt.err), tt.want)
		})
	}
}

func TestMapPostgresErrorConflictKeepsConstraintOutOfMessage(t *testing.T) {
	err := mapPostgresError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "startup_members_startup_id_user_id_key"})

	wrapped := fmt.Errorf("user is already a member of this startup: %w", err)
	assert.Equal(t, "user is already a member of this startup: already exists", wrapped.Error())
	assert.True(t, errors.Is(wrapped, common.ErrConflict))
}
