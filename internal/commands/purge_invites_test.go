package commands

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInvitePurger struct {
	mock.Mock
}

func (m *MockInvitePurger) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func TestPurgeInvitesReportsCount(t *testing.T) {
	cutoff := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	purger := new(MockInvitePurger)
	purger.On("DeleteExpired", mock.Anything, cutoff).Return(int64(2), nil)
	var out bytes.Buffer

	require.NoError(t, purgeInvites(context.Background(), &out, purger, cutoff))

	assert.Equal(t, "Deleted 2 expired invite(s) that expired before 2026-09-15T00:00:00Z\n", out.String())
	purger.AssertExpectations(t)
}

func TestPurgeInvitesWrapsFailure(t *testing.T) {
	purger := new(MockInvitePurger)
	purger.On("DeleteExpired", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))
	var out bytes.Buffer

	err := purgeInvites(context.Background(), &out, purger, time.Now())

	assert.ErrorContains(t, err, "failed to purge expired invites")
	assert.Empty(t, out.String())
}
