package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/services"
	"dealtracker/internal/tenancy"
)

func TestInviteLookupNeverEchoesToken(t *testing.T) {
	invites := new(MockInviteService)
	invites.On("Lookup", mock.Anything, "tok123").Return(&models.Invite{
		ID:        uuid.New(),
		Email:     "new@example.com",
		Token:     "tok123",
		Role:      models.MemberRoleTeam,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	h := NewInviteHandlers(invites)
	e := newTestServer(nil, tenancy.Scope{})
	e.GET("/invites/:token", h.Lookup)

	rec := doJSON(e, http.MethodGet, "/invites/tok123", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "tok123")
	assert.Contains(t, rec.Body.String(), "new@example.com")
	invites.AssertExpectations(t)
}

func TestInviteLookupExpiredIsStale(t *testing.T) {
	invites := new(MockInviteService)
	invites.On("Lookup", mock.Anything, "old").Return(nil, fmt.Errorf("invite expired: %w", common.ErrStaleReference))
	h := NewInviteHandlers(invites)
	e := newTestServer(nil, tenancy.Scope{})
	e.GET("/invites/:token", h.Lookup)

	rec := doJSON(e, http.MethodGet, "/invites/old", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"This link or record is no longer valid"}`, rec.Body.String())
}

func TestInviteAcceptUsesPathToken(t *testing.T) {
	userID := uuid.New()
	invites := new(MockInviteService)
	invites.On("Accept", mock.Anything, &services.AcceptInviteRequest{
		Token:    "tok123",
		Password: "longenough",
		FullName: "Ada",
	}).Return(userID, nil)
	h := NewInviteHandlers(invites)
	e := newTestServer(nil, tenancy.Scope{})
	e.POST("/invites/:token/accept", h.Accept)

	rec := doJSON(e, http.MethodPost, "/invites/tok123/accept", `{"password":"longenough","full_name":"Ada","token":"ignored"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"success":true,"user_id":%q}`, userID), rec.Body.String())
	invites.AssertExpectations(t)
}
