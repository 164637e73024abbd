package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/tenancy"
)

type ProspectHandlersTestSuite struct {
	suite.Suite
	prospects *MockProspectService
	scope     tenancy.Scope
	startupID uuid.UUID
	e         *echo.Echo
}

func (suite *ProspectHandlersTestSuite) SetupTest() {
	suite.prospects = new(MockProspectService)
	suite.startupID = uuid.New()
	suite.scope = adminScope(adminProfile(), suite.startupID)
	suite.e = newTestServer(adminProfile(), suite.scope)

	h := NewProspectHandlers(suite.prospects)
	suite.e.GET("/prospects", h.ListProspects)
	suite.e.POST("/prospects", h.CreateProspect)
	suite.e.GET("/prospects/:id", h.GetProspect)
	suite.e.DELETE("/prospects/:id", h.DeleteProspect)
	suite.e.PUT("/prospects/:id/stage", h.ChangeStage)
	suite.e.PUT("/prospects/:id/owner", h.AssignOwner)
	suite.e.POST("/prospects/:id/revive", h.Revive)
	suite.e.GET("/meetings", h.ListMeetings)
}

func (suite *ProspectHandlersTestSuite) TearDownTest() {
	suite.prospects.AssertExpectations(suite.T())
}

func TestProspectHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(ProspectHandlersTestSuite))
}

func (suite *ProspectHandlersTestSuite) TestListPassesFilterThrough() {
	want := models.ProspectFilter{Search: "acme", Stage: models.StageIntroMade, Function: models.ProspectFunction("sales")}
	suite.prospects.On("List", mock.Anything, suite.scope, want).
		Return([]*models.Prospect{{ID: uuid.New(), StartupID: suite.startupID, CompanyName: "Acme"}}, nil)

	rec := doJSON(suite.e, http.MethodGet, "/prospects?search=acme&stage=intro_made&function=sales", "")

	suite.Equal(http.StatusOK, rec.Code)
	var got []models.Prospect
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	suite.Len(got, 1)
	suite.Equal("Acme", got[0].CompanyName)
}

func (suite *ProspectHandlersTestSuite) TestCreateReturns201() {
	created := &models.Prospect{ID: uuid.New(), StartupID: suite.startupID, CompanyName: "Globex", Stage: models.StageNew}
	suite.prospects.On("Create", mock.Anything, suite.scope, mock.MatchedBy(func(in *models.ProspectInput) bool {
		return in.CompanyName == "Globex"
	})).Return(created, nil)

	rec := doJSON(suite.e, http.MethodPost, "/prospects", `{"company_name":"Globex"}`)

	suite.Equal(http.StatusCreated, rec.Code)
	suite.Contains(rec.Body.String(), created.ID.String())
}

func (suite *ProspectHandlersTestSuite) TestCreateValidationErrorIs400() {
	suite.prospects.On("Create", mock.Anything, suite.scope, mock.Anything).
		Return(nil, common.NewValidationError("company_name", "is required"))

	rec := doJSON(suite.e, http.MethodPost, "/prospects", `{"company_name":""}`)

	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Contains(rec.Body.String(), "company_name")
}

func (suite *ProspectHandlersTestSuite) TestMalformedIDIs400() {
	rec := doJSON(suite.e, http.MethodGet, "/prospects/not-a-uuid", "")

	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.prospects.AssertNotCalled(suite.T(), "Get", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ProspectHandlersTestSuite) TestGetWithoutAccessIs403() {
	id := uuid.New()
	suite.prospects.On("Get", mock.Anything, suite.scope, id).
		Return(nil, fmt.Errorf("get prospect: %w", common.ErrAuthorizationDenied))

	rec := doJSON(suite.e, http.MethodGet, "/prospects/"+id.String(), "")

	suite.Equal(http.StatusForbidden, rec.Code)
	suite.JSONEq(`{"error":"You do not have access to this startup"}`, rec.Body.String())
}

func (suite *ProspectHandlersTestSuite) TestGetMissingIs404() {
	id := uuid.New()
	suite.prospects.On("Get", mock.Anything, suite.scope, id).Return(nil, common.ErrNotFound)

	rec := doJSON(suite.e, http.MethodGet, "/prospects/"+id.String(), "")

	suite.Equal(http.StatusNotFound, rec.Code)
}

func (suite *ProspectHandlersTestSuite) TestDeleteReturns204() {
	id := uuid.New()
	suite.prospects.On("Delete", mock.Anything, suite.scope, id).Return(nil)

	rec := doJSON(suite.e, http.MethodDelete, "/prospects/"+id.String(), "")

	suite.Equal(http.StatusNoContent, rec.Code)
}

func (suite *ProspectHandlersTestSuite) TestChangeStageRejectsUnknownStage() {
	rec := doJSON(suite.e, http.MethodPut, "/prospects/"+uuid.NewString()+"/stage", `{"stage":"negotiating"}`)

	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Contains(rec.Body.String(), "stage")
}

func (suite *ProspectHandlersTestSuite) TestChangeStage() {
	id := uuid.New()
	suite.prospects.On("ChangeStage", mock.Anything, suite.scope, id, models.StageClosedWon).Return(nil)

	rec := doJSON(suite.e, http.MethodPut, "/prospects/"+id.String()+"/stage", `{"stage":"closed_won"}`)

	suite.Equal(http.StatusNoContent, rec.Code)
}

func (suite *ProspectHandlersTestSuite) TestAssignOwnerEmptyClearsOwner() {
	id := uuid.New()
	suite.prospects.On("AssignOwner", mock.Anything, suite.scope, id, (*uuid.UUID)(nil)).Return(nil)

	rec := doJSON(suite.e, http.MethodPut, "/prospects/"+id.String()+"/owner", `{"owner_id":""}`)

	suite.Equal(http.StatusNoContent, rec.Code)
}

func (suite *ProspectHandlersTestSuite) TestAssignOwnerParsesID() {
	id, owner := uuid.New(), uuid.New()
	suite.prospects.On("AssignOwner", mock.Anything, suite.scope, id, &owner).Return(nil)

	rec := doJSON(suite.e, http.MethodPut, "/prospects/"+id.String()+"/owner", `{"owner_id":"`+owner.String()+`"}`)

	suite.Equal(http.StatusNoContent, rec.Code)
}

func (suite *ProspectHandlersTestSuite) TestReviveOfOpenProspectIsValidationError() {
	id := uuid.New()
	suite.prospects.On("Revive", mock.Anything, suite.scope, id).
		Return(common.NewValidationError("stage", "only closed-lost prospects can be revived"))

	rec := doJSON(suite.e, http.MethodPost, "/prospects/"+id.String()+"/revive", "")

	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *ProspectHandlersTestSuite) TestMeetingsParsesDateRange() {
	suite.prospects.On("ListMeetings", mock.Anything, suite.scope,
		mock.MatchedBy(func(from *time.Time) bool {
			return from != nil && from.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		}),
		mock.MatchedBy(func(to *time.Time) bool { return to != nil }),
	).Return([]*models.Prospect{}, nil)

	rec := doJSON(suite.e, http.MethodGet, "/meetings?from=2026-01-01&to=2026-01-31T23:59:59Z", "")

	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *ProspectHandlersTestSuite) TestMeetingsRejectsBadDate() {
	rec := doJSON(suite.e, http.MethodGet, "/meetings?from=yesterday", "")

	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.prospects.AssertNotCalled(suite.T(), "ListMeetings", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
