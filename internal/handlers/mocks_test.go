package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/services"
	"dealtracker/internal/tenancy"
)

type MockProspectService struct {
	mock.Mock
}

func (m *MockProspectService) List(ctx context.Context, scope tenancy.Scope, filter models.ProspectFilter) ([]*models.Prospect, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prospect), args.Error(1)
}

func (m *MockProspectService) Get(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Prospect, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prospect), args.Error(1)
}

func (m *MockProspectService) Create(ctx context.Context, scope tenancy.Scope, in *models.ProspectInput) (*models.Prospect, error) {
	args := m.Called(ctx, scope, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prospect), args.Error(1)
}

func (m *MockProspectService) Update(ctx context.Context, scope tenancy.Scope, id uuid.UUID, in *models.ProspectInput) (*models.Prospect, error) {
	args := m.Called(ctx, scope, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prospect), args.Error(1)
}

func (m *MockProspectService) Delete(ctx context.Context, scope tenancy.Scope, id uuid.UUID) error {
	return m.Called(ctx, scope, id).Error(0)
}

func (m *MockProspectService) ChangeStage(ctx context.Context, scope tenancy.Scope, id uuid.UUID, stage models.ProspectStage) error {
	return m.Called(ctx, scope, id, stage).Error(0)
}

func (m *MockProspectService) AssignOwner(ctx context.Context, scope tenancy.Scope, id uuid.UUID, ownerID *uuid.UUID) error {
	return m.Called(ctx, scope, id, ownerID).Error(0)
}

func (m *MockProspectService) SetIndustry(ctx context.Context, scope tenancy.Scope, id uuid.UUID, industry string) error {
	return m.Called(ctx, scope, id, industry).Error(0)
}

func (m *MockProspectService) ListDeadLeads(ctx context.Context, scope tenancy.Scope) ([]*models.Prospect, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]*models.Prospect), args.Error(1)
}

func (m *MockProspectService) Revive(ctx context.Context, scope tenancy.Scope, id uuid.UUID) error {
	return m.Called(ctx, scope, id).Error(0)
}

func (m *MockProspectService) ListMeetings(ctx context.Context, scope tenancy.Scope, from, to *time.Time) ([]*models.Prospect, error) {
	args := m.Called(ctx, scope, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prospect), args.Error(1)
}

type MockTenantService struct {
	mock.Mock
}

func (m *MockTenantService) ListAll(ctx context.Context, admin tenancy.AdminScope) ([]*models.Startup, error) {
	args := m.Called(ctx, admin)
	return args.Get(0).([]*models.Startup), args.Error(1)
}

func (m *MockTenantService) Create(ctx context.Context, admin tenancy.AdminScope, req *services.CreateStartupRequest) (*models.Startup, error) {
	args := m.Called(ctx, admin, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Startup), args.Error(1)
}

func (m *MockTenantService) AddMember(ctx context.Context, admin tenancy.AdminScope, req *services.AddMemberRequest) (*models.Membership, error) {
	args := m.Called(ctx, admin, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func (m *MockTenantService) CreateUserWithPassword(ctx context.Context, admin tenancy.AdminScope, req *services.CreateUserRequest) (uuid.UUID, error) {
	args := m.Called(ctx, admin, req)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type MockInviteService struct {
	mock.Mock
}

func (m *MockInviteService) Create(ctx context.Context, admin tenancy.AdminScope, req *services.CreateInviteRequest) (*models.Invite, error) {
	args := m.Called(ctx, admin, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *MockInviteService) ListPending(ctx context.Context, admin tenancy.AdminScope) ([]*models.Invite, error) {
	args := m.Called(ctx, admin)
	return args.Get(0).([]*models.Invite), args.Error(1)
}

func (m *MockInviteService) Delete(ctx context.Context, admin tenancy.AdminScope, id uuid.UUID) error {
	return m.Called(ctx, admin, id).Error(0)
}

func (m *MockInviteService) Lookup(ctx context.Context, token string) (*models.Invite, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *MockInviteService) Accept(ctx context.Context, req *services.AcceptInviteRequest) (uuid.UUID, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type MockMaterialService struct {
	mock.Mock
}

func (m *MockMaterialService) List(ctx context.Context, scope tenancy.Scope) ([]*models.Material, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]*models.Material), args.Error(1)
}

func (m *MockMaterialService) Get(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Material, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Material), args.Error(1)
}

func (m *MockMaterialService) Create(ctx context.Context, scope tenancy.Scope, in *services.MaterialInput, file *services.FileUpload) (*models.Material, error) {
	args := m.Called(ctx, scope, in, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Material), args.Error(1)
}

func (m *MockMaterialService) UploadVersion(ctx context.Context, scope tenancy.Scope, materialID uuid.UUID, file *services.FileUpload) (*models.MaterialVersion, error) {
	args := m.Called(ctx, scope, materialID, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaterialVersion), args.Error(1)
}

func (m *MockMaterialService) Download(ctx context.Context, scope tenancy.Scope, versionID uuid.UUID) (*services.MaterialDownload, error) {
	args := m.Called(ctx, scope, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.MaterialDownload), args.Error(1)
}

func (m *MockMaterialService) DownloadURL(ctx context.Context, scope tenancy.Scope, versionID uuid.UUID, expiry time.Duration) (string, error) {
	args := m.Called(ctx, scope, versionID, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMaterialService) Delete(ctx context.Context, scope tenancy.Scope, id uuid.UUID) error {
	return m.Called(ctx, scope, id).Error(0)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Summary(ctx context.Context, scope tenancy.Scope) *models.DashboardSummary {
	return m.Called(ctx, scope).Get(0).(*models.DashboardSummary)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func founderProfile() *models.Profile {
	return &models.Profile{ID: uuid.New(), Email: "founder@example.com", Role: models.UserRoleFounder}
}

func adminProfile() *models.Profile {
	return &models.Profile{ID: uuid.New(), Email: "admin@example.com", Role: models.UserRoleAdmin}
}

// adminScope returns a resolved scope for startupID acting as admin.
func adminScope(admin *models.Profile, startupID uuid.UUID) tenancy.Scope {
	grant, err := tenancy.RequireAdmin(admin)
	if err != nil {
		panic(err)
	}
	return grant.ScopeFor(startupID)
}

// newTestServer returns an echo instance whose requests carry profile and scope,
// as the session and tenant middleware would leave them.
func newTestServer(profile *models.Profile, scope tenancy.Scope) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if profile != nil {
				ctx = common.WithPrincipal(ctx, &models.Principal{ID: profile.ID, Email: profile.Email})
				ctx = common.WithProfile(ctx, profile)
			}
			ctx = tenancy.WithScope(ctx, scope)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	})
	return e
}

func doRequest(e *echo.Echo, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	return doRequest(e, method, target, reader, echo.MIMEApplicationJSON)
}

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Load(ctx context.Context, principal *models.Principal) (*models.Profile, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) UpdateDisplayName(ctx context.Context, profile *models.Profile, fullName string) (*models.Profile, error) {
	args := m.Called(ctx, profile, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) ListAssignableUsers(ctx context.Context, scope tenancy.Scope) ([]*models.ProfileSummary, error) {
	args := m.Called(ctx, scope)
	return args.Get(0).([]*models.ProfileSummary), args.Error(1)
}

func (m *MockProfileService) ListTeamMembers(ctx context.Context, admin tenancy.AdminScope) ([]*models.TeamMember, error) {
	args := m.Called(ctx, admin)
	return args.Get(0).([]*models.TeamMember), args.Error(1)
}

// memberships is a fixed membership table for building a real Selector.
type memberships map[uuid.UUID][]*models.Startup

func (m memberships) Exists(_ context.Context, userID, startupID uuid.UUID) (bool, error) {
	for _, s := range m[userID] {
		if s.ID == startupID {
			return true, nil
		}
	}
	return false, nil
}

func (m memberships) ListAll(context.Context) ([]*models.Startup, error) {
	var all []*models.Startup
	for _, startups := range m {
		all = append(all, startups...)
	}
	return all, nil
}

func (m memberships) ListForUser(_ context.Context, userID uuid.UUID) ([]*models.Startup, error) {
	return m[userID], nil
}
