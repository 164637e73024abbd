package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"dealtracker/internal/models"
	"dealtracker/internal/tenancy"
)

type MockProspectRepository struct {
	mock.Mock
}

func (m *MockProspectRepository) Create(ctx context.Context, p *models.Prospect) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProspectRepository) GetByID(ctx context.Context, startupID, id uuid.UUID) (*models.Prospect, error) {
	args := m.Called(ctx, startupID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Prospect), args.Error(1)
}

func (m *MockProspectRepository) List(ctx context.Context, startupID uuid.UUID, filter models.ProspectFilter) ([]*models.Prospect, error) {
	args := m.Called(ctx, startupID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prospect), args.Error(1)
}

func (m *MockProspectRepository) ListByStage(ctx context.Context, startupID uuid.UUID, stage models.ProspectStage) ([]*models.Prospect, error) {
	args := m.Called(ctx, startupID, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prospect), args.Error(1)
}

func (m *MockProspectRepository) ListMeetings(ctx context.Context, startupID uuid.UUID, from, to *time.Time, limit int) ([]*models.Prospect, error) {
	args := m.Called(ctx, startupID, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Prospect), args.Error(1)
}

func (m *MockProspectRepository) Update(ctx context.Context, p *models.Prospect) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProspectRepository) UpdateStage(ctx context.Context, startupID, id uuid.UUID, stage models.ProspectStage) (string, error) {
	args := m.Called(ctx, startupID, id, stage)
	return args.String(0), args.Error(1)
}

func (m *MockProspectRepository) UpdateOwner(ctx context.Context, startupID, id uuid.UUID, ownerID *uuid.UUID) (string, error) {
	args := m.Called(ctx, startupID, id, ownerID)
	return args.String(0), args.Error(1)
}

func (m *MockProspectRepository) UpdateIndustry(ctx context.Context, startupID, id uuid.UUID, industry *string) (string, error) {
	args := m.Called(ctx, startupID, id, industry)
	return args.String(0), args.Error(1)
}

func (m *MockProspectRepository) Delete(ctx context.Context, startupID, id uuid.UUID) (string, error) {
	args := m.Called(ctx, startupID, id)
	return args.String(0), args.Error(1)
}

func (m *MockProspectRepository) Count(ctx context.Context, startupID uuid.UUID) (int, error) {
	args := m.Called(ctx, startupID)
	return args.Int(0), args.Error(1)
}

func (m *MockProspectRepository) CountByStage(ctx context.Context, startupID uuid.UUID) ([]models.StageCount, error) {
	args := m.Called(ctx, startupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StageCount), args.Error(1)
}

func (m *MockProspectRepository) PipelineValue(ctx context.Context, startupID uuid.UUID) (float64, error) {
	args := m.Called(ctx, startupID)
	return args.Get(0).(float64), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileRepository) UpdateFullName(ctx context.Context, id uuid.UUID, fullName *string) error {
	args := m.Called(ctx, id, fullName)
	return args.Error(0)
}

func (m *MockProfileRepository) ListAssignable(ctx context.Context, startupID uuid.UUID) ([]*models.ProfileSummary, error) {
	args := m.Called(ctx, startupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProfileSummary), args.Error(1)
}

func (m *MockProfileRepository) IsAssignable(ctx context.Context, startupID, profileID uuid.UUID) (bool, error) {
	args := m.Called(ctx, startupID, profileID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileRepository) ListTeam(ctx context.Context) ([]*models.TeamMember, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TeamMember), args.Error(1)
}

type MockStartupRepository struct {
	mock.Mock
}

func (m *MockStartupRepository) Create(ctx context.Context, startup *models.Startup) error {
	args := m.Called(ctx, startup)
	return args.Error(0)
}

func (m *MockStartupRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Startup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Startup), args.Error(1)
}

func (m *MockStartupRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStartupRepository) ListAll(ctx context.Context) ([]*models.Startup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Startup), args.Error(1)
}

func (m *MockStartupRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Startup, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Startup), args.Error(1)
}

type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockMembershipRepository) Exists(ctx context.Context, userID, startupID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, startupID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipRepository) ListDetailsForUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]models.MembershipDetail, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]models.MembershipDetail), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *models.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, startupID, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, startupID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, startupID uuid.UUID) ([]*models.Product, error) {
	args := m.Called(ctx, startupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, p *models.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, startupID, id uuid.UUID) error {
	args := m.Called(ctx, startupID, id)
	return args.Error(0)
}

type MockMaterialRepository struct {
	mock.Mock
}

func (m *MockMaterialRepository) Create(ctx context.Context, material *models.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *MockMaterialRepository) GetByID(ctx context.Context, startupID, id uuid.UUID) (*models.Material, error) {
	args := m.Called(ctx, startupID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Material), args.Error(1)
}

func (m *MockMaterialRepository) List(ctx context.Context, startupID uuid.UUID) ([]*models.Material, error) {
	args := m.Called(ctx, startupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Material), args.Error(1)
}

func (m *MockMaterialRepository) Delete(ctx context.Context, startupID, id uuid.UUID) error {
	args := m.Called(ctx, startupID, id)
	return args.Error(0)
}

func (m *MockMaterialRepository) NextVersionNumber(ctx context.Context, materialID uuid.UUID) (int, error) {
	args := m.Called(ctx, materialID)
	return args.Int(0), args.Error(1)
}

func (m *MockMaterialRepository) CreateVersion(ctx context.Context, v *models.MaterialVersion) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockMaterialRepository) ListVersions(ctx context.Context, materialID uuid.UUID) ([]*models.MaterialVersion, error) {
	args := m.Called(ctx, materialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MaterialVersion), args.Error(1)
}

func (m *MockMaterialRepository) GetVersion(ctx context.Context, startupID, versionID uuid.UUID) (*models.MaterialVersion, error) {
	args := m.Called(ctx, startupID, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaterialVersion), args.Error(1)
}

type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockActivityRepository) List(ctx context.Context, startupID uuid.UUID, filter models.ActivityFilter) ([]*models.ActivityLog, error) {
	args := m.Called(ctx, startupID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ActivityLog), args.Error(1)
}

type MockInviteRepository struct {
	mock.Mock
}

func (m *MockInviteRepository) Create(ctx context.Context, invite *models.Invite) error {
	args := m.Called(ctx, invite)
	return args.Error(0)
}

func (m *MockInviteRepository) ListPending(ctx context.Context, now time.Time) ([]*models.Invite, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invite), args.Error(1)
}

func (m *MockInviteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInviteRepository) GetUsableByToken(ctx context.Context, token string, now time.Time) (*models.Invite, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *MockInviteRepository) Claim(ctx context.Context, token string, now time.Time) (*models.Invite, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invite), args.Error(1)
}

func (m *MockInviteRepository) Release(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInviteRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) CreateWithProfile(ctx context.Context, account *models.Account, fullName *string) error {
	args := m.Called(ctx, account, fullName)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) TouchLastSignIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) SetSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	args := m.Called(ctx, sessionID, userID, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetSession(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) SignUp(ctx context.Context, email, password string, fullName *string) (*models.Principal, error) {
	args := m.Called(ctx, email, password, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Principal), args.Error(1)
}

func (m *MockIdentityService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockIdentityService) SignOut(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockIdentityService) Resolve(ctx context.Context, token string) (*models.Principal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Principal), args.Error(1)
}

func (m *MockIdentityService) AdminCreateUser(ctx context.Context, email, password string, fullName *string) (uuid.UUID, error) {
	args := m.Called(ctx, email, password, fullName)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) Upload(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockMinioService) Download(ctx context.Context, objectName string) (io.ReadCloser, *ObjectInfo, error) {
	args := m.Called(ctx, objectName)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*ObjectInfo), args.Error(2)
}

func (m *MockMinioService) Delete(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

func (m *MockMinioService) GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMinioService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type recordedActivity struct {
	Scope tenancy.Scope
	Entry ActivityEntry
}

// RecordingActivityService keeps appended entries in memory. List goes through the mock.
type RecordingActivityService struct {
	mock.Mock

	mu      sync.Mutex
	records []recordedActivity
}

func (r *RecordingActivityService) Record(ctx context.Context, scope tenancy.Scope, entry ActivityEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, recordedActivity{Scope: scope, Entry: entry})
}

func (r *RecordingActivityService) Records() []recordedActivity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedActivity(nil), r.records...)
}

func (r *RecordingActivityService) List(ctx context.Context, scope tenancy.Scope, filter models.ActivityFilter) ([]*models.ActivityLog, error) {
	args := r.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ActivityLog), args.Error(1)
}

func (r *RecordingActivityService) Close(ctx context.Context) error {
	return nil
}

func founderProfile() *models.Profile {
	return &models.Profile{ID: uuid.New(), Email: "founder@example.com", Role: models.UserRoleFounder}
}

func adminProfile() *models.Profile {
	return &models.Profile{ID: uuid.New(), Email: "admin@example.com", Role: models.UserRoleAdmin}
}

// memberScope resolves a founder scope through a real selector backed by a membership mock.
func memberScope(profile *models.Profile, startupID uuid.UUID) tenancy.Scope {
	memberships := &MockMembershipRepository{}
	memberships.On("Exists", mock.Anything, profile.ID, startupID).Return(true, nil)
	scope, err := tenancy.NewSelector(memberships, &MockStartupRepository{}).Resolve(context.Background(), profile, startupID.String())
	if err != nil {
		panic(err)
	}
	return scope
}

type MockSalesScriptRepository struct {
	mock.Mock
}

func (m *MockSalesScriptRepository) Create(ctx context.Context, s *models.SalesScript) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSalesScriptRepository) GetByID(ctx context.Context, startupID, id uuid.UUID) (*models.SalesScript, error) {
	args := m.Called(ctx, startupID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SalesScript), args.Error(1)
}

func (m *MockSalesScriptRepository) List(ctx context.Context, startupID uuid.UUID, filter models.ScriptFilter) ([]*models.SalesScript, error) {
	args := m.Called(ctx, startupID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.SalesScript), args.Error(1)
}

func (m *MockSalesScriptRepository) Update(ctx context.Context, s *models.SalesScript) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSalesScriptRepository) Delete(ctx context.Context, startupID, id uuid.UUID) error {
	args := m.Called(ctx, startupID, id)
	return args.Error(0)
}
