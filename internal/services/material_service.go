package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/repositories"
	"dealtracker/internal/tenancy"
)

// FileUpload is a file received from a client. ContentType is sniffed by the caller.
type FileUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type MaterialInput struct {
	Name  string              `json:"name"`
	Type  models.MaterialType `json:"type"`
	Notes *string             `json:"notes"`
}

// MaterialDownload is an open object stream. The caller closes Body.
type MaterialDownload struct {
	Body        io.ReadCloser
	FileName    string
	ContentType string
	Size        int64
}

type MaterialService interface {
	List(ctx context.Context, scope tenancy.Scope) ([]*models.Material, error)
	Get(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Material, error)
	// Create stores the material and its first version.
	Create(ctx context.Context, scope tenancy.Scope, in *MaterialInput, file *FileUpload) (*models.Material, error)
	// UploadVersion adds version max+1 of an existing material.
	UploadVersion(ctx context.Context, scope tenancy.Scope, materialID uuid.UUID, file *FileUpload) (*models.MaterialVersion, error)
	Download(ctx context.Context, scope tenancy.Scope, versionID uuid.UUID) (*MaterialDownload, error)
	// DownloadURL returns a time-limited direct link to a version the scope can read.
	DownloadURL(ctx context.Context, scope tenancy.Scope, versionID uuid.UUID, expiry time.Duration) (string, error)
	Delete(ctx context.Context, scope tenancy.Scope, id uuid.UUID) error
}

type materialService struct {
	materials repositories.MaterialRepository
	storage   MinioService
	activity  ActivityService
}

func NewMaterialService(materials repositories.MaterialRepository, storage MinioService, activity ActivityService) MaterialService {
	return &materialService{materials: materials, storage: storage, activity: activity}
}

// objectPath is {startup}/{material}/v{n}{ext}.
func objectPath(startupID, materialID uuid.UUID, version int, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("%s/%s/v%d%s", startupID, materialID, version, ext)
}

func validateUpload(file *FileUpload) error {
	if file == nil || file.Reader == nil {
		return common.NewValidationError("file", "is required")
	}
	file.FileName = filepath.Base(strings.TrimSpace(file.FileName))
	if file.FileName == "" || file.FileName == "." || file.FileName == "/" {
		return common.NewValidationError("file", "must have a name")
	}
	if file.Size <= 0 {
		return common.NewValidationError("file", "is empty")
	}
	if file.ContentType == "" {
		file.ContentType = "application/octet-stream"
	}
	return nil
}

func (s *materialService) List(ctx context.Context, scope tenancy.Scope) ([]*models.Material, error) {
	startupID, ok := scope.StartupID()
	if !ok {
		return []*models.Material{}, nil
	}
	return nonNil(s.materials.List(ctx, startupID))
}

func (s *materialService) Get(ctx context.Context, scope tenancy.Scope, id uuid.UUID) (*models.Material, error) {
	startupID, ok := scope.StartupID()
	if !ok {
		return nil, common.ErrNotFound
	}
	m, err := s.materials.GetByID(ctx, startupID, id)
	if err != nil {
		return nil, err
	}
	if m.Versions, err = s.materials.ListVersions(ctx, m.ID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *materialService) Create(ctx context.Context, scope tenancy.Scope, in *MaterialInput, file *FileUpload) (*models.Material, error) {
	startupID, err := writeScope(scope)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := common.ValidateRequiredString(in.Name, "name"); err != nil {
		return nil, err
	}
	if in.Type == "" {
		in.Type = models.MaterialOther
	}
	if !in.Type.Valid() {
		return nil, common.NewValidationError("type", "is not a material type")
	}
	if err := common.ValidateOptionalString(in.Notes, "notes", 5000); err != nil {
		return nil, err
	}
	if err := validateUpload(file); err != nil {
		return nil, err
	}

	material := &models.Material{StartupID: startupID, Name: in.Name, Type: in.Type, Notes: in.Notes}
	if err := s.materials.Create(ctx, material); err != nil {
		return nil, err
	}
	version, err := s.storeVersion(ctx, scope, material, file)
	if err != nil {
		// a material without its first version is never left behind
		if rmErr := s.materials.Delete(ctx, startupID, material.ID); rmErr != nil {
			zerolog.Ctx(ctx).Warn().Err(rmErr).Str("material_id", material.ID.String()).Msg("failed to remove material after upload failure")
		}
		return nil, err
	}
	material.Versions = []*models.MaterialVersion{version}
	return material, nil
}

func (s *materialService) UploadVersion(ctx context.Context, scope tenancy.Scope, materialID uuid.UUID, file *FileUpload) (*models.MaterialVersion, error) {
	startupID, err := writeScope(scope)
	if err != nil {
		return nil, err
	}
	if err := validateUpload(file); err != nil {
		return nil, err
	}
	material, err := s.materials.GetByID(ctx, startupID, materialID)
	if err != nil {
		return nil, err
	}
	return s.storeVersion(ctx, scope, material, file)
}

func (s *materialService) storeVersion(ctx context.Context, scope tenancy.Scope, material *models.Material, file *FileUpload) (*models.MaterialVersion, error) {
	next, err := s.materials.NextVersionNumber(ctx, material.ID)
	if err != nil {
		return nil, err
	}

	path := objectPath(material.StartupID, material.ID, next, file.FileName)
	if err := s.storage.Upload(ctx, path, file.Reader, file.Size, file.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store material file: %w", err)
	}

	version := &models.MaterialVersion{
		MaterialID:    material.ID,
		VersionNumber: next,
		FilePath:      path,
		FileName:      file.FileName,
		UploadedBy:    scope.ActorID(),
	}
	if err := s.materials.CreateVersion(ctx, version); err != nil {
		if rmErr := s.storage.Delete(ctx, path); rmErr != nil {
			zerolog.Ctx(ctx).Warn().Err(rmErr).Str("path", path).Msg("failed to remove orphaned material object")
		}
		return nil, err
	}

	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityMaterialUploaded,
		Description: fmt.Sprintf("Uploaded %s (v%d)", material.Name, next),
		Metadata: map[string]any{
			"material_id":    material.ID.String(),
			"version_number": next,
			"file_name":      file.FileName,
		},
	})
	return version, nil
}

func (s *materialService) Download(ctx context.Context, scope tenancy.Scope, versionID uuid.UUID) (*MaterialDownload, error) {
	startupID, ok := scope.StartupID()
	if !ok {
		return nil, common.ErrNotFound
	}
	version, err := s.materials.GetVersion(ctx, startupID, versionID)
	if err != nil {
		return nil, err
	}
	body, info, err := s.storage.Download(ctx, version.FilePath)
	if err != nil {
		return nil, err
	}
	return &MaterialDownload{
		Body:        body,
		FileName:    version.FileName,
		ContentType: info.ContentType,
		Size:        info.Size,
	}, nil
}

func (s *materialService) DownloadURL(ctx context.Context, scope tenancy.Scope, versionID uuid.UUID, expiry time.Duration) (string, error) {
	startupID, ok := scope.StartupID()
	if !ok {
		return "", common.ErrNotFound
	}
	version, err := s.materials.GetVersion(ctx, startupID, versionID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, version.FilePath, expiry)
}

func (s *materialService) Delete(ctx context.Context, scope tenancy.Scope, id uuid.UUID) error {
	startupID, err := writeScope(scope)
	if err != nil {
		return err
	}
	material, err := s.materials.GetByID(ctx, startupID, id)
	if err != nil {
		return err
	}
	versions, err := s.materials.ListVersions(ctx, material.ID)
	if err != nil {
		return err
	}

	logger := zerolog.Ctx(ctx)
	for _, v := range versions {
		if err := s.storage.Delete(ctx, v.FilePath); err != nil && !errors.Is(err, common.ErrNotFound) {
			logger.Warn().Err(err).Str("path", v.FilePath).Msg("failed to remove material object")
		}
	}

	if err := s.materials.Delete(ctx, startupID, id); err != nil {
		return err
	}
	s.activity.Record(ctx, scope, ActivityEntry{
		Type:        models.ActivityMaterialDeleted,
		Description: fmt.Sprintf("Deleted material %s", material.Name),
		Metadata:    map[string]any{"material_id": id.String(), "versions": len(versions)},
	})
	return nil
}
