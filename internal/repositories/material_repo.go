package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"dealtracker/internal/models"
)

type MaterialRepository interface {
	Create(ctx context.Context, m *models.Material) error
	GetByID(ctx context.Context, startupID, id uuid.UUID) (*models.Material, error)
	// List returns the startup's materials, newest first, each with its versions newest first.
	List(ctx context.Context, startupID uuid.UUID) ([]*models.Material, error)
	Delete(ctx context.Context, startupID, id uuid.UUID) error

	NextVersionNumber(ctx context.Context, materialID uuid.UUID) (int, error)
	CreateVersion(ctx context.Context, v *models.MaterialVersion) error
	ListVersions(ctx context.Context, materialID uuid.UUID) ([]*models.MaterialVersion, error)
	// GetVersion resolves a version only if its material belongs to startupID.
	GetVersion(ctx context.Context, startupID, versionID uuid.UUID) (*models.MaterialVersion, error)
}

type materialRepo struct {
	db DB
}

func NewMaterialRepo(db DB) MaterialRepository {
	return &materialRepo{db: db}
}

func (r *materialRepo) Create(ctx context.Context, m *models.Material) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = time.Now()

	query := `
		INSERT INTO materials (id, startup_id, name, type, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, m.ID, m.StartupID, m.Name, m.Type, m.Notes, m.CreatedAt)
	return mapPostgresError(err)
}

func (r *materialRepo) GetByID(ctx context.Context, startupID, id uuid.UUID) (*models.Material, error) {
	m := &models.Material{}
	query := `
		SELECT id, startup_id, name, type, notes, created_at
		FROM materials
		WHERE startup_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, startupID, id).Scan(&m.ID, &m.StartupID, &m.Name, &m.Type, &m.Notes, &m.CreatedAt)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return m, nil
}

func (r *materialRepo) List(ctx context.Context, startupID uuid.UUID) ([]*models.Material, error) {
	query := `
		SELECT id, startup_id, name, type, notes, created_at
		FROM materials
		WHERE startup_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, startupID)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var materials []*models.Material
	byID := make(map[uuid.UUID]*models.Material)
	var ids []uuid.UUID
	for rows.Next() {
		m := &models.Material{}
		if err := rows.Scan(&m.ID, &m.StartupID, &m.Name, &m.Type, &m.Notes, &m.CreatedAt); err != nil {
			return nil, err
		}
		materials = append(materials, m)
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return materials, nil
	}

	versions, err := r.queryVersions(ctx, `
		SELECT id, material_id, version_number, file_path, file_name, uploaded_by, uploaded_at
		FROM material_versions
		WHERE material_id = ANY($1)
		ORDER BY version_number DESC
	`, ids)
	if err != nil {
		return nil, err
	}
	for _, v := range versions {
		if m, ok := byID[v.MaterialID]; ok {
			m.Versions = append(m.Versions, v)
		}
	}
	return materials, nil
}

func (r *materialRepo) Delete(ctx context.Context, startupID, id uuid.UUID) error {
	return execOne(ctx, r.db, `DELETE FROM materials WHERE startup_id = $1 AND id = $2`, startupID, id)
}

func (r *materialRepo) NextVersionNumber(ctx context.Context, materialID uuid.UUID) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(version_number), 0) + 1 FROM material_versions WHERE material_id = $1`
	if err := r.db.QueryRow(ctx, query, materialID).Scan(&next); err != nil {
		return 0, mapPostgresError(err)
	}
	return next, nil
}

func (r *materialRepo) CreateVersion(ctx context.Context, v *models.MaterialVersion) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.UploadedAt = time.Now()

	query := `
		INSERT INTO material_versions (id, material_id, version_number, file_path, file_name, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, v.ID, v.MaterialID, v.VersionNumber, v.FilePath, v.FileName, v.UploadedBy, v.UploadedAt)
	return mapPostgresError(err)
}

func (r *materialRepo) ListVersions(ctx context.Context, materialID uuid.UUID) ([]*models.MaterialVersion, error) {
	return r.queryVersions(ctx, `
		SELECT id, material_id, version_number, file_path, file_name, uploaded_by, uploaded_at
		FROM material_versions
		WHERE material_id = $1
		ORDER BY version_number DESC
	`, materialID)
}

func (r *materialRepo) GetVersion(ctx context.Context, startupID, versionID uuid.UUID) (*models.MaterialVersion, error) {
	v := &models.MaterialVersion{}
	query := `
		SELECT v.id, v.material_id, v.version_number, v.file_path, v.file_name, v.uploaded_by, v.uploaded_at
		FROM material_versions v
		JOIN materials m ON m.id = v.material_id
		WHERE m.startup_id = $1 AND v.id = $2
	`
	err := r.db.QueryRow(ctx, query, startupID, versionID).Scan(
		&v.ID, &v.MaterialID, &v.VersionNumber, &v.FilePath, &v.FileName, &v.UploadedBy, &v.UploadedAt)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return v, nil
}

func (r *materialRepo) queryVersions(ctx context.Context, query string, args ...any) ([]*models.MaterialVersion, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPostgresError(err)
	}
	defer rows.Close()

	var versions []*models.MaterialVersion
	for rows.Next() {
		v := &models.MaterialVersion{}
		if err := rows.Scan(&v.ID, &v.MaterialID, &v.VersionNumber, &v.FilePath, &v.FileName, &v.UploadedBy, &v.UploadedAt); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
