package models

import (
	"time"

	"github.com/google/uuid"
)

// Material is a piece of sales collateral with a version history.
type Material struct {
	ID        uuid.UUID          `json:"id" db:"id"`
	StartupID uuid.UUID          `json:"startup_id" db:"startup_id"`
	Name      string             `json:"name" db:"name"`
	Type      MaterialType       `json:"type" db:"type"`
	Notes     *string            `json:"notes" db:"notes"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`
	Versions  []*MaterialVersion `json:"versions,omitempty" db:"-"`
}

type MaterialVersion struct {
	ID            uuid.UUID `json:"id" db:"id"`
	MaterialID    uuid.UUID `json:"material_id" db:"material_id"`
	VersionNumber int       `json:"version_number" db:"version_number"`
	FilePath      string    `json:"file_path" db:"file_path"`
	FileName      string    `json:"file_name" db:"file_name"`
	UploadedBy    uuid.UUID `json:"uploaded_by" db:"uploaded_by"`
	UploadedAt    time.Time `json:"uploaded_at" db:"uploaded_at"`
}
