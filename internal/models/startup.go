package models

import (
	"time"

	"github.com/google/uuid"
)

// Startup is a tenant. All pipeline data is owned by exactly one startup.
type Startup struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Category    *string   `json:"category" db:"category"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type Membership struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	StartupID uuid.UUID  `json:"startup_id" db:"startup_id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Role      MemberRole `json:"role" db:"role"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// MembershipDetail is a membership with its startup name resolved.
type MembershipDetail struct {
	StartupID   uuid.UUID  `json:"startup_id"`
	StartupName string     `json:"startup_name"`
	Role        MemberRole `json:"role"`
}
