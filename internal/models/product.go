package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	StartupID   uuid.UUID `json:"startup_id" db:"startup_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Pricing     *string   `json:"pricing" db:"pricing"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type SalesScript struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	StartupID uuid.UUID     `json:"startup_id" db:"startup_id"`
	Title     string        `json:"title" db:"title"`
	Content   string        `json:"content" db:"content"`
	Channel   ScriptChannel `json:"channel" db:"channel"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

// ScriptFilter narrows the sales script listing.
type ScriptFilter struct {
	Search  string        `json:"search,omitempty"`
	Channel ScriptChannel `json:"channel,omitempty"`
}
