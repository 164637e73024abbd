package models

import (
	"time"

	"github.com/google/uuid"
)

type Prospect struct {
	ID             uuid.UUID         `json:"id" db:"id"`
	StartupID      uuid.UUID         `json:"startup_id" db:"startup_id"`
	CompanyName    string            `json:"company_name" db:"company_name"`
	ContactName    *string           `json:"contact_name" db:"contact_name"`
	ContactEmail   *string           `json:"contact_email" db:"contact_email"`
	Industry       *string           `json:"industry" db:"industry"`
	Function       *ProspectFunction `json:"function" db:"function"`
	EstimatedValue *float64          `json:"estimated_value" db:"estimated_value"`
	Stage          ProspectStage     `json:"stage" db:"stage"`
	Notes          *string           `json:"notes" db:"notes"`
	NextAction     *string           `json:"next_action" db:"next_action"`
	NextActionDue  *time.Time        `json:"next_action_due" db:"next_action_due"`
	MeetingDate    *time.Time        `json:"meeting_date" db:"meeting_date"`
	OwnerID        *uuid.UUID        `json:"owner_id" db:"owner_id"`
	Owner          *ProfileSummary   `json:"owner,omitempty" db:"-"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// ProspectInput carries the editable fields of a prospect.
type ProspectInput struct {
	CompanyName    string            `json:"company_name"`
	ContactName    *string           `json:"contact_name"`
	ContactEmail   *string           `json:"contact_email"`
	Industry       *string           `json:"industry"`
	Function       *ProspectFunction `json:"function"`
	EstimatedValue *float64          `json:"estimated_value"`
	Stage          ProspectStage     `json:"stage"`
	Notes          *string           `json:"notes"`
	NextAction     *string           `json:"next_action"`
	NextActionDue  *time.Time        `json:"next_action_due"`
	MeetingDate    *time.Time        `json:"meeting_date"`
	OwnerID        *uuid.UUID        `json:"owner_id"`
}

// ProspectFilter narrows the pipeline listing.
type ProspectFilter struct {
	Search   string           `json:"search,omitempty"`
	Stage    ProspectStage    `json:"stage,omitempty"`
	Function ProspectFunction `json:"function,omitempty"`
}

// StageCount is one bar of the dashboard stage breakdown.
type StageCount struct {
	Stage ProspectStage `json:"stage"`
	Count int           `json:"count"`
}
