package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog is an append-only record of a mutation inside a startup.
type ActivityLog struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	StartupID   uuid.UUID       `json:"startup_id" db:"startup_id"`
	ProspectID  *uuid.UUID      `json:"prospect_id" db:"prospect_id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	ActionType  ActivityType    `json:"action_type" db:"action_type"`
	Description string          `json:"description" db:"description"`
	Metadata    map[string]any  `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	User        *ProfileSummary `json:"user,omitempty" db:"-"`
	Prospect    *string         `json:"prospect_company,omitempty" db:"-"`
}

// ActivityFilter holds filter criteria for activity listings.
type ActivityFilter struct {
	ProspectID *uuid.UUID
	ActionType ActivityType
	Limit      int
	Offset     int
}

type Invite struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	StartupID   uuid.UUID  `json:"startup_id" db:"startup_id"`
	StartupName string     `json:"startup_name,omitempty" db:"-"`
	Role        MemberRole `json:"role" db:"role"`
	Token       string     `json:"token" db:"token"`
	InvitedBy   uuid.UUID  `json:"invited_by" db:"invited_by"`
	ExpiresAt   time.Time  `json:"expires_at" db:"expires_at"`
	AcceptedAt  *time.Time `json:"accepted_at" db:"accepted_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Usable reports whether the invite can still be selected or accepted.
func (i *Invite) Usable(now time.Time) bool {
	return i.AcceptedAt == nil && now.Before(i.ExpiresAt)
}

// DashboardSummary aggregates the landing page figures for one startup.
type DashboardSummary struct {
	TotalProspects   int            `json:"total_prospects"`
	PipelineValue    float64        `json:"pipeline_value"`
	WonDeals         int            `json:"won_deals"`
	StageCounts      []StageCount   `json:"stage_counts"`
	RecentActivity   []*ActivityLog `json:"recent_activity"`
	UpcomingMeetings []*Prospect    `json:"upcoming_meetings"`
	Warnings         []string       `json:"warnings,omitempty"`
}
