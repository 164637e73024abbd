package models

import (
	"time"

	"github.com/google/uuid"
)

// Principal is an authenticated identity as issued by the identity service.
type Principal struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Account is the identity-service record behind a principal.
type Account struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	Email            string     `json:"email" db:"email"`
	PasswordHash     string     `json:"-" db:"password_hash"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at" db:"email_confirmed_at"`
	LastSignInAt     *time.Time `json:"last_sign_in_at" db:"last_sign_in_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  *string   `json:"full_name" db:"full_name"`
	Role      UserRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == UserRoleAdmin
}

// DisplayName falls back to the email when no full name is set.
func (p *Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Email
}

// ProfileSummary is the embedded owner/actor shape returned with other rows.
type ProfileSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName *string   `json:"full_name"`
	Email    string    `json:"email"`
}

// TeamMember is a non-admin profile with the startups it belongs to.
type TeamMember struct {
	Profile
	LastSignInAt *time.Time         `json:"last_sign_in_at"`
	Memberships  []MembershipDetail `json:"memberships"`
}

// Session is an issued sign-in session.
type Session struct {
	Token     string    `json:"token"`
	TokenID   string    `json:"token_id"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
