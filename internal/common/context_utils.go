package common

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"dealtracker/internal/models"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
	ProfileKey   contextKey = "profile"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// ActionResult is the typed outcome of an admin-gated action.
type ActionResult struct {
	Success bool       `json:"success,omitempty"`
	UserID  *uuid.UUID `json:"user_id,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

// SendActionError sends the {error} shape used by admin-gated actions.
func SendActionError(c echo.Context, status int, message string) error {
	return c.JSON(status, ActionResult{Error: message})
}

// ValidateUUID parses a required UUID field.
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, NewValidationError(fieldName, "is required")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, NewValidationError(fieldName, "must be a valid UUID")
	}
	return id, nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fieldName, "is required")
	}
	return nil
}

// ValidateOptionalString trims an optional field in place and bounds its length.
func ValidateOptionalString(value *string, fieldName string, maxLength int) error {
	if value != nil {
		*value = strings.TrimSpace(*value)
		if len(*value) > maxLength {
			return NewValidationError(fieldName, fmt.Sprintf("cannot exceed %d characters", maxLength))
		}
	}
	return nil
}

// ValidateEmail checks that value is a bare email address.
func ValidateEmail(value, fieldName string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return NewValidationError(fieldName, "is required")
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return NewValidationError(fieldName, "must be a valid email address")
	}
	return nil
}

// ValidatePassword enforces the minimum password policy of the identity service.
func ValidatePassword(value string) error {
	if len(value) < 6 {
		return NewValidationError("password", "must be at least 6 characters")
	}
	return nil
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SafeFloat64 safely handles float64 pointer operations
func SafeFloat64(f *float64) float64 {
	if f == nil {
		return 0.0
	}
	return *f
}

const maxSearchQueryBytes = 100

// SanitizeSearchQuery escapes LIKE wildcards and bounds the query length.
func SanitizeSearchQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}
	if len(query) > maxSearchQueryBytes {
		cut := maxSearchQueryBytes
		for cut > 0 && !utf8.RuneStart(query[cut]) {
			cut--
		}
		query = query[:cut]
	}
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(query)
}

// ValidatePaginationParams validates pagination parameters
func ValidatePaginationParams(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	if offset > 1000000 {
		return 0, 0, NewValidationError("offset", "cannot exceed 1,000,000")
	}
	return limit, offset, nil
}

// ValidateDateRange validates date ranges to prevent abuse
func ValidateDateRange(startDate, endDate time.Time) error {
	if endDate.Before(startDate) {
		return NewValidationError("to", "cannot be before from")
	}
	if endDate.Sub(startDate) > time.Hour*24*366*2 {
		return NewValidationError("to", "date range cannot exceed two years")
	}
	return nil
}

// WithPrincipal stores the resolved principal on the context.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// GetPrincipalFromContext extracts the principal from the request context
func GetPrincipalFromContext(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*models.Principal)
	return p, ok && p != nil
}

// WithProfile stores the loaded profile on the context.
func WithProfile(ctx context.Context, p *models.Profile) context.Context {
	return context.WithValue(ctx, ProfileKey, p)
}

// GetProfileFromContext extracts the profile from the request context
func GetProfileFromContext(ctx context.Context) (*models.Profile, bool) {
	p, ok := ctx.Value(ProfileKey).(*models.Profile)
	return p, ok && p != nil
}
