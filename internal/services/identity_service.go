package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"dealtracker/internal/caching"
	"dealtracker/internal/common"
	"dealtracker/internal/models"
	"dealtracker/internal/repositories"
)

// IdentityService is the identity provider: accounts, passwords and sessions.
type IdentityService interface {
	SignUp(ctx context.Context, email, password string, fullName *string) (*models.Principal, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context, token string) error
	// Resolve maps a session token to its principal or ErrAuthenticationAbsent.
	Resolve(ctx context.Context, token string) (*models.Principal, error)
	// AdminCreateUser provisions a confirmed account out of band and returns its durable id.
	AdminCreateUser(ctx context.Context, email, password string, fullName *string) (uuid.UUID, error)
}

// SessionClaims are the claims carried by a session token.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type IdentityOptions struct {
	JWTSecret  string
	Issuer     string
	SessionTTL time.Duration
	// ExternalKeyfunc verifies tokens from another issuer, typically a JWKS endpoint. Optional.
	ExternalKeyfunc jwt.Keyfunc
}

type identityService struct {
	accounts repositories.AccountRepository
	sessions caching.CacheService
	secret   []byte
	issuer   string
	ttl      time.Duration
	external jwt.Keyfunc
	now      func() time.Time
}

func NewIdentityService(accounts repositories.AccountRepository, sessions caching.CacheService, opts IdentityOptions) IdentityService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	if opts.Issuer == "" {
		opts.Issuer = "dealtracker"
	}
	return &identityService{
		accounts: accounts,
		sessions: sessions,
		secret:   []byte(opts.JWTSecret),
		issuer:   opts.Issuer,
		ttl:      opts.SessionTTL,
		external: opts.ExternalKeyfunc,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *identityService) SignUp(ctx context.Context, email, password string, fullName *string) (*models.Principal, error) {
	id, err := s.createAccount(ctx, email, password, fullName)
	if err != nil {
		return nil, err
	}
	return &models.Principal{ID: id, Email: normalizeEmail(email)}, nil
}

func (s *identityService) AdminCreateUser(ctx context.Context, email, password string, fullName *string) (uuid.UUID, error) {
	return s.createAccount(ctx, email, password, fullName)
}

func (s *identityService) createAccount(ctx context.Context, email, password string, fullName *string) (uuid.UUID, error) {
	email = normalizeEmail(email)
	if err := common.ValidateEmail(email, "email"); err != nil {
		return uuid.Nil, err
	}
	if err := common.ValidatePassword(password); err != nil {
		return uuid.Nil, err
	}
	if err := common.ValidateOptionalString(fullName, "full_name", 200); err != nil {
		return uuid.Nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash password: %w", err)
	}

	confirmed := s.now()
	account := &models.Account{
		Email:            email,
		PasswordHash:     string(hash),
		EmailConfirmedAt: &confirmed,
	}
	if err := s.accounts.CreateWithProfile(ctx, account, fullName); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return uuid.Nil, fmt.Errorf("an account with this email already exists: %w", common.ErrConflict)
		}
		return uuid.Nil, err
	}
	return account.ID, nil
}

func (s *identityService) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", common.ErrAuthenticationAbsent)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", common.ErrAuthenticationAbsent)
	}

	now := s.now()
	tokenID := uuid.NewString()
	claims := SessionClaims{
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   account.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}

	if err := s.sessions.SetSession(ctx, tokenID, account.ID.String(), s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	if err := s.accounts.TouchLastSignIn(ctx, account.ID, now); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", account.ID.String()).Msg("failed to record sign-in time")
	}

	return &models.Session{
		Token:     token,
		TokenID:   tokenID,
		UserID:    account.ID,
		ExpiresAt: now.Add(s.ttl),
	}, nil
}

func (s *identityService) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	if claims.Issuer != s.issuer || claims.ID == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, claims.ID)
}

func (s *identityService) Resolve(ctx context.Context, token string) (*models.Principal, error) {
	if strings.TrimSpace(token) == "" {
		return nil, common.ErrAuthenticationAbsent
	}
	claims, err := s.parse(token)
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("session token rejected")
		return nil, common.ErrAuthenticationAbsent
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, common.ErrAuthenticationAbsent
	}

	if claims.Issuer == s.issuer {
		owner, err := s.sessions.GetSession(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
		if owner != userID.String() {
			return nil, common.ErrAuthenticationAbsent
		}
	}

	return &models.Principal{ID: userID, Email: claims.Email}, nil
}

func (s *identityService) parse(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, s.keyfunc,
		jwt.WithValidMethods([]string{"HS256", "RS256", "ES256"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *identityService) keyfunc(t *jwt.Token) (interface{}, error) {
	claims, ok := t.Claims.(*SessionClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	if claims.Issuer == s.issuer {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return s.secret, nil
	}
	if s.external == nil {
		return nil, fmt.Errorf("unknown token issuer %q", claims.Issuer)
	}
	return s.external(t)
}
