package auth

import (
	"context"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/jwt"

	"github.com/zhfeng1/OVH/internal/domain"
)

// Password bounds in bytes. bcrypt rejects inputs longer than 72 bytes.
const (
	minPasswordBytes = 8
	maxPasswordBytes = 72

	maxNameRunes = 100
)

// Service defines the authentication operations.
type Service interface {
	Login(ctx context.Context, email, password string) (*TokenResponse, error)
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
}

// authService implements Service.
type authService struct {
	jwtSvc      jwt.Service
	userRepo    domain.UserRepository
	tokenExpiry time.Duration
}

// NewService creates a new auth Service.
func NewService(jwtSvc jwt.Service, userRepo domain.UserRepository, tokenExpiry time.Duration) Service {
	return &authService{
		jwtSvc:      jwtSvc,
		userRepo:    userRepo,
		tokenExpiry: tokenExpiry,
	}
}

// Login authenticates an operator by email and password and returns a JWT
// token carrying the operator's role as a claim. Each successful login is
// stamped on the account; the bundle echoes the previous stamp so the
// console can show "last login" on sign-in.
func (s *authService) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		// Don't reveal whether the account exists; always return unauthorized.
		if domain.IsNotFound(err) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	now := time.Now()
	token, err := s.jwtSvc.GenerateToken(
		strconv.FormatUint(uint64(user.ID), 10),
		tokenRoles(user.Role),
		s.tokenExpiry,
	)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to generate token", err)
	}

	// Stamp only once a token was actually issued.
	previous := user.LastLoginAt
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}

	return &TokenResponse{
		Token:         token,
		ExpiresAt:     now.Add(s.tokenExpiry).Unix(),
		Role:          user.Role,
		PreviousLogin: previous,
	}, nil
}

// Register creates a new operator account with the given credentials.
// Self-registered accounts always get the operator role; admins are
// promoted out of band.
func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if err := validateRegisterInput(name, email, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}

	user := domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.UserRoleOperator,
	}

	if err := s.userRepo.Create(ctx, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// Profile resolves a token subject back to the operator account behind it.
// Subjects are the decimal user IDs embedded at login; anything else means
// the token was not ours.
func (s *authService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	id, err := strconv.ParseUint(userID, 10, 32)
	if err != nil || id == 0 {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, uint(id))
	if err != nil {
		if domain.IsNotFound(err) {
			// The account was deleted after the token was issued.
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	return user, nil
}

// normalizeEmail lowercases and trims an email address so lookups and the
// unique index are case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// tokenRoles builds the role claim for a token. Rows created before the
// role column existed have an empty role and get no claim.
func tokenRoles(role string) []string {
	if role == "" {
		return nil
	}
	return []string{role}
}

// validEmailAddress reports whether s is a bare RFC 5322 address without
// a display name.
func validEmailAddress(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Name == "" && addr.Address == s
}

// validateRegisterInput validates registration input. The name is trimmed
// again so the check holds even for callers that skip normalization.
func validateRegisterInput(name, email, password string) error {
	switch n := utf8.RuneCountInString(strings.TrimSpace(name)); {
	case n == 0:
		return domain.NewAppError(domain.CodeValidation, "name is required", nil)
	case n > maxNameRunes:
		return domain.NewAppError(domain.CodeValidation, "name must not exceed 100 characters", nil)
	}
	if email == "" {
		return domain.NewAppError(domain.CodeValidation, "email is required", nil)
	}
	if !validEmailAddress(email) {
		return domain.NewAppError(domain.CodeValidation, "email must be a valid email address", nil)
	}
	switch {
	case len(password) < minPasswordBytes:
		return domain.NewAppError(domain.CodeValidation, "password must be at least 8 characters", nil)
	case len(password) > maxPasswordBytes:
		return domain.NewAppError(domain.CodeValidation, "password must not exceed 72 characters", nil)
	}
	return nil
}
