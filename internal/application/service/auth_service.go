package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sangkips/restopos-api/pkg/apperror"
	"github.com/sangkips/restopos-api/pkg/oauth"
	"github.com/sangkips/restopos-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

const (
	providerLocal  = "local"
	providerGoogle = "google"
)

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo      repository.UserRepository
	tokenRepo     repository.RefreshTokenRepository
	jwtManager    *utils.JWTManager
	google        *oauth.GoogleSignIn
	refreshExpiry time.Duration
	now           func() time.Time
	log           logrus.FieldLogger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	jwtManager *utils.JWTManager,
	google *oauth.GoogleSignIn,
	refreshExpiry time.Duration,
	log logrus.FieldLogger,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		tokenRepo:     tokenRepo,
		jwtManager:    jwtManager,
		google:        google,
		refreshExpiry: refreshExpiry,
		now:           time.Now,
		log:           log,
	}
}

// AuthOutput is returned by every operation that issues tokens
type AuthOutput struct {
	User            *entity.User
	AccessToken     string
	AccessExpiresAt time.Time
	RefreshToken    string
}

// SignupInput represents the signup input
type SignupInput struct {
	Name     string
	Email    string
	Password string
	IP       string
}

// Signup creates a local account and signs it in
func (s *AuthService) Signup(ctx context.Context, input *SignupInput) (*AuthOutput, error) {
	email := normalizeEmail(input.Email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewBadRequestError("Email already exists")
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, apperror.NewInternalError("Failed to hash password", err)
	}

	user := &entity.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Password: hashed,
		Provider: providerLocal,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issue(ctx, user, input.IP)
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
	IP       string
}

// Login authenticates a user and returns tokens. Stale inactive refresh
// tokens of the user are purged on the way.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" {
		return nil, apperror.ErrInvalidCredentials
	}
	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled
	}

	now := s.now()
	if _, err := s.tokenRepo.DeleteInactiveForUser(ctx, user.ID, now, now.Add(-s.refreshExpiry)); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to purge inactive refresh tokens")
	}

	return s.issue(ctx, user, input.IP)
}

// Refresh exchanges an active refresh token for a new pair. The old token is
// revoked and points at its replacement.
func (s *AuthService) Refresh(ctx context.Context, token, ip string) (*AuthOutput, error) {
	old, err := s.tokenRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if old == nil || !old.IsActive(now) {
		return nil, apperror.NewBadRequestError("Invalid or expired refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, old.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, apperror.NewBadRequestError("Invalid or expired refresh token")
	}

	replacement, err := s.newRefreshToken(user, ip, now)
	if err != nil {
		return nil, err
	}
	old.RevokedAt = &now
	old.RevokedByIP = &ip
	old.ReplacedByToken = &replacement.Token
	if err := s.tokenRepo.Rotate(ctx, old, replacement); err != nil {
		return nil, err
	}

	access, expiresAt, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, apperror.NewInternalError("Failed to generate access token", err)
	}
	return &AuthOutput{
		User:            user,
		AccessToken:     access,
		AccessExpiresAt: expiresAt,
		RefreshToken:    replacement.Token,
	}, nil
}

// Revoke deactivates a refresh token
func (s *AuthService) Revoke(ctx context.Context, token, ip string) error {
	rt, err := s.tokenRepo.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	now := s.now()
	if rt == nil || !rt.IsActive(now) {
		return apperror.NewBadRequestError("Token is already inactive")
	}

	rt.RevokedAt = &now
	rt.RevokedByIP = &ip
	return s.tokenRepo.Update(ctx, rt)
}

// GetProfile returns the signed-in user
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	found, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return found, nil
}

// GoogleAuthURL returns the Google consent URL and the state to bind to the browser
func (s *AuthService) GoogleAuthURL() (string, string, error) {
	url, state, err := s.google.AuthURL()
	if errors.Is(err, oauth.ErrNotConfigured) {
		return "", "", apperror.NewBadRequestError("Google sign-in is not configured")
	}
	if err != nil {
		return "", "", apperror.NewInternalError("Failed to start Google sign-in", err)
	}
	return url, state, nil
}

// GoogleCallback completes Google sign-in, creating the account on first use
func (s *AuthService) GoogleCallback(ctx context.Context, state, code, ip string) (*AuthOutput, error) {
	if err := s.google.VerifyState(state); err != nil {
		return nil, apperror.NewBadRequestError("Invalid OAuth state")
	}

	profile, err := s.google.Exchange(ctx, code)
	switch {
	case errors.Is(err, oauth.ErrNotConfigured):
		return nil, apperror.NewBadRequestError("Google sign-in is not configured")
	case errors.Is(err, oauth.ErrEmailNotProven):
		return nil, apperror.NewBadRequestError("Google account email is not verified")
	case err != nil:
		return nil, apperror.NewAppError(http.StatusBadGateway, "Google sign-in failed")
	}

	email := normalizeEmail(profile.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &entity.User{
			Name:       profile.Name,
			Email:      email,
			Provider:   providerGoogle,
			ProviderID: &profile.ID,
			IsActive:   true,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	} else if user.ProviderID == nil {
		user.ProviderID = &profile.ID
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountDisabled
	}

	return s.issue(ctx, user, ip)
}

func (s *AuthService) issue(ctx context.Context, user *entity.User, ip string) (*AuthOutput, error) {
	access, expiresAt, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, apperror.NewInternalError("Failed to generate access token", err)
	}

	rt, err := s.newRefreshToken(user, ip, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.Create(ctx, rt); err != nil {
		return nil, err
	}

	return &AuthOutput{
		User:            user,
		AccessToken:     access,
		AccessExpiresAt: expiresAt,
		RefreshToken:    rt.Token,
	}, nil
}

func (s *AuthService) newRefreshToken(user *entity.User, ip string, now time.Time) (*entity.RefreshToken, error) {
	token, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, apperror.NewInternalError("Failed to generate refresh token", err)
	}
	return &entity.RefreshToken{
		UserID:      user.ID,
		Token:       token,
		ExpiresAt:   now.Add(s.refreshExpiry),
		CreatedAt:   now,
		CreatedByIP: ip,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
