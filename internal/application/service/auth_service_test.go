package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/pkg/apperror"
	"github.com/sangkips/restopos-api/pkg/oauth"
	"github.com/sangkips/restopos-api/pkg/utils"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := r.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	u := *user
	r.users[user.ID] = &u
	return nil
}

type fakeTokenRepo struct {
	tokens      map[string]*entity.RefreshToken
	purgeCutoff time.Time
	expiredCut  time.Time
}

func (r *fakeTokenRepo) Create(ctx context.Context, token *entity.RefreshToken) error {
	t := *token
	r.tokens[token.Token] = &t
	return nil
}

func (r *fakeTokenRepo) GetByToken(ctx context.Context, token string) (*entity.RefreshToken, error) {
	if t, ok := r.tokens[token]; ok {
		c := *t
		return &c, nil
	}
	return nil, nil
}

func (r *fakeTokenRepo) Update(ctx context.Context, token *entity.RefreshToken) error {
	t := *token
	r.tokens[token.Token] = &t
	return nil
}

func (r *fakeTokenRepo) Rotate(ctx context.Context, old, replacement *entity.RefreshToken) error {
	_ = r.Update(ctx, old)
	return r.Create(ctx, replacement)
}

func (r *fakeTokenRepo) DeleteInactiveForUser(ctx context.Context, userID uuid.UUID, now, cutoff time.Time) (int64, error) {
	r.purgeCutoff = cutoff
	var n int64
	for k, t := range r.tokens {
		if t.UserID == userID && !t.IsActive(now) && t.CreatedAt.Before(cutoff) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

func (r *fakeTokenRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	r.expiredCut = cutoff
	var n int64
	for k, t := range r.tokens {
		if t.ExpiresAt.Before(cutoff) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

const refreshExpiry = 7 * 24 * time.Hour

func newAuthFixture() (*AuthService, *fakeUserRepo, *fakeTokenRepo) {
	users := &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
	tokens := &fakeTokenRepo{tokens: make(map[string]*entity.RefreshToken)}
	jwt := utils.NewJWTManager("test-secret", "restopos-test", 15*time.Minute)
	google := oauth.NewGoogleSignIn(oauth.Config{StateSecret: "state-secret"})
	return NewAuthService(users, tokens, jwt, google, refreshExpiry, testLogger()), users, tokens
}

func signupAlice(t *testing.T, svc *AuthService) *AuthOutput {
	t.Helper()
	out, err := svc.Signup(context.Background(), &SignupInput{
		Name:     "Alice",
		Email:    " Alice@Example.com ",
		Password: "s3cret-pass",
		IP:       "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	return out
}

func TestSignupAndLogin(t *testing.T) {
	svc, _, tokens := newAuthFixture()
	ctx := context.Background()

	out := signupAlice(t, svc)
	if out.User.Email != "alice@example.com" || out.AccessToken == "" || out.RefreshToken == "" {
		t.Fatalf("signup output = %+v", out)
	}
	if tokens.tokens[out.RefreshToken].CreatedByIP != "10.0.0.1" {
		t.Fatal("refresh token must record the client ip")
	}

	_, err := svc.Signup(ctx, &SignupInput{Name: "Again", Email: "alice@example.com", Password: "x"})
	appErr := apperror.GetAppError(err)
	if err == nil || appErr.Code != http.StatusBadRequest || appErr.Message != "Email already exists" {
		t.Fatalf("duplicate signup: %v", err)
	}

	login, err := svc.Login(ctx, &LoginInput{Email: "ALICE@example.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != out.User.ID {
		t.Fatal("login returned another user")
	}
	if tokens.purgeCutoff.IsZero() {
		t.Fatal("login must purge stale tokens")
	}

	_, err = svc.Login(ctx, &LoginInput{Email: "alice@example.com", Password: "wrong"})
	appErr = apperror.GetAppError(err)
	if err == nil || appErr.Code != http.StatusUnauthorized || appErr.Message != "Invalid email or password" {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := svc.Login(ctx, &LoginInput{Email: "nobody@example.com", Password: "x"}); apperror.GetAppError(err).Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, tokens := newAuthFixture()
	ctx := context.Background()
	out := signupAlice(t, svc)

	refreshed, err := svc.Refresh(ctx, out.RefreshToken, "10.0.0.2")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.RefreshToken == out.RefreshToken {
		t.Fatal("refresh must issue a new token")
	}

	old := tokens.tokens[out.RefreshToken]
	if old.RevokedAt == nil || old.RevokedByIP == nil || *old.RevokedByIP != "10.0.0.2" {
		t.Fatalf("old token not revoked: %+v", old)
	}
	if old.ReplacedByToken == nil || *old.ReplacedByToken != refreshed.RefreshToken {
		t.Fatal("old token must point at its replacement")
	}

	_, err = svc.Refresh(ctx, out.RefreshToken, "10.0.0.2")
	appErr := apperror.GetAppError(err)
	if err == nil || appErr.Code != http.StatusBadRequest || appErr.Message != "Invalid or expired refresh token" {
		t.Fatalf("reused token: %v", err)
	}
	if _, err := svc.Refresh(ctx, "unknown", ""); err == nil {
		t.Fatal("unknown token must be rejected")
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	svc, _, _ := newAuthFixture()
	out := signupAlice(t, svc)

	svc.now = func() time.Time { return time.Now().Add(refreshExpiry + time.Minute) }
	if _, err := svc.Refresh(context.Background(), out.RefreshToken, ""); apperror.GetAppError(err).Code != http.StatusBadRequest {
		t.Fatalf("expired token: %v", err)
	}
}

func TestRevoke(t *testing.T) {
	svc, _, tokens := newAuthFixture()
	ctx := context.Background()
	out := signupAlice(t, svc)

	if err := svc.Revoke(ctx, out.RefreshToken, "10.0.0.3"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if tokens.tokens[out.RefreshToken].RevokedAt == nil {
		t.Fatal("token not revoked")
	}

	err := svc.Revoke(ctx, out.RefreshToken, "10.0.0.3")
	appErr := apperror.GetAppError(err)
	if err == nil || appErr.Message != "Token is already inactive" {
		t.Fatalf("second revoke: %v", err)
	}
}

func TestGoogleNotConfigured(t *testing.T) {
	svc, _, _ := newAuthFixture()

	if _, _, err := svc.GoogleAuthURL(); apperror.GetAppError(err).Code != http.StatusBadRequest {
		t.Fatalf("GoogleAuthURL: %v", err)
	}
	if _, err := svc.GoogleCallback(context.Background(), "forged.state", "code", ""); apperror.GetAppError(err).Code != http.StatusBadRequest {
		t.Fatalf("GoogleCallback: %v", err)
	}
}

func TestHousekeepingRunOnce(t *testing.T) {
	tokens := &fakeTokenRepo{tokens: make(map[string]*entity.RefreshToken)}
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	tokens.tokens["old"] = &entity.RefreshToken{Token: "old", ExpiresAt: now.Add(-30 * 24 * time.Hour)}
	tokens.tokens["recent"] = &entity.RefreshToken{Token: "recent", ExpiresAt: now.Add(-time.Hour)}
	keys := &fakeIdempotencyRepo{}

	h := NewHousekeepingService(tokens, keys, refreshExpiry, testLogger())
	h.now = func() time.Time { return now }
	h.RunOnce(context.Background())

	if _, ok := tokens.tokens["old"]; ok {
		t.Fatal("token expired beyond retention must be purged")
	}
	if _, ok := tokens.tokens["recent"]; !ok {
		t.Fatal("recently expired token is kept for tracing")
	}
	if !keys.purgedAt.Equal(now) {
		t.Fatalf("idempotency purge at %s", keys.purgedAt)
	}
}

type fakeIdempotencyRepo struct {
	purgedAt time.Time
}

func (r *fakeIdempotencyRepo) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	return nil, nil
}

func (r *fakeIdempotencyRepo) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return nil
}

func (r *fakeIdempotencyRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.purgedAt = now
	return 0, nil
}
