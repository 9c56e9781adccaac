package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware(t *testing.T) {
	jwt := utils.NewJWTManager("secret", "restopos-test", time.Minute)
	userID := uuid.New()
	token, _, err := jwt.GenerateAccessToken(userID, "owner@example.com", "Owner")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	router := gin.New()
	router.GET("/me", AuthMiddleware(jwt), func(c *gin.Context) {
		c.String(http.StatusOK, "%s %s %s", c.GetString(UserEmailKey), c.GetString(UserNameKey), c.MustGet(UserIDKey).(uuid.UUID))
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.status == http.StatusOK && w.Body.String() != "owner@example.com Owner "+userID.String() {
				t.Fatalf("body = %q", w.Body.String())
			}
		})
	}
}

type memoryKeys struct {
	mu   sync.Mutex
	keys map[string]entity.IdempotencyKey
}

func (m *memoryKeys) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if k, ok := m.keys[userID.String()+key]; ok {
		return &k, nil
	}
	return nil, nil
}

func (m *memoryKeys) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[ikey.UserID.String()+ikey.Key] = *ikey
	return nil
}

func (m *memoryKeys) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func TestIdempotencyReplaysResponse(t *testing.T) {
	now := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)
	keys := &memoryKeys{keys: map[string]entity.IdempotencyKey{}}
	owner := uuid.New()
	calls := 0

	router := gin.New()
	router.POST("/bills",
		func(c *gin.Context) { c.Set(UserIDKey, owner) },
		Idempotency(IdempotencyConfig{Repo: keys, TTL: time.Hour, Now: func() time.Time { return now }}),
		func(c *gin.Context) {
			calls++
			c.JSON(http.StatusCreated, gin.H{"token_number": calls})
		},
	)

	post := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/bills", strings.NewReader("{}"))
		if key != "" {
			req.Header.Set(IdempotencyKeyHeader, key)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := post("abc")
	second := post("abc")
	if calls != 1 {
		t.Fatalf("handler ran %d times", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Fatalf("replay = %d %q", second.Code, second.Body.String())
	}
	if second.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Fatal("replayed response must be flagged")
	}

	post("")
	if calls != 2 {
		t.Fatal("requests without a key are not deduplicated")
	}

	// past the ttl the key is reused
	now = now.Add(2 * time.Hour)
	post("abc")
	if calls != 3 {
		t.Fatal("expired key must not replay")
	}
}

func TestRateLimiterPerUser(t *testing.T) {
	rl := NewUserRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	})
	defer rl.Stop()

	alice, bob := uuid.New(), uuid.New()
	router := gin.New()
	router.GET("/ping",
		func(c *gin.Context) {
			if c.GetHeader("X-User") == "bob" {
				c.Set(UserIDKey, bob)
			} else {
				c.Set(UserIDKey, alice)
			}
		},
		rl.Middleware(),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	get := func(user string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := get("alice"); code != http.StatusOK {
			t.Fatalf("request %d = %d", i, code)
		}
	}
	if code := get("alice"); code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d", code)
	}
	if code := get("bob"); code != http.StatusOK {
		t.Fatalf("other user limited: %d", code)
	}
}

func TestRateLimiterConfigFor(t *testing.T) {
	cfg := RateLimiterConfigFor(100, time.Minute)
	if cfg.BurstSize != 100 || cfg.RequestsPerSecond < 1.66 || cfg.RequestsPerSecond > 1.67 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if RateLimiterConfigFor(0, time.Minute) != DefaultRateLimiterConfig() {
		t.Fatal("zero requests falls back to defaults")
	}
}
