package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/domain/repository"
	"github.com/sirupsen/logrus"
)

// IdempotencyKeyHeader is the HTTP header for idempotency keys
const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
	TTL  time.Duration
	Log  logrus.FieldLogger
	Now  func() time.Time
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a signed-in user repeats a
// request with the same Idempotency-Key. Server errors are not stored so the
// client can retry them.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		userID, ok := c.Get(UserIDKey)
		if !ok {
			c.Next()
			return
		}
		owner, ok := userID.(uuid.UUID)
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		existing, err := config.Repo.GetByKey(ctx, key, owner)
		if err != nil && config.Log != nil {
			config.Log.WithError(err).Warn("idempotency lookup failed")
		}
		if err == nil && existing != nil && !existing.IsExpired(config.Now()) {
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		ikey := &entity.IdempotencyKey{
			Key:          key,
			UserID:       owner,
			Endpoint:     c.Request.Method + " " + c.FullPath(),
			ResponseCode: status,
			ResponseBody: blw.body.String(),
			ExpiresAt:    config.Now().Add(config.TTL),
		}
		if err := config.Repo.Create(ctx, ikey); err != nil && config.Log != nil {
			config.Log.WithError(err).WithField("endpoint", ikey.Endpoint).Warn("failed to store idempotency key")
		}
	}
}
