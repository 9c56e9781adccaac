package handler

import (
	"errors"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sangkips/restopos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/restopos-api/internal/presentation/http/middleware"
	"github.com/sangkips/restopos-api/internal/presentation/http/validation"
	"github.com/sangkips/restopos-api/pkg/apperror"
	"github.com/sangkips/restopos-api/pkg/pagination"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserEmail extracts the user email from the Gin context
func GetUserEmail(c *gin.Context) string {
	return c.GetString(middleware.UserEmailKey)
}

// GetUserName extracts the user display name from the Gin context
func GetUserName(c *gin.Context) string {
	return c.GetString(middleware.UserNameKey)
}

// requireUser writes a 401 and returns false when no user is signed in
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return uuid.Nil, false
	}
	return *userID, true
}

// paramID parses a UUID path parameter, writing a 400 when it is malformed
func paramID(c *gin.Context, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+resource+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads page and page_size from the query string
func pageParams(c *gin.Context) pagination.Params {
	var p pagination.Params
	_ = c.ShouldBindQuery(&p)
	p.Normalize()
	return p
}

// bindError reports a failed bind. Field validation failures become a 422
// listing every field; a bad schedule time keeps its dedicated 400.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		response.BadRequest(c, "Invalid request body")
		return
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == validation.TagTimeOfDay {
			response.BadRequest(c, validation.Message(fe))
			return
		}
		fields = append(fields, apperror.FieldError{Field: fe.Field(), Message: validation.Message(fe)})
	}
	response.ValidationError(c, fields)
}

// clientIP prefers the first X-Forwarded-For hop
func clientIP(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	return c.ClientIP()
}
