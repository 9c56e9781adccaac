package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/restopos-api/internal/application/service"
	"github.com/sangkips/restopos-api/internal/domain/entity"
	"github.com/sangkips/restopos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/restopos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/restopos-api/pkg/apperror"
)

const oauthStateCookie = "oauth_state"

// OAuthRedirects are the frontend pages the Google callback lands on
type OAuthRedirects struct {
	SuccessURL string
	ErrorURL   string
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	redirects   OAuthRedirects
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, redirects OAuthRedirects) *AuthHandler {
	return &AuthHandler{authService: authService, redirects: redirects}
}

func userView(u *entity.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"provider":   u.Provider,
		"created_at": u.CreatedAt,
	}
}

func tokenView(out *service.AuthOutput) gin.H {
	return gin.H{
		"user":          userView(out.User),
		"access_token":  out.AccessToken,
		"expires_at":    out.AccessExpiresAt,
		"refresh_token": out.RefreshToken,
		"token_type":    "Bearer",
	}
}

// Signup handles account creation
// @Summary Signup
// @Description Create an account and return tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.SignupRequest true "Signup data"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req request.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	output, err := h.authService.Signup(c.Request.Context(), &service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IP:       clientIP(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Signup successful", tokenView(output))
}

// Login handles user login
// @Summary Login
// @Description Authenticate user and return tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Login credentials"
// @Success 200 {object} response.APIResponse
// @Failure 401 {object} response.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	output, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       clientIP(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Login successful", tokenView(output))
}

// RefreshToken rotates a refresh token
// @Summary Refresh Token
// @Description Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	output, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken, clientIP(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Token refreshed successfully", tokenView(output))
}

// RevokeToken revokes a refresh token
// @Summary Revoke Token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /auth/revoke-token [post]
func (h *AuthHandler) RevokeToken(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.authService.Revoke(c.Request.Context(), req.RefreshToken, clientIP(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Token revoked", nil)
}

// GetProfile handles fetching current user profile
// @Summary Get Profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := h.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Profile retrieved successfully", gin.H{"user": userView(user)})
}

// GoogleAuth redirects to the Google consent page
// @Summary Google Sign-In
// @Tags auth
// @Success 307
// @Router /auth/google [get]
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	authURL, state, err := h.authService.GoogleAuthURL()
	if err != nil {
		response.Error(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback completes Google sign-in and hands the tokens to the frontend
// @Summary Google Sign-In Callback
// @Tags auth
// @Param state query string true "OAuth state"
// @Param code query string true "Authorization code"
// @Success 307
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	if cookie, err := c.Cookie(oauthStateCookie); err == nil && cookie != state {
		h.googleFailed(c, apperror.NewBadRequestError("Invalid OAuth state"))
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", c.Request.TLS != nil, true)

	if reason := c.Query("error"); reason != "" {
		h.googleFailed(c, apperror.NewBadRequestError("Google sign-in was cancelled"))
		return
	}

	output, err := h.authService.GoogleCallback(c.Request.Context(), state, c.Query("code"), clientIP(c))
	if err != nil {
		h.googleFailed(c, err)
		return
	}

	if h.redirects.SuccessURL == "" {
		response.OK(c, "Login successful", tokenView(output))
		return
	}
	values := url.Values{}
	values.Set("access_token", output.AccessToken)
	values.Set("refresh_token", output.RefreshToken)
	c.Redirect(http.StatusTemporaryRedirect, withQuery(h.redirects.SuccessURL, values))
}

func (h *AuthHandler) googleFailed(c *gin.Context, err error) {
	if h.redirects.ErrorURL == "" {
		response.Error(c, err)
		return
	}
	values := url.Values{}
	values.Set("error", apperror.GetAppError(err).Message)
	c.Redirect(http.StatusTemporaryRedirect, withQuery(h.redirects.ErrorURL, values))
}

func withQuery(base string, values url.Values) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	for k, v := range values {
		q[k] = v
	}
	u.RawQuery = q.Encode()
	return u.String()
}
