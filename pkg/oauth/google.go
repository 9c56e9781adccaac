package oauth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	ErrNotConfigured  = errors.New("google sign-in is not configured")
	ErrInvalidState   = errors.New("invalid state parameter")
	ErrExchangeFailed = errors.New("invalid authorization code")
	ErrProfileFailed  = errors.New("failed to get user info from Google")
	ErrEmailNotProven = errors.New("google account email is not verified")
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profile is the subset of the Google user info the API relies on
type Profile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// Config holds the Google OAuth client settings
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	StateSecret  string
}

// GoogleSignIn runs the authorization code flow against Google
type GoogleSignIn struct {
	oauth       *oauth2.Config
	stateSecret []byte
}

// NewGoogleSignIn creates a Google sign-in client
func NewGoogleSignIn(cfg Config) *GoogleSignIn {
	return &GoogleSignIn{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		stateSecret: []byte(cfg.StateSecret),
	}
}

// Enabled reports whether client credentials are present
func (g *GoogleSignIn) Enabled() bool {
	return g.oauth.ClientID != "" && g.oauth.ClientSecret != ""
}

// AuthURL returns the consent URL and the signed state it carries
func (g *GoogleSignIn) AuthURL() (string, string, error) {
	if !g.Enabled() {
		return "", "", ErrNotConfigured
	}
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", "", err
	}
	state := g.sign(base64.RawURLEncoding.EncodeToString(nonce))
	return g.oauth.AuthCodeURL(state), state, nil
}

// VerifyState checks that state was issued by AuthURL
func (g *GoogleSignIn) VerifyState(state string) error {
	nonce, _, ok := strings.Cut(state, ".")
	if !ok || !hmac.Equal([]byte(g.sign(nonce)), []byte(state)) {
		return ErrInvalidState
	}
	return nil
}

func (g *GoogleSignIn) sign(nonce string) string {
	mac := hmac.New(sha256.New, g.stateSecret)
	mac.Write([]byte(nonce))
	return nonce + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Exchange trades the authorization code for the user's Google profile
func (g *GoogleSignIn) Exchange(ctx context.Context, code string) (*Profile, error) {
	if !g.Enabled() {
		return nil, ErrNotConfigured
	}
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	resp, err := g.oauth.Client(ctx, token).Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProfileFailed, resp.StatusCode, body)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFailed, err)
	}
	if !profile.VerifiedEmail {
		return nil, ErrEmailNotProven
	}
	return &profile, nil
}
