package oauth

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestStateRoundTrip(t *testing.T) {
	g := NewGoogleSignIn(Config{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb", StateSecret: "k"})

	url, state, err := g.AuthURL()
	if err != nil {
		t.Fatalf("auth url: %v", err)
	}
	if !strings.Contains(url, "accounts.google.com") {
		t.Fatalf("unexpected url %s", url)
	}
	if err := g.VerifyState(state); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := g.VerifyState(state + "x"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if err := g.VerifyState("garbage"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestNotConfigured(t *testing.T) {
	g := NewGoogleSignIn(Config{})
	if g.Enabled() {
		t.Fatal("expected disabled")
	}
	if _, _, err := g.AuthURL(); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := g.Exchange(context.Background(), "code"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
