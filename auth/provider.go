// Package auth signs administrators in and out.
package auth

import (
	"context"
	"time"
)

// Session is an authenticated admin session
type Session struct {
	AccessToken string    `json:"access_token"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Provider is the sign-in backend the admin console talks to
type Provider interface {
	GetSession(ctx context.Context, token string) (*Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignInWithMagicLink(ctx context.Context, email, redirectURL string) error
	VerifyMagicLink(ctx context.Context, token string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	Subscribe() (<-chan SessionEvent, func())
}
