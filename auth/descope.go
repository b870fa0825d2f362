package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/descope/go-sdk/descope"
	"github.com/descope/go-sdk/descope/client"
	"github.com/descope/go-sdk/descope/sdk"
	"github.com/rpupo63/transitions-site-backend/errs"
)

// DescopeProvider delegates sign-in to a Descope project
type DescopeProvider struct {
	auth    sdk.Authentication
	events  *Broadcaster
	allowed RedirectAllowlist
}

func NewDescopeProvider(projectID string, redirects RedirectAllowlist, events *Broadcaster) (*DescopeProvider, error) {
	if projectID == "" {
		return nil, errs.NewConfigMissingError("AUTH_DESCOPE_PROJECT_ID")
	}
	c, err := client.NewWithConfig(&client.Config{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = NewBroadcaster()
	}
	return &DescopeProvider{auth: c.Auth, events: events, allowed: redirects}, nil
}

func (p *DescopeProvider) GetSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, errs.NewMissingTokenError()
	}
	ok, t, err := p.auth.ValidateSessionWithToken(ctx, token)
	if err != nil || !ok {
		return nil, errs.NewInvalidTokenError(err)
	}
	return sessionFromToken(t), nil
}

func (p *DescopeProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	info, err := p.auth.Password().SignIn(ctx, email, password, nil)
	if err != nil {
		return nil, errs.NewInvalidCredentialsError()
	}
	return p.started(info, email)
}

func (p *DescopeProvider) SignInWithMagicLink(ctx context.Context, email, redirectURL string) error {
	if _, err := p.allowed.Check(redirectURL); err != nil {
		return err
	}
	if _, err := p.auth.MagicLink().SignUpOrIn(ctx, descope.MethodEmail, email, redirectURL, nil); err != nil {
		return errs.NewDeliveryError("descope magic link", err)
	}
	return nil
}

func (p *DescopeProvider) VerifyMagicLink(ctx context.Context, token string) (*Session, error) {
	info, err := p.auth.MagicLink().Verify(ctx, token, nil)
	if err != nil {
		return nil, errs.NewMagicLinkError(errs.ErrMagicLinkInvalid)
	}
	return p.started(info, "")
}

// SignOut revokes the refresh token passed as a bearer credential
func (p *DescopeProvider) SignOut(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if err := p.auth.Logout(req, nil); err != nil {
		return errs.NewInvalidTokenError(err)
	}
	p.events.Publish(SessionEvent{Type: SignedOut})
	return nil
}

func (p *DescopeProvider) Subscribe() (<-chan SessionEvent, func()) {
	return p.events.Subscribe()
}

func (p *DescopeProvider) started(info *descope.AuthenticationInfo, email string) (*Session, error) {
	if info == nil || info.SessionToken == nil {
		return nil, errs.NewInvalidCredentialsError()
	}
	s := sessionFromToken(info.SessionToken)
	if info.User != nil && info.User.Email != "" {
		s.Email = info.User.Email
	}
	if s.Email == "" {
		s.Email = email
	}
	p.events.Publish(SessionEvent{Type: SignedIn, Email: s.Email})
	return s, nil
}

func sessionFromToken(t *descope.Token) *Session {
	s := &Session{
		AccessToken: t.JWT,
		UserID:      t.ID,
		ExpiresAt:   time.Unix(t.Expiration, 0),
	}
	if email, ok := t.Claims["email"].(string); ok {
		s.Email = email
	}
	return s
}
