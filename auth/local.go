package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rpupo63/transitions-site-backend/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error)
	Upsert(ctx context.Context, email, passwordHash string) (*models.AdminUser, error)
}

type MagicLinkStore interface {
	Add(ctx context.Context, link *models.MagicLink) error
	Consume(ctx context.Context, token string, now time.Time) (*models.MagicLink, error)
}

// LinkSender delivers a sign-in link to an address
type LinkSender interface {
	SendMagicLink(ctx context.Context, email, link string) error
}

// LocalProvider keeps admins in the application database
type LocalProvider struct {
	admins  AdminStore
	links   MagicLinkStore
	sender  LinkSender
	hasher  *Argon2Hasher
	tokens  *TokenIssuer
	events  *Broadcaster
	linkTTL time.Duration
	allowed RedirectAllowlist
	now     func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

type LocalOptions struct {
	Admins  AdminStore
	Links   MagicLinkStore
	Sender  LinkSender
	Hasher  *Argon2Hasher
	Tokens  *TokenIssuer
	Events  *Broadcaster
	LinkTTL time.Duration
	// Redirects lists the origins sign-in links may return to
	Redirects RedirectAllowlist
}

func NewLocalProvider(opts LocalOptions) *LocalProvider {
	if opts.Hasher == nil {
		opts.Hasher = NewArgon2Hasher(nil)
	}
	if opts.Events == nil {
		opts.Events = NewBroadcaster()
	}
	if opts.LinkTTL <= 0 {
		opts.LinkTTL = 15 * time.Minute
	}
	return &LocalProvider{
		admins:  opts.Admins,
		links:   opts.Links,
		sender:  opts.Sender,
		hasher:  opts.Hasher,
		tokens:  opts.Tokens,
		events:  opts.Events,
		linkTTL: opts.LinkTTL,
		allowed: opts.Redirects,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (p *LocalProvider) GetSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, errs.NewMissingTokenError()
	}
	claims, err := p.tokens.Parse(token)
	if err != nil {
		return nil, errs.NewInvalidTokenError(err)
	}
	if p.isRevoked(claims.ID) {
		return nil, errs.NewInvalidTokenError(errors.New("session signed out"))
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errs.NewInvalidTokenError(err)
	}
	if _, err := p.admins.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewInvalidTokenError(err)
		}
		return nil, errs.NewDatabaseError("find", "admin", err)
	}
	return &Session{
		AccessToken: token,
		UserID:      claims.Subject,
		Email:       claims.Email,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	user, err := p.admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewInvalidCredentialsError()
		}
		return nil, errs.NewDatabaseError("find", "admin", err)
	}
	if user.PasswordHash == "" {
		return nil, errs.NewInvalidCredentialsError()
	}
	if err := p.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, errs.NewInvalidCredentialsError()
	}
	return p.startSession(*user)
}

// SignInWithMagicLink e-mails a single-use link to known admins. Unknown
// addresses succeed without sending anything. The redirect must point at
// an allowed origin.
func (p *LocalProvider) SignInWithMagicLink(ctx context.Context, email, redirectURL string) error {
	target, err := p.allowed.Check(redirectURL)
	if err != nil {
		return err
	}

	user, err := p.admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Info().Str("email", email).Msg("magic link requested for unknown address")
			return nil
		}
		return errs.NewDatabaseError("find", "admin", err)
	}

	token, err := newLinkToken()
	if err != nil {
		return errs.NewInternalErrorWithCause("could not create magic link", err)
	}
	now := p.now()
	if err := p.links.Add(ctx, &models.MagicLink{
		Token:     token,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(p.linkTTL),
	}); err != nil {
		return errs.NewDatabaseError("create", "magic link", err)
	}

	q := target.Query()
	q.Set("token", token)
	target.RawQuery = q.Encode()
	return p.sender.SendMagicLink(ctx, user.Email, target.String())
}

func (p *LocalProvider) VerifyMagicLink(ctx context.Context, token string) (*Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errs.NewMagicLinkError(errs.ErrMagicLinkInvalid)
	}
	link, err := p.links.Consume(ctx, token, p.now())
	if err != nil {
		var apiErr *errs.ApiErr
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, errs.NewDatabaseError("consume", "magic link", err)
	}
	user, err := p.admins.FindByEmail(ctx, link.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewMagicLinkError(errs.ErrMagicLinkInvalid)
		}
		return nil, errs.NewDatabaseError("find", "admin", err)
	}
	return p.startSession(*user)
}

// SignOut revokes the token until it would have expired. Signing out an
// invalid token is a no-op.
func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	claims, err := p.tokens.Parse(token)
	if err != nil {
		return nil
	}

	p.mu.Lock()
	now := p.now()
	for jti, exp := range p.revoked {
		if now.After(exp) {
			delete(p.revoked, jti)
		}
	}
	_, already := p.revoked[claims.ID]
	p.revoked[claims.ID] = claims.ExpiresAt.Time
	p.mu.Unlock()

	if !already {
		p.events.Publish(SessionEvent{Type: SignedOut, Email: claims.Email, At: now})
	}
	return nil
}

func (p *LocalProvider) Subscribe() (<-chan SessionEvent, func()) {
	return p.events.Subscribe()
}

func (p *LocalProvider) startSession(user models.AdminUser) (*Session, error) {
	token, claims, err := p.tokens.Issue(user)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("could not sign session", err)
	}
	p.events.Publish(SessionEvent{Type: SignedIn, Email: user.Email, At: p.now()})
	return &Session{
		AccessToken: token,
		UserID:      user.ID.String(),
		Email:       user.Email,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (p *LocalProvider) isRevoked(jti string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.revoked[jti]
	return ok
}

// EnsureAdmin creates the bootstrap admin or resets its password
func EnsureAdmin(ctx context.Context, admins AdminStore, hasher *Argon2Hasher, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return err
	}
	user, err := admins.Upsert(ctx, email, hash)
	if err != nil {
		return err
	}
	log.Info().Str("email", user.Email).Msg("bootstrap admin ready")
	return nil
}
