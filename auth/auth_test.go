package auth

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rpupo63/transitions-site-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fastParams = &Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type fakeAdmins struct {
	mu    sync.Mutex
	users map[string]*models.AdminUser
}

func newFakeAdmins() *fakeAdmins {
	return &fakeAdmins{users: map[string]*models.AdminUser{}}
}

func (f *fakeAdmins) FindByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[strings.ToLower(email)]; ok {
		c := *u
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAdmins) FindByID(_ context.Context, id uuid.UUID) (*models.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAdmins) Upsert(_ context.Context, email, hash string) (*models.AdminUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(email)
	u, ok := f.users[email]
	if !ok {
		u = &models.AdminUser{ID: uuid.New(), Email: email}
		f.users[email] = u
	}
	u.PasswordHash = hash
	c := *u
	return &c, nil
}

type fakeLinks struct {
	links map[string]*models.MagicLink
}

func (f *fakeLinks) Add(_ context.Context, l *models.MagicLink) error {
	f.links[l.Token] = l
	return nil
}

func (f *fakeLinks) Consume(_ context.Context, token string, now time.Time) (*models.MagicLink, error) {
	l, ok := f.links[token]
	switch {
	case !ok:
		return nil, errs.NewMagicLinkError(errs.ErrMagicLinkInvalid)
	case l.UsedAt != nil:
		return nil, errs.NewMagicLinkError(errs.ErrMagicLinkUsed)
	case !now.Before(l.ExpiresAt):
		return nil, errs.NewMagicLinkError(errs.ErrMagicLinkExpired)
	}
	l.UsedAt = &now
	return l, nil
}

type sentLink struct{ email, link string }

type fakeSender struct{ sent []sentLink }

func (f *fakeSender) SendMagicLink(_ context.Context, email, link string) error {
	f.sent = append(f.sent, sentLink{email, link})
	return nil
}

type fixture struct {
	provider *LocalProvider
	admins   *fakeAdmins
	links    *fakeLinks
	sender   *fakeSender
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	tokens, err := NewTokenIssuer([]byte(strings.Repeat("k", 32)), time.Hour)
	require.NoError(t, err)
	f := fixture{admins: newFakeAdmins(), links: &fakeLinks{links: map[string]*models.MagicLink{}}, sender: &fakeSender{}}
	hasher := NewArgon2Hasher(fastParams)
	f.provider = NewLocalProvider(LocalOptions{
		Admins: f.admins, Links: f.links, Sender: f.sender,
		Hasher: hasher, Tokens: tokens,
		Redirects: NewRedirectAllowlist("https://site.example/admin", "http://localhost:5173"),
	})
	require.NoError(t, EnsureAdmin(context.Background(), f.admins, hasher, "owner@example.com", "correct horse"))
	return f
}

func TestArgon2Hasher(t *testing.T) {
	h := NewArgon2Hasher(fastParams)
	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	assert.NoError(t, h.Compare(hash, "s3cret"))
	assert.ErrorIs(t, h.Compare(hash, "wrong"), ErrPasswordMismatch)
	assert.ErrorIs(t, h.Compare("plain", "s3cret"), ErrInvalidHash)

	other, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salts differ")
}

func TestTokenIssuer(t *testing.T) {
	_, err := NewTokenIssuer([]byte("short"), time.Hour)
	assert.Error(t, err)

	issuer, err := NewTokenIssuer([]byte(strings.Repeat("x", 32)), time.Hour)
	require.NoError(t, err)
	user := models.AdminUser{ID: uuid.New(), Email: "owner@example.com"}

	token, claims, err := issuer.Issue(user)
	require.NoError(t, err)
	parsed, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), parsed.Subject)
	assert.Equal(t, claims.ID, parsed.ID)
	assert.Equal(t, "owner@example.com", parsed.Email)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Parse(none)
	assert.Error(t, err)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestLocalProvider_Password(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	events, cancel := f.provider.Subscribe()
	defer cancel()

	_, err := f.provider.SignInWithPassword(ctx, "owner@example.com", "nope")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	_, err = f.provider.SignInWithPassword(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)

	session, err := f.provider.SignInWithPassword(ctx, "OWNER@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", session.Email)
	assert.Equal(t, SignedIn, (<-events).Type)

	got, err := f.provider.GetSession(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)

	require.NoError(t, f.provider.SignOut(ctx, session.AccessToken))
	assert.Equal(t, SignedOut, (<-events).Type)
	_, err = f.provider.GetSession(ctx, session.AccessToken)
	assert.True(t, errs.IsInvalidTokenError(err))

	require.NoError(t, f.provider.SignOut(ctx, session.AccessToken))
	require.NoError(t, f.provider.SignOut(ctx, "garbage"))
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %v", ev)
	default:
	}

	_, err = f.provider.GetSession(ctx, "")
	assert.ErrorIs(t, err, errs.ErrMissingToken)
}

func TestLocalProvider_MagicLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.provider.SignInWithMagicLink(ctx, "stranger@example.com", "https://site.example/admin"))
	assert.Empty(t, f.sender.sent)

	err := f.provider.SignInWithMagicLink(ctx, "owner@example.com", "/admin")
	assert.True(t, errs.IsInvalidFieldError(err))

	require.NoError(t, f.provider.SignInWithMagicLink(ctx, "owner@example.com", "https://site.example/admin"))
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "owner@example.com", f.sender.sent[0].email)

	link, err := url.Parse(f.sender.sent[0].link)
	require.NoError(t, err)
	assert.Equal(t, "/admin", link.Path)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	session, err := f.provider.VerifyMagicLink(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", session.Email)

	_, err = f.provider.VerifyMagicLink(ctx, token)
	assert.ErrorIs(t, err, errs.ErrMagicLinkUsed)

	_, err = f.provider.VerifyMagicLink(ctx, "unknown")
	assert.ErrorIs(t, err, errs.ErrMagicLinkInvalid)
}

func TestLocalProvider_MagicLinkExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.provider.SignInWithMagicLink(ctx, "owner@example.com", "https://site.example/admin"))
	link, _ := url.Parse(f.sender.sent[0].link)

	f.provider.now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	_, err := f.provider.VerifyMagicLink(ctx, link.Query().Get("token"))
	assert.ErrorIs(t, err, errs.ErrMagicLinkExpired)
}

func TestLocalProvider_MagicLinkForeignRedirect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, redirect := range []string{
		"https://attacker.example/steal",
		"https://site.example.attacker.example/admin",
		"http://site.example/admin",
		"https://site.example:8443/admin",
	} {
		err := f.provider.SignInWithMagicLink(ctx, "owner@example.com", redirect)
		assert.True(t, errs.IsInvalidFieldError(err), redirect)
	}
	assert.Empty(t, f.sender.sent)
	assert.Empty(t, f.links.links)

	require.NoError(t, f.provider.SignInWithMagicLink(ctx, "owner@example.com", "http://localhost:5173/admin?next=/projects"))
	require.Len(t, f.sender.sent, 1)
}

func TestRedirectAllowlist(t *testing.T) {
	a := NewRedirectAllowlist("HTTPS://Site.Example:443/admin", "not a url", "http://localhost:5173")

	u, err := a.Check("https://site.example/admin/verify")
	require.NoError(t, err)
	assert.Equal(t, "/admin/verify", u.Path)

	_, err = a.Check("http://localhost:5173/")
	assert.NoError(t, err)
	_, err = a.Check("http://localhost:5174/")
	assert.True(t, errs.IsInvalidFieldError(err))
	_, err = a.Check("//site.example/admin")
	assert.True(t, errs.IsInvalidFieldError(err))

	_, err = NewRedirectAllowlist().Check("https://site.example/admin")
	assert.True(t, errs.IsInvalidFieldError(err))
}

func TestBroadcaster(t *testing.T) {
	b := NewBroadcaster()
	a, cancelA := b.Subscribe()
	c, cancelC := b.Subscribe()
	assert.Equal(t, 2, b.Subscribers())

	b.Publish(SessionEvent{Type: SignedIn, Email: "owner@example.com"})
	evA := <-a
	evC := <-c
	assert.Equal(t, SignedIn, evA.Type)
	assert.False(t, evC.At.IsZero())

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, b.Subscribers())

	for i := 0; i < subscriberBuffer+4; i++ {
		b.Publish(SessionEvent{Type: SignedOut})
	}
	assert.Len(t, c, subscriberBuffer)
	cancelC()
	assert.Equal(t, 0, b.Subscribers())
}
