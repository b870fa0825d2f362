package api

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/auth"
	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rpupo63/transitions-site-backend/models"
	"github.com/rpupo63/transitions-site-backend/services"
)

const adminToken = "good-token"

type fakePortfolio struct {
	category models.Category
	projects []services.ProjectView
	detail   *services.ProjectDetail
}

func (f *fakePortfolio) ListPublished(_ context.Context, category models.Category) ([]services.ProjectView, error) {
	f.category = category
	if category != "" && !category.Valid() {
		return nil, errs.NewInvalidFieldError("category", "must be Transitions or Organization")
	}
	return f.projects, nil
}

func (f *fakePortfolio) GetPublishedBySlug(_ context.Context, slug string) (*services.ProjectDetail, error) {
	if f.detail == nil || f.detail.Slug != slug {
		return nil, errs.NewNotFound("project")
	}
	return f.detail, nil
}

func (f *fakePortfolio) Testimonials(context.Context) (*services.TestimonialsView, error) {
	return &services.TestimonialsView{Regular: []models.Testimonial{}}, nil
}

type fakeProjects struct {
	created services.ProjectInput
	deleted uuid.UUID
}

func (f *fakeProjects) List(context.Context) ([]models.Project, error) {
	return []models.Project{{ID: uuid.New(), Title: "Draft"}}, nil
}

func (f *fakeProjects) Get(_ context.Context, id uuid.UUID) (*models.Project, error) {
	return nil, errs.NewNotFound("project")
}

func (f *fakeProjects) Create(_ context.Context, in services.ProjectInput) (*models.Project, error) {
	f.created = in
	return &models.Project{ID: uuid.New(), Title: in.Title, Slug: services.Slugify(in.Title)}, nil
}

func (f *fakeProjects) Update(_ context.Context, id uuid.UUID, in services.ProjectInput) (*models.Project, error) {
	return &models.Project{ID: id, Title: in.Title}, nil
}

func (f *fakeProjects) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = id
	return nil
}

type uploadCall struct {
	kind        models.MediaKind
	filename    string
	contentType string
	body        string
}

type fakeMedia struct {
	uploads  []uploadCall
	reorder  []uuid.UUID
	mainSet  uuid.UUID
	videoURL string
}

func (f *fakeMedia) AddUpload(_ context.Context, projectID uuid.UUID, kind models.MediaKind, up services.Upload) (*models.MediaItem, error) {
	body, err := io.ReadAll(up.Body)
	if err != nil {
		return nil, err
	}
	f.uploads = append(f.uploads, uploadCall{kind: kind, filename: up.Filename, contentType: up.ContentType, body: string(body)})
	return &models.MediaItem{ID: uuid.New(), ProjectID: projectID, Kind: kind, URL: "https://cdn.test/" + up.Filename}, nil
}

func (f *fakeMedia) AddVideoLink(_ context.Context, projectID uuid.UUID, kind models.MediaKind, url string, isVertical bool) (*models.MediaItem, error) {
	if !kind.IsVideo() {
		return nil, errs.NewInvalidFieldError("kind", "must be a video kind")
	}
	f.videoURL = url
	return &models.MediaItem{ID: uuid.New(), ProjectID: projectID, Kind: kind, URL: url, IsVertical: isVertical}, nil
}

func (f *fakeMedia) SetMain(_ context.Context, id uuid.UUID) (*models.MediaItem, error) {
	f.mainSet = id
	return &models.MediaItem{ID: id, IsMain: true}, nil
}

func (f *fakeMedia) Delete(context.Context, uuid.UUID) error { return nil }

func (f *fakeMedia) Reorder(_ context.Context, _ uuid.UUID, _ models.MediaKind, ids []uuid.UUID) error {
	f.reorder = ids
	return nil
}

func (f *fakeMedia) UpdateDetails(_ context.Context, id uuid.UUID, alt, caption string, isVertical bool) (*models.MediaItem, error) {
	return &models.MediaItem{ID: id, Alt: alt, Caption: caption, IsVertical: isVertical}, nil
}

type fakeTestimonials struct{}

func (fakeTestimonials) List(context.Context) ([]models.Testimonial, error) { return nil, nil }
func (fakeTestimonials) Create(_ context.Context, in services.TestimonialInput) (*models.Testimonial, error) {
	return &models.Testimonial{ID: uuid.New(), Quote: in.Quote}, nil
}
func (fakeTestimonials) Update(_ context.Context, id uuid.UUID, in services.TestimonialInput) (*models.Testimonial, error) {
	return &models.Testimonial{ID: id, Quote: in.Quote}, nil
}
func (fakeTestimonials) ToggleFeatured(_ context.Context, id uuid.UUID) (*models.Testimonial, error) {
	return &models.Testimonial{ID: id, Featured: true}, nil
}
func (fakeTestimonials) Delete(context.Context, uuid.UUID) error { return nil }

type fakeContact struct {
	got services.Inquiry
	err error
}

func (f *fakeContact) Submit(_ context.Context, in services.Inquiry) error {
	f.got = in
	return f.err
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type fakeProvider struct {
	mu         sync.Mutex
	redirect   string
	signedOut  []string
	broadcast  *auth.Broadcaster
	subscribed chan struct{}
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{broadcast: auth.NewBroadcaster(), subscribed: make(chan struct{}, 1)}
}

func (p *fakeProvider) session() *auth.Session {
	return &auth.Session{AccessToken: adminToken, UserID: "admin-1", Email: "owner@example.com", ExpiresAt: time.Now().Add(time.Hour)}
}

func (p *fakeProvider) GetSession(_ context.Context, token string) (*auth.Session, error) {
	if token != adminToken {
		return nil, errs.NewInvalidTokenError(nil)
	}
	return p.session(), nil
}

func (p *fakeProvider) SignInWithPassword(_ context.Context, email, password string) (*auth.Session, error) {
	if password != "hunter22" {
		return nil, errs.NewInvalidCredentialsError()
	}
	return p.session(), nil
}

func (p *fakeProvider) SignInWithMagicLink(_ context.Context, email, redirectURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.redirect = redirectURL
	return nil
}

func (p *fakeProvider) VerifyMagicLink(_ context.Context, token string) (*auth.Session, error) {
	if token != "link" {
		return nil, errs.NewMagicLinkError(errs.ErrMagicLinkInvalid)
	}
	return p.session(), nil
}

func (p *fakeProvider) SignOut(_ context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signedOut = append(p.signedOut, token)
	return nil
}

func (p *fakeProvider) Subscribe() (<-chan auth.SessionEvent, func()) {
	ch, unsubscribe := p.broadcast.Subscribe()
	p.subscribed <- struct{}{}
	return ch, unsubscribe
}
