package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/cache"
	"github.com/rpupo63/transitions-site-backend/database"
	"github.com/rpupo63/transitions-site-backend/events"
	"github.com/rpupo63/transitions-site-backend/models"
	"gorm.io/gorm"
)

type fakeProjects struct {
	mu       sync.Mutex
	projects []models.Project
	media    map[uuid.UUID][]string
}

func (f *fakeProjects) FindAll(context.Context) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Project(nil), f.projects...), nil
}

func (f *fakeProjects) FindPublished(_ context.Context, category models.Category) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Project
	for _, p := range f.projects {
		if p.IsPublished && (category == "" || p.Category == category) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjects) FindByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		if p.ID == id {
			c := p
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProjects) FindBySlug(_ context.Context, slug string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		if p.Slug == slug {
			c := p
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProjects) SlugExists(_ context.Context, slug string, except uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.projects {
		if p.Slug == slug && p.ID != except {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProjects) Add(_ context.Context, p *models.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = uuid.New()
	f.projects = append(f.projects, *p)
	return nil
}

func (f *fakeProjects) Update(_ context.Context, p *models.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID == p.ID {
			f.projects[i] = *p
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeProjects) Delete(_ context.Context, id uuid.UUID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID == id {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return f.media[id], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeMedia struct {
	mu      sync.Mutex
	items   []models.MediaItem
	addErr  error
	fetches int
}

func (f *fakeMedia) FindByProject(_ context.Context, projectID uuid.UUID) ([]models.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	var out []models.MediaItem
	for _, m := range f.items {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMedia) FindByID(_ context.Context, id uuid.UUID) (*models.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.items {
		if m.ID == id {
			c := m
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMedia) FindByURL(_ context.Context, projectID uuid.UUID, kind models.MediaKind, url string) (*models.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.items {
		if m.ProjectID == projectID && m.Kind == kind && m.URL == url {
			c := m
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMedia) CountByKind(_ context.Context, projectID uuid.UUID, kind models.MediaKind) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.items {
		if m.ProjectID == projectID && m.Kind == kind {
			n++
		}
	}
	return n, nil
}

func (f *fakeMedia) Add(_ context.Context, item *models.MediaItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeMedia) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeMedia) SetMain(_ context.Context, id uuid.UUID) (*models.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var target *models.MediaItem
	for i := range f.items {
		if f.items[i].ID == id {
			target = &f.items[i]
		}
	}
	if target == nil {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range f.items {
		if f.items[i].ProjectID == target.ProjectID && f.items[i].Kind == target.Kind {
			f.items[i].IsMain = f.items[i].ID == id
		}
	}
	c := *target
	return &c, nil
}

func (f *fakeMedia) Reorder(_ context.Context, projectID uuid.UUID, kind models.MediaKind, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.items {
		if m.ProjectID == projectID && m.Kind == kind {
			n++
		}
	}
	if n != len(ids) {
		return database.ErrOrderMismatch
	}
	for pos, id := range ids {
		for i := range f.items {
			if f.items[i].ID == id {
				f.items[i].OrderIndex = pos
			}
		}
	}
	return nil
}

func (f *fakeMedia) UpdateDetails(_ context.Context, id uuid.UUID, alt, caption string, isVertical bool) (*models.MediaItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Alt, f.items[i].Caption, f.items[i].IsVertical = alt, caption, isVertical
			c := f.items[i]
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeTestimonials struct {
	items []models.Testimonial
}

func (f *fakeTestimonials) FindPublished(context.Context) ([]models.Testimonial, error) {
	var out []models.Testimonial
	for _, t := range f.items {
		if t.IsPublished {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTestimonials) FindAll(context.Context) ([]models.Testimonial, error) {
	return f.items, nil
}

func (f *fakeTestimonials) FindByID(_ context.Context, id uuid.UUID) (*models.Testimonial, error) {
	for _, t := range f.items {
		if t.ID == id {
			c := t
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTestimonials) Add(_ context.Context, t *models.Testimonial) error {
	t.ID = uuid.New()
	f.items = append(f.items, *t)
	return nil
}

func (f *fakeTestimonials) Update(_ context.Context, t *models.Testimonial) error {
	for i := range f.items {
		if f.items[i].ID == t.ID {
			f.items[i] = *t
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeTestimonials) SetFeatured(_ context.Context, id uuid.UUID, featured bool) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Featured = featured
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeTestimonials) Delete(_ context.Context, id uuid.UUID) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string]string
	removed   []string
	uploadErr error
	removeErr error
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string]string{}} }

func (f *fakeStore) Upload(_ context.Context, path string, r io.Reader, _ int64, _ string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[path] = string(b)
	return f.PublicURL(path), nil
}

func (f *fakeStore) Remove(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, path)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.objects, path)
	return nil
}

func (f *fakeStore) PublicURL(path string) string {
	return "https://cdn.example/results-media/" + path
}

func (f *fakeStore) PathFromURL(url string) (string, bool) {
	const marker = "/results-media/"
	i := strings.Index(url, marker)
	if i < 0 {
		return "", false
	}
	return url[i+len(marker):], true
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []events.Change
}

func (r *recordingPublisher) Publish(_ context.Context, c events.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	return nil
}

func (r *recordingPublisher) actions() []events.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Action, 0, len(r.changes))
	for _, c := range r.changes {
		out = append(out, c.Action)
	}
	return out
}

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate(context.Context) { c.n++ }

// memoryCache is a map-backed cache.Cache
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (m *memoryCache) Get(_ context.Context, key string, dst any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return cache.ErrMiss
	}
	m.hits++
	return json.Unmarshal(raw, dst)
}

func (m *memoryCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *memoryCache) Invalidate(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

var errBoom = errors.New("boom")
