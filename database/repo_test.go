package database

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rpupo63/transitions-site-backend/errs"
	"github.com/rpupo63/transitions-site-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqliteSchema mirrors the hosted tables, including their column defaults
var sqliteSchema = []string{
	`CREATE TABLE result_projects (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'Transitions',
		slug TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		sort_date DATE NOT NULL DEFAULT CURRENT_DATE,
		is_published BOOLEAN NOT NULL DEFAULT true,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE result_media (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		url TEXT NOT NULL,
		storage_path TEXT NOT NULL DEFAULT '',
		alt TEXT NOT NULL DEFAULT '',
		caption TEXT NOT NULL DEFAULT '',
		is_vertical BOOLEAN NOT NULL DEFAULT false,
		is_main BOOLEAN NOT NULL DEFAULT false,
		created_at DATETIME
	)`,
	`CREATE TABLE testimonials (
		id TEXT PRIMARY KEY,
		quote TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'Client',
		name TEXT,
		city TEXT,
		category TEXT,
		featured BOOLEAN NOT NULL DEFAULT false,
		order_index INTEGER NOT NULL DEFAULT 0,
		is_published BOOLEAN NOT NULL DEFAULT true,
		created_at DATETIME
	)`,
	`CREATE TABLE admin_users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE magic_links (
		token TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		used_at DATETIME
	)`,
}

func newTestDB(t *testing.T) Database {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// every connection to :memory: opens its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	for _, stmt := range sqliteSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return New(db)
}

func addProject(t *testing.T, d Database, slug string, published bool) *models.Project {
	t.Helper()
	p := &models.Project{
		Title:       slug,
		Slug:        slug,
		SortDate:    datatypes.Date(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)),
		IsPublished: published,
	}
	require.NoError(t, d.ProjectRepo().Add(context.Background(), p))
	return p
}

func addMedia(t *testing.T, d Database, projectID uuid.UUID, kind models.MediaKind, path string, main bool) *models.MediaItem {
	t.Helper()
	m := &models.MediaItem{
		ProjectID:   projectID,
		Kind:        kind,
		URL:         "https://cdn.example/" + uuid.NewString(),
		StoragePath: path,
		IsMain:      main,
	}
	require.NoError(t, d.MediaRepo().Add(context.Background(), m))
	return m
}

func TestProjectRepo_DraftStaysUnpublished(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	draft := addProject(t, d, "draft", false)
	published, err := d.ProjectRepo().FindPublished(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, published)

	stored, err := d.ProjectRepo().FindByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPublished)

	addProject(t, d, "live", true)
	published, err = d.ProjectRepo().FindPublished(ctx, "")
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "live", published[0].Slug)
}

func TestProjectRepo_AddFillsDefaults(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	p := &models.Project{Title: "Downsizing", Slug: "downsizing"}
	require.NoError(t, d.ProjectRepo().Add(ctx, p))
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, models.CategoryTransitions, p.Category)

	stored, err := d.ProjectRepo().FindBySlug(ctx, "downsizing")
	require.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)
	assert.Equal(t, models.CategoryTransitions, stored.Category)
	assert.Equal(t, "", stored.Description)
	assert.False(t, stored.IsPublished)
	assert.False(t, time.Time(stored.SortDate).IsZero())

	m := &models.MediaItem{ProjectID: p.ID, Kind: models.KindAfterImage, URL: "https://cdn.example/a.jpg"}
	require.NoError(t, d.MediaRepo().Add(ctx, m))
	item, err := d.MediaRepo().FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, item.OrderIndex)
	assert.False(t, item.IsMain)
	assert.Equal(t, "", item.StoragePath)
}

func TestProjectRepo_FindPublishedByCategory(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	addProject(t, d, "move", true)
	org := &models.Project{Title: "Closet", Slug: "closet", Category: models.CategoryOrganization, IsPublished: true}
	require.NoError(t, d.ProjectRepo().Add(ctx, org))

	got, err := d.ProjectRepo().FindPublished(ctx, models.CategoryOrganization)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, org.ID, got[0].ID)

	all, err := d.ProjectRepo().FindPublished(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProjectRepo_DeleteRemovesMedia(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	p := addProject(t, d, "estate", true)
	other := addProject(t, d, "other", true)
	addMedia(t, d, p.ID, models.KindBeforeImage, "estate/before.jpg", true)
	addMedia(t, d, p.ID, models.KindAfterImage, "", false)
	addMedia(t, d, p.ID, models.KindAfterVideo, "estate/walkthrough.mp4", false)
	kept := addMedia(t, d, other.ID, models.KindBeforeImage, "other/before.jpg", false)

	paths, err := d.ProjectRepo().Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"estate/before.jpg", "estate/walkthrough.mp4"}, paths)

	left, err := d.MediaRepo().FindByProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	_, err = d.ProjectRepo().FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = d.MediaRepo().FindByID(ctx, kept.ID)
	assert.NoError(t, err)

	_, err = d.ProjectRepo().Delete(ctx, p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMediaRepo_SetMainKeepsOnePerKind(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	p := addProject(t, d, "main", true)
	first := addMedia(t, d, p.ID, models.KindBeforeImage, "", true)
	second := addMedia(t, d, p.ID, models.KindBeforeImage, "", false)
	after := addMedia(t, d, p.ID, models.KindAfterImage, "", true)

	item, err := d.MediaRepo().SetMain(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, item.IsMain)

	items, err := d.MediaRepo().FindByProject(ctx, p.ID)
	require.NoError(t, err)
	mains := map[uuid.UUID]bool{}
	for _, m := range items {
		mains[m.ID] = m.IsMain
	}
	assert.Equal(t, map[uuid.UUID]bool{first.ID: false, second.ID: true, after.ID: true}, mains)

	_, err = d.MediaRepo().SetMain(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMediaRepo_Reorder(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	p := addProject(t, d, "order", true)
	a := addMedia(t, d, p.ID, models.KindAfterImage, "", false)
	b := addMedia(t, d, p.ID, models.KindAfterImage, "", false)
	c := addMedia(t, d, p.ID, models.KindAfterImage, "", false)
	addMedia(t, d, p.ID, models.KindBeforeImage, "", false)

	require.NoError(t, d.MediaRepo().Reorder(ctx, p.ID, models.KindAfterImage, []uuid.UUID{c.ID, a.ID, b.ID}))
	indexOf := func() map[uuid.UUID]int {
		items, err := d.MediaRepo().FindByProject(ctx, p.ID)
		require.NoError(t, err)
		out := map[uuid.UUID]int{}
		for _, m := range items {
			if m.Kind == models.KindAfterImage {
				out[m.ID] = m.OrderIndex
			}
		}
		return out
	}
	want := map[uuid.UUID]int{c.ID: 0, a.ID: 1, b.ID: 2}
	assert.Equal(t, want, indexOf())

	err := d.MediaRepo().Reorder(ctx, p.ID, models.KindAfterImage, []uuid.UUID{a.ID, b.ID})
	assert.ErrorIs(t, err, ErrOrderMismatch)
	assert.Equal(t, want, indexOf())
}

func TestTestimonialRepo_DraftStaysUnpublished(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	draft := &models.Testimonial{Quote: "They made the move painless."}
	require.NoError(t, d.TestimonialRepo().Add(ctx, draft))
	assert.Equal(t, models.RoleClient, draft.Role)

	published, err := d.TestimonialRepo().FindPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, published)

	all, err := d.TestimonialRepo().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsPublished)
}

func TestMagicLinkRepo_Consume(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	links := d.MagicLinkRepo()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, links.Add(ctx, &models.MagicLink{Token: "fresh", Email: "owner@example.com", CreatedAt: now, ExpiresAt: now.Add(15 * time.Minute)}))
	require.NoError(t, links.Add(ctx, &models.MagicLink{Token: "stale", Email: "owner@example.com", CreatedAt: now.Add(-time.Hour), ExpiresAt: now.Add(-45 * time.Minute)}))

	link, err := links.Consume(ctx, "fresh", now)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", link.Email)
	require.NotNil(t, link.UsedAt)

	_, err = links.Consume(ctx, "fresh", now.Add(time.Minute))
	assert.ErrorIs(t, err, errs.ErrMagicLinkUsed)

	_, err = links.Consume(ctx, "stale", now)
	assert.ErrorIs(t, err, errs.ErrMagicLinkExpired)

	_, err = links.Consume(ctx, "missing", now)
	assert.ErrorIs(t, err, errs.ErrMagicLinkInvalid)

	n, err := links.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAdminRepo_Upsert(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()

	first, err := d.AdminRepo().Upsert(ctx, " Owner@Example.com ", "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", first.Email)

	second, err := d.AdminRepo().Upsert(ctx, "owner@example.com", "hash-2")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "hash-2", second.PasswordHash)

	_, err = d.AdminRepo().FindByEmail(ctx, "stranger@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
