package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

type Database struct {
	projectRepo     *ProjectRepo
	mediaRepo       *MediaRepo
	testimonialRepo *TestimonialRepo
	adminRepo       *AdminRepo
	magicLinkRepo   *MagicLinkRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		projectRepo:     NewProjectRepo(db),
		mediaRepo:       NewMediaRepo(db),
		testimonialRepo: NewTestimonialRepo(db),
		adminRepo:       NewAdminRepo(db),
		magicLinkRepo:   NewMagicLinkRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) MediaRepo() *MediaRepo {
	return d.mediaRepo
}

func (d Database) TestimonialRepo() *TestimonialRepo {
	return d.testimonialRepo
}

func (d Database) AdminRepo() *AdminRepo {
	return d.adminRepo
}

func (d Database) MagicLinkRepo() *MagicLinkRepo {
	return d.magicLinkRepo
}

// Options configures Open
type Options struct {
	DSN        string
	ReplicaDSN string
	SlowQuery  time.Duration
}

// Open connects to postgres through the pooler-friendly simple protocol. When a
// replica DSN is given, reads are routed to it and writes stay on the primary.
func Open(ctx context.Context, opts Options) (*gorm.DB, error) {
	slow := opts.SlowQuery
	if slow == 0 {
		slow = 10 * time.Second
	}
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             slow,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  opts.DSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if opts.ReplicaDSN != "" {
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.New(postgres.Config{
				DSN:                  opts.ReplicaDSN,
				PreferSimpleProtocol: true,
			})},
			Policy: dbresolver.RandomPolicy{},
		})
		if err := db.Use(resolver); err != nil {
			return nil, fmt.Errorf("register replica: %w", err)
		}
	}

	if err := db.WithContext(ctx).Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return nil, fmt.Errorf("enable pgcrypto: %w", err)
	}

	var result int
	if err := db.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

// Ping checks the primary connection
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.projectRepo.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
