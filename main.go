package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/transitions-site-backend/api"
	"github.com/rpupo63/transitions-site-backend/auth"
	"github.com/rpupo63/transitions-site-backend/cache"
	"github.com/rpupo63/transitions-site-backend/config"
	"github.com/rpupo63/transitions-site-backend/database"
	"github.com/rpupo63/transitions-site-backend/events"
	"github.com/rpupo63/transitions-site-backend/models"
	"github.com/rpupo63/transitions-site-backend/services"
	"github.com/rpupo63/transitions-site-backend/storage"
)

const magicLinkSweep = time.Hour

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if prefix := os.Getenv("SSM_PARAMETER_PATH"); prefix != "" {
		loadSSM(ctx, prefix)
	}

	settings, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(settings.LogLevel)

	db, err := database.Open(ctx, database.Options{
		DSN:        settings.Database.DSN(),
		ReplicaDSN: settings.Database.ReplicaDSN,
		SlowQuery:  settings.Database.SlowQuery,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}

	// If generating models, run generation and exit
	if strings.ToLower(os.Getenv("GENERATE_MODELS")) == "true" {
		fmt.Println("Generating models and query helpers...")
		if err := models.GenerateModels(db); err != nil {
			log.Fatal().Err(err).Msg("model generation failed")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if os.Getenv("GENERATE_COLUMN_REPORT") == "true" {
		fmt.Println("Generating column mismatch report...")
		if err := models.PrintColumnMismatchReport(db); err != nil {
			log.Fatal().Err(err).Msg("column report failed")
		}
		return
	}

	if settings.Database.AutoMigrate {
		if err := models.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
	}

	currentDB := database.New(db)

	store, err := newObjectStore(ctx, settings.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("error configuring object storage")
	}

	publisher, closePublisher := newPublisher(settings.Nats)
	defer closePublisher()

	responseCache, closeCache := newCache(ctx, settings.Redis)
	defer closeCache()

	var mailer *services.ResendMailer
	if m, err := services.NewResendMailer(settings.Mail.APIKey, settings.Mail.FromEmail); err != nil {
		log.Warn().Err(err).Msg("e-mail delivery disabled")
	} else {
		mailer = m
	}

	provider, err := newAuthProvider(ctx, settings, currentDB, mailer)
	if err != nil {
		log.Fatal().Err(err).Msg("error configuring authentication")
	}

	portfolio := services.NewPortfolioService(currentDB.ProjectRepo(), currentDB.MediaRepo(), currentDB.TestimonialRepo(), responseCache, settings.SiteURL)

	deps := api.Dependencies{
		Portfolio:         portfolio,
		Projects:          services.NewProjectService(currentDB.ProjectRepo(), currentDB.MediaRepo(), store, publisher, portfolio),
		Media:             services.NewMediaService(currentDB.ProjectRepo(), currentDB.MediaRepo(), store, publisher, portfolio),
		Testimonials:      services.NewTestimonialService(currentDB.TestimonialRepo(), publisher, portfolio),
		Contact:           newContactService(settings, mailer),
		Auth:              provider,
		Health:            currentDB,
		MagicLinkRedirect: settings.MagicLinkURL(),
		MaxUploadBytes:    settings.Storage.MaxUpload,
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(deps)
	if err != nil {
		log.Fatal().Err(err).Msg("error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	stop()
	server.ShutdownGracefully(30 * time.Second)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
}

func loadSSM(ctx context.Context, prefix string) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}
	client, err := config.NewSSMClient(ctx, region)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating SSM client")
	}
	n, err := config.ApplySSM(ctx, client, prefix)
	if err != nil {
		log.Fatal().Err(err).Str("path", prefix).Msg("error loading SSM parameters")
	}
	log.Info().Int("parameters", n).Str("path", prefix).Msg("loaded SSM parameters")
}

func newObjectStore(ctx context.Context, s config.StorageSettings) (storage.ObjectStore, error) {
	switch strings.ToLower(s.Driver) {
	case "minio":
		return storage.NewMinioStore(s.Endpoint, s.AccessKey, s.SecretKey, s.Bucket, s.PublicURL, s.UseSSL)
	case "s3", "":
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    s.Bucket,
			Region:    s.Region,
			Endpoint:  s.Endpoint,
			AccessKey: s.AccessKey,
			SecretKey: s.SecretKey,
			PublicURL: s.PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", s.Driver)
	}
}

func newPublisher(s config.NatsSettings) (events.Publisher, func()) {
	if s.URL == "" {
		return events.Noop{}, func() {}
	}
	nc, err := events.Connect(s.URL)
	if err != nil {
		log.Warn().Err(err).Msg("NATS unavailable, change events disabled")
		return events.Noop{}, func() {}
	}
	return events.NewNatsPublisher(nc, s.SubjectPrefix), func() {
		if err := nc.Drain(); err != nil {
			log.Error().Err(err).Msg("error draining NATS connection")
		}
	}
}

func newCache(ctx context.Context, s config.RedisSettings) (cache.Cache, func()) {
	if s.URL == "" {
		return cache.Noop{}, func() {}
	}
	client, err := cache.Dial(ctx, s.URL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, portfolio cache disabled")
		return cache.Noop{}, func() {}
	}
	return cache.NewRedisCache(client, s.TTL), func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis client")
		}
	}
}

func newContactService(settings config.Settings, mailer *services.ResendMailer) *services.ContactService {
	var m services.Mailer
	if mailer != nil {
		m = mailer
	}
	var notifier services.Notifier
	if settings.SMS.AccountSID != "" {
		n, err := services.NewTwilioNotifier(settings.SMS.AccountSID, settings.SMS.AuthToken, settings.SMS.From, settings.SMS.To)
		if err != nil {
			log.Warn().Err(err).Msg("text notifications disabled")
		} else {
			notifier = n
		}
	}
	return services.NewContactService(m, settings.Mail.Inbox, notifier)
}

func newAuthProvider(ctx context.Context, settings config.Settings, currentDB database.Database, mailer *services.ResendMailer) (auth.Provider, error) {
	origins := append([]string{settings.MagicLinkURL()}, config.GetList(config.New(), "ACCEPTED_ORIGINS")...)
	redirects := auth.NewRedirectAllowlist(origins...)

	if strings.ToLower(settings.Auth.Provider) == "descope" {
		return auth.NewDescopeProvider(settings.Auth.DescopeProjectID, redirects, auth.NewBroadcaster())
	}

	secret := []byte(settings.Auth.JWTSecret)
	if len(secret) == 0 {
		log.Warn().Msg("AUTH_JWT_SECRET is empty, sessions will not survive a restart")
		var err error
		if secret, err = auth.RandomSecret(); err != nil {
			return nil, err
		}
	}
	tokens, err := auth.NewTokenIssuer(secret, settings.Auth.SessionTTL)
	if err != nil {
		return nil, err
	}

	hasher := auth.NewArgon2Hasher(nil)
	if settings.Auth.AdminEmail != "" && settings.Auth.AdminPassword != "" {
		if err := auth.EnsureAdmin(ctx, currentDB.AdminRepo(), hasher, settings.Auth.AdminEmail, settings.Auth.AdminPassword); err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
	}

	var sender auth.LinkSender = logLinkSender{}
	if mailer != nil {
		sender = mailer
	}

	go sweepMagicLinks(ctx, currentDB.MagicLinkRepo())

	return auth.NewLocalProvider(auth.LocalOptions{
		Admins:    currentDB.AdminRepo(),
		Links:     currentDB.MagicLinkRepo(),
		Sender:    sender,
		Hasher:    hasher,
		Tokens:    tokens,
		LinkTTL:   settings.Auth.MagicLinkTTL,
		Redirects: redirects,
	}), nil
}

// logLinkSender stands in for e-mail when no mailer is configured
type logLinkSender struct{}

func (logLinkSender) SendMagicLink(_ context.Context, email, link string) error {
	log.Warn().Str("email", email).Str("link", link).Msg("no mailer configured, magic link logged instead")
	return nil
}

func sweepMagicLinks(ctx context.Context, links *database.MagicLinkRepo) {
	ticker := time.NewTicker(magicLinkSweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := links.DeleteExpired(ctx, now.Add(-24*time.Hour))
			if err != nil {
				log.Error().Err(err).Msg("error sweeping magic links")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("swept expired magic links")
			}
		}
	}
}
