package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	// Settings is the typed configuration of every subsystem
	Settings struct {
		LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
		SiteURL  string `env:"SITE_URL" envDefault:"http://localhost:5173"`

		Database DatabaseSettings `envPrefix:"DB_"`
		Storage  StorageSettings  `envPrefix:"STORAGE_"`
		Auth     AuthSettings     `envPrefix:"AUTH_"`
		Mail     MailSettings     `envPrefix:"RESEND_"`
		SMS      SMSSettings      `envPrefix:"TWILIO_"`
		Nats     NatsSettings     `envPrefix:"NATS_"`
		Redis    RedisSettings    `envPrefix:"REDIS_"`

		SSMParameterPath string `env:"SSM_PARAMETER_PATH"`
	}

	DatabaseSettings struct {
		Host        string        `env:"HOST" envDefault:"localhost"`
		Port        string        `env:"PORT" envDefault:"5432"`
		User        string        `env:"USER" envDefault:"postgres"`
		Password    string        `env:"PASSWORD"`
		Name        string        `env:"NAME" envDefault:"postgres"`
		SSLMode     string        `env:"SSLMODE" envDefault:"require"`
		ReplicaDSN  string        `env:"REPLICA_DSN"`
		SlowQuery   time.Duration `env:"SLOW_QUERY" envDefault:"10s"`
		AutoMigrate bool          `env:"AUTO_MIGRATE" envDefault:"true"`
	}

	StorageSettings struct {
		Driver    string `env:"DRIVER" envDefault:"s3"`
		Bucket    string `env:"BUCKET" envDefault:"results-media"`
		Region    string `env:"REGION" envDefault:"us-east-1"`
		Endpoint  string `env:"ENDPOINT"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"true"`
		PublicURL string `env:"PUBLIC_URL"`
		MaxUpload int64  `env:"MAX_UPLOAD_BYTES" envDefault:"26214400"`
	}

	AuthSettings struct {
		Provider          string        `env:"PROVIDER" envDefault:"local"`
		JWTSecret         string        `env:"JWT_SECRET"`
		SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"12h"`
		MagicLinkTTL      time.Duration `env:"MAGIC_LINK_TTL" envDefault:"15m"`
		MagicLinkRedirect string        `env:"MAGIC_LINK_REDIRECT"`
		AdminEmail        string        `env:"ADMIN_EMAIL"`
		AdminPassword     string        `env:"ADMIN_PASSWORD"`
		DescopeProjectID  string        `env:"DESCOPE_PROJECT_ID"`
	}

	MailSettings struct {
		APIKey    string   `env:"API_KEY"`
		FromEmail string   `env:"FROM_EMAIL"`
		Inbox     []string `env:"INBOX" envSeparator:","`
	}

	SMSSettings struct {
		AccountSID string `env:"ACCOUNT_SID"`
		AuthToken  string `env:"AUTH_TOKEN"`
		From       string `env:"FROM"`
		To         string `env:"TO"`
	}

	NatsSettings struct {
		URL           string `env:"URL"`
		SubjectPrefix string `env:"SUBJECT_PREFIX" envDefault:"portfolio"`
	}

	RedisSettings struct {
		URL string        `env:"URL"`
		TTL time.Duration `env:"TTL" envDefault:"5m"`
	}
)

// Load parses Settings from the process environment
func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// LoadFrom parses Settings from an explicit environment map
func LoadFrom(environ map[string]string) (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, env.Options{Environment: environ}); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	return s, nil
}

// DSN builds the postgres connection string
func (d DatabaseSettings) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// MagicLinkURL is where e-mailed links land, defaulting to the site's admin page
func (s Settings) MagicLinkURL() string {
	if s.Auth.MagicLinkRedirect != "" {
		return s.Auth.MagicLinkRedirect
	}
	return strings.TrimSuffix(s.SiteURL, "/") + "/admin"
}
