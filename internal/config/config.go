package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"

	MediaBackendLocal = "local"
	MediaBackendS3    = "s3"
)

// Config is built once at startup and handed to every component that needs it.
type Config struct {
	Addr          string   `env:"APP_ADDR"        env-default:":8080"`
	GinMode       string   `env:"GIN_MODE"        env-default:"debug"`
	PublicBaseURL string   `env:"PUBLIC_BASE_URL" env-default:""`
	CORSOrigins   []string `env:"CORS_ORIGINS"    env-default:"*" env-separator:","`
	AdminEmail    string   `env:"ADMIN_EMAIL"     env-default:""`

	DBDriver   string `env:"DB_DRIVER"   env-default:"postgres"`
	DBHost     string `env:"DB_HOST"     env-default:"localhost"`
	DBPort     string `env:"DB_PORT"     env-default:"5432"`
	DBUser     string `env:"DB_USER"     env-default:"todo"`
	DBPassword string `env:"DB_PASSWORD" env-default:"todo"`
	DBName     string `env:"DB_NAME"     env-default:"todo"`
	DBTimezone string `env:"DB_TIMEZONE" env-default:"Asia/Bishkek"`

	JWTSecretKey   string        `env:"JWT_SECRET_KEY"  env-required:"true"`
	JWTAccessTTL   time.Duration `env:"JWT_ACCESS_TTL"  env-default:"30m"`
	JWTRefreshTTL  time.Duration `env:"JWT_REFRESH_TTL" env-default:"168h"`
	OTPTTL         time.Duration `env:"OTP_TTL"         env-default:"300s"`
	OTPRatePerMin  int           `env:"OTP_RATE_PER_MINUTE" env-default:"5"`
	OpenAIAPIKey   string        `env:"OPENAI_API_KEY"  env-default:""`
	ValkeyAddr     string        `env:"VALKEY_ADDR"     env-default:""`
	ValkeyPassword string        `env:"VALKEY_PASSWORD" env-default:""`

	EmailHost     string `env:"EMAIL_HOST"     env-default:""`
	EmailPort     int    `env:"EMAIL_PORT"     env-default:"587"`
	EmailUser     string `env:"EMAIL_USER"     env-default:""`
	EmailPassword string `env:"EMAIL_PASSWORD" env-default:""`
	EmailFrom     string `env:"EMAIL_FROM"     env-default:"no-reply@localhost"`

	MediaBackend string `env:"MEDIA_BACKEND" env-default:"local"`
	MediaRoot    string `env:"MEDIA_ROOT"    env-default:"media"`
	S3Bucket     string `env:"S3_BUCKET"     env-default:""`
	S3Region     string `env:"S3_REGION"     env-default:"us-east-1"`
	S3Endpoint   string `env:"S3_ENDPOINT"   env-default:""`
	S3AccessKey  string `env:"S3_ACCESS_KEY" env-default:""`
	S3SecretKey  string `env:"S3_SECRET_KEY" env-default:""`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY is required")
	}

	switch c.DBDriver {
	case DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.MediaBackend {
	case MediaBackendLocal:
	case MediaBackendS3:
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when MEDIA_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_BACKEND %q", c.MediaBackend)
	}

	if c.JWTAccessTTL <= 0 || c.JWTRefreshTTL <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if c.JWTAccessTTL > c.JWTRefreshTTL {
		return errors.New("JWT_ACCESS_TTL must not exceed JWT_REFRESH_TTL")
	}

	if _, err := time.LoadLocation(c.DBTimezone); err != nil {
		return fmt.Errorf("invalid DB_TIMEZONE %q: %w", c.DBTimezone, err)
	}

	return nil
}

// DSN renders the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverMySQL {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser,
			c.DBPassword,
			c.DBHost,
			c.DBPort,
			c.DBName,
		)
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
		c.DBHost,
		c.DBPort,
		c.DBUser,
		c.DBPassword,
		c.DBName,
		c.DBTimezone,
	)
}

// Location returns the timezone used for server-assigned timestamps.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DBTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}
