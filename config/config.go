package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string `env:"APP_ENV" envDefault:"development" validate:"oneof=development production test"`
	AppPort        string `env:"APP_PORT" envDefault:"8080" validate:"required,numeric"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173" validate:"required"`

	DBDriver       string `env:"DB_DRIVER" envDefault:"postgres" validate:"oneof=postgres sqlite"`
	DatabaseURL    string `env:"DATABASE_URL"`
	DBHost         string `env:"DB_HOST" envDefault:"localhost"`
	DBPort         string `env:"DB_PORT" envDefault:"5432"`
	DBUser         string `env:"DB_USER" envDefault:"tasknotes"`
	DBPassword     string `env:"DB_PASSWORD" envDefault:"tasknotes"`
	DBName         string `env:"DB_NAME" envDefault:"tasknotes"`
	DBMaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"10" validate:"gte=0"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"100" validate:"gte=0"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"tasknotes.db"`

	// JWTSecret has no default: a deployment without a signing key must not start.
	JWTSecret        string        `env:"JWT_SECRET" validate:"required"`
	JWTSigningMethod string        `env:"JWT_SIGNING_METHOD" envDefault:"HS256" validate:"oneof=HS256 HS384 HS512"`
	JWTExpiration    time.Duration `env:"JWT_EXPIRATION" envDefault:"168h" validate:"gt=0"`
	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"10" validate:"gte=4,lte=31"`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s" validate:"gt=0"`

	NATSURL string `env:"NATS_URL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from the environment, after loading a .env file
// from the working directory if one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// DSN returns the postgres connection string, preferring DATABASE_URL.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost,
		c.DBPort,
		c.DBUser,
		c.DBPassword,
		c.DBName,
	)
}

// MaskedDSN is DSN with the password replaced, for logging.
func (c Config) MaskedDSN() string {
	if c.DatabaseURL == "" {
		return strings.Replace(c.DSN(), "password="+c.DBPassword, "password=****", 1)
	}
	u, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return "****"
	}
	return u.Redacted()
}

func (c Config) Origins() []string {
	origins := strings.Split(c.AllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}
