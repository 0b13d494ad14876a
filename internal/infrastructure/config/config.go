package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Email     EmailConfig
	Upload    UploadConfig
	RateLimit RateLimitConfig
	Logging   LogConfig
	CORS      CORSConfig
	Terminal  TerminalConfig
	Client    ClientConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	Version         string        `envconfig:"APP_VERSION" default:"1.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig locates the SQLite database and its seed data.
type DatabaseConfig struct {
	Path     string `envconfig:"DATABASE_PATH" default:"portfolio.db"`
	Seed     bool   `envconfig:"SEED_ENABLED" default:"true"`
	SeedFile string `envconfig:"SEED_FILE"`
}

// AuthConfig holds admin credentials and token settings.
type AuthConfig struct {
	JWTSecret     string        `envconfig:"JWT_SECRET" default:"change-me-in-production"`
	TokenTTL      time.Duration `envconfig:"JWT_TTL" default:"30m"`
	AdminUsername string        `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminPassword string        `envconfig:"ADMIN_PASSWORD" default:"admin123"`
}

// EmailConfig holds SMTP notification settings.
type EmailConfig struct {
	Enabled    bool   `envconfig:"SMTP_ENABLED" default:"false"`
	Host       string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	Port       int    `envconfig:"SMTP_PORT" default:"587"`
	Username   string `envconfig:"SMTP_USERNAME"`
	Password   string `envconfig:"SMTP_PASSWORD"`
	From       string `envconfig:"SMTP_FROM"`
	AdminEmail string `envconfig:"ADMIN_EMAIL"`
	Workers    int    `envconfig:"EMAIL_WORKERS" default:"2"`
	QueueSize  int    `envconfig:"EMAIL_QUEUE_SIZE" default:"64"`
}

// UploadConfig holds image upload settings.
type UploadConfig struct {
	Dir         string `envconfig:"UPLOAD_DIR" default:"uploads"`
	MaxFileSize int64  `envconfig:"MAX_FILE_SIZE" default:"10485760"`
	URLPrefix   string `envconfig:"UPLOAD_URL_PREFIX" default:"/uploads"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds per-client limits. Each pair is a request budget
// over a window.
type RateLimitConfig struct {
	Enabled         bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	Requests        int           `envconfig:"RATE_LIMIT_REQUESTS" default:"100"`
	Window          time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"60s"`
	ContactRequests int           `envconfig:"RATE_LIMIT_CONTACT" default:"5"`
	ContactWindow   time.Duration `envconfig:"RATE_LIMIT_CONTACT_WINDOW" default:"60s"`
	UploadRequests  int           `envconfig:"RATE_LIMIT_UPLOAD" default:"10"`
	UploadWindow    time.Duration `envconfig:"RATE_LIMIT_UPLOAD_WINDOW" default:"60s"`
	LoginRequests   int           `envconfig:"RATE_LIMIT_LOGIN" default:"5"`
	LoginWindow     time.Duration `envconfig:"RATE_LIMIT_LOGIN_WINDOW" default:"300s"`
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	FrontendURL    string   `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	AllowedOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// TerminalConfig holds terminal session settings.
type TerminalConfig struct {
	ExitDelay    time.Duration `envconfig:"TERMINAL_EXIT_DELAY" default:"1s"`
	DefaultTheme string        `envconfig:"TERMINAL_THEME" default:"cmd"`
	ProfileFile  string        `envconfig:"PROFILE_FILE"`
}

// ClientConfig configures the REST client used by the terminal UI.
type ClientConfig struct {
	BaseURL  string        `envconfig:"PORTFOLIO_API_URL" default:"http://localhost:8000/api"`
	Timeout  time.Duration `envconfig:"CLIENT_TIMEOUT" default:"10s"`
	RetryMax int           `envconfig:"CLIENT_RETRY_MAX" default:"2"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production" || c.Server.Environment == "prod"
}

// Origins returns the CORS allow-list including the frontend URL.
func (c *Config) Origins() []string {
	origins := make([]string, 0, len(c.CORS.AllowedOrigins)+1)
	seen := make(map[string]bool)
	for _, o := range append([]string{c.CORS.FrontendURL}, c.CORS.AllowedOrigins...) {
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		origins = append(origins, o)
	}
	return origins
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			Environment:     "development",
			Version:         "1.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "portfolio.db",
			Seed: true,
		},
		Auth: AuthConfig{
			JWTSecret:     "change-me-in-production",
			TokenTTL:      30 * time.Minute,
			AdminUsername: "admin",
			AdminPassword: "admin123",
		},
		Email: EmailConfig{
			Host:      "smtp.gmail.com",
			Port:      587,
			Workers:   2,
			QueueSize: 64,
		},
		Upload: UploadConfig{
			Dir:         "uploads",
			MaxFileSize: 10 << 20,
			URLPrefix:   "/uploads",
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			Requests:        100,
			Window:          time.Minute,
			ContactRequests: 5,
			ContactWindow:   time.Minute,
			UploadRequests:  10,
			UploadWindow:    time.Minute,
			LoginRequests:   5,
			LoginWindow:     5 * time.Minute,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		CORS: CORSConfig{
			FrontendURL:    "http://localhost:3000",
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Terminal: TerminalConfig{
			ExitDelay:    time.Second,
			DefaultTheme: "cmd",
		},
		Client: ClientConfig{
			BaseURL:  "http://localhost:8000/api",
			Timeout:  10 * time.Second,
			RetryMax: 2,
		},
	}
}
