package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	App     AppConfig
	Session SessionConfig
	CORS    CORSConfig
	Log     LogConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type AppConfig struct {
	DefaultWidth       int
	MinWidth           int
	MaxWidth           int
	Quality            int
	MaxPixels          int64
	MaxUploadSize      int64
	MaxMultipartMemory int64
	MaxBatchSize       int
	AllowedFormats     []string
	Labels             []string
	ArchiveName        string
}

type SessionConfig struct {
	CookieName      string
	TTL             time.Duration
	CleanupInterval time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "localhost")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", 60*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 120*time.Second)
	v.SetDefault("APP_DEFAULT_WIDTH", 640)
	v.SetDefault("APP_MIN_WIDTH", 10)
	v.SetDefault("APP_MAX_WIDTH", 5000)
	v.SetDefault("APP_QUALITY", 95)
	v.SetDefault("APP_MAX_PIXELS", 50_000_000)
	v.SetDefault("APP_MAX_UPLOAD_SIZE", 10*1024*1024) // 10MB
	v.SetDefault("APP_MAX_MULTIPART_MEMORY", 32<<20)
	v.SetDefault("APP_MAX_BATCH_SIZE", 100)
	v.SetDefault("APP_ALLOWED_FORMATS", []string{".jpg", ".jpeg", ".png"})
	v.SetDefault("APP_LABELS", []string{"_after", "_before", "_main", "_s1", "_s2", "_s3", "_s4", "(none)", "(custom)"})
	v.SetDefault("APP_ARCHIVE_NAME", "resized_images.zip")
	v.SetDefault("SESSION_COOKIE_NAME", "session_id")
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("SESSION_CLEANUP_INTERVAL", 10*time.Minute)
	v.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("LOG_LEVEL", "info")
}

func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetString("SERVER_PORT"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		App: AppConfig{
			DefaultWidth:       v.GetInt("APP_DEFAULT_WIDTH"),
			MinWidth:           v.GetInt("APP_MIN_WIDTH"),
			MaxWidth:           v.GetInt("APP_MAX_WIDTH"),
			Quality:            v.GetInt("APP_QUALITY"),
			MaxPixels:          v.GetInt64("APP_MAX_PIXELS"),
			MaxUploadSize:      v.GetInt64("APP_MAX_UPLOAD_SIZE"),
			MaxMultipartMemory: v.GetInt64("APP_MAX_MULTIPART_MEMORY"),
			MaxBatchSize:       v.GetInt("APP_MAX_BATCH_SIZE"),
			AllowedFormats:     v.GetStringSlice("APP_ALLOWED_FORMATS"),
			Labels:             v.GetStringSlice("APP_LABELS"),
			ArchiveName:        v.GetString("APP_ARCHIVE_NAME"),
		},
		Session: SessionConfig{
			CookieName:      v.GetString("SESSION_COOKIE_NAME"),
			TTL:             v.GetDuration("SESSION_TTL"),
			CleanupInterval: v.GetDuration("SESSION_CLEANUP_INTERVAL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("CORS_ALLOWED_ORIGINS"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks the ranges the batch processor relies on.
func (c *Config) Validate() error {
	app := c.App
	if app.MinWidth < 1 {
		return fmt.Errorf("APP_MIN_WIDTH must be positive, got %d", app.MinWidth)
	}
	if app.MaxWidth < app.MinWidth {
		return fmt.Errorf("APP_MAX_WIDTH (%d) is below APP_MIN_WIDTH (%d)", app.MaxWidth, app.MinWidth)
	}
	if app.DefaultWidth < app.MinWidth || app.DefaultWidth > app.MaxWidth {
		return fmt.Errorf("APP_DEFAULT_WIDTH %d is outside [%d, %d]", app.DefaultWidth, app.MinWidth, app.MaxWidth)
	}
	if app.Quality < 1 || app.Quality > 100 {
		return fmt.Errorf("APP_QUALITY must be within [1, 100], got %d", app.Quality)
	}
	if app.MaxPixels < int64(app.MaxWidth) {
		return fmt.Errorf("APP_MAX_PIXELS (%d) must allow at least one row at APP_MAX_WIDTH (%d)", app.MaxPixels, app.MaxWidth)
	}
	if app.MaxUploadSize <= 0 {
		return fmt.Errorf("APP_MAX_UPLOAD_SIZE must be positive")
	}
	if app.MaxMultipartMemory <= 0 {
		return fmt.Errorf("APP_MAX_MULTIPART_MEMORY must be positive")
	}
	if app.MaxBatchSize <= 0 {
		return fmt.Errorf("APP_MAX_BATCH_SIZE must be positive")
	}
	if len(app.AllowedFormats) == 0 {
		return fmt.Errorf("APP_ALLOWED_FORMATS cannot be empty")
	}
	if len(app.Labels) == 0 {
		return fmt.Errorf("APP_LABELS cannot be empty")
	}
	if app.ArchiveName == "" {
		return fmt.Errorf("APP_ARCHIVE_NAME cannot be empty")
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}
