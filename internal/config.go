package internal

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/mediastore/internal/auth"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
	AuthModeJWT      = "jwt"
)

const minJWTSecretLen = 32

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Repo    RepoConfig        `yaml:"repo"`
	Media   MediaConfig       `yaml:"media"`
	Journal JournalConfig     `yaml:"journal"`
	Auth    AuthConfig        `yaml:"auth"`
	Watch   WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []interface{ Validate() error }{&c.App, &c.Repo, &c.Media, &c.Journal, &c.Auth} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// RepoConfig locates the media folder inside the content repository.
// PublicFolder is relative to RootPath, MediaRoot relative to PublicFolder.
type RepoConfig struct {
	RootPath     string `yaml:"root_path"`
	PublicFolder string `yaml:"public_folder"`
	MediaRoot    string `yaml:"media_root"`
}

// Validate validates the repository layout.
func (c *RepoConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RootPath, validation.Required),
		validation.Field(&c.PublicFolder, validation.By(relativeSegment)),
		validation.Field(&c.MediaRoot, validation.By(relativeSegment)),
	)
}

func relativeSegment(value any) error {
	s, _ := value.(string)
	if strings.HasPrefix(s, "/") {
		return fmt.Errorf("must be relative")
	}
	for _, seg := range strings.Split(s, "/") {
		if seg == ".." {
			return fmt.Errorf("must not contain '..'")
		}
	}
	return nil
}

// MediaConfig holds the media API settings.
type MediaConfig struct {
	BasePath       string `yaml:"base_path"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	StatWorkers    int    `yaml:"stat_workers"`
}

// Validate validates the media configuration.
func (c *MediaConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BasePath, validation.Required, validation.By(func(value any) error {
			s, _ := value.(string)
			if !strings.HasPrefix(s, "/") {
				return fmt.Errorf("must start with '/'")
			}
			return nil
		})),
		validation.Field(&c.MaxUploadBytes, validation.Min(int64(0))),
		validation.Field(&c.StatWorkers, validation.Min(0), validation.Max(256)),
	)
}

// JournalConfig holds the SQLite journal location.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the journal configuration.
func (c *JournalConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": static Bearer token; Token must be non-empty.
//   - "jwt": HS256 Bearer tokens signed with JWTSecret.
type AuthConfig struct {
	Mode      string `yaml:"mode"`
	Token     string `yaml:"token"`
	JWTSecret string `yaml:"jwt_secret"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken, AuthModeJWT)),
		validation.Field(&c.Token, validation.When(c.Mode == AuthModeToken, validation.Required.Error("token is empty"))),
		validation.Field(&c.JWTSecret, validation.When(c.Mode == AuthModeJWT,
			validation.Required.Error("jwt secret is empty"),
			validation.Length(minJWTSecretLen, 0),
		)),
	)
}

// Provider builds the authorization provider for the configured mode.
func (c *AuthConfig) Provider() auth.Provider {
	switch c.Mode {
	case AuthModeToken:
		return auth.Token(c.Token)
	case AuthModeJWT:
		return auth.JWT(c.JWTSecret)
	default:
		return auth.Disabled()
	}
}

// WatchConfig toggles the filesystem watcher.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Repo: RepoConfig{
			RootPath:     ".",
			PublicFolder: "public",
			MediaRoot:    "uploads",
		},
		Media: MediaConfig{
			BasePath:       "/api/media",
			MaxUploadBytes: 50 << 20,
			StatWorkers:    8,
		},
		Journal: JournalConfig{
			Path: "./mediastore.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Watch: WatchConfig{
			Enabled: true,
		},
	}
}
