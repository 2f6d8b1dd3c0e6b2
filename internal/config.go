package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/wikihugo/internal/apperr"
	"github.com/starford/wikihugo/internal/models"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Convert ConvertConfig     `yaml:"convert"`
	Wiki    WikiConfig        `yaml:"wiki"`
	Report  ReportConfig      `yaml:"report"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Convert.Validate(); err != nil {
		return err
	}
	if err := c.Wiki.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
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

// ConvertConfig holds the source and destination trees and run switches.
type ConvertConfig struct {
	Source         string `yaml:"source"`
	Destination    string `yaml:"destination"`
	XMLData        string `yaml:"xml_data"`
	DryRun         bool   `yaml:"dry_run"`
	Watch          bool   `yaml:"watch"`
	PruneRedirects bool   `yaml:"prune_redirects"`
}

// Validate checks that source and destination are distinct existing directories.
func (c *ConvertConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Source, validation.Required, validation.By(isDir)),
		validation.Field(&c.Destination, validation.Required, validation.By(isDir)),
		validation.Field(&c.XMLData, validation.By(isFile)),
	); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidDirs, err)
	}
	src, err := filepath.Abs(c.Source)
	if err != nil {
		return fmt.Errorf("%w: source: %w", apperr.ErrInvalidDirs, err)
	}
	dst, err := filepath.Abs(c.Destination)
	if err != nil {
		return fmt.Errorf("%w: destination: %w", apperr.ErrInvalidDirs, err)
	}
	if src == dst {
		return fmt.Errorf("%w: source and destination are both %s", apperr.ErrInvalidDirs, src)
	}
	return nil
}

func isDir(value any) error {
	p, _ := value.(string)
	if p == "" {
		return nil
	}
	info, err := os.Stat(p)
	if err != nil {
		return errors.New("does not exist")
	}
	if !info.IsDir() {
		return errors.New("is not a directory")
	}
	return nil
}

func isFile(value any) error {
	p, _ := value.(string)
	if p == "" {
		return nil
	}
	info, err := os.Stat(p)
	if err != nil {
		return errors.New("does not exist")
	}
	if info.IsDir() {
		return errors.New("is a directory")
	}
	return nil
}

// WikiConfig holds the locale-specific syntax of the source wiki.
type WikiConfig struct {
	models.Settings `yaml:",inline"`
}

// Validate validates the wiki configuration.
func (c *WikiConfig) Validate() error {
	return validation.ValidateStruct(&c.Settings,
		validation.Field(&c.Settings.CategoryTag, validation.Required),
		validation.Field(&c.Settings.ImageTag, validation.Required),
		validation.Field(&c.Settings.CategoryKey, validation.Required),
		validation.Field(&c.Settings.Extension, validation.Required, validation.Length(2, 0)),
	)
}

// ReportConfig holds the SQLite conversion report location. An empty path
// disables the report for plain conversions.
type ReportConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
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
		Wiki: WikiConfig{Settings: models.DefaultSettings()},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
