package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/quire/internal/index"
)

// Search backends.
const (
	SearchBackendScan   = "scan"
	SearchBackendSQLite = "sqlite"
)

var extensionRe = regexp.MustCompile(`^\.[A-Za-z0-9]+$`)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	Search  SearchConfig      `yaml:"search"`
	Site    SiteConfig        `yaml:"site"`
	Watch   WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	// The watcher is the only thing that re-syncs the sqlite catalog.
	// Dev mode falls back to scan.
	if c.Search.Backend == SearchBackendSQLite && !c.Watch.Enabled && !c.App.Dev {
		return fmt.Errorf("search: backend %q requires watch.enabled", SearchBackendSQLite)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// Dev drops every cache at the start of each request.
	Dev  bool       `yaml:"dev"`
	HTTP HTTPConfig `yaml:"http"`
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

// ContentConfig describes the content root.
type ContentConfig struct {
	Path      string `yaml:"path"`
	Extension string `yaml:"extension"`
	// Exclude holds doublestar globs matched against slash-separated paths
	// relative to the content root.
	Exclude []string `yaml:"exclude"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Extension, validation.Required, validation.Match(extensionRe)),
	)
}

// SearchConfig selects the search backend.
//
// Backend controls how queries are answered:
//   - "scan" (default): every query walks the cached documents.
//   - "sqlite": queries run against an SQLite catalog kept in sync with the
//     content root. DSN defaults to an in-memory database.
type SearchConfig struct {
	Backend string `yaml:"backend"`
	DSN     string `yaml:"dsn"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = SearchBackendScan
	}
	if c.Backend == SearchBackendSQLite && c.DSN == "" {
		c.DSN = index.MemoryDSN
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(SearchBackendScan, SearchBackendSQLite)),
	)
}

// SiteConfig holds presentation settings for the HTML site.
type SiteConfig struct {
	Title  string `yaml:"title"`
	Footer string `yaml:"footer"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required, validation.Length(1, 200)),
	)
}

// WatchConfig controls the filesystem watcher.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0)), validation.Max(time.Minute)),
	)
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
		Content: ContentConfig{
			Path:      "./content",
			Extension: ".md",
		},
		Search: SearchConfig{
			Backend: SearchBackendScan,
		},
		Site: SiteConfig{
			Title: "quire",
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: index.DefaultDebounce,
		},
	}
}
