package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
)

// Config represents the application configuration.
type Config struct {
	// Debug selects preview visibility: unpublished posts are listed and exported.
	Debug    bool           `yaml:"debug"`
	Content  ContentConfig  `yaml:"content"`
	Site     SiteConfig     `yaml:"site"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Feed     FeedConfig     `yaml:"feed"`
	Output   OutputConfig   `yaml:"output"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// ContentConfig locates the content files.
type ContentConfig struct {
	Root      string `yaml:"root"`
	Extension string `yaml:"extension"`
}

// SiteConfig holds site-wide presentation settings.
type SiteConfig struct {
	Title   string `yaml:"title"`
	BaseURL string `yaml:"base_url"`
	// Templates optionally names a directory whose *.html files replace the
	// built-in page templates of the same name.
	Templates string `yaml:"templates,omitempty"`
}

// MarkdownConfig tunes body rendering.
type MarkdownConfig struct {
	HighlightStyle string `yaml:"highlight_style"`
	HardWraps      bool   `yaml:"hard_wraps"`
}

// FeedConfig configures the Atom feed.
type FeedConfig struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Limit  int    `yaml:"limit"`
	Path   string `yaml:"path"`
}

// OutputConfig configures the static export.
type OutputConfig struct {
	Directory   string   `yaml:"directory"`
	Ignore      []string `yaml:"ignore"`
	FollowLinks bool     `yaml:"follow_links"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Port    int  `yaml:"port"`
	Metrics bool `yaml:"metrics"`
}

// Load loads configuration from configPath. A missing file is not an error:
// the defaults describe a working site rooted at ./posts.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}

	cfg := Defaults()

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("file", configPath).
			Build()
	default:
		// Expand environment variables in the YAML content
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
				WithContext("file", configPath).
				Build()
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init creates a new configuration file populated with the defaults.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("file", configPath).
			Build()
	}

	example := Defaults()
	example.Site.Title = "My Blog"
	example.Feed.Author = "Jane Doe"

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal config").Build()
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.FileSystemError("failed to write config file").WithCause(err).
			WithContext("file", configPath).
			Build()
	}
	return nil
}
