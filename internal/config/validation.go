package config

import (
	"net/url"
	"path"
	"strings"

	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
)

// Validate checks the configuration for values the pipeline cannot work with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Content.Root) == "" {
		return errors.ConfigError("content.root must not be empty").Build()
	}
	if !strings.HasPrefix(c.Content.Extension, ".") || len(c.Content.Extension) < 2 {
		return errors.ConfigError("content.extension must start with a dot").
			WithContext("extension", c.Content.Extension).
			Build()
	}

	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.ConfigError("site.base_url must be an absolute http(s) URL").
			WithContext("base_url", c.Site.BaseURL).
			WithCause(err).
			Build()
	}
	c.Site.BaseURL = strings.TrimRight(c.Site.BaseURL, "/")

	if c.Feed.Limit <= 0 {
		return errors.ConfigError("feed.limit must be positive").
			WithContext("limit", c.Feed.Limit).
			Build()
	}
	if !strings.HasPrefix(c.Feed.Path, "/") {
		return errors.ConfigError("feed.path must start with a slash").
			WithContext("path", c.Feed.Path).
			Build()
	}

	if strings.TrimSpace(c.Output.Directory) == "" {
		return errors.ConfigError("output.directory must not be empty").Build()
	}
	for _, pattern := range c.Output.Ignore {
		if _, err := path.Match(pattern, ""); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid output.ignore pattern").
				WithContext("pattern", pattern).
				Build()
		}
	}

	if err := c.Log.validate(); err != nil {
		return err
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.ConfigError("server.port out of range").
			WithContext("port", c.Server.Port).
			Build()
	}
	return nil
}

// SiteURL joins an absolute site path onto the configured base URL.
func (c *Config) SiteURL(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(c.Site.BaseURL, "/") + p
}
