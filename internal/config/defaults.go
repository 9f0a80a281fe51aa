package config

// Default values, mirroring the conventions of a freshly initialised blog.
const (
	DefaultContentRoot = "posts"
	DefaultExtension   = ".md"
	DefaultBaseURL     = "http://localhost:8000"
	DefaultFeedTitle   = "Recent Articles"
	DefaultFeedLimit   = 10
	DefaultFeedPath    = "/feed.atom"
	DefaultOutputDir   = "build"
	DefaultPort        = 8000
	DefaultHighlight   = "friendly"
)

// DefaultIgnore lists destination paths that survive the export's clean step:
// version-control metadata and the custom-domain marker.
var DefaultIgnore = []string{".git*", "CNAME"}

// Defaults returns a Config populated with every default value.
func Defaults() *Config {
	return &Config{
		Content: ContentConfig{
			Root:      DefaultContentRoot,
			Extension: DefaultExtension,
		},
		Site: SiteConfig{
			Title:   "Blog",
			BaseURL: DefaultBaseURL,
		},
		Markdown: MarkdownConfig{
			HighlightStyle: DefaultHighlight,
		},
		Feed: FeedConfig{
			Title: DefaultFeedTitle,
			Limit: DefaultFeedLimit,
			Path:  DefaultFeedPath,
		},
		Output: OutputConfig{
			Directory:   DefaultOutputDir,
			Ignore:      append([]string(nil), DefaultIgnore...),
			FollowLinks: true,
		},
		Server: ServerConfig{
			Port: DefaultPort,
		},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}
