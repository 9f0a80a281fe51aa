// Package commands implements the blogfreeze command line.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogfreeze/internal/config"
	"git.home.luguber.info/inful/blogfreeze/internal/version"
)

// Global carries state shared by every subcommand.
type Global struct {
	// Out receives user-facing output. Defaults to stdout.
	Out io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (optional)" default:"blogfreeze.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve ServeCmd `cmd:"" default:"withargs" help:"Serve the blog with preview visibility, restarting on content changes"`
	Build BuildCmd `cmd:"" help:"Freeze the blog into static files"`
	Posts PostsCmd `cmd:"" help:"List posts in index order"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration and first post"`
}

// NewParser builds the kong parser for cli.
func NewParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("blogfreeze"),
		kong.Description("Serve a directory of markdown posts as a blog, or freeze it into static files."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	}, options...)
	return kong.New(cli, options...)
}

// AfterApply runs after flag parsing; sets up logging until the
// configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := config.LogLevelInfo
	if c.Verbose {
		level = config.LogLevelDebug
	}
	setupLogging(config.LogConfig{Level: level, Format: config.LogFormatText})
	return nil
}

// LoadConfig loads the configuration file and applies its log settings.
// --verbose always wins over the configured level.
func (c *CLI) LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	logCfg := cfg.Log
	if c.Verbose {
		logCfg.Level = config.LogLevelDebug
	}
	setupLogging(logCfg)
	return cfg, nil
}

func setupLogging(lc config.LogConfig) {
	w := os.Stderr
	opts := &slog.HandlerOptions{Level: lc.Level.SlogLevel()}
	var handler slog.Handler
	if lc.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}
