package config

import (
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// LogConfig selects the slog handler and its minimum level.
type LogConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// NormalizeLogLevel maps free-form input onto a LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(raw))) {
	case LogLevelDebug:
		return LogLevelDebug
	case LogLevelWarn, "warning":
		return LogLevelWarn
	case LogLevelError:
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// NormalizeLogFormat maps free-form input onto a LogFormat, defaulting to text.
func NormalizeLogFormat(raw string) LogFormat {
	if LogFormat(strings.ToLower(strings.TrimSpace(raw))) == LogFormatJSON {
		return LogFormatJSON
	}
	return LogFormatText
}

// SlogLevel converts the level for use with a slog handler.
func (l LogLevel) SlogLevel() slog.Level {
	switch NormalizeLogLevel(string(l)) {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *LogConfig) validate() error {
	if l.Level == "" {
		l.Level = LogLevelInfo
	}
	if l.Format == "" {
		l.Format = LogFormatText
	}
	switch LogLevel(strings.ToLower(strings.TrimSpace(string(l.Level)))) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, "warning", LogLevelError:
		l.Level = NormalizeLogLevel(string(l.Level))
	default:
		return errors.ConfigError("log.level must be one of debug, info, warn, error").
			WithContext("level", l.Level).
			Build()
	}
	switch LogFormat(strings.ToLower(strings.TrimSpace(string(l.Format)))) {
	case LogFormatText, LogFormatJSON:
		l.Format = NormalizeLogFormat(string(l.Format))
	default:
		return errors.ConfigError("log.format must be text or json").
			WithContext("format", l.Format).
			Build()
	}
	return nil
}
