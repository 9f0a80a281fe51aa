package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
)

// Environment variables that override file configuration.
const (
	EnvBaseURL     = "BLOGFREEZE_BASE_URL"
	EnvDebug       = "BLOGFREEZE_DEBUG"
	EnvContentRoot = "BLOGFREEZE_CONTENT_ROOT"
	EnvOutputDir   = "BLOGFREEZE_OUTPUT_DIR"
)

// loadEnvFile loads environment variables from .env/.env.local files.
// It stops at the first file found; existing process variables are never
// overwritten. Having neither file is not an error.
func loadEnvFile() error {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("load %s: %w", envPath, err)
		}
		return nil
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		cfg.Site.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvContentRoot)); v != "" {
		cfg.Content.Root = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOutputDir)); v != "" {
		cfg.Output.Directory = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDebug)); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid boolean in environment").
				WithContext("variable", EnvDebug).
				Build()
		}
		cfg.Debug = debug
	}
	return nil
}
