// Package config loads client settings from the environment for binaries.
// Library code never calls it; core/client takes an explicit Config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/leofalp/llmjson/core/client"
	"github.com/leofalp/llmjson/providers/observability/slogobs"
)

// Environment variable names.
const (
	EnvAPIKey      = "LLMJSON_API_KEY"
	EnvBaseURL     = "LLMJSON_BASE_URL"
	EnvModel       = "LLMJSON_MODEL"
	EnvTimeout     = "LLMJSON_TIMEOUT"
	EnvMaxAttempts = "LLMJSON_MAX_ATTEMPTS"
	EnvLogLevel    = "LLMJSON_LOG_LEVEL"
	EnvLogFormat   = "LLMJSON_LOG_FORMAT"
)

// DefaultModel is used when LLMJSON_MODEL is unset.
const DefaultModel = "gpt-4o-mini"

// Settings is what a binary needs to build a client and its logger.
type Settings struct {
	Client    client.Config
	LogLevel  slog.Level
	LogFormat slogobs.Format
}

// Load reads the optional dotenv files (".env" when none are given) and then
// the LLMJSON_* variables. Variables already set in the process environment
// are not overridden by the files. A missing file is not an error.
func Load(files ...string) (Settings, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	return FromEnv(os.Getenv)
}

// FromEnv builds Settings from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (Settings, error) {
	settings := Settings{
		Client: client.Config{
			APIKey:  getenv(EnvAPIKey),
			BaseURL: getenv(EnvBaseURL),
			Model:   getenv(EnvModel),
		},
		LogLevel:  slogobs.ParseLevel(getenv(EnvLogLevel)),
		LogFormat: slogobs.ParseFormat(getenv(EnvLogFormat)),
	}
	if settings.Client.Model == "" {
		settings.Client.Model = DefaultModel
	}

	if raw := getenv(EnvTimeout); raw != "" {
		timeout, err := parseTimeout(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		settings.Client.DefaultTimeout = timeout
	}

	if raw := getenv(EnvMaxAttempts); raw != "" {
		attempts, err := strconv.Atoi(raw)
		if err != nil || attempts < 1 {
			return Settings{}, fmt.Errorf("%s: want a positive integer, got %q", EnvMaxAttempts, raw)
		}
		settings.Client.Budget.MaxAttempts = attempts
	}

	return settings, nil
}

// parseTimeout accepts a Go duration ("45s") or a plain number of seconds.
func parseTimeout(raw string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("want a positive timeout, got %q", raw)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	timeout, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("want a positive timeout, got %q", raw)
	}
	return timeout, nil
}
