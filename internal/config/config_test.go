package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leofalp/llmjson/providers/observability/slogobs"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnv(t *testing.T) {
	settings, err := FromEnv(envMap(map[string]string{
		EnvAPIKey:      "sk-test",
		EnvBaseURL:     "http://localhost:11434/v1",
		EnvModel:       "llama3.1",
		EnvTimeout:     "45s",
		EnvMaxAttempts: "5",
		EnvLogLevel:    "debug",
		EnvLogFormat:   "json",
	}))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}

	cfg := settings.Client
	if cfg.APIKey != "sk-test" || cfg.BaseURL != "http://localhost:11434/v1" || cfg.Model != "llama3.1" {
		t.Errorf("client config = %+v", cfg)
	}
	if cfg.DefaultTimeout != 45*time.Second {
		t.Errorf("DefaultTimeout = %s, want 45s", cfg.DefaultTimeout)
	}
	if cfg.Budget.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Budget.MaxAttempts)
	}
	if settings.LogLevel != slog.LevelDebug || settings.LogFormat != slogobs.FormatJSON {
		t.Errorf("log settings = %v %v", settings.LogLevel, settings.LogFormat)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	settings, err := FromEnv(envMap(nil))
	if err != nil {
		t.Fatalf("FromEnv() error = %v", err)
	}
	if settings.Client.Model != DefaultModel {
		t.Errorf("Model = %q, want %q", settings.Client.Model, DefaultModel)
	}
	if settings.Client.DefaultTimeout != 0 || settings.Client.Budget.MaxAttempts != 0 {
		t.Errorf("zero values expected so the client applies its defaults, got %+v", settings.Client)
	}
	if settings.LogLevel != slog.LevelInfo || settings.LogFormat != slogobs.FormatText {
		t.Errorf("log settings = %v %v", settings.LogLevel, settings.LogFormat)
	}
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"timeout not a duration": {EnvTimeout: "soon"},
		"negative timeout":       {EnvTimeout: "-5"},
		"zero attempts":          {EnvMaxAttempts: "0"},
		"attempts not a number":  {EnvMaxAttempts: "three"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := FromEnv(envMap(env)); err == nil {
				t.Error("FromEnv() expected an error")
			}
		})
	}
}

func TestParseTimeout_Seconds(t *testing.T) {
	got, err := parseTimeout("30")
	if err != nil {
		t.Fatalf("parseTimeout() error = %v", err)
	}
	if got != 30*time.Second {
		t.Errorf("parseTimeout(30) = %s, want 30s", got)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("LLMJSON_MODEL=from-file\nLLMJSON_MAX_ATTEMPTS=4\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvModel, "")
	os.Unsetenv(EnvModel)
	t.Setenv(EnvMaxAttempts, "2")

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if settings.Client.Model != "from-file" {
		t.Errorf("Model = %q, want the file value", settings.Client.Model)
	}
	if settings.Client.Budget.MaxAttempts != 2 {
		t.Errorf("MaxAttempts = %d, want the process value 2", settings.Client.Budget.MaxAttempts)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("Load() error = %v, want nil for a missing file", err)
	}
}
