package config

import (
	"testing"

	"github.com/playrank/inhouse-ratings/internal/platform/logging"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("unexpected app env: %q", cfg.AppEnv)
	}
	if cfg.ServiceName != "inhouse-ratings" {
		t.Fatalf("unexpected service name: %q", cfg.ServiceName)
	}
	if cfg.BaselineWorkers != 2 {
		t.Fatalf("unexpected baseline workers: %d", cfg.BaselineWorkers)
	}
	if !cfg.DBDisablePreparedBinary {
		t.Fatal("expected prepared binary results disabled by default")
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalidAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production-ish")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid APP_ENV")
	}
}

func TestLoadRejectsZeroWorkers(t *testing.T) {
	t.Setenv("BASELINE_WORKERS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for BASELINE_WORKERS=0")
	}
}

func TestLoadRequiresDSNWhenUptraceEnabled(t *testing.T) {
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when UPTRACE_ENABLED=true without DSN")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logging.Level{
		"debug":   logging.LevelDebug,
		"WARN":    logging.LevelWarn,
		"warning": logging.LevelWarn,
		"error":   logging.LevelError,
		"":        logging.LevelInfo,
		"bogus":   logging.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLogLevel(input); got != want {
			t.Fatalf("parseLogLevel(%q): got=%v want=%v", input, got, want)
		}
	}
}
