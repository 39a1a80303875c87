package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestNewConfig documents the default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Engine is chromedp", func(t *testing.T) {
		t.Parallel()
		if cfg.Engine != "chromedp" {
			t.Errorf("expected Engine to be 'chromedp', got '%s'", cfg.Engine)
		}
	})

	t.Run("default ListenAddress is :5001", func(t *testing.T) {
		t.Parallel()
		if cfg.ListenAddress != ":5001" {
			t.Errorf("expected ListenAddress to be ':5001', got '%s'", cfg.ListenAddress)
		}
	})

	t.Run("default MaxSessions is 2", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxSessions != 2 {
			t.Errorf("expected MaxSessions to be 2, got %d", cfg.MaxSessions)
		}
	})

	t.Run("default LookupsPerMinute is 30", func(t *testing.T) {
		t.Parallel()
		if cfg.LookupsPerMinute != 30 {
			t.Errorf("expected LookupsPerMinute to be 30, got %d", cfg.LookupsPerMinute)
		}
	})

	t.Run("default AllowedOrigins is any origin", func(t *testing.T) {
		t.Parallel()
		if diff := cmp.Diff([]string{"*"}, cfg.AllowedOrigins); diff != "" {
			t.Errorf("AllowedOrigins mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("journal is enabled in the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToJournal {
			t.Error("expected SaveToJournal to be true")
		}
		if cfg.JournalDir != XDGDataDir() {
			t.Errorf("expected JournalDir %q, got %q", XDGDataDir(), cfg.JournalDir)
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected default config to be valid, got %v", err)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr error
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "playwright engine", modify: func(c *Config) { c.Engine = "playwright" }},
		{name: "rate limit disabled", modify: func(c *Config) { c.LookupsPerMinute = 0 }},
		{name: "journal disabled without dir", modify: func(c *Config) {
			c.SaveToJournal = false
			c.JournalDir = ""
		}},
		{name: "unknown engine", modify: func(c *Config) { c.Engine = "selenium" }, wantErr: ErrInvalidEngine},
		{name: "zero sessions", modify: func(c *Config) { c.MaxSessions = 0 }, wantErr: ErrInvalidMaxSessions},
		{name: "negative rate", modify: func(c *Config) { c.LookupsPerMinute = -1 }, wantErr: ErrInvalidLookupRate},
		{name: "empty listen address", modify: func(c *Config) { c.ListenAddress = "" }, wantErr: ErrInvalidListenAddress},
		{name: "unknown log format", modify: func(c *Config) { c.LogFormat = "xml" }, wantErr: ErrInvalidLogFormat},
		{name: "json and markdown", modify: func(c *Config) {
			c.JSONOutput = true
			c.MarkdownOutput = true
		}, wantErr: ErrConflictingOutputFormats},
		{name: "journal without dir", modify: func(c *Config) { c.JournalDir = "" }, wantErr: ErrNoJournalDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		f, err := LoadConfigFile("/nonexistent/path/.tcmlookup")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if f != nil {
			t.Error("expected nil file when not found")
		}
	})

	t.Run("loads and applies valid YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".tcmlookup")
		content := `engine: Playwright
browser_path: /opt/chrome/chrome
listen: 127.0.0.1:8080
allowed_origins:
  - https://example.org
max_sessions: 4
lookups_per_minute: 0
log_format: json
journal:
  enabled: false
  dir: /var/lib/tcmlookup
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		f.Apply(cfg)

		want := NewConfig()
		want.Engine = "playwright"
		want.BrowserPath = "/opt/chrome/chrome"
		want.ListenAddress = "127.0.0.1:8080"
		want.AllowedOrigins = []string{"https://example.org"}
		want.MaxSessions = 4
		want.LookupsPerMinute = 0
		want.LogFormat = "json"
		want.SaveToJournal = false
		want.JournalDir = "/var/lib/tcmlookup"

		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty file leaves defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".tcmlookup")
		if err := os.WriteFile(path, nil, 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		cfg := NewConfig()
		f.Apply(cfg)
		if diff := cmp.Diff(NewConfig(), cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".tcmlookup")
		if err := os.WriteFile(path, []byte("max_sessions: [unclosed"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := func(vars map[string]string) func(string) (string, bool) {
		return func(name string) (string, bool) {
			v, ok := vars[name]
			return v, ok
		}
	}

	t.Run("buildpack variables", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		ApplyEnv(cfg, env(map[string]string{
			"CHROME_BINARY_PATH":   "/app/.chrome/chrome",
			"CHROMEDRIVER_PATH":    "/app/.chromedriver/bin",
			"TCMLOOKUP_ENGINE":     "PLAYWRIGHT",
			"TCMLOOKUP_LOG_FORMAT": "json",
			"PORT":                 "8000",
		}))

		if cfg.BrowserPath != "/app/.chrome/chrome" {
			t.Errorf("BrowserPath = %q", cfg.BrowserPath)
		}
		if cfg.DriverPath != "/app/.chromedriver/bin" {
			t.Errorf("DriverPath = %q", cfg.DriverPath)
		}
		if cfg.Engine != "playwright" {
			t.Errorf("Engine = %q", cfg.Engine)
		}
		if cfg.LogFormat != "json" {
			t.Errorf("LogFormat = %q", cfg.LogFormat)
		}
		if cfg.ListenAddress != ":8000" {
			t.Errorf("ListenAddress = %q", cfg.ListenAddress)
		}
	})

	t.Run("empty and malformed values are ignored", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		ApplyEnv(cfg, env(map[string]string{
			"CHROME_BINARY_PATH": "   ",
			"PORT":               "http",
		}))

		if diff := cmp.Diff(NewConfig(), cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("does not override existing variables", func(t *testing.T) {
		t.Setenv("TCMLOOKUP_TEST_KEEP", "from-process")
		t.Setenv("TCMLOOKUP_TEST_NEW", "")
		if err := os.Unsetenv("TCMLOOKUP_TEST_NEW"); err != nil {
			t.Fatal(err)
		}

		path := filepath.Join(t.TempDir(), ".env")
		content := "TCMLOOKUP_TEST_KEEP=from-file\nTCMLOOKUP_TEST_NEW=loaded\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := os.Getenv("TCMLOOKUP_TEST_KEEP"); got != "from-process" {
			t.Errorf("TCMLOOKUP_TEST_KEEP = %q, want from-process", got)
		}
		if got := os.Getenv("TCMLOOKUP_TEST_NEW"); got != "loaded" {
			t.Errorf("TCMLOOKUP_TEST_NEW = %q, want loaded", got)
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("engine: chromedp\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile("/nonexistent/custom.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
	} {
		if !strings.HasSuffix(dir, AppName) {
			t.Errorf("%s dir %q should end with %q", name, dir, AppName)
		}
	}
}
