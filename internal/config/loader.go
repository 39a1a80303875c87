package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name searched for in the
// current and home directories.
const DefaultConfigFile = ".tcmlookup"

// xdgConfigFile is the configuration file name inside XDGConfigDir.
const xdgConfigFile = "config.yaml"

// Environment variables read by ApplyEnv.
const (
	// EnvBrowserPath is the browser executable, as set by container
	// buildpacks.
	EnvBrowserPath = "CHROME_BINARY_PATH"

	// EnvDriverPath is the browser driver location.
	EnvDriverPath = "CHROMEDRIVER_PATH"

	// EnvEngine selects the browser engine.
	EnvEngine = "TCMLOOKUP_ENGINE"

	// EnvLogFormat selects the log format.
	EnvLogFormat = "TCMLOOKUP_LOG_FORMAT"

	// EnvPort is the listen port set by hosting platforms.
	EnvPort = "PORT"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the structure of the YAML configuration file.
// Zero values leave the corresponding Config field unchanged.
type File struct {
	Engine           string      `yaml:"engine,omitempty"`
	BrowserPath      string      `yaml:"browser_path,omitempty"`
	DriverPath       string      `yaml:"driver_path,omitempty"`
	Listen           string      `yaml:"listen,omitempty"`
	AllowedOrigins   []string    `yaml:"allowed_origins,omitempty"`
	MaxSessions      int         `yaml:"max_sessions,omitempty"`
	LookupsPerMinute *int        `yaml:"lookups_per_minute,omitempty"`
	LogFormat        string      `yaml:"log_format,omitempty"`
	Journal          JournalFile `yaml:"journal,omitempty"`
}

// JournalFile is the journal section of the configuration file.
type JournalFile struct {
	// Enabled turns the journal on or off. Nil keeps the default.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Dir overrides the journal directory.
	Dir string `yaml:"dir,omitempty"`
}

// LoadConfigFile reads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply copies the values set in f onto cfg.
func (f *File) Apply(cfg *Config) {
	if f.Engine != "" {
		cfg.Engine = strings.ToLower(f.Engine)
	}
	if f.BrowserPath != "" {
		cfg.BrowserPath = f.BrowserPath
	}
	if f.DriverPath != "" {
		cfg.DriverPath = f.DriverPath
	}
	if f.Listen != "" {
		cfg.ListenAddress = f.Listen
	}
	if len(f.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = f.AllowedOrigins
	}
	if f.MaxSessions != 0 {
		cfg.MaxSessions = f.MaxSessions
	}
	if f.LookupsPerMinute != nil {
		cfg.LookupsPerMinute = *f.LookupsPerMinute
	}
	if f.LogFormat != "" {
		cfg.LogFormat = strings.ToLower(f.LogFormat)
	}
	if f.Journal.Enabled != nil {
		cfg.SaveToJournal = *f.Journal.Enabled
	}
	if f.Journal.Dir != "" {
		cfg.JournalDir = f.Journal.Dir
	}
}

// ApplyEnv copies values from the environment onto cfg. lookup is
// usually os.LookupEnv. Empty variables are ignored.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	get := func(name string) (string, bool) {
		v, ok := lookup(name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvBrowserPath); ok {
		cfg.BrowserPath = v
	}
	if v, ok := get(EnvDriverPath); ok {
		cfg.DriverPath = v
	}
	if v, ok := get(EnvEngine); ok {
		cfg.Engine = strings.ToLower(v)
	}
	if v, ok := get(EnvLogFormat); ok {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v, ok := get(EnvPort); ok {
		if _, err := strconv.Atoi(v); err == nil {
			cfg.ListenAddress = ":" + v
		}
	}
}

// LoadDotEnv loads variables from path into the process environment
// without overriding variables that are already set. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// XDGConfigFile returns the path of config.yaml in the XDG config
// directory.
func XDGConfigFile() string {
	return filepath.Join(XDGConfigDir(), xdgConfigFile)
}

// FindConfigFile searches for the configuration file in the following order:
//  1. configPath, if specified
//  2. .tcmlookup in the current directory
//  3. .tcmlookup in the home directory
//  4. config.yaml in the XDG config directory
//
// It returns an empty string if no file is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, XDGConfigFile())

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
