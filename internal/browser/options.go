package browser

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Engine selects the browser automation library.
type Engine string

const (
	// EngineChromedp drives Chrome over the DevTools protocol with chromedp.
	EngineChromedp Engine = "chromedp"

	// EnginePlaywright drives Chromium through playwright-go.
	EnginePlaywright Engine = "playwright"
)

// DefaultEngine is used when Options.Engine is empty.
const DefaultEngine = EngineChromedp

// ParseEngine converts a configuration value to an Engine.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(s))); e {
	case "":
		return DefaultEngine, nil
	case EngineChromedp, EnginePlaywright:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, s)
	}
}

// Window size of every session.
const (
	WindowWidth  = 1920
	WindowHeight = 1080
)

// flag is one command-line switch passed to the browser.
type flag struct {
	name  string
	value any
}

// baselineFlags are applied to every session regardless of options.
var baselineFlags = []flag{
	{name: "headless", value: true},
	{name: "no-sandbox", value: true},
	{name: "disable-dev-shm-usage", value: true},
	{name: "disable-gpu", value: true},
	{name: "window-size", value: strconv.Itoa(WindowWidth) + "," + strconv.Itoa(WindowHeight)},
}

// BaselineArgs renders the baseline flags as command-line arguments.
func BaselineArgs() []string {
	args := make([]string, 0, len(baselineFlags))
	for _, f := range baselineFlags {
		switch v := f.value.(type) {
		case bool:
			if v {
				args = append(args, "--"+f.name)
			}
		default:
			args = append(args, fmt.Sprintf("--%s=%v", f.name, v))
		}
	}
	return args
}

// Options configures Acquire.
type Options struct {
	// Engine selects chromedp or playwright. Empty means DefaultEngine.
	Engine Engine

	// BrowserPath is the browser executable. When empty, PATH is searched
	// for a Chrome or Chromium binary.
	BrowserPath string

	// DriverPath is the Playwright driver directory. The chromedp engine
	// talks to the browser directly and does not use it.
	DriverPath string

	// Logger receives lifecycle and engine debug output.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// logger returns the configured logger or the default one.
func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// resolve validates o and fills in the browser path. lookPath is the
// executable search used for discovery.
func (o Options) resolve(lookPath func(string) (string, error)) (Options, error) {
	engine, err := ParseEngine(string(o.Engine))
	if err != nil {
		return o, err
	}
	o.Engine = engine

	if o.BrowserPath != "" {
		if _, err := os.Stat(o.BrowserPath); err != nil {
			return o, fmt.Errorf("browser binary %s: %w", o.BrowserPath, err)
		}
	} else {
		path, err := FindBrowser(lookPath)
		switch {
		case err == nil:
			o.BrowserPath = path
		case o.Engine == EnginePlaywright:
			// Playwright falls back to its own managed Chromium.
		default:
			return o, err
		}
	}

	if o.DriverPath != "" {
		if _, err := os.Stat(o.DriverPath); err != nil {
			return o, fmt.Errorf("driver path %s: %w", o.DriverPath, err)
		}
	}
	return o, nil
}
