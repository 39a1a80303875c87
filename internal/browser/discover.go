package browser

// browserCandidates are the executable names searched for in PATH, in order.
var browserCandidates = []string{
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
	"headless-shell",
}

// FindBrowser returns the first candidate browser executable found by
// lookPath, usually exec.LookPath.
func FindBrowser(lookPath func(string) (string, error)) (string, error) {
	for _, name := range browserCandidates {
		if path, err := lookPath(name); err == nil && path != "" {
			return path, nil
		}
	}
	return "", ErrBrowserNotFound
}
