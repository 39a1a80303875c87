package browser

import (
	"errors"

	"github.com/nao1215/tcmlookup/internal/model"
)

var (
	// ErrWaitTimeout is returned when an element did not show up before
	// the caller's deadline.
	ErrWaitTimeout = errors.New("timed out waiting for element")

	// ErrBrowserNotFound is returned when no browser binary is configured
	// and none is found in PATH.
	ErrBrowserNotFound = errors.New("no Chrome or Chromium executable found in PATH")

	// ErrUnknownEngine is returned for an engine name other than
	// "chromedp" or "playwright".
	ErrUnknownEngine = errors.New("unknown browser engine")

	// ErrSessionClosed is returned by page operations after Dispose.
	ErrSessionClosed = errors.New("browser session is closed")

	// ErrFrameNotFound is returned when a frame element has no content document.
	ErrFrameNotFound = errors.New("frame has no content document")
)

// driverInitMessage prefixes every launch failure reported to callers.
const driverInitMessage = "failed to start the browser; check the Chrome/Chromium dependencies in this environment"

// initError classifies a launch failure.
func initError(err error) error {
	return model.NewLookupError(model.KindDriverInit, "", driverInitMessage+": "+err.Error(), err)
}
