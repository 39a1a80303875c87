// Package browser owns the headless browser process used for one lookup.
//
// A Session is started with Acquire and released with Dispose. Dispose is
// idempotent and safe on a nil *Session, so callers can defer it right
// after Acquire regardless of the outcome:
//
//	sess, err := browser.Acquire(ctx, opts)
//	defer sess.Dispose()
//	if err != nil {
//	    return err
//	}
//
// Two engines are supported. The chromedp engine speaks the DevTools
// protocol directly to a Chrome or Chromium binary. The playwright engine
// goes through the Playwright driver and can use either a system browser
// or one managed by Playwright.
//
// Every session runs headless with a 1920x1080 window, the sandbox
// disabled and /dev/shm usage disabled. These flags are not configurable:
// the service runs in unprivileged containers where the sandbox cannot
// start.
//
// All waits honour the deadline of the context passed to each call. A wait
// that runs past the deadline returns an error matching ErrWaitTimeout,
// whichever engine is in use.
package browser
