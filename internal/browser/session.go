package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
)

// driver is implemented by each engine.
type driver interface {
	navigate(ctx context.Context, url string) error
	enterFrame(ctx context.Context, selector string) error
	exitFrame(ctx context.Context) error
	waitPresent(ctx context.Context, selector string) error
	sendKeys(ctx context.Context, selector, text string) error
	click(ctx context.Context, selector string) error
	outerHTML(ctx context.Context, selector string) (string, error)
	close() error
}

// launcher starts a browser for the resolved options.
type launcher func(ctx context.Context, opts Options) (driver, error)

// launchers maps each engine to its launcher.
var launchers = map[Engine]launcher{
	EngineChromedp:   launchChromedp,
	EnginePlaywright: launchPlaywright,
}

// Session is one running browser with a single page.
// A Session is not safe for concurrent use; each lookup owns its own.
type Session struct {
	engine Engine
	drv    driver
	logger *slog.Logger

	mu       sync.Mutex
	closed   bool
	once     sync.Once
	closeErr error
}

// Acquire starts a browser according to opts.
//
// Every failure is reported as a *model.LookupError of kind
// model.KindDriverInit carrying the underlying diagnostic. Anything
// started before the failure is released before Acquire returns.
//
// The browser is not tied to ctx's cancellation: it lives until Dispose.
func Acquire(ctx context.Context, opts Options) (*Session, error) {
	return acquire(ctx, opts, exec.LookPath, launchers)
}

func acquire(ctx context.Context, opts Options, lookPath func(string) (string, error), engines map[Engine]launcher) (*Session, error) {
	logger := opts.logger()

	resolved, err := opts.resolve(lookPath)
	if err != nil {
		return nil, initError(err)
	}

	launch, ok := engines[resolved.Engine]
	if !ok {
		return nil, initError(fmt.Errorf("%w: %q", ErrUnknownEngine, resolved.Engine))
	}

	if resolved.BrowserPath == "" {
		logger.Debug("no system browser found, using engine default", "engine", resolved.Engine)
	}
	if resolved.Engine == EngineChromedp && resolved.DriverPath != "" {
		logger.Debug("driver path is not used by the chromedp engine", "driver", resolved.DriverPath)
	}

	logger.Debug("starting browser",
		"engine", resolved.Engine,
		"browser", resolved.BrowserPath,
	)

	drv, err := launch(context.WithoutCancel(ctx), resolved)
	if err != nil {
		return nil, initError(err)
	}

	logger.Debug("browser started", "engine", resolved.Engine)

	return &Session{
		engine: resolved.Engine,
		drv:    drv,
		logger: logger,
	}, nil
}

// Engine returns the engine driving this session.
func (s *Session) Engine() Engine {
	return s.engine
}

// Dispose terminates the browser. It is idempotent and a no-op on a nil
// Session; every call returns the result of the first.
func (s *Session) Dispose() error {
	if s == nil {
		return nil
	}
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.closeErr = s.drv.close()
		if s.closeErr != nil {
			s.logger.Warn("failed to stop browser", "engine", s.engine, "error", s.closeErr)
			return
		}
		s.logger.Debug("browser stopped", "engine", s.engine)
	})
	return s.closeErr
}

// live returns the driver or ErrSessionClosed.
func (s *Session) live() (driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.drv, nil
}

// Navigate loads url in the top-level page.
func (s *Session) Navigate(ctx context.Context, url string) error {
	d, err := s.live()
	if err != nil {
		return err
	}
	return d.navigate(ctx, url)
}

// EnterFrame waits for the frame element matching selector and directs
// subsequent queries into its document.
func (s *Session) EnterFrame(ctx context.Context, selector string) error {
	d, err := s.live()
	if err != nil {
		return err
	}
	return d.enterFrame(ctx, selector)
}

// ExitFrame directs subsequent queries back to the top-level document.
func (s *Session) ExitFrame(ctx context.Context) error {
	d, err := s.live()
	if err != nil {
		return err
	}
	return d.exitFrame(ctx)
}

// WaitPresent waits until an element matching selector is in the DOM.
func (s *Session) WaitPresent(ctx context.Context, selector string) error {
	d, err := s.live()
	if err != nil {
		return err
	}
	return d.waitPresent(ctx, selector)
}

// SendKeys types text into the element matching selector.
func (s *Session) SendKeys(ctx context.Context, selector, text string) error {
	d, err := s.live()
	if err != nil {
		return err
	}
	return d.sendKeys(ctx, selector, text)
}

// Click clicks the element matching selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	d, err := s.live()
	if err != nil {
		return err
	}
	return d.click(ctx, selector)
}

// OuterHTML returns the outer HTML of the element matching selector.
func (s *Session) OuterHTML(ctx context.Context, selector string) (string, error) {
	d, err := s.live()
	if err != nil {
		return "", err
	}
	return d.outerHTML(ctx, selector)
}
