package navigator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/tcmlookup/internal/browser"
	"github.com/nao1215/tcmlookup/internal/model"
)

// WaitTimeout is the budget of every step.
const WaitTimeout = 30 * time.Second

// TimeoutMessage is the diagnostic of every timed-out step.
const TimeoutMessage = "search did not return results in time (timeout); check the search key or try again"

// unexpectedPrefix starts the diagnostic of any other step failure.
const unexpectedPrefix = "unexpected error while scraping: "

// Page is the browser surface the page script needs.
// *browser.Session implements it.
type Page interface {
	Navigate(ctx context.Context, url string) error
	EnterFrame(ctx context.Context, selector string) error
	ExitFrame(ctx context.Context) error
	WaitPresent(ctx context.Context, selector string) error
	SendKeys(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error
	OuterHTML(ctx context.Context, selector string) (string, error)
}

// Navigation is the record of one run of the page script.
type Navigation struct {
	page Page
	key  model.SearchKey

	// State is the last state reached by a step. FrameExited is only
	// recorded in Visited.
	State State

	// Visited lists every state reached, in order, starting with StateStart.
	Visited []State

	// FailedStep is the name of the step that failed, if any.
	FailedStep string

	// Markup is the captured results container.
	Markup model.RawResultMarkup
}

// advance moves to s and records it.
func (n *Navigation) advance(s State) {
	n.State = s
	n.Visited = append(n.Visited, s)
}

// Navigator runs the page script.
type Navigator struct {
	steps  []Step
	logger *slog.Logger

	// waitTimeout is the budget of each step. Only tests change it.
	waitTimeout time.Duration
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(n *Navigator) {
		n.logger = logger
	}
}

// New creates a Navigator running DefaultSteps.
func New(opts ...Option) *Navigator {
	n := &Navigator{
		steps:       DefaultSteps(),
		waitTimeout: WaitTimeout,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	return n
}

// StepNames returns the names of the steps in execution order.
func (n *Navigator) StepNames() []string {
	names := make([]string, len(n.steps))
	for i, s := range n.steps {
		names[i] = s.Name()
	}
	return names
}

// Navigate runs the page script for key and returns the captured markup.
// The markup is empty, with a nil error, when the results container was
// found but had no content.
func (n *Navigator) Navigate(ctx context.Context, page Page, key model.SearchKey) (model.RawResultMarkup, error) {
	nav, err := n.Run(ctx, page, key)
	if err != nil {
		return "", err
	}
	return nav.Markup, nil
}

// Run runs the page script and returns the full navigation record.
// The returned Navigation is never nil. Errors are *model.LookupError.
//
// The frame is always exited before Run returns, whether or not a step
// failed. A failure to exit is logged and does not replace the result.
func (n *Navigator) Run(ctx context.Context, page Page, key model.SearchKey) (*Navigation, error) {
	ctx = context.WithoutCancel(ctx)

	nav := &Navigation{page: page, key: key}
	nav.advance(StateStart)

	defer n.exitFrame(ctx, nav)

	for _, step := range n.steps {
		n.logger.Debug("executing step", "step", step.Name(), "state", nav.State.String())

		stepCtx, cancel := context.WithTimeout(ctx, n.waitTimeout)
		next, err := step.Do(stepCtx, nav)
		cancel()

		if err != nil {
			nav.FailedStep = step.Name()
			lerr := classify(step.Name(), err)
			n.logger.Warn("step failed",
				"step", step.Name(),
				"state", nav.State.String(),
				"kind", lerr.Kind.String(),
				"error", err,
			)
			return nav, lerr
		}

		nav.advance(next)
		n.logger.Debug("step completed", "step", step.Name(), "state", next.String())
	}

	return nav, nil
}

// exitFrame returns queries to the top-level document.
func (n *Navigator) exitFrame(ctx context.Context, nav *Navigation) {
	exitCtx, cancel := context.WithTimeout(ctx, n.waitTimeout)
	defer cancel()

	if err := nav.page.ExitFrame(exitCtx); err != nil {
		n.logger.Warn("failed to leave frame", "state", nav.State.String(), "error", err)
	}
	nav.Visited = append(nav.Visited, StateFrameExited)
}

// classify converts a step failure to a LookupError.
func classify(step string, err error) *model.LookupError {
	if errors.Is(err, browser.ErrWaitTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return model.NewLookupError(model.KindTimeout, step, TimeoutMessage, err)
	}
	return model.NewLookupError(model.KindUnexpectedScrape, step, unexpectedPrefix+err.Error(), err)
}
