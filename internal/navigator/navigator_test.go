package navigator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/tcmlookup/internal/browser"
	"github.com/nao1215/tcmlookup/internal/model"
)

const resultsMarkup = `<div id="panelGroup"><table><thead><tr><th>Nome</th></tr></thead>` +
	`<tbody><tr><td>Ana</td></tr></tbody></table></div>`

// fakePage scripts the portal. Each hook, when set, replaces the default
// successful behaviour of the matching method.
type fakePage struct {
	mu    sync.Mutex
	calls []string

	// deadlines records whether each call carried a deadline.
	deadlines []bool

	// canceled records whether any call saw a cancelled context.
	canceled bool

	onNavigate   func(ctx context.Context) error
	onEnterFrame func(ctx context.Context) error
	onExitFrame  func(ctx context.Context) error
	onWait       func(ctx context.Context, selector string) error
	onSendKeys   func(ctx context.Context) error
	onClick      func(ctx context.Context) error
	markup       *string
}

func (p *fakePage) record(ctx context.Context, call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
	_, ok := ctx.Deadline()
	p.deadlines = append(p.deadlines, ok)
	if ctx.Err() == context.Canceled {
		p.canceled = true
	}
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.record(ctx, "navigate "+url)
	if p.onNavigate != nil {
		return p.onNavigate(ctx)
	}
	return nil
}

func (p *fakePage) EnterFrame(ctx context.Context, selector string) error {
	p.record(ctx, "enter "+selector)
	if p.onEnterFrame != nil {
		return p.onEnterFrame(ctx)
	}
	return nil
}

func (p *fakePage) ExitFrame(ctx context.Context) error {
	p.record(ctx, "exit")
	if p.onExitFrame != nil {
		return p.onExitFrame(ctx)
	}
	return nil
}

func (p *fakePage) WaitPresent(ctx context.Context, selector string) error {
	p.record(ctx, "wait "+selector)
	if p.onWait != nil {
		return p.onWait(ctx, selector)
	}
	return nil
}

func (p *fakePage) SendKeys(ctx context.Context, selector, text string) error {
	p.record(ctx, "keys "+selector+" "+text)
	if p.onSendKeys != nil {
		return p.onSendKeys(ctx)
	}
	return nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	p.record(ctx, "click "+selector)
	if p.onClick != nil {
		return p.onClick(ctx)
	}
	return nil
}

func (p *fakePage) OuterHTML(ctx context.Context, selector string) (string, error) {
	p.record(ctx, "html "+selector)
	if p.markup != nil {
		return *p.markup, nil
	}
	return resultsMarkup, nil
}

func (p *fakePage) lastCall() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return ""
	}
	return p.calls[len(p.calls)-1]
}

// blockUntilDeadline behaves like a browser wait for an element that
// never appears.
func blockUntilDeadline(ctx context.Context) error {
	<-ctx.Done()
	return fmt.Errorf("%w: %w", browser.ErrWaitTimeout, ctx.Err())
}

func testNavigator(timeout time.Duration) *Navigator {
	n := New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	n.waitTimeout = timeout
	return n
}

func TestNavigateFollowsThePageScript(t *testing.T) {
	t.Parallel()

	page := &fakePage{}
	nav, err := testNavigator(time.Second).Run(context.Background(), page, "123.456.789-00")
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	wantCalls := []string{
		"navigate https://www.tcmgo.tc.br/site/portal-da-transparencia/consulta-de-contratos-de-pessoal/",
		"enter iframe[src*='consulta-ato-pessoal']",
		"wait [id='pesquisaAtos:cpf']",
		"keys [id='pesquisaAtos:cpf'] 123.456.789-00",
		"click [id='pesquisaAtos:abrirAtos']",
		"wait #panelGroup table tbody tr",
		"html [id='panelGroup']",
		"exit",
	}
	if diff := cmp.Diff(wantCalls, page.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}

	wantStates := []State{
		StateStart, StatePageLoaded, StateFrameEntered, StateQuerySubmitted,
		StateResultsReady, StateResultsFound, StateFrameExited,
	}
	if diff := cmp.Diff(wantStates, nav.Visited); diff != "" {
		t.Errorf("visited mismatch (-want +got):\n%s", diff)
	}
	if nav.Markup != resultsMarkup {
		t.Errorf("unexpected markup %q", nav.Markup)
	}
	for i, ok := range page.deadlines {
		if !ok {
			t.Errorf("call %q ran without a deadline", page.calls[i])
		}
	}
}

func TestNavigateResultsNeverAppear(t *testing.T) {
	t.Parallel()

	page := &fakePage{
		onWait: func(ctx context.Context, selector string) error {
			if selector == ResultRowSelector {
				return blockUntilDeadline(ctx)
			}
			return nil
		},
	}

	start := time.Now()
	markup, err := testNavigator(50*time.Millisecond).Navigate(context.Background(), page, "00000000000")
	if time.Since(start) > 5*time.Second {
		t.Error("navigation did not respect the wait budget")
	}

	if markup != "" {
		t.Errorf("expected no markup, got %q", markup)
	}
	if !errors.Is(err, model.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	var lerr *model.LookupError
	if !errors.As(err, &lerr) || lerr.Step != "await_results" {
		t.Errorf("expected failure at await_results, got %+v", lerr)
	}
	if err.Error() != TimeoutMessage {
		t.Errorf("message = %q", err.Error())
	}
	if page.lastCall() != "exit" {
		t.Errorf("frame was not exited after timeout, last call %q", page.lastCall())
	}
}

// The frame missing and the search input missing produce the same error.
// This mirrors the portal integration as deployed; see DESIGN.md.
func TestFrameAndInputTimeoutsAreIndistinguishable(t *testing.T) {
	t.Parallel()

	frameMissing := &fakePage{onEnterFrame: blockUntilDeadline}
	inputMissing := &fakePage{
		onWait: func(ctx context.Context, selector string) error {
			if selector == byID(SearchInputID) {
				return blockUntilDeadline(ctx)
			}
			return nil
		},
	}

	n := testNavigator(20 * time.Millisecond)
	_, frameErr := n.Navigate(context.Background(), frameMissing, "1")
	_, inputErr := n.Navigate(context.Background(), inputMissing, "1")

	for name, err := range map[string]error{"frame": frameErr, "input": inputErr} {
		if !errors.Is(err, model.ErrTimeout) {
			t.Errorf("%s: expected timeout, got %v", name, err)
		}
	}
	if frameErr.Error() != inputErr.Error() {
		t.Errorf("messages differ: %q vs %q", frameErr.Error(), inputErr.Error())
	}
	if frameMissing.lastCall() != "exit" || inputMissing.lastCall() != "exit" {
		t.Error("frame was not exited")
	}
}

func TestNavigateUnexpectedFailure(t *testing.T) {
	t.Parallel()

	page := &fakePage{
		onClick: func(context.Context) error {
			return errors.New("element is not clickable at point (10, 20)")
		},
	}

	nav, err := testNavigator(time.Second).Run(context.Background(), page, "1")
	if !errors.Is(err, model.ErrUnexpectedScrape) {
		t.Fatalf("expected unexpected scrape error, got %v", err)
	}
	if !strings.Contains(err.Error(), "element is not clickable") {
		t.Errorf("diagnostic %q does not carry the cause", err.Error())
	}
	if nav.FailedStep != "submit_query" {
		t.Errorf("FailedStep = %q", nav.FailedStep)
	}
	if nav.State != StateFrameEntered {
		t.Errorf("State = %s, want frame_entered", nav.State)
	}
	if got := nav.Visited[len(nav.Visited)-1]; got != StateFrameExited {
		t.Errorf("last visited = %s, want frame_exited", got)
	}
}

func TestNavigateExitsFrameWhenLoadFails(t *testing.T) {
	t.Parallel()

	page := &fakePage{
		onNavigate: func(context.Context) error {
			return errors.New("net::ERR_NAME_NOT_RESOLVED")
		},
	}

	_, err := testNavigator(time.Second).Navigate(context.Background(), page, "1")
	if !errors.Is(err, model.ErrUnexpectedScrape) {
		t.Fatalf("expected unexpected scrape error, got %v", err)
	}
	if page.lastCall() != "exit" {
		t.Errorf("last call = %q, want exit", page.lastCall())
	}
}

func TestNavigateExitFailureDoesNotMaskResult(t *testing.T) {
	t.Parallel()

	page := &fakePage{
		onExitFrame: func(context.Context) error {
			return errors.New("target closed")
		},
	}

	markup, err := testNavigator(time.Second).Navigate(context.Background(), page, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if markup != resultsMarkup {
		t.Errorf("unexpected markup %q", markup)
	}
}

func TestNavigateEmptyContainer(t *testing.T) {
	t.Parallel()

	empty := "   "
	page := &fakePage{markup: &empty}

	nav, err := testNavigator(time.Second).Run(context.Background(), page, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if nav.State != StateResultsEmpty {
		t.Errorf("State = %s, want results_empty", nav.State)
	}
}

func TestNavigateIgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page := &fakePage{}
	if _, err := testNavigator(time.Second).Navigate(ctx, page, "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.canceled {
		t.Error("a page call observed the caller's cancellation")
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	if StateResultsReady.String() != "results_ready" {
		t.Errorf("got %q", StateResultsReady.String())
	}
	if State(99).String() != "unknown" {
		t.Errorf("got %q", State(99).String())
	}
}

func TestStepNames(t *testing.T) {
	t.Parallel()

	want := []string{"load_page", "enter_frame", "submit_query", "await_results", "capture_results"}
	if diff := cmp.Diff(want, New().StepNames()); diff != "" {
		t.Errorf("StepNames() mismatch (-want +got):\n%s", diff)
	}
}
