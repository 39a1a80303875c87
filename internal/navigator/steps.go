package navigator

import (
	"context"
	"fmt"

	"github.com/nao1215/tcmlookup/internal/model"
)

// Fixed locations on the portal. These must match the live page exactly.
const (
	// PortalURL is the personnel contract search page.
	PortalURL = "https://www.tcmgo.tc.br/site/portal-da-transparencia/consulta-de-contratos-de-pessoal/"

	// FrameSelector matches the iframe hosting the search form.
	FrameSelector = "iframe[src*='consulta-ato-pessoal']"

	// SearchInputID is the id of the search key input.
	SearchInputID = "pesquisaAtos:cpf"

	// SubmitButtonID is the id of the search button.
	SubmitButtonID = "pesquisaAtos:abrirAtos"

	// ResultRowSelector matches a data row in the results container.
	ResultRowSelector = "#panelGroup table tbody tr"

	// ResultsContainerID is the id of the element whose markup is captured.
	ResultsContainerID = "panelGroup"
)

// byID returns a CSS selector for an element id. The portal's JSF ids
// contain ':' which cannot appear unescaped in a #id selector.
func byID(id string) string {
	return "[id='" + id + "']"
}

// Step is one transition of the page script.
type Step interface {
	// Name identifies the step in logs and errors.
	Name() string

	// Do performs the transition and returns the state reached.
	// ctx carries the step's wait budget.
	Do(ctx context.Context, nav *Navigation) (State, error)
}

// loadPageStep navigates to the portal.
type loadPageStep struct{}

func (loadPageStep) Name() string { return "load_page" }

func (loadPageStep) Do(ctx context.Context, nav *Navigation) (State, error) {
	if err := nav.page.Navigate(ctx, PortalURL); err != nil {
		return nav.State, err
	}
	return StatePageLoaded, nil
}

// enterFrameStep switches into the search iframe.
type enterFrameStep struct{}

func (enterFrameStep) Name() string { return "enter_frame" }

func (enterFrameStep) Do(ctx context.Context, nav *Navigation) (State, error) {
	if err := nav.page.EnterFrame(ctx, FrameSelector); err != nil {
		return nav.State, err
	}
	return StateFrameEntered, nil
}

// submitQueryStep types the key and submits the form.
type submitQueryStep struct{}

func (submitQueryStep) Name() string { return "submit_query" }

func (submitQueryStep) Do(ctx context.Context, nav *Navigation) (State, error) {
	input := byID(SearchInputID)
	if err := nav.page.WaitPresent(ctx, input); err != nil {
		return nav.State, err
	}
	if err := nav.page.SendKeys(ctx, input, nav.key.String()); err != nil {
		return nav.State, err
	}
	if err := nav.page.Click(ctx, byID(SubmitButtonID)); err != nil {
		return nav.State, err
	}
	return StateQuerySubmitted, nil
}

// awaitResultsStep waits for the first result row.
type awaitResultsStep struct{}

func (awaitResultsStep) Name() string { return "await_results" }

func (awaitResultsStep) Do(ctx context.Context, nav *Navigation) (State, error) {
	if err := nav.page.WaitPresent(ctx, ResultRowSelector); err != nil {
		return nav.State, err
	}
	return StateResultsReady, nil
}

// captureResultsStep reads the results container markup.
type captureResultsStep struct{}

func (captureResultsStep) Name() string { return "capture_results" }

func (captureResultsStep) Do(ctx context.Context, nav *Navigation) (State, error) {
	markup, err := nav.page.OuterHTML(ctx, byID(ResultsContainerID))
	if err != nil {
		return nav.State, fmt.Errorf("read results container: %w", err)
	}
	nav.Markup = model.RawResultMarkup(markup)
	if nav.Markup.IsEmpty() {
		return StateResultsEmpty, nil
	}
	return StateResultsFound, nil
}

// DefaultSteps returns the page script in order.
func DefaultSteps() []Step {
	return []Step{
		loadPageStep{},
		enterFrameStep{},
		submitQueryStep{},
		awaitResultsStep{},
		captureResultsStep{},
	}
}
