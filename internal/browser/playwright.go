package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// playwrightDriver runs one Chromium page through playwright-go.
type playwrightDriver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page

	// frame is the frame queries are scoped to.
	frame playwright.Frame
}

func launchPlaywright(_ context.Context, opts Options) (driver, error) {
	pw, err := playwright.Run(&playwright.RunOptions{
		DriverDirectory:     opts.DriverPath,
		SkipInstallBrowsers: true,
		Verbose:             false,
	})
	if err != nil {
		return nil, fmt.Errorf("playwright driver: %w", err)
	}

	args := make([]string, 0, len(baselineFlags))
	for _, a := range BaselineArgs() {
		if !strings.HasPrefix(a, "--headless") {
			args = append(args, a)
		}
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless:        playwright.Bool(true),
		ChromiumSandbox: playwright.Bool(false),
		Args:            args,
	}
	if opts.BrowserPath != "" {
		launch.ExecutablePath = playwright.String(opts.BrowserPath)
	}

	b, err := pw.Chromium.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	page, err := b.NewPage(playwright.BrowserNewPageOptions{
		Viewport: &playwright.Size{Width: WindowWidth, Height: WindowHeight},
	})
	if err != nil {
		_ = b.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("open page: %w", err)
	}

	return &playwrightDriver{
		pw:      pw,
		browser: b,
		page:    page,
		frame:   page.MainFrame(),
	}, nil
}

// timeoutMillis converts ctx's deadline to a Playwright timeout.
// Playwright reads 0 as "no timeout", so an expired deadline becomes 1ms.
func timeoutMillis(ctx context.Context) *float64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil
	}
	ms := float64(time.Until(deadline).Milliseconds())
	if ms < 1 {
		ms = 1
	}
	return playwright.Float(ms)
}

// mapErr translates Playwright timeouts to ErrWaitTimeout.
func mapErr(err error) error {
	if err != nil && errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrWaitTimeout, err)
	}
	return err
}

func (d *playwrightDriver) navigate(ctx context.Context, url string) error {
	_, err := d.page.Goto(url, playwright.PageGotoOptions{Timeout: timeoutMillis(ctx)})
	return mapErr(err)
}

func (d *playwrightDriver) enterFrame(ctx context.Context, selector string) error {
	el, err := d.frame.WaitForSelector(selector, playwright.FrameWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: timeoutMillis(ctx),
	})
	if err != nil {
		return mapErr(err)
	}
	frame, err := el.ContentFrame()
	if err != nil {
		return mapErr(err)
	}
	if frame == nil {
		return fmt.Errorf("%s: %w", selector, ErrFrameNotFound)
	}
	d.frame = frame
	return nil
}

func (d *playwrightDriver) exitFrame(context.Context) error {
	d.frame = d.page.MainFrame()
	return nil
}

func (d *playwrightDriver) waitPresent(ctx context.Context, selector string) error {
	_, err := d.frame.WaitForSelector(selector, playwright.FrameWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: timeoutMillis(ctx),
	})
	return mapErr(err)
}

func (d *playwrightDriver) sendKeys(ctx context.Context, selector, text string) error {
	return mapErr(d.frame.Locator(selector).Fill(text, playwright.LocatorFillOptions{
		Timeout: timeoutMillis(ctx),
	}))
}

func (d *playwrightDriver) click(ctx context.Context, selector string) error {
	return mapErr(d.frame.Locator(selector).Click(playwright.LocatorClickOptions{
		Timeout: timeoutMillis(ctx),
	}))
}

func (d *playwrightDriver) outerHTML(ctx context.Context, selector string) (string, error) {
	v, err := d.frame.Locator(selector).Evaluate("el => el.outerHTML", nil, playwright.LocatorEvaluateOptions{
		Timeout: timeoutMillis(ctx),
	})
	if err != nil {
		return "", mapErr(err)
	}
	markup, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("outerHTML of %s returned %T", selector, v)
	}
	return markup, nil
}

// close shuts the browser and the Playwright driver down.
func (d *playwrightDriver) close() error {
	return errors.Join(d.browser.Close(), d.pw.Stop())
}
