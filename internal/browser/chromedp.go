package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// chromedpDriver runs one Chrome tab through chromedp.
type chromedpDriver struct {
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	// frame is the iframe node queries are scoped to; nil is the top level.
	frame *cdp.Node
}

func launchChromedp(ctx context.Context, opts Options) (driver, error) {
	logger := opts.logger()

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for _, f := range baselineFlags {
		allocOpts = append(allocOpts, chromedp.Flag(f.name, f.value))
	}
	if opts.BrowserPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.BrowserPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), "engine", EngineChromedp)
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...), "engine", EngineChromedp, "level", "error")
		}),
	)

	// Running with no actions starts the browser and opens the tab.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, err
	}

	return &chromedpDriver{
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
	}, nil
}

// run executes actions on the tab, bounded by ctx's deadline.
func (d *chromedpDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := d.tabCtx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(d.tabCtx, deadline)
		defer cancel()
	}

	err := chromedp.Run(runCtx, actions...)
	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrWaitTimeout, err)
	}
	return err
}

// query returns the selector options scoped to the current frame.
func (d *chromedpDriver) query() []chromedp.QueryOption {
	opts := []chromedp.QueryOption{chromedp.ByQuery}
	if d.frame != nil {
		opts = append(opts, chromedp.FromNode(d.frame))
	}
	return opts
}

func (d *chromedpDriver) navigate(ctx context.Context, url string) error {
	return d.run(ctx, chromedp.Navigate(url))
}

func (d *chromedpDriver) enterFrame(ctx context.Context, selector string) error {
	var nodes []*cdp.Node
	if err := d.run(ctx, chromedp.Nodes(selector, &nodes, d.query()...)); err != nil {
		return err
	}
	if len(nodes) == 0 {
		return fmt.Errorf("%s: %w", selector, ErrFrameNotFound)
	}
	d.frame = nodes[0]
	return nil
}

func (d *chromedpDriver) exitFrame(context.Context) error {
	d.frame = nil
	return nil
}

func (d *chromedpDriver) waitPresent(ctx context.Context, selector string) error {
	return d.run(ctx, chromedp.WaitReady(selector, d.query()...))
}

func (d *chromedpDriver) sendKeys(ctx context.Context, selector, text string) error {
	return d.run(ctx, chromedp.SendKeys(selector, text, d.query()...))
}

func (d *chromedpDriver) click(ctx context.Context, selector string) error {
	return d.run(ctx, chromedp.Click(selector, d.query()...))
}

func (d *chromedpDriver) outerHTML(ctx context.Context, selector string) (string, error) {
	var markup string
	if err := d.run(ctx, chromedp.OuterHTML(selector, &markup, d.query()...)); err != nil {
		return "", err
	}
	return markup, nil
}

// close shuts the browser down and releases the allocator.
func (d *chromedpDriver) close() error {
	err := chromedp.Cancel(d.tabCtx)
	d.tabCancel()
	d.allocCancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
