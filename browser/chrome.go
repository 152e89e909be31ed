package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

type chromePage struct {
	ctx     context.Context
	cancel  func()
	timeout time.Duration
}

func newChromePage(opts Options) (Page, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(1280, 900),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	p := &chromePage{
		ctx: ctx,
		cancel: func() {
			cancelCtx()
			cancelAlloc()
		},
		timeout: opts.timeout(),
	}
	// starts the browser process
	if err := chromedp.Run(ctx); err != nil {
		p.cancel()
		return nil, fmt.Errorf("starting Chrome: %w", err)
	}
	return p, nil
}

func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	tCtx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(tCtx, actions...)
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (p *chromePage) TextContent(ctx context.Context, xpath string) (string, error) {
	if err := p.requireElement(ctx, xpath); err != nil {
		return "", err
	}
	var text string
	if err := p.run(ctx, chromedp.TextContent(xpath, &text, chromedp.BySearch)); err != nil {
		return "", fmt.Errorf("reading text of %s: %w", xpath, err)
	}
	return text, nil
}

func (p *chromePage) Attribute(ctx context.Context, xpath, name string) (string, bool, error) {
	if err := p.requireElement(ctx, xpath); err != nil {
		return "", false, err
	}
	var (
		value string
		ok    bool
	)
	if err := p.run(ctx, chromedp.AttributeValue(xpath, name, &value, &ok, chromedp.BySearch)); err != nil {
		return "", false, fmt.Errorf("reading attribute %s of %s: %w", name, xpath, err)
	}
	return value, ok, nil
}

func (p *chromePage) Count(ctx context.Context, xpath string) (int, error) {
	var nodes []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(xpath, &nodes, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
		return 0, fmt.Errorf("counting %s: %w", xpath, err)
	}
	return len(nodes), nil
}

// the query actions wait for a matching element to appear, so check first
func (p *chromePage) requireElement(ctx context.Context, xpath string) error {
	n, err := p.Count(ctx, xpath)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", xpath, ErrNotFound)
	}
	return nil
}

func (p *chromePage) Screenshot() ([]byte, error) {
	var buf []byte
	// quality 100 produces a PNG
	if err := p.run(context.Background(), chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, fmt.Errorf("taking screenshot: %w", err)
	}
	return buf, nil
}

func (p *chromePage) Close() error {
	p.cancel()
	return nil
}
