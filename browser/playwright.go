package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

type playwrightPage struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	timeout time.Duration
}

func newPlaywrightPage(engine string, opts Options) (Page, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting Playwright: %w", err)
	}
	browserType := map[string]playwright.BrowserType{
		"chromium": pw.Chromium,
		"firefox":  pw.Firefox,
		"webkit":   pw.WebKit,
	}[engine]

	browser, err := browserType.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launching %s: %w", engine, err)
	}
	page, err := browser.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("opening %s page: %w", engine, err)
	}
	timeout := opts.timeout()
	page.SetDefaultTimeout(float64(timeout.Milliseconds()))
	page.SetDefaultNavigationTimeout(float64(timeout.Milliseconds()))
	return &playwrightPage{pw: pw, browser: browser, page: page, timeout: timeout}, nil
}

// Playwright calls are not cancellable, so a cancelled ctx only prevents the next call.
func (p *playwrightPage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := p.page.Goto(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (p *playwrightPage) locate(ctx context.Context, xpath string) (playwright.Locator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	locator := p.page.Locator("xpath=" + xpath)
	n, err := locator.Count()
	if err != nil {
		return nil, fmt.Errorf("counting %s: %w", xpath, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s: %w", xpath, ErrNotFound)
	}
	return locator.First(), nil
}

func (p *playwrightPage) TextContent(ctx context.Context, xpath string) (string, error) {
	locator, err := p.locate(ctx, xpath)
	if err != nil {
		return "", err
	}
	text, err := locator.TextContent()
	if err != nil {
		return "", fmt.Errorf("reading text of %s: %w", xpath, err)
	}
	return text, nil
}

func (p *playwrightPage) Attribute(ctx context.Context, xpath, name string) (string, bool, error) {
	locator, err := p.locate(ctx, xpath)
	if err != nil {
		return "", false, err
	}
	value, err := locator.GetAttribute(name)
	if err != nil {
		return "", false, fmt.Errorf("reading attribute %s of %s: %w", name, xpath, err)
	}
	// Playwright reports a missing attribute as an empty value
	return value, value != "", nil
}

func (p *playwrightPage) Count(ctx context.Context, xpath string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.page.Locator("xpath=" + xpath).Count()
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", xpath, err)
	}
	return n, nil
}

func (p *playwrightPage) Screenshot() ([]byte, error) {
	data, err := p.page.Screenshot(playwright.PageScreenshotOptions{FullPage: playwright.Bool(true)})
	if err != nil {
		return nil, fmt.Errorf("taking screenshot: %w", err)
	}
	return data, nil
}

func (p *playwrightPage) Close() error {
	return errors.Join(p.browser.Close(), p.pw.Stop())
}
