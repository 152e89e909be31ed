package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const DefaultTimeout = time.Second * 30

var (
	// ErrNotFound is returned when an XPath expression matches no element.
	ErrNotFound = errors.New("no element matches the expression")

	ErrNoDocument    = errors.New("no page has been loaded")
	ErrNoScreenshots = errors.New("this driver cannot take screenshots")
)

// Page is one browser tab, or its equivalent. Element lookups use XPath and act on the first
// matching element.
type Page interface {
	Navigate(ctx context.Context, url string) error
	TextContent(ctx context.Context, xpath string) (string, error)
	// Attribute returns the attribute's value and whether the element has it at all.
	Attribute(ctx context.Context, xpath, name string) (string, bool, error)
	Count(ctx context.Context, xpath string) (int, error)
	Screenshot() ([]byte, error)
	Close() error
}

type Options struct {
	Headless bool
	// Timeout bounds every individual operation; zero means DefaultTimeout.
	Timeout time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// Names lists the browsers Open accepts.
var Names = []string{"chrome", "chromium", "firefox", "webkit", "static"}

// Open starts the named browser. "chrome" is driven over the DevTools protocol with chromedp;
// "chromium", "firefox" and "webkit" through Playwright; "static" fetches pages over plain HTTP
// and does not run scripts.
func Open(name string, opts Options) (Page, error) {
	slog.Debug("opening browser", "browser", name, "headless", opts.Headless)
	switch strings.ToLower(name) {
	case "chrome":
		return newChromePage(opts)
	case "chromium", "firefox", "webkit":
		return newPlaywrightPage(strings.ToLower(name), opts)
	case "static":
		return NewStaticPage(opts), nil
	default:
		return nil, fmt.Errorf("unknown browser %q, expected one of %s", name, strings.Join(Names, ", "))
	}
}
