package browser

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html"
)

// StaticPage fetches documents with a plain HTTP GET and evaluates XPath against the parsed
// HTML. Nothing on the page is executed, so it only sees server-rendered content.
type StaticPage struct {
	http *resty.Client
	doc  *html.Node
	url  string
	lock sync.Mutex
}

func NewStaticPage(opts Options) *StaticPage {
	return &StaticPage{
		http: resty.New().
			SetTimeout(opts.timeout()).
			SetHeader("User-Agent", "facility-contract-tests"),
	}
}

func (p *StaticPage) Navigate(ctx context.Context, url string) error {
	resp, err := p.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	if resp.IsError() {
		return fmt.Errorf("navigating to %s: status %d", url, resp.StatusCode())
	}
	doc, err := htmlquery.Parse(bytes.NewReader(resp.Body()))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", url, err)
	}
	p.lock.Lock()
	p.doc, p.url = doc, url
	p.lock.Unlock()
	return nil
}

// URL is the address of the current document.
func (p *StaticPage) URL() string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.url
}

func (p *StaticPage) first(xpath string) (*html.Node, error) {
	p.lock.Lock()
	doc := p.doc
	p.lock.Unlock()
	if doc == nil {
		return nil, ErrNoDocument
	}
	node, err := htmlquery.Query(doc, xpath)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath %s: %w", xpath, err)
	}
	if node == nil {
		return nil, fmt.Errorf("%s: %w", xpath, ErrNotFound)
	}
	return node, nil
}

func (p *StaticPage) TextContent(_ context.Context, xpath string) (string, error) {
	node, err := p.first(xpath)
	if err != nil {
		return "", err
	}
	return htmlquery.InnerText(node), nil
}

func (p *StaticPage) Attribute(_ context.Context, xpath, name string) (string, bool, error) {
	node, err := p.first(xpath)
	if err != nil {
		return "", false, err
	}
	if !htmlquery.ExistsAttr(node, name) {
		return "", false, nil
	}
	return htmlquery.SelectAttr(node, name), true, nil
}

func (p *StaticPage) Count(_ context.Context, xpath string) (int, error) {
	p.lock.Lock()
	doc := p.doc
	p.lock.Unlock()
	if doc == nil {
		return 0, ErrNoDocument
	}
	nodes, err := htmlquery.QueryAll(doc, xpath)
	if err != nil {
		return 0, fmt.Errorf("invalid XPath %s: %w", xpath, err)
	}
	return len(nodes), nil
}

func (p *StaticPage) Screenshot() ([]byte, error) {
	return nil, ErrNoScreenshots
}

func (p *StaticPage) Close() error {
	return nil
}
