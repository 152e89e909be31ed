package blogtests

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/pointr-qa/facility-contract-tests/browser"
)

const (
	DefaultBlogURL = "https://www.pointr.tech/blog"

	postsContainerXPath = `//*[@id="hs_cos_wrapper_dnd_area-module-4"]/section/div/div/div[2]`
	blogBodyXPath       = `//*[@id="blog_post_main"]/div/div/div[3]`
)

// HomePage is the blog's post listing. Posts are addressed by their position in the listing,
// starting at 0.
type HomePage struct {
	page browser.Page
	url  string
}

func NewHomePage(page browser.Page, blogURL string) *HomePage {
	if blogURL == "" {
		blogURL = DefaultBlogURL
	}
	return &HomePage{page: page, url: blogURL}
}

func (h *HomePage) Navigate(ctx context.Context) error {
	return h.page.Navigate(ctx, h.url)
}

func postTitleXPath(index int) string {
	return fmt.Sprintf("%s/div[%d]/div/div[1]/div[2]/span/a", postsContainerXPath, index+1)
}

func (h *HomePage) PostCount(ctx context.Context) (int, error) {
	return h.page.Count(ctx, postsContainerXPath+"/div")
}

func (h *HomePage) PostTitle(ctx context.Context, index int) (string, error) {
	title, err := h.page.TextContent(ctx, postTitleXPath(index))
	return strings.TrimSpace(title), err
}

// AllPostTitles returns the titles of every post in the listing, leaving out entries that
// have no title link.
func (h *HomePage) AllPostTitles(ctx context.Context) ([]string, error) {
	count, err := h.PostCount(ctx)
	if err != nil {
		return nil, err
	}
	var titles []string
	for i := 0; i < count; i++ {
		title, err := h.PostTitle(ctx, i)
		if errors.Is(err, browser.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if title != "" {
			titles = append(titles, title)
		}
	}
	return titles, nil
}

// PrintAllPostTitles writes the listing size and then the first n titles, numbered from 1.
func (h *HomePage) PrintAllPostTitles(ctx context.Context, w io.Writer, n int) ([]string, error) {
	count, err := h.PostCount(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "Total %d blog posts found:\n", count)
	var titles []string
	for i := 0; i < n; i++ {
		title, err := h.PostTitle(ctx, i)
		if err != nil {
			return titles, fmt.Errorf("post %d: %w", i+1, err)
		}
		fmt.Fprintf(w, "%d. %s\n", i+1, title)
		titles = append(titles, title)
	}
	return titles, nil
}

// FirstPostLinks returns the links of the first n posts, resolved against the blog URL.
// Posts without a link are skipped.
func (h *HomePage) FirstPostLinks(ctx context.Context, w io.Writer, n int) ([]string, error) {
	base, err := url.Parse(h.url)
	if err != nil {
		return nil, fmt.Errorf("invalid blog URL: %w", err)
	}
	var links []string
	for i := 0; i < n; i++ {
		href, ok, err := h.page.Attribute(ctx, postTitleXPath(i), "href")
		if errors.Is(err, browser.ErrNotFound) || (err == nil && !ok) {
			continue
		}
		if err != nil {
			return nil, err
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			continue
		}
		links = append(links, base.ResolveReference(ref).String())
	}
	fmt.Fprintf(w, "First %d blog links:\n", n)
	for i, link := range links {
		fmt.Fprintf(w, "%d. %s\n", i+1, link)
	}
	return links, nil
}

// BlogPage is a single post.
type BlogPage struct {
	page browser.Page
	url  string
}

func NewBlogPage(page browser.Page, postURL string) *BlogPage {
	return &BlogPage{page: page, url: postURL}
}

func (b *BlogPage) URL() string { return b.url }

func (b *BlogPage) Navigate(ctx context.Context) error {
	return b.page.Navigate(ctx, b.url)
}

func (b *BlogPage) BodyText(ctx context.Context) (string, error) {
	return b.page.TextContent(ctx, blogBodyXPath)
}
