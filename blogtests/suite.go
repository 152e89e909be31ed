package blogtests

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointr-qa/facility-contract-tests/browser"
	"github.com/pointr-qa/facility-contract-tests/framework"
	"github.com/pointr-qa/facility-contract-tests/reporting"
)

const (
	defaultTitlesToPrint = 9
	defaultPostsToRead   = 3
	defaultTopWords      = 5
)

type SuiteParams struct {
	BlogURL  string
	Browsers []string
	Browser  browser.Options
	// OutputDir receives the top_words_<browser>.txt files.
	OutputDir string
	// Console receives titles, links and word counts; nil discards them.
	Console io.Writer

	TitlesToPrint int
	PostsToRead   int
	TopWords      int

	// OpenPage replaces browser.Open, for instance to reuse a page.
	OpenPage func(name string, opts browser.Options) (browser.Page, error)
}

func (p *SuiteParams) setDefaults() {
	if p.BlogURL == "" {
		p.BlogURL = DefaultBlogURL
	}
	if len(p.Browsers) == 0 {
		p.Browsers = []string{"chrome"}
	}
	if p.Console == nil {
		p.Console = io.Discard
	}
	if p.TitlesToPrint <= 0 {
		p.TitlesToPrint = defaultTitlesToPrint
	}
	if p.PostsToRead <= 0 {
		p.PostsToRead = defaultPostsToRead
	}
	if p.TopWords <= 0 {
		p.TopWords = defaultTopWords
	}
	if p.OpenPage == nil {
		p.OpenPage = browser.Open
	}
}

// RunTestSuite runs the blog tests once for each browser, in a group named after the browser.
func RunTestSuite(params SuiteParams, filter framework.Filter, testLogger framework.TestLogger) framework.Results {
	params.setDefaults()
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		for _, name := range params.Browsers {
			name := name
			c.Run(name, func(c *framework.Context) {
				page, err := params.OpenPage(name, params.Browser)
				require.NoError(c, err)
				c.Defer(func() { _ = page.Close() })

				c.Run("home", func(c *framework.Context) {
					c.Run("titles", func(c *framework.Context) {
						doTitlesTest(c, page, params)
					})
				})
				c.Run("blog detail", func(c *framework.Context) {
					c.Run("top words", func(c *framework.Context) {
						doTopWordsTest(c, page, name, params)
					})
				})
			})
		}
	})
}

func newStepLogger(c *framework.Context, page browser.Page, params SuiteParams) *reporting.StepLogger {
	log := reporting.NewStepLogger(c, params.Console)
	log.SetTestMetadata(reporting.TestMetadata{Epic: "Blog", Feature: "Blog scraping", Tags: []string{"ui"}})
	c.Defer(func() {
		if c.Failed() {
			log.AddErrorScreenshot(page, c.ID().String())
		}
	})
	return log
}

func doTitlesTest(c *framework.Context, page browser.Page, params SuiteParams) {
	log := newStepLogger(c, page, params)
	ctx := context.Background()
	home := NewHomePage(page, params.BlogURL)

	log.StepWithConsole("Open blog", func() {
		require.NoError(c, home.Navigate(ctx))
	}, false)

	log.StepWithConsole("Read post titles", func() {
		titles, err := home.PrintAllPostTitles(ctx, params.Console, params.TitlesToPrint)
		require.NoError(c, err)
		for i, title := range titles {
			assert.NotEmpty(c, title, "title %d", i+1)
		}
		c.Attach("Post titles", "text/plain", []byte(strings.Join(titles, "\n")))
	}, false)
}

func doTopWordsTest(c *framework.Context, page browser.Page, browserName string, params SuiteParams) {
	log := newStepLogger(c, page, params)
	ctx := context.Background()
	home := NewHomePage(page, params.BlogURL)

	var links []string
	log.StepWithConsole("Collect post links", func() {
		require.NoError(c, home.Navigate(ctx))
		var err error
		links, err = home.FirstPostLinks(ctx, params.Console, params.PostsToRead)
		require.NoError(c, err)
		require.NotEmpty(c, links, "no post links found")
	}, false)

	var texts []string
	for i, link := range links {
		log.StepWithConsole(fmt.Sprintf("Read post %d", i+1), func() {
			post := NewBlogPage(page, link)
			require.NoError(c, post.Navigate(ctx))
			fmt.Fprintf(params.Console, "Navigated to blog post: %s\n", post.URL())
			text, err := post.BodyText(ctx)
			require.NoError(c, err)
			if text != "" {
				texts = append(texts, text)
			}
		}, false)
	}

	log.StepWithConsole("Count words", func() {
		words := TopWords(texts, params.TopWords)
		require.NotEmpty(c, words)
		content := FormatTopWords(words)
		fmt.Fprint(params.Console, content)
		c.Attach(fmt.Sprintf("top_words_%s.txt", browserName), "text/plain", []byte(content))

		path, err := WriteTopWords(params.OutputDir, browserName, words)
		require.NoError(c, err)
		c.Debug("wrote %s", path)
	}, false)
}
