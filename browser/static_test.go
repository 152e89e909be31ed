package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `<html><body>
<ul id="items">
  <li><a href="/one" class="item">One</a></li>
  <li><a href="/two">Two</a></li>
</ul>
<p id="text">Some <b>bold</b> text</p>
</body></html>`

func withDocument(t *testing.T, action func(p *StaticPage)) {
	handler := httphelpers.HandlerWithResponse(200, http.Header{"Content-Type": {"text/html"}}, []byte(testDocument))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		p := NewStaticPage(Options{})
		require.NoError(t, p.Navigate(context.Background(), server.URL))
		assert.Equal(t, server.URL, p.URL())
		action(p)
	})
}

func TestStaticTextContent(t *testing.T) {
	withDocument(t, func(p *StaticPage) {
		text, err := p.TextContent(context.Background(), `//*[@id="text"]`)
		require.NoError(t, err)
		assert.Equal(t, "Some bold text", text)

		text, err = p.TextContent(context.Background(), `//ul/li[2]/a`)
		require.NoError(t, err)
		assert.Equal(t, "Two", text)

		_, err = p.TextContent(context.Background(), `//ul/li[3]/a`)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStaticAttribute(t *testing.T) {
	withDocument(t, func(p *StaticPage) {
		value, ok, err := p.Attribute(context.Background(), `//ul/li[1]/a`, "class")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "item", value)

		_, ok, err = p.Attribute(context.Background(), `//ul/li[2]/a`, "class")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestStaticCount(t *testing.T) {
	withDocument(t, func(p *StaticPage) {
		n, err := p.Count(context.Background(), `//ul/li`)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = p.Count(context.Background(), `//table`)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		_, err = p.Count(context.Background(), `//ul[`)
		assert.Error(t, err)
	})
}

func TestStaticPageErrors(t *testing.T) {
	p := NewStaticPage(Options{})
	_, err := p.TextContent(context.Background(), "//p")
	assert.ErrorIs(t, err, ErrNoDocument)
	_, err = p.Screenshot()
	assert.ErrorIs(t, err, ErrNoScreenshots)

	httphelpers.WithServer(httphelpers.HandlerWithStatus(404), func(server *httptest.Server) {
		assert.Error(t, p.Navigate(context.Background(), server.URL))
	})
}

func TestOpenUnknownBrowser(t *testing.T) {
	_, err := Open("netscape", Options{})
	assert.Error(t, err)

	p, err := Open("Static", Options{})
	require.NoError(t, err)
	assert.IsType(t, &StaticPage{}, p)
}
