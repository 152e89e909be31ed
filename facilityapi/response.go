package facilityapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Response is a fully read HTTP response. It stays valid after the underlying connection is gone.
type Response struct {
	method   string
	url      string
	status   int
	headers  http.Header
	body     []byte
	duration time.Duration
}

func newResponse(res *resty.Response) *Response {
	return &Response{
		method:   res.Request.Method,
		url:      res.Request.URL,
		status:   res.StatusCode(),
		headers:  res.Header(),
		body:     res.Body(),
		duration: res.Time(),
	}
}

func (r *Response) Status() int { return r.status }

func (r *Response) Method() string { return r.method }

func (r *Response) URL() string { return r.url }

func (r *Response) Headers() http.Header { return r.headers }

// Header returns the first value of the named header, or "" if it is absent.
func (r *Response) Header(name string) string { return r.headers.Get(name) }

func (r *Response) Body() []byte { return r.body }

func (r *Response) Text() string { return string(r.body) }

func (r *Response) Duration() time.Duration { return r.duration }

// JSON decodes the body into target.
func (r *Response) JSON(target interface{}) error {
	return json.Unmarshal(r.body, target)
}

// Value parses the body as an arbitrary JSON value. A body that is empty or not valid JSON
// gives a null value.
func (r *Response) Value() ldvalue.Value {
	if len(r.body) == 0 {
		return ldvalue.Null()
	}
	return ldvalue.Parse(r.body)
}
