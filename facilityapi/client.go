package facilityapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultTimeout = time.Second * 30

// Client is the typed view of the facility API that tests and helpers work against. Paths are
// relative to the client's base URL. A non-2xx status is not an error; only transport failures
// and unencodable bodies are.
type Client interface {
	Get(ctx context.Context, path string) (*Response, error)
	Post(ctx context.Context, path string, body interface{}) (*Response, error)
	Put(ctx context.Context, path string, body interface{}) (*Response, error)
	Patch(ctx context.Context, path string, body interface{}) (*Response, error)
	Delete(ctx context.Context, path string) (*Response, error)
	BaseURL() string
}

// Call describes one completed request, successful or not, as seen by a CallObserver.
type Call struct {
	Method       string
	URL          string
	RequestBody  []byte
	Status       int
	ResponseBody []byte
	Duration     time.Duration
	Err          error
}

// OK is true if the request got a 2xx response.
func (c Call) OK() bool {
	return c.Err == nil && c.Status >= 200 && c.Status < 300
}

type CallObserver interface {
	CallCompleted(call Call)
}

type CallObserverFunc func(Call)

func (f CallObserverFunc) CallCompleted(call Call) { f(call) }

type restyClient struct {
	http      *resty.Client
	observers []CallObserver
}

type Option func(*restyClient)

func WithTimeout(timeout time.Duration) Option {
	return func(c *restyClient) {
		c.http.SetTimeout(timeout)
	}
}

// WithObserver adds an observer that is told about every request made through the client.
func WithObserver(observer CallObserver) Option {
	return func(c *restyClient) {
		if observer != nil {
			c.observers = append(c.observers, observer)
		}
	}
}

// WithDebugLogger turns on resty's request/response dumps and sends them to logger.
func WithDebugLogger(logger resty.Logger) Option {
	return func(c *restyClient) {
		if logger != nil {
			c.http.SetLogger(logger).SetDebug(true)
		}
	}
}

func WithHeader(name, value string) Option {
	return func(c *restyClient) {
		c.http.SetHeader(name, value)
	}
}

// NewClient returns a Client for the API at baseURL.
func NewClient(baseURL string, options ...Option) Client {
	c := &restyClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(DefaultTimeout).
			SetHeader("Accept", "application/json"),
	}
	for _, o := range options {
		o(c)
	}
	c.http.OnAfterResponse(c.onAfterResponse)
	c.http.OnError(c.onError)
	return c
}

func (c *restyClient) BaseURL() string {
	return c.http.BaseURL
}

func (c *restyClient) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *restyClient) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *restyClient) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

func (c *restyClient) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.do(ctx, http.MethodPatch, path, body)
}

func (c *restyClient) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

func (c *restyClient) do(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s request body: %w", method, path, err)
		}
		// resty leaves []byte bodies alone, so observers see exactly what was sent
		req.SetHeader("Content-Type", "application/json").SetBody(data)
	}
	res, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return newResponse(res), nil
}

func (c *restyClient) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	if len(c.observers) == 0 {
		return nil
	}
	c.notify(Call{
		Method:       res.Request.Method,
		URL:          res.Request.URL,
		RequestBody:  requestBody(res.Request),
		Status:       res.StatusCode(),
		ResponseBody: res.Body(),
		Duration:     res.Time(),
	})
	return nil
}

func (c *restyClient) onError(req *resty.Request, err error) {
	call := Call{
		Method:      req.Method,
		URL:         req.URL,
		RequestBody: requestBody(req),
		Err:         err,
	}
	if !req.Time.IsZero() {
		call.Duration = time.Since(req.Time)
	}
	var resErr *resty.ResponseError
	if errors.As(err, &resErr) && resErr.Response != nil {
		call.Status = resErr.Response.StatusCode()
		call.ResponseBody = resErr.Response.Body()
	}
	c.notify(call)
}

func (c *restyClient) notify(call Call) {
	for _, o := range c.observers {
		o.CallCompleted(call)
	}
}

func requestBody(req *resty.Request) []byte {
	if data, ok := req.Body.([]byte); ok {
		return data
	}
	return nil
}
